package ir

// Normalize fills the denormalised owner fields of every foreign key from the table and
// column that own it, so models written by hand may omit them.
func Normalize(db *Database) {
	if db == nil {
		return
	}
	for _, table := range db.Tables {
		if table == nil {
			continue
		}
		for _, column := range table.Columns {
			if column == nil {
				continue
			}
			for _, fk := range column.ForeignKeys {
				normalizeForeignKey(fk, table, column)
			}
		}
	}
}

func normalizeForeignKey(fk *ForeignKey, table *Table, column *Column) {
	if fk == nil {
		return
	}
	if fk.TableName == "" {
		fk.TableName = table.Name
	}
	if fk.Schema == "" {
		fk.Schema = table.Schema
	}
	if fk.ColumnName == "" {
		fk.ColumnName = column.Name
	}
}
