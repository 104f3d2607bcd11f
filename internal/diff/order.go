package diff

import (
	"github.com/schemasync/schemasync/ir"
)

// changeSet buckets detected changes by execution pass
type changeSet struct {
	fkDrops        []Change
	columnDrops    []Change
	droppedTables  []*ir.Table
	addedTables    []*ir.Table
	columnAdds     []Change
	columnModifies []Change
	tableModifies  []Change
	fkAdds         []Change
	matchedKeys    []pendingForeignKey

	// columns dropped or modified in this run, keyed by table key and column name
	touchedColumns map[string]map[string]bool
	// tables whose primary key is rebuilt in this run
	rekeyed map[string]bool
}

// pendingForeignKey is a matched foreign key whose rendering depends on the rest of the run
type pendingForeignKey struct {
	expectedTable  *ir.Table
	actualTable    *ir.Table
	expectedColumn *ir.Column
	actualColumn   *ir.Column
	expected       *ir.ForeignKey
	actual         *ir.ForeignKey
	// unchanged keys only need work when an earlier pass would break them
	unchanged bool
}

func newChangeSet() *changeSet {
	return &changeSet{
		touchedColumns: make(map[string]map[string]bool),
		rekeyed:        make(map[string]bool),
	}
}

func (s *changeSet) markColumn(table *ir.Table, column string) {
	columns, ok := s.touchedColumns[table.Key()]
	if !ok {
		columns = make(map[string]bool)
		s.touchedColumns[table.Key()] = columns
	}
	columns[column] = true
}

func (s *changeSet) columnTouched(tableKey, column string) bool {
	return s.touchedColumns[tableKey][column]
}

// ordered emits the changes pass by pass:
//
//  1. foreign key drops
//  2. table drops, referencing tables first
//  3. column drops
//  4. table adds, referenced tables first
//  5. column adds
//  6. column modifications
//  7. primary key rebuilds
//  8. foreign key adds and modifications
func (s *changeSet) ordered() []Change {
	s.resolveForeignKeyModifications()

	changes := make([]Change, 0)
	changes = append(changes, s.fkDrops...)
	// Keys of dropped tables may still point at dropped columns of surviving tables
	for _, table := range reverseTables(topologicallySortTables(s.droppedTables)) {
		changes = append(changes, NewTableChange(StatusDrop, nil, table))
	}
	changes = append(changes, s.columnDrops...)
	for _, table := range topologicallySortTables(s.addedTables) {
		changes = append(changes, NewTableChange(StatusAdd, table, nil))
	}
	changes = append(changes, s.columnAdds...)
	changes = append(changes, s.columnModifies...)
	changes = append(changes, s.tableModifies...)
	changes = append(changes, s.fkAdds...)
	return changes
}

// resolveForeignKeyModifications keeps a modified foreign key as one MODIFY change unless
// the old key would block an earlier pass. That happens when its target table is dropped,
// its target column is dropped or modified, its target table's primary key is rebuilt, or
// its own column is modified. Such keys are split into a DROP in the first pass and an ADD
// in the last. Unchanged keys caught by the same conditions are split the same way and are
// otherwise left alone.
func (s *changeSet) resolveForeignKeyModifications() {
	dropped := make(map[string]bool, len(s.droppedTables))
	for _, table := range s.droppedTables {
		dropped[table.Key()] = true
	}

	for _, pending := range s.matchedKeys {
		target := pending.actual.ReferencedTableKey()
		blocked := dropped[target] ||
			s.rekeyed[target] ||
			s.columnTouched(target, pending.actual.PrimaryColumnName) ||
			s.columnTouched(pending.actualTable.Key(), pending.actualColumn.Name)

		if !blocked {
			if !pending.unchanged {
				s.fkAdds = append(s.fkAdds, NewForeignKeyChange(StatusModify,
					pending.expectedTable, pending.expectedColumn, pending.expected, pending.actual))
			}
			continue
		}
		s.fkDrops = append(s.fkDrops, NewForeignKeyChange(StatusDrop,
			pending.actualTable, pending.actualColumn, nil, pending.actual))
		s.fkAdds = append(s.fkAdds, NewForeignKeyChange(StatusAdd,
			pending.expectedTable, pending.expectedColumn, pending.expected, nil))
	}
}
