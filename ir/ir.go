// Package ir holds the portable schema model shared by the diff engine and every dialect.
//
// A model is a tree Database → Table → Column/Index. Foreign keys are owned by the
// referencing column and point at the referenced table and column by name, never by
// pointer, so models loaded from storage need no link resolution.
package ir

import (
	"sort"
	"strings"
)

// Database represents a complete schema model for one database
type Database struct {
	Name         string   `yaml:"name,omitempty" json:"name,omitempty"`
	DatabaseType string   `yaml:"databaseType" json:"databaseType"`
	SafeMode     bool     `yaml:"safeMode,omitempty" json:"safeMode,omitempty"`
	Tables       []*Table `yaml:"tables" json:"tables"`
}

// Table represents a database table
type Table struct {
	Name        string    `yaml:"name" json:"name"`
	Schema      string    `yaml:"schema,omitempty" json:"schema,omitempty"`
	Type        string    `yaml:"type,omitempty" json:"type,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Columns     []*Column `yaml:"columns" json:"columns"`
	Indices     []*Index  `yaml:"indices,omitempty" json:"indices,omitempty"`
}

// Column represents a table column
type Column struct {
	Name                 string        `yaml:"name" json:"name"`
	TypeName             string        `yaml:"typeName" json:"typeName"`
	Precision            int           `yaml:"precision,omitempty" json:"precision,omitempty"`
	Scale                int           `yaml:"scale,omitempty" json:"scale,omitempty"`
	Nullable             bool          `yaml:"nullable" json:"nullable"`
	PrimaryKey           bool          `yaml:"primaryKey,omitempty" json:"primaryKey,omitempty"`
	PrimaryKeySequenceID int           `yaml:"primaryKeySequenceId,omitempty" json:"primaryKeySequenceId,omitempty"`
	ColumnDefault        string        `yaml:"columnDefault,omitempty" json:"columnDefault,omitempty"`
	Description          string        `yaml:"description,omitempty" json:"description,omitempty"`
	ForeignKeys          []*ForeignKey `yaml:"foreignKeys,omitempty" json:"foreignKeys,omitempty"`
}

// ForeignKey represents a single-column referential constraint owned by the referencing column
type ForeignKey struct {
	Name               string `yaml:"name" json:"name"`
	Schema             string `yaml:"schema,omitempty" json:"schema,omitempty"`
	TableName          string `yaml:"tableName,omitempty" json:"tableName,omitempty"`
	ColumnName         string `yaml:"columnName,omitempty" json:"columnName,omitempty"`
	DeleteRule         string `yaml:"deleteRule,omitempty" json:"deleteRule,omitempty"`
	PrimaryTableSchema string `yaml:"primaryTableSchema,omitempty" json:"primaryTableSchema,omitempty"`
	PrimaryTableName   string `yaml:"primaryTableName" json:"primaryTableName"`
	PrimaryColumnName  string `yaml:"primaryColumnName" json:"primaryColumnName"`
}

// Index represents a table index. Indices are rendered but never diffed.
type Index struct {
	Name        string   `yaml:"name" json:"name"`
	ColumnNames []string `yaml:"columnNames" json:"columnNames"`
	NonUnique   bool     `yaml:"nonUnique,omitempty" json:"nonUnique,omitempty"`
}

// TableKey returns the identity used to match tables across models
func TableKey(schema, name string) string {
	return schema + "." + name
}

// Key returns the table identity (schema, name)
func (t *Table) Key() string {
	return TableKey(t.Schema, t.Name)
}

// QualifiedName returns "schema.name", or just the name when no schema is set
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column looks up a column by name
func (t *Table) Column(name string) *Column {
	for _, column := range t.Columns {
		if column.Name == name {
			return column
		}
	}
	return nil
}

// PrimaryKeyColumns returns the primary key columns ordered by ascending sequence id
func (t *Table) PrimaryKeyColumns() []*Column {
	var pk []*Column
	for _, column := range t.Columns {
		if column.PrimaryKey {
			pk = append(pk, column)
		}
	}
	sort.SliceStable(pk, func(i, j int) bool {
		return pk[i].PrimaryKeySequenceID < pk[j].PrimaryKeySequenceID
	})
	return pk
}

// HasPrimaryKey reports whether any column is part of the primary key
func (t *Table) HasPrimaryKey() bool {
	for _, column := range t.Columns {
		if column.PrimaryKey {
			return true
		}
	}
	return false
}

// ForeignKeys returns every foreign key owned by the table's columns, in column order
func (t *Table) ForeignKeys() []*ForeignKey {
	var fks []*ForeignKey
	for _, column := range t.Columns {
		fks = append(fks, column.ForeignKeys...)
	}
	return fks
}

// ForeignKey looks up a foreign key owned by the column by constraint name
func (c *Column) ForeignKey(name string) *ForeignKey {
	for _, fk := range c.ForeignKeys {
		if fk.Name == name {
			return fk
		}
	}
	return nil
}

// ReferencedTableKey returns the identity of the table the key points at
func (fk *ForeignKey) ReferencedTableKey() string {
	return TableKey(fk.PrimaryTableSchema, fk.PrimaryTableName)
}

// Table looks up a table by schema and name
func (d *Database) Table(schema, name string) *Table {
	key := TableKey(schema, name)
	for _, table := range d.Tables {
		if table.Key() == key {
			return table
		}
	}
	return nil
}

// Schemas returns the distinct non-empty schema names used by the tables, sorted
func (d *Database) Schemas() []string {
	seen := make(map[string]bool)
	var schemas []string
	for _, table := range d.Tables {
		if strings.TrimSpace(table.Schema) == "" || seen[table.Schema] {
			continue
		}
		seen[table.Schema] = true
		schemas = append(schemas, table.Schema)
	}
	sort.Strings(schemas)
	return schemas
}
