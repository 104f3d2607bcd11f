package diff

import (
	"fmt"

	"github.com/schemasync/schemasync/ir"
)

// Status is the kind of structural delta a Change describes
type Status string

const (
	StatusAdd    Status = "ADD"
	StatusDrop   Status = "DROP"
	StatusModify Status = "MODIFY"
)

// Kind identifies which payload of a Change is set
type Kind string

const (
	KindTable      Kind = "table"
	KindColumn     Kind = "column"
	KindForeignKey Kind = "foreign_key"
)

// Change is one detected difference between the expected and the actual model.
// Exactly one of Table, Column or ForeignKey is set, matching Kind.
type Change struct {
	Kind       Kind              `json:"kind"`
	Status     Status            `json:"status"`
	Table      *TableChange      `json:"table,omitempty"`
	Column     *ColumnChange     `json:"column,omitempty"`
	ForeignKey *ForeignKeyChange `json:"foreign_key,omitempty"`
}

// TableChange carries the table on each side. Expected is nil for DROP, Actual is nil for ADD.
type TableChange struct {
	Expected *ir.Table `json:"expected,omitempty"`
	Actual   *ir.Table `json:"actual,omitempty"`
}

// ColumnChange carries the column on each side plus its owning table
// (the actual table for DROP, the expected table otherwise)
type ColumnChange struct {
	Table    *ir.Table  `json:"-"`
	Expected *ir.Column `json:"expected,omitempty"`
	Actual   *ir.Column `json:"actual,omitempty"`
}

// ForeignKeyChange carries the key on each side plus its owning table and column
type ForeignKeyChange struct {
	Table    *ir.Table      `json:"-"`
	Column   *ir.Column     `json:"-"`
	Expected *ir.ForeignKey `json:"expected,omitempty"`
	Actual   *ir.ForeignKey `json:"actual,omitempty"`
}

// NewTableChange creates a table-level change
func NewTableChange(status Status, expected, actual *ir.Table) Change {
	return Change{
		Kind:   KindTable,
		Status: status,
		Table:  &TableChange{Expected: expected, Actual: actual},
	}
}

// NewColumnChange creates a column-level change
func NewColumnChange(status Status, table *ir.Table, expected, actual *ir.Column) Change {
	return Change{
		Kind:   KindColumn,
		Status: status,
		Column: &ColumnChange{Table: table, Expected: expected, Actual: actual},
	}
}

// NewForeignKeyChange creates a foreign-key-level change
func NewForeignKeyChange(status Status, table *ir.Table, column *ir.Column, expected, actual *ir.ForeignKey) Change {
	return Change{
		Kind:       KindForeignKey,
		Status:     status,
		ForeignKey: &ForeignKeyChange{Table: table, Column: column, Expected: expected, Actual: actual},
	}
}

// OwningTable returns the table the change applies to
func (c Change) OwningTable() *ir.Table {
	switch {
	case c.Kind == KindTable && c.Table != nil:
		if c.Table.Expected != nil {
			return c.Table.Expected
		}
		return c.Table.Actual
	case c.Kind == KindColumn && c.Column != nil:
		return c.Column.Table
	case c.Kind == KindForeignKey && c.ForeignKey != nil:
		return c.ForeignKey.Table
	}
	return nil
}

// Path returns a dotted address for the changed object, e.g. "shop.orders.customer_id"
func (c Change) Path() string {
	table := c.OwningTable()
	if table == nil {
		return ""
	}
	base := table.QualifiedName()

	switch c.Kind {
	case KindColumn:
		if column := c.column(); column != nil {
			return base + "." + column.Name
		}
	case KindForeignKey:
		if fk := c.foreignKey(); fk != nil {
			return base + "." + fk.Name
		}
	}
	return base
}

// String returns a short description such as "DROP column shop.orders.customer_id"
func (c Change) String() string {
	return fmt.Sprintf("%s %s %s", c.Status, c.Kind, c.Path())
}

// column returns whichever side of a column change is set, preferring expected
func (c Change) column() *ir.Column {
	if c.Column.Expected != nil {
		return c.Column.Expected
	}
	return c.Column.Actual
}

// foreignKey returns whichever side of a foreign key change is set, preferring expected
func (c Change) foreignKey() *ir.ForeignKey {
	if c.ForeignKey.Expected != nil {
		return c.ForeignKey.Expected
	}
	return c.ForeignKey.Actual
}

// HasDrops reports whether any change removes an object
func HasDrops(changes []Change) bool {
	for _, change := range changes {
		if change.Status == StatusDrop {
			return true
		}
	}
	return false
}
