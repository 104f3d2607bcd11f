// Package ddl renders change sets into SQL scripts.
//
// A Generator knows how one dialect spells each construct; the Handler walks an
// ordered change set and dispatches every change to the matching Generator method.
package ddl

import (
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/ir"
)

// Generator renders single DDL statements for one dialect.
// Every method returns a complete, terminated statement, or "" when nothing is needed.
type Generator interface {
	CreateColumn(column *ir.Column) string
	CreateTable(table *ir.Table, dropIfExists bool) string
	CreateDatabase(db *ir.Database, dropIfExists bool) string
	CreateForeignKey(fk *ir.ForeignKey) string
	DropForeignKey(fk *ir.ForeignKey) string
	AlterForeignKey(change *diff.ForeignKeyChange) string
	AlterTable(expected, actual *ir.Table) string
	AlterColumn(change *diff.ColumnChange) string
	AddColumn(change *diff.ColumnChange) string
	DropColumn(change *diff.ColumnChange) string
	DropTable(table *ir.Table) string
}

// ColumnDecorator renders the type and declaration of a single column
type ColumnDecorator interface {
	// TypeName returns the type with its precision suffix when one applies, e.g. "varchar(100)"
	TypeName(column *ir.Column) string
	// Declaration returns the full column definition used by CREATE TABLE and ADD COLUMN
	Declaration(column *ir.Column) string
}
