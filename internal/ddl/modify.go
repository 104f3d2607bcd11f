package ddl

import (
	"fmt"
	"strings"

	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/ir"
)

// ModifyGenerator is the Generator of dialects that follow MySQL's ALTER TABLE syntax:
// MODIFY with the full column definition, DROP FOREIGN KEY and DROP PRIMARY KEY.
// Dialects differ only in identifier quoting and delete rule support.
type ModifyGenerator struct {
	Decorator *TypeDecorator
	Quote     func(identifier string) string
	// Separator is placed between statements that one method returns together
	Separator string
	// SetDefault reports whether ON DELETE SET DEFAULT is accepted
	SetDefault bool
}

func (g *ModifyGenerator) tableName(schema, name string) string {
	return QualifiedName(schema, name, g.Quote, g.Quote)
}

// CreateColumn renders a column definition
func (g *ModifyGenerator) CreateColumn(column *ir.Column) string {
	return g.Decorator.Declaration(column)
}

// CreateTable renders CREATE TABLE with an inline primary key, optionally preceded by a guarded drop
func (g *ModifyGenerator) CreateTable(table *ir.Table, dropIfExists bool) string {
	definitions := make([]string, 0, len(table.Columns)+1)
	for _, column := range table.Columns {
		definitions = append(definitions, g.CreateColumn(column))
	}
	if pk := PrimaryKeyClause(table, g.Quote); pk != "" {
		definitions = append(definitions, pk)
	}

	name := g.tableName(table.Schema, table.Name)
	create := fmt.Sprintf("CREATE TABLE %s(%s);", name, strings.Join(definitions, ", "))
	if !dropIfExists {
		return create
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", name) + g.Separator + create
}

// CreateDatabase renders schemas, then tables, then foreign keys
func (g *ModifyGenerator) CreateDatabase(db *ir.Database, dropIfExists bool) string {
	var statements []string
	for _, schema := range db.Schemas() {
		statements = append(statements, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", g.Quote(schema)))
	}
	for _, table := range db.Tables {
		statements = append(statements, g.CreateTable(table, dropIfExists))
	}
	for _, fk := range ForeignKeys(db) {
		statements = append(statements, g.CreateForeignKey(fk))
	}
	return JoinStatements(g.Separator, statements...)
}

// CreateForeignKey renders ALTER TABLE ... ADD CONSTRAINT. The constraint name is left bare.
func (g *ModifyGenerator) CreateForeignKey(fk *ir.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)%s;",
		g.tableName(fk.Schema, fk.TableName),
		fk.Name,
		g.Quote(fk.ColumnName),
		g.tableName(fk.PrimaryTableSchema, fk.PrimaryTableName),
		g.Quote(fk.PrimaryColumnName),
		OnDeleteClause(fk, g.SetDefault))
}

// DropForeignKey renders ALTER TABLE ... DROP FOREIGN KEY
func (g *ModifyGenerator) DropForeignKey(fk *ir.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s;", g.tableName(fk.Schema, fk.TableName), g.Quote(fk.Name))
}

// AlterForeignKey drops the old key and adds the new one
func (g *ModifyGenerator) AlterForeignKey(change *diff.ForeignKeyChange) string {
	return JoinStatements(g.Separator, g.DropForeignKey(change.Actual), g.CreateForeignKey(change.Expected))
}

// AlterTable rebuilds the primary key in a single statement. A key that lost some of its
// columns earlier in the run still exists with the rest and is dropped; a key that lost
// all of them is already gone.
func (g *ModifyGenerator) AlterTable(expected, actual *ir.Table) string {
	var actions []string
	if PrimaryKeyRemains(expected, actual, true) {
		actions = append(actions, "DROP PRIMARY KEY")
	}
	if pk := PrimaryKeyClause(expected, g.Quote); pk != "" {
		actions = append(actions, "ADD "+pk)
	}
	if len(actions) == 0 {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s %s;", g.tableName(expected.Schema, expected.Name), strings.Join(actions, ", "))
}

// AlterColumn renders MODIFY with the full expected definition, or "" when neither the
// type nor the nullability changed
func (g *ModifyGenerator) AlterColumn(change *diff.ColumnChange) string {
	typeChanged, nullabilityChanged := ColumnAltered(g.Decorator, change)
	if !typeChanged && !nullabilityChanged {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s MODIFY %s;",
		g.tableName(change.Table.Schema, change.Table.Name),
		g.CreateColumn(change.Expected))
}

// AddColumn renders ALTER TABLE ... ADD COLUMN
func (g *ModifyGenerator) AddColumn(change *diff.ColumnChange) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;",
		g.tableName(change.Table.Schema, change.Table.Name),
		g.CreateColumn(change.Expected))
}

// DropColumn renders ALTER TABLE ... DROP COLUMN
func (g *ModifyGenerator) DropColumn(change *diff.ColumnChange) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;",
		g.tableName(change.Table.Schema, change.Table.Name),
		g.Quote(change.Actual.Name))
}

// DropTable renders DROP TABLE
func (g *ModifyGenerator) DropTable(table *ir.Table) string {
	return fmt.Sprintf("DROP TABLE %s;", g.tableName(table.Schema, table.Name))
}
