// Package postgres renders PostgreSQL DDL.
//
// Identifiers are quoted only when PostgreSQL would otherwise fold or reject them;
// schema names are always quoted. Descriptions become COMMENT ON statements.
package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/schemasync/schemasync/internal/ddl"
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/ir"
)

// Separator is placed between statements of a PostgreSQL script
const Separator = "\n\n"

// Generator renders PostgreSQL statements
type Generator struct {
	decorator *ddl.TypeDecorator
}

// NewGenerator creates a PostgreSQL generator
func NewGenerator() *Generator {
	return &Generator{decorator: NewColumnDecorator()}
}

// CreateColumn renders a column definition
func (g *Generator) CreateColumn(column *ir.Column) string {
	return g.decorator.Declaration(column)
}

// CreateTable renders CREATE TABLE with an inline primary key, followed by comments
func (g *Generator) CreateTable(table *ir.Table, dropIfExists bool) string {
	name := tableName(table.Schema, table.Name)

	definitions := make([]string, 0, len(table.Columns)+1)
	for _, column := range table.Columns {
		definitions = append(definitions, "    "+g.CreateColumn(column))
	}
	if pk := ddl.PrimaryKeyClause(table, quoteIdentifier); pk != "" {
		definitions = append(definitions, "    "+pk)
	}

	var statements []string
	if dropIfExists {
		statements = append(statements, fmt.Sprintf("DROP TABLE IF EXISTS %s;", name))
	}
	statements = append(statements, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", name, strings.Join(definitions, ",\n")))

	if table.Description != "" {
		statements = append(statements, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", name, pq.QuoteLiteral(table.Description)))
	}
	for _, column := range table.Columns {
		statements = append(statements, columnComment(table, column))
	}
	return ddl.JoinStatements("\n", statements...)
}

// CreateDatabase renders schemas, then tables, then foreign keys
func (g *Generator) CreateDatabase(db *ir.Database, dropIfExists bool) string {
	var statements []string
	for _, schema := range db.Schemas() {
		statements = append(statements, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", quoteSchema(schema)))
	}
	for _, table := range db.Tables {
		statements = append(statements, g.CreateTable(table, dropIfExists))
	}
	for _, fk := range ddl.ForeignKeys(db) {
		statements = append(statements, g.CreateForeignKey(fk))
	}
	return ddl.JoinStatements(Separator, statements...)
}

// CreateForeignKey renders ALTER TABLE ... ADD CONSTRAINT
func (g *Generator) CreateForeignKey(fk *ir.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s\nADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)%s;",
		tableName(fk.Schema, fk.TableName),
		quoteIdentifier(fk.Name),
		quoteIdentifier(fk.ColumnName),
		tableName(fk.PrimaryTableSchema, fk.PrimaryTableName),
		quoteIdentifier(fk.PrimaryColumnName),
		ddl.OnDeleteClause(fk, true))
}

// DropForeignKey renders ALTER TABLE ... DROP CONSTRAINT
func (g *Generator) DropForeignKey(fk *ir.ForeignKey) string {
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", tableName(fk.Schema, fk.TableName), quoteIdentifier(fk.Name))
}

// AlterForeignKey drops the old constraint and adds the new one
func (g *Generator) AlterForeignKey(change *diff.ForeignKeyChange) string {
	return ddl.JoinStatements("\n", g.DropForeignKey(change.Actual), g.CreateForeignKey(change.Expected))
}

// AlterTable rebuilds the primary key. The existing key is dropped by its default name <table>_pkey
// unless one of its columns was dropped earlier in the run, which takes the constraint with it.
func (g *Generator) AlterTable(expected, actual *ir.Table) string {
	var actions []string
	if ddl.PrimaryKeyRemains(expected, actual, false) {
		actions = append(actions, "DROP CONSTRAINT "+quoteIdentifier(actual.Name+"_pkey"))
	}
	if pk := ddl.PrimaryKeyClause(expected, quoteIdentifier); pk != "" {
		actions = append(actions, "ADD "+pk)
	}
	if len(actions) == 0 {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s %s;", tableName(expected.Schema, expected.Name), strings.Join(actions, ", "))
}

// AlterColumn renders the type and nullability changes as one ALTER TABLE statement
func (g *Generator) AlterColumn(change *diff.ColumnChange) string {
	typeChanged, nullabilityChanged := ddl.ColumnAltered(g.decorator, change)
	column := quoteIdentifier(change.Expected.Name)

	var actions []string
	if typeChanged {
		actions = append(actions, fmt.Sprintf("ALTER COLUMN %s TYPE %s", column, g.decorator.TypeName(change.Expected)))
	}
	if nullabilityChanged {
		if change.Expected.Nullable {
			actions = append(actions, fmt.Sprintf("ALTER COLUMN %s DROP NOT NULL", column))
		} else {
			actions = append(actions, fmt.Sprintf("ALTER COLUMN %s SET NOT NULL", column))
		}
	}
	if len(actions) == 0 {
		return ""
	}
	return fmt.Sprintf("ALTER TABLE %s %s;", tableName(change.Table.Schema, change.Table.Name), strings.Join(actions, ", "))
}

// AddColumn renders ALTER TABLE ... ADD COLUMN and the column comment
func (g *Generator) AddColumn(change *diff.ColumnChange) string {
	return ddl.JoinStatements("\n",
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;",
			tableName(change.Table.Schema, change.Table.Name),
			g.CreateColumn(change.Expected)),
		columnComment(change.Table, change.Expected))
}

// DropColumn renders ALTER TABLE ... DROP COLUMN
func (g *Generator) DropColumn(change *diff.ColumnChange) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;",
		tableName(change.Table.Schema, change.Table.Name),
		quoteIdentifier(change.Actual.Name))
}

// DropTable renders DROP TABLE IF EXISTS
func (g *Generator) DropTable(table *ir.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", tableName(table.Schema, table.Name))
}

func columnComment(table *ir.Table, column *ir.Column) string {
	if column.Description == "" {
		return ""
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;",
		tableName(table.Schema, table.Name),
		quoteIdentifier(column.Name),
		pq.QuoteLiteral(column.Description))
}
