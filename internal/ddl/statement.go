package ddl

import (
	"strings"

	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/internal/logger"
	"github.com/schemasync/schemasync/ir"
)

// PrimaryKeyClause returns "PRIMARY KEY (a, b)" built from the table's primary key
// columns in sequence order, or "" when the table has none
func PrimaryKeyClause(table *ir.Table, quote func(string) string) string {
	columns := table.PrimaryKeyColumns()
	if len(columns) == 0 {
		return ""
	}
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, quote(column.Name))
	}
	return "PRIMARY KEY (" + strings.Join(names, ", ") + ")"
}

// PrimaryKeyRemains reports whether the actual primary key still exists once the columns
// missing from expected are dropped. A key that lost every column is gone. A key that lost
// only some survives with the rest when shrinks is true, otherwise it is gone as well.
func PrimaryKeyRemains(expected, actual *ir.Table, shrinks bool) bool {
	columns := actual.PrimaryKeyColumns()
	kept := 0
	for _, column := range columns {
		if expected.Column(column.Name) != nil {
			kept++
		}
	}
	if kept == 0 {
		return false
	}
	return shrinks || kept == len(columns)
}

// OnDeleteClause returns the " ON DELETE ..." suffix for a foreign key, or "" when the
// rule has no clause. Dialects without SET DEFAULT support pass allowSetDefault=false.
func OnDeleteClause(fk *ir.ForeignKey, allowSetDefault bool) string {
	rule, ok := fk.Rule()
	if !ok {
		return ""
	}
	if rule == ir.DeleteRuleSetDefault && !allowSetDefault {
		return ""
	}
	action := rule.String()
	if action == "" {
		return ""
	}
	return " ON DELETE " + action
}

// QualifiedName joins an optional schema and a name with the given quoting functions
func QualifiedName(schema, name string, quoteSchema, quote func(string) string) string {
	if strings.TrimSpace(schema) == "" {
		return quote(name)
	}
	return quoteSchema(schema) + "." + quote(name)
}

// ColumnAltered reports which parts of a modified column need a statement.
// Types are compared as rendered, case-insensitively.
func ColumnAltered(decorator ColumnDecorator, change *diff.ColumnChange) (typeChanged, nullabilityChanged bool) {
	expected, actual := change.Expected, change.Actual
	typeChanged = !strings.EqualFold(decorator.TypeName(expected), decorator.TypeName(actual))
	nullabilityChanged = expected.Nullable != actual.Nullable
	if !typeChanged && !nullabilityChanged {
		logger.Get().Info("No action taken for changes detected in column",
			"schema", change.Table.Schema,
			"table", change.Table.Name,
			"column", expected.Name)
	}
	return typeChanged, nullabilityChanged
}

// OwnedForeignKey returns fk with its owning schema, table and column filled in from
// the model when they are blank
func OwnedForeignKey(table *ir.Table, column *ir.Column, fk *ir.ForeignKey) *ir.ForeignKey {
	if fk.TableName != "" && fk.ColumnName != "" && (fk.Schema != "" || table == nil || table.Schema == "") {
		return fk
	}
	owned := *fk
	if table != nil {
		if owned.TableName == "" {
			owned.TableName = table.Name
		}
		if owned.Schema == "" {
			owned.Schema = table.Schema
		}
	}
	if column != nil && owned.ColumnName == "" {
		owned.ColumnName = column.Name
	}
	return &owned
}

// ForeignKeys returns every foreign key of the database with owners filled in,
// in table then column order
func ForeignKeys(db *ir.Database) []*ir.ForeignKey {
	var fks []*ir.ForeignKey
	for _, table := range db.Tables {
		for _, column := range table.Columns {
			for _, fk := range column.ForeignKeys {
				fks = append(fks, OwnedForeignKey(table, column, fk))
			}
		}
	}
	return fks
}

// JoinStatements joins the non-empty statements with sep
func JoinStatements(sep string, statements ...string) string {
	var parts []string
	for _, statement := range statements {
		if statement = strings.TrimSpace(statement); statement != "" {
			parts = append(parts, statement)
		}
	}
	return strings.Join(parts, sep)
}
