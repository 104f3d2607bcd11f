package ir

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidModel        = errors.New("invalid model")
	ErrDuplicateTable      = errors.New("duplicate table")
	ErrDuplicateColumn     = errors.New("duplicate column")
	ErrAmbiguousPrimaryKey = errors.New("ambiguous primary key sequence")
	ErrDanglingForeignKey  = errors.New("foreign key references a table missing from both models")
)

// IntegrityError reports a malformed model together with the entity that caused it
type IntegrityError struct {
	Err    error
	Model  string // "expected", "actual" or "" for single-model checks
	Schema string
	Table  string
	Column string
	Detail string
}

func (e *IntegrityError) Error() string {
	var b strings.Builder
	if e.Model != "" {
		b.WriteString(e.Model)
		b.WriteString(" model: ")
	}
	b.WriteString(e.Err.Error())
	if location := e.location(); location != "" {
		b.WriteString(" at ")
		b.WriteString(location)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

func (e *IntegrityError) location() string {
	var parts []string
	for _, part := range []string{e.Schema, e.Table, e.Column} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ".")
}

// Validate checks the structural invariants of a single model
func (d *Database) Validate() error {
	return validate(d, "")
}

// ValidatePair checks both models and the foreign key references between them.
// A foreign key may point at a table from either model; pointing at neither is an error.
func ValidatePair(expected, actual *Database) error {
	if err := validate(expected, "expected"); err != nil {
		return err
	}
	if err := validate(actual, "actual"); err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, db := range []*Database{expected, actual} {
		for _, table := range db.Tables {
			known[table.Key()] = true
		}
	}

	for _, side := range []struct {
		name string
		db   *Database
	}{{"expected", expected}, {"actual", actual}} {
		for _, table := range side.db.Tables {
			for _, column := range table.Columns {
				for _, fk := range column.ForeignKeys {
					if known[fk.ReferencedTableKey()] {
						continue
					}
					return &IntegrityError{
						Err:    ErrDanglingForeignKey,
						Model:  side.name,
						Schema: table.Schema,
						Table:  table.Name,
						Column: column.Name,
						Detail: fmt.Sprintf("%s references %s", fk.Name, qualify(fk.PrimaryTableSchema, fk.PrimaryTableName)),
					}
				}
			}
		}
	}
	return nil
}

func validate(d *Database, model string) error {
	if d == nil {
		return &IntegrityError{Err: ErrInvalidModel, Model: model, Detail: "model is nil"}
	}

	tables := make(map[string]bool, len(d.Tables))
	for i, table := range d.Tables {
		if table == nil || strings.TrimSpace(table.Name) == "" {
			return &IntegrityError{Err: ErrInvalidModel, Model: model, Detail: fmt.Sprintf("table #%d has no name", i)}
		}
		if tables[table.Key()] {
			return &IntegrityError{Err: ErrDuplicateTable, Model: model, Schema: table.Schema, Table: table.Name}
		}
		tables[table.Key()] = true

		if err := validateColumns(table, model); err != nil {
			return err
		}
	}
	return nil
}

func validateColumns(table *Table, model string) error {
	columns := make(map[string]bool, len(table.Columns))
	sequences := make(map[int]string)

	for i, column := range table.Columns {
		if column == nil || strings.TrimSpace(column.Name) == "" {
			return &IntegrityError{
				Err:    ErrInvalidModel,
				Model:  model,
				Schema: table.Schema,
				Table:  table.Name,
				Detail: fmt.Sprintf("column #%d has no name", i),
			}
		}
		if columns[column.Name] {
			return &IntegrityError{Err: ErrDuplicateColumn, Model: model, Schema: table.Schema, Table: table.Name, Column: column.Name}
		}
		columns[column.Name] = true

		for _, fk := range column.ForeignKeys {
			if fk == nil || fk.Name == "" || fk.PrimaryTableName == "" || fk.PrimaryColumnName == "" {
				return &IntegrityError{
					Err:    ErrInvalidModel,
					Model:  model,
					Schema: table.Schema,
					Table:  table.Name,
					Column: column.Name,
					Detail: "foreign key needs a name, a primary table and a primary column",
				}
			}
		}

		if !column.PrimaryKey {
			continue
		}
		if other, taken := sequences[column.PrimaryKeySequenceID]; taken {
			return &IntegrityError{
				Err:    ErrAmbiguousPrimaryKey,
				Model:  model,
				Schema: table.Schema,
				Table:  table.Name,
				Column: column.Name,
				Detail: fmt.Sprintf("sequence id %d is also used by %s", column.PrimaryKeySequenceID, other),
			}
		}
		sequences[column.PrimaryKeySequenceID] = column.Name
	}
	return nil
}

func qualify(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}
