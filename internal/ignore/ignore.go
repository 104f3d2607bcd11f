// Package ignore removes tables matching user patterns from schema models before they are diffed.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/schemasync/schemasync/ir"
)

// Config represents the configuration for ignoring tables
type Config struct {
	Tables []string
}

// ShouldIgnoreTable checks if a table should be ignored based on the patterns.
// Patterns are matched against the bare name and, for tables with a schema, "schema.name".
func (c *Config) ShouldIgnoreTable(table *ir.Table) bool {
	if c == nil || table == nil {
		return false
	}
	names := []string{table.Name}
	if table.Schema != "" {
		names = append(names, table.Schema+"."+table.Name)
	}
	return shouldIgnore(names, c.Tables)
}

// Filter returns a shallow copy of db without the ignored tables. Foreign keys of kept tables
// that reference an ignored table are left out too. db is returned as is when nothing is ignored.
func (c *Config) Filter(db *ir.Database) *ir.Database {
	if c == nil || db == nil || len(c.Tables) == 0 {
		return db
	}
	filtered := *db
	filtered.Tables = make([]*ir.Table, 0, len(db.Tables))
	for _, table := range db.Tables {
		if !c.ShouldIgnoreTable(table) {
			filtered.Tables = append(filtered.Tables, c.withoutIgnoredReferences(table))
		}
	}
	return &filtered
}

func (c *Config) referencesIgnored(fk *ir.ForeignKey) bool {
	return c.ShouldIgnoreTable(&ir.Table{Name: fk.PrimaryTableName, Schema: fk.PrimaryTableSchema})
}

// withoutIgnoredReferences copies table only when one of its foreign keys must go
func (c *Config) withoutIgnoredReferences(table *ir.Table) *ir.Table {
	dirty := false
	for _, fk := range table.ForeignKeys() {
		if c.referencesIgnored(fk) {
			dirty = true
			break
		}
	}
	if !dirty {
		return table
	}

	copied := *table
	copied.Columns = make([]*ir.Column, len(table.Columns))
	for i, column := range table.Columns {
		col := *column
		col.ForeignKeys = nil
		for _, fk := range column.ForeignKeys {
			if !c.referencesIgnored(fk) {
				col.ForeignKeys = append(col.ForeignKeys, fk)
			}
		}
		copied.Columns[i] = &col
	}
	return &copied
}

// shouldIgnore checks if any of names should be ignored based on the patterns.
// Patterns support wildcards (*) and negation (!); negations take precedence.
func shouldIgnore(names []string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := false
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchAny(pattern, names) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") && matchAny(pattern[1:], names) {
			return false
		}
	}
	return true
}

func matchAny(pattern string, names []string) bool {
	for _, name := range names {
		if matchPattern(pattern, name) {
			return true
		}
	}
	return false
}

// matchPattern matches a glob-style pattern against a string
func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		// If pattern is invalid, treat it as a literal match
		return pattern == name
	}
	return matched
}
