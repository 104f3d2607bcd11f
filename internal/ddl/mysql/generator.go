// Package mysql renders MySQL DDL.
package mysql

import (
	"github.com/schemasync/schemasync/internal/ddl"
)

// Separator is placed between statements of a MySQL script
const Separator = "\n"

// Generator renders MySQL statements. Identifiers are quoted with backticks and
// SET DEFAULT, which InnoDB rejects, is left out of foreign keys.
type Generator struct {
	*ddl.ModifyGenerator
}

// NewGenerator creates a MySQL generator
func NewGenerator() *Generator {
	return &Generator{ModifyGenerator: &ddl.ModifyGenerator{
		Decorator: NewColumnDecorator(),
		Quote:     quote,
		Separator: Separator,
	}}
}
