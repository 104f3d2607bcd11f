// Package kinetica renders Kinetica DDL.
package kinetica

import (
	"github.com/schemasync/schemasync/internal/ddl"
)

// Separator is placed between statements of a Kinetica script
const Separator = "\n"

// Generator renders Kinetica statements. Kinetica has no in-place foreign key change and
// needs DROP and ADD PRIMARY KEY in one statement, both of which the MySQL syntax covers.
type Generator struct {
	*ddl.ModifyGenerator
}

// NewGenerator creates a Kinetica generator
func NewGenerator() *Generator {
	return &Generator{ModifyGenerator: &ddl.ModifyGenerator{
		Decorator:  NewColumnDecorator(),
		Quote:      quote,
		Separator:  Separator,
		SetDefault: true,
	}}
}
