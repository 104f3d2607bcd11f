package ddl

import (
	"fmt"
	"strings"

	"github.com/schemasync/schemasync/ir"
)

// TypeDecorator is the ColumnDecorator shared by the dialects. Dialects differ only in
// how identifiers are quoted, which types carry a precision and which precision
// values are defaults that are left out.
type TypeDecorator struct {
	Quote             func(identifier string) string
	PrecisionTypes    map[string]bool
	DefaultPrecisions map[int]bool
	// ScaleTypes lists the precision types that also render a non-zero scale, e.g. decimal(10,2)
	ScaleTypes map[string]bool
}

// TypeName implements ColumnDecorator
func (d *TypeDecorator) TypeName(column *ir.Column) string {
	typeName := strings.TrimSpace(column.TypeName)
	base := strings.ToLower(typeName)
	if !d.PrecisionTypes[base] || d.DefaultPrecisions[column.Precision] {
		return typeName
	}
	if column.Scale > 0 && d.ScaleTypes[base] {
		return fmt.Sprintf("%s(%d,%d)", typeName, column.Precision, column.Scale)
	}
	return fmt.Sprintf("%s(%d)", typeName, column.Precision)
}

// Declaration implements ColumnDecorator
func (d *TypeDecorator) Declaration(column *ir.Column) string {
	parts := []string{d.Quote(column.Name), d.TypeName(column)}
	if !column.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if column.ColumnDefault != "" {
		parts = append(parts, "DEFAULT "+column.ColumnDefault)
	}
	return strings.Join(parts, " ")
}

// Set builds a lookup set from its arguments
func Set[T comparable](values ...T) map[T]bool {
	set := make(map[T]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}
