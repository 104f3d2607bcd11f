package kinetica

import (
	"strings"

	"github.com/schemasync/schemasync/internal/ddl"
	"github.com/schemasync/schemasync/internal/diff"
)

var precisionTypes = ddl.Set("char", "varchar", "decimal", "numeric")

// Kinetica reports unbounded strings with -1 or the maximum int
var defaultPrecisions = ddl.Set(0, -1, 2147483647)

var scaleTypes = ddl.Set("decimal", "numeric")

// quote wraps an identifier in double quotes
func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// NewColumnDecorator returns the Kinetica column decorator
func NewColumnDecorator() *ddl.TypeDecorator {
	return &ddl.TypeDecorator{
		Quote:             quote,
		PrecisionTypes:    precisionTypes,
		DefaultPrecisions: defaultPrecisions,
		ScaleTypes:        scaleTypes,
	}
}

// NewComparator returns the Kinetica comparator. Kinetica reports type and identifier names
// in varying case, so both are compared case-insensitively.
func NewComparator() *diff.DefaultComparator {
	return &diff.DefaultComparator{
		NormalizeType:    strings.ToLower,
		PrecisionMatters: func(typeName string) bool { return precisionTypes[typeName] },
		FoldIdentifiers:  true,
	}
}
