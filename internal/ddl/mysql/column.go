package mysql

import (
	"strings"

	"github.com/schemasync/schemasync/internal/ddl"
	"github.com/schemasync/schemasync/internal/diff"
)

// Types whose precision is rendered as a length or fractional-second suffix
var precisionTypes = ddl.Set(
	"char", "varchar", "binary", "varbinary", "bit",
	"decimal", "numeric", "float",
	"datetime", "timestamp", "time",
)

var defaultPrecisions = ddl.Set(0)

var scaleTypes = ddl.Set("decimal", "numeric")

// quote wraps an identifier in backticks
func quote(identifier string) string {
	return "`" + strings.ReplaceAll(identifier, "`", "``") + "`"
}

// NewColumnDecorator returns the MySQL column decorator
func NewColumnDecorator() *ddl.TypeDecorator {
	return &ddl.TypeDecorator{
		Quote:             quote,
		PrecisionTypes:    precisionTypes,
		DefaultPrecisions: defaultPrecisions,
		ScaleTypes:        scaleTypes,
	}
}

// NewComparator returns the MySQL comparator. Type names are case-insensitive and
// precision only counts for types that render it.
func NewComparator() *diff.DefaultComparator {
	return &diff.DefaultComparator{
		NormalizeType:    strings.ToLower,
		PrecisionMatters: func(typeName string) bool { return precisionTypes[typeName] },
	}
}
