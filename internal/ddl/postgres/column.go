package postgres

import (
	"strings"

	"github.com/schemasync/schemasync/internal/ddl"
	"github.com/schemasync/schemasync/internal/diff"
)

var precisionTypes = ddl.Set(
	"bpchar", "char", "character", "varchar", "character varying",
	"bit", "varbit", "bit varying",
	"numeric", "decimal",
	"time", "timetz", "timestamp", "timestamptz", "interval",
)

// JDBC reports 131089 for unconstrained numeric and the maximum int for unbounded text
var defaultPrecisions = ddl.Set(0, 131089, 2147483647)

var scaleTypes = ddl.Set("numeric", "decimal")

// typeAliases maps PostgreSQL internal and verbose type names to the canonical spelling
var typeAliases = map[string]string{
	// Numeric types
	"int2":    "smallint",
	"int4":    "integer",
	"int":     "integer",
	"int8":    "bigint",
	"float4":  "real",
	"float8":  "double precision",
	"bool":    "boolean",
	"decimal": "numeric",

	// Character types
	"bpchar":            "character",
	"char":              "character",
	"character varying": "varchar",

	// Bit strings
	"bit varying": "varbit",

	// Date/time types
	"timestamp with time zone":    "timestamptz",
	"timestamp without time zone": "timestamp",
	"time with time zone":         "timetz",
	"time without time zone":      "time",

	// Serial types
	"serial4": "serial",
	"serial8": "bigserial",
	"serial2": "smallserial",
}

// normalizeType returns the canonical spelling of a PostgreSQL type name
func normalizeType(typeName string) string {
	typeName = strings.ToLower(strings.TrimSpace(typeName))
	typeName = strings.TrimPrefix(typeName, "pg_catalog.")

	// Internal array notation, e.g. _int4
	if element, found := strings.CutPrefix(typeName, "_"); found {
		return normalizeType(element) + "[]"
	}
	if normalized, exists := typeAliases[typeName]; exists {
		return normalized
	}
	return typeName
}

// NewColumnDecorator returns the PostgreSQL column decorator
func NewColumnDecorator() *ddl.TypeDecorator {
	return &ddl.TypeDecorator{
		Quote:             quoteIdentifier,
		PrecisionTypes:    precisionTypes,
		DefaultPrecisions: defaultPrecisions,
		ScaleTypes:        scaleTypes,
	}
}

// NewComparator returns the PostgreSQL comparator, which treats type aliases such as
// int4 and integer as the same type
func NewComparator() *diff.DefaultComparator {
	return &diff.DefaultComparator{
		NormalizeType: normalizeType,
		PrecisionMatters: func(typeName string) bool {
			return precisionTypes[typeName]
		},
	}
}
