package postgres

import (
	"strings"
	"unicode"

	"github.com/lib/pq"
	"github.com/schemasync/schemasync/internal/ddl"
)

// PostgreSQL reserved words that need quoting
// Based on PostgreSQL 17 documentation: https://www.postgresql.org/docs/current/sql-keywords-appendix.html
var reservedWords = ddl.Set(
	"all", "and", "any", "array", "as", "asymmetric", "authorization", "between", "bigint",
	"binary", "boolean", "both", "by", "case", "cast", "char", "character", "check", "collate",
	"collation", "column", "constraint", "create", "cross", "current_catalog", "current_date",
	"current_role", "current_schema", "current_time", "current_timestamp", "current_user",
	"default", "deferrable", "delete", "distinct", "do", "else", "end", "except", "exists",
	"false", "fetch", "filter", "for", "foreign", "freeze", "from", "grant", "group", "having",
	"ilike", "in", "initially", "inner", "insert", "intersect", "into", "is", "isnull",
	"join", "lateral", "left", "like", "limit", "natural", "not", "null", "of", "offset",
	"on", "only", "or", "order", "outer", "primary", "references", "returning", "right",
	"select", "similar", "some", "symmetric", "system_user", "table", "tablesample", "then",
	"to", "trailing", "true", "union", "unique", "update", "user", "using", "variadic",
	"verbose", "when", "where", "window", "with", "within",
)

// needsQuoting checks if an identifier needs to be quoted
func needsQuoting(identifier string) bool {
	if identifier == "" {
		return false
	}

	if reservedWords[strings.ToLower(identifier)] {
		return true
	}

	// PostgreSQL folds unquoted identifiers to lowercase
	for _, r := range identifier {
		if unicode.IsUpper(r) {
			return true
		}
	}

	for i, r := range identifier {
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}

	return false
}

// quoteIdentifier adds quotes to an identifier if needed
func quoteIdentifier(identifier string) string {
	if needsQuoting(identifier) {
		return pq.QuoteIdentifier(identifier)
	}
	return identifier
}

// quoteSchema always quotes, schema names are kept exactly as modelled
func quoteSchema(schema string) string {
	return pq.QuoteIdentifier(schema)
}

func tableName(schema, name string) string {
	return ddl.QualifiedName(schema, name, quoteSchema, quoteIdentifier)
}
