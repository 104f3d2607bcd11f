package diff

import (
	"strings"

	"github.com/schemasync/schemasync/ir"
)

// Comparator decides whether two matched entities differ enough to produce a MODIFY change.
// Each dialect supplies one; the finder never compares entities directly.
type Comparator interface {
	ColumnsEqual(expected, actual *ir.Column) bool
	ForeignKeysEqual(expected, actual *ir.ForeignKey) bool
}

// DefaultComparator compares columns on type, precision, nullability and primary key
// membership, and foreign keys on their target and delete rule. Descriptions, defaults
// and scale are cosmetic and never compared.
type DefaultComparator struct {
	// NormalizeType maps a type name to its canonical spelling. Nil compares verbatim.
	NormalizeType func(typeName string) string
	// PrecisionMatters reports whether precision is significant for a normalized type.
	// Nil treats precision as significant for every type.
	PrecisionMatters func(typeName string) bool
	// FoldIdentifiers compares referenced schema, table and column names case-insensitively.
	FoldIdentifiers bool
}

// ColumnsEqual implements Comparator
func (c *DefaultComparator) ColumnsEqual(expected, actual *ir.Column) bool {
	expectedType := c.normalize(expected.TypeName)
	if expectedType != c.normalize(actual.TypeName) {
		return false
	}
	if expected.Precision != actual.Precision && c.precisionMatters(expectedType) {
		return false
	}
	if expected.Nullable != actual.Nullable {
		return false
	}
	return expected.PrimaryKey == actual.PrimaryKey
}

// ForeignKeysEqual implements Comparator
func (c *DefaultComparator) ForeignKeysEqual(expected, actual *ir.ForeignKey) bool {
	if !c.sameIdentifier(expected.PrimaryTableSchema, actual.PrimaryTableSchema) ||
		!c.sameIdentifier(expected.PrimaryTableName, actual.PrimaryTableName) ||
		!c.sameIdentifier(expected.PrimaryColumnName, actual.PrimaryColumnName) {
		return false
	}
	return sameDeleteRule(expected, actual)
}

func (c *DefaultComparator) normalize(typeName string) string {
	typeName = strings.TrimSpace(typeName)
	if c.NormalizeType == nil {
		return typeName
	}
	return c.NormalizeType(typeName)
}

func (c *DefaultComparator) precisionMatters(typeName string) bool {
	if c.PrecisionMatters == nil {
		return true
	}
	return c.PrecisionMatters(typeName)
}

func (c *DefaultComparator) sameIdentifier(a, b string) bool {
	if c.FoldIdentifiers {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// sameDeleteRule compares parsed rule codes so that "3" and " 3" are equal.
// Unparseable codes fall back to comparing the raw text.
func sameDeleteRule(expected, actual *ir.ForeignKey) bool {
	expectedRule, expectedOK := expected.Rule()
	actualRule, actualOK := actual.Rule()
	if expectedOK && actualOK {
		return expectedRule == actualRule
	}
	if expectedOK != actualOK {
		return false
	}
	return strings.TrimSpace(expected.DeleteRule) == strings.TrimSpace(actual.DeleteRule)
}
