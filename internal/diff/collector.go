package diff

import (
	"strings"
)

// SQLContext provides context about the SQL statement being generated
type SQLContext struct {
	ObjectType   Kind    // table, column or foreign_key
	Operation    Status  // ADD, DROP or MODIFY
	ObjectPath   string  // e.g., "schema.table" or "schema.table.column"
	SourceChange *Change // The change that generated this SQL
}

// NewSQLContext builds the collector context for a change
func NewSQLContext(change *Change) *SQLContext {
	return &SQLContext{
		ObjectType:   change.Kind,
		Operation:    change.Status,
		ObjectPath:   change.Path(),
		SourceChange: change,
	}
}

// PlanStep represents a single SQL statement with its source change
type PlanStep struct {
	SQL          string  `json:"sql"`
	ObjectType   Kind    `json:"object_type"`
	Operation    Status  `json:"operation"`
	ObjectPath   string  `json:"object_path"`
	SourceChange *Change `json:"-"`
}

// SQLCollector collects SQL statements with their context information
type SQLCollector struct {
	steps []PlanStep
}

// NewSQLCollector creates a new SQLCollector
func NewSQLCollector() *SQLCollector {
	return &SQLCollector{
		steps: []PlanStep{},
	}
}

// Collect collects a SQL statement with its context information.
// Blank statements are skipped.
func (c *SQLCollector) Collect(context *SQLContext, stmt string) {
	stmt = strings.TrimSpace(stmt)
	if context == nil || stmt == "" {
		return
	}
	c.steps = append(c.steps, PlanStep{
		SQL:          stmt,
		ObjectType:   context.ObjectType,
		Operation:    context.Operation,
		ObjectPath:   context.ObjectPath,
		SourceChange: context.SourceChange,
	})
}

// GetSteps returns all collected plan steps
func (c *SQLCollector) GetSteps() []PlanStep {
	return c.steps
}
