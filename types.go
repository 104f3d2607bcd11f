package schemasync

import (
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/internal/plan"
	"github.com/schemasync/schemasync/ir"
)

// Re-export important types for external consumption

// Plan represents a migration plan that can be applied to a database.
type Plan = plan.Plan

// Database is the schema model of one database.
type Database = ir.Database

// Table represents a table with its columns and indices.
type Table = ir.Table

// Column represents a table column. Foreign keys are owned by their referencing column.
type Column = ir.Column

// ForeignKey represents a single-column referential constraint.
type ForeignKey = ir.ForeignKey

// Index represents a table index.
type Index = ir.Index

// Change is one detected difference between two models.
type Change = diff.Change

// ErrSafeMode is returned by Apply when a plan drops objects while safe mode is enabled.
var ErrSafeMode = plan.ErrSafeMode
