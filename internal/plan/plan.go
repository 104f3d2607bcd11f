package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/schemasync/schemasync/internal/color"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/internal/fingerprint"
	"github.com/schemasync/schemasync/internal/version"
	"github.com/schemasync/schemasync/ir"
)

// ErrSafeMode is returned when a plan that drops objects is checked against a model in safe mode
var ErrSafeMode = errors.New("safe mode is enabled and the plan drops objects")

// Plan represents the migration plan that turns the actual model into the expected one
type Plan struct {
	// Dialect the plan was rendered for
	Dialect string `json:"dialect"`

	// The ordered change set and the statements rendered from it
	Changes []diff.Change   `json:"-"`
	Steps   []diff.PlanStep `json:"steps"`

	// Separator placed between statements of the script
	Separator string `json:"-"`

	// SafeMode is set when either model asks for drops to be refused
	SafeMode bool `json:"safe_mode"`

	// SourceFingerprint identifies the actual model the plan was computed against
	SourceFingerprint *fingerprint.SchemaFingerprint `json:"source_fingerprint,omitempty"`

	// Plan metadata
	CreatedAt time.Time `json:"created_at"`

	// EnableTransaction indicates whether the script can run in one transaction.
	// MySQL commits implicitly after every DDL statement, so only PostgreSQL qualifies.
	EnableTransaction bool `json:"enable_transaction"`
}

// ObjectChange represents a single change to a database object
type ObjectChange struct {
	Address string `json:"address"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Schema  string `json:"schema,omitempty"`
	Table   string `json:"table,omitempty"`
	Change  Change `json:"change"`
}

// Change represents the actual change being made
type Change struct {
	Actions []string `json:"actions"`
}

// PlanJSON represents the structured JSON output format
type PlanJSON struct {
	Version           string                         `json:"version"`
	SchemasyncVersion string                         `json:"schemasync_version"`
	Dialect           string                         `json:"dialect"`
	CreatedAt         time.Time                      `json:"created_at"`
	Transaction       bool                           `json:"transaction"`
	SafeMode          bool                           `json:"safe_mode"`
	SourceFingerprint *fingerprint.SchemaFingerprint `json:"source_fingerprint,omitempty"`
	Summary           PlanSummary                    `json:"summary"`
	ObjectChanges     []ObjectChange                 `json:"object_changes"`
	Steps             []diff.PlanStep                `json:"steps"`
}

// PlanSummary provides counts of changes by type
type PlanSummary struct {
	Add     int                    `json:"add"`
	Change  int                    `json:"change"`
	Destroy int                    `json:"destroy"`
	Total   int                    `json:"total"`
	ByType  map[string]TypeSummary `json:"by_type"`
}

// TypeSummary provides counts for a specific object type
type TypeSummary struct {
	Add     int `json:"add"`
	Change  int `json:"change"`
	Destroy int `json:"destroy"`
}

// ObjectType is the plural label used for a change kind in summaries
type ObjectType string

const (
	ObjectTypeTable      ObjectType = "tables"
	ObjectTypeColumn     ObjectType = "columns"
	ObjectTypeForeignKey ObjectType = "foreign_keys"
)

// getObjectOrder returns the display order for object types
func getObjectOrder() []ObjectType {
	return []ObjectType{
		ObjectTypeTable,
		ObjectTypeColumn,
		ObjectTypeForeignKey,
	}
}

func objectTypeOf(kind diff.Kind) ObjectType {
	switch kind {
	case diff.KindColumn:
		return ObjectTypeColumn
	case diff.KindForeignKey:
		return ObjectTypeForeignKey
	default:
		return ObjectTypeTable
	}
}

func actionOf(status diff.Status) string {
	switch status {
	case diff.StatusAdd:
		return "create"
	case diff.StatusDrop:
		return "delete"
	default:
		return "update"
	}
}

// ========== PUBLIC METHODS ==========

// New computes the change set between expected and actual with the dialect's finder and
// renders it with the dialect's handler
func New(d *dialect.Dialect, expected, actual *ir.Database) (*Plan, error) {
	changes, err := d.Finder.FindChanges(expected, actual)
	if err != nil {
		return nil, err
	}
	steps, err := d.Handler.Steps(changes)
	if err != nil {
		return nil, err
	}
	source, err := fingerprint.ComputeFingerprint(actual)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Dialect:           d.Name,
		Changes:           changes,
		Steps:             steps,
		Separator:         d.Handler.Separator(),
		SafeMode:          expected.SafeMode || actual.SafeMode,
		SourceFingerprint: source,
		CreatedAt:         time.Now(),
		EnableTransaction: d.Name == dialect.Postgres,
	}, nil
}

// HasChanges reports whether the plan renders any statement
func (p *Plan) HasChanges() bool {
	return len(p.Steps) > 0
}

// HasDrops reports whether any change removes an object
func (p *Plan) HasDrops() bool {
	return diff.HasDrops(p.Changes)
}

// CheckSafeMode returns ErrSafeMode when safe mode is on and the plan drops objects
func (p *Plan) CheckSafeMode() error {
	if !p.SafeMode || !p.HasDrops() {
		return nil
	}
	var dropped []string
	for _, change := range p.Changes {
		if change.Status == diff.StatusDrop {
			dropped = append(dropped, fmt.Sprintf("%s %s", change.Kind, change.Path()))
		}
	}
	return fmt.Errorf("%w: %s", ErrSafeMode, strings.Join(dropped, ", "))
}

// CheckSource verifies that actual is still the model the plan was computed against
func (p *Plan) CheckSource(actual *ir.Database) error {
	if p.SourceFingerprint == nil {
		return nil
	}
	current, err := fingerprint.ComputeFingerprint(actual)
	if err != nil {
		return err
	}
	return fingerprint.Compare(p.SourceFingerprint, current)
}

// HumanColored returns a human-readable summary of the plan with color support
func (p *Plan) HumanColored(enableColor bool) string {
	c := color.New(enableColor)
	var summary strings.Builder

	planJSON := p.convertToStructuredJSON()

	if planJSON.Summary.Total == 0 {
		summary.WriteString("No changes detected.\n")
		return summary.String()
	}

	// Write header with overall summary (colored like Terraform)
	summary.WriteString(c.FormatPlanHeader(planJSON.Summary.Add, planJSON.Summary.Change, planJSON.Summary.Destroy) + "\n\n")

	summary.WriteString(c.Bold("Summary by type:") + "\n")
	for _, objType := range getObjectOrder() {
		objTypeStr := string(objType)
		if typeSummary, exists := planJSON.Summary.ByType[objTypeStr]; exists {
			summary.WriteString(c.FormatSummaryLine(objTypeStr, typeSummary.Add, typeSummary.Change, typeSummary.Destroy) + "\n")
		}
	}
	summary.WriteString("\n")

	// Detailed changes by type with symbols
	for _, objType := range getObjectOrder() {
		objTypeStr := string(objType)
		if _, exists := planJSON.Summary.ByType[objTypeStr]; exists {
			displayName := strings.ToUpper(objTypeStr[:1]) + strings.ReplaceAll(objTypeStr[1:], "_", " ")
			p.writeDetailedChanges(&summary, displayName, objType, c)
		}
	}

	fmt.Fprintf(&summary, "Transaction: %t\n\n", planJSON.Transaction)
	if p.SafeMode && p.HasDrops() {
		summary.WriteString(c.Destroy("Safe mode is enabled: this plan drops objects and will be refused.") + "\n\n")
	}

	summary.WriteString(c.Bold("DDL to be executed:") + "\n")
	summary.WriteString(strings.Repeat("-", 50) + "\n\n")
	if script := p.ToSQL(); script != "" {
		summary.WriteString(script)
		summary.WriteString("\n")
	} else {
		summary.WriteString("-- No DDL statements generated\n")
	}

	return summary.String()
}

// ToJSON returns the plan as structured JSON
func (p *Plan) ToJSON() (string, error) {
	planJSON := p.convertToStructuredJSON()

	data, err := json.MarshalIndent(planJSON, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}
	return string(data), nil
}

// ToSQL returns only the SQL statements, joined with the dialect separator
func (p *Plan) ToSQL() string {
	statements := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		statements = append(statements, step.SQL)
	}
	return strings.Join(statements, p.Separator)
}

// ========== PRIVATE METHODS ==========

// writeDetailedChanges writes the changes of one object type in plan order
func (p *Plan) writeDetailedChanges(summary *strings.Builder, displayName string, objType ObjectType, c *color.Color) {
	fmt.Fprintf(summary, "%s:\n", c.Bold(displayName))
	for _, change := range p.Changes {
		if objectTypeOf(change.Kind) != objType {
			continue
		}
		fmt.Fprintf(summary, "  %s %s\n", c.PlanSymbol(change.Status), change.Path())
	}
	summary.WriteString("\n")
}

// convertToStructuredJSON converts the change set to a structured JSON format
func (p *Plan) convertToStructuredJSON() *PlanJSON {
	planJSON := &PlanJSON{
		Version:           version.PlanFormat(),
		SchemasyncVersion: version.App(),
		Dialect:           p.Dialect,
		CreatedAt:         p.CreatedAt.Truncate(time.Second),
		Transaction:       p.EnableTransaction,
		SafeMode:          p.SafeMode,
		SourceFingerprint: p.SourceFingerprint,
		Summary: PlanSummary{
			ByType: make(map[string]TypeSummary),
		},
		ObjectChanges: []ObjectChange{},
		Steps:         p.Steps,
	}
	if planJSON.Steps == nil {
		planJSON.Steps = []diff.PlanStep{}
	}

	for _, change := range p.Changes {
		planJSON.ObjectChanges = append(planJSON.ObjectChanges, objectChange(change))
	}

	// Sort all object changes alphabetically by address for JSON output
	sort.SliceStable(planJSON.ObjectChanges, func(i, j int) bool {
		return planJSON.ObjectChanges[i].Address < planJSON.ObjectChanges[j].Address
	})

	p.calculateSummary(planJSON)
	return planJSON
}

func objectChange(change diff.Change) ObjectChange {
	objType := objectTypeOf(change.Kind)
	oc := ObjectChange{
		Address: string(objType) + "." + change.Path(),
		Type:    string(objType),
		Change:  Change{Actions: []string{actionOf(change.Status)}},
	}

	table := change.OwningTable()
	if table != nil {
		oc.Schema = table.Schema
	}
	switch change.Kind {
	case diff.KindTable:
		if table != nil {
			oc.Name = table.Name
		}
	case diff.KindColumn:
		oc.Table = table.Name
		if change.Column.Expected != nil {
			oc.Name = change.Column.Expected.Name
		} else {
			oc.Name = change.Column.Actual.Name
		}
	case diff.KindForeignKey:
		oc.Table = table.Name
		if change.ForeignKey.Expected != nil {
			oc.Name = change.ForeignKey.Expected.Name
		} else {
			oc.Name = change.ForeignKey.Actual.Name
		}
	}
	return oc
}

// calculateSummary counts actions per object type
func (p *Plan) calculateSummary(planJSON *PlanJSON) {
	for _, oc := range planJSON.ObjectChanges {
		typeSummary := planJSON.Summary.ByType[oc.Type]
		switch oc.Change.Actions[0] {
		case "create":
			typeSummary.Add++
			planJSON.Summary.Add++
		case "delete":
			typeSummary.Destroy++
			planJSON.Summary.Destroy++
		default:
			typeSummary.Change++
			planJSON.Summary.Change++
		}
		planJSON.Summary.ByType[oc.Type] = typeSummary
	}
	planJSON.Summary.Total = planJSON.Summary.Add + planJSON.Summary.Change + planJSON.Summary.Destroy
}
