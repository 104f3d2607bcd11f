package ddl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/schemasync/schemasync/internal/diff"
)

var (
	// ErrUnsupportedChange is returned for a kind/status pair the handler has no renderer for
	ErrUnsupportedChange = errors.New("unsupported change")
	// ErrMalformedChange is returned when a change is missing the payload its kind and status require
	ErrMalformedChange = errors.New("malformed change")
)

type renderFunc func(g Generator, change diff.Change) (string, error)

// renderers is the full kind × status dispatch table
var renderers = map[diff.Kind]map[diff.Status]renderFunc{
	diff.KindTable: {
		diff.StatusAdd:    renderCreateTable,
		diff.StatusDrop:   renderDropTable,
		diff.StatusModify: renderAlterTable,
	},
	diff.KindColumn: {
		diff.StatusAdd:    renderAddColumn,
		diff.StatusDrop:   renderDropColumn,
		diff.StatusModify: renderAlterColumn,
	},
	diff.KindForeignKey: {
		diff.StatusAdd:    renderCreateForeignKey,
		diff.StatusDrop:   renderDropForeignKey,
		diff.StatusModify: renderAlterForeignKey,
	},
}

// Handler turns an ordered change set into a script for one dialect
type Handler struct {
	generator Generator
	separator string
}

// NewHandler creates a Handler that renders with generator and joins statements with separator
func NewHandler(generator Generator, separator string) *Handler {
	return &Handler{generator: generator, separator: separator}
}

// Generator returns the generator the handler renders with
func (h *Handler) Generator() Generator {
	return h.generator
}

// Separator returns the string placed between statements
func (h *Handler) Separator() string {
	return h.separator
}

// CreateDDLForChanges renders the changes in the given order. Changes that need no SQL
// contribute nothing; an empty change set renders "".
func (h *Handler) CreateDDLForChanges(changes []diff.Change) (string, error) {
	steps, err := h.Steps(changes)
	if err != nil {
		return "", err
	}
	statements := make([]string, 0, len(steps))
	for _, step := range steps {
		statements = append(statements, step.SQL)
	}
	return strings.Join(statements, h.separator), nil
}

// Steps renders each change into a plan step. Changes that need no SQL produce no step.
func (h *Handler) Steps(changes []diff.Change) ([]diff.PlanStep, error) {
	collector := diff.NewSQLCollector()
	for i := range changes {
		change := &changes[i]
		sql, err := h.render(*change)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", change, err)
		}
		collector.Collect(diff.NewSQLContext(change), sql)
	}
	return collector.GetSteps(), nil
}

func (h *Handler) render(change diff.Change) (string, error) {
	byStatus, ok := renderers[change.Kind]
	if !ok {
		return "", fmt.Errorf("%w: kind %q", ErrUnsupportedChange, change.Kind)
	}
	render, ok := byStatus[change.Status]
	if !ok {
		return "", fmt.Errorf("%w: status %q for %s", ErrUnsupportedChange, change.Status, change.Kind)
	}
	if err := checkPayload(change); err != nil {
		return "", err
	}
	return render(h.generator, change)
}

// checkPayload verifies that the sides required by the status are present
func checkPayload(change diff.Change) error {
	var hasExpected, hasActual, hasOwner bool
	switch change.Kind {
	case diff.KindTable:
		if change.Table == nil {
			return fmt.Errorf("%w: table change without payload", ErrMalformedChange)
		}
		hasExpected, hasActual, hasOwner = change.Table.Expected != nil, change.Table.Actual != nil, true
	case diff.KindColumn:
		if change.Column == nil {
			return fmt.Errorf("%w: column change without payload", ErrMalformedChange)
		}
		hasExpected, hasActual, hasOwner = change.Column.Expected != nil, change.Column.Actual != nil, change.Column.Table != nil
	case diff.KindForeignKey:
		if change.ForeignKey == nil {
			return fmt.Errorf("%w: foreign key change without payload", ErrMalformedChange)
		}
		hasExpected, hasActual, hasOwner = change.ForeignKey.Expected != nil, change.ForeignKey.Actual != nil, true
	}

	if !hasOwner {
		return fmt.Errorf("%w: %s change without owning table", ErrMalformedChange, change.Kind)
	}
	switch change.Status {
	case diff.StatusAdd:
		if !hasExpected {
			return fmt.Errorf("%w: ADD %s without expected side", ErrMalformedChange, change.Kind)
		}
	case diff.StatusDrop:
		if !hasActual {
			return fmt.Errorf("%w: DROP %s without actual side", ErrMalformedChange, change.Kind)
		}
	case diff.StatusModify:
		if !hasExpected || !hasActual {
			return fmt.Errorf("%w: MODIFY %s needs both sides", ErrMalformedChange, change.Kind)
		}
	}
	return nil
}

func renderCreateTable(g Generator, change diff.Change) (string, error) {
	return g.CreateTable(change.Table.Expected, false), nil
}

func renderDropTable(g Generator, change diff.Change) (string, error) {
	return g.DropTable(change.Table.Actual), nil
}

func renderAlterTable(g Generator, change diff.Change) (string, error) {
	return g.AlterTable(change.Table.Expected, change.Table.Actual), nil
}

func renderAddColumn(g Generator, change diff.Change) (string, error) {
	return g.AddColumn(change.Column), nil
}

func renderDropColumn(g Generator, change diff.Change) (string, error) {
	return g.DropColumn(change.Column), nil
}

func renderAlterColumn(g Generator, change diff.Change) (string, error) {
	return g.AlterColumn(change.Column), nil
}

func renderCreateForeignKey(g Generator, change diff.Change) (string, error) {
	fk := change.ForeignKey
	return g.CreateForeignKey(OwnedForeignKey(fk.Table, fk.Column, fk.Expected)), nil
}

func renderDropForeignKey(g Generator, change diff.Change) (string, error) {
	fk := change.ForeignKey
	return g.DropForeignKey(OwnedForeignKey(fk.Table, fk.Column, fk.Actual)), nil
}

func renderAlterForeignKey(g Generator, change diff.Change) (string, error) {
	fk := change.ForeignKey
	return g.AlterForeignKey(&diff.ForeignKeyChange{
		Table:    fk.Table,
		Column:   fk.Column,
		Expected: OwnedForeignKey(fk.Table, fk.Column, fk.Expected),
		Actual:   OwnedForeignKey(fk.Table, fk.Column, fk.Actual),
	}), nil
}
