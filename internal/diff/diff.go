package diff

import (
	"errors"
	"fmt"

	"github.com/schemasync/schemasync/internal/logger"
	"github.com/schemasync/schemasync/ir"
)

// ErrNoComparator is returned by FindChanges when the finder was built without a comparator
var ErrNoComparator = errors.New("finder has no comparator")

// Finder computes the ordered change set that turns the actual model into the expected one.
// It is dialect-agnostic; everything dialect specific lives in the Comparator.
type Finder struct {
	comparator Comparator
}

// NewFinder creates a Finder that detects modifications with the given comparator
func NewFinder(comparator Comparator) *Finder {
	return &Finder{comparator: comparator}
}

// Comparator returns the comparator the finder was configured with
func (f *Finder) Comparator() Comparator {
	return f.comparator
}

// FindChanges compares expected (the desired target) with actual (the current state).
// Objects only in expected are added, objects only in actual are dropped. The result is
// ordered so that executing it front to back never violates a referential constraint.
// Models that fail integrity checks are rejected before any change is produced.
func (f *Finder) FindChanges(expected, actual *ir.Database) ([]Change, error) {
	if f == nil || f.comparator == nil {
		return nil, ErrNoComparator
	}
	if err := ir.ValidatePair(expected, actual); err != nil {
		return nil, fmt.Errorf("failed to compare models: %w", err)
	}

	set := newChangeSet()
	f.diffTables(set, expected, actual)
	changes := set.ordered()

	logger.Get().Debug("Changes found",
		"changes", len(changes),
		"expected_tables", len(expected.Tables),
		"actual_tables", len(actual.Tables))
	return changes, nil
}

// diffTables matches tables by (schema, name) and collects table-level changes
func (f *Finder) diffTables(set *changeSet, expected, actual *ir.Database) {
	actualTables := make(map[string]*ir.Table, len(actual.Tables))
	for _, table := range actual.Tables {
		actualTables[table.Key()] = table
	}
	expectedTables := make(map[string]*ir.Table, len(expected.Tables))
	for _, table := range expected.Tables {
		expectedTables[table.Key()] = table
	}

	// Find dropped tables
	for _, table := range actual.Tables {
		if _, exists := expectedTables[table.Key()]; !exists {
			set.droppedTables = append(set.droppedTables, table)
		}
	}

	// Find added and matched tables
	for _, table := range expected.Tables {
		actualTable, exists := actualTables[table.Key()]
		if !exists {
			set.addedTables = append(set.addedTables, table)
			for _, column := range table.Columns {
				for _, fk := range column.ForeignKeys {
					set.fkAdds = append(set.fkAdds, NewForeignKeyChange(StatusAdd, table, column, fk, nil))
				}
			}
			continue
		}
		f.diffTable(set, table, actualTable)
	}
}

// diffTable collects column, foreign key and primary key changes of a matched table
func (f *Finder) diffTable(set *changeSet, expected, actual *ir.Table) {
	// Find dropped columns
	for _, column := range actual.Columns {
		if expected.Column(column.Name) != nil {
			continue
		}
		for _, fk := range column.ForeignKeys {
			set.fkDrops = append(set.fkDrops, NewForeignKeyChange(StatusDrop, actual, column, nil, fk))
		}
		set.columnDrops = append(set.columnDrops, NewColumnChange(StatusDrop, actual, nil, column))
		set.markColumn(actual, column.Name)
	}

	// Find added and modified columns
	for _, column := range expected.Columns {
		actualColumn := actual.Column(column.Name)
		if actualColumn == nil {
			set.columnAdds = append(set.columnAdds, NewColumnChange(StatusAdd, expected, column, nil))
			for _, fk := range column.ForeignKeys {
				set.fkAdds = append(set.fkAdds, NewForeignKeyChange(StatusAdd, expected, column, fk, nil))
			}
			continue
		}

		if !f.comparator.ColumnsEqual(column, actualColumn) {
			set.columnModifies = append(set.columnModifies, NewColumnChange(StatusModify, expected, column, actualColumn))
			set.markColumn(expected, column.Name)
		}
		f.diffForeignKeys(set, expected, actual, column, actualColumn)
	}

	if !samePrimaryKey(expected, actual) {
		set.tableModifies = append(set.tableModifies, NewTableChange(StatusModify, expected, actual))
		set.rekeyed[expected.Key()] = true
	}
}

// diffForeignKeys collects foreign key changes of a matched column.
// Matched keys are held back until every table and column change is known.
func (f *Finder) diffForeignKeys(set *changeSet, expectedTable, actualTable *ir.Table, expected, actual *ir.Column) {
	for _, fk := range actual.ForeignKeys {
		if expected.ForeignKey(fk.Name) == nil {
			set.fkDrops = append(set.fkDrops, NewForeignKeyChange(StatusDrop, actualTable, actual, nil, fk))
		}
	}

	for _, fk := range expected.ForeignKeys {
		actualFK := actual.ForeignKey(fk.Name)
		if actualFK == nil {
			set.fkAdds = append(set.fkAdds, NewForeignKeyChange(StatusAdd, expectedTable, expected, fk, nil))
			continue
		}
		set.matchedKeys = append(set.matchedKeys, pendingForeignKey{
			expectedTable:  expectedTable,
			actualTable:    actualTable,
			expectedColumn: expected,
			actualColumn:   actual,
			expected:       fk,
			actual:         actualFK,
			unchanged:      f.comparator.ForeignKeysEqual(fk, actualFK),
		})
	}
}

// samePrimaryKey compares the expected primary key with the actual primary key restricted
// to columns that survive in the expected table
func samePrimaryKey(expected, actual *ir.Table) bool {
	expectedPK := expected.PrimaryKeyColumns()

	var survivingPK []*ir.Column
	for _, column := range actual.PrimaryKeyColumns() {
		if expected.Column(column.Name) != nil {
			survivingPK = append(survivingPK, column)
		}
	}

	if len(expectedPK) != len(survivingPK) {
		return false
	}
	for i := range expectedPK {
		if expectedPK[i].Name != survivingPK[i].Name {
			return false
		}
	}
	return true
}
