package ddl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/ir"
)

// recordingGenerator renders every construct as a short tag naming the method
type recordingGenerator struct{}

func (recordingGenerator) CreateColumn(column *ir.Column) string { return "column " + column.Name }
func (recordingGenerator) CreateTable(table *ir.Table, dropIfExists bool) string {
	return "create table " + table.Name + ";"
}
func (recordingGenerator) CreateDatabase(db *ir.Database, dropIfExists bool) string { return "" }
func (recordingGenerator) CreateForeignKey(fk *ir.ForeignKey) string {
	return "add fk " + fk.Name + " on " + fk.TableName + "." + fk.ColumnName + ";"
}
func (recordingGenerator) DropForeignKey(fk *ir.ForeignKey) string {
	return "drop fk " + fk.Name + " on " + fk.TableName + ";"
}
func (recordingGenerator) AlterForeignKey(change *diff.ForeignKeyChange) string {
	return "alter fk " + change.Expected.Name + " on " + change.Expected.TableName + ";"
}
func (recordingGenerator) AlterTable(expected, actual *ir.Table) string {
	return "alter table " + expected.Name + ";"
}
func (recordingGenerator) AlterColumn(change *diff.ColumnChange) string {
	if change.Expected.TypeName == change.Actual.TypeName {
		return ""
	}
	return "alter column " + change.Expected.Name + ";"
}
func (recordingGenerator) AddColumn(change *diff.ColumnChange) string {
	return "add column " + change.Expected.Name + ";"
}
func (recordingGenerator) DropColumn(change *diff.ColumnChange) string {
	return "drop column " + change.Actual.Name + ";"
}
func (recordingGenerator) DropTable(table *ir.Table) string { return "drop table " + table.Name + ";" }

func TestHandlerDispatchesEveryKindAndStatus(t *testing.T) {
	player := &ir.Table{Name: "player"}
	id := &ir.Column{Name: "id", TypeName: "int"}
	wider := &ir.Column{Name: "id", TypeName: "bigint"}
	fk := &ir.ForeignKey{Name: "player_fk", PrimaryTableName: "team", PrimaryColumnName: "id"}

	changes := []diff.Change{
		diff.NewForeignKeyChange(diff.StatusDrop, player, id, nil, fk),
		diff.NewColumnChange(diff.StatusDrop, player, nil, id),
		diff.NewTableChange(diff.StatusDrop, nil, player),
		diff.NewTableChange(diff.StatusAdd, player, nil),
		diff.NewColumnChange(diff.StatusAdd, player, id, nil),
		diff.NewColumnChange(diff.StatusModify, player, wider, id),
		diff.NewTableChange(diff.StatusModify, player, player),
		diff.NewForeignKeyChange(diff.StatusAdd, player, id, fk, nil),
		diff.NewForeignKeyChange(diff.StatusModify, player, id, fk, fk),
	}

	got, err := NewHandler(recordingGenerator{}, "\n").CreateDDLForChanges(changes)
	if err != nil {
		t.Fatalf("CreateDDLForChanges failed: %v", err)
	}

	want := "drop fk player_fk on player;\n" +
		"drop column id;\n" +
		"drop table player;\n" +
		"create table player;\n" +
		"add column id;\n" +
		"alter column id;\n" +
		"alter table player;\n" +
		"add fk player_fk on player.id;\n" +
		"alter fk player_fk on player;"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}

	if fk.TableName != "" {
		t.Error("rendering must not mutate the model")
	}
}

func TestHandlerSkipsEmptyFragments(t *testing.T) {
	player := &ir.Table{Name: "player"}
	id := &ir.Column{Name: "id", TypeName: "int", Description: "new"}
	old := &ir.Column{Name: "id", TypeName: "int", Description: "old"}
	name := &ir.Column{Name: "name", TypeName: "text"}

	changes := []diff.Change{
		diff.NewColumnChange(diff.StatusModify, player, id, old),
		diff.NewColumnChange(diff.StatusAdd, player, name, nil),
		diff.NewColumnChange(diff.StatusModify, player, id, old),
	}

	handler := NewHandler(recordingGenerator{}, "\n\n")
	got, err := handler.CreateDDLForChanges(changes)
	if err != nil {
		t.Fatalf("CreateDDLForChanges failed: %v", err)
	}
	if got != "add column name;" {
		t.Errorf("expected only the ADD COLUMN statement, got %q", got)
	}

	steps, err := handler.Steps(changes)
	if err != nil {
		t.Fatalf("Steps failed: %v", err)
	}
	if len(steps) != 1 || steps[0].ObjectPath != "player.name" || steps[0].Operation != diff.StatusAdd {
		t.Errorf("unexpected steps: %+v", steps)
	}
}

func TestHandlerEmptyChangeSet(t *testing.T) {
	got, err := NewHandler(recordingGenerator{}, "\n").CreateDDLForChanges(nil)
	if err != nil {
		t.Fatalf("CreateDDLForChanges failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty script, got %q", got)
	}
}

func TestHandlerRejectsBadChanges(t *testing.T) {
	player := &ir.Table{Name: "player"}

	tests := []struct {
		name    string
		change  diff.Change
		wantErr error
	}{
		{
			name:    "unknown kind",
			change:  diff.Change{Kind: "index", Status: diff.StatusAdd},
			wantErr: ErrUnsupportedChange,
		},
		{
			name:    "unknown status",
			change:  diff.Change{Kind: diff.KindTable, Status: "RENAME", Table: &diff.TableChange{Expected: player}},
			wantErr: ErrUnsupportedChange,
		},
		{
			name:    "missing payload",
			change:  diff.Change{Kind: diff.KindColumn, Status: diff.StatusAdd},
			wantErr: ErrMalformedChange,
		},
		{
			name:    "drop without actual side",
			change:  diff.NewTableChange(diff.StatusDrop, player, nil),
			wantErr: ErrMalformedChange,
		},
		{
			name:    "modify with one side",
			change:  diff.NewColumnChange(diff.StatusModify, player, &ir.Column{Name: "id"}, nil),
			wantErr: ErrMalformedChange,
		},
		{
			name:    "column without owning table",
			change:  diff.NewColumnChange(diff.StatusAdd, nil, &ir.Column{Name: "id"}, nil),
			wantErr: ErrMalformedChange,
		},
	}

	handler := NewHandler(recordingGenerator{}, "\n")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.CreateDDLForChanges([]diff.Change{tt.change})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
