package apply

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	planCmd "github.com/schemasync/schemasync/cmd/plan"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/executor"
	"github.com/schemasync/schemasync/internal/plan"
	"github.com/schemasync/schemasync/ir"
)

type recordingExecutor struct {
	scripts []string
	err     error
}

func (e *recordingExecutor) Execute(ctx context.Context, script string) error {
	e.scripts = append(e.scripts, script)
	return e.err
}

// recordingConnector hands out exec and remembers the options it was asked for
type recordingConnector struct {
	exec   *recordingExecutor
	opts   []executor.Options
	closed int
}

func (c *recordingConnector) connect(ctx context.Context, opts executor.Options) (executor.Executor, func() error, error) {
	c.opts = append(c.opts, opts)
	return c.exec, func() error { c.closed++; return nil }, nil
}

func usersTable(withEmail bool) *ir.Table {
	table := &ir.Table{Name: "users", Columns: []*ir.Column{
		{Name: "id", TypeName: "int4", PrimaryKey: true, PrimaryKeySequenceID: 1},
	}}
	if withEmail {
		table.Columns = append(table.Columns, &ir.Column{Name: "email", TypeName: "text", Nullable: true})
	}
	return table
}

func buildPlan(t *testing.T, name string, expected, actual *ir.Database) *plan.Plan {
	t.Helper()
	d, err := dialect.Lookup(name)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	migrationPlan, err := planCmd.GeneratePlanFromModels(d, expected, actual)
	if err != nil {
		t.Fatalf("GeneratePlanFromModels failed: %v", err)
	}
	return migrationPlan
}

func TestApplyCommand(t *testing.T) {
	if ApplyCmd.Use != "apply" {
		t.Errorf("Expected Use to be 'apply', got '%s'", ApplyCmd.Use)
	}

	flags := ApplyCmd.Flags()
	for _, name := range []string{"dialect", "expected", "actual", "dsn", "host", "port", "db", "user", "password", "auto-approve", "dry-run", "no-transaction", "lock-timeout", "no-color"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be defined", name)
		}
	}
	if hostFlag := flags.Lookup("host"); hostFlag.DefValue != "localhost" {
		t.Errorf("Expected default host to be 'localhost', got '%s'", hostFlag.DefValue)
	}
}

func TestApplyPlanAutoApprove(t *testing.T) {
	migrationPlan := buildPlan(t, "postgres",
		&ir.Database{Tables: []*ir.Table{usersTable(true)}},
		&ir.Database{Tables: []*ir.Table{usersTable(false)}})

	connector := &recordingConnector{exec: &recordingExecutor{}}
	var out bytes.Buffer
	config := &ApplyConfig{AutoApprove: true, NoColor: true, LockTimeout: "5s"}

	if err := ApplyPlan(context.Background(), config, migrationPlan, connector.connect, strings.NewReader(""), &out); err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}

	if len(connector.exec.scripts) != 1 || connector.exec.scripts[0] != migrationPlan.ToSQL() {
		t.Errorf("expected the plan script to be executed once, got %q", connector.exec.scripts)
	}
	if !connector.opts[0].Transactional || connector.opts[0].LockTimeout != "5s" {
		t.Errorf("unexpected executor options: %+v", connector.opts[0])
	}
	if connector.closed != 1 {
		t.Errorf("connection should be released once, got %d", connector.closed)
	}
	if !strings.Contains(out.String(), "Changes applied successfully!") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestApplyPlanNoTransaction(t *testing.T) {
	migrationPlan := buildPlan(t, "postgres",
		&ir.Database{Tables: []*ir.Table{usersTable(true)}},
		&ir.Database{Tables: []*ir.Table{usersTable(false)}})

	connector := &recordingConnector{exec: &recordingExecutor{}}
	config := &ApplyConfig{AutoApprove: true, NoColor: true, NoTransaction: true}
	if err := ApplyPlan(context.Background(), config, migrationPlan, connector.connect, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}
	if connector.opts[0].Transactional {
		t.Error("--no-transaction must disable the transaction")
	}
}

func TestApplyPlanPrompt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		executed bool
	}{
		{"yes", "yes\n", true},
		{"short yes", "Y\n", true},
		{"no", "no\n", false},
		{"empty input", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			migrationPlan := buildPlan(t, "mysql",
				&ir.Database{Tables: []*ir.Table{usersTable(true)}},
				&ir.Database{Tables: []*ir.Table{usersTable(false)}})

			connector := &recordingConnector{exec: &recordingExecutor{}}
			var out bytes.Buffer
			err := ApplyPlan(context.Background(), &ApplyConfig{NoColor: true}, migrationPlan, connector.connect, strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("ApplyPlan failed: %v", err)
			}
			if executed := len(connector.exec.scripts) > 0; executed != tt.executed {
				t.Errorf("executed = %v, want %v", executed, tt.executed)
			}
			if !tt.executed && !strings.Contains(out.String(), "Apply cancelled.") {
				t.Errorf("expected cancellation message, got:\n%s", out.String())
			}
		})
	}
}

func TestApplyPlanDryRun(t *testing.T) {
	migrationPlan := buildPlan(t, "kinetica",
		&ir.Database{Tables: []*ir.Table{usersTable(true)}},
		&ir.Database{Tables: []*ir.Table{usersTable(false)}})

	connector := &recordingConnector{exec: &recordingExecutor{}}
	var out bytes.Buffer
	if err := ApplyPlan(context.Background(), &ApplyConfig{DryRun: true, NoColor: true}, migrationPlan, connector.connect, nil, &out); err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}
	if len(connector.opts) != 0 {
		t.Error("dry run must not connect")
	}
	if !strings.Contains(out.String(), "DDL to be executed:") {
		t.Errorf("dry run should print the plan, got:\n%s", out.String())
	}
}

func TestApplyPlanRefusesDropsInSafeMode(t *testing.T) {
	migrationPlan := buildPlan(t, "postgres",
		&ir.Database{SafeMode: true, Tables: []*ir.Table{usersTable(false)}},
		&ir.Database{Tables: []*ir.Table{usersTable(true)}})

	connector := &recordingConnector{exec: &recordingExecutor{}}
	err := ApplyPlan(context.Background(), &ApplyConfig{AutoApprove: true}, migrationPlan, connector.connect, nil, &bytes.Buffer{})
	if !errors.Is(err, plan.ErrSafeMode) {
		t.Fatalf("expected ErrSafeMode, got %v", err)
	}
	if len(connector.opts) != 0 {
		t.Error("a refused plan must not connect")
	}
}

func TestApplyPlanWithoutChanges(t *testing.T) {
	model := &ir.Database{Tables: []*ir.Table{usersTable(true)}}
	migrationPlan := buildPlan(t, "postgres", model, model)

	connector := &recordingConnector{exec: &recordingExecutor{}}
	var out bytes.Buffer
	if err := ApplyPlan(context.Background(), &ApplyConfig{AutoApprove: true}, migrationPlan, connector.connect, nil, &out); err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}
	if len(connector.opts) != 0 {
		t.Error("an empty plan must not connect")
	}
	if !strings.Contains(out.String(), "No changes to apply") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestApplyPlanExecutionError(t *testing.T) {
	migrationPlan := buildPlan(t, "postgres",
		&ir.Database{Tables: []*ir.Table{usersTable(true)}},
		&ir.Database{Tables: []*ir.Table{usersTable(false)}})

	boom := errors.New("boom")
	connector := &recordingConnector{exec: &recordingExecutor{err: boom}}
	err := ApplyPlan(context.Background(), &ApplyConfig{AutoApprove: true, NoColor: true}, migrationPlan, connector.connect, nil, &bytes.Buffer{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the executor error, got %v", err)
	}
	if connector.closed != 1 {
		t.Error("connection should be released after a failure")
	}
}

func TestDefaultPort(t *testing.T) {
	if got := defaultPort("MySQL"); got != 3306 {
		t.Errorf("defaultPort(mysql) = %d", got)
	}
	if got := defaultPort("postgres"); got != 5432 {
		t.Errorf("defaultPort(postgres) = %d", got)
	}
}
