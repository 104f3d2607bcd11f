// Package schemasync provides a programmatic API for schema change detection and DDL generation.
// It compares an expected schema model with an actual one and renders the migration for a
// target dialect, with plan/compile/apply operations mirroring the CLI.
package schemasync

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/schemasync/schemasync/cmd/apply"
	"github.com/schemasync/schemasync/cmd/compile"
	planCmd "github.com/schemasync/schemasync/cmd/plan"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/executor"
	"github.com/schemasync/schemasync/internal/ignore"
	"github.com/schemasync/schemasync/internal/plan"
	"github.com/schemasync/schemasync/ir"
)

// DatabaseConfig holds connection details for the database a plan is applied to.
type DatabaseConfig struct {
	Dialect  string // Target dialect: kinetica, mysql or postgres
	DSN      string // Driver connection string (overrides the fields below)
	Host     string // Database server host
	Port     int    // Database server port
	Database string // Database name
	User     string // Database user
	Password string // Database password (optional)
	SSLMode  string // PostgreSQL SSL mode (default: "prefer")
}

// PlanOptions configures how migration planning is performed. Each model is taken from
// memory when set, otherwise it is loaded from its file.
type PlanOptions struct {
	Dialect      string       // Overrides the client dialect
	ExpectedFile string       // Path to the desired schema model
	ActualFile   string       // Path to the current schema model
	Expected     *ir.Database // Desired schema model (alternative to ExpectedFile)
	Actual       *ir.Database // Current schema model (alternative to ActualFile)
	IgnoreFile   string       // Optional TOML file of table patterns to leave out
}

// CompileOptions configures CREATE script rendering.
type CompileOptions struct {
	Dialect      string   // Overrides the client dialect
	Files        []string // Model files, rendered concurrently
	DropIfExists bool     // Drop every table before creating it
}

// ApplyOptions configures how migration application is performed.
type ApplyOptions struct {
	PlanOptions
	Plan          *plan.Plan // Pre-generated plan (alternative to PlanOptions)
	AutoApprove   bool       // Apply changes without prompting for approval
	NoColor       bool       // Disable colored output
	Quiet         bool       // Suppress plan display and progress messages
	NoTransaction bool       // Execute statement by statement (PostgreSQL)
	LockTimeout   string     // Maximum time to wait for database locks (e.g., "30s", "5m")
	Output        io.Writer  // Destination of plan and progress messages (default: stdout)
	Input         io.Reader  // Source of the approval answer (default: stdin)
}

// Client provides the main interface for schemasync operations.
type Client struct {
	// Default configuration that can be overridden by individual operations
	defaultDB  DatabaseConfig
	defaultApp string
}

// NewClient creates a new schemasync client with default database configuration.
func NewClient(dbConfig DatabaseConfig) *Client {
	if dbConfig.SSLMode == "" {
		dbConfig.SSLMode = "prefer"
	}
	return &Client{
		defaultDB:  dbConfig,
		defaultApp: "schemasync",
	}
}

func (c *Client) dialectName(override string) string {
	if override != "" {
		return override
	}
	return c.defaultDB.Dialect
}

// Plan computes the migration plan that turns the actual model into the expected one.
func (c *Client) Plan(ctx context.Context, opts PlanOptions) (*plan.Plan, error) {
	d, err := dialect.Lookup(c.dialectName(opts.Dialect))
	if err != nil {
		return nil, err
	}

	expected, err := loadModel(opts.Expected, opts.ExpectedFile, "expected")
	if err != nil {
		return nil, err
	}
	actual, err := loadModel(opts.Actual, opts.ActualFile, "actual")
	if err != nil {
		return nil, err
	}

	if opts.IgnoreFile != "" {
		ignoreConfig, err := ignore.LoadFromPath(opts.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load ignore file: %w", err)
		}
		expected = ignoreConfig.Filter(expected)
		actual = ignoreConfig.Filter(actual)
	}

	return planCmd.GeneratePlanFromModels(d, expected, actual)
}

// Compile renders the CREATE script of every model file. The result follows opts.Files.
func (c *Client) Compile(ctx context.Context, opts CompileOptions) ([]string, error) {
	return compile.CompileFiles(ctx, c.dialectName(opts.Dialect), opts.Files, opts.DropIfExists)
}

// Apply executes a migration plan against the client's database.
// You can either provide a pre-generated plan (opts.Plan) or the models to plan from.
func (c *Client) Apply(ctx context.Context, opts ApplyOptions) error {
	migrationPlan := opts.Plan
	if migrationPlan == nil {
		var err error
		migrationPlan, err = c.Plan(ctx, opts.PlanOptions)
		if err != nil {
			return err
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Quiet {
		out = io.Discard
	}
	in := opts.Input
	if in == nil {
		in = os.Stdin
	}

	connection := c.connectionConfig(migrationPlan.Dialect)
	config := &apply.ApplyConfig{
		Connection:    connection,
		AutoApprove:   opts.AutoApprove,
		NoColor:       opts.NoColor,
		NoTransaction: opts.NoTransaction,
		LockTimeout:   opts.LockTimeout,
	}

	connect := func(ctx context.Context, execOpts executor.Options) (executor.Executor, func() error, error) {
		conn, err := executor.Connect(ctx, connection)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		exec, err := executor.NewSQLExecutor(conn, connection.Dialect, execOpts)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return exec, conn.Close, nil
	}

	return apply.ApplyPlan(ctx, config, migrationPlan, connect, in, out)
}

func (c *Client) connectionConfig(dialectName string) *executor.ConnectionConfig {
	db := c.defaultDB
	port := db.Port
	if port == 0 {
		port = 5432
		if dialectName == dialect.MySQL {
			port = 3306
		}
	}
	return &executor.ConnectionConfig{
		Dialect:         dialectName,
		DSN:             db.DSN,
		Host:            db.Host,
		Port:            port,
		Database:        db.Database,
		User:            db.User,
		Password:        db.Password,
		SSLMode:         db.SSLMode,
		ApplicationName: c.defaultApp,
	}
}

func loadModel(model *ir.Database, path, role string) (*ir.Database, error) {
	if model != nil {
		return model, nil
	}
	if path == "" {
		return nil, fmt.Errorf("%s model is required", role)
	}
	db, err := ir.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s model: %w", role, err)
	}
	return db, nil
}
