package apply

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	planCmd "github.com/schemasync/schemasync/cmd/plan"
	"github.com/schemasync/schemasync/cmd/util"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/executor"
	"github.com/schemasync/schemasync/internal/ignore"
	"github.com/schemasync/schemasync/internal/logger"
	"github.com/schemasync/schemasync/internal/plan"
	"github.com/spf13/cobra"
)

var (
	applyDialect       string
	applyExpected      string
	applyActual        string
	applyIgnore        string
	applyAutoApprove   bool
	applyNoColor       bool
	applyDryRun        bool
	applyNoTransaction bool
	applyLockTimeout   string
	applyConnection    = executor.ConnectionConfig{}
)

var ApplyCmd = &cobra.Command{
	Use:          "apply",
	Short:        "Apply migration plan to update a database schema",
	Long:         "Compute the migration plan that turns the actual schema model (--actual) into the expected one (--expected) and execute it against a PostgreSQL or MySQL database. Plans that drop objects are refused when either model enables safe mode.",
	RunE:         runApply,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithConnection(&applyDialect, &applyConnection),
}

func init() {
	ApplyCmd.Flags().StringVar(&applyDialect, "dialect", "", "Target dialect: mysql or postgres (env: SCHEMASYNC_DIALECT)")
	ApplyCmd.Flags().StringVar(&applyExpected, "expected", "", "Path to the desired schema model (required)")
	ApplyCmd.Flags().StringVar(&applyActual, "actual", "", "Path to the current schema model (required)")
	ApplyCmd.Flags().StringVar(&applyIgnore, "ignore-file", ignore.FileName, "TOML file listing table patterns to leave out of the comparison")

	// Database connection flags
	ApplyCmd.Flags().StringVar(&applyConnection.DSN, "dsn", "", "Driver connection string; overrides the individual connection flags (env: SCHEMASYNC_DSN)")
	ApplyCmd.Flags().StringVar(&applyConnection.Host, "host", "localhost", "Database server host (env: SCHEMASYNC_DB_HOST)")
	ApplyCmd.Flags().IntVar(&applyConnection.Port, "port", 0, "Database server port, 0 uses the dialect default (env: SCHEMASYNC_DB_PORT)")
	ApplyCmd.Flags().StringVar(&applyConnection.Database, "db", "", "Database name (env: SCHEMASYNC_DB_NAME)")
	ApplyCmd.Flags().StringVar(&applyConnection.User, "user", "", "Database user name (env: SCHEMASYNC_DB_USER)")
	ApplyCmd.Flags().StringVar(&applyConnection.Password, "password", "", "Database password (env: SCHEMASYNC_DB_PASSWORD)")
	ApplyCmd.Flags().StringVar(&applyConnection.SSLMode, "sslmode", "prefer", "PostgreSQL SSL mode")

	ApplyCmd.Flags().BoolVar(&applyAutoApprove, "auto-approve", false, "Apply changes without prompting for approval")
	ApplyCmd.Flags().BoolVar(&applyNoColor, "no-color", false, "Disable colored output")
	ApplyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show plan without applying changes")
	ApplyCmd.Flags().BoolVar(&applyNoTransaction, "no-transaction", false, "Execute statements one by one instead of in a single transaction (PostgreSQL)")
	ApplyCmd.Flags().StringVar(&applyLockTimeout, "lock-timeout", "", "Maximum time to wait for database locks (e.g., 30s, 5m, 1h)")

	ApplyCmd.MarkFlagRequired("expected")
	ApplyCmd.MarkFlagRequired("actual")
}

// ApplyConfig holds the settings of one apply run
type ApplyConfig struct {
	Plan          *planCmd.PlanConfig
	Connection    *executor.ConnectionConfig
	AutoApprove   bool
	NoColor       bool
	DryRun        bool
	NoTransaction bool
	LockTimeout   string
}

func runApply(cmd *cobra.Command, args []string) error {
	connection := applyConnection
	connection.ApplicationName = "schemasync"
	if connection.Port == 0 {
		connection.Port = defaultPort(applyDialect)
	}

	config := &ApplyConfig{
		Plan: &planCmd.PlanConfig{
			Dialect:      applyDialect,
			ExpectedFile: applyExpected,
			ActualFile:   applyActual,
			IgnoreFile:   applyIgnore,
		},
		Connection:    &connection,
		AutoApprove:   applyAutoApprove,
		NoColor:       applyNoColor,
		DryRun:        applyDryRun,
		NoTransaction: applyNoTransaction,
		LockTimeout:   applyLockTimeout,
	}

	migrationPlan, err := planCmd.GeneratePlan(config.Plan)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	connect := func(ctx context.Context, opts executor.Options) (executor.Executor, func() error, error) {
		conn, err := executor.Connect(ctx, config.Connection)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		exec, err := executor.NewSQLExecutor(conn, config.Connection.Dialect, opts)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return exec, conn.Close, nil
	}
	return ApplyPlan(ctx, config, migrationPlan, connect, os.Stdin, cmd.OutOrStdout())
}

// Connector opens an executor configured with opts. The returned function releases the connection.
type Connector func(ctx context.Context, opts executor.Options) (executor.Executor, func() error, error)

// ApplyPlan shows migrationPlan, asks for approval unless auto-approved and executes it.
// Plans that drop objects under safe mode are refused before anything is shown.
func ApplyPlan(ctx context.Context, config *ApplyConfig, migrationPlan *plan.Plan, connect Connector, in io.Reader, out io.Writer) error {
	if err := migrationPlan.CheckSafeMode(); err != nil {
		return err
	}

	if !migrationPlan.HasChanges() {
		fmt.Fprintln(out, "No changes to apply. Database schema is already up to date.")
		return nil
	}

	// Display the plan
	fmt.Fprint(out, migrationPlan.HumanColored(!config.NoColor))

	if config.DryRun {
		return nil
	}

	if !config.AutoApprove {
		fmt.Fprint(out, "\nDo you want to apply these changes? (yes/no): ")
		reader := bufio.NewReader(in)
		response, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read user input: %w", err)
		}

		response = strings.TrimSpace(strings.ToLower(response))
		if response != "yes" && response != "y" {
			fmt.Fprintln(out, "Apply cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "\nApplying changes...")

	opts := executor.Options{
		Transactional: migrationPlan.EnableTransaction && !config.NoTransaction,
		LockTimeout:   config.LockTimeout,
	}
	exec, release, err := connect(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if release != nil {
			if err := release(); err != nil {
				logger.Get().Debug("Failed to close connection", "error", err)
			}
		}
	}()

	if err := exec.Execute(ctx, migrationPlan.ToSQL()); err != nil {
		return err
	}

	fmt.Fprintln(out, "Changes applied successfully!")
	return nil
}

func defaultPort(name string) int {
	if d, err := dialect.Lookup(name); err == nil && d.Name == dialect.MySQL {
		return 3306
	}
	return 5432
}
