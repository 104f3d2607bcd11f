// Package executor hands a rendered script to a live database.
//
// The engine never executes SQL itself; this package is the boundary where a finished
// script meets a connection. Kinetica has no database/sql driver and is rejected.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/logger"
)

// ErrUnsupportedDialect is returned for dialects that cannot be executed against
var ErrUnsupportedDialect = errors.New("dialect cannot be executed")

// Executor runs a script against a database
type Executor interface {
	Execute(ctx context.Context, script string) error
}

// Options controls how a script is executed
type Options struct {
	// Transactional runs the whole script in one transaction. Only PostgreSQL supports
	// transactional DDL; MySQL ignores it.
	Transactional bool
	// LockTimeout is applied with SET lock_timeout before executing (PostgreSQL only)
	LockTimeout string
}

// SQLExecutor executes scripts over database/sql
type SQLExecutor struct {
	db      *sql.DB
	dialect string
	opts    Options
}

var _ Executor = (*SQLExecutor)(nil)

// NewSQLExecutor creates an executor for the dialect
func NewSQLExecutor(db *sql.DB, dialectName string, opts Options) (*SQLExecutor, error) {
	name := strings.ToLower(strings.TrimSpace(dialectName))
	if name != dialect.Postgres && name != dialect.MySQL {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, dialectName)
	}
	return &SQLExecutor{db: db, dialect: name, opts: opts}, nil
}

// Execute runs script. An empty script is a no-op.
func (e *SQLExecutor) Execute(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return nil
	}

	if e.dialect == dialect.Postgres && e.opts.LockTimeout != "" {
		if _, err := e.db.ExecContext(ctx, fmt.Sprintf("SET lock_timeout = '%s'", e.opts.LockTimeout)); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	switch {
	case e.dialect == dialect.Postgres && e.opts.Transactional:
		return e.executeInTransaction(ctx, script)
	case e.dialect == dialect.Postgres:
		return e.executeStatements(ctx, script)
	default:
		// The MySQL DSN enables multi statements; DDL commits implicitly either way
		if _, err := e.db.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		return nil
	}
}

func (e *SQLExecutor) executeInTransaction(ctx context.Context, script string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx, script); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Get().Warn("Rollback failed", "error", rbErr)
		}
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}

// executeStatements runs each statement on its own. There is no rollback if one fails.
func (e *SQLExecutor) executeStatements(ctx context.Context, script string) error {
	statements, err := SplitStatements(script)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		logger.Get().Debug("Executing statement", "sql", stmt)
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply statement '%s': %w", stmt, err)
		}
	}
	return nil
}

// SplitStatements splits a PostgreSQL script into statements with the PostgreSQL parser
func SplitStatements(script string) ([]string, error) {
	statements, err := pg_query.SplitWithParser(script, true)
	if err != nil {
		return nil, fmt.Errorf("failed to split SQL statements: %w", err)
	}
	result := make([]string, 0, len(statements))
	for _, stmt := range statements {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result, nil
}
