package executor

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/logger"
)

// ConnectionConfig holds database connection parameters. A non-empty DSN takes precedence
// over the individual fields.
type ConnectionConfig struct {
	Dialect         string
	DSN             string
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
}

// DriverName returns the database/sql driver registered for the dialect
func (c *ConnectionConfig) DriverName() (string, error) {
	switch strings.ToLower(c.Dialect) {
	case dialect.Postgres:
		return "pgx", nil
	case dialect.MySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, c.Dialect)
	}
}

// BuildDSN constructs the connection string for the dialect's driver
func (c *ConnectionConfig) BuildDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch strings.ToLower(c.Dialect) {
	case dialect.Postgres:
		return buildPostgresDSN(c), nil
	case dialect.MySQL:
		return buildMySQLDSN(c), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDialect, c.Dialect)
	}
}

// Connect establishes a database connection using the provided configuration
func Connect(ctx context.Context, config *ConnectionConfig) (*sql.DB, error) {
	log := logger.Get()

	log.Debug("Attempting database connection",
		"dialect", config.Dialect,
		"host", config.Host,
		"port", config.Port,
		"database", config.Database,
		"user", config.User,
		"dsn_provided", config.DSN != "",
	)

	driver, err := config.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := config.BuildDSN()
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		log.Debug("Database connection failed", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		log.Debug("Database ping failed", "error", err)
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database connection established successfully")
	return conn, nil
}

// buildPostgresDSN constructs a PostgreSQL keyword/value connection string
func buildPostgresDSN(config *ConnectionConfig) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("host=%s", config.Host))
	parts = append(parts, fmt.Sprintf("port=%d", config.Port))
	parts = append(parts, fmt.Sprintf("dbname=%s", config.Database))
	parts = append(parts, fmt.Sprintf("user=%s", config.User))

	if config.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", config.Password))
	}

	if config.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", config.SSLMode))
	}

	if config.ApplicationName != "" {
		parts = append(parts, fmt.Sprintf("application_name=%s", config.ApplicationName))
	}

	return strings.Join(parts, " ")
}

// buildMySQLDSN formats a go-sql-driver DSN. Scripts hold several statements, so
// multi-statement support is always on.
func buildMySQLDSN(config *ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = config.User
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	cfg.DBName = config.Database
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}
