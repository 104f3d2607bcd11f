package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/executor"
	"github.com/spf13/cobra"
)

// Environment variables read when the corresponding flag is not set
const (
	EnvDialect    = "SCHEMASYNC_DIALECT"
	EnvDSN        = "SCHEMASYNC_DSN"
	EnvDBHost     = "SCHEMASYNC_DB_HOST"
	EnvDBPort     = "SCHEMASYNC_DB_PORT"
	EnvDBName     = "SCHEMASYNC_DB_NAME"
	EnvDBUser     = "SCHEMASYNC_DB_USER"
	EnvDBPassword = "SCHEMASYNC_DB_PASSWORD"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// applyStringEnv copies envVar into target when the flag was not set explicitly
func applyStringEnv(cmd *cobra.Command, flag, envVar string, target *string) {
	if target == nil || cmd.Flags().Changed(flag) {
		return
	}
	if value := GetEnvWithDefault(envVar, ""); value != "" {
		*target = value
	}
}

// PreRunEWithDialect creates a PreRunE function that fills --dialect from SCHEMASYNC_DIALECT
// and rejects unknown dialects before any model is read
func PreRunEWithDialect(dialectPtr *string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		applyStringEnv(cmd, "dialect", EnvDialect, dialectPtr)
		if *dialectPtr == "" {
			return fmt.Errorf("dialect is required (use --dialect flag or %s environment variable)", EnvDialect)
		}
		if _, err := dialect.Lookup(*dialectPtr); err != nil {
			return err
		}
		return nil
	}
}

// PreRunEWithConnection extends PreRunEWithDialect with the connection flags. Either a DSN
// or a database name and user must be available.
func PreRunEWithConnection(dialectPtr *string, config *executor.ConnectionConfig) func(*cobra.Command, []string) error {
	checkDialect := PreRunEWithDialect(dialectPtr)
	return func(cmd *cobra.Command, args []string) error {
		if err := checkDialect(cmd, args); err != nil {
			return err
		}

		applyStringEnv(cmd, "dsn", EnvDSN, &config.DSN)
		applyStringEnv(cmd, "host", EnvDBHost, &config.Host)
		applyStringEnv(cmd, "db", EnvDBName, &config.Database)
		applyStringEnv(cmd, "user", EnvDBUser, &config.User)
		applyStringEnv(cmd, "password", EnvDBPassword, &config.Password)
		if port := GetEnvIntWithDefault(EnvDBPort, 0); port != 0 && !cmd.Flags().Changed("port") {
			config.Port = port
		}
		config.Dialect = *dialectPtr

		if config.DSN != "" {
			return nil
		}
		if config.Database == "" {
			return fmt.Errorf("database name is required (use --db flag or %s environment variable)", EnvDBName)
		}
		if config.User == "" {
			return fmt.Errorf("database user is required (use --user flag or %s environment variable)", EnvDBUser)
		}
		return nil
	}
}

// WriteOutput writes content to stdout when target is "" or "stdout", otherwise to the file target
func WriteOutput(cmd *cobra.Command, target, content string) error {
	if target == "" || target == "stdout" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(target, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", target, err)
	}
	return nil
}
