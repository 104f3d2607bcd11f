package schemasync

import (
	"context"

	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/ir"
)

// GeneratePlan is a convenience function to generate a migration plan from two model files.
func GeneratePlan(ctx context.Context, dialectName, expectedFile, actualFile string) (*Plan, error) {
	client := NewClient(DatabaseConfig{Dialect: dialectName})
	return client.Plan(ctx, PlanOptions{
		ExpectedFile: expectedFile,
		ActualFile:   actualFile,
	})
}

// GenerateMigration renders the script that turns actual into expected for the dialect.
func GenerateMigration(dialectName string, expected, actual *ir.Database) (string, error) {
	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return "", err
	}
	changes, err := d.Finder.FindChanges(expected, actual)
	if err != nil {
		return "", err
	}
	return d.Handler.CreateDDLForChanges(changes)
}

// CompileFiles is a convenience function to render the CREATE script of several model files.
func CompileFiles(ctx context.Context, dialectName string, files []string, dropIfExists bool) ([]string, error) {
	client := NewClient(DatabaseConfig{Dialect: dialectName})
	return client.Compile(ctx, CompileOptions{Files: files, DropIfExists: dropIfExists})
}

// ApplyPlan is a convenience function to apply a pre-generated migration plan.
func ApplyPlan(ctx context.Context, dbConfig DatabaseConfig, migrationPlan *Plan, autoApprove bool) error {
	client := NewClient(dbConfig)
	return client.Apply(ctx, ApplyOptions{
		Plan:        migrationPlan,
		AutoApprove: autoApprove,
	})
}

// Dialects lists the registered dialect names.
func Dialects() []string {
	return dialect.Names()
}
