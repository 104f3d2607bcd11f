package schemasync_test

import (
	"context"
	"fmt"
	"log"

	"github.com/schemasync/schemasync"
)

// ExampleGenerateMigration demonstrates rendering the script between two in-memory models.
func ExampleGenerateMigration() {
	expected := &schemasync.Database{Tables: []*schemasync.Table{
		{Name: "tags", Columns: []*schemasync.Column{
			{Name: "name", TypeName: "varchar", Precision: 64},
		}},
	}}
	actual := &schemasync.Database{}

	script, err := schemasync.GenerateMigration("mysql", expected, actual)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(script)
	// Output: CREATE TABLE `tags`(`name` varchar(64) NOT NULL);
}

// ExampleGeneratePlan demonstrates how to generate a migration plan from two model files.
func ExampleGeneratePlan() {
	ctx := context.Background()

	migrationPlan, err := schemasync.GeneratePlan(ctx, "postgres",
		"testdata/ddl/postgres/alter_column_type_and_nullability/expected.yaml",
		"testdata/ddl/postgres/alter_column_type_and_nullability/actual.yaml")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(migrationPlan.ToSQL())
	// Output: ALTER TABLE "public".users ALTER COLUMN email TYPE varchar(320), ALTER COLUMN email DROP NOT NULL;
}

// ExampleClient_Apply demonstrates a dry run of the plan against a PostgreSQL database.
func ExampleClient_Apply() {
	ctx := context.Background()

	client := schemasync.NewClient(schemasync.DatabaseConfig{
		Dialect:  "postgres",
		Host:     "localhost",
		Port:     5432,
		Database: "myapp",
		User:     "postgres",
		Password: "password",
	})

	err := client.Apply(ctx, schemasync.ApplyOptions{
		PlanOptions: schemasync.PlanOptions{
			ExpectedFile: "schema/expected.yaml",
			ActualFile:   "schema/actual.yaml",
		},
		AutoApprove: true,
		LockTimeout: "30s",
	})
	if err != nil {
		log.Fatal(err)
	}
}
