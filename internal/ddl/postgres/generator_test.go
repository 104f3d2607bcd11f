package postgres

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/ir"
)

func shop() *ir.Database {
	return &ir.Database{DatabaseType: "postgres", Tables: []*ir.Table{
		{Name: "customers", Schema: "shop", Description: "people who order", Columns: []*ir.Column{
			{Name: "id", TypeName: "bigint", PrimaryKey: true, PrimaryKeySequenceID: 1},
			{Name: "email", TypeName: "varchar", Precision: 320},
		}},
		{Name: "order", Schema: "shop", Columns: []*ir.Column{
			{Name: "id", TypeName: "bigint", PrimaryKey: true, PrimaryKeySequenceID: 1},
			{Name: "customerId", TypeName: "bigint", Nullable: true, Description: "buyer", ForeignKeys: []*ir.ForeignKey{
				{Name: "order_customer_fk", DeleteRule: "2", PrimaryTableSchema: "shop", PrimaryTableName: "customers", PrimaryColumnName: "id"},
			}},
			{Name: "total", TypeName: "numeric", Precision: 12, Scale: 2, ColumnDefault: "0"},
		}},
	}}
}

func TestCreateDatabase(t *testing.T) {
	want := strings.Join([]string{
		`CREATE SCHEMA IF NOT EXISTS "shop";`,
		`CREATE TABLE IF NOT EXISTS "shop".customers (
    id bigint NOT NULL,
    email varchar(320) NOT NULL,
    PRIMARY KEY (id)
);
COMMENT ON TABLE "shop".customers IS 'people who order';`,
		`CREATE TABLE IF NOT EXISTS "shop"."order" (
    id bigint NOT NULL,
    "customerId" bigint,
    total numeric(12,2) NOT NULL DEFAULT 0,
    PRIMARY KEY (id)
);
COMMENT ON COLUMN "shop"."order"."customerId" IS 'buyer';`,
		`ALTER TABLE "shop"."order"
ADD CONSTRAINT order_customer_fk FOREIGN KEY ("customerId") REFERENCES "shop".customers (id) ON DELETE SET NULL;`,
	}, "\n\n")

	got := NewGenerator().CreateDatabase(shop(), false)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
	if _, err := pg_query.Parse(got); err != nil {
		t.Errorf("generated script is not valid PostgreSQL: %v", err)
	}
}

func TestCreateTableWithDropIfExists(t *testing.T) {
	got := NewGenerator().CreateTable(&ir.Table{Name: "tags", Columns: []*ir.Column{
		{Name: "name", TypeName: "text", Precision: 2147483647, Nullable: true},
	}}, true)
	want := "DROP TABLE IF EXISTS tags;\nCREATE TABLE IF NOT EXISTS tags (\n    name text\n);"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAlterColumn(t *testing.T) {
	table := &ir.Table{Name: "users", Schema: "public"}
	tests := []struct {
		name     string
		expected *ir.Column
		actual   *ir.Column
		want     string
	}{
		{
			name:     "type only",
			expected: &ir.Column{Name: "age", TypeName: "bigint", Nullable: true},
			actual:   &ir.Column{Name: "age", TypeName: "integer", Nullable: true},
			want:     `ALTER TABLE "public".users ALTER COLUMN age TYPE bigint;`,
		},
		{
			name:     "set not null",
			expected: &ir.Column{Name: "age", TypeName: "integer"},
			actual:   &ir.Column{Name: "age", TypeName: "integer", Nullable: true},
			want:     `ALTER TABLE "public".users ALTER COLUMN age SET NOT NULL;`,
		},
		{
			name:     "description only",
			expected: &ir.Column{Name: "age", TypeName: "integer", Description: "years"},
			actual:   &ir.Column{Name: "age", TypeName: "integer"},
			want:     "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGenerator().AlterColumn(&diff.ColumnChange{Table: table, Expected: tt.expected, Actual: tt.actual})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlterTableRebuildsPrimaryKey(t *testing.T) {
	actual := &ir.Table{Name: "order", Columns: []*ir.Column{
		{Name: "id", TypeName: "bigint", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "region", TypeName: "text"},
	}}
	expected := &ir.Table{Name: "order", Columns: []*ir.Column{
		{Name: "id", TypeName: "bigint", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "region", TypeName: "text", PrimaryKey: true, PrimaryKeySequenceID: 2},
	}}
	want := `ALTER TABLE "order" DROP CONSTRAINT order_pkey, ADD PRIMARY KEY (id, region);`
	if got := NewGenerator().AlterTable(expected, actual); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAlterTableSkipsConstraintTakenByDroppedColumn(t *testing.T) {
	actual := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "id", TypeName: "bigint", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "region", TypeName: "text", PrimaryKey: true, PrimaryKeySequenceID: 2},
		{Name: "code", TypeName: "text"},
	}}
	// region is dropped earlier in the run and the constraint goes with it
	expected := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "id", TypeName: "bigint", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "code", TypeName: "text", PrimaryKey: true, PrimaryKeySequenceID: 2},
	}}
	want := `ALTER TABLE orders ADD PRIMARY KEY (id, code);`
	if got := NewGenerator().AlterTable(expected, actual); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeType(t *testing.T) {
	tests := map[string]string{
		"int4":                     "integer",
		"INT":                      "integer",
		"pg_catalog.int8":          "bigint",
		"_int4":                    "integer[]",
		"bpchar":                   "character",
		"character varying":        "varchar",
		"timestamp with time zone": "timestamptz",
		"decimal":                  "numeric",
		"jsonb":                    "jsonb",
		" text ":                   "text",
	}
	for input, want := range tests {
		if got := normalizeType(input); got != want {
			t.Errorf("normalizeType(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestComparatorUsesAliases(t *testing.T) {
	comparator := NewComparator()
	if !comparator.ColumnsEqual(
		&ir.Column{Name: "id", TypeName: "integer"},
		&ir.Column{Name: "id", TypeName: "int4", Precision: 10}) {
		t.Error("int4 and integer should be the same type")
	}
	if comparator.ColumnsEqual(
		&ir.Column{Name: "name", TypeName: "character varying", Precision: 64},
		&ir.Column{Name: "name", TypeName: "varchar", Precision: 32}) {
		t.Error("varchar precision should be significant")
	}
}
