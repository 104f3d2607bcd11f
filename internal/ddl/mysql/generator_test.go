package mysql

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/schemasync/schemasync/internal/ddl"
	"github.com/schemasync/schemasync/internal/diff"
	"github.com/schemasync/schemasync/ir"
)

func migrate(t *testing.T, expected, actual *ir.Database) string {
	t.Helper()
	changes, err := diff.NewFinder(NewComparator()).FindChanges(expected, actual)
	if err != nil {
		t.Fatalf("FindChanges failed: %v", err)
	}
	script, err := ddl.NewHandler(NewGenerator(), Separator).CreateDDLForChanges(changes)
	if err != nil {
		t.Fatalf("CreateDDLForChanges failed: %v", err)
	}
	return script
}

func ordersTable() *ir.Table {
	return &ir.Table{
		Name:   "orders",
		Schema: "shop",
		Columns: []*ir.Column{
			{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
			{Name: "region", TypeName: "varchar", Precision: 16},
			{Name: "note", TypeName: "text", Nullable: true},
		},
	}
}

func TestIdenticalModelsRenderNothing(t *testing.T) {
	expected := &ir.Database{DatabaseType: "mysql", Tables: []*ir.Table{ordersTable()}}
	actual := &ir.Database{DatabaseType: "mysql", Tables: []*ir.Table{ordersTable()}}

	changes, err := diff.NewFinder(NewComparator()).FindChanges(expected, actual)
	if err != nil {
		t.Fatalf("FindChanges failed: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
	if got := migrate(t, expected, actual); got != "" {
		t.Errorf("expected empty script, got %q", got)
	}
}

func TestAddedTableRendersOneCreateTable(t *testing.T) {
	expected := &ir.Database{Tables: []*ir.Table{ordersTable()}}
	actual := &ir.Database{}

	want := "CREATE TABLE `shop`.`orders`(`id` int NOT NULL, `region` varchar(16) NOT NULL, `note` text, PRIMARY KEY (`id`));"
	if diff := cmp.Diff(want, migrate(t, expected, actual)); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
}

func TestForeignKeyIsDroppedBeforeItsColumn(t *testing.T) {
	customers := func() *ir.Table {
		return &ir.Table{Name: "customers", Columns: []*ir.Column{
			{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
		}}
	}
	actualOrders := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "customer_id", TypeName: "int", Nullable: true, ForeignKeys: []*ir.ForeignKey{
			{Name: "orders_customer_fk", DeleteRule: "3", PrimaryTableName: "customers", PrimaryColumnName: "id"},
		}},
	}}
	expectedOrders := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
	}}

	got := migrate(t,
		&ir.Database{Tables: []*ir.Table{customers(), expectedOrders}},
		&ir.Database{Tables: []*ir.Table{customers(), actualOrders}})

	want := "ALTER TABLE `orders` DROP FOREIGN KEY `orders_customer_fk`;\n" +
		"ALTER TABLE `orders` DROP COLUMN `customer_id`;"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
}

func TestNullabilityChangeRendersModify(t *testing.T) {
	expected := ordersTable()
	actual := ordersTable()
	actual.Columns[2].Nullable = true
	expected.Columns[2].Nullable = false

	got := migrate(t, &ir.Database{Tables: []*ir.Table{expected}}, &ir.Database{Tables: []*ir.Table{actual}})
	if want := "ALTER TABLE `shop`.`orders` MODIFY `note` text NOT NULL;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDescriptionOnlyChangeRendersNothing(t *testing.T) {
	generator := NewGenerator()
	change := &diff.ColumnChange{
		Table:    ordersTable(),
		Expected: &ir.Column{Name: "note", TypeName: "text", Nullable: true, Description: "new"},
		Actual:   &ir.Column{Name: "note", TypeName: "TEXT", Nullable: true, Description: "old"},
	}
	if got := generator.AlterColumn(change); got != "" {
		t.Errorf("expected no statement, got %q", got)
	}
}

func TestCompositePrimaryKeyChange(t *testing.T) {
	expected := ordersTable()
	// Sequence order wins over column order
	expected.Columns[0].PrimaryKeySequenceID = 2
	expected.Columns[1].PrimaryKey = true
	expected.Columns[1].PrimaryKeySequenceID = 1

	got := NewGenerator().AlterTable(expected, ordersTable())
	if want := "ALTER TABLE `shop`.`orders` DROP PRIMARY KEY, ADD PRIMARY KEY (`region`, `id`);"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	noKey := &ir.Table{Name: "log", Columns: []*ir.Column{{Name: "line", TypeName: "text"}}}
	if got := NewGenerator().AlterTable(noKey, noKey); got != "" {
		t.Errorf("expected no statement for tables without primary keys, got %q", got)
	}
}

func TestPrimaryKeyRebuildAfterColumnDrop(t *testing.T) {
	actual := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "region", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 2},
		{Name: "code", TypeName: "int"},
	}}

	// Losing region shrinks the key to (id), which still has to be dropped
	shrunk := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
		{Name: "code", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 2},
	}}
	if got, want := NewGenerator().AlterTable(shrunk, actual), "ALTER TABLE `orders` DROP PRIMARY KEY, ADD PRIMARY KEY (`id`, `code`);"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// Losing every key column removes the key
	moved := &ir.Table{Name: "orders", Columns: []*ir.Column{
		{Name: "code", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
	}}
	if got, want := NewGenerator().AlterTable(moved, actual), "ALTER TABLE `orders` ADD PRIMARY KEY (`code`);"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCreateTableWithDropIfExists(t *testing.T) {
	got := NewGenerator().CreateTable(&ir.Table{Name: "tags", Columns: []*ir.Column{
		{Name: "name", TypeName: "varchar", Precision: 64},
	}}, true)
	want := "DROP TABLE IF EXISTS `tags`;\nCREATE TABLE `tags`(`name` varchar(64) NOT NULL);"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCreateDatabase(t *testing.T) {
	db := &ir.Database{Tables: []*ir.Table{
		{Name: "customers", Schema: "shop", Columns: []*ir.Column{
			{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
		}},
		{Name: "orders", Schema: "shop", Columns: []*ir.Column{
			{Name: "id", TypeName: "int", PrimaryKey: true, PrimaryKeySequenceID: 1},
			{Name: "customer_id", TypeName: "int", Nullable: true, ForeignKeys: []*ir.ForeignKey{
				{Name: "orders_customer_fk", DeleteRule: "4", PrimaryTableSchema: "shop", PrimaryTableName: "customers", PrimaryColumnName: "id"},
			}},
		}},
	}}

	want := strings.Join([]string{
		"CREATE SCHEMA IF NOT EXISTS `shop`;",
		"CREATE TABLE `shop`.`customers`(`id` int NOT NULL, PRIMARY KEY (`id`));",
		"CREATE TABLE `shop`.`orders`(`id` int NOT NULL, `customer_id` int, PRIMARY KEY (`id`));",
		"ALTER TABLE `shop`.`orders` ADD CONSTRAINT orders_customer_fk FOREIGN KEY (`customer_id`) REFERENCES `shop`.`customers`(`id`);",
	}, "\n")
	if diff := cmp.Diff(want, NewGenerator().CreateDatabase(db, false)); diff != "" {
		t.Errorf("script mismatch (-want +got):\n%s", diff)
	}
}

func TestQuoteEscapesBackticks(t *testing.T) {
	if got := quote("we`ird"); got != "`we``ird`" {
		t.Errorf("quote() = %q", got)
	}
}
