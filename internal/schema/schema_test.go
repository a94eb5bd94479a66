package schema

import "testing"

func validDatabase() Database {
	return Database{
		Name:    "shop",
		Backend: BackendPostgres,
		Tables: []Table{
			{
				Name: "orders",
				Columns: []Column{
					{Name: "id", Type: "integer", Position: 1},
					{Name: "customer_id", Type: "integer", Nullable: true, Position: 2},
				},
				Constraints: []Constraint{
					{Name: "orders_pkey", Kind: ConstraintPrimaryKey, Columns: []string{"id"}},
					{Name: "orders_customer_id_fkey", Kind: ConstraintForeignKey, Columns: []string{"customer_id"}, RefTable: "customers", RefColumns: []string{"id"}},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedDatabase(t *testing.T) {
	if err := validDatabase().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	db := validDatabase()
	db.Backend = "oracle"
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidateRejectsDuplicateTableNames(t *testing.T) {
	db := validDatabase()
	db.Tables = append(db.Tables, db.Tables[0])
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for duplicate table name")
	}
}

func TestValidateRejectsNonContiguousPositions(t *testing.T) {
	db := validDatabase()
	db.Tables[0].Columns[1].Position = 5
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for non-contiguous column positions")
	}
}

func TestValidateRejectsConstraintOnUnknownColumn(t *testing.T) {
	db := validDatabase()
	db.Tables[0].Constraints[0].Columns = []string{"missing"}
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for constraint referencing unknown column")
	}
}

func TestValidateRejectsForeignKeyWithoutRefTable(t *testing.T) {
	db := validDatabase()
	db.Tables[0].Constraints[1].RefTable = ""
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for foreign key without referenced table")
	}
}

func TestValidateRejectsForeignKeyWithMismatchedRefColumns(t *testing.T) {
	db := validDatabase()
	db.Tables[0].Constraints[1].RefColumns = []string{"id", "tenant_id"}
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for foreign key with mismatched referenced columns")
	}
}

func TestValidateRejectsMisorderedPartitionKeys(t *testing.T) {
	db := validDatabase()
	db.Backend = BackendHive
	db.Tables[0].PartitionKeys = []PartitionKey{{Column: "ds", Position: 2}}
	if err := db.Validate(); err == nil {
		t.Fatal("expected error for misordered partition keys")
	}
}
