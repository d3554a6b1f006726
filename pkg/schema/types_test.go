package schema

import (
	"testing"

	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

func TestTableLookupFloodsNullableFromTable(t *testing.T) {
	tbl := NewTable()
	tbl.Add("id", Column{SQLType: sqltype.Int4, Nullable: false})
	tbl.Nullable = true

	col, ok := tbl.Lookup("id")
	if !ok {
		t.Fatal("expected id to be found")
	}
	if !col.Nullable {
		t.Error("expected column nullability to be flooded by table.Nullable")
	}
}

func TestTableCloneIsIndependent(t *testing.T) {
	tbl := NewTable()
	tbl.Add("id", Column{SQLType: sqltype.Int4})

	clone := tbl.Clone()
	clone.Nullable = true
	clone.Add("extra", Column{SQLType: sqltype.Text})

	if tbl.Nullable {
		t.Error("mutating clone.Nullable should not affect the original table")
	}
	if _, ok := tbl.Lookup("extra"); ok {
		t.Error("adding a column to the clone should not affect the original table")
	}
}

func TestCatalogCloneIsolatesNewTables(t *testing.T) {
	cat := NewCatalog()
	base := NewTable()
	base.Add("id", Column{SQLType: sqltype.Int4})
	cat.Put("public", "users", base)

	clone := cat.Clone()
	cte := NewTable()
	cte.Add("x", Column{SQLType: sqltype.Text})
	clone.Put("public", "active_users", cte)

	if _, ok := cat.Table("public", "active_users"); ok {
		t.Error("installing a table in a clone must not leak into the original catalog")
	}
	if _, ok := clone.Table("public", "users"); !ok {
		t.Error("clone should still see tables present before cloning")
	}
}

func TestEnumCatalogLabelsOf(t *testing.T) {
	e := NewEnumCatalog()
	e.Labels[sqltype.Name("mpaa_rating")] = []string{"G", "PG", "R"}

	labels, ok := e.AsLookup().Labels(sqltype.Name("mpaa_rating"))
	if !ok {
		t.Fatal("expected mpaa_rating to resolve")
	}
	if len(labels) != 3 {
		t.Errorf("expected 3 labels, got %d", len(labels))
	}

	if _, ok := e.AsLookup().Labels(sqltype.Name("not_an_enum")); ok {
		t.Error("expected unknown type name to miss")
	}
}
