// Package schema holds the data loaded once from a live PostgreSQL
// connection: tables (base tables, views, materialized views, each
// with an ordered column list), and enum label lists. It is read-only
// after construction and may be shared across concurrent analyses
// without synchronization.
package schema

import "github.com/pgtypegen/pgtypegen/pkg/sqltype"

// Column is one entry in a Table's ordered column list.
type Column struct {
	SQLType  sqltype.Name
	Nullable bool
}

// Table is an ordered mapping from column name to Column, plus a
// Nullable flag: when true the entire row may be absent (the
// right/full-outer side of a join), which forces every column
// nullable once the table is flattened into a Scope.
type Table struct {
	Names    []string
	Columns  map[string]Column
	Nullable bool
}

// NewTable builds an empty ordered table.
func NewTable() *Table {
	return &Table{Columns: make(map[string]Column)}
}

// Add appends a column, preserving insertion order. A later Add with
// the same name overwrites the Column but keeps the original position
// (matches Postgres: a table never has two columns with one name).
func (t *Table) Add(name string, col Column) {
	if _, exists := t.Columns[name]; !exists {
		t.Names = append(t.Names, name)
	}
	t.Columns[name] = col
}

// Lookup returns the named column, honoring join-lifted nullability.
func (t *Table) Lookup(name string) (Column, bool) {
	col, ok := t.Columns[name]
	if !ok {
		return Column{}, false
	}
	if t.Nullable {
		col.Nullable = true
	}
	return col, true
}

// Clone returns a deep-enough copy safe to mutate (used when a table
// enters a scope and its Nullable flag may be force-set without
// touching the catalog's original).
func (t *Table) Clone() *Table {
	c := &Table{
		Names:    append([]string(nil), t.Names...),
		Columns:  make(map[string]Column, len(t.Columns)),
		Nullable: t.Nullable,
	}
	for k, v := range t.Columns {
		c.Columns[k] = v
	}
	return c
}

// Catalog is schema_name -> table_name -> Table. It is populated once
// at startup and is immutable thereafter; per-query CTE tables are
// written into a cloned catalog, never this one.
type Catalog struct {
	Schemas map[string]map[string]*Table
}

func NewCatalog() *Catalog {
	return &Catalog{Schemas: make(map[string]map[string]*Table)}
}

// EnsureSchema guarantees schema exists (possibly empty), matching
// the loader's guarantee that the default schema is always present.
func (c *Catalog) EnsureSchema(schemaName string) map[string]*Table {
	if m, ok := c.Schemas[schemaName]; ok {
		return m
	}
	m := make(map[string]*Table)
	c.Schemas[schemaName] = m
	return m
}

// Table looks up (schema, name); schema empty means "search all
// schemas" is NOT performed here — callers resolve the default schema
// before calling Table.
func (c *Catalog) Table(schemaName, name string) (*Table, bool) {
	m, ok := c.Schemas[schemaName]
	if !ok {
		return nil, false
	}
	t, ok := m[name]
	return t, ok
}

// Put installs a table (used by the loader and by the view
// materializer and CTE installation).
func (c *Catalog) Put(schemaName, name string, t *Table) {
	c.EnsureSchema(schemaName)[name] = t
}

// Clone produces a shallow-per-schema, deep-per-map copy: tables
// themselves are shared by pointer (catalog tables are immutable)
// except where a clone installs a new table under a name, which only
// affects the clone's map, never the original schema map.
func (c *Catalog) Clone() *Catalog {
	clone := NewCatalog()
	for sch, tables := range c.Schemas {
		m := make(map[string]*Table, len(tables))
		for name, t := range tables {
			m[name] = t
		}
		clone.Schemas[sch] = m
	}
	return clone
}

// EnumCatalog maps a type name to its ordered label list.
type EnumCatalog struct {
	Labels map[sqltype.Name][]string
}

func NewEnumCatalog() *EnumCatalog {
	return &EnumCatalog{Labels: make(map[sqltype.Name][]string)}
}

// LabelsOf returns the ordered labels of enum type t; AsLookup wraps
// it as a sqltype.EnumLookup.
func (e *EnumCatalog) LabelsOf(t sqltype.Name) ([]string, bool) {
	v, ok := e.Labels[t]
	return v, ok
}

// adapter so *EnumCatalog satisfies sqltype.EnumLookup without the
// method-name collision of an exported field vs. method.
type enumLookupAdapter struct{ cat *EnumCatalog }

func (a enumLookupAdapter) Labels(t sqltype.Name) ([]string, bool) { return a.cat.LabelsOf(t) }

func (e *EnumCatalog) AsLookup() sqltype.EnumLookup { return enumLookupAdapter{cat: e} }

// ViewSource is a not-yet-materialized view or materialized view: its
// defining SQL, pending analysis by the view materializer.
type ViewSource struct {
	Schema string
	Name   string
	SQL    string
}
