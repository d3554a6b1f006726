package analyzer

import (
	"github.com/pgtypegen/pgtypegen/pkg/schema"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// Scope is the mutable binding environment for one statement
// analysis: visible tables by alias, plus the catalog and default
// schema needed to resolve unqualified RangeVars and CTE installs. A
// Scope is owned exclusively by the analysis that created it and is
// cloned (never mutated in place by two logical flows) on descent
// into subqueries and CTE bodies.
type Scope struct {
	// Aliases preserves insertion order: unqualified column lookup
	// searches tables in this order, and a name found in two tables
	// fails as ambiguous.
	Aliases []string
	Tables  map[string]*schema.Table

	Catalog       *schema.Catalog
	DefaultSchema string
	Enums         *schema.EnumCatalog
	Types         *sqltype.Catalog

	// catalogIsPrivate marks that Catalog already points to a clone
	// owned exclusively by this scope, so InstallCTE need not clone
	// again before its next write.
	catalogIsPrivate bool
}

// NewScope builds a fresh, empty scope bound to a catalog.
func NewScope(cat *schema.Catalog, defaultSchema string, enums *schema.EnumCatalog, types *sqltype.Catalog) *Scope {
	return &Scope{
		Tables:        make(map[string]*schema.Table),
		Catalog:       cat,
		DefaultSchema: defaultSchema,
		Enums:         enums,
		Types:         types,
	}
}

// Clone returns a scope that shares the catalog/enum/type-catalog
// references (read-only) but has its own, independently mutable alias
// table so that CTE and subquery descent cannot leak bindings outward.
func (s *Scope) Clone() *Scope {
	c := &Scope{
		Aliases:       append([]string(nil), s.Aliases...),
		Tables:        make(map[string]*schema.Table, len(s.Tables)),
		Catalog:       s.Catalog,
		DefaultSchema: s.DefaultSchema,
		Enums:         s.Enums,
		Types:         s.Types,
	}
	for k, v := range s.Tables {
		c.Tables[k] = v
	}
	return c
}

// Bind adds a table under alias, applying forceNullable if set (the
// from-clause analyzer uses this to flood outer-join nullability into
// scope without mutating the catalog's table).
func (s *Scope) Bind(alias string, t *schema.Table, forceNullable bool) {
	if _, exists := s.Tables[alias]; !exists {
		s.Aliases = append(s.Aliases, alias)
	}
	if forceNullable && !t.Nullable {
		clone := t.Clone()
		clone.Nullable = true
		t = clone
	}
	s.Tables[alias] = t
}

// LookupUnqualified searches tables in alias (insertion) order for a
// bare column name. A name found in more than one visible table is
// ambiguous and fails rather than guessing which one was meant.
func (s *Scope) LookupUnqualified(col string) (Column schema.Column, alias string, err error) {
	found := false
	for _, a := range s.Aliases {
		t := s.Tables[a]
		if c, ok := t.Lookup(col); ok {
			if found {
				return schema.Column{}, "", unknownColumn(col+" (ambiguous)", nil)
			}
			found = true
			Column, alias = c, a
		}
	}
	if !found {
		return schema.Column{}, "", unknownColumn(col, nil)
	}
	return Column, alias, nil
}

// LookupQualified resolves alias.col directly.
func (s *Scope) LookupQualified(alias, col string) (schema.Column, error) {
	t, ok := s.Tables[alias]
	if !ok {
		return schema.Column{}, unknownTable(alias, nil)
	}
	c, ok := t.Lookup(col)
	if !ok {
		return schema.Column{}, unknownColumn(alias+"."+col, nil)
	}
	return c, nil
}

// ResolveTable looks up (schemaName, tableName) in the catalog,
// defaulting schemaName to s.DefaultSchema when empty.
func (s *Scope) ResolveTable(schemaName, tableName string) (*schema.Table, bool) {
	if schemaName == "" {
		schemaName = s.DefaultSchema
	}
	return s.Catalog.Table(schemaName, tableName)
}

// InstallCTE writes a synthetic table into the default schema of this
// scope's private copy of the catalog, so later CTEs/the main query can
// reference it as if it were a table. This always mutates a private
// clone, never the catalog a sibling or outer scope still points at.
func (s *Scope) InstallCTE(name string, t *schema.Table) {
	if s.Catalog == nil {
		return
	}
	// Clone catalog lazily on first CTE install within this scope so
	// sibling scopes (e.g. set-operation branches) are unaffected.
	if !s.catalogIsPrivate {
		s.Catalog = s.Catalog.Clone()
		s.catalogIsPrivate = true
	}
	s.Catalog.Put(s.DefaultSchema, name, t)
}
