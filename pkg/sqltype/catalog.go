// Package sqltype maps PostgreSQL type names onto target-language type
// strings and classifies them into families the expression analyzer
// relies on (numeric, text, time, json, bit, array, ...).
package sqltype

import "strings"

// Name is a SQL type tag as PostgreSQL names it: "int4", "text",
// "timestamptz", "mpaa_rating", "int4[]", and so on. Arrays are
// encoded with a trailing "[]"; Null denotes the type of a bare NULL
// literal; Any denotes an unknown type.
type Name string

const (
	Null    Name = "null"
	Any     Name = "any"
	Unknown Name = "unknown"
	Bool    Name = "bool"
	Text    Name = "text"
	Int4    Name = "int4"
	Int8    Name = "int8"
	Float4  Name = "float4"
	Float8  Name = "float8"
	Numeric Name = "numeric"
	Bytea   Name = "bytea"
	JSON    Name = "json"
	JSONB   Name = "jsonb"
	Date    Name = "date"
	Time    Name = "time"
	Timetz  Name = "timetz"
	Tsamp   Name = "timestamp"
	Tsamptz Name = "timestamptz"
	Interval Name = "interval"
)

// IsArray reports whether n is an array type tag.
func (n Name) IsArray() bool { return strings.HasSuffix(string(n), "[]") }

// Element strips one trailing "[]" and returns the element type.
func (n Name) Element() Name {
	return Name(strings.TrimSuffix(string(n), "[]"))
}

// AsArray appends one "[]" to n.
func (n Name) AsArray() Name { return n + "[]" }

var numericFamily = map[Name]bool{
	"int2": true, "int4": true, "int8": true,
	"serial": true, "serial2": true, "serial4": true, "serial8": true, "bigserial": true, "smallserial": true,
	"float4": true, "float8": true, "real": true, "double precision": true,
	"numeric": true, "decimal": true, "oid": true,
}

var textFamily = map[Name]bool{
	"text": true, "varchar": true, "character varying": true, "bpchar": true, "character": true, "citext": true,
}

var timeFamily = map[Name]bool{
	"time": true, "timetz": true, "time without time zone": true, "time with time zone": true,
}

var timestampFamily = map[Name]bool{
	"timestamp": true, "timestamptz": true,
	"timestamp without time zone": true, "timestamp with time zone": true,
}

var bitFamily = map[Name]bool{
	"bit": true, "varbit": true, "bit varying": true,
}

var jsonFamily = map[Name]bool{
	"json": true, "jsonb": true,
}

// otherStringlike covers network, geometry, uuid, and xml types that
// render as strings by default.
var otherStringlike = map[Name]bool{
	"uuid": true, "xml": true,
	"inet": true, "cidr": true, "macaddr": true, "macaddr8": true,
	"point": true, "line": true, "lseg": true, "box": true, "path": true, "polygon": true, "circle": true,
}

// Catalog maps SqlType to a target type string and classifies types
// into the families the expression analyzer's rules key off of. A
// zero-value Catalog is usable; overrides take precedence over the
// built-in families.
type Catalog struct {
	// Fallback is emitted for any type with no recognized family and
	// no override (generator's "fallback_type" option, default "string").
	Fallback string
	// Overrides wins over every built-in rule.
	Overrides map[Name]string
	// Enums renders an enum type as a union of quoted labels.
	Enums EnumLookup
}

// EnumLookup resolves a type name to its ordered labels.
type EnumLookup interface {
	Labels(typeName Name) ([]string, bool)
}

func New(fallback string, overrides map[Name]string, enums EnumLookup) *Catalog {
	if fallback == "" {
		fallback = "string"
	}
	return &Catalog{Fallback: fallback, Overrides: overrides, Enums: enums}
}

// Map returns the target-language type string for sqlType, not
// accounting for array-ness (callers that need "array<T>" wrapping
// should check IsArray first and recurse on Element).
func (c *Catalog) Map(t Name) string {
	if c.Overrides != nil {
		if v, ok := c.Overrides[t]; ok {
			return v
		}
	}
	if t.IsArray() {
		return c.Map(t.Element())
	}
	switch {
	case t == Null:
		return "null"
	case t == Any:
		return "any"
	case t == Unknown:
		return "unknown"
	case t == Bool:
		return "boolean"
	case c.IsNumber(t):
		return "number"
	case c.IsText(t):
		return "string"
	case c.IsTime(t), c.IsTimestamp(t):
		return "string"
	case c.IsBit(t):
		return "string"
	case c.IsJSON(t):
		return "unknown"
	case t == Bytea:
		return "Buffer"
	case otherStringlike[t]:
		return "string"
	}
	if c.Enums != nil {
		if labels, ok := c.Enums.Labels(t); ok {
			return quotedUnion(labels)
		}
	}
	return c.Fallback
}

func quotedUnion(labels []string) string {
	var b strings.Builder
	for i, l := range labels {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteByte('"')
		b.WriteString(l)
		b.WriteByte('"')
	}
	return b.String()
}

func (c *Catalog) IsNumber(t Name) bool    { return numericFamily[stripArray(t)] }
func (c *Catalog) IsText(t Name) bool      { return textFamily[stripArray(t)] }
func (c *Catalog) IsTime(t Name) bool      { return timeFamily[stripArray(t)] }
func (c *Catalog) IsTimestamp(t Name) bool { return timestampFamily[stripArray(t)] }
func (c *Catalog) IsBit(t Name) bool       { return bitFamily[stripArray(t)] }
func (c *Catalog) IsJSON(t Name) bool      { return jsonFamily[stripArray(t)] }
func (c *Catalog) IsArray(t Name) bool     { return t.IsArray() }

// ElementType is exposed as a method for callers that only hold the
// Catalog (mirrors the component's `element_type` predicate).
func (c *Catalog) ElementType(t Name) Name { return t.Element() }

func stripArray(t Name) Name {
	if t.IsArray() {
		return t.Element()
	}
	return t
}
