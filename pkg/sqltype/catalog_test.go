package sqltype

import "testing"

type fakeEnums struct{ labels map[Name][]string }

func (f fakeEnums) Labels(t Name) ([]string, bool) {
	v, ok := f.labels[t]
	return v, ok
}

func TestMapFamilies(t *testing.T) {
	cat := New("string", nil, nil)

	cases := []struct {
		in   Name
		want string
	}{
		{"int4", "number"},
		{"text", "string"},
		{"timestamptz", "string"},
		{"bool", "boolean"},
		{"bytea", "Buffer"},
		{"jsonb", "unknown"},
		{"uuid", "string"},
		{"null", "null"},
		{"any", "any"},
	}
	for _, c := range cases {
		if got := cat.Map(c.in); got != c.want {
			t.Errorf("Map(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMapArray(t *testing.T) {
	cat := New("string", nil, nil)
	if got := cat.Map("int4[]"); got != "number" {
		t.Errorf("Map(int4[]) = %q, want number", got)
	}
}

func TestMapOverrideWins(t *testing.T) {
	cat := New("string", map[Name]string{"int4": "MyInt"}, nil)
	if got := cat.Map("int4"); got != "MyInt" {
		t.Errorf("Map(int4) = %q, want MyInt", got)
	}
}

func TestMapEnum(t *testing.T) {
	cat := New("string", nil, fakeEnums{labels: map[Name][]string{
		"mpaa_rating": {"G", "PG", "PG-13", "R", "NC-17"},
	}})
	got := cat.Map("mpaa_rating")
	want := `"G" | "PG" | "PG-13" | "R" | "NC-17"`
	if got != want {
		t.Errorf("Map(mpaa_rating) = %q, want %q", got, want)
	}
}

func TestMapFallback(t *testing.T) {
	cat := New("unknown_fallback", nil, nil)
	if got := cat.Map("some_custom_domain"); got != "unknown_fallback" {
		t.Errorf("Map(some_custom_domain) = %q, want unknown_fallback", got)
	}
}
