package generator_test

import (
	"embed"
	"flag"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgtypegen/pgtypegen/pkg/fixgres"
	"github.com/pgtypegen/pgtypegen/pkg/generator"
)

//go:embed testmigrations/*.sql
var testMigrations embed.FS

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	sub, _ := fs.Sub(testMigrations, "testmigrations")
	fixgres.BootOnce(&testing.T{}, fixgres.WithDBName("pgtypegen"), fixgres.WithGooseUp(sub))
	code := m.Run()
	_ = fixgres.ShutdownNow()
	os.Exit(code)
}

// TestGeneratorAgainstRealSchema exercises the schema loader and view
// materializer end to end: base table columns come straight from
// pg_catalog, and film_catalog's columns come from statement-analyzing
// its defining SELECT (including the LEFT JOIN nullability flood).
func TestGeneratorAgainstRealSchema(t *testing.T) {
	if testing.Short() {
		t.Skip("requires Docker for testcontainers")
	}

	gen, err := generator.New(fixgres.ConnString(), generator.WithDefaultSchema("public"))
	require.NoError(t, err)

	result := gen.Generate(`SELECT id, title, rating, lead_actor_id FROM films`)
	require.NoError(t, result.Err)
	require.Len(t, result.Results, 1)
	require.Contains(t, result.Results[0], `"title": string,`)
	require.Contains(t, result.Results[0], `"rating": "G" | "PG" | "PG-13" | "R" | "NC-17" | null,`)

	viewResult := gen.Generate(`SELECT title, lead_actor_name FROM film_catalog`)
	require.NoError(t, viewResult.Err)
	require.Contains(t, viewResult.Results[0], `"lead_actor_name": string | null,`)
}

func TestGeneratorBatchIsolatesFailures(t *testing.T) {
	if testing.Short() {
		t.Skip("requires Docker for testcontainers")
	}

	gen, err := generator.New(fixgres.ConnString(), generator.WithDefaultSchema("public"))
	require.NoError(t, err)

	results := gen.GenerateBatch([]string{
		`SELECT id FROM films`,
		`SELECT id FROM does_not_exist`,
	})
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
}
