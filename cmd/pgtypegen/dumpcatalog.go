package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgtypegen/pgtypegen/internal/config"
	"github.com/pgtypegen/pgtypegen/pkg/schema"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

// newDumpCatalogCmd prints the columns and types pgtypegen loaded,
// for diagnosing why a query's columns resolve the way they do.
func newDumpCatalogCmd(log *zap.SugaredLogger, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump-catalog",
		Short: "Print every loaded table and its columns, the view count, and enum labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), *configFile)
			if err != nil {
				return err
			}

			db, err := sql.Open(cfg.Driver, cfg.ConnString)
			if err != nil {
				return fmt.Errorf("open connection: %w", err)
			}
			defer db.Close()

			loader := schema.NewLoader(db, log, nil)
			cat, enums, views, err := loader.Load(context.Background(), cfg.DefaultSchema)
			if err != nil {
				return fmt.Errorf("load schema: %w", err)
			}

			printCatalog(cmd, cat)
			fmt.Fprintf(cmd.OutOrStdout(), "\n# %d view definitions pending materialization\n", len(views))
			printEnums(cmd, enums)
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

func printCatalog(cmd *cobra.Command, cat *schema.Catalog) {
	schemaNames := make([]string, 0, len(cat.Schemas))
	for s := range cat.Schemas {
		schemaNames = append(schemaNames, s)
	}
	sort.Strings(schemaNames)

	for _, s := range schemaNames {
		tableNames := make([]string, 0, len(cat.Schemas[s]))
		for t := range cat.Schemas[s] {
			tableNames = append(tableNames, t)
		}
		sort.Strings(tableNames)

		for _, t := range tableNames {
			table := cat.Schemas[s][t]
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s\n", s, t)
			for _, col := range table.Names {
				c := table.Columns[col]
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s nullable=%v\n", col, c.SQLType, c.Nullable)
			}
		}
	}
}

func printEnums(cmd *cobra.Command, enums *schema.EnumCatalog) {
	names := make([]string, 0, len(enums.Labels))
	for n := range enums.Labels {
		names = append(names, string(n))
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "enum %s: %v\n", n, enums.Labels[sqltype.Name(n)])
	}
}
