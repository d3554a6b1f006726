package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgtypegen/pgtypegen/internal/config"
	"github.com/pgtypegen/pgtypegen/pkg/generator"
	"github.com/pgtypegen/pgtypegen/pkg/sqltype"
)

func newGenerateCmd(log *zap.SugaredLogger, configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [sql-file ...]",
		Short: "Render a type block for each given .sql file (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), *configFile)
			if err != nil {
				return err
			}

			overrides := make(map[sqltype.Name]string, len(cfg.TypeOverrides))
			for k, v := range cfg.TypeOverrides {
				overrides[sqltype.Name(k)] = v
			}

			genOpts := []generator.Option{
				generator.WithDriver(cfg.Driver),
				generator.WithDefaultSchema(cfg.DefaultSchema),
				generator.WithFallbackType(cfg.FallbackType),
				generator.WithTypeOverrides(overrides),
				generator.WithLogger(log),
			}
			if cfg.Pretty {
				genOpts = append(genOpts, generator.WithPrettyOptions(nil))
			}

			gen, err := generator.New(cfg.ConnString, genOpts...)
			if err != nil {
				return fmt.Errorf("initialize generator: %w", err)
			}

			queries, err := readQueries(args)
			if err != nil {
				return err
			}

			for i, result := range gen.GenerateBatch(queries) {
				if result.Err != nil {
					log.Errorw("query failed", "index", i, "error", result.Err)
					fmt.Fprintf(cmd.OutOrStdout(), "-- query %d: error: %v\n", i, result.Err)
					continue
				}
				for _, rendered := range result.Results {
					fmt.Fprintln(cmd.OutOrStdout(), rendered)
				}
			}
			return nil
		},
	}

	config.RegisterFlags(cmd.Flags())
	return cmd
}

// readQueries loads one query string per argument (each file's full
// contents, which may itself contain several ';'-separated
// statements), or a single query from stdin when no files are given.
func readQueries(paths []string) ([]string, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []string{string(data)}, nil
	}

	queries := make([]string, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		queries[i] = string(data)
	}
	return queries, nil
}
