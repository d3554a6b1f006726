package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(log *zap.SugaredLogger) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "pgtypegen",
		Short:         "Generate static result-column types for SQL queries",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to a YAML config file")

	root.AddCommand(newGenerateCmd(log, &configFile))
	root.AddCommand(newDumpCatalogCmd(log, &configFile))
	return root
}
