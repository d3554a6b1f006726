// Command pgtypegen renders static result-column types for SQL
// queries against a live PostgreSQL schema.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pgtypegen: logger init:", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := newRootCmd(logger.Sugar()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
