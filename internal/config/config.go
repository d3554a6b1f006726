// Package config loads pgtypegen's settings from flags, environment
// variables (PGTYPEGEN_ prefix), and an optional YAML file, layered by
// viper the way the teacher's CLI layers flags (cmd/pg_lineage_demo)
// but with env/file support the teacher never needed.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings the CLI passes to generator.New (driver,
// default schema, fallback type, type overrides), plus the connection
// string and pretty-print toggle.
type Config struct {
	ConnString    string            `mapstructure:"conn"`
	Driver        string            `mapstructure:"driver"`
	DefaultSchema string            `mapstructure:"schema"`
	FallbackType  string            `mapstructure:"fallback_type"`
	TypeOverrides map[string]string `mapstructure:"type_overrides"`
	Pretty        bool              `mapstructure:"pretty"`
}

// RegisterFlags defines the flags the "generate" command exposes.
// Call once per command at construction time; Load binds them to
// viper separately so repeated Load calls never re-define a flag.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("conn", "", "PostgreSQL connection string (or PGTYPEGEN_CONN)")
	flags.String("driver", "pgx", "database/sql driver to open conn with: pgx or postgres (lib/pq)")
	flags.String("schema", "public", "default schema for unqualified table references")
	flags.String("fallback-type", "string", "target type used when no rule matches")
	flags.Bool("pretty", false, "pretty-print the rendered type output")
}

// Load builds a viper instance bound to flags (already registered via
// RegisterFlags), PGTYPEGEN_* env vars, and an optional config file,
// then decodes it into a Config.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("pgtypegen")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlag("conn", flags.Lookup("conn"))
	_ = v.BindPFlag("driver", flags.Lookup("driver"))
	_ = v.BindPFlag("schema", flags.Lookup("schema"))
	_ = v.BindPFlag("fallback_type", flags.Lookup("fallback-type"))
	_ = v.BindPFlag("pretty", flags.Lookup("pretty"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConnString = v.GetString("conn")
	cfg.Driver = v.GetString("driver")
	cfg.DefaultSchema = v.GetString("schema")
	cfg.FallbackType = v.GetString("fallback_type")
	cfg.Pretty = v.GetBool("pretty")

	if cfg.ConnString == "" {
		return nil, fmt.Errorf("connection string required: pass --conn or set PGTYPEGEN_CONN")
	}
	return &cfg, nil
}
