// Package config loads service configuration from defaults, an optional YAML
// file and ACUOTAZ_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ACUOTAZ"

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	ServiceName     string      `mapstructure:"service_name"`
	Env             string      `mapstructure:"env"`
	HTTPAddr        string      `mapstructure:"http_addr"`
	RedirectBaseURL string      `mapstructure:"redirect_base_url"`
	CatalogFile     string      `mapstructure:"catalog_file"`
	TraceExporter   string      `mapstructure:"trace_exporter"`
	Log             LogConfig   `mapstructure:"log"`
	Store           StoreConfig `mapstructure:"store"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "acuotaz-checkout")
	v.SetDefault("env", "dev")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("redirect_base_url", "https://apurata.com/pos/crear-orden-y-continuar")
	v.SetDefault("catalog_file", "")
	v.SetDefault("trace_exporter", "none")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("store.dsn", "")
}

// Load reads configuration. path may be empty, in which case only defaults and
// environment variables apply. Nested keys map to env names with '_', e.g.
// store.dsn -> ACUOTAZ_STORE_DSN.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for the postgres backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalid, c.Store.Backend)
	}
	switch c.TraceExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("%w: unknown trace_exporter %q", ErrInvalid, c.TraceExporter)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("%w: http_addr is required", ErrInvalid)
	}
	return nil
}
