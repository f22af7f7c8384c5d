// Package config provides configuration types, defaults, and persistence for finder.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/zjrosen/finder/internal/domain"
	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/log"
	"github.com/zjrosen/finder/internal/paths"
	"github.com/zjrosen/finder/internal/tracing"
)

// DefaultConfigPath is where a config is created when none is found.
const DefaultConfigPath = ".finder/config.yaml"

// Config holds all configuration options for finder.
type Config struct {
	DB       string         `mapstructure:"db"`        // SQLite file; empty means DefaultDBPath
	Debug    bool           `mapstructure:"debug"`     // Enable the file logger
	LogFile  string         `mapstructure:"log_file"`  // Debug log path
	LogLevel string         `mapstructure:"log_level"` // debug, info, warn or error
	Cache    CacheConfig    `mapstructure:"cache"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Tracing  tracing.Config `mapstructure:"tracing"`
	Queries  []QueryConfig  `mapstructure:"queries"`
}

// CacheConfig controls memoization of resolved operations.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Sliding bool          `mapstructure:"sliding"` // Each hit restarts the TTL
}

// WatchConfig controls how external database writes invalidate the cache.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// QueryConfig is a named, saved operation.
type QueryConfig struct {
	Name      string `mapstructure:"name"`
	Operation string `mapstructure:"operation"`
	OrderBy   string `mapstructure:"order_by"`
}

// Parse parses the saved operation and its order.
func (q QueryConfig) Parse() (finder.Operation, []finder.OrderTerm, error) {
	op, err := finder.ParseOperation(q.Operation)
	if err != nil {
		return nil, nil, err
	}
	orderBy, err := finder.ParseOrderBy(q.OrderBy)
	if err != nil {
		return nil, nil, err
	}
	return op, orderBy, nil
}

// Query returns the saved query called name.
func (c Config) Query(name string) (QueryConfig, bool) {
	for _, q := range c.Queries {
		if q.Name == name {
			return q, true
		}
	}
	return QueryConfig{}, false
}

// DBPath resolves the configured database, which may name a file, a data
// directory or a project directory. Empty means DefaultDBPath.
func (c Config) DBPath() string {
	return paths.ResolveDBPath(c.DB)
}

// DefaultDBPath returns .finder/finder.db in the current directory.
func DefaultDBPath() string {
	return filepath.Join(paths.DataDir, paths.DBFile)
}

// DefaultTracesFilePath returns ~/.config/finder/traces/traces.jsonl, or
// empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "finder", "traces", "traces.jsonl")
}

// Defaults returns a Config with default values.
func Defaults() Config {
	traces := tracing.DefaultConfig()
	traces.FilePath = DefaultTracesFilePath()

	return Config{
		LogFile:  "debug.log",
		LogLevel: "debug",
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 250 * time.Millisecond,
		},
		Tracing: traces,
		Queries: DefaultQueries(),
	}
}

// DefaultQueries returns the queries written into a new config file.
func DefaultQueries() []QueryConfig {
	return []QueryConfig{
		{Name: "active", Operation: "status = active", OrderBy: "name"},
		{Name: "recent", Operation: "created >= -7d", OrderBy: "created desc"},
		{Name: "archived", Operation: "status = archived", OrderBy: "updated desc"},
	}
}

// SetDefaults registers Defaults with v so unset keys fall back to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.sliding", d.Cache.Sliding)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Load reads configuration into a Config.
//
// Lookup order when cfgFile is empty:
//  1. .finder/config.yaml (current directory)
//  2. ~/.config/finder/config.yaml (user config)
//
// When neither exists a commented default is written to DefaultConfigPath.
// Environment overrides are applied last. Load returns the path of the file
// used, which is where SaveQueries should write.
func Load(v *viper.Viper, cfgFile string) (Config, string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if _, err := os.Stat(DefaultConfigPath); err == nil {
		v.SetConfigFile(DefaultConfigPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "finder"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("reading config: %w", err)
		}
		// Nothing found anywhere; continue with defaults if the write fails
		if writeErr := WriteDefaultConfig(DefaultConfigPath); writeErr == nil {
			v.SetConfigFile(DefaultConfigPath)
			_ = v.ReadInConfig()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, "", err
	}

	path := v.ConfigFileUsed()
	if path == "" {
		path = DefaultConfigPath
	}
	log.Debug(log.CatConfig, "config loaded", "path", path, "db", cfg.DBPath())
	return cfg, path, nil
}

// envOverrides are the FINDER_* variables. Unset variables leave the
// matching field nil.
type envOverrides struct {
	DB       *string        `env:"FINDER_DB"`
	Debug    *bool          `env:"FINDER_DEBUG"`
	LogFile  *string        `env:"FINDER_LOG"`
	CacheTTL *time.Duration `env:"FINDER_CACHE_TTL"`
}

// ApplyEnv overlays FINDER_DB, FINDER_DEBUG, FINDER_LOG and FINDER_CACHE_TTL
// onto cfg. A FINDER_CACHE_TTL of 0 disables the cache.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.DB != nil {
		cfg.DB = *o.DB
	}
	if o.Debug != nil {
		cfg.Debug = *o.Debug
	}
	if o.LogFile != nil {
		cfg.LogFile = *o.LogFile
	}
	if o.CacheTTL != nil {
		cfg.Cache.TTL = *o.CacheTTL
		cfg.Cache.Enabled = *o.CacheTTL > 0
	}
	return nil
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", cfg.Cache.TTL)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", cfg.Watch.Debounce)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", cfg.LogLevel)
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	return ValidateQueries(cfg.Queries)
}

// ValidateQueries checks that every saved query has a unique name and
// parses against the AbstractChild schema.
func ValidateQueries(queries []QueryConfig) error {
	seen := make(map[string]bool, len(queries))
	for i, q := range queries {
		if q.Name == "" {
			return fmt.Errorf("query %d: name is required", i)
		}
		if seen[q.Name] {
			return fmt.Errorf("query %d (%s): duplicate name", i, q.Name)
		}
		seen[q.Name] = true

		op, orderBy, err := q.Parse()
		if err != nil {
			return fmt.Errorf("query %d (%s): %w", i, q.Name, err)
		}
		if err := finder.Validate(domain.AbstractChildSchema, &finder.Query{Filter: op, OrderBy: orderBy}); err != nil {
			return fmt.Errorf("query %d (%s): %w", i, q.Name, err)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	if !tracing.IsValidExporter(t.Exporter) {
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Finder Configuration

# SQLite database (default: .finder/finder.db)
# db: /path/to/finder.db

# Debug logging (also enabled by --debug or FINDER_DEBUG=1)
debug: false
log_file: debug.log
log_level: debug

# Resolved operations are cached until the next write or external change
cache:
  enabled: true
  ttl: 10m
  sliding: false   # true: entries expire 10m after their last use

# Watch the database file so writes from other processes drop the cache
watch:
  enabled: true
  debounce: 250ms

# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.config/finder/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Saved queries, run with: finder query --named <name>
#
# Operation syntax:
#   Attributes: id, guid, parent_id, name, status, created, updated
#   Operators: = != < > <= >= ~ (contains) !~ in not-in
#   Examples:
#     parent_id = 3 and status in (active, inactive)
#     name ~ gear or not status = archived
#     created >= -7d
queries:
  - name: active
    operation: status = active
    order_by: name
  - name: recent
    operation: created >= -7d
    order_by: created desc
  - name: archived
    operation: status = archived
    order_by: updated desc
`
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments, creating the parent directory.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
