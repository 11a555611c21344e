// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names the deployment flavor a config file targets.
type Environment string

const (
	// Development is a local workstation setup.
	Development Environment = "development"
	// Staging mirrors production for pre-release testing.
	Staging Environment = "staging"
	// Production is a live deployment.
	Production Environment = "production"
)

// Config is the root configuration for the harness. A YAML file
// populates it over the defaults from Default.
type Config struct {
	// Environment identifies the deployment type (development,
	// staging, production).
	Environment Environment `yaml:"environment"`

	// Store configures the session store.
	Store StoreConfig `yaml:"store"`

	// Engine configures the execution engine.
	Engine EngineConfig `yaml:"engine"`

	// Journal configures the local run journal.
	Journal JournalConfig `yaml:"journal"`

	// Catalog configures the built-in routines.
	Catalog CatalogConfig `yaml:"catalog"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides holds one per-environment override section. Nil
// subsections leave the base config untouched.
type ConfigOverrides struct {
	Store   *StoreConfig   `yaml:"store,omitempty"`
	Engine  *EngineConfig  `yaml:"engine,omitempty"`
	Journal *JournalConfig `yaml:"journal,omitempty"`
	Catalog *CatalogConfig `yaml:"catalog,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// StoreConfig configures the session store.
type StoreConfig struct {
	// Backend selects the store implementation.
	// Values: "redis", "memory". Default: redis
	Backend string `yaml:"backend"`

	// Address is the Redis host:port.
	// Default: localhost:6379
	Address string `yaml:"address"`

	// Password is the Redis password. Empty for no auth.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db"`

	// ReadAttempts bounds session reads against a flaky store before
	// a run is abandoned. Zero uses the resolver default.
	ReadAttempts int `yaml:"read_attempts"`
}

// EngineConfig configures the execution engine.
type EngineConfig struct {
	// Backend selects the engine implementation.
	// Values: "claude", "mock". Default: claude
	Backend string `yaml:"backend"`

	// Binary is the Claude Code executable. The CLAUDE_BINARY
	// environment variable overrides it.
	// Default: claude (found in PATH)
	Binary string `yaml:"binary"`

	// WorkingDirectory is where the engine process runs. Empty
	// inherits the harness's working directory.
	WorkingDirectory string `yaml:"working_directory"`

	// Timeout bounds a single invocation, as a duration string
	// ("15m", "1h"). Empty means no timeout.
	Timeout string `yaml:"timeout"`

	// TranscriptDir receives per-invocation JSONL transcripts.
	// Empty disables capture.
	// Default: ${HOME}/.local/state/routines/transcripts
	TranscriptDir string `yaml:"transcript_dir"`

	// CompressTranscripts stores transcripts zstd-compressed.
	// Default: false (development), true (production)
	CompressTranscripts bool `yaml:"compress_transcripts"`

	// BypassPermissions runs the engine with permission prompts
	// disabled. Unattended runs need this; nobody is around to
	// answer. Default: true
	BypassPermissions bool `yaml:"bypass_permissions"`
}

// JournalConfig configures the local run journal.
type JournalConfig struct {
	// Path is the SQLite database file. Empty disables the journal.
	// Default: ${HOME}/.local/state/routines/journal.db
	Path string `yaml:"path"`

	// PoolSize is the SQLite connection pool size. Zero uses the
	// pool default.
	PoolSize int `yaml:"pool_size"`
}

// CatalogConfig configures the built-in routines.
type CatalogConfig struct {
	// OutboxDir is where the letter and digest routines deliver
	// their results.
	// Default: ${HOME}/.local/state/routines/outbox
	OutboxDir string `yaml:"outbox_dir"`

	// Timezone is the IANA zone catalog prompts render timestamps
	// in. Empty uses the catalog default.
	Timezone string `yaml:"timezone"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is the minimum level emitted.
	// Values: "debug", "info", "warn", "error". Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration. These defaults are a
// usable development setup: Redis on localhost, the claude binary from
// PATH, transcripts and journal under ~/.local/state/routines.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	stateDir := filepath.Join(homeDir, ".local", "state", "routines")

	return &Config{
		Environment: Development,
		Store: StoreConfig{
			Backend: "redis",
			Address: "localhost:6379",
		},
		Engine: EngineConfig{
			Backend:           "claude",
			Binary:            "claude",
			TranscriptDir:     filepath.Join(stateDir, "transcripts"),
			BypassPermissions: true,
		},
		Journal: JournalConfig{
			Path: filepath.Join(stateDir, "journal.db"),
		},
		Catalog: CatalogConfig{
			OutboxDir: filepath.Join(stateDir, "outbox"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load resolves the config file named by the ROUTINES_CONFIG
// environment variable. Fails when the variable is unset; use
// LoadOrDefault for commands that can run on defaults.
func Load() (*Config, error) {
	configPath := os.Getenv("ROUTINES_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("ROUTINES_CONFIG environment variable not set; " +
			"set it to the path of your routines.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile reads and resolves one YAML config file. Resolution order:
// defaults, then the file's values, then the override section matching
// the resulting environment, then ${VAR} expansion in path fields.
// Process environment variables never override config values directly.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// LoadOrDefault resolves configuration for commands that work without
// a config file: an explicit path wins, then ROUTINES_CONFIG, then
// the built-in defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if os.Getenv("ROUTINES_CONFIG") != "" {
		return Load()
	}
	cfg := Default()
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides merges the override section matching
// c.Environment into the base config.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: compressed transcripts, prompts
		// bypassed for unattended operation.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Engine: &EngineConfig{
					CompressTranscripts: true,
					BypassPermissions:   true,
				},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Store != nil {
		if overrides.Store.Backend != "" {
			c.Store.Backend = overrides.Store.Backend
		}
		if overrides.Store.Address != "" {
			c.Store.Address = overrides.Store.Address
		}
		if overrides.Store.Password != "" {
			c.Store.Password = overrides.Store.Password
		}
		if overrides.Store.DB != 0 {
			c.Store.DB = overrides.Store.DB
		}
		if overrides.Store.ReadAttempts != 0 {
			c.Store.ReadAttempts = overrides.Store.ReadAttempts
		}
	}

	if overrides.Engine != nil {
		if overrides.Engine.Backend != "" {
			c.Engine.Backend = overrides.Engine.Backend
		}
		if overrides.Engine.Binary != "" {
			c.Engine.Binary = overrides.Engine.Binary
		}
		if overrides.Engine.WorkingDirectory != "" {
			c.Engine.WorkingDirectory = overrides.Engine.WorkingDirectory
		}
		if overrides.Engine.Timeout != "" {
			c.Engine.Timeout = overrides.Engine.Timeout
		}
		if overrides.Engine.TranscriptDir != "" {
			c.Engine.TranscriptDir = overrides.Engine.TranscriptDir
		}
		// Bools are always applied from a present engine override.
		c.Engine.CompressTranscripts = overrides.Engine.CompressTranscripts
		c.Engine.BypassPermissions = overrides.Engine.BypassPermissions
	}

	if overrides.Journal != nil {
		if overrides.Journal.Path != "" {
			c.Journal.Path = overrides.Journal.Path
		}
		if overrides.Journal.PoolSize != 0 {
			c.Journal.PoolSize = overrides.Journal.PoolSize
		}
	}

	if overrides.Catalog != nil {
		if overrides.Catalog.OutboxDir != "" {
			c.Catalog.OutboxDir = overrides.Catalog.OutboxDir
		}
		if overrides.Catalog.Timezone != "" {
			c.Catalog.Timezone = overrides.Catalog.Timezone
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
	}
}

// expandVariables runs ${VAR} expansion over every path field.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Engine.Binary = expandVars(c.Engine.Binary, vars)
	c.Engine.WorkingDirectory = expandVars(c.Engine.WorkingDirectory, vars)
	c.Engine.TranscriptDir = expandVars(c.Engine.TranscriptDir, vars)
	c.Journal.Path = expandVars(c.Journal.Path, vars)
	c.Catalog.OutboxDir = expandVars(c.Catalog.OutboxDir, vars)
}

// varPattern matches ${VAR} and ${VAR:-default} references.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars substitutes variable references, consulting vars before
// the process environment and falling back to the reference's default.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(ref string) string {
		groups := varPattern.FindStringSubmatch(ref)
		name, fallback := groups[1], groups[2]
		if v := vars[name]; v != "" {
			return v
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return fallback
	})
}

// Validate reports every problem with the configuration, joined into
// a single error.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	storeBackends := []string{"redis", "memory"}
	if !slices.Contains(storeBackends, c.Store.Backend) {
		errs = append(errs, fmt.Errorf("store.backend must be one of: %v", storeBackends))
	}
	if c.Store.Backend == "redis" && c.Store.Address == "" {
		errs = append(errs, fmt.Errorf("store.address is required for the redis backend"))
	}
	if c.Store.ReadAttempts < 0 {
		errs = append(errs, fmt.Errorf("store.read_attempts must not be negative"))
	}

	engineBackends := []string{"claude", "mock"}
	if !slices.Contains(engineBackends, c.Engine.Backend) {
		errs = append(errs, fmt.Errorf("engine.backend must be one of: %v", engineBackends))
	}
	if c.Engine.Timeout != "" {
		if _, err := time.ParseDuration(c.Engine.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("engine.timeout: %w", err))
		}
	}

	if c.Catalog.Timezone != "" {
		if _, err := time.LoadLocation(c.Catalog.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("catalog.timezone: %w", err))
		}
	}

	logLevels := []string{"debug", "info", "warn", "error"}
	if c.Logging.Level != "" && !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: %v", logLevels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EngineTimeout parses the configured engine timeout. Zero when
// unset.
func (c *Config) EngineTimeout() (time.Duration, error) {
	if c.Engine.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil {
		return 0, fmt.Errorf("engine.timeout: %w", err)
	}
	return timeout, nil
}

// EnsurePaths creates the directories the configuration points at:
// the transcript directory and the journal's parent directory.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Engine.TranscriptDir}
	if c.Journal.Path != "" {
		paths = append(paths, filepath.Dir(c.Journal.Path))
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
