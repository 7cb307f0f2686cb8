// Package config loads keystore configuration from a TOML file, environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

const (
	defaultStoreName    = "simple_keystore"
	defaultLogLevel     = "warn"
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the resolved keystore configuration.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Logging LoggingConfig `toml:"logging"`
}

// StoreConfig locates the database. DBPath wins over Dir and Name when set.
type StoreConfig struct {
	Name   string `toml:"name"`
	Dir    string `toml:"dir"`
	DBPath string `toml:"db_path"`
}

// LoggingConfig controls the slog handler and the optional rotating log file.
type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// LoadOptions tells Load where to look. Env, when set, is consulted before the
// process environment so tests stay hermetic.
type LoadOptions struct {
	ConfigPath string
	Env        map[string]string
	Flags      FlagOverrides
}

// FlagOverrides carries command-line values. Nil means the flag was not given.
type FlagOverrides struct {
	Name     *string
	DBPath   *string
	LogLevel *string
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Name: defaultStoreName,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
	}
}

// DatabasePath returns the SQLite file backing the store: DBPath if set,
// otherwise <Dir>/<Name>.db.
func (c Config) DatabasePath() string {
	if c.Store.DBPath != "" {
		return c.Store.DBPath
	}
	return filepath.Join(c.Store.Dir, c.Store.Name+".db")
}

// Load resolves the configuration: defaults, then the TOML file, then
// KEYSTORE_* environment variables, then flags. A missing config file is fine.
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	configPath, err := resolveConfigPath(opts)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}
	if err := loadAndApplyFile(configPath, &cfg); err != nil {
		return Config{}, err
	}

	if err := applyEnvOverrides(&cfg, opts); err != nil {
		return Config{}, err
	}
	applyFlagOverrides(&cfg, opts.Flags)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type rawConfig struct {
	Store   *rawStore   `toml:"store"`
	Logging *rawLogging `toml:"logging"`
}

type rawStore struct {
	Name   *string `toml:"name"`
	Dir    *string `toml:"dir"`
	DBPath *string `toml:"db_path"`
}

type rawLogging struct {
	Level     *string `toml:"level"`
	File      *string `toml:"file"`
	MaxSizeMB *int    `toml:"max_size_mb"`
	MaxFiles  *int    `toml:"max_files"`
}

func loadAndApplyFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %q: %w", path, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parse TOML file %q: %v", model.ErrConfiguration, path, err)
	}

	if raw.Store != nil {
		setValue(raw.Store.Name, &cfg.Store.Name)
		setValue(raw.Store.Dir, &cfg.Store.Dir)
		setValue(raw.Store.DBPath, &cfg.Store.DBPath)
	}
	if raw.Logging != nil {
		setValue(raw.Logging.Level, &cfg.Logging.Level)
		setValue(raw.Logging.File, &cfg.Logging.File)
		setValue(raw.Logging.MaxSizeMB, &cfg.Logging.MaxSizeMB)
		setValue(raw.Logging.MaxFiles, &cfg.Logging.MaxFiles)
	}
	return nil
}

func applyEnvOverrides(cfg *Config, opts LoadOptions) error {
	if value, ok := lookupEnv(opts, "KEYSTORE_NAME"); ok {
		cfg.Store.Name = value
	}
	if value, ok := lookupEnv(opts, "KEYSTORE_DIR"); ok {
		cfg.Store.Dir = value
	}
	if value, ok := lookupEnv(opts, "KEYSTORE_DB_PATH"); ok {
		cfg.Store.DBPath = value
	}

	if value, ok := lookupEnv(opts, "KEYSTORE_LOG_LEVEL"); ok {
		cfg.Logging.Level = value
	}
	if value, ok := lookupEnv(opts, "KEYSTORE_LOG_FILE"); ok {
		cfg.Logging.File = value
	}
	if value, ok := lookupEnv(opts, "KEYSTORE_LOG_MAX_SIZE_MB"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse KEYSTORE_LOG_MAX_SIZE_MB: %v", model.ErrConfiguration, err)
		}
		cfg.Logging.MaxSizeMB = parsed
	}
	if value, ok := lookupEnv(opts, "KEYSTORE_LOG_MAX_FILES"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: parse KEYSTORE_LOG_MAX_FILES: %v", model.ErrConfiguration, err)
		}
		cfg.Logging.MaxFiles = parsed
	}

	return nil
}

func applyFlagOverrides(cfg *Config, flags FlagOverrides) {
	setValue(flags.Name, &cfg.Store.Name)
	setValue(flags.DBPath, &cfg.Store.DBPath)
	setValue(flags.LogLevel, &cfg.Logging.Level)
}

func validate(cfg Config) error {
	name := strings.TrimSpace(cfg.Store.Name)
	if cfg.Store.DBPath == "" && name == "" {
		return fmt.Errorf("%w: store.name must not be empty", model.ErrConfiguration)
	}
	if strings.ContainsAny(cfg.Store.Name, `/\`) {
		return fmt.Errorf("%w: store.name %q must not contain path separators", model.ErrConfiguration, cfg.Store.Name)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(cfg.Logging.Level)) {
		return fmt.Errorf("%w: logging.level must be one of %s", model.ErrConfiguration, strings.Join(validLogLevels, ", "))
	}
	if cfg.Logging.MaxSizeMB <= 0 || cfg.Logging.MaxFiles < 0 {
		return fmt.Errorf("%w: logging.max_size_mb must be > 0 and logging.max_files >= 0", model.ErrConfiguration)
	}
	return nil
}

func setValue[T any](raw *T, target *T) {
	if raw != nil {
		*target = *raw
	}
}

func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigPath != "" {
		return opts.ConfigPath, nil
	}
	if value, ok := lookupEnv(opts, "KEYSTORE_CONFIG_PATH"); ok {
		return value, nil
	}
	if value, ok := lookupEnv(opts, "XDG_CONFIG_HOME"); ok && value != "" {
		return filepath.Join(value, "simplekeystore", "config.toml"), nil
	}

	home, err := homeDir(opts)
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "simplekeystore", "config.toml"), nil
}

func lookupEnv(opts LoadOptions, key string) (string, bool) {
	if opts.Env != nil {
		if value, ok := opts.Env[key]; ok {
			return value, true
		}
	}
	return os.LookupEnv(key)
}

func homeDir(opts LoadOptions) (string, error) {
	if value, ok := lookupEnv(opts, "HOME"); ok && value != "" {
		return value, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home, nil
}
