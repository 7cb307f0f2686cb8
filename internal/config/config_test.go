package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// allConfigKeys lists every env var that Load() and ResolveMasterKey() read.
var allConfigKeys = []string{
	"KEYSTORE_NAME",
	"KEYSTORE_DIR",
	"KEYSTORE_DB_PATH",
	"KEYSTORE_LOG_LEVEL",
	"KEYSTORE_LOG_FILE",
	"KEYSTORE_LOG_MAX_SIZE_MB",
	"KEYSTORE_LOG_MAX_FILES",
	"KEYSTORE_CONFIG_PATH",
	"XDG_CONFIG_HOME",
	"SIMPLE_KEYSTORE_KEY",
	"NETRC",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment. HOME points at an empty temp dir.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
	t.Setenv("HOME", t.TempDir())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load(LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "simple_keystore", cfg.Store.Name)
	assert.Equal(t, "simple_keystore.db", cfg.DatabasePath())
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, 5, cfg.Logging.MaxFiles)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoad_FileOverDefault(t *testing.T) {
	isolateConfigEnv(t)
	cfgPath := writeConfigFile(t, `
[store]
name = "team"
dir = "/var/lib/keys"

[logging]
level = "debug"
file = "/tmp/keystore.log"
max_files = 2
`)

	cfg, err := Load(LoadOptions{ConfigPath: cfgPath})

	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/keys", "team.db"), cfg.DatabasePath())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/keystore.log", cfg.Logging.File)
	assert.Equal(t, 2, cfg.Logging.MaxFiles)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
}

func TestLoad_EnvOverFile(t *testing.T) {
	isolateConfigEnv(t)
	cfgPath := writeConfigFile(t, `
[store]
name = "team"
`)

	cfg, err := Load(LoadOptions{
		ConfigPath: cfgPath,
		Env: map[string]string{
			"KEYSTORE_NAME":      "ops",
			"KEYSTORE_LOG_LEVEL": "info",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "ops.db", cfg.DatabasePath())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FlagOverEnv(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("KEYSTORE_DB_PATH", "/from/env.db")

	dbPath := "/from/flag.db"
	level := "error"
	cfg, err := Load(LoadOptions{
		Flags: FlagOverrides{DBPath: &dbPath, LogLevel: &level},
	})

	require.NoError(t, err)
	assert.Equal(t, "/from/flag.db", cfg.DatabasePath())
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_XDGConfigHome(t *testing.T) {
	isolateConfigEnv(t)
	xdg := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "simplekeystore"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "simplekeystore", "config.toml"), []byte("[store]\nname = \"xdg\"\n"), 0o600))
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := Load(LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "xdg", cfg.Store.Name)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad toml", file: "[store\nname = 1"},
		{name: "unknown log level", env: map[string]string{"KEYSTORE_LOG_LEVEL": "chatty"}},
		{name: "empty name", env: map[string]string{"KEYSTORE_NAME": " "}},
		{name: "name with separator", env: map[string]string{"KEYSTORE_NAME": "../escape"}},
		{name: "bad max size", env: map[string]string{"KEYSTORE_LOG_MAX_SIZE_MB": "ten"}},
		{name: "zero max size", file: "[logging]\nmax_size_mb = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			opts := LoadOptions{Env: tt.env}
			if tt.file != "" {
				opts.ConfigPath = writeConfigFile(t, tt.file)
			}

			_, err := Load(opts)
			require.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestLoad_MissingConfigFileIsFine(t *testing.T) {
	isolateConfigEnv(t)

	_, err := Load(LoadOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.toml")})
	require.NoError(t, err)
}
