package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simplekeystore/internal/cli"
	"github.com/ericfisherdev/simplekeystore/internal/crypto"
)

func setupKeystoreEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()

	key, err := crypto.GenerateMasterKey()
	require.NoError(t, err)

	t.Setenv("HOME", home)
	t.Setenv("NETRC", filepath.Join(home, ".netrc"))
	t.Setenv("KEYSTORE_CONFIG_PATH", filepath.Join(home, "absent.toml"))
	t.Setenv("KEYSTORE_LOG_LEVEL", "error")
	t.Setenv("KEYSTORE_LOG_FILE", "")
	t.Setenv("SIMPLE_KEYSTORE_KEY", key)
	return filepath.Join(home, "keys.db")
}

func TestExecute_Version(t *testing.T) {
	var out bytes.Buffer
	code := execute(context.Background(), &out, []string{"version"})

	assert.Equal(t, cli.ExitCodeSuccess, code)
	assert.Contains(t, out.String(), version)
}

func TestExecute_CountOnFreshStore(t *testing.T) {
	dbPath := setupKeystoreEnv(t)

	var out bytes.Buffer
	code := execute(context.Background(), &out, []string{"--db", dbPath, "--no-color", "count"})

	require.Equal(t, cli.ExitCodeSuccess, code)
	assert.Equal(t, "0", strings.TrimSpace(out.String()))
}

func TestExecute_CancelledContextUnwinds(t *testing.T) {
	dbPath := setupKeystoreEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	code := execute(ctx, &out, []string{"--db", dbPath, "--no-color", "count"})

	assert.Equal(t, cli.ExitCodeGeneric, code, "an interrupted command returns instead of exiting the process")
	assert.Empty(t, out.String())
}
