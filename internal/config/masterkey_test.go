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

func writeNetrc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".netrc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolveMasterKey_EnvWins(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NETRC", writeNetrc(t, "machine SIMPLE_KEYSTORE_KEY password from-netrc\n"))
	t.Setenv("SIMPLE_KEYSTORE_KEY", " from-env ")

	key, err := ResolveMasterKey(LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestResolveMasterKey_Netrc(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("NETRC", writeNetrc(t, `
# credentials
machine api.example.com login bob password hunter2
machine SIMPLE_KEYSTORE_KEY
	login keystore
	password from-netrc
`))

	key, err := ResolveMasterKey(LoadOptions{})

	require.NoError(t, err)
	assert.Equal(t, "from-netrc", key)
}

func TestResolveMasterKey_HomeNetrc(t *testing.T) {
	isolateConfigEnv(t)
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, ".netrc"), []byte("machine SIMPLE_KEYSTORE_KEY password from-home\n"), 0o600))

	key, err := ResolveMasterKey(LoadOptions{Env: map[string]string{"HOME": home}})

	require.NoError(t, err)
	assert.Equal(t, "from-home", key)
}

func TestResolveMasterKey_Missing(t *testing.T) {
	tests := []struct {
		name  string
		netrc string
	}{
		{name: "no netrc file"},
		{name: "no matching machine", netrc: "machine other password x\n"},
		{name: "malformed netrc", netrc: "machine SIMPLE_KEYSTORE_KEY bogus x\n"},
		{name: "dangling keyword", netrc: "machine SIMPLE_KEYSTORE_KEY password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			if tt.netrc != "" {
				t.Setenv("NETRC", writeNetrc(t, tt.netrc))
			}

			_, err := ResolveMasterKey(LoadOptions{})
			require.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestNetrcPassword(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantFound bool
	}{
		{
			name:      "single line entry",
			input:     "machine SIMPLE_KEYSTORE_KEY login me password abc",
			want:      "abc",
			wantFound: true,
		},
		{
			name:      "default used when no machine matches",
			input:     "machine other password x\ndefault login anon password fallback\n",
			want:      "fallback",
			wantFound: true,
		},
		{
			name:      "machine beats default",
			input:     "default password fallback\nmachine SIMPLE_KEYSTORE_KEY password exact\n",
			want:      "exact",
			wantFound: true,
		},
		{
			name:      "macro body skipped",
			input:     "macdef init\nmachine SIMPLE_KEYSTORE_KEY password fake\n\nmachine SIMPLE_KEYSTORE_KEY password real\n",
			want:      "real",
			wantFound: true,
		},
		{
			name:  "password belongs to another machine",
			input: "machine other password x\nmachine SIMPLE_KEYSTORE_KEY login only\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := netrcPassword(strings.NewReader(tt.input), MasterKeyVar)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, got)
		})
	}
}
