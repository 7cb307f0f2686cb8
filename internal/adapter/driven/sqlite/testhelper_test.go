package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simplekeystore/internal/crypto"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		safeName,
	)

	db, err := open(context.Background(), dsn)
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, EnsureTable(context.Background(), db.Writer), "ensure table")
	require.NoError(t, RunMigrations(db.Writer), "run migrations")

	return db
}

// newTestCipher returns a cipher under a fresh random master key.
func newTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()

	encoded, err := crypto.GenerateMasterKey()
	require.NoError(t, err)
	raw, err := crypto.ParseMasterKey(encoded)
	require.NoError(t, err)

	c, err := crypto.NewCipher(raw)
	require.NoError(t, err)
	t.Cleanup(c.Destroy)
	return c
}

// setupTestRepo returns a KeyRepo over a fresh database and cipher.
func setupTestRepo(t *testing.T) (*KeyRepo, *DB) {
	t.Helper()

	db := setupTestDB(t)
	return NewKeyRepo(db, newTestCipher(t)), db
}

// prefixCipher is a deterministic stand-in that makes ciphertext collisions
// reproducible.
type prefixCipher struct{}

func (prefixCipher) Encrypt(plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

func (prefixCipher) Decrypt(ciphertext string) (string, error) {
	plaintext, ok := strings.CutPrefix(ciphertext, "enc:")
	if !ok {
		return "", fmt.Errorf("not a prefixCipher ciphertext")
	}
	return plaintext, nil
}

// rawRows returns every keystore row as raw column values.
func rawRows(t *testing.T, db *DB) [][]any {
	t.Helper()

	rows, err := db.Reader.Query(`SELECT * FROM keystore`)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, values)
	}
	require.NoError(t, rows.Err())
	return out
}
