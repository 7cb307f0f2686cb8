package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

func TestVerifyKeyCheck(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	original := newTestCipher(t)

	require.NoError(t, VerifyKeyCheck(ctx, db, original), "first call stores the marker")
	require.NoError(t, VerifyKeyCheck(ctx, db, original), "same key verifies")

	err := VerifyKeyCheck(ctx, db, newTestCipher(t))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestVerifyKeyCheck_ExistingRecordsWithoutMarker(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	right := newTestCipher(t)

	_, err := NewKeyRepo(db, right).AddKey(ctx, model.NewKeyDefaults("svc", "sekret123"))
	require.NoError(t, err)

	err = VerifyKeyCheck(ctx, db, newTestCipher(t))
	require.ErrorIs(t, err, model.ErrConfiguration, "wrong key must not claim the database")

	require.NoError(t, VerifyKeyCheck(ctx, db, right), "records decrypt, marker is stored")
	require.NoError(t, VerifyKeyCheck(ctx, db, right))

	err = VerifyKeyCheck(ctx, db, newTestCipher(t))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestPrepare_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "simple_keystore.db")
	cipher := newTestCipher(t)

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	require.NoError(t, Prepare(ctx, db, cipher))

	repo := NewKeyRepo(db, cipher)
	_, err = repo.AddKey(ctx, model.NewKeyDefaults("svc", "sekret123"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, Prepare(ctx, reopened, cipher), "reopen with the same key")

	key, err := NewKeyRepo(reopened, cipher).GetKeyByName(ctx, "svc")
	require.NoError(t, err)
	assert.Equal(t, "sekret123", key)

	err = Prepare(ctx, reopened, newTestCipher(t))
	assert.ErrorIs(t, err, model.ErrConfiguration)
}
