package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
	"github.com/ericfisherdev/simplekeystore/internal/domain/port/driven"
)

const (
	keyCheckMetaKey   = "key_check"
	keyCheckPlaintext = "simplekeystore key check"
)

// VerifyKeyCheck makes sure cipher uses the same master key the database was
// written with. The first call on a database stores an encrypted marker; later
// calls must be able to decrypt it. A database that already holds records but
// no marker gets one only if cipher decrypts its oldest record. A mismatch is
// model.ErrConfiguration.
func VerifyKeyCheck(ctx context.Context, db *DB, cipher driven.Cipher) error {
	var stored string
	err := db.Reader.QueryRowContext(ctx, `SELECT value FROM keystore_meta WHERE key = ?`, keyCheckMetaKey).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		if err := checkExistingRecord(ctx, db, cipher); err != nil {
			return err
		}
		return writeKeyCheck(ctx, db, cipher)
	}
	if err != nil {
		return fmt.Errorf("read key check: %w", err)
	}

	plaintext, err := cipher.Decrypt(stored)
	if err != nil || plaintext != keyCheckPlaintext {
		return fmt.Errorf("%w: master key does not match this database", model.ErrConfiguration)
	}
	return nil
}

func checkExistingRecord(ctx context.Context, db *DB, cipher driven.Cipher) error {
	var encrypted string
	err := db.Reader.QueryRowContext(ctx, `SELECT encrypted_key FROM keystore ORDER BY id LIMIT 1`).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read existing key record: %w", err)
	}
	if _, err := cipher.Decrypt(encrypted); err != nil {
		return fmt.Errorf("%w: master key does not match this database", model.ErrConfiguration)
	}
	return nil
}

func writeKeyCheck(ctx context.Context, db *DB, cipher driven.Cipher) error {
	encrypted, err := cipher.Encrypt(keyCheckPlaintext)
	if err != nil {
		return fmt.Errorf("encrypt key check: %w", err)
	}

	// OR IGNORE keeps the first marker if another process raced us here.
	const query = `INSERT OR IGNORE INTO keystore_meta (key, value) VALUES (?, ?)`
	if _, err := db.Writer.ExecContext(ctx, query, keyCheckMetaKey, encrypted); err != nil {
		return fmt.Errorf("store key check: %w", err)
	}
	return nil
}
