package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
	"github.com/ericfisherdev/simplekeystore/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeyStore = (*KeyRepo)(nil)

// KeyRepo is the SQLite implementation of the KeyStore port interface.
// Secrets are encrypted with the injected cipher before write and decrypted
// after read. Any decryption failure fails the whole call.
type KeyRepo struct {
	db     *DB
	cipher driven.Cipher
	now    func() time.Time
}

// NewKeyRepo creates a new KeyRepo. The cipher is held for the repo's lifetime.
func NewKeyRepo(db *DB, cipher driven.Cipher) *KeyRepo {
	return &KeyRepo{db: db, cipher: cipher, now: time.Now}
}

// AddKey encrypts the secret and inserts a new record, returning its id.
func (r *KeyRepo) AddKey(ctx context.Context, key model.NewKey) (int64, error) {
	if strings.TrimSpace(key.Name) == "" {
		return 0, fmt.Errorf("add key: %w: name is required", model.ErrValidation)
	}
	if key.UnencryptedKey == "" {
		return 0, fmt.Errorf("add key %q: %w: key value is required", key.Name, model.ErrValidation)
	}

	if err := EnsureTable(ctx, r.db.Writer); err != nil {
		return 0, err
	}

	encrypted, err := r.cipher.Encrypt(key.UnencryptedKey)
	if err != nil {
		return 0, fmt.Errorf("add key %q: %w", key.Name, err)
	}

	const query = `
		INSERT INTO keystore (name, expiration_in_sse, active, batch, source, login, encrypted_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Writer.ExecContext(ctx, query,
		key.Name, key.ExpirationEpochSeconds, boolToInt(key.Active),
		key.Batch, key.Source, key.Login, encrypted,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("add key %q: %w: encrypted key already stored", key.Name, model.ErrUniqueness)
		}
		return 0, fmt.Errorf("add key %q: %w", key.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("add key %q: last insert id: %w", key.Name, err)
	}
	return id, nil
}

// GetRecordByID returns the record with the given id, or nil, nil if none.
func (r *KeyRepo) GetRecordByID(ctx context.Context, id int64) (*model.KeyRecord, error) {
	rec, err := r.scanRecord(r.db.Reader.QueryRowContext(ctx, selectAllQuery+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get key record %d: %w", id, err)
	}
	return rec, nil
}

// GetKeyByName returns the plaintext secret of the only record named name.
// Names are not unique in the schema; this lookup treats them as handles.
func (r *KeyRepo) GetKeyByName(ctx context.Context, name string) (string, error) {
	records, err := r.GetMatchingRecords(ctx, model.NameFilter(name), nil)
	if err != nil {
		return "", err
	}
	if len(records) != 1 {
		return "", fmt.Errorf("%w: got %d records named %q", model.ErrAmbiguous, len(records), name)
	}
	return records[0].Key, nil
}

// GetRecordByPlaintextKey decrypts every stored key until one equals
// plaintext. Ciphertexts use random nonces, so there is no way to look the
// value up directly; cost grows linearly with the table.
func (r *KeyRepo) GetRecordByPlaintextKey(ctx context.Context, plaintext string) (*model.KeyRecord, error) {
	records, err := r.queryRecords(ctx, selectAllQuery+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("find key record by value: %w", err)
	}
	for i := range records {
		if records[i].Key == plaintext {
			return &records[i], nil
		}
	}
	return nil, nil
}

// GetMatchingRecords returns the records matching filter in id order, then
// stably sorted by order if given.
func (r *KeyRepo) GetMatchingRecords(ctx context.Context, filter model.KeyFilter, order []model.SortField) ([]model.KeyRecord, error) {
	where, args := buildWhere(filter)
	records, err := r.queryRecords(ctx, selectAllQuery+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("get matching key records: %w", err)
	}

	model.SortRecords(records, order)
	return records, nil
}

// DeleteMatchingRecords deletes every record matching filter. An empty filter
// deletes everything.
func (r *KeyRepo) DeleteMatchingRecords(ctx context.Context, filter model.KeyFilter) (int64, error) {
	where, args := buildWhere(filter)
	result, err := r.db.Writer.ExecContext(ctx, "DELETE FROM "+keystoreTable+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete matching key records: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete matching key records: rows affected: %w", err)
	}
	return count, nil
}

// DeleteRecordsByName deletes every record named name.
func (r *KeyRepo) DeleteRecordsByName(ctx context.Context, name string) (int64, error) {
	return r.DeleteMatchingRecords(ctx, model.NameFilter(name))
}

// DeleteByPlaintextKey finds the stored ciphertext for plaintext and deletes
// that exact row.
func (r *KeyRepo) DeleteByPlaintextKey(ctx context.Context, plaintext string) (int64, error) {
	rec, err := r.GetRecordByPlaintextKey(ctx, plaintext)
	if err != nil {
		return 0, err
	}
	if rec == nil {
		return 0, nil
	}

	result, err := r.db.Writer.ExecContext(ctx, `DELETE FROM keystore WHERE encrypted_key = ?`, rec.EncryptedKey)
	if err != nil {
		return 0, fmt.Errorf("delete key record %d: %w", rec.ID, err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete key record %d: rows affected: %w", rec.ID, err)
	}
	return count, nil
}

// UpdateKey applies the set fields to record id. The secret is never touched.
func (r *KeyRepo) UpdateKey(ctx context.Context, id int64, fields model.KeyFields) error {
	if id <= 0 {
		return fmt.Errorf("update key: %w: invalid id %d", model.ErrValidation, id)
	}
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return fmt.Errorf("update key %d: %w: name must not be empty", id, model.ErrValidation)
	}

	set, args := buildSet(fields)
	if set == "" {
		return nil
	}

	result, err := r.db.Writer.ExecContext(ctx, "UPDATE "+keystoreTable+set+" WHERE id = ?", append(args, id)...)
	if err != nil {
		return fmt.Errorf("update key %d: %w", id, err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update key %d: rows affected: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("update key %d: %w", id, model.ErrNotFound)
	}
	return nil
}

// MarkInactive sets active=false on the record holding plaintext.
func (r *KeyRepo) MarkInactive(ctx context.Context, plaintext string) error {
	rec, err := r.GetRecordByPlaintextKey(ctx, plaintext)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("mark key inactive: %w: no record holds that key", model.ErrNotFound)
	}

	inactive := false
	return r.UpdateKey(ctx, rec.ID, model.KeyFields{Active: &inactive})
}

// Count returns the number of stored records.
func (r *KeyRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM keystore`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count key records: %w", err)
	}
	return count, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// queryRecords runs a SELECT over all columns and returns decrypted records.
func (r *KeyRepo) queryRecords(ctx context.Context, query string, args ...any) ([]model.KeyRecord, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.KeyRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key records: %w", err)
	}

	return records, nil
}

// scanRecord reads one row in canonical column order, decrypts the key and
// fills the derived fields.
func (r *KeyRepo) scanRecord(row rowScanner) (*model.KeyRecord, error) {
	var (
		rec        model.KeyRecord
		expiration sql.NullInt64
		active     sql.NullInt64
		batch      sql.NullString
		source     sql.NullString
		login      sql.NullString
		encrypted  sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Name, &expiration, &active, &batch, &source, &login, &encrypted); err != nil {
		return nil, err
	}

	if expiration.Valid {
		rec.ExpirationEpochSeconds = &expiration.Int64
	}
	// The column defaults to 1; NULL only appears in hand-edited rows.
	rec.Active = !active.Valid || active.Int64 != 0
	rec.Batch = nullableString(batch)
	rec.Source = nullableString(source)
	rec.Login = nullableString(login)
	rec.EncryptedKey = encrypted.String

	plaintext, err := r.cipher.Decrypt(rec.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt key record %d: %w", rec.ID, err)
	}
	rec.Key = plaintext
	rec.Annotate(r.now())

	return &rec, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
