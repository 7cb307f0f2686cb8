package driven

import (
	"context"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// KeyStore defines the driven port for encrypted key record persistence.
// The adapter encrypts on write and decrypts on read; this interface deals in
// plaintext at the domain boundary. Returned records carry derived fields.
type KeyStore interface {
	// AddKey encrypts the secret, inserts the record and returns its id.
	// Returns model.ErrValidation for an empty name or secret and
	// model.ErrUniqueness if the ciphertext collides with a stored one.
	AddKey(ctx context.Context, key model.NewKey) (int64, error)

	// GetRecordByID returns the record with the given id, or nil, nil.
	GetRecordByID(ctx context.Context, id int64) (*model.KeyRecord, error)

	// GetKeyByName returns the plaintext secret of the single record named name.
	// Returns model.ErrAmbiguous when zero or several records match.
	GetKeyByName(ctx context.Context, name string) (string, error)

	// GetRecordByPlaintextKey scans and decrypts every record and returns the
	// first whose secret equals plaintext, or nil, nil. Linear in table size.
	GetRecordByPlaintextKey(ctx context.Context, plaintext string) (*model.KeyRecord, error)

	// GetMatchingRecords returns the records matching filter, sorted by order
	// when it is non-empty.
	GetMatchingRecords(ctx context.Context, filter model.KeyFilter, order []model.SortField) ([]model.KeyRecord, error)

	// DeleteMatchingRecords deletes the records matching filter and returns how
	// many were removed.
	DeleteMatchingRecords(ctx context.Context, filter model.KeyFilter) (int64, error)

	// DeleteRecordsByName deletes every record named name.
	DeleteRecordsByName(ctx context.Context, name string) (int64, error)

	// DeleteByPlaintextKey deletes the record holding plaintext. Returns 0 or 1.
	DeleteByPlaintextKey(ctx context.Context, plaintext string) (int64, error)

	// UpdateKey applies a partial metadata update to the record with the given id.
	// An empty field set is a no-op. Returns model.ErrNotFound if no row matches.
	UpdateKey(ctx context.Context, id int64, fields model.KeyFields) error

	// MarkInactive sets active=false on the record holding plaintext.
	MarkInactive(ctx context.Context, plaintext string) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}
