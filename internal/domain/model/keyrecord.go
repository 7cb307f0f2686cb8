package model

import "time"

// KeyRecord is one stored credential entry. The persisted columns are ID through
// EncryptedKey; Key, ExpirationDate, Expired and Usable are derived when the
// record is read and are never written back.
type KeyRecord struct {
	ID                     int64
	Name                   string
	ExpirationEpochSeconds *int64
	Active                 bool
	Batch                  *string
	Source                 *string
	Login                  *string
	EncryptedKey           string

	Key            string
	ExpirationDate *time.Time
	Expired        bool
	Usable         bool
}

// Annotate fills the derived fields relative to now. A zero expiration is
// treated the same as a missing one; older databases stored 0 for "never".
func (r *KeyRecord) Annotate(now time.Time) {
	r.ExpirationDate = nil
	if r.ExpirationEpochSeconds != nil && *r.ExpirationEpochSeconds != 0 {
		exp := time.Unix(*r.ExpirationEpochSeconds, 0)
		r.ExpirationDate = &exp
	}

	r.Expired = r.ExpirationDate != nil && r.ExpirationDate.Before(now)
	r.Usable = r.Active && !r.Expired
}

// NewKey carries the values for a record about to be created. Active defaults
// to true through NewKeyDefaults; the zero value of NewKey is inactive.
type NewKey struct {
	Name                   string
	UnencryptedKey         string
	Active                 bool
	ExpirationEpochSeconds *int64
	Batch                  *string
	Source                 *string
	Login                  *string
}

// NewKeyDefaults returns a NewKey with the default field values applied.
func NewKeyDefaults(name, unencryptedKey string) NewKey {
	return NewKey{Name: name, UnencryptedKey: unencryptedKey, Active: true}
}

// KeyFields is a partial update of a record's metadata. Nil fields are left
// untouched. ClearExpiration removes the expiration and is ignored when
// ExpirationEpochSeconds is set. The secret itself is not updatable.
type KeyFields struct {
	Name                   *string
	Active                 *bool
	ExpirationEpochSeconds *int64
	ClearExpiration        bool
	Batch                  *string
	Source                 *string
	Login                  *string
}

// IsEmpty reports whether no field is set.
func (f KeyFields) IsEmpty() bool {
	return f.Name == nil && f.Active == nil && f.ExpirationEpochSeconds == nil && !f.ClearExpiration &&
		f.Batch == nil && f.Source == nil && f.Login == nil
}

// Ptr returns a pointer to v. Handy for optional record fields.
func Ptr[T any](v T) *T {
	return &v
}
