package model

import "errors"

// Sentinel errors shared by the store, the cipher and the services. Adapters
// wrap them with context; callers match with errors.Is.
var (
	// ErrConfiguration means no usable master key could be resolved, or the
	// resolved key does not match the database.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation means a required field is missing or a call is malformed.
	ErrValidation = errors.New("validation error")

	// ErrEncryption means a value could not be encrypted.
	ErrEncryption = errors.New("encryption error")

	// ErrDecryption means a ciphertext is malformed, was produced under a
	// different key, or has been tampered with.
	ErrDecryption = errors.New("decryption error")

	// ErrAmbiguous means a lookup that expects exactly one match found zero or
	// several.
	ErrAmbiguous = errors.New("ambiguous lookup")

	// ErrNotFound means the target record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUniqueness means an insert violated a uniqueness constraint.
	ErrUniqueness = errors.New("uniqueness violation")
)
