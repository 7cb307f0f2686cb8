// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
	"github.com/ericfisherdev/simplekeystore/internal/domain/port/driven"
)

// KeyService wraps the KeyStore with the compound operations and logging the
// CLI needs. Secrets never reach the logger.
type KeyService struct {
	store  driven.KeyStore
	logger *slog.Logger
}

// NewKeyService creates a new KeyService. A nil logger falls back to slog.Default().
func NewKeyService(store driven.KeyStore, logger *slog.Logger) *KeyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeyService{
		store:  store,
		logger: logger,
	}
}

// Add stores a new record and returns its id.
func (s *KeyService) Add(ctx context.Context, key model.NewKey) (int64, error) {
	id, err := s.store.AddKey(ctx, key)
	if err != nil {
		return 0, err
	}
	s.logger.Info("key added", "id", id, "name", key.Name)
	return id, nil
}

// Get returns the record with the given id. A missing id is ErrNotFound.
func (s *KeyService) Get(ctx context.Context, id int64) (*model.KeyRecord, error) {
	rec, err := s.store.GetRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("key record %d: %w", id, model.ErrNotFound)
	}
	return rec, nil
}

// SecretByName returns the plaintext secret of the only record named name.
func (s *KeyService) SecretByName(ctx context.Context, name string) (string, error) {
	secret, err := s.store.GetKeyByName(ctx, name)
	if err != nil {
		return "", err
	}
	s.logger.Debug("key read by name", "name", name)
	return secret, nil
}

// FindByKey returns the record holding plaintext. No match is ErrNotFound.
func (s *KeyService) FindByKey(ctx context.Context, plaintext string) (*model.KeyRecord, error) {
	rec, err := s.store.GetRecordByPlaintextKey(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("find key: %w: no record holds that key", model.ErrNotFound)
	}
	return rec, nil
}

// List returns the records matching filter, sorted by order.
func (s *KeyService) List(ctx context.Context, filter model.KeyFilter, order []model.SortField) ([]model.KeyRecord, error) {
	records, err := s.store.GetMatchingRecords(ctx, filter, order)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("key records listed", "count", len(records))
	return records, nil
}

// Delete removes every record matching filter and returns how many went.
func (s *KeyService) Delete(ctx context.Context, filter model.KeyFilter) (int64, error) {
	count, err := s.store.DeleteMatchingRecords(ctx, filter)
	if err != nil {
		return 0, err
	}
	s.logger.Info("key records deleted", "count", count, "unfiltered", filter.IsEmpty())
	return count, nil
}

// DeleteByKey removes the record holding plaintext.
func (s *KeyService) DeleteByKey(ctx context.Context, plaintext string) (int64, error) {
	count, err := s.store.DeleteByPlaintextKey(ctx, plaintext)
	if err != nil {
		return 0, err
	}
	s.logger.Info("key records deleted by value", "count", count)
	return count, nil
}

// Update applies fields to record id.
func (s *KeyService) Update(ctx context.Context, id int64, fields model.KeyFields) error {
	if err := s.store.UpdateKey(ctx, id, fields); err != nil {
		return err
	}
	if !fields.IsEmpty() {
		s.logger.Info("key record updated", "id", id)
	}
	return nil
}

// Deactivate marks the record holding plaintext inactive and returns it as it
// now reads.
func (s *KeyService) Deactivate(ctx context.Context, plaintext string) (*model.KeyRecord, error) {
	if err := s.store.MarkInactive(ctx, plaintext); err != nil {
		return nil, err
	}

	rec, err := s.FindByKey(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	s.logger.Info("key record deactivated", "id", rec.ID, "name", rec.Name)
	return rec, nil
}

// Count returns the number of stored records.
func (s *KeyService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Verify decrypts every stored record and returns how many there are. The
// first record that fails to decrypt fails the whole check.
func (s *KeyService) Verify(ctx context.Context) (int, error) {
	records, err := s.store.GetMatchingRecords(ctx, model.KeyFilter{}, nil)
	if err != nil {
		if errors.Is(err, model.ErrDecryption) {
			s.logger.Error("keystore integrity check failed", "error", err)
		}
		return 0, fmt.Errorf("verify keystore: %w", err)
	}

	s.logger.Info("keystore integrity check passed", "records", len(records))
	return len(records), nil
}
