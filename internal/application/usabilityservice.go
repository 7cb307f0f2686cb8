package application

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
	"github.com/ericfisherdev/simplekeystore/internal/domain/port/driven"
)

// UsabilityService builds the usability reports from stored records. It
// depends only on the KeyStore port.
type UsabilityService struct {
	store driven.KeyStore
}

// NewUsabilityService creates a new UsabilityService.
func NewUsabilityService(store driven.KeyStore) *UsabilityService {
	return &UsabilityService{
		store: store,
	}
}

// RecordsForUsabilityReport returns the records, optionally restricted to one
// name, sorted by order. An empty order means model.DefaultUsabilitySortOrder.
func (s *UsabilityService) RecordsForUsabilityReport(ctx context.Context, name *string, order []model.SortField) ([]model.KeyRecord, error) {
	if len(order) == 0 {
		order = model.DefaultUsabilitySortOrder
	}

	var filter model.KeyFilter
	if name != nil {
		filter = model.NameFilter(*name)
	}

	records, err := s.store.GetMatchingRecords(ctx, filter, order)
	if err != nil {
		return nil, fmt.Errorf("usability report: %w", err)
	}
	return records, nil
}

// UsabilityCountsReport groups the usability report by qualifying key and
// counts usable and unusable records in each group. Groups appear in the order
// their first member appears in the default-sorted report.
func (s *UsabilityService) UsabilityCountsReport(ctx context.Context, name *string) (model.UsabilityCountsReport, error) {
	records, err := s.RecordsForUsabilityReport(ctx, name, nil)
	if err != nil {
		return model.UsabilityCountsReport{}, err
	}

	report := model.UsabilityCountsReport{Total: len(records)}
	index := make(map[model.QualifyingKey]int)

	for _, rec := range records {
		qk := model.QualifyingKeyOf(rec)
		i, ok := index[qk]
		if !ok {
			i = len(report.Counts)
			index[qk] = i
			report.Counts = append(report.Counts, model.UsabilityCount{QualifyingKey: qk})
		}

		if rec.Usable {
			report.Counts[i].Usable++
			report.Usable++
		} else {
			report.Counts[i].Unusable++
			report.Unusable++
		}
	}

	return report, nil
}

// NextUsableKey returns the usable record matching filter that expires
// soonest. Records that never expire come last; ties go to the lowest id.
func (s *UsabilityService) NextUsableKey(ctx context.Context, filter model.KeyFilter) (*model.KeyRecord, error) {
	records, err := s.store.GetMatchingRecords(ctx, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("next usable key: %w", err)
	}

	usable := slices.DeleteFunc(records, func(r model.KeyRecord) bool {
		return !r.Usable
	})
	if len(usable) == 0 {
		return nil, fmt.Errorf("next usable key: %w: no usable key matches", model.ErrNotFound)
	}

	best := slices.MinFunc(usable, func(a, b model.KeyRecord) int {
		switch {
		case a.ExpirationDate == nil && b.ExpirationDate != nil:
			return 1
		case a.ExpirationDate != nil && b.ExpirationDate == nil:
			return -1
		case a.ExpirationDate != nil:
			if c := a.ExpirationDate.Compare(*b.ExpirationDate); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return &best, nil
}
