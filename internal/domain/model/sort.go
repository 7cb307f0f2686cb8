package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortField names a record field usable in a sort order. Stored columns use
// their column names; derived fields are included too.
type SortField string

const (
	SortByID             SortField = "id"
	SortByName           SortField = "name"
	SortByExpiration     SortField = "expiration_in_sse"
	SortByActive         SortField = "active"
	SortByBatch          SortField = "batch"
	SortBySource         SortField = "source"
	SortByLogin          SortField = "login"
	SortByExpirationDate SortField = "expiration_date"
	SortByExpired        SortField = "expired"
	SortByUsable         SortField = "usable"
)

// DefaultUsabilitySortOrder is the order used by the usability report.
var DefaultUsabilitySortOrder = []SortField{
	SortByName, SortBySource, SortByLogin, SortByBatch, SortByActive, SortByExpirationDate,
}

var knownSortFields = []SortField{
	SortByID, SortByName, SortByExpiration, SortByActive, SortByBatch, SortBySource,
	SortByLogin, SortByExpirationDate, SortByExpired, SortByUsable,
}

// ParseSortOrder parses a comma separated list of field names.
func ParseSortOrder(raw string) ([]SortField, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var order []SortField
	for _, part := range strings.Split(raw, ",") {
		field := SortField(strings.TrimSpace(part))
		if !slices.Contains(knownSortFields, field) {
			return nil, fmt.Errorf("%w: unknown sort field %q", ErrValidation, field)
		}
		order = append(order, field)
	}
	return order, nil
}

// SortRecords sorts records in place by the field tuple, ascending. Ties keep
// their input order. Absent optional values sort before present ones and false
// sorts before true.
func SortRecords(records []KeyRecord, order []SortField) {
	if len(order) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b KeyRecord) int {
		for _, field := range order {
			if c := compareField(a, b, field); c != 0 {
				return c
			}
		}
		return 0
	})
}

func compareField(a, b KeyRecord, field SortField) int {
	switch field {
	case SortByID:
		return cmp.Compare(a.ID, b.ID)
	case SortByName:
		return cmp.Compare(a.Name, b.Name)
	case SortByExpiration:
		return compareOptional(a.ExpirationEpochSeconds, b.ExpirationEpochSeconds, cmp.Compare[int64])
	case SortByActive:
		return compareBool(a.Active, b.Active)
	case SortByBatch:
		return compareOptional(a.Batch, b.Batch, strings.Compare)
	case SortBySource:
		return compareOptional(a.Source, b.Source, strings.Compare)
	case SortByLogin:
		return compareOptional(a.Login, b.Login, strings.Compare)
	case SortByExpirationDate:
		return compareOptional(a.ExpirationDate, b.ExpirationDate, func(x, y time.Time) int { return x.Compare(y) })
	case SortByExpired:
		return compareBool(a.Expired, b.Expired)
	case SortByUsable:
		return compareBool(a.Usable, b.Usable)
	default:
		return 0
	}
}

func compareOptional[T any](a, b *T, compare func(T, T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compare(*a, *b)
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
