package model

// KeyFilter is a sparse set of equality filters over record fields. A nil slot
// means "don't filter on this field", never "match NULL". The zero value
// matches every record.
type KeyFilter struct {
	Name                   *string
	Active                 *bool
	ExpirationEpochSeconds *int64
	Batch                  *string
	Source                 *string
	Login                  *string
}

// NameFilter matches records with exactly the given name.
func NameFilter(name string) KeyFilter {
	return KeyFilter{Name: &name}
}

// IsEmpty reports whether no filter slot is set.
func (f KeyFilter) IsEmpty() bool {
	return f.Name == nil && f.Active == nil && f.ExpirationEpochSeconds == nil &&
		f.Batch == nil && f.Source == nil && f.Login == nil
}

// Matches evaluates the filter against a record in memory with the same
// semantics the store applies in SQL.
func (f KeyFilter) Matches(r KeyRecord) bool {
	if f.Name != nil && *f.Name != r.Name {
		return false
	}
	if f.Active != nil && *f.Active != r.Active {
		return false
	}
	if f.ExpirationEpochSeconds != nil && (r.ExpirationEpochSeconds == nil || *f.ExpirationEpochSeconds != *r.ExpirationEpochSeconds) {
		return false
	}
	return optionalEquals(f.Batch, r.Batch) && optionalEquals(f.Source, r.Source) && optionalEquals(f.Login, r.Login)
}

func optionalEquals(want, got *string) bool {
	if want == nil {
		return true
	}
	return got != nil && *want == *got
}
