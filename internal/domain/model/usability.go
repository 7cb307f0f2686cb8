package model

import "fmt"

// NoneLabel is how an absent optional field is rendered inside a qualifying key.
const NoneLabel = "None"

// QualifyingKey groups records for the counts report.
type QualifyingKey struct {
	Name   string
	Source string
	Login  string
	Batch  string
}

// QualifyingKeyOf renders the record's (name, source, login, batch) tuple as
// strings. A batch literally named "None" groups with records that have none.
func QualifyingKeyOf(r KeyRecord) QualifyingKey {
	return QualifyingKey{
		Name:   r.Name,
		Source: labelOf(r.Source),
		Login:  labelOf(r.Login),
		Batch:  labelOf(r.Batch),
	}
}

func labelOf(v *string) string {
	if v == nil {
		return NoneLabel
	}
	return *v
}

// UsabilityCount is one row of the counts report.
type UsabilityCount struct {
	QualifyingKey
	Usable   int
	Unusable int
}

// UsabilityCountsReport is the counts report with its totals.
type UsabilityCountsReport struct {
	Counts   []UsabilityCount
	Total    int
	Usable   int
	Unusable int
}

// Summary is the one-line header printed above the counts table.
func (r UsabilityCountsReport) Summary() string {
	return fmt.Sprintf("Usability counts (%d records total, %d usable, %d not)", r.Total, r.Usable, r.Unusable)
}
