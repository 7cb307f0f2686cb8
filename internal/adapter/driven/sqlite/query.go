package sqlite

import (
	"strings"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// buildWhere turns a sparse filter into a WHERE clause and its bound values.
// Conditions follow canonical column order regardless of how the filter was
// built. An empty filter yields an empty clause.
func buildWhere(filter model.KeyFilter) (string, []any) {
	var (
		conditions []string
		values     []any
	)
	for _, c := range keystoreColumns {
		if c.match == nil {
			continue
		}
		cond, ok := c.match(filter)
		if !ok {
			continue
		}
		conditions = append(conditions, cond.sql)
		values = append(values, cond.args...)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), values
}

// buildSet turns a partial update into a SET clause and its bound values.
// Returns an empty clause when nothing is set.
func buildSet(fields model.KeyFields) (string, []any) {
	var (
		assignments []string
		values      []any
	)
	for _, c := range keystoreColumns {
		if c.assign == nil {
			continue
		}
		v, ok := c.assign(fields)
		if !ok {
			continue
		}
		assignments = append(assignments, c.name+" = ?")
		values = append(values, v)
	}

	if len(assignments) == 0 {
		return "", nil
	}
	return " SET " + strings.Join(assignments, ", "), values
}
