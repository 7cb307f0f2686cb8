package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

const keystoreTable = "keystore"

// column describes one keystore column. The slice below is the single source
// of truth for the table definition, the SELECT list and scan order, filter
// predicates and update assignments.
type column struct {
	name string
	ddl  string
	// match returns the predicate for this column, if the filter sets it.
	match func(model.KeyFilter) (condition, bool)
	// assign returns the new value for this column, if the update sets it.
	assign func(model.KeyFields) (any, bool)
}

// condition is a SQL fragment with its bound values.
type condition struct {
	sql  string
	args []any
}

var keystoreColumns = []column{
	{name: "id", ddl: "INTEGER PRIMARY KEY"},
	{
		name:   "name",
		ddl:    "TEXT NOT NULL",
		match:  func(f model.KeyFilter) (condition, bool) { return boundEquals("name", f.Name) },
		assign: func(f model.KeyFields) (any, bool) { return optionalValue(f.Name) },
	},
	{
		name:   "expiration_in_sse",
		ddl:    "INTEGER",
		match:  func(f model.KeyFilter) (condition, bool) { return boundEquals("expiration_in_sse", f.ExpirationEpochSeconds) },
		assign: func(f model.KeyFields) (any, bool) {
			if f.ExpirationEpochSeconds == nil && f.ClearExpiration {
				return nil, true
			}
			return optionalValue(f.ExpirationEpochSeconds)
		},
	},
	{
		name:  "active",
		ddl:   "INTEGER DEFAULT 1",
		match: activeLiteral,
		assign: func(f model.KeyFields) (any, bool) {
			if f.Active == nil {
				return nil, false
			}
			return boolToInt(*f.Active), true
		},
	},
	{
		name:   "batch",
		ddl:    "TEXT",
		match:  func(f model.KeyFilter) (condition, bool) { return boundEquals("batch", f.Batch) },
		assign: func(f model.KeyFields) (any, bool) { return optionalValue(f.Batch) },
	},
	{
		name:   "source",
		ddl:    "TEXT",
		match:  func(f model.KeyFilter) (condition, bool) { return boundEquals("source", f.Source) },
		assign: func(f model.KeyFields) (any, bool) { return optionalValue(f.Source) },
	},
	{
		name:   "login",
		ddl:    "TEXT",
		match:  func(f model.KeyFilter) (condition, bool) { return boundEquals("login", f.Login) },
		assign: func(f model.KeyFields) (any, bool) { return optionalValue(f.Login) },
	},
	{name: "encrypted_key", ddl: "TEXT UNIQUE"},
}

var (
	createTableStatement = buildCreateTable()
	selectAllQuery       = "SELECT " + strings.Join(columnNames(), ", ") + " FROM " + keystoreTable
)

func columnNames() []string {
	names := make([]string, len(keystoreColumns))
	for i, c := range keystoreColumns {
		names[i] = c.name
	}
	return names
}

func buildCreateTable() string {
	defs := make([]string, len(keystoreColumns))
	for i, c := range keystoreColumns {
		defs[i] = c.name + " " + c.ddl
	}
	return "CREATE TABLE IF NOT EXISTS " + keystoreTable + " (" + strings.Join(defs, ", ") + ")"
}

// EnsureTable creates the keystore table when it does not exist yet. It is
// safe to call any number of times.
func EnsureTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTableStatement); err != nil {
		return fmt.Errorf("create %s table: %w", keystoreTable, err)
	}
	return nil
}

func boundEquals[T any](name string, v *T) (condition, bool) {
	if v == nil {
		return condition{}, false
	}
	return condition{sql: name + " = ?", args: []any{*v}}, true
}

// activeLiteral renders the boolean filter inline rather than as a parameter.
func activeLiteral(f model.KeyFilter) (condition, bool) {
	if f.Active == nil {
		return condition{}, false
	}
	if *f.Active {
		return condition{sql: "active = 1"}, true
	}
	return condition{sql: "active = 0"}, true
}

func optionalValue[T any](v *T) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
