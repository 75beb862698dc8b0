package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// nullableIDToValue converts an optional ID to a value suitable for SQLite
// storage. Returns nil (SQL NULL) if the pointer is nil.
func nullableIDToValue(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// parseNullableID converts a nullable integer column to an optional ID.
func parseNullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func idPtr(id int64) *int64 {
	return &id
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// requireAffected turns an UPDATE or DELETE that touched no rows into
// ErrNotFound.
func requireAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s update: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
