// Package store provides the PostgreSQL persistence layer.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound           = errors.New("RESOURCE_NOT_FOUND")
	ErrConflict           = errors.New("DUPLICATE_RESOURCE")
	ErrInvalidTransition  = errors.New("INVALID_STATUS_TRANSITION")
	ErrApprovalOutOfOrder = errors.New("APPROVAL_OUT_OF_ORDER")
)

// mustJSON marshals v for a jsonb column. Falls back to an empty object so a
// bad payload never blocks the surrounding write.
func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// optionalJSON marshals v for a nullable jsonb column; a nil pointer stays
// NULL instead of the string "null".
func optionalJSON(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if string(data) == "null" {
		return nil
	}
	return data
}

func scanJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func mapNoRows(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
