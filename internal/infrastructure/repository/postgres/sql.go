package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// isUniqueViolation reports a 23505 from the driver. Repositories translate
// it into the domain's ErrAlreadyExists so use cases can settle create races.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nullInt64ToInt64(value sql.NullInt64) int64 {
	if !value.Valid {
		return 0
	}
	return value.Int64
}

func nullFloat64ToPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	return &value.Float64
}

func nullStringToPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}
