package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	pgForeignKeyViolation pq.ErrorCode = "23503"
	pgUniqueViolation     pq.ErrorCode = "23505"
)

// IsConstraintViolation reports whether err carries a Postgres foreign key or unique violation.
func IsConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pgForeignKeyViolation || pqErr.Code == pgUniqueViolation
}

func rowsAffected(result interface{ RowsAffected() (int64, error) }) (bool, error) {
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// validID reports whether id is a canonical UUID and so can name a row. Postgres rejects other
// text in a UUID column with invalid_text_representation instead of matching nothing.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
