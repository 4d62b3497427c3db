package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsCodeAndMatchesBase(t *testing.T) {
	err := Clone(ErrNotFound, "student 42 not found")

	assert.Equal(t, "student 42 not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, errors.Is(appErr, sql.ErrConnDone))
	assert.Nil(t, FromError(nil))
}
