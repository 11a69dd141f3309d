package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsMatchByCode(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
		status   int
	}{
		{NewValidationError("bad", nil), ErrValidation, http.StatusBadRequest},
		{NewNotFound("report", nil), ErrNotFound, http.StatusNotFound},
		{NewUnauthorized("no token"), ErrUnauthorized, http.StatusUnauthorized},
		{NewInvalidCredentials(), ErrInvalidCredentials, http.StatusUnauthorized},
		{NewForbidden("other district"), ErrForbidden, http.StatusForbidden},
		{NewMissingFile(), ErrMissingFile, http.StatusBadRequest},
		{NewUnsupportedFileType("exe", []string{"pdf"}), ErrUnsupportedFileType, http.StatusUnsupportedMediaType},
		{NewDuplicatePeriod(2024, "Q1"), ErrDuplicatePeriod, http.StatusConflict},
		{NewConcurrencyConflict(2024, "Q1"), ErrConcurrencyConflict, http.StatusConflict},
		{NewStorageError(errors.New("disk")), ErrStorage, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.sentinel.(*DomainError).Code, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.sentinel)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tc.err), tc.sentinel)
			assert.Equal(t, tc.status, ToDomainError(tc.err).HTTPStatus)
		})
	}

	assert.NotErrorIs(t, NewDuplicatePeriod(2024, "Q1"), ErrConcurrencyConflict)
	assert.NotErrorIs(t, NewForbidden("x"), ErrNotFound)
}

func TestStorageErrorHidesCause(t *testing.T) {
	cause := errors.New("open /var/lib/uploads/D1_2024_Q1.pdf: permission denied")
	err := ToDomainError(NewStorageError(cause))
	assert.Equal(t, "document storage unavailable", err.Message)
	assert.ErrorIs(t, err, cause)
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.Equal(t, CodeNotFound, ToDomainError(sql.ErrNoRows).Code)
	assert.Equal(t, CodeNotFound, ToDomainError(fmt.Errorf("scan: %w", pgx.ErrNoRows)).Code)

	internal := ToDomainError(errors.New("boom"))
	require.NotNil(t, internal)
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)

	domainErr := NewDuplicatePeriod(2025, "Q3")
	mapped := ToDomainError(fmt.Errorf("submit: %w", domainErr))
	assert.Same(t, domainErr, error(mapped))
	assert.Equal(t, map[string]any{"year": 2025, "quarter": "Q3"}, mapped.Details)
}
