package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughDomainErrors(t *testing.T) {
	err := NewConflict("taken", nil)

	de := ToDomainError(fmt.Errorf("wrapped: %w", err))
	require.NotNil(t, de)
	assert.Equal(t, "CONFLICT", de.Code)
}

func TestToDomainError_NoRowsBecomesNotFound(t *testing.T) {
	de := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, http.StatusNotFound, de.HTTPStatus)
}

func TestToDomainError_UniqueViolationBecomesConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "districts_name_key"}

	de := ToDomainError(fmt.Errorf("insert district: %w", pgErr))
	require.NotNil(t, de)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "districts_name_key", de.Details["constraint"])
}

func TestToDomainError_UnknownErrorsBecomeInternal(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
}
