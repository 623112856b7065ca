package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres unique_violation, see pgerrcode.
const pgUniqueViolation = "23505"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Credential resolution failures. Each rejection path keeps its own code so
// the HTTP layer can map every outcome to a distinct status and message.

func NewMissingCredential(message string) error {
	return NewDomainError("MISSING_CREDENTIAL", message, http.StatusUnauthorized, nil)
}

func NewInvalidCredential(message string) error {
	return NewDomainError("INVALID_CREDENTIAL", message, http.StatusUnauthorized, nil)
}

// NewStaleCredential rejects tokens issued before the account's last role
// change; the caller must authenticate again.
func NewStaleCredential() error {
	return NewDomainError("STALE_CREDENTIAL", "credentials predate a role change, please sign in again", http.StatusUnauthorized, nil)
}

func NewAccountBanned(reason string) error {
	details := map[string]any{}
	if reason != "" {
		details["reason"] = reason
	}
	return NewDomainError("ACCOUNT_BANNED", "account is banned", http.StatusForbidden, details)
}

func NewAccountNotApproved(status, reason string) error {
	details := map[string]any{"status": status}
	if reason != "" {
		details["reason"] = reason
	}
	return NewDomainError("ACCOUNT_NOT_APPROVED", fmt.Sprintf("shop approval is %s", status), http.StatusForbidden, details)
}

func NewInsufficientCapability(capability string) error {
	return NewDomainError("INSUFFICIENT_CAPABILITY", "operation not permitted for this role",
		http.StatusForbidden, map[string]any{"capability": capability})
}

// NewPrincipalNotAssignable covers store-manager credentials with no active
// service assignment behind them.
func NewPrincipalNotAssignable(message string) error {
	return NewDomainError("PRINCIPAL_NOT_ASSIGNABLE", message, http.StatusForbidden, nil)
}

func NewDistrictUnavailable(reason string) error {
	return NewDomainError("DISTRICT_UNAVAILABLE", "delivery unavailable",
		http.StatusUnprocessableEntity, map[string]any{"reason": reason})
}

func NewInvalidFee(message string, details map[string]any) error {
	return NewDomainError("INVALID_FEE", message, http.StatusBadRequest, details)
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &DomainError{
			Code:       "CONFLICT",
			Message:    "resource already exists",
			HTTPStatus: http.StatusConflict,
			Details:    map[string]any{"constraint": pgErr.ConstraintName},
			Err:        err,
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
