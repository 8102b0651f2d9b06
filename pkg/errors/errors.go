package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrValidation           = errors.New("validation failed")
	ErrAlreadyInitialized   = errors.New("fees already initialized")
	ErrLedgerNotFound       = errors.New("fee record not found")
	ErrSlotNotFound         = errors.New("month not found")
	ErrCitizenNotFound      = errors.New("citizen not found")
	ErrFamilyMemberNotFound = errors.New("family member not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("not authorized")
	ErrForbidden            = errors.New("forbidden")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeAlreadyInitialized   = "ALREADY_INITIALIZED"
	ErrCodeLedgerNotFound       = "LEDGER_NOT_FOUND"
	ErrCodeSlotNotFound         = "SLOT_NOT_FOUND"
	ErrCodeCitizenNotFound      = "CITIZEN_NOT_FOUND"
	ErrCodeFamilyMemberNotFound = "FAMILY_MEMBER_NOT_FOUND"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapAlreadyInitialized(citizenID string, year int) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyInitialized,
		fmt.Sprintf("Fees for %d already initialized for citizen %s", year, citizenID),
		ErrAlreadyInitialized,
	)
}

func WrapLedgerNotFound(citizenID, monthLabel string) *BusinessError {
	return NewBusinessError(
		ErrCodeLedgerNotFound,
		fmt.Sprintf("Fee record for %s not found for citizen %s", monthLabel, citizenID),
		ErrLedgerNotFound,
	)
}

func WrapSlotNotFound(monthLabel string) *BusinessError {
	return NewBusinessError(
		ErrCodeSlotNotFound,
		fmt.Sprintf("Month %s not found", monthLabel),
		ErrSlotNotFound,
	)
}

func WrapCitizenNotFound(citizenID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCitizenNotFound,
		fmt.Sprintf("Citizen with ID %s not found", citizenID),
		ErrCitizenNotFound,
	)
}

func WrapFamilyMemberNotFound() *BusinessError {
	return NewBusinessError(ErrCodeFamilyMemberNotFound, "Family member not found", ErrFamilyMemberNotFound)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(ErrCodeInvalidCredentials, "Invalid credentials", ErrInvalidCredentials)
}

func WrapUnauthorized(message string) *BusinessError {
	return NewBusinessError(ErrCodeUnauthorized, message, ErrUnauthorized)
}

func WrapForbidden(message string) *BusinessError {
	return NewBusinessError(ErrCodeForbidden, message, ErrForbidden)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAlreadyInitialized):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrLedgerNotFound), errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrCitizenNotFound),
		errors.Is(err, ErrFamilyMemberNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to show to API clients. Internal
// failures never leak their cause.
func PublicMessage(err error) string {
	var be *BusinessError
	if errors.As(err, &be) && be.Code != ErrCodeDatabaseError && be.Code != ErrCodeCacheError {
		return be.Message
	}
	return "Internal server error"
}
