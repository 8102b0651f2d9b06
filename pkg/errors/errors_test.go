package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: WrapValidation("missing"), expected: http.StatusBadRequest},
		{name: "already initialized", err: WrapAlreadyInitialized("c1", 2026), expected: http.StatusBadRequest},
		{name: "ledger not found", err: WrapLedgerNotFound("c1", "May-2026"), expected: http.StatusNotFound},
		{name: "slot not found", err: WrapSlotNotFound("May-2026"), expected: http.StatusNotFound},
		{name: "citizen not found", err: WrapCitizenNotFound("c1"), expected: http.StatusNotFound},
		{name: "family member not found", err: WrapFamilyMemberNotFound(), expected: http.StatusNotFound},
		{name: "credentials", err: WrapInvalidCredentials(), expected: http.StatusUnauthorized},
		{name: "unauthorized", err: WrapUnauthorized("Not authorized"), expected: http.StatusUnauthorized},
		{name: "forbidden", err: WrapForbidden("admins only"), expected: http.StatusForbidden},
		{name: "database", err: WrapDatabaseError(errors.New("boom")), expected: http.StatusInternalServerError},
		{name: "cache", err: WrapCacheError(errors.New("redis down")), expected: http.StatusInternalServerError},
		{name: "wrapped business error", err: fmt.Errorf("ctx: %w", WrapSlotNotFound("x")), expected: http.StatusNotFound},
		{name: "plain error", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Month May-2026 not found", PublicMessage(WrapSlotNotFound("May-2026")))
	assert.Equal(t, "Internal server error", PublicMessage(WrapDatabaseError(errors.New("pq: connection refused"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
}

func TestBusinessErrorUnwrap(t *testing.T) {
	err := WrapAlreadyInitialized("c1", 2026)
	assert.True(t, errors.Is(err, ErrAlreadyInitialized))
	assert.Contains(t, err.Error(), ErrCodeAlreadyInitialized)
}
