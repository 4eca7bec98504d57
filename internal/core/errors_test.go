// AngelaMos | 2026
// errors_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("get store: %w", ErrNotFound), http.StatusNotFound},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"revoked token", fmt.Errorf("verify: %w", ErrTokenRevoked), http.StatusUnauthorized},
		{"duplicate", ErrDuplicateKey, http.StatusConflict},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"app error status wins", BadRequestError("nope"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", ForbiddenError(""))

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "Access denied: forbidden", ForbiddenError("").Error())
	assert.Equal(t, "Store not found", NotFoundError("Store").Message)
}

func TestIsDuplicateKeyError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}
	assert.True(t, IsDuplicateKeyError(fmt.Errorf("insert: %w", pgErr)))
	assert.False(t, IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsDuplicateKeyError(errors.New("plain")))
}

func TestFormatValidationError(t *testing.T) {
	type input struct {
		Email string `validate:"required,email"`
		Role  string `validate:"oneof=admin editor viewer"`
	}

	err := validator.New().Struct(input{Email: "nope", Role: "owner"})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "email must be a valid email address")
	assert.Contains(t, msg, "role must be one of: admin editor viewer")
	assert.Equal(t, "invalid request", FormatValidationError(errors.New("x")))
}

func TestJSONError_Bodies(t *testing.T) {
	t.Run("app error keeps message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, NotFoundError("Store"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Store not found", body.Error)
	})

	t.Run("unknown error is hidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, errors.New("pq: relation missing"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})

	t.Run("sentinel uses status text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		JSONError(rec, fmt.Errorf("x: %w", ErrForbidden))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
	})
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "storefront:session:revoked:abc", RedisKey("session", "revoked", "abc"))
}
