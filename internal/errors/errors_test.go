package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(cause, ErrCodeInternal, "operation failed")

	assert.Equal(t, "operation failed: underlying", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := Unauthorized("invalid credentials")
	assert.Equal(t, "invalid credentials", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "whatever"))
}

func TestCodeHelpers(t *testing.T) {
	tests := []struct {
		err   error
		check func(error) bool
		code  ErrorCode
	}{
		{Unauthorized("x"), IsUnauthorized, ErrCodeUnauthorized},
		{NotFoundf("missing %s", "thing"), IsNotFound, ErrCodeNotFound},
		{Validation("x"), IsValidation, ErrCodeValidation},
		{Conflict("x"), IsConflict, ErrCodeConflict},
		{Internalf("bad %d", 7), IsInternal, ErrCodeInternal},
	}
	for _, tt := range tests {
		assert.True(t, tt.check(tt.err))
		assert.Equal(t, tt.code, GetCode(tt.err))
		// Wrapped errors keep their code visible through the chain.
		wrapped := fmt.Errorf("context: %w", tt.err)
		assert.True(t, tt.check(wrapped))
	}

	assert.False(t, IsUnauthorized(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("plain")))
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		code ErrorCode
	}{
		{name: "deadline", in: context.DeadlineExceeded, code: ErrCodeTimeout},
		{name: "canceled", in: context.Canceled, code: ErrCodeCanceled},
		{name: "no rows", in: pgx.ErrNoRows, code: ErrCodeNotFound},
		{name: "unique violation", in: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, code: ErrCodeConflict},
		{name: "check violation", in: &pgconn.PgError{Code: pgerrcode.CheckViolation}, code: ErrCodeValidation},
		{name: "not null violation", in: &pgconn.PgError{Code: pgerrcode.NotNullViolation}, code: ErrCodeValidation},
		{name: "other pg error", in: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, code: ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := MapDBError(tt.in)
			require.Error(t, out)
			assert.Equal(t, tt.code, GetCode(out))
			assert.ErrorIs(t, out, tt.in)
		})
	}
}

func TestMapDBError_Passthrough(t *testing.T) {
	assert.NoError(t, MapDBError(nil))

	plain := errors.New("not a db error")
	assert.Same(t, plain, MapDBError(plain))
}
