package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "Record not found")
		assert.Equal(t, "NOT_FOUND: Record not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "record_ids", "reason": "empty"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"NotFound", func() *AppError { return NotFound("Record") }, ErrCodeNotFound},
		{"AlreadyExists", func() *AppError { return AlreadyExists("User") }, ErrCodeAlreadyExists},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("email", "invalid") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("email") }, ErrCodeMissingRequired},
		{"InvalidRecordOwnership", func() *AppError { return InvalidRecordOwnership() }, ErrCodeInvalidRecordOwnership},
		{"TokenNotFound", func() *AppError { return TokenNotFound() }, ErrCodeTokenNotFound},
		{"TokenInvalid", func() *AppError { return TokenInvalid() }, ErrCodeTokenInvalid},
		{"TokenExpired", func() *AppError { return TokenExpired() }, ErrCodeTokenExpired},
		{"MalformedToken", func() *AppError { return MalformedToken(nil) }, ErrCodeMalformedToken},
		{"IntegrityViolation", func() *AppError { return IntegrityViolation("mismatch") }, ErrCodeIntegrityViolation},
		{"QRTooLarge", func() *AppError { return QRTooLarge() }, ErrCodeQRTooLarge},
		{"InvalidOTP", func() *AppError { return InvalidOTP() }, ErrCodeInvalidOTP},
		{"OTPExpired", func() *AppError { return OTPExpired() }, ErrCodeOTPExpired},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestDatabase(t *testing.T) {
	t.Run("wraps database error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Database(cause)
		assert.Equal(t, ErrCodeDatabase, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestEncryptionFailure(t *testing.T) {
	t.Run("wraps cipher error", func(t *testing.T) {
		cause := errors.New("symmetric encrypt failed")
		err := EncryptionFailure(cause)
		assert.Equal(t, ErrCodeEncryptionFailure, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestAsAppError(t *testing.T) {
	t.Run("returns AppError for AppError", func(t *testing.T) {
		original := TokenExpired()
		appErr, ok := AsAppError(original)
		assert.True(t, ok)
		assert.Equal(t, original, appErr)
	})

	t.Run("returns false for plain error", func(t *testing.T) {
		_, ok := AsAppError(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("unwraps nested AppError", func(t *testing.T) {
		wrapped := Wrap(ErrCodeDatabase, "db", TokenInvalid())
		assert.True(t, IsAppError(wrapped))
	})
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeTokenInvalid, GetCode(TokenInvalid()))
	assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
}
