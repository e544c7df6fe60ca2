package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput       = errors.New("[service]: invalid input")
	ErrRateLimited        = errors.New("[service]: rate limited")
	ErrQuotaExceeded      = errors.New("[service]: quota exceeded")
	ErrSlugTaken          = errors.New("[service]: short code already taken")
	ErrCodeSpaceExhausted = errors.New("[service]: short code space exhausted")
	ErrStore              = errors.New("[service]: store error")
	ErrNotFound           = errors.New("[service]: record not found")
)

// ValidationError ошибка входных данных с сообщением, которое можно показать клиенту.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func newValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// RateLimitedError клиент превысил лимит запросов. RetryAfter подсказка, через сколько повторить запрос.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// Значения поля kind в логах.
const (
	kindInvalidInput       = "invalid_input"
	kindRateLimited        = "rate_limited"
	kindQuotaExceeded      = "quota_exceeded"
	kindSlugTaken          = "slug_taken"
	kindCodeSpaceExhausted = "code_space_exhausted"
	kindStoreError         = "store_error"
	kindNotFound           = "not_found"
)
