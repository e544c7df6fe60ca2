package repositories

import "errors"

var (
	ErrNotFound     = errors.New("[repository]: record not found")
	ErrDuplicateKey = errors.New("[repository]: duplicate key")
	ErrUnknown      = errors.New("[repository]: unknown error")
)

// IsDuplicateKey сообщает, является ли ошибка конфликтом уникального ключа.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}
