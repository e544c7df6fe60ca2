// Package sql предоставляет реализацию репозитория коротких ссылок поверх gorm
// (локальный SQLite или удаленный libsql/Turso).
//
// Ошибки gorm преобразуются в общие ошибки уровня репозитория с помощью convertErrorType:
//   - gorm.ErrDuplicatedKey, нарушение UNIQUE -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package sql
