// Package shortcode генерирует короткие коды ссылок.
package shortcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// Alphabet алфавит кодов: строчные латинские буквы и цифры.
const Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length длина кода.
const Length = 6

// maxUnbiased наибольшее кратное len(Alphabet) значение байта. Байты >= maxUnbiased
// отбрасываются, иначе первые символы алфавита выпадали бы чаще остальных.
const maxUnbiased = 256 - 256%len(Alphabet)

// ErrInvalidCode запрошенный код не соответствует формату.
var ErrInvalidCode = errors.New("short code must be exactly 6 characters of [a-z0-9]")

// Generator выдает кандидатов в короткие коды. Уникальность кода он не гарантирует.
type Generator struct {
	rnd io.Reader
}

// NewGenerator создает генератор поверх crypto/rand.
func NewGenerator() *Generator {
	return &Generator{rnd: rand.Reader}
}

// NewGeneratorWithSource создает генератор с заданным источником случайных байт.
func NewGeneratorWithSource(rnd io.Reader) *Generator {
	return &Generator{rnd: rnd}
}

// Generate возвращает запрошенный код, если он задан и корректен, иначе случайный.
func (g *Generator) Generate(requested *string) (string, error) {
	if requested != nil {
		if !IsValidFormat(*requested) {
			return "", ErrInvalidCode
		}
		return *requested, nil
	}
	return g.random()
}

// random выбирает Length символов равномерно из Alphabet методом отбраковки.
func (g *Generator) random() (string, error) {
	code := make([]byte, 0, Length)
	buf := make([]byte, Length*2) //nolint:mnd
	for len(code) < Length {
		if _, err := io.ReadFull(g.rnd, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			code = append(code, Alphabet[int(b)%len(Alphabet)])
			if len(code) == Length {
				break
			}
		}
	}
	return string(code), nil
}

// IsValidFormat проверяет, что код состоит ровно из Length символов алфавита.
func IsValidFormat(code string) bool {
	if len(code) != Length {
		return false
	}
	return isAlphabet(code)
}

// IsValidSlug проверяет slug, допустимый в хранилище: от 1 до maxLen символов алфавита.
func IsValidSlug(slug string, maxLen int) bool {
	if len(slug) == 0 || len(slug) > maxLen {
		return false
	}
	return isAlphabet(slug)
}

func isAlphabet(s string) bool {
	for i := range len(s) {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
