package services

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/fsdevblog/lnkz/internal/models"
)

// hostnameRegex проверяет ASCII-форму хоста: метки из букв, цифр, `_` и `-` (не по краям),
// обязательна зона. Интернациональные домены проверяются после перевода в punycode.
var hostnameRegex = regexp.MustCompile(
	`^([a-zA-Z0-9_]([a-zA-Z0-9_-]{0,61}[a-zA-Z0-9_])?\.)+[a-zA-Z0-9_]([a-zA-Z0-9_-]{0,61}[a-zA-Z0-9_])?$`,
)

// dangerousSchemeRegex опасная схема в любом месте строки, например в параметре редиректа.
// Схема должна начинаться с границы, чтобы `metadata:` не считался `data:`.
var dangerousSchemeRegex = regexp.MustCompile(`(?i)(^|[^a-z0-9+.\-])(javascript|data|vbscript|file|about|blob):`)

// ValidateURL проверяет ссылку перед сокращением и возвращает значение, которое нужно сохранить:
// исходную строку без пробелов по краям. Разобранный URL используется только для проверок,
// сама ссылка не перекодируется. ownHost - домен самого сервиса, ссылки на него не сокращаются.
func ValidateURL(rawURL string, ownHost string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", newValidationError("URL is required")
	}
	if utf8.RuneCountInString(rawURL) > models.URLMaxLength {
		return "", newValidationError("URL is too long")
	}
	if containsDangerousScheme(rawURL) {
		return "", newValidationError("URL contains a forbidden scheme")
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil || !parsedURL.IsAbs() {
		return "", newValidationError("invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return "", newValidationError("URL must have http or https scheme")
	}

	if parsedURL.Host == "" {
		return "", newValidationError("URL must have a host")
	}

	hostname := parsedURL.Hostname()
	if !validHostname(hostname) {
		return "", newValidationError("invalid hostname")
	}

	if ownHost != "" && sameHost(hostname, ownHost) {
		return "", newValidationError("cannot shorten an already shortened URL")
	}

	return rawURL, nil
}

func validHostname(hostname string) bool {
	if hostname == "localhost" || net.ParseIP(hostname) != nil {
		return true
	}
	ascii, err := idna.Punycode.ToASCII(hostname)
	if err != nil {
		return false
	}
	return hostnameRegex.MatchString(ascii)
}

// sameHost сравнивает хосты без учета регистра и формы записи (unicode или punycode).
func sameHost(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	asciiA, errA := idna.Punycode.ToASCII(strings.ToLower(a))
	asciiB, errB := idna.Punycode.ToASCII(strings.ToLower(b))
	return errA == nil && errB == nil && strings.EqualFold(asciiA, asciiB)
}

func containsDangerousScheme(rawURL string) bool {
	if dangerousSchemeRegex.MatchString(rawURL) {
		return true
	}
	unescaped, err := url.PathUnescape(rawURL)
	if err != nil {
		return false
	}
	return unescaped != rawURL && dangerousSchemeRegex.MatchString(unescaped)
}
