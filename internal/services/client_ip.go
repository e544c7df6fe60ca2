package services

import (
	"net"
	"strings"
)

// UnknownClientIP идентификатор клиента, если адрес определить не удалось.
const UnknownClientIP = "unknown"

// ResolveClientIP определяет идентификатор клиента. Источник - первое значение X-Forwarded-For,
// затем X-Real-IP, затем адрес соединения. Используется первый непустой источник; если он
// не разбирается как IP, возвращается UnknownClientIP.
func ResolveClientIP(forwardedFor, realIP, remoteAddr string) string {
	var candidate string
	switch {
	case strings.TrimSpace(forwardedFor) != "":
		candidate, _, _ = strings.Cut(forwardedFor, ",")
	case strings.TrimSpace(realIP) != "":
		candidate = realIP
	default:
		candidate = remoteAddr
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			candidate = host
		}
	}

	ip := net.ParseIP(strings.TrimSpace(candidate))
	if ip == nil {
		return UnknownClientIP
	}
	return ip.String()
}
