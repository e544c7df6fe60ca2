package ratelimit

import "time"

// Clock источник текущего времени. Подменяется в тестах.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
