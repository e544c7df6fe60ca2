package tokens

import "errors"

var (
	// ErrTokenExpired подпись верна, но срок действия истек. Идентификатор посетителя при этом известен.
	ErrTokenExpired = errors.New("visitor token expired")
	// ErrTokenInvalid токен поддельный, испорчен или выдан не этим сервисом.
	ErrTokenInvalid = errors.New("visitor token invalid")
)
