package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Issuer издатель токенов посетителей, проверяется при разборе.
const Issuer = "lnkz"

var signingMethod = jwt.SigningMethodHS256

// IssueVisitorToken подписывает токен посетителя. Идентификатор посетителя передается
// в стандартном поле `sub`, других данных в токене нет.
func IssueVisitorToken(visitorID uuid.UUID, ttl time.Duration, key []byte) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   visitorID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(key)
	if err != nil {
		return "", errors.Wrap(err, "signing visitor token")
	}
	return signed, nil
}

// ParseVisitorToken проверяет токен и возвращает идентификатор посетителя.
//
// Если подпись верна, а срок действия истек, вместе с ErrTokenExpired возвращается
// идентификатор из токена: посетителю можно перевыпустить токен с тем же UUID.
// Любая другая ошибка сводится к ErrTokenInvalid.
func ParseVisitorToken(tokenString string, key []byte) (uuid.UUID, error) {
	claims := new(jwt.RegisteredClaims)
	_, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)

	// Подпись проверяется раньше срока действия, поэтому при истекшем токене claims заполнены.
	if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenInvalidIssuer) {
		visitorID, subErr := subjectUUID(claims)
		if subErr != nil {
			return uuid.Nil, subErr
		}
		return visitorID, ErrTokenExpired
	}
	if err != nil {
		return uuid.Nil, errors.Wrap(ErrTokenInvalid, err.Error())
	}

	return subjectUUID(claims)
}

func subjectUUID(claims *jwt.RegisteredClaims) (uuid.UUID, error) {
	visitorID, err := uuid.Parse(claims.Subject)
	if err != nil || visitorID == uuid.Nil {
		return uuid.Nil, errors.Wrapf(ErrTokenInvalid, "subject %q is not a visitor uuid", claims.Subject)
	}
	return visitorID, nil
}
