package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/lnkz/internal/tokens"
)

const (
	VisitorUUIDKey           = "visitorUUID"
	VisitorCookieName        = "visitor"
	VisitorJWTExpireDuration = 365 * 24 * time.Hour
)

// VisitorCookieMiddleware выдает анонимному посетителю подписанную куку с UUID.
// UUID сохраняется в создаваемых ссылках как владелец и не используется для авторизации.
//
// Истекшая кука перевыпускается с тем же UUID, поддельная или испорченная заменяется новой.
func VisitorCookieMiddleware(jwtSecret []byte, logger logrus.FieldLogger) gin.HandlerFunc {
	log := logger.WithField("module", "middlewares/visitor")

	return func(c *gin.Context) {
		visitorAuthCookie, err := c.Request.Cookie(VisitorCookieName)
		if err != nil && !errors.Is(err, http.ErrNoCookie) {
			// куки не работают. Нам тут делать нечего, отправляем ошибку выше и едем дальше.
			_ = c.Error(fmt.Errorf("visitor cookie middleware: %w", err))
			c.Next()
			return
		}

		visitorID, reissue := resolveVisitor(visitorAuthCookie, jwtSecret, log.WithField("client_ip", ClientIP(c)))

		if reissue {
			tokenString, tokenErr := tokens.IssueVisitorToken(visitorID, VisitorJWTExpireDuration, jwtSecret)
			if tokenErr != nil {
				_ = c.Error(fmt.Errorf("visitor cookie middleware: %w", tokenErr))
				c.Next()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				VisitorCookieName,
				tokenString,
				int(VisitorJWTExpireDuration.Seconds()),
				"/",
				"",
				c.Request.TLS != nil,
				true,
			)
		}

		c.Set(VisitorUUIDKey, visitorID.String())
		c.Next()
	}
}

// resolveVisitor определяет посетителя по куке и нужно ли выставить новую куку.
func resolveVisitor(cookie *http.Cookie, secret []byte, log logrus.FieldLogger) (uuid.UUID, bool) {
	if cookie == nil {
		return uuid.New(), true
	}

	visitorID, err := tokens.ParseVisitorToken(cookie.Value, secret)
	switch {
	case err == nil:
		return visitorID, false
	case errors.Is(err, tokens.ErrTokenExpired):
		// обычная ситуация раз в год, посетитель остается тем же.
		log.WithField("visitor", visitorID.String()).Debug("visitor token expired, reissued")
		return visitorID, true
	default:
		log.WithError(err).Warn("visitor token rejected, new visitor issued")
		return uuid.New(), true
	}
}

// VisitorUUID UUID посетителя из контекста или nil, если кука не выдана.
func VisitorUUID(c *gin.Context) *string {
	visitorUUID := c.GetString(VisitorUUIDKey)
	if visitorUUID == "" {
		return nil
	}
	return &visitorUUID
}
