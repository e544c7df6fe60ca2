package middlewares

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/lnkz/internal/tokens"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func gzipBytes(t *testing.T, data string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err := gzw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	return &buf
}

func echoRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestGzipMiddleware(t *testing.T) {
	r := echoRouter(GzipMiddleware())

	t.Run("compressed request and response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", gzipBytes(t, `{"url":"https://example.com"}`))
		req.Header.Set("Content-Encoding", "gzip")
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		gzr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gzr)
		require.NoError(t, err)
		assert.Equal(t, `{"url":"https://example.com"}`, string(body))
	})

	t.Run("plain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("plain"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, "plain", w.Body.String())
	})

	t.Run("broken gzip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("not gzip"))
		req.Header.Set("Content-Encoding", "gzip")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
}

func TestLoggerMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(LoggerMiddleware(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	r.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "203.0.113.9", hook.LastEntry().Data["client_ip"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Data["error"], assert.AnError.Error())
}

func TestVisitorCookieMiddleware(t *testing.T) {
	secret := []byte("secret")
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(VisitorCookieMiddleware(secret, logger))
	r.GET("/", func(c *gin.Context) {
		visitorUUID := VisitorUUID(c)
		if visitorUUID == nil || len(c.Errors) > 0 {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, *visitorUUID)
	})

	serveWithCookie := func(t *testing.T, token string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.AddCookie(&http.Cookie{Name: VisitorCookieName, Value: token})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w
	}

	t.Run("new visitor gets cookie", func(t *testing.T) {
		hook.Reset()
		w := serveWithCookie(t, "")

		_, err := uuid.Parse(w.Body.String())
		require.NoError(t, err)

		cookies := w.Result().Cookies() //nolint:bodyclose
		require.Len(t, cookies, 1)
		assert.Equal(t, VisitorCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("known visitor keeps uuid", func(t *testing.T) {
		hook.Reset()
		visitorID := uuid.New()
		token, err := tokens.IssueVisitorToken(visitorID, time.Hour, secret)
		require.NoError(t, err)

		w := serveWithCookie(t, token)

		assert.Equal(t, visitorID.String(), w.Body.String())
		assert.Empty(t, w.Result().Cookies()) //nolint:bodyclose
		assert.Empty(t, hook.AllEntries())
	})

	t.Run("expired token reissued for same visitor", func(t *testing.T) {
		hook.Reset()
		visitorID := uuid.New()
		token, err := tokens.IssueVisitorToken(visitorID, -time.Minute, secret)
		require.NoError(t, err)

		w := serveWithCookie(t, token)

		assert.Equal(t, visitorID.String(), w.Body.String())
		cookies := w.Result().Cookies() //nolint:bodyclose
		require.Len(t, cookies, 1)
		renewed, err := tokens.ParseVisitorToken(cookies[0].Value, secret)
		require.NoError(t, err)
		assert.Equal(t, visitorID, renewed)

		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	})

	t.Run("forged token replaced by new visitor", func(t *testing.T) {
		hook.Reset()
		forgedID := uuid.New()
		token, err := tokens.IssueVisitorToken(forgedID, time.Hour, []byte("other"))
		require.NoError(t, err)

		w := serveWithCookie(t, token)

		assert.NotEqual(t, forgedID.String(), w.Body.String())
		assert.Len(t, w.Result().Cookies(), 1) //nolint:bodyclose

		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.ErrorIs(t, hook.LastEntry().Data[logrus.ErrorKey].(error), tokens.ErrTokenInvalid) //nolint:errcheck
	})
}
