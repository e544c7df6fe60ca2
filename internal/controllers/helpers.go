package controllers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultRequestTimeout = 3 * time.Second
	// MaxRequestBodySize ограничение тела запроса на сокращение (после распаковки).
	MaxRequestBodySize = 5000
)

// isJSONRequest Определяет тип запроса (json или нет) по заголовку Content-Type.
func isJSONRequest(ctx *gin.Context) bool {
	ct := ctx.Request.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "application/json")
}

// errorResponse тело ответа с ошибкой.
type errorResponse struct {
	Error string `json:"error"`
}
