package controllers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/fsdevblog/lnkz/internal/controllers/middlewares"
	"github.com/fsdevblog/lnkz/internal/services"
)

// Сообщения клиенту. Подробности ошибок хранилища наружу не отдаются.
const (
	msgUnsupportedMedia = "Content-Type must be application/json"
	msgBodyTooLarge     = "request body is too large"
	msgInvalidBody      = "invalid JSON body"
	msgInvalidInput     = "invalid input"
	msgRateLimited      = "too many requests, try again later"
	msgQuotaExceeded    = "link limit for this address reached"
	msgSlugTaken        = "short code is already taken"
	msgInternal         = "internal server error"
	msgNotFound         = "Not Found"
)

type shortenRequest struct {
	URL       string  `json:"url"`
	ShortCode *string `json:"shortCode,omitempty"`
}

type shortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// LinksController контроллер сокращения ссылок и редиректов.
type LinksController struct {
	links LinkShortener
}

func NewLinksController(links LinkShortener) *LinksController {
	return &LinksController{links: links}
}

// Shorten обрабатывает POST /shorten с телом `{"url": "...", "shortCode": "..."}`.
//
// Ответы:
//   - 200 `{"shortUrl": "..."}`
//   - 400 неверная ссылка, код или тело запроса
//   - 403 исчерпана квота адреса
//   - 409 запрошенный код занят
//   - 413 тело больше MaxRequestBodySize
//   - 415 тело не JSON
//   - 429 превышен лимит запросов, с заголовком Retry-After
//   - 500 ошибка хранилища
func (c *LinksController) Shorten(ctx *gin.Context) {
	if !isJSONRequest(ctx) {
		ctx.JSON(http.StatusUnsupportedMediaType, errorResponse{Error: msgUnsupportedMedia})
		return
	}

	body, readErr := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxRequestBodySize))
	if readErr != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(readErr, &maxBytesErr) {
			ctx.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: msgBodyTooLarge})
			return
		}
		_ = ctx.Error(readErr)
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	var req shortenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	res, err := c.links.Shorten(ctx.Request.Context(), services.ShortenRequest{
		RawURL:      req.URL,
		ShortCode:   req.ShortCode,
		ClientIP:    middlewares.ClientIP(ctx),
		VisitorUUID: middlewares.VisitorUUID(ctx),
	})
	if err != nil {
		c.writeShortenError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, shortenResponse{ShortURL: res.ShortURL})
}

func (c *LinksController) writeShortenError(ctx *gin.Context, err error) {
	var (
		validationErr  *services.ValidationError
		rateLimitedErr *services.RateLimitedError
	)

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: validationErr.Message})
	case errors.Is(err, services.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidInput})
	case errors.As(err, &rateLimitedErr):
		ctx.Header("Retry-After", retryAfterSeconds(rateLimitedErr))
		ctx.JSON(http.StatusTooManyRequests, errorResponse{Error: msgRateLimited})
	case errors.Is(err, services.ErrQuotaExceeded):
		ctx.JSON(http.StatusForbidden, errorResponse{Error: msgQuotaExceeded})
	case errors.Is(err, services.ErrSlugTaken):
		ctx.JSON(http.StatusConflict, errorResponse{Error: msgSlugTaken})
	default:
		_ = ctx.Error(err)
		ctx.JSON(http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

// retryAfterSeconds значение заголовка Retry-After, целые секунды с округлением вверх.
func retryAfterSeconds(err *services.RateLimitedError) string {
	secs := int64(math.Ceil(err.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// Redirect обрабатывает GET /:slug. Найденная ссылка -> 302, иначе 404.
func (c *LinksController) Redirect(ctx *gin.Context) {
	link, err := c.links.Resolve(ctx.Request.Context(), services.ResolveRequest{
		Slug:      ctx.Param("slug"),
		ClientIP:  middlewares.ClientIP(ctx),
		UserAgent: ctx.Request.UserAgent(),
		Language:  ctx.Request.Header.Get("Accept-Language"),
		Referrer:  ctx.Request.Referer(),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			ctx.String(http.StatusNotFound, msgNotFound)
			return
		}
		_ = ctx.Error(err)
		ctx.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	ctx.Redirect(http.StatusFound, link.URL)
}

// NotFound ответ на неизвестные маршруты.
func (c *LinksController) NotFound(ctx *gin.Context) {
	ctx.String(http.StatusNotFound, msgNotFound)
}
