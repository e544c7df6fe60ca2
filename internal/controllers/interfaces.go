package controllers

import (
	"context"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/services"
)

//go:generate mockgen -source=interfaces.go -destination=mocksctrl/store.go -package=mocksctrl

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

type LinkShortener interface {
	// Shorten сохраняет ссылку и возвращает короткий адрес.
	Shorten(ctx context.Context, req services.ShortenRequest) (*services.ShortenResult, error)
	// Resolve находит ссылку по коду и учитывает переход.
	Resolve(ctx context.Context, req services.ResolveRequest) (*models.Link, error)
}
