package smocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/services"
)

type LinkMock struct {
	mock.Mock
}

func (l *LinkMock) Shorten(ctx context.Context, req services.ShortenRequest) (*services.ShortenResult, error) {
	args := l.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*services.ShortenResult), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkMock) Resolve(ctx context.Context, req services.ResolveRequest) (*models.Link, error) {
	args := l.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

type PingMock struct {
	mock.Mock
}

func (p *PingMock) CheckConnection(ctx context.Context) error {
	return p.Called(ctx).Error(0) //nolint:wrapcheck
}
