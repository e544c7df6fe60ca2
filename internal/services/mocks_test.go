package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/lnkz/internal/models"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) Create(ctx context.Context, link *models.Link) error {
	return m.Called(ctx, link).Error(0) //nolint:wrapcheck
}

func (m *repoMock) GetBySlug(ctx context.Context, slug string) (*models.Link, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *repoMock) IncrementClicks(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0) //nolint:wrapcheck
}

func (m *repoMock) CountByIP(ctx context.Context, ip string) (int64, error) {
	args := m.Called(ctx, ip)
	return args.Get(0).(int64), args.Error(1) //nolint:wrapcheck,errcheck
}

func (m *repoMock) CreateVisit(ctx context.Context, visit *models.Visit) error {
	return m.Called(ctx, visit).Error(0) //nolint:wrapcheck
}

func (m *repoMock) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0) //nolint:wrapcheck
}

type generatorMock struct {
	mock.Mock
}

func (m *generatorMock) Generate(requested *string) (string, error) {
	args := m.Called(requested)
	return args.String(0), args.Error(1) //nolint:wrapcheck
}

type limiterMock struct {
	mock.Mock
}

func (m *limiterMock) Allow(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1) //nolint:wrapcheck
}

func (m *limiterMock) Window() time.Duration {
	return time.Minute
}

type sinkMock struct {
	mock.Mock
}

func (m *sinkMock) Record(visit models.Visit) bool {
	return m.Called(visit).Bool(0)
}
