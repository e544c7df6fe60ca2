// Package repotest содержит общий набор тестов для реализаций репозитория коротких ссылок.
package repotest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/repositories"
)

// LinkRepository проверяемый контракт репозитория.
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetBySlug(ctx context.Context, slug string) (*models.Link, error)
	IncrementClicks(ctx context.Context, slug string) error
	CountByIP(ctx context.Context, ip string) (int64, error)
	CreateVisit(ctx context.Context, visit *models.Visit) error
	Ping(ctx context.Context) error
}

// LinkRepoSuite набор тестов, который запускается для каждой реализации репозитория.
// Тесты используют случайные slug и адреса, поэтому могут работать на общей базе.
type LinkRepoSuite struct {
	suite.Suite
	NewRepo func() LinkRepository
	repo    LinkRepository
}

func (s *LinkRepoSuite) SetupTest() {
	s.repo = s.NewRepo()
}

func randomSlug() string {
	return strings.ToLower(gofakeit.Password(true, false, true, false, false, 8))
}

func newLink(slug, ip string) *models.Link {
	return &models.Link{
		Slug:      slug,
		URL:       gofakeit.URL(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		IPAddress: ip,
	}
}

func (s *LinkRepoSuite) TestCreateAndGetBySlug() {
	ctx := s.T().Context()
	visitor := gofakeit.UUID()
	link := newLink(randomSlug(), gofakeit.IPv4Address())
	link.VisitorUUID = &visitor

	s.Require().NoError(s.repo.Create(ctx, link))

	got, err := s.repo.GetBySlug(ctx, link.Slug)
	s.Require().NoError(err)
	s.Equal(link.Slug, got.Slug)
	s.Equal(link.URL, got.URL)
	s.Equal(link.IPAddress, got.IPAddress)
	s.Equal(int64(0), got.Clicks)
	s.Require().NotNil(got.VisitorUUID)
	s.Equal(visitor, *got.VisitorUUID)
	s.WithinDuration(link.CreatedAt, got.CreatedAt, time.Second)
}

func (s *LinkRepoSuite) TestGetBySlug_NotFound() {
	_, err := s.repo.GetBySlug(s.T().Context(), randomSlug())
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestCreate_DuplicateDoesNotMutate() {
	ctx := s.T().Context()
	original := newLink(randomSlug(), gofakeit.IPv4Address())
	s.Require().NoError(s.repo.Create(ctx, original))

	dup := newLink(original.Slug, gofakeit.IPv4Address())
	s.ErrorIs(s.repo.Create(ctx, dup), repositories.ErrDuplicateKey)

	got, err := s.repo.GetBySlug(ctx, original.Slug)
	s.Require().NoError(err)
	s.Equal(original.URL, got.URL)
	s.Equal(original.IPAddress, got.IPAddress)
}

func (s *LinkRepoSuite) TestCreate_ConcurrentSameSlug() {
	ctx := s.T().Context()
	slug := randomSlug()

	const workers = 10
	var (
		wg      sync.WaitGroup
		success atomic.Int32
		dups    atomic.Int32
	)
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			err := s.repo.Create(ctx, newLink(slug, gofakeit.IPv4Address()))
			switch {
			case err == nil:
				success.Add(1)
			case repositories.IsDuplicateKey(err):
				dups.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(workers-1), dups.Load())
}

func (s *LinkRepoSuite) TestIncrementClicks_Concurrent() {
	ctx := s.T().Context()
	link := newLink(randomSlug(), gofakeit.IPv4Address())
	s.Require().NoError(s.repo.Create(ctx, link))

	const k = 40
	var wg sync.WaitGroup
	wg.Add(k)
	for range k {
		go func() {
			defer wg.Done()
			s.NoError(s.repo.IncrementClicks(ctx, link.Slug))
		}()
	}
	wg.Wait()

	got, err := s.repo.GetBySlug(ctx, link.Slug)
	s.Require().NoError(err)
	s.Equal(int64(k), got.Clicks)
}

func (s *LinkRepoSuite) TestIncrementClicks_NotFound() {
	s.ErrorIs(s.repo.IncrementClicks(s.T().Context(), randomSlug()), repositories.ErrNotFound)
}

func (s *LinkRepoSuite) TestCountByIP() {
	ctx := s.T().Context()
	ip := gofakeit.IPv4Address()
	for range 3 {
		s.Require().NoError(s.repo.Create(ctx, newLink(randomSlug(), ip)))
	}
	s.Require().NoError(s.repo.Create(ctx, newLink(randomSlug(), gofakeit.IPv6Address())))

	n, err := s.repo.CountByIP(ctx, ip)
	s.Require().NoError(err)
	s.Equal(int64(3), n)
}

func (s *LinkRepoSuite) TestCreateVisit() {
	ctx := s.T().Context()
	link := newLink(randomSlug(), gofakeit.IPv4Address())
	s.Require().NoError(s.repo.Create(ctx, link))

	s.NoError(s.repo.CreateVisit(ctx, &models.Visit{
		Slug:      link.Slug,
		UserAgent: gofakeit.UserAgent(),
		IPAddress: gofakeit.IPv4Address(),
		Language:  "en-US",
		Referrer:  gofakeit.URL(),
		CreatedAt: time.Now().UTC(),
	}))
}

func (s *LinkRepoSuite) TestPing() {
	s.NoError(s.repo.Ping(s.T().Context()))
}
