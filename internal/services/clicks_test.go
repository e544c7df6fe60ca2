package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/lnkz/internal/db"
	"github.com/fsdevblog/lnkz/internal/models"
	"github.com/fsdevblog/lnkz/internal/repositories"
	"github.com/fsdevblog/lnkz/internal/repositories/memstore"
)

func fastRetries(o *ClickRecorderOptions) {
	o.Backoff = time.Millisecond
}

func TestClickRecorder_CountsEveryClick(t *testing.T) {
	ctx := t.Context()
	repo := memstore.NewLinkRepo(db.NewMemStorage())
	require.NoError(t, repo.Create(ctx, &models.Link{Slug: "abc123", URL: "https://example.com", IPAddress: "1.1.1.1"}))

	recorder := NewClickRecorder(repo, testLogger())
	recorder.Start()

	const clicks = 100
	var wg sync.WaitGroup
	wg.Add(clicks)
	for range clicks {
		go func() {
			defer wg.Done()
			assert.True(t, recorder.Record(models.Visit{Slug: "abc123", IPAddress: "10.0.0.1"}))
		}()
	}
	wg.Wait()
	require.NoError(t, recorder.Close(ctx))

	link, err := repo.GetBySlug(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(clicks), link.Clicks)
}

func TestClickRecorder_RetriesTransientErrors(t *testing.T) {
	store := new(repoMock)
	store.On("IncrementClicks", mock.Anything, "abc123").Return(repositories.ErrUnknown).Twice()
	store.On("IncrementClicks", mock.Anything, "abc123").Return(nil).Once()
	store.On("CreateVisit", mock.Anything, mock.Anything).Return(nil).Once()

	recorder := NewClickRecorder(store, testLogger(), fastRetries)
	recorder.Start()
	require.True(t, recorder.Record(models.Visit{Slug: "abc123"}))
	require.NoError(t, recorder.Close(t.Context()))

	store.AssertNumberOfCalls(t, "IncrementClicks", 3)
	store.AssertNumberOfCalls(t, "CreateVisit", 1)
}

func TestClickRecorder_GivesUpAfterAttempts(t *testing.T) {
	store := new(repoMock)
	store.On("IncrementClicks", mock.Anything, "abc123").Return(repositories.ErrUnknown)

	recorder := NewClickRecorder(store, testLogger(), fastRetries)
	recorder.Start()
	require.True(t, recorder.Record(models.Visit{Slug: "abc123"}))
	require.NoError(t, recorder.Close(t.Context()))

	store.AssertNumberOfCalls(t, "IncrementClicks", DefaultClickAttempts)
	store.AssertNotCalled(t, "CreateVisit", mock.Anything, mock.Anything)
}

func TestClickRecorder_NotFoundNotRetried(t *testing.T) {
	store := new(repoMock)
	store.On("IncrementClicks", mock.Anything, "gone00").Return(repositories.ErrNotFound)

	recorder := NewClickRecorder(store, testLogger(), fastRetries)
	recorder.Start()
	require.True(t, recorder.Record(models.Visit{Slug: "gone00"}))
	require.NoError(t, recorder.Close(t.Context()))

	store.AssertNumberOfCalls(t, "IncrementClicks", 1)
	store.AssertNotCalled(t, "CreateVisit", mock.Anything, mock.Anything)
}

func TestClickRecorder_QueueFull(t *testing.T) {
	store := new(repoMock)
	store.On("IncrementClicks", mock.Anything, "abc123").Return(nil)
	store.On("CreateVisit", mock.Anything, mock.Anything).Return(nil)

	// Обработчики не запущены, очередь на одну запись.
	recorder := NewClickRecorder(store, testLogger(), func(o *ClickRecorderOptions) {
		o.QueueSize = 1
	})
	assert.True(t, recorder.Record(models.Visit{Slug: "abc123"}))
	assert.False(t, recorder.Record(models.Visit{Slug: "abc123"}))

	// Close разбирает оставшуюся очередь.
	require.NoError(t, recorder.Close(t.Context()))
	store.AssertNumberOfCalls(t, "IncrementClicks", 1)
}

func TestClickRecorder_RecordAfterClose(t *testing.T) {
	recorder := NewClickRecorder(new(repoMock), testLogger())
	recorder.Start()
	require.NoError(t, recorder.Close(t.Context()))
	require.NoError(t, recorder.Close(t.Context()))

	assert.False(t, recorder.Record(models.Visit{Slug: "abc123"}))
}

func TestClickRecorder_CloseRespectsContext(t *testing.T) {
	store := new(repoMock)
	release := make(chan struct{})
	store.On("IncrementClicks", mock.Anything, "abc123").Return(nil).Run(func(mock.Arguments) {
		<-release
	})
	store.On("CreateVisit", mock.Anything, mock.Anything).Return(nil)

	recorder := NewClickRecorder(store, testLogger())
	recorder.Start()
	require.True(t, recorder.Record(models.Visit{Slug: "abc123"}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, recorder.Close(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, recorder.Close(t.Context()))
}
