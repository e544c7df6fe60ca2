package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type FixedWindowSuite struct {
	suite.Suite
	clock   *fakeClock
	limiter *FixedWindow
}

func (s *FixedWindowSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	s.limiter = NewFixedWindow(time.Minute, 5, logger, WithClock(s.clock))
}

func (s *FixedWindowSuite) TestLimitWithinWindow() {
	for i := range 5 {
		s.True(s.limiter.CheckAndRecord("1.1.1.1"), "request %d", i+1)
		s.clock.Advance(2 * time.Second)
	}
	s.False(s.limiter.CheckAndRecord("1.1.1.1"), "6th request in the window")
	s.False(s.limiter.CheckAndRecord("1.1.1.1"), "denied requests are not counted but still denied")

	s.True(s.limiter.CheckAndRecord("2.2.2.2"), "other clients are independent")
}

func (s *FixedWindowSuite) TestWindowReset() {
	for range 5 {
		s.True(s.limiter.CheckAndRecord("c"))
	}
	s.False(s.limiter.CheckAndRecord("c"))

	// Ровно на границе окно еще действует.
	s.clock.Advance(time.Minute)
	s.False(s.limiter.CheckAndRecord("c"))

	s.clock.Advance(time.Millisecond)
	s.True(s.limiter.CheckAndRecord("c"))
	for range 4 {
		s.True(s.limiter.CheckAndRecord("c"))
	}
	s.False(s.limiter.CheckAndRecord("c"))
}

func (s *FixedWindowSuite) TestSweep() {
	s.limiter.CheckAndRecord("old")
	s.clock.Advance(45 * time.Second)
	s.limiter.CheckAndRecord("fresh")
	s.clock.Advance(30 * time.Second)

	s.Equal(1, s.limiter.Sweep())
	s.Equal(1, s.limiter.Len())

	allowed, err := s.limiter.Allow(s.T().Context(), "old")
	s.NoError(err)
	s.True(allowed)
}

func (s *FixedWindowSuite) TestConcurrentRequestsAreNotLost() {
	const workers = 100
	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			if s.limiter.CheckAndRecord("same") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(5), allowed.Load())
}

func TestFixedWindowSuite(t *testing.T) {
	suite.Run(t, new(FixedWindowSuite))
}

func TestNewFixedWindow_Defaults(t *testing.T) {
	l := NewFixedWindow(0, 0, logrus.New())
	assert.Equal(t, DefaultWindow, l.Window())
	assert.Equal(t, DefaultMaxRequests, l.limit)
}

func TestFixedWindow_Run(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	l := NewFixedWindow(10*time.Millisecond, 1, logger)
	l.CheckAndRecord("a")

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}
