package services

import (
	"context"
	"fmt"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingService struct {
	conn    Pinger
	timeout time.Duration
}

func NewPingService(conn Pinger, timeout time.Duration) *PingService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &PingService{conn: conn, timeout: timeout}
}

func (s *PingService) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping error: %w", err)
	}
	return nil
}
