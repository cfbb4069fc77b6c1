package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nursultanov/user-dashboard/internal/metrics"
	"github.com/nursultanov/user-dashboard/internal/repository"
	"github.com/robfig/cron/v3"
)

const schedule = "@every 15m"

// Sweeper periodically removes revocation rows whose tokens have expired on
// their own; keeping them any longer buys nothing.
type Sweeper struct {
	revoked repository.RevocationRepository
	logger  *slog.Logger
	cron    *cron.Cron
}

func NewSweeper(revoked repository.RevocationRepository, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		revoked: revoked,
		logger:  logger.With("component", "cleanup"),
		cron:    cron.New(),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(schedule, func() { s.sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule cleanup: %w", err)
	}
	s.cron.Start()
	s.logger.Info("cleanup started", "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cleanup stopped")
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.revoked.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("sweep expired revocations", "error", err)
		return
	}
	if n > 0 {
		metrics.RevocationsSweptTotal.Add(float64(n))
		s.logger.Info("swept expired revocations", "count", n)
	}
}
