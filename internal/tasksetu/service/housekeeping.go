package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
)

// DefaultInviteRetention is how long expired invitations stay visible to
// admins before they are purged.
const DefaultInviteRetention = 30 * 24 * time.Hour

// HousekeepingService periodically clears expired reset and verification
// tokens and purges long-expired invitations.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Clock     Clock

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the worker. Non-positive durations fall
// back to one hour and DefaultInviteRetention.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  ttlOrDefault(interval, time.Hour),
		Retention: ttlOrDefault(retention, DefaultInviteRetention),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-flight cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Clock.Now()

	if n, err := s.Store.Users().ClearExpiredTokens(ctx, now); err != nil {
		s.Logger.Error("failed to clear expired tokens", "error", err)
	} else {
		s.Logger.Debug("cleared expired tokens", "count", n)
	}

	if n, err := s.Store.Users().DeleteExpiredInvites(ctx, now.Add(-s.Retention)); err != nil {
		s.Logger.Error("failed to delete expired invites", "error", err)
	} else {
		s.Logger.Debug("deleted expired invites", "count", n)
	}
}
