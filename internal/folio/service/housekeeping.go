package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/store"
)

const DefaultHousekeepingInterval = time.Hour

// HousekeepingService periodically purges revoked access tokens, expired
// refresh records and stale reset/verification digests.
type HousekeepingService struct {
	Store     store.Store
	Blacklist store.Blacklist
	Clock     Clock
	Logger    *slog.Logger
	Interval  time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour. A nil blacklist uses the store's own.
func NewHousekeepingService(
	st store.Store,
	bl store.Blacklist,
	clock Clock,
	logger *slog.Logger,
	interval time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = DefaultHousekeepingInterval
	}
	if bl == nil {
		bl = st.Blacklist()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &HousekeepingService{
		Store:     st,
		Blacklist: bl,
		Clock:     clock,
		Logger:    logger,
		Interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
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

// CleanupReport counts what one pass removed. A step that failed reports -1.
type CleanupReport struct {
	Blacklist       int64
	RefreshTokens   int64
	OneTimeDigests  int64
	SuccessfulSteps int
}

// Cleanup runs one pass. Steps are independent; a failing step is logged and
// the rest still run.
func (s *HousekeepingService) Cleanup(ctx context.Context) CleanupReport {
	now := s.Clock.Now()
	s.Logger.Info("starting housekeeping cleanup")

	var r CleanupReport
	step := func(name string, dst *int64, fn func() (int64, error)) {
		n, err := fn()
		if err != nil {
			*dst = -1
			s.Logger.Error("housekeeping step failed", "step", name, "error", err)
			return
		}
		*dst = n
		r.SuccessfulSteps++
		s.Logger.Debug("housekeeping step completed", "step", name, "deleted", n)
	}

	step("blacklist", &r.Blacklist, func() (int64, error) {
		return s.Blacklist.DeleteExpired(ctx, now)
	})
	step("refresh_records", &r.RefreshTokens, func() (int64, error) {
		return s.Store.Accounts().DeleteExpiredRefreshTokens(ctx, now)
	})
	step("one_time_digests", &r.OneTimeDigests, func() (int64, error) {
		return s.Store.Accounts().ClearExpiredOneTimeTokens(ctx, now)
	})

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", r.SuccessfulSteps)
	return r
}
