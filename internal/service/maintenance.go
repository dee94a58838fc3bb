package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultMaintenanceInterval is the minimum gap between two flush passes.
const DefaultMaintenanceInterval = 60 * time.Second

// MaintenanceScheduler runs the periodic flush of dirty address-book entries.
// There is no background timer: maintenance rides along on whichever request
// happens to arrive after the interval has elapsed, via MaybeRun.
type MaintenanceScheduler struct {
	cache    *AddressBookCache
	interval time.Duration
	logger   *slog.Logger

	// lastRun holds the unix-seconds timestamp of the last pass. The
	// compare-and-swap on it serializes flushes across concurrent requests.
	lastRun atomic.Int64
}

// NewMaintenanceScheduler constructs a scheduler over the given cache.
// A non-positive interval falls back to DefaultMaintenanceInterval.
func NewMaintenanceScheduler(cache *AddressBookCache, interval time.Duration, logger *slog.Logger) *MaintenanceScheduler {
	if interval <= 0 {
		interval = DefaultMaintenanceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MaintenanceScheduler{cache: cache, interval: interval, logger: logger}
}

// MaybeRun triggers a flush pass when at least the configured interval has
// elapsed since the last one. The timestamp is advanced before flushing so
// concurrent callers cannot start a second pass. Returns true when this call
// ran the flush.
func (s *MaintenanceScheduler) MaybeRun(ctx context.Context, now time.Time) bool {
	last := s.lastRun.Load()
	if now.Unix() < last+int64(s.interval/time.Second) {
		return false
	}
	if !s.lastRun.CompareAndSwap(last, now.Unix()) {
		// Another request won the race and is flushing.
		return false
	}

	report := s.cache.FlushDirty(ctx)
	if report.Submitted > 0 || report.Evicted > 0 {
		s.logger.DebugContext(ctx, "address book maintenance pass",
			"submitted", report.Submitted,
			"evicted", report.Evicted,
			"failed", report.Failed)
	}
	return true
}
