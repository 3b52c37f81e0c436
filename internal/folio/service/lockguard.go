package service

import (
	"math"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
)

const (
	DefaultMaxLoginAttempts = 5
	DefaultLockDuration     = 15 * time.Minute
)

// LockGuard is the failed-login state machine. It only mutates the
// SecurityState it is handed; persisting it is the caller's job.
type LockGuard struct {
	Clock        Clock
	MaxAttempts  int
	LockDuration time.Duration
}

func NewLockGuard(clock Clock, maxAttempts int, lockDuration time.Duration) *LockGuard {
	if clock == nil {
		clock = SystemClock{}
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if lockDuration <= 0 {
		lockDuration = DefaultLockDuration
	}
	return &LockGuard{Clock: clock, MaxAttempts: maxAttempts, LockDuration: lockDuration}
}

// IsLocked reports whether a lock is set and still in the future.
func (g *LockGuard) IsLocked(sec *domain.SecurityState) bool {
	return sec.LockedUntil != nil && sec.LockedUntil.After(g.Clock.Now())
}

// RemainingMinutes rounds the rest of the lock up to whole minutes.
func (g *LockGuard) RemainingMinutes(sec *domain.SecurityState) int {
	if !g.IsLocked(sec) {
		return 0
	}
	left := sec.LockedUntil.Sub(g.Clock.Now())
	return int(math.Ceil(left.Minutes()))
}

// RecordFailure counts a failed attempt and reports whether the account is
// locked afterwards. A lapsed lock starts a fresh window at one attempt.
func (g *LockGuard) RecordFailure(sec *domain.SecurityState) bool {
	now := g.Clock.Now()
	if sec.LockedUntil != nil && !sec.LockedUntil.After(now) {
		sec.FailedLoginAttempts = 1
		sec.LockedUntil = nil
		return false
	}

	sec.FailedLoginAttempts++
	if sec.FailedLoginAttempts >= g.MaxAttempts {
		until := now.Add(g.LockDuration)
		sec.LockedUntil = &until
		return true
	}
	return false
}

// RecordSuccess clears the counter and lock and stamps the login time.
func (g *LockGuard) RecordSuccess(sec *domain.SecurityState) {
	now := g.Clock.Now()
	sec.ClearLockout()
	sec.LastLogin = &now
}
