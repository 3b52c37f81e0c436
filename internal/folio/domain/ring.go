package domain

import (
	"crypto/subtle"
	"time"
)

// DefaultRefreshRingCap is the number of concurrent sessions kept per account.
const DefaultRefreshRingCap = 5

// RefreshTokenRecord is one live session. Token holds the fingerprint of the
// refresh JWT, never the JWT itself.
type RefreshTokenRecord struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RefreshTokenRing is a bounded FIFO of refresh token records. Appending past
// the cap evicts the oldest record by insertion order.
type RefreshTokenRing struct {
	Cap     int
	records []RefreshTokenRecord
}

// NewRefreshTokenRing builds a ring from persisted records, oldest first.
// Records past the cap are dropped from the front.
func NewRefreshTokenRing(capacity int, records []RefreshTokenRecord) RefreshTokenRing {
	r := RefreshTokenRing{Cap: capacity}
	for _, rec := range records {
		r.Append(rec)
	}
	return r
}

func (r *RefreshTokenRing) capacity() int {
	if r.Cap <= 0 {
		return DefaultRefreshRingCap
	}
	return r.Cap
}

// Append adds rec and returns whatever fell off the front.
func (r *RefreshTokenRing) Append(rec RefreshTokenRecord) []RefreshTokenRecord {
	r.records = append(r.records, rec)
	over := len(r.records) - r.capacity()
	if over <= 0 {
		return nil
	}
	evicted := make([]RefreshTokenRecord, over)
	copy(evicted, r.records[:over])
	r.records = append([]RefreshTokenRecord(nil), r.records[over:]...)
	return evicted
}

// Contains reports whether token is present and not expired at now.
func (r *RefreshTokenRing) Contains(token string, now time.Time) bool {
	found := false
	for _, rec := range r.records {
		if subtle.ConstantTimeCompare([]byte(rec.Token), []byte(token)) == 1 && now.Before(rec.ExpiresAt) {
			found = true
		}
	}
	return found
}

// Remove drops token from the ring. Removing an absent token is a no-op.
func (r *RefreshTokenRing) Remove(token string) bool {
	for i, rec := range r.records {
		if rec.Token == token {
			r.records = append(r.records[:i:i], r.records[i+1:]...)
			return true
		}
	}
	return false
}

// PruneExpired drops records whose expiry is not after now.
func (r *RefreshTokenRing) PruneExpired(now time.Time) int {
	kept := r.records[:0:0]
	for _, rec := range r.records {
		if now.Before(rec.ExpiresAt) {
			kept = append(kept, rec)
		}
	}
	n := len(r.records) - len(kept)
	r.records = kept
	return n
}

func (r *RefreshTokenRing) Clear() { r.records = nil }

func (r *RefreshTokenRing) Len() int { return len(r.records) }

// Records returns a copy, oldest first.
func (r *RefreshTokenRing) Records() []RefreshTokenRecord {
	out := make([]RefreshTokenRecord, len(r.records))
	copy(out, r.records)
	return out
}
