package marketdata

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantfold/hedgesim/pkg/errors"
)

// Budget throttles provider requests two ways: a per-minute rate limit and a
// rolling 24 hour request cap. Acquire blocks for the rate limit but fails
// immediately when the daily cap is exhausted, so callers can surface the
// exhaustion instead of stalling for hours.
type Budget struct {
	limiter *rate.Limiter
	perDay  int

	mu     sync.Mutex
	stamps []time.Time

	// now is swapped out by tests.
	now func() time.Time
}

// NewBudget builds a budget allowing perMinute requests per minute and
// perDay requests in any rolling 24 hour window.
func NewBudget(perMinute, perDay int) *Budget {
	return &Budget{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		perDay:  perDay,
		now:     time.Now,
	}
}

// Acquire reserves one request. It returns a rate-limited provider error
// when the rolling daily cap is spent, and blocks on the per-minute limiter
// otherwise. Context cancellation interrupts the wait.
func (b *Budget) Acquire(ctx context.Context) error {
	b.mu.Lock()

	cutoff := b.now().Add(-24 * time.Hour)
	kept := b.stamps[:0]

	for _, stamp := range b.stamps {
		if stamp.After(cutoff) {
			kept = append(kept, stamp)
		}
	}

	b.stamps = kept

	if len(b.stamps) >= b.perDay {
		b.mu.Unlock()

		return errors.Newf(errors.ErrCodeProviderRateLimited, "daily request budget of %d exhausted", b.perDay)
	}

	// Reserve the slot before waiting so concurrent acquirers cannot
	// overshoot the cap, and release it if the wait never completes.
	stamp := b.now()
	b.stamps = append(b.stamps, stamp)
	b.mu.Unlock()

	if err := b.limiter.Wait(ctx); err != nil {
		b.release(stamp)

		return errors.Wrap(errors.ErrCodeProviderRateLimited, "rate limit wait interrupted", err)
	}

	return nil
}

// release drops one reserved stamp after an interrupted wait; no request
// was made, so the daily budget keeps the unit.
func (b *Budget) release(stamp time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := len(b.stamps) - 1; i >= 0; i-- {
		if b.stamps[i].Equal(stamp) {
			b.stamps = append(b.stamps[:i], b.stamps[i+1:]...)

			return
		}
	}
}

// Remaining reports how many requests are left in the rolling daily window.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-24 * time.Hour)
	used := 0

	for _, stamp := range b.stamps {
		if stamp.After(cutoff) {
			used++
		}
	}

	if used >= b.perDay {
		return 0
	}

	return b.perDay - used
}
