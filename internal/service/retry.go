package service

import (
	"errors"
	"math/rand"
	"time"

	"github.com/punchamoorthee/checkoutops/internal/domain"
)

// RetryPolicy bounds how often a failed purchase is reissued. Only the
// store's transient conflict is worth retrying; business rejections are
// final no matter how many attempts remain.
type RetryPolicy struct {
	MaxAttempts int // total attempts including the first
	MinDelay    time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the observed production settings: 3 attempts
// with a 100-2500ms randomized pause between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		MinDelay:    100 * time.Millisecond,
		MaxDelay:    2500 * time.Millisecond,
	}
}

// ShouldRetry reports whether err warrants another attempt given how many
// attempts remain in the budget.
func (p RetryPolicy) ShouldRetry(err error, attemptsRemaining int) bool {
	return attemptsRemaining > 0 && errors.Is(err, domain.ErrTxConflict)
}

// NextDelay picks a uniformly random pause in [MinDelay, MaxDelay]. The
// jitter desynchronizes competing retriers; this is deliberately not an
// exponential backoff.
func (p RetryPolicy) NextDelay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return p.MinDelay
	}
	return p.MinDelay + time.Duration(rand.Int63n(int64(p.MaxDelay-p.MinDelay)+1))
}
