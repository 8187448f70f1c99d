package scheduler

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the re-runs of a worker that asked to be retried.
// Delays grow exponentially from Base and never exceed Cap; after
// MaxRetries re-runs the run is dropped.
type RetryPolicy struct {
	Base       time.Duration
	Cap        time.Duration
	MaxRetries uint64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Base: 30 * time.Second, Cap: 30 * time.Minute, MaxRetries: 5}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	d := DefaultRetryPolicy()
	if p.Base <= 0 {
		p.Base = d.Base
	}
	if p.Cap <= 0 {
		p.Cap = d.Cap
	}
	return p
}

func (p RetryPolicy) backoff() retry.Backoff {
	p = p.withDefaults()
	b := retry.NewExponential(p.Base)
	b = retry.WithCappedDuration(p.Cap, b)
	return retry.WithMaxRetries(p.MaxRetries, b)
}
