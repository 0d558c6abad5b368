package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/pager/paging"
)

const (
	defaultFollowInterval = 2 * time.Second
	maxBackoff            = 30 * time.Second
)

// followed is the part of a paging.Controller the follower drives.
type followed[V any] interface {
	Name() string
	State() paging.State[V]
	Refresh(ctx context.Context) error
	Append(ctx context.Context) error
}

// StartFollower launches a background goroutine that asks feed for new
// entries at a fixed cadence, backing off while loads fail. It returns
// immediately; the goroutine exits with ctx.
func StartFollower[V any](ctx context.Context, feed followed[V], interval time.Duration, log logrus.FieldLogger) {
	if interval <= 0 {
		interval = defaultFollowInterval
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			err := follow(ctx, feed)
			switch {
			case err == nil, paging.IsCanceled(err):
				failures = 0
			default:
				failures++
				log.WithFields(logrus.Fields{"feed": feed.Name(), "failures": failures}).WithError(err).Warn("follow failed")
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// follow performs one step. An empty feed that has loaded before refreshes;
// a feed with items appends, which the controller turns into a no-op once
// pagination ended. Failed loads are retried on the next step.
func follow[V any](ctx context.Context, feed followed[V]) error {
	s := feed.State()
	switch {
	case s.IsRefreshing() || s.IsAppending():
		return nil
	case len(s.Items) == 0:
		if s.LastLoad == nil {
			return nil
		}
		return feed.Refresh(ctx)
	default:
		return feed.Append(ctx)
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
