package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/five82/retriever/internal/backend"
	"github.com/five82/retriever/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 30 * time.Second
)

// SessionAPI is what the poller needs from the backend.
type SessionAPI interface {
	CurrentUser(ctx context.Context) (*backend.User, error)
	UnreadCount(ctx context.Context) (int, error)
}

// StartPoller launches a background goroutine that refreshes the session
// store. Consecutive failures stretch the wait up to maxBackoff. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, api SessionAPI, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			_ = refresh(ctx, store, api, logger)
			timer.Reset(calculateBackoff(store.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// refresh fetches the user and unread count concurrently and records the
// outcome. Either failure fails the whole poll.
func refresh(ctx context.Context, store *state.Store, api SessionAPI, logger *log.Logger) error {
	var (
		user   *backend.User
		unread int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := api.CurrentUser(gctx)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	g.Go(func() error {
		n, err := api.UnreadCount(gctx)
		if err != nil {
			return err
		}
		unread = n
		return nil
	})
	if err := g.Wait(); err != nil {
		store.Update(nil, 0, err)
		if logger != nil {
			logger.Warn("session poll failed", "err", err, "failures", store.Snapshot().ConsecutiveFailures)
		}
		return err
	}
	store.Update(user, unread, nil)
	return nil
}

// calculateBackoff doubles base once per consecutive failure, capped at
// maxBackoff (or base itself when base is already longer).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	limit := max(maxBackoff, base)
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= limit {
			return limit
		}
	}
	return wait
}
