// Package fetcher collects the events of all configured calendars for a
// time window. Fetches fan out concurrently, one per calendar, and the
// fan-in waits for every outcome: a failed calendar is logged and
// contributes zero events, it never aborts the batch.
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/guilherme-santos/calremind"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 30 * time.Second

type Fetcher struct {
	mux    calremind.Mux
	logger *slog.Logger

	// Timeout bounds each calendar fetch so a hung provider call cannot
	// stall the fan-in. Zero means defaultTimeout.
	Timeout time.Duration
}

func New(mux calremind.Mux, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		mux:    mux,
		logger: logger,
	}
}

// FetchWindow returns the union of events across the given calendars,
// keeping the provider's start-time order within each calendar and the
// request order across calendars. Partial success is success.
func (f *Fetcher) FetchWindow(ctx context.Context, token *oauth2.Token, cals []calremind.Calendar, from, to time.Time) []*calremind.Event {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	results := make([][]*calremind.Event, len(cals))

	var g errgroup.Group
	for i, cal := range cals {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			events, err := f.fetch(fetchCtx, token, cal, from, to)
			if err != nil {
				f.logger.Warn("calendar fetch failed",
					"calendar", cal.String(),
					"error", err,
				)
				return nil
			}
			results[i] = events
			return nil
		})
	}
	// Goroutines always return nil; Wait is the fan-in barrier.
	_ = g.Wait()

	var all []*calremind.Event
	for _, events := range results {
		all = append(all, events...)
	}
	return all
}

func (f *Fetcher) fetch(ctx context.Context, token *oauth2.Token, cal calremind.Calendar, from, to time.Time) ([]*calremind.Event, error) {
	provider, err := f.mux.Get(cal.Platform)
	if err != nil {
		return nil, err
	}

	it, err := provider.Events(ctx, token, cal.ID, from, to)
	if err != nil {
		return nil, err
	}

	var events []*calremind.Event
	for it.Next() {
		events = append(events, it.Event())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
