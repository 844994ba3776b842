// Package reminder runs the tick pipeline: check authorization, fetch
// tomorrow's events, match them against the reminder table and dispatch
// the resulting messages. Scheduled ticks and forced runs share this
// code path.
package reminder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/guilherme-santos/calremind"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// RelinkMessage is the single warning dispatched when a tick finds the
// tenant unauthorized.
const RelinkMessage = "Calendar access is not authorized! An admin must send `login` and complete the flow with `link <code>`."

// Authorizer is the narrow view of the authorization flow the pipeline
// needs on each tick.
type Authorizer interface {
	IsAuthorized(ctx context.Context, tenant calremind.Tenant) bool
	Token(ctx context.Context, tenant calremind.Tenant) (*oauth2.Token, error)
}

// Fetcher collects the window's events across all configured calendars.
type Fetcher interface {
	FetchWindow(ctx context.Context, token *oauth2.Token, cals []calremind.Calendar, from, to time.Time) []*calremind.Event
}

// Sink delivers text messages to the logging destination.
type Sink interface {
	Send(ctx context.Context, text string) error
}

type Service struct {
	flow    Authorizer
	fetcher Fetcher
	sink    Sink
	logger  *slog.Logger

	tenant    calremind.Tenant
	calendars []calremind.Calendar
	rules     calremind.Rules

	now func() time.Time
}

type ServiceConfig struct {
	Flow      Authorizer
	Fetcher   Fetcher
	Sink      Sink
	Logger    *slog.Logger
	Tenant    calremind.Tenant
	Calendars []calremind.Calendar
	Rules     calremind.Rules

	// Now supplies the tick's notion of "now" and with it the timezone
	// the next-day window is computed in. Defaults to time.Now.
	Now func() time.Time
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		flow:      cfg.Flow,
		fetcher:   cfg.Fetcher,
		sink:      cfg.Sink,
		logger:    logger,
		tenant:    cfg.Tenant,
		calendars: cfg.Calendars,
		rules:     cfg.Rules,
		now:       now,
	}
}

// Run executes one tick. It never returns an error: everything below a
// configuration problem is logged or turned into a notification so the
// scheduler keeps ticking.
func (s *Service) Run(ctx context.Context) {
	if !s.flow.IsAuthorized(ctx, s.tenant) {
		s.logger.Warn("tick skipped, tenant not authorized", "tenant", s.tenant)
		s.notify(ctx, RelinkMessage)
		return
	}

	token, err := s.flow.Token(ctx, s.tenant)
	if err != nil {
		if errors.Is(err, calremind.ErrNotAuthorized) {
			s.logger.Warn("stored grant no longer accepted", "tenant", s.tenant)
			s.notify(ctx, RelinkMessage)
			return
		}
		s.logger.Error("unable to obtain credential",
			"tenant", s.tenant,
			"error", err,
		)
		return
	}

	from, to := calremind.NextDayWindow(s.now())
	s.logger.Info("tick started",
		"tenant", s.tenant,
		"window_from", from.Format(time.RFC3339),
		"window_to", to.Format(time.RFC3339),
		"calendars", len(s.calendars),
	)

	events := s.fetcher.FetchWindow(ctx, token, s.calendars, from, to)
	messages := Match(events, s.rules)
	if len(messages) == 0 {
		s.logger.Info("no reminders for tomorrow",
			"tenant", s.tenant,
			"events", len(events),
		)
		return
	}

	var g errgroup.Group
	for _, message := range messages {
		g.Go(func() error {
			s.notify(ctx, message)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("tick complete",
		"tenant", s.tenant,
		"events", len(events),
		"reminders", len(messages),
	)
}

func (s *Service) notify(ctx context.Context, message string) {
	if err := s.sink.Send(ctx, message); err != nil {
		s.logger.Error("unable to dispatch notification", "error", err)
	}
}
