package google

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/guilherme-santos/calremind"
)

const defaultMaxResults = 50

// Client reads events from Google Calendar. Token renewal is handled
// upstream by the authorization flow, so each call runs on a static
// token source built from the credential it is given.
type Client struct {
	// MaxResults caps how many events one calendar contributes per
	// window. Zero means defaultMaxResults.
	MaxResults int64

	logger *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{logger: logger}
}

func (c Client) Events(ctx context.Context, token *oauth2.Token, calendarID string, from, to time.Time) (calremind.Iterator, error) {
	svc, err := c.calendarSvc(ctx, token)
	if err != nil {
		return nil, err
	}

	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	eventsCall := svc.Events.
		List(calendarID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		ShowDeleted(false)

	it := newEventIterator()
	go c.events(calendarID, eventsCall, it.events)
	return it, nil
}

func (c Client) events(calendarID string, call *calendar.EventsListCall, eventCh chan eventOrError) {
	defer close(eventCh)

	var nextPageToken string
	for {
		events, err := call.PageToken(nextPageToken).Do()
		if err != nil {
			// No retry here: a failed calendar waits for the next tick.
			c.logger.Warn("unable to list events",
				"calendar_id", calendarID,
				"reason", errReason(err),
				"error", err,
			)
			eventCh <- eventOrError{err: err}
			return
		}

		for _, item := range events.Items {
			eventCh <- eventOrError{e: newEvent(item)}
		}
		nextPageToken = events.NextPageToken
		if nextPageToken == "" {
			return
		}
	}
}

func (c Client) calendarSvc(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	return calendar.NewService(ctx, option.WithHTTPClient(httpClient))
}

// errReason extracts the provider's error reason (e.g. "notFound",
// "authError") for log context.
func errReason(err error) string {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return ""
	}
	for _, e := range gErr.Errors {
		if e.Reason != "" {
			return e.Reason
		}
	}
	return ""
}
