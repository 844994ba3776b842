package google

import (
	"time"

	"github.com/guilherme-santos/calremind"

	"google.golang.org/api/calendar/v3"
)

type eventOrError struct {
	e   *calremind.Event
	err error
}

type eventIterator struct {
	events  chan eventOrError
	current eventOrError
}

func newEventIterator() *eventIterator {
	return &eventIterator{
		events: make(chan eventOrError),
	}
}

func (it *eventIterator) Next() (ok bool) {
	it.current, ok = <-it.events
	if it.current.err != nil {
		return false
	}
	return ok
}

func (it *eventIterator) Event() *calremind.Event {
	c := it.current
	if c.e == nil && c.err == nil {
		panic("google: Event() called before Next()")
	}
	return c.e
}

func (it *eventIterator) Err() error {
	return it.current.err
}

// newEvent normalizes a provider event. All-day events carry a date-only
// start/end which becomes local midnight; timed events carry RFC3339.
func newEvent(event *calendar.Event) *calremind.Event {
	e := &calremind.Event{
		ID:       event.Id,
		Name:     event.Summary,
		Location: event.Location,
	}

	if event.Start != nil && event.Start.Date != "" {
		e.AllDay = true
		e.StartsAt = allDayTime(event.Start.Date)
		if event.End != nil {
			e.EndsAt = allDayTime(event.End.Date)
		}
		return e
	}

	if event.Start != nil {
		e.StartsAt, _ = time.Parse(time.RFC3339, event.Start.DateTime)
	}
	if event.End != nil {
		e.EndsAt, _ = time.Parse(time.RFC3339, event.End.DateTime)
	}
	return e
}

func allDayTime(value string) time.Time {
	d, err := calremind.ParseDate(calremind.DateFormat, value)
	if err != nil {
		return time.Time{}
	}
	return calremind.NewDate(d.Year(), d.Month(), d.Day(), time.Local).Time
}
