package calremind

import "time"

const DateFormat = "2006-01-02"

type Date struct {
	time.Time
}

func Today() Date {
	return NewDateFromTime(time.Now())
}

func NewDateFromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day(), t.Location())
}

func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

func (d Date) AddDate(years, months, days int) Date {
	t := d.Time.AddDate(years, months, days)
	return NewDate(t.Year(), t.Month(), t.Day(), t.Location())
}

func ParseDate(layout, value string) (Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, err
	}
	return NewDateFromTime(t), nil
}

func (d Date) String() string {
	return d.Format(DateFormat)
}

// NextDayWindow returns the polling window for a tick that runs at now:
// the whole of tomorrow, [D+1 00:00:00, D+1 23:59:59] in now's location.
func NextDayWindow(now time.Time) (from, to time.Time) {
	// Calendar-day arithmetic: a DST-transition day is not 24 elapsed hours.
	from = NewDateFromTime(now).AddDate(0, 0, 1).Time
	to = from.AddDate(0, 0, 1).Add(-time.Second)
	return from, to
}
