package calendar

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~mariusor/cronus"
)

// Fetcher is the calendar read collaborator. Both calls degrade at the
// caller: a failed fetch turns into an empty result, a failed detail lookup
// into a nil event.
type Fetcher interface {
	Events(ctx context.Context, calendarID string, from, to time.Time) (cronus.Events, error)
	Event(ctx context.Context, calendarID, eventID string) (*cronus.Event, error)
}

type logFn func(s string, args ...interface{})

type cal struct {
	calendars []string
	src       Fetcher
	log       logFn
	err       logFn
}

func New(src Fetcher, calendars ...string) *cal {
	logFn := func(s string, args ...interface{}) {
		fmt.Printf(s, args...)
		fmt.Println()
	}
	errFn := func(s string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, s, args...)
		fmt.Fprintln(os.Stderr)
	}
	return &cal{
		calendars: cronus.UniqueCalendarIDs(calendars),
		src:       src,
		log:       logFn,
		err:       errFn,
	}
}

func (c *cal) Calendars() []string {
	return c.calendars
}

// Load fetches the window from every calendar concurrently, stamps each event
// with its source calendar, and returns a single merged sequence sorted by
// start instant ascending. A calendar that fails to fetch contributes nothing
// and does not abort the rest.
func (c *cal) Load(ctx context.Context, from, to time.Time) cronus.Events {
	var mu sync.Mutex
	events := make(cronus.Events, 0)

	g, gtx := errgroup.WithContext(ctx)
	for _, id := range c.calendars {
		g.Go(func() error {
			found, err := c.src.Events(gtx, id, from, to)
			if err != nil {
				c.err("unable to load events for calendar %s: %s", id, err)
				return nil
			}
			for i := range found {
				found[i].Calendar = id
			}
			mu.Lock()
			events = append(events, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	events.Sort()
	return events
}

// Today is the window from local midnight through the last millisecond of the
// current day.
func Today(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.Add(24*time.Hour - time.Millisecond)
}

// Upcoming is the window from local midnight through the end of the day
// "days" ahead.
func Upcoming(now time.Time, days int) (time.Time, time.Time) {
	start, _ := Today(now)
	return start, start.Add(time.Duration(days+1)*24*time.Hour - time.Millisecond)
}
