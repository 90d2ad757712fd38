package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~mariusor/cronus"
)

type fakeFetcher struct {
	events map[string]cronus.Events
	failed map[string]error
}

func (f fakeFetcher) Events(_ context.Context, calendarID string, _, _ time.Time) (cronus.Events, error) {
	if err, ok := f.failed[calendarID]; ok {
		return nil, err
	}
	return f.events[calendarID], nil
}

func (f fakeFetcher) Event(_ context.Context, calendarID, eventID string) (*cronus.Event, error) {
	for _, ev := range f.events[calendarID] {
		if ev.ID == eventID {
			return &ev, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func TestNewDefaultsCalendars(t *testing.T) {
	c := New(fakeFetcher{})
	assert.Equal(t, []string{cronus.DefaultCalendarID}, c.Calendars())

	c = New(fakeFetcher{}, "work", "home", "work")
	assert.Equal(t, []string{"work", "home"}, c.Calendars())
}

func TestLoadMergesAndSorts(t *testing.T) {
	src := fakeFetcher{
		events: map[string]cronus.Events{
			"work": {
				{ID: "w1", Start: cronus.EventTime{DateTime: "2024-01-01T15:00:00Z"}},
			},
			"home": {
				{ID: "h1", Start: cronus.EventTime{DateTime: "2024-01-01T09:00:00Z"}},
				{ID: "h2", Start: cronus.EventTime{DateTime: "2024-01-02T09:00:00Z"}},
			},
		},
	}

	c := New(src, "work", "home")
	events := c.Load(context.Background(), time.Now(), time.Now().Add(48*time.Hour))
	require.Len(t, events, 3)

	assert.Equal(t, "h1", events[0].ID)
	assert.Equal(t, "w1", events[1].ID)
	assert.Equal(t, "h2", events[2].ID)

	// every event carries its source calendar
	assert.Equal(t, "home", events[0].Calendar)
	assert.Equal(t, "work", events[1].Calendar)
}

func TestLoadFailedCalendarContributesNothing(t *testing.T) {
	src := fakeFetcher{
		events: map[string]cronus.Events{
			"work": {
				{ID: "w1", Start: cronus.EventTime{DateTime: "2024-01-01T15:00:00Z"}},
			},
		},
		failed: map[string]error{
			"broken": fmt.Errorf("api unavailable"),
		},
	}

	c := New(src, "work", "broken")
	c.err = func(string, ...interface{}) {}

	events := c.Load(context.Background(), time.Now(), time.Now().Add(24*time.Hour))
	require.Len(t, events, 1)
	assert.Equal(t, "w1", events[0].ID)
}

func TestTodayWindow(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 45, 12, 0, time.Local)
	from, to := Today(now)

	assert.Equal(t, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, from.Add(24*time.Hour-time.Millisecond), to)
}

func TestUpcomingWindow(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 45, 12, 0, time.Local)
	from, to := Upcoming(now, 5)

	assert.Equal(t, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, from.Add(6*24*time.Hour-time.Millisecond), to)
}
