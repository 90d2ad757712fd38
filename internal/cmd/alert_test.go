package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/internal/post"
	"git.sr.ht/~mariusor/cronus/storage/fsstate"
)

func timedEvent(summary string, start, end string) cronus.Event {
	return cronus.Event{
		Summary: summary,
		Start:   cronus.EventTime{DateTime: start},
		End:     cronus.EventTime{DateTime: end},
	}
}

func TestOnlineDuration(t *testing.T) {
	events := cronus.Events{
		timedEvent("Online: pair programming", "2024-01-01T09:00:00Z", "2024-01-01T12:00:00Z"),
		timedEvent("online standup", "2024-01-01T13:00:00Z", "2024-01-01T13:30:00Z"),
		timedEvent("Lunch", "2024-01-01T12:00:00Z", "2024-01-01T13:00:00Z"),
	}
	assert.Equal(t, 3*time.Hour+30*time.Minute, OnlineDuration(events, "online"))
}

func TestOnlineDurationCaseInsensitive(t *testing.T) {
	events := cronus.Events{
		timedEvent("ONLINE meeting", "2024-01-01T09:00:00Z", "2024-01-01T10:00:00Z"),
	}
	assert.Equal(t, time.Hour, OnlineDuration(events, "Online"))
}

func TestOnlineDurationSkipsAllDayAndDateless(t *testing.T) {
	events := cronus.Events{
		{Summary: "online conference", Start: cronus.EventTime{Date: "2024-01-01"}, End: cronus.EventTime{Date: "2024-01-02"}},
		{Summary: "online sometime"},
	}
	assert.Equal(t, time.Duration(0), OnlineDuration(events, "online"))
}

func TestOnlineDurationNoMatches(t *testing.T) {
	events := cronus.Events{
		timedEvent("Lunch", "2024-01-01T12:00:00Z", "2024-01-01T13:00:00Z"),
	}
	assert.Equal(t, time.Duration(0), OnlineDuration(events, "online"))
}

func TestOnlineDurationEmptyEvents(t *testing.T) {
	assert.Equal(t, time.Duration(0), OnlineDuration(nil, "online"))
}

type stubFetcher struct {
	events cronus.Events
}

func (s stubFetcher) Events(context.Context, string, time.Time, time.Time) (cronus.Events, error) {
	return s.events, nil
}

func (s stubFetcher) Event(context.Context, string, string) (*cronus.Event, error) {
	return nil, fmt.Errorf("not found")
}

// Recording is optimistic: the sent state is written after the delivery
// attempt even when every transport failed, so a broken transport does not
// turn into one alert per check for the rest of the day.
func TestCheckDailyOnlineRecordsStateOnFailedDelivery(t *testing.T) {
	day := time.Now()
	src := stubFetcher{events: cronus.Events{
		timedEvent("online pairing",
			time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local).Format(time.RFC3339),
			time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.Local).Format(time.RFC3339)),
	}}

	delivered := 0
	failing := func(string) error {
		delivered++
		return fmt.Errorf("transport unavailable")
	}

	conf := AlertConfig{
		Calendars: []string{"work"},
		Keyword:   "online",
		Threshold: time.Hour,
		StatePath: filepath.Join(t.TempDir(), fsstate.DefaultFile),
		PostFns:   []post.PosterFn{failing},
	}

	require.NoError(t, CheckDailyOnline(context.Background(), src, conf))
	assert.Equal(t, 1, delivered)
	assert.True(t, fsstate.New(fsstate.Config{Path: conf.StatePath}).HasSentToday())

	// the recorded state short-circuits the next check within the same day
	require.NoError(t, CheckDailyOnline(context.Background(), src, conf))
	assert.Equal(t, 1, delivered)
}
