package post

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~mariusor/cronus"
)

func localRFC3339(year int, month time.Month, day, hour int) string {
	return time.Date(year, month, day, hour, 0, 0, 0, time.Local).Format(time.RFC3339)
}

func staticDetails(ev cronus.Event) DetailsFn {
	return func(context.Context, string, string) (*cronus.Event, error) {
		return &ev, nil
	}
}

func TestRenderEmptyInput(t *testing.T) {
	d := NewDigest(cronus.EN, nil, nil)
	message, flagged := d.Render(context.Background(), nil)
	assert.Empty(t, message)
	assert.False(t, flagged)
}

func TestRenderGroupsByDay(t *testing.T) {
	events := cronus.Events{
		{ID: "1", Summary: "Morning standup", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 10)}},
		{ID: "2", Summary: "Planning", Start: cronus.EventTime{Date: "2024-01-02"}},
	}
	events.Sort()

	d := NewDigest(cronus.EN, nil, nil)
	message, flagged := d.Render(context.Background(), events)
	require.NotEmpty(t, message)
	assert.False(t, flagged)

	// one header per day, in ascending day order
	first := strings.Index(message, "📅 *Monday, 1 January*")
	second := strings.Index(message, "📅 *Tuesday, 2 January*")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Equal(t, 2, strings.Count(message, "📅"))
	assert.Contains(t, message, "\n---\n")

	assert.Contains(t, message, "🕒 *10:00* - Morning standup")
	assert.Contains(t, message, "🕒 *All day* - Planning")
}

func TestRenderEventDetails(t *testing.T) {
	events := cronus.Events{
		{
			ID:          "1",
			Summary:     "Movie night",
			Description: "<p>Tickets &amp; snacks</p>",
			Location:    "Downtown",
			HTMLLink:    "https://calendar.example.com/ev1",
			Start:       cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 19)},
		},
	}

	d := NewDigest(cronus.EN, nil, nil)
	message, _ := d.Render(context.Background(), events)

	assert.Contains(t, message, "[Movie night](https://calendar.example.com/ev1)")
	assert.Contains(t, message, "📄 Tickets & snacks")
	assert.Contains(t, message, "📍 Downtown")
	// single calendar, organizer line stays out
	assert.NotContains(t, message, "👤")
}

func TestRenderOrganizerOnMultiCalendar(t *testing.T) {
	events := cronus.Events{
		{ID: "1", Calendar: "work", Summary: "Sync", Organizer: "Alice", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 10)}},
		{ID: "2", Calendar: "home", Summary: "Dinner", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 19)}},
	}

	d := NewDigest(cronus.EN, nil, nil)
	message, _ := d.Render(context.Background(), events)
	assert.Contains(t, message, "👤 Alice")
}

func TestRenderEnrichment(t *testing.T) {
	full := cronus.Event{
		Summary:     "Looked up title",
		Description: "Looked up description",
		Location:    "Looked up location",
	}

	t.Run("fills_missing_fields", func(t *testing.T) {
		events := cronus.Events{
			{ID: "1", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 10)}},
		}
		d := NewDigest(cronus.EN, nil, staticDetails(full))
		message, _ := d.Render(context.Background(), events)

		assert.Contains(t, message, "Looked up title")
		assert.Contains(t, message, "📄 Looked up description")
		assert.Contains(t, message, "📍 Looked up location")
	})

	t.Run("existing_fields_win", func(t *testing.T) {
		events := cronus.Events{
			{ID: "1", Summary: "Original title", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 10)}},
		}
		d := NewDigest(cronus.EN, nil, staticDetails(full))
		message, _ := d.Render(context.Background(), events)

		assert.Contains(t, message, "Original title")
		assert.NotContains(t, message, "Looked up title")
	})

	t.Run("lookup_failure_leaves_blank", func(t *testing.T) {
		events := cronus.Events{
			{ID: "1", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 10)}},
		}
		d := NewDigest(cronus.EN, nil, func(context.Context, string, string) (*cronus.Event, error) {
			return nil, fmt.Errorf("api unavailable")
		})
		message, _ := d.Render(context.Background(), events)

		assert.Contains(t, message, "Untitled")
	})
}

func TestRenderFlagged(t *testing.T) {
	events := cronus.Events{
		{ID: "1", Summary: "Поход в кино", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 19)}},
	}

	d := NewDigest(cronus.RU, cronus.DefaultKeywords, nil)
	_, flagged := d.Render(context.Background(), events)
	assert.True(t, flagged)

	d = NewDigest(cronus.RU, []string{"concert"}, nil)
	_, flagged = d.Render(context.Background(), events)
	assert.False(t, flagged)
}

func TestRenderDatelessUsesInjectedClock(t *testing.T) {
	events := cronus.Events{
		{ID: "1", Summary: "Sometime"},
	}

	d := NewDigest(cronus.EN, nil, nil)
	d.Now = func() time.Time {
		return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.Local)
	}
	message, _ := d.Render(context.Background(), events)
	assert.Contains(t, message, "📅 *Monday, 1 January*")
}

func TestRenderFlaggedIgnoresMarkup(t *testing.T) {
	// the keyword only occurs inside an attribute, never in visible text
	events := cronus.Events{
		{
			ID:          "1",
			Summary:     "Evening plans",
			Description: `<a href="https://кино.example.com/ev1">details</a>`,
			Start:       cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 19)},
		},
	}

	d := NewDigest(cronus.RU, []string{"кино"}, nil)
	_, flagged := d.Render(context.Background(), events)
	assert.False(t, flagged)

	// visible text still matches
	events[0].Description = "<p>идём в кино</p>"
	_, flagged = d.Render(context.Background(), events)
	assert.True(t, flagged)
}

func TestRenderFlaggedOnEnrichedFields(t *testing.T) {
	// the keyword only shows up through the detail lookup
	events := cronus.Events{
		{ID: "1", Start: cronus.EventTime{DateTime: localRFC3339(2024, time.January, 1, 19)}},
	}
	full := cronus.Event{Summary: "Дима с Катей на спектакле", Description: "театр"}

	d := NewDigest(cronus.RU, cronus.DefaultKeywords, staticDetails(full))
	_, flagged := d.Render(context.Background(), events)
	assert.True(t, flagged)
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "plain text", HTMLToText("plain text"))
	assert.Equal(t, "bold move", HTMLToText("<b>bold</b> move"))
	assert.Equal(t, "", HTMLToText(""))
}
