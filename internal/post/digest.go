package post

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"git.sr.ht/~mariusor/cronus"
)

// DetailsFn is the best effort event detail lookup used to backfill sparse
// event records. A failure yields nil and the gap stays blank.
type DetailsFn func(ctx context.Context, calendarID, eventID string) (*cronus.Event, error)

const untitledEvent = "Untitled"

// Digest renders a merged, time sorted event sequence into the multi day
// message text delivered to the transports.
type Digest struct {
	Locale   cronus.Locale
	Keywords []string
	Details  DetailsFn
	Now      func() time.Time
	ErrFn    func(string, ...interface{})
}

func NewDigest(l cronus.Locale, keywords []string, details DetailsFn) Digest {
	return Digest{
		Locale:   l,
		Keywords: keywords,
		Details:  details,
		Now:      time.Now,
		ErrFn:    func(string, ...interface{}) {},
	}
}

// Render groups the events by local calendar day and builds the digest text.
// The second return is true when any event matches the configured keywords.
// An empty input yields an empty message, which callers must not dispatch.
func (d Digest) Render(ctx context.Context, events cronus.Events) (string, bool) {
	if len(events) == 0 {
		return "", false
	}
	nowFn := time.Now
	if d.Now != nil {
		nowFn = d.Now
	}
	now := nowFn()

	groups := make(map[string]cronus.Events)
	for _, ev := range events {
		key := ev.DayKey(now)
		groups[key] = append(groups[key], ev)
	}
	days := make([]string, 0, len(groups))
	for key := range groups {
		days = append(days, key)
	}
	// lexicographic order of day keys is chronological order
	sort.Strings(days)

	multiCalendar := distinctCalendars(events) > 1
	flagged := false

	msg := strings.Builder{}
	for i, day := range days {
		if i > 0 {
			msg.WriteString("\n---\n")
		}
		msg.WriteString(fmt.Sprintf("📅 *%s*\n\n", d.formatDay(day)))

		for _, ev := range groups[day] {
			ev = d.enrich(ctx, ev)
			// match against what the reader will actually see
			matchEv := ev
			matchEv.Description = HTMLToText(ev.Description)
			if cronus.ContainsAny(matchEv, d.Keywords) {
				flagged = true
			}
			d.renderEvent(&msg, ev, multiCalendar)
		}
	}

	return msg.String(), flagged
}

func (d Digest) renderEvent(msg *strings.Builder, ev cronus.Event, multiCalendar bool) {
	label := "All day"
	if !ev.AllDay() {
		if at := ev.StartTime(); !at.IsZero() {
			label = at.In(time.Local).Format("15:04")
		}
	}

	title := ev.Summary
	if title == "" {
		title = untitledEvent
	}
	if ev.HTMLLink != "" {
		msg.WriteString(fmt.Sprintf("🕒 *%s* - [%s](%s)", label, title, ev.HTMLLink))
	} else {
		msg.WriteString(fmt.Sprintf("🕒 *%s* - %s", label, title))
	}

	if desc := HTMLToText(ev.Description); desc != "" {
		msg.WriteString(fmt.Sprintf("\n📄 %s", desc))
	}
	if ev.Location != "" {
		msg.WriteString(fmt.Sprintf("\n📍 %s", ev.Location))
	}
	if multiCalendar && ev.Organizer != "" {
		msg.WriteString(fmt.Sprintf("\n👤 %s", ev.Organizer))
	}
	msg.WriteString("\n")
}

// enrich backfills missing text fields with a single detail lookup. Fields
// already present always win over looked up values.
func (d Digest) enrich(ctx context.Context, ev cronus.Event) cronus.Event {
	if d.Details == nil {
		return ev
	}
	if ev.Summary != "" && ev.Description != "" && ev.Location != "" {
		return ev
	}
	full, err := d.Details(ctx, ev.Calendar, ev.ID)
	if err != nil {
		d.ErrFn("unable to load details for event %s: %s", ev.ID, err)
		return ev
	}
	if full == nil {
		return ev
	}
	if ev.Summary == "" {
		ev.Summary = full.Summary
	}
	if ev.Description == "" {
		ev.Description = full.Description
	}
	if ev.Location == "" {
		ev.Location = full.Location
	}
	if ev.Organizer == "" {
		ev.Organizer = full.Organizer
	}
	return ev
}

func (d Digest) formatDay(key string) string {
	return cronus.FormatDate(key, d.Locale)
}

func distinctCalendars(events cronus.Events) int {
	seen := make(map[string]struct{})
	for _, ev := range events {
		seen[ev.Calendar] = struct{}{}
	}
	return len(seen)
}
