// Package google adapts the Google Calendar API to the calendar.Fetcher
// interface, authenticating with a service account key.
package google

import (
	"context"
	"fmt"
	"os"
	"time"

	goauth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"git.sr.ht/~mariusor/cronus"
)

type client struct {
	svc *gcal.Service
}

// New builds a read only calendar client from the service account key file.
func New(ctx context.Context, credentialsFile string) (*client, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read service account key %s: %w", credentialsFile, err)
	}
	conf, err := goauth.JWTConfigFromJSON(raw, gcal.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account key %s: %w", credentialsFile, err)
	}
	svc, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize calendar client: %w", err)
	}
	return &client{svc: svc}, nil
}

func (c *client) Events(ctx context.Context, calendarID string, from, to time.Time) (cronus.Events, error) {
	res, err := c.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list events for %s: %w", calendarID, err)
	}
	events := make(cronus.Events, 0, len(res.Items))
	for _, it := range res.Items {
		events = append(events, fromAPI(it))
	}
	return events, nil
}

func (c *client) Event(ctx context.Context, calendarID, eventID string) (*cronus.Event, error) {
	it, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to load event %s from %s: %w", eventID, calendarID, err)
	}
	ev := fromAPI(it)
	return &ev, nil
}

func fromAPI(it *gcal.Event) cronus.Event {
	ev := cronus.Event{
		ID:          it.Id,
		Summary:     it.Summary,
		Description: it.Description,
		Location:    it.Location,
		HTMLLink:    it.HtmlLink,
	}
	if it.Organizer != nil {
		ev.Organizer = it.Organizer.DisplayName
	}
	if it.Start != nil {
		ev.Start = cronus.EventTime{DateTime: it.Start.DateTime, Date: it.Start.Date}
	}
	if it.End != nil {
		ev.End = cronus.EventTime{DateTime: it.End.DateTime, Date: it.End.Date}
	}
	return ev
}
