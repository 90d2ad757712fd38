package ical

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/soh335/ical"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/internal/post"
	"git.sr.ht/~mariusor/cronus/storage"
	"git.sr.ht/~mariusor/cronus/storage/boltdb"
)

// one year, minus a second
const feedWindow = 8759*time.Hour + 59*time.Minute + 59*time.Second

type handler struct {
	path    string
	version string
}

func (h handler) loadEvents(r *http.Request, date time.Time, window time.Duration) (cronus.Events, time.Time, error) {
	calendars := make([]string, 0)
	if calendarID := chi.URLParam(r, "calendar"); calendarID != "" {
		calendars = append(calendars, calendarID)
	}

	st := boltdb.New(boltdb.Config{
		Path: filepath.Join(h.path, boltdb.DefaultFile),
	})
	events, err := st.LoadEvents(storage.Cursor(date, window), calendars...)
	if err != nil {
		return nil, date, err
	}
	events.Sort()
	return events, date, nil
}

func (h handler) serveCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.Local)
	if yearURL := r.URL.Query().Get("year"); yearURL != "" {
		if year, err := strconv.Atoi(yearURL); err == nil {
			start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		}
	}

	events, date, err := h.loadEvents(r, start, feedWindow)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	calendarID := chi.URLParam(r, "calendar")

	cal := ical.NewBasicVCalendar()
	cal.PRODID = fmt.Sprintf("-//MARIUSOR//CRONUS//EN/%s", h.version)

	cal.VERSION = "2.0"

	name := "Cronus"
	description := name
	if calendarID != "" {
		description = fmt.Sprintf("Cronus, events for %s", calendarID)
	}
	cal.NAME = name
	cal.X_WR_CALNAME = name
	cal.DESCRIPTION = description
	cal.X_WR_CALDESC = description

	tz := date.Location().String()
	cal.TIMEZONE_ID = tz
	cal.X_WR_TIMEZONE = tz

	cal.REFRESH_INTERVAL = "PT1H"
	cal.X_PUBLISHED_TTL = "PT1H"

	cal.CALSCALE = "GREGORIAN"
	cal.METHOD = "PUBLISH"

	for _, ev := range events {
		start := ev.StartTime()
		if start.IsZero() {
			continue
		}
		end := ev.EndTime()
		if end.IsZero() {
			end = start.Add(ev.Duration())
		}

		e := &ical.VEvent{
			UID:         ev.ID,
			DTSTAMP:     start,
			DTSTART:     start,
			DTEND:       end,
			SUMMARY:     ev.Summary,
			DESCRIPTION: post.HTMLToText(ev.Description),
			TZID:        tz,
			AllDay:      ev.AllDay(),
		}
		cal.VComponent = append(cal.VComponent, e)
	}

	b := &bytes.Buffer{}
	if err = cal.Encode(b); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Write(b.Bytes())
}

func (h handler) servePreview(w http.ResponseWriter, r *http.Request) {
	days := 5
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	events, _, err := h.loadEvents(r, start, time.Duration(days)*24*time.Hour)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "%s", err)
		return
	}

	locale := cronus.RU
	if l, ok := cronus.Locales[r.URL.Query().Get("locale")]; ok {
		locale = l
	}

	d := post.NewDigest(locale, cronus.DefaultKeywords, nil)
	message, _ := d.Render(r.Context(), events)
	if message == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, post.Markdown(message))
}
