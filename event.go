package cronus

import (
	"sort"
	"time"
)

// DayKeyLayout is the calendar day key used for grouping events and for
// comparing the daily alert state.
const DayKeyLayout = "2006-01-02"

// EventTime mirrors the calendar API start/end shape: a timed event carries
// DateTime, an all day event carries only Date. At most one is populated.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

func (t EventTime) IsZero() bool {
	return t.DateTime == "" && t.Date == ""
}

// Time resolves the value to an instant. Date only values resolve to local
// midnight. The second return is false when neither field is usable.
func (t EventTime) Time() (time.Time, bool) {
	if t.DateTime != "" {
		if at, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return at, true
		}
	}
	if t.Date != "" {
		if at, err := time.ParseInLocation(DayKeyLayout, t.Date, time.Local); err == nil {
			return at, true
		}
	}
	return time.Time{}, false
}

type Event struct {
	ID          string    `json:"id"`
	Calendar    string    `json:"calendar,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
	Organizer   string    `json:"organizer,omitempty"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

type Events []Event

// StartTime returns the event start instant, or the zero time when the event
// carries no usable start. The zero value sorts before any real instant.
func (e Event) StartTime() time.Time {
	at, _ := e.Start.Time()
	return at
}

func (e Event) EndTime() time.Time {
	at, _ := e.End.Time()
	return at
}

// AllDay reports whether the event has a start but no time of day.
func (e Event) AllDay() bool {
	return e.Start.DateTime == "" && e.Start.Date != ""
}

// Duration is the timed length of the event, zero for all day or dateless
// events.
func (e Event) Duration() time.Duration {
	if e.Start.DateTime == "" || e.End.DateTime == "" {
		return 0
	}
	start, ok := e.Start.Time()
	if !ok {
		return 0
	}
	end, ok := e.End.Time()
	if !ok || end.Before(start) {
		return 0
	}
	return end.Sub(start)
}

// DayKey renders the local calendar day the event belongs to. Events without
// a determinable start fall onto the day of "now".
func (e Event) DayKey(now time.Time) string {
	if at := e.StartTime(); !at.IsZero() {
		return at.In(time.Local).Format(DayKeyLayout)
	}
	return now.In(time.Local).Format(DayKeyLayout)
}

// Sort orders the events by start instant ascending, keeping the existing
// order between events that share an instant. Dateless events sort first.
func (evs Events) Sort() {
	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].StartTime().Before(evs[j].StartTime())
	})
}
