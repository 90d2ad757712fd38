package storage

import (
	"time"

	"git.sr.ht/~mariusor/cronus"
)

type DateCursor struct {
	T time.Time
	D time.Duration
}

func Cursor(st time.Time, d time.Duration) DateCursor {
	return DateCursor{
		T: st,
		D: d,
	}
}

type Saver interface {
	SaveEvents(cronus.Events) error
}

type Loader interface {
	LoadEvents(DateCursor, ...string) (cronus.Events, error)
	LoadEvent(string, time.Time, string) cronus.Event
}
