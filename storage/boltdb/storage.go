package boltdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/storage"
)

type LoggerFn func(string, ...interface{})

type repo struct {
	d    *bolt.DB
	root []byte
	path string
	log  LoggerFn
	err  LoggerFn
}

const (
	rootBucket  = "cal"
	DefaultFile = "cronus.bdb"
)

// Config
type Config struct {
	Path  string
	LogFn LoggerFn
	ErrFn LoggerFn
}

// New returns a new repo repository
func New(c Config) *repo {
	b := repo{
		root: []byte(rootBucket),
		path: c.Path,
		log:  func(string, ...interface{}) {},
		err:  func(string, ...interface{}) {},
	}
	if c.ErrFn != nil {
		b.err = c.ErrFn
	}
	if c.LogFn != nil {
		b.log = c.LogFn
	}
	return &b
}

func (r *repo) open() error {
	var err error
	r.d, err = bolt.Open(r.path, 0600, nil)
	if err != nil {
		return fmt.Errorf("could not open db %s %w", r.path, err)
	}
	err = r.d.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(r.root)
		if err != nil {
			return fmt.Errorf("unable to create root bucket %s: %w", r.root, err)
		}
		if !root.Writable() {
			return fmt.Errorf("non writeable root bucket %s", r.root)
		}
		return nil
	})
	return err
}

// close closes the boltdb database if possible.
func (r *repo) close() error {
	if r.d == nil {
		return nil
	}
	return r.d.Close()
}

// LoadEvent returns the cached event with the given id on the given day, or
// an empty event when nothing matches.
func (r *repo) LoadEvent(calendarID string, date time.Time, id string) cronus.Event {
	events, err := r.LoadEvents(storage.DateCursor{T: date, D: 24 * time.Hour}, calendarID)
	if err != nil {
		r.err("error loading events: %s", err)
	}
	for _, event := range events {
		if event.ID == id {
			return event
		}
	}
	return cronus.Event{}
}

// LoadEvents returns all cached events inside the cursor window belonging to
// the given calendars.
func (r *repo) LoadEvents(cursor storage.DateCursor, calendars ...string) (cronus.Events, error) {
	var err error
	err = r.open()
	if err != nil {
		return nil, err
	}
	defer r.close()
	return loadFromBucket(r.d, r.root, cursor, calendars...)
}

func loadFromBucketRecursive(b *bolt.Bucket, min, max []byte) cronus.Events {
	events := make(cronus.Events, 0)

	c := b.Cursor()

	first := func() ([]byte, []byte) { return c.First() }
	compare := func(k, v []byte) bool { return k != nil }
	if min != nil {
		first = func() ([]byte, []byte) { return c.Seek(min) }
	}
	if max != nil {
		compare = func(k, v []byte) bool { return k != nil && bytes.Compare(k, max) <= 0 }
	}
	for key, raw := first(); compare(key, raw); key, raw = c.Next() {
		if raw == nil {
			// a nested bucket: descend
			events = append(events, loadFromBucketRecursive(b.Bucket(key), nil, nil)...)
		} else {
			ev, err := loadItem(raw)
			if err == nil && ev.ID != "" {
				events = append(events, ev)
			}
		}
	}

	return events
}

func loadFromBucket(db *bolt.DB, root []byte, cursor storage.DateCursor, calendars ...string) (cronus.Events, error) {
	events := make(cronus.Events, 0)

	err := db.View(func(tx *bolt.Tx) error {
		rb := tx.Bucket(root)
		if rb == nil {
			return fmt.Errorf("invalid bucket %s", root)
		}

		var err error
		for _, id := range calendars {
			var b *bolt.Bucket
			min, max := getCursorPaths(cursor, []byte(id))
			b, min, max, err = descendToLastCommonBucket(rb, min, max)
			if b == nil {
				continue
			}
			events = append(events, loadFromBucketRecursive(b, min, max)...)
		}
		return err
	})

	return events, err
}

func loadItem(raw []byte) (cronus.Event, error) {
	ev := cronus.Event{}
	if len(raw) == 0 {
		return ev, fmt.Errorf("empty raw item")
	}
	err := json.Unmarshal(raw, &ev)
	return ev, err
}

var pathSeparator = []byte{'/'}

func getCursorPaths(c storage.DateCursor, calendar []byte) ([]byte, []byte) {
	var min, max []byte
	if c.D < 0 {
		max = itemBucketPath(calendar, c.T)
		min = itemBucketPath(calendar, c.T.Add(c.D))
	} else {
		min = itemBucketPath(calendar, c.T)
		max = itemBucketPath(calendar, c.T.Add(c.D))
	}
	return min, max
}

func itemBucketPath(calendar []byte, date time.Time) []byte {
	pathEl := make([][]byte, 0)

	pathEl = append(pathEl, calendar)
	pathEl = append(pathEl, []byte(date.Format("06")))
	pathEl = append(pathEl, []byte(date.Format("01")))
	pathEl = append(pathEl, []byte(date.Format("02")))

	return bytes.Join(pathEl, pathSeparator)
}

func descendToLastCommonBucket(root *bolt.Bucket, min, max []byte) (*bolt.Bucket, []byte, []byte, error) {
	minPieces := bytes.Split(min, pathSeparator)
	maxPieces := bytes.Split(max, pathSeparator)

	b := root
	lvl := 0
	// the length should be the same
	for i, k := range minPieces {
		if !bytes.Equal(k, maxPieces[i]) {
			break
		}
		cb := b.Bucket(k)
		if cb == nil {
			break
		}
		lvl = i
		b = cb
	}
	min = bytes.Join(minPieces[lvl+1:], pathSeparator)
	max = bytes.Join(maxPieces[lvl+1:], pathSeparator)
	if len(min) == 0 {
		min = nil
	}
	if len(max) == 0 {
		max = nil
	}
	return b, min, max, nil
}

func descendInBucket(root *bolt.Bucket, path []byte, create bool) (*bolt.Bucket, []byte, error) {
	if root == nil {
		return nil, path, fmt.Errorf("trying to descend into nil bucket")
	}
	if len(path) == 0 {
		return root, path, nil
	}
	buckets := bytes.Split(path, pathSeparator)

	lvl := 0
	b := root
	// descend the bucket tree up to the last found bucket
	for _, name := range buckets {
		lvl++
		if len(name) == 0 {
			continue
		}
		if b == nil {
			return root, path, fmt.Errorf("trying to load from nil bucket")
		}
		var cb *bolt.Bucket
		if create {
			cb, _ = b.CreateBucketIfNotExists(name)
		} else {
			cb = b.Bucket(name)
		}
		if cb == nil {
			lvl--
			break
		}
		b = cb
	}
	path = bytes.Join(buckets[lvl:], pathSeparator)

	return b, path, nil
}

// SaveEvents persists the events, keyed by source calendar, day and event id.
func (r *repo) SaveEvents(events cronus.Events) error {
	var err error
	err = r.open()
	if err != nil {
		return err
	}
	defer r.close()

	for _, ev := range events {
		if err = save(r, ev); err != nil {
			r.err("error saving event %s: %s", ev.ID, err)
		}
	}
	return err
}

// SaveEvent persists a single event.
func (r *repo) SaveEvent(ev cronus.Event) error {
	var err error
	err = r.open()
	if err != nil {
		return err
	}
	defer r.close()

	return save(r, ev)
}

func save(r *repo, ev cronus.Event) error {
	day := ev.DayKey(time.Now())
	date, _ := time.ParseInLocation(cronus.DayKeyLayout, day, time.Local)
	path := itemBucketPath([]byte(ev.Calendar), date)

	return r.d.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(r.root)
		if root == nil {
			return fmt.Errorf("invalid bucket %s", r.root)
		}
		if !root.Writable() {
			return fmt.Errorf("non writeable bucket %s", r.root)
		}
		b, path, err := descendInBucket(root, path, true)
		if err != nil {
			return fmt.Errorf("unable to find %s in root bucket: %w", path, err)
		}
		if !b.Writable() {
			return fmt.Errorf("non writeable bucket %s", path)
		}
		entryBytes, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("could not marshal object: %w", err)
		}
		if err = b.Put([]byte(ev.ID), entryBytes); err != nil {
			return fmt.Errorf("could not store encoded object: %w", err)
		}
		return nil
	})
}
