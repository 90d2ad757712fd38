// Package fsstate persists the one record of daily alert state as a whole
// file JSON document, so the suppression of duplicate alerts survives process
// restarts.
package fsstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.sr.ht/~mariusor/cronus"
)

const DefaultFile = "alert_state.json"

type LoggerFn func(string, ...interface{})

type alertState struct {
	LastAlertDate string `json:"lastAlertDate"`
}

type state struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
	log  LoggerFn
	err  LoggerFn
}

// Config
type Config struct {
	Path  string
	Now   func() time.Time
	LogFn LoggerFn
	ErrFn LoggerFn
}

// New returns a new alert state store backed by the file at c.Path.
func New(c Config) *state {
	s := state{
		path: c.Path,
		now:  time.Now,
		log:  func(string, ...interface{}) {},
		err:  func(string, ...interface{}) {},
	}
	if c.Now != nil {
		s.now = c.Now
	}
	if c.LogFn != nil {
		s.log = c.LogFn
	}
	if c.ErrFn != nil {
		s.err = c.ErrFn
	}
	return &s
}

func (s *state) today() string {
	return s.now().Format(cronus.DayKeyLayout)
}

// HasSentToday reports whether an alert was already recorded for the current
// local day. A missing or unreadable state file counts as not sent.
func (s *state) HasSentToday() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.err("error reading alert state: %s", err)
		}
		return false
	}
	st := alertState{}
	if err := json.Unmarshal(raw, &st); err != nil {
		s.err("error parsing alert state: %s", err)
		return false
	}
	return st.LastAlertDate == s.today()
}

// RecordSentToday overwrites the state with the current day key. Failures are
// logged, never escalated.
func (s *state) RecordSentToday() {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(alertState{LastAlertDate: s.today()})
	if err != nil {
		s.err("error encoding alert state: %s", err)
		return
	}
	if err := writeFileAtomic(s.path, raw); err != nil {
		s.err("error writing alert state: %s", err)
		return
	}
	s.log("recorded alert sent for today")
}

func writeFileAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".alert-state-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
