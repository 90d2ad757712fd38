package fsstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasSentTodayMissingFile(t *testing.T) {
	s := New(Config{Path: filepath.Join(t.TempDir(), DefaultFile)})
	assert.False(t, s.HasSentToday())
}

func TestHasSentTodayCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s := New(Config{Path: path})
	assert.False(t, s.HasSentToday())
}

func TestRecordAndCheckRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	s := New(Config{Path: path})

	assert.False(t, s.HasSentToday())
	s.RecordSentToday()
	assert.True(t, s.HasSentToday())
}

func TestRecordedStateRollsOverAtMidnight(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	day := time.Date(2024, time.June, 15, 22, 0, 0, 0, time.Local)
	s := New(Config{Path: path, Now: func() time.Time { return day }})
	s.RecordSentToday()
	assert.True(t, s.HasSentToday())

	// same file, next day
	next := New(Config{Path: path, Now: func() time.Time { return day.Add(3 * time.Hour) }})
	assert.False(t, next.HasSentToday())
}

func TestRecordOverwritesPreviousDay(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)

	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.Local)
	s := New(Config{Path: path, Now: func() time.Time { return now }})
	s.RecordSentToday()

	now = now.Add(24 * time.Hour)
	assert.False(t, s.HasSentToday())
	s.RecordSentToday()
	assert.True(t, s.HasSentToday())
}
