package cmd

import (
	"fmt"
	"path"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/storage"
	"git.sr.ht/~mariusor/cronus/storage/boltdb"
)

var ListCmd = cli.Command{
	Name:  "list",
	Usage: "Lists already cached calendar events",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "start",
			Usage: "Date at which to start",
			Value: now.Format(cronus.DayKeyLayout),
		},
		&cli.DurationFlag{
			Name:  "end",
			Usage: "Date interval to check",
			Value: time.Duration(defaultLookAheadDays+1) * 24 * time.Hour,
		},
	}, calendarFlags...),
	Action: listCalendars,
}

func listCalendars(c *cli.Context) error {
	start := now
	if sf := c.String("start"); len(sf) > 0 {
		if sfp, err := cronus.ParseDate(sf); err == nil {
			start = sfp
		}
	}
	duration := c.Duration("end")

	st := boltdb.New(boltdb.Config{
		Path:  path.Join(c.GlobalString("path"), boltdb.DefaultFile),
		LogFn: nil,
		ErrFn: errFn,
	})

	info("Loading events for period: %s - %s",
		start.Format("2006-01-02 Mon, 15:04"), start.Add(duration).Format("2006-01-02 Mon, 15:04"))
	events, err := st.LoadEvents(storage.Cursor(start, duration), calendarIDs(c)...)
	if err != nil {
		return fmt.Errorf("unable to load events: %w", err)
	}
	if len(events) == 0 {
		info("nothing found")
		return nil
	}
	events.Sort()
	for _, e := range events {
		printEvent(e)
	}
	return nil
}

func printEvent(e cronus.Event) {
	label := "(no date)"
	if at := e.StartTime(); !at.IsZero() {
		if e.AllDay() {
			label = at.In(time.Local).Format("2006-01-02") + " (all day)"
		} else {
			label = at.In(time.Local).Format("2006-01-02 15:04 MST")
		}
	}
	summary := e.Summary
	if summary == "" {
		summary = "(untitled)"
	}
	info("[%s] %s @ %s", e.Calendar, summary, label)
	if e.Location != "" {
		info("  %s", e.Location)
	}
}
