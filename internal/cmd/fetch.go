package cmd

import (
	"context"
	"path"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/cronus/calendar"
	"git.sr.ht/~mariusor/cronus/storage/boltdb"
)

var FetchCmd = cli.Command{
	Name:  "fetch",
	Usage: "Fetches calendar events into the local cache",
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:   "days",
			Usage:  "How many days ahead to fetch",
			EnvVar: "CRONUS_LOOKAHEAD_DAYS",
			Value:  defaultLookAheadDays,
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Don't persist events",
		},
	}, calendarFlags...),
	Action: fetchCalendars,
}

func fetchCalendars(c *cli.Context) error {
	ctx := context.Background()

	src, err := googleFetcher(ctx, c)
	if err != nil {
		return err
	}
	debug := c.Bool("debug") || c.GlobalBool("debug")

	agg := calendar.New(src, calendarIDs(c)...)
	from, to := calendar.Upcoming(time.Now(), c.Int("days"))
	if debug {
		info("Loading events for period: %s - %s",
			from.Format("2006-01-02 Mon, 15:04"), to.Format("2006-01-02 Mon, 15:04"))
	}

	events := agg.Load(ctx, from, to)
	if debug {
		info("%d events", len(events))
		for _, e := range events {
			printEvent(e)
		}
	}
	if c.Bool("dry-run") || c.GlobalBool("dry-run") {
		return nil
	}

	st := boltdb.New(boltdb.Config{
		Path:  path.Join(c.GlobalString("path"), boltdb.DefaultFile),
		LogFn: nil,
		ErrFn: errFn,
	})
	return st.SaveEvents(events)
}
