package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/calendar"
	"git.sr.ht/~mariusor/cronus/internal/post"
	"git.sr.ht/~mariusor/cronus/storage/fsstate"
)

var AlertCmd = cli.Command{
	Name:  "alert",
	Usage: "Checks today's cumulative online time and sends the daily threshold alert",
	Flags: append(append([]cli.Flag{
		&cli.DurationFlag{
			Name:   "threshold",
			Usage:  "Cumulative online time that triggers the alert",
			EnvVar: "CRONUS_ALERT_THRESHOLD",
			Value:  5 * time.Hour,
		},
		&cli.StringFlag{
			Name:  "online-keyword",
			Usage: "Summary keyword marking an event as online time",
			Value: "online",
		},
		&cli.StringFlag{
			Name:  "state-file",
			Usage: "Where the alert state is persisted",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the alert instead of delivering it",
		},
	}, calendarFlags...), transportFlags...),
	Action: runAlert,
}

type AlertConfig struct {
	Calendars []string
	Keyword   string
	Threshold time.Duration
	StatePath string
	PostFns   []post.PosterFn
}

func runAlert(c *cli.Context) error {
	ctx := context.Background()

	src, err := googleFetcher(ctx, c)
	if err != nil {
		return err
	}
	postFns, err := buildTransports(c, keywordValues(c))
	if err != nil {
		return err
	}

	statePath := c.String("state-file")
	if statePath == "" {
		statePath = filepath.Join(DataPath(), fsstate.DefaultFile)
	}

	conf := AlertConfig{
		Calendars: calendarIDs(c),
		Keyword:   c.String("online-keyword"),
		Threshold: c.Duration("threshold"),
		StatePath: statePath,
		PostFns:   postFns,
	}
	return CheckDailyOnline(ctx, src, conf)
}

// CheckDailyOnline sums the durations of today's timed events whose summary
// contains the online keyword and dispatches one alert per day when the sum
// exceeds the threshold. The sent state is recorded optimistically, a failed
// delivery is not retried within the same day.
func CheckDailyOnline(ctx context.Context, src calendar.Fetcher, conf AlertConfig) error {
	info("Checking daily online status...")

	st := fsstate.New(fsstate.Config{Path: conf.StatePath, LogFn: info, ErrFn: errFn})
	if st.HasSentToday() {
		info("Alert for online time has already been sent today.")
		return nil
	}

	agg := calendar.New(src, conf.Calendars...)
	from, to := calendar.Today(time.Now())
	events := agg.Load(ctx, from, to)
	if len(events) == 0 {
		info("No events found for today.")
		return nil
	}

	total := OnlineDuration(events, conf.Keyword)
	hours := total.Hours()
	info("Total online time today: %.2f hours.", hours)

	if total <= conf.Threshold {
		return nil
	}

	message := fmt.Sprintf("🚨 *Alert:* Daily online time has exceeded %g hours. Total today: %.2f hours.",
		conf.Threshold.Hours(), hours)
	deliver(message, conf.PostFns)
	st.RecordSentToday()
	return nil
}

// OnlineDuration sums the durations of the timed events whose summary
// contains the keyword, case insensitively. All day and dateless events
// contribute nothing.
func OnlineDuration(events cronus.Events, keyword string) time.Duration {
	keyword = strings.ToLower(keyword)
	var total time.Duration
	for _, ev := range events {
		if ev.Summary == "" || !strings.Contains(strings.ToLower(ev.Summary), keyword) {
			continue
		}
		total += ev.Duration()
	}
	return total
}
