package cmd

import (
	"context"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	w "git.sr.ht/~mariusor/wrapper"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/cronus/storage/fsstate"
)

var DaemonCmd = cli.Command{
	Name:  "daemon",
	Usage: "Runs the digest and threshold check on their recurring schedules",
	Flags: append(append([]cli.Flag{
		&cli.StringFlag{
			Name:   "digest-cron",
			Usage:  "Cron schedule for the daily digest",
			EnvVar: "CRONUS_DIGEST_CRON",
			Value:  "0 8 * * *",
		},
		&cli.StringFlag{
			Name:   "alert-cron",
			Usage:  "Cron schedule for the online threshold check",
			EnvVar: "CRONUS_ALERT_CRON",
			Value:  "0 * * * *",
		},
		&cli.IntFlag{
			Name:   "days",
			Usage:  "How many days ahead the digest covers",
			EnvVar: "CRONUS_LOOKAHEAD_DAYS",
			Value:  defaultLookAheadDays,
		},
		&cli.StringFlag{
			Name:  "locale",
			Usage: "Locale used for the day headers",
			Value: defaultLocale,
		},
		&cli.StringFlag{
			Name:   "follow-up",
			Usage:  "Reminder sent after a digest containing a flagged event",
			EnvVar: "CRONUS_FOLLOW_UP",
			Value:  "🎟 *Напоминание:* не забудь купить билеты!",
		},
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
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print messages instead of delivering them",
		},
	}, calendarFlags...), transportFlags...),
	Action: runDaemon,
}

func runDaemon(c *cli.Context) error {
	ctx := context.Background()

	src, err := googleFetcher(ctx, c)
	if err != nil {
		return err
	}
	keywords := keywordValues(c)
	postFns, err := buildTransports(c, keywords)
	if err != nil {
		return err
	}

	calendars := calendarIDs(c)
	digestConf := DigestConfig{
		Calendars:     calendars,
		Days:          c.Int("days"),
		Keywords:      keywords,
		Locale:        localeValue(c),
		FollowUp:      c.String("follow-up"),
		FollowUpDelay: defaultFollowUpDelay,
		PostFns:       postFns,
	}
	alertConf := AlertConfig{
		Calendars: calendars,
		Keyword:   c.String("online-keyword"),
		Threshold: c.Duration("threshold"),
		StatePath: filepath.Join(DataPath(), fsstate.DefaultFile),
		PostFns:   postFns,
	}

	digestJob := func() {
		if err := SendDigest(ctx, src, digestConf); err != nil {
			errFn("Unable to send digest: %s", err)
		}
	}
	alertJob := func() {
		if err := CheckDailyOnline(ctx, src, alertConf); err != nil {
			errFn("Unable to run threshold check: %s", err)
		}
	}

	cr := cron.New()
	if _, err := cr.AddFunc(c.String("digest-cron"), digestJob); err != nil {
		return err
	}
	if _, err := cr.AddFunc(c.String("alert-cron"), alertJob); err != nil {
		return err
	}
	info("Digest scheduled: %s", c.String("digest-cron"))
	info("Threshold check scheduled: %s", c.String("alert-cron"))

	stop := make(chan struct{})
	var stopOnce sync.Once
	stopFn := func() { stopOnce.Do(func() { close(stop) }) }

	w.RegisterSignalHandlers(w.SignalHandlers{
		syscall.SIGHUP: func(_ chan int) {
			info("SIGHUP received, reloading configuration")
		},
		syscall.SIGINT: func(exit chan int) {
			info("SIGINT received, stopping")
			stopFn()
			exit <- 0
		},
		syscall.SIGTERM: func(exit chan int) {
			info("SIGTERM received, force stopping")
			stopFn()
			exit <- 0
		},
		syscall.SIGQUIT: func(exit chan int) {
			info("SIGQUIT received, force stopping with core-dump")
			stopFn()
			exit <- 0
		},
	}).Exec(func() error {
		// both jobs also run once at startup
		go digestJob()
		go alertJob()

		cr.Start()
		<-stop
		<-cr.Stop().Done()
		return nil
	})

	return nil
}
