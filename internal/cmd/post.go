package cmd

import (
	"context"
	"time"

	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/calendar"
	"git.sr.ht/~mariusor/cronus/internal/post"
)

var PostCmd = cli.Command{
	Name:  "post",
	Usage: "Fetches the upcoming events and delivers the digest",
	Flags: append(append([]cli.Flag{
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
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the digest instead of delivering it",
		},
	}, calendarFlags...), transportFlags...),
	Action: runPost,
}

type DigestConfig struct {
	Calendars     []string
	Days          int
	Keywords      []string
	Locale        cronus.Locale
	FollowUp      string
	FollowUpDelay time.Duration
	PostFns       []post.PosterFn
}

func runPost(c *cli.Context) error {
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

	conf := DigestConfig{
		Calendars:     calendarIDs(c),
		Days:          c.Int("days"),
		Keywords:      keywords,
		Locale:        localeValue(c),
		FollowUp:      c.String("follow-up"),
		FollowUpDelay: defaultFollowUpDelay,
		PostFns:       postFns,
	}
	return SendDigest(ctx, src, conf)
}

// SendDigest runs one full digest pass: fetch the look-ahead window from all
// calendars, render, deliver, and when a flagged event was seen follow up
// with the reminder after a short pause.
func SendDigest(ctx context.Context, src calendar.Fetcher, conf DigestConfig) error {
	info("Checking calendar events...")

	agg := calendar.New(src, conf.Calendars...)
	from, to := calendar.Upcoming(time.Now(), conf.Days)
	events := agg.Load(ctx, from, to)
	if len(events) == 0 {
		info("No events found.")
		return nil
	}

	d := post.NewDigest(conf.Locale, conf.Keywords, detailsFn(src))
	d.ErrFn = errFn
	message, flagged := d.Render(ctx, events)
	if message == "" {
		return nil
	}

	deliver(message, conf.PostFns)

	if flagged && conf.FollowUp != "" {
		// keep the reminder visually after the digest for the reader
		time.Sleep(conf.FollowUpDelay)
		deliver(conf.FollowUp, conf.PostFns)
	}
	return nil
}

func deliver(message string, postFns []post.PosterFn) {
	for _, postFn := range postFns {
		if err := postFn(message); err != nil {
			info("Error trying to post: %s", err)
		}
	}
}

func detailsFn(src calendar.Fetcher) post.DetailsFn {
	return func(ctx context.Context, calendarID, eventID string) (*cronus.Event, error) {
		return src.Event(ctx, calendarID, eventID)
	}
}
