package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/McKael/madon"
	"github.com/urfave/cli"

	"git.sr.ht/~mariusor/cronus"
	"git.sr.ht/~mariusor/cronus/calendar"
	"git.sr.ht/~mariusor/cronus/calendar/google"
	"git.sr.ht/~mariusor/cronus/internal/post"
)

const (
	AppName    = "cronus"
	AppVersion = "(unknown)"
)

var (
	AppWebsite = "https://git.sr.ht/~mariusor/cronus"
	AppScopes  = []string{"read+write+follow"}
)

var now = time.Now()

const (
	defaultLookAheadDays = 5
	defaultLocale        = "ru"
	defaultCredentials   = "cronus.json"
	defaultFollowUpDelay = 15 * time.Second
)

var info = func(s string, args ...interface{}) {
	fmt.Printf(s+"\n", args...)
}

var errFn = func(s string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, s+"\n", args...)
}

func MkDirIfNotExists(p string) error {
	fi, err := os.Stat(p)
	if err != nil && os.IsNotExist(err) {
		err = os.MkdirAll(p, os.ModeDir|os.ModePerm|0700)
	}
	if err != nil {
		return err
	}
	fi, err = os.Stat(p)
	if err != nil {
		return err
	} else if !fi.IsDir() {
		return fmt.Errorf("path exists, and is not a folder %s", p)
	}
	return nil
}

func CachePath() string {
	xdgCachePath, _ := os.UserCacheDir()
	return filepath.Join(xdgCachePath, AppName)
}

func DataPath() string {
	homeDir, _ := os.UserHomeDir()
	xdgDataPath := filepath.Join(homeDir, ".local", "share")
	appPath := filepath.Join(xdgDataPath, AppName)

	if _, err := os.Stat(appPath); err != nil && errors.Is(err, os.ErrNotExist) {
		err := MkDirIfNotExists(appPath)
		if err != nil {
			log.Fatalf("Error: %s", err.Error())
		}
	}
	return appPath
}

func stringValue(c *cli.Context, p string) string {
	for {
		if c.IsSet(p) {
			if val := c.String(p); val != "" {
				return val
			}
		}
		if c = c.Parent(); c == nil {
			break
		}
	}
	return ""
}

func stringSliceValues(c *cli.Context, p string) []string {
	for {
		if c.IsSet(p) {
			if values := c.StringSlice(p); values != nil {
				return values
			}
		}
		if c = c.Parent(); c == nil {
			break
		}
	}
	return nil
}

// calendarIDs resolves the calendar configuration: every flag or environment
// value may itself be a comma list or a JSON array.
func calendarIDs(c *cli.Context) []string {
	raw := stringSliceValues(c, "calendar")
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, cronus.ParseCalendarIDs(v)...)
	}
	return cronus.UniqueCalendarIDs(ids)
}

func keywordValues(c *cli.Context) []string {
	if kw := stringSliceValues(c, "keyword"); len(kw) > 0 {
		return cronus.TrimCalendarIDs(kw)
	}
	return cronus.DefaultKeywords
}

func localeValue(c *cli.Context) cronus.Locale {
	name := stringValue(c, "locale")
	if name == "" {
		name = defaultLocale
	}
	if l, ok := cronus.Locales[name]; ok {
		return l
	}
	errFn("unknown locale %s, falling back to %s", name, defaultLocale)
	return cronus.Locales[defaultLocale]
}

var calendarFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:   "calendar",
		Usage:  "Which calendars to load; accepts a comma list or JSON array",
		EnvVar: "CALENDAR_IDS,CALENDAR_ID",
	},
	&cli.StringFlag{
		Name:   "credentials",
		Usage:  "Path to the Google service account key",
		EnvVar: "GOOGLE_CREDENTIALS",
		Value:  defaultCredentials,
	},
}

var transportFlags = []cli.Flag{
	&cli.StringFlag{
		Name:   "telegram-token",
		Usage:  "Telegram bot token",
		EnvVar: "TELEGRAM_BOT_TOKEN",
	},
	&cli.StringFlag{
		Name:   "telegram-chat",
		Usage:  "Telegram chat to deliver digests to",
		EnvVar: "TELEGRAM_CHAT_ID",
	},
	&cli.StringSliceFlag{
		Name:   "keyword",
		Usage:  "Keywords that flag an event for a follow-up reminder",
		EnvVar: "CRONUS_KEYWORDS",
	},
}

// buildTransports assembles the delivery functions from the Telegram flags
// and the persisted fediverse credentials. Running with no usable transport
// is a fatal configuration error, a dry run always goes to stdout.
func buildTransports(c *cli.Context, keywords []string) ([]post.PosterFn, error) {
	if c.GlobalBool("dry-run") || c.Bool("dry-run") {
		return []post.PosterFn{post.ToStdout}, nil
	}

	postFns := make([]post.PosterFn, 0)

	token := stringValue(c, "telegram-token")
	chat := stringValue(c, "telegram-chat")
	if token != "" || chat != "" {
		tg, err := post.NewTelegram(token, chat)
		if err != nil {
			return nil, err
		}
		postFns = append(postFns, post.ToTelegram(tg))
	}

	creds, err := post.LoadCredentials(DataPath())
	if err != nil {
		errFn("unable to load credentials for the client: %s", err)
	}
	for _, cred := range creds {
		switch cl := cred.(type) {
		case *madon.Client:
			postFns = append(postFns, post.ToMastodon(cl, keywords))
		case *post.APClient:
			postFns = append(postFns, post.ToActivityPub(cl, keywords))
		}
	}

	if len(postFns) == 0 {
		return nil, fmt.Errorf("no transport configured: missing Telegram bot token or chat ID")
	}
	return postFns, nil
}

// googleFetcher builds the calendar read collaborator from either command or
// global flags.
func googleFetcher(ctx context.Context, c *cli.Context) (calendar.Fetcher, error) {
	credentials := stringValue(c, "credentials")
	if credentials == "" {
		credentials = defaultCredentials
	}
	return google.New(ctx, credentials)
}
