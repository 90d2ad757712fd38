// Package post renders the daily digest and delivers it to the configured
// transports: Telegram, Mastodon, ActivityPub services, or stdout for dry
// runs.
package post

import (
	"bytes"
	"encoding/gob"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/McKael/madon"
)

// PosterFn delivers one rendered message to a transport.
type PosterFn func(message string) error

var infFn = func(s string, i ...interface{}) {}
var errFn = func(s string, i ...interface{}) {}

// ToStdout prints the message, used as the dry run transport and as the
// fallback when no other transport could be set up.
func ToStdout(message string) error {
	f := log.Flags()
	log.SetFlags(0)
	log.Printf("%s\n", message)
	log.SetFlags(f)
	return nil
}

func InstanceName(inst string) string {
	if u, err := url.ParseRequestURI(inst); err == nil {
		inst = u.Host
	}
	return url.PathEscape(filepath.Clean(filepath.Base(inst)))
}

// SaveCredentials persists a transport client as a gob file.
func SaveCredentials(cl any, path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(cl)
}

// LoadCredentials walks the data directory and decodes every gob credential
// file it finds, keyed by file name.
func LoadCredentials(path string) (map[string]any, error) {
	creds := make(map[string]any)

	err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, cl := range []any{new(APClient), new(madon.Client)} {
			if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(cl); err != nil {
				continue
			}
			creds[filepath.Base(path)] = cl
		}
		return nil
	})

	return creds, err
}
