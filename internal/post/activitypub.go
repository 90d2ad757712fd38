package post

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"git.sr.ht/~mariusor/lw"
	vocab "github.com/go-ap/activitypub"
	"github.com/go-ap/client"
	"gitlab.com/golang-commonmark/markdown"
	"golang.org/x/oauth2"
)

// APClient holds the OAuth2 state for posting to an ActivityPub service.
type APClient struct {
	ID   vocab.IRI
	Type string
	Conf oauth2.Config
	Tok  *oauth2.Token
}

var nl = vocab.DefaultNaturalLanguageValue

func GetHTTPClient() *http.Client {
	cl := http.DefaultClient

	if cl.Transport == nil {
		cl.Transport = &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 20,
			DialContext: (&net.Dialer{
				Timeout: 2500 * time.Millisecond,
			}).DialContext,
			TLSHandshakeTimeout: 2500 * time.Millisecond,
		}
	}
	if tr, ok := cl.Transport.(*http.Transport); ok {
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = new(tls.Config)
		}
		tr.TLSClientConfig.InsecureSkipVerify = true
	}
	return cl
}

// Markdown renders digest markdown to HTML.
func Markdown(data string) string {
	md := markdown.New(
		markdown.HTML(true),
		markdown.Tables(true),
		markdown.Linkify(false),
		markdown.Typographer(true),
		markdown.Breaks(true),
	)
	return md.RenderToString([]byte(data))
}

func newActivityPubTag(tag string, baseURL vocab.IRI) *vocab.Object {
	tag = "#" + tags{tag}.Render("")
	t := new(vocab.Object)
	t.Name = nl(tag)
	t.To.Append(vocab.PublicNS)
	t.ID = baseURL.AddPath(strings.TrimPrefix(tag, "#"))
	return t
}

func wrapObjectInCreate(actor vocab.Actor, p vocab.Item) vocab.Activity {
	now := time.Now().UTC()
	return vocab.Activity{
		Type:         vocab.CreateType,
		Published:    now,
		Updated:      now,
		AttributedTo: actor.GetLink(),
		Actor:        actor.GetLink(),
		Object:       p,
	}
}

// ToActivityPub posts the digest as a Create{Note} to the client's outbox.
// When the actor can not be loaded the transport degrades to stdout.
func ToActivityPub(cl *APClient, keywords []string) PosterFn {
	logger := lw.Dev()

	oauth := cl.Conf.Client(context.Background(), cl.Tok)
	ap := client.New(
		client.WithHTTPClient(oauth),
		client.WithLogger(logger),
	)

	errFn = logger.Errorf
	infFn = logger.Infof

	c, cancelFn := context.WithTimeout(context.Background(), time.Second)
	defer cancelFn()

	actor, err := ap.Actor(c, cl.ID)
	if err != nil {
		errFn("%s, falling back to just printing", err)
		return ToStdout
	}

	return func(message string) error {
		if message == "" {
			return nil
		}

		ob := new(vocab.Object)
		ob.Type = vocab.NoteType
		ob.Content = nl(Markdown(message))
		ob.Source = vocab.Source{
			MediaType: "text/markdown",
			Content:   nl(message),
		}
		for _, kw := range keywords {
			ob.Tag = append(ob.Tag, newActivityPubTag(kw, actor.ID))
		}
		ob.To = vocab.ItemCollection{vocab.PublicNS}
		ob.CC = vocab.ItemCollection{vocab.Followers.Of(actor)}

		create := wrapObjectInCreate(*actor, ob)
		if _, _, err := ap.ToOutbox(context.Background(), create); err != nil {
			return err
		}
		return refreshToken(cl, oauth)
	}
}

// refreshToken persists the OAuth2 token when the transport refreshed it
// behind our back.
func refreshToken(cl *APClient, oauth *http.Client) error {
	tr, ok := oauth.Transport.(*oauth2.Transport)
	if !ok {
		return nil
	}
	tok, err := tr.Source.Token()
	if err != nil {
		errFn("Unable to refresh OAuth2 token: %s", err)
		return nil
	}
	if tok.AccessToken == cl.Tok.AccessToken {
		return nil
	}
	cl.Tok = tok
	if err := SaveCredentials(cl, filepath.Join(cl.Type, InstanceName(cl.ID.String()))); err != nil {
		errFn("Unable to save new credentials for %s: %s", cl.ID, err)
	} else {
		infFn("Refreshed OAuth2 credentials %s", cl.ID)
	}
	return nil
}
