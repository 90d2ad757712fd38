package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-ap/errors"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramClient talks to the Telegram Bot API over plain HTTP.
type TelegramClient struct {
	Token   string
	ChatID  string
	APIBase string
	HTTP    *http.Client
}

// NewTelegram validates the transport credentials. Both the token and the
// chat id are required.
func NewTelegram(token, chatID string) (*TelegramClient, error) {
	if token == "" || chatID == "" {
		return nil, errors.Newf("missing Telegram bot token or chat ID")
	}
	return &TelegramClient{
		Token:   token,
		ChatID:  chatID,
		APIBase: telegramAPIBase,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type telegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send dispatches one message in Markdown mode with link previews disabled.
func (c *TelegramClient) Send(message string) error {
	payload, err := json.Marshal(telegramMessage{
		ChatID:                c.ChatID,
		Text:                  message,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", c.APIBase, c.Token)
	res, err := c.HTTP.Post(u, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("unable to send Telegram message: %w", err)
	}
	defer res.Body.Close()

	tr := telegramResponse{}
	if err := json.NewDecoder(res.Body).Decode(&tr); err != nil {
		return fmt.Errorf("unable to decode Telegram response: %w", err)
	}
	if !tr.OK {
		return errors.Newf("telegram API error: %s", tr.Description)
	}
	return nil
}

// ToTelegram wraps the client as a transport.
func ToTelegram(c *TelegramClient) PosterFn {
	if c == nil {
		return ToStdout
	}
	return func(message string) error {
		if err := c.Send(message); err != nil {
			return err
		}
		infFn("Telegram notification sent")
		return nil
	}
}
