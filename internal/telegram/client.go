package telegram

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	maxMessageBytes = 4096
	maxCaptionBytes = 1024

	// FileRefPrefix marks a result image that lives on Telegram's servers.
	FileRefPrefix = "tg-file:"
)

type Options struct {
	Token      string
	HTTPClient *http.Client
	Logger     zerolog.Logger
	Debug      bool
}

type Client struct {
	bot    *tgbotapi.BotAPI
	logger zerolog.Logger
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if opts.HTTPClient == nil {
		return nil, errors.New("http client is nil")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, tgbotapi.APIEndpoint, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	bot.Debug = opts.Debug

	return &Client{bot: bot, logger: opts.Logger}, nil
}

func (c *Client) Username() string {
	return c.bot.Self.UserName
}

type (
	Update        = tgbotapi.Update
	Message       = tgbotapi.Message
	CallbackQuery = tgbotapi.CallbackQuery
	Keyboard      = tgbotapi.InlineKeyboardMarkup
)

type UpdatesOptions struct {
	Timeout time.Duration
}

func (c *Client) Updates(opts UpdatesOptions) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	if opts.Timeout > 0 {
		u.Timeout = int(opts.Timeout.Seconds())
	} else {
		u.Timeout = 30
	}
	return c.bot.GetUpdatesChan(u)
}

func (c *Client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

func (c *Client) SendTyping(chatID int64) {
	_, _ = c.bot.Send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

// SendText splits long texts on rune boundaries to stay under the message limit.
func (c *Client) SendText(chatID int64, text string) error {
	for _, p := range splitByBytes(text, maxMessageBytes) {
		if _, err := c.bot.Send(tgbotapi.NewMessage(chatID, p)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) SendTextWithKeyboard(chatID int64, text string, kb Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, truncateByBytes(text, maxMessageBytes))
	msg.ReplyMarkup = kb
	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (c *Client) EditTextWithKeyboard(chatID int64, messageID int, text string, kb Keyboard) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, truncateByBytes(text, maxMessageBytes), kb)
	_, err := c.bot.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (c *Client) AnswerCallback(callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := c.bot.Request(cb)
	return err
}

// SendPhoto sends a result image. ref is either a data URL produced by the
// renderer or a FileRefPrefix reference to a photo Telegram already stores.
func (c *Client) SendPhoto(chatID int64, ref string, caption string) error {
	var file tgbotapi.RequestFileData
	if id, ok := strings.CutPrefix(ref, FileRefPrefix); ok {
		file = tgbotapi.FileID(id)
	} else {
		data, err := decodeDataURL(ref)
		if err != nil {
			return err
		}
		file = data
	}

	photo := tgbotapi.NewPhoto(chatID, file)
	if caption != "" {
		photo.Caption = truncateByBytes(caption, maxCaptionBytes)
	}
	_, err := c.bot.Send(photo)
	if err != nil {
		c.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send photo failed")
	}
	return err
}

// FileRef turns the largest size of an incoming photo into a stored reference.
func FileRef(photos []tgbotapi.PhotoSize) string {
	if len(photos) == 0 {
		return ""
	}
	return FileRefPrefix + photos[len(photos)-1].FileID
}

func decodeDataURL(value string) (tgbotapi.FileBytes, error) {
	mimeType, base64Data, err := parseDataURL(value)
	if err != nil {
		return tgbotapi.FileBytes{}, err
	}
	raw, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("decode base64: %w", err)
	}

	name := "image.jpg"
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		name = "image" + exts[0]
	}
	return tgbotapi.FileBytes{Name: name, Bytes: raw}, nil
}

func parseDataURL(value string) (mimeType string, base64Data string, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", errors.New("empty data url")
	}

	const prefix = "data:"
	if !strings.HasPrefix(value, prefix) {
		return "image/jpeg", value, nil
	}

	meta, data, ok := strings.Cut(value, ",")
	if !ok {
		return "", "", errors.New("invalid data url")
	}

	mimeType, _, _ = strings.Cut(strings.TrimPrefix(meta, prefix), ";")
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return mimeType, data, nil
}

func splitByBytes(text string, maxBytes int) []string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return []string{text}
	}

	var out []string
	var buf strings.Builder
	buf.Grow(maxBytes)

	for _, r := range text {
		n := utf8.RuneLen(r)
		if n < 0 {
			n = len(string(r))
		}
		if buf.Len() > 0 && buf.Len()+n > maxBytes {
			out = append(out, buf.String())
			buf.Reset()
		}
		buf.WriteRune(r)
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

func truncateByBytes(text string, maxBytes int) string {
	if len(text) <= maxBytes || maxBytes <= 0 {
		return text
	}

	var buf strings.Builder
	buf.Grow(maxBytes)
	for _, r := range text {
		n := utf8.RuneLen(r)
		if n < 0 {
			n = len(string(r))
		}
		if buf.Len()+n > maxBytes {
			break
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
