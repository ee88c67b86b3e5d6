package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/render"
	"uniform-prompt-studio/internal/session"
	"uniform-prompt-studio/internal/store"
	"uniform-prompt-studio/internal/telegram"
)

const listLimit = 10

// Messenger is the subset of the Telegram client the bot talks through.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendPhoto(chatID int64, ref string, caption string) error
	SendTyping(chatID int64)
}

type Options struct {
	Telegram Messenger
	Catalog  catalog.Loaded
	Engine   *promptgen.Engine
	Store    *store.Store
	Sessions *session.Store
	// Renderer is optional; /render explains how to enable it when nil.
	Renderer render.Renderer
	Logger   zerolog.Logger
}

type Handler struct {
	tg       Messenger
	catalog  catalog.Loaded
	engine   *promptgen.Engine
	store    *store.Store
	sessions *session.Store
	renderer render.Renderer
	logger   zerolog.Logger
}

func New(opts Options) *Handler {
	engine := opts.Engine
	if engine == nil {
		engine = promptgen.New(promptgen.Config{Logger: opts.Logger})
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}
	return &Handler{
		tg:       opts.Telegram,
		catalog:  opts.Catalog,
		engine:   engine,
		store:    opts.Store,
		sessions: sessions,
		renderer: opts.Renderer,
		logger:   opts.Logger,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	var userID int64
	var username string
	if msg.From != nil {
		userID = msg.From.ID
		username = msg.From.UserName
	}

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, username, msg)
	}
	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, msg)
	}
	if strings.TrimSpace(msg.Text) != "" {
		return h.tg.SendText(chatID, "Send /generate to compose prompts or /help for all commands.")
	}
	return nil
}

func (h *Handler) library(chatID int64) *store.Library {
	return h.store.Library("tg:" + strconv.FormatInt(chatID, 10))
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, username string, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	lib := h.library(chatID)

	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText(h.catalog))
	case "generate", "gen":
		return h.generate(ctx, chatID, username, args)
	case "filter":
		return h.filter(chatID, username, args)
	case "settings":
		return h.openSettings(ctx, chatID, userID, username)
	case "history":
		list, err := lib.History(ctx)
		if err != nil {
			return h.fail(chatID, "history", err)
		}
		return h.tg.SendText(chatID, formatList("History", list, listLimit))
	case "favorites", "favs":
		list, err := lib.Favorites(ctx)
		if err != nil {
			return h.fail(chatID, "favorites", err)
		}
		return h.tg.SendText(chatID, formatList("Favorites", list, listLimit))
	case "fav":
		id, err := parsePromptID(args)
		if err != nil {
			return h.tg.SendText(chatID, "Usage: /fav <id>")
		}
		p, err := lib.ToggleFavorite(ctx, id)
		if err != nil {
			return h.promptError(chatID, id, err)
		}
		if p.IsFavorite {
			return h.tg.SendText(chatID, fmt.Sprintf("❤️ #%d added to favorites.", id))
		}
		return h.tg.SendText(chatID, fmt.Sprintf("#%d removed from favorites.", id))
	case "rate":
		id, rating, err := parseRate(args)
		if err != nil {
			return h.tg.SendText(chatID, err.Error())
		}
		p, err := lib.SetRating(ctx, id, rating)
		if err != nil {
			return h.promptError(chatID, id, err)
		}
		return h.tg.SendText(chatID, fmt.Sprintf("#%d rated %d/5.", p.ID, p.Rating))
	case "copyall":
		list, err := lib.History(ctx)
		if err != nil {
			return h.fail(chatID, "copyall", err)
		}
		if len(list) == 0 {
			return h.tg.SendText(chatID, "History is empty.")
		}
		return h.tg.SendText(chatID, promptgen.JoinFullText(list))
	case "render":
		return h.renderPrompt(ctx, chatID, args)
	case "clear":
		if err := lib.ClearAll(ctx); err != nil {
			return h.fail(chatID, "clear", err)
		}
		h.sessions.Reset(chatID)
		return h.tg.SendText(chatID, "✅ History, favorites, settings and filters cleared.")
	default:
		return h.tg.SendText(chatID, "Unknown command. Use /help.")
	}
}

func (h *Handler) generate(ctx context.Context, chatID int64, username, args string) error {
	lib := h.library(chatID)
	cur, err := lib.Settings(ctx)
	if err != nil {
		return h.fail(chatID, "generate", err)
	}
	count, uniformID, err := parseGenerate(args, cur.PromptCount)
	if err != nil {
		return h.tg.SendText(chatID, err.Error())
	}
	existing, err := lib.Existing(ctx)
	if err != nil {
		return h.fail(chatID, "generate", err)
	}

	h.tg.SendTyping(chatID)
	chat := h.sessions.Get(chatID, username)
	batch, err := h.engine.GenerateBatch(promptgen.Request{
		Catalog:   h.catalog.Catalog,
		Selection: chat.Selection,
		Settings:  cur,
		Options:   promptgen.DefaultOptions(),
		UniformID: uniformID,
	}, count, existing)
	switch {
	case errors.Is(err, promptgen.ErrUniformNotFound):
		return h.tg.SendText(chatID, fmt.Sprintf("❌ Unknown uniform %q. Known ids: %s", uniformID, knownIDs(h.catalog.Catalog)))
	case errors.Is(err, promptgen.ErrEmptyCatalog):
		return h.tg.SendText(chatID, "❌ The uniform catalog is empty.")
	case err != nil:
		return h.fail(chatID, "generate", err)
	}

	if _, err := lib.RecordBatch(ctx, batch.Prompts); err != nil {
		return h.fail(chatID, "generate", err)
	}

	for _, p := range batch.Prompts {
		if err := h.tg.SendText(chatID, formatPrompt(p)); err != nil {
			return err
		}
	}
	if batch.Exhausted > 0 {
		return h.tg.SendText(chatID, fmt.Sprintf("⚠️ %d prompt(s) repeat earlier ones. Loosen the filters for more variety.", batch.Exhausted))
	}
	return nil
}

func (h *Handler) filter(chatID int64, username, args string) error {
	if args == "" {
		return h.tg.SendText(chatID, describeSelection(h.sessions.Get(chatID, username).Selection)+"\n\n"+errBadFilter.Error())
	}
	intent, err := parseFilter(args)
	if err != nil {
		return h.tg.SendText(chatID, err.Error())
	}
	chat := h.sessions.Update(chatID, username, func(c *session.Chat) {
		c.Selection = intent.apply(c.Selection)
	})

	text := describeSelection(chat.Selection)
	if n := len(promptgen.Filter(h.catalog.Catalog.Uniforms, chat.Selection)); n == 0 {
		text += "\n\n⚠️ No uniform matches these filters; /generate will use the whole catalog."
	} else {
		text += fmt.Sprintf("\n\n%d uniform type(s) match.", n)
	}
	return h.tg.SendText(chatID, text)
}

func (h *Handler) renderPrompt(ctx context.Context, chatID int64, args string) error {
	if h.renderer == nil {
		return h.tg.SendText(chatID, "Rendering is disabled. Set GEMINI_API_KEY to enable it.")
	}
	id, err := parsePromptID(args)
	if err != nil {
		return h.tg.SendText(chatID, "Usage: /render <id>")
	}
	lib := h.library(chatID)
	p, err := lib.Find(ctx, id)
	if err != nil {
		return h.promptError(chatID, id, err)
	}

	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "🎨 Rendering, please wait...")

	images, err := h.renderer.GenerateImage(ctx, p.FullPrompt)
	if err == nil && len(images) == 0 {
		err = render.ErrNoImage
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("prompt_id", id).Msg("render failed")
		return h.tg.SendText(chatID, "❌ Rendering failed. Try again later.")
	}

	if _, err := lib.AttachResult(ctx, id, images[0], ""); err != nil {
		return h.promptError(chatID, id, err)
	}
	return h.tg.SendPhoto(chatID, images[0], fmt.Sprintf("✅ #%d", id))
}

// handlePhoto attaches a photo as a prompt's result when its caption names the prompt.
func (h *Handler) handlePhoto(ctx context.Context, chatID int64, msg *tgbotapi.Message) error {
	id, ok := captionPromptID(msg.Caption)
	if !ok {
		return h.tg.SendText(chatID, "To attach a result, send the photo with the prompt id as caption, e.g. #1712345678901.")
	}
	notes := ""
	if _, rest, found := strings.Cut(strings.TrimSpace(msg.Caption), " "); found {
		notes = strings.TrimSpace(rest)
	}
	if _, err := h.library(chatID).AttachResult(ctx, id, telegram.FileRef(msg.Photo), notes); err != nil {
		return h.promptError(chatID, id, err)
	}
	return h.tg.SendText(chatID, fmt.Sprintf("📷 Result attached to #%d.", id))
}

func (h *Handler) promptError(chatID, id int64, err error) error {
	switch {
	case errors.Is(err, store.ErrPromptNotFound):
		return h.tg.SendText(chatID, fmt.Sprintf("❌ Prompt #%d is not in your history or favorites.", id))
	case errors.Is(err, store.ErrInvalidRating):
		return h.tg.SendText(chatID, "❌ Rating must be between 0 and 5.")
	default:
		return h.fail(chatID, "prompt update", err)
	}
}

func (h *Handler) fail(chatID int64, op string, err error) error {
	h.logger.Error().Err(err).Int64("chat_id", chatID).Str("op", op).Msg("bot command failed")
	return h.tg.SendText(chatID, "❌ Something went wrong. Please try again.")
}

func knownIDs(c catalog.Catalog) string {
	ids := make([]string, 0, len(c.Uniforms))
	for _, u := range c.Uniforms {
		ids = append(ids, u.ID)
	}
	return strings.Join(ids, ", ")
}

func helpText(c catalog.Loaded) string {
	return fmt.Sprintf(`👔 Uniform prompt studio (%d uniform types, source: %s)

/generate [n] [uniform-id] - compose n prompts
/filter <field> <values> - narrow the catalog (uniform, industry, style, material, color, gender)
/filter clear - remove all filters
/settings - aspect ratio, version, stylize and language
/history - latest prompts
/favorites - saved prompts
/fav <id> - toggle favorite
/rate <id> <0-5> - rate a prompt
/copyall - every history prompt in one message
/render <id> - render a prompt to an image
/clear - wipe history, favorites and settings

Send a photo captioned with a prompt id to attach it as the result.`, len(c.Catalog.Uniforms), c.Source)
}
