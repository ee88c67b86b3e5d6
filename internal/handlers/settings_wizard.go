package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"uniform-prompt-studio/internal/session"
	"uniform-prompt-studio/internal/settings"
)

const settingsCallbackPrefix = "st"

func (h *Handler) openSettings(ctx context.Context, chatID, userID int64, username string) error {
	cur, err := h.library(chatID).Settings(ctx)
	if err != nil {
		return err
	}
	msgID, err := h.tg.SendTextWithKeyboard(chatID, settingsText(cur), settingsKeyboard(userID, cur))
	if err != nil {
		return err
	}
	h.sessions.Update(chatID, username, func(c *session.Chat) { c.SettingsMessageID = msgID })
	return nil
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.From == nil {
		return nil
	}
	parts := strings.Split(strings.TrimSpace(q.Data), ":")
	if len(parts) < 3 || parts[0] != settingsCallbackPrefix {
		return nil
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil
	}
	if ownerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
		return nil
	}

	chatID := q.Message.Chat.ID
	lib := h.library(chatID)
	cur, err := lib.Settings(ctx)
	if err != nil {
		return err
	}

	next, changed := applySettingsAction(cur, parts[2], parts[3:])
	if !changed {
		_ = h.tg.AnswerCallback(q.ID, "Saved", false)
		return nil
	}
	saved, err := lib.SaveSettings(ctx, next)
	if err != nil {
		_ = h.tg.AnswerCallback(q.ID, "Could not save settings.", true)
		return err
	}
	_ = h.tg.AnswerCallback(q.ID, "OK", false)

	msgID := q.Message.MessageID
	h.sessions.Update(chatID, q.From.UserName, func(c *session.Chat) { c.SettingsMessageID = msgID })
	return h.tg.EditTextWithKeyboard(chatID, msgID, settingsText(saved), settingsKeyboard(ownerID, saved))
}

// applySettingsAction performs one keyboard action. It reports false for
// actions that leave the settings untouched.
func applySettingsAction(s settings.Settings, action string, args []string) (settings.Settings, bool) {
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch action {
	case "toggle":
		switch arg {
		case "ar":
			s.IncludeAspectRatio = !s.IncludeAspectRatio
		case "v":
			s.IncludeVersion = !s.IncludeVersion
		case "s":
			s.IncludeStylize = !s.IncludeStylize
		case "jp":
			s.UseJapaneseModel = !s.UseJapaneseModel
		case "nl":
			s.UseNaturalLanguage = !s.UseNaturalLanguage
		default:
			return s, false
		}
	case "next":
		switch arg {
		case "ar":
			s.AspectRatio = settings.Next(settings.AspectRatios, s.AspectRatio)
		case "v":
			s.Version = settings.Next(settings.Versions, s.Version)
		case "s":
			s.Stylize = settings.Next(settings.StylizeValues, s.Stylize)
		default:
			return s, false
		}
	case "count":
		switch arg {
		case "+":
			if s.PromptCount >= settings.MaxPromptCount {
				return s, false
			}
			s.PromptCount++
		case "-":
			if s.PromptCount <= settings.MinPromptCount {
				return s, false
			}
			s.PromptCount--
		default:
			return s, false
		}
	case "reset":
		return settings.Defaults(), true
	default:
		return s, false
	}
	return s, true
}

func settingsText(s settings.Settings) string {
	var b strings.Builder
	b.WriteString("⚙️ Generation settings\n\n")
	fmt.Fprintf(&b, "Prompts per batch: %d\n", s.PromptCount)
	fmt.Fprintf(&b, "Aspect ratio: %s (%s)\n", settings.Label(settings.AspectRatios, s.AspectRatio), onOff(s.IncludeAspectRatio))
	fmt.Fprintf(&b, "Version: %s (%s)\n", settings.Label(settings.Versions, s.Version), onOff(s.IncludeVersion))
	fmt.Fprintf(&b, "Stylize: %s (%s)\n", settings.Label(settings.StylizeValues, s.Stylize), onOff(s.IncludeStylize))
	fmt.Fprintf(&b, "Japanese model: %s\n", onOff(s.UseJapaneseModel))
	fmt.Fprintf(&b, "Natural language: %s\n", onOff(s.UseNaturalLanguage))
	if s.CustomSuffix != "" {
		b.WriteString("Suffix: " + truncateLine(s.CustomSuffix, 80) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func settingsKeyboard(ownerID int64, s settings.Settings) tgbotapi.InlineKeyboardMarkup {
	btn := tgbotapi.NewInlineKeyboardButtonData
	return tgbotapi.NewInlineKeyboardMarkup(
		[]tgbotapi.InlineKeyboardButton{
			btn(mark(s.IncludeAspectRatio)+" "+strings.TrimPrefix(s.AspectRatio, "--ar "), cb(ownerID, "toggle", "ar")),
			btn("AR ▶", cb(ownerID, "next", "ar")),
		},
		[]tgbotapi.InlineKeyboardButton{
			btn(mark(s.IncludeVersion)+" "+strings.TrimPrefix(s.Version, "--"), cb(ownerID, "toggle", "v")),
			btn("Version ▶", cb(ownerID, "next", "v")),
		},
		[]tgbotapi.InlineKeyboardButton{
			btn(mark(s.IncludeStylize)+" "+s.Stylize, cb(ownerID, "toggle", "s")),
			btn("Stylize ▶", cb(ownerID, "next", "s")),
		},
		[]tgbotapi.InlineKeyboardButton{
			btn("−", cb(ownerID, "count", "-")),
			btn(fmt.Sprintf("Count: %d", s.PromptCount), cb(ownerID, "done")),
			btn("+", cb(ownerID, "count", "+")),
		},
		[]tgbotapi.InlineKeyboardButton{
			btn("Japanese: "+onOff(s.UseJapaneseModel), cb(ownerID, "toggle", "jp")),
			btn("Natural: "+onOff(s.UseNaturalLanguage), cb(ownerID, "toggle", "nl")),
		},
		[]tgbotapi.InlineKeyboardButton{
			btn("Reset", cb(ownerID, "reset")),
			btn("Done", cb(ownerID, "done")),
		},
	)
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", settingsCallbackPrefix, ownerID, strings.Join(parts, ":"))
}

func mark(v bool) string {
	if v {
		return "✅"
	}
	return "⬜"
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
