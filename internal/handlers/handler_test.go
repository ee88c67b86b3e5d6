package handlers

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/store"
	"uniform-prompt-studio/internal/telegram"
)

type sentPhoto struct {
	ref, caption string
}

type fakeMessenger struct {
	texts     []string
	keyboards []string
	edits     []string
	answers   []string
	photos    []sentPhoto
}

func (f *fakeMessenger) SendText(_ int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendTextWithKeyboard(_ int64, text string, _ telegram.Keyboard) (int, error) {
	f.keyboards = append(f.keyboards, text)
	return 100 + len(f.keyboards), nil
}

func (f *fakeMessenger) EditTextWithKeyboard(_ int64, _ int, text string, _ telegram.Keyboard) error {
	f.edits = append(f.edits, text)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_, text string, _ bool) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) SendPhoto(_ int64, ref, caption string) error {
	f.photos = append(f.photos, sentPhoto{ref, caption})
	return nil
}

func (f *fakeMessenger) SendTyping(int64) {}

func (f *fakeMessenger) last() string {
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

type fakeRenderer struct{}

func (fakeRenderer) GenerateImage(context.Context, string) ([]string, error) {
	return []string{"data:image/png;base64,AAAA"}, nil
}

const (
	testChat = int64(-100)
	testUser = int64(42)
)

func newTestHandler(t *testing.T) (*Handler, *fakeMessenger) {
	t.Helper()
	tg := &fakeMessenger{}
	h := New(Options{
		Telegram: tg,
		Catalog:  catalog.Loaded{Catalog: catalog.Builtin(), Source: catalog.SourceBuiltin},
		Engine:   promptgen.New(promptgen.Config{Rand: rand.New(rand.NewSource(3))}),
		Store:    store.New(store.NewMemory(), store.Options{}),
	})
	return h, tg
}

func command(text string) telegram.Update {
	n := strings.IndexByte(text, ' ')
	if n < 0 {
		n = len(text)
	}
	return telegram.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: testChat},
		From:     &tgbotapi.User{ID: testUser, UserName: "ann"},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}},
	}}
}

func send(t *testing.T, h *Handler, text string) {
	t.Helper()
	if err := h.HandleUpdate(context.Background(), command(text)); err != nil {
		t.Fatalf("%s: %v", text, err)
	}
}

func history(t *testing.T, h *Handler) []promptgen.Prompt {
	t.Helper()
	list, err := h.library(testChat).History(context.Background())
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	return list
}

func TestGenerateCommand(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/generate 2 hospital")

	list := history(t, h)
	if len(list) != 2 {
		t.Fatalf("history = %d, want 2", len(list))
	}
	for _, p := range list {
		if p.UniformID != "hospital" {
			t.Fatalf("UniformID = %q, want %q", p.UniformID, "hospital")
		}
	}
	if len(tg.texts) < 2 || !strings.HasPrefix(tg.texts[0], "#") {
		t.Fatalf("texts = %q", tg.texts)
	}
}

func TestGenerateUnknownUniform(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/generate astronaut")
	if !strings.Contains(tg.last(), "Unknown uniform") || !strings.Contains(tg.last(), "hospital") {
		t.Fatalf("reply = %q", tg.last())
	}
	if len(history(t, h)) != 0 {
		t.Fatalf("history should stay empty")
	}
}

func TestFilterNarrowsGeneration(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/filter uniform restaurant")
	if !strings.Contains(tg.last(), "1 uniform type(s) match") {
		t.Fatalf("reply = %q", tg.last())
	}

	send(t, h, "/generate 3")
	for _, p := range history(t, h) {
		if p.UniformID != "restaurant" {
			t.Fatalf("UniformID = %q, want restaurant", p.UniformID)
		}
	}

	send(t, h, "/filter clear")
	if !strings.Contains(tg.last(), "none") {
		t.Fatalf("reply after clear = %q", tg.last())
	}
}

func TestFavoriteRateAndCopyAll(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/generate 2")
	list := history(t, h)
	id := strconv.FormatInt(list[0].ID, 10)

	send(t, h, "/fav "+id)
	if !strings.Contains(tg.last(), "added to favorites") {
		t.Fatalf("fav reply = %q", tg.last())
	}
	send(t, h, "/rate "+id+" 5")
	if !strings.Contains(tg.last(), "rated 5/5") {
		t.Fatalf("rate reply = %q", tg.last())
	}
	send(t, h, "/rate "+id+" 7")
	if !strings.Contains(tg.last(), "between 0 and 5") {
		t.Fatalf("invalid rate reply = %q", tg.last())
	}
	send(t, h, "/fav 1")
	if !strings.Contains(tg.last(), "not in your history") {
		t.Fatalf("unknown fav reply = %q", tg.last())
	}

	send(t, h, "/copyall")
	if want := promptgen.JoinFullText(history(t, h)); tg.last() != want {
		t.Fatalf("copyall = %q, want %q", tg.last(), want)
	}
}

func TestRenderCommand(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/render 1")
	if !strings.Contains(tg.last(), "GEMINI_API_KEY") {
		t.Fatalf("reply without renderer = %q", tg.last())
	}

	h.renderer = fakeRenderer{}
	send(t, h, "/generate 1")
	p := history(t, h)[0]
	send(t, h, "/render #"+strconv.FormatInt(p.ID, 10))

	if len(tg.photos) != 1 || tg.photos[0].ref != "data:image/png;base64,AAAA" {
		t.Fatalf("photos = %+v", tg.photos)
	}
	if got := history(t, h)[0].ResultImagePath; got != "data:image/png;base64,AAAA" {
		t.Fatalf("ResultImagePath = %q", got)
	}
}

func TestPhotoCaptionAttachesResult(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/generate 1")
	p := history(t, h)[0]

	update := telegram.Update{Message: &tgbotapi.Message{
		Chat:    &tgbotapi.Chat{ID: testChat},
		From:    &tgbotapi.User{ID: testUser},
		Caption: "#" + strconv.FormatInt(p.ID, 10) + " great drape",
		Photo:   []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}},
	}}
	if err := h.HandleUpdate(context.Background(), update); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}

	got := history(t, h)[0]
	if got.ResultImagePath != telegram.FileRefPrefix+"big" || got.ResultNotes != "great drape" {
		t.Fatalf("result = %q %q", got.ResultImagePath, got.ResultNotes)
	}
	if !strings.Contains(tg.last(), "Result attached") {
		t.Fatalf("reply = %q", tg.last())
	}
}

func TestSettingsKeyboardFlow(t *testing.T) {
	h, tg := newTestHandler(t)
	send(t, h, "/settings")
	if len(tg.keyboards) != 1 || !strings.Contains(tg.keyboards[0], "Prompts per batch: 5") {
		t.Fatalf("keyboards = %q", tg.keyboards)
	}
	if got := h.sessions.Get(testChat, "").SettingsMessageID; got != 101 {
		t.Fatalf("SettingsMessageID = %d, want 101", got)
	}

	press := func(from int64, data string) {
		t.Helper()
		q := &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: from},
			Message: &tgbotapi.Message{MessageID: 101, Chat: &tgbotapi.Chat{ID: testChat}},
			Data:    data,
		}
		if err := h.HandleUpdate(context.Background(), telegram.Update{CallbackQuery: q}); err != nil {
			t.Fatalf("callback %s: %v", data, err)
		}
	}

	press(testUser, cb(testUser, "count", "+"))
	press(testUser, cb(testUser, "toggle", "s"))
	press(7, cb(testUser, "toggle", "v"))

	cur, err := h.library(testChat).Settings(context.Background())
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if cur.PromptCount != 6 || cur.IncludeStylize || !cur.IncludeVersion {
		t.Fatalf("settings = %+v", cur)
	}
	if len(tg.edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(tg.edits))
	}
	if tg.answers[len(tg.answers)-1] != "This menu belongs to someone else." {
		t.Fatalf("foreign press answer = %q", tg.answers[len(tg.answers)-1])
	}
}

func TestClearCommand(t *testing.T) {
	h, _ := newTestHandler(t)
	send(t, h, "/filter color navy")
	send(t, h, "/generate 1")
	send(t, h, "/clear")

	if len(history(t, h)) != 0 {
		t.Fatalf("history not cleared")
	}
	if !h.sessions.Get(testChat, "").Selection.Empty() {
		t.Fatalf("filters not cleared")
	}
}
