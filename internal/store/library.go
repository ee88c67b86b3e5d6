package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/settings"
)

const (
	KeyFavorites = "mjug_favorites"
	KeySettings  = "mjug_settings"
	KeyHistory   = "mjug_history"

	DefaultHistoryLimit = 100
	MaxRating           = 5
)

var (
	ErrPromptNotFound = errors.New("prompt not found")
	ErrInvalidRating  = errors.New("rating must be between 0 and 5")
)

type Options struct {
	HistoryLimit int
	Logger       zerolog.Logger
}

// Store hands out one Library per client namespace.
type Store struct {
	kv           KV
	historyLimit int
	logger       zerolog.Logger

	mu   sync.Mutex
	libs map[string]*Library
}

func New(kv KV, opts Options) *Store {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Store{
		kv:           kv,
		historyLimit: limit,
		logger:       opts.Logger,
		libs:         make(map[string]*Library),
	}
}

// Library returns the cached library of ns, creating it on first use.
func (s *Store) Library(ns string) *Library {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lib, ok := s.libs[ns]; ok {
		return lib
	}
	lib := &Library{
		kv:     s.kv,
		ns:     ns,
		limit:  s.historyLimit,
		logger: s.logger.With().Str("namespace", ns).Logger(),
	}
	s.libs[ns] = lib
	return lib
}

func (s *Store) Close() error {
	return s.kv.Close()
}

// Library is one client's history, favorites and settings. Every method
// holds the library lock for its whole read-modify-write cycle.
type Library struct {
	mu     sync.Mutex
	kv     KV
	ns     string
	limit  int
	logger zerolog.Logger
}

func (l *Library) key(k string) string {
	if l.ns == "" {
		return k
	}
	return l.ns + ":" + k
}

func (l *Library) History(ctx context.Context) ([]promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadPrompts(ctx, KeyHistory)
}

func (l *Library) Favorites(ctx context.Context) ([]promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadPrompts(ctx, KeyFavorites)
}

// Existing returns history followed by favorites, the set new prompts are
// checked against for duplicates.
func (l *Library) Existing(ctx context.Context) ([]promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, err := l.loadPrompts(ctx, KeyHistory)
	if err != nil {
		return nil, err
	}
	favorites, err := l.loadPrompts(ctx, KeyFavorites)
	if err != nil {
		return nil, err
	}
	return append(history, favorites...), nil
}

func (l *Library) Settings(ctx context.Context) (settings.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, _, err := l.kv.Get(ctx, l.key(KeySettings))
	if err != nil {
		return settings.Defaults(), err
	}
	s, err := settings.Merge(raw)
	if err != nil {
		l.logger.Warn().Err(err).Msg("stored settings unreadable, using defaults")
	}
	return s, nil
}

func (l *Library) SaveSettings(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s = s.Normalize()
	if err := l.save(ctx, KeySettings, s); err != nil {
		return settings.Settings{}, err
	}
	return s, nil
}

// RecordBatch prepends prompts to the history, newest first, and trims it
// to the history limit.
func (l *Library) RecordBatch(ctx context.Context, prompts []promptgen.Prompt) ([]promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, err := l.loadPrompts(ctx, KeyHistory)
	if err != nil {
		return nil, err
	}
	next := make([]promptgen.Prompt, 0, len(prompts)+len(history))
	next = append(next, prompts...)
	next = append(next, history...)
	if len(next) > l.limit {
		next = next[:l.limit]
	}
	if err := l.save(ctx, KeyHistory, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Find looks the prompt up in history, then favorites.
func (l *Library) Find(ctx context.Context, id int64) (promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, favorites, err := l.loadBoth(ctx)
	if err != nil {
		return promptgen.Prompt{}, err
	}
	if p, ok := findPrompt(history, id); ok {
		return p, nil
	}
	if p, ok := findPrompt(favorites, id); ok {
		return p, nil
	}
	return promptgen.Prompt{}, fmt.Errorf("%w: %d", ErrPromptNotFound, id)
}

// ToggleFavorite flips the favorite flag, adding the prompt to or removing
// it from the favorites list.
func (l *Library) ToggleFavorite(ctx context.Context, id int64) (promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, favorites, err := l.loadBoth(ctx)
	if err != nil {
		return promptgen.Prompt{}, err
	}

	current, ok := findPrompt(history, id)
	if !ok {
		current, ok = findPrompt(favorites, id)
	}
	if !ok {
		return promptgen.Prompt{}, fmt.Errorf("%w: %d", ErrPromptNotFound, id)
	}

	current.IsFavorite = !current.IsFavorite
	history = updatePrompt(history, id, func(p *promptgen.Prompt) { p.IsFavorite = current.IsFavorite })
	if current.IsFavorite {
		if _, exists := findPrompt(favorites, id); !exists {
			favorites = append([]promptgen.Prompt{current}, favorites...)
		}
	} else {
		favorites = removePrompt(favorites, id)
	}

	if err := l.saveBoth(ctx, history, favorites); err != nil {
		return promptgen.Prompt{}, err
	}
	return current, nil
}

func (l *Library) SetRating(ctx context.Context, id int64, rating int) (promptgen.Prompt, error) {
	if rating < 0 || rating > MaxRating {
		return promptgen.Prompt{}, fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	return l.mutate(ctx, id, func(p *promptgen.Prompt) { p.Rating = rating })
}

// AttachResult records the generated image and notes for a prompt.
func (l *Library) AttachResult(ctx context.Context, id int64, imagePath, notes string) (promptgen.Prompt, error) {
	return l.mutate(ctx, id, func(p *promptgen.Prompt) {
		if imagePath != "" {
			p.ResultImagePath = imagePath
		}
		if notes != "" {
			p.ResultNotes = notes
		}
	})
}

// ClearAll removes history, favorites and settings.
func (l *Library) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, k := range []string{KeyHistory, KeyFavorites, KeySettings} {
		if err := l.kv.Delete(ctx, l.key(k)); err != nil {
			return err
		}
	}
	l.logger.Info().Msg("library cleared")
	return nil
}

// mutate applies fn to the prompt in history and favorites alike.
func (l *Library) mutate(ctx context.Context, id int64, fn func(p *promptgen.Prompt)) (promptgen.Prompt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	history, favorites, err := l.loadBoth(ctx)
	if err != nil {
		return promptgen.Prompt{}, err
	}

	_, inHistory := findPrompt(history, id)
	_, inFavorites := findPrompt(favorites, id)
	if !inHistory && !inFavorites {
		return promptgen.Prompt{}, fmt.Errorf("%w: %d", ErrPromptNotFound, id)
	}

	history = updatePrompt(history, id, fn)
	favorites = updatePrompt(favorites, id, fn)
	if err := l.saveBoth(ctx, history, favorites); err != nil {
		return promptgen.Prompt{}, err
	}

	if p, ok := findPrompt(history, id); ok {
		return p, nil
	}
	p, _ := findPrompt(favorites, id)
	return p, nil
}

func (l *Library) loadBoth(ctx context.Context) ([]promptgen.Prompt, []promptgen.Prompt, error) {
	history, err := l.loadPrompts(ctx, KeyHistory)
	if err != nil {
		return nil, nil, err
	}
	favorites, err := l.loadPrompts(ctx, KeyFavorites)
	if err != nil {
		return nil, nil, err
	}
	return history, favorites, nil
}

func (l *Library) saveBoth(ctx context.Context, history, favorites []promptgen.Prompt) error {
	if err := l.save(ctx, KeyHistory, history); err != nil {
		return err
	}
	return l.save(ctx, KeyFavorites, favorites)
}

// loadPrompts treats a missing or unreadable list as empty.
func (l *Library) loadPrompts(ctx context.Context, key string) ([]promptgen.Prompt, error) {
	raw, found, err := l.kv.Get(ctx, l.key(key))
	if err != nil {
		return nil, err
	}
	out := []promptgen.Prompt{}
	if !found || len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("stored prompts unreadable, starting empty")
		return []promptgen.Prompt{}, nil
	}
	return out, nil
}

func (l *Library) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return l.kv.Set(ctx, l.key(key), raw)
}

func findPrompt(list []promptgen.Prompt, id int64) (promptgen.Prompt, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return promptgen.Prompt{}, false
}

func updatePrompt(list []promptgen.Prompt, id int64, fn func(p *promptgen.Prompt)) []promptgen.Prompt {
	for i := range list {
		if list[i].ID == id {
			fn(&list[i])
		}
	}
	return list
}

func removePrompt(list []promptgen.Prompt, id int64) []promptgen.Prompt {
	out := list[:0]
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
