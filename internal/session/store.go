package session

import (
	"sync"
	"time"

	"uniform-prompt-studio/internal/promptgen"
)

// Chat is the bot state kept between messages of one chat.
type Chat struct {
	ChatID            int64
	Username          string
	Selection         promptgen.Selection
	SettingsMessageID int
	LastActivity      time.Time
}

type Options struct {
	// IdleTTL drops chats untouched for longer than this on Sweep.
	IdleTTL time.Duration
}

type Store struct {
	mu      sync.Mutex
	chats   map[int64]*Chat
	idleTTL time.Duration
	now     func() time.Time
}

func NewStore(opts Options) *Store {
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		chats:   make(map[int64]*Chat),
		idleTTL: ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the chat state, creating it when absent.
func (s *Store) Get(chatID int64, username string) Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreateLocked(chatID, username)
	c.LastActivity = s.now()
	return clone(*c)
}

// Update applies fn under the store lock and returns the resulting copy.
func (s *Store) Update(chatID int64, username string, fn func(c *Chat)) Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.getOrCreateLocked(chatID, username)
	c.LastActivity = s.now()
	fn(c)
	c.ChatID = chatID
	return clone(*c)
}

// Reset clears filters but keeps the keyboard message.
func (s *Store) Reset(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.chats[chatID]; ok {
		c.Selection = promptgen.Selection{}
		c.LastActivity = s.now()
	}
}

// Sweep forgets idle chats and reports how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.idleTTL)
	dropped := 0
	for id, c := range s.chats {
		if c.LastActivity.Before(cutoff) {
			delete(s.chats, id)
			dropped++
		}
	}
	return dropped
}

func (s *Store) getOrCreateLocked(chatID int64, username string) *Chat {
	if c, ok := s.chats[chatID]; ok {
		if c.Username == "" && username != "" {
			c.Username = username
		}
		return c
	}

	c := &Chat{
		ChatID:       chatID,
		Username:     username,
		LastActivity: s.now(),
	}
	s.chats[chatID] = c
	return c
}

func clone(c Chat) Chat {
	sel := c.Selection
	c.Selection = promptgen.Selection{
		UniformIDs: append([]string(nil), sel.UniformIDs...),
		Industries: append([]string(nil), sel.Industries...),
		Styles:     append([]string(nil), sel.Styles...),
		Materials:  append([]string(nil), sel.Materials...),
		Colors:     append([]string(nil), sel.Colors...),
		Genders:    append([]string(nil), sel.Genders...),
	}
	return c
}
