package settings

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MinPromptCount = 1
	MaxPromptCount = 50
)

// Settings is the per-client generation configuration. Stored copies are
// merged over Defaults field by field.
type Settings struct {
	DarkMode           bool   `json:"darkMode"`
	PromptCount        int    `json:"promptCount"`
	IncludeAspectRatio bool   `json:"includeAspectRatio"`
	AspectRatio        string `json:"aspectRatio"`
	IncludeVersion     bool   `json:"includeVersion"`
	Version            string `json:"version"`
	IncludeStylize     bool   `json:"includeStylize"`
	Stylize            string `json:"stylize"`
	CustomSuffix       string `json:"customSuffix"`
	UseJapaneseModel   bool   `json:"useJapaneseModel"`
	UseNaturalLanguage bool   `json:"useNaturalLanguage"`
}

func Defaults() Settings {
	return Settings{
		PromptCount:        5,
		IncludeAspectRatio: true,
		AspectRatio:        "--ar 4:5",
		IncludeVersion:     true,
		Version:            "--v 7.0",
		IncludeStylize:     true,
		Stylize:            "s100",
		UseNaturalLanguage: true,
	}
}

// Merge decodes stored over Defaults. Keys missing from stored keep their
// default value; an empty payload yields Defaults.
func Merge(stored []byte) (Settings, error) {
	s := Defaults()
	if len(strings.TrimSpace(string(stored))) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(stored, &s); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	return s.Normalize(), nil
}

// Normalize clamps the prompt count and restores empty token values.
func (s Settings) Normalize() Settings {
	def := Defaults()
	if s.PromptCount < MinPromptCount {
		s.PromptCount = MinPromptCount
	}
	if s.PromptCount > MaxPromptCount {
		s.PromptCount = MaxPromptCount
	}
	s.AspectRatio = strings.TrimSpace(s.AspectRatio)
	if s.AspectRatio == "" {
		s.AspectRatio = def.AspectRatio
	}
	s.Version = strings.TrimSpace(s.Version)
	if s.Version == "" {
		s.Version = def.Version
	}
	s.Stylize = strings.TrimSpace(s.Stylize)
	if s.Stylize == "" {
		s.Stylize = def.Stylize
	}
	s.CustomSuffix = strings.TrimSpace(s.CustomSuffix)
	return s
}

// StylizeToken renders the stylize value as the trailing parameter.
func (s Settings) StylizeToken() string {
	return "--stylize " + s.Stylize
}
