package promptgen

import (
	"strings"
	"time"
)

// Prompt is one composed prompt. Rating, IsFavorite and the result fields
// are the only values that change after creation.
type Prompt struct {
	ID              int64     `json:"id"`
	FullPrompt      string    `json:"fullPrompt"`
	CreatedAt       time.Time `json:"createdDate"`
	Rating          int       `json:"rating"`
	IsFavorite      bool      `json:"isFavorite"`
	ResultNotes     string    `json:"resultNotes,omitempty"`
	ResultImagePath string    `json:"resultImagePath,omitempty"`

	UniformID     string   `json:"uniformId,omitempty"`
	UniformName   string   `json:"uniformName,omitempty"`
	Material      string   `json:"material,omitempty"`
	Element       string   `json:"element,omitempty"`
	Color         string   `json:"color,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	StyleKeywords []string `json:"styleKeywords,omitempty"`
	PhotoStyle    string   `json:"photoStyle,omitempty"`
	Lighting      string   `json:"lighting,omitempty"`
	Quality       string   `json:"quality,omitempty"`
	Resolution    string   `json:"resolution,omitempty"`
	Parameters    string   `json:"parameters,omitempty"`
}

// JoinFullText concatenates the prompt texts separated by blank lines.
func JoinFullText(list []Prompt) string {
	texts := make([]string, 0, len(list))
	for _, p := range list {
		texts = append(texts, p.FullPrompt)
	}
	return strings.Join(texts, "\n\n")
}
