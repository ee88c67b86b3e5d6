package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/settings"
)

var (
	errBadCount    = fmt.Errorf("count must be a number between %d and %d", settings.MinPromptCount, settings.MaxPromptCount)
	errBadID       = errors.New("prompt id must be a number")
	errBadGenerate = errors.New("usage: /generate [count] [uniform-id]")
	errBadFilter   = errors.New("usage: /filter <uniform|industry|style|material|color|gender> <value, value...> or /filter clear")
	errBadRate     = errors.New("usage: /rate <id> <0-5>")
)

// parseGenerate reads "/generate [n] [uniform-id]" in either order.
func parseGenerate(args string, fallback int) (count int, uniformID string, err error) {
	count = fallback
	for _, f := range strings.Fields(args) {
		n, convErr := strconv.Atoi(f)
		if convErr != nil {
			if uniformID != "" {
				return 0, "", errBadGenerate
			}
			uniformID = f
			continue
		}
		if n < settings.MinPromptCount || n > settings.MaxPromptCount {
			return 0, "", errBadCount
		}
		count = n
	}
	return count, uniformID, nil
}

type filterIntent struct {
	clear  bool
	field  string
	values []string
}

var filterFields = map[string]string{
	"uniform":    "uniform",
	"uniforms":   "uniform",
	"type":       "uniform",
	"industry":   "industry",
	"industries": "industry",
	"style":      "style",
	"styles":     "style",
	"material":   "material",
	"materials":  "material",
	"color":      "color",
	"colors":     "color",
	"colour":     "color",
	"gender":     "gender",
	"genders":    "gender",
}

// parseFilter reads "/filter <field> a, b" and "/filter clear". A field
// without values clears that field.
func parseFilter(args string) (filterIntent, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return filterIntent{}, errBadFilter
	}
	head, rest, _ := strings.Cut(args, " ")
	head = strings.ToLower(head)
	if head == "clear" || head == "reset" {
		return filterIntent{clear: true}, nil
	}
	field, ok := filterFields[head]
	if !ok {
		return filterIntent{}, errBadFilter
	}

	var values []string
	for _, v := range strings.Split(rest, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return filterIntent{field: field, values: values}, nil
}

func (f filterIntent) apply(sel promptgen.Selection) promptgen.Selection {
	if f.clear {
		return promptgen.Selection{}
	}
	switch f.field {
	case "uniform":
		sel.UniformIDs = f.values
	case "industry":
		sel.Industries = f.values
	case "style":
		sel.Styles = f.values
	case "material":
		sel.Materials = f.values
	case "color":
		sel.Colors = f.values
	case "gender":
		sel.Genders = f.values
	}
	return sel.Normalize()
}

func parsePromptID(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

func parseRate(args string) (int64, int, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return 0, 0, errBadRate
	}
	id, err := parsePromptID(fields[0])
	if err != nil {
		return 0, 0, errBadRate
	}
	rating, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errBadRate
	}
	return id, rating, nil
}

// captionPromptID reports whether a photo caption names a prompt, e.g. "#1712345678901".
func captionPromptID(caption string) (int64, bool) {
	first, _, _ := strings.Cut(strings.TrimSpace(caption), " ")
	id, err := parsePromptID(first)
	return id, err == nil
}

func formatPrompt(p promptgen.Prompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", p.ID)
	if p.UniformName != "" {
		b.WriteString(" · " + p.UniformName)
	}
	if p.IsFavorite {
		b.WriteString(" ❤️")
	}
	if p.Rating > 0 {
		b.WriteString(" " + strings.Repeat("⭐", p.Rating))
	}
	if p.ResultImagePath != "" {
		b.WriteString(" 📷")
	}
	b.WriteString("\n")
	b.WriteString(p.FullPrompt)
	return b.String()
}

func formatList(title string, list []promptgen.Prompt, limit int) string {
	if len(list) == 0 {
		return title + ": empty"
	}
	shown := list
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, 0, len(shown)+1)
	parts = append(parts, fmt.Sprintf("%s (%d of %d):", title, len(shown), len(list)))
	for _, p := range shown {
		parts = append(parts, formatPrompt(p))
	}
	return strings.Join(parts, "\n\n")
}

func describeSelection(sel promptgen.Selection) string {
	var lines []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			lines = append(lines, name+": "+strings.Join(values, ", "))
		}
	}
	add("uniform", sel.UniformIDs)
	add("industry", sel.Industries)
	add("style", sel.Styles)
	add("material", sel.Materials)
	add("color", sel.Colors)
	add("gender", sel.Genders)
	if len(lines) == 0 {
		return "Filters: none (whole catalog)"
	}
	return "Filters:\n" + strings.Join(lines, "\n")
}
