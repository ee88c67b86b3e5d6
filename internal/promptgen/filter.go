package promptgen

import (
	"strings"

	"golang.org/x/text/cases"

	"uniform-prompt-studio/internal/catalog"
)

// Selection narrows the catalog. An empty field places no constraint.
type Selection struct {
	UniformIDs []string `json:"uniformTypes"`
	Industries []string `json:"industries"`
	Styles     []string `json:"styles"`
	Materials  []string `json:"materials"`
	Colors     []string `json:"colors"`
	Genders    []string `json:"genders"`
}

// Normalize trims every value, drops blanks and lowercases genders.
func (s Selection) Normalize() Selection {
	genders := cleanValues(s.Genders)
	for i, g := range genders {
		genders[i] = strings.ToLower(g)
	}
	return Selection{
		UniformIDs: cleanValues(s.UniformIDs),
		Industries: cleanValues(s.Industries),
		Styles:     cleanValues(s.Styles),
		Materials:  cleanValues(s.Materials),
		Colors:     cleanValues(s.Colors),
		Genders:    genders,
	}
}

func (s Selection) Empty() bool {
	return len(s.UniformIDs) == 0 && len(s.Industries) == 0 && len(s.Styles) == 0 &&
		len(s.Materials) == 0 && len(s.Colors) == 0 && len(s.Genders) == 0
}

// Filter returns the records matching every non-empty field of sel, in
// catalog order. Industries, styles, materials and colors match when a
// selected value is a case-insensitive substring of a record value; ids
// and genders need exact membership. Records without a gender tag pass the
// gender check.
func Filter(records []catalog.Uniform, sel Selection) []catalog.Uniform {
	if sel.Empty() {
		return records
	}

	// Caser keeps state and is not safe to share across goroutines.
	fold := cases.Fold()
	foldAll := func(values []string) []string {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = fold.String(v)
		}
		return out
	}
	industries := foldAll(sel.Industries)
	styles := foldAll(sel.Styles)
	materials := foldAll(sel.Materials)
	colors := foldAll(sel.Colors)

	containsAny := func(candidates, wanted []string) bool {
		if len(wanted) == 0 {
			return true
		}
		for _, c := range candidates {
			fc := fold.String(c)
			for _, w := range wanted {
				if strings.Contains(fc, w) {
					return true
				}
			}
		}
		return false
	}

	out := make([]catalog.Uniform, 0, len(records))
	for _, rec := range records {
		if len(sel.UniformIDs) > 0 && !member(sel.UniformIDs, rec.ID) {
			continue
		}
		if !containsAny(rec.Industries, industries) ||
			!containsAny(rec.StyleKeywords, styles) ||
			!containsAny(rec.Materials, materials) ||
			!containsAny(rec.ColorPalette, colors) {
			continue
		}
		if len(sel.Genders) > 0 {
			if g, ok := rec.GenderTag(); ok && !member(sel.Genders, string(g)) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

func member(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func cleanValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
