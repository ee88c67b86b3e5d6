package catalog

import (
	"sort"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// Uniform is one describable subject of the catalog together with the
// attribute pools the composer samples from.
type Uniform struct {
	ID            string   `json:"uniform_id" yaml:"uniform_id"`
	Name          string   `json:"uniform_name" yaml:"uniform_name"`
	Description   string   `json:"description" yaml:"description"`
	KeyElements   []string `json:"key_elements" yaml:"key_elements"`
	Materials     []string `json:"materials" yaml:"materials"`
	ColorPalette  []string `json:"color_palette" yaml:"color_palette"`
	Industries    []string `json:"industries" yaml:"industries"`
	StyleKeywords []string `json:"style_keywords" yaml:"style_keywords"`
	Gender        *Gender  `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// GenderTag reports the record's own gender tag and whether one is set.
func (u Uniform) GenderTag() (Gender, bool) {
	if u.Gender == nil {
		return "", false
	}
	g := Gender(strings.ToLower(strings.TrimSpace(string(*u.Gender))))
	if g == "" {
		return "", false
	}
	return g, true
}

// PhraseBank holds subject-independent fragments keyed by category.
type PhraseBank struct {
	Quality       []string `json:"quality" yaml:"quality"`
	PhotoStyle    []string `json:"photo_style" yaml:"photo_style"`
	Lighting      []string `json:"lighting" yaml:"lighting"`
	Resolution    []string `json:"resolution" yaml:"resolution"`
	Parameters    []string `json:"parameters" yaml:"parameters"`
	GenderPhrases []string `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// Merge appends every category of other to a copy of b.
func (b PhraseBank) Merge(other PhraseBank) PhraseBank {
	return PhraseBank{
		Quality:       appendUniq(b.Quality, other.Quality),
		PhotoStyle:    appendUniq(b.PhotoStyle, other.PhotoStyle),
		Lighting:      appendUniq(b.Lighting, other.Lighting),
		Resolution:    appendUniq(b.Resolution, other.Resolution),
		Parameters:    appendUniq(b.Parameters, other.Parameters),
		GenderPhrases: appendUniq(b.GenderPhrases, other.GenderPhrases),
	}
}

// Categories returns the number of non-empty phrase categories.
func (b PhraseBank) Categories() int {
	n := 0
	for _, c := range [][]string{b.Quality, b.PhotoStyle, b.Lighting, b.Resolution, b.Parameters, b.GenderPhrases} {
		if len(c) > 0 {
			n++
		}
	}
	return n
}

// Catalog is the explicit, caller-owned set of records and phrase banks.
type Catalog struct {
	Uniforms []Uniform  `json:"uniform_types" yaml:"uniform_types"`
	Phrases  PhraseBank `json:"phrase_variations" yaml:"phrase_variations"`
}

func (c Catalog) Lookup(id string) (Uniform, bool) {
	for _, u := range c.Uniforms {
		if u.ID == id {
			return u, true
		}
	}
	return Uniform{}, false
}

func (c Catalog) Empty() bool {
	return len(c.Uniforms) == 0
}

// Facets lists the distinct values a filter UI can offer.
type Facets struct {
	Uniforms   []NamedOption `json:"uniforms"`
	Industries []string      `json:"industries"`
	Styles     []string      `json:"styles"`
	Materials  []string      `json:"materials"`
	Colors     []string      `json:"colors"`
	Genders    []string      `json:"genders"`
}

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (c Catalog) Facets() Facets {
	industries := map[string]struct{}{}
	styles := map[string]struct{}{}
	materials := map[string]struct{}{}
	colors := map[string]struct{}{}
	genders := map[string]struct{}{}

	out := Facets{Uniforms: make([]NamedOption, 0, len(c.Uniforms))}
	for _, u := range c.Uniforms {
		out.Uniforms = append(out.Uniforms, NamedOption{Key: u.ID, Name: u.Name})
		addAll(industries, u.Industries)
		addAll(styles, u.StyleKeywords)
		addAll(materials, u.Materials)
		addAll(colors, u.ColorPalette)
		if g, ok := u.GenderTag(); ok {
			genders[string(g)] = struct{}{}
		}
	}

	out.Industries = sortedKeys(industries)
	out.Styles = sortedKeys(styles)
	out.Materials = sortedKeys(materials)
	out.Colors = sortedKeys(colors)
	out.Genders = sortedKeys(genders)
	return out
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func appendUniq(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
