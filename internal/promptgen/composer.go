package promptgen

import (
	"regexp"
	"strings"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/settings"
)

const (
	fallbackPhotoStyle = "professional photograph"
	fallbackLighting   = "studio lighting"
	fallbackQuality    = "high quality"
	fallbackResolution = "8k resolution"
)

var (
	aspectFlag  = regexp.MustCompile(`(?:^|\s)--(?:ar|aspect)\s+\S+`)
	versionFlag = regexp.MustCompile(`(?:^|\s)--(?:v|version)\s+\S+`)
	stylizeFlag = regexp.MustCompile(`(?:^|\s)--(?:stylize|s)\s+\S+`)
)

// sample draws every random value for one attempt against rec.
func (e *Engine) sample(req Request, rec catalog.Uniform) *draw {
	bank := req.Catalog.Phrases
	opts := req.Options

	d := &draw{
		record:       rec,
		japanese:     req.Settings.UseJapaneseModel,
		singlePerson: opts.IncludeSinglePerson,
		background:   opts.IncludeBackground,
	}
	d.gender = e.resolveGender(rec, req.Selection)
	d.genderPhrase = e.genderPhrase(bank.GenderPhrases, d.gender)

	d.elements = SampleMany(e.rand, rec.KeyElements, opts.Elements, opts.ForceElements)
	d.materials = SampleMany(e.rand, rec.Materials, opts.Materials, opts.ForceMaterials)
	d.colors = SampleMany(e.rand, rec.ColorPalette, opts.Colors, opts.ForceColors)
	d.styles = SampleMany(e.rand, rec.StyleKeywords, opts.StyleKeywords, opts.ForceStyles)

	if opts.IncludeIndustry {
		d.industry = SampleOne(e.rand, rec.Industries, "")
	}

	d.photoStyle = e.phrase("photo_style", bank.PhotoStyle, fallbackPhotoStyle)
	d.lighting = e.phrase("lighting", bank.Lighting, fallbackLighting)
	d.quality = e.phrase("quality", bank.Quality, fallbackQuality)
	d.resolution = e.phrase("resolution", bank.Resolution, fallbackResolution)
	d.rawParams = strings.TrimSpace(SampleOne(e.rand, bank.Parameters, ""))
	return d
}

// resolveGender prefers a gender picked from the selection, then the
// record's own tag, then unisex.
func (e *Engine) resolveGender(rec catalog.Uniform, sel Selection) catalog.Gender {
	if len(sel.Genders) > 0 {
		g := strings.ToLower(strings.TrimSpace(SampleOne(e.rand, sel.Genders, "")))
		if g != "" {
			return catalog.Gender(g)
		}
	}
	if g, ok := rec.GenderTag(); ok {
		return g
	}
	return catalog.GenderUnisex
}

func (e *Engine) genderPhrase(bank []string, g catalog.Gender) string {
	var match func(string) bool
	var fallback string
	switch g {
	case catalog.GenderMale:
		// "female" contains "male", so it has to be excluded explicitly
		match = func(p string) bool { return strings.Contains(p, "male") && !strings.Contains(p, "female") }
		fallback = "male model"
	case catalog.GenderFemale:
		match = func(p string) bool { return strings.Contains(p, "female") }
		fallback = "female model"
	default:
		return "person"
	}

	var candidates []string
	for _, p := range bank {
		if match(strings.ToLower(p)) {
			candidates = append(candidates, p)
		}
	}
	return SampleOne(e.rand, candidates, fallback)
}

func (e *Engine) phrase(category string, pool []string, fallback string) string {
	if len(pool) == 0 {
		e.logger.Debug().Str("category", category).Str("fallback", fallback).Msg("phrase category empty")
		return fallback
	}
	if p := strings.TrimSpace(SampleOne(e.rand, pool, "")); p != "" {
		return p
	}
	return fallback
}

// render builds the prompt text and returns it with the parameter tokens
// that were actually appended.
func render(d *draw, natural bool, s settings.Settings, extra []string) (string, string) {
	tmpl := keywordTemplate
	if natural {
		tmpl = naturalTemplate
	}
	text := tmpl.render(d)

	raw := d.rawParams
	if !s.IncludeAspectRatio {
		raw = stripFlag(raw, aspectFlag)
	}
	if !s.IncludeVersion {
		raw = stripFlag(raw, versionFlag)
	}
	if !s.IncludeStylize {
		raw = stripFlag(raw, stylizeFlag)
	}

	var applied []string
	add := func(token string) {
		token = strings.TrimSpace(token)
		if token == "" {
			return
		}
		text += " " + token
		applied = append(applied, token)
	}

	if s.IncludeAspectRatio {
		add(s.AspectRatio)
	}
	if s.IncludeVersion {
		add(s.Version)
	}
	if s.IncludeStylize && strings.TrimSpace(s.Stylize) != "" {
		add(s.StylizeToken())
	}
	if raw != "" && !strings.Contains(text, raw) {
		add(raw)
	}
	add(strings.Join(cleanValues(extra), " "))
	add(s.CustomSuffix)

	return text, strings.Join(applied, " ")
}

func stripFlag(s string, re *regexp.Regexp) string {
	if !re.MatchString(s) {
		return s
	}
	return strings.Join(strings.Fields(re.ReplaceAllString(s, " ")), " ")
}
