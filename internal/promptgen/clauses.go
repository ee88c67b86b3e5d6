package promptgen

import (
	"strings"

	"uniform-prompt-studio/internal/catalog"
)

const (
	naturalBackground = "simple white background, no background elements, studio shot"
	keywordBackground = "simple white background, studio shot"
	singlePerson      = "single person"
)

// draw holds everything sampled for one attempt.
type draw struct {
	record       catalog.Uniform
	gender       catalog.Gender
	genderPhrase string
	japanese     bool

	elements  []string
	materials []string
	colors    []string
	styles    []string

	industry   string
	photoStyle string
	lighting   string
	quality    string
	resolution string
	rawParams  string

	singlePerson bool
	background   bool
}

func (d *draw) subject() string {
	if !d.japanese {
		return d.genderPhrase
	}
	switch d.gender {
	case catalog.GenderMale:
		return "Japanese male model"
	case catalog.GenderFemale:
		return "Japanese female model"
	default:
		return "Japanese person"
	}
}

// clause renders one segment; an empty result is skipped.
type clause func(d *draw) string

// template is an ordered list of clauses joined with ", ".
type template []clause

func (t template) render(d *draw) string {
	parts := make([]string, 0, len(t))
	for _, c := range t {
		if s := strings.TrimSpace(c(d)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func literal(s string) clause {
	return func(*draw) string { return s }
}

func joined(pick func(d *draw) []string, sep string) clause {
	return func(d *draw) string { return strings.Join(pick(d), sep) }
}

func when(on func(d *draw) bool, c clause) clause {
	return func(d *draw) string {
		if !on(d) {
			return ""
		}
		return c(d)
	}
}

var (
	recordName   clause = func(d *draw) string { return d.record.Name }
	industryName clause = func(d *draw) string { return d.industry }
	photoStyle   clause = func(d *draw) string { return d.photoStyle }
	lighting     clause = func(d *draw) string { return d.lighting }
	quality      clause = func(d *draw) string { return d.quality }
	resolution   clause = func(d *draw) string { return d.resolution }
	subjectToken clause = func(d *draw) string { return d.subject() }

	elements  = joined(func(d *draw) []string { return d.elements }, ", ")
	materials = joined(func(d *draw) []string { return d.materials }, " and ")
	colors    = joined(func(d *draw) []string { return d.colors }, " and ")
	styles    = joined(func(d *draw) []string { return d.styles }, ", ")

	wantsSinglePerson = func(d *draw) bool { return d.singlePerson }
	wantsBackground   = func(d *draw) bool { return d.background }
)

// subjectWearing opens the sentence subject, with the industry folded in.
func subjectWearing(d *draw) string {
	s := d.subject() + " wearing a"
	if d.industry != "" {
		s += " " + d.industry
	}
	return s
}

// colorMaterial renders "{colors} {materials}", or whichever side is present.
func colorMaterial(d *draw) string {
	c, m := colors(d), materials(d)
	switch {
	case c != "" && m != "":
		return c + " " + m
	case m != "":
		return m
	default:
		return c
	}
}

var naturalTemplate = template{
	func(d *draw) string { return "A " + d.photoStyle + " of a full-body shot of" },
	subjectWearing,
	recordName,
	styles,
	elements,
	colorMaterial,
	when(wantsSinglePerson, literal(singlePerson)),
	when(wantsBackground, literal(naturalBackground)),
	lighting,
	quality,
	resolution,
	literal("photorealistic"),
}

var keywordTemplate = template{
	subjectToken,
	recordName,
	elements,
	materials,
	colors,
	styles,
	industryName,
	photoStyle,
	lighting,
	quality,
	resolution,
	when(wantsSinglePerson, literal(singlePerson)),
	when(wantsBackground, literal(keywordBackground)),
}
