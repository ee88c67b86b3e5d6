package promptgen

import (
	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/settings"
)

// Structure selects the prompt template.
type Structure string

const (
	// StructureAuto follows settings.UseNaturalLanguage.
	StructureAuto     Structure = ""
	StructureNatural  Structure = "natural"
	StructureKeywords Structure = "keywords"
)

// Options are per-request overrides layered on the client settings.
type Options struct {
	Elements      Range `json:"elementsCount"`
	Materials     Range `json:"materialsCount"`
	Colors        Range `json:"colorsCount"`
	StyleKeywords Range `json:"styleKeywordsCount"`

	ForceElements  []string `json:"forceElements,omitempty"`
	ForceMaterials []string `json:"forceMaterials,omitempty"`
	ForceColors    []string `json:"forceColors,omitempty"`
	ForceStyles    []string `json:"forceStyles,omitempty"`

	AdditionalParams []string `json:"additionalParams,omitempty"`

	IncludeIndustry     bool      `json:"includeIndustry"`
	Structure           Structure `json:"structure,omitempty"`
	IncludeSinglePerson bool      `json:"includeSinglePerson"`
	IncludeBackground   bool      `json:"includeBackground"`
}

func DefaultOptions() Options {
	return Options{
		Elements:            Range{Min: 2, Max: 3},
		Materials:           Range{Min: 1, Max: 2},
		Colors:              Range{Min: 1, Max: 2},
		StyleKeywords:       Range{Min: 1, Max: 3},
		IncludeIndustry:     true,
		IncludeSinglePerson: true,
		IncludeBackground:   true,
	}
}

func (o Options) natural(s settings.Settings) bool {
	switch o.Structure {
	case StructureNatural:
		return true
	case StructureKeywords:
		return false
	default:
		return s.UseNaturalLanguage
	}
}

// Request bundles everything one composition needs. The catalog is owned by
// the caller and only read.
type Request struct {
	Catalog   catalog.Catalog
	Selection Selection
	Settings  settings.Settings
	Options   Options
	// UniformID pins the record; unknown ids fail with ErrUniformNotFound.
	UniformID string
}
