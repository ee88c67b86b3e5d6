package catalog

// Builtin returns the catalog used when no database file can be read.
func Builtin() Catalog {
	return Catalog{
		Uniforms: []Uniform{
			{
				ID:            "hospital",
				Name:          "Hospital Uniform",
				Description:   "Medical staff uniforms designed for clinical environments",
				KeyElements:   []string{"scrubs", "white coat", "nursing cap", "stethoscope", "name badge"},
				Materials:     []string{"cotton", "polyester blend", "antimicrobial fabric"},
				ColorPalette:  []string{"white", "light blue", "teal", "navy"},
				Industries:    []string{"healthcare", "medical", "nursing"},
				StyleKeywords: []string{"functional", "hygienic", "professional"},
			},
			{
				ID:            "restaurant",
				Name:          "Restaurant Uniform",
				Description:   "Food service uniforms for various dining establishments",
				KeyElements:   []string{"chef coat", "apron", "toque", "server outfit", "bowtie"},
				Materials:     []string{"cotton", "polyester", "stain-resistant fabric"},
				ColorPalette:  []string{"white", "black", "burgundy", "navy"},
				Industries:    []string{"food service", "hospitality", "catering"},
				StyleKeywords: []string{"neat", "elegant", "practical", "branded"},
			},
			{
				ID:            "hotel",
				Name:          "Hotel Staff Uniform",
				Description:   "Upscale hospitality uniforms for hotel personnel",
				KeyElements:   []string{"front desk suit", "bellhop cap", "concierge vest", "housekeeping uniform"},
				Materials:     []string{"wool blend", "cotton", "polyester", "satin accents"},
				ColorPalette:  []string{"navy", "gold", "black", "burgundy"},
				Industries:    []string{"hospitality", "hotels", "tourism"},
				StyleKeywords: []string{"elegant", "sophisticated", "professional", "branded"},
			},
		},
		Phrases: PhraseBank{
			Quality:    []string{"high quality", "detailed", "professional"},
			PhotoStyle: []string{"fashion photograph", "professional photography"},
			Lighting:   []string{"studio lighting", "soft lighting"},
			Resolution: []string{"8k", "4k", "high resolution"},
			Parameters: []string{"--ar 4:5 --stylize 750", "--ar 3:4 --stylize 850"},
		},
	}
}
