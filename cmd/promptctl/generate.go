package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/settings"
)

type generateOptions struct {
	count     int
	uniformID string
	seed      int64
	asJSON    bool

	industries []string
	styles     []string
	materials  []string
	colors     []string
	genders    []string
	uniforms   []string

	structure     string
	japanese      bool
	aspectRatio   string
	version       string
	stylize       string
	noAspectRatio bool
	noVersion     bool
	noStylize     bool
	suffix        string
	params        []string

	noIndustry     bool
	noSinglePerson bool
	noBackground   bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compose a batch of distinct prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := catalog.LoadDir(cmd.Context(), root.catalogDir, catalog.Options{Logger: root.logger})
			if err != nil {
				return err
			}
			req, err := opts.request(loaded.Catalog)
			if err != nil {
				return err
			}

			cfg := promptgen.Config{Logger: root.logger}
			if opts.seed != 0 {
				cfg.Rand = rand.New(rand.NewSource(opts.seed))
			}
			batch, err := promptgen.New(cfg).GenerateBatch(req, opts.count, nil)
			if err != nil {
				return err
			}
			if batch.Exhausted > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %d prompt(s) repeat earlier ones\n", batch.Exhausted)
			}
			return writeBatch(cmd.OutOrStdout(), batch.Prompts, opts.asJSON)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "n", settings.Defaults().PromptCount, "number of prompts")
	f.StringVarP(&opts.uniformID, "uniform", "u", "", "pin one uniform id")
	f.Int64Var(&opts.seed, "seed", 0, "seed for reproducible output (0 = random)")
	f.BoolVar(&opts.asJSON, "json", false, "print prompts as JSON")

	f.StringSliceVar(&opts.uniforms, "type", nil, "filter: uniform ids")
	f.StringSliceVar(&opts.industries, "industry", nil, "filter: industries")
	f.StringSliceVar(&opts.styles, "style", nil, "filter: style keywords")
	f.StringSliceVar(&opts.materials, "material", nil, "filter: materials")
	f.StringSliceVar(&opts.colors, "color", nil, "filter: colors")
	f.StringSliceVar(&opts.genders, "gender", nil, "filter: genders (male|female|unisex)")

	f.StringVar(&opts.structure, "structure", "", "template: natural or keywords (default from settings)")
	f.BoolVar(&opts.japanese, "japanese", false, "use the Japanese model subject")
	f.StringVar(&opts.aspectRatio, "ar", settings.Defaults().AspectRatio, "aspect ratio token")
	f.StringVar(&opts.version, "version", settings.Defaults().Version, "version token")
	f.StringVar(&opts.stylize, "stylize", settings.Defaults().Stylize, "stylize value")
	f.BoolVar(&opts.noAspectRatio, "no-ar", false, "omit the aspect ratio")
	f.BoolVar(&opts.noVersion, "no-version", false, "omit the version")
	f.BoolVar(&opts.noStylize, "no-stylize", false, "omit stylize")
	f.StringVar(&opts.suffix, "suffix", "", "custom text appended to every prompt")
	f.StringSliceVar(&opts.params, "param", nil, "additional trailing parameters")

	f.BoolVar(&opts.noIndustry, "no-industry", false, "leave the industry out of the text")
	f.BoolVar(&opts.noSinglePerson, "no-single-person", false, "drop the single person clause")
	f.BoolVar(&opts.noBackground, "no-background", false, "drop the background clause")

	return cmd
}

func (o *generateOptions) request(c catalog.Catalog) (promptgen.Request, error) {
	if o.count < 0 || o.count > settings.MaxPromptCount {
		return promptgen.Request{}, fmt.Errorf("--count must be between 0 and %d", settings.MaxPromptCount)
	}

	structure := promptgen.Structure(o.structure)
	switch structure {
	case promptgen.StructureAuto, promptgen.StructureNatural, promptgen.StructureKeywords:
	default:
		return promptgen.Request{}, fmt.Errorf("--structure must be natural or keywords, got %q", o.structure)
	}

	s := settings.Defaults()
	s.UseJapaneseModel = o.japanese
	s.AspectRatio = o.aspectRatio
	s.Version = o.version
	s.Stylize = o.stylize
	s.IncludeAspectRatio = !o.noAspectRatio
	s.IncludeVersion = !o.noVersion
	s.IncludeStylize = !o.noStylize
	s.CustomSuffix = o.suffix

	opts := promptgen.DefaultOptions()
	opts.Structure = structure
	opts.AdditionalParams = o.params
	opts.IncludeIndustry = !o.noIndustry
	opts.IncludeSinglePerson = !o.noSinglePerson
	opts.IncludeBackground = !o.noBackground

	return promptgen.Request{
		Catalog: c,
		Selection: promptgen.Selection{
			UniformIDs: o.uniforms,
			Industries: o.industries,
			Styles:     o.styles,
			Materials:  o.materials,
			Colors:     o.colors,
			Genders:    o.genders,
		}.Normalize(),
		Settings:  s.Normalize(),
		Options:   opts,
		UniformID: o.uniformID,
	}, nil
}

func writeBatch(w io.Writer, prompts []promptgen.Prompt, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(prompts)
	}
	if len(prompts) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, promptgen.JoinFullText(prompts))
	return err
}
