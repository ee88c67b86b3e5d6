package promptgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"uniform-prompt-studio/internal/catalog"
)

type Config struct {
	Rand   Rand
	Now    func() time.Time
	Logger zerolog.Logger
}

// Engine composes prompts. It keeps no state between calls besides its
// random source, so one Engine can serve every client.
type Engine struct {
	rand   Rand
	now    func() time.Time
	logger zerolog.Logger
}

func New(cfg Config) *Engine {
	e := &Engine{rand: cfg.Rand, now: cfg.Now, logger: cfg.Logger}
	if e.rand == nil {
		e.rand = globalRand{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// PickRecord resolves the record to compose from: the pinned id when set,
// else a random record of the filtered catalog, else a random record of
// the whole catalog when the filter matches nothing.
func (e *Engine) PickRecord(req Request) (catalog.Uniform, error) {
	if req.UniformID != "" {
		rec, ok := req.Catalog.Lookup(req.UniformID)
		if !ok {
			return catalog.Uniform{}, fmt.Errorf("%w: %q", ErrUniformNotFound, req.UniformID)
		}
		return rec, nil
	}
	if req.Catalog.Empty() {
		return catalog.Uniform{}, ErrEmptyCatalog
	}

	candidates := Filter(req.Catalog.Uniforms, req.Selection.Normalize())
	if len(candidates) == 0 {
		e.logger.Debug().Msg("filter matched no uniform types, sampling from the full catalog")
		candidates = req.Catalog.Uniforms
	}
	return candidates[e.rand.Intn(len(candidates))], nil
}

// Compose builds one prompt for rec without any duplicate check.
func (e *Engine) Compose(req Request, rec catalog.Uniform) Prompt {
	d := e.sample(req, rec)
	text, params := render(d, req.Options.natural(req.Settings), req.Settings, req.Options.AdditionalParams)

	now := e.now()
	return Prompt{
		ID:            now.UnixMilli() + int64(e.rand.Intn(1000)),
		FullPrompt:    text,
		CreatedAt:     now,
		UniformID:     rec.ID,
		UniformName:   rec.Name,
		Material:      joinAttr(d.materials),
		Element:       joinAttr(d.elements),
		Color:         joinAttr(d.colors),
		Industry:      d.industry,
		Gender:        string(d.gender),
		StyleKeywords: d.styles,
		PhotoStyle:    d.photoStyle,
		Lighting:      d.lighting,
		Quality:       d.quality,
		Resolution:    d.resolution,
		Parameters:    params,
	}
}

func joinAttr(values []string) string {
	return strings.Join(values, ", ")
}
