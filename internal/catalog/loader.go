package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const (
	PrimaryFile  = "uniform-database.json"
	LegacyFile   = "uniform-fatabase.json"
	ChunksDir    = "db-chunks"
	MetadataFile = "db-metadata.json"
)

var primaryAlternates = []string{PrimaryFile, "uniform-database.yaml", "uniform-database.yml"}

// ErrNoSource is returned when no source yields records and the built-in
// catalog is disabled.
var ErrNoSource = errors.New("catalog: no usable source")

type Source string

const (
	SourcePrimary Source = "primary"
	SourceChunks  Source = "chunks"
	SourceLegacy  Source = "legacy"
	SourceBuiltin Source = "builtin"
)

type Metadata struct {
	TotalUniformTypes int         `json:"totalUniformTypes" yaml:"totalUniformTypes"`
	TotalChunks       int         `json:"totalChunks" yaml:"totalChunks"`
	UniformsPerChunk  int         `json:"uniformsPerChunk" yaml:"uniformsPerChunk"`
	LastUpdated       time.Time   `json:"lastUpdated" yaml:"lastUpdated"`
	Chunks            []ChunkInfo `json:"chunks" yaml:"chunks"`
}

type ChunkInfo struct {
	ID           int      `json:"id" yaml:"id"`
	Filename     string   `json:"filename" yaml:"filename"`
	UniformCount int      `json:"uniformCount" yaml:"uniformCount"`
	UniformIDs   []string `json:"uniformIds" yaml:"uniformIds"`
	UniformNames []string `json:"uniformNames" yaml:"uniformNames"`
}

type chunkFile struct {
	ChunkID     int `json:"chunk_id" yaml:"chunk_id"`
	TotalChunks int `json:"total_chunks" yaml:"total_chunks"`
	Catalog     `yaml:",inline"`
}

type Options struct {
	Logger zerolog.Logger
	// DisableBuiltin makes Load fail with ErrNoSource instead of returning
	// the built-in catalog.
	DisableBuiltin bool
}

type Loaded struct {
	Catalog Catalog
	Source  Source
}

// LoadDir loads a catalog from a directory on disk.
func LoadDir(ctx context.Context, dir string, opts Options) (Loaded, error) {
	if strings.TrimSpace(dir) == "" {
		return Load(ctx, nil, opts)
	}
	return Load(ctx, os.DirFS(dir), opts)
}

// Load resolves the catalog from fsys, trying the primary database file,
// the chunked layout, the legacy file and finally the built-in catalog.
func Load(ctx context.Context, fsys fs.FS, opts Options) (Loaded, error) {
	logger := opts.Logger

	if fsys != nil {
		steps := []struct {
			source Source
			load   func(context.Context, fs.FS) (Catalog, error)
		}{
			{SourcePrimary, loadPrimary},
			{SourceChunks, loadChunks},
			{SourceLegacy, loadLegacy},
		}
		for _, step := range steps {
			if err := ctx.Err(); err != nil {
				return Loaded{}, err
			}
			cat, err := step.load(ctx, fsys)
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					logger.Warn().Err(err).Str("source", string(step.source)).Msg("catalog source unreadable")
				}
				continue
			}
			if cat.Empty() {
				logger.Debug().Str("source", string(step.source)).Msg("catalog source has no uniform types")
				continue
			}
			logger.Info().
				Str("source", string(step.source)).
				Int("uniform_types", len(cat.Uniforms)).
				Int("phrase_categories", cat.Phrases.Categories()).
				Msg("catalog loaded")
			return Loaded{Catalog: cat, Source: step.source}, nil
		}
	}

	if opts.DisableBuiltin {
		return Loaded{}, ErrNoSource
	}
	logger.Warn().Msg("falling back to built-in catalog")
	return Loaded{Catalog: Builtin(), Source: SourceBuiltin}, nil
}

func loadPrimary(_ context.Context, fsys fs.FS) (Catalog, error) {
	for _, name := range primaryAlternates {
		var cat Catalog
		err := readFile(fsys, name, &cat)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cat, err
	}
	return Catalog{}, fs.ErrNotExist
}

func loadLegacy(_ context.Context, fsys fs.FS) (Catalog, error) {
	var cat Catalog
	err := readFile(fsys, LegacyFile, &cat)
	return cat, err
}

func loadChunks(ctx context.Context, fsys fs.FS) (Catalog, error) {
	var meta Metadata
	if err := readFile(fsys, path.Join(ChunksDir, MetadataFile), &meta); err != nil {
		return Catalog{}, err
	}
	if len(meta.Chunks) == 0 {
		return Catalog{}, nil
	}

	parts := make([]Catalog, len(meta.Chunks))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, info := range meta.Chunks {
		i := i
		name := path.Join(ChunksDir, path.Base(info.Filename))
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			var chunk chunkFile
			if err := readFile(fsys, name, &chunk); err != nil {
				return fmt.Errorf("chunk %s: %w", name, err)
			}
			parts[i] = chunk.Catalog
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Catalog{}, err
	}

	return mergeCatalogs(parts), nil
}

func mergeCatalogs(parts []Catalog) Catalog {
	var out Catalog
	seen := make(map[string]struct{})
	for _, part := range parts {
		for _, u := range part.Uniforms {
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			out.Uniforms = append(out.Uniforms, u)
		}
		out.Phrases = out.Phrases.Merge(part.Phrases)
	}
	return out
}

func readFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := decode(name, data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func decode(name string, data []byte, v any) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}
