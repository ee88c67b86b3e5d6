package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

type MigrateOptions struct {
	// UniformsPerChunk splits the chunked layout; zero keeps every record in
	// a single chunk.
	UniformsPerChunk int
	Logger           zerolog.Logger
	Now              func() time.Time
}

type MigrateReport struct {
	CopiedLegacy     bool
	CreatedEmpty     bool
	CreatedMetadata  bool
	CreatedChunks    int
	UniformTypes     int
	PhraseCategories int
}

// Migrate bootstraps dir so Load can read it: the legacy database is
// copied to the primary file, the primary file is validated (replaced by an
// empty database when unreadable) and a chunked layout is written when
// missing.
func Migrate(dir string, opts MigrateOptions) (MigrateReport, error) {
	logger := opts.Logger
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var report MigrateReport
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("create %s: %w", dir, err)
	}

	source := filepath.Join(dir, LegacyFile)
	target := filepath.Join(dir, PrimaryFile)

	if data, err := os.ReadFile(source); err == nil {
		if err := os.WriteFile(target, data, 0o644); err != nil {
			logger.Error().Err(err).Str("target", target).Msg("copy legacy database failed")
		} else {
			report.CopiedLegacy = true
			logger.Info().Str("source", source).Str("target", target).Msg("copied legacy database")
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Error().Err(err).Str("source", source).Msg("read legacy database failed")
	}

	cat, err := readCatalogFile(target)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str("target", target).Msg("primary database invalid, replacing with empty database")
		}
		cat = Catalog{}
		if err := writeJSON(target, cat); err != nil {
			return report, err
		}
		report.CreatedEmpty = true
	}
	report.UniformTypes = len(cat.Uniforms)
	report.PhraseCategories = cat.Phrases.Categories()

	chunksDir := filepath.Join(dir, ChunksDir)
	if err := os.MkdirAll(chunksDir, 0o755); err != nil {
		return report, fmt.Errorf("create %s: %w", chunksDir, err)
	}

	metaPath := filepath.Join(chunksDir, MetadataFile)
	if _, err := os.Stat(metaPath); err == nil {
		return report, nil
	}

	per := opts.UniformsPerChunk
	if per <= 0 || per > len(cat.Uniforms) {
		per = len(cat.Uniforms)
	}
	groups := splitUniforms(cat.Uniforms, per)

	meta := Metadata{
		TotalUniformTypes: len(cat.Uniforms),
		TotalChunks:       len(groups),
		UniformsPerChunk:  per,
		LastUpdated:       now().UTC(),
	}
	for i, group := range groups {
		info := ChunkInfo{
			ID:           i + 1,
			Filename:     fmt.Sprintf("uniforms-chunk-%d.json", i+1),
			UniformCount: len(group),
			UniformIDs:   make([]string, 0, len(group)),
			UniformNames: make([]string, 0, len(group)),
		}
		for _, u := range group {
			info.UniformIDs = append(info.UniformIDs, u.ID)
			info.UniformNames = append(info.UniformNames, u.Name)
		}
		meta.Chunks = append(meta.Chunks, info)

		chunkPath := filepath.Join(chunksDir, info.Filename)
		if _, err := os.Stat(chunkPath); err == nil {
			continue
		}
		chunk := chunkFile{ChunkID: info.ID, TotalChunks: len(groups)}
		chunk.Uniforms = group
		// every chunk carries the phrase banks so a single chunk is usable alone
		chunk.Phrases = cat.Phrases
		if err := writeJSON(chunkPath, chunk); err != nil {
			return report, err
		}
		report.CreatedChunks++
	}

	if err := writeJSON(metaPath, meta); err != nil {
		return report, err
	}
	report.CreatedMetadata = true
	logger.Info().
		Int("uniform_types", report.UniformTypes).
		Int("chunks", len(groups)).
		Msg("catalog migration completed")
	return report, nil
}

func splitUniforms(all []Uniform, per int) [][]Uniform {
	if per <= 0 {
		return [][]Uniform{{}}
	}
	var out [][]Uniform
	for start := 0; start < len(all); start += per {
		end := start + per
		if end > len(all) {
			end = len(all)
		}
		out = append(out, all[start:end])
	}
	if len(out) == 0 {
		out = [][]Uniform{{}}
	}
	return out
}

func readCatalogFile(name string) (Catalog, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return Catalog{}, err
	}
	var cat Catalog
	if err := decode(name, data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return cat, nil
}

func writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
