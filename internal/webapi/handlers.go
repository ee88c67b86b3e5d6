package webapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/render"
	"uniform-prompt-studio/internal/settings"
	"uniform-prompt-studio/internal/store"
)

const maxBodyBytes = 1 << 20

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"catalogSource": s.catalog.Source,
		"uniformTypes":  len(s.catalog.Catalog.Uniforms),
	})
}

func (s *Server) getCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Catalog)
}

func (s *Server) getFacets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Catalog.Facets())
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	cur, err := s.library(r).Settings(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cur)
}

// putSettings merges the body over the stored settings, so partial updates
// keep every other field.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	lib := s.library(r)
	cur, err := lib.Settings(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if err := decodeBody(r, &cur); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := lib.SaveSettings(r.Context(), cur)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) getSettingsOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settings.AllChoices())
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.library(r).History(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) getFavorites(w http.ResponseWriter, r *http.Request) {
	favorites, err := s.library(r).Favorites(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, favorites)
}

func (s *Server) clearData(w http.ResponseWriter, r *http.Request) {
	if err := s.library(r).ClearAll(r.Context()); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	// Count defaults to the stored prompt count.
	Count     *int                `json:"count"`
	UniformID string              `json:"uniformId"`
	Selection promptgen.Selection `json:"selection"`
	Options   promptgen.Options   `json:"options"`
}

type generateResponse struct {
	Prompts   []promptgen.Prompt `json:"prompts"`
	Exhausted int                `json:"exhausted"`
	Warning   string             `json:"warning,omitempty"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	req := generateRequest{Options: promptgen.DefaultOptions()}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lib := s.library(r)
	cur, err := lib.Settings(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	existing, err := lib.Existing(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	count := cur.PromptCount
	if req.Count != nil {
		count = min(*req.Count, settings.MaxPromptCount)
	}

	batch, err := s.engine.GenerateBatch(promptgen.Request{
		Catalog:   s.catalog.Catalog,
		Selection: req.Selection.Normalize(),
		Settings:  cur,
		Options:   req.Options,
		UniformID: strings.TrimSpace(req.UniformID),
	}, count, existing)
	switch {
	case errors.Is(err, promptgen.ErrUniformNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, promptgen.ErrEmptyCatalog):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	if len(batch.Prompts) > 0 {
		if _, err := lib.RecordBatch(r.Context(), batch.Prompts); err != nil {
			s.internalError(w, r, err)
			return
		}
	}

	resp := generateResponse{Prompts: batch.Prompts, Exhausted: batch.Exhausted}
	if batch.Exhausted > 0 {
		resp.Warning = "some prompts repeat earlier ones because the catalog offers too little variety for the current filters"
	}
	writeJSON(w, http.StatusOK, resp)
}

// export renders a list as plain text, one prompt per paragraph.
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	lib := s.library(r)
	var (
		list []promptgen.Prompt
		err  error
	)
	switch r.URL.Query().Get("list") {
	case "", "history":
		list, err = lib.History(r.Context())
	case "favorites":
		list, err = lib.Favorites(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "list must be history or favorites")
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(promptgen.JoinFullText(list)))
}

func (s *Server) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := promptID(w, r)
	if !ok {
		return
	}
	p, err := s.library(r).ToggleFavorite(r.Context(), id)
	s.writePrompt(w, r, p, err)
}

type ratingRequest struct {
	Rating int `json:"rating"`
}

func (s *Server) setRating(w http.ResponseWriter, r *http.Request) {
	id, ok := promptID(w, r)
	if !ok {
		return
	}
	var body ratingRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.library(r).SetRating(r.Context(), id, body.Rating)
	s.writePrompt(w, r, p, err)
}

type resultRequest struct {
	ResultImagePath string `json:"resultImagePath"`
	ResultNotes     string `json:"resultNotes"`
}

func (s *Server) attachResult(w http.ResponseWriter, r *http.Request) {
	id, ok := promptID(w, r)
	if !ok {
		return
	}
	var body resultRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.library(r).AttachResult(r.Context(), id, strings.TrimSpace(body.ResultImagePath), strings.TrimSpace(body.ResultNotes))
	s.writePrompt(w, r, p, err)
}

type renderResponse struct {
	Prompt promptgen.Prompt `json:"prompt"`
	Images []string         `json:"images"`
}

func (s *Server) renderPrompt(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		writeError(w, http.StatusNotImplemented, render.ErrNotConfigured.Error())
		return
	}
	id, ok := promptID(w, r)
	if !ok {
		return
	}

	lib := s.library(r)
	p, err := lib.Find(r.Context(), id)
	if err != nil {
		s.writePrompt(w, r, p, err)
		return
	}

	images, err := s.renderer.GenerateImage(r.Context(), p.FullPrompt)
	if err == nil && len(images) == 0 {
		err = render.ErrNoImage
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("prompt_id", id).Msg("render failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	p, err = lib.AttachResult(r.Context(), id, images[0], "")
	if err != nil {
		s.writePrompt(w, r, p, err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{Prompt: p, Images: images})
}

func (s *Server) writePrompt(w http.ResponseWriter, r *http.Request, p promptgen.Prompt, err error) {
	switch {
	case errors.Is(err, store.ErrPromptNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
}

func promptID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prompt id")
		return 0, false
	}
	return id, true
}

// decodeBody decodes JSON into v; an empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.New("invalid JSON body")
	}
	return nil
}
