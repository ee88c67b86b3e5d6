package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"uniform-prompt-studio/internal/catalog"
	"uniform-prompt-studio/internal/promptgen"
	"uniform-prompt-studio/internal/store"
)

type fakeRenderer struct {
	prompts []string
}

func (f *fakeRenderer) GenerateImage(_ context.Context, prompt string) ([]string, error) {
	f.prompts = append(f.prompts, prompt)
	return []string{"data:image/png;base64,AAAA"}, nil
}

func newTestServer(t *testing.T, renderer *fakeRenderer) http.Handler {
	t.Helper()
	opts := Options{
		Catalog: catalog.Loaded{Catalog: catalog.Builtin(), Source: catalog.SourceBuiltin},
		Engine:  promptgen.New(promptgen.Config{Rand: rand.New(rand.NewSource(1))}),
		Store:   store.New(store.NewMemory(), store.Options{}),
	}
	if renderer != nil {
		opts.Renderer = renderer
	}
	return New(opts).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(clientIDHeader, "client-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/v1/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["catalogSource"] != "builtin" {
		t.Fatalf("catalogSource = %v", body["catalogSource"])
	}
}

func TestClientIDIsMintedWhenMissing(t *testing.T) {
	h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(clientIDHeader); len(got) != 36 {
		t.Fatalf("minted client id = %q, want a uuid", got)
	}

	rec = do(t, h, http.MethodGet, "/api/settings", "")
	if got := rec.Header().Get(clientIDHeader); got != "client-1" {
		t.Fatalf("client id = %q, want echo of the request header", got)
	}
}

func TestGenerateRecordsHistory(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/prompts/generate", `{"count": 3, "options": {"includeBackground": false}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[generateResponse](t, rec)
	if len(resp.Prompts) != 3 {
		t.Fatalf("prompts = %d, want 3", len(resp.Prompts))
	}
	for _, p := range resp.Prompts {
		if strings.Contains(p.FullPrompt, "studio shot") {
			t.Fatalf("background clause should be off: %q", p.FullPrompt)
		}
		if !strings.Contains(p.FullPrompt, "single person") {
			t.Fatalf("unspecified options should keep defaults: %q", p.FullPrompt)
		}
	}

	history := decode[[]promptgen.Prompt](t, do(t, h, http.MethodGet, "/api/history", ""))
	if len(history) != 3 || history[0].ID != resp.Prompts[0].ID {
		t.Fatalf("history = %d entries", len(history))
	}
}

func TestGenerateUsesStoredPromptCount(t *testing.T) {
	h := newTestServer(t, nil)
	if rec := do(t, h, http.MethodPut, "/api/settings", `{"promptCount": 2}`); rec.Code != http.StatusOK {
		t.Fatalf("PUT settings status = %d", rec.Code)
	}
	resp := decode[generateResponse](t, do(t, h, http.MethodPost, "/api/prompts/generate", ""))
	if len(resp.Prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(resp.Prompts))
	}
}

func TestGenerateZeroCount(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodPost, "/api/prompts/generate", `{"count": 0}`)
	resp := decode[generateResponse](t, rec)
	if rec.Code != http.StatusOK || len(resp.Prompts) != 0 {
		t.Fatalf("status = %d, prompts = %d", rec.Code, len(resp.Prompts))
	}
	history := decode[[]promptgen.Prompt](t, do(t, h, http.MethodGet, "/api/history", ""))
	if len(history) != 0 {
		t.Fatalf("history should stay empty")
	}
}

func TestGenerateUnknownUniformLeavesHistory(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodPost, "/api/prompts/generate", `{"uniformId": "astronaut"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decode[map[string]string](t, rec); !strings.Contains(body["error"], "astronaut") {
		t.Fatalf("error = %q", body["error"])
	}
	history := decode[[]promptgen.Prompt](t, do(t, h, http.MethodGet, "/api/history", ""))
	if len(history) != 0 {
		t.Fatalf("failed batch must not touch history")
	}
}

func TestSettingsPartialUpdate(t *testing.T) {
	h := newTestServer(t, nil)
	rec := do(t, h, http.MethodPut, "/api/settings", `{"includeStylize": false, "promptCount": 999}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[map[string]any](t, do(t, h, http.MethodGet, "/api/settings", ""))
	if got["includeStylize"] != false || got["promptCount"] != float64(50) || got["aspectRatio"] != "--ar 4:5" {
		t.Fatalf("settings = %v", got)
	}

	if rec := do(t, h, http.MethodPut, "/api/settings", `{"promptCount": "x"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d, want 400", rec.Code)
	}
}

func TestFavoriteRatingAndExport(t *testing.T) {
	h := newTestServer(t, nil)
	resp := decode[generateResponse](t, do(t, h, http.MethodPost, "/api/prompts/generate", `{"count": 2}`))
	id := resp.Prompts[1].ID

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/prompts/%d/favorite", id), "")
	if rec.Code != http.StatusOK || !decode[promptgen.Prompt](t, rec).IsFavorite {
		t.Fatalf("favorite status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPut, fmt.Sprintf("/api/prompts/%d/rating", id), `{"rating": 4}`)
	if rec.Code != http.StatusOK || decode[promptgen.Prompt](t, rec).Rating != 4 {
		t.Fatalf("rating status = %d body %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPut, fmt.Sprintf("/api/prompts/%d/rating", id), `{"rating": 9}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid rating status = %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/prompts/123/rating", `{"rating": 1}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown prompt status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/prompts/abc/favorite", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}

	favorites := decode[[]promptgen.Prompt](t, do(t, h, http.MethodGet, "/api/favorites", ""))
	if len(favorites) != 1 || favorites[0].Rating != 4 {
		t.Fatalf("favorites = %#v", favorites)
	}

	rec = do(t, h, http.MethodGet, "/api/prompts/export?list=history", "")
	want := resp.Prompts[0].FullPrompt + "\n\n" + resp.Prompts[1].FullPrompt
	if rec.Body.String() != want {
		t.Fatalf("export = %q, want %q", rec.Body.String(), want)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q", ct)
	}
	if rec := do(t, h, http.MethodGet, "/api/prompts/export?list=trash", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown list status = %d, want 400", rec.Code)
	}
}

func TestRender(t *testing.T) {
	if rec := do(t, newTestServer(t, nil), http.MethodPost, "/api/prompts/1/render", ""); rec.Code != http.StatusNotImplemented {
		t.Fatalf("status without renderer = %d, want 501", rec.Code)
	}

	fake := &fakeRenderer{}
	h := newTestServer(t, fake)
	resp := decode[generateResponse](t, do(t, h, http.MethodPost, "/api/prompts/generate", `{"count": 1}`))
	p := resp.Prompts[0]

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/prompts/%d/render", p.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	out := decode[renderResponse](t, rec)
	if out.Prompt.ResultImagePath != "data:image/png;base64,AAAA" {
		t.Fatalf("ResultImagePath = %q", out.Prompt.ResultImagePath)
	}
	if len(fake.prompts) != 1 || fake.prompts[0] != p.FullPrompt {
		t.Fatalf("renderer got %v", fake.prompts)
	}
}

func TestFacetsAndClear(t *testing.T) {
	h := newTestServer(t, nil)
	facets := decode[catalog.Facets](t, do(t, h, http.MethodGet, "/api/catalog/facets", ""))
	if len(facets.Uniforms) != 3 {
		t.Fatalf("facets uniforms = %d, want 3", len(facets.Uniforms))
	}

	_ = do(t, h, http.MethodPost, "/api/prompts/generate", `{"count": 2}`)
	if rec := do(t, h, http.MethodDelete, "/api/data", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", rec.Code)
	}
	history := decode[[]promptgen.Prompt](t, do(t, h, http.MethodGet, "/api/history", ""))
	if len(history) != 0 {
		t.Fatalf("history not cleared")
	}
}
