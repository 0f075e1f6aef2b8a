package frontend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/goimagine/internal/backend/history"
	"github.com/jo-hoe/goimagine/internal/backend/relay"
	"github.com/jo-hoe/goimagine/internal/backend/settings"
	"github.com/jo-hoe/goimagine/internal/backend/storage"
	"github.com/jo-hoe/goimagine/internal/common"
	"github.com/jo-hoe/goimagine/internal/core"
)

type stubGenerator struct {
	prompts []string
	url     string
	err     error
}

func (g *stubGenerator) GenerateImage(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.url, g.err
}

func newTestServer(t *testing.T, generator relay.ImageGenerator) (*echo.Echo, *core.CoreService) {
	t.Helper()
	config := &core.ServiceConfig{Generator: core.Generator{Timeout: relay.MaxTimeout}}
	coreService := core.NewCoreServiceWith(context.Background(), config, storage.NewMemoryStore(), generator)
	t.Cleanup(func() { _ = coreService.Close() })

	e := echo.New()
	e.Validator = &common.GenericEchoValidator{}
	NewFrontendService(config, coreService).SetRoutes(e)
	return e, coreService
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func postForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return serve(e, req)
}

func addImages(coreService *core.CoreService, prompts ...string) []history.GeneratedImage {
	var added []history.GeneratedImage
	for _, p := range prompts {
		added = append(added, coreService.AddToHistory(context.Background(), history.NewImage{
			Prompt:     p,
			ImageURL:   "https://img.example/" + url.PathEscape(p) + ".png",
			Dimensions: "1024x1024",
			Style:      "realistic",
		}))
	}
	return added
}

func TestRootRedirect(t *testing.T) {
	e, _ := newTestServer(t, &stubGenerator{})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected status 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/index.html" {
		t.Errorf("expected redirect to /index.html, got %q", loc)
	}
}

func TestIndex_RendersFormAndEmptyHistory(t *testing.T) {
	e, _ := newTestServer(t, &stubGenerator{})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`hx-post="/htmx/generate"`,
		`hx-disabled-elt`,
		`<option value="realistic" selected>Realistic</option>`,
		`<option value="landscape">`,
		"No generation history yet",
		"You are an AI image generation system.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected index to contain %q", want)
		}
	}
}

func TestGenerate_RecordsHistoryAndRendersResult(t *testing.T) {
	generator := &stubGenerator{url: "https://img.example/fox.png"}
	e, coreService := newTestServer(t, generator)

	rec := postForm(e, "/htmx/generate", url.Values{
		"prompt":     {"a red fox"},
		"style":      {"sketch"},
		"dimensions": {"portrait"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	want := "a red fox, pencil sketch, hand-drawn, artistic, high quality, detailed, professional photography, 832x1216 aspect ratio"
	if len(generator.prompts) != 1 || generator.prompts[0] != want {
		t.Errorf("expected outbound prompt %q, got %v", want, generator.prompts)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `src="https://img.example/fox.png"`) {
		t.Error("expected the generated image in the response")
	}
	if !strings.Contains(body, `hx-swap-oob="true"`) {
		t.Error("expected an out-of-band history refresh")
	}

	images := coreService.History(context.Background())
	if len(images) != 1 || images[0].Prompt != "a red fox" || images[0].Style != "sketch" || images[0].Dimensions != "832x1216" {
		t.Errorf("unexpected history %+v", images)
	}
}

func TestGenerate_RendersErrors(t *testing.T) {
	e, coreService := newTestServer(t, &stubGenerator{err: &relay.StatusError{StatusCode: 500}})

	rec := postForm(e, "/htmx/generate", url.Values{"prompt": {"a red fox"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to generate image: API request failed: 500") {
		t.Errorf("expected error message in response, got %q", rec.Body.String())
	}

	rec = postForm(e, "/htmx/generate", url.Values{"prompt": {""}})
	if !strings.Contains(rec.Body.String(), "Prompt is required and must be a string") {
		t.Errorf("expected validation message in response, got %q", rec.Body.String())
	}

	if len(coreService.History(context.Background())) != 0 {
		t.Error("expected no history after failures")
	}
}

func TestGenerate_EscapesUserInput(t *testing.T) {
	e, _ := newTestServer(t, &stubGenerator{url: "https://img.example/x.png"})

	rec := postForm(e, "/htmx/generate", url.Values{"prompt": {"<script>alert(1)</script>"}})
	if strings.Contains(rec.Body.String(), "<script>alert(1)</script>") {
		t.Error("expected prompt to be HTML escaped")
	}
}

func TestHistoryList_SearchAndEmptyStates(t *testing.T) {
	e, coreService := newTestServer(t, &stubGenerator{})
	addImages(coreService, "a cat on a sofa", "a dog in the park")

	body := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/history?q=CAT", nil)).Body.String()
	if !strings.Contains(body, "a cat on a sofa") || strings.Contains(body, "a dog in the park") {
		t.Errorf("expected only the cat in search results, got %q", body)
	}

	body = serve(e, httptest.NewRequest(http.MethodGet, "/htmx/history?q=zebra", nil)).Body.String()
	if !strings.Contains(body, "No matching prompts found") {
		t.Errorf("expected no-match message, got %q", body)
	}
}

func TestHistoryList_ShowsFirstPage(t *testing.T) {
	e, coreService := newTestServer(t, &stubGenerator{})
	prompts := make([]string, HistoryPageSize+5)
	for i := range prompts {
		prompts[i] = fmt.Sprintf("prompt number %02d", i)
	}
	addImages(coreService, prompts...)

	body := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/history", nil)).Body.String()
	if got := strings.Count(body, "<article"); got != HistoryPageSize {
		t.Errorf("expected %d rendered entries, got %d", HistoryPageSize, got)
	}
	if !strings.Contains(body, "Showing first 20 results") {
		t.Error("expected truncation note")
	}
	if strings.Contains(body, "prompt number 00") {
		t.Error("expected the oldest entries to be cut off")
	}
}

func TestHistoryDeleteAndClear(t *testing.T) {
	e, coreService := newTestServer(t, &stubGenerator{})
	added := addImages(coreService, "first", "second")

	rec := serve(e, httptest.NewRequest(http.MethodDelete, "/htmx/history/"+added[0].ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), ">first<") {
		t.Error("expected deleted entry to be gone from the list")
	}
	if len(coreService.History(context.Background())) != 1 {
		t.Errorf("expected one remaining entry, got %d", len(coreService.History(context.Background())))
	}

	rec = serve(e, httptest.NewRequest(http.MethodDelete, "/htmx/history", nil))
	if !strings.Contains(rec.Body.String(), "No generation history yet") {
		t.Errorf("expected empty list after clear, got %q", rec.Body.String())
	}
}

func TestReusePrompt(t *testing.T) {
	e, coreService := newTestServer(t, &stubGenerator{})
	added := addImages(coreService, "a misty harbor")

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/htmx/history/"+added[0].ID+"/reuse", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ">a misty harbor</textarea>") {
		t.Errorf("expected prompt field prefilled, got %q", rec.Body.String())
	}

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/htmx/history/unknown/reuse", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown id, got %d", rec.Code)
	}
}

func TestSystemPromptForm(t *testing.T) {
	e, coreService := newTestServer(t, &stubGenerator{})

	rec := postForm(e, "/htmx/settings/system-prompt", url.Values{"systemPrompt": {"paint in watercolor"}})
	if !strings.Contains(rec.Body.String(), "Saved") {
		t.Errorf("expected confirmation, got %q", rec.Body.String())
	}
	if got := coreService.SystemPrompt(context.Background()); got != "paint in watercolor" {
		t.Errorf("expected stored system prompt, got %q", got)
	}

	rec = postForm(e, "/htmx/settings/system-prompt", url.Values{"systemPrompt": {"   "}})
	if !strings.Contains(rec.Body.String(), "System prompt must not be empty") {
		t.Errorf("expected rejection message, got %q", rec.Body.String())
	}
	if got := coreService.SystemPrompt(context.Background()); got != "paint in watercolor" {
		t.Errorf("expected rejected input not to be stored, got %q", got)
	}

	serve(e, httptest.NewRequest(http.MethodDelete, "/htmx/settings/system-prompt", nil))
	if got := coreService.SystemPrompt(context.Background()); got != settings.DefaultSystemPrompt {
		t.Errorf("expected default after reset, got %q", got)
	}
}

func TestIcon(t *testing.T) {
	e, _ := newTestServer(t, &stubGenerator{})

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/icon.svg", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "image/svg+xml" {
		t.Errorf("expected svg content type, got %q", ct)
	}
}
