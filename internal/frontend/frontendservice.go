package frontend

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/jo-hoe/goimagine/internal/backend/history"
	"github.com/jo-hoe/goimagine/internal/backend/relay"
	"github.com/jo-hoe/goimagine/internal/core"
)

const (
	MainPageName = "index.html"

	// HistoryPageSize is the number of records rendered in the history list.
	HistoryPageSize = 20
)

var templateFuncs = template.FuncMap{
	"formatTimestamp": func(ms int64) string {
		return time.UnixMilli(ms).Format("2006-01-02 15:04")
	},
}

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

type indexData struct {
	Styles            []relay.Preset
	Dimensions        []relay.Preset
	DefaultStyle      string
	DefaultDimensions string
	PromptField       promptFieldData
	Settings          settingsData
	History           historyListData
}

type historyListData struct {
	Images    []history.GeneratedImage
	Truncated bool
	Query     string
	PageSize  int
}

type generationData struct {
	Image   *history.GeneratedImage
	Error   string
	History historyListData
}

type settingsData struct {
	SystemPrompt string
	Message      string
}

type promptFieldData struct {
	Prompt          string
	MaxPromptLength int
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

// rootRedirectHandler redirects root path to index.html
func (service *FrontendService) rootRedirectHandler(ctx echo.Context) error {
	return ctx.Redirect(http.StatusMovedPermanently, "/"+MainPageName)
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = newTemplate()

	e.GET("/", service.rootRedirectHandler) // Redirect root to index.html
	e.GET("/"+MainPageName, service.indexHandler)
	e.POST("/htmx/generate", service.htmxGenerateHandler)

	e.GET("/htmx/history", service.htmxListHistoryHandler)
	e.GET("/htmx/history/:id/reuse", service.htmxReusePromptHandler)
	e.DELETE("/htmx/history/:id", service.htmxDeleteHistoryHandler)
	e.DELETE("/htmx/history", service.htmxClearHistoryHandler)

	e.POST("/htmx/settings/system-prompt", service.htmxSaveSystemPromptHandler)
	e.DELETE("/htmx/settings/system-prompt", service.htmxResetSystemPromptHandler)

	// Favicon (SVG) route
	e.GET("/icon.svg", service.iconHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, MainPageName, indexData{
		Styles:            relay.Styles(),
		Dimensions:        relay.Dimensions(),
		DefaultStyle:      relay.DefaultStyle,
		DefaultDimensions: relay.DefaultDimensions,
		PromptField:       promptFieldData{MaxPromptLength: relay.MaxPromptLength},
		Settings:          settingsData{SystemPrompt: service.coreService.SystemPrompt(ctx.Request().Context())},
		History:           service.historyList(ctx, ""),
	})
}

func (service *FrontendService) htmxGenerateHandler(ctx echo.Context) error {
	req := core.UIRequest{
		Prompt:     ctx.FormValue("prompt"),
		Style:      ctx.FormValue("style"),
		Dimensions: ctx.FormValue("dimensions"),
	}

	image, err := service.coreService.GenerateAndRecord(ctx.Request().Context(), req)
	if err != nil {
		var validationErr *relay.ValidationError
		if errors.As(err, &validationErr) {
			slog.Warn("htmxGenerateHandler: rejected prompt", "error", err)
		} else {
			slog.Error("htmxGenerateHandler: failed to generate image",
				"error", err, "style", req.Style, "dimensions", req.Dimensions)
		}
		// The error is rendered into the page, so htmx must receive a 2xx response.
		return ctx.Render(http.StatusOK, "generation-result", generationData{Error: err.Error()})
	}

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "generation-response", generationData{
		Image:   &image,
		History: service.historyList(ctx, ""),
	})
}

func (service *FrontendService) htmxListHistoryHandler(ctx echo.Context) error {
	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "history-list", service.historyList(ctx, ctx.QueryParam("q")))
}

func (service *FrontendService) htmxReusePromptHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	image, found := lo.Find(service.coreService.History(ctx.Request().Context()), func(img history.GeneratedImage) bool {
		return img.ID == id
	})
	if !found {
		slog.Warn("htmxReusePromptHandler: history entry not found",
			"status", http.StatusNotFound, "image_id", id)
		return ctx.String(http.StatusNotFound, "History entry not found")
	}

	return ctx.Render(http.StatusOK, "prompt-field", promptFieldData{
		Prompt:          image.Prompt,
		MaxPromptLength: relay.MaxPromptLength,
	})
}

func (service *FrontendService) htmxDeleteHistoryHandler(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		slog.Warn("htmxDeleteHistoryHandler: missing image id",
			"status", http.StatusBadRequest,
			"route", "/htmx/history/:id")
		return ctx.String(http.StatusBadRequest, "Missing image ID")
	}

	service.coreService.RemoveFromHistory(ctx.Request().Context(), id)

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "history-list", service.historyList(ctx, ctx.QueryParam("q")))
}

func (service *FrontendService) htmxClearHistoryHandler(ctx echo.Context) error {
	service.coreService.ClearHistory(ctx.Request().Context())

	service.setNoCache(ctx)
	return ctx.Render(http.StatusOK, "history-list", service.historyList(ctx, ""))
}

func (service *FrontendService) htmxSaveSystemPromptHandler(ctx echo.Context) error {
	prompt := ctx.FormValue("systemPrompt")
	if err := ctx.Validate(&systemPromptForm{SystemPrompt: prompt}); err != nil {
		slog.Warn("htmxSaveSystemPromptHandler: rejected system prompt", "error", err)
		return ctx.Render(http.StatusOK, "settings-form", settingsData{
			SystemPrompt: service.coreService.SystemPrompt(ctx.Request().Context()),
			Message:      "System prompt must not be empty",
		})
	}

	saved := service.coreService.SetSystemPrompt(ctx.Request().Context(), prompt)
	return ctx.Render(http.StatusOK, "settings-form", settingsData{
		SystemPrompt: saved,
		Message:      "Saved",
	})
}

func (service *FrontendService) htmxResetSystemPromptHandler(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "settings-form", settingsData{
		SystemPrompt: service.coreService.ResetSystemPrompt(ctx.Request().Context()),
		Message:      "Reset to default",
	})
}

type systemPromptForm struct {
	SystemPrompt string `validate:"notblank"`
}

func (service *FrontendService) historyList(ctx echo.Context, query string) historyListData {
	images, truncated := history.Page(service.coreService.SearchHistory(ctx.Request().Context(), query), HistoryPageSize)
	return historyListData{
		Images:    images,
		Truncated: truncated,
		Query:     query,
		PageSize:  HistoryPageSize,
	}
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}
