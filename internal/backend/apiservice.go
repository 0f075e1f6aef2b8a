package backend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/goimagine/internal/backend/history"
	"github.com/jo-hoe/goimagine/internal/backend/relay"
	"github.com/jo-hoe/goimagine/internal/core"
)

const (
	msgInvalidBody      = "Prompt is required and must be a string"
	msgMethodNotAllowed = "Method not allowed. Use POST to generate images."
)

type APIService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

type generateRequest struct {
	Prompt     string `json:"prompt"`
	Dimensions string `json:"dimensions"`
	Style      string `json:"style"`
}

type generateResponse struct {
	Success        bool   `json:"success"`
	ImageURL       string `json:"imageUrl,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
	EnhancedPrompt string `json:"enhancedPrompt,omitempty"`
	Dimensions     string `json:"dimensions,omitempty"`
	Style          string `json:"style,omitempty"`
	Error          string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type addHistoryRequest struct {
	Prompt     string `json:"prompt" validate:"notblank,max=1000"`
	ImageURL   string `json:"imageUrl" validate:"notblank"`
	Dimensions string `json:"dimensions"`
	Style      string `json:"style"`
}

type systemPromptPayload struct {
	SystemPrompt string `json:"systemPrompt" validate:"notblank"`
}

type presetsResponse struct {
	Styles     []relay.Preset `json:"styles"`
	Dimensions []relay.Preset `json:"dimensions"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
		config:      config,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.GET("/probe", s.probeHandler)

	e.POST("/api/generate", s.generateHandler)
	e.Match([]string{
		http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead,
		http.MethodTrace, http.MethodConnect,
	}, "/api/generate", s.methodNotAllowedHandler)

	e.GET("/api/history", s.listHistoryHandler)
	e.POST("/api/history", s.addHistoryHandler)
	e.DELETE("/api/history", s.clearHistoryHandler)
	e.DELETE("/api/history/:id", s.removeHistoryHandler)

	e.GET("/api/settings/system-prompt", s.getSystemPromptHandler)
	e.PUT("/api/settings/system-prompt", s.setSystemPromptHandler)
	e.DELETE("/api/settings/system-prompt", s.resetSystemPromptHandler)

	e.GET("/api/presets", s.presetsHandler)
}

func (s *APIService) probeHandler(ctx echo.Context) error {
	if err := s.coreService.Ping(ctx.Request().Context()); err != nil {
		slog.Error("probeHandler: storage not reachable", "status", http.StatusServiceUnavailable, "error", err)
		return ctx.String(http.StatusServiceUnavailable, "storage not reachable")
	}
	return ctx.String(http.StatusOK, "API Service is running")
}

func (s *APIService) generateHandler(ctx echo.Context) error {
	// The body is JSON whatever the Content-Type header says.
	var req generateRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
		slog.Warn("generateHandler: failed to decode request body", "status", http.StatusBadRequest, "error", err)
		return ctx.JSON(http.StatusBadRequest, generateResponse{Error: msgInvalidBody})
	}

	result, err := s.coreService.Generate(ctx.Request().Context(), relay.Request{
		Prompt:     req.Prompt,
		Dimensions: req.Dimensions,
		Style:      req.Style,
	})

	var validationErr *relay.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return ctx.JSON(http.StatusBadRequest, generateResponse{Error: validationErr.Message})
	case err != nil:
		return ctx.JSON(http.StatusInternalServerError, generateResponse{Error: err.Error()})
	}

	return ctx.JSON(http.StatusOK, generateResponse{
		Success:        true,
		ImageURL:       result.ImageURL,
		Prompt:         result.Prompt,
		EnhancedPrompt: result.EnhancedPrompt,
		Dimensions:     result.Dimensions,
		Style:          result.Style,
	})
}

func (s *APIService) methodNotAllowedHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
}

func (s *APIService) listHistoryHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, s.coreService.SearchHistory(ctx.Request().Context(), ctx.QueryParam("q")))
}

func (s *APIService) addHistoryHandler(ctx echo.Context) error {
	var req addHistoryRequest
	if err := ctx.Bind(&req); err != nil {
		slog.Warn("addHistoryHandler: failed to bind request body", "status", http.StatusBadRequest, "error", err)
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
	}

	image := s.coreService.AddToHistory(ctx.Request().Context(), history.NewImage{
		Prompt:     req.Prompt,
		ImageURL:   req.ImageURL,
		Dimensions: req.Dimensions,
		Style:      req.Style,
	})
	return ctx.JSON(http.StatusCreated, image)
}

func (s *APIService) removeHistoryHandler(ctx echo.Context) error {
	s.coreService.RemoveFromHistory(ctx.Request().Context(), ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) clearHistoryHandler(ctx echo.Context) error {
	s.coreService.ClearHistory(ctx.Request().Context())
	return ctx.NoContent(http.StatusNoContent)
}

func (s *APIService) getSystemPromptHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, systemPromptPayload{
		SystemPrompt: s.coreService.SystemPrompt(ctx.Request().Context()),
	})
}

func (s *APIService) setSystemPromptHandler(ctx echo.Context) error {
	var req systemPromptPayload
	if err := ctx.Bind(&req); err != nil {
		slog.Warn("setSystemPromptHandler: failed to bind request body", "status", http.StatusBadRequest, "error", err)
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := ctx.Validate(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
	}

	return ctx.JSON(http.StatusOK, systemPromptPayload{
		SystemPrompt: s.coreService.SetSystemPrompt(ctx.Request().Context(), req.SystemPrompt),
	})
}

func (s *APIService) resetSystemPromptHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, systemPromptPayload{
		SystemPrompt: s.coreService.ResetSystemPrompt(ctx.Request().Context()),
	})
}

func (s *APIService) presetsHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, presetsResponse{
		Styles:     relay.Styles(),
		Dimensions: relay.Dimensions(),
	})
}

func validationMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
