package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/jo-hoe/goimagine/internal/backend/history"
	"github.com/jo-hoe/goimagine/internal/backend/relay"
	"github.com/jo-hoe/goimagine/internal/backend/settings"
	"github.com/jo-hoe/goimagine/internal/backend/storage"
)

// CoreService composes the generation relay with the history store and the
// settings. The relay itself never touches persistence.
type CoreService struct {
	config   *ServiceConfig
	kv       storage.KeyValueStore
	history  *history.Store
	settings *settings.Settings
	relay    *relay.Relay
}

// UIRequest is a generation request as issued from a preset picker: the
// style and dimensions are preset keys.
type UIRequest struct {
	Prompt     string
	Style      string
	Dimensions string
}

func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	kv, err := getKeyValueStore(ctx, config)
	if err != nil {
		return nil, err
	}

	generator := relay.NewChatCompletionClient(relay.ClientConfig{
		BaseURL: config.Generator.BaseURL,
		Model:   config.Generator.Model,
		APIKey:  config.Generator.APIKey,
		Headers: config.Generator.Headers,
	})
	if config.Generator.APIKey == "" {
		slog.Warn("no generator api key configured, requests will be sent without bearer token")
	}

	return NewCoreServiceWith(ctx, config, kv, generator), nil
}

// NewCoreServiceWith wires the service around an existing store and generator.
func NewCoreServiceWith(ctx context.Context, config *ServiceConfig, kv storage.KeyValueStore, generator relay.ImageGenerator) *CoreService {
	return &CoreService{
		config:   config,
		kv:       kv,
		history:  history.NewStore(ctx, kv),
		settings: settings.NewSettings(kv),
		relay:    relay.NewRelay(generator, config.Generator.Timeout),
	}
}

func getKeyValueStore(ctx context.Context, config *ServiceConfig) (storage.KeyValueStore, error) {
	kv, err := storage.NewKeyValueStore(ctx, config.Storage.Type, config.Storage.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return kv, nil
}

// Generate performs one relay call. Nothing is recorded in the history.
func (service *CoreService) Generate(ctx context.Context, req relay.Request) (*relay.Result, error) {
	return service.relay.Generate(ctx, req)
}

// GenerateAndRecord resolves the preset keys, sends the prompt with the style
// descriptor appended and the dimension size, and on success records the raw
// prompt in the history.
func (service *CoreService) GenerateAndRecord(ctx context.Context, req UIRequest) (history.GeneratedImage, error) {
	styleKey := req.Style
	if styleKey == "" {
		styleKey = relay.DefaultStyle
	}
	descriptor, ok := relay.StyleDescriptor(styleKey)
	if !ok {
		return history.GeneratedImage{}, &relay.ValidationError{Message: fmt.Sprintf("Unknown style: %s", styleKey)}
	}

	dimensionKey := req.Dimensions
	if dimensionKey == "" {
		dimensionKey = relay.DefaultDimensions
	}
	size, ok := relay.DimensionSize(dimensionKey)
	if !ok {
		return history.GeneratedImage{}, &relay.ValidationError{Message: fmt.Sprintf("Unknown dimensions: %s", dimensionKey)}
	}

	if err := relay.ValidatePrompt(req.Prompt); err != nil {
		return history.GeneratedImage{}, err
	}

	result, err := service.relay.Generate(ctx, relay.Request{
		Prompt:     req.Prompt + ", " + descriptor,
		Dimensions: size,
	})
	if err != nil {
		return history.GeneratedImage{}, err
	}

	return service.history.Add(ctx, history.NewImage{
		Prompt:     req.Prompt,
		ImageURL:   result.ImageURL,
		Dimensions: size,
		Style:      styleKey,
	}), nil
}

// History re-reads the shared slot so changes made by other processes
// are visible, then returns the records newest first.
func (service *CoreService) History(ctx context.Context) []history.GeneratedImage {
	return service.history.Load(ctx)
}

func (service *CoreService) SearchHistory(ctx context.Context, query string) []history.GeneratedImage {
	service.history.Load(ctx)
	return service.history.Search(query)
}

func (service *CoreService) AddToHistory(ctx context.Context, image history.NewImage) history.GeneratedImage {
	return service.history.Add(ctx, image)
}

func (service *CoreService) RemoveFromHistory(ctx context.Context, id string) {
	service.history.Remove(ctx, id)
}

func (service *CoreService) ClearHistory(ctx context.Context) {
	service.history.Clear(ctx)
}

func (service *CoreService) SystemPrompt(ctx context.Context) string {
	return service.settings.SystemPrompt(ctx)
}

func (service *CoreService) SetSystemPrompt(ctx context.Context, prompt string) string {
	return service.settings.SetSystemPrompt(ctx, prompt)
}

func (service *CoreService) ResetSystemPrompt(ctx context.Context) string {
	return service.settings.ResetSystemPrompt(ctx)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the storage backend when it supports health checks.
func (service *CoreService) Ping(ctx context.Context) error {
	if p, ok := service.kv.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (service *CoreService) Close() error {
	var result error
	if err := service.kv.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close storage: %w", err))
	}
	return result
}
