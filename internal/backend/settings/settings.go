package settings

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jo-hoe/goimagine/internal/backend/storage"
)

const SystemPromptSlot = "system-prompt"

const DefaultSystemPrompt = `You are an AI image generation system. Create high-quality, detailed images based on user prompts. Focus on:
- Visual clarity and composition
- Appropriate lighting and colors
- Realistic proportions and details
- Professional quality output

Enhance the user's prompt while staying true to their intent.`

// Settings persists user-editable generation settings. The system prompt is
// stored JSON-encoded; a missing or corrupt slot reads as the default.
type Settings struct {
	kv storage.KeyValueStore
}

func NewSettings(kv storage.KeyValueStore) *Settings {
	return &Settings{kv: kv}
}

func (s *Settings) SystemPrompt(ctx context.Context) string {
	raw, err := s.kv.Get(ctx, SystemPromptSlot)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			slog.Warn("settings: failed to read system prompt, using default", "error", err)
		}
		return DefaultSystemPrompt
	}

	var prompt string
	if err := json.Unmarshal([]byte(raw), &prompt); err != nil {
		slog.Warn("settings: system prompt slot is corrupt, using default", "error", err)
		return DefaultSystemPrompt
	}
	return prompt
}

// SetSystemPrompt stores prompt and returns it. Write failures are logged only.
func (s *Settings) SetSystemPrompt(ctx context.Context, prompt string) string {
	data, err := json.Marshal(prompt)
	if err != nil {
		slog.Warn("settings: failed to encode system prompt", "error", err)
		return prompt
	}
	if err := s.kv.Set(ctx, SystemPromptSlot, string(data)); err != nil {
		slog.Warn("settings: failed to persist system prompt", "error", err)
	}
	return prompt
}

func (s *Settings) ResetSystemPrompt(ctx context.Context) string {
	return s.SetSystemPrompt(ctx, DefaultSystemPrompt)
}
