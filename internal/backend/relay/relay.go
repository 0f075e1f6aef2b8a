package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
)

// MaxTimeout is the hard upper bound for one generation.
const MaxTimeout = 300 * time.Second

type Request struct {
	Prompt     string
	Dimensions string
	Style      string
}

type Result struct {
	ImageURL       string
	Prompt         string
	EnhancedPrompt string
	Dimensions     string
	Style          string
}

// Relay validates and enhances a prompt and forwards it to the image
// generator exactly once. It keeps no state between calls.
type Relay struct {
	generator ImageGenerator
	timeout   time.Duration
}

// NewRelay returns a relay whose calls are bounded by timeout, clamped to (0, MaxTimeout].
func NewRelay(generator ImageGenerator, timeout time.Duration) *Relay {
	if timeout <= 0 || timeout > MaxTimeout {
		timeout = MaxTimeout
	}
	return &Relay{generator: generator, timeout: timeout}
}

func (r *Relay) Timeout() time.Duration {
	return r.timeout
}

// Generate returns a *ValidationError for rejected input and a
// *GenerationError for every downstream failure.
func (r *Relay) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ValidatePrompt(req.Prompt); err != nil {
		return nil, err
	}

	enhanced := EnhancePrompt(req.Prompt, req.Dimensions)
	slog.InfoContext(ctx, "relay: generating image", "enhanced_prompt", enhanced)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	imageURL, err := r.generator.GenerateImage(ctx, enhanced)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("request timed out after %s", r.timeout)
		}
		slog.ErrorContext(ctx, "relay: image generation failed",
			"error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, &GenerationError{Err: err}
	}
	if strings.TrimSpace(imageURL) == "" {
		slog.ErrorContext(ctx, "relay: empty image reference in response")
		return nil, &GenerationError{Err: ErrNoImageURL}
	}

	slog.InfoContext(ctx, "relay: image generated", "duration_ms", time.Since(start).Milliseconds())
	return &Result{
		ImageURL:       imageURL,
		Prompt:         req.Prompt,
		EnhancedPrompt: enhanced,
		Dimensions:     lo.Ternary(req.Dimensions != "", req.Dimensions, DefaultDimensions),
		Style:          lo.Ternary(req.Style != "", req.Style, DefaultStyle),
	}, nil
}
