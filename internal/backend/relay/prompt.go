package relay

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxPromptLength = 1000

	qualitySuffix = ", high quality, detailed, professional photography"

	msgPromptRequired = "Prompt is required and must be a string"
	msgPromptTooLong  = "Prompt must be less than 1000 characters"
)

// ValidatePrompt rejects empty prompts and prompts longer than MaxPromptLength
// characters. Whitespace-only prompts are accepted.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return &ValidationError{Message: msgPromptRequired}
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return &ValidationError{Message: msgPromptTooLong}
	}
	return nil
}

// EnhancePrompt appends the quality suffix and, when given, an aspect ratio clause.
func EnhancePrompt(prompt, dimensions string) string {
	enhanced := strings.TrimSpace(prompt) + qualitySuffix
	if dimensions != "" {
		enhanced += ", " + dimensions + " aspect ratio"
	}
	return enhanced
}
