package relay

import (
	"errors"
	"strings"
	"testing"
)

func TestEnhancePrompt_Scenario(t *testing.T) {
	got := EnhancePrompt("a red fox", "landscape")
	want := "a red fox, high quality, detailed, professional photography, landscape aspect ratio"
	if got != want {
		t.Errorf("EnhancePrompt() = %q, want %q", got, want)
	}
}

func TestEnhancePrompt_WithoutDimensions(t *testing.T) {
	got := EnhancePrompt("  a castle  ", "")
	want := "a castle, high quality, detailed, professional photography"
	if got != want {
		t.Errorf("EnhancePrompt() = %q, want %q", got, want)
	}
}

func TestEnhancePrompt_StartsWithTrimmedPromptAndHasSuffix(t *testing.T) {
	prompts := []string{
		"x",
		" leading space",
		"trailing space ",
		"\tunicode ünïcödé 🦊\n",
		strings.Repeat("a", MaxPromptLength),
		strings.Repeat("🦊", MaxPromptLength),
	}
	for _, p := range prompts {
		for _, dims := range []string{"", "1216x832", "wide"} {
			got := EnhancePrompt(p, dims)
			if !strings.HasPrefix(got, strings.TrimSpace(p)) {
				t.Errorf("EnhancePrompt(%q, %q) does not start with trimmed prompt", p, dims)
			}
			if !strings.Contains(got, qualitySuffix) {
				t.Errorf("EnhancePrompt(%q, %q) misses the quality suffix", p, dims)
			}
		}
	}
}

func TestValidatePrompt(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantMsg string
	}{
		{"empty", "", msgPromptRequired},
		{"whitespace only", "   \n\t", ""},
		{"single char", "a", ""},
		{"max length", strings.Repeat("a", MaxPromptLength), ""},
		{"max length multibyte", strings.Repeat("é", MaxPromptLength), ""},
		{"too long", strings.Repeat("a", MaxPromptLength+1), msgPromptTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePrompt(tt.prompt)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if vErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, vErr.Message)
			}
		})
	}
}

func TestPresetLookups(t *testing.T) {
	if v, ok := StyleDescriptor("scifi"); !ok || v != "sci-fi, futuristic, high-tech" {
		t.Errorf("StyleDescriptor(scifi) = %q, %v", v, ok)
	}
	if _, ok := StyleDescriptor("baroque"); ok {
		t.Error("expected unknown style to be reported as missing")
	}
	if v, ok := DimensionSize("landscape"); !ok || v != "1216x832" {
		t.Errorf("DimensionSize(landscape) = %q, %v", v, ok)
	}
	if len(Styles()) != 8 || len(Dimensions()) != 4 {
		t.Errorf("expected 8 styles and 4 dimensions, got %d and %d", len(Styles()), len(Dimensions()))
	}
}

func TestPresetsAreImmutable(t *testing.T) {
	styles := Styles()
	styles[0].Value = "changed"

	if v, _ := StyleDescriptor(styles[0].Key); v == "changed" {
		t.Error("expected mutation of returned slice not to affect the lookup table")
	}
}
