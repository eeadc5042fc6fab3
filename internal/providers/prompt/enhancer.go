// Package prompt implements prompt validation and the deterministic
// enhancement applied before submitting to the model provider.
package prompt

import (
	"strings"

	"server/internal/domain"
)

const (
	// MinLength and MaxLength bound the cleaned prompt in characters.
	MinLength = 3
	MaxLength = 500

	// detailedThreshold marks prompts treated as already detailed;
	// enhancement leaves them untouched.
	detailedThreshold = 200
)

// Style names a suffix set appended during enhancement.
type Style string

const (
	StylePhotorealistic Style = "photorealistic"
	StyleCinematic      Style = "cinematic"
	StyleArtistic       Style = "artistic"
	StyleNone           Style = "none"
)

// Options keys the enhancement suffixes. MediaKind is "image" or "video".
type Options struct {
	Style     Style
	Quality   string
	MediaKind string
}

var denylist = []string{"nsfw", "nude", "explicit", "violence", "gore"}

var styleSuffixes = map[Style][]string{
	StylePhotorealistic: {
		"photorealistic",
		"highly detailed",
		"professional photography",
		"8k resolution",
		"sharp focus",
		"realistic lighting",
		"natural colors",
	},
	StyleCinematic: {
		"cinematic",
		"film quality",
		"dramatic lighting",
		"depth of field",
		"professional color grading",
		"high production value",
	},
	StyleArtistic: {
		"artistic",
		"creative composition",
		"vibrant colors",
		"professional quality",
	},
}

var qualitySuffixes = []string{"high quality", "masterpiece", "best quality"}

var videoSuffixes = []string{"smooth motion", "stable camera", "professional video quality"}

// ValidateAndClean trims and collapses whitespace, then enforces the
// length bounds and the denylist screen. The returned error, if any, is a
// non-retryable validation error.
func ValidateAndClean(raw string) (string, error) {
	cleaned := strings.Join(strings.Fields(raw), " ")

	if len(cleaned) < MinLength {
		return cleaned, domain.NewValidationError("Prompt is too short. Please provide more details.")
	}
	if len(cleaned) > MaxLength {
		return cleaned, domain.NewValidationError("Prompt is too long. Please keep it under 500 characters.")
	}

	lower := strings.ToLower(cleaned)
	for _, word := range denylist {
		if strings.Contains(lower, word) {
			return cleaned, domain.NewValidationError("Prompt contains inappropriate content.")
		}
	}
	return cleaned, nil
}

// Enhance appends the fixed style/quality/media suffixes to the prompt.
// Prompts longer than 200 characters are returned unchanged; they are
// treated as already detailed.
func Enhance(userPrompt string, opts Options) string {
	cleaned := strings.TrimSpace(userPrompt)
	if len(cleaned) > detailedThreshold {
		return cleaned
	}

	style := opts.Style
	if style == "" {
		style = StylePhotorealistic
	}
	quality := opts.Quality
	if quality == "" {
		quality = "high"
	}
	mediaKind := opts.MediaKind
	if mediaKind == "" {
		mediaKind = "image"
	}

	var suffixes []string
	suffixes = append(suffixes, styleSuffixes[style]...)
	if quality == "high" {
		suffixes = append(suffixes, qualitySuffixes...)
	}
	if mediaKind == "video" {
		suffixes = append(suffixes, videoSuffixes...)
	}
	if len(suffixes) == 0 {
		return cleaned
	}
	return cleaned + ", " + strings.Join(suffixes, ", ")
}

// NegativePrompt returns the fixed guidance describing what generations
// should avoid.
func NegativePrompt() string {
	return strings.Join([]string{
		"blurry", "low quality", "distorted", "deformed", "ugly",
		"bad anatomy", "watermark", "text", "signature", "cartoon",
		"anime", "illustration", "painting", "drawing", "art",
		"unrealistic", "artificial",
	}, ", ")
}

// Suggestions returns UI hints for details the prompt does not mention yet.
func Suggestions(basePrompt string) []string {
	lower := strings.ToLower(basePrompt)
	var out []string
	if !strings.Contains(lower, "lighting") {
		out = append(out, `Add lighting details (e.g., "golden hour lighting", "soft natural light")`)
	}
	if !strings.Contains(lower, "background") {
		out = append(out, "Describe the background or setting")
	}
	if !strings.Contains(lower, "camera") && !strings.Contains(lower, "angle") {
		out = append(out, `Specify camera angle (e.g., "wide angle shot", "close-up")`)
	}
	if !strings.Contains(lower, "color") {
		out = append(out, "Mention color palette or mood")
	}
	return out
}
