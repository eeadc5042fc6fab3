package prompt

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// CountTokens estimates the token count of text as word count plus
// punctuation-character count. This is a deliberately crude proxy kept for
// behavioral compatibility, not a real tokenizer.
func CountTokens(text string) int {
	fields := strings.Fields(text)
	punctuation := 0
	for _, r := range strings.Join(fields, " ") {
		switch r {
		case '.', ',', '!', '?', ';', ':', '(', ')', '[', ']', '{', '}', '\'', '"':
			punctuation++
		}
	}
	return len(fields) + punctuation
}

// ValidateTokens rejects prompts whose estimated token count exceeds max.
func ValidateTokens(text string, max int) error {
	count := CountTokens(text)
	if count > max {
		return domain.NewValidationError(
			fmt.Sprintf("Prompt exceeds maximum token limit of %d. Current: %d tokens", max, count))
	}
	return nil
}
