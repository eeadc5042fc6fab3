package prompt

import "testing"

func TestCountTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 1},
		{"hello world", 2},
		{"hello, world!", 4},
		{"a red fox (in snow).", 8},
	}
	for _, tt := range tests {
		if got := CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestValidateTokens(t *testing.T) {
	if err := ValidateTokens("one two three", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateTokens("one two three four", 3); err == nil {
		t.Fatalf("expected token limit error")
	}
}
