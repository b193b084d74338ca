package sentiment

import "testing"

func TestCleanCompletionLabel(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"positive", "positive"},
		{"Positive.", "positive"},
		{"  NEGATIVE\n", "negative"},
		{"\"neutral\"", "neutral"},
		{"neutral - the text is factual", "neutral"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanCompletionLabel(tt.content); got != tt.want {
			t.Errorf("CleanCompletionLabel(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
