package genai

import (
	"time"

	"ai-market-poster/internal/api"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// newGeminiClient builds the shared HTTP client for the Gemini REST API.
// Generation calls can be slow, so the timeout is generous.
func newGeminiClient(apiKey string) *api.Client {
	return api.NewClient(
		api.WithBaseURL(geminiBaseURL),
		api.WithHeader("x-goog-api-key", apiKey),
		api.WithTimeout(120*time.Second),
		api.WithLogging(true),
	)
}

// sanitizePrefix keeps the leading alphanumeric run of a prompt for filenames.
func sanitizePrefix(prompt string, n int) string {
	if len(prompt) > n {
		prompt = prompt[:n]
	}
	out := make([]rune, 0, len(prompt))
	for _, r := range prompt {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ':
			out = append(out, '_')
		case r == '-' || r == '_':
			out = append(out, r)
		}
	}
	return string(out)
}
