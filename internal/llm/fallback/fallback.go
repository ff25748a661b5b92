package fallback

import (
	"context"
	"fmt"
	"strings"

	"ai-market-poster/internal/types"
)

const disclaimer = "⚠️ DISCLAIMER: This content is for educational purposes only. Not financial advice. Always do your own research before making investment decisions."

// Composer is the deterministic template formatter used when the text
// generation backend is unavailable. The same message serves every platform.
type Composer struct{}

// NewComposer creates the fallback composer.
func NewComposer() *Composer {
	return &Composer{}
}

// Compose formats title, summary, link and hashtags with a fixed disclaimer.
func (c *Composer) Compose(_ context.Context, item types.ContentItem, tags []string, _ string) (types.PostVariants, error) {
	message := FormatMessage(item, tags)
	return types.PostVariants{
		X:        message,
		LinkedIn: message,
		Facebook: message,
	}, nil
}

// FormatMessage renders the manual post template.
func FormatMessage(item types.ContentItem, tags []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 %s\n\n%s\n", item.Title, item.Summary)
	if item.URL != "" {
		fmt.Fprintf(&sb, "\nRead more: %s\n", item.URL)
	}
	fmt.Fprintf(&sb, "\n%s\n\n%s", HashtagLine(tags), disclaimer)
	return sb.String()
}

// EnsureDisclaimer appends the standard disclaimer unless one is present.
func EnsureDisclaimer(message string) string {
	if strings.Contains(message, "DISCLAIMER") {
		return message
	}
	return message + "\n\n" + disclaimer
}

// HashtagLine renders tags as a single "#a #b" line.
func HashtagLine(tags []string) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}
