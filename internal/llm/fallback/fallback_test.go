package fallback

import (
	"context"
	"strings"
	"testing"

	"ai-market-poster/internal/types"
)

func TestComposeIsDeterministic(t *testing.T) {
	item := types.ContentItem{
		Title:   "Market Watch",
		Summary: "Staying patient in a flat market.",
		URL:     "https://example.com/story",
	}
	tags := []string{"Trading", "Investing"}

	c := NewComposer()
	v1, err := c.Compose(context.Background(), item, tags, "Professional")
	if err != nil {
		t.Fatal(err)
	}
	v2, _ := c.Compose(context.Background(), item, tags, "Casual")

	if v1 != v2 {
		t.Error("Fallback composer must be deterministic regardless of tone")
	}
	if v1.X != v1.Facebook || v1.X != v1.LinkedIn {
		t.Error("Fallback uses the same message for every platform")
	}

	msg := v1.Facebook
	for _, want := range []string{
		"📈 Market Watch",
		"Staying patient in a flat market.",
		"Read more: https://example.com/story",
		"#Trading #Investing",
		"DISCLAIMER",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatMessageOmitsEmptyLink(t *testing.T) {
	msg := FormatMessage(types.ContentItem{Title: "T", Summary: "S"}, []string{"Trading"})
	if strings.Contains(msg, "Read more") {
		t.Error("Empty URL must not produce a Read more line")
	}
}

func TestHashtagLine(t *testing.T) {
	if got := HashtagLine([]string{"AAPL", "MarketAlert"}); got != "#AAPL #MarketAlert" {
		t.Errorf("HashtagLine = %q", got)
	}
	if got := HashtagLine(nil); got != "" {
		t.Errorf("HashtagLine(nil) = %q", got)
	}
}
