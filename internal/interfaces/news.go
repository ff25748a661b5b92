package interfaces

import (
	"context"

	"ai-market-poster/internal/types"
)

// NewsSource returns the most recent story for a symbol.
// A source with nothing to report returns an error rather than an empty story.
type NewsSource interface {
	TopStory(ctx context.Context, symbol string) (types.NewsStory, error)
}
