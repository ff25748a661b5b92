package interfaces

import (
	"context"

	"ai-market-poster/internal/types"
)

// Composer turns a content item into platform-specific post copy.
type Composer interface {
	Compose(ctx context.Context, item types.ContentItem, tags []string, tone string) (types.PostVariants, error)
}
