package news

import (
	"context"
	"errors"

	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/types"
)

// ChainSource tries each underlying source in order and returns the first story.
type ChainSource struct {
	sources []interfaces.NewsSource
}

// NewChainSource builds a source chain; order matters.
func NewChainSource(sources ...interfaces.NewsSource) *ChainSource {
	return &ChainSource{sources: sources}
}

// NewDefaultChain is the production chain: Yahoo Finance first, Google News fallback.
func NewDefaultChain() *ChainSource {
	return NewChainSource(
		NewYahooNewsSource(),
		NewGoogleNewsSource(0),
	)
}

// TopStory returns the first story any source yields. ErrNoStory when all
// sources come up empty; other errors are logged per source and do not stop
// the chain.
func (c *ChainSource) TopStory(ctx context.Context, symbol string) (types.NewsStory, error) {
	for _, source := range c.sources {
		story, err := source.TopStory(ctx, symbol)
		if err == nil {
			return story, nil
		}
		if !errors.Is(err, ErrNoStory) {
			logger.Warn(ctx, "News source failed, trying next", "symbol", symbol, "error", err)
		}
	}
	return types.NewsStory{}, ErrNoStory
}
