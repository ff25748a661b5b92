package interfaces

import (
	"context"

	"ai-market-poster/internal/types"
)

// QuoteSource supplies last price and previous close per ticker symbol.
// Implementations may return partial data; callers skip unusable symbols.
type QuoteSource interface {
	Snapshot(ctx context.Context, symbol string) (types.TickerSnapshot, error)
}
