package market

import (
	"context"
	"math"

	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/trace"
	"ai-market-poster/internal/types"
)

// Scanner finds the most significant mover across a fixed watchlist.
type Scanner struct {
	quotes interfaces.QuoteSource
}

// NewScanner creates a volatility scanner over the given quote source.
func NewScanner(quotes interfaces.QuoteSource) *Scanner {
	return &Scanner{quotes: quotes}
}

// Scan fetches a snapshot per symbol and returns the biggest mover.
// Symbols with a missing or non-positive previous close are skipped.
// ok is false when no symbol yields a valid reading; callers must treat
// that as "market is flat".
func (s *Scanner) Scan(ctx context.Context, symbols []string) (types.MarketStat, bool) {
	ctx, span := trace.StartSpan(ctx, "market.Scan")
	defer span.End()

	logger.Info(ctx, "Analyzing market context", "symbols", len(symbols))

	var best types.MarketStat
	maxChange := -1.0

	for _, symbol := range symbols {
		snap, err := s.quotes.Snapshot(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Snapshot unavailable, skipping symbol", "symbol", symbol, "error", err)
			continue
		}
		if snap.PreviousClose <= 0 {
			logger.Debug(ctx, "No previous close, skipping symbol", "symbol", symbol)
			continue
		}

		raw := (snap.LastPrice - snap.PreviousClose) / snap.PreviousClose
		changePct := math.Abs(raw) * 100

		// Strict > keeps the first-seen maximum on ties.
		if changePct > maxChange {
			maxChange = changePct
			best = types.MarketStat{
				Symbol:        symbol,
				ChangePercent: changePct,
				RawChange:     raw,
				Price:         snap.LastPrice,
			}
		}
	}

	if maxChange < 0 {
		logger.Warn(ctx, "Market scan produced no valid readings")
		return types.MarketStat{}, false
	}

	logger.Info(ctx, "Market scan completed",
		"top_symbol", best.Symbol,
		"change_pct", best.ChangePercent,
		"price", best.Price)
	return best, true
}
