package market

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"ai-market-poster/internal/api"
	"ai-market-poster/internal/types"
)

const yahooChartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooQuoteSource fetches quote snapshots from the Yahoo Finance chart API.
type YahooQuoteSource struct {
	client *api.Client
}

// NewYahooQuoteSource creates a quote source backed by the shared API client.
func NewYahooQuoteSource() *YahooQuoteSource {
	return &YahooQuoteSource{
		client: api.NewClient(
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
	}
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Snapshot fetches the last price and previous close for one symbol.
func (y *YahooQuoteSource) Snapshot(ctx context.Context, symbol string) (types.TickerSnapshot, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=2d", yahooChartBaseURL, url.PathEscape(symbol))

	req := api.NewRequest("GET", u).WithContext(ctx)
	for k, v := range api.YahooFinanceHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := y.client.DoWithRetry(req, nil)
	if err != nil {
		return types.TickerSnapshot{}, fmt.Errorf("yahoo chart fetch for %s: %w", symbol, err)
	}

	var parsed yahooChartResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return types.TickerSnapshot{}, fmt.Errorf("yahoo chart parse for %s: %w", symbol, err)
	}
	if parsed.Chart.Error != nil {
		return types.TickerSnapshot{}, fmt.Errorf("yahoo chart error for %s: %s", symbol, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return types.TickerSnapshot{}, errors.New("yahoo chart: empty result for " + symbol)
	}

	meta := parsed.Chart.Result[0].Meta
	prev := meta.ChartPreviousClose
	if prev == 0 {
		prev = meta.PreviousClose
	}

	return types.TickerSnapshot{
		Symbol:        symbol,
		LastPrice:     meta.RegularMarketPrice,
		PreviousClose: prev,
	}, nil
}
