package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ai-market-poster/internal/api"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/types"
)

// ErrNoStory is returned when a source has no story for a symbol.
// Callers treat it as "nothing to report", not as a failure.
var ErrNoStory = errors.New("no story available")

const yahooSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"

// YahooNewsSource fetches the most recent story for a ticker from the
// Yahoo Finance search API.
type YahooNewsSource struct {
	client *api.Client
}

// NewYahooNewsSource creates a news source backed by the shared API client.
func NewYahooNewsSource() *YahooNewsSource {
	return &YahooNewsSource{
		client: api.NewClient(
			api.WithTimeout(15*time.Second),
			api.WithLogging(true),
		),
	}
}

type yahooSearchResponse struct {
	News []struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		Publisher string `json:"publisher"`
	} `json:"news"`
}

// TopStory returns the most recent story for the symbol. The top story is
// the most relevant one for a hot mover.
func (y *YahooNewsSource) TopStory(ctx context.Context, symbol string) (types.NewsStory, error) {
	u := fmt.Sprintf("%s?q=%s&newsCount=5&quotesCount=0", yahooSearchURL, url.QueryEscape(symbol))

	resp, err := y.client.GET(ctx, u, api.YahooFinanceHeaders())
	if err != nil {
		return types.NewsStory{}, fmt.Errorf("yahoo news fetch for %s: %w", symbol, err)
	}

	var parsed yahooSearchResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return types.NewsStory{}, fmt.Errorf("yahoo news parse for %s: %w", symbol, err)
	}
	if len(parsed.News) == 0 {
		return types.NewsStory{}, ErrNoStory
	}

	top := parsed.News[0]
	story := types.NewsStory{
		Title:   strings.TrimSpace(top.Title),
		Summary: y.fetchSummary(ctx, top.Link),
		URL:     top.Link,
	}
	if story.Title == "" {
		story.Title = fmt.Sprintf("Huge Move in %s", symbol)
	}
	if story.Summary == "" {
		story.Summary = fmt.Sprintf("%s is seeing major volatility today.", symbol)
	}

	return story, nil
}

// fetchSummary pulls the article page and extracts its description meta tag.
// Best effort; an empty string falls back to a stock summary line.
func (y *YahooNewsSource) fetchSummary(ctx context.Context, articleURL string) string {
	if articleURL == "" {
		return ""
	}

	resp, err := y.client.GET(ctx, articleURL, api.BrowserHeaders())
	if err != nil {
		logger.Debug(ctx, "Article summary fetch failed", "url", articleURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return ""
	}

	return extractDescription(doc)
}

// extractDescription reads the page description from meta tags, falling back
// to the first substantial paragraph.
func extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
	} {
		if desc, ok := doc.Find(selector).Attr("content"); ok {
			if trimmed := strings.TrimSpace(desc); trimmed != "" {
				return trimmed
			}
		}
	}

	var para string
	doc.Find("article p, div.article-body p, p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 60 {
			para = text
			return false
		}
		return true
	})
	return para
}
