package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/types"
)

// GoogleNewsSource scrapes Google News search results. It is the fallback
// when the primary API yields nothing for a symbol.
type GoogleNewsSource struct {
	timeout time.Duration
}

// NewGoogleNewsSource creates the fallback scraper.
func NewGoogleNewsSource(timeout time.Duration) *GoogleNewsSource {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &GoogleNewsSource{timeout: timeout}
}

// TopStory scrapes the first headline for the symbol from Google News.
func (g *GoogleNewsSource) TopStory(ctx context.Context, symbol string) (types.NewsStory, error) {
	var story types.NewsStory

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)
	c.SetRequestTimeout(g.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if story.Title != "" {
			return
		}

		title := strings.TrimSpace(e.ChildText("h3, h4"))
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}

		// Clean up Google News redirect URL
		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}

		story = types.NewsStory{
			Title:   title,
			Summary: fmt.Sprintf("%s is seeing major volatility today.", symbol),
			URL:     link,
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "Google News scraping error", "symbol", symbol, "url", r.Request.URL.String(), "error", err)
	})

	searchQuery := url.QueryEscape(symbol + " stock news")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return types.NewsStory{}, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	if story.Title == "" {
		return types.NewsStory{}, ErrNoStory
	}

	logger.Info(ctx, "Google News fallback produced a story", "symbol", symbol, "title", story.Title)
	return story, nil
}
