package strategy

import (
	"context"
	"math/rand"

	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/trace"
	"ai-market-poster/internal/types"
)

// PromptSynthesizer turns content fields into a persisted image prompt.
type PromptSynthesizer interface {
	BuildImagePrompt(title, summary, toneLabel, ticker string) (promptText, promptPath string, err error)
}

// Selector decides the narrative mode for a run: breaking market news when
// the scan shows a significant move, educational filler otherwise. It never
// fails; every tier degrades to the next one down.
type Selector struct {
	news      interfaces.NewsSource
	templates *TemplateStore
	prompts   PromptSynthesizer
	rng       *rand.Rand

	threshold  float64
	casualProb float64
}

// NewSelector wires the selector. rng is injected so tests control the
// casual-tone draw and template choice.
func NewSelector(news interfaces.NewsSource, templates *TemplateStore, prompts PromptSynthesizer, rng *rand.Rand, threshold, casualProb float64) *Selector {
	return &Selector{
		news:       news,
		templates:  templates,
		prompts:    prompts,
		rng:        rng,
		threshold:  threshold,
		casualProb: casualProb,
	}
}

// Select produces exactly one ContentItem for this run.
func (s *Selector) Select(ctx context.Context, stat types.MarketStat, hasStats bool) types.ContentItem {
	ctx, span := trace.StartSpan(ctx, "strategy.Select")
	defer span.End()

	targetTicker := "SPY"
	changePct := 0.0
	if hasStats {
		targetTicker = stat.Symbol
		changePct = stat.ChangePercent
	}

	if hasStats && stat.ChangePercent > s.threshold {
		if item, ok := s.selectBreakingNews(ctx, stat); ok {
			logger.Post(ctx, stat.Symbol, "breaking-news", ToneLabel(item.Tone), item.Title, stat.ChangePercent)
			return item
		}
		// News fetch came up empty; this is a deliberate fallback, not an error.
	}

	logger.Info(ctx, "Market is quiet, synthesizing educational content", "change_pct", changePct)

	item := s.selectEducational(ctx)
	logger.Post(ctx, targetTicker, "educational", ToneLabel(item.Tone), item.Title, changePct)
	return item
}

// selectBreakingNews builds the high-volatility item: live news for the hot
// ticker with a direction-matched tone.
func (s *Selector) selectBreakingNews(ctx context.Context, stat types.MarketStat) (types.ContentItem, bool) {
	direction := "DOWN"
	tone := toneDirectives[ToneUrgent]
	if stat.RawChange > 0 {
		direction = "UP"
		tone = toneDirectives[ToneExcited]
	}

	logger.Info(ctx, "Hot ticker detected",
		"symbol", stat.Symbol,
		"direction", direction,
		"change_pct", stat.ChangePercent)

	story, err := s.news.TopStory(ctx, stat.Symbol)
	if err != nil {
		logger.Warn(ctx, "News fetch failed, falling back to educational", "symbol", stat.Symbol, "error", err)
		return types.ContentItem{}, false
	}

	promptText, promptPath, err := s.prompts.BuildImagePrompt(story.Title, story.Summary, ToneLabel(tone), stat.Symbol)
	if err != nil {
		logger.Warn(ctx, "Image prompt synthesis failed, falling back to educational", "error", err)
		return types.ContentItem{}, false
	}

	return types.ContentItem{
		Title:       "🚨 " + story.Title,
		Summary:     story.Summary,
		URL:         story.URL,
		Tags:        []string{stat.Symbol, "MarketAlert"},
		Tone:        tone,
		ImagePrompt: promptText,
		PromptPath:  promptPath,
	}, true
}

// selectEducational picks a random template; an empty or unreadable store
// degrades to the static fallback item.
func (s *Selector) selectEducational(ctx context.Context) types.ContentItem {
	tone := toneDirectives[ToneProfessional]
	if s.rng.Float64() < s.casualProb {
		tone = toneDirectives[ToneCasual]
	}

	tpl, ok := s.templates.Pick(s.rng)
	if !ok {
		logger.Warn(ctx, "Template store empty or unreadable, using static fallback")
		return staticFallbackItem(tone)
	}

	promptText, promptPath, err := s.prompts.BuildImagePrompt(tpl.Title, tpl.SummaryText(), ToneLabel(tone), "Education")
	if err != nil {
		logger.Warn(ctx, "Image prompt synthesis failed for educational item, using static fallback", "error", err)
		return staticFallbackItem(tone)
	}

	return types.ContentItem{
		Title:       tpl.Title,
		Summary:     tpl.SummaryText(),
		Tags:        []string{"Investing", "Education"},
		Tone:        tone,
		ImagePrompt: promptText,
		PromptPath:  promptPath,
	}
}

// staticFallbackItem is the item of last resort; it carries no image prompt.
func staticFallbackItem(tone string) types.ContentItem {
	return types.ContentItem{
		Title:   "Market Watch",
		Summary: "Staying patient in a flat market.",
		Tags:    []string{"Trading"},
		Tone:    tone,
	}
}
