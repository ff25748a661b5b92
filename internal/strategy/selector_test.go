package strategy

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-market-poster/internal/news"
	"ai-market-poster/internal/types"
)

type stubNews struct {
	story types.NewsStory
	err   error
}

func (s *stubNews) TopStory(_ context.Context, _ string) (types.NewsStory, error) {
	if s.err != nil {
		return types.NewsStory{}, s.err
	}
	return s.story, nil
}

type stubPrompts struct {
	err error
}

func (s *stubPrompts) BuildImagePrompt(title, summary, toneLabel, ticker string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return "prompt for " + title, "prompts/PROMPT_test_" + ticker + ".txt", nil
}

func writeTemplates(t *testing.T, body string) *TemplateStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market_content.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewTemplateStore(path)
}

const sampleTemplates = `{"templates":[
	{"title":"Dollar Cost Averaging","summary":"Invest fixed amounts on a schedule."},
	{"title":"What Is a Stop Loss","description":"An order that caps downside."},
	{"title":"Position Sizing","core_idea":"Risk a fixed fraction per trade."}
]}`

func newTestSelector(t *testing.T, newsSrc *stubNews, store *TemplateStore, seed int64) *Selector {
	t.Helper()
	if store == nil {
		store = NewTemplateStore(filepath.Join(t.TempDir(), "missing.json"))
	}
	return NewSelector(newsSrc, store, &stubPrompts{}, rand.New(rand.NewSource(seed)), 1.0, 0.3)
}

func TestBreakingNewsUpMove(t *testing.T) {
	newsSrc := &stubNews{story: types.NewsStory{
		Title:   "AAPL smashes expectations",
		Summary: "Shares surged after earnings.",
		URL:     "https://example.com/aapl",
	}}
	sel := newTestSelector(t, newsSrc, writeTemplates(t, sampleTemplates), 1)

	stat := types.MarketStat{Symbol: "AAPL", ChangePercent: 10.0, RawChange: 0.10, Price: 110}
	item := sel.Select(context.Background(), stat, true)

	if !strings.HasPrefix(item.Title, "🚨 ") {
		t.Errorf("Expected alert marker prefix, got %q", item.Title)
	}
	if ToneLabel(item.Tone) != ToneExcited {
		t.Errorf("Expected Excited tone for UP move, got %q", item.Tone)
	}
	if len(item.Tags) != 2 || item.Tags[0] != "AAPL" || item.Tags[1] != "MarketAlert" {
		t.Errorf("Expected tags [AAPL MarketAlert], got %v", item.Tags)
	}
	if item.URL != "https://example.com/aapl" {
		t.Errorf("Expected story URL carried through, got %q", item.URL)
	}
	if item.ImagePrompt == "" || item.PromptPath == "" {
		t.Error("Expected image prompt to be synthesized")
	}
}

func TestBreakingNewsDownMoveIsUrgent(t *testing.T) {
	newsSrc := &stubNews{story: types.NewsStory{Title: "TSLA slides", Summary: "Shares dropped."}}
	sel := newTestSelector(t, newsSrc, writeTemplates(t, sampleTemplates), 1)

	stat := types.MarketStat{Symbol: "TSLA", ChangePercent: 5.0, RawChange: -0.05, Price: 95}
	item := sel.Select(context.Background(), stat, true)

	if ToneLabel(item.Tone) != ToneUrgent {
		t.Errorf("Expected Urgent tone for DOWN move, got %q", item.Tone)
	}
}

func TestQuietMarketNeverEntersBreakingNews(t *testing.T) {
	newsSrc := &stubNews{story: types.NewsStory{Title: "should never be fetched"}}
	sel := newTestSelector(t, newsSrc, writeTemplates(t, sampleTemplates), 2)

	stat := types.MarketStat{Symbol: "AAPL", ChangePercent: 0.4, RawChange: 0.004, Price: 100.4}
	item := sel.Select(context.Background(), stat, true)

	if strings.HasPrefix(item.Title, "🚨") {
		t.Errorf("Expected educational item for quiet market, got %q", item.Title)
	}
	if len(item.Tags) != 2 || item.Tags[0] != "Investing" || item.Tags[1] != "Education" {
		t.Errorf("Expected educational tags, got %v", item.Tags)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	newsSrc := &stubNews{story: types.NewsStory{Title: "should never be fetched"}}
	sel := newTestSelector(t, newsSrc, writeTemplates(t, sampleTemplates), 2)

	// Exactly at the threshold stays educational.
	stat := types.MarketStat{Symbol: "SPY", ChangePercent: 1.0, RawChange: 0.01}
	item := sel.Select(context.Background(), stat, true)

	if strings.HasPrefix(item.Title, "🚨") {
		t.Error("changePercent equal to the threshold must not trigger breaking news")
	}
}

func TestEmptyScanIsEducational(t *testing.T) {
	sel := newTestSelector(t, &stubNews{err: news.ErrNoStory}, writeTemplates(t, sampleTemplates), 3)

	item := sel.Select(context.Background(), types.MarketStat{}, false)
	if strings.HasPrefix(item.Title, "🚨") {
		t.Error("Empty scan must never enter breaking-news mode")
	}
	if item.Title == "" || item.Summary == "" || len(item.Tags) == 0 {
		t.Errorf("Expected a complete item, got %+v", item)
	}
}

func TestNewsFailureMatchesEducationalOutput(t *testing.T) {
	const seed = 42
	store1 := writeTemplates(t, sampleTemplates)
	store2 := writeTemplates(t, sampleTemplates)

	failing := newTestSelector(t, &stubNews{err: errors.New("fetch failed")}, store1, seed)
	quiet := newTestSelector(t, &stubNews{story: types.NewsStory{Title: "unused"}}, store2, seed)

	volatile := types.MarketStat{Symbol: "NVDA", ChangePercent: 4.2, RawChange: 0.042}
	flat := types.MarketStat{Symbol: "NVDA", ChangePercent: 0.2, RawChange: 0.002}

	got := failing.Select(context.Background(), volatile, true)
	want := quiet.Select(context.Background(), flat, true)

	if got.Title != want.Title || got.Summary != want.Summary || got.Tone != want.Tone {
		t.Errorf("Breaking-news fallback must equal educational output:\n got %+v\nwant %+v", got, want)
	}
}

func TestStaticFallbackItem(t *testing.T) {
	sel := newTestSelector(t, &stubNews{err: errors.New("fetch failed")}, nil, 7)

	stat := types.MarketStat{Symbol: "COIN", ChangePercent: 8.0, RawChange: -0.08}
	item := sel.Select(context.Background(), stat, true)

	if item.Title != "Market Watch" {
		t.Errorf("Expected static fallback title, got %q", item.Title)
	}
	if item.Summary != "Staying patient in a flat market." {
		t.Errorf("Expected static fallback summary, got %q", item.Summary)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "Trading" {
		t.Errorf("Expected tags [Trading], got %v", item.Tags)
	}
}

func TestEducationalPromptFailureUsesStaticFallback(t *testing.T) {
	store := writeTemplates(t, sampleTemplates)
	sel := NewSelector(&stubNews{err: news.ErrNoStory}, store,
		&stubPrompts{err: errors.New("prompt dir unwritable")},
		rand.New(rand.NewSource(5)), 1.0, 0.3)

	item := sel.Select(context.Background(), types.MarketStat{}, false)

	if item.Title != "Market Watch" || item.Summary != "Staying patient in a flat market." {
		t.Errorf("Expected static fallback item, got %+v", item)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "Trading" {
		t.Errorf("Expected tags [Trading], got %v", item.Tags)
	}
	if item.ImagePrompt != "" || item.PromptPath != "" {
		t.Error("Static fallback must not carry an image prompt")
	}
}

func TestCasualToneFrequency(t *testing.T) {
	store := writeTemplates(t, sampleTemplates)
	sel := newTestSelector(t, &stubNews{err: news.ErrNoStory}, store, 99)

	const runs = 10000
	casual := 0
	for i := 0; i < runs; i++ {
		item := sel.Select(context.Background(), types.MarketStat{}, false)
		switch ToneLabel(item.Tone) {
		case ToneCasual:
			casual++
		case ToneProfessional:
		default:
			t.Fatalf("Unexpected educational tone %q", item.Tone)
		}
	}

	freq := float64(casual) / float64(runs)
	if freq < 0.27 || freq > 0.33 {
		t.Errorf("Expected casual frequency near 0.3, got %.3f", freq)
	}
}

func TestToneStyleLookup(t *testing.T) {
	if StyleFor(ToneUrgent) != "dramatic, urgent, breaking news, high impact, red theme" {
		t.Errorf("Unexpected Urgent style: %q", StyleFor(ToneUrgent))
	}
	if StyleFor("Bogus") != StyleFor(ToneProfessional) {
		t.Error("Unknown tone must fall back to Professional style")
	}
	if ToneLabel("Excited: The market is rallying! Write a high-energy update.") != ToneExcited {
		t.Error("ToneLabel must strip the directive")
	}
}

func TestTemplateSummaryResolution(t *testing.T) {
	cases := []struct {
		tpl  Template
		want string
	}{
		{Template{Summary: "a"}, "a"},
		{Template{Description: "b"}, "b"},
		{Template{CoreIdea: "c"}, "c"},
		{Template{}, "Educational content"},
	}
	for _, tc := range cases {
		if got := tc.tpl.SummaryText(); got != tc.want {
			t.Errorf("SummaryText() = %q, want %q", got, tc.want)
		}
	}
}

func TestTemplateStoreUnreadable(t *testing.T) {
	store := NewTemplateStore(filepath.Join(t.TempDir(), "nope.json"))
	if _, ok := store.Pick(rand.New(rand.NewSource(1))); ok {
		t.Error("Expected Pick to fail for a missing file")
	}

	bad := writeTemplates(t, `not json`)
	if _, ok := bad.Pick(rand.New(rand.NewSource(1))); ok {
		t.Error("Expected Pick to fail for malformed JSON")
	}

	empty := writeTemplates(t, `{"templates":[]}`)
	if _, ok := empty.Pick(rand.New(rand.NewSource(1))); ok {
		t.Error("Expected Pick to fail for an empty collection")
	}
}
