package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-market-poster/internal/archive"
	"ai-market-poster/internal/store"
	"ai-market-poster/internal/types"
)

type fakeScanner struct {
	stat types.MarketStat
	ok   bool
}

func (f *fakeScanner) Scan(ctx context.Context, symbols []string) (types.MarketStat, bool) {
	return f.stat, f.ok
}

type fakeSelector struct {
	item types.ContentItem
}

func (f *fakeSelector) Select(ctx context.Context, stat types.MarketStat, hasStats bool) types.ContentItem {
	return f.item
}

type fakeComposer struct {
	variants types.PostVariants
	err      error
	calls    int
}

func (f *fakeComposer) Compose(ctx context.Context, item types.ContentItem, tags []string, tone string) (types.PostVariants, error) {
	f.calls++
	return f.variants, f.err
}

type fakeImages struct {
	path string
	err  error
}

func (f *fakeImages) Generate(ctx context.Context, prompt, tone string) (string, error) {
	return f.path, f.err
}

type fakePublisher struct {
	postID string
	err    error
	calls  int
	gotMsg string
	gotImg string
}

func (f *fakePublisher) Publish(ctx context.Context, message, imagePath string) (string, error) {
	f.calls++
	f.gotMsg = message
	f.gotImg = imagePath
	if f.err != nil {
		return "", f.err
	}
	return f.postID, nil
}

type fakeNotifier struct {
	calls      int
	gotSubject string
}

func (f *fakeNotifier) Send(ctx context.Context, subject, body, attachmentPath string) error {
	f.calls++
	f.gotSubject = subject
	return nil
}

func testConfig() *store.Config {
	cfg := store.DefaultConfig()
	cfg.Image.Enabled = true
	return cfg
}

func breakingItem() types.ContentItem {
	return types.ContentItem{
		Title:       "🚨 NVDA Rips Higher",
		Summary:     "Chips lead the rally.",
		Tags:        []string{"NVDA", "MarketAlert"},
		Tone:        "Excited: The market is rallying! Write a high-energy update.",
		ImagePrompt: "a chart going up",
	}
}

func TestRunHappyPath(t *testing.T) {
	comp := &fakeComposer{variants: types.PostVariants{
		X:        "x",
		LinkedIn: "li",
		Facebook: "NVDA is ripping. #NVDA #MarketAlert",
	}}
	pub := &fakePublisher{postID: "123_456"}
	notif := &fakeNotifier{}
	journal := archive.New(t.TempDir())

	o := New(testConfig(),
		&fakeScanner{ok: true},
		&fakeSelector{item: breakingItem()},
		nil,
		comp,
		&fakeImages{path: "/out/img.png"},
		pub,
		notif,
		journal,
	)

	res, err := o.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Published || res.PostID != "123_456" {
		t.Errorf("Expected a published result, got %+v", res)
	}
	if pub.gotImg != "/out/img.png" {
		t.Errorf("Publisher got image %q", pub.gotImg)
	}
	if !strings.Contains(pub.gotMsg, "DISCLAIMER") {
		t.Error("Published message must carry the disclaimer")
	}
	if notif.calls != 1 || !strings.Contains(notif.gotSubject, "NVDA Rips Higher") {
		t.Errorf("Notifier not invoked correctly: %+v", notif)
	}

	recs, err := journal.ReadJournal()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Title != "🚨 NVDA Rips Higher" {
		t.Errorf("Journal record wrong: %+v", recs)
	}
}

// orderedPublisher records when publishing happens relative to the other
// stages and checks the content was already archived.
type orderedPublisher struct {
	events  *[]string
	journal *archive.Archive
	t       *testing.T
}

func (p *orderedPublisher) Publish(ctx context.Context, message, imagePath string) (string, error) {
	recs, err := p.journal.ReadJournal()
	if err != nil {
		p.t.Fatal(err)
	}
	if len(recs) != 1 {
		p.t.Errorf("Publish ran before the content was archived: %d records", len(recs))
	}
	*p.events = append(*p.events, "publish")
	return "1_2", nil
}

type orderedNotifier struct {
	events *[]string
}

func (n *orderedNotifier) Send(ctx context.Context, subject, body, attachmentPath string) error {
	*n.events = append(*n.events, "notify")
	return nil
}

func TestRunArchivesAndNotifiesBeforePublishing(t *testing.T) {
	journal := archive.New(t.TempDir())
	var events []string
	pub := &orderedPublisher{events: &events, journal: journal, t: t}
	notif := &orderedNotifier{events: &events}

	o := New(testConfig(),
		&fakeScanner{},
		&fakeSelector{item: breakingItem()},
		nil,
		&fakeComposer{variants: types.PostVariants{Facebook: "msg"}},
		nil, pub, notif, journal,
	)

	if _, err := o.Run(context.Background(), Options{}); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0] != "notify" || events[1] != "publish" {
		t.Errorf("Expected archive, notify, then publish; got %v", events)
	}
}

func TestRunDryRunSkipsPublish(t *testing.T) {
	cfg := testConfig()
	cfg.DryRun = true
	pub := &fakePublisher{postID: "never"}

	o := New(cfg,
		&fakeScanner{},
		&fakeSelector{item: breakingItem()},
		nil,
		&fakeComposer{variants: types.PostVariants{Facebook: "msg"}},
		nil, pub, nil,
		archive.New(t.TempDir()),
	)

	res, err := o.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Published || pub.calls != 0 {
		t.Error("Dry run must never reach the page API")
	}
}

func TestRunSkipPublishFlag(t *testing.T) {
	pub := &fakePublisher{}
	o := New(testConfig(),
		&fakeScanner{},
		&fakeSelector{item: breakingItem()},
		nil,
		&fakeComposer{variants: types.PostVariants{Facebook: "msg"}},
		nil, pub, nil, nil,
	)

	res, err := o.Run(context.Background(), Options{SkipPublish: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Published || pub.calls != 0 {
		t.Error("SkipPublish must never reach the page API")
	}
}

func TestRunFallsBackWhenComposerFails(t *testing.T) {
	comp := &fakeComposer{err: errors.New("rate limited")}
	pub := &fakePublisher{postID: "1_2"}

	o := New(testConfig(),
		&fakeScanner{},
		&fakeSelector{item: breakingItem()},
		nil,
		comp,
		nil, pub, nil, nil,
	)

	res, err := o.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"🚨 NVDA Rips Higher", "#NVDA #MarketAlert", "DISCLAIMER"} {
		if !strings.Contains(res.Message, want) {
			t.Errorf("Fallback message missing %q:\n%s", want, res.Message)
		}
	}
}

func TestRunContinuesWithoutImage(t *testing.T) {
	pub := &fakePublisher{postID: "1_2"}
	o := New(testConfig(),
		&fakeScanner{},
		&fakeSelector{item: breakingItem()},
		nil,
		&fakeComposer{variants: types.PostVariants{Facebook: "msg"}},
		&fakeImages{err: errors.New("image API down")},
		pub, nil, nil,
	)

	res, err := o.Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.ImagePath != "" {
		t.Error("Failed image generation must clear the image path")
	}
	if pub.gotImg != "" {
		t.Error("Publisher must receive a text-only post")
	}
}

func TestRunPublishFailureStillArchives(t *testing.T) {
	journal := archive.New(t.TempDir())
	pub := &fakePublisher{err: errors.New("HTTP 400")}

	o := New(testConfig(),
		&fakeScanner{},
		&fakeSelector{item: breakingItem()},
		nil,
		&fakeComposer{variants: types.PostVariants{Facebook: "msg"}},
		nil, pub, nil, journal,
	)

	_, err := o.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("Publish failure must surface as an error")
	}

	recs, jerr := journal.ReadJournal()
	if jerr != nil {
		t.Fatal(jerr)
	}
	if len(recs) != 1 {
		t.Fatalf("Run must archive even when publishing fails, got %d records", len(recs))
	}
}

type fakePrompts struct {
	calls int
}

func (f *fakePrompts) BuildImagePrompt(title, summary, toneLabel, ticker string) (string, string, error) {
	f.calls++
	return "prompt for " + title, "/prompts/p.txt", nil
}

func TestRunManualOverride(t *testing.T) {
	scanner := &fakeScanner{}
	comp := &fakeComposer{variants: types.PostVariants{Facebook: "msg"}}
	prompts := &fakePrompts{}

	o := New(testConfig(), scanner, &fakeSelector{}, prompts, comp, nil, nil, nil, nil)

	manual := &types.ContentItem{Title: "Earnings Preview", Summary: "What to watch this week."}
	res, err := o.Run(context.Background(), Options{Manual: manual})
	if err != nil {
		t.Fatal(err)
	}
	if res.Item.Title != "Earnings Preview" {
		t.Errorf("Manual item not used: %+v", res.Item)
	}
	if res.Item.Tone == "" || len(res.Item.Tags) == 0 {
		t.Error("Manual items must get a default tone and tags")
	}
	if prompts.calls != 1 || res.Item.ImagePrompt != "prompt for Earnings Preview" {
		t.Errorf("Manual items must get a synthesized image prompt: %+v", res.Item)
	}
	if res.Published {
		t.Error("No publisher configured, result must not claim publication")
	}
}
