package orchestrator

import (
	"context"
	"strings"

	"ai-market-poster/internal/archive"
	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/llm/fallback"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/notify"
	"ai-market-poster/internal/store"
	"ai-market-poster/internal/strategy"
	"ai-market-poster/internal/trace"
	"ai-market-poster/internal/types"
)

// MarketScanner finds the biggest mover across the watchlist.
type MarketScanner interface {
	Scan(ctx context.Context, symbols []string) (types.MarketStat, bool)
}

// ContentSelector turns the scan result into exactly one content item.
type ContentSelector interface {
	Select(ctx context.Context, stat types.MarketStat, hasStats bool) types.ContentItem
}

// Options adjusts a single run.
type Options struct {
	// Manual overrides the scan-and-select pipeline with a caller-provided item.
	Manual *types.ContentItem
	// SkipPublish archives and notifies but never calls the page API.
	SkipPublish bool
}

// Result reports what a run produced.
type Result struct {
	Item      types.ContentItem
	Variants  types.PostVariants
	Message   string
	ImagePath string
	PostID    string
	Published bool
}

// Orchestrator drives one full content cycle: scan, select, illustrate,
// compose, archive, notify, publish. Every stage after selection degrades
// gracefully; only a publish failure surfaces as an error.
type Orchestrator struct {
	cfg      *store.Config
	scanner  MarketScanner
	selector ContentSelector
	prompts  strategy.PromptSynthesizer
	composer interfaces.Composer
	fallback interfaces.Composer
	images   interfaces.ImageGenerator
	pub      interfaces.Publisher
	notifier interfaces.Notifier
	journal  *archive.Archive
}

// New wires an orchestrator. prompts, images, pub and notifier may be nil
// when the matching credentials are absent; the run skips those stages.
func New(
	cfg *store.Config,
	scanner MarketScanner,
	selector ContentSelector,
	prompts strategy.PromptSynthesizer,
	composer interfaces.Composer,
	images interfaces.ImageGenerator,
	pub interfaces.Publisher,
	notifier interfaces.Notifier,
	journal *archive.Archive,
) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		scanner:  scanner,
		selector: selector,
		prompts:  prompts,
		composer: composer,
		fallback: fallback.NewComposer(),
		images:   images,
		pub:      pub,
		notifier: notifier,
		journal:  journal,
	}
}

// Run executes one content cycle.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (Result, error) {
	ctx, span := trace.StartSpan(ctx, "orchestrator.Run")
	defer span.End()

	timer := logger.StartOperation(ctx, "content_cycle", "dryRun", o.cfg.DryRun)
	ctx = timer.GetContext()

	item := o.selectItem(ctx, opts)
	o.ensurePrompt(ctx, &item)
	imagePath := o.generateImage(ctx, item)
	message, variants := o.composeMessage(ctx, item)

	result := Result{
		Item:      item,
		Variants:  variants,
		Message:   message,
		ImagePath: imagePath,
	}

	// Archive and notify before publishing so the content survives a
	// failed or interrupted publish.
	o.archiveRun(ctx, result)
	o.sendNotification(ctx, result)

	if o.cfg.DryRun || opts.SkipPublish || o.pub == nil {
		logger.Publish(ctx, "", imagePath != "", true, "reason", skipReason(o.cfg.DryRun, opts.SkipPublish, o.pub == nil))
	} else {
		postID, err := o.pub.Publish(ctx, message, imagePath)
		if err != nil {
			timer.EndWithError(err)
			return result, err
		}
		result.PostID = postID
		result.Published = true
	}
	timer.End("published", result.Published, "title", item.Title)
	return result, nil
}

func (o *Orchestrator) selectItem(ctx context.Context, opts Options) types.ContentItem {
	if opts.Manual != nil {
		item := *opts.Manual
		if item.Tone == "" {
			item.Tone = strategy.DirectiveFor(strategy.ToneProfessional)
		}
		if len(item.Tags) == 0 {
			item.Tags = []string{"Trading"}
		}
		logger.Post(ctx, "manual", "manual", strategy.ToneLabel(item.Tone), item.Title, 0)
		return item
	}

	stat, ok := o.scanner.Scan(ctx, o.cfg.Watchlist)
	return o.selector.Select(ctx, stat, ok)
}

// ensurePrompt backfills an image prompt for manually supplied items.
func (o *Orchestrator) ensurePrompt(ctx context.Context, item *types.ContentItem) {
	if item.ImagePrompt != "" || o.prompts == nil {
		return
	}
	ticker := "Manual"
	if len(item.Tags) > 0 {
		ticker = item.Tags[0]
	}
	text, path, err := o.prompts.BuildImagePrompt(item.Title, item.Summary, strategy.ToneLabel(item.Tone), ticker)
	if err != nil {
		logger.Warn(ctx, "Image prompt synthesis failed", "error", err)
		return
	}
	item.ImagePrompt = text
	item.PromptPath = path
}

func (o *Orchestrator) generateImage(ctx context.Context, item types.ContentItem) string {
	if !o.cfg.Image.Enabled || o.images == nil || item.ImagePrompt == "" {
		return ""
	}
	path, err := o.images.Generate(ctx, item.ImagePrompt, strategy.ToneLabel(item.Tone))
	if err != nil {
		logger.Warn(ctx, "Image generation failed, posting text only", "error", err)
		return ""
	}
	return path
}

func (o *Orchestrator) composeMessage(ctx context.Context, item types.ContentItem) (string, types.PostVariants) {
	variants, err := o.composer.Compose(ctx, item, item.Tags, item.Tone)
	if err != nil || strings.TrimSpace(variants.Facebook) == "" {
		logger.Warn(ctx, "Composer unavailable, using template fallback", "error", err)
		variants, _ = o.fallback.Compose(ctx, item, item.Tags, item.Tone)
	}

	message := variants.Facebook
	if line := fallback.HashtagLine(item.Tags); line != "" && !strings.Contains(message, line) {
		message += "\n\n" + line
	}
	message = fallback.EnsureDisclaimer(message)
	variants.Facebook = message
	return message, variants
}

func (o *Orchestrator) archiveRun(ctx context.Context, result Result) {
	if o.journal == nil {
		return
	}
	rec := archive.Record{
		Title:       result.Item.Title,
		Tags:        result.Item.Tags,
		Tone:        strategy.ToneLabel(result.Item.Tone),
		ImagePath:   result.ImagePath,
		ImagePrompt: result.Item.ImagePrompt,
		Variants:    result.Variants,
	}
	if err := o.journal.Append(rec); err != nil {
		logger.Warn(ctx, "Journal append failed", "error", err)
	}
	if _, err := o.journal.ExportMarkdown(rec); err != nil {
		logger.Warn(ctx, "Markdown export failed", "error", err)
	}
}

func (o *Orchestrator) sendNotification(ctx context.Context, result Result) {
	if o.notifier == nil {
		return
	}
	subject := notify.Subject(result.Item.Title)
	body := notify.Body(result.Item.Title, strategy.ToneLabel(result.Item.Tone), result.Item.Tags, result.Variants, result.ImagePath)
	if err := o.notifier.Send(ctx, subject, body, result.ImagePath); err != nil {
		// Best effort. The post itself already succeeded or was archived.
		logger.Warn(ctx, "Notification failed", "error", err)
	}
}

func skipReason(dryRun, skipFlag, noPublisher bool) string {
	switch {
	case dryRun:
		return "dry_run"
	case skipFlag:
		return "skip_publish"
	case noPublisher:
		return "publisher_not_configured"
	default:
		return ""
	}
}
