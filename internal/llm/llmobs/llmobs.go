package llmobs

import (
	"context"

	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/trace"
	"ai-market-poster/internal/types"
)

// observableComposer wraps a Composer with observability (logging & tracing)
type observableComposer struct {
	composer interfaces.Composer
}

// Compile-time interface check
var _ interfaces.Composer = (*observableComposer)(nil)

// Wrap wraps a composer with observability middleware
func Wrap(composer interfaces.Composer) interfaces.Composer {
	return &observableComposer{
		composer: composer,
	}
}

// Compose generates post copy with observability
func (oc *observableComposer) Compose(ctx context.Context, item types.ContentItem, tags []string, tone string) (types.PostVariants, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Compose")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting post copy",
		"title", item.Title,
		"tags", tags,
		"tone", tone,
	)

	variants, err := oc.composer.Compose(ctx, item, tags, tone)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to generate post copy", err,
			"title", item.Title,
		)
		return types.PostVariants{}, err
	}

	logger.InfoSkip(ctx, 1, "Post copy generated",
		"title", item.Title,
		"x_len", len(variants.X),
		"linkedin_len", len(variants.LinkedIn),
		"facebook_len", len(variants.Facebook),
	)

	return variants, nil
}
