package pubobs

import (
	"context"

	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/trace"
)

// observablePublisher wraps a Publisher with observability (logging & tracing)
type observablePublisher struct {
	publisher interfaces.Publisher
}

// Compile-time interface check
var _ interfaces.Publisher = (*observablePublisher)(nil)

// Wrap wraps a publisher with observability middleware
func Wrap(publisher interfaces.Publisher) interfaces.Publisher {
	return &observablePublisher{
		publisher: publisher,
	}
}

// Publish posts content with observability
func (op *observablePublisher) Publish(ctx context.Context, message, imagePath string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "publisher.Publish")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Publishing post",
		"messageLen", len(message),
		"withImage", imagePath != "",
	)

	postID, err := op.publisher.Publish(ctx, message, imagePath)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to publish post", err,
			"withImage", imagePath != "",
		)
		return "", err
	}

	logger.Publish(ctx, postID, imagePath != "", false)
	return postID, nil
}
