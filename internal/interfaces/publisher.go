package interfaces

import "context"

// Publisher posts a message (and optional image file) to a social page
// and returns the created post identifier.
type Publisher interface {
	Publish(ctx context.Context, message, imagePath string) (string, error)
}
