package interfaces

import "context"

// ImageGenerator renders an image for a prompt and returns the saved file path.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, tone string) (string, error)
}
