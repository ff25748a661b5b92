package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ai-market-poster/internal/api"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/trace"
)

// styleModifiers enhance the raw prompt per tone before it reaches the
// image model. Distinct from the prompt synthesizer's style table: these
// are rendering hints, not content.
var styleModifiers = map[string]string{
	"Professional": "highly detailed, professional, 8k resolution, cinematic lighting, corporate style",
	"Urgent":       "dramatic, red theme, intense, breaking news style, high contrast",
	"Excited":      "vibrant, green theme, upward trending, energetic, neon colors",
	"Sci-Fi":       "cyberpunk, futuristic, neon lights, digital art, high-tech",
	"Casual":       "minimalistic, clean, soft lighting, modern illustration",
}

// ImageGenerator renders images through the Gemini generateContent API.
type ImageGenerator struct {
	client *api.Client
	model  string
	dir    string
	now    func() time.Time
}

// NewImageGenerator creates a generator saving PNGs under dir.
func NewImageGenerator(apiKey, model, dir string) *ImageGenerator {
	return &ImageGenerator{
		client: newGeminiClient(apiKey),
		model:  model,
		dir:    dir,
		now:    time.Now,
	}
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generateContentRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate renders an image for the prompt and returns the saved file path.
func (g *ImageGenerator) Generate(ctx context.Context, prompt, tone string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "genai.GenerateImage")
	defer span.End()

	style, ok := styleModifiers[tone]
	if !ok {
		style = styleModifiers["Professional"]
	}
	enhanced := fmt.Sprintf("%s, %s", prompt, style)

	logger.Info(ctx, "Generating image", "model", g.model, "tone", tone)

	var body generateContentRequest
	body.Contents = []content{{Parts: []contentPart{{Text: enhanced}}}}
	body.GenerationConfig.ResponseModalities = []string{"IMAGE"}

	resp, err := g.client.POST(ctx, fmt.Sprintf("/models/%s:generateContent", g.model), body)
	if err != nil {
		return "", fmt.Errorf("gemini image request: %w", err)
	}

	var parsed generateContentResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return "", fmt.Errorf("gemini image parse: %w", err)
	}

	for _, cand := range parsed.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return "", fmt.Errorf("decode image data: %w", err)
			}
			return g.save(ctx, prompt, raw)
		}
	}

	return "", errors.New("no image data received from API")
}

func (g *ImageGenerator) save(ctx context.Context, prompt string, raw []byte) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	timestamp := g.now().Format("20060102_150405")
	filename := fmt.Sprintf("GEMINI_IMG_%s_%s.png", timestamp, sanitizePrefix(prompt, 20))
	path := filepath.Join(g.dir, filename)

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	logger.Info(ctx, "Image generated", "path", path, "bytes", len(raw))
	return path, nil
}
