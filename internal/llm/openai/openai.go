package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"ai-market-poster/internal/store"
	"ai-market-poster/internal/trace"
	"ai-market-poster/internal/types"
)

const systemPrompt = `You are a social media manager for a retail trading audience. Given one piece of market content, write three posts: one for X (Twitter, max 280 characters, punchy, 2-3 hashtags), one for LinkedIn (professional, 2-3 short paragraphs), and one for Facebook (engaging, conversational, ends with a question or call to action). Match the requested tone exactly. Respond ONLY with compact JSON: {"x_post":"...","linkedin_post":"...","facebook_post":"..."}`

// Composer generates platform-specific post copy with the OpenAI chat API.
type Composer struct {
	client *goopenai.Client
	cfg    *store.Config
}

// NewComposer creates a composer. apiKey must be non-empty; callers check
// credentials before construction.
func NewComposer(apiKey string, cfg *store.Config) *Composer {
	return &Composer{
		client: goopenai.NewClient(apiKey),
		cfg:    cfg,
	}
}

// Compose asks the model for three post variants for the given item.
func (c *Composer) Compose(ctx context.Context, item types.ContentItem, tags []string, tone string) (types.PostVariants, error) {
	ctx, span := trace.StartSpan(ctx, "openai-compose")
	defer span.End()

	payload := map[string]any{
		"title":   item.Title,
		"summary": item.Summary,
		"url":     item.URL,
		"tags":    tags,
		"tone":    tone,
	}
	pb, _ := json.Marshal(payload)
	user := fmt.Sprintf("Tone directive: %s\nContent:%s\n\nRespond ONLY with compact JSON matching the schema.", tone, string(pb))

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.cfg.LLM.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.cfg.LLM.Temperature,
		MaxTokens:   c.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return types.PostVariants{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.PostVariants{}, errors.New("openai: no choices")
	}

	return parsePostVariants(resp.Choices[0].Message.Content)
}

// parsePostVariants locates the JSON object in the model output and
// unmarshals it; models sometimes wrap JSON in prose or code fences.
func parsePostVariants(text string) (types.PostVariants, error) {
	t := strings.TrimSpace(text)

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start < 0 || end <= start {
		return types.PostVariants{}, fmt.Errorf("no JSON object in model output: %q", truncate(t, 120))
	}

	var v types.PostVariants
	if err := json.Unmarshal([]byte(t[start:end+1]), &v); err != nil {
		return types.PostVariants{}, fmt.Errorf("parse model output: %w", err)
	}

	if strings.TrimSpace(v.Facebook) == "" {
		return types.PostVariants{}, errors.New("model output missing facebook_post")
	}
	return v, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
