package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-market-poster/internal/api"
	"ai-market-poster/internal/logger"
)

const graphBaseURL = "https://graph.facebook.com"

// FacebookPublisher posts to a Facebook Page through the Graph API.
type FacebookPublisher struct {
	client      *api.Client
	pageID      string
	accessToken string
	version     string
}

// NewFacebookPublisher creates a publisher for the given page.
// version is the Graph API version, e.g. "v24.0".
func NewFacebookPublisher(pageID, accessToken, version string) *FacebookPublisher {
	return &FacebookPublisher{
		client: api.NewClient(
			api.WithBaseURL(graphBaseURL),
			api.WithTimeout(60*time.Second),
			api.WithLogging(true),
		),
		pageID:      pageID,
		accessToken: accessToken,
		version:     version,
	}
}

type publishResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// Publish posts the message to the page, attaching the image when given.
// Returns the Graph post ID. No retries: a retried publish can double-post.
func (p *FacebookPublisher) Publish(ctx context.Context, message, imagePath string) (string, error) {
	if imagePath != "" {
		return p.publishPhoto(ctx, message, imagePath)
	}
	return p.publishFeed(ctx, message)
}

func (p *FacebookPublisher) publishFeed(ctx context.Context, message string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", p.accessToken)

	resp, err := p.client.PostForm(ctx, fmt.Sprintf("/%s/%s/feed", p.version, p.pageID), form)
	if err != nil {
		return "", fmt.Errorf("facebook feed post: %w", graphError(err))
	}

	var parsed publishResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("facebook feed post: no post ID in response")
	}
	return parsed.ID, nil
}

func (p *FacebookPublisher) publishPhoto(ctx context.Context, message, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("caption", message); err != nil {
		return "", err
	}
	if err := w.WriteField("access_token", p.accessToken); err != nil {
		return "", err
	}
	part, err := w.CreateFormFile("source", filepath.Base(imagePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req := api.NewRequest(http.MethodPost, fmt.Sprintf("/%s/%s/photos", p.version, p.pageID)).
		WithContext(ctx).
		WithRawBody(&buf, w.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("facebook photo post: %w", graphError(err))
	}

	var parsed publishResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return "", err
	}
	// Photo uploads report both the photo ID and the page post ID.
	if parsed.PostID != "" {
		return parsed.PostID, nil
	}
	if parsed.ID != "" {
		return parsed.ID, nil
	}
	return "", fmt.Errorf("facebook photo post: no post ID in response")
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExchangeLongLivedToken trades a short-lived user token for a long-lived one.
func (p *FacebookPublisher) ExchangeLongLivedToken(ctx context.Context, appID, appSecret, shortToken string) (string, error) {
	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", appID)
	q.Set("client_secret", appSecret)
	q.Set("fb_exchange_token", shortToken)

	resp, err := p.client.GET(ctx, fmt.Sprintf("/%s/oauth/access_token?%s", p.version, q.Encode()))
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", graphError(err))
	}

	var parsed tokenResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token exchange: empty access token")
	}
	logger.Info(ctx, "Exchanged long-lived token", "expiresIn", parsed.ExpiresIn)
	return parsed.AccessToken, nil
}

type graphErrorPayload struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// graphError pulls the Graph API error message out of an HTTP error body
// so callers see "Invalid OAuth access token" instead of a JSON blob.
func graphError(err error) error {
	msg := err.Error()
	start := strings.Index(msg, "{")
	if start < 0 {
		return err
	}
	var payload graphErrorPayload
	if jsonErr := json.Unmarshal([]byte(msg[start:]), &payload); jsonErr != nil {
		return err
	}
	if payload.Error.Message == "" {
		return err
	}
	return fmt.Errorf("graph API error (code %d, %s): %s",
		payload.Error.Code, payload.Error.Type, payload.Error.Message)
}
