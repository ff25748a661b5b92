package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-market-poster/internal/api"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/trace"
)

// JobState tracks a long-running video generation operation.
type JobState int

const (
	StateSubmitted JobState = iota
	StatePolling
	StateDone
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StateSubmitted:
		return "submitted"
	case StatePolling:
		return "polling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Clock abstracts time for the polling loop so tests can run instantly.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// jobStatus is the result of one poll of a video operation.
type jobStatus struct {
	done     bool
	errMsg   string
	videoURI string
}

// videoAPI is the remote surface the generator drives. Split out so the
// polling state machine can be tested without the network.
type videoAPI interface {
	startJob(ctx context.Context, prompt, imagePath, aspectRatio string) (string, error)
	pollJob(ctx context.Context, operation string) (jobStatus, error)
	download(ctx context.Context, uri string) ([]byte, error)
}

// VideoGenerator produces short videos through the Veo predictLongRunning API.
// The operation is polled on a fixed interval with a hard cap on attempts.
type VideoGenerator struct {
	api      videoAPI
	clock    Clock
	dir      string
	interval time.Duration
	maxPolls int
}

// NewVideoGenerator creates a generator saving MP4 files under dir.
func NewVideoGenerator(apiKey, model, dir string, pollInterval time.Duration, maxPolls int) *VideoGenerator {
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 60
	}
	return &VideoGenerator{
		api:      newGeminiVideoAPI(apiKey, model),
		clock:    realClock{},
		dir:      dir,
		interval: pollInterval,
		maxPolls: maxPolls,
	}
}

// Generate submits a video job and blocks until it finishes, fails, or the
// poll budget is exhausted. imagePath optionally seeds the first frame.
func (g *VideoGenerator) Generate(ctx context.Context, prompt, imagePath, aspectRatio string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "genai.GenerateVideo")
	defer span.End()

	state := StateSubmitted
	operation, err := g.api.startJob(ctx, prompt, imagePath, aspectRatio)
	if err != nil {
		state = StateFailed
		logger.Error(ctx, "Video job submission failed", "state", state.String(), "error", err)
		return "", fmt.Errorf("submit video job: %w", err)
	}

	state = StatePolling
	logger.Info(ctx, "Video job submitted",
		"operation", operation,
		"state", state.String(),
		"pollInterval", g.interval,
		"maxPolls", g.maxPolls,
	)

	for poll := 1; poll <= g.maxPolls; poll++ {
		if err := g.clock.Sleep(ctx, g.interval); err != nil {
			state = StateFailed
			return "", fmt.Errorf("video polling interrupted: %w", err)
		}

		status, err := g.api.pollJob(ctx, operation)
		if err != nil {
			// Transient poll failures do not kill the job.
			logger.Warn(ctx, "Video poll failed", "poll", poll, "error", err)
			continue
		}
		if !status.done {
			logger.Debug(ctx, "Video job still running", "poll", poll, "state", state.String())
			continue
		}

		if status.errMsg != "" {
			state = StateFailed
			logger.Error(ctx, "Video job failed", "state", state.String(), "reason", status.errMsg)
			return "", fmt.Errorf("video job failed: %s", status.errMsg)
		}
		if status.videoURI == "" {
			state = StateFailed
			return "", errors.New("video job finished without a video URI")
		}

		state = StateDone
		logger.Info(ctx, "Video job finished", "state", state.String(), "polls", poll)
		return g.fetchAndSave(ctx, prompt, status.videoURI)
	}

	state = StateFailed
	logger.Error(ctx, "Video job timed out", "state", state.String(), "polls", g.maxPolls)
	return "", fmt.Errorf("video job did not finish within %d polls", g.maxPolls)
}

func (g *VideoGenerator) fetchAndSave(ctx context.Context, prompt, uri string) (string, error) {
	raw, err := g.api.download(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create video dir: %w", err)
	}

	timestamp := g.clock.Now().Format("20060102_150405")
	filename := fmt.Sprintf("GEMINI_VID_%s_%s.mp4", timestamp, sanitizePrefix(prompt, 20))
	path := filepath.Join(g.dir, filename)

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write video file: %w", err)
	}

	logger.Info(ctx, "Video saved", "path", path, "bytes", len(raw))
	return path, nil
}

// geminiVideoAPI talks to the real Veo endpoints.
type geminiVideoAPI struct {
	client *api.Client
	dl     *api.Client
	model  string
}

func newGeminiVideoAPI(apiKey, model string) *geminiVideoAPI {
	return &geminiVideoAPI{
		client: newGeminiClient(apiKey),
		dl: api.NewClient(
			api.WithHeader("x-goog-api-key", apiKey),
			api.WithTimeout(5*time.Minute),
			api.WithLogging(true),
		),
		model: model,
	}
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type veoRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters struct {
		AspectRatio string `json:"aspectRatio"`
	} `json:"parameters"`
}

type veoOperation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

func (a *geminiVideoAPI) startJob(ctx context.Context, prompt, imagePath, aspectRatio string) (string, error) {
	var body veoRequest
	inst := veoInstance{Prompt: prompt}
	if imagePath != "" {
		raw, err := os.ReadFile(imagePath)
		if err != nil {
			return "", fmt.Errorf("read reference image: %w", err)
		}
		inst.Image = &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(raw),
			MimeType:           mimeFromExt(imagePath),
		}
	}
	body.Instances = []veoInstance{inst}
	body.Parameters.AspectRatio = aspectRatio

	resp, err := a.client.POST(ctx, fmt.Sprintf("/models/%s:predictLongRunning", a.model), body)
	if err != nil {
		return "", err
	}

	var op veoOperation
	if err := resp.ParseJSON(&op); err != nil {
		return "", err
	}
	if op.Name == "" {
		return "", errors.New("no operation name in response")
	}
	return op.Name, nil
}

func (a *geminiVideoAPI) pollJob(ctx context.Context, operation string) (jobStatus, error) {
	resp, err := a.client.GET(ctx, "/"+operation)
	if err != nil {
		return jobStatus{}, err
	}

	var op veoOperation
	if err := resp.ParseJSON(&op); err != nil {
		return jobStatus{}, err
	}

	status := jobStatus{done: op.Done}
	if op.Error != nil {
		status.errMsg = op.Error.Message
	}
	if op.Response != nil {
		samples := op.Response.GenerateVideoResponse.GeneratedSamples
		if len(samples) > 0 {
			status.videoURI = samples[0].Video.URI
		}
	}
	return status, nil
}

func (a *geminiVideoAPI) download(ctx context.Context, uri string) ([]byte, error) {
	resp, err := a.dl.GET(ctx, uri)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func mimeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
