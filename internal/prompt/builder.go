package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"ai-market-poster/internal/strategy"
)

const promptTemplate = `Create a financial market image: %s

Context: %s

Style: %s, stock market themed, %s focus, highly detailed, 8k resolution, cinematic lighting

Visual elements: charts, graphs, market data, trading floor atmosphere, professional financial imagery`

// Builder synthesizes image-generation prompts and persists them to disk.
// The clock is injected so prompt filenames are testable.
type Builder struct {
	dir string
	now func() time.Time
}

// NewBuilder creates a builder writing prompt files under dir.
func NewBuilder(dir string) *Builder {
	return &Builder{dir: dir, now: time.Now}
}

// NewBuilderWithClock creates a builder with a fixed clock for tests.
func NewBuilderWithClock(dir string, now func() time.Time) *Builder {
	return &Builder{dir: dir, now: now}
}

// BuildImagePrompt renders the prompt paragraph for the given content and
// writes it to a uniquely named file. The prompt text is deterministic for
// fixed inputs; only the file name varies with the timestamp.
func (b *Builder) BuildImagePrompt(title, summary, toneLabel, ticker string) (string, string, error) {
	style := strategy.StyleFor(toneLabel)
	text := fmt.Sprintf(promptTemplate, title, summary, style, ticker)

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create prompt dir: %w", err)
	}

	timestamp := b.now().Format("20060102_150405")
	filename := fmt.Sprintf("PROMPT_%s_%s.txt", timestamp, SanitizeTicker(ticker))
	path := filepath.Join(b.dir, filename)

	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", "", fmt.Errorf("write prompt file: %w", err)
	}

	return text, path, nil
}

// SanitizeTicker strips everything but letters and digits from a ticker so
// it is safe inside a filename ("BTC-USD" -> "BTCUSD").
func SanitizeTicker(ticker string) string {
	var sb strings.Builder
	for _, r := range ticker {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
