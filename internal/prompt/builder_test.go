package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestBuildImagePromptDeterministic(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilderWithClock(dir, fixedClock)

	text1, path1, err := b.BuildImagePrompt("Fed Holds Rates", "The central bank held steady.", "Urgent", "SPY")
	if err != nil {
		t.Fatal(err)
	}
	text2, _, err := b.BuildImagePrompt("Fed Holds Rates", "The central bank held steady.", "Urgent", "SPY")
	if err != nil {
		t.Fatal(err)
	}

	if text1 != text2 {
		t.Error("Prompt text must be deterministic for fixed inputs")
	}
	if !strings.Contains(text1, "Create a financial market image: Fed Holds Rates") {
		t.Errorf("Prompt missing title line: %q", text1)
	}
	if !strings.Contains(text1, "Context: The central bank held steady.") {
		t.Errorf("Prompt missing context line: %q", text1)
	}
	if !strings.Contains(text1, "dramatic, urgent, breaking news, high impact, red theme") {
		t.Errorf("Prompt missing Urgent style phrase: %q", text1)
	}
	if !strings.Contains(text1, "SPY focus") {
		t.Errorf("Prompt missing ticker focus: %q", text1)
	}

	if filepath.Base(path1) != "PROMPT_20260314_092653_SPY.txt" {
		t.Errorf("Unexpected prompt filename: %s", filepath.Base(path1))
	}

	saved, err := os.ReadFile(path1)
	if err != nil {
		t.Fatal(err)
	}
	if string(saved) != text1 {
		t.Error("Persisted prompt must match returned text")
	}
}

func TestBuildImagePromptUnknownToneDefaultsProfessional(t *testing.T) {
	b := NewBuilderWithClock(t.TempDir(), fixedClock)

	text, _, err := b.BuildImagePrompt("Title", "Summary", "Mysterious", "QQQ")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "professional, clean, corporate, business-like") {
		t.Errorf("Unknown tone must use the Professional style, got %q", text)
	}
}

func TestSanitizeTicker(t *testing.T) {
	cases := map[string]string{
		"BTC-USD":   "BTCUSD",
		"AAPL":      "AAPL",
		"Education": "Education",
		"^GSPC":     "GSPC",
	}
	for in, want := range cases {
		if got := SanitizeTicker(in); got != want {
			t.Errorf("SanitizeTicker(%q) = %q, want %q", in, got, want)
		}
	}
}
