package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ai-market-poster/internal/types"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}
}

func TestJournalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := NewWithClock(dir, fixedClock())

	records := []Record{
		{
			Title: "Bitcoin Breaks Out",
			Tags:  []string{"BTC-USD", "MarketAlert"},
			Tone:  "Excited",
			Variants: types.PostVariants{
				X:        "short take",
				LinkedIn: "long take",
				Facebook: "fb take",
			},
		},
		{
			Title:       "Market Watch",
			Tags:        []string{"Trading"},
			Tone:        "Professional",
			ImagePath:   "/out/GEMINI_IMG_x.png",
			ImagePrompt: "a calm chart",
			Variants:    types.PostVariants{Facebook: "calm"},
		},
	}
	for _, r := range records {
		if err := a.Append(r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := a.ReadJournal()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].Title != "Bitcoin Breaks Out" || got[1].Title != "Market Watch" {
		t.Error("Journal must preserve append order")
	}
	if got[0].Time != "2026-03-14 09:26:53" {
		t.Errorf("Time = %q", got[0].Time)
	}
	if got[0].Variants.Facebook != "fb take" {
		t.Errorf("Variants lost in round trip: %+v", got[0].Variants)
	}
	if got[1].ImagePrompt != "a calm chart" {
		t.Errorf("ImagePrompt lost: %+v", got[1])
	}

	if _, err := os.Stat(filepath.Join(dir, "journal_2026-03-14.jsonl")); err != nil {
		t.Error("Records must land in the daily journal file")
	}
}

func TestReadJournalSpansDays(t *testing.T) {
	dir := t.TempDir()
	day1 := `{"time":"2026-03-13 09:00:00","title":"first"}`
	day2 := `{"time":"2026-03-14 09:00:00","title":"second"}`
	if err := os.WriteFile(filepath.Join(dir, "journal_2026-03-13.jsonl"), []byte(day1+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "journal_2026-03-14.jsonl"), []byte(day2+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := New(dir).ReadJournal()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Title != "first" || got[1].Title != "second" {
		t.Errorf("Journals must be read oldest first: %+v", got)
	}
}

func TestReadJournalMissingFile(t *testing.T) {
	a := New(t.TempDir())
	got, err := a.ReadJournal()
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Expected nil for a missing journal, got %v", got)
	}
}

func TestExportMarkdown(t *testing.T) {
	a := NewWithClock(t.TempDir(), fixedClock())

	p, err := a.ExportMarkdown(Record{
		Title: "NVDA: Huge Move!",
		Tags:  []string{"NVDA", "MarketAlert"},
		Tone:  "Urgent",
		Variants: types.PostVariants{
			X:        "x copy",
			LinkedIn: "li copy",
			Facebook: "fb copy",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if base := filepath.Base(p); base != "20260314_092653_NVDA_Huge_Move.md" {
		t.Errorf("Unexpected export name %q", base)
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)
	for _, want := range []string{"# NVDA: Huge Move!", "**Tone:** Urgent", "## Facebook", "fb copy"} {
		if !strings.Contains(content, want) {
			t.Errorf("Export missing %q", want)
		}
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)

	old := filepath.Join(dir, "old.md")
	if err := os.WriteFile(old, []byte("# old"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	oldJournal := filepath.Join(dir, "journal_2026-01-01.jsonl")
	if err := os.WriteFile(oldJournal, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(oldJournal, past, past); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "fresh.md")
	if err := os.WriteFile(fresh, []byte("# fresh"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := a.CompressOlder(7); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Old export should be removed after compression")
	}
	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Error("Old export should be gzipped")
	}
	if _, err := os.Stat(oldJournal + ".gz"); err != nil {
		t.Error("Old journal should be gzipped")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("Fresh export must be left alone")
	}
}

func TestSafeTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"NVDA: Huge Move!", "NVDA_Huge_Move"},
		{"", "post"},
		{strings.Repeat("a", 60), strings.Repeat("a", 40)},
	}
	for _, tc := range cases {
		if got := safeTitle(tc.in); got != tc.want {
			t.Errorf("safeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
