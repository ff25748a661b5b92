package archive

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ai-market-poster/internal/types"
)

var mu sync.Mutex

// Record is one generated post, written before any publish attempt so the
// content survives a failed run. Appended to the JSONL journal and
// optionally exported as a standalone markdown file.
type Record struct {
	Time        string             `json:"time"`
	Title       string             `json:"title"`
	Tags        []string           `json:"tags"`
	Tone        string             `json:"tone"`
	ImagePath   string             `json:"image_path,omitempty"`
	ImagePrompt string             `json:"image_prompt,omitempty"`
	Variants    types.PostVariants `json:"variants"`
}

// Archive persists generated content under a single directory.
type Archive struct {
	dir string
	now func() time.Time
}

func New(dir string) *Archive {
	return &Archive{dir: dir, now: time.Now}
}

func NewWithClock(dir string, now func() time.Time) *Archive {
	return &Archive{dir: dir, now: now}
}

func (a *Archive) journalPath(t time.Time) string {
	return filepath.Join(a.dir, "journal_"+t.Format("2006-01-02")+".jsonl")
}

// Append writes the record to today's journal, stamping its time.
func (a *Archive) Append(r Record) error {
	mu.Lock()
	defer mu.Unlock()
	now := a.now()
	r.Time = now.Format("2006-01-02 15:04:05")
	p := a.journalPath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(r)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// ReadJournal returns every record across all daily journals in append
// order. Journals already gzipped by retention are not read back.
func (a *Archive) ReadJournal() ([]Record, error) {
	mu.Lock()
	defer mu.Unlock()
	paths, err := filepath.Glob(filepath.Join(a.dir, "journal_*.jsonl"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var out []Record
	for _, p := range paths {
		recs, err := readJournalFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func readJournalFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, sc.Err()
}

// ExportMarkdown writes the record as a human-readable markdown file and
// returns its path.
func (a *Archive) ExportMarkdown(r Record) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", err
	}
	ts := a.now().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s.md", ts, safeTitle(r.Title))
	p := filepath.Join(a.dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", a.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Tone:** %s\n\n", r.Tone)
	if len(r.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(r.Tags, ", "))
	}
	if r.ImagePath != "" {
		fmt.Fprintf(&b, "**Image:** %s\n\n", r.ImagePath)
	}
	if r.ImagePrompt != "" {
		fmt.Fprintf(&b, "## Image Prompt\n\n%s\n\n", r.ImagePrompt)
	}
	fmt.Fprintf(&b, "## X\n\n%s\n\n", r.Variants.X)
	fmt.Fprintf(&b, "## LinkedIn\n\n%s\n\n", r.Variants.LinkedIn)
	fmt.Fprintf(&b, "## Facebook\n\n%s\n", r.Variants.Facebook)

	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func safeTitle(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '_')
		}
	}
	s := string(out)
	if len(s) > 40 {
		s = s[:40]
	}
	if s == "" {
		s = "post"
	}
	return s
}

// CompressOlder gzips journals and markdown exports older than retentionDays.
func (a *Archive) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := a.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(a.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext != ".md" && ext != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
