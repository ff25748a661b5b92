package types

// TickerSnapshot is a single quote reading, fetched fresh per run.
type TickerSnapshot struct {
	Symbol        string
	LastPrice     float64
	PreviousClose float64
}

// MarketStat holds the most-volatile ticker found by a scan.
type MarketStat struct {
	Symbol        string  `json:"symbol"`
	ChangePercent float64 `json:"change_pct"`
	RawChange     float64 `json:"raw_change"`
	Price         float64 `json:"price"`
}

// NewsStory is the top story for a ticker from a news source.
type NewsStory struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// ContentItem is the single piece of content produced per run.
type ContentItem struct {
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url,omitempty"`
	Tags        []string `json:"trending_tags"`
	Tone        string   `json:"tone"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
	PromptPath  string   `json:"prompt_path,omitempty"`
	ImagePath   string   `json:"image_path,omitempty"`
}

// PostVariants holds one generated post per target platform.
type PostVariants struct {
	X        string `json:"x_post"`
	LinkedIn string `json:"linkedin_post"`
	Facebook string `json:"facebook_post"`
}
