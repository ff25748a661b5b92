package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DryRun    bool     `yaml:"dry_run"`
	Watchlist []string `yaml:"watchlist"`
	Schedule  struct {
		IntervalHours int `yaml:"interval_hours"`
	} `yaml:"schedule"`
	Strategy struct {
		VolatilityThreshold float64 `yaml:"volatility_threshold"`
		CasualProbability   float64 `yaml:"casual_probability"`
		TemplatePath        string  `yaml:"template_path"`
	} `yaml:"strategy"`
	Output struct {
		Dir       string `yaml:"dir"`
		PromptDir string `yaml:"prompt_dir"`
		ImageDir  string `yaml:"image_dir"`
		VideoDir  string `yaml:"video_dir"`
	} `yaml:"output"`
	LLM struct {
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`
	Image struct {
		Enabled bool   `yaml:"enabled"`
		Model   string `yaml:"model"`
	} `yaml:"image"`
	Video struct {
		Model       string `yaml:"model"`
		PollSeconds int    `yaml:"poll_seconds"`
		MaxPolls    int    `yaml:"max_polls"`
		AspectRatio string `yaml:"aspect_ratio"`
	} `yaml:"video"`
	Publisher struct {
		GraphVersion string `yaml:"graph_version"`
	} `yaml:"publisher"`
}

func (c *Config) Validate() error {
	if len(c.Watchlist) == 0 {
		return errors.New("watchlist cannot be empty")
	}
	if c.Strategy.VolatilityThreshold <= 0 {
		return fmt.Errorf("strategy.volatility_threshold must be positive, got %.2f", c.Strategy.VolatilityThreshold)
	}
	if c.Strategy.CasualProbability < 0 || c.Strategy.CasualProbability > 1 {
		return fmt.Errorf("strategy.casual_probability must be between 0-1, got %.2f", c.Strategy.CasualProbability)
	}
	if c.Schedule.IntervalHours < 1 {
		return fmt.Errorf("schedule.interval_hours must be >= 1, got %d", c.Schedule.IntervalHours)
	}
	if c.Video.AspectRatio != "16:9" && c.Video.AspectRatio != "9:16" {
		return fmt.Errorf("video.aspect_ratio must be '16:9' or '9:16', got '%s'", c.Video.AspectRatio)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// DefaultConfig returns the built-in configuration used when no config file exists.
func DefaultConfig() *Config {
	var c Config
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"SPY", "QQQ", "IWM", "BTC-USD", "ETH-USD", "NVDA", "TSLA", "AAPL", "AMD", "COIN"}
	}
	if c.Schedule.IntervalHours == 0 {
		c.Schedule.IntervalHours = 4
	}
	if c.Strategy.VolatilityThreshold == 0 {
		c.Strategy.VolatilityThreshold = 1.0
	}
	if c.Strategy.CasualProbability == 0 {
		c.Strategy.CasualProbability = 0.3
	}
	if c.Strategy.TemplatePath == "" {
		c.Strategy.TemplatePath = "market_content.json"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "generated_content"
	}
	if c.Output.PromptDir == "" {
		c.Output.PromptDir = "generated_content/prompts"
	}
	if c.Output.ImageDir == "" {
		c.Output.ImageDir = "generated_content/images"
	}
	if c.Output.VideoDir == "" {
		c.Output.VideoDir = "generated_content/videos"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 800
	}
	if c.Image.Model == "" {
		c.Image.Model = "gemini-2.5-flash-image"
		c.Image.Enabled = true
	}
	if c.Video.Model == "" {
		c.Video.Model = "veo-3.1-generate-preview"
	}
	if c.Video.PollSeconds == 0 {
		c.Video.PollSeconds = 10
	}
	if c.Video.MaxPolls == 0 {
		c.Video.MaxPolls = 60
	}
	if c.Video.AspectRatio == "" {
		c.Video.AspectRatio = "16:9"
	}
	if c.Publisher.GraphVersion == "" {
		c.Publisher.GraphVersion = "v24.0"
	}
}

// ErrCredentialMissing marks an operation whose required credentials are absent.
// Callers skip the operation and continue the run.
var ErrCredentialMissing = errors.New("credential missing")

// Credentials holds every secret read from the environment.
// Missing values disable the dependent operation, they never abort a run.
type Credentials struct {
	PageAccessToken string
	PageID          string
	AppID           string
	AppSecret       string
	OpenAIKey       string
	GoogleKey       string
	EmailSender     string
	EmailPassword   string
	EmailRecipient  string
	SMTPServer      string
	SMTPPort        int
}

// LoadCredentials reads all credentials from the environment.
func LoadCredentials() Credentials {
	port := 587
	if v := os.Getenv("EMAIL_SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	server := os.Getenv("EMAIL_SMTP_SERVER")
	if server == "" {
		server = "smtp.gmail.com"
	}
	return Credentials{
		PageAccessToken: os.Getenv("PAGE_ACCESS_TOKEN"),
		PageID:          os.Getenv("PAGE_ID"),
		AppID:           os.Getenv("APP_ID"),
		AppSecret:       os.Getenv("APP_SECRET"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		GoogleKey:       os.Getenv("GOOGLE_API_KEY"),
		EmailSender:     os.Getenv("EMAIL_SENDER"),
		EmailPassword:   os.Getenv("EMAIL_PASSWORD"),
		EmailRecipient:  os.Getenv("EMAIL_RECIPIENT"),
		SMTPServer:      server,
		SMTPPort:        port,
	}
}

// CheckFacebook reports whether page publishing is configured.
func (cr Credentials) CheckFacebook() error {
	if cr.PageAccessToken == "" || cr.PageID == "" {
		return fmt.Errorf("%w: PAGE_ACCESS_TOKEN or PAGE_ID", ErrCredentialMissing)
	}
	return nil
}

// CheckEmail reports whether the email notifier is configured.
func (cr Credentials) CheckEmail() error {
	if cr.EmailSender == "" || cr.EmailPassword == "" || cr.EmailRecipient == "" {
		return fmt.Errorf("%w: EMAIL_SENDER, EMAIL_PASSWORD or EMAIL_RECIPIENT", ErrCredentialMissing)
	}
	return nil
}

// CheckOpenAI reports whether the text generation backend is configured.
func (cr Credentials) CheckOpenAI() error {
	if cr.OpenAIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY", ErrCredentialMissing)
	}
	return nil
}

// CheckGoogle reports whether the Gemini backends are configured.
func (cr Credentials) CheckGoogle() error {
	if cr.GoogleKey == "" {
		return fmt.Errorf("%w: GOOGLE_API_KEY", ErrCredentialMissing)
	}
	return nil
}
