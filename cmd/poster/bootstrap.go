package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"ai-market-poster/internal/archive"
	"ai-market-poster/internal/genai"
	"ai-market-poster/internal/interfaces"
	"ai-market-poster/internal/llm/fallback"
	"ai-market-poster/internal/llm/llmobs"
	"ai-market-poster/internal/llm/openai"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/market"
	"ai-market-poster/internal/news"
	"ai-market-poster/internal/notify"
	"ai-market-poster/internal/orchestrator"
	"ai-market-poster/internal/prompt"
	"ai-market-poster/internal/publisher"
	"ai-market-poster/internal/publisher/pubobs"
	"ai-market-poster/internal/store"
	"ai-market-poster/internal/strategy"
	"ai-market-poster/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn(ctx, "Config file not found, using defaults", "path", path)
			return store.DefaultConfig(), nil
		}
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// buildOrchestrator wires every pipeline stage from config and credentials.
// Stages with missing credentials are left nil and skipped at runtime.
func buildOrchestrator(ctx context.Context, cfg *store.Config) *orchestrator.Orchestrator {
	creds := store.LoadCredentials()

	if cfg.DryRun {
		logger.Warn(ctx, "Running in dry-run mode - nothing will be posted")
	}

	scanner := market.NewScanner(market.NewYahooQuoteSource())
	prompts := prompt.NewBuilder(cfg.Output.PromptDir)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selector := strategy.NewSelector(
		news.NewDefaultChain(),
		strategy.NewTemplateStore(cfg.Strategy.TemplatePath),
		prompts,
		rng,
		cfg.Strategy.VolatilityThreshold,
		cfg.Strategy.CasualProbability,
	)

	composer := initializeComposer(ctx, cfg, creds)
	images := initializeImages(ctx, cfg, creds)
	pub := initializePublisher(ctx, cfg, creds)
	notifier := initializeNotifier(ctx, creds)
	journal := archive.New(cfg.Output.Dir)

	compressOldExports(ctx, journal)

	return orchestrator.New(cfg, scanner, selector, prompts, composer, images, pub, notifier, journal)
}

// initializeComposer returns the text generation backend with observability
func initializeComposer(ctx context.Context, cfg *store.Config, creds store.Credentials) interfaces.Composer {
	if err := creds.CheckOpenAI(); err != nil {
		logger.Warn(ctx, "No OpenAI key - using the template fallback composer", "error", err)
		return llmobs.Wrap(fallback.NewComposer())
	}
	return llmobs.Wrap(openai.NewComposer(creds.OpenAIKey, cfg))
}

// initializeImages returns the image generator, or nil when disabled
func initializeImages(ctx context.Context, cfg *store.Config, creds store.Credentials) interfaces.ImageGenerator {
	if !cfg.Image.Enabled {
		logger.Info(ctx, "Image generation disabled in config")
		return nil
	}
	if err := creds.CheckGoogle(); err != nil {
		logger.Warn(ctx, "No Google key - posts will be text only", "error", err)
		return nil
	}
	return genai.NewImageGenerator(creds.GoogleKey, cfg.Image.Model, cfg.Output.ImageDir)
}

// initializePublisher returns the page publisher with observability, or nil
func initializePublisher(ctx context.Context, cfg *store.Config, creds store.Credentials) interfaces.Publisher {
	if err := creds.CheckFacebook(); err != nil {
		logger.Warn(ctx, "No page credentials - runs will archive without posting", "error", err)
		return nil
	}
	fb := publisher.NewFacebookPublisher(creds.PageID, creds.PageAccessToken, cfg.Publisher.GraphVersion)
	return pubobs.Wrap(fb)
}

// initializeNotifier returns the email notifier, or nil when unconfigured
func initializeNotifier(ctx context.Context, creds store.Credentials) interfaces.Notifier {
	if err := creds.CheckEmail(); err != nil {
		logger.Info(ctx, "Email notifications disabled", "error", err)
		return nil
	}
	return notify.NewEmailNotifier(creds)
}

// shutdown flushes tracing before exit
func shutdown(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = logger.Shutdown(sctx)
	_ = trace.Shutdown(sctx)
}

// compressOldExports gzips old markdown exports if retention is configured
func compressOldExports(ctx context.Context, journal *archive.Archive) {
	if v := os.Getenv("POSTER_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := journal.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old exports", "error", err)
		}
	}
}
