package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/orchestrator"
	"ai-market-poster/internal/types"

	"github.com/robfig/cron/v3"
)

// tagList collects repeated --tag flags.
type tagList []string

func (t *tagList) String() string { return strings.Join(*t, ",") }

func (t *tagList) Set(v string) error {
	*t = append(*t, v)
	return nil
}

func main() {
	var (
		configPath  = flag.String("config", "config.yaml", "path to the YAML config file")
		title       = flag.String("title", "", "manual post title (bypasses the market scan)")
		summary     = flag.String("summary", "", "manual post summary (requires --title)")
		tone        = flag.String("tone", "", "manual tone label, e.g. Professional or Excited")
		runOnce     = flag.Bool("cron", false, "run one cycle and exit (for external schedulers)")
		skipPublish = flag.Bool("skip-publish", false, "generate and archive but never post")
		tags        tagList
	)
	flag.Var(&tags, "tag", "hashtag to attach to a manual post (repeatable)")
	flag.Parse()

	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx, *configPath)
	if err != nil {
		os.Exit(1)
	}

	opts, err := buildOptions(*title, *summary, *tone, tags, *skipPublish)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	orch := buildOrchestrator(ctx, cfg)

	// Manual posts and --cron invocations are single-shot.
	if *runOnce || opts.Manual != nil {
		if _, err := orch.Run(ctx, opts); err != nil {
			logger.ErrorWithErr(ctx, "Run failed", err)
			os.Exit(1)
		}
		shutdown(ctx)
		return
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	spec := fmt.Sprintf("@every %dh", cfg.Schedule.IntervalHours)
	if _, err := c.AddFunc(spec, func() {
		if _, err := orch.Run(ctx, opts); err != nil {
			logger.ErrorWithErr(ctx, "Scheduled run failed", err)
		}
	}); err != nil {
		logger.ErrorWithErr(ctx, "Failed to schedule runs", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Poster started", "intervalHours", cfg.Schedule.IntervalHours, "dryRun", cfg.DryRun)

	// First cycle fires immediately; cron handles the rest.
	if _, err := orch.Run(ctx, opts); err != nil {
		logger.ErrorWithErr(ctx, "Initial run failed", err)
	}
	c.Start()

	<-sigc
	logger.Info(ctx, "Shutting down")
	<-c.Stop().Done()
	shutdown(ctx)
}

// buildOptions validates manual-post flags into run options.
func buildOptions(title, summary, tone string, tags []string, skipPublish bool) (orchestrator.Options, error) {
	opts := orchestrator.Options{SkipPublish: skipPublish}

	if title == "" {
		if summary != "" || tone != "" || len(tags) > 0 {
			return opts, fmt.Errorf("--summary, --tone and --tag require --title")
		}
		return opts, nil
	}
	if summary == "" {
		return opts, fmt.Errorf("--title requires --summary")
	}

	opts.Manual = &types.ContentItem{
		Title:   title,
		Summary: summary,
		Tags:    tags,
		Tone:    tone,
	}
	return opts, nil
}
