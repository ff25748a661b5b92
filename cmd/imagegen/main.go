package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"ai-market-poster/internal/genai"
	"ai-market-poster/internal/logger"
	"ai-market-poster/internal/store"
	"ai-market-poster/internal/trace"

	"github.com/joho/godotenv"
)

func main() {
	var (
		promptText = flag.String("prompt", "", "image prompt text")
		promptFile = flag.String("prompt-file", "", "read the prompt from a file")
		tone       = flag.String("tone", "Professional", "tone label controlling the image style")
		outputDir  = flag.String("output-dir", "", "directory for generated images (defaults to config)")
		configPath = flag.String("config", "config.yaml", "path to the YAML config file")
	)
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	_ = trace.Init()

	ctx := context.Background()

	prompt, err := resolvePrompt(*promptText, *promptFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = store.DefaultConfig()
	}

	creds := store.LoadCredentials()
	if err := creds.CheckGoogle(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	dir := cfg.Output.ImageDir
	if *outputDir != "" {
		dir = *outputDir
	}

	gen := genai.NewImageGenerator(creds.GoogleKey, cfg.Image.Model, dir)
	path, err := gen.Generate(ctx, prompt, *tone)
	if err != nil {
		logger.ErrorWithErr(ctx, "Image generation failed", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

// resolvePrompt enforces exactly one prompt source.
func resolvePrompt(text, file string) (string, error) {
	switch {
	case text != "" && file != "":
		return "", fmt.Errorf("--prompt and --prompt-file are mutually exclusive")
	case text != "":
		return text, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read prompt file: %w", err)
		}
		prompt := strings.TrimSpace(string(raw))
		if prompt == "" {
			return "", fmt.Errorf("prompt file %s is empty", file)
		}
		return prompt, nil
	default:
		return "", fmt.Errorf("one of --prompt or --prompt-file is required")
	}
}
