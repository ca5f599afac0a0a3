// Package main provides the chatbot server entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/app"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/buildinfo"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.SentryRelease == "" && buildinfo.Version != "" {
		cfg.SentryRelease = buildinfo.Version
	}

	application, err := app.Initialize(context.Background(), cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
