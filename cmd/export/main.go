// Command export writes every completed submission in the configured store to
// an XLSX or CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxform/internal/app"
	"voxform/internal/config"
	"voxform/internal/export"
	"voxform/internal/logger"
)

func main() {
	out := flag.String("out", "", "output file (default submissions_YYYY-MM-DD.xlsx)")
	flag.Parse()

	if err := run(*out); err != nil {
		log.Fatal(err)
	}
}

func run(out string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	cfg.Metrics.Enabled = false
	if cfg.Session.Store == "" || cfg.Session.Store == "memory" {
		return fmt.Errorf("session store is %q; export needs sqlite or postgres", cfg.Session.Store)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	subs, err := export.Collect(ctx, a.Submissions.List)
	if err != nil {
		return err
	}

	if out == "" {
		out = export.BuildFilename("xlsx", time.Now())
	}
	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(out), ".csv") {
		err = export.WriteCSV(f, subs)
	} else {
		err = export.WriteXLSX(f, subs)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info(ctx, "export written", "file", out, "submissions", len(subs))
	return nil
}
