// Command mcp serves the voxform tools over stdio for MCP clients.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"voxform/internal/app"
	"voxform/internal/config"
	"voxform/internal/logger"
	"voxform/internal/mcpserver"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// stdout carries the protocol, so logs go to stderr.
	logger.Init(&logger.Config{Level: cfg.Log.Level, Format: "json", Output: os.Stderr})
	// The scrape endpoint is not served here.
	cfg.Metrics.Enabled = false

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(ctx) }()

	s := mcpserver.NewServer(a.Service, version)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
