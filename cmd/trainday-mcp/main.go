// Command trainday-mcp serves the TrainDay MCP tools over stdio. With
// -server it forwards to a running TrainDay API, otherwise it opens the
// configured store directly.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/trainday/internal/app"
	"github.com/claude/trainday/internal/config"
	trainmcp "github.com/claude/trainday/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	serverURL := flag.String("server", "", "TrainDay API base URL (e.g. http://trainday.tailnet.ts.net); empty opens the local store")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	var backend trainmcp.Backend
	if *serverURL != "" {
		backend = trainmcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		a, err := app.Open(context.Background(), cfg, log)
		if err != nil {
			log.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer a.Close()
		backend = a.Service
	}

	s := trainmcp.New(backend, Version, log)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
