package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// repcoach-mcp serves the MCP tools over stdio and forwards every call to a
// remote RepCoach server, typically reached over Tailscale.
func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", os.Getenv("REPCOACH_SERVER_URL"), "RepCoach server URL (e.g. http://repcoach)")
	apiKey := flag.String("api-key", os.Getenv("REPCOACH_AUTH_API_KEY"), "API key for write tools")
	flag.Parse()

	// stdout carries the protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: repcoach-mcp -server http://repcoach [-api-key KEY]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := repmcp.NewHTTPClient(*serverURL, *apiKey)
	s := repmcp.New(client, Version, log)

	log.Info("mcp stdio server starting", "server", *serverURL, "version", Version)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
