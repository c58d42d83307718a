// Command repcoach-cli runs the coaching calculators locally, keeps an
// offline journal of set logs and body weight, and syncs exports to a
// RepCoach server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/repcoach/internal/localstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	journalPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "repcoach-cli",
	Short:         "Strength training prescriptions from the command line",
	Long:          "repcoach-cli analyzes profiles, recommends splits and volume, builds weekly routines and reviews logged sessions. Set logs and body weight are kept in a local journal.",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&journalPath, "journal", defaultJournal(), "path to the local SQLite journal")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultJournal() string {
	if v := os.Getenv("REPCOACH_JOURNAL"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "repcoach-journal.db"
	}
	return filepath.Join(home, ".repcoach", "journal.db")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func openJournal() (*localstore.Store, error) {
	store, err := localstore.Open(journalPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", journalPath, err)
	}
	return store, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
