package main

import (
	"fmt"
	"os"

	"github.com/claude/repcoach/internal/upload"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload new Alpha Progression exports to a RepCoach server",
	Long:  "Walks a directory of Alpha Progression CSV exports and uploads the ones that are new or changed since the last sync. Upload state is kept in the journal.",
	RunE:  runSync,
}

var (
	syncServer string
	syncAPIKey string
	syncDir    string
	syncUser   string
	syncDryRun bool
)

func init() {
	syncCmd.Flags().StringVar(&syncServer, "server", os.Getenv("REPCOACH_SERVER_URL"), "RepCoach server URL")
	syncCmd.Flags().StringVar(&syncAPIKey, "api-key", os.Getenv("REPCOACH_AUTH_API_KEY"), "API key for write access")
	syncCmd.Flags().StringVar(&syncDir, "dir", ".", "directory containing CSV exports")
	syncCmd.Flags().StringVar(&syncUser, "user", "me", "target user (me or a numeric ID)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "list files without uploading")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncServer == "" && !syncDryRun {
		return fmt.Errorf("--server is required (or set REPCOACH_SERVER_URL)")
	}

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	u := upload.New(upload.NewClient(syncServer, syncAPIKey), store, syncDir, syncUser, syncDryRun, newLogger(cmd))
	stats, err := u.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Files: %d total, %d uploaded, %d unchanged, %d failed\n",
		stats.FilesTotal, stats.FilesUploaded, stats.FilesSkipped, stats.FilesErrored)
	if !syncDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Sessions: %d, sets inserted: %d, skipped: %d\n",
			stats.SessionsSent, stats.SetsInserted, stats.SetsSkipped)
	}
	if stats.FilesErrored > 0 {
		return fmt.Errorf("%d file(s) failed to sync", stats.FilesErrored)
	}
	return nil
}
