package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/claude/repcoach/internal/ingest/alpha"
	"github.com/claude/repcoach/internal/models"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record training data in the local journal",
}

var logImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import an Alpha Progression CSV export",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogImport,
}

var logWeightCmd = &cobra.Command{
	Use:   "weight KG",
	Short: "Record a body-weight measurement",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogWeight,
}

var logDate string

// localUser is the journal owner. The journal is single-user.
const localUser = 1

func init() {
	logWeightCmd.Flags().StringVar(&logDate, "date", "", "measurement date (YYYY-MM-DD, defaults to today)")
	logCmd.AddCommand(logImportCmd, logWeightCmd)
	rootCmd.AddCommand(logCmd)
}

func runLogImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := alpha.NewProvider(store, newLogger(cmd)).Ingest(cmd.Context(), f, localUser)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sessions: %d sets inserted, %d skipped (%d warm-up, %d without RIR)\n",
		result.SessionsReceived, result.SetsInserted, result.SetsSkipped, result.WarmupSets, result.UntrackedRIR)
	for _, name := range result.Exercises {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
	return nil
}

func runLogWeight(cmd *cobra.Command, args []string) error {
	kg, err := strconv.ParseFloat(args[0], 64)
	if err != nil || kg <= 0 || kg > 500 {
		return fmt.Errorf("weight must be a number between 0 and 500 kg, got %q", args[0])
	}
	date := time.Now()
	if logDate != "" {
		if date, err = time.Parse("2006-01-02", logDate); err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
	}

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InsertWeightSample(cmd.Context(), models.WeightSampleRow{
		UserID:   localUser,
		Date:     date,
		WeightKg: kg,
		Source:   "cli",
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %.1f kg on %s\n", kg, date.Format("2006-01-02"))
	return nil
}
