package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/storage"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or seed the exercise catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog exercises",
	RunE:  runCatalogList,
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Upsert the catalog into the server database",
	RunE:  runCatalogSeed,
}

var (
	catalogFile      string
	catalogConfig    string
	catalogBodyPart  string
	catalogEquipment []string
)

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogFile, "file", "", "YAML catalog (defaults to the built-in one)")
	catalogListCmd.Flags().StringVar(&catalogBodyPart, "body-part", "", "filter by body part")
	catalogListCmd.Flags().StringSliceVar(&catalogEquipment, "equipment", nil, "filter by equipment")
	catalogSeedCmd.Flags().StringVar(&catalogConfig, "config", "config.yaml", "server config file with the database section")

	catalogCmd.AddCommand(catalogListCmd, catalogSeedCmd)
	rootCmd.AddCommand(catalogCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(catalogFile)
}

func runCatalogList(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	q := coach.ExerciseQuery{Equipment: catalogEquipment}
	if catalogBodyPart != "" {
		q.BodyParts = []string{catalogBodyPart}
	}
	exs, err := cat.Find(cmd.Context(), q)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tBODY PART\tEQUIPMENT\tCOMPOUND")
	for _, ex := range exs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", ex.Slug, ex.Title, ex.BodyPart, ex.Equipment, ex.Compound)
	}
	return tw.Flush()
}

func runCatalogSeed(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	cfg, err := config.Load(catalogConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.UpsertExercises(ctx, cat.All())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d of %d exercises\n", n, cat.Len())
	return nil
}
