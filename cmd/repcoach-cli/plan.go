package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/coach"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a weekly routine",
	Long:  "Builds a weekly routine from goal, level, days and equipment using the built-in exercise catalog or a YAML catalog file.",
	RunE:  runPlan,
}

var (
	planGoal      string
	planLevel     string
	planDays      int
	planNutrition string
	planEquipment []string
	planCatalog   string
	planJSON      bool
)

func init() {
	planCmd.Flags().StringVarP(&planGoal, "goal", "g", "hypertrophy", "training goal")
	planCmd.Flags().StringVarP(&planLevel, "level", "l", "beginner", "beginner, intermediate or advanced")
	planCmd.Flags().IntVarP(&planDays, "days", "d", 3, "training days per week")
	planCmd.Flags().StringVarP(&planNutrition, "nutrition", "n", "maintenance", "surplus, maintenance or deficit")
	planCmd.Flags().StringSliceVarP(&planEquipment, "equipment", "e", nil, "available equipment (bodyweight is always included)")
	planCmd.Flags().StringVar(&planCatalog, "catalog", "", "YAML exercise catalog (defaults to the built-in one)")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the routine as JSON")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	goal, err := coach.ParseGoal(planGoal)
	if err != nil {
		return err
	}
	level, err := coach.ParseLevel(planLevel)
	if err != nil {
		return err
	}
	nutrition, err := coach.ParseNutrition(planNutrition)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if planCatalog != "" {
		if cat, err = catalog.Load(planCatalog); err != nil {
			return err
		}
	}

	routine, err := coach.NewRoutineGenerator(cat).Generate(cmd.Context(), coach.RoutineRequest{
		Goal:          goal,
		Level:         level,
		DaysAvailable: planDays,
		Equipment:     planEquipment,
		Nutrition:     nutrition,
	})
	if err != nil {
		return err
	}
	if planJSON {
		return printJSON(cmd.OutOrStdout(), routine)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n", routine.Name, routine.Description)
	fmt.Fprintf(out, "Weekly volume: %d sets per muscle (range %d-%d), frequency %.1fx\n",
		routine.WeeklyVolume, routine.Volume.MinSets, routine.Volume.MaxSets, routine.Frequency)
	for _, w := range routine.Warnings {
		fmt.Fprintf(out, "Note: %s\n", w)
	}

	for _, day := range routine.Days {
		fmt.Fprintf(out, "\n%s: %s (%s)\n", day.Weekday, day.DayName, day.Focus)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  EXERCISE\tSETS\tREPS\tRIR\tREST\tTEMPO")
		for _, ex := range day.Exercises {
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%ss\t%s\n",
				ex.Exercise.Title, ex.Sets, ex.Reps, ex.RIR, ex.Rest, ex.Tempo)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
