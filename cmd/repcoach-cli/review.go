package main

import (
	"fmt"
	"time"

	"github.com/claude/repcoach/internal/catalog"
	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/service"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review journal entries against the progression and adaptation rules",
}

var reviewExerciseCmd = &cobra.Command{
	Use:   "exercise NAME",
	Short: "Decide the next load for an exercise from its latest session",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewExercise,
}

var reviewAdaptationCmd = &cobra.Command{
	Use:   "adaptation",
	Short: "Check recent body weight and equipment for plan adjustments",
	RunE:  runReviewAdaptation,
}

var (
	reviewJSON       bool
	reviewGoal       string
	reviewTarget     float64
	reviewPrevious   []string
	reviewCurrent    []string
	reviewWindowDays int
)

func init() {
	reviewCmd.PersistentFlags().BoolVar(&reviewJSON, "json", false, "print the result as JSON")

	reviewAdaptationCmd.Flags().StringVarP(&reviewGoal, "goal", "g", "hypertrophy", "current training goal")
	reviewAdaptationCmd.Flags().Float64Var(&reviewTarget, "target", 0, "target body weight (kg)")
	reviewAdaptationCmd.Flags().StringSliceVar(&reviewPrevious, "previous-equipment", nil, "equipment the plan was built for")
	reviewAdaptationCmd.Flags().StringSliceVar(&reviewCurrent, "current-equipment", nil, "equipment available now")
	reviewAdaptationCmd.Flags().IntVar(&reviewWindowDays, "days", 56, "weight history window in days")

	reviewCmd.AddCommand(reviewExerciseCmd, reviewAdaptationCmd)
	rootCmd.AddCommand(reviewCmd)
}

func runReviewExercise(cmd *cobra.Command, args []string) error {
	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.LatestSessionSets(cmd.Context(), localUser, args[0])
	if err != nil {
		return err
	}

	lowerBody := false
	if ex, err := catalog.Default().GetExerciseByName(cmd.Context(), args[0]); err == nil {
		lowerBody = coach.IsLowerBody(ex.BodyPart)
	}

	decision := coach.AnalyzeProgress(service.ToSetLogs(rows), lowerBody)
	if reviewJSON {
		return printJSON(cmd.OutOrStdout(), decision)
	}

	out := cmd.OutOrStdout()
	if len(rows) > 0 {
		fmt.Fprintf(out, "%s (%s, %d sets)\n", args[0], rows[0].SessionDate.Format("2006-01-02"), len(rows))
	}
	if decision.Action == coach.ActionIncrease {
		fmt.Fprintf(out, "%s +%.1f kg\n", decision.Action, decision.AmountKg)
	} else {
		fmt.Fprintf(out, "%s\n", decision.Action)
	}
	fmt.Fprintln(out, decision.Reason)
	return nil
}

func runReviewAdaptation(cmd *cobra.Command, _ []string) error {
	goal, err := coach.ParseGoal(reviewGoal)
	if err != nil {
		return err
	}
	if reviewWindowDays < 1 {
		return fmt.Errorf("--days must be positive")
	}

	store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	since := time.Now().AddDate(0, 0, -reviewWindowDays)
	rows, err := store.WeightHistory(cmd.Context(), localUser, since)
	if err != nil {
		return err
	}
	history := make([]coach.WeightSample, len(rows))
	for i, r := range rows {
		history[i] = coach.WeightSample{Date: r.Date, WeightKg: r.WeightKg}
	}

	in := coach.AdaptationInput{
		Goal:           goal,
		TargetWeightKg: reviewTarget,
		History:        history,
	}
	if cmd.Flags().Changed("previous-equipment") {
		in.PreviousEquipment = append([]string{}, reviewPrevious...)
		in.CurrentEquipment = reviewCurrent
	}

	plan := coach.PlanAdaptation(in)
	if reviewJSON {
		return printJSON(cmd.OutOrStdout(), plan)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Priority: %s (%d weight samples)\n%s\n", plan.Priority, len(history), plan.Summary)
	for _, t := range plan.Triggers {
		fmt.Fprintf(out, "- [%s] %s: %s (%s)\n", t.Severity, t.Type, t.Recommendation, t.Action)
	}
	return nil
}
