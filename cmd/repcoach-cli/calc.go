package main

import (
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/coach"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "BMI category, recommended goal and cardio protocol for a body profile",
	RunE:  runAnalyze,
}

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Recommend a training split for the days available",
	RunE:  runSplit,
}

var volumeCmd = &cobra.Command{
	Use:   "volume",
	Short: "Weekly sets per muscle group",
	RunE:  runVolume,
}

var intensityCmd = &cobra.Command{
	Use:   "intensity",
	Short: "Reps, RIR, rest and tempo for an exercise category",
	RunE:  runIntensity,
}

var (
	analyzeWeight    float64
	analyzeHeight    float64
	analyzeTarget    float64
	analyzeEquipment []string
	analyzeConsult   float64
	analyzeGap       float64

	calcDays      int
	calcLevel     string
	calcGoal      string
	calcNutrition string
	calcCategory  string
)

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeWeight, "weight", 0, "body weight in kg (required)")
	analyzeCmd.Flags().Float64Var(&analyzeHeight, "height", 0, "height in cm (required)")
	analyzeCmd.Flags().Float64Var(&analyzeTarget, "target", 0, "target weight in kg (required)")
	analyzeCmd.Flags().StringSliceVar(&analyzeEquipment, "equipment", nil, "available equipment")
	analyzeCmd.Flags().Float64Var(&analyzeConsult, "consult-bmi", coach.DefaultThresholds().ConsultBMI, "BMI at which a medical consult is advised")
	analyzeCmd.Flags().Float64Var(&analyzeGap, "ambitious-gap", coach.DefaultThresholds().AmbitiousGapKg, "weight-loss kg above which sub-goals are suggested")
	for _, f := range []string{"weight", "height", "target"} {
		if err := analyzeCmd.MarkFlagRequired(f); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", f, err))
		}
	}

	splitCmd.Flags().IntVarP(&calcDays, "days", "d", 0, "training days per week (required)")
	splitCmd.Flags().StringVarP(&calcLevel, "level", "l", "beginner", "beginner, intermediate or advanced")
	if err := splitCmd.MarkFlagRequired("days"); err != nil {
		panic(fmt.Sprintf("failed to mark days flag as required: %v", err))
	}

	volumeCmd.Flags().StringVarP(&calcLevel, "level", "l", "beginner", "beginner, intermediate or advanced")
	volumeCmd.Flags().StringVarP(&calcGoal, "goal", "g", "hypertrophy", "training goal")
	volumeCmd.Flags().StringVarP(&calcNutrition, "nutrition", "n", "maintenance", "surplus, maintenance or deficit")

	intensityCmd.Flags().StringVarP(&calcGoal, "goal", "g", "hypertrophy", "training goal")
	intensityCmd.Flags().StringVarP(&calcCategory, "category", "c", "compound_heavy", "compound_heavy, compound_medium, isolation or bodyweight")

	rootCmd.AddCommand(analyzeCmd, splitCmd, volumeCmd, intensityCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeWeight <= 0 || analyzeHeight <= 0 || analyzeTarget <= 0 {
		return fmt.Errorf("weight, height and target must be positive")
	}
	a := coach.AnalyzeProfile(coach.ProfileInput{
		WeightKg:       analyzeWeight,
		HeightCm:       analyzeHeight,
		TargetWeightKg: analyzeTarget,
		Equipment:      analyzeEquipment,
	}, coach.Thresholds{ConsultBMI: analyzeConsult, AmbitiousGapKg: analyzeGap})
	return printJSON(cmd.OutOrStdout(), a)
}

func runSplit(cmd *cobra.Command, _ []string) error {
	level, err := coach.ParseLevel(calcLevel)
	if err != nil {
		return err
	}
	plan, err := coach.RecommendSplit(calcDays, level)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%.1fx per muscle per week)\n%s\n\n", plan.Split.Title(), plan.Frequency, plan.Description)
	for i, day := range plan.Schedule {
		fmt.Fprintf(out, "  %-9s %s\n", weekdays[i], day)
	}
	if len(plan.Warnings) > 0 {
		fmt.Fprintf(out, "\nNotes:\n  - %s\n", strings.Join(plan.Warnings, "\n  - "))
	}
	return nil
}

func runVolume(cmd *cobra.Command, _ []string) error {
	level, err := coach.ParseLevel(calcLevel)
	if err != nil {
		return err
	}
	goal, err := coach.ParseGoal(calcGoal)
	if err != nil {
		return err
	}
	nutrition, err := coach.ParseNutrition(calcNutrition)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), coach.CalculateVolume(level, goal, nutrition))
}

func runIntensity(cmd *cobra.Command, _ []string) error {
	goal, err := coach.ParseGoal(calcGoal)
	if err != nil {
		return err
	}
	category, err := coach.ParseCategory(calcCategory)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), coach.Prescribe(goal, category))
}

var weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
