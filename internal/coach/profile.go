package coach

import (
	"math"
	"strings"
)

// BMICategory is the WHO body-mass-index band.
type BMICategory string

const (
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

// Thresholds tunes the profile warnings.
type Thresholds struct {
	// ConsultBMI is the BMI at or above which a medical consult is advised.
	ConsultBMI float64
	// AmbitiousGapKg is the weight-loss target above which sub-goals are suggested.
	AmbitiousGapKg float64
}

// DefaultThresholds returns the thresholds used when none are configured.
func DefaultThresholds() Thresholds {
	return Thresholds{ConsultBMI: 35, AmbitiousGapKg: 20}
}

// ProfileInput is the body data needed to analyze a user.
type ProfileInput struct {
	WeightKg       float64  `json:"weight_kg"`
	HeightCm       float64  `json:"height_cm"`
	TargetWeightKg float64  `json:"target_weight_kg"`
	Equipment      []string `json:"equipment,omitempty"`
}

// CardioPlan is the recommended conditioning protocol.
type CardioPlan struct {
	Type        string   `json:"type"`
	Frequency   int      `json:"frequency_per_week"`
	DurationMin int      `json:"duration_minutes"`
	Options     []string `json:"options"`
	Reasoning   string   `json:"reasoning"`
}

// ProfileAnalysis is the result of AnalyzeProfile.
type ProfileAnalysis struct {
	BMI             float64     `json:"bmi"`
	Category        BMICategory `json:"category"`
	RecommendedGoal Goal        `json:"recommended_goal"`
	Cardio          CardioPlan  `json:"cardio"`
	Warnings        []string    `json:"warnings"`
}

// AnalyzeProfile classifies BMI and derives a goal, a cardio protocol and
// any safety warnings. It never rejects input.
func AnalyzeProfile(in ProfileInput, th Thresholds) ProfileAnalysis {
	heightM := in.HeightCm / 100
	bmi := 0.0
	if heightM > 0 {
		bmi = in.WeightKg / (heightM * heightM)
	}

	category := classifyBMI(bmi)
	goal := recommendGoal(bmi, in.WeightKg, in.TargetWeightKg)

	warnings := []string{}
	if bmi >= th.ConsultBMI {
		warnings = append(warnings, "BMI is very high. Consult a doctor before starting high-impact training.")
	}
	if bmi >= 30 && in.WeightKg-in.TargetWeightKg > th.AmbitiousGapKg {
		warnings = append(warnings, "The weight-loss target is ambitious. Split it into sub-goals of 5-10 kg.")
	}
	if bmi < 18.5 {
		warnings = append(warnings, "Low body weight. Prioritize a caloric surplus and strength training.")
	}

	return ProfileAnalysis{
		BMI:             math.Round(bmi*10) / 10,
		Category:        category,
		RecommendedGoal: goal,
		Cardio:          recommendCardio(category, goal, hasTreadmill(in.Equipment)),
		Warnings:        warnings,
	}
}

func classifyBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

func recommendGoal(bmi, current, target float64) Goal {
	switch {
	case bmi >= 30:
		return GoalFatLoss
	case bmi >= 25:
		return GoalRecomposition
	case bmi < 18.5:
		return GoalHypertrophy
	case target < current:
		return GoalFatLoss
	case target > current:
		return GoalHypertrophy
	default:
		return GoalStrength
	}
}

func hasTreadmill(equipment []string) bool {
	for _, e := range equipment {
		e = strings.ToLower(e)
		if strings.Contains(e, "treadmill") || strings.Contains(e, "cinta") {
			return true
		}
	}
	return false
}

func recommendCardio(category BMICategory, goal Goal, treadmill bool) CardioPlan {
	switch {
	case category == BMIObese:
		opts := []string{}
		if treadmill {
			opts = append(opts, "Incline treadmill walk (5-8% grade, 4-5 km/h)")
		}
		opts = append(opts, "Brisk outdoor walk", "Marching in place")
		return CardioPlan{
			Type:        "low_impact",
			Frequency:   5,
			DurationMin: 40,
			Options:     opts,
			Reasoning:   "Low-impact work protects the joints while building an energy deficit.",
		}

	case category == BMIOverweight && goal == GoalFatLoss:
		opts := []string{}
		if treadmill {
			opts = append(opts, "Treadmill intervals (2 min walk, 1 min jog)", "Steady treadmill jog")
		}
		opts = append(opts, "Outdoor jog", "Brisk walk")
		return CardioPlan{
			Type:        "moderate",
			Frequency:   4,
			DurationMin: 30,
			Options:     opts,
			Reasoning:   "Moderate cardio supports fat loss without compromising recovery.",
		}

	case goal == GoalFatLoss:
		opts := []string{}
		if treadmill {
			opts = append(opts, "20 min treadmill HIIT")
		}
		opts = append(opts, "Outdoor sprints (30 s on, 90 s off)", "Burpees", "Mountain climbers")
		return CardioPlan{
			Type:        "moderate",
			Frequency:   3,
			DurationMin: 25,
			Options:     opts,
			Reasoning:   "Short intense sessions raise energy expenditure while keeping muscle.",
		}
	}

	opts := []string{"Outdoor walk"}
	if treadmill {
		opts = []string{"Light treadmill walk"}
	}
	return CardioPlan{
		Type:        "optional",
		Frequency:   2,
		DurationMin: 20,
		Options:     opts,
		Reasoning:   "Light cardio for cardiovascular health and recovery.",
	}
}
