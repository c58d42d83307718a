package coach

import "math"

// VolumePolicy is the weekly working-set range for one muscle group.
type VolumePolicy struct {
	MinSets     int    `json:"min_sets"`
	OptimalSets int    `json:"optimal_sets"`
	MaxSets     int    `json:"max_sets"`
	Reason      string `json:"reason"`
}

// CalculateVolume returns the weekly set range per muscle group.
//
// Adjustments are applied in a fixed order (level baseline, then goal, then
// nutrition) and each step rounds, so the order changes the result.
func CalculateVolume(level Level, goal Goal, nutrition Nutrition) VolumePolicy {
	if nutrition == "" {
		nutrition = NutritionMaintenance
	}

	v := volumeBaseline(level)

	switch goal {
	case GoalStrength:
		v.MinSets = scaleSets(v.MinSets, 0.7)
		v.OptimalSets = scaleSets(v.OptimalSets, 0.8)
		v.MaxSets = scaleSets(v.MaxSets, 0.8)
		v.Reason += ", reduced to leave room for heavy intensity"
	case GoalMaintenance:
		v = VolumePolicy{MinSets: 6, OptimalSets: 8, MaxSets: 10, Reason: "Maintenance volume (minimum effective dose)"}
	}

	if nutrition == NutritionDeficit || goal == GoalFatLoss {
		v.OptimalSets = scaleSets(v.OptimalSets, 0.85)
		v.MaxSets = scaleSets(v.MaxSets, 0.85)
		v.Reason += ", reduced for recovery in a caloric deficit"
	}

	return v
}

func volumeBaseline(level Level) VolumePolicy {
	switch level {
	case LevelIntermediate:
		return VolumePolicy{MinSets: 12, OptimalSets: 15, MaxSets: 18, Reason: "Optimal hypertrophy range"}
	case LevelAdvanced:
		return VolumePolicy{MinSets: 15, OptimalSets: 18, MaxSets: 22, Reason: "High volume tolerance required"}
	default:
		return VolumePolicy{MinSets: 8, OptimalSets: 10, MaxSets: 12, Reason: "Neural adaptation primary"}
	}
}

// scaleSets multiplies and rounds half away from zero.
func scaleSets(sets int, factor float64) int {
	return int(math.Round(float64(sets) * factor))
}
