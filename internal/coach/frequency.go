package coach

import "fmt"

// Split is a weekly training-split archetype.
type Split string

const (
	SplitFullBody   Split = "full_body"
	SplitUpperLower Split = "upper_lower"
	SplitPPL        Split = "ppl"
	SplitArnold     Split = "arnold"
	SplitBro        Split = "bro_split"
	SplitULPPL      Split = "ulppl"
)

// Title is the display name of the split.
func (s Split) Title() string {
	switch s {
	case SplitFullBody:
		return "Full Body"
	case SplitUpperLower:
		return "Upper/Lower"
	case SplitPPL:
		return "Push/Pull/Legs"
	case SplitArnold:
		return "Arnold"
	case SplitBro:
		return "Bro Split"
	case SplitULPPL:
		return "Upper/Lower + PPL"
	}
	return string(s)
}

// RestDay labels an off day in a schedule.
const RestDay = "Rest"

// SplitPolicy is the weekly structure for a given availability.
type SplitPolicy struct {
	Split       Split     `json:"split"`
	Frequency   float64   `json:"frequency_per_muscle"`
	Description string    `json:"description"`
	Schedule    [7]string `json:"schedule"`
	Warnings    []string  `json:"warnings"`
}

// TrainingDays returns the number of non-rest slots in the schedule.
func (p SplitPolicy) TrainingDays() int {
	n := 0
	for _, d := range p.Schedule {
		if d != RestDay {
			n++
		}
	}
	return n
}

// RecommendSplit picks a split archetype for the available days.
// Fewer than three days is a validation error; more than six days is folded
// into the six-day split with a warning.
func RecommendSplit(days int, level Level) (SplitPolicy, error) {
	if days < MinTrainingDays {
		return SplitPolicy{}, fmt.Errorf("%w (got %d)", ErrTooFewDays, days)
	}

	var p SplitPolicy
	switch {
	case days == 3:
		p = SplitPolicy{
			Split:       SplitFullBody,
			Frequency:   3,
			Description: "High frequency, moderate volume per session.",
			Schedule:    [7]string{"Full Body", RestDay, "Full Body", RestDay, "Full Body", RestDay, RestDay},
			Warnings:    []string{"Do not pair a heavy squat and a heavy deadlift on the same day if possible."},
		}
	case days == 4:
		p = SplitPolicy{
			Split:       SplitUpperLower,
			Frequency:   2,
			Description: "Balanced frequency (x2) with good recovery between sessions.",
			Schedule:    [7]string{"Upper", "Lower", RestDay, "Upper", "Lower", RestDay, RestDay},
			Warnings:    []string{},
		}
	case days == 5 && level == LevelAdvanced:
		p = SplitPolicy{
			Split:       SplitBro,
			Frequency:   1,
			Description: "Maximum volume per session with a focus on metabolic stress.",
			Schedule:    [7]string{"Chest", "Back", "Legs", "Shoulders", "Arms", RestDay, RestDay},
			Warnings:    []string{"Intensity must be very high to justify training each muscle once a week."},
		}
	case days == 5:
		p = SplitPolicy{
			Split:       SplitULPPL,
			Frequency:   2,
			Description: "Hybrid: upper/lower for strength, push/pull/legs for hypertrophy.",
			Schedule:    [7]string{"Upper", "Lower", RestDay, "Push", "Pull", "Legs", RestDay},
			Warnings:    []string{"Manage volume carefully across the three-day block."},
		}
	case level == LevelAdvanced:
		p = SplitPolicy{
			Split:       SplitArnold,
			Frequency:   1.5,
			Description: "Antagonist pairing: chest/back, shoulders/arms, legs.",
			Schedule:    [7]string{"Chest/Back", "Shoulders/Arms", "Legs", "Chest/Back", "Shoulders/Arms", "Legs", RestDay},
			Warnings:    []string{"High systemic fatigue. Plan a deload every 4-6 weeks."},
		}
	default:
		p = SplitPolicy{
			Split:       SplitPPL,
			Frequency:   2,
			Description: "Standard push/pull/legs with a logical biomechanical grouping.",
			Schedule:    [7]string{"Push", "Pull", "Legs", "Push", "Pull", "Legs", RestDay},
			Warnings:    []string{},
		}
	}

	if days > MaxTrainingDays {
		p.Warnings = append([]string{
			fmt.Sprintf("%d training days requested; planning %d because recovery needs at least one rest day.", days, MaxTrainingDays),
		}, p.Warnings...)
	}
	return p, nil
}
