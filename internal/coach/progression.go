package coach

import "fmt"

// Action is a progression verdict for the next session.
type Action string

const (
	ActionIncrease      Action = "increase"
	ActionMaintain      Action = "maintain"
	ActionDeload        Action = "deload"
	ActionChangeVariant Action = "change_variant"
)

// Load increments for a successful session.
const (
	LowerBodyIncrementKg = 5.0
	UpperBodyIncrementKg = 2.5
)

// SetLog is one working set of the last session of an exercise.
type SetLog struct {
	RepsTarget int     `json:"reps_target"`
	RepsDone   int     `json:"reps_done"`
	WeightKg   float64 `json:"weight_kg"`
	RIR        float64 `json:"rir"`
}

// ProgressionDecision is what to do with the load next session.
type ProgressionDecision struct {
	Action   Action  `json:"action"`
	AmountKg float64 `json:"amount_kg,omitempty"`
	Reason   string  `json:"reason"`
}

// AnalyzeProgress applies double-progression rules to the last session.
// It never prescribes a deload; that is left to the adaptation review.
func AnalyzeProgress(sets []SetLog, lowerBody bool) ProgressionDecision {
	if len(sets) == 0 {
		return ProgressionDecision{Action: ActionMaintain, Reason: "No sets logged for the last session. Keep the current load."}
	}

	missed := 0
	allEasy := true
	var rirSum float64
	for _, s := range sets {
		if s.RepsDone < s.RepsTarget {
			missed++
		}
		if s.RIR < 2 {
			allEasy = false
		}
		rirSum += s.RIR
	}
	avgRIR := rirSum / float64(len(sets))

	switch {
	case missed >= 2:
		return ProgressionDecision{
			Action: ActionMaintain,
			Reason: fmt.Sprintf("Missed rep targets on %d sets. Master the current weight first.", missed),
		}
	case allEasy:
		amount := UpperBodyIncrementKg
		if lowerBody {
			amount = LowerBodyIncrementKg
		}
		return ProgressionDecision{
			Action:   ActionIncrease,
			AmountKg: amount,
			Reason:   fmt.Sprintf("All sets completed with an average of %.1f RIR. Ready for overload.", avgRIR),
		}
	case avgRIR >= 0 && avgRIR < 2:
		return ProgressionDecision{
			Action: ActionMaintain,
			Reason: fmt.Sprintf("Good intensity near failure (%.1f RIR). Consolidate this load before adding weight.", avgRIR),
		}
	default:
		return ProgressionDecision{
			Action: ActionMaintain,
			Reason: "Sets went past failure. Keep the load and watch recovery.",
		}
	}
}
