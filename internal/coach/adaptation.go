package coach

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// TriggerType is the signal that raised an adaptation trigger.
type TriggerType string

const (
	TriggerWeightChange    TriggerType = "weight_change"
	TriggerEquipmentChange TriggerType = "equipment_change"
	TriggerPlateau         TriggerType = "plateau"
)

// Severity grades a trigger.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// AdaptAction is the corrective action suggested by a trigger.
type AdaptAction string

const (
	AdaptAdjustCalories AdaptAction = "adjust_calories"
	AdaptChangeSplit    AdaptAction = "change_split"
	AdaptAddCardio      AdaptAction = "add_cardio"
	AdaptReduceCardio   AdaptAction = "reduce_cardio"
	AdaptIncreaseVolume AdaptAction = "increase_volume"
	AdaptDeload         AdaptAction = "deload"
)

// Priority is the aggregated urgency of an adaptation plan.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AdaptationTrigger is one detected reason to change the plan.
type AdaptationTrigger struct {
	Type           TriggerType `json:"type"`
	Severity       Severity    `json:"severity"`
	Recommendation string      `json:"recommendation"`
	Action         AdaptAction `json:"action"`
}

// WeightSample is a dated body-weight measurement.
type WeightSample struct {
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}

// Weekly rate references as a fraction of body weight.
const (
	fatLossWeeklyRate     = 0.005
	hypertrophyWeeklyRate = 0.00375
	plateauWindow         = 4
	plateauThresholdKg    = 0.2
)

var highValueEquipment = []string{"barbell", "dumbbells", "machines"}

// AnalyzeWeightProgress compares the weight change over weeks against the
// reference rate for the goal. Only fat_loss and hypertrophy are evaluated.
func AnalyzeWeightProgress(current, previous, target float64, goal Goal, weeks float64) []AdaptationTrigger {
	if weeks <= 0 {
		weeks = 1
	}
	change := current - previous
	triggers := []AdaptationTrigger{}

	switch goal {
	case GoalFatLoss:
		expected := current * fatLossWeeklyRate * weeks
		if change > 0 {
			triggers = append(triggers, AdaptationTrigger{
				Type:           TriggerWeightChange,
				Severity:       SeverityMajor,
				Recommendation: fmt.Sprintf("Weight went up %.1f kg. Increase the caloric deficit or add cardio to move toward %.1f kg.", change, target),
				Action:         AdaptAddCardio,
			})
		} else if change < -2*expected {
			triggers = append(triggers, AdaptationTrigger{
				Type:           TriggerWeightChange,
				Severity:       SeverityModerate,
				Recommendation: fmt.Sprintf("Lost %.1f kg, faster than the %.1f kg reference. Reduce the deficit to preserve muscle.", -change, expected),
				Action:         AdaptAdjustCalories,
			})
		}

	case GoalHypertrophy:
		expected := current * hypertrophyWeeklyRate * weeks
		if change < 0 {
			triggers = append(triggers, AdaptationTrigger{
				Type:           TriggerWeightChange,
				Severity:       SeverityMajor,
				Recommendation: fmt.Sprintf("Lost %.1f kg during a gaining phase. Increase calories to move toward %.1f kg.", -change, target),
				Action:         AdaptAdjustCalories,
			})
		} else if change > 2*expected {
			triggers = append(triggers, AdaptationTrigger{
				Type:           TriggerWeightChange,
				Severity:       SeverityModerate,
				Recommendation: fmt.Sprintf("Gained %.1f kg, faster than the %.1f kg reference. Reduce the surplus to limit fat gain.", change, expected),
				Action:         AdaptAdjustCalories,
			})
		}
	}

	return triggers
}

// AnalyzeEquipmentChange compares two equipment snapshots after resolving
// them the way NormalizeEquipment does, so "Barra" and "barbell" are the same
// tag. Bodyweight is always available and never counts as a change.
// Removals take precedence over additions.
func AnalyzeEquipmentChange(old, current []string) *AdaptationTrigger {
	prev, curr := comparableEquipment(old), comparableEquipment(current)
	removed := missingFrom(prev, curr)
	added := missingFrom(curr, prev)

	if len(removed) > 0 {
		return &AdaptationTrigger{
			Type:           TriggerEquipmentChange,
			Severity:       SeverityMajor,
			Recommendation: fmt.Sprintf("Lost access to: %s. Regenerate the routine with the available equipment.", strings.Join(removed, ", ")),
			Action:         AdaptChangeSplit,
		}
	}

	for _, a := range added {
		if slices.Contains(highValueEquipment, a) {
			return &AdaptationTrigger{
				Type:           TriggerEquipmentChange,
				Severity:       SeverityModerate,
				Recommendation: fmt.Sprintf("New equipment available: %s. Consider regenerating for more effective exercises.", strings.Join(added, ", ")),
				Action:         AdaptChangeSplit,
			}
		}
	}
	return nil
}

// comparableEquipment returns the canonical tags without the implicit
// bodyweight entry.
func comparableEquipment(tags []string) []string {
	return slices.DeleteFunc(NormalizeEquipment(tags), func(t string) bool {
		return t == EquipmentBodyweight
	})
}

// missingFrom returns the items of a that are not in b, in a's order.
func missingFrom(a, b []string) []string {
	var out []string
	for _, e := range a {
		if !slices.Contains(b, e) {
			out = append(out, e)
		}
	}
	return out
}

// DetectPlateau reports a stall when the net change across the latest four
// samples is under 0.2 kg. history must be in chronological order.
func DetectPlateau(history []WeightSample, goal Goal) *AdaptationTrigger {
	if len(history) < plateauWindow {
		return nil
	}
	recent := history[len(history)-plateauWindow:]
	net := recent[len(recent)-1].WeightKg - recent[0].WeightKg
	if math.Abs(net) >= plateauThresholdKg {
		return nil
	}

	action := AdaptIncreaseVolume
	if goal == GoalFatLoss {
		action = AdaptAddCardio
	}
	return &AdaptationTrigger{
		Type:           TriggerPlateau,
		Severity:       SeverityModerate,
		Recommendation: "No progress across the last four weigh-ins. Consider a refeed, a deload or a calorie adjustment.",
		Action:         action,
	}
}

// AdaptationInput collects everything PlanAdaptation looks at.
// Equipment change is evaluated only when PreviousEquipment is non-nil.
type AdaptationInput struct {
	Goal              Goal           `json:"goal"`
	TargetWeightKg    float64        `json:"target_weight_kg"`
	History           []WeightSample `json:"history"`
	PreviousEquipment []string       `json:"previous_equipment,omitempty"`
	CurrentEquipment  []string       `json:"current_equipment,omitempty"`
}

// AdaptationPlan aggregates triggers into a single priority.
type AdaptationPlan struct {
	Triggers []AdaptationTrigger `json:"triggers"`
	Priority Priority            `json:"priority"`
	Summary  string              `json:"summary"`
}

var prioritySummaries = map[Priority]string{
	PriorityNone:   "All in order. Continue with the current plan.",
	PriorityLow:    "All in order. Continue with the current plan.",
	PriorityMedium: "Consider adjusting the plan to optimize results.",
	PriorityHigh:   "Action required: progress needs immediate adjustments.",
}

// PlanAdaptation runs every detector and ranks the result.
func PlanAdaptation(in AdaptationInput) AdaptationPlan {
	history := slices.Clone(in.History)
	slices.SortStableFunc(history, func(a, b WeightSample) int { return a.Date.Compare(b.Date) })

	triggers := []AdaptationTrigger{}
	if len(history) >= 2 {
		first, last := history[0], history[len(history)-1]
		weeks := math.Max(1, last.Date.Sub(first.Date).Hours()/(24*7))
		triggers = append(triggers, AnalyzeWeightProgress(last.WeightKg, first.WeightKg, in.TargetWeightKg, in.Goal, weeks)...)
	}
	if t := DetectPlateau(history, in.Goal); t != nil {
		triggers = append(triggers, *t)
	}
	if in.PreviousEquipment != nil {
		if t := AnalyzeEquipmentChange(in.PreviousEquipment, in.CurrentEquipment); t != nil {
			triggers = append(triggers, *t)
		}
	}

	p := rankTriggers(triggers)
	return AdaptationPlan{Triggers: triggers, Priority: p, Summary: prioritySummaries[p]}
}

func rankTriggers(triggers []AdaptationTrigger) Priority {
	p := PriorityNone
	for _, t := range triggers {
		switch t.Severity {
		case SeverityMajor:
			return PriorityHigh
		case SeverityModerate:
			p = PriorityMedium
		default:
			if p == PriorityNone {
				p = PriorityLow
			}
		}
	}
	return p
}
