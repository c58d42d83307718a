package coach

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// Per-exercise set bounds for a single session.
const (
	MinSetsPerExercise = 2
	MaxSetsPerExercise = 5
)

// dayFocus describes which body parts fill a day.
type dayFocus struct {
	focus string
	slots []string
}

var dayFocuses = map[string]dayFocus{
	"Full Body":      {"Compound movements across the whole body", []string{BodyQuads, BodyChest, BodyBack, BodyHamstrings, BodyShoulders, BodyCore}},
	"Upper":          {"Upper-body push and pull", []string{BodyChest, BodyBack, BodyShoulders, BodyBiceps, BodyTriceps}},
	"Lower":          {"Quads, posterior chain and calves", []string{BodyQuads, BodyHamstrings, BodyGlutes, BodyCalves, BodyCore}},
	"Push":           {"Chest, shoulders and triceps", []string{BodyChest, BodyChest, BodyShoulders, BodyTriceps}},
	"Pull":           {"Back and biceps", []string{BodyBack, BodyBack, BodyBiceps, BodyCore}},
	"Legs":           {"Quads, posterior chain and calves", []string{BodyQuads, BodyHamstrings, BodyGlutes, BodyCalves}},
	"Chest":          {"Chest", []string{BodyChest, BodyChest, BodyChest, BodyTriceps}},
	"Back":           {"Back", []string{BodyBack, BodyBack, BodyBack, BodyBiceps}},
	"Shoulders":      {"Shoulders", []string{BodyShoulders, BodyShoulders, BodyShoulders, BodyCore}},
	"Arms":           {"Biceps and triceps", []string{BodyBiceps, BodyBiceps, BodyTriceps, BodyTriceps}},
	"Chest/Back":     {"Antagonist chest and back", []string{BodyChest, BodyBack, BodyChest, BodyBack}},
	"Shoulders/Arms": {"Shoulders and arms", []string{BodyShoulders, BodyShoulders, BodyBiceps, BodyTriceps}},
}

var goalPurposes = map[Goal]string{
	GoalHypertrophy:   "muscle growth",
	GoalStrength:      "maximal strength",
	GoalFatLoss:       "fat loss while keeping muscle",
	GoalRecomposition: "body recomposition",
	GoalMaintenance:   "maintaining current fitness",
}

var goalTitles = map[Goal]string{
	GoalHypertrophy:   "Hypertrophy",
	GoalStrength:      "Strength",
	GoalFatLoss:       "Fat Loss",
	GoalRecomposition: "Recomposition",
	GoalMaintenance:   "Maintenance",
}

var categoryLabels = map[Category]string{
	CategoryCompoundHeavy:  "Heavy compound",
	CategoryCompoundMedium: "Compound",
	CategoryIsolation:      "Isolation",
	CategoryBodyweight:     "Bodyweight",
}

var equipmentAliases = map[string]string{
	"barra":      "barbell",
	"mancuernas": "dumbbells",
	"dumbbell":   "dumbbells",
	"máquinas":   "machines",
	"maquinas":   "machines",
	"machine":    "machines",
	"polea":      "cable",
	"cables":     "cable",
	"cinta":      "treadmill",
}

// NormalizeEquipment lower-cases tags, resolves aliases and always includes
// bodyweight. Duplicates are dropped.
func NormalizeEquipment(tags []string) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(t string) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if alias, ok := equipmentAliases[t]; ok {
			t = alias
		}
		add(t)
	}
	add(EquipmentBodyweight)
	return out
}

// RoutineRequest is the input to RoutineGenerator.Generate.
type RoutineRequest struct {
	Goal          Goal      `json:"goal"`
	Level         Level     `json:"level"`
	DaysAvailable int       `json:"days_available"`
	Equipment     []string  `json:"equipment"`
	Nutrition     Nutrition `json:"nutrition,omitempty"`
}

// RoutineExercise is one prescribed exercise within a day.
type RoutineExercise struct {
	Exercise Exercise `json:"exercise"`
	Category Category `json:"category"`
	Sets     int      `json:"sets"`
	Reps     Range    `json:"reps"`
	Rest     Range    `json:"rest_seconds"`
	RIR      Range    `json:"rir"`
	Tempo    string   `json:"tempo"`
	Reason   string   `json:"reason"`
	Note     string   `json:"note,omitempty"`
}

// RoutineDay is one training day of the week.
type RoutineDay struct {
	DayName   string            `json:"day_name"`
	Weekday   string            `json:"weekday"`
	Focus     string            `json:"focus"`
	Exercises []RoutineExercise `json:"exercises"`
}

// GeneratedRoutine is a complete weekly program.
type GeneratedRoutine struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Split        Split        `json:"split"`
	WeeklyVolume int          `json:"weekly_volume"`
	Frequency    float64      `json:"frequency"`
	Volume       VolumePolicy `json:"volume"`
	Schedule     [7]string    `json:"schedule"`
	Warnings     []string     `json:"warnings"`
	Days         []RoutineDay `json:"days"`
}

// RoutineGenerator assembles routines from the decision chain and a catalog.
type RoutineGenerator struct {
	catalog Catalog
}

// NewRoutineGenerator creates a generator backed by catalog.
func NewRoutineGenerator(catalog Catalog) *RoutineGenerator {
	return &RoutineGenerator{catalog: catalog}
}

// Generate builds a weekly routine. Split validation errors are returned
// unchanged (wrapped); a thin catalog only shortens days.
func (g *RoutineGenerator) Generate(ctx context.Context, req RoutineRequest) (*GeneratedRoutine, error) {
	if !req.Level.Valid() {
		return nil, fmt.Errorf("%w: unknown experience level %q", ErrInvalidInput, req.Level)
	}
	if !req.Goal.Valid() {
		return nil, fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, req.Goal)
	}

	split, err := RecommendSplit(req.DaysAvailable, req.Level)
	if err != nil {
		return nil, fmt.Errorf("recommending split: %w", err)
	}
	volume := CalculateVolume(req.Level, req.Goal, req.Nutrition)
	equipment := NormalizeEquipment(req.Equipment)

	candidates := map[string][]Exercise{}
	lookup := func(bodyPart string) ([]Exercise, error) {
		if exs, ok := candidates[bodyPart]; ok {
			return exs, nil
		}
		exs, err := g.catalog.Find(ctx, ExerciseQuery{BodyParts: []string{bodyPart}, Equipment: equipment})
		if err != nil {
			return nil, fmt.Errorf("querying catalog for %s: %w", bodyPart, err)
		}
		candidates[bodyPart] = exs
		return exs, nil
	}

	routine := &GeneratedRoutine{
		Name:         fmt.Sprintf("%s %s Program", split.Split.Title(), goalTitles[req.Goal]),
		Description:  fmt.Sprintf("%s %s.", split.Description, volume.Reason),
		Split:        split.Split,
		WeeklyVolume: volume.OptimalSets,
		Frequency:    split.Frequency,
		Volume:       volume,
		Schedule:     split.Schedule,
		Warnings:     split.Warnings,
		Days:         []RoutineDay{},
	}

	for i, label := range split.Schedule {
		if label == RestDay {
			continue
		}
		focus, ok := dayFocuses[label]
		if !ok {
			focus = dayFocuses["Full Body"]
		}

		slotCount := map[string]int{}
		for _, bp := range focus.slots {
			slotCount[bp]++
		}

		day := RoutineDay{
			DayName:   label,
			Weekday:   time.Weekday((i + 1) % 7).String(),
			Focus:     focus.focus,
			Exercises: []RoutineExercise{},
		}
		used := map[string]bool{}
		for _, bp := range focus.slots {
			exs, err := lookup(bp)
			if err != nil {
				return nil, err
			}
			ex, ok := firstUnused(exs, used)
			if !ok {
				continue
			}
			used[ex.Slug] = true
			day.Exercises = append(day.Exercises, prescribeExercise(ex, req, volume.OptimalSets, split.Frequency, slotCount[bp]))
		}
		routine.Days = append(routine.Days, day)
	}

	return routine, nil
}

func firstUnused(exs []Exercise, used map[string]bool) (Exercise, bool) {
	for _, e := range exs {
		if !used[e.Slug] {
			return e, true
		}
	}
	return Exercise{}, false
}

func prescribeExercise(ex Exercise, req RoutineRequest, weeklySets int, frequency float64, slots int) RoutineExercise {
	category := Classify(ex)
	p := Prescribe(req.Goal, category)
	sets := SetsPerExercise(weeklySets, frequency, slots)

	reason := fmt.Sprintf("%s %s work: %s reps at %s RIR for %s, sized for a %s lifter.",
		categoryLabels[category], ex.BodyPart, p.Reps, p.RIR, goalPurposes[req.Goal], req.Level)

	return RoutineExercise{
		Exercise: ex,
		Category: category,
		Sets:     sets,
		Reps:     p.Reps,
		Rest:     p.RestSeconds,
		RIR:      p.RIR,
		Tempo:    p.Tempo,
		Reason:   reason,
		Note:     p.Note,
	}
}

// SetsPerExercise spreads the weekly set target for a muscle across its
// sessions and slots, clamped to [MinSetsPerExercise, MaxSetsPerExercise].
func SetsPerExercise(weeklySets int, frequency float64, slots int) int {
	if frequency <= 0 {
		frequency = 1
	}
	if slots <= 0 {
		slots = 1
	}
	n := int(math.Round(float64(weeklySets) / frequency / float64(slots)))
	return max(MinSetsPerExercise, min(MaxSetsPerExercise, n))
}
