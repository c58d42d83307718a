package coach

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// Movement patterns.
const (
	PatternPush      = "push"
	PatternPull      = "pull"
	PatternSquat     = "squat"
	PatternHinge     = "hinge"
	PatternIsolation = "isolation"
	PatternCore      = "core"
	PatternCarry     = "carry"
)

// Body parts used by catalog entries and day focus slots.
const (
	BodyChest      = "chest"
	BodyBack       = "back"
	BodyShoulders  = "shoulders"
	BodyBiceps     = "biceps"
	BodyTriceps    = "triceps"
	BodyQuads      = "quads"
	BodyHamstrings = "hamstrings"
	BodyGlutes     = "glutes"
	BodyCalves     = "calves"
	BodyCore       = "core"
)

// EquipmentBodyweight is always available regardless of the user's equipment.
const EquipmentBodyweight = "bodyweight"

// Exercise is one catalog entry.
type Exercise struct {
	ID        int64   `json:"id"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	BodyPart  string  `json:"body_part"`
	Pattern   string  `json:"pattern"`
	Equipment string  `json:"equipment"`
	Compound  bool    `json:"is_compound"`
	MET       float64 `json:"met,omitempty"`
	MediaURL  string  `json:"media_url,omitempty"`
}

// IsLowerBody reports whether the body part takes the lower-body load increment.
func IsLowerBody(bodyPart string) bool {
	switch strings.ToLower(bodyPart) {
	case BodyQuads, BodyHamstrings, BodyGlutes, BodyCalves:
		return true
	}
	return false
}

// ExerciseQuery filters the catalog. Empty fields match everything.
type ExerciseQuery struct {
	BodyParts []string
	Equipment []string
	Pattern   string
	Limit     int
}

// Matches reports whether e satisfies the query filters (ignoring Limit).
func (q ExerciseQuery) Matches(e Exercise) bool {
	if len(q.BodyParts) > 0 && !containsFold(q.BodyParts, e.BodyPart) {
		return false
	}
	if len(q.Equipment) > 0 && !containsFold(q.Equipment, e.Equipment) {
		return false
	}
	if q.Pattern != "" && !strings.EqualFold(q.Pattern, e.Pattern) {
		return false
	}
	return true
}

// Catalog is the exercise source consulted by the routine generator.
// Results are ordered compound first, then by title.
type Catalog interface {
	Find(ctx context.Context, q ExerciseQuery) ([]Exercise, error)
}

// SortExercises orders exercises compound first, then by title.
func SortExercises(exs []Exercise) {
	slices.SortStableFunc(exs, func(a, b Exercise) int {
		if a.Compound != b.Compound {
			if a.Compound {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Title, b.Title)
	})
}

// FilterExercises applies q to exs and returns a sorted, limited copy.
func FilterExercises(exs []Exercise, q ExerciseQuery) []Exercise {
	var out []Exercise
	for _, e := range exs {
		if q.Matches(e) {
			out = append(out, e)
		}
	}
	SortExercises(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Classify maps a catalog entry to an intensity category.
func Classify(e Exercise) Category {
	switch {
	case strings.EqualFold(e.Equipment, EquipmentBodyweight):
		return CategoryBodyweight
	case !e.Compound:
		return CategoryIsolation
	case strings.EqualFold(e.Equipment, "barbell"):
		return CategoryCompoundHeavy
	default:
		return CategoryCompoundMedium
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
