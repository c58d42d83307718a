// Package coach implements the training-prescription decision chain:
// profile analysis, weekly volume, split selection, per-exercise intensity,
// routine assembly, and progression/adaptation feedback.
//
// Every function in this package is pure. Inputs are resolved by the caller
// (see internal/service) and results are plain values.
package coach

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is the root of every validation error returned by this package.
var ErrInvalidInput = errors.New("invalid input")

// ErrTooFewDays is returned when fewer than MinTrainingDays are available.
var ErrTooFewDays = fmt.Errorf("%w: at least %d training days per week are required", ErrInvalidInput, MinTrainingDays)

// MinTrainingDays is the smallest weekly availability a split can be built for.
const MinTrainingDays = 3

// MaxTrainingDays is the largest availability with its own split; more days
// are folded into the six-day branch with a warning.
const MaxTrainingDays = 6

// Level is the lifter's training experience.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParseLevel converts user input into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown experience level %q", ErrInvalidInput, s)
	}
	return l, nil
}

// Goal is the primary training objective.
type Goal string

const (
	GoalHypertrophy   Goal = "hypertrophy"
	GoalStrength      Goal = "strength"
	GoalFatLoss       Goal = "fat_loss"
	GoalRecomposition Goal = "recomposition"
	GoalMaintenance   Goal = "maintenance"
)

// Valid reports whether g is one of the declared goals.
func (g Goal) Valid() bool {
	switch g {
	case GoalHypertrophy, GoalStrength, GoalFatLoss, GoalRecomposition, GoalMaintenance:
		return true
	}
	return false
}

// ParseGoal converts user input into a Goal.
func ParseGoal(s string) (Goal, error) {
	g := Goal(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, s)
	}
	return g, nil
}

// Nutrition is the user's current caloric balance.
type Nutrition string

const (
	NutritionSurplus     Nutrition = "surplus"
	NutritionMaintenance Nutrition = "maintenance"
	NutritionDeficit     Nutrition = "deficit"
	NutritionUnknown     Nutrition = "unknown"
)

// ParseNutrition converts user input into a Nutrition status.
// An empty string means maintenance.
func ParseNutrition(s string) (Nutrition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return NutritionMaintenance, nil
	}
	switch n := Nutrition(s); n {
	case NutritionSurplus, NutritionMaintenance, NutritionDeficit, NutritionUnknown:
		return n, nil
	}
	return "", fmt.Errorf("%w: unknown nutrition status %q", ErrInvalidInput, s)
}

// Category classifies an exercise for intensity prescription.
type Category string

const (
	CategoryCompoundHeavy  Category = "compound_heavy"
	CategoryCompoundMedium Category = "compound_medium"
	CategoryIsolation      Category = "isolation"
	CategoryBodyweight     Category = "bodyweight"
)

// IsCompound reports whether c is one of the compound categories.
func (c Category) IsCompound() bool {
	return c == CategoryCompoundHeavy || c == CategoryCompoundMedium
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryCompoundHeavy, CategoryCompoundMedium, CategoryIsolation, CategoryBodyweight:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown exercise category %q", ErrInvalidInput, s)
}

// UserContext is everything the prescription chain needs to know about a lifter.
type UserContext struct {
	Level         Level     `json:"level"`
	Goal          Goal      `json:"goal"`
	Nutrition     Nutrition `json:"nutrition"`
	DaysAvailable int       `json:"days_available"`
	Equipment     []string  `json:"equipment"`
}

// Range is an inclusive [min, max] pair.
type Range [2]int

// Min returns the lower bound.
func (r Range) Min() int { return r[0] }

// Max returns the upper bound.
func (r Range) Max() int { return r[1] }

func (r Range) String() string {
	if r[0] == r[1] {
		return fmt.Sprintf("%d", r[0])
	}
	return fmt.Sprintf("%d-%d", r[0], r[1])
}
