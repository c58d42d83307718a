package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UntrackedRIR is the sentinel stored when a set was logged without an RIR value.
const UntrackedRIR = -1.0

// ProfileRow is a row of the profiles table.
type ProfileRow struct {
	UserID         int       `json:"user_id"`
	Goal           string    `json:"goal"`
	Level          string    `json:"level"`
	Nutrition      string    `json:"nutrition"`
	DaysAvailable  int       `json:"days_available"`
	WeightKg       float64   `json:"weight_kg"`
	HeightCm       float64   `json:"height_cm"`
	TargetWeightKg float64   `json:"target_weight_kg"`
	Equipment      []string  `json:"equipment"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetLogRow is a row for the set_logs table.
type SetLogRow struct {
	UserID           int       `json:"user_id"`
	SessionName      string    `json:"session_name"`
	SessionDate      time.Time `json:"session_date"`
	ExerciseNumber   int       `json:"exercise_number"`
	ExerciseName     string    `json:"exercise_name"`
	Equipment        string    `json:"equipment"`
	TargetReps       int       `json:"target_reps"`
	IsWarmup         bool      `json:"is_warmup"`
	SetNumber        int       `json:"set_number"`
	WeightKg         float64   `json:"weight_kg"`
	IsBodyweightPlus bool      `json:"is_bodyweight_plus"`
	Reps             int       `json:"reps"`
	RIR              float64   `json:"rir"`
}

// WeightSampleRow is a row of the weight_history table.
type WeightSampleRow struct {
	UserID   int       `json:"user_id"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
	Source   string    `json:"source"`
}

// PlanRow is a generated routine persisted for a user. Routine holds the
// JSON-encoded routine; Equipment is the snapshot the routine was built for.
type PlanRow struct {
	ID        uuid.UUID       `json:"id"`
	UserID    int             `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Active    bool            `json:"active"`
	Goal      string          `json:"goal"`
	Level     string          `json:"level"`
	Split     string          `json:"split"`
	Equipment []string        `json:"equipment"`
	Routine   json.RawMessage `json:"routine"`
}

// AdaptationReviewRow records one adaptation review.
type AdaptationReviewRow struct {
	ID        int64           `json:"id"`
	UserID    int             `json:"user_id"`
	CreatedAt time.Time       `json:"created_at"`
	Priority  string          `json:"priority"`
	Summary   string          `json:"summary"`
	Triggers  json.RawMessage `json:"triggers"`
}

// ImportLog represents a single set-log import's outcome.
type ImportLog struct {
	ID           int64     `json:"id"`
	UserID       int       `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	Source       string    `json:"source"`
	Status       string    `json:"status"`
	SetsReceived int       `json:"sets_received"`
	SetsInserted int64     `json:"sets_inserted"`
	DurationMs   *int      `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message"`
}

// SessionSummary is one session's working sets for a single exercise.
type SessionSummary struct {
	Date       string   `json:"date"`
	MaxWeight  float64  `json:"max_weight_kg"`
	TonnageKg  float64  `json:"tonnage_kg"`
	Sets       int      `json:"sets"`
	MissedSets int      `json:"missed_sets"`
	AvgRIR     *float64 `json:"avg_rir,omitempty"`
}

// ExerciseHistory is the session-by-session record of one exercise.
type ExerciseHistory struct {
	Exercise    string           `json:"exercise"`
	TotalSets   int              `json:"total_sets"`
	TrackedSets int              `json:"tracked_sets"`
	Sessions    []SessionSummary `json:"sessions"`
}
