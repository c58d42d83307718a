// Package ingest holds types shared by set-log import providers.
package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	SetsReceived     int      `json:"sets_received"`
	SetsInserted     int64    `json:"sets_inserted"`
	SetsSkipped      int64    `json:"sets_skipped"`
	WarmupSets       int      `json:"warmup_sets"`
	UntrackedRIR     int      `json:"untracked_rir_sets"`
	Exercises        []string `json:"exercises,omitempty"`

	Message string `json:"message,omitempty"`
}
