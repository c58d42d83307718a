package alpha

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// memStore applies a replacement only when every stage succeeds, like the
// transactional stores.
type memStore struct {
	deleted []time.Time
	rows    []models.SetLogRow
	failOn  string
}

func (m *memStore) ReplaceSessions(_ context.Context, userID int, dates []time.Time, rows []models.SetLogRow) (int64, error) {
	switch m.failOn {
	case "delete":
		return 0, errors.New("delete failed")
	case "insert":
		return 0, errors.New("extended protocol limited to 65535 parameters")
	}
	m.rows = slices.DeleteFunc(m.rows, func(r models.SetLogRow) bool {
		return r.UserID == userID && slices.ContainsFunc(dates, r.SessionDate.Equal)
	})
	m.deleted = append(m.deleted, dates...)
	m.rows = append(m.rows, rows...)
	return int64(len(rows)), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestIngestCounts verifies every session is replaced and the result
// counts warm-ups and untracked RIR separately.
func TestIngestCounts(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, testLogger())

	res, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(store.deleted) != 2 {
		t.Errorf("sessions replaced = %d, want 2", len(store.deleted))
	}
	if res.SessionsReceived != 2 {
		t.Errorf("sessions = %d, want 2", res.SessionsReceived)
	}
	// 3 warm-ups + 7 working in the first session, 1 + 2 in the second.
	if res.SetsReceived != 13 || res.SetsInserted != 13 {
		t.Errorf("sets received/inserted = %d/%d, want 13/13", res.SetsReceived, res.SetsInserted)
	}
	if res.WarmupSets != 4 {
		t.Errorf("warmups = %d, want 4", res.WarmupSets)
	}
	if res.UntrackedRIR != 2 {
		t.Errorf("untracked = %d, want 2", res.UntrackedRIR)
	}
	if len(res.Exercises) != 4 {
		t.Errorf("exercises = %v", res.Exercises)
	}
	for _, r := range store.rows {
		if r.UserID != 7 {
			t.Fatalf("row user = %d, want 7", r.UserID)
		}
	}
}

// TestIngestStoreErrors verifies store failures abort the import.
func TestIngestStoreErrors(t *testing.T) {
	for _, stage := range []string{"delete", "insert"} {
		t.Run(stage, func(t *testing.T) {
			p := NewProvider(&memStore{failOn: stage}, testLogger())
			if _, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// TestIngestInsertFailureKeepsSessions verifies a failed insert leaves the
// previously imported sessions in place.
func TestIngestInsertFailureKeepsSessions(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, testLogger())
	if _, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1); err != nil {
		t.Fatal(err)
	}
	before := len(store.rows)

	store.failOn = "insert"
	_, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.rows) != before {
		t.Errorf("rows after failed import = %d, want %d", len(store.rows), before)
	}
	if len(store.deleted) != 2 {
		t.Errorf("sessions deleted = %d, want only the 2 from the first import", len(store.deleted))
	}
}

// TestIngestReimportReplaces verifies importing the same export twice keeps
// one copy of each set.
func TestIngestReimportReplaces(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, testLogger())
	for range 2 {
		if _, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 1); err != nil {
			t.Fatal(err)
		}
	}
	if len(store.rows) != 13 {
		t.Errorf("rows = %d, want 13", len(store.rows))
	}
}

// TestIngestMalformed verifies parse failures are reported as ErrMalformed
// without touching the store.
func TestIngestMalformed(t *testing.T) {
	store := &memStore{}
	p := NewProvider(store, testLogger())
	_, err := p.Ingest(context.Background(), strings.NewReader(`"1. Bench Press · Barbell · 8 reps"`), 1)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if len(store.deleted) != 0 {
		t.Errorf("deleted = %d, want 0", len(store.deleted))
	}
}
