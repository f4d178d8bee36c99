package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/audit"
)

func openTestLog(t *testing.T) *DecisionLog {
	t.Helper()
	log, err := Open(filepath.Join(t.TempDir(), "decisions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestAppendAndQuery(t *testing.T) {
	log := openTestLog(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	records := []audit.Record{
		{
			ID:            "r1",
			Timestamp:     now,
			RequestHash:   "h1",
			Decision:      "Permit",
			ObligationIDs: []string{"o1", "o2"},
			Duration:      2 * time.Millisecond,
		},
		{
			ID:          "r2",
			Timestamp:   now.Add(time.Second),
			RequestHash: "h2",
			Decision:    "Indeterminate",
			StatusCode:  "urn:oasis:names:tc:xacml:1.0:status:processing-error",
			Cached:      true,
		},
	}
	if err := log.Append(context.Background(), records...); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := log.Query(context.Background(), now.Add(-time.Minute), now.Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Query returned %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "r2" || got[1].ID != "r1" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if !got[0].Cached || got[0].StatusCode == "" {
		t.Errorf("r2 round trip = %+v", got[0])
	}
	if len(got[1].ObligationIDs) != 2 || got[1].ObligationIDs[0] != "o1" {
		t.Errorf("r1 obligations = %v", got[1].ObligationIDs)
	}
	if !got[1].Timestamp.Equal(now) {
		t.Errorf("r1 timestamp = %v, want %v", got[1].Timestamp, now)
	}
}

func TestQueryWindowAndLimit(t *testing.T) {
	log := openTestLog(t)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := audit.Record{
			ID:          string(rune('a' + i)),
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			RequestHash: "h",
			Decision:    "Deny",
		}
		if err := log.Append(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := log.Query(context.Background(), base, base.Add(3*time.Second), 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("window returned %d records, want 3", len(got))
	}

	got, err = log.Query(context.Background(), base, base.Add(time.Minute), 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit returned %d records, want 2", len(got))
	}
}

func TestAppendEmptyIsNoop(t *testing.T) {
	log := openTestLog(t)
	if err := log.Append(context.Background()); err != nil {
		t.Errorf("Append(): %v", err)
	}
}
