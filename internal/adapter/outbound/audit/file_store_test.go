package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	domaudit "github.com/Sentinel-Gate/Sentinelpdp/internal/domain/audit"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func record(id string, at time.Time) domaudit.Record {
	return domaudit.Record{
		ID:          id,
		Timestamp:   at,
		RequestHash: "abc",
		Decision:    "Permit",
		Duration:    time.Millisecond,
	}
}

func TestAppendAndReadBack(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(FileStoreConfig{Dir: dir}, slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now().UTC()
	if err := store.Append(context.Background(), record("r1", now), record("r2", now)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	path := filepath.Join(dir, "decisions-"+now.Format("2006-01-02")+".log")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening audit file: %v", err)
	}
	defer func() { _ = f.Close() }()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec domaudit.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("bad JSON line: %v", err)
		}
		ids = append(ids, rec.ID)
	}
	if len(ids) != 2 || ids[0] != "r1" || ids[1] != "r2" {
		t.Errorf("read back ids %v", ids)
	}
}

func TestDailyRotation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(FileStoreConfig{Dir: dir}, slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	today := time.Now().UTC()
	tomorrow := today.AddDate(0, 0, 1)
	if err := store.Append(context.Background(), record("r1", today)); err != nil {
		t.Fatal(err)
	}
	if err := store.Append(context.Background(), record("r2", tomorrow)); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, date := range []string{today.Format("2006-01-02"), tomorrow.Format("2006-01-02")} {
		if _, err := os.Stat(filepath.Join(dir, "decisions-"+date+".log")); err != nil {
			t.Errorf("missing audit file for %s: %v", date, err)
		}
	}
}

func TestSizeRotation(t *testing.T) {
	dir := t.TempDir()
	// A 1 MB cap with padded records forces a suffix rotation.
	store, err := NewFileStore(FileStoreConfig{Dir: dir, MaxFileSizeMB: 1}, slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	now := time.Now().UTC()
	big := record("big", now)
	big.StatusMessage = strings.Repeat("x", 600_000)
	if err := store.Append(context.Background(), big, big); err != nil {
		t.Fatal(err)
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}

	rotated := filepath.Join(dir, "decisions-"+now.Format("2006-01-02")+".1.log")
	if _, err := os.Stat(rotated); err != nil {
		t.Errorf("expected rotated file %s: %v", rotated, err)
	}
}

func TestRetentionCleanup(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "decisions-2000-01-01.log")
	if err := os.WriteFile(old, []byte("{}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	store, err := NewFileStore(FileStoreConfig{Dir: dir, RetentionDays: 7}, slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expired audit file survived retention cleanup")
	}
}
