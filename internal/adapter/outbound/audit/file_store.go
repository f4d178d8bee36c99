// Package audit provides file-based decision audit persistence with JSON
// Lines format, daily rotation, size caps, and retention cleanup.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sentinel-Gate/Sentinelpdp/internal/domain/audit"
)

// auditFilePattern matches "decisions-2026-08-01.log" and rotated
// "decisions-2026-08-01.2.log" names.
var auditFilePattern = regexp.MustCompile(`^decisions-(\d{4}-\d{2}-\d{2})(?:\.(\d+))?\.log$`)

// FileStoreConfig holds configuration for the file-based audit store.
type FileStoreConfig struct {
	// Dir is the directory where audit files are stored.
	Dir string
	// RetentionDays is the number of days to keep audit files (default 7).
	RetentionDays int
	// MaxFileSizeMB is the maximum file size before rotation (default 100).
	MaxFileSizeMB int
}

// FileStore appends decision records as JSON Lines, rotating files daily
// and by size, and removing files older than the retention window.
type FileStore struct {
	cfg    FileStoreConfig
	logger *slog.Logger

	mu      sync.Mutex
	file    *os.File
	writer  *bufio.Writer
	date    string
	suffix  int
	written int64
}

var _ audit.Store = (*FileStore)(nil)

// NewFileStore creates the audit directory and opens today's file.
func NewFileStore(cfg FileStoreConfig, logger *slog.Logger) (*FileStore, error) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 100
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating audit dir: %w", err)
	}
	s := &FileStore{cfg: cfg, logger: logger}
	if err := s.openCurrent(time.Now().UTC()); err != nil {
		return nil, err
	}
	s.cleanup()
	return s, nil
}

// Append writes the records, rotating first when the day changed or the
// size cap is reached.
func (s *FileStore) Append(_ context.Context, records ...audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding audit record: %w", err)
		}
		if err := s.rotateLocked(rec.Timestamp, int64(len(line))+1); err != nil {
			return err
		}
		if _, err := s.writer.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing audit record: %w", err)
		}
		s.written += int64(len(line)) + 1
	}
	return nil
}

// Flush forces buffered records to disk.
func (s *FileStore) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush()
}

// Close flushes and closes the current file.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer != nil {
		if err := s.writer.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// rotateLocked switches files when the record's date differs from the open
// file's date or the pending write would exceed the size cap.
func (s *FileStore) rotateLocked(at time.Time, pending int64) error {
	date := at.UTC().Format("2006-01-02")
	maxBytes := int64(s.cfg.MaxFileSizeMB) << 20
	switch {
	case date != s.date:
		s.suffix = 0
		if err := s.openDated(date); err != nil {
			return err
		}
		s.cleanup()
	case s.written+pending > maxBytes:
		s.suffix++
		if err := s.openDated(date); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) openCurrent(now time.Time) error {
	date := now.Format("2006-01-02")
	// Continue the highest existing suffix for today so restarts append
	// rather than overwrite.
	files, _ := os.ReadDir(s.cfg.Dir)
	for _, e := range files {
		m := auditFilePattern.FindStringSubmatch(e.Name())
		if m == nil || m[1] != date {
			continue
		}
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil && n > s.suffix {
				s.suffix = n
			}
		}
	}
	return s.openDated(date)
}

func (s *FileStore) openDated(date string) error {
	if s.writer != nil {
		_ = s.writer.Flush()
	}
	if s.file != nil {
		_ = s.file.Close()
	}
	name := fmt.Sprintf("decisions-%s.log", date)
	if s.suffix > 0 {
		name = fmt.Sprintf("decisions-%s.%d.log", date, s.suffix)
	}
	path := filepath.Join(s.cfg.Dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening audit file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stating audit file: %w", err)
	}
	s.file = f
	s.writer = bufio.NewWriter(f)
	s.date = date
	s.written = info.Size()
	return nil
}

// cleanup removes audit files older than the retention window.
func (s *FileStore) cleanup() {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays).Format("2006-01-02")
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		s.logger.Warn("audit retention scan failed", slog.String("error", err.Error()))
		return
	}
	var names []string
	for _, e := range entries {
		m := auditFilePattern.FindStringSubmatch(e.Name())
		if m != nil && strings.Compare(m[1], cutoff) < 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.Remove(filepath.Join(s.cfg.Dir, name)); err != nil {
			s.logger.Warn("audit retention delete failed",
				slog.String("file", name), slog.String("error", err.Error()))
		}
	}
}
