package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lexcodex/hanoibench/harness"
)

// ErrRunNotFound is returned when deleting a run that was never stored.
var ErrRunNotFound = errors.New("run not found")

// RunStore persists checked runs between invocations.
type RunStore interface {
	Save(ctx context.Context, record *harness.RunRecord) error
	Load(ctx context.Context, id string) (*harness.RunRecord, bool, error)
	List(ctx context.Context) ([]harness.RunRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the store for driver. "file" treats dsn as a directory,
// "sqlite" or "sqlite3" as a database path and "postgres" as a connection
// string.
func Open(driver, dsn string) (RunStore, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "file":
		return NewFileRunStore(dsn)
	case "sqlite", "sqlite3":
		if dir := filepath.Dir(dsn); dir != "" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return NewSQLRunStore(DriverSQLite, dsn)
	case "postgres", "postgresql":
		return NewSQLRunStore(DriverPostgres, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// sortRuns orders newest first, ties broken by id.
func sortRuns(runs []harness.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
}

// FileRunStore stores runs as JSON on disk.
type FileRunStore struct {
	path  string
	mu    sync.RWMutex
	cache map[string]harness.RunRecord
}

// NewFileRunStore creates a store under the provided directory.
func NewFileRunStore(root string) (*FileRunStore, error) {
	if root == "" {
		return nil, errors.New("run store root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	store := &FileRunStore{
		path:  filepath.Join(root, "runs.json"),
		cache: make(map[string]harness.RunRecord),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileRunStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var runs []harness.RunRecord
	if err := json.Unmarshal(data, &runs); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	for _, run := range runs {
		s.cache[run.ID] = run
	}
	return nil
}

// persist writes the cache back to disk after any mutation.
func (s *FileRunStore) persist() error {
	runs := make([]harness.RunRecord, 0, len(s.cache))
	for _, run := range s.cache {
		runs = append(runs, run)
	}
	sortRuns(runs)
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Save writes a run to disk, replacing any run with the same id.
func (s *FileRunStore) Save(ctx context.Context, record *harness.RunRecord) error {
	if record == nil {
		return errors.New("nil run record")
	}
	if record.ID == "" {
		return errors.New("run record needs an id")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	s.cache[record.ID] = *record
	return s.persist()
}

// Load retrieves a run by id.
func (s *FileRunStore) Load(ctx context.Context, id string) (*harness.RunRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.cache[id]
	if !ok {
		return nil, false, nil
	}
	return &run, true, nil
}

// List returns all runs, newest first.
func (s *FileRunStore) List(ctx context.Context) ([]harness.RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]harness.RunRecord, 0, len(s.cache))
	for _, run := range s.cache {
		result = append(result, run)
	}
	sortRuns(result)
	return result, nil
}

// Delete removes a run.
func (s *FileRunStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	delete(s.cache, id)
	return s.persist()
}

// Close is a no-op; every mutation is already on disk.
func (s *FileRunStore) Close() error { return nil }
