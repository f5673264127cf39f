package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lexcodex/hanoibench/harness"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Fixed width so lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLRunStore persists runs in SQLite or PostgreSQL. Attempt and verdict are
// kept as JSON text so both engines share one schema.
type SQLRunStore struct {
	db     *sql.DB
	driver string
}

// NewSQLRunStore opens the database and creates the schema if needed.
func NewSQLRunStore(driver, dsn string) (*SQLRunStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	store := &SQLRunStore{db: db, driver: driver}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init %s schema: %w", driver, err)
	}
	return store, nil
}

func (s *SQLRunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		disks INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		solved BOOLEAN NOT NULL,
		accepted BOOLEAN NOT NULL,
		criterion TEXT,
		attempt TEXT NOT NULL,
		verdict TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`)
	return err
}

// rebind rewrites ? placeholders for drivers that number them.
func (s *SQLRunStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save upserts a run.
func (s *SQLRunStore) Save(ctx context.Context, record *harness.RunRecord) error {
	if record == nil {
		return errors.New("nil run record")
	}
	if record.ID == "" {
		return errors.New("run record needs an id")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	attempt, err := json.Marshal(record.Attempt)
	if err != nil {
		return err
	}
	verdict, err := json.Marshal(record.Verdict)
	if err != nil {
		return err
	}
	query := s.rebind(`
	INSERT INTO runs (id, disks, strategy, solved, accepted, criterion, attempt, verdict, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		disks = excluded.disks,
		strategy = excluded.strategy,
		solved = excluded.solved,
		accepted = excluded.accepted,
		criterion = excluded.criterion,
		attempt = excluded.attempt,
		verdict = excluded.verdict,
		created_at = excluded.created_at`)
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.Attempt.Disks,
		string(record.Attempt.Strategy),
		record.Verdict.Solved,
		record.Accepted,
		record.Criterion,
		string(attempt),
		string(verdict),
		record.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

const selectRuns = `SELECT id, accepted, criterion, attempt, verdict, created_at FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (harness.RunRecord, error) {
	var (
		rec       harness.RunRecord
		criterion sql.NullString
		attempt   string
		verdict   string
		created   string
	)
	if err := row.Scan(&rec.ID, &rec.Accepted, &criterion, &attempt, &verdict, &created); err != nil {
		return rec, err
	}
	rec.Criterion = criterion.String
	if err := json.Unmarshal([]byte(attempt), &rec.Attempt); err != nil {
		return rec, fmt.Errorf("decode attempt %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(verdict), &rec.Verdict); err != nil {
		return rec, fmt.Errorf("decode verdict %s: %w", rec.ID, err)
	}
	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return rec, fmt.Errorf("decode created_at %s: %w", rec.ID, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}

// Load retrieves a run by id.
func (s *SQLRunStore) Load(ctx context.Context, id string) (*harness.RunRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(selectRuns+` WHERE id = ?`), id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// List returns all runs, newest first.
func (s *SQLRunStore) List(ctx context.Context) ([]harness.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []harness.RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Delete removes a run.
func (s *SQLRunStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM runs WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLRunStore) Close() error {
	return s.db.Close()
}
