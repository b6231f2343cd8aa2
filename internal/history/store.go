// Package history persists snapshots of completed analyses.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hiredly/internal/errors"
	"hiredly/internal/types"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultListLimit bounds List when no positive limit is given.
const DefaultListLimit = 20

// Store saves and lists analysis snapshots.
type Store interface {
	Save(ctx context.Context, record types.ResumeRecord, jobDescription string, atsScore float64) (types.HistoryEntry, error)
	List(ctx context.Context, limit int) ([]types.HistoryEntry, error)
	Get(ctx context.Context, id string) (types.HistoryEntry, error)
	Close() error
}

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = stderrors.New("history entry not found")

// SQLiteStore keeps history in a single SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at dbPath. ":memory:" is
// accepted for tests.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, storageError("creating history directory", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storageError("opening history database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, storageError("pinging history database", err)
	}

	// Single connection avoids "database is locked" under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, storageError("setting busy timeout", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS analyses (
		id              TEXT PRIMARY KEY,
		resume_data     TEXT NOT NULL,
		job_description TEXT,
		ats_score       REAL,
		created_at      INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, storageError("creating analyses table", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Save stores a snapshot and returns it with its generated ID.
func (s *SQLiteStore) Save(ctx context.Context, record types.ResumeRecord, jobDescription string, atsScore float64) (types.HistoryEntry, error) {
	data, err := json.Marshal(record.Normalized())
	if err != nil {
		return types.HistoryEntry{}, storageError("encoding resume record", err)
	}

	entry := types.HistoryEntry{
		ID:             uuid.NewString(),
		Record:         record.Normalized(),
		JobDescription: jobDescription,
		ATSScore:       atsScore,
		CreatedAt:      time.UnixMilli(s.now().UnixMilli()).UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO analyses (id, resume_data, job_description, ats_score, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, string(data), jobDescription, atsScore, entry.CreatedAt.UnixMilli())
	if err != nil {
		return types.HistoryEntry{}, storageError("saving analysis", err)
	}
	return entry, nil
}

// List returns the newest entries first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, resume_data, job_description, ats_score, created_at FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, storageError("listing analyses", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterating analyses", err)
	}
	return entries, nil
}

// Get loads one entry by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, resume_data, job_description, ats_score, created_at FROM analyses WHERE id = ?",
		strings.TrimSpace(id))
	entry, err := scanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return types.HistoryEntry{}, ErrNotFound
	}
	return entry, err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (types.HistoryEntry, error) {
	var (
		entry     types.HistoryEntry
		data      string
		jobDesc   sql.NullString
		atsScore  sql.NullFloat64
		createdAt int64
	)
	if err := row.Scan(&entry.ID, &data, &jobDesc, &atsScore, &createdAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, storageError("reading analysis row", err)
	}
	if err := json.Unmarshal([]byte(data), &entry.Record); err != nil {
		return entry, storageError(fmt.Sprintf("decoding resume record %s", entry.ID), err)
	}
	entry.Record = entry.Record.Normalized()
	entry.JobDescription = jobDesc.String
	entry.ATSScore = atsScore.Float64
	entry.CreatedAt = time.UnixMilli(createdAt).UTC()
	return entry, nil
}

func storageError(message string, cause error) error {
	return errors.NewStorageError(errors.ErrCodeHistoryFailed, message, cause)
}

// NopStore discards everything. It is used when history is disabled.
type NopStore struct{}

func (NopStore) Save(ctx context.Context, record types.ResumeRecord, jobDescription string, atsScore float64) (types.HistoryEntry, error) {
	return types.HistoryEntry{}, nil
}
func (NopStore) List(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	return []types.HistoryEntry{}, nil
}
func (NopStore) Get(ctx context.Context, id string) (types.HistoryEntry, error) {
	return types.HistoryEntry{}, ErrNotFound
}
func (NopStore) Close() error { return nil }
