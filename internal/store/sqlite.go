package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/cityweather/internal/models"
)

// Store is an audit log of upstream calls. It is never read to answer a
// lookup.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the sqlite database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordLookupRun stores one upstream call and, if present, its payload.
func (s *Store) RecordLookupRun(run models.LookupRun) error {
	_, err := s.insertLookupRun(run, time.Now().UTC())
	return err
}

func (s *Store) insertLookupRun(run models.LookupRun, at time.Time) (int64, error) {
	var httpStatus sql.NullInt64
	if run.HTTPStatus != 0 {
		httpStatus = sql.NullInt64{Int64: int64(run.HTTPStatus), Valid: true}
	}
	var errMsg sql.NullString
	if run.ErrorMessage != "" {
		errMsg = sql.NullString{String: run.ErrorMessage, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO lookup_runs (started_at, source, endpoint, query, http_status, response_size_bytes, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, at, run.Source, run.Endpoint, run.Query, httpStatus, run.ResponseSize, run.Success, errMsg)
	if err != nil {
		return 0, fmt.Errorf("insert lookup run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(run.Payload) > 0 {
		if _, err := s.storeRawPayload(id, run.Source, run.Endpoint, run.Payload, at); err != nil {
			return id, err
		}
	}
	return id, nil
}

// RecentLookupRuns returns the most recent runs, newest first.
func (s *Store) RecentLookupRuns(limit int) ([]models.LookupRun, error) {
	rows, err := s.db.Query(`
		SELECT id, source, endpoint, query, http_status, response_size_bytes, success, error_message
		FROM lookup_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.LookupRun
	for rows.Next() {
		var run models.LookupRun
		var httpStatus sql.NullInt64
		var errMsg sql.NullString
		if err := rows.Scan(&run.ID, &run.Source, &run.Endpoint, &run.Query, &httpStatus, &run.ResponseSize, &run.Success, &errMsg); err != nil {
			return nil, err
		}
		run.HTTPStatus = int(httpStatus.Int64)
		run.ErrorMessage = errMsg.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LookupStats summarises the audit log per source.
type LookupStats struct {
	Source    string `json:"source"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
}

func (s *Store) GetLookupStats() ([]LookupStats, error) {
	rows, err := s.db.Query(`
		SELECT source, COUNT(*), COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0)
		FROM lookup_runs
		GROUP BY source
		ORDER BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []LookupStats
	for rows.Next() {
		var st LookupStats
		if err := rows.Scan(&st.Source, &st.Total, &st.Succeeded); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// CleanupOldLookupRuns deletes runs started before cutoff along with their
// payloads. Returns the number of deleted runs.
func (s *Store) CleanupOldLookupRuns(cutoff time.Time) (int64, error) {
	if _, err := s.db.Exec(`
		DELETE FROM raw_payloads
		WHERE lookup_run_id IN (SELECT id FROM lookup_runs WHERE started_at < ?)
	`, cutoff.UTC()); err != nil {
		return 0, fmt.Errorf("delete payloads: %w", err)
	}

	result, err := s.db.Exec(`DELETE FROM lookup_runs WHERE started_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete lookup runs: %w", err)
	}
	return result.RowsAffected()
}
