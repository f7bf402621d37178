package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/paramscan/internal/model"
	"github.com/nao1215/paramscan/internal/signature"
)

// DBFileName is the database file created inside the database directory.
const DBFileName = "paramscan.db"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB is the SQLite store of crawl runs and their signatures.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the crawl command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas in the DSN apply to every connection the pool opens.
	dsn := dbPath + "?mode=rw&_pragma=foreign_keys(1)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; crawl tasks share one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_url TEXT NOT NULL,
		host TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		output_file TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		visited_count INTEGER NOT NULL DEFAULT 0,
		unique_count INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_host ON runs(host);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per distinct signature per run; the first URL wins.
	CREATE TABLE IF NOT EXISTS signatures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		signature_key TEXT NOT NULL,
		names TEXT NOT NULL,
		url TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		UNIQUE(run_id, signature_key)
	);

	CREATE INDEX IF NOT EXISTS idx_signatures_run ON signatures(run_id);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// StartRun inserts run with its current status and sets run.ID.
func (h *HistoryDB) StartRun(ctx context.Context, run *model.RunSummary) (int64, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = model.RunStatusRunning
	}

	res, err := h.db.ExecContext(ctx, `
	INSERT INTO runs (start_url, host, max_depth, output_file, started_at, status)
	VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartURL, run.Host, run.MaxDepth, run.OutputFile,
		formatTimestamp(run.StartedAt), string(run.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	run.ID = id
	return id, nil
}

// FinishRun stores the final status, counters and finish time of run.
func (h *HistoryDB) FinishRun(ctx context.Context, run *model.RunSummary) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	res, err := h.db.ExecContext(ctx, `
	UPDATE runs
	SET finished_at = ?, status = ?, visited_count = ?, unique_count = ?, error = ?
	WHERE id = ?`,
		formatTimestamp(run.FinishedAt), string(run.Status),
		run.VisitedCount, run.UniqueCount, run.ErrorMessage, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run %d: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, run.ID)
	}
	return nil
}

// InsertSignature records sig for a run. It reports false when the run
// already has that signature, leaving the stored URL untouched.
func (h *HistoryDB) InsertSignature(ctx context.Context, runID int64, sig signature.Signature, rawURL string) (bool, error) {
	names, err := json.Marshal(sig.Names())
	if err != nil {
		return false, fmt.Errorf("failed to serialize names: %w", err)
	}

	res, err := h.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO signatures (run_id, signature_key, names, url, recorded_at)
	VALUES (?, ?, ?, ?, ?)`,
		runID, sig.Key(), string(names), rawURL, formatTimestamp(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert signature: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check insert: %w", err)
	}
	return n > 0, nil
}

// ListRuns returns runs newest first. An empty host lists every host; a
// non-positive limit returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, host string, limit int) ([]model.RunSummary, error) {
	query := `
	SELECT id, start_url, host, max_depth, output_file, started_at, finished_at,
		status, visited_count, unique_count, error
	FROM runs
	WHERE (? = '' OR host = ?)
	ORDER BY id DESC`
	args := []any{host, host}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a run together with its signatures.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunSummary, error) {
	row := h.db.QueryRowContext(ctx, `
	SELECT id, start_url, host, max_depth, output_file, started_at, finished_at,
		status, visited_count, unique_count, error
	FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Signatures, err = h.GetRunSignatures(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRunSignatures returns a run's signatures in the order they were recorded.
func (h *HistoryDB) GetRunSignatures(ctx context.Context, runID int64) ([]model.SignatureRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT names, url FROM signatures WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signatures: %w", err)
	}
	defer rows.Close()

	var records []model.SignatureRecord
	for rows.Next() {
		var namesJSON, rawURL string
		if err := rows.Scan(&namesJSON, &rawURL); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		var names []string
		if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
			return nil, fmt.Errorf("failed to parse signature names: %w", err)
		}
		records = append(records, model.SignatureRecord{
			Signature: signature.New(names...).String(),
			Names:     names,
			URL:       rawURL,
		})
	}
	return records, rows.Err()
}

// DeleteRun removes a run and its signatures.
func (h *HistoryDB) DeleteRun(ctx context.Context, id int64) error {
	res, err := h.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.RunSummary, error) {
	var (
		run               model.RunSummary
		started, finished string
		status            string
	)
	err := row.Scan(&run.ID, &run.StartURL, &run.Host, &run.MaxDepth, &run.OutputFile,
		&started, &finished, &status, &run.VisitedCount, &run.UniqueCount, &run.ErrorMessage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	run.FinishedAt = parseTimestamp(finished)
	run.Status = model.RunStatus(status)
	return &run, nil
}

// timestampFormats are tried in order when reading stored timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp returns the zero time for empty or unknown values.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
