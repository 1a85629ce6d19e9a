package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/docstruct/docstruct/constants"
)

// Run is one recorded extraction run.
type Run struct {
	ID           uuid.UUID
	SourceName   string
	Pages        int
	PairCount    int
	Status       constants.RunStatus
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// RunRepository records extraction runs and their terminal state.
type RunRepository interface {
	Start(ctx context.Context, sourceName string, pages int) (uuid.UUID, error)
	FinishSuccess(ctx context.Context, runID uuid.UUID, pairCount int) error
	FinishFailure(ctx context.Context, runID uuid.UUID, message string) error
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS extraction_run (
	id            TEXT PRIMARY KEY,
	source_name   TEXT NOT NULL,
	pages         INTEGER NOT NULL DEFAULT 0,
	pair_count    INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP
);
`

// Open opens (and migrates) the sqlite run-history database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate run history: %w", err)
	}
	return db, nil
}

type runRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewRunRepository(db *sql.DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, sourceName string, pages int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_run (id, source_name, pages, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), sourceName, pages, string(constants.RunStatusRunning), time.Now().UTC(),
	)
	if err != nil {
		r.log.Error("extraction_run start failed", "source", sourceName, "err", err)
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	r.log.Info("extraction_run started", "run_id", id, "source", sourceName, "pages", pages)
	return id, nil
}

func (r *runRepo) FinishSuccess(ctx context.Context, runID uuid.UUID, pairCount int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extraction_run SET status = ?, pair_count = ?, finished_at = ? WHERE id = ?`,
		string(constants.RunStatusSucceeded), pairCount, time.Now().UTC(), runID.String(),
	)
	if err != nil {
		r.log.Error("extraction_run finish(SUCCEEDED) failed", "run_id", runID, "err", err)
		return fmt.Errorf("update run: %w", err)
	}
	r.log.Info("extraction_run finished (SUCCEEDED)", "run_id", runID, "pairs", pairCount)
	return nil
}

func (r *runRepo) FinishFailure(ctx context.Context, runID uuid.UUID, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE extraction_run SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(constants.RunStatusFailed), message, time.Now().UTC(), runID.String(),
	)
	if err != nil {
		r.log.Error("extraction_run finish(FAILED) failed", "run_id", runID, "err", err)
		return fmt.Errorf("update run: %w", err)
	}
	r.log.Warn("extraction_run finished (FAILED)", "run_id", runID, "error", message)
	return nil
}

func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_name, pages, pair_count, status, error_message, started_at, finished_at
		 FROM extraction_run ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var (
			run      Run
			idStr    string
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&idStr, &run.SourceName, &run.Pages, &run.PairCount, &status, &run.ErrorMessage, &run.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
		}
		run.ID = id
		run.Status = constants.RunStatus(status)
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
