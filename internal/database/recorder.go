package database

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/nao1215/paramscan/internal/signature"
)

// RunRecorder is a sink that records each appended URL's signature for one
// run. Recording is best-effort: database errors are logged and never
// returned, so history problems cannot stop a crawl. Appending a URL whose
// signature the run already has is a no-op, which makes the final flush
// idempotent.
type RunRecorder struct {
	ctx    context.Context
	db     *HistoryDB
	runID  int64
	logger *slog.Logger

	failures atomic.Int64
}

// NewRunRecorder returns a recorder for runID. The recorder keeps working
// after ctx is cancelled so an interrupted crawl can still be flushed.
func NewRunRecorder(ctx context.Context, db *HistoryDB, runID int64, logger *slog.Logger) *RunRecorder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RunRecorder{
		ctx:    context.WithoutCancel(ctx),
		db:     db,
		runID:  runID,
		logger: logger,
	}
}

// Append records the signature of line. URLs without a query are ignored.
func (r *RunRecorder) Append(line string) error {
	sig, ok := signature.Of(line)
	if !ok {
		return nil
	}
	if _, err := r.db.InsertSignature(r.ctx, r.runID, sig, line); err != nil {
		r.failures.Add(1)
		r.logger.Warn("failed to record signature in history", "url", line, "error", err)
	}
	return nil
}

// Failures returns how many inserts failed.
func (r *RunRecorder) Failures() int64 {
	return r.failures.Load()
}
