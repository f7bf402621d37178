package report

import (
	"io"

	"github.com/nao1215/paramscan/internal/model"
)

// Writer renders run summaries.
type Writer interface {
	// Write outputs one run with its signatures.
	Write(run *model.RunSummary) (int, error)

	// WriteRuns outputs a list of runs without their signatures.
	WriteRuns(runs []model.RunSummary) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

const timeLayout = "2006-01-02 15:04:05 MST"

func formatTime(run *model.RunSummary) (started, finished string) {
	started = run.StartedAt.Format(timeLayout)
	finished = "-"
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Format(timeLayout)
	}
	return started, finished
}

// truncateString truncates s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
