package model

import "time"

// RunStatus describes how a crawl run ended.
type RunStatus string

const (
	// RunStatusRunning is recorded while the crawl is in progress.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted means the crawl exhausted every reachable URL.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusInterrupted means the operator stopped the crawl.
	RunStatusInterrupted RunStatus = "interrupted"
	// RunStatusFailed means the crawl ended on an unexpected error.
	RunStatusFailed RunStatus = "failed"
)

// SignatureRecord is one recorded parameter signature and its representative URL.
type SignatureRecord struct {
	// Signature is the human-readable form, e.g. "{id,page}".
	Signature string `json:"signature"`

	// Names are the sorted parameter names of the signature.
	Names []string `json:"names"`

	// URL is the first URL observed with this signature.
	URL string `json:"url"`
}

// RunSummary describes one crawl run for reports and the history database.
type RunSummary struct {
	// ID is the history database identifier; zero when not recorded.
	ID int64 `json:"id,omitempty"`

	StartURL string `json:"start_url"`
	Host     string `json:"host"`
	MaxDepth int    `json:"max_depth"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	Status RunStatus `json:"status"`

	// VisitedCount is the number of URLs dispatched for fetching.
	VisitedCount int `json:"visited_count"`

	// UniqueCount is the number of distinct parameter signatures.
	UniqueCount int `json:"unique_count"`

	// OutputFile is the sink the URLs were appended to.
	OutputFile string `json:"output_file,omitempty"`

	Signatures []SignatureRecord `json:"signatures,omitempty"`

	// ErrorMessage is set when Status is RunStatusFailed.
	ErrorMessage string `json:"error,omitempty"`
}

// Duration returns how long the run took, or zero while it is still running.
func (r *RunSummary) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
