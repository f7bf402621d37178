package report

import (
	"errors"
	"fmt"

	"github.com/nao1215/paramscan/internal/model"
	"github.com/nao1215/paramscan/internal/signature"
	"github.com/nao1215/paramscan/internal/sink"
)

// Flush appends the URL of every entry to s. URLs that were already written
// during the crawl are written again; readers of the output tolerate
// duplicates. Every entry is attempted and the failures are joined.
func Flush(s sink.Sink, entries []signature.Entry) error {
	var errs []error
	for _, e := range entries {
		if err := s.Append(e.URL); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush %s: %w", e.URL, err))
		}
	}
	return errors.Join(errs...)
}

// SignatureRecords converts index entries for a run summary.
func SignatureRecords(entries []signature.Entry) []model.SignatureRecord {
	out := make([]model.SignatureRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.SignatureRecord{
			Signature: e.Signature.String(),
			Names:     e.Signature.Names(),
			URL:       e.URL,
		})
	}
	return out
}
