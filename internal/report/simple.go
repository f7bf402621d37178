package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nao1215/paramscan/internal/model"
)

// SimpleWriter outputs plain text for terminal display.
type SimpleWriter struct {
	baseWriter

	// maxURLLen truncates long URLs in run listings; zero disables it.
	maxURLLen int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithMaxURLLength truncates start URLs in run listings.
func WithMaxURLLength(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxURLLen = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		maxURLLen:  60,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one run with its signatures.
func (w *SimpleWriter) Write(run *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeSignatures(&sb, run)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.RunSummary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	if run.ID > 0 {
		fmt.Fprintf(sb, "PARAMSCAN RUN #%d\n", run.ID)
	} else {
		sb.WriteString("PARAMSCAN RUN\n")
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	started, finished := formatTime(run)
	fmt.Fprintf(sb, "Start URL:         %s\n", run.StartURL)
	fmt.Fprintf(sb, "Host:              %s\n", run.Host)
	fmt.Fprintf(sb, "Max Depth:         %d\n", run.MaxDepth)
	fmt.Fprintf(sb, "Started:           %s\n", started)
	fmt.Fprintf(sb, "Finished:          %s\n", finished)
	if d := run.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:          %s\n", d.Round(time.Millisecond))
	}
	fmt.Fprintf(sb, "Status:            %s\n", run.Status)
	if run.ErrorMessage != "" {
		fmt.Fprintf(sb, "Error:             %s\n", run.ErrorMessage)
	}
	fmt.Fprintf(sb, "Visited URLs:      %d\n", run.VisitedCount)
	fmt.Fprintf(sb, "Unique Parameters: %d\n", run.UniqueCount)
	if run.OutputFile != "" {
		fmt.Fprintf(sb, "Output File:       %s\n", run.OutputFile)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSignatures(sb *strings.Builder, run *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "PARAMETER SIGNATURES (%d)\n", len(run.Signatures))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(run.Signatures) == 0 {
		sb.WriteString("  No query parameters discovered\n\n")
		return
	}
	for _, s := range run.Signatures {
		fmt.Fprintf(sb, "  %s\n      %s\n", s.Signature, s.URL)
	}
	sb.WriteString("\n")
}

// WriteRuns outputs one line per run.
func (w *SimpleWriter) WriteRuns(runs []model.RunSummary) (int, error) {
	if len(runs) == 0 {
		return io.WriteString(w.output, "No recorded runs\n")
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tVISITED\tUNIQUE\tSTART URL")
	for i := range runs {
		run := &runs[i]
		started, _ := formatTime(run)
		startURL := run.StartURL
		if w.maxURLLen > 0 {
			startURL = truncateString(startURL, w.maxURLLen)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			run.ID, started, run.Status, run.VisitedCount, run.UniqueCount, startURL)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}
	return io.WriteString(w.output, sb.String())
}
