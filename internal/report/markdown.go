package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/paramscan/internal/model"
)

// MarkdownWriter outputs Markdown built with nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one run with a run table and a signature table.
func (w *MarkdownWriter) Write(run *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeStatus(md, run)
	w.writeSignatures(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunSummary) {
	md.H1("Parameter Discovery Report")
	md.PlainText("")

	started, finished := formatTime(run)
	rows := [][]string{
		{"Start URL", "`" + run.StartURL + "`"},
		{"Host", "`" + run.Host + "`"},
		{"Max Depth", strconv.Itoa(run.MaxDepth)},
		{"Started", started},
		{"Finished", finished},
	}
	if d := run.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	rows = append(rows,
		[]string{"Status", string(run.Status)},
		[]string{"Visited URLs", strconv.Itoa(run.VisitedCount)},
		[]string{"Unique Parameters", strconv.Itoa(run.UniqueCount)},
	)
	if run.OutputFile != "" {
		rows = append(rows, []string{"Output File", "`" + run.OutputFile + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStatus(md *markdown.Markdown, run *model.RunSummary) {
	switch run.Status {
	case model.RunStatusInterrupted:
		md.Warningf("The crawl was interrupted. Signatures found before the interrupt are listed.")
	case model.RunStatusFailed:
		md.Cautionf("The crawl ended with an error: %s", run.ErrorMessage)
	default:
		return
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeSignatures(md *markdown.Markdown, run *model.RunSummary) {
	md.H2("Parameter Signatures")
	md.PlainText("")

	if len(run.Signatures) == 0 {
		md.PlainText("No query parameters discovered.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(run.Signatures))
	for _, s := range run.Signatures {
		rows = append(rows, []string{
			"`" + strings.Join(s.Names, "`, `") + "`",
			escapeTableCell(s.URL),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Parameters", "Example URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteRuns outputs a table of runs.
func (w *MarkdownWriter) WriteRuns(runs []model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Crawl History")
	md.PlainText("")

	if len(runs) == 0 {
		md.PlainText("No recorded runs.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(runs))
		for i := range runs {
			run := &runs[i]
			started, _ := formatTime(run)
			rows = append(rows, []string{
				strconv.FormatInt(run.ID, 10),
				started,
				string(run.Status),
				strconv.Itoa(run.VisitedCount),
				strconv.Itoa(run.UniqueCount),
				escapeTableCell(run.StartURL),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"ID", "Started", "Status", "Visited", "Unique", "Start URL"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by paramscan*")
}

// escapeTableCell keeps URLs with "|" from breaking table rows.
func escapeTableCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
