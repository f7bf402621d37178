package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/paramscan/internal/config"
	"github.com/nao1215/paramscan/internal/database"
	"github.com/nao1215/paramscan/internal/report"
)

// errConflictingFormats is returned when more than one output format is requested.
var errConflictingFormats = errors.New("--json and --markdown cannot be used together")

// NewHistoryCmd creates the history command.
// It lists past crawls recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [host]",
		Short: "List recorded crawl runs",
		Long: `History lists the crawls recorded in the local history database, newest
first. Give a host (host[:port]) to list only the runs against that host.

Use 'paramscan history show <id>' to print the parameter signatures a run
discovered.

Examples:
  # List all recorded runs
  paramscan history

  # List the last 5 runs against one host
  paramscan history --limit 5 example.com

  # Print the signatures of run 3 as Markdown
  paramscan history show 3 --markdown

  # Remove run 3
  paramscan history delete 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of runs to list (0 lists all)")

	cmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	cmd.PersistentFlags().BoolP("markdown", "m", false, "Output in Markdown format")
	cmd.PersistentFlags().String("db-dir", "", "History database directory (default: XDG data directory)")

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the parameter signatures of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryDeleteCmd,
	}
}

// runHistoryCmd lists runs.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	w, err := historyWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var host string
	if len(args) > 0 {
		host = args[0]
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), host, limit)
	if err != nil {
		return err
	}
	_, err = w.WriteRuns(runs)
	return err
}

// runHistoryShowCmd prints one run with its signatures.
func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}
	w, err := historyWriter(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	_, err = w.Write(run)
	return err
}

// runHistoryDeleteCmd removes one run.
func runHistoryDeleteCmd(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	db, err := openHistoryDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRun(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run #%d\n", id)
	return nil
}

func parseRunID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid run ID %q: must be a positive integer", s)
	}
	return id, nil
}

// historyWriter picks the report writer from the --json and --markdown flags.
func historyWriter(cmd *cobra.Command, out io.Writer) (report.Writer, error) {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	switch {
	case jsonOutput && markdownOutput:
		return nil, errConflictingFormats
	case jsonOutput:
		return report.NewJSONWriter(out, report.WithPrettyPrint()), nil
	case markdownOutput:
		return report.NewMarkdownWriter(out), nil
	default:
		return report.NewSimpleWriter(out), nil
	}
}

// openHistoryDB opens the history database named by --db-dir, or the one in
// the XDG data directory.
func openHistoryDB(cmd *cobra.Command) (*database.HistoryDB, error) {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
