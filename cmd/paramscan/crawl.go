package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/paramscan/internal/config"
	"github.com/nao1215/paramscan/internal/crawler"
	"github.com/nao1215/paramscan/internal/database"
	"github.com/nao1215/paramscan/internal/fetcher"
	"github.com/nao1215/paramscan/internal/gate"
	plog "github.com/nao1215/paramscan/internal/log"
	"github.com/nao1215/paramscan/internal/model"
	"github.com/nao1215/paramscan/internal/report"
	"github.com/nao1215/paramscan/internal/signature"
	"github.com/nao1215/paramscan/internal/sink"
	"github.com/nao1215/paramscan/internal/tor"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site and record one URL per distinct parameter set",
		Long: `Crawl follows <a href> links from the start URL, staying on the start
URL's host and within the depth limit. Every link carrying a query string is
reduced to the set of its parameter names; the first URL seen for each set
is appended to the output file.

Press Ctrl+C to stop early. Everything found so far is written to the
output file before paramscan exits.

Examples:
  # Crawl two levels deep (the default)
  paramscan crawl https://example.com

  # Crawl deeper with more workers and a higher request rate
  paramscan crawl -u example.com -d 4 -n 10 -r 5

  # Send a session cookie and route through a local SOCKS proxy
  paramscan crawl --cookie "session=abc" --proxy socks5://127.0.0.1:9050 https://example.com

  # Start an embedded Tor daemon and crawl an onion site through it
  paramscan crawl --tor http://exampleonionaddress.onion

  # Write a Markdown summary next to the URL list
  paramscan crawl --summary report.md https://example.com

Configuration file (.paramscan) example:
  defaults:
    rateLimit: 2
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Target flags
	cmd.Flags().StringP("url", "u", "", "Start URL (http:// is assumed when no scheme is given)")
	cmd.Flags().IntP("depth", "d", config.DefaultDepth, "Maximum crawl depth; 1 fetches only the start URL")

	// Pacing flags
	cmd.Flags().IntP("threads", "n", config.DefaultThreads, "Maximum number of concurrent requests")
	cmd.Flags().Float64P("rate-limit", "r", config.DefaultRateLimit, "Maximum requests per second")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")

	// Request flags
	cmd.Flags().BoolP("insecure", "k", false, "Disable TLS certificate verification")
	cmd.Flags().Bool("ssl", false, "Disable TLS certificate verification")
	_ = cmd.Flags().MarkHidden("ssl")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header sent with every request")
	cmd.Flags().StringArrayP("header", "H", nil, `Extra request header in "Name: value" form (repeatable)`)
	cmd.Flags().String("cookie", "", "Cookie header value")
	cmd.Flags().String("proxy", "", "Proxy URL (http://, https:// or socks5://)")
	cmd.Flags().Bool("tor", false, "Start an embedded Tor daemon and route requests through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout, "Maximum time to wait for the embedded Tor daemon to bootstrap")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize, "Maximum response body size in bytes")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile, "File the discovered URLs are appended to")
	cmd.Flags().String("error-log", config.DefaultErrorLogFile, "File fetch failures and unexpected errors are appended to")
	cmd.Flags().String("summary", "", "Write a Markdown summary of the run to this file")
	cmd.Flags().BoolP("quiet", "q", false, "Do not print the banner or the progress line")

	// History flags
	cmd.Flags().Bool("no-history", false, "Do not record the run in the history database")
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (default: .paramscan)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the config file.
// Flags set explicitly on the command line win over the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	cfg.StartURL, err = flags.GetString("url")
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if cfg.StartURL != "" && cfg.StartURL != args[0] {
			return nil, fmt.Errorf("start URL given twice: %q and %q", cfg.StartURL, args[0])
		}
		cfg.StartURL = args[0]
	}

	if cfg.Depth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.Threads, err = flags.GetInt("threads"); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = flags.GetFloat64("rate-limit"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}

	insecure, err := flags.GetBool("insecure")
	if err != nil {
		return nil, err
	}
	ssl, err := flags.GetBool("ssl")
	if err != nil {
		return nil, err
	}
	cfg.Insecure = insecure || ssl

	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.Headers, err = flags.GetStringArray("header"); err != nil {
		return nil, err
	}
	if cfg.Cookie, err = flags.GetString("cookie"); err != nil {
		return nil, err
	}
	if cfg.ProxyURL, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}

	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ErrorLogFile, err = flags.GetString("error-log"); err != nil {
		return nil, err
	}
	if cfg.SummaryFile, err = flags.GetString("summary"); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user named a config file it must exist; otherwise a missing
	// file just means no site settings.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	if cfg.StartURL != "" {
		seed, err := model.NormalizeStartURL(cfg.StartURL)
		if err != nil {
			return nil, err
		}
		scope, err := model.NewScope(seed, cfg.Depth)
		if err != nil {
			return nil, err
		}
		cfg.ApplySiteConfig(cfg.SiteConfigs.GetSiteConfig(scope.Host()), config.Overrides{
			Depth:     flags.Changed("depth"),
			Threads:   flags.Changed("threads"),
			RateLimit: flags.Changed("rate-limit"),
			UserAgent: flags.Changed("user-agent"),
			Cookie:    flags.Changed("cookie"),
			ProxyURL:  flags.Changed("proxy") || cfg.UseTor,
		})
	}

	return cfg, nil
}

// setupLogger creates the diagnostic logger. Sensitive values such as
// cookies and authorization headers are masked.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return plog.NewSecureLogger(w, verbose)
}

// runCrawl executes one crawl. It returns nil when the crawl completed or
// was interrupted and the results were saved.
func runCrawl(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	seed, err := model.NormalizeStartURL(cfg.StartURL)
	if err != nil {
		return err
	}
	scope, err := model.NewScope(seed, cfg.Depth)
	if err != nil {
		return err
	}

	errLog, errLogCloser, err := plog.OpenErrorLog(cfg.ErrorLogFile)
	if err != nil {
		return err
	}
	defer errLogCloser.Close()

	output, err := sink.OpenFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := output.Close(); cerr != nil {
			logger.Warn("failed to close output file", "path", output.Path(), "error", cerr)
		}
	}()

	headers, err := fetcher.ParseHeaders(cfg.Headers)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	proxyURL := cfg.ProxyURL
	if cfg.UseTor {
		embeddedTor, err := startEmbeddedTor(ctx, cfg, stdout, logger)
		if err != nil {
			return err
		}
		defer func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}()
		if proxyURL, err = embeddedTor.ProxyURL(); err != nil {
			return err
		}
	}

	client, err := fetcher.NewHTTPClient(fetcher.ClientOptions{
		Timeout:   cfg.Timeout,
		Insecure:  cfg.Insecure,
		UserAgent: cfg.UserAgent,
		Headers:   headers,
		Cookie:    cfg.Cookie,
		ProxyURL:  proxyURL,
	})
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	f := fetcher.New(client,
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithLogger(logger),
		fetcher.WithErrorLog(errLog),
	)

	run := &model.RunSummary{
		StartURL:   seed,
		Host:       scope.Host(),
		MaxDepth:   scope.MaxDepth(),
		StartedAt:  time.Now(),
		Status:     model.RunStatusRunning,
		OutputFile: output.Path(),
	}

	var out sink.Sink = output
	db := openHistory(ctx, cfg, run, logger)
	if db != nil {
		defer db.Close()
		out = sink.Multi(output, database.NewRunRecorder(ctx, db, run.ID, logger))
	}

	if !cfg.Quiet {
		printBanner(stdout)
	}

	logger.Info("starting crawl",
		"url", seed,
		"depth", cfg.Depth,
		"threads", cfg.Threads,
		"rateLimit", cfg.RateLimit,
		"proxy", proxyURL,
	)

	index := signature.NewIndex()
	progress := report.NewProgress(stdout, cfg.Quiet)
	spider := crawler.NewSpider(scope, f, gate.New(cfg.Threads, cfg.RateLimit), index, out,
		crawler.WithLogger(logger),
		crawler.WithProgress(progress.Update),
	)

	crawlErr := spider.Crawl(ctx, seed)
	progress.Finish()

	var result error
	switch {
	case crawlErr == nil:
		run.Status = model.RunStatusCompleted
		if !cfg.Quiet {
			fmt.Fprintf(stdout, "Crawl completed. Found %d unique parameter sets; results saved to %s\n",
				index.Len(), output.Path())
		}

	case errors.Is(crawlErr, context.Canceled) && ctx.Err() != nil:
		run.Status = model.RunStatusInterrupted
		fmt.Fprintln(stdout, "\nUser interrupted... Saving found URLs...")
		if err := report.Flush(out, index.Entries()); err != nil {
			errLog.Error(fmt.Sprintf("Failed to save found URLs: %v", err))
			result = fmt.Errorf("failed to save found URLs: %w", err)
			break
		}
		fmt.Fprintln(stdout, "Crawl interrupted by user. The URLs found so far have been saved.")

	default:
		run.Status = model.RunStatusFailed
		run.ErrorMessage = crawlErr.Error()
		errLog.Error(fmt.Sprintf("An unexpected error occurred during crawling: %v", crawlErr))
		result = fmt.Errorf("crawl failed: %w", crawlErr)
		if err := report.Flush(out, index.Entries()); err != nil {
			result = errors.Join(result, err)
		}
	}

	run.FinishedAt = time.Now()
	run.VisitedCount, run.UniqueCount = progress.Snapshot()
	run.VisitedCount = max(run.VisitedCount, spider.Visited().Len())
	run.UniqueCount = max(run.UniqueCount, index.Len())
	run.Signatures = report.SignatureRecords(index.Entries())

	if db != nil {
		// The crawl context may already be cancelled.
		if err := db.FinishRun(context.WithoutCancel(ctx), run); err != nil {
			logger.Warn("failed to record run in history", "id", run.ID, "error", err)
		}
	}

	if cfg.SummaryFile != "" {
		if err := writeSummary(cfg.SummaryFile, run); err != nil {
			result = errors.Join(result, err)
		}
	}

	return result
}

// openHistory opens the history database and registers run. It returns nil
// when history is disabled or unavailable; the crawl runs either way.
func openHistory(ctx context.Context, cfg *config.Config, run *model.RunSummary, logger *slog.Logger) *database.HistoryDB {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("history database unavailable, run will not be recorded", "dir", cfg.DBDir, "error", err)
		return nil
	}
	if _, err := db.StartRun(ctx, run); err != nil {
		logger.Warn("failed to record run in history", "error", err)
		_ = db.Close()
		return nil
	}
	logger.Debug("recording run in history", "id", run.ID, "path", db.Path())
	return db
}

// writeSummary writes the Markdown summary of run to path.
func writeSummary(path string, run *model.RunSummary) error {
	file, err := os.Create(path) //nolint:gosec // User-provided summary path is intentional
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}

	if _, err := report.NewMarkdownWriter(file).Write(run); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return file.Close()
}

// startEmbeddedTor starts an embedded Tor daemon and waits for it to
// bootstrap.
func startEmbeddedTor(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (*tor.EmbeddedTor, error) {
	if !cfg.Quiet {
		fmt.Fprintln(stdout, "Starting embedded Tor daemon...")
		fmt.Fprintf(stdout, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")
	}

	embeddedTor := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embeddedTor.SocksAddr(),
		"controlAddr", embeddedTor.ControlAddr(),
	)
	return embeddedTor, nil
}
