// Package cmd contains the quickerstat CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/quickerstat/pkg/config"
	"github.com/codeGROOVE-dev/quickerstat/pkg/httpcache"
	"github.com/codeGROOVE-dev/quickerstat/pkg/quickerstat"
	"github.com/codeGROOVE-dev/quickerstat/pkg/report"
)

var (
	debug          bool
	noCache        bool
	cacheTTL       time.Duration
	outDir         string
	maxPages       int
	browserCookies bool
	saveHTML       bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quickerstat [user-id-or-url]",
	Short: "Extract GetQuicker user statistics",
	Long: `quickerstat fetches GetQuicker user pages through the share-portal
referer gate and reports profile fields plus shared-action statistics.

Examples:
  quickerstat                                        # default user
  quickerstat 113342-                                # by id
  quickerstat https://getquicker.net/User/113342/Cea # by profile URL
  quickerstat profile 113342-                        # profile fields only
  quickerstat actions 113342-                        # action stats only
  quickerstat recommended                            # recommended-author roundup`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initRun(cmd)
	},
	RunE: runFull,
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "skip the HTTP response cache")
	rootCmd.PersistentFlags().DurationVar(&cacheTTL, "cache-ttl", 24*time.Hour, "HTTP cache entry lifetime")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", ".", "directory for JSON/CSV reports")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 100, "page cap per user")
	rootCmd.PersistentFlags().BoolVar(&browserCookies, "browser-cookies", false, "read session cookies from browser stores")
	rootCmd.PersistentFlags().BoolVar(&saveHTML, "save-html", false, "persist fetched pages under <out>/html")
}

// initRun sets up logging and config. Environment values apply wherever the
// matching flag was left at its default.
func initRun(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if !flags.Changed("cache-ttl") {
		cacheTTL = cfg.CacheTTL
	}
	if !flags.Changed("out") {
		outDir = cfg.OutDir
	}
	if !flags.Changed("max-pages") {
		maxPages = cfg.MaxPages
	}

	logger.Debug("configuration loaded",
		"base_url", cfg.BaseURL, "out", outDir, "max_pages", maxPages, "cache_ttl", cacheTTL)
	return nil
}

// userArg picks the user argument, falling back to the configured default.
func userArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.DefaultUser
}

// buildOptions assembles the extraction options from flags and config.
// A broken cache downgrades to uncached fetching rather than aborting.
func buildOptions() []quickerstat.Option {
	opts := []quickerstat.Option{
		quickerstat.WithLogger(logger),
		quickerstat.WithBaseURL(cfg.BaseURL),
		quickerstat.WithMaxPages(maxPages),
	}
	if !noCache {
		cache, err := httpcache.New(cacheTTL)
		if err != nil {
			logger.Warn("cache unavailable, fetching uncached", "error", err)
		} else {
			opts = append(opts, quickerstat.WithHTTPCache(cache))
		}
	}
	if browserCookies {
		opts = append(opts, quickerstat.WithBrowserCookies())
	}
	if saveHTML {
		opts = append(opts, quickerstat.WithDebugDir(filepath.Join(outDir, "html")))
	}
	return opts
}

// runFull is the default pipeline: profile, actions, stats, all artifacts.
func runFull(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rep, err := quickerstat.UserStats(ctx, userArg(args), buildOptions()...)
	if err != nil {
		return err
	}

	report.PrintProfile(os.Stdout, rep.Profile)
	fmt.Println()
	report.PrintSummary(os.Stdout, rep.Stats)

	subject := report.Subject(rep.Profile.UserID)
	writeArtifact(report.WriteUserJSON(outDir, subject, rep.Profile, &rep.Stats))
	writeArtifact(report.WriteActionsJSON(outDir, subject, rep.Actions))
	writeArtifact(report.WriteActionsCSV(outDir, subject, rep.Actions))

	logCacheStats()
	return nil
}

// writeArtifact logs one report file result. Failures are warnings: the
// run already printed its findings and should not die on a bad directory.
func writeArtifact(path string, err error) {
	if err != nil {
		logger.Warn("report file not written", "error", err)
		return
	}
	logger.Info("wrote report file", "path", path)
}

func logCacheStats() {
	s := httpcache.CacheStats()
	logger.Debug("cache stats", "hits", s.Hits, "misses", s.Misses)
}
