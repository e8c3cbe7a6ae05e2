package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobscout/jobscout-cli/internal/config"
	"github.com/jobscout/jobscout-cli/internal/export"
	"github.com/jobscout/jobscout-cli/internal/pipeline"
	"github.com/jobscout/jobscout-cli/internal/source"
	"github.com/jobscout/jobscout-cli/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch, filter, score, and export job postings",
	Long: `Fetch postings from the configured job boards, run the filter and
scoring pipeline, and write the ranked survivors to a timestamped CSV.

Examples:
  # Run with config/env defaults
  jobscout scrape

  # Narrow to two boards and the last 3 days
  jobscout scrape --sites indeed,linkedin --hours-old 72

  # Disable the remote-only rule and write elsewhere
  jobscout scrape --remote-only=false --out-dir ./exports`,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.String("sites", "", "comma-separated source sites (overrides config)")
	f.String("term", "", "search term (overrides config)")
	f.Int("hours-old", 0, "maximum posting age in hours (overrides config)")
	f.Int("limit", 0, "results wanted per site (overrides config)")
	f.Bool("remote-only", true, "only keep remote-compatible postings")
	f.String("out-dir", "", "export directory (overrides config)")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applyScrapeOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "scrape"))

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return eris.Wrap(err, "scrape: open store")
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "scrape: migrate store")
	}

	log.Info("starting scrape",
		zap.Strings("sites", cfg.Search.Sites),
		zap.Int("hours_old", cfg.Search.HoursOld),
		zap.Bool("remote_only", cfg.Search.RemoteOnly),
	)

	p := pipeline.New(cfg, st, source.NewHTTPSource(cfg.Search), export.NewWriter(cfg.Export))
	result, err := p.Run(ctx)
	if err != nil {
		return eris.Wrap(err, "scrape: pipeline")
	}

	fmt.Print(pipeline.FormatSummary(result))
	return nil
}

// applyScrapeOverrides folds CLI flags into the loaded config.
func applyScrapeOverrides(cmd *cobra.Command, c *config.Config) {
	if v, _ := cmd.Flags().GetString("sites"); v != "" {
		c.Search.Sites = splitAndTrim(v)
	}
	if v, _ := cmd.Flags().GetString("term"); v != "" {
		c.Search.Term = v
	}
	if v, _ := cmd.Flags().GetInt("hours-old"); v > 0 {
		c.Search.HoursOld = v
	}
	if v, _ := cmd.Flags().GetInt("limit"); v > 0 {
		c.Search.ResultsWanted = v
	}
	if cmd.Flags().Changed("remote-only") {
		v, _ := cmd.Flags().GetBool("remote-only")
		c.Search.RemoteOnly = v
	}
	if v, _ := cmd.Flags().GetString("out-dir"); v != "" {
		c.Export.OutDir = v
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
