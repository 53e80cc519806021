package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/intelligrit/bookcrawl/internal/catalog"
	"github.com/intelligrit/bookcrawl/internal/config"
	"github.com/intelligrit/bookcrawl/internal/eventlog"
	"github.com/intelligrit/bookcrawl/internal/scraper"
	"github.com/intelligrit/bookcrawl/internal/source"
)

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "bookcrawl",
	Short:         "Crawl a book catalog and its chapters into one JSON document",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load(".env.local")

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// newLogger builds the slog logger described by the [log] config section.
func newLogger(w io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Log.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	h, err := eventlog.NewHandler(w, strings.TrimSpace(cfg.Log.Format), level)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

// newCrawler wires the fetcher, pipeline and orchestrator from cfg.
func newCrawler(log *slog.Logger) *catalog.Crawler {
	events := eventlog.New(log)

	client := &http.Client{Timeout: time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second}
	fetcher := scraper.NewHTTPFetcher(client, cfg.Source.UserAgent, scraper.NewRateLimiter(cfg.Scrape.RateLimit))
	endpoints := source.NewEndpoints(cfg.Source.BaseURL, cfg.Source.Filters)
	extractor := scraper.NewExtractor(cfg.Extract.Container, cfg.Extract.Paragraph, events)
	pipeline := scraper.NewPipeline(fetcher, extractor, endpoints.ChapterPageURL, cfg.Scrape.MaxConcurrent)

	log.Debug("crawler configured",
		"source", cfg.Source.BaseURL,
		"max_concurrent", cfg.Scrape.MaxConcurrent,
		"book_workers", cfg.Scrape.BookWorkers,
		"rate_limit", cfg.Scrape.RateLimit,
	)
	return catalog.NewCrawler(fetcher, endpoints, pipeline, events, cfg.Scrape.BookWorkers)
}
