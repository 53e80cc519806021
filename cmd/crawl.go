package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/intelligrit/bookcrawl/internal/catalog"
	"github.com/intelligrit/bookcrawl/internal/model"
)

var (
	crawlPage         int
	crawlBookLimit    int
	crawlChapterLimit int
	crawlFormat       string
	crawlOutput       string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one crawl and write the JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("book-limit") {
			crawlBookLimit = cfg.Limits.DefaultBooks
		}
		if !cmd.Flags().Changed("chapter-limit") {
			crawlChapterLimit = cfg.Limits.DefaultChapters
		}
		if crawlPage < 1 || crawlBookLimit < 0 || crawlChapterLimit < 0 {
			return fmt.Errorf("page must be positive and limits must not be negative")
		}
		if crawlFormat != "books" && crawlFormat != "plugin" {
			return fmt.Errorf("unknown format %q (want books or plugin)", crawlFormat)
		}

		// Stdout carries the document, so events go to stderr.
		log, err := newLogger(os.Stderr)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		books, err := newCrawler(log).Run(ctx, catalog.Options{
			Page:         crawlPage,
			BookLimit:    crawlBookLimit,
			ChapterLimit: crawlChapterLimit,
		})
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if crawlOutput != "" {
			f, err := os.Create(crawlOutput)
			if err != nil {
				return fmt.Errorf("creating output: %w", err)
			}
			defer f.Close()
			out = f
		}

		var doc any = books
		if crawlFormat == "plugin" {
			doc = model.PluginResults(books)
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}

		chapters := 0
		for _, b := range books {
			chapters += len(b.Chapters)
		}
		log.Info("crawl finished", "books", len(books), "chapters", chapters)
		return nil
	},
}

func init() {
	crawlCmd.Flags().IntVar(&crawlPage, "page", 1, "Listing page to crawl")
	crawlCmd.Flags().IntVar(&crawlBookLimit, "book-limit", 5, "Maximum number of books")
	crawlCmd.Flags().IntVar(&crawlChapterLimit, "chapter-limit", 5, "Maximum number of chapters per book")
	crawlCmd.Flags().StringVar(&crawlFormat, "format", "books", "Output shape: books or plugin")
	crawlCmd.Flags().StringVarP(&crawlOutput, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(crawlCmd)
}
