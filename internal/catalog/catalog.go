// Package catalog assembles the book collection: one listing call, then a
// chapter-list call and a chapter pipeline run per book.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/intelligrit/bookcrawl/internal/eventlog"
	"github.com/intelligrit/bookcrawl/internal/model"
	"github.com/intelligrit/bookcrawl/internal/scraper"
	"github.com/intelligrit/bookcrawl/internal/source"
)

// Options selects what one run fetches.
type Options struct {
	Page         int
	BookLimit    int
	ChapterLimit int
}

// Crawler runs the catalog orchestration.
type Crawler struct {
	fetcher     scraper.Fetcher
	endpoints   source.Endpoints
	pipeline    *scraper.Pipeline
	log         *eventlog.Logger
	bookWorkers int
}

// NewCrawler wires a Crawler. bookWorkers < 1 means books are processed one
// at a time.
func NewCrawler(f scraper.Fetcher, e source.Endpoints, p *scraper.Pipeline, log *eventlog.Logger, bookWorkers int) *Crawler {
	if log == nil {
		log = eventlog.Discard()
	}
	if bookWorkers < 1 {
		bookWorkers = 1
	}
	return &Crawler{
		fetcher:     f,
		endpoints:   e,
		pipeline:    p,
		log:         log,
		bookWorkers: bookWorkers,
	}
}

// Run returns up to opts.BookLimit books in listing order, each with up to
// opts.ChapterLimit chapters in chapter-list order. The only error it
// returns is a transport failure on the listing request; everything else
// degrades to empty lists or empty content.
func (c *Crawler) Run(ctx context.Context, opts Options) ([]model.Book, error) {
	listed, err := c.listBooks(ctx, opts.Page)
	if err != nil {
		return nil, err
	}
	listed = source.Take(listed, opts.BookLimit)

	books := make([]model.Book, len(listed))

	var g errgroup.Group
	g.SetLimit(c.bookWorkers)
	for i, lb := range listed {
		g.Go(func() error {
			books[i] = c.crawlBook(ctx, lb, opts.ChapterLimit)
			return nil
		})
	}
	_ = g.Wait()

	return books, nil
}

func (c *Crawler) listBooks(ctx context.Context, page int) ([]model.ListedBook, error) {
	body, err := c.fetcher.Fetch(ctx, c.endpoints.ListingURL(page))
	if err != nil {
		var se *scraper.StatusError
		if !errors.As(err, &se) {
			return nil, fmt.Errorf("fetching book list: %w", err)
		}
		c.log.Record(ctx, eventlog.Event{Status: eventlog.StatusError, Message: "book list: " + scraper.Describe(err)})
		return nil, nil
	}

	listed, err := source.DecodeBookList(body)
	if err != nil {
		c.log.Record(ctx, eventlog.Event{Status: eventlog.StatusError, Message: err.Error()})
		return nil, nil
	}
	return listed, nil
}

func (c *Crawler) crawlBook(ctx context.Context, lb model.ListedBook, chapterLimit int) model.Book {
	book := model.NewBook(lb)
	ref := scraper.BookRef{ID: lb.BookID.String(), Title: lb.Title}

	entries := source.Take(c.chapterList(ctx, ref), chapterLimit)
	if len(entries) == 0 {
		return book
	}

	book.Chapters = c.pipeline.Run(ctx, ref, entries)
	return book
}

// chapterList returns nil on any failure; the book is then kept with no
// chapters.
func (c *Crawler) chapterList(ctx context.Context, ref scraper.BookRef) []model.ChapterEntry {
	failed := func(msg string) []model.ChapterEntry {
		c.log.Record(ctx, eventlog.Event{
			BookID:    ref.ID,
			BookTitle: ref.Title,
			Status:    eventlog.StatusError,
			Message:   "chapter list: " + msg,
		})
		return nil
	}

	body, err := c.fetcher.Fetch(ctx, c.endpoints.ChapterListURL(ref.ID))
	if err != nil {
		return failed(scraper.Describe(err))
	}
	entries, err := source.DecodeChapterList(body)
	if err != nil {
		return failed(err.Error())
	}
	return entries
}
