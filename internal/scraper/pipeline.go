package scraper

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/intelligrit/bookcrawl/internal/eventlog"
	"github.com/intelligrit/bookcrawl/internal/model"
)

// DefaultMaxConcurrent is the default ceiling on in-flight chapter fetches.
const DefaultMaxConcurrent = 10

// PageURLFunc maps a book and chapter id to the chapter page URL.
type PageURLFunc func(bookID, chapterID string) string

// BookRef identifies the book a pipeline run belongs to.
type BookRef struct {
	ID    string
	Title string
}

// Pipeline fetches and extracts chapters concurrently. Every Run on the same
// Pipeline draws from one permit pool, so the ceiling holds across books
// processed in parallel.
type Pipeline struct {
	fetcher   Fetcher
	extractor *Extractor
	pageURL   PageURLFunc
	log       *eventlog.Logger
	permits   *semaphore.Weighted
}

// NewPipeline returns a Pipeline allowing at most maxConcurrent chapter
// fetches at once. maxConcurrent < 1 falls back to DefaultMaxConcurrent and a
// nil extractor to one using the default selectors.
func NewPipeline(f Fetcher, x *Extractor, pageURL PageURLFunc, maxConcurrent int) *Pipeline {
	if maxConcurrent < 1 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if x == nil {
		x = NewExtractor(DefaultContainer, DefaultParagraph, nil)
	}
	return &Pipeline{
		fetcher:   f,
		extractor: x,
		pageURL:   pageURL,
		log:       x.Log,
		permits:   semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Run returns one chapter per entry, in entry order. A chapter whose page
// could not be fetched or parsed has empty content; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context, book BookRef, entries []model.ChapterEntry) []model.Chapter {
	chapters := make([]model.Chapter, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chapters[i] = model.NewChapter(entry, p.content(ctx, book, entry))
		}()
	}
	wg.Wait()

	return chapters
}

func (p *Pipeline) content(ctx context.Context, book BookRef, entry model.ChapterEntry) string {
	ref := ChapterRef{
		BookID:       book.ID,
		BookTitle:    book.Title,
		ChapterID:    entry.ID.String(),
		ChapterTitle: entry.Title,
	}

	if err := p.permits.Acquire(ctx, 1); err != nil {
		p.log.Record(ctx, ref.event(eventlog.StatusError, err.Error()))
		return ""
	}
	defer p.permits.Release(1)

	html, err := p.fetcher.Fetch(ctx, p.pageURL(book.ID, ref.ChapterID))
	if err != nil {
		p.log.Record(ctx, ref.event(eventlog.StatusError, Describe(err)))
		return ""
	}
	return p.extractor.Extract(ctx, html, ref)
}
