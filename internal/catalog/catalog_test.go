package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelligrit/bookcrawl/internal/model"
	"github.com/intelligrit/bookcrawl/internal/scraper"
	"github.com/intelligrit/bookcrawl/internal/source"
)

// fakeSource imitates the listing API, the chapter-list API and chapter
// pages.
type fakeSource struct {
	books          []map[string]any
	chapters       int
	listingStatus  int
	chapterListErr map[string]int
	pageStatus     map[string]int
	pageDelay      func(bookID, chapterID string) time.Duration
	listingPage    atomic.Value
}

func (s *fakeSource) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/qimaoapi/api/classify/book-list", func(w http.ResponseWriter, r *http.Request) {
		s.listingPage.Store(r.URL.Query().Get("page"))
		if s.listingStatus != 0 {
			w.WriteHeader(s.listingStatus)
			return
		}
		writeJSON(t, w, map[string]any{"data": map[string]any{"book_list": s.books}})
	})
	mux.HandleFunc("/qimaoapi/api/book/chapter-list", func(w http.ResponseWriter, r *http.Request) {
		bookID := r.URL.Query().Get("book_id")
		if code, ok := s.chapterListErr[bookID]; ok {
			w.WriteHeader(code)
			return
		}
		var chapters []map[string]any
		for i := 1; i <= s.chapters; i++ {
			chapters = append(chapters, map[string]any{
				"id": fmt.Sprint(i), "title": fmt.Sprintf("%s-ch%d", bookID, i), "words": 1000 + i, "is_vip": "0",
			})
		}
		writeJSON(t, w, map[string]any{"data": map[string]any{"chapters": chapters}})
	})
	mux.HandleFunc("/shuku/", func(w http.ResponseWriter, r *http.Request) {
		key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/shuku/"), "/")
		bookID, chapterID, _ := strings.Cut(key, "-")
		if code, ok := s.pageStatus[key]; ok {
			w.WriteHeader(code)
			return
		}
		if s.pageDelay != nil {
			time.Sleep(s.pageDelay(bookID, chapterID))
		}
		fmt.Fprintf(w, `<html><body><div class="article"><p>%s first</p><p>%s second</p></div></body></html>`, key, key)
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func listedBooks(ids ...string) []map[string]any {
	var out []map[string]any
	for _, id := range ids {
		out = append(out, map[string]any{
			"book_id": id, "title": "Title " + id, "category2_name": "Cat", "intro": "Intro", "image_link": "http://img/" + id, "author": "Author",
		})
	}
	return out
}

func newTestCrawler(t *testing.T, src *fakeSource, bookWorkers int) *Crawler {
	t.Helper()
	srv := httptest.NewServer(src.handler(t))
	t.Cleanup(srv.Close)

	f := scraper.NewHTTPFetcher(srv.Client(), "", nil)
	e := source.NewEndpoints(srv.URL, map[string]string{"order": "click"})
	p := scraper.NewPipeline(f, scraper.NewExtractor("div.article", "p", nil), e.ChapterPageURL, 10)
	return NewCrawler(f, e, p, nil, bookWorkers)
}

func TestRunEndToEnd(t *testing.T) {
	src := &fakeSource{books: listedBooks("100", "200"), chapters: 3}
	c := newTestCrawler(t, src, 1)

	books, err := c.Run(context.Background(), Options{Page: 2, BookLimit: 5, ChapterLimit: 5})
	require.NoError(t, err)
	assert.Equal(t, "2", src.listingPage.Load())

	require.Len(t, books, 2)
	for bi, book := range books {
		assert.Equal(t, []string{"100", "200"}[bi], book.BookID.String())
		assert.Equal(t, "Cat", book.Category)
		assert.Equal(t, "http://img/"+book.BookID.String(), book.ImageLink)
		require.Len(t, book.Chapters, 3)
		for ci, ch := range book.Chapters {
			assert.Equal(t, fmt.Sprint(ci+1), ch.ID.String())
			assert.Equal(t, model.Count(1000+ci+1), ch.Words)
			assert.False(t, bool(ch.IsVIP))
			segments := strings.Split(ch.Content, "\n")
			require.Len(t, segments, 2, "content %q", ch.Content)
			assert.Equal(t, fmt.Sprintf("%s-%d first", book.BookID, ci+1), segments[0])
		}
	}
}

func TestRunNoBooks(t *testing.T) {
	c := newTestCrawler(t, &fakeSource{}, 1)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 5, ChapterLimit: 5})
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestRunLimits(t *testing.T) {
	src := &fakeSource{books: listedBooks("1", "2", "3", "4"), chapters: 12}
	c := newTestCrawler(t, src, 1)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 2, ChapterLimit: 4})
	require.NoError(t, err)
	require.Len(t, books, 2)
	for _, b := range books {
		assert.Len(t, b.Chapters, 4)
	}

	books, err = c.Run(context.Background(), Options{Page: 1, BookLimit: 10, ChapterLimit: 0})
	require.NoError(t, err)
	require.Len(t, books, 4, "limit above listing length returns the whole listing")
	for _, b := range books {
		assert.NotNil(t, b.Chapters)
		assert.Empty(t, b.Chapters)
	}
}

func TestRunChapterListFailureKeepsBook(t *testing.T) {
	src := &fakeSource{
		books:          listedBooks("1", "2"),
		chapters:       2,
		chapterListErr: map[string]int{"1": http.StatusInternalServerError},
	}
	c := newTestCrawler(t, src, 1)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 5, ChapterLimit: 5})
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "1", books[0].BookID.String())
	assert.Empty(t, books[0].Chapters)
	assert.Len(t, books[1].Chapters, 2)
}

func TestRunChapterPageFailureKeepsRecord(t *testing.T) {
	src := &fakeSource{
		books:      listedBooks("1"),
		chapters:   3,
		pageStatus: map[string]int{"1-2": http.StatusNotFound},
	}
	c := newTestCrawler(t, src, 1)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 1, ChapterLimit: 3})
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.Len(t, books[0].Chapters, 3)
	assert.NotEmpty(t, books[0].Chapters[0].Content)
	assert.Equal(t, "", books[0].Chapters[1].Content)
	assert.Equal(t, "1-ch2", books[0].Chapters[1].Title)
	assert.NotEmpty(t, books[0].Chapters[2].Content)
}

func TestRunListingStatusDegrades(t *testing.T) {
	c := newTestCrawler(t, &fakeSource{listingStatus: http.StatusServiceUnavailable}, 1)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 5, ChapterLimit: 5})
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestRunListingTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	f := scraper.NewHTTPFetcher(nil, "", nil)
	e := source.NewEndpoints(base, nil)
	p := scraper.NewPipeline(f, scraper.NewExtractor("div.article", "p", nil), e.ChapterPageURL, 10)
	c := NewCrawler(f, e, p, nil, 1)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 5, ChapterLimit: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching book list")
	assert.Nil(t, books)
}

func TestRunParallelBooksKeepListingOrder(t *testing.T) {
	// Later books answer faster.
	src := &fakeSource{
		books:    listedBooks("1", "2", "3", "4", "5"),
		chapters: 3,
		pageDelay: func(bookID, _ string) time.Duration {
			var n int
			fmt.Sscanf(bookID, "%d", &n)
			return time.Duration(6-n) * 5 * time.Millisecond
		},
	}
	c := newTestCrawler(t, src, 3)

	books, err := c.Run(context.Background(), Options{Page: 1, BookLimit: 5, ChapterLimit: 3})
	require.NoError(t, err)
	require.Len(t, books, 5)
	for i, b := range books {
		assert.Equal(t, fmt.Sprint(i+1), b.BookID.String())
		assert.Len(t, b.Chapters, 3)
	}
}
