package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/intelligrit/bookcrawl/internal/catalog"
	"github.com/intelligrit/bookcrawl/internal/model"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API Running"))
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q.Get("page"), 1, 1, 0)
	if err != nil {
		http.Error(w, "invalid 'page' parameter: "+err.Error(), http.StatusBadRequest)
		return
	}
	bookLimit, err := intParam(q.Get("book_limit"), s.Limits.DefaultBooks, 0, s.Limits.MaxBooks)
	if err != nil {
		http.Error(w, "invalid 'book_limit' parameter: "+err.Error(), http.StatusBadRequest)
		return
	}
	chapterLimit, err := intParam(q.Get("chapter_limit"), s.Limits.DefaultChapters, 0, s.Limits.MaxChapters)
	if err != nil {
		http.Error(w, "invalid 'chapter_limit' parameter: "+err.Error(), http.StatusBadRequest)
		return
	}

	format := q.Get("format")
	if format != "" && format != "plugin" {
		http.Error(w, "invalid 'format' parameter", http.StatusBadRequest)
		return
	}

	books, err := s.Crawler.Run(r.Context(), catalog.Options{
		Page:         page,
		BookLimit:    bookLimit,
		ChapterLimit: chapterLimit,
	})
	if err != nil {
		s.logger().Error("crawl failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if books == nil {
		books = []model.Book{}
	}
	if format == "plugin" {
		writeJSON(w, model.PluginResults(books))
		return
	}
	writeJSON(w, books)
}

// intParam parses an integer query value. Empty means def; a hi of 0
// means no upper bound.
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if n < lo {
		return 0, fmt.Errorf("must be at least %d", lo)
	}
	if hi > 0 && n > hi {
		return 0, fmt.Errorf("must be at most %d", hi)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS: the publishing plugin calls this from a browser.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(v)
}
