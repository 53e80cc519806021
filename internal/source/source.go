// Package source knows the remote catalog's URL layout and response shapes.
package source

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/intelligrit/bookcrawl/internal/model"
)

const (
	listingPath     = "/qimaoapi/api/classify/book-list"
	chapterListPath = "/qimaoapi/api/book/chapter-list"
)

// Endpoints builds the URLs of the listing API, the chapter-list API and
// chapter pages under one base URL.
type Endpoints struct {
	BaseURL string
	Filters map[string]string
}

// NewEndpoints trims any trailing slash from baseURL.
func NewEndpoints(baseURL string, filters map[string]string) Endpoints {
	return Endpoints{BaseURL: strings.TrimRight(baseURL, "/"), Filters: filters}
}

// ListingURL returns the listing URL for the given page.
func (e Endpoints) ListingURL(page int) string {
	q := url.Values{}
	keys := make([]string, 0, len(e.Filters))
	for k := range e.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, e.Filters[k])
	}
	q.Set("page", strconv.Itoa(page))
	return e.BaseURL + listingPath + "?" + q.Encode()
}

// ChapterListURL returns the chapter-list URL for a book.
func (e Endpoints) ChapterListURL(bookID string) string {
	return e.BaseURL + chapterListPath + "?" + url.Values{"book_id": {bookID}}.Encode()
}

// ChapterPageURL returns the HTML page URL of one chapter.
func (e Endpoints) ChapterPageURL(bookID, chapterID string) string {
	return fmt.Sprintf("%s/shuku/%s-%s/", e.BaseURL, url.PathEscape(bookID), url.PathEscape(chapterID))
}

type listingResponse struct {
	Data struct {
		BookList []model.ListedBook `json:"book_list"`
	} `json:"data"`
}

type chapterListResponse struct {
	Data struct {
		Chapters []model.ChapterEntry `json:"chapters"`
	} `json:"data"`
}

// DecodeBookList parses a listing body. Missing fields yield an empty list
// and entries without a usable id are skipped; only a body that is not JSON
// at all is an error.
func DecodeBookList(body string) ([]model.ListedBook, error) {
	var resp listingResponse
	if err := decodeLenient(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding book list: %w", err)
	}
	return withID(resp.Data.BookList, func(b model.ListedBook) model.ID { return b.BookID }), nil
}

// DecodeChapterList parses a chapter-list body with the same rules as
// DecodeBookList.
func DecodeChapterList(body string) ([]model.ChapterEntry, error) {
	var resp chapterListResponse
	if err := decodeLenient(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding chapter list: %w", err)
	}
	return withID(resp.Data.Chapters, func(c model.ChapterEntry) model.ID { return c.ID }), nil
}

func withID[T any](items []T, id func(T) model.ID) []T {
	out := items[:0]
	for _, it := range items {
		if !id(it).IsZero() {
			out = append(out, it)
		}
	}
	return out
}

// decodeLenient treats a JSON document whose fields have unexpected types
// (for example "data": []) as having those fields absent.
func decodeLenient(body string, v any) error {
	err := json.Unmarshal([]byte(body), v)
	if _, ok := err.(*json.UnmarshalTypeError); ok {
		return nil
	}
	return err
}

// Take returns at most n leading items of s; n <= 0 yields an empty slice.
func Take[T any](s []T, n int) []T {
	if n <= 0 {
		return s[:0:0]
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
