package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/intelligrit/bookcrawl/internal/eventlog"
)

// ChapterRef identifies a chapter in log events.
type ChapterRef struct {
	BookID       string
	BookTitle    string
	ChapterID    string
	ChapterTitle string
}

func (r ChapterRef) event(status eventlog.Status, msg string) eventlog.Event {
	return eventlog.Event{
		BookID:       r.BookID,
		BookTitle:    r.BookTitle,
		ChapterID:    r.ChapterID,
		ChapterTitle: r.ChapterTitle,
		Status:       status,
		Message:      msg,
	}
}

// Default selectors for the chapter article and its paragraphs.
const (
	DefaultContainer = "div.article"
	DefaultParagraph = "p"
)

// Extractor pulls chapter text out of a chapter page.
type Extractor struct {
	Container string
	Paragraph string
	Log       *eventlog.Logger
}

// NewExtractor returns an Extractor for the given selectors.
func NewExtractor(container, paragraph string, log *eventlog.Logger) *Extractor {
	if log == nil {
		log = eventlog.Discard()
	}
	return &Extractor{Container: container, Paragraph: paragraph, Log: log}
}

// Extract returns the chapter text of html, or "" when the page has no
// article container. Either outcome is recorded as an event.
func (x *Extractor) Extract(ctx context.Context, html string, ref ChapterRef) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		x.Log.Record(ctx, ref.event(eventlog.StatusError, fmt.Sprintf("parsing chapter HTML: %v", err)))
		return ""
	}

	text, n, found := ExtractChapterText(doc, x.Container, x.Paragraph)
	if !found {
		x.Log.Record(ctx, ref.event(eventlog.StatusError, "container not found"))
		return ""
	}

	x.Log.Record(ctx, ref.event(eventlog.StatusSuccess, fmt.Sprintf("crawled %d paragraphs", n)))
	return text
}

// ExtractChapterText joins the trimmed text of every paragraph inside the
// first container match, one paragraph per line. found is false when the
// document has no container.
func ExtractChapterText(doc *goquery.Document, container, paragraph string) (text string, count int, found bool) {
	article := doc.Find(container).First()
	if article.Length() == 0 {
		return "", 0, false
	}

	var paragraphs []string
	article.Find(paragraph).Each(func(_ int, p *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
	})

	return strings.Join(paragraphs, "\n"), len(paragraphs), true
}
