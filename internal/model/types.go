package model

// Book is one catalog entry with its fetched chapters.
type Book struct {
	BookID    ID        `json:"book_id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Intro     string    `json:"intro"`
	ImageLink string    `json:"image_link"`
	Author    string    `json:"author"`
	Chapters  []Chapter `json:"chapters"`
}

// Chapter is a chapter record. Content is empty when the page could not be
// fetched or parsed.
type Chapter struct {
	ID      ID     `json:"id"`
	Title   string `json:"title"`
	Words   Count  `json:"words"`
	IsVIP   Flag   `json:"is_vip"`
	Content string `json:"content"`
}

// ListedBook is a book summary as returned by the listing API.
type ListedBook struct {
	BookID        ID     `json:"book_id"`
	Title         string `json:"title"`
	Category2Name string `json:"category2_name"`
	Intro         string `json:"intro"`
	ImageLink     string `json:"image_link"`
	Author        string `json:"author"`
}

// ChapterEntry is chapter metadata as returned by the chapter-list API.
type ChapterEntry struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
	Words Count  `json:"words"`
	IsVIP Flag   `json:"is_vip"`
}

// NewBook converts a listing entry into a Book with no chapters yet.
func NewBook(lb ListedBook) Book {
	return Book{
		BookID:    lb.BookID,
		Title:     lb.Title,
		Category:  lb.Category2Name,
		Intro:     lb.Intro,
		ImageLink: lb.ImageLink,
		Author:    lb.Author,
		Chapters:  []Chapter{},
	}
}

// NewChapter pairs chapter-list metadata with fetched content.
func NewChapter(e ChapterEntry, content string) Chapter {
	return Chapter{
		ID:      e.ID,
		Title:   e.Title,
		Words:   e.Words,
		IsVIP:   e.IsVIP,
		Content: content,
	}
}
