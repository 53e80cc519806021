package model

// PluginDocument is the normalized shape consumed by the publishing plugin.
type PluginDocument struct {
	Results []PluginBook `json:"results"`
}

type PluginBook struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	CoverImage  string          `json:"cover_image"`
	Description string          `json:"description"`
	Genres      []string        `json:"genres"`
	Chapters    []PluginChapter `json:"chapters"`
}

type PluginChapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PluginResults flattens books into the plugin document, keeping book and
// chapter order.
func PluginResults(books []Book) PluginDocument {
	doc := PluginDocument{Results: make([]PluginBook, 0, len(books))}
	for _, b := range books {
		pb := PluginBook{
			Title:       b.Title,
			Author:      b.Author,
			CoverImage:  b.ImageLink,
			Description: b.Intro,
			Genres:      []string{b.Category},
			Chapters:    make([]PluginChapter, 0, len(b.Chapters)),
		}
		for _, ch := range b.Chapters {
			pb.Chapters = append(pb.Chapters, PluginChapter{Title: ch.Title, Content: ch.Content})
		}
		doc.Results = append(doc.Results, pb)
	}
	return doc
}
