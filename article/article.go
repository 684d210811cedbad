package article

import (
	"time"
)

// DefaultCategory is the taxonomy value assigned when an adapter has nothing
// more specific.
const DefaultCategory = "Technology"

// Article is a single scraped news article as it flows through the pipeline.
// Adapters create it, the translator enriches it, and the store converts it
// into a Document.
type Article struct {
	SourceURL     string    `json:"source_url"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Summary       string    `json:"summary,omitempty"`
	Author        string    `json:"author"`
	PublishedDate string    `json:"published_date"`
	FeaturedImage string    `json:"featured_image,omitempty"`
	Images        []string  `json:"images"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags"`
	Source        string    `json:"source"`
	ScrapedAt     time.Time `json:"scraped_at"`

	// Translation fields stay nil until a translation succeeds, so that an
	// untranslated article is distinguishable from an empty translation.
	TitleTranslated    *string `json:"title_translated,omitempty"`
	ContentTranslated  *string `json:"content_translated,omitempty"`
	TranslationService string  `json:"translation_service,omitempty"`
}

// IsTranslated reports whether both title and content carry a translation.
func (a *Article) IsTranslated() bool {
	return a.TitleTranslated != nil && a.ContentTranslated != nil
}

// Clone returns a deep copy of the article.
func (a *Article) Clone() *Article {
	c := *a
	c.Images = append([]string(nil), a.Images...)
	c.Tags = append([]string(nil), a.Tags...)
	if a.TitleTranslated != nil {
		s := *a.TitleTranslated
		c.TitleTranslated = &s
	}
	if a.ContentTranslated != nil {
		s := *a.ContentTranslated
		c.ContentTranslated = &s
	}
	return &c
}
