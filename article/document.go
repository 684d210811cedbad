package article

import (
	"time"
)

// Document status values.
const (
	StatusScraped    = "scraped"
	StatusTranslated = "translated"
)

// SummaryLength is the number of characters of content used as a summary
// when the article has none.
const SummaryLength = 500

// Document is the persistence payload for an article. Its fields are the
// fixed schema of the articles collection.
type Document struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	TitleTranslated   string    `json:"title_translated"`
	URL               string    `json:"url"`
	Summary           string    `json:"summary"`
	SummaryTranslated string    `json:"summary_translated"`
	ContentTranslated string    `json:"content_translated"`
	Source            string    `json:"source"`
	ImageURL          string    `json:"image_url"`
	PublishedDate     string    `json:"published_date"`
	Category          string    `json:"category"`
	Status            string    `json:"status"`
	ScrapedAt         time.Time `json:"scraped_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToDocument maps an article onto the persistence schema. The ID and
// timestamps are left for the store to assign.
func ToDocument(a *Article) Document {
	// Summary: explicit summary wins, otherwise the head of the content
	summary := a.Summary
	if summary == "" {
		summary = Truncate(a.Content, SummaryLength)
	}

	category := a.Category
	if category == "" {
		category = DefaultCategory
	}

	doc := Document{
		Title:         a.Title,
		URL:           a.SourceURL,
		Summary:       summary,
		Source:        a.Source,
		ImageURL:      a.FeaturedImage,
		PublishedDate: a.PublishedDate,
		Category:      category,
		Status:        StatusScraped,
		ScrapedAt:     a.ScrapedAt,
	}

	if a.TitleTranslated != nil {
		doc.TitleTranslated = *a.TitleTranslated
	}
	if a.ContentTranslated != nil {
		doc.ContentTranslated = *a.ContentTranslated
		doc.SummaryTranslated = Truncate(*a.ContentTranslated, SummaryLength)
	}
	if a.IsTranslated() {
		doc.Status = StatusTranslated
	}

	return doc
}

// ToArticle rebuilds the translatable parts of an article from a stored
// document. Only title and content (taken from the summary) survive
// persistence.
func (d *Document) ToArticle() *Article {
	return &Article{
		SourceURL:     d.URL,
		Title:         d.Title,
		Content:       d.Summary,
		PublishedDate: d.PublishedDate,
		FeaturedImage: d.ImageURL,
		Category:      d.Category,
		Source:        d.Source,
		ScrapedAt:     d.ScrapedAt,
	}
}
