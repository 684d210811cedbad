package sites

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/scraper"
)

// ArsTechnica extracts articles from arstechnica.com.
type ArsTechnica struct {
	site
}

// NewArsTechnica creates the Ars Technica adapter.
func NewArsTechnica(log logger.Logger) *ArsTechnica {
	return &ArsTechnica{site: newSite("Ars Technica", "https://arstechnica.com/", "arstechnica.com", "Ars Technica Staff", log)}
}

// ExtractLinks returns the first link of every <article>.
func (s *ArsTechnica) ExtractLinks(html string) []string {
	return s.links(html, matching("article"), nil)
}

// ExtractArticle reads the article body, byline, and featured image.
func (s *ArsTechnica) ExtractArticle(url, html string) (*article.Article, bool) {
	return s.extract(url, html, func(doc *goquery.Document, a *article.Article) {
		a.Content = scraper.Body(doc, "div.article-content")
		a.Author = scraper.FirstText(doc, "span.author", a.Author)

		a.FeaturedImage = scraper.ImageSrc(doc, s.base, "img.featured-image")
		if a.FeaturedImage == "" {
			a.FeaturedImage = scraper.ImageSrc(doc, s.base, "figure.featured-image img")
		}
	})
}
