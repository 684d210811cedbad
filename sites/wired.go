package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/scraper"
)

// Wired extracts articles from wired.com.
type Wired struct {
	site
}

// NewWired creates the Wired adapter.
func NewWired(log logger.Logger) *Wired {
	return &Wired{site: newSite("Wired", "https://www.wired.com/", "wired.com", "Wired Staff", log)}
}

// ExtractLinks returns the first link of every summary card that points at a
// story.
func (w *Wired) ExtractLinks(html string) []string {
	return w.links(html, withClass("div, article", "summary"), func(link string) bool {
		return strings.Contains(link, "wired.com/story/")
	})
}

// ExtractArticle reads the article body, byline, and lead picture.
func (w *Wired) ExtractArticle(url, html string) (*article.Article, bool) {
	return w.extract(url, html, func(doc *goquery.Document, a *article.Article) {
		a.Content = scraper.Body(doc, "div.article__body")
		a.Author = scraper.FirstText(doc, "a[rel=author]", a.Author)
		a.FeaturedImage = scraper.ImageSrc(doc, w.base, "picture img")
	})
}
