package sites

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/scraper"
)

// TechCrunch extracts articles from techcrunch.com.
type TechCrunch struct {
	site
}

// NewTechCrunch creates the TechCrunch adapter.
func NewTechCrunch(log logger.Logger) *TechCrunch {
	return &TechCrunch{site: newSite("TechCrunch", "https://techcrunch.com/", "techcrunch.com", "TechCrunch Staff", log)}
}

// ExtractLinks returns the first link of every post block.
func (t *TechCrunch) ExtractLinks(html string) []string {
	return t.links(html, matching("article.post-block"), nil)
}

// ExtractArticle reads the article body, byline, featured image, and tag
// links.
func (t *TechCrunch) ExtractArticle(url, html string) (*article.Article, bool) {
	return t.extract(url, html, func(doc *goquery.Document, a *article.Article) {
		a.Content = scraper.Body(doc, "div.article-content")
		a.Author = scraper.FirstText(doc, "a[rel=author]", a.Author)
		a.FeaturedImage = scraper.ImageSrc(doc, t.base, "img.wp-post-image")

		doc.Find("a[rel=tag]").Each(func(_ int, tag *goquery.Selection) {
			if text := scraper.Text(tag); text != "" {
				a.Tags = append(a.Tags, text)
			}
		})
	})
}
