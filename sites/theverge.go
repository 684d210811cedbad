package sites

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/scraper"
)

// vergeStoryID matches the numeric story id segment in Verge article paths,
// e.g. /2023/10/5/23904567/slug or /24012345/slug.
var vergeStoryID = regexp.MustCompile(`/\d{6,}(/|$)`)

// TheVerge extracts articles from theverge.com.
type TheVerge struct {
	site
}

// NewTheVerge creates The Verge adapter.
func NewTheVerge(log logger.Logger) *TheVerge {
	return &TheVerge{site: newSite("The Verge", "https://www.theverge.com/", "theverge.com", "The Verge Staff", log)}
}

// ExtractLinks returns the first link of every article container that points
// at a story page.
func (v *TheVerge) ExtractLinks(html string) []string {
	return v.links(html, withClass("article, div", "article"), isVergeStory)
}

func isVergeStory(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return vergeStoryID.MatchString(u.Path)
}

// ExtractArticle reads the article body, byline, and lead picture.
func (v *TheVerge) ExtractArticle(url, html string) (*article.Article, bool) {
	return v.extract(url, html, func(doc *goquery.Document, a *article.Article) {
		a.Content = scraper.BodyIn(doc, classContaining(doc.Find("div"), "article", "body"))
		if author := scraper.Text(classContaining(doc.Find("a"), "author").First()); author != "" {
			a.Author = author
		}
		a.FeaturedImage = scraper.ImageSrc(doc, v.base, "picture img")
	})
}
