package sites

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/scraper"
)

// Feed adapts any source that publishes an RSS or Atom feed. The configured
// URL is the feed itself; its item links are the article pages. Metadata
// from the feed fills fields the article page does not provide.
type Feed struct {
	site

	mu    sync.Mutex
	items map[string]*gofeed.Item
}

// NewFeed creates a feed adapter for src. The feed URL must be absolute.
func NewFeed(src config.SourceConfig, log logger.Logger) (*Feed, error) {
	u, err := url.Parse(src.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid feed URL %q for source %q", src.URL, src.Name)
	}

	name := src.Name
	if name == "" {
		name = u.Hostname()
	}

	return &Feed{
		site:  newSite(name, src.URL, feedDomain(u.Hostname()), name+" Staff", log),
		items: map[string]*gofeed.Item{},
	}, nil
}

// feedDomain strips the common feed host prefixes so that
// feeds.example.com accepts article links on www.example.com.
func feedDomain(host string) string {
	for _, prefix := range []string{"www.", "feeds.", "feed.", "rss."} {
		if trimmed, ok := strings.CutPrefix(host, prefix); ok {
			return trimmed
		}
	}
	return host
}

// ExtractLinks parses the feed and returns its item links. gofeed detects
// RSS and Atom automatically.
func (f *Feed) ExtractLinks(body string) []string {
	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		f.log.Warn("failed to parse feed", logger.Error(err))
		f.mu.Lock()
		f.items = map[string]*gofeed.Item{}
		f.mu.Unlock()
		return []string{}
	}

	// Items from earlier feeds are dropped so each run sees current metadata
	items := map[string]*gofeed.Item{}
	links := []string{}
	for _, item := range parsed.Items {
		link := scraper.Resolve(f.base, item.Link)
		if link == "" || !scraper.SameDomain(link, f.domain) {
			continue
		}
		if _, seen := items[link]; !seen {
			items[link] = item
		}
		links = append(links, link)
	}

	f.mu.Lock()
	f.items = items
	f.mu.Unlock()

	return scraper.Dedupe(links)
}

// ExtractArticle reads the article page, using the feed item for the title,
// author, date, and image when the page lacks them.
func (f *Feed) ExtractArticle(pageURL, html string) (*article.Article, bool) {
	f.mu.Lock()
	item := f.items[pageURL]
	f.mu.Unlock()

	return scraper.Safely(f.log, pageURL, func() (*article.Article, bool) {
		doc, err := scraper.ParseHTML(html)
		if err != nil {
			f.log.Warn("failed to parse article", logger.String("url", pageURL), logger.Error(err))
			return nil, false
		}

		a := &article.Article{
			SourceURL:     pageURL,
			Title:         scraper.Title(doc),
			Content:       scraper.Body(doc, "article"),
			Author:        scraper.FirstText(doc, "a[rel=author]", ""),
			PublishedDate: scraper.PublishedDate(doc),
			FeaturedImage: metaContent(doc, f.base, "meta[property='og:image']"),
			Images:        scraper.Images(doc),
			Category:      article.DefaultCategory,
			Tags:          []string{},
		}
		if item != nil {
			fillFromItem(a, item)
		}
		if a.Author == "" {
			a.Author = f.defaultAuthor
		}

		if a.Title == "" {
			f.log.Debug("article has no title", logger.String("url", pageURL))
			return nil, false
		}
		return a, true
	})
}

func metaContent(doc *goquery.Document, base *url.URL, selector string) string {
	content, ok := doc.Find(selector).First().Attr("content")
	if !ok {
		return ""
	}
	return scraper.Resolve(base, content)
}

// plainText strips markup from feed fields, which often carry HTML.
func plainText(s string) string {
	doc, err := scraper.ParseHTML(s)
	if err != nil {
		return article.CleanText(s)
	}
	return scraper.Text(doc.Selection)
}

// fillFromItem copies feed metadata into empty article fields.
func fillFromItem(a *article.Article, item *gofeed.Item) {
	if a.Title == "" {
		a.Title = plainText(item.Title)
	}
	if a.Content == "" {
		a.Content = item.Content
		if a.Content == "" {
			a.Content = item.Description
		}
		a.Content = plainText(a.Content)
	}
	if a.Summary == "" && item.Description != "" {
		a.Summary = article.ExtractSummary(plainText(item.Description), article.SummaryLength)
	}
	if a.Author == "" {
		a.Author = strings.Join(itemAuthors(item), ", ")
	}
	if a.PublishedDate == "" {
		a.PublishedDate = item.Published
		if a.PublishedDate == "" {
			a.PublishedDate = item.Updated
		}
	}
	if a.FeaturedImage == "" && item.Image != nil {
		a.FeaturedImage = item.Image.URL
	}
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			a.Tags = append(a.Tags, c)
		}
	}
}

// itemAuthors collects author names from the item's author, authors, and
// Dublin Core creator fields without duplicates.
func itemAuthors(item *gofeed.Item) []string {
	authors := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		for _, existing := range authors {
			if strings.EqualFold(existing, name) {
				return
			}
		}
		authors = append(authors, name)
	}

	if item.Author != nil {
		add(item.Author.Name)
	}
	for _, author := range item.Authors {
		if author != nil {
			add(author.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			add(creator)
		}
	}

	return authors
}
