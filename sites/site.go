// Package sites holds the concrete adapters for each supported news source.
package sites

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
	"github.com/pevans/technews/fetcher"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/scraper"
)

// site carries the parts every HTML adapter shares: its identity, the base
// URL used to resolve relative links, and its own domain.
type site struct {
	name          string
	base          *url.URL
	domain        string
	defaultAuthor string
	log           logger.Logger
}

func newSite(name, baseURL, domain, defaultAuthor string, log logger.Logger) site {
	base, _ := url.Parse(baseURL)
	return site{
		name:          name,
		base:          base,
		domain:        domain,
		defaultAuthor: defaultAuthor,
		log:           log.With(logger.String("adapter", name)),
	}
}

// Name returns the adapter name.
func (s site) Name() string {
	return s.name
}

// containers selects the homepage elements that each wrap one article
// teaser.
type containers func(doc *goquery.Document) *goquery.Selection

// matching selects every element matching selector.
func matching(selector string) containers {
	return func(doc *goquery.Document) *goquery.Selection {
		return doc.Find(selector)
	}
}

// withClass selects the elements matching selector whose class attribute
// mentions word.
func withClass(selector, word string) containers {
	return func(doc *goquery.Document) *goquery.Selection {
		return classContaining(doc.Find(selector), word)
	}
}

// classContaining filters sel to the elements whose class attribute contains
// every word, ignoring case.
func classContaining(sel *goquery.Selection, words ...string) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		class := strings.ToLower(s.AttrOr("class", ""))
		for _, w := range words {
			if !strings.Contains(class, w) {
				return false
			}
		}
		return true
	})
}

// links returns the first anchor href inside each container, resolved and
// restricted to the site's domain. accept, when non-nil, filters the
// resolved URLs further.
func (s site) links(html string, find containers, accept func(string) bool) []string {
	doc, err := scraper.ParseHTML(html)
	if err != nil {
		s.log.Warn("failed to parse homepage", logger.Error(err))
		return []string{}
	}

	links := []string{}
	find(doc).Each(func(_ int, c *goquery.Selection) {
		href, ok := c.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}

		link := scraper.Resolve(s.base, href)
		if link == "" || !scraper.SameDomain(link, s.domain) {
			return
		}
		if accept != nil && !accept(link) {
			return
		}
		links = append(links, link)
	})

	return scraper.Dedupe(links)
}

// extract parses html and fills the fields common to every site. fill adds
// the site-specific fields. Articles without a title are rejected, and a
// panic anywhere in extraction is recovered.
func (s site) extract(pageURL, html string, fill func(doc *goquery.Document, a *article.Article)) (*article.Article, bool) {
	return scraper.Safely(s.log, pageURL, func() (*article.Article, bool) {
		doc, err := scraper.ParseHTML(html)
		if err != nil {
			s.log.Warn("failed to parse article", logger.String("url", pageURL), logger.Error(err))
			return nil, false
		}

		title := scraper.Title(doc)
		if title == "" {
			s.log.Debug("article has no title", logger.String("url", pageURL))
			return nil, false
		}

		a := &article.Article{
			SourceURL:     pageURL,
			Title:         title,
			Author:        s.defaultAuthor,
			PublishedDate: scraper.PublishedDate(doc),
			Images:        scraper.Images(doc),
			Category:      article.DefaultCategory,
			Tags:          []string{},
		}
		fill(doc, a)

		return a, true
	})
}

// New builds the adapter selected by src.Key. An unknown key is a
// configuration error.
func New(src config.SourceConfig, log logger.Logger) (scraper.Adapter, error) {
	switch src.Key {
	case "techcrunch":
		return NewTechCrunch(log), nil
	case "theverge":
		return NewTheVerge(log), nil
	case "arstechnica":
		return NewArsTechnica(log), nil
	case "wired":
		return NewWired(log), nil
	case "feed":
		return NewFeed(src, log)
	default:
		return nil, fmt.Errorf("unknown source adapter %q for source %q", src.Key, src.Name)
	}
}

// Sources builds a scraper.Source for every configured source. Sources with
// their own user-agent pool get a fetcher derived from base.
func Sources(cfgs []config.SourceConfig, base *fetcher.Fetcher, log logger.Logger) ([]scraper.Source, error) {
	sources := make([]scraper.Source, 0, len(cfgs))
	for _, cfg := range cfgs {
		adapter, err := New(cfg, log)
		if err != nil {
			return nil, err
		}

		src := scraper.Source{Config: cfg, Adapter: adapter}
		if len(cfg.UserAgents) > 0 && base != nil {
			src.Fetcher = base.WithUserAgents(cfg.UserAgents)
		}
		sources = append(sources, src)
	}
	return sources, nil
}
