package scraper

import (
	"context"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
	"github.com/pevans/technews/fetcher"
)

// Adapter holds the site-specific knowledge for one news source. New sources
// are added by implementing these methods; everything else treats sources
// uniformly.
type Adapter interface {
	// Name identifies the adapter in logs and provenance fields.
	Name() string

	// ExtractLinks returns the absolute article URLs found in the homepage
	// HTML, restricted to the adapter's own domain, in first-seen order with
	// duplicates removed.
	ExtractLinks(html string) []string

	// ExtractArticle builds an article from its page HTML. It returns false
	// when no title can be found or extraction fails for any reason; it
	// never panics.
	ExtractArticle(url, html string) (*article.Article, bool)
}

// Fetcher retrieves page HTML. *fetcher.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, mode fetcher.Mode) (string, error)
}

// Source pairs a configured news source with its adapter. Fetcher, when
// set, replaces the runner's default fetcher for this source (e.g. to use a
// per-source user-agent pool).
type Source struct {
	Config  config.SourceConfig
	Adapter Adapter
	Fetcher Fetcher
}
