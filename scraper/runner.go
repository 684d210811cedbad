// Package scraper runs site adapters against live pages: it fetches a
// source's homepage, follows the article links the adapter finds, and
// collects the extracted articles.
package scraper

import (
	"context"
	"time"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/fetcher"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
)

// Runner scrapes one source at a time. Pages are fetched sequentially so
// the fetcher's politeness delay applies between requests.
type Runner struct {
	fetcher Fetcher
	log     logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRunner creates a runner using f as the default fetcher.
func NewRunner(f Fetcher, log logger.Logger, m *metrics.Metrics) *Runner {
	return &Runner{
		fetcher: f,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the clock used to stamp scraped_at.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run scrapes up to maxArticles articles from src. A failed homepage fetch
// yields an empty result; a failed article fetch or extraction skips that
// article. Run never returns an error.
func (r *Runner) Run(ctx context.Context, src Source, maxArticles int) []*article.Article {
	name := src.Config.Name
	if name == "" {
		name = src.Adapter.Name()
	}
	log := r.log.With(logger.String("source", name))

	f := src.Fetcher
	if f == nil {
		f = r.fetcher
	}

	articles := []*article.Article{}

	log.Info("scraping source", logger.String("url", src.Config.URL))
	homepage, err := f.Fetch(ctx, src.Config.URL, fetcher.ModeDefault)
	if err != nil {
		log.Error("failed to fetch homepage", logger.String("url", src.Config.URL), logger.Error(err))
		return articles
	}

	links := src.Adapter.ExtractLinks(homepage)
	found := len(links)
	if maxArticles >= 0 && len(links) > maxArticles {
		links = links[:maxArticles]
	}
	log.Debug("extracted article links", logger.Int("found", found), logger.Int("selected", len(links)))

	for _, link := range links {
		if ctx.Err() != nil {
			log.Warn("scrape cancelled", logger.Error(ctx.Err()))
			break
		}

		html, err := f.Fetch(ctx, link, fetcher.ModeDefault)
		if err != nil {
			log.Warn("failed to fetch article", logger.String("url", link), logger.Error(err))
			continue
		}

		a, ok := Safely(log, link, func() (*article.Article, bool) {
			return src.Adapter.ExtractArticle(link, html)
		})
		if !ok || a == nil || a.Title == "" {
			log.Warn("failed to extract article", logger.String("url", link))
			continue
		}

		a.Source = name
		a.ScrapedAt = r.now().UTC()
		articles = append(articles, a)
	}

	r.metrics.Scraped(name, len(articles))
	log.Info("scraped source",
		logger.Int("links", found),
		logger.Int("articles", len(articles)))

	return articles
}
