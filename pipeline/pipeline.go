// Package pipeline runs the scrape, translate, and persist stages over all
// configured sources.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
	"github.com/pevans/technews/scraper"
	"github.com/pevans/technews/store"
)

// Scraper scrapes a single source. *scraper.Runner implements it.
type Scraper interface {
	Run(ctx context.Context, src scraper.Source, maxArticles int) []*article.Article
}

// Translator translates one article. *translator.Translator implements it.
type Translator interface {
	TranslateArticle(ctx context.Context, a *article.Article) *article.Article
}

// Options selects the stages to run.
type Options struct {
	// MaxArticlesPerSource applies to sources without their own limit.
	MaxArticlesPerSource int
	Translate            bool
	Save                 bool
}

// SourceResult reports the outcome of scraping one source.
type SourceResult struct {
	Source   string        `json:"source"`
	Scraped  int           `json:"scraped"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result summarizes a pipeline run.
type Result struct {
	Articles      []*article.Article `json:"articles"`
	Scraped       int                `json:"scraped"`
	Translated    int                `json:"translated"`
	Saved         int                `json:"saved"`
	SaveFailed    int                `json:"save_failed"`
	SourceResults []SourceResult     `json:"source_results"`
}

// Processor owns the sources and the collaborators for each stage. The
// translator and store are optional.
type Processor struct {
	sources    []scraper.Source
	scraper    Scraper
	translator Translator
	store      store.Store
	log        logger.Logger
	metrics    *metrics.Metrics
}

// NewProcessor creates a processor. translator and st may be nil.
func NewProcessor(
	sources []scraper.Source,
	s Scraper,
	translator Translator,
	st store.Store,
	log logger.Logger,
	m *metrics.Metrics,
) *Processor {
	return &Processor{
		sources:    sources,
		scraper:    s,
		translator: translator,
		store:      st,
		log:        log,
		metrics:    m,
	}
}

// Process scrapes every source, then optionally translates and saves the
// articles. When nothing is scraped the later stages are skipped. Failures
// are isolated to the source or article they occur in.
func (p *Processor) Process(ctx context.Context, opts Options) *Result {
	start := time.Now()
	p.log.Info("starting pipeline",
		logger.Int("sources", len(p.sources)),
		logger.Bool("translate", opts.Translate),
		logger.Bool("save", opts.Save))

	result := p.ScrapeAll(ctx, opts.MaxArticlesPerSource)
	if result.Scraped == 0 {
		p.log.Warn("no articles scraped, skipping remaining stages")
		return result
	}

	if opts.Translate {
		result.Articles = p.TranslateAll(ctx, result.Articles)
		for _, a := range result.Articles {
			if a.IsTranslated() {
				result.Translated++
			}
		}
	}

	if opts.Save {
		result.Saved = p.SaveAll(ctx, result.Articles)
		if p.store != nil {
			result.SaveFailed = len(result.Articles) - result.Saved
		}
	}

	p.log.Info("pipeline completed",
		logger.Int("scraped", result.Scraped),
		logger.Int("translated", result.Translated),
		logger.Int("saved", result.Saved),
		logger.Int("save_failed", result.SaveFailed),
		logger.Duration("duration", time.Since(start)))

	return result
}

// ScrapeAll scrapes the sources one after another. A source that panics is
// reported in its SourceResult and does not affect the others.
func (p *Processor) ScrapeAll(ctx context.Context, maxArticlesPerSource int) *Result {
	result := &Result{
		Articles:      []*article.Article{},
		SourceResults: make([]SourceResult, 0, len(p.sources)),
	}

	for _, src := range p.sources {
		if ctx.Err() != nil {
			p.log.Warn("pipeline cancelled", logger.Error(ctx.Err()))
			break
		}

		limit := maxArticlesPerSource
		if src.Config.MaxArticles > 0 {
			limit = src.Config.MaxArticles
		}

		started := time.Now()
		articles, err := p.scrapeSource(ctx, src, limit)

		sr := SourceResult{
			Source:   src.Config.Name,
			Scraped:  len(articles),
			Duration: time.Since(started),
		}
		if err != nil {
			sr.Error = err.Error()
			p.log.Error("failed to scrape source",
				logger.String("source", src.Config.Name), logger.Error(err))
		}

		result.SourceResults = append(result.SourceResults, sr)
		result.Articles = append(result.Articles, articles...)
	}

	result.Scraped = len(result.Articles)
	p.log.Info("scraped all sources", logger.Int("articles", result.Scraped))

	return result
}

// scrapeSource runs the scraper, turning a panic into an error.
func (p *Processor) scrapeSource(ctx context.Context, src scraper.Source, limit int) (articles []*article.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			articles, err = nil, fmt.Errorf("scraper panicked: %v", r)
		}
	}()
	return p.scraper.Run(ctx, src, limit), nil
}

// TranslateAll translates each article. An article whose translation fails
// is kept untranslated. Without a translator the articles are returned as
// they are.
func (p *Processor) TranslateAll(ctx context.Context, articles []*article.Article) []*article.Article {
	if p.translator == nil {
		p.log.Warn("no translator configured, articles not translated")
		return articles
	}

	translated := make([]*article.Article, 0, len(articles))
	for i, a := range articles {
		p.log.Debug("translating article",
			logger.Int("index", i+1),
			logger.Int("total", len(articles)),
			logger.String("title", article.Truncate(a.Title, 50)))

		out := p.translate(ctx, a)
		translated = append(translated, out)
	}

	return translated
}

// translate never fails: a panic keeps the original article.
func (p *Processor) translate(ctx context.Context, a *article.Article) (out *article.Article) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("translation panicked",
				logger.String("url", a.SourceURL), logger.Any("panic", r))
			p.metrics.Translation(metrics.OutcomeFailure)
			out = a
		}
	}()
	return p.translator.TranslateArticle(ctx, a)
}

// SaveAll persists each article and returns how many were saved. Without a
// store nothing is saved.
func (p *Processor) SaveAll(ctx context.Context, articles []*article.Article) int {
	if p.store == nil {
		p.log.Warn("no store configured, articles not saved")
		return 0
	}

	saved := 0
	for _, a := range articles {
		id, err := p.store.Create(ctx, article.ToDocument(a))
		if err != nil {
			p.metrics.Save(metrics.OutcomeFailure)
			p.log.Error("failed to save article",
				logger.String("url", a.SourceURL), logger.Error(err))
			continue
		}

		p.metrics.Save(metrics.OutcomeSuccess)
		p.log.Debug("saved article", logger.String("id", id), logger.String("title", article.Truncate(a.Title, 50)))
		saved++
	}

	p.log.Info("saved articles", logger.Int("saved", saved), logger.Int("total", len(articles)))
	return saved
}
