// Package functions implements the two externally triggered operations:
// scrape-and-save across all sources, and translate one stored article.
// Each returns an HTTP status code and a JSON-ready result.
package functions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/pipeline"
	"github.com/pevans/technews/store"
)

// Result is the JSON body of a function response.
type Result struct {
	Success         bool   `json:"success"`
	ArticleID       string `json:"article_id,omitempty"`
	ArticlesScraped *int   `json:"articles_scraped,omitempty"`
	ArticlesSaved   *int   `json:"articles_saved,omitempty"`
	Message         string `json:"message,omitempty"`
	Error           string `json:"error,omitempty"`
}

func failure(status int, format string, args ...any) (int, Result) {
	return status, Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Functions holds the collaborators both operations need. The translator
// may be nil when only scraping is deployed.
type Functions struct {
	processor   *pipeline.Processor
	store       store.Store
	translator  pipeline.Translator
	maxArticles int
	log         logger.Logger

	// scraping is held for the duration of a scrape run.
	scraping sync.Mutex
}

// New creates the function set.
func New(
	processor *pipeline.Processor,
	st store.Store,
	translator pipeline.Translator,
	maxArticles int,
	log logger.Logger,
) *Functions {
	return &Functions{
		processor:   processor,
		store:       st,
		translator:  translator,
		maxArticles: maxArticles,
		log:         log,
	}
}

// Scrape scrapes every source and saves the results. Partial failures still
// return 200 with the counts; only a missing store or an unexpected panic
// returns 500. A call made while another run is in progress returns 409.
func (f *Functions) Scrape(ctx context.Context) (status int, result Result) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("scrape function panicked", logger.Any("panic", r))
			status, result = failure(http.StatusInternalServerError, "%v", r)
		}
	}()

	if f.store == nil {
		return failure(http.StatusInternalServerError, "no store configured")
	}

	if !f.scraping.TryLock() {
		return failure(http.StatusConflict, "a scrape is already in progress")
	}
	defer f.scraping.Unlock()

	scraped := f.processor.ScrapeAll(ctx, f.maxArticles)
	saved := f.processor.SaveAll(ctx, scraped.Articles)

	f.log.Info("scrape function completed",
		logger.Int("articles_scraped", scraped.Scraped),
		logger.Int("articles_saved", saved))

	return http.StatusOK, Result{
		Success:         true,
		ArticlesScraped: &scraped.Scraped,
		ArticlesSaved:   &saved,
		Message:         fmt.Sprintf("Successfully scraped and saved %d articles", saved),
	}
}

// Translate translates the stored article with the given id and writes the
// translation back with status "translated". It returns 400 for a missing
// id, 404 for an unknown one, and 500 when translation or the update fails.
func (f *Functions) Translate(ctx context.Context, articleID string) (status int, result Result) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("translate function panicked", logger.Any("panic", r))
			status, result = failure(http.StatusInternalServerError, "%v", r)
		}
	}()

	if articleID == "" {
		return failure(http.StatusBadRequest, "article_id is required")
	}
	if f.store == nil {
		return failure(http.StatusInternalServerError, "no store configured")
	}
	if f.translator == nil {
		return failure(http.StatusInternalServerError, "no translator configured")
	}

	log := f.log.With(logger.String("article_id", articleID))

	doc, err := f.store.Get(ctx, articleID)
	if errors.Is(err, store.ErrNotFound) {
		return failure(http.StatusNotFound, "Article %s not found", articleID)
	}
	if err != nil {
		log.Error("failed to load article", logger.Error(err))
		return failure(http.StatusInternalServerError, "failed to load article: %v", err)
	}

	translated := f.translator.TranslateArticle(ctx, doc.ToArticle())
	if !translated.IsTranslated() {
		log.Error("failed to translate article")
		return failure(http.StatusInternalServerError, "Failed to translate article")
	}

	translatedDoc := article.ToDocument(translated)
	update := map[string]any{
		"title_translated":   translatedDoc.TitleTranslated,
		"content_translated": translatedDoc.ContentTranslated,
		"summary_translated": translatedDoc.SummaryTranslated,
		"status":             article.StatusTranslated,
	}
	if err := f.store.Update(ctx, articleID, update); err != nil {
		log.Error("failed to update article", logger.Error(err))
		return failure(http.StatusInternalServerError, "Failed to update article with translation")
	}

	log.Info("article translated")

	return http.StatusOK, Result{
		Success:   true,
		ArticleID: articleID,
		Message:   "Article translated successfully",
	}
}
