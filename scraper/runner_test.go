package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/config"
	"github.com/pevans/technews/fetcher"
	"github.com/pevans/technews/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned pages and records every requested URL.
type fakeFetcher struct {
	pages     map[string]string
	requested []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ fetcher.Mode) (string, error) {
	f.requested = append(f.requested, url)
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("failed to fetch %s: %w", url, errors.New("404"))
	}
	return page, nil
}

// fakeAdapter treats each homepage line as a link and each article page as
// its title. A page containing "panic" panics; an empty page has no title.
type fakeAdapter struct{}

func (fakeAdapter) Name() string { return "fake" }

func (fakeAdapter) ExtractLinks(html string) []string {
	return Dedupe(strings.Fields(html))
}

func (fakeAdapter) ExtractArticle(url, html string) (*article.Article, bool) {
	if html == "panic" {
		panic("adapter bug")
	}
	if html == "" {
		return nil, false
	}
	return &article.Article{SourceURL: url, Title: html, Category: article.DefaultCategory}, true
}

func newTestRunner(f Fetcher) *Runner {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	return NewRunner(f, logger.NewNop(), nil).WithClock(func() time.Time { return fixed })
}

func testSource() Source {
	return Source{
		Config:  config.SourceConfig{Name: "TC", Key: "fake", URL: "https://tc.example/"},
		Adapter: fakeAdapter{},
	}
}

// TestRun_TruncatesToMax verifies five links with a limit of two fetch at
// most two articles
func TestRun_TruncatesToMax(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://tc.example/":  "https://tc.example/1 https://tc.example/2 https://tc.example/3 https://tc.example/4 https://tc.example/5",
		"https://tc.example/1": "One",
		"https://tc.example/2": "Two",
		"https://tc.example/3": "Three",
	}}

	articles := newTestRunner(f).Run(context.Background(), testSource(), 2)

	require.Len(t, articles, 2)
	assert.Equal(t, "One", articles[0].Title)
	assert.Equal(t, "Two", articles[1].Title)
	assert.Len(t, f.requested, 3, "homepage plus two article pages")
}

// TestRun_StampsProvenance verifies source name and UTC scrape time
func TestRun_StampsProvenance(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://tc.example/":  "https://tc.example/1",
		"https://tc.example/1": "One",
	}}

	articles := newTestRunner(f).Run(context.Background(), testSource(), 10)

	require.Len(t, articles, 1)
	assert.Equal(t, "TC", articles[0].Source)
	assert.Equal(t, time.UTC, articles[0].ScrapedAt.Location())
	assert.Equal(t, time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC), articles[0].ScrapedAt)
}

// TestRun_HomepageFailure verifies an unreachable homepage yields nothing
func TestRun_HomepageFailure(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{}}

	articles := newTestRunner(f).Run(context.Background(), testSource(), 10)

	assert.NotNil(t, articles)
	assert.Empty(t, articles)
	assert.Len(t, f.requested, 1)
}

// TestRun_SkipsFailures verifies failed fetches, failed extractions, and
// panicking adapters only drop their own article
func TestRun_SkipsFailures(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://tc.example/":      "https://tc.example/missing https://tc.example/empty https://tc.example/panic https://tc.example/ok",
		"https://tc.example/empty": "",
		"https://tc.example/panic": "panic",
		"https://tc.example/ok":    "Fine",
	}}

	articles := newTestRunner(f).Run(context.Background(), testSource(), 10)

	require.Len(t, articles, 1)
	assert.Equal(t, "Fine", articles[0].Title)
	assert.Equal(t, "https://tc.example/ok", articles[0].SourceURL)
}

// TestRun_SourceFetcher verifies a per-source fetcher replaces the default
func TestRun_SourceFetcher(t *testing.T) {
	def := &fakeFetcher{pages: map[string]string{}}
	own := &fakeFetcher{pages: map[string]string{
		"https://tc.example/":  "https://tc.example/1",
		"https://tc.example/1": "One",
	}}

	src := testSource()
	src.Fetcher = own

	articles := newTestRunner(def).Run(context.Background(), src, 10)

	assert.Len(t, articles, 1)
	assert.Empty(t, def.requested)
	assert.Len(t, own.requested, 2)
}

// TestRun_Cancelled verifies a cancelled context stops article fetching
func TestRun_Cancelled(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://tc.example/":  "https://tc.example/1",
		"https://tc.example/1": "One",
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	articles := newTestRunner(f).Run(ctx, testSource(), 10)

	assert.Empty(t, articles)
	assert.Len(t, f.requested, 1, "only the homepage is requested")
}
