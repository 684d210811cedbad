package sites

import (
	"strings"
	"testing"

	"github.com/pevans/technews/config"
	"github.com/pevans/technews/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Example News</title>
  <link>https://www.example.com/</link>
  <item>
    <title>Chips get faster</title>
    <link>https://www.example.com/2024/chips</link>
    <description>&lt;p&gt;Chips are &lt;b&gt;faster&lt;/b&gt; now.&lt;/p&gt;</description>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
    <dc:creator>Ada Writer</dc:creator>
    <category>Hardware</category>
  </item>
  <item>
    <title>Elsewhere</title>
    <link>https://other.org/post</link>
  </item>
  <item>
    <title>Chips again</title>
    <link>https://www.example.com/2024/chips</link>
  </item>
  <item>
    <title>Feed host</title>
    <link>https://feeds.example.com/2024/hosted</link>
  </item>
</channel>
</rss>`

func newTestFeed(t *testing.T) *Feed {
	t.Helper()
	f, err := NewFeed(config.SourceConfig{Name: "Example", Key: "feed", URL: "https://feeds.example.com/rss"}, logger.NewNop())
	require.NoError(t, err)
	return f
}

// TestFeed_ExtractLinks verifies item links are read from RSS, deduplicated,
// and restricted to the source's domain
func TestFeed_ExtractLinks(t *testing.T) {
	f := newTestFeed(t)

	links := f.ExtractLinks(testRSS)

	assert.Equal(t, []string{
		"https://www.example.com/2024/chips",
		"https://feeds.example.com/2024/hosted",
	}, links)
}

// TestFeed_ExtractLinks_Invalid verifies an unparsable feed yields nothing
func TestFeed_ExtractLinks_Invalid(t *testing.T) {
	f := newTestFeed(t)
	assert.Empty(t, f.ExtractLinks("this is not a feed"))
}

// TestFeed_ExtractArticle_FromFeedItem verifies feed metadata fills fields
// missing from the page
func TestFeed_ExtractArticle_FromFeedItem(t *testing.T) {
	f := newTestFeed(t)
	f.ExtractLinks(testRSS)

	a, ok := f.ExtractArticle("https://www.example.com/2024/chips", `<html><body><div>no markup</div></body></html>`)
	require.True(t, ok)

	assert.Equal(t, "Chips get faster", a.Title)
	assert.Equal(t, "Chips are faster now.", a.Content)
	assert.Equal(t, "Chips are faster now.", a.Summary)
	assert.Equal(t, "Ada Writer", a.Author)
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 GMT", a.PublishedDate)
	assert.Equal(t, []string{"Hardware"}, a.Tags)
}

// TestFeed_ExtractArticle_PagePreferred verifies page content wins over feed
// metadata
func TestFeed_ExtractArticle_PagePreferred(t *testing.T) {
	f := newTestFeed(t)
	f.ExtractLinks(testRSS)

	page := `<html><head><meta property="og:image" content="/img/lead.jpg"></head><body>
	<h1>Page title</h1>
	<a rel="author">Page Author</a>
	<article><p>Page body.</p></article>
	</body></html>`

	a, ok := f.ExtractArticle("https://www.example.com/2024/chips", page)
	require.True(t, ok)

	assert.Equal(t, "Page title", a.Title)
	assert.Equal(t, "Page body.", a.Content)
	assert.Equal(t, "Page Author", a.Author)
	assert.Equal(t, "https://feeds.example.com/img/lead.jpg", a.FeaturedImage)
}

// TestFeed_ExtractLinks_RefreshesItems verifies a later feed replaces the
// metadata of earlier runs and drops items no longer listed
func TestFeed_ExtractLinks_RefreshesItems(t *testing.T) {
	f := newTestFeed(t)
	feedWith := func(title, link string) string {
		return `<?xml version="1.0"?><rss version="2.0"><channel><title>Example</title>` +
			`<item><title>` + title + `</title><link>` + link + `</link></item></channel></rss>`
	}
	page := `<html><body><p>no heading</p></body></html>`

	f.ExtractLinks(feedWith("Old title", "https://www.example.com/a"))
	f.ExtractLinks(feedWith("New title", "https://www.example.com/a"))

	a, ok := f.ExtractArticle("https://www.example.com/a", page)
	require.True(t, ok)
	assert.Equal(t, "New title", a.Title)

	f.ExtractLinks(feedWith("Other", "https://www.example.com/b"))

	_, ok = f.ExtractArticle("https://www.example.com/a", page)
	assert.False(t, ok, "items from earlier feeds are not retained")
	assert.Len(t, f.items, 1)
}

// TestFeed_ExtractArticle_LongDescription verifies a long feed description
// is summarized at a sentence boundary
func TestFeed_ExtractArticle_LongDescription(t *testing.T) {
	f := newTestFeed(t)
	desc := strings.Repeat("Chips keep getting faster every year. ", 20)
	f.ExtractLinks(`<?xml version="1.0"?><rss version="2.0"><channel><title>Example</title>` +
		`<item><title>Chips</title><link>https://www.example.com/long</link>` +
		`<description>` + desc + `</description></item></channel></rss>`)

	a, ok := f.ExtractArticle("https://www.example.com/long", `<html><body></body></html>`)
	require.True(t, ok)

	assert.LessOrEqual(t, len(a.Summary), 500)
	assert.True(t, strings.HasSuffix(a.Summary, "year."), a.Summary)
	assert.Greater(t, len(a.Content), 500, "content keeps the full description")
}

// TestFeed_ExtractArticle_NoTitle verifies an unknown page without a title
// is rejected
func TestFeed_ExtractArticle_NoTitle(t *testing.T) {
	f := newTestFeed(t)

	a, ok := f.ExtractArticle("https://www.example.com/unknown", `<html><body><p>text</p></body></html>`)
	assert.False(t, ok)
	assert.Nil(t, a)
}

// TestFeed_DefaultAuthor verifies the placeholder byline
func TestFeed_DefaultAuthor(t *testing.T) {
	f := newTestFeed(t)

	a, ok := f.ExtractArticle("https://www.example.com/x", `<html><body><h1>T</h1></body></html>`)
	require.True(t, ok)
	assert.Equal(t, "Example Staff", a.Author)
}

// TestNewFeed_InvalidURL verifies relative feed URLs are rejected
func TestNewFeed_InvalidURL(t *testing.T) {
	_, err := NewFeed(config.SourceConfig{Name: "Bad", Key: "feed", URL: "/rss"}, logger.NewNop())
	assert.Error(t, err)
}
