package sites

import (
	"testing"

	"github.com/pevans/technews/config"
	"github.com/pevans/technews/fetcher"
	"github.com/pevans/technews/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const techCrunchHome = `<html><body>
<article class="post-block"><a href="https://techcrunch.com/2024/05/01/first/">First</a><a href="https://techcrunch.com/ignored/">x</a></article>
<article class="post-block"><a href="https://techcrunch.com/2024/05/01/second/">Second</a></article>
<article class="post-block"><a href="https://techcrunch.com/2024/05/01/first/">First again</a></article>
<article class="post-block"><a href="https://example.com/sponsored/">Ad</a></article>
<article class="post-block"><a href="/2024/05/01/relative/">Relative</a></article>
<article class="other"><a href="https://techcrunch.com/not-a-post/">Nope</a></article>
<article class="post-block"><span>no link</span></article>
</body></html>`

const techCrunchArticle = `<html><body>
<h1>  Startup raises
  Series A </h1>
<a rel="author" href="/author/jane">Jane Doe</a>
<time datetime="2024-05-01T09:00:00Z">May 1</time>
<img class="wp-post-image" src="https://tc.cdn/featured.jpg">
<div class="article-content">
  <p>First paragraph.</p>
  <p>  </p>
  <p>Second <b>paragraph</b>.</p>
  <img src="https://tc.cdn/inline.jpg">
  <img src="/local.png">
</div>
<a rel="tag" href="/tag/ai">AI</a><a rel="tag" href="/tag/funding">Funding</a>
</body></html>`

// TestTechCrunch_ExtractLinks verifies dedupe, order, and domain filtering
func TestTechCrunch_ExtractLinks(t *testing.T) {
	tc := NewTechCrunch(logger.NewNop())

	links := tc.ExtractLinks(techCrunchHome)

	assert.Equal(t, []string{
		"https://techcrunch.com/2024/05/01/first/",
		"https://techcrunch.com/2024/05/01/second/",
		"https://techcrunch.com/2024/05/01/relative/",
	}, links)
}

// TestTechCrunch_ExtractArticle verifies every extracted field
func TestTechCrunch_ExtractArticle(t *testing.T) {
	tc := NewTechCrunch(logger.NewNop())

	a, ok := tc.ExtractArticle("https://techcrunch.com/2024/05/01/first/", techCrunchArticle)
	require.True(t, ok)

	assert.Equal(t, "Startup raises Series A", a.Title)
	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", a.Content)
	assert.Equal(t, "Jane Doe", a.Author)
	assert.Equal(t, "2024-05-01T09:00:00Z", a.PublishedDate)
	assert.Equal(t, "https://tc.cdn/featured.jpg", a.FeaturedImage)
	assert.Equal(t, []string{"https://tc.cdn/featured.jpg", "https://tc.cdn/inline.jpg"}, a.Images)
	assert.Equal(t, []string{"AI", "Funding"}, a.Tags)
	assert.Equal(t, "Technology", a.Category)
	assert.Equal(t, "https://techcrunch.com/2024/05/01/first/", a.SourceURL)
	assert.Nil(t, a.TitleTranslated)
}

// TestExtractArticle_NoTitle verifies every adapter rejects pages without a
// title
func TestExtractArticle_NoTitle(t *testing.T) {
	page := `<html><body><h1>   </h1><article><p>Body only.</p></article></body></html>`

	for _, key := range []string{"techcrunch", "theverge", "arstechnica", "wired"} {
		t.Run(key, func(t *testing.T) {
			adapter, err := New(config.SourceConfig{Name: key, Key: key}, logger.NewNop())
			require.NoError(t, err)

			a, ok := adapter.ExtractArticle("https://example.com/x", page)
			assert.False(t, ok)
			assert.Nil(t, a)
		})
	}
}

// TestExtractArticle_Defaults verifies placeholder author, empty date, and
// article fallback for the body
func TestExtractArticle_Defaults(t *testing.T) {
	page := `<html><body><h1>Title</h1><article><p>Fallback body.</p></article></body></html>`

	tests := []struct {
		key    string
		author string
	}{
		{"techcrunch", "TechCrunch Staff"},
		{"theverge", "The Verge Staff"},
		{"arstechnica", "Ars Technica Staff"},
		{"wired", "Wired Staff"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			adapter, err := New(config.SourceConfig{Key: tt.key}, logger.NewNop())
			require.NoError(t, err)

			a, ok := adapter.ExtractArticle("https://example.com/x", page)
			require.True(t, ok)
			assert.Equal(t, tt.author, a.Author)
			assert.Equal(t, "Fallback body.", a.Content)
			assert.Empty(t, a.PublishedDate)
			assert.Empty(t, a.FeaturedImage)
			assert.Empty(t, a.Images)
		})
	}
}

// TestTheVerge_ExtractLinks verifies relative links are resolved and only
// story pages are kept
func TestTheVerge_ExtractLinks(t *testing.T) {
	home := `<html><body>
	<div class="duet--content-cards--article"><a href="/2023/10/5/23904567/phone-review">Phone</a></div>
	<article class="ArticleCard"><a href="https://www.theverge.com/24012345/laptop">Laptop</a></article>
	<div class="article-list"><a href="/tech">Section</a></div>
	<div class="article-promo"><a href="https://www.polygon.com/23999999/game">Elsewhere</a></div>
	<div class="article-dup"><a href="/2023/10/5/23904567/phone-review">Phone again</a></div>
	</body></html>`

	links := NewTheVerge(logger.NewNop()).ExtractLinks(home)

	assert.Equal(t, []string{
		"https://www.theverge.com/2023/10/5/23904567/phone-review",
		"https://www.theverge.com/24012345/laptop",
	}, links)
}

// TestTheVerge_ExtractArticle verifies the body and byline selectors
func TestTheVerge_ExtractArticle(t *testing.T) {
	page := `<html><body>
	<h1>Review</h1>
	<a class="byline-author" href="/authors/sam">Sam Lee</a>
	<picture><img src="https://cdn.vox/lead.jpg"></picture>
	<div class="duet--article--article-body-component"><p>Verdict.</p></div>
	</body></html>`

	a, ok := NewTheVerge(logger.NewNop()).ExtractArticle("https://www.theverge.com/24012345/laptop", page)
	require.True(t, ok)
	assert.Equal(t, "Sam Lee", a.Author)
	assert.Equal(t, "Verdict.", a.Content)
	assert.Equal(t, "https://cdn.vox/lead.jpg", a.FeaturedImage)
}

// TestArsTechnica_Extract verifies link extraction and the featured image
// fallback
func TestArsTechnica_Extract(t *testing.T) {
	ars := NewArsTechnica(logger.NewNop())

	home := `<html><body>
	<article><a href="/science/2024/05/space/">Space</a></article>
	<article><a href="https://arstechnica.com/gadgets/2024/05/chip/">Chip</a></article>
	<article><a href="https://condenast.com/careers">Careers</a></article>
	</body></html>`
	assert.Equal(t, []string{
		"https://arstechnica.com/science/2024/05/space/",
		"https://arstechnica.com/gadgets/2024/05/chip/",
	}, ars.ExtractLinks(home))

	page := `<html><body>
	<h1>Space news</h1>
	<span class="author">Eric Berger</span>
	<figure class="featured-image"><img src="https://cdn.arstechnica.net/rocket.jpg"></figure>
	<div class="article-content"><p>Liftoff.</p></div>
	</body></html>`

	a, ok := ars.ExtractArticle("https://arstechnica.com/science/2024/05/space/", page)
	require.True(t, ok)
	assert.Equal(t, "Eric Berger", a.Author)
	assert.Equal(t, "Liftoff.", a.Content)
	assert.Equal(t, "https://cdn.arstechnica.net/rocket.jpg", a.FeaturedImage)
}

// TestWired_Extract verifies only story links are followed and class
// matching ignores case
func TestWired_Extract(t *testing.T) {
	w := NewWired(logger.NewNop())

	home := `<html><body>
	<div class="summary-item"><a href="/story/ai-chips/">Chips</a></div>
	<div class="summary-item"><a href="/gallery/phones/">Gallery</a></div>
	<div class="SummaryItemWrapper"><a href="/story/wrapped/">Case</a></div>
	<div class="summary-list"><a href="https://www.wired.com/story/robots/">Robots</a></div>
	</body></html>`
	assert.Equal(t, []string{
		"https://www.wired.com/story/ai-chips/",
		"https://www.wired.com/story/wrapped/",
		"https://www.wired.com/story/robots/",
	}, w.ExtractLinks(home))

	page := `<html><body>
	<h1>AI chips</h1>
	<a rel="author" href="/author/will">Will Knight</a>
	<div class="article__body"><p>One.</p><p>Two.</p></div>
	</body></html>`

	a, ok := w.ExtractArticle("https://www.wired.com/story/ai-chips/", page)
	require.True(t, ok)
	assert.Equal(t, "Will Knight", a.Author)
	assert.Equal(t, "One.\n\nTwo.", a.Content)
}

// TestExtractLinks_Garbage verifies unexpected markup yields no links
func TestExtractLinks_Garbage(t *testing.T) {
	for _, key := range []string{"techcrunch", "theverge", "arstechnica", "wired"} {
		adapter, err := New(config.SourceConfig{Key: key}, logger.NewNop())
		require.NoError(t, err)
		assert.Empty(t, adapter.ExtractLinks("<<<not html at all"), key)
		assert.Empty(t, adapter.ExtractLinks(""), key)
	}
}

// TestNew_UnknownKey verifies unknown adapters are a configuration error
func TestNew_UnknownKey(t *testing.T) {
	adapter, err := New(config.SourceConfig{Name: "Mystery", Key: "mystery"}, logger.NewNop())
	assert.Error(t, err)
	assert.Nil(t, adapter)
	assert.Contains(t, err.Error(), "mystery")
}

// TestSources verifies every default source is wired and per-source user
// agents get their own fetcher
func TestSources(t *testing.T) {
	cfgs := config.DefaultSources()
	cfgs[1].UserAgents = []string{"verge-agent"}

	base := fetcher.New(fetcher.Options{}, logger.NewNop(), nil)
	sources, err := Sources(cfgs, base, logger.NewNop())
	require.NoError(t, err)
	require.Len(t, sources, 4)

	assert.Equal(t, "TechCrunch", sources[0].Adapter.Name())
	assert.Nil(t, sources[0].Fetcher)
	assert.NotNil(t, sources[1].Fetcher)

	_, err = Sources([]config.SourceConfig{{Key: "nope"}}, base, logger.NewNop())
	assert.Error(t, err)
}
