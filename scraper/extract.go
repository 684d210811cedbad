package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
)

// ParseHTML parses an HTML string with goquery.
func ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Text returns the selection's text with whitespace normalized.
func Text(s *goquery.Selection) string {
	return article.CleanText(s.Text())
}

// Dedupe removes duplicate strings, keeping the first occurrence.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Resolve turns href into an absolute http(s) URL relative to base. It
// returns "" for empty, unparsable, or non-http hrefs (mailto:, javascript:).
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""

	return abs.String()
}

// SameDomain reports whether rawURL's host is domain or one of its
// subdomains.
func SameDomain(rawURL, domain string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Paragraphs joins the text of every <p> inside sel with a blank line,
// dropping blank paragraphs.
func Paragraphs(sel *goquery.Selection) string {
	var paragraphs []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := Text(p); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

// Body returns the paragraph text of the first element matching container,
// falling back to the document's <article> element. Empty when neither
// exists.
func Body(doc *goquery.Document, container string) string {
	return BodyIn(doc, doc.Find(container))
}

// BodyIn is Body for an already selected container.
func BodyIn(doc *goquery.Document, container *goquery.Selection) string {
	sel := container.First()
	if sel.Length() == 0 {
		sel = doc.Find("article").First()
	}
	if sel.Length() == 0 {
		return ""
	}
	return Paragraphs(sel)
}

// Title returns the normalized text of the first <h1>.
func Title(doc *goquery.Document) string {
	return Text(doc.Find("h1").First())
}

// PublishedDate returns the datetime attribute of the first <time>, or ""
// when absent.
func PublishedDate(doc *goquery.Document) string {
	dt, _ := doc.Find("time").First().Attr("datetime")
	return strings.TrimSpace(dt)
}

// FirstText returns the normalized text of the first match of selector, or
// fallback when it is missing or empty.
func FirstText(doc *goquery.Document, selector, fallback string) string {
	if text := Text(doc.Find(selector).First()); text != "" {
		return text
	}
	return fallback
}

// ImageSrc returns the src of the first <img> matching selector, resolved
// against base, or "".
func ImageSrc(doc *goquery.Document, base *url.URL, selector string) string {
	src, ok := doc.Find(selector).First().Attr("src")
	if !ok {
		return ""
	}
	return Resolve(base, src)
}

// Images returns every absolute http(s) <img> src in the document, in order,
// without duplicates. Relative sources are ignored.
func Images(doc *goquery.Document) []string {
	images := []string{}
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok {
			return
		}
		src = strings.TrimSpace(src)
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			images = append(images, src)
		}
	})
	return Dedupe(images)
}

// Safely runs an extraction, converting a panic into a failed extraction
// plus a logged diagnostic naming the URL.
func Safely(log logger.Logger, pageURL string, extract func() (*article.Article, bool)) (a *article.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("article extraction panicked",
				logger.String("url", pageURL), logger.Any("panic", r))
			a, ok = nil, false
		}
	}()
	return extract()
}
