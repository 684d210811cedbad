// Package translator machine-translates article text through a pluggable
// backend, splitting oversized input at sentence boundaries.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pevans/technews/article"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
)

// DefaultMaxChunkSize is the largest payload sent to a backend in one call.
const DefaultMaxChunkSize = 5000

// chunkSeparator joins translated chunks.
const chunkSeparator = "\n\n"

// ErrNotSupported is returned by backends that are recognized but not
// implemented, and for unknown backend names.
var ErrNotSupported = errors.New("translation service not supported")

// Backend performs a single translation call.
type Backend interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Translator translates text and articles from a source to a target
// language.
type Translator struct {
	backend  Backend
	source   string
	target   string
	maxChunk int
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewTranslator wraps backend. A maxChunk of zero or less uses
// DefaultMaxChunkSize.
func NewTranslator(backend Backend, source, target string, maxChunk int, log logger.Logger, m *metrics.Metrics) *Translator {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunkSize
	}
	return &Translator{
		backend:  backend,
		source:   source,
		target:   target,
		maxChunk: maxChunk,
		log:      log,
		metrics:  m,
	}
}

// Service returns the backend name.
func (t *Translator) Service() string {
	return t.backend.Name()
}

// Translate translates text. Blank input is returned unchanged without
// calling the backend. Input over the chunk budget is split with SplitText,
// translated chunk by chunk in order, and rejoined with a blank line.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	if len(text) <= t.maxChunk {
		return t.backend.Translate(ctx, text, t.source, t.target)
	}

	chunks := SplitText(text, t.maxChunk)
	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := t.backend.Translate(ctx, chunk, t.source, t.target)
		if err != nil {
			return "", fmt.Errorf("failed to translate chunk %d of %d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, out)
	}

	return strings.Join(translated, chunkSeparator), nil
}

// TranslateArticle returns a copy of a with its title and content
// translated. Each field is translated independently; a field whose
// translation fails stays nil. The input article is not modified.
func (t *Translator) TranslateArticle(ctx context.Context, a *article.Article) *article.Article {
	out := a.Clone()
	out.TranslationService = t.backend.Name()

	log := t.log.With(logger.String("url", a.SourceURL))
	log.Debug("translating article", logger.String("title", a.Title))

	if title, err := t.Translate(ctx, a.Title); err != nil {
		log.Warn("failed to translate title", logger.Error(err))
	} else {
		out.TitleTranslated = &title
	}

	if content, err := t.Translate(ctx, a.Content); err != nil {
		log.Warn("failed to translate content", logger.Error(err))
	} else {
		out.ContentTranslated = &content
	}

	if out.IsTranslated() {
		t.metrics.Translation(metrics.OutcomeSuccess)
	} else {
		t.metrics.Translation(metrics.OutcomeFailure)
	}

	return out
}

// SplitText splits text into chunks of at most max bytes at ". " sentence
// boundaries. Text that already fits is returned as a single chunk equal to
// the input. A sentence longer than max is kept whole in its own chunk.
func SplitText(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}

	sentences := strings.Split(text, ". ")
	chunks := []string{}

	var current strings.Builder
	flush := func() {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for i, sentence := range sentences {
		piece := sentence + ". "
		if i == len(sentences)-1 {
			piece = sentence
		}

		if current.Len()+len(sentence)+2 > max {
			flush()
		}
		current.WriteString(piece)
	}
	flush()

	return chunks
}
