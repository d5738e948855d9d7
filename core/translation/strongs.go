package translation

import (
	"context"
	"regexp"
	"strings"
)

// strongsRe matches inline Strong's-number annotations in all three forms a
// tagged edition uses: {G25}, [G25], and <G25> (Hebrew numbers use H).
var strongsRe = regexp.MustCompile(`\{[GH]\s*\d{1,5}\}|\[[GH]\s*\d{1,5}\]|<\s*[GH]\s*\d{1,5}\s*>`)

var spaceRuns = regexp.MustCompile(`\s+`)

// StripStrongs removes Strong's annotations from text and collapses the
// whitespace left behind.
func StripStrongs(text string) string {
	if text == "" {
		return text
	}
	stripped := strongsRe.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(stripped, " "))
}

// strippingAdapter decorates an Adapter so every returned text and snippet
// has Strong's annotations removed. Close semantics pass through unchanged,
// so callers cannot distinguish a native plain adapter from a stripped
// Strong's-tagged fallback.
type strippingAdapter struct {
	inner Adapter
}

// NewStripping wraps an adapter with Strong's stripping on every read.
func NewStripping(inner Adapter) Adapter {
	return &strippingAdapter{inner: inner}
}

func stripRow(row *VerseRow) {
	row.Text = StripStrongs(row.Text)
	row.Snippet = StripStrongs(row.Snippet)
}

func (s *strippingAdapter) GetVerse(ctx context.Context, book, chapter, verse int) (*VerseRow, error) {
	row, err := s.inner.GetVerse(ctx, book, chapter, verse)
	if err != nil || row == nil {
		return row, err
	}
	stripRow(row)
	return row, nil
}

func (s *strippingAdapter) GetChapter(ctx context.Context, book, chapter int) ([]VerseRow, error) {
	rows, err := s.inner.GetChapter(ctx, book, chapter)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		stripRow(&rows[i])
	}
	return rows, nil
}

func (s *strippingAdapter) GetVersesSubset(ctx context.Context, book, chapter int, verses []int) ([]VerseRow, error) {
	rows, err := s.inner.GetVersesSubset(ctx, book, chapter, verses)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		stripRow(&rows[i])
	}
	return rows, nil
}

func (s *strippingAdapter) Search(ctx context.Context, query string, limit int) ([]VerseRow, error) {
	rows, err := s.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		stripRow(&rows[i])
	}
	return rows, nil
}

func (s *strippingAdapter) GetRandom(ctx context.Context) (*VerseRow, error) {
	row, err := s.inner.GetRandom(ctx)
	if err != nil || row == nil {
		return row, err
	}
	stripRow(row)
	return row, nil
}

func (s *strippingAdapter) Close() error {
	return s.inner.Close()
}
