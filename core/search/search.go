// Package search decides whether free text is a scripture reference or a
// keyword query and fetches verses accordingly.
package search

import (
	"context"
	"strings"
	"unicode"

	"github.com/bburd/BibleRef/core/ref"
	"github.com/bburd/BibleRef/core/translation"
)

// DefaultLimit caps keyword search results when the caller passes no limit.
const DefaultLimit = 10

// reserved holds the FTS5 operator words that must be quoted when they appear
// as bare tokens.
var reserved = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
}

const ftsSpecial = "\"*:^~"

// SafeQuery escapes raw text for FTS match syntax. Tokens containing FTS
// special characters or matching a reserved operator word are double-quoted
// with embedded quotes doubled. Tokens with no letters or digits are dropped;
// an input of only whitespace or punctuation escapes to "".
func SafeQuery(raw string) string {
	tokens := strings.Fields(raw)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.ContainsFunc(tok, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) {
			continue
		}
		if strings.ContainsAny(tok, ftsSpecial) || reserved[strings.ToUpper(tok)] {
			tok = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
		}
		out = append(out, tok)
	}
	return strings.Join(out, " ")
}

// Smart resolves free text to verse rows. Text that parses as a single
// reference is fetched directly: a whole chapter, one verse, or a verse
// subset. Everything else becomes an escaped full-text query. A bare book
// name with no chapter is treated as keyword text, not a reference.
func Smart(ctx context.Context, adapter translation.Adapter, rawQuery string, limit int) ([]translation.VerseRow, error) {
	query := strings.TrimSpace(rawQuery)
	if query == "" {
		return []translation.VerseRow{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if r := ref.ParseSingle(query); r != nil && r.Chapter > 0 {
		switch len(r.Verses) {
		case 0:
			return adapter.GetChapter(ctx, r.Book, r.Chapter)
		case 1:
			row, err := adapter.GetVerse(ctx, r.Book, r.Chapter, r.Verses[0])
			if err != nil {
				return nil, err
			}
			if row == nil {
				return []translation.VerseRow{}, nil
			}
			return []translation.VerseRow{*row}, nil
		default:
			return adapter.GetVersesSubset(ctx, r.Book, r.Chapter, r.Verses)
		}
	}

	escaped := SafeQuery(query)
	if escaped == "" {
		return []translation.VerseRow{}, nil
	}
	return adapter.Search(ctx, escaped, limit)
}
