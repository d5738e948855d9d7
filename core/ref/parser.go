package ref

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/bburd/BibleRef/core/books"
)

// refGrammar is the participle grammar for a full multi-segment reference.
// The book token is either a name (optionally carrying a 1-3 ordinal, as in
// "1 John") or a bare number treated as a book id.
type refGrammar struct {
	Book     string       `parser:"( @Book"`
	BookNum  string       `parser:"| @Number )"`
	Segments []segGrammar `parser:"( @@ ( \";\" @@ )* )?"`
}

// segGrammar is one semicolon-separated segment: a chapter range ("1-3"), a
// chapter with a verse specification ("3:16-18,20"), or a bare chapter.
type segGrammar struct {
	Chapter int         `parser:"@Number"`
	ChapEnd *int        `parser:"( \"-\" @Number"`
	Verses  []verseItem `parser:"| \":\" ( @@ ( \",\" @@ )* )? )?"`
}

// verseItem is a single verse or an inclusive verse range within a segment.
type verseItem struct {
	Start int  `parser:"@Number"`
	End   *int `parser:"( \"-\" @Number )?"`
}

// referenceLexer tokenizes scripture references.
var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Book names: letters with an optional leading ordinal digit and optional
	// connective words. Examples: Genesis, Gen., 1 John, Song of Solomon.
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+(?:of\s+)?[A-Za-z]+)*\.?`},
	// Numbers (book id, chapter, verse)
	{Name: "Number", Pattern: `\d+`},
	// Separators
	{Name: "Colon", Pattern: `:`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Semi", Pattern: `;`},
	// Whitespace
	{Name: "Whitespace", Pattern: `\s+`},
})

var referenceParser = participle.MustBuild[refGrammar](
	participle.Lexer(referenceLexer),
	participle.Elide("Whitespace"),
)

// separatorRuns collapses runs of list separators ("16,,18", "3:16;;4:1") to
// the last separator in the run, mirroring lenient split-and-skip parsing.
var separatorRuns = regexp.MustCompile(`[,;](?:\s*[,;])+`)

func cleanSeparators(s string) string {
	s = separatorRuns.ReplaceAllStringFunc(s, func(run string) string {
		return run[len(run)-1:]
	})
	return strings.TrimRight(s, ",; \t")
}

// ParseReference parses a reference string into a Reading. It returns nil,
// never an error, for anything that is not a well-formed reference: an
// unknown or ambiguous book, a descending chapter or verse range, or a
// segment matching none of the grammar shapes. Partial success is not
// returned.
func ParseReference(input string) *Reading {
	s := cleanSeparators(strings.TrimSpace(input))
	if s == "" {
		return nil
	}

	parsed, err := referenceParser.ParseString("", s)
	if err != nil {
		return nil
	}

	var book int
	if parsed.Book != "" {
		book = books.ID(parsed.Book)
	} else {
		n, convErr := strconv.Atoi(parsed.BookNum)
		if convErr == nil && n >= 1 && n <= books.Count {
			book = n
		}
	}
	if book == 0 {
		return nil
	}

	ranges := []VerseRange{}
	for _, seg := range parsed.Segments {
		expanded, ok := seg.expand()
		if !ok {
			return nil
		}
		ranges = append(ranges, expanded...)
	}
	return &Reading{Book: book, Ranges: ranges}
}

// expand turns one segment into its VerseRange entries.
func (s segGrammar) expand() ([]VerseRange, bool) {
	if s.Chapter < 1 {
		return nil, false
	}

	// Chapter range: one whole-chapter entry per chapter.
	if s.ChapEnd != nil {
		if *s.ChapEnd < s.Chapter {
			return nil, false
		}
		out := make([]VerseRange, 0, *s.ChapEnd-s.Chapter+1)
		for c := s.Chapter; c <= *s.ChapEnd; c++ {
			out = append(out, VerseRange{Chapter: c})
		}
		return out, true
	}

	verses := []int{}
	for _, item := range s.Verses {
		if item.End != nil {
			if *item.End < item.Start {
				return nil, false
			}
			for v := item.Start; v <= *item.End; v++ {
				if v > 0 {
					verses = append(verses, v)
				}
			}
		} else if item.Start > 0 {
			verses = append(verses, item.Start)
		}
	}
	verses = dedupeSorted(verses)

	// A verse spec that expands to nothing degrades to the whole chapter.
	if len(verses) == 0 {
		return []VerseRange{{Chapter: s.Chapter}}, true
	}
	return []VerseRange{{Chapter: s.Chapter, Verses: verses}}, true
}

// ParseSingle applies the same grammar but narrows to the single-chapter
// shape consumed by the smart-search reference detector. Multi-segment
// references return nil; a bare book reference yields Chapter 0.
func ParseSingle(input string) *Ref {
	reading := ParseReference(input)
	if reading == nil || len(reading.Ranges) > 1 {
		return nil
	}
	out := &Ref{Book: reading.Book}
	if len(reading.Ranges) == 1 {
		out.Chapter = reading.Ranges[0].Chapter
		out.Verses = reading.Ranges[0].Verses
	}
	return out
}

// ToReading converts a structured reading specification to a canonical
// Reading: book may already be resolved or need a registry lookup, and each
// range's verse list is expanded, deduplicated, and sorted. Returns nil for
// anything that does not resolve.
func ToReading(book int, ranges []VerseRange) *Reading {
	if book < 1 || book > books.Count {
		return nil
	}
	norm := make([]VerseRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Chapter < 1 {
			return nil
		}
		verses := dedupeSorted(filterPositive(r.Verses))
		if len(verses) == 0 {
			norm = append(norm, VerseRange{Chapter: r.Chapter})
		} else {
			norm = append(norm, VerseRange{Chapter: r.Chapter, Verses: verses})
		}
	}
	return &Reading{Book: book, Ranges: norm}
}

func filterPositive(verses []int) []int {
	out := make([]int, 0, len(verses))
	for _, v := range verses {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
