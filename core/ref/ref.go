// Package ref defines the canonical parsed form of a scripture reference and
// the parser that produces it from free text.
//
// A Reading is a book plus an ordered list of chapter ranges; each range is
// either a whole chapter or an explicit sorted verse list. The grammar covers
// single verses ("John 3:16"), verse ranges and lists ("John 3:16-18,20"),
// whole chapters ("John 3"), chapter ranges ("Genesis 1-3"), and
// multi-segment references separated by semicolons ("John 3:16-18,20;4:1-2").
package ref

import (
	"sort"
	"strconv"
	"strings"
)

// Meta holds the whitelisted display metadata that may accompany a Reading or
// a whole plan day. Every other field found in user-authored plan JSON is
// dropped during normalization.
type Meta struct {
	Title       string   `json:"title,omitempty"`
	Note        string   `json:"note,omitempty"`
	Prayer      string   `json:"prayer,omitempty"`
	Discussion  string   `json:"discussion,omitempty"`
	Translation string   `json:"translation,omitempty"`
	Image       string   `json:"image,omitempty"`
	Link        string   `json:"link,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// IsZero reports whether no metadata field is set.
func (m Meta) IsZero() bool {
	return m.Title == "" && m.Note == "" && m.Prayer == "" && m.Discussion == "" &&
		m.Translation == "" && m.Image == "" && m.Link == "" && len(m.Tags) == 0
}

// VerseRange is one chapter's worth of a Reading: either the whole chapter
// (Verses nil) or an explicit verse list. Verses, when present, are
// deduplicated and ascending.
type VerseRange struct {
	Chapter int   `json:"chapter"`
	Verses  []int `json:"verses,omitempty"`
}

// Reading is the canonical parsed form of a scripture reference. Ranges is
// empty only for a bare book reference ("Genesis").
type Reading struct {
	Book   int          `json:"book"`
	Ranges []VerseRange `json:"ranges"`
	Meta
}

// Ref is the narrowed single-chapter shape used by the smart-search reference
// detector: one book, at most one chapter, and an optional verse list.
// Chapter is 0 for a bare book reference.
type Ref struct {
	Book    int
	Chapter int
	Verses  []int
}

// ExpandVerses expands a verse specification such as "1-3,5,7-8,2" into a
// deduplicated ascending list ([1 2 3 5 7 8]). Semicolons are accepted as
// list separators alongside commas. Non-positive verses are dropped. Returns
// ok=false for malformed items or descending ranges ("5-3"); an empty
// specification yields an empty, valid list.
func ExpandVerses(spec string) ([]int, bool) {
	verses := []int{}
	items := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' })
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if v, err := strconv.Atoi(item); err == nil {
			if v > 0 {
				verses = append(verses, v)
			}
			continue
		}
		start, end, ok := strings.Cut(item, "-")
		if !ok {
			return nil, false
		}
		s, err1 := strconv.Atoi(strings.TrimSpace(start))
		e, err2 := strconv.Atoi(strings.TrimSpace(end))
		if err1 != nil || err2 != nil || e < s {
			return nil, false
		}
		for v := s; v <= e; v++ {
			if v > 0 {
				verses = append(verses, v)
			}
		}
	}
	return dedupeSorted(verses), true
}

// dedupeSorted sorts ascending and removes duplicates.
func dedupeSorted(verses []int) []int {
	if len(verses) == 0 {
		return verses
	}
	sort.Ints(verses)
	out := verses[:1]
	for _, v := range verses[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
