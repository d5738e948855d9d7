package plan

import (
	"strconv"
	"strings"

	"github.com/bburd/BibleRef/core/books"
	"github.com/bburd/BibleRef/core/ref"
)

// FormatReading renders a Reading as "BookName chapter:verses;chapter", with
// verse lists compacted into contiguous ranges ("16-18,20"). A title prefixes
// the reference and a translation follows it in parentheses. A nil reading
// renders empty.
func FormatReading(r *ref.Reading) string {
	if r == nil {
		return ""
	}
	segments := make([]string, 0, len(r.Ranges))
	for _, vr := range r.Ranges {
		if len(vr.Verses) > 0 {
			segments = append(segments, strconv.Itoa(vr.Chapter)+":"+compactVerses(vr.Verses))
		} else {
			segments = append(segments, strconv.Itoa(vr.Chapter))
		}
	}
	out := strings.TrimSpace(books.Name(r.Book) + " " + strings.Join(segments, ";"))
	if r.Title != "" {
		out = r.Title + ": " + out
	}
	if r.Translation != "" {
		out += " (" + r.Translation + ")"
	}
	return out
}

// compactVerses renders a sorted verse list with contiguous runs collapsed:
// [16 17 18 20] becomes "16-18,20".
func compactVerses(verses []int) string {
	var parts []string
	start, prev := verses[0], verses[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(prev))
		}
	}
	for _, v := range verses[1:] {
		if v == prev+1 {
			prev = v
			continue
		}
		flush()
		start, prev = v, v
	}
	flush()
	return strings.Join(parts, ",")
}

// FormatDay renders one bullet line per reading plus metadata lines. Titles
// are shown inline per reading; a reading's translation is part of its bullet
// line, so both are skipped when rendering reading-level metadata.
func FormatDay(day PlanDay) string {
	var lines []string
	for _, r := range day.Readings {
		lines = append(lines, "• "+FormatReading(r))
		if r != nil {
			lines = append(lines, renderMeta(r.Meta, "  ", true)...)
		}
	}
	if day.Meta != nil {
		lines = append(lines, renderMeta(*day.Meta, "", false)...)
	}
	return strings.Join(lines, "\n")
}

// renderMeta emits one "Key: value" line per set field, in whitelist order.
// Title is always skipped; it renders inline with the reading.
func renderMeta(meta ref.Meta, indent string, skipTranslation bool) []string {
	var lines []string
	add := func(key, value string) {
		if value != "" {
			lines = append(lines, indent+key+": "+value)
		}
	}
	add("Note", meta.Note)
	add("Prayer", meta.Prayer)
	add("Discussion", meta.Discussion)
	if !skipTranslation {
		add("Translation", meta.Translation)
	}
	add("Image", meta.Image)
	add("Link", meta.Link)
	add("Tags", strings.Join(meta.Tags, ", "))
	return lines
}
