// Package plan normalizes user-authored reading-plan day specifications into
// a canonical shape and renders the canonical shape back to display text.
//
// Plan JSON is loosely typed: a day may be a plain reference string, an array
// of readings, or an object carrying readings plus metadata. Normalization
// performs exhaustive case analysis over the decoded JSON value and produces
// immutable PlanDay values; everything downstream consumes only the
// canonical form.
package plan

import (
	"encoding/json"
	"strconv"

	"github.com/bburd/BibleRef/core/books"
	"github.com/bburd/BibleRef/core/ref"
)

// PlanDay is the normalized one-day unit of a reading plan. A parse failure
// inside a day yields a nil Reading entry; callers must treat nil readings as
// unrenderable rather than dropping the day.
type PlanDay struct {
	Readings []*ref.Reading `json:"readings"`
	Meta     *ref.Meta      `json:"_meta,omitempty"`
}

// NormalizeDays maps NormalizeDay over a decoded JSON array. Non-array input
// yields an empty slice.
func NormalizeDays(raw any) []PlanDay {
	arr, ok := raw.([]any)
	if !ok {
		return []PlanDay{}
	}
	days := make([]PlanDay, len(arr))
	for i, d := range arr {
		days[i] = NormalizeDay(d)
	}
	return days
}

// NormalizeDaysJSON decodes a JSON document and normalizes it. The error is
// only for malformed JSON; shape problems inside a well-formed document
// surface as nil readings, per NormalizeDay.
func NormalizeDaysJSON(data []byte) ([]PlanDay, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return NormalizeDays(raw), nil
}

// NormalizeDay turns one arbitrary day specification into a PlanDay:
//
//   - nil yields an empty day
//   - a string is a single reference
//   - an array is a list of reading specifications
//   - an object with "readings" and/or "_meta" keys is the structured form;
//     only whitelisted metadata fields survive from _meta
//   - any other object is a single reading specification
func NormalizeDay(raw any) PlanDay {
	switch day := raw.(type) {
	case nil:
		return PlanDay{Readings: []*ref.Reading{}}
	case string:
		return PlanDay{Readings: []*ref.Reading{NormalizeReading(day)}}
	case []any:
		readings := make([]*ref.Reading, len(day))
		for i, r := range day {
			readings[i] = NormalizeReading(r)
		}
		return PlanDay{Readings: readings}
	case map[string]any:
		rawReadings, hasReadings := day["readings"]
		rawMeta, hasMeta := day["_meta"]
		if !hasReadings && !hasMeta {
			return PlanDay{Readings: []*ref.Reading{NormalizeReading(day)}}
		}

		out := PlanDay{Readings: []*ref.Reading{}}
		if list, ok := rawReadings.([]any); ok {
			out.Readings = make([]*ref.Reading, len(list))
			for i, r := range list {
				out.Readings[i] = NormalizeReading(r)
			}
		}
		if metaObj, ok := rawMeta.(map[string]any); ok {
			if meta, any := pickMeta(metaObj); any {
				out.Meta = &meta
			}
		}
		return out
	default:
		return PlanDay{Readings: []*ref.Reading{}}
	}
}

// NormalizeReading turns one reading specification (string or object) into a
// canonical Reading, or nil when it does not resolve.
func NormalizeReading(raw any) *ref.Reading {
	switch spec := raw.(type) {
	case string:
		return ref.ParseReference(spec)
	case map[string]any:
		var reading *ref.Reading
		if refStr, ok := spec["ref"].(string); ok {
			reading = ref.ParseReference(refStr)
		} else {
			reading = readingFromFields(spec)
		}
		if reading == nil {
			return nil
		}
		if meta, any := pickMeta(spec); any {
			reading.Meta = meta
		}
		return reading
	default:
		return nil
	}
}

// readingFromFields builds a Reading from an explicit {book, ranges} or
// {book, chapter, verses} object.
func readingFromFields(spec map[string]any) *ref.Reading {
	book := resolveBook(spec["book"])
	if book == 0 {
		return nil
	}

	var ranges []ref.VerseRange
	if rawRanges, ok := spec["ranges"].([]any); ok {
		for _, rr := range rawRanges {
			obj, ok := rr.(map[string]any)
			if !ok {
				return nil
			}
			vr, ok := rangeFromFields(obj)
			if !ok {
				return nil
			}
			ranges = append(ranges, vr)
		}
	} else if chapter, ok := asInt(spec["chapter"]); ok {
		vr, ok := verseRange(chapter, spec["verses"])
		if !ok {
			return nil
		}
		ranges = append(ranges, vr)
	} else {
		return nil
	}

	return ref.ToReading(book, ranges)
}

func rangeFromFields(obj map[string]any) (ref.VerseRange, bool) {
	chapter, ok := asInt(obj["chapter"])
	if !ok {
		return ref.VerseRange{}, false
	}
	return verseRange(chapter, obj["verses"])
}

func verseRange(chapter int, rawVerses any) (ref.VerseRange, bool) {
	if chapter < 1 {
		return ref.VerseRange{}, false
	}
	if rawVerses == nil {
		return ref.VerseRange{Chapter: chapter}, true
	}
	verses, ok := expandAnyVerses(rawVerses)
	if !ok {
		return ref.VerseRange{}, false
	}
	return ref.VerseRange{Chapter: chapter, Verses: verses}, true
}

// expandAnyVerses accepts the verse shapes plan JSON uses: a spec string
// ("16-18,20"), an array of numbers or spec strings, or a bare number.
func expandAnyVerses(raw any) ([]int, bool) {
	switch v := raw.(type) {
	case string:
		return ref.ExpandVerses(v)
	case []any:
		var spec string
		for i, item := range v {
			if i > 0 {
				spec += ","
			}
			switch x := item.(type) {
			case string:
				spec += x
			case float64:
				spec += strconv.Itoa(int(x))
			default:
				return nil, false
			}
		}
		return ref.ExpandVerses(spec)
	default:
		if n, ok := asInt(raw); ok {
			return ref.ExpandVerses(strconv.Itoa(n))
		}
		return nil, false
	}
}

// resolveBook accepts a book id (number) or a name/abbreviation (string).
func resolveBook(raw any) int {
	switch b := raw.(type) {
	case string:
		return books.ID(b)
	default:
		if n, ok := asInt(raw); ok && n >= 1 && n <= books.Count {
			return n
		}
		return 0
	}
}

// asInt extracts an integer from a decoded JSON number.
func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		v, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

// metaFields is the whitelist, in render order.
var metaFields = []string{"title", "note", "prayer", "discussion", "translation", "image", "link", "tags"}

// pickMeta copies only whitelisted metadata fields from a decoded object.
func pickMeta(obj map[string]any) (ref.Meta, bool) {
	var meta ref.Meta
	for _, key := range metaFields {
		raw, present := obj[key]
		if !present {
			continue
		}
		if key == "tags" {
			meta.Tags = asTags(raw)
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		switch key {
		case "title":
			meta.Title = s
		case "note":
			meta.Note = s
		case "prayer":
			meta.Prayer = s
		case "discussion":
			meta.Discussion = s
		case "translation":
			meta.Translation = s
		case "image":
			meta.Image = s
		case "link":
			meta.Link = s
		}
	}
	return meta, !meta.IsZero()
}

func asTags(raw any) []string {
	switch t := raw.(type) {
	case string:
		return []string{t}
	case []any:
		var tags []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	default:
		return nil
	}
}
