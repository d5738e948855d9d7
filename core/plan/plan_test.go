package plan

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/bburd/BibleRef/core/ref"
)

// decode round-trips a Go literal through JSON so tests see the same dynamic
// shapes plan files produce (float64 numbers, map[string]any objects).
func decode(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestNormalizeDayString(t *testing.T) {
	got := NormalizeDay("Genesis 1")
	want := PlanDay{Readings: []*ref.Reading{
		{Book: 1, Ranges: []ref.VerseRange{{Chapter: 1}}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeDay = %+v, want %+v", got, want)
	}
}

func TestNormalizeDayNil(t *testing.T) {
	got := NormalizeDay(nil)
	if got.Meta != nil || len(got.Readings) != 0 {
		t.Errorf("NormalizeDay(nil) = %+v, want empty day", got)
	}
}

func TestNormalizeDayArray(t *testing.T) {
	got := NormalizeDay(decode(t, []any{"Genesis 1", "Exodus 2"}))
	want := PlanDay{Readings: []*ref.Reading{
		{Book: 1, Ranges: []ref.VerseRange{{Chapter: 1}}},
		{Book: 2, Ranges: []ref.VerseRange{{Chapter: 2}}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeDay = %+v, want %+v", got, want)
	}
}

func TestNormalizeDayStructured(t *testing.T) {
	raw := decode(t, map[string]any{
		"readings": []any{
			map[string]any{"ref": "John 3:16", "title": "Memory", "note": "For God so loved", "translation": "NIV"},
			"Genesis 1",
		},
		"_meta": map[string]any{"note": "Day note", "mood": "happy"},
	})

	got := NormalizeDay(raw)

	if len(got.Readings) != 2 {
		t.Fatalf("got %d readings, want 2", len(got.Readings))
	}
	first := got.Readings[0]
	if first == nil || first.Book != 43 {
		t.Fatalf("first reading = %+v, want John", first)
	}
	if first.Title != "Memory" || first.Note != "For God so loved" || first.Translation != "NIV" {
		t.Errorf("reading metadata not preserved: %+v", first.Meta)
	}
	if got.Readings[1] == nil || got.Readings[1].Book != 1 {
		t.Errorf("second reading = %+v, want Genesis", got.Readings[1])
	}

	// mood is not whitelisted and must be dropped; note survives.
	if got.Meta == nil {
		t.Fatal("day meta missing")
	}
	if got.Meta.Note != "Day note" {
		t.Errorf("day note = %q, want %q", got.Meta.Note, "Day note")
	}
}

func TestNormalizeDayMetaAllUnwhitelisted(t *testing.T) {
	raw := decode(t, map[string]any{
		"readings": []any{"Genesis 1"},
		"_meta":    map[string]any{"mood": "happy", "color": "blue"},
	})
	got := NormalizeDay(raw)
	if got.Meta != nil {
		t.Errorf("meta with only unwhitelisted fields should be dropped, got %+v", got.Meta)
	}
}

func TestNormalizeDayBareObject(t *testing.T) {
	raw := decode(t, map[string]any{"ref": "John 3:16", "title": "Memory"})
	got := NormalizeDay(raw)
	if len(got.Readings) != 1 || got.Readings[0] == nil {
		t.Fatalf("NormalizeDay = %+v", got)
	}
	r := got.Readings[0]
	if r.Book != 43 || r.Title != "Memory" {
		t.Errorf("reading = %+v", r)
	}
}

func TestNormalizeDayParseFailureYieldsNilReading(t *testing.T) {
	got := NormalizeDay("Notabook 1")
	if len(got.Readings) != 1 || got.Readings[0] != nil {
		t.Errorf("NormalizeDay = %+v, want one nil reading", got)
	}
}

func TestNormalizeReadingObjectShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *ref.Reading
	}{
		{
			name: "book name with chapter and verse spec",
			raw:  map[string]any{"book": "John", "chapter": 3, "verses": "16-17"},
			want: &ref.Reading{Book: 43, Ranges: []ref.VerseRange{{Chapter: 3, Verses: []int{16, 17}}}},
		},
		{
			name: "numeric book with ranges",
			raw: map[string]any{"book": 43, "ranges": []any{
				map[string]any{"chapter": 3, "verses": []any{16, 18}},
				map[string]any{"chapter": 4},
			}},
			want: &ref.Reading{Book: 43, Ranges: []ref.VerseRange{
				{Chapter: 3, Verses: []int{16, 18}},
				{Chapter: 4},
			}},
		},
		{
			name: "unknown book",
			raw:  map[string]any{"book": "Unknown", "chapter": 1},
			want: nil,
		},
		{
			name: "descending verse range",
			raw:  map[string]any{"book": "John", "chapter": 3, "verses": "5-3"},
			want: nil,
		},
		{
			name: "missing chapter and ranges",
			raw:  map[string]any{"book": "John"},
			want: nil,
		},
		{
			name: "non-object input",
			raw:  42,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeReading(decode(t, tt.raw))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeReading = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDays(t *testing.T) {
	got := NormalizeDays(decode(t, []any{"Genesis 1"}))
	want := []PlanDay{{Readings: []*ref.Reading{
		{Book: 1, Ranges: []ref.VerseRange{{Chapter: 1}}},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeDays = %+v, want %+v", got, want)
	}

	if days := NormalizeDays("not an array"); len(days) != 0 {
		t.Errorf("non-array input should yield empty slice, got %+v", days)
	}
}

func TestNormalizeDaysJSON(t *testing.T) {
	days, err := NormalizeDaysJSON([]byte(`["Genesis 1", {"readings": ["Exodus 2"]}]`))
	if err != nil {
		t.Fatalf("NormalizeDaysJSON: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}

	if _, err := NormalizeDaysJSON([]byte(`{invalid`)); err == nil {
		t.Error("malformed JSON should error")
	}
}

func TestFormatReadingCompactsRanges(t *testing.T) {
	got := FormatReading(&ref.Reading{Book: 43, Ranges: []ref.VerseRange{
		{Chapter: 3, Verses: []int{1, 2, 3, 5, 7, 8}},
	}})
	if want := "John 3:1-3,5,7-8"; got != want {
		t.Errorf("FormatReading = %q, want %q", got, want)
	}
}

func TestFormatReadingShapes(t *testing.T) {
	tests := []struct {
		name    string
		reading *ref.Reading
		want    string
	}{
		{"nil reading", nil, ""},
		{
			"bare book",
			&ref.Reading{Book: 1, Ranges: []ref.VerseRange{}},
			"Genesis",
		},
		{
			"whole chapters",
			&ref.Reading{Book: 1, Ranges: []ref.VerseRange{{Chapter: 1}, {Chapter: 2}}},
			"Genesis 1;2",
		},
		{
			"title prefix",
			&ref.Reading{
				Book:   43,
				Ranges: []ref.VerseRange{{Chapter: 3, Verses: []int{16}}},
				Meta:   ref.Meta{Title: "Memory"},
			},
			"Memory: John 3:16",
		},
		{
			"translation suffix",
			&ref.Reading{
				Book:   43,
				Ranges: []ref.VerseRange{{Chapter: 3, Verses: []int{16}}},
				Meta:   ref.Meta{Translation: "NIV"},
			},
			"John 3:16 (NIV)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatReading(tt.reading); got != tt.want {
				t.Errorf("FormatReading = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatReadingRoundTrip(t *testing.T) {
	inputs := []string{
		"John 3:16", "John 3:16-18,20;4:1-2", "Genesis 1-3", "Genesis 1", "Genesis",
		"1 John 3:1-3,5", "John 3:16;4;5-6",
	}
	for _, in := range inputs {
		first := ref.ParseReference(in)
		if first == nil {
			t.Fatalf("ParseReference(%q) = nil", in)
		}
		again := ref.ParseReference(FormatReading(first))
		if !reflect.DeepEqual(first, again) {
			t.Errorf("round trip of %q: %+v != %+v", in, first, again)
		}
	}
}

func TestFormatDay(t *testing.T) {
	day := PlanDay{Readings: []*ref.Reading{
		{Book: 43, Ranges: []ref.VerseRange{{Chapter: 3, Verses: []int{16, 17}}}},
		{Book: 1, Ranges: []ref.VerseRange{{Chapter: 1}}},
	}}
	if got, want := FormatDay(day), "• John 3:16-17\n• Genesis 1"; got != want {
		t.Errorf("FormatDay = %q, want %q", got, want)
	}
}

func TestFormatDayWithMeta(t *testing.T) {
	day := PlanDay{
		Readings: []*ref.Reading{
			{
				Book:   43,
				Ranges: []ref.VerseRange{{Chapter: 3, Verses: []int{16}}},
				Meta:   ref.Meta{Note: "reading note", Translation: "NIV"},
			},
		},
		Meta: &ref.Meta{Prayer: "Day prayer", Tags: []string{"gospel", "love"}},
	}
	want := "• John 3:16 (NIV)\n" +
		"  Note: reading note\n" +
		"Prayer: Day prayer\n" +
		"Tags: gospel, love"
	if got := FormatDay(day); got != want {
		t.Errorf("FormatDay = %q, want %q", got, want)
	}
}

func TestPlanDayJSONRoundTrip(t *testing.T) {
	day := NormalizeDay(decode(t, map[string]any{
		"readings": []any{map[string]any{"ref": "John 3:16-18,20;4:1-2", "title": "Memory"}},
		"_meta":    map[string]any{"note": "Day note"},
	}))

	data, err := json.Marshal(day)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back PlanDay
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(day, back) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", day, back)
	}
}
