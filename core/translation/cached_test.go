package translation

import (
	"context"
	"testing"
)

// countingAdapter counts how often each operation reaches the backing store.
type countingAdapter struct {
	verseCalls   int
	chapterCalls int
	closed       bool
}

func (c *countingAdapter) GetVerse(_ context.Context, book, chapter, verse int) (*VerseRow, error) {
	c.verseCalls++
	if verse > 30 {
		return nil, nil
	}
	return &VerseRow{Book: book, Chapter: chapter, Verse: verse, Text: "text"}, nil
}

func (c *countingAdapter) GetChapter(_ context.Context, book, chapter int) ([]VerseRow, error) {
	c.chapterCalls++
	return []VerseRow{
		{Book: book, Chapter: chapter, Verse: 1, Text: "one"},
		{Book: book, Chapter: chapter, Verse: 2, Text: "two"},
	}, nil
}

func (c *countingAdapter) GetVersesSubset(_ context.Context, book, chapter int, verses []int) ([]VerseRow, error) {
	return nil, nil
}

func (c *countingAdapter) Search(context.Context, string, int) ([]VerseRow, error) {
	return nil, nil
}

func (c *countingAdapter) GetRandom(context.Context) (*VerseRow, error) {
	return nil, nil
}

func (c *countingAdapter) Close() error {
	c.closed = true
	return nil
}

func TestCachingVerseHits(t *testing.T) {
	inner := &countingAdapter{}
	cached := NewCaching(inner, 16)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		row, err := cached.GetVerse(ctx, 43, 3, 16)
		if err != nil {
			t.Fatalf("GetVerse: %v", err)
		}
		if row == nil || row.Verse != 16 {
			t.Fatalf("row = %+v", row)
		}
	}
	if inner.verseCalls != 1 {
		t.Errorf("verseCalls = %d, want 1", inner.verseCalls)
	}
}

func TestCachingNegativeVerseHits(t *testing.T) {
	inner := &countingAdapter{}
	cached := NewCaching(inner, 16)
	ctx := context.Background()

	// Missing verses cache too.
	for i := 0; i < 3; i++ {
		row, err := cached.GetVerse(ctx, 43, 3, 99)
		if err != nil {
			t.Fatalf("GetVerse: %v", err)
		}
		if row != nil {
			t.Fatalf("row = %+v, want nil", row)
		}
	}
	if inner.verseCalls != 1 {
		t.Errorf("verseCalls = %d, want 1", inner.verseCalls)
	}
}

func TestCachingChapterHitsAndIsolation(t *testing.T) {
	inner := &countingAdapter{}
	cached := NewCaching(inner, 16)
	ctx := context.Background()

	first, err := cached.GetChapter(ctx, 43, 3)
	if err != nil {
		t.Fatalf("GetChapter: %v", err)
	}
	// Mutating a returned slice must not poison the cache.
	first[0].Text = "mutated"

	second, err := cached.GetChapter(ctx, 43, 3)
	if err != nil {
		t.Fatalf("GetChapter: %v", err)
	}
	if inner.chapterCalls != 1 {
		t.Errorf("chapterCalls = %d, want 1", inner.chapterCalls)
	}
	if second[0].Text != "one" {
		t.Errorf("cached row was mutated: %q", second[0].Text)
	}
}

func TestCachingClosePassesThrough(t *testing.T) {
	inner := &countingAdapter{}
	cached := NewCaching(inner, 16)
	if err := cached.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !inner.closed {
		t.Error("inner adapter not closed")
	}
}
