package translation

import (
	"context"
	"fmt"

	"github.com/bburd/BibleRef/core/cache"
)

// cachingAdapter decorates an Adapter with an LRU over point and chapter
// lookups. Search and random fetches pass through uncached. Cached rows are
// post-stripping, so a stripped fallback adapter stays stripped.
type cachingAdapter struct {
	inner Adapter
	rows  cache.Cache[string, []VerseRow]
}

// NewCaching wraps an adapter with an LRU of at most size location lookups.
func NewCaching(inner Adapter, size int) Adapter {
	config := cache.DefaultConfig()
	config.MaxSize = size
	return &cachingAdapter{
		inner: inner,
		rows:  cache.NewLRUCache[string, []VerseRow](config),
	}
}

func (c *cachingAdapter) GetVerse(ctx context.Context, book, chapter, verse int) (*VerseRow, error) {
	key := fmt.Sprintf("v:%d:%d:%d", book, chapter, verse)
	if rows, ok := c.rows.Get(key); ok {
		if len(rows) == 0 {
			return nil, nil
		}
		row := rows[0]
		return &row, nil
	}

	row, err := c.inner.GetVerse(ctx, book, chapter, verse)
	if err != nil {
		return nil, err
	}
	if row == nil {
		c.rows.Put(key, []VerseRow{})
		return nil, nil
	}
	c.rows.Put(key, []VerseRow{*row})
	out := *row
	return &out, nil
}

func (c *cachingAdapter) GetChapter(ctx context.Context, book, chapter int) ([]VerseRow, error) {
	key := fmt.Sprintf("c:%d:%d", book, chapter)
	if rows, ok := c.rows.Get(key); ok {
		return append([]VerseRow(nil), rows...), nil
	}

	rows, err := c.inner.GetChapter(ctx, book, chapter)
	if err != nil {
		return nil, err
	}
	c.rows.Put(key, rows)
	return append([]VerseRow(nil), rows...), nil
}

func (c *cachingAdapter) GetVersesSubset(ctx context.Context, book, chapter int, verses []int) ([]VerseRow, error) {
	return c.inner.GetVersesSubset(ctx, book, chapter, verses)
}

func (c *cachingAdapter) Search(ctx context.Context, query string, limit int) ([]VerseRow, error) {
	return c.inner.Search(ctx, query, limit)
}

func (c *cachingAdapter) GetRandom(ctx context.Context) (*VerseRow, error) {
	return c.inner.GetRandom(ctx)
}

func (c *cachingAdapter) Close() error {
	c.rows.Clear()
	return c.inner.Close()
}
