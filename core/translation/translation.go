// Package translation provides the uniform query interface over per-translation
// verse databases.
//
// Each translation is one SQLite file with a verses table whose column names
// vary between sources. An Adapter hides that variance: at open time the
// schema is introspected once into an immutable column map, a location index
// is ensured, and optionally a full-text index is built. All operations then
// return the same VerseRow shape regardless of the underlying schema.
//
// Adapters are caller-owned: open, use, and close on every exit path. They
// are not cached or pooled; concurrent adapters may open the same file.
package translation

import (
	"context"
)

// VerseRow is the uniform row shape every adapter operation returns.
type VerseRow struct {
	Book    int    `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Adapter is the query interface over one translation's backing verse store.
// After Close, every operation fails with ErrClosed rather than silently
// returning empty data.
type Adapter interface {
	// GetVerse returns a single verse, or nil when it does not exist.
	GetVerse(ctx context.Context, book, chapter, verse int) (*VerseRow, error)

	// GetChapter returns all verses of a chapter ordered by verse ascending.
	GetChapter(ctx context.Context, book, chapter int) ([]VerseRow, error)

	// GetVersesSubset returns exactly the requested verses that exist,
	// ordered by verse ascending.
	GetVersesSubset(ctx context.Context, book, chapter int, verses []int) ([]VerseRow, error)

	// Search runs a full-text query and returns rows with highlighted
	// snippets. The literal query "random" returns limit uniformly-random
	// rows instead. Without a full-text index the search degrades to a
	// substring scan with the raw text as the snippet.
	Search(ctx context.Context, query string, limit int) ([]VerseRow, error)

	// GetRandom returns one uniformly-random verse, or nil for an empty store.
	GetRandom(ctx context.Context) (*VerseRow, error)

	// Close releases the underlying connection.
	Close() error
}

// OpenOptions controls adapter construction.
type OpenOptions struct {
	// StripStrongs removes inline Strong's-number annotations from every
	// returned text and snippet.
	StripStrongs bool

	// BuildFTS builds a full-text index over the verse text if one does not
	// exist. Best-effort: a build failure only disables FTS-backed search
	// for the session, it does not fail the open.
	BuildFTS bool
}
