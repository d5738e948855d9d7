// Package lexicon serves Strong's dictionary entries and locates verse
// occurrences of a Strong's number in the per-language concordance
// databases.
package lexicon

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	brerrors "github.com/bburd/BibleRef/core/errors"
	"github.com/bburd/BibleRef/core/sqlite"
)

// DictionaryFile is the JSON dictionary shipped alongside the concordance
// databases.
const DictionaryFile = "strongs-dictionary.json"

// Entry is one Strong's dictionary entry.
type Entry struct {
	Lemma      string `json:"lemma"`
	Translit   string `json:"translit"`
	Derivation string `json:"derivation"`
	Definition string `json:"definition"`
}

// Dictionary maps uppercase Strong's ids (G25, H7225) to entries.
type Dictionary map[string]Entry

// LoadDictionary reads a Strong's dictionary JSON file. A missing file is not
// an error; it yields an empty dictionary, the same as a deployment that
// ships no lexicon data.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Dictionary{}, nil
	}
	if err != nil {
		return nil, brerrors.Wrapf(err, "read dictionary %s", path)
	}
	var dict Dictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, brerrors.Wrapf(err, "parse dictionary %s", path)
	}
	return dict, nil
}

// Lexicon is a loaded dictionary plus the directory holding the
// strongs-greek.db and strongs-hebrew.db concordance files.
type Lexicon struct {
	dict Dictionary
	keys []string
	dir  string
}

// New loads the dictionary from dir and returns a Lexicon whose concordance
// lookups also resolve against dir.
func New(dir string) (*Lexicon, error) {
	dict, err := LoadDictionary(filepath.Join(dir, DictionaryFile))
	if err != nil {
		return nil, err
	}
	return NewWithDictionary(dir, dict), nil
}

// NewWithDictionary builds a Lexicon over an already-loaded dictionary.
func NewWithDictionary(dir string, dict Dictionary) *Lexicon {
	keys := make([]string, 0, len(dict))
	for id := range dict {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return &Lexicon{dict: dict, keys: keys, dir: dir}
}

// Len reports the number of dictionary entries.
func (l *Lexicon) Len() int { return len(l.dict) }

// Lookup returns the entry for a Strong's id, case-insensitively.
func (l *Lexicon) Lookup(id string) (Entry, bool) {
	entry, ok := l.dict[strings.ToUpper(strings.TrimSpace(id))]
	return entry, ok
}

// Result is one Search hit.
type Result struct {
	ID    string `json:"id"`
	Lemma string `json:"lemma"`
	Gloss string `json:"gloss"`
}

// Search scans the dictionary for entries whose id, lemma, transliteration,
// or definition contains the query, case-insensitively. Results come back in
// id order, capped at limit (default 10).
func (l *Lexicon) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var results []Result
	for _, id := range l.keys {
		entry := l.dict[id]
		haystack := strings.ToLower(strings.Join([]string{
			id, entry.Lemma, entry.Translit, entry.Definition,
		}, " "))
		if !strings.Contains(haystack, q) {
			continue
		}
		results = append(results, Result{ID: id, Lemma: entry.Lemma, Gloss: entry.Definition})
		if len(results) >= limit {
			break
		}
	}
	return results
}

// VerseHit is one verse containing a Strong's number.
type VerseHit struct {
	Book    int    `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// concordancePath picks the Greek or Hebrew database by the id's prefix.
func (l *Lexicon) concordancePath(strong string) string {
	name := "strongs-hebrew.db"
	if strings.HasPrefix(strings.ToUpper(strong), "G") {
		name = "strongs-greek.db"
	}
	return filepath.Join(l.dir, name)
}

// FindVersesByStrong pages through the verses tagged with a Strong's number,
// returning the page and the total occurrence count. A missing concordance
// database yields an empty page, not an error.
func (l *Lexicon) FindVersesByStrong(ctx context.Context, strong string, offset, limit int) ([]VerseHit, int, error) {
	if limit <= 0 {
		limit = 5
	}
	if offset < 0 {
		offset = 0
	}
	strong = strings.ToUpper(strings.TrimSpace(strong))

	path := l.concordancePath(strong)
	if _, err := os.Stat(path); err != nil {
		return []VerseHit{}, 0, nil
	}

	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, 0, brerrors.Wrapf(err, "open concordance %s", path)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		"SELECT book, chapter, verse, text FROM verses WHERE strong = ? LIMIT ? OFFSET ?",
		strong, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	hits := []VerseHit{}
	for rows.Next() {
		var h VerseHit
		if err := rows.Scan(&h.Book, &h.Chapter, &h.Verse, &h.Text); err != nil {
			return nil, 0, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM verses WHERE strong = ?", strong).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	return hits, total, nil
}
