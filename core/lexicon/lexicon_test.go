package lexicon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bburd/BibleRef/core/sqlite"
)

const fixtureDict = `{
	"G25": {
		"lemma": "ἀγαπάω",
		"translit": "agapaō",
		"derivation": "perhaps from ἄγαν (much)",
		"definition": "to love (in a social or moral sense)"
	},
	"G26": {
		"lemma": "ἀγάπη",
		"translit": "agapē",
		"definition": "love, i.e. affection or benevolence"
	},
	"H7225": {
		"lemma": "רֵאשִׁית",
		"translit": "reshith",
		"definition": "the first, in place, time, order or rank"
	}
}`

func fixtureLexicon(t *testing.T) *Lexicon {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DictionaryFile), []byte(fixtureDict), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	lex, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return lex
}

func writeConcordance(t *testing.T, dir, file string, rows [][4]any) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(dir, file))
	if err != nil {
		t.Fatalf("open concordance fixture: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("CREATE TABLE verses (book INTEGER, chapter INTEGER, verse INTEGER, text TEXT, strong TEXT)"); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec("INSERT INTO verses (book, chapter, verse, text, strong) VALUES (?, ?, ?, ?, ?)",
			r[0], r[1], r[2], r[3], "G25"); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

func TestNewMissingDictionary(t *testing.T) {
	lex, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if lex.Len() != 0 {
		t.Errorf("Len = %d, want 0", lex.Len())
	}
	if _, ok := lex.Lookup("G25"); ok {
		t.Error("Lookup should miss on an empty dictionary")
	}
}

func TestNewMalformedDictionary(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DictionaryFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLookup(t *testing.T) {
	lex := fixtureLexicon(t)

	entry, ok := lex.Lookup("G25")
	if !ok {
		t.Fatal("G25 missing")
	}
	if entry.Translit != "agapaō" {
		t.Errorf("Translit = %q", entry.Translit)
	}

	// Case-insensitive and whitespace-tolerant.
	if _, ok := lex.Lookup(" g25 "); !ok {
		t.Error("lowercase lookup should hit")
	}
	if _, ok := lex.Lookup("G9999"); ok {
		t.Error("unknown id should miss")
	}
}

func TestSearch(t *testing.T) {
	lex := fixtureLexicon(t)

	got := lex.Search("love", 10)
	if len(got) != 2 {
		t.Fatalf("Search(love) = %+v, want 2 results", got)
	}
	// Results come back in id order.
	if got[0].ID != "G25" || got[1].ID != "G26" {
		t.Errorf("ids = %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Gloss == "" {
		t.Error("gloss missing")
	}

	if got := lex.Search("reshith", 10); len(got) != 1 || got[0].ID != "H7225" {
		t.Errorf("Search(reshith) = %+v", got)
	}
	if got := lex.Search("LOVE", 1); len(got) != 1 {
		t.Errorf("limit not honored: %+v", got)
	}
	if got := lex.Search("zzz", 10); len(got) != 0 {
		t.Errorf("Search(zzz) = %+v, want none", got)
	}
	if got := lex.Search("  ", 10); len(got) != 0 {
		t.Errorf("blank query should return nothing, got %+v", got)
	}
}

func TestFindVersesByStrong(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DictionaryFile), []byte(fixtureDict), 0o644); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}
	writeConcordance(t, dir, "strongs-greek.db", [][4]any{
		{43, 3, 16, "For God so loved the world"},
		{43, 21, 15, "lovest thou me more than these?"},
		{62, 4, 19, "We love him, because he first loved us"},
	})
	lex, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hits, total, err := lex.FindVersesByStrong(context.Background(), "G25", 0, 2)
	if err != nil {
		t.Fatalf("FindVersesByStrong: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(hits) != 2 || hits[0].Book != 43 || hits[0].Verse != 16 {
		t.Fatalf("hits = %+v", hits)
	}

	// Second page.
	hits, total, err = lex.FindVersesByStrong(context.Background(), "g25", 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if total != 3 || len(hits) != 1 || hits[0].Book != 62 {
		t.Errorf("page 2 hits = %+v, total = %d", hits, total)
	}

	// Hebrew ids resolve against the hebrew database, which is absent here.
	hits, total, err = lex.FindVersesByStrong(context.Background(), "H7225", 0, 5)
	if err != nil {
		t.Fatalf("hebrew: %v", err)
	}
	if len(hits) != 0 || total != 0 {
		t.Errorf("missing database should yield empty page, got %+v total %d", hits, total)
	}
}
