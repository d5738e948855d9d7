// Package importer converts Zefania XML bible modules into the verse
// database layout the translation adapter reads.
package importer

import (
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	brerrors "github.com/bburd/BibleRef/core/errors"
	"github.com/bburd/BibleRef/core/sqlite"
	"github.com/bburd/BibleRef/internal/logging"
)

// Result summarizes one completed import.
type Result struct {
	Translation string        `json:"translation"`
	Verses      int           `json:"verses"`
	SourceHash  string        `json:"source_hash"`
	Duration    time.Duration `json:"duration"`
}

// readSource loads the XML module, transparently decompressing .xz input.
func readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, brerrors.Wrapf(err, "open source %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, brerrors.Wrapf(err, "xz reader for %s", path)
		}
		r = xzr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, brerrors.Wrapf(err, "read source %s", path)
	}
	return data, nil
}

// Import parses the Zefania XML module at sourcePath and writes a verse
// database to destPath. The destination gets a verses table, a location
// index, and a meta table recording the source file and its BLAKE3 hash.
func Import(ctx context.Context, sourcePath, destPath string) (*Result, error) {
	start := time.Now()

	data, err := readSource(sourcePath)
	if err != nil {
		return nil, err
	}
	sum := blake3.Sum256(data)
	sourceHash := hex.EncodeToString(sum[:])

	doc, err := xmlquery.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, brerrors.Wrapf(err, "parse %s", sourcePath)
	}
	root := xmlquery.FindOne(doc, "//XMLBIBLE")
	if root == nil {
		return nil, brerrors.Wrapf(brerrors.ErrInvalidInput, "%s is not a Zefania module", sourcePath)
	}
	translation := root.SelectAttr("biblename")

	db, err := sqlite.Open(destPath)
	if err != nil {
		return nil, brerrors.Wrapf(err, "open destination %s", destPath)
	}
	defer db.Close()

	stmts := []string{
		"CREATE TABLE IF NOT EXISTS verses (id INTEGER PRIMARY KEY, book INTEGER, chapter INTEGER, verse INTEGER, text TEXT)",
		"CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT)",
		"CREATE INDEX IF NOT EXISTS idx_verses_location ON verses (book, chapter, verse)",
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, brerrors.Wrap(err, "prepare destination schema")
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	insert, err := tx.PrepareContext(ctx,
		"INSERT INTO verses (book, chapter, verse, text) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer insert.Close()

	count := 0
	for _, book := range xmlquery.Find(root, "BIBLEBOOK") {
		bnum, err := strconv.Atoi(book.SelectAttr("bnumber"))
		if err != nil {
			return nil, brerrors.Wrapf(brerrors.ErrInvalidInput, "book number %q", book.SelectAttr("bnumber"))
		}
		for _, chapter := range xmlquery.Find(book, "CHAPTER") {
			cnum, err := strconv.Atoi(chapter.SelectAttr("cnumber"))
			if err != nil {
				return nil, brerrors.Wrapf(brerrors.ErrInvalidInput, "chapter number %q", chapter.SelectAttr("cnumber"))
			}
			for _, vers := range xmlquery.Find(chapter, "VERS") {
				vnum, err := strconv.Atoi(vers.SelectAttr("vnumber"))
				if err != nil {
					return nil, brerrors.Wrapf(brerrors.ErrInvalidInput, "verse number %q", vers.SelectAttr("vnumber"))
				}
				text := strings.TrimSpace(vers.InnerText())
				if _, err := insert.ExecContext(ctx, bnum, cnum, vnum, text); err != nil {
					return nil, err
				}
				count++
			}
		}
	}

	meta := map[string]string{
		"source_file": filepath.Base(sourcePath),
		"source_hash": sourceHash,
		"translation": translation,
		"imported_at": start.UTC().Format(time.RFC3339),
	}
	for key, value := range meta {
		_, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", key, value)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result := &Result{
		Translation: translation,
		Verses:      count,
		SourceHash:  sourceHash,
		Duration:    time.Since(start),
	}
	logging.ImportEvent("imported", filepath.Base(sourcePath), count, result.Duration,
		"translation", translation, "hash", sourceHash)
	return result, nil
}
