package translation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	brerrors "github.com/bburd/BibleRef/core/errors"
	"github.com/bburd/BibleRef/core/sqlite"
)

const verseTable = "verses"

// columnMap is the immutable result of schema introspection: the physical
// column name behind each logical column. ID falls back to "rowid" when the
// table has no id column.
type columnMap struct {
	ID      string
	Book    string
	Chapter string
	Verse   string
	Text    string
}

// sqliteAdapter is the concrete Adapter over one SQLite verse database.
type sqliteAdapter struct {
	db     *sql.DB
	cols   columnMap
	hasFTS bool
	closed atomic.Bool
}

// openAdapter opens the database file and prepares the session: introspect
// the schema, ensure the location index, and detect or build the full-text
// index.
func openAdapter(ctx context.Context, path string, buildFTS bool) (*sqliteAdapter, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, brerrors.Wrapf(err, "open %s", path)
	}

	a := &sqliteAdapter{db: db}
	if a.cols, err = introspect(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if err = a.ensureLocationIndex(ctx); err != nil {
		db.Close()
		return nil, brerrors.Wrap(err, "ensure location index")
	}
	a.ensureFTS(ctx, buildFTS)
	return a, nil
}

// introspect discovers the verse table's columns and builds the name map by
// fuzzy matching. A required column that cannot be identified fails the open;
// guessing silently into a wrong column would corrupt every row.
func introspect(ctx context.Context, db *sql.DB) (columnMap, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", verseTable))
	if err != nil {
		return columnMap{}, &brerrors.SchemaError{Table: verseTable, Err: err}
	}
	defer rows.Close()

	var cols columnMap
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return columnMap{}, &brerrors.SchemaError{Table: verseTable, Err: err}
		}
		lower := strings.ToLower(name)
		switch {
		case lower == "id":
			cols.ID = name
		case cols.Book == "" && strings.Contains(lower, "book"):
			cols.Book = name
		case cols.Chapter == "" && strings.Contains(lower, "chapter"):
			cols.Chapter = name
		case cols.Verse == "" && strings.Contains(lower, "verse"):
			cols.Verse = name
		case cols.Text == "" && strings.Contains(lower, "text"):
			cols.Text = name
		}
	}
	if err := rows.Err(); err != nil {
		return columnMap{}, &brerrors.SchemaError{Table: verseTable, Err: err}
	}

	for col, name := range map[string]string{
		"book": cols.Book, "chapter": cols.Chapter, "verse": cols.Verse, "text": cols.Text,
	} {
		if name == "" {
			return columnMap{}, brerrors.NewSchema(verseTable, col)
		}
	}
	if cols.ID == "" {
		cols.ID = "rowid"
	}
	return cols, nil
}

// ensureLocationIndex creates the composite (book, chapter, verse) index if
// absent, keeping point and range lookups fast.
func (a *sqliteAdapter) ensureLocationIndex(ctx context.Context) error {
	stmt := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_%s_location ON %s (%s, %s, %s)",
		verseTable, verseTable, a.cols.Book, a.cols.Chapter, a.cols.Verse,
	)
	_, err := a.db.ExecContext(ctx, stmt)
	return err
}

const ftsTable = verseTable + "_fts"

// ensureFTS detects an existing full-text table and, when build is set and
// none exists, creates one keyed to the verse table's rowid and rebuilds it.
// Failures only leave hasFTS false.
func (a *sqliteAdapter) ensureFTS(ctx context.Context, build bool) {
	var name string
	err := a.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", ftsTable,
	).Scan(&name)
	if err == nil {
		a.hasFTS = true
		return
	}
	if !build {
		return
	}

	create := fmt.Sprintf(
		"CREATE VIRTUAL TABLE %s USING fts5(%s, content='%s', content_rowid='%s')",
		ftsTable, a.cols.Text, verseTable, a.cols.ID,
	)
	if _, err := a.db.ExecContext(ctx, create); err != nil {
		return
	}
	rebuild := fmt.Sprintf("INSERT INTO %s(%s) VALUES('rebuild')", ftsTable, ftsTable)
	if _, err := a.db.ExecContext(ctx, rebuild); err != nil {
		return
	}
	a.hasFTS = true
}

func (a *sqliteAdapter) guard() error {
	if a.closed.Load() {
		return brerrors.Wrap(brerrors.ErrClosed, "translation adapter")
	}
	return nil
}

// selectList returns the aliased projection used by every row query.
func (a *sqliteAdapter) selectList(prefix string) string {
	return fmt.Sprintf("%[1]s%[2]s AS book, %[1]s%[3]s AS chapter, %[1]s%[4]s AS verse, %[1]s%[5]s AS text",
		prefix, a.cols.Book, a.cols.Chapter, a.cols.Verse, a.cols.Text)
}

func (a *sqliteAdapter) GetVerse(ctx context.Context, book, chapter, verse int) (*VerseRow, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s=? AND %s=? AND %s=? LIMIT 1",
		a.selectList(""), verseTable, a.cols.Book, a.cols.Chapter, a.cols.Verse)

	var row VerseRow
	err := a.db.QueryRowContext(ctx, query, book, chapter, verse).
		Scan(&row.Book, &row.Chapter, &row.Verse, &row.Text)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (a *sqliteAdapter) GetChapter(ctx context.Context, book, chapter int) ([]VerseRow, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s=? AND %s=? ORDER BY %s ASC",
		a.selectList(""), verseTable, a.cols.Book, a.cols.Chapter, a.cols.Verse)
	return a.queryRows(ctx, query, book, chapter)
}

func (a *sqliteAdapter) GetVersesSubset(ctx context.Context, book, chapter int, verses []int) ([]VerseRow, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	if len(verses) == 0 {
		return []VerseRow{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(verses)), ",")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s=? AND %s=? AND %s IN (%s) ORDER BY %s ASC",
		a.selectList(""), verseTable, a.cols.Book, a.cols.Chapter, a.cols.Verse, placeholders, a.cols.Verse)

	args := make([]any, 0, len(verses)+2)
	args = append(args, book, chapter)
	for _, v := range verses {
		args = append(args, v)
	}
	return a.queryRows(ctx, query, args...)
}

func (a *sqliteAdapter) Search(ctx context.Context, query string, limit int) ([]VerseRow, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	if query == "random" {
		stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY RANDOM() LIMIT ?",
			a.selectList(""), verseTable)
		return a.queryRows(ctx, stmt, limit)
	}

	if a.hasFTS {
		stmt := fmt.Sprintf(
			"SELECT v.%s AS book, v.%s AS chapter, v.%s AS verse, snippet(%s, 0, '<b>', '</b>', '...', 10) AS snippet FROM %s JOIN %s v ON %s.rowid = v.%s WHERE %s MATCH ? LIMIT ?",
			a.cols.Book, a.cols.Chapter, a.cols.Verse, ftsTable, ftsTable, verseTable, ftsTable, a.cols.ID, ftsTable)
		rows, err := a.db.QueryContext(ctx, stmt, query, limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		out := []VerseRow{}
		for rows.Next() {
			var row VerseRow
			if err := rows.Scan(&row.Book, &row.Chapter, &row.Verse, &row.Snippet); err != nil {
				return nil, err
			}
			out = append(out, row)
		}
		return out, rows.Err()
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIKE ? LIMIT ?",
		a.selectList(""), verseTable, a.cols.Text)
	rows, err := a.queryRows(ctx, stmt, "%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Snippet = rows[i].Text
		rows[i].Text = ""
	}
	return rows, nil
}

func (a *sqliteAdapter) GetRandom(ctx context.Context) (*VerseRow, error) {
	if err := a.guard(); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY RANDOM() LIMIT 1",
		a.selectList(""), verseTable)

	var row VerseRow
	err := a.db.QueryRowContext(ctx, query).
		Scan(&row.Book, &row.Chapter, &row.Verse, &row.Text)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (a *sqliteAdapter) Close() error {
	if a.closed.Swap(true) {
		return brerrors.Wrap(brerrors.ErrClosed, "translation adapter")
	}
	return a.db.Close()
}

func (a *sqliteAdapter) queryRows(ctx context.Context, query string, args ...any) ([]VerseRow, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []VerseRow{}
	for rows.Next() {
		var row VerseRow
		if err := rows.Scan(&row.Book, &row.Chapter, &row.Verse, &row.Text); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
