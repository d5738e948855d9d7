// Command bibleref is the CLI for the BibleRef core: reference lookup,
// verse search, Strong's lexicon queries, reading plans, and translation
// imports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/bburd/BibleRef/core/books"
	"github.com/bburd/BibleRef/core/lexicon"
	"github.com/bburd/BibleRef/core/plan"
	"github.com/bburd/BibleRef/core/ref"
	"github.com/bburd/BibleRef/core/search"
	"github.com/bburd/BibleRef/core/sqlite"
	"github.com/bburd/BibleRef/core/translation"
	"github.com/bburd/BibleRef/internal/importer"
	"github.com/bburd/BibleRef/internal/logging"
	"github.com/bburd/BibleRef/internal/store"
)

const version = "0.2.0"

// CLI defines the command-line interface for bibleref.
var CLI struct {
	// Global flags
	DataDir     string `name:"data-dir" short:"d" default:"db" env:"BIBLEREF_DATA_DIR" help:"Directory holding translation and settings databases" type:"path"`
	Translation string `name:"translation" short:"t" env:"BIBLEREF_TRANSLATION" help:"Translation code (kjv, asv); defaults to the stored preference"`
	User        string `name:"user" default:"local" env:"BIBLEREF_USER" help:"User id for plans and preferences"`
	LogLevel    string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat   string `name:"log-format" default:"text" enum:"text,json" help:"Log output format"`

	Verse   VerseCmd   `cmd:"" help:"Fetch verses for a scripture reference"`
	Search  SearchCmd  `cmd:"" help:"Smart search: reference lookup or full-text query"`
	Random  RandomCmd  `cmd:"" help:"Fetch a random verse"`
	Books   BooksCmd   `cmd:"" help:"Search the book registry"`
	Lex     LexGroup   `cmd:"" help:"Strong's lexicon operations"`
	Plan    PlanGroup  `cmd:"" help:"Reading plan operations"`
	Prefs   PrefsGroup `cmd:"" help:"User preference operations"`
	Import  ImportCmd  `cmd:"" help:"Import a Zefania XML module into a verse database"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// settingsPath is the per-user settings database inside the data directory.
func settingsPath() string {
	return filepath.Join(CLI.DataDir, "bot_settings.sqlite")
}

// resolveTranslation picks the translation code: the flag wins, then the
// stored preference, then the built-in default.
func resolveTranslation(ctx context.Context) string {
	if CLI.Translation != "" {
		return CLI.Translation
	}
	s, err := store.Open(settingsPath())
	if err != nil {
		return translation.DefaultCode
	}
	defer s.Close()
	code, err := s.GetUserTranslation(ctx, CLI.User)
	if err != nil || code == "" {
		return translation.DefaultCode
	}
	return code
}

// openAdapter opens the resolved translation for reading, falling back to
// Strong's-tagged and default editions as configured.
func openAdapter(ctx context.Context) (translation.Adapter, string, error) {
	opener := translation.NewOpener(CLI.DataDir)
	return opener.OpenReadingOrDefault(ctx, resolveTranslation(ctx))
}

func printRows(code string, rows []translation.VerseRow) {
	for _, row := range rows {
		text := row.Text
		if text == "" {
			text = row.Snippet
		}
		fmt.Printf("%s %d:%d (%s)  %s\n", books.Name(row.Book), row.Chapter, row.Verse, strings.ToUpper(code), text)
	}
}

// VerseCmd fetches every verse named by a multi-segment reference.
type VerseCmd struct {
	Reference []string `arg:"" help:"Scripture reference, e.g. 'John 3:16-18,20;4:1'"`
}

func (c *VerseCmd) Run() error {
	ctx := context.Background()
	input := strings.Join(c.Reference, " ")
	reading := ref.ParseReference(input)
	if reading == nil {
		return fmt.Errorf("cannot parse reference %q", input)
	}

	adapter, code, err := openAdapter(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close()

	if len(reading.Ranges) == 0 {
		fmt.Println(books.Name(reading.Book))
		return nil
	}
	for _, r := range reading.Ranges {
		var rows []translation.VerseRow
		if len(r.Verses) == 0 {
			rows, err = adapter.GetChapter(ctx, reading.Book, r.Chapter)
		} else {
			rows, err = adapter.GetVersesSubset(ctx, reading.Book, r.Chapter, r.Verses)
		}
		if err != nil {
			return err
		}
		printRows(code, rows)
	}
	return nil
}

// SearchCmd routes free text through the smart search path.
type SearchCmd struct {
	Query []string `arg:"" help:"Reference or keyword query"`
	Limit int      `name:"limit" short:"n" default:"10" help:"Maximum results for keyword queries"`
}

func (c *SearchCmd) Run() error {
	ctx := context.Background()
	adapter, code, err := openAdapter(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close()

	rows, err := search.Smart(ctx, adapter, strings.Join(c.Query, " "), c.Limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no results")
		return nil
	}
	printRows(code, rows)
	return nil
}

// RandomCmd fetches one uniformly random verse.
type RandomCmd struct{}

func (c *RandomCmd) Run() error {
	ctx := context.Background()
	adapter, code, err := openAdapter(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close()

	row, err := adapter.GetRandom(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		fmt.Println("no verses available")
		return nil
	}
	printRows(code, []translation.VerseRow{*row})
	return nil
}

// BooksCmd searches the canonical book table.
type BooksCmd struct {
	Query string `arg:"" optional:"" help:"Name prefix or fragment; empty lists the canon"`
	Limit int    `name:"limit" short:"n" default:"25" help:"Maximum results"`
}

func (c *BooksCmd) Run() error {
	for _, m := range books.Search(c.Query, c.Limit) {
		fmt.Printf("%2d  %s\n", m.ID, m.Name)
	}
	return nil
}

// LexGroup contains Strong's lexicon operations.
type LexGroup struct {
	ID     LexIDCmd     `cmd:"" help:"Look up a Strong's number"`
	Search LexSearchCmd `cmd:"" help:"Search lexicon entries"`
	Verses LexVersesCmd `cmd:"" help:"List verses containing a Strong's number"`
}

// LexIDCmd looks up one dictionary entry.
type LexIDCmd struct {
	Strong string `arg:"" help:"Strong's number, e.g. G25"`
}

func (c *LexIDCmd) Run() error {
	lex, err := lexicon.New(CLI.DataDir)
	if err != nil {
		return err
	}
	entry, ok := lex.Lookup(c.Strong)
	if !ok {
		return fmt.Errorf("no entry found for %s", strings.ToUpper(c.Strong))
	}
	fmt.Printf("%s  %s (%s)\n", strings.ToUpper(c.Strong), entry.Lemma, entry.Translit)
	if entry.Derivation != "" {
		fmt.Printf("  derivation: %s\n", entry.Derivation)
	}
	if entry.Definition != "" {
		fmt.Printf("  definition: %s\n", entry.Definition)
	}
	return nil
}

// LexSearchCmd searches the dictionary text.
type LexSearchCmd struct {
	Query []string `arg:"" help:"Search text"`
	Limit int      `name:"limit" short:"n" default:"10" help:"Maximum results"`
}

func (c *LexSearchCmd) Run() error {
	lex, err := lexicon.New(CLI.DataDir)
	if err != nil {
		return err
	}
	results := lex.Search(strings.Join(c.Query, " "), c.Limit)
	if len(results) == 0 {
		fmt.Println("no matches found")
		return nil
	}
	for _, r := range results {
		line := r.ID
		if r.Lemma != "" {
			line += " - " + r.Lemma
		}
		if r.Gloss != "" {
			line += " - " + r.Gloss
		}
		fmt.Println(line)
	}
	return nil
}

// LexVersesCmd pages through verses tagged with a Strong's number.
type LexVersesCmd struct {
	Strong string `arg:"" help:"Strong's number, e.g. G25"`
	Offset int    `name:"offset" default:"0" help:"Page offset"`
	Limit  int    `name:"limit" short:"n" default:"5" help:"Page size"`
}

func (c *LexVersesCmd) Run() error {
	lex, err := lexicon.New(CLI.DataDir)
	if err != nil {
		return err
	}
	hits, total, err := lex.FindVersesByStrong(context.Background(), c.Strong, c.Offset, c.Limit)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("no occurrences found")
		return nil
	}
	for _, h := range hits {
		fmt.Printf("%s %d:%d  %s\n", books.Name(h.Book), h.Chapter, h.Verse, h.Text)
	}
	fmt.Printf("verses %d-%d of %d\n", c.Offset+1, c.Offset+len(hits), total)
	return nil
}

// PlanGroup contains reading-plan operations.
type PlanGroup struct {
	List   PlanListCmd   `cmd:"" help:"List available plans"`
	Show   PlanShowCmd   `cmd:"" help:"Show a plan's days"`
	Start  PlanStartCmd  `cmd:"" help:"Start a plan"`
	Status PlanStatusCmd `cmd:"" help:"Show current plan progress"`
	Done   PlanDoneCmd   `cmd:"" help:"Mark today's reading complete"`
	Stop   PlanStopCmd   `cmd:"" help:"Stop the active plan"`
}

func openStore() (*store.Store, error) {
	s, err := store.Open(settingsPath())
	if err != nil {
		return nil, err
	}
	seed := filepath.Join(CLI.DataDir, "plan_defs.json")
	if err := s.SeedPlans(context.Background(), seed); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// PlanListCmd lists plan definitions.
type PlanListCmd struct{}

func (c *PlanListCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	defs, err := s.ListPlanDefs(context.Background())
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Println("no plans available")
		return nil
	}
	for _, def := range defs {
		fmt.Printf("%-16s %s (%d days)\n", def.ID, def.Name, len(def.Days))
		if def.Description != "" {
			fmt.Printf("  %s\n", def.Description)
		}
	}
	return nil
}

// PlanShowCmd prints every day of one plan.
type PlanShowCmd struct {
	ID string `arg:"" help:"Plan id"`
}

func (c *PlanShowCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	def, err := s.GetPlanDef(context.Background(), c.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s - %s\n", def.ID, def.Name)
	for i, day := range def.Days {
		fmt.Printf("Day %d:\n%s\n", i+1, plan.FormatDay(day))
	}
	return nil
}

// PlanStartCmd begins a plan for the user.
type PlanStartCmd struct {
	ID string `arg:"" help:"Plan id"`
}

func (c *PlanStartCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	def, err := s.GetPlanDef(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.StartPlan(ctx, CLI.User, def.ID); err != nil {
		return err
	}
	fmt.Printf("started %s\n", def.Name)
	if len(def.Days) > 0 {
		fmt.Printf("Day 1:\n%s\n", plan.FormatDay(def.Days[0]))
	}
	return nil
}

// PlanStatusCmd shows the user's progress.
type PlanStatusCmd struct{}

func (c *PlanStatusCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	up, err := s.GetUserPlan(ctx, CLI.User)
	if err != nil {
		return err
	}
	if up == nil {
		fmt.Println("no active plan")
		return nil
	}
	def, err := s.GetPlanDef(ctx, up.PlanID)
	if err != nil {
		return err
	}
	fmt.Printf("%s: day %d of %d, streak %d\n", def.Name, up.Day+1, len(def.Days), up.Streak)
	if up.Day < len(def.Days) {
		day := def.Days[up.Day]
		fmt.Printf("Today:\n%s\n", plan.FormatDay(day))
	}
	return nil
}

// PlanDoneCmd completes today's reading.
type PlanDoneCmd struct{}

func (c *PlanDoneCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	progress, err := s.CompleteDay(context.Background(), CLI.User)
	if err != nil {
		return err
	}
	fmt.Printf("day complete, streak %d\n", progress.Streak)
	if progress.NextReading != nil {
		fmt.Printf("Next up:\n%s\n", plan.FormatDay(*progress.NextReading))
	} else {
		fmt.Printf("%s finished, well done\n", progress.Plan.Name)
	}
	return nil
}

// PlanStopCmd abandons the active plan.
type PlanStopCmd struct{}

func (c *PlanStopCmd) Run() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.StopPlan(context.Background(), CLI.User)
	if err != nil {
		return err
	}
	if !removed {
		fmt.Println("no active plan")
		return nil
	}
	fmt.Println("plan stopped")
	return nil
}

// PrefsGroup contains user preference operations.
type PrefsGroup struct {
	Get PrefsGetCmd `cmd:"" help:"Show the stored translation preference"`
	Set PrefsSetCmd `cmd:"" help:"Store a translation preference"`
}

// PrefsGetCmd prints the stored preference.
type PrefsGetCmd struct{}

func (c *PrefsGetCmd) Run() error {
	s, err := store.Open(settingsPath())
	if err != nil {
		return err
	}
	defer s.Close()

	code, err := s.GetUserTranslation(context.Background(), CLI.User)
	if err != nil {
		return err
	}
	if code == "" {
		fmt.Printf("no preference set (default %s)\n", translation.DefaultCode)
		return nil
	}
	fmt.Println(code)
	return nil
}

// PrefsSetCmd stores a preference.
type PrefsSetCmd struct {
	Code string `arg:"" help:"Translation code (kjv or asv)"`
}

func (c *PrefsSetCmd) Run() error {
	s, err := store.Open(settingsPath())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetUserTranslation(context.Background(), CLI.User, c.Code); err != nil {
		return err
	}
	fmt.Printf("translation set to %s\n", c.Code)
	return nil
}

// ImportCmd converts a Zefania XML module into a verse database.
type ImportCmd struct {
	Source string `arg:"" help:"Zefania XML file (.xml or .xml.xz)" type:"path"`
	Dest   string `arg:"" optional:"" help:"Destination database path; defaults into the data directory" type:"path"`
	JSON   bool   `name:"json" help:"Print the import summary as JSON"`
}

func (c *ImportCmd) Run() error {
	dest := c.Dest
	if dest == "" {
		base := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(c.Source), ".xz"), ".xml")
		dest = filepath.Join(CLI.DataDir, base+".sqlite")
	}
	result, err := importer.Import(context.Background(), c.Source, dest)
	if err != nil {
		return err
	}
	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	fmt.Printf("imported %s: %d verses into %s (blake3 %s)\n",
		result.Translation, result.Verses, dest, result.SourceHash[:12])
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("bibleref version %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func initLogging() {
	level := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"info":  logging.LevelInfo,
		"warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}[CLI.LogLevel]
	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)
}

func main() {
	// Optional .env alongside the binary; absence is fine.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("bibleref"),
		kong.Description("BibleRef - scripture reference and reading plan toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
