// Package books provides the canonical table of the 66 Bible books with
// bidirectional name/id mapping, abbreviation resolution, and
// autocomplete-style prefix search.
package books

import (
	"sort"
	"strings"
)

// Count is the number of canonical books.
const Count = 66

// names holds the canonical book names, indexed by book id (1-based).
// Index 0 is unused.
var names = [Count + 1]string{
	1:  "Genesis",
	2:  "Exodus",
	3:  "Leviticus",
	4:  "Numbers",
	5:  "Deuteronomy",
	6:  "Joshua",
	7:  "Judges",
	8:  "Ruth",
	9:  "1 Samuel",
	10: "2 Samuel",
	11: "1 Kings",
	12: "2 Kings",
	13: "1 Chronicles",
	14: "2 Chronicles",
	15: "Ezra",
	16: "Nehemiah",
	17: "Esther",
	18: "Job",
	19: "Psalms",
	20: "Proverbs",
	21: "Ecclesiastes",
	22: "Song of Solomon",
	23: "Isaiah",
	24: "Jeremiah",
	25: "Lamentations",
	26: "Ezekiel",
	27: "Daniel",
	28: "Hosea",
	29: "Joel",
	30: "Amos",
	31: "Obadiah",
	32: "Jonah",
	33: "Micah",
	34: "Nahum",
	35: "Habakkuk",
	36: "Zephaniah",
	37: "Haggai",
	38: "Zechariah",
	39: "Malachi",
	40: "Matthew",
	41: "Mark",
	42: "Luke",
	43: "John",
	44: "Acts",
	45: "Romans",
	46: "1 Corinthians",
	47: "2 Corinthians",
	48: "Galatians",
	49: "Ephesians",
	50: "Philippians",
	51: "Colossians",
	52: "1 Thessalonians",
	53: "2 Thessalonians",
	54: "1 Timothy",
	55: "2 Timothy",
	56: "Titus",
	57: "Philemon",
	58: "Hebrews",
	59: "James",
	60: "1 Peter",
	61: "2 Peter",
	62: "1 John",
	63: "2 John",
	64: "3 John",
	65: "Jude",
	66: "Revelation",
}

// aliases maps normalized abbreviations to book ids. Every canonical name is
// added in its normalized form at init time.
var aliases = map[string]int{
	"gen":    1,
	"ex":     2,
	"exo":    2,
	"exod":   2,
	"lev":    3,
	"num":    4,
	"deut":   5,
	"josh":   6,
	"judg":   7,
	"jdg":    7,
	"rut":    8,
	"1sam":   9,
	"1sa":    9,
	"2sam":   10,
	"2sa":    10,
	"1kings": 11,
	"1kgs":   11,
	"1ki":    11,
	"2kings": 12,
	"2kgs":   12,
	"2ki":    12,
	"1chron": 13,
	"1chr":   13,
	"1ch":    13,
	"2chron": 14,
	"2chr":   14,
	"2ch":    14,
	"ezr":    15,
	"neh":    16,
	"est":    17,
	"esth":   17,
	"job":    18,
	"ps":     19,
	"psa":    19,
	"prov":   20,
	"pro":    20,
	"eccl":   21,
	"ecc":    21,
	"song":   22,
	"sos":    22,
	"cant":   22,
	"isa":    23,
	"jer":    24,
	"lam":    25,
	"ezek":   26,
	"ezk":    26,
	"dan":    27,
	"hos":    28,
	"joe":    29,
	"joel":   29,
	"am":     30,
	"amos":   30,
	"ob":     31,
	"obad":   31,
	"jon":    32,
	"jonah":  32,
	"mic":    33,
	"nah":    34,
	"hab":    35,
	"zeph":   36,
	"zep":    36,
	"hag":    37,
	"zech":   38,
	"zec":    38,
	"mal":    39,
	"matt":   40,
	"mt":     40,
	"mark":   41,
	"mk":     41,
	"luke":   42,
	"luk":    42,
	"lk":     42,
	"john":   43,
	"jn":     43,
	"jhn":    43,
	"acts":   44,
	"act":    44,
	"rom":    45,
	"ro":     45,
	"1cor":   46,
	"1co":    46,
	"2cor":   47,
	"2co":    47,
	"gal":    48,
	"eph":    49,
	"phil":   50,
	"php":    50,
	"col":    51,
	"1thess": 52,
	"1thes":  52,
	"1th":    52,
	"2thess": 53,
	"2thes":  53,
	"2th":    53,
	"1tim":   54,
	"1ti":    54,
	"2tim":   55,
	"2ti":    55,
	"tit":    56,
	"phlm":   57,
	"phm":    57,
	"heb":    58,
	"jas":    59,
	"jam":    59,
	"1pet":   60,
	"1pe":    60,
	"2pet":   61,
	"2pe":    61,
	"1jn":    62,
	"2jn":    63,
	"3jn":    64,
	"jude":   65,
	"jud":    65,
	"rev":    66,
	"re":     66,
	// Legacy aliases
	"songofsongs": 22,
	"canticles":   22,
	"revelations": 66,
}

func init() {
	for id := 1; id <= Count; id++ {
		aliases[normalize(names[id])] = id
	}
}

var romanPrefixes = map[string]string{"i": "1", "ii": "2", "iii": "3"}

// normalize lowercases a raw book name, converts a leading Roman numeral
// (i, ii, iii) to its Arabic digit, and strips all non-alphanumeric runes.
func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, roman := range []string{"iii", "ii", "i"} {
		rest, ok := strings.CutPrefix(n, roman)
		if !ok {
			continue
		}
		// Only treat it as an ordinal when a separator follows (e.g. "ii tim",
		// not "isaiah").
		if rest != "" && (rest[0] == ' ' || rest[0] == '.') {
			n = romanPrefixes[roman] + rest
			break
		}
	}
	var b strings.Builder
	for _, r := range n {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name returns the canonical name for a book id, or "" when the id is out of
// range.
func Name(id int) string {
	if id < 1 || id > Count {
		return ""
	}
	return names[id]
}

// ID resolves a raw book name or abbreviation to a book id. It tries an exact
// alias match on the normalized input first, then falls back to a
// unique-prefix rule: every alias that is a prefix of the input, or of which
// the input is a prefix, is a candidate; the id is returned only when exactly
// one book survives. Returns 0 for unknown or ambiguous names, never a guess.
func ID(name string) int {
	norm := normalize(name)
	if norm == "" {
		return 0
	}
	if id, ok := aliases[norm]; ok {
		return id
	}

	candidate := 0
	for alias, id := range aliases {
		if !strings.HasPrefix(alias, norm) && !strings.HasPrefix(norm, alias) {
			continue
		}
		if candidate != 0 && candidate != id {
			return 0 // ambiguous
		}
		candidate = id
	}
	return candidate
}

// Match is one result of a book Search.
type Match struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Search returns up to limit books matching the query, case-insensitively.
// Prefix matches rank before substring matches; ties break alphabetically.
// An empty query returns the first limit books in canonical order.
func Search(query string, limit int) []Match {
	if limit <= 0 {
		limit = 25
	}
	q := strings.ToLower(strings.TrimSpace(query))

	if q == "" {
		n := limit
		if n > Count {
			n = Count
		}
		out := make([]Match, 0, n)
		for id := 1; id <= n; id++ {
			out = append(out, Match{ID: id, Name: names[id]})
		}
		return out
	}

	type scored struct {
		Match
		score int
	}
	var results []scored
	for id := 1; id <= Count; id++ {
		name := names[id]
		norm := strings.ToLower(name)
		var score int
		switch {
		case strings.HasPrefix(norm, q):
			score = 0
		case strings.Contains(norm, q):
			score = 1
		default:
			continue
		}
		results = append(results, scored{Match{ID: id, Name: name}, score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score < results[j].score
		}
		return results[i].Name < results[j].Name
	})

	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = r.Match
	}
	return out
}
