package translation

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	brerrors "github.com/bburd/BibleRef/core/errors"
)

// DefaultFiles maps translation codes to their backing database file names.
var DefaultFiles = map[string]string{
	"kjv":         "kjv.sqlite",
	"asv":         "asv.sqlite",
	"kjv_strongs": "kjv_strongs.sqlite",
	"asvs":        "asvs.sqlite",
}

// DefaultStrongsFallback maps a plain translation code to its Strong's-tagged
// equivalent, used when the plain edition is unavailable.
var DefaultStrongsFallback = map[string]string{
	"kjv": "kjv_strongs",
	"asv": "asvs",
}

// DefaultCode is the translation of last resort.
const DefaultCode = "asv"

// Opener resolves translation codes to database files and opens adapters
// over them. The zero value is not usable; construct with NewOpener.
type Opener struct {
	// Dir is the directory holding the translation database files.
	Dir string

	// Files maps lowercase translation codes to file names within Dir.
	Files map[string]string

	// StrongsFallback maps plain codes to Strong's-tagged codes.
	StrongsFallback map[string]string

	// Default is the code tried last by OpenReadingOrDefault.
	Default string

	// CacheSize bounds the per-adapter location-lookup LRU; zero disables
	// caching.
	CacheSize int
}

// NewOpener creates an Opener over dir with the default translation set.
func NewOpener(dir string) *Opener {
	return &Opener{
		Dir:             dir,
		Files:           DefaultFiles,
		StrongsFallback: DefaultStrongsFallback,
		Default:         DefaultCode,
		CacheSize:       256,
	}
}

// Open resolves a translation code to its database file and opens an
// adapter. Unknown codes and missing files fail with an
// UnknownTranslationError; the caller owns the returned adapter and must
// close it.
func (o *Opener) Open(ctx context.Context, code string, opts OpenOptions) (Adapter, error) {
	file, ok := o.Files[strings.ToLower(code)]
	if !ok {
		return nil, brerrors.NewUnknownTranslation(code)
	}
	path := filepath.Join(o.Dir, file)
	if _, err := os.Stat(path); err != nil {
		return nil, &brerrors.UnknownTranslationError{Code: code, Err: err}
	}

	adapter, err := openAdapter(ctx, path, opts.BuildFTS)
	if err != nil {
		return nil, err
	}
	var out Adapter = adapter
	if opts.StripStrongs {
		out = NewStripping(out)
	}
	if o.CacheSize > 0 {
		out = NewCaching(out, o.CacheSize)
	}
	return out, nil
}
