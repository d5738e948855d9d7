package translation

import (
	"context"
	"strings"
)

// OpenReading opens the requested translation for reading, falling back to
// its Strong's-tagged equivalent with stripping enabled when the plain
// edition is unavailable. When no fallback is configured the original error
// is returned unchanged. Callers cannot distinguish a native plain adapter
// from a stripped fallback.
func (o *Opener) OpenReading(ctx context.Context, code string) (Adapter, error) {
	adapter, err := o.Open(ctx, code, OpenOptions{})
	if err == nil {
		return adapter, nil
	}

	strongsCode, ok := o.StrongsFallback[strings.ToLower(code)]
	if !ok {
		return nil, err
	}
	fallback, fbErr := o.Open(ctx, strongsCode, OpenOptions{StripStrongs: true})
	if fbErr != nil {
		return nil, err
	}
	return fallback, nil
}

// OpenReadingOrDefault is the stricter variant of OpenReading: when even the
// Strong's-tagged equivalent is missing it falls back across translation
// identity to the configured default, so callers almost always get some
// adapter for a best-effort reading. The resolved code is returned alongside
// the adapter.
func (o *Opener) OpenReadingOrDefault(ctx context.Context, code string) (Adapter, string, error) {
	adapter, err := o.OpenReading(ctx, code)
	if err == nil {
		return adapter, strings.ToLower(code), nil
	}
	if o.Default == "" || strings.EqualFold(code, o.Default) {
		return nil, "", err
	}
	adapter, fbErr := o.OpenReading(ctx, o.Default)
	if fbErr != nil {
		return nil, "", err
	}
	return adapter, o.Default, nil
}
