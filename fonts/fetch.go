package fonts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Fetcher loads the raw bytes of a font resource.
type Fetcher interface {
	Fetch(ctx context.Context, e Entry) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, e Entry) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, e Entry) ([]byte, error) { return f(ctx, e) }

// Embedded serves the registry fonts from golang.org/x/image/font/gofont.
type Embedded struct{}

var embedded = map[string][]byte{
	"gofont/goregular.ttf": goregular.TTF,
	"gofont/gomono.ttf":    gomono.TTF,
}

func (Embedded) Fetch(ctx context.Context, e Entry) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := embedded[e.Path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFont, e.Path)
	}
	return data, nil
}

// Dir reads font resources from a directory, resolving Entry.Path against it.
type Dir string

func (d Dir) Fetch(ctx context.Context, e Entry) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := e.Path
	if !filepath.IsAbs(path) {
		if d == "" {
			return nil, fmt.Errorf("no font directory configured for %s", e.Path)
		}
		path = filepath.Join(string(d), filepath.FromSlash(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", e.Path, err)
	}
	return data, nil
}
