package fonts

import (
	"errors"
	"strings"
)

// ErrUnknownFont is returned by fetchers that do not carry a registry entry.
var ErrUnknownFont = errors.New("unknown font resource")

// Entry describes one known font: the family name used in configs and the
// resource tuple the vector backend embeds.
type Entry struct {
	Family string // e.g. "Go Mono"
	Path   string // resource path, relative to the fetcher root
	Format string // CSS @font-face format() tag
	MIME   string // data URL media type
}

// registry is fixed; the first entry doubles as the fallback.
var registry = []Entry{
	{Family: "Go", Path: "gofont/goregular.ttf", Format: "truetype", MIME: "font/ttf"},
	{Family: "Go Mono", Path: "gofont/gomono.ttf", Format: "truetype", MIME: "font/ttf"},
}

// Lookup returns the entry for family, matched case-insensitively.
// Unknown names resolve to the first entry and ok is false.
func Lookup(family string) (Entry, bool) {
	name := strings.TrimSpace(family)
	for _, e := range registry {
		if strings.EqualFold(e.Family, name) {
			return e, true
		}
	}
	return registry[0], false
}

// Fallback returns the entry used when a family cannot be loaded.
func Fallback() Entry { return registry[0] }

// Families lists the known family names in registry order.
func Families() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.Family
	}
	return names
}
