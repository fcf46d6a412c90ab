package fonts

import (
	"context"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Measurer reports font metrics straight from the sfnt tables, without a
// drawing context. Sizes are in pixels at 72 DPI, so 1pt == 1px.
// Failures yield zero values, which layout.Metrics turns into fallbacks.
// A family that failed to load is not fetched again by the same Measurer.
type Measurer struct {
	cache *Cache

	mu    sync.Mutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	family string
	size   float64
}

// NewMeasurer returns a measurer that loads fonts through cache.
func NewMeasurer(cache *Cache) *Measurer {
	if cache == nil {
		cache = NewCache(nil)
	}
	return &Measurer{
		cache: cache,
		fonts: map[string]*opentype.Font{},
		faces: map[faceKey]font.Face{},
	}
}

// MeasureFont returns the cap height as ascent and the face descent.
func (m *Measurer) MeasureFont(family string, size float64) (float64, float64) {
	face := m.face(family, size)
	if face == nil {
		return 0, 0
	}
	metrics := face.Metrics()
	ascent := metrics.CapHeight
	if ascent <= 0 {
		ascent = metrics.Ascent
	}
	return toFloat(ascent), toFloat(metrics.Descent)
}

// MeasureChar returns the glyph advance of ch, or 0 when the font lacks it.
func (m *Measurer) MeasureChar(family string, size float64, ch rune) float64 {
	face := m.face(family, size)
	if face == nil {
		return 0
	}
	adv, ok := face.GlyphAdvance(ch)
	if !ok {
		return 0
	}
	return toFloat(adv)
}

func (m *Measurer) face(family string, size float64) font.Face {
	entry, _ := Lookup(family)
	key := faceKey{family: entry.Family, size: size}

	m.mu.Lock()
	defer m.mu.Unlock()
	if face, ok := m.faces[key]; ok {
		return face
	}
	f, ok := m.fonts[entry.Family]
	if !ok {
		f = m.load(entry.Family)
		m.fonts[entry.Family] = f
	}
	if f == nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil
	}
	m.faces[key] = face
	return face
}

func (m *Measurer) load(family string) *opentype.Font {
	ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout)
	defer cancel()
	_, data, err := m.cache.Get(ctx, family)
	if err != nil {
		return nil
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil
	}
	return f
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
