package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/tiletext/fonts"
	"github.com/ByLCY/tiletext/layout"
	"github.com/ByLCY/tiletext/renderer"
)

// ptPerUnit converts layout units (1 unit == 1 px == 1 canvas mm at DPMM(1))
// to the points canvas expects for font sizes.
const ptPerUnit = 72.0 / 25.4

// Renderer draws layout plans via github.com/tdewolff/canvas and doubles as
// the canvas-backed layout.MetricsSource.
type Renderer struct {
	cache *fonts.Cache

	fontMu   sync.Mutex
	families map[string]*fontFamilyEntry
	fallback *canvas.FontFamily

	surfaceMu sync.Mutex
	surface   *image.RGBA
	status    Status
}

var (
	_ renderer.Renderer    = (*Renderer)(nil)
	_ layout.MetricsSource = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	status Status
}

// Status reports how the requested font family was resolved.
type Status struct {
	Family   string // family actually used
	Degraded bool   // true when the fallback family replaced the request
	Reason   string
}

// NewRenderer creates a canvas-based renderer loading fonts through cache.
// A nil cache uses the embedded fonts.
func NewRenderer(cache *fonts.Cache) *Renderer {
	if cache == nil {
		cache = fonts.NewCache(nil)
	}
	return &Renderer{
		cache:    cache,
		families: map[string]*fontFamilyEntry{},
	}
}

// Render draws the plan and returns it as PNG bytes.
func (r *Renderer) Render(ctx context.Context, plan *layout.Plan) ([]byte, error) {
	c, err := r.paint(ctx, plan)
	if err != nil {
		return nil, err
	}

	r.surfaceMu.Lock()
	defer r.surfaceMu.Unlock()
	img := r.rasterize(c, plan.Config)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF draws the plan onto a single PDF page of the same size.
func (r *Renderer) RenderPDF(ctx context.Context, plan *layout.Plan) ([]byte, error) {
	c, err := r.paint(ctx, plan)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, plan.Config.Width, plan.Config.Height, nil)
	writer.SetInfo(layout.Slug(plan.Config.Message), "", "", "", "tiletext")
	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Surface returns the pixel surface of the last Render.
func (r *Renderer) Surface() *image.RGBA {
	r.surfaceMu.Lock()
	defer r.surfaceMu.Unlock()
	return r.surface
}

// LastStatus returns the font status of the last render.
func (r *Renderer) LastStatus() Status {
	r.surfaceMu.Lock()
	defer r.surfaceMu.Unlock()
	return r.status
}

// paint realises the plan on a fresh canvas. Canvas uses y-up coordinates, so
// layout positions are mirrored through the surface height on the way in.
func (r *Renderer) paint(ctx context.Context, plan *layout.Plan) (*canvas.Canvas, error) {
	if plan == nil || plan.Metrics == nil {
		return nil, renderer.ErrNoContext
	}
	cfg := plan.Config
	family, status, err := r.resolve(ctx, cfg.FontFamily)
	if err != nil {
		return nil, err
	}
	r.surfaceMu.Lock()
	r.status = status
	r.surfaceMu.Unlock()

	face := family.Face(cfg.FontSize*ptPerUnit, colorFromLayout(cfg.Foreground), canvas.FontRegular, canvas.FontNormal)

	c := canvas.New(cfg.Width, cfg.Height)
	dc := canvas.NewContext(c)
	dc.SetFillColor(colorFromLayout(cfg.Background))
	dc.SetStrokeColor(color.RGBA{})
	dc.DrawPath(0, 0, canvas.Rectangle(cfg.Width, cfg.Height))

	for seg := range plan.Segments() {
		drawSegment(dc, face, plan, seg)
	}
	return c, nil
}

// drawSegment draws one segment character by character. A non-identity
// transform is scoped to this segment with Push/Pop.
func drawSegment(dc *canvas.Context, face *canvas.FontFace, plan *layout.Plan, seg layout.Segment) {
	height := plan.Config.Height
	if ops := seg.Ops(); ops != nil {
		flip := yFlip(height)
		dc.Push()
		defer dc.Pop()
		dc.ComposeView(flip.Mul(opsMatrix(ops)).Mul(flip))
	}
	baseline := height - (seg.Y + plan.LineMetrics.Ascent)
	offsets := plan.Metrics.Offsets(seg.Text, plan.Config.LetterSpacing)
	i := 0
	for _, ch := range seg.Text {
		if ch != ' ' {
			dc.DrawText(seg.X+offsets[i], baseline, canvas.NewTextLine(face, string(ch), canvas.Left))
		}
		i++
	}
}

// opsMatrix folds the shared transform steps, in order, into a canvas matrix.
func opsMatrix(ops []layout.Op) canvas.Matrix {
	m := canvas.Identity
	for _, op := range ops {
		switch op.Kind {
		case layout.OpTranslate:
			m = m.Translate(op.X, op.Y)
		case layout.OpRotate:
			m = m.Rotate(op.X)
		case layout.OpScale:
			m = m.Scale(op.X, op.Y)
		}
	}
	return m
}

// yFlip maps y-down layout space to y-up canvas space; it is its own inverse.
func yFlip(height float64) canvas.Matrix {
	return canvas.Identity.Translate(0, height).Scale(1, -1)
}

// rasterize renders c at one pixel per unit straight into the retained
// surface, reallocating it only when the dimensions change. The caller holds
// surfaceMu.
func (r *Renderer) rasterize(c *canvas.Canvas, cfg layout.Config) *image.RGBA {
	w, h := int(cfg.Width), int(cfg.Height)
	if r.surface == nil || r.surface.Bounds().Dx() != w || r.surface.Bounds().Dy() != h {
		r.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	draw.Draw(r.surface, r.surface.Bounds(), image.NewUniform(colorFromLayout(cfg.Background)), image.Point{}, draw.Src)

	ras := rasterizer.FromImage(r.surface, canvas.DPMM(1), canvas.DefaultColorSpace)
	c.RenderTo(ras)
	ras.Close()
	return r.surface
}

// MeasureFont implements layout.MetricsSource: cap height as ascent, face descent.
func (r *Renderer) MeasureFont(family string, size float64) (float64, float64) {
	face, err := r.measureFace(family, size)
	if err != nil {
		return 0, 0
	}
	m := face.Metrics()
	ascent := m.CapHeight
	if ascent <= 0 {
		ascent = m.Ascent
	}
	return ascent, math.Abs(m.Descent)
}

// MeasureChar implements layout.MetricsSource.
func (r *Renderer) MeasureChar(family string, size float64, ch rune) float64 {
	face, err := r.measureFace(family, size)
	if err != nil {
		return 0
	}
	return face.TextWidth(string(ch))
}

// measureFace reuses whatever the last Prepare or render settled on for the
// family, degraded or not; only the first use of a family loads it.
func (r *Renderer) measureFace(family string, size float64) (*canvas.FontFace, error) {
	fam, _, err := r.resolve(context.Background(), family)
	if err != nil {
		return nil, err
	}
	return fam.Face(size*ptPerUnit, canvas.Black, canvas.FontRegular, canvas.FontNormal), nil
}

// Prepare waits for the requested family to be loaded, bounded by ctx.
// When it cannot be loaded the embedded fallback family is used instead and
// the returned Status is marked degraded; only a broken fallback is an error.
// A degraded outcome is kept for later measurement and rendering until the
// next Prepare of the same family, which loads it again.
func (r *Renderer) Prepare(ctx context.Context, family string) (*canvas.FontFamily, Status, error) {
	entry, _ := fonts.Lookup(family)
	r.fontMu.Lock()
	if e, ok := r.families[entry.Family]; ok && e.status.Degraded {
		delete(r.families, entry.Family)
	}
	r.fontMu.Unlock()
	return r.resolve(ctx, family)
}

// resolve returns the settled family for the request, loading it once on
// first use. Loads are bounded by fonts.FetchTimeout even when ctx carries no
// deadline, and both outcomes are recorded so one pass makes one attempt.
func (r *Renderer) resolve(ctx context.Context, family string) (*canvas.FontFamily, Status, error) {
	entry, known := fonts.Lookup(family)
	key := entry.Family

	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if e, ok := r.families[key]; ok {
		return e.family, withRequest(e.status, family, known), nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, fonts.FetchTimeout)
	defer cancel()
	fam, err := loadFamily(loadCtx, r.cache, entry)
	if err == nil {
		e := &fontFamilyEntry{family: fam, status: Status{Family: entry.Family}}
		r.families[key] = e
		return fam, withRequest(e.status, family, known), nil
	}

	fallback, fbErr := r.fallbackFamily()
	if fbErr != nil {
		return nil, Status{}, fmt.Errorf("load font %q: %w (fallback: %v)", entry.Family, err, fbErr)
	}
	e := &fontFamilyEntry{
		family: fallback,
		status: Status{Family: fonts.Fallback().Family, Degraded: true, Reason: err.Error()},
	}
	r.families[key] = e
	log.Printf("字体 %s 加载失败，改用回退字体 %s: %s", entry.Family, e.status.Family, e.status.Reason)
	return fallback, e.status, nil
}

// withRequest marks statuses for unknown family names, which silently map to
// the first registry entry.
func withRequest(s Status, requested string, known bool) Status {
	if !known && requested != "" && !s.Degraded {
		s.Reason = fmt.Sprintf("unknown family %q, using %s", requested, s.Family)
	}
	return s
}

func loadFamily(ctx context.Context, cache *fonts.Cache, entry fonts.Entry) (*canvas.FontFamily, error) {
	_, data, err := cache.Get(ctx, entry.Family)
	if err != nil {
		return nil, err
	}
	fam := canvas.NewFontFamily(entry.Family)
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("parse font %q: %w", entry.Family, err)
	}
	return fam, nil
}

// fallbackFamily loads the fallback stack straight from the embedded fonts,
// bypassing the cache and its fetcher.
func (r *Renderer) fallbackFamily() (*canvas.FontFamily, error) {
	if r.fallback != nil {
		return r.fallback, nil
	}
	entry := fonts.Fallback()
	data, err := fonts.Embedded{}.Fetch(context.Background(), entry)
	if err != nil {
		return nil, err
	}
	fam := canvas.NewFontFamily("tiletext-fallback")
	if err := fam.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallback = fam
	return fam, nil
}

func colorFromLayout(c layout.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}
