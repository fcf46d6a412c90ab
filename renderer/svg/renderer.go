package svgrenderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/ByLCY/tiletext/fonts"
	"github.com/ByLCY/tiletext/layout"
	"github.com/ByLCY/tiletext/renderer"
)

const mimeSVG = "image/svg+xml"

// Renderer builds self-contained SVG documents from layout plans. The font
// face is base64-embedded, so the cache it owns is shared across exports.
type Renderer struct {
	cache    *fonts.Cache
	minifier *minify.M
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the SVG renderer.
type Options struct {
	Cache  *fonts.Cache // nil uses a private cache over the embedded fonts
	Minify bool         // pass the document through tdewolff/minify
}

// NewRenderer creates an SVG renderer.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{cache: opts.Cache}
	if r.cache == nil {
		r.cache = fonts.NewCache(nil)
	}
	if opts.Minify {
		r.minifier = minify.New()
		r.minifier.AddFunc(mimeSVG, svg.Minify)
	}
	return r
}

// Render builds the document. It fails without output when the plan has no
// measurement context or the font resource cannot be fetched.
func (r *Renderer) Render(ctx context.Context, plan *layout.Plan) ([]byte, error) {
	if plan == nil || plan.Metrics == nil {
		return nil, fmt.Errorf("svg: no measurement context: %w", renderer.ErrNoContext)
	}
	fetchCtx, cancel := context.WithTimeout(ctx, fonts.FetchTimeout)
	defer cancel()
	entry, data, err := r.cache.Get(fetchCtx, plan.Config.FontFamily)
	if err != nil {
		return nil, fmt.Errorf("svg: embed font: %w", err)
	}

	var buf bytes.Buffer
	writeDocument(&buf, plan, entry, data)
	if r.minifier == nil {
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := r.minifier.Minify(mimeSVG, &out, &buf); err != nil {
		return nil, fmt.Errorf("svg: minify: %w", err)
	}
	return out.Bytes(), nil
}

// faceName is the CSS family the document declares; it is scoped to the
// document so it never resolves to an installed font of the same name.
func faceName(e fonts.Entry) string {
	return "tiletext-" + strings.ToLower(strings.ReplaceAll(e.Family, " ", "-"))
}

func writeDocument(buf *bytes.Buffer, plan *layout.Plan, entry fonts.Entry, data []byte) {
	cfg := plan.Config
	w, h := layout.FormatNumber(cfg.Width), layout.FormatNumber(cfg.Height)
	family := faceName(entry)

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n", w, h, w, h)
	buf.WriteString("<defs><style>")
	fmt.Fprintf(buf, `@font-face{font-family:"%s";src:url(data:%s;base64,%s) format("%s");}`,
		family, entry.MIME, base64.StdEncoding.EncodeToString(data), entry.Format)
	buf.WriteString("</style></defs>\n")
	fmt.Fprintf(buf, `<rect width="%s" height="%s" fill="%s"/>`+"\n", w, h, cfg.Background.Hex())
	fmt.Fprintf(buf, `<g font-family="%s" font-size="%s" fill="%s" xml:space="preserve">`+"\n",
		escape(family), layout.FormatNumber(cfg.FontSize), cfg.Foreground.Hex())

	for seg := range plan.Segments() {
		writeSegment(buf, plan, seg)
	}
	buf.WriteString("</g>\n</svg>\n")
}

// writeSegment emits one text node; non-identity segments are wrapped in a
// group whose transform lists the same steps the raster backend composes.
func writeSegment(buf *bytes.Buffer, plan *layout.Plan, seg layout.Segment) {
	ops := seg.Ops()
	if ops != nil {
		fmt.Fprintf(buf, `<g transform="%s">`, layout.TransformAttr(ops))
	}
	offsets := plan.Metrics.Offsets(seg.Text, plan.Config.LetterSpacing)
	xs := make([]string, len(offsets))
	for i, dx := range offsets {
		xs[i] = layout.FormatNumber(seg.X + dx)
	}
	fmt.Fprintf(buf, `<text x="%s" y="%s">%s</text>`,
		strings.Join(xs, " "), layout.FormatNumber(seg.Y+plan.LineMetrics.Ascent), escape(seg.Text))
	if ops != nil {
		buf.WriteString("</g>")
	}
	buf.WriteByte('\n')
}

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escape replaces the five reserved markup characters.
func escape(s string) string { return markupEscaper.Replace(s) }
