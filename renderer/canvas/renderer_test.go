package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ByLCY/tiletext/fonts"
	"github.com/ByLCY/tiletext/layout"
	"github.com/ByLCY/tiletext/renderer"
)

func meetAt7() layout.Config {
	cfg := layout.DefaultConfig()
	cfg.Message = "MEET AT 7"
	cfg.Width = 800
	cfg.Height = 400
	cfg.FontSize = 32
	return cfg
}

func TestMetricsSourceUsesFontFaces(t *testing.T) {
	r := NewRenderer(nil)
	ascent, descent := r.MeasureFont("Go Mono", 32)
	if ascent <= 0 || ascent >= 32 || descent <= 0 {
		t.Fatalf("implausible metrics: ascent=%g descent=%g", ascent, descent)
	}
	wm, wi := r.MeasureChar("Go Mono", 32, 'M'), r.MeasureChar("Go Mono", 32, 'I')
	if wm <= 0 || math.Abs(wm-wi) > 1e-6 {
		t.Fatalf("monospace widths differ: M=%g I=%g", wm, wi)
	}
	// 字宽随字号线性缩放
	if w64 := r.MeasureChar("Go Mono", 64, 'M'); math.Abs(w64-2*wm) > 1e-3 {
		t.Fatalf("width should scale with size: 32→%g 64→%g", wm, w64)
	}
}

func TestRenderProducesPNGOfClampedSize(t *testing.T) {
	r := NewRenderer(nil)
	cfg := meetAt7()
	cfg.Width = 20 // 钳制到 64
	cfg.Height = 100
	out, err := r.Render(context.Background(), layout.Build(cfg, r))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 100 {
		t.Fatalf("unexpected size %v", b)
	}
}

func TestRenderFillsBackgroundAndDrawsText(t *testing.T) {
	r := NewRenderer(nil)
	cfg := meetAt7()
	cfg.RepeatToFill = false
	cfg.Background = layout.Color{R: 255, G: 255, B: 255}
	cfg.Foreground = layout.Color{R: 0, G: 0, B: 0}
	if _, err := r.Render(context.Background(), layout.Build(cfg, r)); err != nil {
		t.Fatalf("Render: %v", err)
	}
	surface := r.Surface()
	// 单行模式下右下角没有文字
	if c := surface.RGBAAt(799, 399); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Fatalf("expected white background at bottom-right, got %v", c)
	}
	dark := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 200; x++ {
			if surface.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("expected glyph pixels in the first row")
	}
}

func TestSurfaceReusedUntilSizeChanges(t *testing.T) {
	r := NewRenderer(nil)
	ctx := context.Background()
	cfg := meetAt7()
	if _, err := r.Render(ctx, layout.Build(cfg, r)); err != nil {
		t.Fatal(err)
	}
	first := r.Surface()
	cfg.Message = "OTHER"
	if _, err := r.Render(ctx, layout.Build(cfg, r)); err != nil {
		t.Fatal(err)
	}
	if r.Surface() != first {
		t.Fatalf("surface must be reused when dimensions are unchanged")
	}
	cfg.Width = 640
	if _, err := r.Render(ctx, layout.Build(cfg, r)); err != nil {
		t.Fatal(err)
	}
	if r.Surface() == first || r.Surface().Bounds().Dx() != 640 {
		t.Fatalf("surface must be reallocated on resize")
	}
}

func TestRasterizeDrawsIntoRetainedSurface(t *testing.T) {
	r := NewRenderer(nil)
	cfg := meetAt7()
	cfg.Width, cfg.Height = 2000, 2000
	cfg.RepeatToFill = false
	plan := layout.Build(cfg, r)
	if _, err := r.Render(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	c, err := r.paint(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	r.surfaceMu.Lock()
	img := r.rasterize(c, plan.Config)
	r.surfaceMu.Unlock()
	runtime.ReadMemStats(&after)

	if img != r.Surface() {
		t.Fatalf("rasterize must return the retained surface")
	}
	surfaceBytes := uint64(len(img.Pix))
	if grown := after.TotalAlloc - before.TotalAlloc; grown > surfaceBytes/2 {
		t.Fatalf("rasterize allocated %d bytes for a %d byte surface of unchanged size", grown, surfaceBytes)
	}
}

func TestAlternationChangesPixels(t *testing.T) {
	r := NewRenderer(nil)
	ctx := context.Background()
	cfg := meetAt7()
	cfg.Message = "L"
	cfg.RepeatGap = 20

	if _, err := r.Render(ctx, layout.Build(cfg, r)); err != nil {
		t.Fatal(err)
	}
	plain := append([]byte(nil), r.Surface().Pix...)
	cfg.AlternateMirror = true
	if _, err := r.Render(ctx, layout.Build(cfg, r)); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(plain, r.Surface().Pix) {
		t.Fatalf("mirrored segments should differ from the plain render")
	}
}

func TestRenderWithoutPlanFails(t *testing.T) {
	r := NewRenderer(nil)
	if _, err := r.Render(context.Background(), nil); !errors.Is(err, renderer.ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
}

func TestPrepareDegradesOnTimeout(t *testing.T) {
	slow := fonts.FetcherFunc(func(ctx context.Context, e fonts.Entry) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	r := NewRenderer(fonts.NewCache(slow))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	fam, status, err := r.Prepare(ctx, "Go Mono")
	if err != nil {
		t.Fatalf("Prepare must not fail when the fallback is available: %v", err)
	}
	if fam == nil || !status.Degraded || status.Family != "Go" {
		t.Fatalf("expected degraded status on Go, got %+v", status)
	}

	cfg := meetAt7()
	cfg.FontFamily = "Go Mono"
	if _, err := r.Render(ctx, layout.Build(cfg, nil)); err != nil {
		t.Fatalf("render must proceed with the fallback: %v", err)
	}
	if !r.LastStatus().Degraded {
		t.Fatalf("LastStatus should report degradation")
	}
}

func TestMeasuringAfterDegradedPrepareDoesNotBlock(t *testing.T) {
	slow := fonts.FetcherFunc(func(ctx context.Context, e fonts.Entry) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	r := NewRenderer(fonts.NewCache(slow))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, status, err := r.Prepare(ctx, "Go Mono"); err != nil || !status.Degraded {
		t.Fatalf("expected degraded Prepare, got %+v err %v", status, err)
	}

	cfg := meetAt7()
	cfg.FontFamily = "Go Mono"
	done := make(chan *layout.Plan, 1)
	go func() { done <- layout.Build(cfg, r) }()
	select {
	case plan := <-done:
		// 回退字体 Go 的真实度量，而非 0.8/0.2 估计值
		if plan.LineMetrics.Ascent == 0.8*cfg.FontSize {
			t.Fatalf("expected fallback face metrics, got estimates %+v", plan.LineMetrics)
		}
		if _, err := r.Render(context.Background(), plan); err != nil {
			t.Fatalf("render: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("layout.Build through the renderer blocked after a degraded Prepare")
	}
}

func TestFailedFamilyFetchedOncePerPass(t *testing.T) {
	var calls atomic.Int32
	var offline atomic.Bool
	offline.Store(true)
	r := NewRenderer(fonts.NewCache(fonts.FetcherFunc(func(ctx context.Context, e fonts.Entry) ([]byte, error) {
		calls.Add(1)
		if offline.Load() {
			return nil, errors.New("offline")
		}
		return fonts.Embedded{}.Fetch(ctx, e)
	})))
	cfg := meetAt7()
	cfg.Message = "ABCDEFGHIJ"
	cfg.FontFamily = "Go Mono"
	if _, err := r.Render(context.Background(), layout.Build(cfg, r)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one fetch attempt, got %d", n)
	}
	if !r.LastStatus().Degraded {
		t.Fatalf("render should report the degraded family")
	}

	// 下一次显式 Prepare 重新加载
	offline.Store(false)
	if _, status, err := r.Prepare(context.Background(), "Go Mono"); err != nil || status.Degraded {
		t.Fatalf("Prepare should recover, got %+v err %v", status, err)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected a second attempt on Prepare, got %d", n)
	}
}

func TestRenderPDF(t *testing.T) {
	r := NewRenderer(nil)
	out, err := r.RenderPDF(context.Background(), layout.Build(meetAt7(), r))
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
