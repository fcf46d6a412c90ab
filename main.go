package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ByLCY/tiletext/dsl"
	"github.com/ByLCY/tiletext/fonts"
	"github.com/ByLCY/tiletext/layout"
	"github.com/ByLCY/tiletext/renderer"
	canvasrenderer "github.com/ByLCY/tiletext/renderer/canvas"
	svgrenderer "github.com/ByLCY/tiletext/renderer/svg"
)

// fontWait 是等待字体就绪的上限，超时后以回退字体继续渲染。
const fontWait = 2 * time.Second

func main() {
	input := flag.String("in", "", "预设文件路径（为空时使用默认配置）")
	name := flag.String("pattern", "", "预设名称（默认取文件中的第一个）")
	outDir := flag.String("out", "output", "输出目录")
	format := flag.String("format", "both", "输出格式：png / svg / pdf / both")
	message := flag.String("message", "", "覆盖预设中的消息文本")
	dataJSON := flag.String("data", "", "用于 ${path} 插值的 JSON 数据")
	measure := flag.String("measure", "canvas", "度量后端：canvas / sfnt")
	fontDir := flag.String("font-dir", "", "从目录读取字体资源（默认使用内置 Go 字体）")
	minifySVG := flag.Bool("minify", false, "压缩 SVG 输出")
	debug := flag.String("debug", "", "铺排调试 JSON 输出路径")
	flag.Parse()

	var data any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg, err := loadConfig(*input, *name, data)
	if err != nil {
		log.Fatalf("读取预设失败: %v", err)
	}
	if *message != "" {
		cfg.Message = *message
	}

	var fetcher fonts.Fetcher
	if *fontDir != "" {
		fetcher = fonts.Dir(*fontDir)
	}
	opts := options{
		outDir:  *outDir,
		formats: parseFormats(*format),
		measure: *measure,
		minify:  *minifySVG,
		debug:   *debug,
		cache:   fonts.NewCache(fetcher),
	}
	written, err := run(context.Background(), cfg, opts)
	for _, path := range written {
		fmt.Printf("已生成：%s\n", path)
	}
	if err != nil {
		log.Fatalf("生成失败: %v", err)
	}
}

type options struct {
	outDir  string
	formats map[string]bool
	measure string
	minify  bool
	debug   string
	cache   *fonts.Cache
}

func loadConfig(path, name string, data any) (layout.Config, error) {
	if path == "" {
		return layout.DefaultConfig(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return layout.Config{}, fmt.Errorf("无法打开预设文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return layout.Config{}, fmt.Errorf("解析预设失败: %w", err)
	}
	p, ok := doc.Lookup(name)
	if !ok {
		return layout.Config{}, fmt.Errorf("预设文件中找不到 pattern %q", name)
	}
	return layout.FromPreset(p, data)
}

func parseFormats(v string) map[string]bool {
	out := map[string]bool{}
	for _, f := range strings.Split(strings.ToLower(v), ",") {
		switch f = strings.TrimSpace(f); f {
		case "both":
			out["png"], out["svg"] = true, true
		case "png", "svg", "pdf":
			out[f] = true
		}
	}
	return out
}

// run 串联排版与各后端输出。某一格式失败不影响已写出的文件，返回已写出的路径。
func run(ctx context.Context, cfg layout.Config, opts options) ([]string, error) {
	raster := canvasrenderer.NewRenderer(opts.cache)

	var src layout.MetricsSource = raster
	if opts.measure == "sfnt" {
		src = fonts.NewMeasurer(opts.cache)
	}

	waitCtx, cancel := context.WithTimeout(ctx, fontWait)
	_, status, err := raster.Prepare(waitCtx, cfg.FontFamily)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("准备字体失败: %w", err)
	}
	if status.Reason != "" && !status.Degraded {
		log.Printf("字体状态: %s", status.Reason)
	}

	plan := layout.Build(cfg, src)
	if opts.debug != "" {
		if err := writeDebug(plan, opts.debug); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}

	outputs := []struct {
		ext string
		r   renderer.Renderer
	}{
		{"png", raster},
		{"pdf", pdfRenderer{raster}},
		{"svg", svgrenderer.NewRenderer(svgrenderer.Options{Cache: opts.cache, Minify: opts.minify})},
	}
	family, _ := fonts.Lookup(plan.Config.FontFamily)
	var written []string
	for _, out := range outputs {
		if !opts.formats[out.ext] {
			continue
		}
		blob, err := out.r.Render(ctx, plan)
		if err != nil {
			return written, fmt.Errorf("渲染 %s 失败: %w", out.ext, err)
		}
		path := filepath.Join(opts.outDir, layout.FileName(family.Family, plan.Config.Message, out.ext))
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return written, fmt.Errorf("写入 %s 失败: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// pdfRenderer 将画布渲染器的 PDF 输出适配为 renderer.Renderer。
type pdfRenderer struct{ r *canvasrenderer.Renderer }

func (p pdfRenderer) Render(ctx context.Context, plan *layout.Plan) ([]byte, error) {
	return p.r.RenderPDF(ctx, plan)
}

func writeDebug(plan *layout.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(plan, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
