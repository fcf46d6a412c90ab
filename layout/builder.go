package layout

import (
	"iter"
	"math"
	"slices"
)

// Plan 是一次渲染的铺排计划：钳制后的配置、规整后的行与度量。
// 片段序列由 Segments 惰性生成，同一 Plan 重复遍历得到相同结果。
type Plan struct {
	Config      Config      `json:"config"`
	Lines       []string    `json:"lines"`
	LineMetrics LineMetrics `json:"lineMetrics"`
	LineHeight  float64     `json:"lineHeight"`
	Metrics     *Metrics    `json:"-"`

	widths []float64 // 每行片段宽度，与 Lines 一一对应
}

// Build 钳制配置、规整文本并测量字体，返回铺排计划。
// 引擎假设尺寸已钳制，不做额外恢复。
func Build(cfg Config, src MetricsSource) *Plan {
	cfg = cfg.Clamped()
	lines := Normalize(cfg.Message)
	metrics := NewMetrics(src, cfg.FontFamily, cfg.FontSize)
	lm := metrics.Line()

	p := &Plan{
		Config:      cfg,
		Lines:       lines,
		LineMetrics: lm,
		LineHeight:  math.Max(1, lm.Ascent+lm.Descent+cfg.LineSpacing),
		Metrics:     metrics,
		widths:      make([]float64, len(lines)),
	}
	for i, line := range lines {
		p.widths[i] = metrics.SegmentWidth(Visible(line), cfg.LetterSpacing)
	}
	return p
}

// Layout 是 Build(cfg, src).Segments() 的简写。
func Layout(cfg Config, src MetricsSource) iter.Seq[Segment] {
	return Build(cfg, src).Segments()
}

// Visible 返回实际绘制的文本：空行以单个空格代替，保证行依然推进。
func Visible(line string) string {
	if line == "" {
		return " "
	}
	return line
}

// Step 返回第 i 行片段的横向步长，下限为 1 以保证填充循环终止。
func (p *Plan) Step(i int) float64 {
	return math.Max(1, p.widths[i%len(p.widths)]+p.Config.RepeatGap)
}

// Segments 按行列顺序生成片段。
func (p *Plan) Segments() iter.Seq[Segment] {
	if p.Config.RepeatToFill {
		return p.fill
	}
	return p.single
}

// Collect 收集全部片段。
func (p *Plan) Collect() []Segment { return slices.Collect(p.Segments()) }

func (p *Plan) flags() AltFlags {
	return AltFlags{Flip: p.Config.AlternateFlip, Mirror: p.Config.AlternateMirror}
}

// fill 铺满画布：逐行推进 lineHeight，每行内按步长重复整行文本直到越过右边界。
func (p *Plan) fill(yield func(Segment) bool) {
	width, height := p.Config.Width, p.Config.Height
	flags := p.flags()
	n := len(p.Lines)
	for row, y := 0, 0.0; y <= height-1; row, y = row+1, y+p.LineHeight {
		i := row % n
		text := Visible(p.Lines[i])
		segWidth := p.widths[i]
		step := p.Step(i)
		for col, x := 0, 0.0; x < width; col, x = col+1, x+step {
			seg := Place(row, col, x, y, segWidth, p.LineHeight, flags)
			seg.Text = text
			if !yield(seg) {
				return
			}
		}
	}
}

// single 每行输出一个片段（第 0 列），超出画布高度的行被跳过。
func (p *Plan) single(yield func(Segment) bool) {
	flags := p.flags()
	for row, line := range p.Lines {
		y := float64(row) * p.LineHeight
		if y > p.Config.Height {
			return
		}
		seg := Place(row, 0, 0, y, p.widths[row], p.LineHeight, flags)
		seg.Text = Visible(line)
		if !yield(seg) {
			return
		}
	}
}
