package layout

// 回退系数：后端无法给出度量时按字号估算。
const (
	fallbackAscent  = 0.8
	fallbackDescent = 0.2
	fallbackAdvance = 0.6
)

// Metrics 将 MetricsSource 绑定到某一字体与字号，并负责回退与按字符缓存。
// 每次渲染构造一次，不跨渲染共享。
type Metrics struct {
	src    MetricsSource
	family string
	size   float64
	line   LineMetrics
	widths map[rune]float64
}

// NewMetrics 测量行度量并返回绑定后的 Metrics。src 为 nil 时全部使用回退值。
func NewMetrics(src MetricsSource, family string, size float64) *Metrics {
	m := &Metrics{
		src:    src,
		family: family,
		size:   size,
		widths: map[rune]float64{},
	}
	var ascent, descent float64
	if src != nil {
		ascent, descent = src.MeasureFont(family, size)
	}
	if !finite(ascent) || !finite(descent) || ascent <= 0 || descent < 0 || ascent+descent <= 0 {
		ascent, descent = fallbackAscent*size, fallbackDescent*size
	}
	m.line = LineMetrics{Ascent: ascent, Descent: descent}
	return m
}

// Family 返回绑定的字体名称。
func (m *Metrics) Family() string { return m.family }

// Size 返回绑定的字号（px）。
func (m *Metrics) Size() float64 { return m.size }

// Line 返回行度量。
func (m *Metrics) Line() LineMetrics { return m.line }

// Char 返回字符的前进宽度，后端返回 0 或无效值时取 0.6×字号。
func (m *Metrics) Char(ch rune) float64 {
	if w, ok := m.widths[ch]; ok {
		return w
	}
	var w float64
	if m.src != nil {
		w = m.src.MeasureChar(m.family, m.size, ch)
	}
	if !finite(w) || w <= 0 {
		w = fallbackAdvance * m.size
	}
	m.widths[ch] = w
	return w
}

// CharSpaced 返回字符宽度加上字间距。
func (m *Metrics) CharSpaced(ch rune, letterSpacing float64) float64 {
	return m.Char(ch) + letterSpacing
}

// SegmentWidth 估算整段文本的宽度，下限为 1 以保证步长为正。
func (m *Metrics) SegmentWidth(text string, letterSpacing float64) float64 {
	total := 0.0
	for _, r := range text {
		total += m.CharSpaced(r, letterSpacing)
	}
	if total < 1 {
		return 1
	}
	return total
}

// Offsets 返回每个字符相对片段起点的横向偏移，两个后端都按此放置字符。
func (m *Metrics) Offsets(text string, letterSpacing float64) []float64 {
	offsets := make([]float64, 0, len(text))
	x := 0.0
	for _, r := range text {
		offsets = append(offsets, x)
		x += m.CharSpaced(r, letterSpacing)
	}
	return offsets
}
