package layout

// MetricsSource 提供字体度量，由渲染后端注入（画布字体面或 sfnt 解析器）。
// 返回零或非有限值时由 Metrics 使用确定性的回退值。
type MetricsSource interface {
	// MeasureFont 返回代表字形的上升部与下降部。
	MeasureFont(family string, size float64) (ascent, descent float64)
	// MeasureChar 返回单个字符的前进宽度。
	MeasureChar(family string, size float64, ch rune) float64
}
