package layout

// 该文件定义排版配置与铺排结果，供布局计算、渲染与调试 JSON 共用。

// Config 描述一次渲染请求（对应 LayoutConfig）。
// 每次渲染都构造新的 Config；Clamped 返回副本，从不修改原值。
type Config struct {
	Message         string  `json:"message"`
	Width           float64 `json:"width"`  // 画布宽度（px）
	Height          float64 `json:"height"` // 画布高度（px）
	FontSize        float64 `json:"fontSize"`
	FontFamily      string  `json:"fontFamily"`
	Foreground      Color   `json:"foreground"`
	Background      Color   `json:"background"`
	LetterSpacing   float64 `json:"letterSpacing"`
	LineSpacing     float64 `json:"lineSpacing"`
	RepeatToFill    bool    `json:"repeatToFill"`
	RepeatGap       float64 `json:"repeatGap"`
	AlternateFlip   bool    `json:"alternateFlip"`
	AlternateMirror bool    `json:"alternateMirror"`
}

// Color 采用 0-255 的 RGB 数值，始终不透明。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// LineMetrics 是某一字体/字号下的上升部与下降部，所有字符共用一组。
type LineMetrics struct {
	Ascent  float64 `json:"ascent"`
	Descent float64 `json:"descent"`
}

// Transform 标记片段的几何变换，可组合。
type Transform uint8

const (
	TransformIdentity Transform = 0
	TransformFlip     Transform = 1 << iota // 绕片段中心旋转 180°
	TransformMirror                         // 绕片段中心水平镜像
)

func (t Transform) Flip() bool   { return t&TransformFlip != 0 }
func (t Transform) Mirror() bool { return t&TransformMirror != 0 }

// String 返回调试输出使用的名称。
func (t Transform) String() string {
	switch t {
	case TransformIdentity:
		return "identity"
	case TransformFlip:
		return "point-reflect-180"
	case TransformMirror:
		return "mirror-horizontal"
	case TransformFlip | TransformMirror:
		return "point-reflect-180+mirror-horizontal"
	default:
		return "unknown"
	}
}

// MarshalText 让调试 JSON 输出可读的变换名称。
func (t Transform) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Segment 是一条放置指令：某行某列绘制一整行文本。
// X/Y 为片段左上角，Width/Height 为测得片段宽度与行高。
type Segment struct {
	Row       int       `json:"row"`
	Column    int       `json:"column"`
	Text      string    `json:"text"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Transform Transform `json:"transform"`
}
