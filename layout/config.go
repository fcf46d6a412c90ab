package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 数值参数的取值范围，超出范围时就地钳制，不报错。
const (
	MinSurface = 64
	MaxSurface = 16000

	MinLetterSpacing = -100
	MaxLetterSpacing = 500
	MinLineSpacing   = -200
	MaxLineSpacing   = 500
	MinRepeatGap     = -500
	MaxRepeatGap     = 2000

	DefaultWidth      = 800
	DefaultHeight     = 400
	DefaultFontSize   = 32
	DefaultFontFamily = "Go"
)

// DefaultConfig 返回一个可直接渲染的默认配置。
func DefaultConfig() Config {
	return Config{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		FontSize:     DefaultFontSize,
		FontFamily:   DefaultFontFamily,
		Foreground:   Color{R: 17, G: 17, B: 17},
		Background:   Color{R: 255, G: 255, B: 255},
		RepeatToFill: true,
	}
}

// Clamped 返回钳制后的副本：
// 画布尺寸取整后限制在 [64, 16000]，间距类参数限制在各自范围内，
// 非有限数值回落到默认值。
func (c Config) Clamped() Config {
	out := c
	out.Width = clampSurface(c.Width, DefaultWidth)
	out.Height = clampSurface(c.Height, DefaultHeight)
	if !finite(c.FontSize) || c.FontSize <= 0 {
		out.FontSize = DefaultFontSize
	}
	out.LetterSpacing = clamp(finiteOr(c.LetterSpacing, 0), MinLetterSpacing, MaxLetterSpacing)
	out.LineSpacing = clamp(finiteOr(c.LineSpacing, 0), MinLineSpacing, MaxLineSpacing)
	out.RepeatGap = clamp(finiteOr(c.RepeatGap, 0), MinRepeatGap, MaxRepeatGap)
	if strings.TrimSpace(out.FontFamily) == "" {
		out.FontFamily = DefaultFontFamily
	}
	out.Foreground = c.Foreground.clamped()
	out.Background = c.Background.clamped()
	return out
}

func clampSurface(v, def float64) float64 {
	return clamp(math.Floor(finiteOr(v, def)), MinSurface, MaxSurface)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finiteOr(v, def float64) float64 {
	if finite(v) {
		return v
	}
	return def
}

func (c Color) clamped() Color {
	ch := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	return Color{R: ch(c.R), G: ch(c.G), B: ch(c.B)}
}

// Hex 以 #RRGGBB 形式输出颜色。
func (c Color) Hex() string {
	c = c.clamped()
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor 解析 #RGB、#RRGGBB 或 #RRGGBBAA（透明度被忽略）。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	case 8:
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("颜色格式无效: %q", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色格式无效: %q", value)
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}
