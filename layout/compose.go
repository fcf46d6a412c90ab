package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// AltFlags 控制交替片段的几何变换。
type AltFlags struct {
	Flip   bool
	Mirror bool
}

// Place 计算某行某列片段的放置指令。
// (row+col) 为奇数时视为交替片段，按 flags 施加翻转和/或镜像；否则保持原样。
func Place(row, col int, x, y, width, lineHeight float64, flags AltFlags) Segment {
	seg := Segment{
		Row:    row,
		Column: col,
		X:      x,
		Y:      y,
		Width:  width,
		Height: lineHeight,
	}
	if (row+col)%2 == 1 {
		if flags.Flip {
			seg.Transform |= TransformFlip
		}
		if flags.Mirror {
			seg.Transform |= TransformMirror
		}
	}
	return seg
}

// Center 返回片段中心，变换围绕该点进行。
func (s Segment) Center() (float64, float64) {
	return s.X + s.Width/2, s.Y + s.Height/2
}

// OpKind 是变换步骤的种类。
type OpKind int

const (
	OpTranslate OpKind = iota
	OpRotate
	OpScale
)

// Op 是一个变换步骤；Rotate 只用 X（角度），其余使用 X/Y。
type Op struct {
	Kind OpKind
	X, Y float64
}

// Ops 返回片段的变换步骤，恒等变换返回 nil。
// 顺序固定：平移到中心 → 旋转 180°（flip）→ 水平缩放 -1（mirror）→ 平移回去。
// 旋转与镜像不可交换，栅格与矢量后端都直接消费这一序列。
func (s Segment) Ops() []Op {
	if s.Transform == TransformIdentity {
		return nil
	}
	cx, cy := s.Center()
	ops := []Op{{Kind: OpTranslate, X: cx, Y: cy}}
	if s.Transform.Flip() {
		ops = append(ops, Op{Kind: OpRotate, X: 180})
	}
	if s.Transform.Mirror() {
		ops = append(ops, Op{Kind: OpScale, X: -1, Y: 1})
	}
	return append(ops, Op{Kind: OpTranslate, X: -cx, Y: -cy})
}

// SVG 以 SVG transform 语法输出单个步骤。
func (o Op) SVG() string {
	switch o.Kind {
	case OpTranslate:
		return fmt.Sprintf("translate(%s %s)", FormatNumber(o.X), FormatNumber(o.Y))
	case OpRotate:
		return fmt.Sprintf("rotate(%s)", FormatNumber(o.X))
	case OpScale:
		return fmt.Sprintf("scale(%s %s)", FormatNumber(o.X), FormatNumber(o.Y))
	default:
		return ""
	}
}

// TransformAttr 将步骤序列拼接为 transform 属性值。
func TransformAttr(ops []Op) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		parts = append(parts, op.SVG())
	}
	return strings.Join(parts, " ")
}

// FormatNumber 以最短形式输出数值，保留至多 4 位小数。
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		return "0"
	}
	return s
}
