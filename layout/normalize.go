package layout

import (
	"fmt"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize 将原始文本规整为可排版的行序列：
// 统一换行符、转大写、合并空格/制表符、整体去除首尾空白，再按换行拆分。
// 空消息返回一行空串，而不是零行。
func Normalize(raw string) []string {
	s := strings.ToUpper(lineBreaks.Replace(raw))

	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !inRun {
				b.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		b.WriteRune(r)
	}

	return strings.Split(strings.TrimSpace(b.String()), "\n")
}

// NormalizeValue 接受任意可转为字符串的输入，nil 视为空串。
func NormalizeValue(v any) []string {
	switch s := v.(type) {
	case nil:
		return Normalize("")
	case string:
		return Normalize(s)
	case *string:
		if s == nil {
			return Normalize("")
		}
		return Normalize(*s)
	default:
		return Normalize(fmt.Sprint(v))
	}
}
