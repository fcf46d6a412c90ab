package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{\s*([^}]*?)\s*\}`)

// Interpolate 将消息中的 ${path.to.value} 替换为 data 中的值，支持 items[0] 形式的下标。
// data 为空或路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := placeholder.FindStringSubmatch(match)[1]
		if path == "" {
			return match
		}
		val, ok := Resolve(data, path)
		if !ok {
			return match
		}
		return format(val)
	})
}

// Resolve 按点分路径在解码后的 JSON 数据中取值。
func Resolve(data any, path string) (any, bool) {
	current := data
	for _, part := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(part, "[")
		if name != "" {
			obj, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = obj[name]; !ok {
				return nil, false
			}
		}
		for rest != "" {
			idxStr, after, found := strings.Cut(rest, "]")
			if !found {
				return nil, false
			}
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
			rest = strings.TrimPrefix(after, "[")
		}
	}
	return current, true
}

// format 输出标量值；JSON 数字若为整数则不带小数部分。
func format(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
