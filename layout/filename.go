package layout

import (
	"regexp"
	"strings"
)

const maxSlugLen = 32

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Slug 由规整后的消息生成文件名片段：非字母数字的连续字符折叠为 "-"，
// 截断到 32 个字符，为空时返回 "pattern"。
func Slug(message string) string {
	text := strings.Join(Normalize(message), " ")
	slug := strings.Trim(nonAlnum.ReplaceAllString(text, "-"), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "pattern"
	}
	return slug
}

// FileName 返回 <字体名小写>-<slug>.<ext>，例如 "go-mono-MEET-AT-7.svg"。
// family 应为注册表实际解析出的字体名，而非请求中的原始名称。
func FileName(family, message, ext string) string {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = strings.ToLower(DefaultFontFamily)
	}
	family = nonAlnum.ReplaceAllString(family, "-")
	return family + "-" + Slug(message) + "." + strings.TrimPrefix(ext, ".")
}
