package layout

import (
	"fmt"
	"strings"

	"github.com/ByLCY/tiletext/binding"
	"github.com/ByLCY/tiletext/dsl"
)

// FromPreset 将预设块转换为 Config，未出现的键保留 DefaultConfig 的取值。
// 消息中的 ${path} 占位符由 data 插值。数值范围不在此校验，由 Clamped 统一钳制。
func FromPreset(p *dsl.Pattern, data any) (Config, error) {
	cfg := DefaultConfig()
	if p == nil {
		return cfg, fmt.Errorf("预设为空")
	}
	for _, entry := range p.Entries {
		if err := applyEntry(&cfg, entry, data); err != nil {
			return cfg, fmt.Errorf("预设 %s 第 %d 行 %s: %w", p.Name, entry.Pos.Line, entry.Key, err)
		}
	}
	return cfg, nil
}

func applyEntry(cfg *Config, entry *dsl.Entry, data any) error {
	v := entry.Value
	var err error
	switch strings.ToLower(entry.Key) {
	case "message", "text":
		cfg.Message = binding.Interpolate(v.Raw(), data)
	case "width":
		cfg.Width, err = v.Float()
	case "height":
		cfg.Height, err = v.Float()
	case "size", "font-size":
		cfg.FontSize, err = v.Float()
	case "font", "font-family":
		cfg.FontFamily = v.Raw()
	case "foreground", "color":
		cfg.Foreground, err = ParseColor(v.Raw())
	case "background":
		cfg.Background, err = ParseColor(v.Raw())
	case "letter-spacing":
		cfg.LetterSpacing, err = v.Float()
	case "line-spacing":
		cfg.LineSpacing, err = v.Float()
	case "gap", "repeat-gap":
		cfg.RepeatGap, err = v.Float()
	case "repeat", "repeat-to-fill":
		cfg.RepeatToFill, err = v.Boolean()
	case "flip", "alternate-flip":
		cfg.AlternateFlip, err = v.Boolean()
	case "mirror", "alternate-mirror":
		cfg.AlternateMirror, err = v.Boolean()
	default:
		return fmt.Errorf("未知的设置项")
	}
	return err
}
