package renderer

import (
	"context"
	"errors"

	"github.com/ByLCY/tiletext/layout"
)

// ErrNoContext 表示缺少可用的绘制/测量上下文，该次渲染直接失败。
var ErrNoContext = errors.New("missing rendering context")

// Renderer 将铺排计划输出为最终文件，例如 PNG 或 SVG。
// Render 返回生成的二进制数据以及可能的错误；失败时不返回部分结果。
type Renderer interface {
	Render(ctx context.Context, plan *layout.Plan) ([]byte, error)
}
