package layout

import (
	"encoding/json"
	"os"
)

// debugDump 是调试 JSON 的结构：计划本身加上展开后的全部片段。
type debugDump struct {
	*Plan
	Segments []Segment `json:"segments"`
}

// WriteDebugJSON 将铺排计划与片段输出为 JSON，便于调试或比对两个后端。
func WriteDebugJSON(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	data, err := json.MarshalIndent(debugDump{Plan: plan, Segments: plan.Collect()}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
