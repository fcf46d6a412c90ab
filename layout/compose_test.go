package layout

import (
	"reflect"
	"testing"
)

func TestPlaceAlternationParity(t *testing.T) {
	cases := []struct {
		row, col int
		flags    AltFlags
		want     Transform
	}{
		{0, 0, AltFlags{Flip: true, Mirror: true}, TransformIdentity},
		{0, 1, AltFlags{Flip: true}, TransformFlip},
		{1, 0, AltFlags{Mirror: true}, TransformMirror},
		{0, 1, AltFlags{Flip: true, Mirror: true}, TransformFlip | TransformMirror},
		{1, 1, AltFlags{Flip: true, Mirror: true}, TransformIdentity},
		{2, 3, AltFlags{}, TransformIdentity},
	}
	for _, c := range cases {
		seg := Place(c.row, c.col, 0, 0, 10, 10, c.flags)
		if seg.Transform != c.want {
			t.Fatalf("row=%d col=%d flags=%+v: got %v want %v", c.row, c.col, c.flags, seg.Transform, c.want)
		}
	}
}

// TestOpsOrder 验证变换顺序：平移到中心 → 旋转 → 镜像 → 平移回去。
func TestOpsOrder(t *testing.T) {
	seg := Place(0, 1, 100, 20, 60, 10, AltFlags{Flip: true, Mirror: true})
	want := []Op{
		{Kind: OpTranslate, X: 130, Y: 25},
		{Kind: OpRotate, X: 180},
		{Kind: OpScale, X: -1, Y: 1},
		{Kind: OpTranslate, X: -130, Y: -25},
	}
	if got := seg.Ops(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops: got %+v want %+v", got, want)
	}
	if attr := TransformAttr(seg.Ops()); attr != "translate(130 25) rotate(180) scale(-1 1) translate(-130 -25)" {
		t.Fatalf("attr: got %q", attr)
	}

	mirror := Place(1, 0, 0, 0, 5, 3, AltFlags{Mirror: true})
	if attr := TransformAttr(mirror.Ops()); attr != "translate(2.5 1.5) scale(-1 1) translate(-2.5 -1.5)" {
		t.Fatalf("mirror attr: got %q", attr)
	}
	if ops := Place(0, 0, 0, 0, 5, 3, AltFlags{Flip: true}).Ops(); ops != nil {
		t.Fatalf("identity must have no ops, got %+v", ops)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{0: "0", -0.00001: "0", 1.5: "1.5", 12.34567: "12.3457", -3: "-3", 800: "800"}
	for in, want := range cases {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%g): got %q want %q", in, got, want)
		}
	}
}
