package geom

import "testing"

func TestNormalizeDegrees(t *testing.T) {
	cases := map[int]int{
		0:    0,
		359:  359,
		360:  0,
		361:  1,
		720:  0,
		-1:   359,
		-360: 0,
		-361: 359,
	}
	for in, want := range cases {
		if got := NormalizeDegrees(in); got != want {
			t.Errorf("NormalizeDegrees(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTurnStraightLeavesHeadingUnchanged(t *testing.T) {
	if got := Turn(45, 6, 0); got != 45 {
		t.Errorf("Turn(straight) = %d, want 45", got)
	}
}

func TestTurnRightWrapsAround(t *testing.T) {
	if got := Turn(358, 6, 1); got != 4 {
		t.Errorf("Turn(right) = %d, want 4", got)
	}
}

func TestTurnLeftWrapsAround(t *testing.T) {
	if got := Turn(2, 6, 2); got != 356 {
		t.Errorf("Turn(left) = %d, want 356", got)
	}
}

func TestCellFloors(t *testing.T) {
	p := Point{X: 3.9, Y: -0.1}
	x, y := p.Cell()
	if x != 3 || y != -1 {
		t.Errorf("Cell() = (%d, %d), want (3, -1)", x, y)
	}
}
