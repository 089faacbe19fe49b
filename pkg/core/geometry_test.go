package core

import "testing"

func TestBoundsCenter(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		wantX  int
		wantY  int
	}{
		{"simple", Bounds{X: 100, Y: 200, Width: 200, Height: 200}, 200, 300},
		{"origin", Bounds{X: 0, Y: 0, Width: 100, Height: 50}, 50, 25},
		{"odd size rounds down", Bounds{X: 0, Y: 0, Width: 5, Height: 5}, 2, 2},
		{"empty", Bounds{X: 10, Y: 20}, 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.bounds.Center()
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Center() = (%d,%d), want (%d,%d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 20, Height: 20}

	if !b.Contains(10, 10) {
		t.Error("top-left corner should be inside")
	}
	if b.Contains(30, 30) {
		t.Error("bottom-right edge is exclusive")
	}
	if b.Contains(9, 15) {
		t.Error("point left of bounds should be outside")
	}
}

func TestBoundsString(t *testing.T) {
	b := Bounds{X: 100, Y: 200, Width: 200, Height: 200}
	if got, want := b.String(), "[100,200][300,400]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBoundsEmpty(t *testing.T) {
	if !(Bounds{X: 5, Y: 5}).Empty() {
		t.Error("zero-size bounds should be empty")
	}
	if (Bounds{Width: 1, Height: 1}).Empty() {
		t.Error("1x1 bounds should not be empty")
	}
}
