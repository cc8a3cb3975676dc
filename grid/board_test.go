package grid

import (
	"math"
	"testing"
)

func TestBoardRoundTrip(t *testing.T) {
	b := NewBoard(16, 12)

	cases := []struct {
		name string
		gx   int
		gy   int
	}{
		{"origin", 0, 0},
		{"middle", 7, 5},
		{"far_corner", 15, 11},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := b.GridToWorld(c.gx, c.gy, 0)
			gx, gy := b.WorldToGrid(w.X, w.Z)
			if gx != c.gx || gy != c.gy {
				t.Fatalf("roundtrip (%d,%d) -> (%d,%d)", c.gx, c.gy, gx, gy)
			}
		})
	}
}

func TestBoardElevationMapping(t *testing.T) {
	b := NewBoard(4, 4)
	w := b.GridToWorld(1, 1, 12)
	want := 12 * b.ElevationUnit
	if math.Abs(w.Y-want) > 1e-9 {
		t.Fatalf("GridToWorld level 12: Y = %v, want %v", w.Y, want)
	}
}

func TestBoardWorldToGridClamps(t *testing.T) {
	b := NewBoard(8, 8)
	gx, gy := b.WorldToGrid(-5, 1000)
	if gx != 0 || gy != 7 {
		t.Fatalf("WorldToGrid off-board = (%d,%d), want (0,7)", gx, gy)
	}
}

func TestBoardInBounds(t *testing.T) {
	b := NewBoard(8, 8)
	if !b.InBounds(0, 0) || !b.InBounds(7, 7) {
		t.Fatalf("corners should be in bounds")
	}
	if b.InBounds(-1, 0) || b.InBounds(0, 8) {
		t.Fatalf("out-of-range cells should not be in bounds")
	}
}

func TestHeightFieldUnknownReadsZero(t *testing.T) {
	f := NewHeightField(4, 4)
	f.Set(2, 2, 6)
	if got := f.TerrainHeight(2, 2); got != 6 {
		t.Fatalf("TerrainHeight(2,2) = %v, want 6", got)
	}
	if got := f.TerrainHeight(-1, 0); got != 0 {
		t.Fatalf("TerrainHeight out of range = %v, want 0", got)
	}
	f.Set(1, 1, math.NaN())
	if got := f.TerrainHeight(1, 1); got != 0 {
		t.Fatalf("NaN height should read as 0, got %v", got)
	}
}
