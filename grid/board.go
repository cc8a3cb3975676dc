package grid

import (
	"math"

	"github.com/jakecoffman/cp"
)

const (
	// DefaultTileWorldSize is the world-unit edge length of one grid cell.
	DefaultTileWorldSize = 1.0
	// DefaultElevationUnit maps one terrain elevation level to world Y units.
	DefaultElevationUnit = 0.5
)

// Board is the pure grid/world conversion layer. It has no mutable state;
// all methods are safe to call from anywhere.
type Board struct {
	Width         int
	Height        int
	TileWorldSize float64
	ElevationUnit float64
}

// NewBoard creates a board with default tile and elevation scaling.
func NewBoard(width, height int) *Board {
	return &Board{
		Width:         width,
		Height:        height,
		TileWorldSize: DefaultTileWorldSize,
		ElevationUnit: DefaultElevationUnit,
	}
}

// InBounds reports whether the cell is on the board.
func (b *Board) InBounds(gx, gy int) bool {
	if b == nil {
		return false
	}
	return gx >= 0 && gy >= 0 && gx < b.Width && gy < b.Height
}

// GridToWorld returns the world-space center of a cell at the given
// elevation level.
func (b *Board) GridToWorld(gx, gy int, level float64) Vec3 {
	half := b.TileWorldSize * 0.5
	return Vec3{
		X: float64(gx)*b.TileWorldSize + half,
		Y: finite(level) * b.ElevationUnit,
		Z: float64(gy)*b.TileWorldSize + half,
	}
}

// WorldToGrid maps a world XZ point to the containing cell, clamped to the
// board edge so a point slightly off the board still resolves to a cell.
func (b *Board) WorldToGrid(x, z float64) (int, int) {
	gx := int(math.Floor(finite(x) / b.TileWorldSize))
	gy := int(math.Floor(finite(z) / b.TileWorldSize))
	if gx < 0 {
		gx = 0
	}
	if gy < 0 {
		gy = 0
	}
	if gx >= b.Width {
		gx = b.Width - 1
	}
	if gy >= b.Height {
		gy = b.Height - 1
	}
	return gx, gy
}

// TileCenter returns the XZ-plane center of a cell.
func (b *Board) TileCenter(gx, gy int) cp.Vector {
	half := b.TileWorldSize * 0.5
	return cp.Vector{
		X: float64(gx)*b.TileWorldSize + half,
		Y: float64(gy)*b.TileWorldSize + half,
	}
}

// HalfExtent returns half the tile edge length, the containment radius used
// when clamping a displacement to a cell footprint.
func (b *Board) HalfExtent() float64 {
	return b.TileWorldSize * 0.5
}
