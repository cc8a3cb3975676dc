package grid

// HeightSource supplies terrain elevation levels per cell. Implementations
// return 0 for unknown cells; callers additionally treat NaN as 0.
type HeightSource interface {
	TerrainHeight(gx, gy int) float64
}

// HeightField is a dense row-major elevation map.
type HeightField struct {
	width  int
	height int
	levels []float64
}

// NewHeightField allocates a flat (all zero) field.
func NewHeightField(width, height int) *HeightField {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &HeightField{
		width:  width,
		height: height,
		levels: make([]float64, width*height),
	}
}

// Set writes an elevation level; out-of-range cells are ignored.
func (f *HeightField) Set(gx, gy int, level float64) {
	if f == nil || gx < 0 || gy < 0 || gx >= f.width || gy >= f.height {
		return
	}
	f.levels[gy*f.width+gx] = finite(level)
}

// Fill sets a rectangular region [x0,x1] x [y0,y1] to one level.
func (f *HeightField) Fill(x0, y0, x1, y1 int, level float64) {
	for gy := y0; gy <= y1; gy++ {
		for gx := x0; gx <= x1; gx++ {
			f.Set(gx, gy, level)
		}
	}
}

// TerrainHeight implements HeightSource. Unknown cells read as level 0.
func (f *HeightField) TerrainHeight(gx, gy int) float64 {
	if f == nil || gx < 0 || gy < 0 || gx >= f.width || gy >= f.height {
		return 0
	}
	return finite(f.levels[gy*f.width+gx])
}
