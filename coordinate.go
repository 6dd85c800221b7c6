package bag

import (
	"math"
)

// CoordinateTransform implements the affine grid<->projected conversion
// described in §4.2. It is node-centered: (row, col) names the point sample
// at (x0 + col*dx, y0 + row*dy).
type CoordinateTransform struct {
	OriginX  float64
	OriginY  float64
	SpacingX float64
	SpacingY float64
}

// NewCoordinateTransform builds a CoordinateTransform from the dataset's
// origin and node spacing.
func NewCoordinateTransform(originX, originY, dx, dy float64) CoordinateTransform {
	return CoordinateTransform{OriginX: originX, OriginY: originY, SpacingX: dx, SpacingY: dy}
}

// GridToProjected converts a (row, col) grid index to a projected (x, y)
// coordinate.
func (c CoordinateTransform) GridToProjected(row, col uint32) (x, y float64) {
	x = c.OriginX + float64(col)*c.SpacingX
	y = c.OriginY + float64(row)*c.SpacingY
	return x, y
}

// ProjectedToGrid converts a projected (x, y) coordinate to the nearest
// (row, col) grid index, rounding per §4.2's convention.
func (c CoordinateTransform) ProjectedToGrid(x, y float64) (row, col int64) {
	row = int64(math.Round((y - c.OriginY) / c.SpacingY))
	col = int64(math.Round((x - c.OriginX) / c.SpacingX))
	return row, col
}

// AspectRatio returns the dx/dy ratio used by the SEP resampler (§4.6 step
// 3) to scale the Y term of the inverse-distance weighting when the
// horizontal CRS is geographic, and 1 otherwise.
func (c CoordinateTransform) AspectRatio(geographic bool) float64 {
	if !geographic || c.SpacingY == 0 {
		return 1.0
	}
	return c.SpacingX / c.SpacingY
}
