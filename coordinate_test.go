package bag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoordinateTransformRoundTrip(t *testing.T) {
	ct := NewCoordinateTransform(500000.0, 4000000.0, 2.0, 2.0)

	x, y := ct.GridToProjected(10, 20)
	assert.Equal(t, 500000.0+20*2.0, x)
	assert.Equal(t, 4000000.0+10*2.0, y)

	row, col := ct.ProjectedToGrid(x, y)
	assert.Equal(t, int64(10), row)
	assert.Equal(t, int64(20), col)
}

func TestAspectRatio(t *testing.T) {
	ct := NewCoordinateTransform(0, 0, 1.0, 2.0)
	assert.Equal(t, 1.0, ct.AspectRatio(false))
	assert.Equal(t, 0.5, ct.AspectRatio(true))
}
