package bag

import (
	"testing"

	"github.com/bathyware/bag/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleLayout() container.Layout {
	return container.Layout{Fields: []container.Field{{Name: "value", Type: container.Float32}}}
}

func TestSimpleDescriptorMinMax(t *testing.T) {
	ds := newFakeDataset("elevation", simpleLayout(), []uint64{2, 2})
	d := NewSimpleDescriptor("elevation", Elevation, ds, 1)

	d.SetMinMax(10.0)
	d.SetMinMax(-5.0)
	d.SetMinMax(NullElevation)

	assert.Equal(t, float32(-5.0), d.MinValue())
	assert.Equal(t, float32(10.0), d.MaxValue())
	assert.True(t, d.Dirty())
	assert.EqualValues(t, 1, d.ID())

	require.NoError(t, d.FlushAttributes())
	assert.False(t, d.Dirty())

	reloaded := NewSimpleDescriptor("elevation", Elevation, ds, 2)
	assert.Equal(t, float32(-5.0), reloaded.MinValue())
	assert.Equal(t, float32(10.0), reloaded.MaxValue())
}

func TestSurfaceCorrectionDescriptorTooManyCorrectors(t *testing.T) {
	ds := newFakeDataset("surface", simpleLayout(), []uint64{1, 1})
	_, err := NewSurfaceCorrectionDescriptor("surface", ds, GridExtents, 11, 1)
	require.Error(t, err)
	assert.True(t, IsKind(err, TooManyCorrectors))
}

func TestSurfaceCorrectionDescriptorTooFewCorrectors(t *testing.T) {
	ds := newFakeDataset("surface", simpleLayout(), []uint64{1, 1})
	_, err := NewSurfaceCorrectionDescriptor("surface", ds, GridExtents, 0, 1)
	require.Error(t, err)
	assert.True(t, IsKind(err, CannotReadNumCorrectors))
}

func TestSurfaceCorrectionDescriptorRoundTrip(t *testing.T) {
	ds := newFakeDataset("surface", simpleLayout(), []uint64{1, 1})
	d, err := NewSurfaceCorrectionDescriptor("surface", ds, IrregularlySpaced, 3, 1)
	require.NoError(t, err)
	require.NoError(t, d.FlushAttributes())

	reloaded, err := NewSurfaceCorrectionDescriptor("surface", ds, GridExtents, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, IrregularlySpaced, reloaded.SurfaceType)
	assert.EqualValues(t, 3, reloaded.NumCorrectors)
}

func TestSurfaceCorrectionDescriptorGridOrigin(t *testing.T) {
	ds := newFakeDataset("surface", simpleLayout(), []uint64{1, 1})
	d, err := NewSurfaceCorrectionDescriptor("surface", ds, GridExtents, 1, 1)
	require.NoError(t, err)

	d.SetOrigin(10, 20, 0.5, 0.5)
	require.NoError(t, d.FlushAttributes())

	reloaded, err := NewSurfaceCorrectionDescriptor("surface", ds, GridExtents, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, reloaded.SwCornerX)
	assert.Equal(t, 20.0, reloaded.SwCornerY)
	assert.Equal(t, 0.5, reloaded.SpacingX)
}
