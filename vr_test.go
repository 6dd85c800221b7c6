package bag

import (
	"testing"

	"github.com/bathyware/bag/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vrMetadataLayout() container.Layout {
	return container.Layout{Fields: []container.Field{
		{Name: "index", Type: container.Uint32},
		{Name: "dimensions_x", Type: container.Uint32},
		{Name: "dimensions_y", Type: container.Uint32},
		{Name: "resolution_x", Type: container.Float32},
		{Name: "resolution_y", Type: container.Float32},
		{Name: "sw_corner_x", Type: container.Float32},
		{Name: "sw_corner_y", Type: container.Float32},
	}}
}

func vrRefinementLayout() container.Layout {
	return container.Layout{Fields: []container.Field{
		{Name: "depth", Type: container.Float32},
		{Name: "uncertainty", Type: container.Float32},
	}}
}

func vrNodeLayout() container.Layout {
	return container.Layout{Fields: []container.Field{
		{Name: "hyp_strength", Type: container.Float32},
		{Name: "num_hypotheses", Type: container.Uint32},
		{Name: "n_samples", Type: container.Uint32},
	}}
}

func TestVRMetadataLocatorNoRefinement(t *testing.T) {
	ds := newFakeDataset("vr_metadata", vrMetadataLayout(), []uint64{2, 2})
	d := NewVarResMetadataDescriptor("vr_metadata", ds, 1)
	l := NewVRMetadataLayer(d, ds, 2, 2)

	require.NoError(t, l.SetLocator(0, 0, VRMetadataItem{Index: NullVarResIndex}))
	_, err := l.Locator(0, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, NoRefinement))
}

func TestVRMetadataLocatorRoundTrip(t *testing.T) {
	ds := newFakeDataset("vr_metadata", vrMetadataLayout(), []uint64{2, 2})
	d := NewVarResMetadataDescriptor("vr_metadata", ds, 1)
	l := NewVRMetadataLayer(d, ds, 2, 2)

	item := VRMetadataItem{Index: 4, DimensionsX: 3, DimensionsY: 3, ResolutionX: 0.5, ResolutionY: 0.5}
	require.NoError(t, l.SetLocator(1, 1, item))

	got, err := l.Locator(1, 1)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestVRMetadataLocatorNonSquareWindow(t *testing.T) {
	ds := newFakeDataset("vr_metadata", vrMetadataLayout(), []uint64{1, 1})
	d := NewVarResMetadataDescriptor("vr_metadata", ds, 1)
	l := NewVRMetadataLayer(d, ds, 1, 1)

	item := VRMetadataItem{Index: 10, DimensionsX: 5, DimensionsY: 2}
	require.NoError(t, l.SetLocator(0, 0, item))

	got, err := l.Locator(0, 0)
	require.NoError(t, err)

	idx, err := RefinementIndex(got, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 10+1*5+3, idx)

	_, err = RefinementIndex(got, 2, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, BoundsExceeded))
}

func TestVRRefinementAllocateAndWrite(t *testing.T) {
	ds := newFakeDataset("vr_refinement", vrRefinementLayout(), []uint64{0})
	desc := NewVarResRefinementDescriptor("vr_refinement", ds, 1)
	r := NewVRRefinementLayer(desc, ds)

	start, err := r.Allocate(3)
	require.NoError(t, err)
	assert.EqualValues(t, 0, start)

	items := []VRRefinementItem{{Depth: 1, Uncertainty: 0.1}, {Depth: 2, Uncertainty: 0.2}, {Depth: 3, Uncertainty: 0.3}}
	require.NoError(t, r.WriteRange(start, items))

	got, err := r.ReadRange(start, 3)
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.Equal(t, float32(3), desc.MaxDepth)
	assert.Equal(t, float32(0.3), desc.MaxUncertainty)
	assert.Equal(t, float32(0.1), desc.MinUncertainty)
}

func TestVRNodeAllocateAndWrite(t *testing.T) {
	ds := newFakeDataset("vr_node", vrNodeLayout(), []uint64{0})
	desc := NewVarResNodeDescriptor("vr_node", ds, 1)
	r := NewVRNodeLayer(desc, ds)

	start, err := r.Allocate(2)
	require.NoError(t, err)
	assert.EqualValues(t, 0, start)

	items := []VRNodeItem{
		{HypothesisStrength: 0.5, NumHypotheses: 2, NumSamples: 10},
		{HypothesisStrength: 0.9, NumHypotheses: 1, NumSamples: 3},
	}
	require.NoError(t, r.WriteRange(start, items))

	got, err := r.ReadRange(start, 2)
	require.NoError(t, err)
	assert.Equal(t, items, got)
	assert.Equal(t, float32(0.9), desc.MaxHypStrength)
	assert.EqualValues(t, 3, desc.MinNumSamples)
}

func TestValidateNoOverlap(t *testing.T) {
	ok := []VRMetadataItem{{Index: 0, DimensionsX: 2, DimensionsY: 2}, {Index: 4, DimensionsX: 2, DimensionsY: 2}}
	assert.NoError(t, validateNoOverlap(ok))

	overlapping := []VRMetadataItem{{Index: 0, DimensionsX: 5, DimensionsY: 1}, {Index: 4, DimensionsX: 4, DimensionsY: 1}}
	err := validateNoOverlap(overlapping)
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidVRRefinementDimensions))
}
