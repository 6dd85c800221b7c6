package bag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDataset(t *testing.T) *Dataset {
	t.Helper()
	c := newFakeContainer()
	meta := Metadata{
		HorizontalCRS: "EPSG:32610",
		Rows:          4,
		Cols:          4,
		OriginX:       100.0,
		OriginY:       200.0,
		SpacingX:      1.0,
		SpacingY:      1.0,
	}
	ds := &Dataset{
		container: c,
		metadata:  meta,
		crs:       NopCrsTranslator{},
		transform: NewCoordinateTransform(meta.OriginX, meta.OriginY, meta.SpacingX, meta.SpacingY),
		layers:    make(map[LayerType]*Layer),
		mode:      ReadWrite,
	}
	_, err := ds.CreateLayer(Elevation, 4, 4, nil, 0)
	require.NoError(t, err)
	return ds
}

func TestDatasetCreateLayerExists(t *testing.T) {
	ds := newTestDataset(t)
	_, err := ds.CreateLayer(Elevation, 4, 4, nil, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, LayerExists))
}

func TestDatasetGetLayerNotFound(t *testing.T) {
	ds := newTestDataset(t)
	_, err := ds.GetLayer(Uncertainty)
	require.Error(t, err)
	assert.True(t, IsKind(err, LayerNotFound))
}

func TestDatasetGridToGeoIdentity(t *testing.T) {
	ds := newTestDataset(t)
	lon, lat, err := ds.GridToGeo(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 101.0, lon)
	assert.Equal(t, 201.0, lat)
}

func TestDatasetNextIDMonotonic(t *testing.T) {
	ds := newTestDataset(t)
	a := ds.NextID()
	b := ds.NextID()
	assert.Less(t, a, b)
}

func TestDatasetCreateLayerReadOnly(t *testing.T) {
	ds := newTestDataset(t)
	ds.mode = ReadOnly
	_, err := ds.CreateLayer(Uncertainty, 4, 4, nil, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, ReadOnlyError))
}

func TestDatasetCreateGeorefMetadataLayer(t *testing.T) {
	ds := newTestDataset(t)
	l, err := ds.CreateGeorefMetadataLayer(4, 4, NOAAOCS202210Profile)
	require.NoError(t, err)

	_, err = ds.CreateGeorefMetadataLayer(4, 4, NOAAOCS202210Profile)
	require.Error(t, err)
	assert.True(t, IsKind(err, LayerExists))

	got, err := ds.GetGeorefMetadataLayer()
	require.NoError(t, err)
	assert.Same(t, l, got)

	assert.Contains(t, ds.ListLayers(), Elevation)
}
