package bag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayer(t *testing.T, rows, cols uint32) *Layer {
	t.Helper()
	ds := newFakeDataset("elevation", simpleLayout(), []uint64{uint64(rows), uint64(cols)})
	d := NewSimpleDescriptor("elevation", Elevation, ds, 1)
	return NewLayer(d, ds, rows, cols)
}

func TestLayerWriteReadRoundTrip(t *testing.T) {
	l := newTestLayer(t, 4, 4)

	data := make([]byte, 0, 4)
	data = appendFloat32(data, 12.5)
	require.NoError(t, l.Write(1, 1, 1, 1, data))

	out, err := l.Read(1, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(12.5), readFloat32(out))
	assert.Equal(t, float32(12.5), l.Descriptor().MaxValue())
}

func TestLayerBoundsExceeded(t *testing.T) {
	l := newTestLayer(t, 2, 2)
	_, err := l.Read(0, 0, 5, 5)
	require.Error(t, err)
	assert.True(t, IsKind(err, BoundsExceeded))
}

func TestLayerInvalidReadSize(t *testing.T) {
	l := newTestLayer(t, 2, 2)
	_, err := l.Read(1, 0, 0, 0)
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidReadSize))
}

func TestLayerWriteExtends(t *testing.T) {
	l := newTestLayer(t, 2, 2)
	data := appendFloat32(nil, 7.0)
	require.NoError(t, l.Write(3, 3, 3, 3, data))
	assert.EqualValues(t, 4, l.Rows())
	assert.EqualValues(t, 4, l.Cols())
}

func TestInterleavedLegacyLayerIsReadOnly(t *testing.T) {
	ds := newFakeDataset("node_group", simpleLayout(), []uint64{2, 2})
	d := NewSimpleDescriptor("node_group", Elevation, ds, 1)
	l := NewInterleavedLegacyLayer(d, ds, 2, 2, NodeGroup)

	err := l.Write(0, 0, 0, 0, appendFloat32(nil, 1.0))
	require.Error(t, err)
	assert.True(t, IsKind(err, UnsupportedOperation))
}

func TestValidateChunkingAndCompression(t *testing.T) {
	assert.NoError(t, validateChunkingAndCompression(nil, 0))
	assert.True(t, IsKind(validateChunkingAndCompression(nil, 5), CompressionNeedsChunkingSet))
	assert.True(t, IsKind(validateChunkingAndCompression([]uint64{0, 4}, 0), LayerRequiresChunkingSet))
	assert.True(t, IsKind(validateChunkingAndCompression([]uint64{4, 4}, 10), InvalidCompressionLevel))
}
