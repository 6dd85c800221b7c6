package bag

import (
	"testing"

	"github.com/bathyware/bag/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackingTestDataset(t *testing.T) *fakeDataset {
	t.Helper()
	layout, err := container.LayoutFromStruct(TrackingItem{})
	require.NoError(t, err)
	return newFakeDataset("tracking_list", layout, []uint64{0})
}

func TestTrackingListAppendAndSortByNode(t *testing.T) {
	ds := newTrackingTestDataset(t)
	tl, err := NewTrackingList(ds)
	require.NoError(t, err)

	require.NoError(t, tl.Append(TrackingItem{Row: 2, Col: 0, Depth: 1, TrackCode: 1}))
	require.NoError(t, tl.Append(TrackingItem{Row: 1, Col: 0, Depth: 2, TrackCode: 2}))
	require.NoError(t, tl.Append(TrackingItem{Row: 1, Col: 0, Depth: 3, TrackCode: 1}))

	assert.Equal(t, 3, tl.Len())

	require.NoError(t, tl.SortByNode())
	sorted := tl.Items()
	require.Len(t, sorted, 3)
	assert.Equal(t, uint32(1), sorted[0].Row)
	assert.Equal(t, uint8(2), sorted[0].TrackCode)
	assert.Equal(t, uint32(1), sorted[1].Row)
	assert.Equal(t, uint8(1), sorted[1].TrackCode)
	assert.Equal(t, uint32(2), sorted[2].Row)

	var length uint32
	require.NoError(t, ds.ReadAttr(trackingListLength, &length))
	assert.EqualValues(t, 3, length)
}

func TestTrackingListReadByNode(t *testing.T) {
	ds := newTrackingTestDataset(t)
	tl, err := NewTrackingList(ds)
	require.NoError(t, err)

	require.NoError(t, tl.Append(TrackingItem{Row: 1, Col: 2, TrackCode: 1}))
	require.NoError(t, tl.Append(TrackingItem{Row: 1, Col: 2, TrackCode: 2}))
	require.NoError(t, tl.Append(TrackingItem{Row: 0, Col: 0, TrackCode: 3}))

	got := tl.ReadByNode(1, 2)
	require.Len(t, got, 2)
	assert.EqualValues(t, 1, got[0].TrackCode)
	assert.EqualValues(t, 2, got[1].TrackCode)
}

func TestTrackingListReadBySeriesAndCode(t *testing.T) {
	ds := newTrackingTestDataset(t)
	tl, err := NewTrackingList(ds)
	require.NoError(t, err)

	require.NoError(t, tl.Append(TrackingItem{ListSeries: 5, TrackCode: 9}))
	require.NoError(t, tl.Append(TrackingItem{ListSeries: 5, TrackCode: 1}))
	require.NoError(t, tl.Append(TrackingItem{ListSeries: 1, TrackCode: 9}))

	assert.Len(t, tl.ReadBySeries(5), 2)
	assert.Len(t, tl.ReadByCode(9), 2)
}

func TestTrackingListSortBySeriesAndCode(t *testing.T) {
	ds := newTrackingTestDataset(t)
	tl, err := NewTrackingList(ds)
	require.NoError(t, err)

	require.NoError(t, tl.Append(TrackingItem{ListSeries: 2, TrackCode: 9}))
	require.NoError(t, tl.Append(TrackingItem{ListSeries: 1, TrackCode: 5}))

	require.NoError(t, tl.SortBySeries())
	assert.EqualValues(t, 1, tl.Items()[0].ListSeries)

	require.NoError(t, tl.SortByCode())
	assert.EqualValues(t, 5, tl.Items()[0].TrackCode)
}

func TestTrackingListRepairsLengthAttr(t *testing.T) {
	ds := newTrackingTestDataset(t)
	require.NoError(t, ds.WriteAttr(trackingListLength, uint32(99)))

	tl, err := NewTrackingList(ds)
	require.NoError(t, err)
	assert.Equal(t, 0, tl.Len())

	var length uint32
	require.NoError(t, ds.ReadAttr(trackingListLength, &length))
	assert.EqualValues(t, 0, length)
}
