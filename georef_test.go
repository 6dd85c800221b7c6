package bag

import (
	"testing"

	"github.com/bathyware/bag/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func georefIndexLayout() container.Layout {
	return container.Layout{Fields: []container.Field{{Name: "index", Type: container.Uint16}}}
}

func newGeorefLayer(t *testing.T) *GeorefMetadataLayer {
	t.Helper()
	ds := newFakeDataset("georef_metadata/index", georefIndexLayout(), []uint64{2, 2})
	d := NewGeorefMetadataDescriptor("georef_metadata/index", ds, NOAAOCS202210Profile.Name, nil, 1)
	c := newFakeContainer()
	l, err := NewGeorefMetadataLayer(d, ds, 2, 2, NOAAOCS202210Profile, c)
	require.NoError(t, err)
	return l
}

func TestGeorefMetadataLayerWellKnownRecordIsZeroValued(t *testing.T) {
	l := newGeorefLayer(t)
	rec, err := l.Record(0)
	require.NoError(t, err)

	v, err := rec.GetFloat32("feature_size")
	require.NoError(t, err)
	assert.Equal(t, float32(0.0), v)

	s, err := rec.GetString("survey_date_start")
	require.NoError(t, err)
	assert.Equal(t, "", s)

	b, err := rec.GetBool("significant_features")
	require.NoError(t, err)
	assert.False(t, b)
}

// TestGeorefMetadataLayerLiteralScenario exercises §8 S6 verbatim:
// add_record with feature_size=1234.5, then get_value(1,"feature_size")
// returns it while get_value(0,"feature_size") still yields the documented
// zero default.
func TestGeorefMetadataLayerLiteralScenario(t *testing.T) {
	l := newGeorefLayer(t)

	v := NewCompoundValue()
	v.SetFloat32("feature_size", 1234.5)
	v.SetString("survey_date_start", "2019-04-01 00:00:00.0Z")

	idx, err := l.AppendRecord(v)
	require.NoError(t, err)
	assert.EqualValues(t, 1, idx)

	require.NoError(t, l.SetIndex(0, 0, idx))
	got, err := l.Index(0, 0)
	require.NoError(t, err)
	assert.Equal(t, idx, got)

	rec, err := l.Record(idx)
	require.NoError(t, err)
	fs, err := rec.GetFloat32("feature_size")
	require.NoError(t, err)
	assert.Equal(t, float32(1234.5), fs)

	zero, err := l.Record(0)
	require.NoError(t, err)
	fsZero, err := zero.GetFloat32("feature_size")
	require.NoError(t, err)
	assert.Equal(t, float32(0.0), fsZero)
}

func TestGeorefProfileRejectsUndeclaredField(t *testing.T) {
	v := NewCompoundValue()
	v.SetString("not_a_profile_field", "x")
	err := NOAAOCS202210Profile.conforms(v)
	require.Error(t, err)
	assert.True(t, IsKind(err, UnsupportedAttributeType))
}

func TestGeorefProfileRejectsWrongType(t *testing.T) {
	v := NewCompoundValue()
	v.SetString("feature_size", "not a float")
	err := NOAAOCS202210Profile.conforms(v)
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidCast))
}
