package bag

import (
	"github.com/bathyware/bag/internal/container"
)

// CompoundValue is a sum type holding one value-table record's worth of
// typed fields, since a georef-metadata profile's field set is defined at
// runtime rather than at compile time (§4.8). Typed getters return
// InvalidCast when the key is absent or the stored kind doesn't match. The
// index-0 record built by zeroRecord carries every declared field; records
// added with AppendRecord carry only the fields that were set on them.
type CompoundValue struct {
	fields map[string]any
}

func NewCompoundValue() CompoundValue {
	return CompoundValue{fields: make(map[string]any)}
}

func (c CompoundValue) SetString(key, v string)          { c.fields[key] = v }
func (c CompoundValue) SetFloat32(key string, v float32) { c.fields[key] = v }
func (c CompoundValue) SetUint32(key string, v uint32)   { c.fields[key] = v }
func (c CompoundValue) SetBool(key string, v bool)       { c.fields[key] = v }

func (c CompoundValue) GetString(key string) (string, error) {
	v, ok := c.fields[key]
	if !ok {
		return "", NewError(InvalidCast, key, nil)
	}
	s, ok := v.(string)
	if !ok {
		return "", NewError(InvalidCast, key, nil)
	}
	return s, nil
}

func (c CompoundValue) GetFloat32(key string) (float32, error) {
	v, ok := c.fields[key]
	if !ok {
		return 0, NewError(InvalidCast, key, nil)
	}
	f, ok := v.(float32)
	if !ok {
		if f64, ok2 := v.(float64); ok2 {
			return float32(f64), nil
		}
		return 0, NewError(InvalidCast, key, nil)
	}
	return f, nil
}

func (c CompoundValue) GetUint32(key string) (uint32, error) {
	v, ok := c.fields[key]
	if !ok {
		return 0, NewError(InvalidCast, key, nil)
	}
	switch n := v.(type) {
	case uint32:
		return n, nil
	case float64:
		return uint32(n), nil
	default:
		return 0, NewError(InvalidCast, key, nil)
	}
}

func (c CompoundValue) GetBool(key string) (bool, error) {
	v, ok := c.fields[key]
	if !ok {
		return false, NewError(InvalidCast, key, nil)
	}
	b, ok := v.(bool)
	if !ok {
		return false, NewError(InvalidCast, key, nil)
	}
	return b, nil
}

// GeorefProfile describes a value table's schema: an ordered field list plus
// the key type each field must satisfy (§4.8 "profile conformance").
type GeorefProfile struct {
	Name   string
	Fields []GeorefField
}

type GeorefField struct {
	Key  string
	Type DataType
}

// NOAAOCS202210Profile is the NOAA_OCS_2022_10 value-table schema named in
// §4.8, recovered field-for-field (name, order, and type) from
// CreateRecord_NOAA_OCS_2022_10 in
// _examples/original_source/examples/bag_georefmetadata_layer.cpp.
var NOAAOCS202210Profile = GeorefProfile{
	Name: "NOAA_OCS_2022_10",
	Fields: []GeorefField{
		{Key: "significant_features", Type: DtBool},
		{Key: "feature_least_depth", Type: DtBool},
		{Key: "feature_size", Type: DtFloat32},
		{Key: "feature_size_var", Type: DtFloat32},
		{Key: "coverage", Type: DtBool},
		{Key: "bathy_coverage", Type: DtBool},
		{Key: "horizontal_uncert_fixed", Type: DtFloat32},
		{Key: "horizontal_uncert_var", Type: DtFloat32},
		{Key: "survey_date_start", Type: DtString},
		{Key: "survey_date_end", Type: DtString},
		{Key: "source_institution", Type: DtString},
		{Key: "source_survey_id", Type: DtString},
		{Key: "source_survey_index", Type: DtUint32},
		{Key: "license_name", Type: DtString},
		{Key: "license_url", Type: DtString},
	},
}

// conforms reports whether v only uses keys declared by the profile and
// satisfies each declared field's type.
func (p GeorefProfile) conforms(v CompoundValue) error {
	declared := make(map[string]DataType, len(p.Fields))
	for _, f := range p.Fields {
		declared[f.Key] = f.Type
	}
	for key, val := range v.fields {
		dt, ok := declared[key]
		if !ok {
			return NewError(UnsupportedAttributeType, key, nil)
		}
		switch dt {
		case DtString:
			if _, ok := val.(string); !ok {
				return NewError(InvalidCast, key, nil)
			}
		case DtFloat32:
			if _, ok := val.(float32); !ok {
				return NewError(InvalidCast, key, nil)
			}
		case DtUint32:
			if _, ok := val.(uint32); !ok {
				return NewError(InvalidCast, key, nil)
			}
		case DtBool:
			if _, ok := val.(bool); !ok {
				return NewError(InvalidCast, key, nil)
			}
		}
	}
	return nil
}

// zeroRecord builds a CompoundValue with every declared field present and
// set to its type's zero value: false, 0.0, 0, or "". Used to materialize
// the well-known index-0 "no classification" record (§4.8), so that reading
// any declared field off it returns the documented default rather than an
// absent-key error.
func (p GeorefProfile) zeroRecord() CompoundValue {
	v := NewCompoundValue()
	for _, f := range p.Fields {
		switch f.Type {
		case DtString:
			v.SetString(f.Key, "")
		case DtFloat32:
			v.SetFloat32(f.Key, 0)
		case DtUint32:
			v.SetUint32(f.Key, 0)
		case DtBool:
			v.SetBool(f.Key, false)
		}
	}
	return v
}

// GeorefMetadataLayer is the C8 component: a uint16 index grid addressed
// like any other layer, pointing into an append-only value table of
// CompoundValue records. Index 0 is reserved as the well-known "no
// classification" record (§4.8), present even in an otherwise-empty table.
type GeorefMetadataLayer struct {
	*Layer
	profile GeorefProfile
	records []CompoundValue
	group   container.Container
}

func NewGeorefMetadataLayer(d *GeorefMetadataDescriptor, ds container.Dataset, rows, cols uint32, profile GeorefProfile, group container.Container) (*GeorefMetadataLayer, error) {
	l := &GeorefMetadataLayer{
		Layer:   NewLayer(d, ds, rows, cols),
		profile: profile,
		group:   group,
	}
	if err := l.loadRecords(); err != nil {
		return nil, err
	}
	if len(l.records) == 0 {
		l.records = append(l.records, profile.zeroRecord())
		if err := l.persistRecords(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

const georefRecordsAttr = "value_table"

func (l *GeorefMetadataLayer) loadRecords() error {
	var raw []map[string]any
	if err := l.group.ReadAttr(georefRecordsAttr, &raw); err != nil {
		l.records = nil
		return nil
	}
	recs := make([]CompoundValue, len(raw))
	for i, m := range raw {
		recs[i] = CompoundValue{fields: m}
	}
	l.records = recs
	return nil
}

func (l *GeorefMetadataLayer) persistRecords() error {
	raw := make([]map[string]any, len(l.records))
	for i, r := range l.records {
		raw[i] = r.fields
	}
	return l.group.WriteAttr(georefRecordsAttr, raw)
}

// AppendRecord validates v against the layer's profile and appends it to
// the value table, returning its index for use in the index grid.
func (l *GeorefMetadataLayer) AppendRecord(v CompoundValue) (uint16, error) {
	if err := l.profile.conforms(v); err != nil {
		return 0, err
	}
	idx := uint16(len(l.records))
	l.records = append(l.records, v)
	return idx, l.persistRecords()
}

func (l *GeorefMetadataLayer) Record(idx uint16) (CompoundValue, error) {
	if int(idx) >= len(l.records) {
		return CompoundValue{}, NewError(InvalidCast, "", nil)
	}
	return l.records[idx], nil
}

// SetIndex writes a cell's value-table index into the index grid.
func (l *GeorefMetadataLayer) SetIndex(row, col uint32, idx uint16) error {
	return l.Write(row, col, row, col, appendUint16(nil, idx))
}

func (l *GeorefMetadataLayer) Index(row, col uint32) (uint16, error) {
	data, err := l.Read(row, col, row, col)
	if err != nil {
		return 0, err
	}
	return readUint16(data), nil
}
