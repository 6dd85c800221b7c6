package bag

import "github.com/bathyware/bag/internal/container"

// Descriptor is the common surface every layer-descriptor variant
// implements, §4.3. Descriptors cache their attribute values in memory and
// only round-trip them to the Container on FlushAttributes, per the
// supplemented lazy-flush behaviour recovered from the original
// implementation (see SPEC_FULL.md §4, "Descriptor attribute caching").
type Descriptor interface {
	// ID is the identifier the owning Dataset assigned this layer at
	// creation time, §3: monotonically increasing, never reused.
	ID() uint32

	Name() string
	LayerType() LayerType
	DataType() DataType

	MinValue() float32
	MaxValue() float32

	// SetMinMax folds a newly written value into the descriptor's running
	// min/max, skipping sentinel ("no data") values per §4.4.
	SetMinMax(v float32)

	// Dirty reports whether the cached attributes differ from what was
	// last flushed.
	Dirty() bool

	// FlushAttributes writes any dirty cached attribute back to the
	// backing Dataset. A no-op when Dirty() is false.
	FlushAttributes() error
}

// baseDescriptor implements the shared id/min/max caching behaviour every
// concrete descriptor embeds, grounded on the teacher's habit of embedding a
// small shared struct (see sensormd.go's embedding of common ping fields)
// rather than duplicating bookkeeping per variant.
type baseDescriptor struct {
	id        uint32
	name      string
	layerType LayerType
	dataType  DataType

	minValue float32
	maxValue float32
	hasValue bool
	dirty    bool

	dataset container.Dataset
}

func newBaseDescriptor(name string, lt LayerType, ds container.Dataset, id uint32) baseDescriptor {
	return baseDescriptor{
		id:        id,
		name:      name,
		layerType: lt,
		dataType:  dataTypeForLayer(lt),
		dataset:   ds,
	}
}

func (d *baseDescriptor) ID() uint32          { return d.id }
func (d *baseDescriptor) Name() string        { return d.name }
func (d *baseDescriptor) LayerType() LayerType { return d.layerType }
func (d *baseDescriptor) DataType() DataType   { return d.dataType }
func (d *baseDescriptor) MinValue() float32    { return d.minValue }
func (d *baseDescriptor) MaxValue() float32    { return d.maxValue }
func (d *baseDescriptor) Dirty() bool          { return d.dirty }

// isSentinel reports whether v is one of the reserved "no data" markers
// that must never participate in min/max folding, §4.4.
func isSentinel(v float32) bool {
	return v == NullElevation || v == NullUncertainty || v == NullGeneric
}

func (d *baseDescriptor) SetMinMax(v float32) {
	if isSentinel(v) {
		return
	}
	if !d.hasValue {
		d.minValue, d.maxValue, d.hasValue = v, v, true
		d.dirty = true
		return
	}
	if v < d.minValue {
		d.minValue = v
		d.dirty = true
	}
	if v > d.maxValue {
		d.maxValue = v
		d.dirty = true
	}
}

// flushMinMax writes the two attributes named exactly as §4.3's "simple"
// family requires: "min_value", "max_value".
func (d *baseDescriptor) flushMinMax() error {
	if !d.dirty {
		return nil
	}
	if err := d.dataset.WriteAttr("min_value", d.minValue); err != nil {
		return NewError(InvalidDescriptor, d.name, err)
	}
	if err := d.dataset.WriteAttr("max_value", d.maxValue); err != nil {
		return NewError(InvalidDescriptor, d.name, err)
	}
	d.dirty = false
	return nil
}

func (d *baseDescriptor) loadMinMax() {
	var min, max float32
	errMin := d.dataset.ReadAttr("min_value", &min)
	errMax := d.dataset.ReadAttr("max_value", &max)
	if errMin == nil && errMax == nil {
		d.minValue, d.maxValue, d.hasValue = min, max, true
	}
}

// SimpleDescriptor covers the single-attribute gridded layers: Elevation,
// Uncertainty, Hypothesis_Strength, Num_Hypotheses, Shoal_Elevation, Std_Dev,
// Num_Soundings, Average_Elevation, Nominal_Elevation (§4.3).
type SimpleDescriptor struct {
	baseDescriptor
}

func NewSimpleDescriptor(name string, lt LayerType, ds container.Dataset, id uint32) *SimpleDescriptor {
	d := &SimpleDescriptor{baseDescriptor: newBaseDescriptor(name, lt, ds, id)}
	d.loadMinMax()
	return d
}

func (d *SimpleDescriptor) FlushAttributes() error { return d.flushMinMax() }

// SurfaceCorrectionDescriptor additionally tracks the corrector count,
// surface type, vertical datum names, and (grid-extents only) the
// corrector grid's own origin/spacing, §4.3/§4.6.
type SurfaceCorrectionDescriptor struct {
	baseDescriptor
	SurfaceType    SurfaceType
	NumCorrectors  uint16
	VerticalDatums []string

	// SwCornerX/Y, SpacingX/Y are meaningful only when SurfaceType ==
	// GridExtents: the corrector dataset's own origin and node spacing,
	// used by the SEP resampler to locate the four surrounding nodes.
	SwCornerX, SwCornerY float64
	SpacingX, SpacingY   float64

	surfaceDirty bool
}

func NewSurfaceCorrectionDescriptor(name string, ds container.Dataset, st SurfaceType, numCorrectors uint16, id uint32) (*SurfaceCorrectionDescriptor, error) {
	if numCorrectors < 1 {
		return nil, NewError(CannotReadNumCorrectors, name, nil)
	}
	if numCorrectors > 10 {
		return nil, NewError(TooManyCorrectors, name, nil)
	}
	d := &SurfaceCorrectionDescriptor{
		baseDescriptor: newBaseDescriptor(name, SurfaceCorrection, ds, id),
		SurfaceType:    st,
		NumCorrectors:  numCorrectors,
	}
	d.loadMinMax()
	d.loadSurfaceAttrs()
	return d, nil
}

func (d *SurfaceCorrectionDescriptor) loadSurfaceAttrs() {
	var surfaceType uint8
	var datums string
	if err := d.dataset.ReadAttr("surface_type", &surfaceType); err == nil {
		d.SurfaceType = SurfaceType(surfaceType)
	} else {
		d.surfaceDirty = true
	}
	if err := d.dataset.ReadAttr("vertical_datum", &datums); err == nil {
		d.VerticalDatums = splitDatums(datums)
	}
	var numCorrectors uint16
	if err := d.dataset.ReadAttr("num_correctors", &numCorrectors); err == nil && numCorrectors >= 1 && numCorrectors <= 10 {
		d.NumCorrectors = numCorrectors
	}
	if d.SurfaceType == GridExtents {
		_ = d.dataset.ReadAttr("sw_corner_x", &d.SwCornerX)
		_ = d.dataset.ReadAttr("sw_corner_y", &d.SwCornerY)
		_ = d.dataset.ReadAttr("nodeSpacing x", &d.SpacingX)
		_ = d.dataset.ReadAttr("nodeSpacing y", &d.SpacingY)
	}
}

// SetOrigin records the grid-extents corrector dataset's own origin and
// node spacing, used by the SEP resampler's interpolation protocol (§4.6
// steps 1-2). A no-op for irregularly-spaced surfaces.
func (d *SurfaceCorrectionDescriptor) SetOrigin(swX, swY, spacingX, spacingY float64) {
	if d.SurfaceType != GridExtents {
		return
	}
	d.SwCornerX, d.SwCornerY = swX, swY
	d.SpacingX, d.SpacingY = spacingX, spacingY
	d.surfaceDirty = true
}

func (d *SurfaceCorrectionDescriptor) FlushAttributes() error {
	if err := d.flushMinMax(); err != nil {
		return err
	}
	if !d.surfaceDirty {
		return nil
	}
	if err := d.dataset.WriteAttr("surface_type", uint8(d.SurfaceType)); err != nil {
		return NewError(InvalidDescriptor, d.name, err)
	}
	if err := d.dataset.WriteAttr("vertical_datum", joinDatums(d.VerticalDatums)); err != nil {
		return NewError(InvalidDescriptor, d.name, err)
	}
	if err := d.dataset.WriteAttr("num_correctors", d.NumCorrectors); err != nil {
		return NewError(InvalidDescriptor, d.name, err)
	}
	if d.SurfaceType == GridExtents {
		if err := d.dataset.WriteAttr("sw_corner_x", d.SwCornerX); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("sw_corner_y", d.SwCornerY); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("nodeSpacing x", d.SpacingX); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("nodeSpacing y", d.SpacingY); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
	}
	d.surfaceDirty = false
	return nil
}

// GeorefMetadataDescriptor tracks the index layer's owning value-table
// profile name and the well-known-record convention (§4.8).
type GeorefMetadataDescriptor struct {
	baseDescriptor
	ProfileName string
	Keys        []string
}

func NewGeorefMetadataDescriptor(name string, ds container.Dataset, profile string, keys []string, id uint32) *GeorefMetadataDescriptor {
	d := &GeorefMetadataDescriptor{
		baseDescriptor: newBaseDescriptor(name, GeorefMetadata, ds, id),
		ProfileName:    profile,
		Keys:           keys,
	}
	d.loadMinMax()
	return d
}

type georefAttrs struct {
	Profile string   `json:"profile"`
	Keys    []string `json:"keys"`
}

func (d *GeorefMetadataDescriptor) FlushAttributes() error {
	if err := d.flushMinMax(); err != nil {
		return err
	}
	return wrapDescriptorErr(d.name, d.dataset.WriteAttr("georef", georefAttrs{Profile: d.ProfileName, Keys: d.Keys}))
}

// VarResMetadataDescriptor tracks the four per-axis min/max pairs §4.3
// requires for the VR metadata layer (dimensions_x/y, resolution_x/y),
// ignoring sentinel rows (dimensions == 0 or resolution < 0) per §4.7.1.
// It does not use baseDescriptor's generic single min/max pair: the VR
// metadata record has no single scalar "value" to track.
type VarResMetadataDescriptor struct {
	baseDescriptor
	hasRange bool
	rangeDirty bool

	MinDimensionsX, MaxDimensionsX uint32
	MinDimensionsY, MaxDimensionsY uint32
	MinResolutionX, MaxResolutionX float32
	MinResolutionY, MaxResolutionY float32
}

func NewVarResMetadataDescriptor(name string, ds container.Dataset, id uint32) *VarResMetadataDescriptor {
	d := &VarResMetadataDescriptor{baseDescriptor: newBaseDescriptor(name, VarResMetadata, ds, id)}
	d.loadRange()
	return d
}

func (d *VarResMetadataDescriptor) loadRange() {
	okX := d.dataset.ReadAttr("min_dimensions_x", &d.MinDimensionsX) == nil
	okX = d.dataset.ReadAttr("max_dimensions_x", &d.MaxDimensionsX) == nil && okX
	okY := d.dataset.ReadAttr("min_dimensions_y", &d.MinDimensionsY) == nil
	okY = d.dataset.ReadAttr("max_dimensions_y", &d.MaxDimensionsY) == nil && okY
	_ = d.dataset.ReadAttr("min_resolution_x", &d.MinResolutionX)
	_ = d.dataset.ReadAttr("max_resolution_x", &d.MaxResolutionX)
	_ = d.dataset.ReadAttr("min_resolution_y", &d.MinResolutionY)
	_ = d.dataset.ReadAttr("max_resolution_y", &d.MaxResolutionY)
	d.hasRange = okX && okY
}

// UpdateFromItem folds a freshly written VR metadata item into the running
// per-axis min/max, ignoring sentinel rows (§4.7.1).
func (d *VarResMetadataDescriptor) UpdateFromItem(item VRMetadataItem) {
	if item.DimensionsX == 0 || item.DimensionsY == 0 || item.ResolutionX < 0 || item.ResolutionY < 0 {
		return
	}
	if !d.hasRange {
		d.MinDimensionsX, d.MaxDimensionsX = item.DimensionsX, item.DimensionsX
		d.MinDimensionsY, d.MaxDimensionsY = item.DimensionsY, item.DimensionsY
		d.MinResolutionX, d.MaxResolutionX = item.ResolutionX, item.ResolutionX
		d.MinResolutionY, d.MaxResolutionY = item.ResolutionY, item.ResolutionY
		d.hasRange, d.rangeDirty = true, true
		return
	}
	if item.DimensionsX < d.MinDimensionsX {
		d.MinDimensionsX, d.rangeDirty = item.DimensionsX, true
	}
	if item.DimensionsX > d.MaxDimensionsX {
		d.MaxDimensionsX, d.rangeDirty = item.DimensionsX, true
	}
	if item.DimensionsY < d.MinDimensionsY {
		d.MinDimensionsY, d.rangeDirty = item.DimensionsY, true
	}
	if item.DimensionsY > d.MaxDimensionsY {
		d.MaxDimensionsY, d.rangeDirty = item.DimensionsY, true
	}
	if item.ResolutionX < d.MinResolutionX {
		d.MinResolutionX, d.rangeDirty = item.ResolutionX, true
	}
	if item.ResolutionX > d.MaxResolutionX {
		d.MaxResolutionX, d.rangeDirty = item.ResolutionX, true
	}
	if item.ResolutionY < d.MinResolutionY {
		d.MinResolutionY, d.rangeDirty = item.ResolutionY, true
	}
	if item.ResolutionY > d.MaxResolutionY {
		d.MaxResolutionY, d.rangeDirty = item.ResolutionY, true
	}
}

func (d *VarResMetadataDescriptor) MinValue() float32 { return float32(d.MinDimensionsX) }
func (d *VarResMetadataDescriptor) MaxValue() float32 { return float32(d.MaxDimensionsX) }
func (d *VarResMetadataDescriptor) SetMinMax(float32) {}
func (d *VarResMetadataDescriptor) Dirty() bool       { return d.rangeDirty }

func (d *VarResMetadataDescriptor) FlushAttributes() error {
	if !d.rangeDirty {
		return nil
	}
	attrs := []struct {
		name string
		val  any
	}{
		{"min_dimensions_x", d.MinDimensionsX}, {"max_dimensions_x", d.MaxDimensionsX},
		{"min_dimensions_y", d.MinDimensionsY}, {"max_dimensions_y", d.MaxDimensionsY},
		{"min_resolution_x", d.MinResolutionX}, {"max_resolution_x", d.MaxResolutionX},
		{"min_resolution_y", d.MinResolutionY}, {"max_resolution_y", d.MaxResolutionY},
	}
	for _, a := range attrs {
		if err := d.dataset.WriteAttr(a.name, a.val); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
	}
	d.rangeDirty = false
	return nil
}

// VarResRefinementDescriptor tracks depth/uncertainty min/max separately,
// §4.3/§4.7.2: depth sentinel is NULL_ELEVATION, uncertainty sentinel is
// NULL_UNCERTAINTY.
type VarResRefinementDescriptor struct {
	baseDescriptor
	hasDepth, hasUncrt   bool
	depthDirty, uncrtDirty bool
	MinDepth, MaxDepth             float32
	MinUncertainty, MaxUncertainty float32
}

func NewVarResRefinementDescriptor(name string, ds container.Dataset, id uint32) *VarResRefinementDescriptor {
	d := &VarResRefinementDescriptor{baseDescriptor: newBaseDescriptor(name, VarResRefinement, ds, id)}
	d.hasDepth = d.dataset.ReadAttr("min_depth", &d.MinDepth) == nil && d.dataset.ReadAttr("max_depth", &d.MaxDepth) == nil
	d.hasUncrt = d.dataset.ReadAttr("min_uncrt", &d.MinUncertainty) == nil && d.dataset.ReadAttr("max_uncrt", &d.MaxUncertainty) == nil
	return d
}

// Fold updates depth/uncertainty min/max from one refinement item,
// skipping each field independently when it carries its own sentinel.
func (d *VarResRefinementDescriptor) Fold(item VRRefinementItem) {
	if item.Depth != NullElevation {
		if !d.hasDepth {
			d.MinDepth, d.MaxDepth, d.hasDepth = item.Depth, item.Depth, true
			d.depthDirty = true
		} else {
			if item.Depth < d.MinDepth {
				d.MinDepth, d.depthDirty = item.Depth, true
			}
			if item.Depth > d.MaxDepth {
				d.MaxDepth, d.depthDirty = item.Depth, true
			}
		}
	}
	if item.Uncertainty != NullUncertainty {
		if !d.hasUncrt {
			d.MinUncertainty, d.MaxUncertainty, d.hasUncrt = item.Uncertainty, item.Uncertainty, true
			d.uncrtDirty = true
		} else {
			if item.Uncertainty < d.MinUncertainty {
				d.MinUncertainty, d.uncrtDirty = item.Uncertainty, true
			}
			if item.Uncertainty > d.MaxUncertainty {
				d.MaxUncertainty, d.uncrtDirty = item.Uncertainty, true
			}
		}
	}
}

func (d *VarResRefinementDescriptor) MinValue() float32 { return d.MinDepth }
func (d *VarResRefinementDescriptor) MaxValue() float32 { return d.MaxDepth }
func (d *VarResRefinementDescriptor) SetMinMax(float32) {}
func (d *VarResRefinementDescriptor) Dirty() bool       { return d.depthDirty || d.uncrtDirty }

func (d *VarResRefinementDescriptor) FlushAttributes() error {
	if d.depthDirty {
		if err := d.dataset.WriteAttr("min_depth", d.MinDepth); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("max_depth", d.MaxDepth); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		d.depthDirty = false
	}
	if d.uncrtDirty {
		if err := d.dataset.WriteAttr("min_uncrt", d.MinUncertainty); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("max_uncrt", d.MaxUncertainty); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		d.uncrtDirty = false
	}
	return nil
}

// VarResNodeDescriptor tracks hyp_strength/num_hypotheses/n_samples min/max,
// §4.3/§3's VR Node Item.
type VarResNodeDescriptor struct {
	baseDescriptor
	hasHyp, hasHyp2, hasSamples bool
	hypDirty, hyp2Dirty, samplesDirty bool

	MinHypStrength, MaxHypStrength         float32
	MinNumHypotheses, MaxNumHypotheses     uint32
	MinNumSamples, MaxNumSamples           uint32
}

func NewVarResNodeDescriptor(name string, ds container.Dataset, id uint32) *VarResNodeDescriptor {
	d := &VarResNodeDescriptor{baseDescriptor: newBaseDescriptor(name, VarResNode, ds, id)}
	d.hasHyp = d.dataset.ReadAttr("min_hyp_strength", &d.MinHypStrength) == nil && d.dataset.ReadAttr("max_hyp_strength", &d.MaxHypStrength) == nil
	d.hasHyp2 = d.dataset.ReadAttr("min_num_hypotheses", &d.MinNumHypotheses) == nil && d.dataset.ReadAttr("max_num_hypotheses", &d.MaxNumHypotheses) == nil
	d.hasSamples = d.dataset.ReadAttr("min_n_samples", &d.MinNumSamples) == nil && d.dataset.ReadAttr("max_n_samples", &d.MaxNumSamples) == nil
	return d
}

// Fold updates the three tracked min/max pairs from one VR node item.
func (d *VarResNodeDescriptor) Fold(item VRNodeItem) {
	if !d.hasHyp {
		d.MinHypStrength, d.MaxHypStrength, d.hasHyp = item.HypothesisStrength, item.HypothesisStrength, true
		d.hypDirty = true
	} else {
		if item.HypothesisStrength < d.MinHypStrength {
			d.MinHypStrength, d.hypDirty = item.HypothesisStrength, true
		}
		if item.HypothesisStrength > d.MaxHypStrength {
			d.MaxHypStrength, d.hypDirty = item.HypothesisStrength, true
		}
	}
	if !d.hasHyp2 {
		d.MinNumHypotheses, d.MaxNumHypotheses, d.hasHyp2 = item.NumHypotheses, item.NumHypotheses, true
		d.hyp2Dirty = true
	} else {
		if item.NumHypotheses < d.MinNumHypotheses {
			d.MinNumHypotheses, d.hyp2Dirty = item.NumHypotheses, true
		}
		if item.NumHypotheses > d.MaxNumHypotheses {
			d.MaxNumHypotheses, d.hyp2Dirty = item.NumHypotheses, true
		}
	}
	if !d.hasSamples {
		d.MinNumSamples, d.MaxNumSamples, d.hasSamples = item.NumSamples, item.NumSamples, true
		d.samplesDirty = true
	} else {
		if item.NumSamples < d.MinNumSamples {
			d.MinNumSamples, d.samplesDirty = item.NumSamples, true
		}
		if item.NumSamples > d.MaxNumSamples {
			d.MaxNumSamples, d.samplesDirty = item.NumSamples, true
		}
	}
}

func (d *VarResNodeDescriptor) MinValue() float32 { return d.MinHypStrength }
func (d *VarResNodeDescriptor) MaxValue() float32 { return d.MaxHypStrength }
func (d *VarResNodeDescriptor) SetMinMax(float32) {}
func (d *VarResNodeDescriptor) Dirty() bool       { return d.hypDirty || d.hyp2Dirty || d.samplesDirty }

func (d *VarResNodeDescriptor) FlushAttributes() error {
	if d.hypDirty {
		if err := d.dataset.WriteAttr("min_hyp_strength", d.MinHypStrength); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("max_hyp_strength", d.MaxHypStrength); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		d.hypDirty = false
	}
	if d.hyp2Dirty {
		if err := d.dataset.WriteAttr("min_num_hypotheses", d.MinNumHypotheses); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("max_num_hypotheses", d.MaxNumHypotheses); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		d.hyp2Dirty = false
	}
	if d.samplesDirty {
		if err := d.dataset.WriteAttr("min_n_samples", d.MinNumSamples); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		if err := d.dataset.WriteAttr("max_n_samples", d.MaxNumSamples); err != nil {
			return NewError(InvalidDescriptor, d.name, err)
		}
		d.samplesDirty = false
	}
	return nil
}

func wrapDescriptorErr(name string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(InvalidDescriptor, name, err)
}

// splitDatums/joinDatums implement the "comma-separated string of up to N
// datum codes, each <=256 chars" wire format for vertical_datum, §4.6.
func splitDatums(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

func joinDatums(datums []string) string {
	out := ""
	for i, d := range datums {
		if i > 0 {
			out += ","
		}
		out += d
	}
	return out
}
