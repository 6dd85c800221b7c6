package bag

import (
	"github.com/samber/lo"

	"github.com/bathyware/bag/internal/container"
)

// VRMetadataItem is one coarse-grid cell's pointer into the refinement
// grid: an index into the refinement dataset, the refinement window's own
// dimensions along each axis, and its own coordinate origin/spacing (§4.7).
// DimensionsX/Y are tracked separately (not as one combined cell count) so
// the locator protocol (§4.7.5) can address non-square refinement windows.
type VRMetadataItem struct {
	Index        uint32  `tiledb:"dtype=uint32,ftype=attr"`
	DimensionsX  uint32  `tiledb:"dtype=uint32,ftype=attr"`
	DimensionsY  uint32  `tiledb:"dtype=uint32,ftype=attr"`
	ResolutionX  float32 `tiledb:"dtype=float32,ftype=attr"`
	ResolutionY  float32 `tiledb:"dtype=float32,ftype=attr"`
	SWCornerX    float32 `tiledb:"dtype=float32,ftype=attr"`
	SWCornerY    float32 `tiledb:"dtype=float32,ftype=attr"`
}

// VRRefinementItem is one refined elevation/uncertainty sample, stored
// contiguously per coarse cell starting at VRMetadataItem.Index (§4.7).
type VRRefinementItem struct {
	Depth       float32 `tiledb:"dtype=float32,ftype=attr"`
	Uncertainty float32 `tiledb:"dtype=float32,ftype=attr"`
}

// VRNodeItem carries the node-group auxiliary fields for a VR refinement
// sample: hypothesis strength and count, plus the raw sounding count backing
// each hypothesis, mirroring §3's VR Node Item (hyp_strength, num_hypotheses,
// n_samples).
type VRNodeItem struct {
	HypothesisStrength float32 `tiledb:"dtype=float32,ftype=attr"`
	NumHypotheses      uint32  `tiledb:"dtype=uint32,ftype=attr"`
	NumSamples         uint32  `tiledb:"dtype=uint32,ftype=attr"`
}

// VRMetadataLayer is the coarse-grid index into the refinement layer,
// addressed by the same (row, col) as the fixed-resolution grid.
type VRMetadataLayer struct {
	*Layer
	desc *VarResMetadataDescriptor
}

func NewVRMetadataLayer(d *VarResMetadataDescriptor, ds container.Dataset, rows, cols uint32) *VRMetadataLayer {
	return &VRMetadataLayer{Layer: NewLayer(d, ds, rows, cols), desc: d}
}

// Locator resolves the coarse cell at (row, col) to its refinement index
// and dimensions, returning NoRefinement if the cell carries
// NullVarResIndex (§4.7 "locator protocol"): unrefined coarse cells point
// nowhere.
func (l *VRMetadataLayer) Locator(row, col uint32) (VRMetadataItem, error) {
	data, err := l.Read(row, col, row, col)
	if err != nil {
		return VRMetadataItem{}, err
	}
	item := unpackVRMetadataItem(data)
	if item.Index == NullVarResIndex {
		return VRMetadataItem{}, NewError(NoRefinement, l.descriptor.Name(), nil)
	}
	return item, nil
}

func (l *VRMetadataLayer) SetLocator(row, col uint32, item VRMetadataItem) error {
	if err := l.Write(row, col, row, col, packVRMetadataItem(item)); err != nil {
		return err
	}
	l.desc.UpdateFromItem(item)
	return l.desc.FlushAttributes()
}

// RefinementIndex implements §4.7.5's locator protocol: given the coarse
// cell's VRMetadataItem and a sub-row/sub-col within its refinement window,
// returns the flat index into the refinement (and node) layers.
func RefinementIndex(meta VRMetadataItem, subRow, subCol uint32) (uint32, error) {
	if meta.Index == NullVarResIndex {
		return 0, NewError(NoRefinement, "", nil)
	}
	if subRow >= meta.DimensionsY || subCol >= meta.DimensionsX {
		return 0, NewError(BoundsExceeded, "", nil)
	}
	return meta.Index + subRow*meta.DimensionsX + subCol, nil
}

// VRRefinementLayer is the flat, append-growing dataset of refined samples
// addressed by the VRMetadataLayer's Index/Dimensions pairs.
type VRRefinementLayer struct {
	dataset container.Dataset
	desc    *VarResRefinementDescriptor
	length  uint32
}

func NewVRRefinementLayer(d *VarResRefinementDescriptor, ds container.Dataset) *VRRefinementLayer {
	dims := ds.Dims()
	length := uint32(0)
	if len(dims) > 0 {
		length = uint32(dims[0])
	}
	return &VRRefinementLayer{dataset: ds, desc: d, length: length}
}

// Allocate reserves dimensions consecutive refinement slots, returning the
// starting index a VRMetadataItem should record.
func (r *VRRefinementLayer) Allocate(dimensions uint32) (uint32, error) {
	start := r.length
	if err := r.dataset.Extend([]uint64{uint64(start + dimensions)}); err != nil {
		return 0, NewError(BoundsExceeded, r.desc.Name(), err)
	}
	r.length += dimensions
	return start, nil
}

func (r *VRRefinementLayer) WriteRange(start uint32, items []VRRefinementItem) error {
	buf := make([]byte, 0, len(items)*8)
	for _, it := range items {
		buf = appendFloat32(buf, it.Depth)
		buf = appendFloat32(buf, it.Uncertainty)
		r.desc.Fold(it)
	}
	if err := r.dataset.WriteHyperslab([]uint64{uint64(start)}, []uint64{uint64(len(items))}, buf); err != nil {
		return NewError(BoundsExceeded, r.desc.Name(), err)
	}
	return r.desc.FlushAttributes()
}

func (r *VRRefinementLayer) ReadRange(start, count uint32) ([]VRRefinementItem, error) {
	data, err := r.dataset.ReadHyperslab([]uint64{uint64(start)}, []uint64{uint64(count)})
	if err != nil {
		return nil, NewError(InvalidReadSize, r.desc.Name(), err)
	}
	out := make([]VRRefinementItem, count)
	for i := range out {
		off := i * 8
		out[i] = VRRefinementItem{
			Depth:       readFloat32(data[off : off+4]),
			Uncertainty: readFloat32(data[off+4 : off+8]),
		}
	}
	return out, nil
}

// VRNodeLayer is the flat, append-growing dataset of per-sample hypothesis
// bookkeeping running parallel to the refinement layer, addressed by the
// same index the VRMetadataLayer hands out (§4.7.3: "required to be
// chunked").
type VRNodeLayer struct {
	dataset container.Dataset
	desc    *VarResNodeDescriptor
	length  uint32
}

func NewVRNodeLayer(d *VarResNodeDescriptor, ds container.Dataset) *VRNodeLayer {
	dims := ds.Dims()
	length := uint32(0)
	if len(dims) > 0 {
		length = uint32(dims[0])
	}
	return &VRNodeLayer{dataset: ds, desc: d, length: length}
}

// Allocate reserves dimensions consecutive node slots, mirroring
// VRRefinementLayer.Allocate: the node and refinement layers grow together,
// one slot per refined sample.
func (r *VRNodeLayer) Allocate(dimensions uint32) (uint32, error) {
	start := r.length
	if err := r.dataset.Extend([]uint64{uint64(start + dimensions)}); err != nil {
		return 0, NewError(BoundsExceeded, r.desc.Name(), err)
	}
	r.length += dimensions
	return start, nil
}

func (r *VRNodeLayer) WriteRange(start uint32, items []VRNodeItem) error {
	buf := make([]byte, 0, len(items)*12)
	for _, it := range items {
		buf = appendFloat32(buf, it.HypothesisStrength)
		buf = appendUint32(buf, it.NumHypotheses)
		buf = appendUint32(buf, it.NumSamples)
		r.desc.Fold(it)
	}
	if err := r.dataset.WriteHyperslab([]uint64{uint64(start)}, []uint64{uint64(len(items))}, buf); err != nil {
		return NewError(BoundsExceeded, r.desc.Name(), err)
	}
	return r.desc.FlushAttributes()
}

func (r *VRNodeLayer) ReadRange(start, count uint32) ([]VRNodeItem, error) {
	data, err := r.dataset.ReadHyperslab([]uint64{uint64(start)}, []uint64{uint64(count)})
	if err != nil {
		return nil, NewError(InvalidReadSize, r.desc.Name(), err)
	}
	out := make([]VRNodeItem, count)
	for i := range out {
		off := i * 12
		out[i] = VRNodeItem{
			HypothesisStrength: readFloat32(data[off : off+4]),
			NumHypotheses:      readUint32(data[off+4 : off+8]),
			NumSamples:         readUint32(data[off+8 : off+12]),
		}
	}
	return out, nil
}

// validateNoOverlap checks that no two coarse cells' refinement ranges
// overlap, a flush-time invariant of §4.7: the refinement array is a
// disjoint partition keyed by coarse cell.
func validateNoOverlap(locators []VRMetadataItem) error {
	type span struct{ start, end uint32 }

	refined := lo.Filter(locators, func(l VRMetadataItem, _ int) bool {
		return l.Index != NullVarResIndex
	})
	spans := lo.Map(refined, func(l VRMetadataItem, _ int) span {
		return span{l.Index, l.Index + l.DimensionsX*l.DimensionsY}
	})

	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].start < spans[j].end && spans[j].start < spans[i].end {
				return NewError(InvalidVRRefinementDimensions, "", nil)
			}
		}
	}
	return nil
}

func packVRMetadataItem(item VRMetadataItem) []byte {
	buf := make([]byte, 0, 28)
	buf = appendUint32(buf, item.Index)
	buf = appendUint32(buf, item.DimensionsX)
	buf = appendUint32(buf, item.DimensionsY)
	buf = appendFloat32(buf, item.ResolutionX)
	buf = appendFloat32(buf, item.ResolutionY)
	buf = appendFloat32(buf, item.SWCornerX)
	buf = appendFloat32(buf, item.SWCornerY)
	return buf
}

func unpackVRMetadataItem(b []byte) VRMetadataItem {
	return VRMetadataItem{
		Index:       readUint32(b[0:4]),
		DimensionsX: readUint32(b[4:8]),
		DimensionsY: readUint32(b[8:12]),
		ResolutionX: readFloat32(b[12:16]),
		ResolutionY: readFloat32(b[16:20]),
		SWCornerX:   readFloat32(b[20:24]),
		SWCornerY:   readFloat32(b[24:28]),
	}
}
