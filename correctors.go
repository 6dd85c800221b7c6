package bag

import (
	"math"

	"github.com/bathyware/bag/internal/container"
)

// CorrectorNode is one surface-correction record, §4.6/§6. Its wire layout
// depends on the owning descriptor's SurfaceType: grid-extents corrector
// datasets imply position from the dataset's own origin/spacing and store
// only the Z offsets (z:f32[N]); irregularly-spaced datasets store an
// explicit position alongside them (x:f64,y:f64,z:f32[N]). Row/Col are
// in-memory convenience only for the grid-extents addressing scheme and are
// never themselves written to the wire.
type CorrectorNode struct {
	Row, Col uint32
	X, Y     float64
	Z        [10]float32
}

// SurfaceCorrections is the C6 dataset: a grid (or irregular point set) of
// CorrectorNode records, plus the SEP resampler that projects them onto an
// elevation grid.
type SurfaceCorrections struct {
	descriptor *SurfaceCorrectionDescriptor
	dataset    container.Dataset
	transform  CoordinateTransform
}

func NewSurfaceCorrections(d *SurfaceCorrectionDescriptor, ds container.Dataset, ct CoordinateTransform) *SurfaceCorrections {
	return &SurfaceCorrections{descriptor: d, dataset: ds, transform: ct}
}

// correctorTransform returns the corrector dataset's own grid<->projected
// mapping, distinct from the elevation grid's transform, §4.6 step 2.
func (s *SurfaceCorrections) correctorTransform() CoordinateTransform {
	d := s.descriptor
	return NewCoordinateTransform(d.SwCornerX, d.SwCornerY, d.SpacingX, d.SpacingY)
}

// WriteNode persists the first NumCorrectors Z values of node at (row, col).
// Only grid-extents surfaces are writable (UnsupportedSurfaceType otherwise);
// a failed dataset write is reported as InvalidCorrector.
func (s *SurfaceCorrections) WriteNode(row, col uint32, node CorrectorNode) error {
	if s.descriptor.SurfaceType != GridExtents {
		return NewError(UnsupportedSurfaceType, s.descriptor.Name(), nil)
	}
	data := packCorrectorNode(node, s.descriptor.SurfaceType, int(s.descriptor.NumCorrectors))
	if err := s.dataset.WriteHyperslab([]uint64{uint64(row), uint64(col)}, []uint64{1, 1}, data); err != nil {
		return NewError(InvalidCorrector, s.descriptor.Name(), err)
	}
	return s.descriptor.FlushAttributes()
}

func (s *SurfaceCorrections) ReadNode(row, col uint32) (CorrectorNode, error) {
	data, err := s.dataset.ReadHyperslab([]uint64{uint64(row), uint64(col)}, []uint64{1, 1})
	if err != nil {
		return CorrectorNode{}, NewError(InvalidReadSize, s.descriptor.Name(), err)
	}
	n := unpackCorrectorNode(data, s.descriptor.SurfaceType, int(s.descriptor.NumCorrectors))
	n.Row, n.Col = row, col
	return n, nil
}

// packCorrectorNode serializes a node per §6's surface-type-dependent wire
// layout: z:f32[n] for grid-extents, x:f64,y:f64,z:f32[n] for irregular.
func packCorrectorNode(n CorrectorNode, st SurfaceType, numCorrectors int) []byte {
	var buf []byte
	if st == IrregularlySpaced {
		buf = make([]byte, 0, 16+4*numCorrectors)
		buf = append(buf, float64Bytes(n.X)...)
		buf = append(buf, float64Bytes(n.Y)...)
	} else {
		buf = make([]byte, 0, 4*numCorrectors)
	}
	for i := 0; i < numCorrectors; i++ {
		buf = appendFloat32(buf, n.Z[i])
	}
	return buf
}

func unpackCorrectorNode(b []byte, st SurfaceType, numCorrectors int) CorrectorNode {
	var n CorrectorNode
	off := 0
	if st == IrregularlySpaced {
		n.X = bytesFloat64(b[0:8])
		n.Y = bytesFloat64(b[8:16])
		off = 16
	}
	for i := 0; i < numCorrectors; i++ {
		n.Z[i] = readFloat32(b[off : off+4])
		off += 4
	}
	return n
}

// Resample implements the SEP (Surface Elevation Profile) inverse-distance
// resampler of §4.6 step 3-4: blend the corrector-index-th Z value of the
// supplied nodes by inverse squared distance to the projected target point,
// scaling the Y term by the transform's aspect ratio when the horizontal CRS
// is geographic. An exact coordinate match short-circuits to that node's
// value. correctorIndex is 0-based here; callers addressing the external
// [1,N] convention must subtract one first.
func (s *SurfaceCorrections) Resample(row, col uint32, correctorIndex int, nodes []CorrectorNode, geographic bool) (float32, error) {
	if correctorIndex < 0 || correctorIndex >= int(s.descriptor.NumCorrectors) {
		return 0, NewError(InvalidCorrector, s.descriptor.Name(), nil)
	}
	if len(nodes) == 0 {
		return 0, NewError(NoRefinement, s.descriptor.Name(), nil)
	}

	x, y := s.transform.GridToProjected(row, col)
	aspect := s.transform.AspectRatio(geographic)

	var weightSum, valueSum float64
	for _, n := range nodes {
		z := n.Z[correctorIndex]
		if isSentinel(z) {
			continue
		}
		dx := n.X - x
		dy := (n.Y - y) * aspect
		distSq := dx*dx + dy*dy
		if distSq == 0 {
			return z, nil
		}
		w := 1.0 / distSq
		weightSum += w
		valueSum += w * float64(z)
	}
	if weightSum == 0 {
		return 0, NewError(NoRefinement, s.descriptor.Name(), nil)
	}
	return float32(valueSum / weightSum), nil
}

// surroundingNodes implements §4.6 step 2 for grid-extents corrector
// datasets: convert the projected point to corrector-grid indices, clamp to
// the valid [0,dims) range, and expand the pair by one when a clamp
// collapsed it to a single row or column, so the resampler always sees up
// to four distinct corners.
func (s *SurfaceCorrections) surroundingNodes(x, y float64) ([]CorrectorNode, error) {
	ct := s.correctorTransform()
	rows, cols := s.dataset.Dims()[0], s.dataset.Dims()[1]

	rf := (y - ct.OriginY) / ct.SpacingY
	cf := (x - ct.OriginX) / ct.SpacingX
	r0 := clampIndex(int64(math.Floor(rf)), rows)
	c0 := clampIndex(int64(math.Floor(cf)), cols)
	r1 := clampIndex(r0+1, rows)
	c1 := clampIndex(c0+1, cols)
	if r1 == r0 {
		r0 = clampIndex(r1-1, rows)
	}
	if c1 == c0 {
		c0 = clampIndex(c1-1, cols)
	}

	seen := map[[2]uint64]bool{}
	var nodes []CorrectorNode
	for _, rc := range [][2]uint64{{r0, c0}, {r0, c1}, {r1, c0}, {r1, c1}} {
		if seen[rc] {
			continue
		}
		seen[rc] = true
		n, err := s.ReadNode(uint32(rc[0]), uint32(rc[1]))
		if err != nil {
			return nil, err
		}
		n.X, n.Y = ct.GridToProjected(uint32(rc[0]), uint32(rc[1]))
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func clampIndex(v int64, dim uint64) uint64 {
	if v < 0 {
		return 0
	}
	if uint64(v) >= dim {
		return dim - 1
	}
	return uint64(v)
}

// ReadCorrected implements §4.6's read_corrected(r0,c0,r1,c1,corrector_index,
// base_layer) operation: for every cell in the inclusive rectangle, resample
// the surface correction (computing its own four surrounding corrector
// nodes for grid-extents surfaces) and add it to the base layer's value,
// emitting NULL_GENERIC wherever the base cell itself is null.
// correctorIndex is 1-based, per the external [1,N] convention.
func (s *SurfaceCorrections) ReadCorrected(r0, c0, r1, c1 uint32, correctorIndex int, base *Layer, geographic bool) ([]float32, error) {
	if correctorIndex < 1 || correctorIndex > int(s.descriptor.NumCorrectors) {
		return nil, NewError(InvalidCorrector, s.descriptor.Name(), nil)
	}
	idx := correctorIndex - 1

	baseData, err := base.Read(r0, c0, r1, c1)
	if err != nil {
		return nil, err
	}

	rows := r1 - r0 + 1
	cols := c1 - c0 + 1
	out := make([]float32, int(rows)*int(cols))

	cell := 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			baseOff := cell * 4
			baseVal := readFloat32(baseData[baseOff : baseOff+4])
			if isSentinel(baseVal) {
				out[cell] = NullGeneric
				cell++
				continue
			}

			x, y := s.transform.GridToProjected(row, col)
			var nodes []CorrectorNode
			if s.descriptor.SurfaceType == GridExtents {
				nodes, err = s.surroundingNodes(x, y)
				if err != nil {
					return nil, err
				}
			}
			corrected, err := s.Resample(row, col, idx, nodes, geographic)
			if err != nil {
				if IsKind(err, NoRefinement) {
					out[cell] = NullGeneric
					cell++
					continue
				}
				return nil, err
			}
			out[cell] = baseVal + corrected
			cell++
		}
	}
	return out, nil
}

func float64Bytes(v float64) []byte {
	bits := math.Float64bits(v)
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	return buf
}

func bytesFloat64(b []byte) float64 {
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(b[i]) << (8 * i)
	}
	return math.Float64frombits(bits)
}
