package bag

import (
	"encoding/binary"
	"math"

	"github.com/bathyware/bag/internal/container"
)

// Layer is the C4 engine: a gridded (or 1-D variable-resolution) dataset
// plus its descriptor, exposing the packed-byte hyperslab read/write
// contract of §4.4. The simple, interleaved-legacy, georef-metadata and VR
// metadata layers are built on this type, differing only in Descriptor and
// element layout. Surface corrections and the 1-D VR refinement/node layers
// have their own types that address their Dataset directly.
type Layer struct {
	descriptor Descriptor
	dataset    container.Dataset
	rows, cols uint32
}

// NewLayer wires a Descriptor to its backing Dataset. rows/cols are the
// layer's current logical extent.
func NewLayer(d Descriptor, ds container.Dataset, rows, cols uint32) *Layer {
	return &Layer{descriptor: d, dataset: ds, rows: rows, cols: cols}
}

func (l *Layer) Descriptor() Descriptor { return l.descriptor }
func (l *Layer) Rows() uint32           { return l.rows }
func (l *Layer) Cols() uint32           { return l.cols }

// validateBounds enforces §4.4's r0<=r1<rows/c0<=c1<cols contract.
func (l *Layer) validateBounds(r0, c0, r1, c1 uint32) error {
	if r0 > r1 || c0 > c1 {
		return NewError(InvalidReadSize, l.descriptor.Name(), nil)
	}
	if r1 >= l.rows || c1 >= l.cols {
		return NewError(BoundsExceeded, l.descriptor.Name(), nil)
	}
	return nil
}

// Read returns the packed bytes of the rectangular region [r0,c0]..[r1,c1]
// inclusive, in row-major field order.
func (l *Layer) Read(r0, c0, r1, c1 uint32) ([]byte, error) {
	if err := l.validateBounds(r0, c0, r1, c1); err != nil {
		return nil, err
	}
	offset := []uint64{uint64(r0), uint64(c0)}
	count := []uint64{uint64(r1-r0) + 1, uint64(c1-c0) + 1}
	data, err := l.dataset.ReadHyperslab(offset, count)
	if err != nil {
		return nil, NewError(InvalidReadSize, l.descriptor.Name(), err)
	}
	return data, nil
}

// Write packs data into [r0,c0]..[r1,c1], extending the backing dataset
// first when the region exceeds its current extent, and folds every
// Float32-typed element value into the descriptor's running min/max.
func (l *Layer) Write(r0, c0, r1, c1 uint32, data []byte) error {
	if r1 >= l.rows || c1 >= l.cols {
		if err := l.extend(max(l.rows, r1+1), max(l.cols, c1+1)); err != nil {
			return err
		}
	}
	if err := l.validateBounds(r0, c0, r1, c1); err != nil {
		return err
	}

	offset := []uint64{uint64(r0), uint64(c0)}
	count := []uint64{uint64(r1-r0) + 1, uint64(c1-c0) + 1}
	if err := l.dataset.WriteHyperslab(offset, count, data); err != nil {
		return NewError(BoundsExceeded, l.descriptor.Name(), err)
	}

	l.foldMinMax(data)
	return nil
}

func (l *Layer) extend(newRows, newCols uint32) error {
	if err := l.dataset.Extend([]uint64{uint64(newRows), uint64(newCols)}); err != nil {
		return NewError(BoundsExceeded, l.descriptor.Name(), err)
	}
	l.rows, l.cols = newRows, newCols
	return nil
}

// foldMinMax decodes every Float32 scalar field out of a freshly written
// packed-byte buffer and feeds it to the descriptor's SetMinMax, skipping
// sentinel values per §4.4. For compound layouts every Float32 field of the
// record is passed in; descriptors that keep per-field ranges instead (the
// VR metadata descriptor) ignore SetMinMax and are updated by their own
// layer code.
func (l *Layer) foldMinMax(data []byte) {
	layout := l.dataset.Layout()
	recSize := layout.RecordSize()
	if recSize == 0 || len(data)%recSize != 0 {
		return
	}
	n := len(data) / recSize
	for cell := 0; cell < n; cell++ {
		off := cell * recSize
		for _, f := range layout.Fields {
			width := f.Type.Size()
			cells := 1
			if f.ArrayLen > 1 {
				cells = f.ArrayLen
			}
			if f.Type == container.Float32 {
				for k := 0; k < cells; k++ {
					bits := binary.LittleEndian.Uint32(data[off : off+4])
					l.descriptor.SetMinMax(math.Float32frombits(bits))
					off += 4
				}
				continue
			}
			off += width * cells
		}
	}
}

// InterleavedLegacyLayer is a read-only view over a pre-2.0 interleaved
// node/elevation group (§4.3's "Interleaved Legacy" variant). BAG files older
// than 2.0 packed several logical layers into one physical array; this type
// lets newer code address them as ordinary Layers. The group (NodeGroup or
// ElevationGroup) is recorded and reported by Group, but no field is
// projected out: Read returns the backing dataset's whole packed records.
type InterleavedLegacyLayer struct {
	*Layer
	group GroupType
}

func NewInterleavedLegacyLayer(d Descriptor, ds container.Dataset, rows, cols uint32, group GroupType) *InterleavedLegacyLayer {
	return &InterleavedLegacyLayer{Layer: NewLayer(d, ds, rows, cols), group: group}
}

func (l *InterleavedLegacyLayer) Group() GroupType { return l.group }

// Write is disabled: interleaved-legacy layers are a read path only, over
// files too old to support the modern per-layer write API (§4.3 Non-goals).
func (l *InterleavedLegacyLayer) Write(uint32, uint32, uint32, uint32, []byte) error {
	return NewError(UnsupportedOperation, l.descriptor.Name(), nil)
}

// validateChunkingAndCompression enforces §4.4's chunking/compression rules:
// the compression level must lie in 0..9, compression above 0 requires
// chunkDims to be non-empty, and a chunkDims entry of 0 is rejected with
// LayerRequiresChunkingSet.
func validateChunkingAndCompression(chunkDims []uint64, compressionLevel int) error {
	if compressionLevel < 0 || compressionLevel > 9 {
		return NewError(InvalidCompressionLevel, "", nil)
	}
	if compressionLevel > 0 && len(chunkDims) == 0 {
		return NewError(CompressionNeedsChunkingSet, "", nil)
	}
	for _, c := range chunkDims {
		if c == 0 {
			return NewError(LayerRequiresChunkingSet, "", nil)
		}
	}
	return nil
}
