package bag

import (
	"sort"

	"github.com/bathyware/bag/internal/container"
)

// TrackingItem is one entry of a tracking list: a record of a manual edit
// made to a node, carrying enough context to reproduce or audit the change
// (§4.5). The tiledb struct tags let container.LayoutFromStruct derive this
// type's on-disk Layout, the way the teacher's tagged ping/beam structs
// drive schema.go's array construction; the `name=...` attribute pins the
// wire field to the specification's literal spelling where it differs from
// Go's exported-identifier casing.
type TrackingItem struct {
	Row         uint32  `tiledb:"name=row,dtype=uint32,ftype=attr"`
	Col         uint32  `tiledb:"name=col,dtype=uint32,ftype=attr"`
	Depth       float32 `tiledb:"name=depth,dtype=float32,ftype=attr"`
	Uncertainty float32 `tiledb:"name=uncertainty,dtype=float32,ftype=attr"`
	TrackCode   uint8   `tiledb:"name=track_code,dtype=uint8,ftype=attr"`
	ListSeries  uint16  `tiledb:"name=list_series,dtype=uint16,ftype=attr"`
}

// VRTrackingItem additionally carries the VR refinement node the edit
// applies to, §4.7.
type VRTrackingItem struct {
	TrackingItem
	SubRow uint32 `tiledb:"name=sub_row,dtype=uint32,ftype=attr"`
	SubCol uint32 `tiledb:"name=sub_col,dtype=uint32,ftype=attr"`
}

// trackingListLength is the literal attribute name §4.3/§6 mandate for the
// tracking list's persisted element count: "must be written exactly as
// spelled."
const trackingListLength = "Tracking List Length"

// TrackingList is the append-only C5 log of manual edits. Entries are never
// removed except by an explicit sort, which (per §4.5) rewrites the entire
// dataset in place rather than producing an ordering view.
type TrackingList struct {
	dataset container.Dataset
	layout  container.Layout
	items   []TrackingItem
}

func NewTrackingList(ds container.Dataset) (*TrackingList, error) {
	layout := ds.Layout()
	tl := &TrackingList{dataset: ds, layout: layout}
	if err := tl.reload(); err != nil {
		return nil, err
	}
	return tl, nil
}

func (tl *TrackingList) reload() error {
	dims := tl.dataset.Dims()
	if len(dims) == 0 || dims[0] == 0 {
		return tl.repairLengthAttr()
	}
	n := dims[0]
	data, err := tl.dataset.ReadHyperslab([]uint64{0}, []uint64{n})
	if err != nil {
		return NewError(InvalidReadSize, tl.dataset.Path(), err)
	}
	items, err := unpackTrackingItems(tl.layout, data)
	if err != nil {
		return NewError(CorruptContainer, tl.dataset.Path(), err)
	}
	tl.items = items
	return tl.repairLengthAttr()
}

// repairLengthAttr reconciles the "Tracking List Length" attribute with the
// dataset's actual extent, a recovery rule supplemented from the original
// implementation (see DESIGN.md): some legacy writers updated the attribute
// without extending the array, or vice versa. The dataset's own extent is
// authoritative.
func (tl *TrackingList) repairLengthAttr() error {
	var length uint32
	if err := tl.dataset.ReadAttr(trackingListLength, &length); err != nil || int(length) != len(tl.items) {
		return tl.dataset.WriteAttr(trackingListLength, uint32(len(tl.items)))
	}
	return nil
}

// Append adds a new tracking entry, extending the backing dataset.
func (tl *TrackingList) Append(item TrackingItem) error {
	idx := uint64(len(tl.items))
	data := packTrackingItem(tl.layout, item)
	if err := tl.dataset.Extend([]uint64{idx + 1}); err != nil {
		return NewError(BoundsExceeded, tl.dataset.Path(), err)
	}
	if err := tl.dataset.WriteHyperslab([]uint64{idx}, []uint64{1}, data); err != nil {
		return NewError(InvalidCorrector, tl.dataset.Path(), err)
	}
	tl.items = append(tl.items, item)
	return tl.repairLengthAttr()
}

func (tl *TrackingList) Len() int             { return len(tl.items) }
func (tl *TrackingList) Items() []TrackingItem { return append([]TrackingItem(nil), tl.items...) }

// ReadByNode returns every entry recorded against the given (row, col),
// §4.5's read_by_node, in original insertion order.
func (tl *TrackingList) ReadByNode(row, col uint32) []TrackingItem {
	var out []TrackingItem
	for _, it := range tl.items {
		if it.Row == row && it.Col == col {
			out = append(out, it)
		}
	}
	return out
}

// ReadBySeries returns every entry recorded under the given list series,
// §4.5's read_by_series, in original insertion order.
func (tl *TrackingList) ReadBySeries(series uint16) []TrackingItem {
	var out []TrackingItem
	for _, it := range tl.items {
		if it.ListSeries == series {
			out = append(out, it)
		}
	}
	return out
}

// ReadByCode returns every entry recorded under the given track code, §4.5's
// read_by_code, in original insertion order.
func (tl *TrackingList) ReadByCode(code uint8) []TrackingItem {
	var out []TrackingItem
	for _, it := range tl.items {
		if it.TrackCode == code {
			out = append(out, it)
		}
	}
	return out
}

// SortByNode rewrites the list in place, ordered lexicographically by
// (row, col), ties broken by original insertion order (§4.5's sort_by_node).
func (tl *TrackingList) SortByNode() error {
	return tl.sortAndRewrite(func(a, b TrackingItem) bool {
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
}

// SortBySeries rewrites the list in place, ordered ascending by list
// series, ties broken by original insertion order (§4.5's sort_by_series).
func (tl *TrackingList) SortBySeries() error {
	return tl.sortAndRewrite(func(a, b TrackingItem) bool {
		return a.ListSeries < b.ListSeries
	})
}

// SortByCode rewrites the list in place, ordered ascending by track code,
// ties broken by original insertion order (§4.5's sort_by_code).
func (tl *TrackingList) SortByCode() error {
	return tl.sortAndRewrite(func(a, b TrackingItem) bool {
		return a.TrackCode < b.TrackCode
	})
}

func (tl *TrackingList) sortAndRewrite(less func(a, b TrackingItem) bool) error {
	sort.SliceStable(tl.items, func(i, j int) bool {
		return less(tl.items[i], tl.items[j])
	})
	if len(tl.items) == 0 {
		return nil
	}
	buf := make([]byte, 0, tl.layout.RecordSize()*len(tl.items))
	for _, it := range tl.items {
		buf = append(buf, packTrackingItem(tl.layout, it)...)
	}
	if err := tl.dataset.WriteHyperslab([]uint64{0}, []uint64{uint64(len(tl.items))}, buf); err != nil {
		return NewError(InvalidCorrector, tl.dataset.Path(), err)
	}
	return nil
}

func packTrackingItem(layout container.Layout, item TrackingItem) []byte {
	buf := make([]byte, 0, layout.RecordSize())
	buf = appendUint32(buf, item.Row)
	buf = appendUint32(buf, item.Col)
	buf = appendFloat32(buf, item.Depth)
	buf = appendFloat32(buf, item.Uncertainty)
	buf = append(buf, item.TrackCode)
	buf = appendUint16(buf, item.ListSeries)
	return buf
}

func unpackTrackingItems(layout container.Layout, data []byte) ([]TrackingItem, error) {
	recSize := layout.RecordSize()
	if recSize == 0 {
		recSize = 4 + 4 + 4 + 4 + 1 + 2
	}
	if len(data)%recSize != 0 {
		return nil, ErrCorruptTrackingList
	}
	n := len(data) / recSize
	items := make([]TrackingItem, n)
	for i := 0; i < n; i++ {
		off := i * recSize
		rec := data[off : off+recSize]
		items[i] = TrackingItem{
			Row:         readUint32(rec[0:4]),
			Col:         readUint32(rec[4:8]),
			Depth:       readFloat32(rec[8:12]),
			Uncertainty: readFloat32(rec[12:16]),
			TrackCode:   rec[16],
			ListSeries:  readUint16(rec[17:19]),
		}
	}
	return items, nil
}
