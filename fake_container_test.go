package bag

import (
	"encoding/json"
	"fmt"

	"github.com/bathyware/bag/internal/container"
)

// fakeDataset is an in-memory container.Dataset used by this package's unit
// tests in place of the real TileDB-backed adapter, which needs a live
// TileDB install to exercise. It honours the same packed-byte hyperslab
// contract the real adapter does.
type fakeDataset struct {
	path    string
	layout  container.Layout
	dims    []uint64
	maxDims []uint64
	data    []byte
	attrs   map[string]string
}

func newFakeDataset(path string, layout container.Layout, dims []uint64) *fakeDataset {
	recSize := layout.RecordSize()
	n := 1
	for _, d := range dims {
		n *= int(d)
	}
	return &fakeDataset{
		path:   path,
		layout: layout,
		dims:   append([]uint64(nil), dims...),
		data:   make([]byte, n*recSize),
		attrs:  make(map[string]string),
	}
}

func (d *fakeDataset) Path() string           { return d.path }
func (d *fakeDataset) Layout() container.Layout { return d.layout }
func (d *fakeDataset) Dims() []uint64         { return append([]uint64(nil), d.dims...) }
func (d *fakeDataset) MaxDims() []uint64      { return append([]uint64(nil), d.maxDims...) }
func (d *fakeDataset) Close() error           { return nil }

func (d *fakeDataset) cellIndex(offset []uint64) int {
	if len(d.dims) == 1 {
		return int(offset[0])
	}
	return int(offset[0])*int(d.dims[1]) + int(offset[1])
}

func (d *fakeDataset) ReadHyperslab(offset, count []uint64) ([]byte, error) {
	recSize := d.layout.RecordSize()
	if len(d.dims) == 2 {
		rows, cols := int(count[0]), int(count[1])
		out := make([]byte, 0, rows*cols*recSize)
		for r := 0; r < rows; r++ {
			rowStart := (int(offset[0])+r)*int(d.dims[1]) + int(offset[1])
			out = append(out, d.data[rowStart*recSize:(rowStart+cols)*recSize]...)
		}
		return out, nil
	}
	start := int(offset[0]) * recSize
	n := int(count[0]) * recSize
	return append([]byte(nil), d.data[start:start+n]...), nil
}

func (d *fakeDataset) WriteHyperslab(offset, count []uint64, data []byte) error {
	recSize := d.layout.RecordSize()
	if len(d.dims) == 2 {
		rows, cols := int(count[0]), int(count[1])
		for r := 0; r < rows; r++ {
			rowStart := (int(offset[0])+r)*int(d.dims[1]) + int(offset[1])
			src := data[r*cols*recSize : (r+1)*cols*recSize]
			copy(d.data[rowStart*recSize:(rowStart+cols)*recSize], src)
		}
		return nil
	}
	start := int(offset[0]) * recSize
	copy(d.data[start:start+len(data)], data)
	return nil
}

func (d *fakeDataset) Extend(newDims []uint64) error {
	recSize := d.layout.RecordSize()
	if len(newDims) == 1 {
		old := d.data
		d.data = make([]byte, int(newDims[0])*recSize)
		copy(d.data, old)
		d.dims = newDims
		return nil
	}

	oldRows, oldCols := int(d.dims[0]), int(d.dims[1])
	newRows, newCols := int(newDims[0]), int(newDims[1])
	out := make([]byte, newRows*newCols*recSize)
	for r := 0; r < oldRows; r++ {
		srcStart := r * oldCols * recSize
		dstStart := r * newCols * recSize
		copy(out[dstStart:dstStart+oldCols*recSize], d.data[srcStart:srcStart+oldCols*recSize])
	}
	d.data = out
	d.dims = newDims
	return nil
}

func (d *fakeDataset) WriteAttr(name string, value any) error {
	jsn, err := json.Marshal(value)
	if err != nil {
		return err
	}
	d.attrs[name] = string(jsn)
	return nil
}

func (d *fakeDataset) ReadAttr(name string, dest any) error {
	s, ok := d.attrs[name]
	if !ok {
		return fmt.Errorf("%w: %s", container.ErrNotFound, name)
	}
	return json.Unmarshal([]byte(s), dest)
}

// fakeContainer is an in-memory container.Container for dataset-level tests.
type fakeContainer struct {
	datasets map[string]*fakeDataset
	groups   map[string]bool
	attrs    map[string]string
}

func newFakeContainer() *fakeContainer {
	return &fakeContainer{
		datasets: make(map[string]*fakeDataset),
		groups:   make(map[string]bool),
		attrs:    make(map[string]string),
	}
}

func (c *fakeContainer) CreateGroup(path string) error {
	c.groups[path] = true
	return nil
}

func (c *fakeContainer) GroupExists(path string) bool { return c.groups[path] }

func (c *fakeContainer) CreateDataset(path string, spec container.DatasetSpec) (container.Dataset, error) {
	if _, exists := c.datasets[path]; exists {
		return nil, fmt.Errorf("%w: %s", container.ErrInternal, path)
	}
	ds := newFakeDataset(path, spec.Layout, spec.Dims)
	ds.maxDims = spec.MaxDims
	c.datasets[path] = ds
	return ds, nil
}

func (c *fakeContainer) OpenDataset(path string) (container.Dataset, error) {
	ds, ok := c.datasets[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", container.ErrNotFound, path)
	}
	return ds, nil
}

func (c *fakeContainer) DatasetExists(path string) bool {
	_, ok := c.datasets[path]
	return ok
}

func (c *fakeContainer) WriteAttr(name string, value any) error {
	jsn, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.attrs[name] = string(jsn)
	return nil
}

func (c *fakeContainer) ReadAttr(name string, dest any) error {
	s, ok := c.attrs[name]
	if !ok {
		return fmt.Errorf("%w: %s", container.ErrNotFound, name)
	}
	return json.Unmarshal([]byte(s), dest)
}

func (c *fakeContainer) Close() error { return nil }
