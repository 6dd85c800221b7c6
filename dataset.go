package bag

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/bathyware/bag/internal/container"
)

// Dataset is the C9 façade: the top-level handle a caller opens or creates,
// exposing layer enumeration/lookup and the grid<->geographic coordinate
// round trip (§4.9).
type Dataset struct {
	container container.Container
	metadata  Metadata
	crs       CrsTranslator
	transform CoordinateTransform

	layers       map[LayerType]*Layer
	georef       *GeorefMetadataLayer
	vrMeta       *VRMetadataLayer
	vrRefinement *VRRefinementLayer
	tracking     *TrackingList
	vrTracking   *TrackingList
	nextLayerID  uint32
	mode         Mode
}

// bagRoot is the literal group path every dataset/attribute in a BAG
// container lives under, §6: "/BAG_root/...".
const bagRoot = "BAG_root"

// Open opens an existing BAG container at path, reading and validating its
// mandatory Elevation layer (§4.9's "Missing Mandatory Layer" check).
func Open(path string, mode Mode, metaProvider MetadataProvider, crs CrsTranslator) (*Dataset, error) {
	c, err := openContainer(path, mode)
	if err != nil {
		return nil, err
	}

	var xml []byte
	if err := c.ReadAttr("metadata_xml", &xml); err != nil {
		c.Close()
		return nil, NewError(CorruptContainer, path, err)
	}
	meta, err := metaProvider.Parse(xml)
	if err != nil {
		c.Close()
		return nil, NewError(CorruptContainer, path, err)
	}

	ds := &Dataset{
		container: c,
		metadata:  meta,
		crs:       crs,
		transform: NewCoordinateTransform(meta.OriginX, meta.OriginY, meta.SpacingX, meta.SpacingY),
		layers:    make(map[LayerType]*Layer),
		mode:      mode,
	}

	if err := ds.loadLayer(Elevation, pathForLayer(Elevation)); err != nil {
		c.Close()
		return nil, NewError(MissingMandatoryLayer, path, err)
	}
	_ = ds.loadLayer(Uncertainty, pathForLayer(Uncertainty))

	tlDs, err := c.OpenDataset(bagRoot + "/tracking_list")
	if err == nil {
		if tl, err := NewTrackingList(tlDs); err == nil {
			ds.tracking = tl
		}
	}

	return ds, nil
}

// Create creates a new, empty BAG container with a mandatory Elevation
// layer sized rows x cols, §4.9.
func Create(path string, meta Metadata, rows, cols uint32, crs CrsTranslator) (*Dataset, error) {
	c, err := createContainer(path)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		container: c,
		metadata:  meta,
		crs:       crs,
		transform: NewCoordinateTransform(meta.OriginX, meta.OriginY, meta.SpacingX, meta.SpacingY),
		layers:    make(map[LayerType]*Layer),
		mode:      ReadWrite,
	}

	if _, err := ds.CreateLayer(Elevation, rows, cols, nil, 0); err != nil {
		c.Close()
		return nil, err
	}

	trackingLayout, err := container.LayoutFromStruct(TrackingItem{})
	if err != nil {
		c.Close()
		return nil, NewError(InvalidDescriptor, "tracking_list", err)
	}
	trackingSpec := container.DatasetSpec{
		Layout: trackingLayout,
		Rank:   container.Rank1D,
		Dims:   []uint64{0},
	}
	trackingPath := bagRoot + "/tracking_list"
	if _, err := c.CreateDataset(trackingPath, trackingSpec); err != nil {
		c.Close()
		return nil, NewError(InvalidDescriptor, trackingPath, err)
	}
	tlDs, err := c.OpenDataset(trackingPath)
	if err != nil {
		c.Close()
		return nil, err
	}
	tl, err := NewTrackingList(tlDs)
	if err != nil {
		c.Close()
		return nil, err
	}
	ds.tracking = tl

	return ds, nil
}

func (ds *Dataset) loadLayer(lt LayerType, path string) error {
	cds, err := ds.container.OpenDataset(path)
	if err != nil {
		return NewError(LayerNotFound, path, err)
	}
	var id uint32
	if err := cds.ReadAttr("layer_id", &id); err != nil || id == 0 {
		id = ds.NextID()
	} else if id > ds.nextLayerID {
		ds.nextLayerID = id
	}
	d := NewSimpleDescriptor(path, lt, cds, id)
	dims := cds.Dims()
	rows, cols := uint32(0), uint32(0)
	if len(dims) == 2 {
		rows, cols = uint32(dims[0]), uint32(dims[1])
	}
	ds.layers[lt] = NewLayer(d, cds, rows, cols)
	return nil
}

// CreateLayer creates a new gridded layer of the given type and initial
// extent. chunkDims/compressionLevel follow §4.4's chunking/compression
// coupling rule.
func (ds *Dataset) CreateLayer(lt LayerType, rows, cols uint32, chunkDims []uint64, compressionLevel int) (*Layer, error) {
	if ds.mode == ReadOnly {
		return nil, NewError(ReadOnlyError, lt.String(), nil)
	}
	if _, exists := ds.layers[lt]; exists {
		return nil, NewError(LayerExists, lt.String(), nil)
	}
	if err := validateChunkingAndCompression(chunkDims, compressionLevel); err != nil {
		return nil, err
	}

	spec := container.DatasetSpec{
		Layout:           container.Layout{Fields: []container.Field{{Name: "value", Type: elementTypeForLayer(lt)}}},
		Rank:             container.Rank2D,
		Dims:             []uint64{uint64(rows), uint64(cols)},
		ChunkDims:        chunkDims,
		CompressionLevel: compressionLevel,
	}
	path := pathForLayer(lt)
	cds, err := ds.container.CreateDataset(path, spec)
	if err != nil {
		return nil, NewError(InvalidDescriptor, path, err)
	}

	id := ds.NextID()
	if err := cds.WriteAttr("layer_id", id); err != nil {
		return nil, NewError(InvalidDescriptor, path, err)
	}

	d := NewSimpleDescriptor(path, lt, cds, id)
	layer := NewLayer(d, cds, rows, cols)
	ds.layers[lt] = layer
	return layer, nil
}

func elementTypeForLayer(lt LayerType) container.ElementType {
	switch dataTypeForLayer(lt) {
	case DtUint32:
		return container.Uint32
	case DtUint16:
		return container.Uint16
	case DtUint8:
		return container.Uint8
	default:
		return container.Float32
	}
}

// layerPathSegments maps each LayerType to its §6 literal container path
// segment under /BAG_root. Types not named explicitly in §6's table fall
// back to a lower-cased form of their enum name.
var layerPathSegments = map[LayerType]string{
	Elevation:          "elevation",
	Uncertainty:        "uncertainty",
	HypothesisStrength: "hypothesis_strength",
	NumHypotheses:      "num_hypotheses",
	ShoalElevation:     "shoal_elevation",
	StdDev:             "standard_dev",
	NumSoundings:       "num_soundings",
	AverageElevation:   "average_elevation",
	NominalElevation:   "nominal_elevation",
	SurfaceCorrection:  "vertical_datum_corrections",
	GeorefMetadata:     "georef_metadata",
	VarResMetadata:     "varres_metadata",
	VarResRefinement:   "varres_refinement",
	VarResNode:         "varres_node",
}

func pathForLayer(lt LayerType) string {
	seg, ok := layerPathSegments[lt]
	if !ok {
		seg = strings.ToLower(lt.String())
	}
	return fmt.Sprintf("%s/%s", bagRoot, seg)
}

// GetLayer returns the layer of the given type, or LayerNotFound.
func (ds *Dataset) GetLayer(lt LayerType) (*Layer, error) {
	l, ok := ds.layers[lt]
	if !ok {
		return nil, NewError(LayerNotFound, lt.String(), nil)
	}
	return l, nil
}

// ListLayers returns the layer types currently present, in no particular
// order.
func (ds *Dataset) ListLayers() []LayerType {
	return lo.Keys(ds.layers)
}

// CreateGeorefMetadataLayer creates the dataset's georeferenced-metadata
// index layer and value table under the given profile, §4.8.
func (ds *Dataset) CreateGeorefMetadataLayer(rows, cols uint32, profile GeorefProfile) (*GeorefMetadataLayer, error) {
	if ds.georef != nil {
		return nil, NewError(LayerExists, "Georef_Metadata", nil)
	}

	spec := container.DatasetSpec{
		Layout: container.Layout{Fields: []container.Field{{Name: "index", Type: container.Uint16}}},
		Rank:   container.Rank2D,
		Dims:   []uint64{uint64(rows), uint64(cols)},
	}
	path := bagRoot + "/georef_metadata/index"
	cds, err := ds.container.CreateDataset(path, spec)
	if err != nil {
		return nil, NewError(InvalidDescriptor, path, err)
	}

	id := ds.NextID()
	if err := cds.WriteAttr("layer_id", id); err != nil {
		return nil, NewError(InvalidDescriptor, path, err)
	}

	d := NewGeorefMetadataDescriptor(path, cds, profile.Name, nil, id)
	l, err := NewGeorefMetadataLayer(d, cds, rows, cols, profile, ds.container)
	if err != nil {
		return nil, err
	}
	ds.georef = l
	return l, nil
}

// GetGeorefMetadataLayer returns the dataset's georeferenced-metadata
// layer, if one has been created.
func (ds *Dataset) GetGeorefMetadataLayer() (*GeorefMetadataLayer, error) {
	if ds.georef == nil {
		return nil, NewError(LayerNotFound, "Georef_Metadata", nil)
	}
	return ds.georef, nil
}

// GridToGeo converts a (row, col) grid cell to a geographic (lon, lat)
// pair, delegating projected<->geographic conversion to the external CRS
// translator (§4.9).
func (ds *Dataset) GridToGeo(row, col uint32) (lon, lat float64, err error) {
	x, y := ds.transform.GridToProjected(row, col)
	return ds.crs.ProjectedToGeographic(ds.metadata.HorizontalCRS, x, y)
}

// GeoToGrid is the inverse of GridToGeo.
func (ds *Dataset) GeoToGrid(lon, lat float64) (row, col int64, err error) {
	x, y, err := ds.crs.GeographicToProjected(ds.metadata.HorizontalCRS, lon, lat)
	if err != nil {
		return 0, 0, err
	}
	row, col = ds.transform.ProjectedToGrid(x, y)
	return row, col, nil
}

// TrackingList returns the dataset's fixed-resolution tracking list.
func (ds *Dataset) TrackingList() *TrackingList { return ds.tracking }

// NextID returns a monotonically increasing identifier for newly created
// layers/objects within this dataset handle's lifetime (§4.9).
func (ds *Dataset) NextID() uint32 {
	ds.nextLayerID++
	return ds.nextLayerID
}

func (ds *Dataset) Metadata() Metadata { return ds.metadata }

// Close releases the underlying container, flushing any dirty descriptor
// attributes first.
func (ds *Dataset) Close() error {
	for _, l := range ds.layers {
		if err := l.descriptor.FlushAttributes(); err != nil {
			return err
		}
	}
	return ds.container.Close()
}

func openContainer(path string, mode Mode) (container.Container, error) {
	c, err := container.Open(path, mode == ReadWrite)
	if err != nil {
		return nil, NewError(NotFound, path, err)
	}
	return c, nil
}

func createContainer(path string) (container.Container, error) {
	if container.PathExists(path) {
		return nil, NewError(AlreadyExists, path, nil)
	}
	c, err := container.Create(path)
	if err != nil {
		return nil, NewError(InvalidDescriptor, path, err)
	}
	return c, nil
}
