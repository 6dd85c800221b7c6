package bag

// Metadata is the parsed form of a BAG's XML metadata block, as produced by
// an external MetadataProvider. Per §1, the XML schema itself (and its
// validation) is out of scope here; only the fields a Dataset needs at open
// time are modeled.
type Metadata struct {
	HorizontalCRS string
	VerticalCRS   string
	Rows          uint32
	Cols          uint32
	OriginX       float64
	OriginY       float64
	SpacingX      float64
	SpacingY      float64
	LLX, LLY      float64
	URX, URY      float64
	VerticalUncertaintyClass string
	Lineage       []LineageRecord
}

// LineageRecord is one entry in the metadata's processing lineage, recorded
// verbatim from the external metadata provider.
type LineageRecord struct {
	ProcessStep string
	Source      string
	Date        string
}

// MetadataProvider is the external collaborator that parses/emits the BAG
// XML metadata block and validates it against its schema. This
// specification treats it purely as an interface: the XML parser/emitter
// and schema validation are explicitly out of scope (§1).
type MetadataProvider interface {
	// Parse decodes an XML metadata document into a Metadata value.
	Parse(xml []byte) (Metadata, error)

	// Emit serializes a Metadata value back into an XML metadata document.
	Emit(m Metadata) ([]byte, error)
}
