package bag

import (
	"errors"
	"fmt"
)

// Kind is a closed taxonomy of the error conditions a BAG operation can
// fail with, per the specification's error handling design (§7).
type Kind int

const (
	_ Kind = iota

	// Container errors.
	NotFound
	PermissionDenied
	AlreadyExists
	CorruptContainer

	// Schema errors.
	MissingMandatoryLayer
	UnsupportedSurfaceType
	TooManyCorrectors
	CannotReadNumCorrectors
	InvalidVRRefinementDimensions

	// Descriptor errors.
	InvalidLayerDescriptor
	UnexpectedLayerDescriptorType
	InvalidDescriptor

	// I/O errors.
	InvalidReadSize
	BoundsExceeded
	DatasetNotFound
	InvalidCompressionLevel
	CompressionNeedsChunkingSet
	LayerRequiresChunkingSet

	// Content errors.
	LayerExists
	LayerNotFound
	InvalidCorrector
	InvalidCast
	UnsupportedAttributeType
	NoRefinement

	// Meta errors.
	ReadOnlyError
	UnsupportedOperation
)

var kindNames = map[Kind]string{
	NotFound:                      "NotFound",
	PermissionDenied:              "PermissionDenied",
	AlreadyExists:                 "AlreadyExists",
	CorruptContainer:              "CorruptContainer",
	MissingMandatoryLayer:         "MissingMandatoryLayer",
	UnsupportedSurfaceType:        "UnsupportedSurfaceType",
	TooManyCorrectors:             "TooManyCorrectors",
	CannotReadNumCorrectors:       "CannotReadNumCorrectors",
	InvalidVRRefinementDimensions: "InvalidVRRefinementDimensions",
	InvalidLayerDescriptor:        "InvalidLayerDescriptor",
	UnexpectedLayerDescriptorType: "UnexpectedLayerDescriptorType",
	InvalidDescriptor:             "InvalidDescriptor",
	InvalidReadSize:               "InvalidReadSize",
	BoundsExceeded:                "BoundsExceeded",
	DatasetNotFound:               "DatasetNotFound",
	InvalidCompressionLevel:       "InvalidCompressionLevel",
	CompressionNeedsChunkingSet:   "CompressionNeedsChunkingSet",
	LayerRequiresChunkingSet:      "LayerRequiresChunkingSet",
	LayerExists:                   "LayerExists",
	LayerNotFound:                 "LayerNotFound",
	InvalidCorrector:              "InvalidCorrector",
	InvalidCast:                   "InvalidCast",
	UnsupportedAttributeType:      "UnsupportedAttributeType",
	NoRefinement:                  "NoRefinement",
	ReadOnlyError:                 "ReadOnlyError",
	UnsupportedOperation:          "UnsupportedOperation",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UnknownKind"
}

// BagError is the typed failure every public BAG operation returns instead
// of relying on exceptions for flow control. It carries the offending path
// or layer name alongside the error kind, mirroring the teacher's habit of
// tacking errors.New(name) onto an errors.Join chain.
type BagError struct {
	Kind  Kind
	Path  string
	Cause error
}

func (e *BagError) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("bag: %s: %s: %v", e.Kind, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("bag: %s: %s", e.Kind, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("bag: %s: %v", e.Kind, e.Cause)
	default:
		return fmt.Sprintf("bag: %s", e.Kind)
	}
}

func (e *BagError) Unwrap() error {
	return e.Cause
}

// NewError constructs a BagError for the given kind, optionally wrapping a
// lower-level cause (typically surfaced from the Container adapter).
func NewError(kind Kind, path string, cause error) *BagError {
	return &BagError{Kind: kind, Path: path, Cause: cause}
}

// IsKind reports whether err is a BagError of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BagError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
