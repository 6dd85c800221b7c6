package bag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBagErrorMessage(t *testing.T) {
	err := NewError(LayerNotFound, "Elevation", nil)
	assert.Equal(t, "bag: LayerNotFound: Elevation", err.Error())

	wrapped := NewError(CorruptContainer, "", errors.New("short read"))
	assert.Equal(t, "bag: CorruptContainer: short read", wrapped.Error())
}

func TestIsKind(t *testing.T) {
	var err error = NewError(BoundsExceeded, "elevation", nil)
	assert.True(t, IsKind(err, BoundsExceeded))
	assert.False(t, IsKind(err, LayerNotFound))
	assert.False(t, IsKind(errors.New("plain"), BoundsExceeded))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewError(InvalidDescriptor, "elevation", cause)
	assert.ErrorIs(t, err, cause)
}
