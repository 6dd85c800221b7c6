package bag

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrCorruptTrackingList is returned when a tracking list dataset's byte
// length is not a whole multiple of its record size.
var ErrCorruptTrackingList = errors.New("bag: tracking list record size mismatch")

func appendUint16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendFloat32(buf []byte, v float32) []byte {
	return appendUint32(buf, math.Float32bits(v))
}

func readUint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

func readUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(readUint32(b))
}
