package encoding_test

import (
	"math"
	"testing"

	"github.com/ReturnInfinity/BMFS-sub000/encoding"
	"github.com/stretchr/testify/assert"
)

func TestU64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 1 << 31, math.MaxUint32, 1 << 63, math.MaxUint64}
	buf := make([]byte, 8)

	for _, v := range values {
		encoding.EncodeU64(v, buf)
		assert.Equal(t, v, encoding.DecodeU64(buf))
	}
}

func TestU32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 1 << 16, math.MaxUint32}
	buf := make([]byte, 4)

	for _, v := range values {
		encoding.EncodeU32(v, buf)
		assert.Equal(t, v, encoding.DecodeU32(buf))
	}
}

func TestU64IsLittleEndian(t *testing.T) {
	buf := make([]byte, 8)
	encoding.EncodeU64(0x0102030405060708, buf)
	assert.Equal(t, []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, buf)
}
