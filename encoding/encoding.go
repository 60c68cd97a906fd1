// Package encoding implements the little-endian integer pack/unpack pair
// every on-disk field in BMFS is built from.
package encoding

import (
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

// EncodeU32 writes `n` into `buf[:4]` in little-endian order.
func EncodeU32(n uint32, buf []byte) {
	binary.LittleEndian.PutUint32(buf, n)
}

// DecodeU32 reads a little-endian uint32 from `buf[:4]`.
func DecodeU32(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf)
}

// EncodeU64 writes `n` into `buf[:8]` in little-endian order.
func EncodeU64(n uint64, buf []byte) {
	binary.LittleEndian.PutUint64(buf, n)
}

// DecodeU64 reads a little-endian uint64 from `buf[:8]`.
func DecodeU64(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

// Builder sequentially packs little-endian fields into a fixed-size byte
// slice, e.g. a Header or TableEntry record. It wraps bytewriter.Writer,
// which writes directly into the backing slice without any intermediate
// allocation.
type Builder struct {
	w *bytewriter.Writer
}

// NewBuilder creates a Builder that writes into `buf` starting at offset 0.
func NewBuilder(buf []byte) *Builder {
	return &Builder{w: bytewriter.New(buf)}
}

// PutBytes copies `b` verbatim into the next bytes of the buffer.
func (b *Builder) PutBytes(v []byte) {
	b.w.Write(v)
}

// PutU32 appends a little-endian uint32.
func (b *Builder) PutU32(n uint32) {
	binary.Write(b.w, binary.LittleEndian, n)
}

// PutU64 appends a little-endian uint64.
func (b *Builder) PutU64(n uint64) {
	binary.Write(b.w, binary.LittleEndian, n)
}

// PutU8 appends a single byte.
func (b *Builder) PutU8(n uint8) {
	b.w.Write([]byte{n})
}
