// Package table implements the region-allocation table: a fixed-size array
// of TableEntry records tracking every reserved region of the disk, with a
// tombstone-on-delete scheme instead of compaction.
package table

import (
	"github.com/ReturnInfinity/BMFS-sub000/encoding"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
)

// SizeOnDisk is the fixed byte length of one serialized TableEntry.
const SizeOnDisk = 32

// flagDeleted marks a slot whose region has been freed. Freed slots are
// never reused or coalesced; iteration skips them unless asked to show
// deleted entries.
const flagDeleted = 0x01

// TableEntry is one slot of the allocation table.
type TableEntry struct {
	// Offset is the byte offset of the region's first block.
	Offset uint64
	// Used is the number of bytes actually occupied by file data within
	// the region.
	Used uint64
	// Reserved is the number of bytes set aside for the region; always a
	// multiple of the block size.
	Reserved uint64
	Flags    uint32
	Checksum uint32
}

// IsDeleted reports whether the entry has been tombstoned.
func (e *TableEntry) IsDeleted() bool {
	return e.Flags&flagDeleted != 0
}

// SetDeleted tombstones the entry. Unused->Deleted is not a valid
// transition: only an allocated entry may be marked deleted, and doing so
// twice is a no-op (idempotent).
func (e *TableEntry) SetDeleted() {
	e.Flags |= flagDeleted
}

// IsUnused reports whether the slot has never held a region.
func (e *TableEntry) IsUnused() bool {
	return e.Offset == 0 && e.Reserved == 0 && e.Flags == 0
}

// Encode serializes the entry into exactly SizeOnDisk bytes.
func (e *TableEntry) Encode() []byte {
	buf := make([]byte, SizeOnDisk)
	b := encoding.NewBuilder(buf)
	b.PutU64(e.Offset)
	b.PutU64(e.Used)
	b.PutU64(e.Reserved)
	b.PutU32(e.Flags)
	b.PutU32(e.Checksum)
	return buf
}

// Decode populates the entry from exactly SizeOnDisk bytes.
func (e *TableEntry) Decode(buf []byte) errors.DriverError {
	if len(buf) < SizeOnDisk {
		return errors.ErrInvalid.WithMessage("table entry buffer too short")
	}
	e.Offset = encoding.DecodeU64(buf[0:8])
	e.Used = encoding.DecodeU64(buf[8:16])
	e.Reserved = encoding.DecodeU64(buf[16:24])
	e.Flags = encoding.DecodeU32(buf[24:28])
	e.Checksum = encoding.DecodeU32(buf[28:32])
	return nil
}
