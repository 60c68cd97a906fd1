// Package dirent implements the directory-entry record and the
// directory-as-entry-stream operations built on top of it.
package dirent

import (
	"bytes"

	"github.com/ReturnInfinity/BMFS-sub000/encoding"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/ReturnInfinity/BMFS-sub000/header"
)

// SizeOnDisk is the fixed byte length of one serialized Entry: header.EntrySize.
const SizeOnDisk = header.EntrySize

// Type is the low-4-bit type tag stored in an entry's Flags field.
type Type uint8

const (
	TypeEmpty     Type = 0
	TypeFile      Type = 1
	TypeDirectory Type = 2
	TypeFifo      Type = 3

	typeMask = 0x0F
)

// Entry is one 256-byte directory record.
type Entry struct {
	Name             [header.NameMax]byte
	Offset           uint64
	Size             uint64
	CreationTime     uint64
	ModificationTime uint64
	Flags            uint32
	Padding          uint32
}

// NameString returns the entry's name up to its terminating NUL.
func (e *Entry) NameString() string {
	n := bytes.IndexByte(e.Name[:], 0)
	if n < 0 {
		n = len(e.Name)
	}
	return string(e.Name[:n])
}

// SetName stores `name` into the entry's fixed-size field, NUL-terminated.
// Returns Invalid if name plus its terminator would not fit in NameMax.
func (e *Entry) SetName(name string) errors.DriverError {
	if len(name)+1 > header.NameMax {
		return errors.ErrInvalid.WithMessage("name exceeds NameMax")
	}
	var buf [header.NameMax]byte
	copy(buf[:], name)
	e.Name = buf
	return nil
}

// Type returns the entry's type tag.
func (e *Entry) Type() Type {
	return Type(e.Flags & typeMask)
}

// SetType overwrites the entry's type tag, preserving any other flag bits.
func (e *Entry) SetType(t Type) {
	e.Flags = (e.Flags &^ typeMask) | uint32(t)
}

// IsEmpty reports whether the entry is a free/tombstoned slot: Name[0] == 0
// marks empty.
func (e *Entry) IsEmpty() bool {
	return e.Name[0] == 0
}

// Clear tombstones the entry in place (directory delete): the type field is
// cleared to empty and the name is blanked so IsEmpty holds.
func (e *Entry) Clear() {
	*e = Entry{}
}

// Encode serializes the entry into exactly SizeOnDisk bytes.
func (e *Entry) Encode() []byte {
	buf := make([]byte, SizeOnDisk)
	b := encoding.NewBuilder(buf)
	b.PutBytes(e.Name[:])
	b.PutU64(e.Offset)
	b.PutU64(e.Size)
	b.PutU64(e.CreationTime)
	b.PutU64(e.ModificationTime)
	b.PutU32(e.Flags)
	b.PutU32(e.Padding)
	return buf
}

// Decode populates the entry from exactly SizeOnDisk bytes.
func (e *Entry) Decode(buf []byte) errors.DriverError {
	if len(buf) < SizeOnDisk {
		return errors.ErrInvalid.WithMessage("directory entry buffer too short")
	}
	copy(e.Name[:], buf[0:header.NameMax])
	off := header.NameMax
	e.Offset = encoding.DecodeU64(buf[off : off+8])
	e.Size = encoding.DecodeU64(buf[off+8 : off+16])
	e.CreationTime = encoding.DecodeU64(buf[off+16 : off+24])
	e.ModificationTime = encoding.DecodeU64(buf[off+24 : off+32])
	e.Flags = encoding.DecodeU32(buf[off+32 : off+36])
	e.Padding = encoding.DecodeU32(buf[off+36 : off+40])
	return nil
}

// CompareByName orders two entries byte-wise lexicographically by name,
// with empty entries sorted last.
func CompareByName(a, b *Entry) int {
	if a.IsEmpty() && b.IsEmpty() {
		return 0
	}
	if a.IsEmpty() {
		return 1
	}
	if b.IsEmpty() {
		return -1
	}
	return bytes.Compare(a.Name[:], b.Name[:])
}

// CompareByOffset orders two entries numerically by starting offset, with
// empty entries sorted last.
func CompareByOffset(a, b *Entry) int {
	if a.IsEmpty() && b.IsEmpty() {
		return 0
	}
	if a.IsEmpty() {
		return 1
	}
	if b.IsEmpty() {
		return -1
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	default:
		return 0
	}
}
