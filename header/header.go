// Package header implements the BMFS on-disk superblock along with the
// compile-time constants that size every other component.
package header

import (
	"bytes"

	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/encoding"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
)

const (
	// BlockSize is the fixed unit of region reservation: 2 MiB.
	BlockSize = 2 * 1024 * 1024
	// EntrySize is the fixed size of one directory entry record, in bytes.
	EntrySize = 256
	// NameMax is the longest name a directory entry can hold, including the
	// terminating NUL.
	NameMax = 192
	// TableEntryCountMax bounds the allocation table.
	TableEntryCountMax = 1024
	// MinimumDiskSize is the smallest TotalSize Format() will accept: room
	// for the header, the full table, and one block for the root directory.
	MinimumDiskSize = 3 * BlockSize

	// SizeOnDisk is the fixed byte length of a serialized Header: 8 (sig) +
	// 8*4 (the four uint64 fields) = 40.
	SizeOnDisk = 40

	tableEntrySize = 32
)

// Signature is the 8-byte magic every BMFS disk must begin with.
var Signature = [8]byte{'B', 'M', 'F', 'S', 0, 0, 0, 0}

// Header is the fixed superblock at disk offset 0.
type Header struct {
	Signature       [8]byte
	TotalSize       uint64
	TableOffset     uint64
	RootOffset      uint64
	TableEntryCount uint64
}

// Initialize populates the derived offsets from the compile-time constants
// and sets TotalSize to the minimum formattable size.
func (h *Header) Initialize() {
	h.Signature = Signature
	h.TableOffset = SizeOnDisk
	h.RootOffset = h.TableOffset + TableEntryCountMax*tableEntrySize
	h.TableEntryCount = 0
	h.TotalSize = MinimumDiskSize
}

// HasValidSignature reports whether the header's signature matches the
// BMFS magic.
func (h *Header) HasValidSignature() bool {
	return h.Signature == Signature
}

// Encode serializes the header into exactly SizeOnDisk bytes.
func (h *Header) Encode() []byte {
	buf := make([]byte, SizeOnDisk)
	b := encoding.NewBuilder(buf)
	b.PutBytes(h.Signature[:])
	b.PutU64(h.TotalSize)
	b.PutU64(h.TableOffset)
	b.PutU64(h.RootOffset)
	b.PutU64(h.TableEntryCount)
	return buf
}

// Decode populates the header from exactly SizeOnDisk bytes.
func (h *Header) Decode(buf []byte) errors.DriverError {
	if len(buf) < SizeOnDisk {
		return errors.ErrInvalid.WithMessage("header buffer too short")
	}
	copy(h.Signature[:], buf[0:8])
	h.TotalSize = encoding.DecodeU64(buf[8:16])
	h.TableOffset = encoding.DecodeU64(buf[16:24])
	h.RootOffset = encoding.DecodeU64(buf[24:32])
	h.TableEntryCount = encoding.DecodeU64(buf[32:40])
	return nil
}

// Read deserializes the header from the disk's current position.
func (h *Header) Read(d disk.Disk) errors.DriverError {
	if err := disk.CheckValid(d); err != nil {
		return err
	}

	buf := make([]byte, SizeOnDisk)
	n, err := d.Read(buf)
	if err != nil {
		return err
	}
	if n != SizeOnDisk {
		return errors.ErrIo.WithMessage("short read on header")
	}
	return h.Decode(buf)
}

// Write serializes the header at the disk's current position.
func (h *Header) Write(d disk.Disk) errors.DriverError {
	if err := disk.CheckValid(d); err != nil {
		return err
	}

	buf := h.Encode()
	n, err := d.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.ErrIo.WithMessage("short write on header")
	}
	return nil
}

// CheckSignature reads the first 8 bytes at disk offset 0 and reports
// whether they match the BMFS magic.
func CheckSignature(d disk.Disk) errors.DriverError {
	if err := disk.CheckValid(d); err != nil {
		return err
	}
	if err := d.Seek(0, disk.FromStart); err != nil {
		return err
	}

	buf := make([]byte, 8)
	n, err := d.Read(buf)
	if err != nil {
		return err
	}
	if n != 8 || !bytes.Equal(buf, Signature[:]) {
		return errors.ErrInvalid.WithMessage("disk does not carry a BMFS signature")
	}
	return nil
}
