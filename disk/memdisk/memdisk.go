// Package memdisk implements a memory-backed disk collaborator: a
// fixed-size buffer where reads and writes past the end are truncated to
// the buffer boundary rather than growing it.
package memdisk

import (
	"io"

	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/xaionaro-go/bytesextra"
)

// MemDisk is a disk.Disk backed by a single in-process byte slice. It never
// resizes the slice: Seek/Read/Write are all clamped to [0, len(buf)].
type MemDisk struct {
	buf    []byte
	stream io.ReadWriteSeeker
}

// New wraps `buf` as a disk.Disk. The disk's total capacity is fixed at
// len(buf) for the lifetime of the MemDisk.
func New(buf []byte) *MemDisk {
	return &MemDisk{
		buf:    buf,
		stream: bytesextra.NewReadWriteSeeker(buf),
	}
}

// NewOfSize allocates a new zeroed buffer of `size` bytes and wraps it.
func NewOfSize(size uint64) *MemDisk {
	return New(make([]byte, size))
}

// Bytes returns the underlying buffer. Mutating it is equivalent to writing
// through the disk.
func (d *MemDisk) Bytes() []byte {
	return d.buf
}

func (d *MemDisk) Seek(offset uint64, whence disk.Whence) errors.DriverError {
	var origin int
	switch whence {
	case disk.FromStart:
		origin = io.SeekStart
	case disk.FromEnd:
		origin = io.SeekEnd
	default:
		return errors.ErrInvalid.WithMessage("unknown whence value")
	}

	_, err := d.stream.Seek(int64(offset), origin)
	if err != nil {
		return errors.ErrIo.WrapError(err)
	}
	return nil
}

func (d *MemDisk) Tell() (uint64, errors.DriverError) {
	pos, err := d.stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.ErrIo.WrapError(err)
	}
	return uint64(pos), nil
}

// Read truncates to the buffer boundary instead of growing it; reading past
// the end returns 0 bytes and no error rather than io.EOF, so callers don't
// have to special-case it.
func (d *MemDisk) Read(buf []byte) (int, errors.DriverError) {
	n, err := d.stream.Read(buf)
	if err != nil && err != io.EOF {
		return n, errors.ErrIo.WrapError(err)
	}
	return n, nil
}

func (d *MemDisk) Write(buf []byte) (int, errors.DriverError) {
	n, err := d.stream.Write(buf)
	if err != nil && err != io.EOF {
		return n, errors.ErrIo.WrapError(err)
	}
	return n, nil
}

func (d *MemDisk) Done() errors.DriverError {
	return nil
}
