// Package disk defines the abstract block device contract BMFS is built on:
// five operations a backing store must expose, with no alignment
// requirement placed on callers.
package disk

import "github.com/ReturnInfinity/BMFS-sub000/errors"

// Whence selects the origin a Seek offset is measured from.
type Whence int

const (
	// FromStart seeks relative to the beginning of the disk.
	FromStart = Whence(iota)
	// FromEnd seeks relative to the end of the disk.
	FromEnd
)

// Disk is the polymorphic backing store every BMFS operation reads and
// writes through. Implementations are byte-addressable; BMFS itself never
// assumes any particular alignment on reads or writes.
//
// Short reads and writes are signalled through the returned counts, exactly
// as with io.Reader/io.Writer; callers (the core) are responsible for
// checking them and looping if necessary.
type Disk interface {
	// Seek points the disk at `offset` bytes from the origin named by
	// `whence`.
	Seek(offset uint64, whence Whence) errors.DriverError
	// Tell reports the disk's current offset.
	Tell() (uint64, errors.DriverError)
	// Read fills `buf` as far as the backing store allows, returning the
	// number of bytes actually read.
	Read(buf []byte) (int, errors.DriverError)
	// Write stores as much of `buf` as the backing store allows, returning
	// the number of bytes actually written.
	Write(buf []byte) (int, errors.DriverError)
	// Done releases the disk. No further operations may be issued after
	// this is called.
	Done() errors.DriverError
}

// CheckValid verifies that a Disk is non-nil, returning a FaultError
// whenever the five operations are unavailable. In Go, a nil interface value
// already captures "the whole vtable is missing", so this is the one check
// the core needs before using a caller-supplied Disk.
func CheckValid(d Disk) errors.DriverError {
	if d == nil {
		return errors.ErrFault.WithMessage("disk is nil")
	}
	return nil
}
