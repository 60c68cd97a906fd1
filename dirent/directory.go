package dirent

import (
	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/ReturnInfinity/BMFS-sub000/header"
)

// Cursor is a lazy, forward-only iterator over one directory's entry
// stream. It is not restartable without re-opening.
type Cursor struct {
	disk       disk.Disk
	dir        *Entry
	index      uint64
	lastOffset uint64
}

// NewCursor opens a cursor over the directory named by `dir`.
func NewCursor(d disk.Disk, dir *Entry) *Cursor {
	return &Cursor{disk: d, dir: dir}
}

// Next returns the next entry in the stream, or (nil, nil) at end-of-directory.
// An empty record (Name[0] == 0) halts iteration rather than being skipped, since
// deletion leaves tombstoned-but-present slots mid-stream that a fresh
// listing is not required to paper over.
func (c *Cursor) Next() (*Entry, errors.DriverError) {
	offset := c.index * SizeOnDisk
	if offset >= c.dir.Size {
		return nil, nil
	}

	slot := c.dir.Offset + offset
	if err := c.disk.Seek(slot, disk.FromStart); err != nil {
		return nil, err
	}
	buf := make([]byte, SizeOnDisk)
	n, err := c.disk.Read(buf)
	if err != nil {
		return nil, err
	}
	if n != SizeOnDisk {
		return nil, errors.ErrIo.WithMessage("short read on directory entry")
	}

	var e Entry
	if derr := e.Decode(buf); derr != nil {
		return nil, derr
	}
	c.index++
	c.lastOffset = slot

	if e.IsEmpty() {
		return nil, nil
	}
	return &e, nil
}

// EntryOffset returns the disk byte offset of the record most recently
// returned by Next, for callers that need to rewrite or tombstone it later.
func (c *Cursor) EntryOffset() uint64 {
	return c.lastOffset
}

// RewriteAt serializes `e` at byte offset `at` within the disk, overwriting
// whatever record is already there in place (used for in-place renames and
// for a file handle's Close rewriting its own slot).
func RewriteAt(d disk.Disk, at uint64, e *Entry) errors.DriverError {
	return writeAt(d, at, e)
}

// writeAt serializes `e` at byte offset `at` within the disk.
func writeAt(d disk.Disk, at uint64, e *Entry) errors.DriverError {
	if err := d.Seek(at, disk.FromStart); err != nil {
		return err
	}
	buf := e.Encode()
	n, err := d.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.ErrIo.WithMessage("short write on directory entry")
	}
	return nil
}

// Insert appends `entry` to the end of `parentDir`'s region and rewrites
// the parent's own entry record at `parentSlotOffset`. Both the root
// directory and ordinary subdirectories are bounded to one block.
// Duplicate-name detection is the caller's responsibility, resolved during
// path lookup.
func Insert(d disk.Disk, parentDir *Entry, parentSlotOffset uint64, entry *Entry) errors.DriverError {
	if parentDir.Size+SizeOnDisk > header.BlockSize {
		return errors.ErrNoSpace.WithMessage("directory region is full")
	}

	at := parentDir.Offset + parentDir.Size
	if err := writeAt(d, at, entry); err != nil {
		return err
	}

	parentDir.Size += SizeOnDisk
	return writeAt(d, parentSlotOffset, parentDir)
}

// Delete tombstones the record at `entryOffset` within `parentDir`'s region
// by overwriting it in place with an all-zero entry (empty name and type).
// The parent's Size is not decremented.
func Delete(d disk.Disk, parentDir *Entry, entryOffset uint64) errors.DriverError {
	var cleared Entry
	return writeAt(d, entryOffset, &cleared)
}
