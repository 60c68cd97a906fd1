package bmfs

import (
	"time"

	"github.com/ReturnInfinity/BMFS-sub000/dirent"
	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
)

// SeekWhence mirrors disk.Whence at the file-handle boundary.
type SeekWhence = disk.Whence

const (
	SeekFromStart = disk.FromStart
	SeekFromEnd   = disk.FromEnd
)

// AccessMode controls which operations a File handle permits, decided once
// at OpenFile and fixed for the handle's lifetime.
type AccessMode int

const (
	// ModeRead permits Read only.
	ModeRead AccessMode = iota
	// ModeWrite permits Write only.
	ModeWrite
	// ModeReadWrite permits both Read and Write.
	ModeReadWrite
)

func (m AccessMode) canRead() bool {
	return m == ModeRead || m == ModeReadWrite
}

func (m AccessMode) canWrite() bool {
	return m == ModeWrite || m == ModeReadWrite
}

// File is an open handle onto one file's region. It is not safe for
// concurrent use by multiple goroutines.
type File struct {
	fs        *FileSystem
	entry     dirent.Entry
	entrySlot uint64
	mode      AccessMode

	currentPosition uint64
	dirty           bool
}

// Name returns the file's current basename.
func (f *File) Name() string {
	return f.entry.NameString()
}

// Size returns the number of valid payload bytes currently in the file.
func (f *File) Size() uint64 {
	return f.entry.Size
}

// EOF reports whether the current position is at or past the end of the
// file's valid data.
func (f *File) EOF() bool {
	return f.currentPosition >= f.entry.Size
}

// Read fills `buf` starting at the current position, clamped so the read
// never crosses Entry.Size, and advances the position by the amount
// actually read. Fails with Invalid unless the handle was opened with
// ModeRead or ModeReadWrite.
func (f *File) Read(buf []byte) (int, errors.DriverError) {
	if !f.mode.canRead() {
		return 0, errors.ErrInvalid.WithMessage("file not opened for reading")
	}

	if f.currentPosition >= f.entry.Size {
		return 0, nil
	}

	remaining := f.entry.Size - f.currentPosition
	want := uint64(len(buf))
	if want > remaining {
		want = remaining
	}

	if err := f.fs.disk.Seek(f.entry.Offset+f.currentPosition, disk.FromStart); err != nil {
		return 0, err
	}
	n, err := f.fs.disk.Read(buf[:want])
	if err != nil {
		return n, err
	}
	f.currentPosition += uint64(n)
	return n, nil
}

// Write writes `buf` at the current position, growing the file's reserved
// region via the allocator if the write would extend past Entry.Size. A
// grow may relocate the region to a new offset; when it does, the valid
// prefix already on disk at the old offset is copied across before the new
// bytes land, so a relocating write never loses data written by an earlier
// call. Fails with Invalid unless the handle was opened with ModeWrite or
// ModeReadWrite.
func (f *File) Write(buf []byte) (int, errors.DriverError) {
	if !f.mode.canWrite() {
		return 0, errors.ErrInvalid.WithMessage("file not opened for writing")
	}

	newEnd := f.currentPosition + uint64(len(buf))

	if newEnd > f.entry.Size {
		oldOffset := f.entry.Offset
		validPrefix := f.currentPosition
		if f.entry.Size < validPrefix {
			validPrefix = f.entry.Size
		}

		newOffset, err := f.fs.table.Realloc(newEnd, oldOffset)
		if err != nil {
			return 0, err
		}
		if newOffset != oldOffset {
			// A relocation appended a table entry; persist the new count.
			f.fs.header.TableEntryCount = f.fs.table.Count()
			if err := f.fs.disk.Seek(0, disk.FromStart); err != nil {
				return 0, err
			}
			if err := f.fs.header.Write(f.fs.disk); err != nil {
				return 0, err
			}
		}
		if newOffset != oldOffset && validPrefix > 0 {
			if err := copyRegion(f.fs.disk, oldOffset, newOffset, validPrefix); err != nil {
				return 0, err
			}
		}
		f.entry.Offset = newOffset
	}

	if err := f.fs.disk.Seek(f.entry.Offset+f.currentPosition, disk.FromStart); err != nil {
		return 0, err
	}
	n, err := f.fs.disk.Write(buf)
	if err != nil {
		return n, err
	}

	f.currentPosition += uint64(n)
	if f.currentPosition > f.entry.Size {
		f.entry.Size = f.currentPosition
		if usedErr := f.fs.table.SetUsed(f.entry.Offset, f.entry.Size); usedErr != nil {
			return n, usedErr
		}
	}
	f.dirty = true
	return n, nil
}

// Seek repositions the file's current position. set-from-start
// and set-from-end both require the target to stay within [0, Entry.Size].
func (f *File) Seek(pos uint64, whence SeekWhence) errors.DriverError {
	switch whence {
	case SeekFromStart:
		if pos > f.entry.Size {
			return errors.ErrInvalid.WithMessage("seek position past end of file")
		}
		f.currentPosition = pos
		return nil
	case SeekFromEnd:
		if pos > f.entry.Size {
			return errors.ErrInvalid.WithMessage("seek position past end of file")
		}
		f.currentPosition = f.entry.Size - pos
		return nil
	default:
		return errors.ErrInvalid.WithMessage("unknown whence value")
	}
}

// Close flushes a dirty handle's entry back to its parent directory slot,
// refreshing ModificationTime first.
func (f *File) Close() errors.DriverError {
	if !f.dirty {
		return nil
	}
	f.entry.ModificationTime = uint64(time.Now().Unix())
	if err := dirent.RewriteAt(f.fs.disk, f.entrySlot, &f.entry); err != nil {
		return err
	}
	f.dirty = false
	return nil
}

// copyRegion moves `length` bytes from `src` to `dst` within `d`, in
// fixed-size chunks so a large relocation doesn't require a buffer as big
// as the file itself.
func copyRegion(d disk.Disk, src, dst, length uint64) errors.DriverError {
	const chunkSize = 64 * 1024
	buf := make([]byte, chunkSize)

	for moved := uint64(0); moved < length; {
		want := length - moved
		if want > chunkSize {
			want = chunkSize
		}

		if err := d.Seek(src+moved, disk.FromStart); err != nil {
			return err
		}
		n, err := d.Read(buf[:want])
		if err != nil {
			return err
		}
		if uint64(n) != want {
			return errors.ErrIo.WithMessage("short read while relocating file payload")
		}

		if err := d.Seek(dst+moved, disk.FromStart); err != nil {
			return err
		}
		n, err = d.Write(buf[:want])
		if err != nil {
			return err
		}
		if uint64(n) != want {
			return errors.ErrIo.WithMessage("short write while relocating file payload")
		}

		moved += want
	}
	return nil
}
