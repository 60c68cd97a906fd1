// Package filedisk implements a file-backed disk collaborator: a host file
// opened read-write, with an optional byte Offset so the file system can
// start past a boot sector or other leading region.
package filedisk

import (
	"io"
	"os"

	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
)

// FileDisk is a disk.Disk backed by an *os.File.
type FileDisk struct {
	file *os.File
	// Offset is added to every seek-from-start so the file system can be
	// embedded after a fixed-size header region, e.g. a bootloader image.
	Offset uint64
}

// Open opens (or creates) `path` for read-write access and wraps it.
func Open(path string, offset uint64) (*FileDisk, errors.DriverError) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.ErrIo.WrapError(err)
	}
	return &FileDisk{file: f, Offset: offset}, nil
}

// Wrap adapts an already-open file, e.g. one obtained from a caller that
// needs to control O_* flags itself.
func Wrap(f *os.File, offset uint64) *FileDisk {
	return &FileDisk{file: f, Offset: offset}
}

func (d *FileDisk) Seek(offset uint64, whence disk.Whence) errors.DriverError {
	switch whence {
	case disk.FromStart:
		if _, err := d.file.Seek(int64(d.Offset+offset), io.SeekStart); err != nil {
			return errors.ErrIo.WrapError(err)
		}
		return nil
	case disk.FromEnd:
		if _, err := d.file.Seek(int64(offset), io.SeekEnd); err != nil {
			return errors.ErrIo.WrapError(err)
		}
		return nil
	default:
		return errors.ErrInvalid.WithMessage("unknown whence value")
	}
}

func (d *FileDisk) Tell() (uint64, errors.DriverError) {
	pos, err := d.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.ErrIo.WrapError(err)
	}
	if uint64(pos) < d.Offset {
		return 0, nil
	}
	return uint64(pos) - d.Offset, nil
}

func (d *FileDisk) Read(buf []byte) (int, errors.DriverError) {
	n, err := d.file.Read(buf)
	if err != nil && err != io.EOF {
		return n, errors.ErrIo.WrapError(err)
	}
	return n, nil
}

func (d *FileDisk) Write(buf []byte) (int, errors.DriverError) {
	n, err := d.file.Write(buf)
	if err != nil {
		return n, errors.ErrIo.WrapError(err)
	}
	return n, nil
}

func (d *FileDisk) Done() errors.DriverError {
	if err := d.file.Close(); err != nil {
		return errors.ErrIo.WrapError(err)
	}
	return nil
}
