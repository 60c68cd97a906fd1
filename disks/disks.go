// Package disks supplements the core engine with named disk-size presets
// and a "write boot code ahead of the file system" helper, for combining an
// MBR, a boot loader, and a BMFS image on one device.
package disks

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/gocarina/gocsv"
)

// SizePreset is one named, commonly used BMFS disk size.
type SizePreset struct {
	Slug        string `csv:"slug"`
	Name        string `csv:"name"`
	SizeBytes   uint64 `csv:"size_bytes"`
	Description string `csv:"description"`
}

//go:embed disk-sizes.csv
var diskSizesRawCSV string

var sizePresets = map[string]SizePreset{}

func init() {
	var rows []SizePreset
	if err := gocsv.UnmarshalString(diskSizesRawCSV, &rows); err != nil {
		panic(err)
	}
	for _, row := range rows {
		sizePresets[row.Slug] = row
	}
}

// GetPredefinedSize looks up a named size preset, e.g. "floppy-like" or
// "small".
func GetPredefinedSize(slug string) (SizePreset, errors.DriverError) {
	preset, ok := sizePresets[strings.ToLower(slug)]
	if !ok {
		return SizePreset{}, errors.ErrInvalid.WithMessage(
			fmt.Sprintf("no predefined disk size exists with slug %q", slug))
	}
	return preset, nil
}

// PresetSlugs returns every known preset slug, for help text and CLI
// validation.
func PresetSlugs() []string {
	slugs := make([]string, 0, len(sizePresets))
	for slug := range sizePresets {
		slugs = append(slugs, slug)
	}
	return slugs
}

// WriteSeeker is the minimal interface WriteBootCode needs from its target;
// *os.File and any in-memory io.WriteSeeker satisfy it.
type WriteSeeker interface {
	Seek(offset int64, whence int) (int64, error)
	Write(p []byte) (int, error)
}

// WriteBootCode writes `mbr` at the very start of the device and `bootCode`
// immediately after it. The BMFS file system itself is expected to begin at
// `bootAreaSize`, via a disk.Disk backed by e.g. filedisk.FileDisk with
// Offset set to the same value.
func WriteBootCode(w WriteSeeker, mbr, bootCode []byte, bootAreaSize uint64) errors.DriverError {
	if bootAreaSize < header.BlockSize {
		return errors.ErrInvalid.WithMessage("boot area must be at least one block")
	}
	if uint64(len(mbr)+len(bootCode)) > bootAreaSize {
		return errors.ErrInvalid.WithMessage("mbr and boot code do not fit in the requested boot area")
	}

	if _, err := w.Seek(0, 0); err != nil {
		return errors.ErrIo.WrapError(err)
	}
	if len(mbr) > 0 {
		if _, err := w.Write(mbr); err != nil {
			return errors.ErrIo.WrapError(err)
		}
	}
	if _, err := w.Seek(int64(len(mbr)), 0); err != nil {
		return errors.ErrIo.WrapError(err)
	}
	if len(bootCode) > 0 {
		if _, err := w.Write(bootCode); err != nil {
			return errors.ErrIo.WrapError(err)
		}
	}
	return nil
}
