// Package sizespec implements the human-readable disk-size grammar:
// `[0-9]+ (B|KB|MB|GB|TB|KiB|MiB|GiB|TiB|K|M|G|T)?`.
package sizespec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ReturnInfinity/BMFS-sub000/errors"
)

const (
	si10  = 1000
	bin10 = 1024
)

var siSuffixes = map[string]uint64{
	"B":  1,
	"KB": si10,
	"MB": si10 * si10,
	"GB": si10 * si10 * si10,
	"TB": si10 * si10 * si10 * si10,
}

// binSuffixes covers both the explicit *iB form and the bare-letter form;
// both mean powers of 1024.
var binSuffixes = map[string]uint64{
	"KiB": bin10,
	"MiB": bin10 * bin10,
	"GiB": bin10 * bin10 * bin10,
	"TiB": bin10 * bin10 * bin10 * bin10,
	"K":   bin10,
	"M":   bin10 * bin10,
	"G":   bin10 * bin10 * bin10,
	"T":   bin10 * bin10 * bin10 * bin10,
}

// Parse converts a size string like "256MiB", "10GB", or a bare "2097152"
// into a byte count.
func Parse(s string) (uint64, errors.DriverError) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.ErrInvalid.WithMessage("empty size string")
	}

	digitEnd := 0
	for digitEnd < len(s) && s[digitEnd] >= '0' && s[digitEnd] <= '9' {
		digitEnd++
	}
	if digitEnd == 0 {
		return 0, errors.ErrInvalid.WithMessage("size string must begin with digits")
	}

	n, err := strconv.ParseUint(s[:digitEnd], 10, 64)
	if err != nil {
		return 0, errors.ErrInvalid.WrapError(err)
	}

	suffix := s[digitEnd:]
	if suffix == "" {
		return n, nil
	}
	if mult, ok := siSuffixes[suffix]; ok {
		return n * mult, nil
	}
	if mult, ok := binSuffixes[suffix]; ok {
		return n * mult, nil
	}
	return 0, errors.ErrInvalid.WithMessage(fmt.Sprintf("unrecognized size suffix %q", suffix))
}

// Format renders `bytes` using the largest whole binary suffix that divides
// it evenly, falling back to a bare byte count.
func Format(bytes uint64) string {
	switch {
	case bytes != 0 && bytes%(bin10*bin10*bin10*bin10) == 0:
		return fmt.Sprintf("%dTiB", bytes/(bin10*bin10*bin10*bin10))
	case bytes != 0 && bytes%(bin10*bin10*bin10) == 0:
		return fmt.Sprintf("%dGiB", bytes/(bin10*bin10*bin10))
	case bytes != 0 && bytes%(bin10*bin10) == 0:
		return fmt.Sprintf("%dMiB", bytes/(bin10*bin10))
	case bytes != 0 && bytes%bin10 == 0:
		return fmt.Sprintf("%dKiB", bytes/bin10)
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
