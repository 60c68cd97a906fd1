// Package bmfstest holds shared scaffolding for table-driven tests across
// the module: building a freshly formatted, memory-backed file system so
// individual _test.go files don't each repeat the Format/Import boilerplate.
package bmfstest

import (
	"testing"

	bmfs "github.com/ReturnInfinity/BMFS-sub000"
	"github.com/ReturnInfinity/BMFS-sub000/disk/memdisk"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/ReturnInfinity/BMFS-sub000/host"
	"github.com/stretchr/testify/require"
)

// NewFormatted allocates a memory-backed disk of `totalSize` bytes, formats
// it, and imports it, returning a ready-to-use FileSystem.
func NewFormatted(t *testing.T, totalSize uint64) *bmfs.FileSystem {
	t.Helper()

	d := memdisk.NewOfSize(totalSize)
	fs, err := bmfs.New(d, host.Nop{})
	require.Nil(t, err)
	require.Nil(t, fs.Format(totalSize))
	require.Nil(t, fs.Import())
	return fs
}

// MinimalDiskSize is the disk size most tests pass to NewFormatted: 12
// blocks, matching the memory-backed disk size used throughout the
// allocation-packing scenarios exercised by these tests. Format itself
// accepts any size from header.MinimumDiskSize (3 blocks) up.
const MinimalDiskSize = 12 * header.BlockSize
