package table_test

import (
	"testing"

	"github.com/ReturnInfinity/BMFS-sub000/disk/memdisk"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/ReturnInfinity/BMFS-sub000/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormattedTable(t *testing.T, totalSize uint64) (*table.Table, *header.Header) {
	t.Helper()
	var h header.Header
	h.Initialize()
	h.TotalSize = totalSize

	d := memdisk.NewOfSize(totalSize)
	tbl, err := table.New(d, &h)
	require.Nil(t, err)
	return tbl, &h
}

func TestAllocatePlacesFirstRegionPastRoot(t *testing.T) {
	tbl, h := newFormattedTable(t, 12*header.BlockSize)

	offset, err := tbl.Allocate(header.BlockSize)
	require.Nil(t, err)
	assert.EqualValues(t, h.RootOffset+header.EntrySize, offset)
}

func TestAllocatePacksConsecutiveRegions(t *testing.T) {
	tbl, h := newFormattedTable(t, 12*header.BlockSize)

	o1, err := tbl.Allocate(header.BlockSize)
	require.Nil(t, err)
	o2, err := tbl.Allocate(header.BlockSize)
	require.Nil(t, err)
	o3, err := tbl.Allocate(2 * header.BlockSize)
	require.Nil(t, err)

	assert.EqualValues(t, h.RootOffset+header.EntrySize, o1)
	assert.EqualValues(t, o1+header.BlockSize, o2)
	assert.EqualValues(t, o2+header.BlockSize, o3)
}

func TestAllocateFailsWhenDiskIsFull(t *testing.T) {
	// Sized to fit the header, the full table, the root self-entry, and
	// exactly one block: the next allocation has no room left.
	totalSize := header.SizeOnDisk + header.TableEntryCountMax*32 + header.EntrySize + header.BlockSize
	tbl, _ := newFormattedTable(t, uint64(totalSize))

	_, err := tbl.Allocate(header.BlockSize)
	require.Nil(t, err)

	_, err = tbl.Allocate(header.BlockSize)
	require.NotNil(t, err)
	assert.Equal(t, "ENOSPC", err.Code().String())
}

func TestFreeTombstonesAndIsIdempotentToReread(t *testing.T) {
	tbl, _ := newFormattedTable(t, 12*header.BlockSize)

	offset, err := tbl.Allocate(header.BlockSize)
	require.Nil(t, err)

	require.Nil(t, tbl.Free(offset))

	seenVisible := false
	require.Nil(t, tbl.Iterate(false, func(_ uint64, _ table.TableEntry) bool {
		seenVisible = true
		return true
	}))
	assert.False(t, seenVisible)

	seenHidden := false
	require.Nil(t, tbl.Iterate(true, func(_ uint64, e table.TableEntry) bool {
		seenHidden = true
		assert.True(t, e.IsDeleted())
		return true
	}))
	assert.True(t, seenHidden)
}

func TestFreeUnknownOffsetReturnsNotFound(t *testing.T) {
	tbl, _ := newFormattedTable(t, 12*header.BlockSize)
	err := tbl.Free(999999)
	require.NotNil(t, err)
	assert.Equal(t, "ENOENT", err.Code().String())
}

func TestAllocationPackingScenario(t *testing.T) {
	tbl, h := newFormattedTable(t, 12*header.BlockSize)

	o1, err := tbl.Allocate(header.BlockSize / 2)
	require.Nil(t, err)
	o2, err := tbl.Allocate(2 * header.BlockSize)
	require.Nil(t, err)
	o3, err := tbl.Allocate(header.BlockSize / 2)
	require.Nil(t, err)

	assert.EqualValues(t, h.RootOffset+header.EntrySize, o1)
	assert.EqualValues(t, o1+header.BlockSize, o2)
	assert.EqualValues(t, o1+3*header.BlockSize, o3)
}

func TestReallocGrowsLastRegionInPlace(t *testing.T) {
	tbl, h := newFormattedTable(t, 12*header.BlockSize)

	offset, err := tbl.Allocate(header.BlockSize)
	require.Nil(t, err)

	newOffset, err := tbl.Realloc(3*header.BlockSize, offset)
	require.Nil(t, err)
	assert.EqualValues(t, h.RootOffset+header.EntrySize, newOffset)
}
