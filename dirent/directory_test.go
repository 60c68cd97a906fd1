package dirent_test

import (
	"testing"

	"github.com/ReturnInfinity/BMFS-sub000/dirent"
	"github.com/ReturnInfinity/BMFS-sub000/disk/memdisk"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorYieldsNoEntriesOnEmptyDirectory(t *testing.T) {
	d := memdisk.NewOfSize(header.BlockSize)
	dir := &dirent.Entry{Offset: 0, Size: 0}

	c := dirent.NewCursor(d, dir)
	e, err := c.Next()
	require.Nil(t, err)
	assert.Nil(t, e)
}

func TestInsertThenCursorYieldsEntryInOrder(t *testing.T) {
	d := memdisk.NewOfSize(2 * header.BlockSize)
	parentSlot := uint64(0)
	dir := &dirent.Entry{Offset: header.BlockSize, Size: 0}

	var a, b, c dirent.Entry
	require.Nil(t, a.SetName("alpha"))
	require.Nil(t, b.SetName("beta"))
	require.Nil(t, c.SetName("gamma"))

	require.Nil(t, dirent.Insert(d, dir, parentSlot, &a))
	require.Nil(t, dirent.Insert(d, dir, parentSlot, &b))
	require.Nil(t, dirent.Insert(d, dir, parentSlot, &c))

	assert.EqualValues(t, 3*dirent.SizeOnDisk, dir.Size)

	cursor := dirent.NewCursor(d, dir)
	names := []string{}
	for {
		e, err := cursor.Next()
		require.Nil(t, err)
		if e == nil {
			break
		}
		names = append(names, e.NameString())
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, names)
}

func TestInsertFailsWhenDirectoryRegionIsFull(t *testing.T) {
	d := memdisk.NewOfSize(2 * header.BlockSize)
	dir := &dirent.Entry{Offset: header.BlockSize, Size: header.BlockSize}

	var e dirent.Entry
	require.Nil(t, e.SetName("overflow"))

	err := dirent.Insert(d, dir, 0, &e)
	require.NotNil(t, err)
	assert.Equal(t, "ENOSPC", err.Code().String())
}

func TestDeleteTombstonesWithoutShrinkingParent(t *testing.T) {
	d := memdisk.NewOfSize(2 * header.BlockSize)
	dir := &dirent.Entry{Offset: header.BlockSize, Size: 0}

	var e dirent.Entry
	require.Nil(t, e.SetName("todelete"))
	require.Nil(t, dirent.Insert(d, dir, 0, &e))

	entryOffset := dir.Offset
	require.Nil(t, dirent.Delete(d, dir, entryOffset))

	assert.EqualValues(t, dirent.SizeOnDisk, dir.Size)

	cursor := dirent.NewCursor(d, dir)
	got, err := cursor.Next()
	require.Nil(t, err)
	assert.Nil(t, got)
}
