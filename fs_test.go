package bmfs_test

import (
	"bytes"
	"testing"

	bmfs "github.com/ReturnInfinity/BMFS-sub000"
	"github.com/ReturnInfinity/BMFS-sub000/bmfstest"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormatted(t *testing.T, totalSize uint64) *bmfs.FileSystem {
	return bmfstest.NewFormatted(t, totalSize)
}

func TestFormatThenListYieldsNoEntries(t *testing.T) {
	fs := newFormatted(t, 12*header.BlockSize)

	dh, err := fs.OpenDir("/")
	require.Nil(t, err)

	e, nerr := dh.Next()
	require.Nil(t, nerr)
	assert.Nil(t, e)
}

func TestCreateThreeTopLevelDirectoriesPreservesInsertionOrder(t *testing.T) {
	fs := newFormatted(t, 12*header.BlockSize)

	_, err := fs.CreateDir("/tmp")
	require.Nil(t, err)
	_, err = fs.CreateDir("/usr")
	require.Nil(t, err)
	_, err = fs.CreateDir("/home")
	require.Nil(t, err)

	dh, err := fs.OpenDir("/")
	require.Nil(t, err)

	var names []string
	for {
		e, nerr := dh.Next()
		require.Nil(t, nerr)
		if e == nil {
			break
		}
		names = append(names, e.NameString())
		assert.Equal(t, uint8(2), uint8(e.Type()))
	}
	assert.Equal(t, []string{"tmp", "usr", "home"}, names)
}

func TestDuplicateCreationFailsWithExists(t *testing.T) {
	fs := newFormatted(t, 12*header.BlockSize)
	_, err := fs.CreateDir("/tmp")
	require.Nil(t, err)
	_, err = fs.CreateDir("/usr")
	require.Nil(t, err)
	_, err = fs.CreateDir("/home")
	require.Nil(t, err)

	_, err = fs.CreateDir("/usr/local")
	require.Nil(t, err)

	_, err = fs.CreateDir("/usr/local")
	require.NotNil(t, err)
	assert.Equal(t, "EEXIST", err.Code().String())
}

func TestNestedFileCreationThenOpen(t *testing.T) {
	fs := newFormatted(t, 12*header.BlockSize)
	_, err := fs.CreateDir("/tmp")
	require.Nil(t, err)

	_, err = fs.CreateFile("/tmp/a.txt")
	require.Nil(t, err)
	_, err = fs.CreateFile("/tmp/b.txt")
	require.Nil(t, err)

	dh, err := fs.OpenDir("/tmp")
	require.Nil(t, err)

	var names []string
	for {
		e, nerr := dh.Next()
		require.Nil(t, nerr)
		if e == nil {
			break
		}
		names = append(names, e.NameString())
	}
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)
}

func TestWriteThenReadBackThenEOF(t *testing.T) {
	fs := newFormatted(t, 12*header.BlockSize)
	_, err := fs.CreateFile("/x")
	require.Nil(t, err)

	w, err := fs.OpenFile("/x", bmfs.ModeWrite)
	require.Nil(t, err)
	n, werr := w.Write([]byte("hello"))
	require.Nil(t, werr)
	assert.Equal(t, 5, n)
	require.Nil(t, w.Close())

	r, err := fs.OpenFile("/x", bmfs.ModeRead)
	require.Nil(t, err)
	buf := make([]byte, 8)
	n, rerr := r.Read(buf)
	require.Nil(t, rerr)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf[:n]))

	n, rerr = r.Read(buf)
	require.Nil(t, rerr)
	assert.Equal(t, 0, n)
	assert.True(t, r.EOF())
}

func TestRenameWithinSameParentRewritesNameInPlace(t *testing.T) {
	fs := newFormatted(t, bmfstest.MinimalDiskSize)
	_, err := fs.CreateFile("/a")
	require.Nil(t, err)

	require.Nil(t, fs.Rename("/a", "/b"))

	dh, err := fs.OpenDir("/")
	require.Nil(t, err)
	e, nerr := dh.Next()
	require.Nil(t, nerr)
	require.NotNil(t, e)
	assert.Equal(t, "b", e.NameString())
}

func TestRenameAcrossDirectoriesMoves(t *testing.T) {
	fs := newFormatted(t, bmfstest.MinimalDiskSize)
	_, err := fs.CreateDir("/src")
	require.Nil(t, err)
	_, err = fs.CreateDir("/dst")
	require.Nil(t, err)
	_, err = fs.CreateFile("/src/a")
	require.Nil(t, err)

	require.Nil(t, fs.Rename("/src/a", "/dst/a"))

	_, lookupErr := fs.OpenFile("/src/a", bmfs.ModeRead)
	require.NotNil(t, lookupErr)

	f, oerr := fs.OpenFile("/dst/a", bmfs.ModeRead)
	require.Nil(t, oerr)
	assert.Equal(t, "a", f.Name())
}

func TestDeleteDirFailsWhenNotEmpty(t *testing.T) {
	fs := newFormatted(t, bmfstest.MinimalDiskSize)
	_, err := fs.CreateDir("/tmp")
	require.Nil(t, err)
	_, err = fs.CreateFile("/tmp/a")
	require.Nil(t, err)

	err = fs.DeleteDir("/tmp")
	require.NotNil(t, err)
	assert.Equal(t, "ENOTEMPTY", err.Code().String())
}

func TestStatReportsReservedAndUsedBytes(t *testing.T) {
	fs := newFormatted(t, bmfstest.MinimalDiskSize)
	_, err := fs.CreateFile("/x")
	require.Nil(t, err)

	w, err := fs.OpenFile("/x", bmfs.ModeWrite)
	require.Nil(t, err)
	_, werr := w.Write([]byte("hello"))
	require.Nil(t, werr)
	require.Nil(t, w.Close())

	stat, serr := fs.Stat()
	require.Nil(t, serr)
	assert.EqualValues(t, bmfstest.MinimalDiskSize, stat.TotalSize)
	assert.True(t, stat.ReservedBytes >= header.BlockSize)
	assert.EqualValues(t, 5, stat.UsedBytes)
}

func TestReadOnlyHandleRejectsWrite(t *testing.T) {
	fs := newFormatted(t, bmfstest.MinimalDiskSize)
	_, err := fs.CreateFile("/x")
	require.Nil(t, err)

	r, err := fs.OpenFile("/x", bmfs.ModeRead)
	require.Nil(t, err)

	_, werr := r.Write([]byte("hello"))
	require.NotNil(t, werr)
	assert.Equal(t, "EINVAL", werr.Code().String())
}

func TestWriteOnlyHandleRejectsRead(t *testing.T) {
	fs := newFormatted(t, bmfstest.MinimalDiskSize)
	_, err := fs.CreateFile("/x")
	require.Nil(t, err)

	w, err := fs.OpenFile("/x", bmfs.ModeWrite)
	require.Nil(t, err)

	_, rerr := w.Read(make([]byte, 8))
	require.NotNil(t, rerr)
	assert.Equal(t, "EINVAL", rerr.Code().String())
}

func TestWriteAcrossRelocationPreservesEarlierBytes(t *testing.T) {
	fs := newFormatted(t, 24*header.BlockSize)
	_, err := fs.CreateFile("/a")
	require.Nil(t, err)

	w, err := fs.OpenFile("/a", bmfs.ModeWrite)
	require.Nil(t, err)

	// Fill most of /a's initial one-block reservation without growing it,
	// then make /a the non-last table entry by creating /b. The next write
	// below then crosses the block boundary, which only reallocates in
	// place when the written-to entry is the last one in the table.
	first := make([]byte, header.BlockSize-100)
	for i := range first {
		first[i] = byte(i)
	}
	n, werr := w.Write(first)
	require.Nil(t, werr)
	assert.Equal(t, len(first), n)

	_, err = fs.CreateFile("/b")
	require.Nil(t, err)

	second := make([]byte, 200)
	for i := range second {
		second[i] = byte(200 - i)
	}
	n, werr = w.Write(second)
	require.Nil(t, werr)
	assert.Equal(t, len(second), n)
	require.Nil(t, w.Close())

	r, err := fs.OpenFile("/a", bmfs.ModeRead)
	require.Nil(t, err)
	got := make([]byte, len(first)+len(second))
	n, rerr := r.Read(got)
	require.Nil(t, rerr)
	assert.Equal(t, len(got), n)
	assert.True(t, bytes.Equal(first, got[:len(first)]), "bytes written before relocation were lost")
	assert.True(t, bytes.Equal(second, got[len(first):]), "bytes written after relocation are wrong")
}
