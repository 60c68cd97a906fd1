package memdisk_test

import (
	"testing"

	"github.com/ReturnInfinity/BMFS-sub000/disk"
	"github.com/ReturnInfinity/BMFS-sub000/disk/memdisk"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadBack(t *testing.T) {
	d := memdisk.NewOfSize(16)

	n, err := d.Write([]byte("hello"))
	require.Nil(t, err)
	require.Equal(t, 5, n)

	require.Nil(t, d.Seek(0, disk.FromStart))

	buf := make([]byte, 5)
	n, err = d.Read(buf)
	require.Nil(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestTellTracksPosition(t *testing.T) {
	d := memdisk.NewOfSize(16)
	require.Nil(t, d.Seek(4, disk.FromStart))

	pos, err := d.Tell()
	require.Nil(t, err)
	require.EqualValues(t, 4, pos)
}

func TestSeekFromEnd(t *testing.T) {
	d := memdisk.NewOfSize(16)
	require.Nil(t, d.Seek(0, disk.FromEnd))

	pos, err := d.Tell()
	require.Nil(t, err)
	require.EqualValues(t, 16, pos)
}
