package disks_test

import (
	"testing"

	"github.com/ReturnInfinity/BMFS-sub000/disks"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPredefinedSizeKnownSlug(t *testing.T) {
	preset, err := disks.GetPredefinedSize("standard")
	require.Nil(t, err)
	assert.EqualValues(t, 1073741824, preset.SizeBytes)
}

func TestGetPredefinedSizeUnknownSlug(t *testing.T) {
	_, err := disks.GetPredefinedSize("does-not-exist")
	require.NotNil(t, err)
	assert.Equal(t, "EINVAL", err.Code().String())
}

func TestWriteBootCodeRejectsUndersizedArea(t *testing.T) {
	buf := make([]byte, header.BlockSize)
	w := &seekWriter{buf: buf}
	err := disks.WriteBootCode(w, nil, nil, header.BlockSize-1)
	require.NotNil(t, err)
}

type seekWriter struct {
	buf []byte
	pos int64
}

func (s *seekWriter) Seek(offset int64, whence int) (int64, error) {
	s.pos = offset
	return s.pos, nil
}

func (s *seekWriter) Write(p []byte) (int, error) {
	n := copy(s.buf[s.pos:], p)
	s.pos += int64(n)
	return n, nil
}
