package host_test

import (
	"testing"

	"github.com/ReturnInfinity/BMFS-sub000/host"
	"github.com/stretchr/testify/require"
)

func TestNopLockUnlockRoundTrips(t *testing.T) {
	var h host.Nop
	data, err := h.Init()
	require.NoError(t, err)

	require.NoError(t, h.Lock(data))
	require.NoError(t, h.Unlock(data))
	h.Done(data)
}
