package bare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectIso(t *testing.T) {
	resetPlatform(t)
	require.NoError(t, Init(&Option{MinSize: 2, MaxSize: 4}))

	iso, err := SelectIso(500 * time.Millisecond)
	require.NoError(t, err)
	assert.True(t, iso.Locked())

	require.NoError(t, iso.Unlock())
	assert.False(t, iso.Locked())
}

func TestMemoryErrorPoisonsHandle(t *testing.T) {
	resetPlatform(t)
	t.Cleanup(func() { resetPlatform(t) })

	// any live heap trips the release threshold
	require.NoError(t, Init(&Option{MinSize: 1, MaxSize: 2, HeapSizeRelease: 1}))

	rt, err := NewRuntime()
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.RunScript("1 + 1", "test.js")
	require.Error(t, err)

	var merr *MemoryError
	require.ErrorAs(t, err, &merr)

	// the handle is poisoned, further calls fail fast with the same error
	_, err2 := rt.RunScript("1 + 1", "test.js")
	require.ErrorAs(t, err2, &merr)
	assert.Same(t, err, err2)
}

func TestSelectIsoTimeout(t *testing.T) {
	resetPlatform(t)
	require.NoError(t, Init(&Option{MinSize: 1, MaxSize: 1}))

	first, err := SelectIso(500 * time.Millisecond)
	require.NoError(t, err)

	// the pool is at its cap and the only isolate is busy
	_, err = SelectIso(50 * time.Millisecond)
	require.Error(t, err)

	var rerr *ResourceExhausted
	require.ErrorAs(t, err, &rerr)

	require.NoError(t, first.Unlock())
}
