package bare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionDefaults(t *testing.T) {
	option := &Option{}
	option.Validate()

	assert.Equal(t, 2, option.MinSize)
	assert.Equal(t, 10, option.MaxSize)
	assert.Equal(t, uint(984), option.StackSize)
	assert.Equal(t, uint64(1518338048), option.HeapSizeLimit)
	assert.Equal(t, uint64(52428800), option.HeapSizeRelease)
	assert.Equal(t, uint64(524288000), option.HeapAvailableSize)
	assert.Equal(t, 100, option.CacheSize)
}

func TestOptionClamps(t *testing.T) {
	option := &Option{
		MinSize:           200,
		MaxSize:           300,
		StackSize:         100000,
		HeapSizeLimit:     2000000000,
		HeapSizeRelease:   600000000,
		HeapAvailableSize: 3000000000,
	}
	option.Validate()

	assert.Equal(t, 100, option.MinSize)
	assert.Equal(t, 100, option.MaxSize)
	assert.Equal(t, uint(65536), option.StackSize)
	assert.Equal(t, uint64(1518338048), option.HeapSizeLimit)
	assert.Equal(t, uint64(524288000), option.HeapSizeRelease)
	assert.Equal(t, uint64(524288000), option.HeapAvailableSize)
}

func TestOptionNegatives(t *testing.T) {
	option := &Option{MinSize: -5, MaxSize: -1, CacheSize: -1}
	option.Validate()

	assert.Equal(t, 2, option.MinSize)
	assert.Equal(t, 10, option.MaxSize)
	assert.Equal(t, 100, option.CacheSize)
}

func TestOptionMinGreaterThanMax(t *testing.T) {
	option := &Option{MinSize: 20, MaxSize: 5}
	option.Validate()

	assert.Equal(t, 20, option.MinSize)
	assert.Equal(t, 20, option.MaxSize)
}
