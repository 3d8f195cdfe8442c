package bare

import "github.com/yaoapp/kun/log"

// Validate the option
func (option *Option) Validate() {

	if option.MinSize < 0 {
		log.Warn("[Bare] the minSize value should not be negative")
		option.MinSize = 0
	}

	if option.MaxSize < 0 {
		log.Warn("[Bare] the maxSize value should not be negative")
		option.MaxSize = 0
	}

	if option.CacheSize < 0 {
		log.Warn("[Bare] the cacheSize value should not be negative")
		option.CacheSize = 0
	}

	if option.MinSize == 0 {
		option.MinSize = 2
	}

	if option.MaxSize == 0 {
		option.MaxSize = 10
	}

	if option.MinSize > 100 {
		log.Warn("[Bare] the maximum value of minSize is 100")
		option.MinSize = 100
	}

	if option.MaxSize > 100 {
		log.Warn("[Bare] the maximum value of maxSize is 100")
		option.MaxSize = 100
	}

	if option.MinSize > option.MaxSize {
		log.Warn("[Bare] the minSize value should be smaller than maxSize")
		option.MaxSize = option.MinSize
	}

	if option.StackSize == 0 {
		option.StackSize = 984
	}

	if option.StackSize > 65536 {
		log.Warn("[Bare] the maximum value of stackSize is 65536 (64M)")
		option.StackSize = 65536
	}

	if option.HeapSizeLimit == 0 {
		option.HeapSizeLimit = 1518338048 // 1.5G
	}

	if option.HeapSizeLimit > 1518338048 {
		log.Warn("[Bare] the maximum value of heapSizeLimit is 1518338048 (1.5G)")
		option.HeapSizeLimit = 1518338048 // 1.5G
	}

	if option.HeapSizeRelease == 0 {
		option.HeapSizeRelease = 52428800 // 50M
	}

	if option.HeapSizeRelease > 524288000 {
		log.Warn("[Bare] the maximum value of heapSizeRelease is 524288000 (500M)")
		option.HeapSizeRelease = 524288000 // 500M
	}

	if option.HeapAvailableSize == 0 {
		option.HeapAvailableSize = 524288000 // 500M
	}

	if option.HeapAvailableSize > option.HeapSizeLimit {
		log.Warn("[Bare] the heapAvailableSize value should be smaller than heapSizeLimit")
		option.HeapAvailableSize = 524288000 // 500M
	}

	if option.CacheSize == 0 {
		option.CacheSize = 100
	}
}
