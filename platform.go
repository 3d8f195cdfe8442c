// Package bare wraps an embeddable JavaScript engine behind a safe
// lifecycle: a process-wide platform initialized exactly once, pooled
// isolates, per-handle execution contexts driven by a cooperative event
// loop, and a closed error taxonomy.
package bare

import (
	"fmt"
	"sync"

	"github.com/yaoapp/kun/log"
	"rogchap.com/v8go"
)

// The engine platform is a process-wide native singleton that does not
// support re-initialization. The state transition is guarded by a mutex,
// bring-up happens while the lock is held so every concurrent caller blocks
// until the first one finishes, then observes the same outcome.
var platform = &Platform{option: &Option{}, state: stateUninitialized}
var platformMutex sync.Mutex

// SetStackSize configure the engine stack size in KB before the platform is
// initialized. Concurrent pre-init callers race on the lock and the first one
// wins, later conflicting values are ignored with a warning. After a
// successful init a call with a different value fails with a SetupError.
func SetStackSize(size uint) error {
	platformMutex.Lock()
	defer platformMutex.Unlock()

	switch platform.state {
	case stateReady, stateInitializing:
		if platform.option.StackSize != size {
			return setupError("stack size is %d, cannot change to %d after the platform is initialized", platform.option.StackSize, size)
		}
		return nil

	case stateFailed:
		return platform.err

	default:
		if platform.option.StackSize != 0 && platform.option.StackSize != size {
			log.Warn("[Bare] stack size already set to %d, ignore %d", platform.option.StackSize, size)
			return nil
		}
		platform.option.StackSize = size
		return nil
	}
}

// Init bring up the engine platform. Thread-safe and idempotent, the first
// caller performs the native bring-up, every concurrent or later caller
// blocks until it completes and observes the same outcome. A failed bring-up
// is sticky, later calls replay the same SetupError without retrying.
func Init(option *Option) error {
	platformMutex.Lock()
	defer platformMutex.Unlock()

	switch platform.state {
	case stateReady:
		if option != nil {
			log.Warn("[Bare] the platform is already initialized, options ignored")
		}
		return nil

	case stateFailed:
		return platform.err

	default:
		return platform.bringUp(option)
	}
}

// GetPlatform returns the ready singleton. Fails with a RuntimeError until
// Init has succeeded, never fails afterwards.
func GetPlatform() (*Platform, error) {
	platformMutex.Lock()
	defer platformMutex.Unlock()

	if platform.state != stateReady {
		return nil, runtimeError("Runtime not initialized")
	}
	return platform, nil
}

// Option the platform options. Read-only once the platform is ready.
func (p *Platform) Option() *Option {
	return p.option
}

// Ready check if the platform is ready
func (p *Platform) Ready() bool {
	platformMutex.Lock()
	defer platformMutex.Unlock()
	return p.state == stateReady
}

// bringUp perform the native bring-up. Called with the platform lock held.
func (p *Platform) bringUp(option *Option) error {
	p.state = stateInitializing

	if option == nil {
		option = &Option{}
	}

	// A stack size configured through SetStackSize wins over the option
	if p.option.StackSize != 0 {
		option.StackSize = p.option.StackSize
	}
	option.Validate()
	p.option = option

	flags := []string{fmt.Sprintf("--stack-size=%d", option.StackSize)}
	if option.ExposeGC {
		flags = append(flags, "--expose-gc")
	}
	if option.OptimizeForMemory {
		flags = append(flags, "--optimize-for-size")
	}
	v8go.SetFlags(flags...)

	sourceCache, err := NewCache(option.CacheSize)
	if err != nil {
		p.fail(setupError("failed to create the source cache: %s", err.Error()))
		return p.err
	}
	caches = sourceCache

	// Prewarm the isolate pool. The first isolate creation is the actual
	// native platform bring-up, it cannot be retried on failure.
	chIsoReady = make(chan *Isolate, option.MaxSize)
	for i := 0; i < option.MinSize; i++ {
		if _, err := NewIsolate(); err != nil {
			p.fail(setupError("failed to create the engine platform: %s", err.Error()))
			return p.err
		}
	}

	log.Info("[Bare] platform ready, %d isolates prewarmed, stack size %dKB", option.MinSize, option.StackSize)
	p.state = stateReady
	p.err = nil
	return nil
}

func (p *Platform) fail(err *SetupError) {
	log.Error("[Bare] %s", err.Error())
	p.state = stateFailed
	p.err = err
}
