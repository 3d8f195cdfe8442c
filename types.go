package bare

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"rogchap.com/v8go"
)

// Option runtime option
type Option struct {
	MinSize           int    `json:"minSize,omitempty"`           // the number of isolates prewarmed at init. max value is 100, the default value is 2
	MaxSize           int    `json:"maxSize,omitempty"`           // the maximum number of live isolates, should be greater than minSize, the default value is 10
	StackSize         uint   `json:"stackSize,omitempty"`         // the engine stack size in KB, the default value is 984
	HeapSizeLimit     uint64 `json:"heapSizeLimit,omitempty"`     // the isolate heap size limit should be smaller than 1.5G, and the default value is 1518338048 (1.5G)
	HeapSizeRelease   uint64 `json:"heapSizeRelease,omitempty"`   // the isolate will be re-created when reaching this value, and the default value is 52428800 (50M)
	HeapAvailableSize uint64 `json:"heapAvailableSize,omitempty"` // the isolate will be re-created when the available size is smaller than this value, and the default value is 524288000 (500M)
	CacheSize         int    `json:"cacheSize,omitempty"`         // the number of transformed sources kept in the cache, the default value is 100
	ExposeGC          bool   `json:"exposeGC,omitempty"`          // if true expose gc() to scripts
	OptimizeForMemory bool   `json:"optimizeForMemory,omitempty"` // if true trade execution speed for a smaller heap
	Debug             bool   `json:"debug,omitempty"`             // if true remap stack traces through source maps and dump console output
}

// Platform the process-wide engine platform. At most one successful
// initialization per process, read-only once ready.
type Platform struct {
	option *Option
	state  uint8
	err    error
}

// Script a loaded script source
type Script struct {
	ID        string
	File      string
	Source    string
	SourceMap []byte
}

// Runtime one execution context bound to one event loop
type Runtime struct {
	id       string
	iso      *Isolate
	ctx      *v8go.Context
	tmpl     *v8go.ObjectTemplate
	loop     *eventLoop
	console  *capture
	script   *Script
	fatal    error // set on MemoryError, poisons the handle
	closed   bool
	mutex    sync.Mutex
	exitCode int

	beforeExit func()
	exit       func(code int)
	idle       func()

	// JS-side listeners registered through Bare.on
	jsListeners map[string][]*v8go.Function
}

// Isolate a pooled engine isolate
type Isolate struct {
	*v8go.Isolate
	status uint8
}

// Isolates the live isolate registry
type Isolates struct {
	Len  int
	Data *sync.Map
}

// ExecutionResult the outcome of running one script. Exactly one of Value and
// Exception is populated.
type ExecutionResult struct {
	Value     interface{}
	Exception *JSError
	ExitCode  int
	Output    []string
}

// Cache the transformed source cache
type Cache struct {
	lru *lru.ARCCache
}

const (
	// IsoReady isolate is ready
	IsoReady uint8 = 0

	// IsoBusy isolate is in used
	IsoBusy uint8 = 1
)

const (
	stateUninitialized uint8 = iota
	stateInitializing
	stateReady
	stateFailed
)
