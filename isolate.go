package bare

import (
	"sync"
	"time"

	"github.com/yaoapp/kun/log"
	"rogchap.com/v8go"
)

var isolates = &Isolates{Data: &sync.Map{}, Len: 0}
var chIsoReady chan *Isolate
var isoLock sync.Mutex

// NewIsolate create a new isolate and add it to the pool
func NewIsolate() (*Isolate, error) {
	isoLock.Lock()
	defer isoLock.Unlock()

	option := platform.option
	if isolates.Len >= option.MaxSize {
		log.Warn("[Bare] the maximum number of isolates has been reached (%d)", option.MaxSize)
		return nil, resourceExhausted("the maximum number of isolates has been reached (%d)", option.MaxSize)
	}

	log.Trace("[Bare] add a new isolate")
	new := &Isolate{Isolate: v8go.NewIsolate(), status: IsoReady}
	isolates.Add(new)
	return new, nil
}

// SelectIso pick one ready isolate from the pool, creating one when none is
// idle and the pool is below its cap
func SelectIso(timeout time.Duration) (*Isolate, error) {
	if len(chIsoReady) == 0 {
		go NewIsolate()
	}

	select {
	case iso := <-chIsoReady:
		iso.Lock()
		return iso, nil

	case <-time.After(timeout):
		return nil, resourceExhausted("select isolate timeout %v", timeout)
	}
}

// Add a isolate
func (list *Isolates) Add(iso *Isolate) {
	list.Data.Store(iso, true)
	list.Len = list.Len + 1
	chIsoReady <- iso
}

// Remove a isolate
func (list *Isolates) Remove(iso *Isolate) {
	iso.Dispose()
	list.Data.Delete(iso)
	list.Len = list.Len - 1
}

// Range traverse isolates
func (list *Isolates) Range(callback func(iso *Isolate) bool) {
	list.Data.Range(func(key, value any) bool {
		return callback(key.(*Isolate))
	})
}

// Lock the isolate
func (iso *Isolate) Lock() error {
	iso.status = IsoBusy
	return nil
}

// Unlock the isolate and return it to the pool. An isolate that reached the
// heap thresholds is disposed and replaced instead.
func (iso *Isolate) Unlock() error {

	if iso.health() {
		iso.status = IsoReady
		chIsoReady <- iso
		return nil
	}

	// Remove the iso and create new
	go func() {
		isoLock.Lock()
		isolates.Remove(iso)
		isoLock.Unlock()
		NewIsolate()
	}()

	return nil
}

// Locked check if the isolate is locked
func (iso Isolate) Locked() bool {
	return iso.status == IsoBusy
}

func (iso *Isolate) health() bool {
	option := platform.option
	stat := iso.GetHeapStatistics()
	if stat.TotalHeapSize > option.HeapSizeRelease {
		return false
	}

	if stat.TotalAvailableSize < option.HeapAvailableSize {
		return false
	}

	return true
}
