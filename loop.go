package bare

import (
	"container/heap"
	"time"

	"rogchap.com/v8go"
)

// timer one scheduled callback. interval is zero for one-shot timers.
type timer struct {
	id       int32
	deadline time.Time
	interval time.Duration
	repeat   bool
	fn       *v8go.Function
	stopped  bool
	index    int
}

// timerHeap a min-heap ordered by deadline, ties broken by id so timers with
// the same deadline fire in registration order
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].id < h[j].id
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// eventLoop the cooperative single-threaded loop bound to one runtime. All
// methods run on the goroutine that drives RunScript, never concurrently.
type eventLoop struct {
	rt       *Runtime
	timers   timerHeap
	byID     map[int32]*timer
	nextID   int32
	exiting  bool
	exitCode int
}

func newEventLoop(rt *Runtime) *eventLoop {
	return &eventLoop{rt: rt, timers: timerHeap{}, byID: map[int32]*timer{}, nextID: 1}
}

// addTimer schedule a callback after delay milliseconds
func (loop *eventLoop) addTimer(fn *v8go.Function, delay int64, repeat bool) int32 {
	if delay < 0 {
		delay = 0
	}

	id := loop.nextID
	loop.nextID++

	t := &timer{
		id:       id,
		deadline: time.Now().Add(time.Duration(delay) * time.Millisecond),
		interval: time.Duration(delay) * time.Millisecond,
		repeat:   repeat,
		fn:       fn,
	}
	heap.Push(&loop.timers, t)
	loop.byID[id] = t
	return id
}

// clearTimer cancel a scheduled timer. Unknown ids are ignored.
func (loop *eventLoop) clearTimer(id int32) {
	t, has := loop.byID[id]
	if !has {
		return
	}
	t.stopped = true
	delete(loop.byID, id)
}

// requestExit stop the loop after the current callback returns
func (loop *eventLoop) requestExit(code int) {
	loop.exiting = true
	loop.exitCode = code
}

// pending check if any live timer remains
func (loop *eventLoop) pending() bool {
	for _, t := range loop.timers {
		if !t.stopped {
			return true
		}
	}
	return false
}

// run drive the loop until quiescence or explicit exit. The before-exit phase
// may schedule new work, in which case the loop resumes, matching the
// semantics of a standalone script runner. The exit phase fires exactly once,
// on clean quiescence or an explicit exit request; an uncaught callback
// exception aborts the loop without it.
func (loop *eventLoop) run() error {
	ctx := loop.rt.ctx
	ctx.PerformMicrotaskCheckpoint()

	for {
		if err := loop.drain(); err != nil {
			return err
		}

		if loop.exiting {
			break
		}

		loop.rt.fireBeforeExit()
		ctx.PerformMicrotaskCheckpoint()
		if loop.exiting || !loop.pending() {
			break
		}
	}

	loop.rt.fireExit(loop.exitCode)
	return nil
}

// drain fire due timers until none remain or exit is requested
func (loop *eventLoop) drain() error {
	ctx := loop.rt.ctx
	iso := ctx.Isolate()

	for !loop.exiting && loop.timers.Len() > 0 {

		next := loop.timers[0]
		if next.stopped {
			heap.Pop(&loop.timers)
			continue
		}

		now := time.Now()
		if next.deadline.After(now) {
			// The loop is about to wait with work still scheduled
			loop.rt.fireIdle()
			time.Sleep(next.deadline.Sub(now))
			continue
		}

		t := heap.Pop(&loop.timers).(*timer)
		if t.stopped {
			continue
		}

		if t.repeat {
			t.deadline = now.Add(t.interval)
			heap.Push(&loop.timers, t)
		} else {
			delete(loop.byID, t.id)
		}

		_, err := t.fn.Call(v8go.Undefined(iso))
		ctx.PerformMicrotaskCheckpoint()
		if err != nil {
			return err
		}
	}

	return nil
}
