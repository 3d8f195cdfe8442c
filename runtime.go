package bare

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yaoapp/kun/log"
	"rogchap.com/v8go"

	"github.com/anaptfox/bare-rs/bridge"
)

// selectIsoTimeout how long NewRuntime waits for a pooled isolate
var selectIsoTimeout = 2 * time.Second

// NewRuntime create a new execution context bound to a fresh event loop. The
// platform must be ready, creation is not retried on failure.
func NewRuntime() (*Runtime, error) {
	if _, err := GetPlatform(); err != nil {
		return nil, err
	}

	iso, err := SelectIso(selectIsoTimeout)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		id:          strings.Split(uuid.New().String(), "-")[0],
		iso:         iso,
		console:     newCapture(),
		jsListeners: map[string][]*v8go.Function{},
	}

	rt.tmpl = rt.makeTemplate()
	rt.ctx = v8go.NewContext(iso.Isolate, rt.tmpl)

	if err := rt.setGlobals(); err != nil {
		rt.ctx.Close()
		iso.Unlock()
		return nil, runtimeError("failed to set up the globals: %s", err.Error())
	}

	log.Trace("[Bare] [%s] runtime created", rt.id)
	return rt, nil
}

// RunScript compile and run source text, then drive the event loop until no
// scheduled work remains or the script calls Bare.exit. Synchronous from the
// caller's perspective, a runaway timer keeps the call blocked.
//
// A JS exception surfaces as a *JSError and leaves the handle usable for
// further calls. A MemoryError poisons the handle, every later call fails
// fast with the same error. Calling RunScript on a closed handle panics.
func (rt *Runtime) RunScript(source string, origin string) (interface{}, error) {
	script := &Script{ID: origin, File: origin, Source: source}
	if strings.HasSuffix(origin, ".ts") {
		code, sm, err := TransformTS([]byte(source))
		if err != nil {
			return nil, err
		}
		script.Source = string(code)
		script.SourceMap = sm
	}
	return rt.runLoaded(script)
}

// runLoaded run an already transformed script on the handle's event loop
func (rt *Runtime) runLoaded(script *Script) (interface{}, error) {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()

	if rt.closed {
		panic("bare: RunScript on a closed runtime")
	}

	if rt.fatal != nil {
		return nil, rt.fatal
	}

	rt.script = script
	rt.loop = newEventLoop(rt)
	rt.exitCode = 0

	value, err := rt.ctx.RunScript(script.Source, script.File)
	if err != nil {
		return nil, rt.convert(err)
	}

	if err := rt.loop.run(); err != nil {
		return nil, rt.convert(err)
	}
	rt.exitCode = rt.loop.exitCode

	if err := rt.checkHealth(); err != nil {
		return nil, err
	}

	goValue, err := bridge.GoValue(value, rt.ctx)
	if err != nil {
		return nil, runtimeError("failed to read the completion value: %s", err.Error())
	}
	return goValue, nil
}

// OnBeforeExit register the before-exit callback, invoked when the loop runs
// out of work. One slot per phase, registering again replaces the previous
// callback.
func (rt *Runtime) OnBeforeExit(callback func()) {
	rt.beforeExit = callback
}

// OnExit register the exit callback, invoked with the exit code after the
// loop stops on clean quiescence or an explicit exit request. A run aborted
// by an uncaught callback exception does not reach the exit phase.
// Registering again replaces the previous callback.
func (rt *Runtime) OnExit(callback func(code int)) {
	rt.exit = callback
}

// OnIdle register the idle callback, invoked each time the loop is about to
// wait with work still scheduled. Registering again replaces the previous
// callback.
func (rt *Runtime) OnIdle(callback func()) {
	rt.idle = callback
}

// ExitCode the code passed to Bare.exit by the last run, zero otherwise
func (rt *Runtime) ExitCode() int {
	return rt.exitCode
}

// ID the runtime id
func (rt *Runtime) ID() string {
	return rt.id
}

// Close release the context and return the isolate to the pool. Safe to call
// after a failed RunScript. Closing twice is a programming error and panics.
func (rt *Runtime) Close() error {
	rt.mutex.Lock()
	defer rt.mutex.Unlock()

	if rt.closed {
		panic("bare: runtime closed twice")
	}
	rt.closed = true

	rt.ctx.Close()
	rt.ctx = nil
	rt.script = nil
	log.Trace("[Bare] [%s] runtime closed", rt.id)
	return rt.iso.Unlock()
}

// convert map an execution failure into the taxonomy and poison the handle
// when the isolate heap is no longer healthy
func (rt *Runtime) convert(err error) error {
	if herr := rt.checkHealth(); herr != nil {
		return herr
	}
	return toJSError(err, rt.script)
}

func (rt *Runtime) checkHealth() error {
	if rt.fatal != nil {
		return rt.fatal
	}
	if !rt.iso.health() {
		stat := rt.iso.GetHeapStatistics()
		rt.fatal = memoryError("isolate heap exhausted, %d of %d bytes in use", stat.UsedHeapSize, stat.HeapSizeLimit)
		log.Error("[Bare] [%s] %s", rt.id, rt.fatal.Error())
		return rt.fatal
	}
	return nil
}

// fireBeforeExit invoke the before-exit phase, host slot first then the
// JS-side listeners
func (rt *Runtime) fireBeforeExit() {
	if rt.beforeExit != nil {
		rt.beforeExit()
	}
	rt.emit("beforeExit")
}

// fireExit invoke the exit phase with the exit code
func (rt *Runtime) fireExit(code int) {
	if rt.exit != nil {
		rt.exit(code)
	}

	jsCode, err := v8go.NewValue(rt.ctx.Isolate(), int32(code))
	if err != nil {
		log.Error("[Bare] [%s] exit: %s", rt.id, err.Error())
		return
	}
	rt.emit("exit", jsCode)
}

// fireIdle invoke the idle phase
func (rt *Runtime) fireIdle() {
	if rt.idle != nil {
		rt.idle()
	}
	rt.emit("idle")
}

// emit call the JS-side listeners registered through Bare.on. Listener
// exceptions are logged, they do not stop the loop.
func (rt *Runtime) emit(event string, args ...v8go.Valuer) {
	for _, fn := range rt.jsListeners[event] {
		if _, err := fn.Call(v8go.Undefined(rt.ctx.Isolate()), args...); err != nil {
			log.Error("[Bare] [%s] %s listener: %s", rt.id, event, err.Error())
		}
	}
}
