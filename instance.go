package bare

import (
	"errors"
	"sync"
)

// capture collects the console output of one runtime
type capture struct {
	mutex sync.Mutex
	lines []string
}

func newCapture() *capture {
	return &capture{lines: []string{}}
}

// Append record one console line, the console object calls this from the
// loop-driving goroutine
func (c *capture) Append(level string, line string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lines = append(c.lines, line)
}

// Lines the captured output
func (c *capture) Lines() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	res := make([]string, len(c.lines))
	copy(res, c.lines)
	return res
}

// Reset drop the captured output
func (c *capture) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.lines = c.lines[:0]
}

// Instance the convenience entry point, platform access plus one runtime
// handle plus result capture
type Instance struct {
	rt *Runtime
}

// NewInstance ensure the platform is initialized with default options, then
// create a runtime. Initialization done elsewhere in the process is not
// repeated.
func NewInstance() (*Instance, error) {
	if err := Init(nil); err != nil {
		return nil, err
	}

	rt, err := NewRuntime()
	if err != nil {
		return nil, err
	}
	return &Instance{rt: rt}, nil
}

// Execute run source text and capture the outcome. A JS exception lands in
// ExecutionResult.Exception, the returned error covers setup, runtime and
// memory failures only. Exactly one of Value and Exception is populated.
func (inst *Instance) Execute(source string, origin string) (*ExecutionResult, error) {
	inst.rt.console.Reset()

	value, err := inst.rt.RunScript(source, origin)
	result := &ExecutionResult{
		ExitCode: inst.rt.ExitCode(),
		Output:   inst.rt.console.Lines(),
	}

	if err != nil {
		var jserr *JSError
		if errors.As(err, &jserr) {
			result.Exception = jserr
			return result, nil
		}
		return nil, err
	}

	result.Value = value
	return result, nil
}

// ExecuteScript run a script registered through LoadScript
func (inst *Instance) ExecuteScript(id string) (*ExecutionResult, error) {
	script, err := SelectScript(id)
	if err != nil {
		return nil, err
	}

	inst.rt.console.Reset()
	value, rerr := inst.rt.runLoaded(script)
	result := &ExecutionResult{
		ExitCode: inst.rt.ExitCode(),
		Output:   inst.rt.console.Lines(),
	}

	if rerr != nil {
		var jserr *JSError
		if errors.As(rerr, &jserr) {
			result.Exception = jserr
			return result, nil
		}
		return nil, rerr
	}

	result.Value = value
	return result, nil
}

// RunScript pass-through to the runtime handle
func (inst *Instance) RunScript(source string, origin string) (interface{}, error) {
	return inst.rt.RunScript(source, origin)
}

// Runtime the underlying handle
func (inst *Instance) Runtime() *Runtime {
	return inst.rt
}

// Close release the runtime
func (inst *Instance) Close() error {
	return inst.rt.Close()
}
