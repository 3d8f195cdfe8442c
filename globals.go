package bare

import (
	"rogchap.com/v8go"

	"github.com/anaptfox/bare-rs/bridge"
	"github.com/anaptfox/bare-rs/functions/atob"
	"github.com/anaptfox/bare-rs/functions/btoa"
	"github.com/anaptfox/bare-rs/objects/console"
)

// Version the wrapper version, exposed to scripts as Bare.version
const Version = "0.9.0"

// events the lifecycle events scripts may listen on
var events = map[string]bool{"beforeExit": true, "exit": true, "idle": true}

// makeTemplate build the global template for a runtime, timers and the Bare
// object close over the runtime so callbacks land on its event loop
func (rt *Runtime) makeTemplate() *v8go.ObjectTemplate {
	iso := rt.iso.Isolate

	tmpl := v8go.NewObjectTemplate(iso)
	tmpl.Set("setTimeout", rt.setTimer(iso, false))
	tmpl.Set("setInterval", rt.setTimer(iso, true))
	tmpl.Set("clearTimeout", rt.clearTimer(iso))
	tmpl.Set("clearInterval", rt.clearTimer(iso))
	tmpl.Set("atob", atob.ExportFunction(iso))
	tmpl.Set("btoa", btoa.ExportFunction(iso))

	bareTmpl := v8go.NewObjectTemplate(iso)
	bareTmpl.Set("version", Version)
	bareTmpl.Set("exit", rt.exitFunction(iso))
	bareTmpl.Set("on", rt.onFunction(iso))
	tmpl.Set("Bare", bareTmpl)

	return tmpl
}

// setGlobals install the globals that need a live context
func (rt *Runtime) setGlobals() error {
	mode := "production"
	if platform.option.Debug {
		mode = "development"
	}
	return console.New(mode, rt.console.Append).Set("console", rt.ctx)
}

// setTimer setTimeout / setInterval
func (rt *Runtime) setTimer(iso *v8go.Isolate, repeat bool) *v8go.FunctionTemplate {
	return v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {

		args := info.Args()
		if len(args) < 1 {
			return bridge.JsException(info.Context(), "missing parameters")
		}

		if !args[0].IsFunction() {
			return bridge.JsException(info.Context(), "the first parameter should be a function")
		}

		fn, err := args[0].AsFunction()
		if err != nil {
			return bridge.JsException(info.Context(), err)
		}

		delay := int64(0)
		if len(args) > 1 {
			delay = args[1].Integer()
		}

		id := rt.loop.addTimer(fn, delay, repeat)
		jsID, err := v8go.NewValue(iso, id)
		if err != nil {
			return bridge.JsException(info.Context(), err)
		}
		return jsID
	})
}

// clearTimer clearTimeout / clearInterval
func (rt *Runtime) clearTimer(iso *v8go.Isolate) *v8go.FunctionTemplate {
	return v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {

		args := info.Args()
		if len(args) > 0 && args[0].IsNumber() {
			rt.loop.clearTimer(args[0].Int32())
		}
		return v8go.Undefined(iso)
	})
}

// exitFunction Bare.exit([code]), stops the event loop
func (rt *Runtime) exitFunction(iso *v8go.Isolate) *v8go.FunctionTemplate {
	return v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {

		code := 0
		args := info.Args()
		if len(args) > 0 && args[0].IsNumber() {
			code = int(args[0].Int32())
		}

		rt.loop.requestExit(code)
		return v8go.Undefined(iso)
	})
}

// onFunction Bare.on(event, listener), the JS-side mirror of the host
// lifecycle slots. Listeners stack, they are invoked in registration order.
func (rt *Runtime) onFunction(iso *v8go.Isolate) *v8go.FunctionTemplate {
	return v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {

		args := info.Args()
		if len(args) < 2 {
			return bridge.JsException(info.Context(), "missing parameters")
		}

		event := args[0].String()
		if !events[event] {
			return bridge.JsException(info.Context(), "unknown event: "+event)
		}

		if !args[1].IsFunction() {
			return bridge.JsException(info.Context(), "the second parameter should be a function")
		}

		fn, err := args[1].AsFunction()
		if err != nil {
			return bridge.JsException(info.Context(), err)
		}

		rt.jsListeners[event] = append(rt.jsListeners[event], fn)
		return v8go.Undefined(iso)
	})
}
