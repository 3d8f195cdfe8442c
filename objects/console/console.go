package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/yaoapp/kun/log"
	"rogchap.com/v8go"

	"github.com/anaptfox/bare-rs/bridge"
)

// Sink receives every formatted console line
type Sink func(level string, line string)

// Object Javascript API
type Object struct {
	mode string // production, development
	sink Sink
}

// New create a new Console Object
func New(mode string, sink Sink) *Object {

	// validate mode
	if mode == "" || mode != "development" {
		mode = "production"
	}

	return &Object{
		mode: mode, // production, development
		sink: sink,
	}
}

// ExportObject Export as a Console Object
// console.log("name", {"foo":"bar"} )
func (obj *Object) ExportObject(iso *v8go.Isolate) *v8go.ObjectTemplate {
	tmpl := v8go.NewObjectTemplate(iso)
	tmpl.Set("log", obj.method(iso, "log"))
	tmpl.Set("info", obj.method(iso, "info"))
	tmpl.Set("warn", obj.method(iso, "warn"))
	tmpl.Set("error", obj.method(iso, "error"))
	return tmpl
}

// Set new obj instance
func (obj *Object) Set(name string, ctx *v8go.Context) error {
	instance, err := obj.ExportObject(ctx.Isolate()).NewInstance(ctx)
	if err != nil {
		return err
	}

	err = ctx.Global().Set(name, instance)
	if err != nil {
		return err
	}
	return nil
}

func (obj *Object) method(iso *v8go.Isolate, level string) *v8go.FunctionTemplate {
	return v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {
		return obj.dump(info, level)
	})
}

func (obj *Object) dump(info *v8go.FunctionCallbackInfo, level string) *v8go.Value {
	args := info.Args()
	if len(args) < 1 {
		msg := "console: Missing parameters"
		log.Error(msg)
		return bridge.JsException(info.Context(), msg)
	}

	goArgs, err := bridge.GoValues(args, info.Context())
	if err != nil {
		msg := fmt.Sprintf("console: %s", err.Error())
		log.Error(msg)
		return bridge.JsException(info.Context(), msg)
	}

	line := format(goArgs)
	if obj.sink != nil {
		obj.sink(level, line)
	}

	switch level {
	case "warn":
		log.Warn("console: %s", line)
	case "error":
		log.Error("console: %s", line)
	default:
		log.Debug("console: %s", line)
	}

	if obj.mode == "development" {
		echo(level, line)
	}

	return v8go.Null(info.Context().Isolate())
}

// format join the arguments the way console.log does, objects and arrays as
// JSON
func format(args []interface{}) string {
	parts := []string{}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			parts = append(parts, "null")
		case string:
			parts = append(parts, v)
		case bridge.UndefinedT:
			parts = append(parts, v.String())
		case bool, int32, int64, float64:
			parts = append(parts, fmt.Sprintf("%v", v))
		default:
			data, err := jsoniter.Marshal(v)
			if err != nil {
				parts = append(parts, fmt.Sprintf("%v", v))
				continue
			}
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, " ")
}

func echo(level string, line string) {
	switch level {
	case "warn":
		color.Yellow(line)
	case "error":
		color.Red(line)
	case "info":
		color.Cyan(line)
	default:
		fmt.Println(line)
	}
}
