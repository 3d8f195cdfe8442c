// Package bridge casts values across the Go / JavaScript boundary.
package bridge

import (
	"fmt"
	"math"
	"math/big"

	jsoniter "github.com/json-iterator/go"
	"rogchap.com/v8go"
)

// UndefinedT the undefined sentinel, JavaScript undefined has no Go
// counterpart
type UndefinedT byte

// Undefined the undefined value
var Undefined = UndefinedT(0x00)

func (u UndefinedT) String() string {
	return "undefined"
}

// JsValues cast golang values to JavaScript values
func JsValues(ctx *v8go.Context, values []interface{}) ([]v8go.Valuer, error) {
	res := []v8go.Valuer{}
	for _, value := range values {
		jsValue, err := JsValue(ctx, value)
		if err != nil {
			return nil, err
		}
		res = append(res, jsValue)
	}
	return res, nil
}

// JsValue cast golang value to JavaScript value
//
// *  ---------------------------------------------------
// *  | Golang                  | JavaScript            |
// *  ---------------------------------------------------
// *  | nil                     | null                  |
// *  | bool                    | boolean               |
// *  | int, int8 ... uint32    | number(int)           |
// *  | float32, float64        | number(float)         |
// *  | int64, uint64, *big.Int | bigint                |
// *  | string                  | string                |
// *  | map[string]interface{}  | object                |
// *  | []interface{}           | array                 |
// *  | []byte                  | Uint8Array            |
// *  | struct                  | object                |
// *  ---------------------------------------------------
func JsValue(ctx *v8go.Context, value interface{}) (*v8go.Value, error) {

	switch v := value.(type) {

	case string, int32, uint32, int64, uint64, bool, *big.Int, float64:
		return v8go.NewValue(ctx.Isolate(), v)

	case []byte:
		return jsUint8Array(ctx, v)

	case int:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case int8:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case int16:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case uint:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case uint8:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case uint16:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case float32:
		return v8go.NewValue(ctx.Isolate(), float64(v))

	case UndefinedT:
		return v8go.Undefined(ctx.Isolate()), nil

	case nil:
		return v8go.Null(ctx.Isolate()), nil

	default:
		return jsValueParse(ctx, v)
	}
}

func jsValueParse(ctx *v8go.Context, value interface{}) (*v8go.Value, error) {

	data, err := jsoniter.Marshal(value)
	if err != nil {
		return nil, err
	}

	jsValue, err := v8go.JSONParse(ctx, string(data))
	if err != nil {
		return nil, err
	}

	return jsValue, nil
}

// GoValues cast JavaScript values to golang values
func GoValues(jsValues []*v8go.Value, ctx *v8go.Context) ([]interface{}, error) {
	goValues := []interface{}{}
	for _, jsValue := range jsValues {
		goValue, err := GoValue(jsValue, ctx)
		if err != nil {
			return nil, err
		}
		goValues = append(goValues, goValue)
	}
	return goValues, nil
}

// GoValue cast JavaScript value to golang value
//
// *  ---------------------------------------------------
// *  | JavaScript            | Golang                  |
// *  ---------------------------------------------------
// *  | null                  | nil                     |
// *  | undefined             | bridge.UndefinedT       |
// *  | boolean               | bool                    |
// *  | number(int)           | int32                   |
// *  | number(float)         | float64                 |
// *  | bigint                | int64                   |
// *  | string                | string                  |
// *  | object                | map[string]interface{}  |
// *  | array                 | []interface{}           |
// *  | object(Uint8Array)    | []byte                  |
// *  | object(Promise)       | settled value           |
// *  ---------------------------------------------------
func GoValue(value *v8go.Value, ctx *v8go.Context) (interface{}, error) {

	if value == nil || value.IsNull() {
		return nil, nil
	}

	if value.IsUndefined() {
		return Undefined, nil
	}

	if value.IsString() {
		return value.String(), nil
	}

	if value.IsBoolean() {
		return value.Boolean(), nil
	}

	if value.IsNumber() {
		n := value.Number()
		if n == math.Trunc(n) && !math.IsInf(n, 0) && n >= math.MinInt32 && n <= math.MaxInt32 {
			return value.Int32(), nil
		}
		return n, nil
	}

	if value.IsBigInt() {
		return value.BigInt().Int64(), nil
	}

	if value.IsFunction() {
		return Undefined, nil
	}

	if value.IsUint8Array() {
		return goUint8Array(value)
	}

	if value.IsPromise() {
		return goPromise(value, ctx)
	}

	// Object, array etc.
	var goValue interface{}
	return goValueParse(value, goValue)
}

// goPromise read a settled promise. A promise still pending after the loop
// reached quiescence can never settle, it reads as undefined.
func goPromise(value *v8go.Value, ctx *v8go.Context) (interface{}, error) {
	promise, err := value.AsPromise()
	if err != nil {
		return nil, err
	}

	switch promise.State() {
	case v8go.Fulfilled:
		return GoValue(promise.Result(), ctx)

	case v8go.Rejected:
		reason, err := GoValue(promise.Result(), ctx)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("promise rejected: %v", reason)

	default:
		return Undefined, nil
	}
}

// jsUint8Array build a Uint8Array through the global constructor, the engine
// API has no byte-slice value constructor
func jsUint8Array(ctx *v8go.Context, data []byte) (*v8go.Value, error) {

	ctor, err := ctx.Global().Get("Uint8Array")
	if err != nil {
		return nil, err
	}

	fn, err := ctor.AsFunction()
	if err != nil {
		return nil, err
	}

	length, err := v8go.NewValue(ctx.Isolate(), int32(len(data)))
	if err != nil {
		return nil, err
	}

	arr, err := fn.NewInstance(length)
	if err != nil {
		return nil, err
	}

	for i, b := range data {
		if err := arr.SetIdx(uint32(i), uint32(b)); err != nil {
			return nil, err
		}
	}
	return arr.Value, nil
}

// goUint8Array copy a Uint8Array into a byte slice
func goUint8Array(value *v8go.Value) ([]byte, error) {

	obj, err := value.AsObject()
	if err != nil {
		return nil, err
	}

	length, err := obj.Get("length")
	if err != nil {
		return nil, err
	}

	data := make([]byte, length.Integer())
	for i := range data {
		item, err := obj.GetIdx(uint32(i))
		if err != nil {
			return nil, err
		}
		data[i] = byte(item.Integer())
	}
	return data, nil
}

func goValueParse(value *v8go.Value, v interface{}) (interface{}, error) {

	data, err := value.MarshalJSON()
	if err != nil {
		return nil, err
	}

	ptr := &v
	err = jsoniter.Unmarshal(data, ptr)
	if err != nil {
		return nil, err
	}

	return *ptr, nil
}

// Valuers cast the values to v8go valuers
func Valuers(values []*v8go.Value) []v8go.Valuer {
	valuers := []v8go.Valuer{}
	for _, value := range values {
		valuers = append(valuers, value)
	}
	return valuers
}

// JsException throw an Error with the given message and return the exception
// value, for host bindings that need to raise into the running script
func JsException(ctx *v8go.Context, message interface{}) *v8go.Value {

	msg := fmt.Sprintf("%v", message)
	if err, ok := message.(error); ok {
		msg = err.Error()
	}

	jsMessage, verr := v8go.NewValue(ctx.Isolate(), msg)
	if verr != nil {
		return nil
	}

	errorObj, verr := ctx.Global().Get("Error")
	if verr == nil && errorObj.IsFunction() {
		if fn, ferr := errorObj.AsFunction(); ferr == nil {
			if v, cerr := fn.Call(v8go.Undefined(ctx.Isolate()), jsMessage); cerr == nil {
				return ctx.Isolate().ThrowException(v)
			}
		}
	}

	return ctx.Isolate().ThrowException(jsMessage)
}
