package bare

import (
	"fmt"
	"strings"

	"rogchap.com/v8go"
)

// RuntimeError a handle or context level native call failure. The failure is
// local to the call that produced it, the handle may remain usable.
type RuntimeError struct {
	Message string
}

// SetupError a platform bring-up or configuration failure. Setup failures are
// sticky, the platform replays the same error to every later caller.
type SetupError struct {
	Message string
}

// JSError a script level exception captured from the engine. Type is the
// constructor name ("Error", "TypeError", ...), Stack may be empty.
type JSError struct {
	Type    string
	Message string
	Stack   string
}

// MemoryError a native allocation failure or heap limit trip. Fatal for the
// owning handle, no further operations are attempted on it.
type MemoryError struct {
	Message string
}

// ResourceExhausted a native resource limit was reached. Fatal for the
// attempted operation.
type ResourceExhausted struct {
	Message string
}

func (err *RuntimeError) Error() string {
	return fmt.Sprintf("Runtime error: %s", err.Message)
}

func (err *SetupError) Error() string {
	return fmt.Sprintf("Setup error: %s", err.Message)
}

func (err *JSError) Error() string {
	if err.Stack != "" {
		return fmt.Sprintf("%s: %s\nStack trace:\n%s", err.Type, err.Message, err.Stack)
	}
	return fmt.Sprintf("%s: %s", err.Type, err.Message)
}

func (err *MemoryError) Error() string {
	return fmt.Sprintf("Memory error: %s", err.Message)
}

func (err *ResourceExhausted) Error() string {
	return fmt.Sprintf("Resource exhausted: %s", err.Message)
}

// runtimeError create a RuntimeError
func runtimeError(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

// setupError create a SetupError
func setupError(format string, args ...interface{}) *SetupError {
	return &SetupError{Message: fmt.Sprintf(format, args...)}
}

// memoryError create a MemoryError
func memoryError(format string, args ...interface{}) *MemoryError {
	return &MemoryError{Message: fmt.Sprintf(format, args...)}
}

// resourceExhausted create a ResourceExhausted
func resourceExhausted(format string, args ...interface{}) *ResourceExhausted {
	return &ResourceExhausted{Message: fmt.Sprintf(format, args...)}
}

// toJSError convert an error returned by a script execution call into the
// taxonomy. A *v8go.JSError becomes a *JSError, the pending exception was
// already consumed by the failing call so the native state is clear. Anything
// else becomes a RuntimeError.
func toJSError(err error, script *Script) error {
	jserr, ok := err.(*v8go.JSError)
	if !ok {
		return runtimeError("%s", err.Error())
	}

	errType, message := splitExceptionMessage(jserr.Message)
	return &JSError{
		Type:    errType,
		Message: message,
		Stack:   StackTrace(jserr, script),
	}
}

// splitExceptionMessage split "TypeError: x is not a function" into the
// constructor name and the bare message. Exceptions that are not Error
// instances have no prefix and are reported as "Error".
func splitExceptionMessage(message string) (string, string) {
	parts := strings.SplitN(message, ": ", 2)
	if len(parts) == 2 && !strings.Contains(parts[0], " ") && parts[0] != "" {
		return parts[0], parts[1]
	}
	return "Error", message
}
