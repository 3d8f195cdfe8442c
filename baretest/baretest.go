// Package baretest builds runtime instances for test cases and asserts on
// execution outcomes.
package baretest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bare "github.com/anaptfox/bare-rs"
)

// testMutex serializes test cases that hold an instance, parallel subtests
// would otherwise interleave on the shared platform
var testMutex sync.Mutex

// New build an instance for a test case. The instance is released when the
// test ends, whether it passes or fails.
func New(t *testing.T) *bare.Instance {
	t.Helper()

	testMutex.Lock()
	inst, err := bare.NewInstance()
	if err != nil {
		testMutex.Unlock()
		t.Fatalf("baretest: %s", err.Error())
	}

	t.Cleanup(func() {
		defer testMutex.Unlock()
		if err := inst.Close(); err != nil {
			t.Errorf("baretest: close: %s", err.Error())
		}
	})
	return inst
}

// RunOK run a script and require that it completes without error
func RunOK(t *testing.T, inst *bare.Instance, source string) *bare.ExecutionResult {
	t.Helper()

	result, err := inst.Execute(source, "test.js")
	require.NoError(t, err)
	require.Nil(t, result.Exception, "expected no exception, got: %v", result.Exception)
	return result
}

// AssertValue run a script and assert that the completion value matches
func AssertValue(t *testing.T, inst *bare.Instance, source string, want interface{}) {
	t.Helper()

	result := RunOK(t, inst, source)
	assert.EqualValues(t, want, result.Value)
}

// AssertJSError run a script and require that it raises a JS exception whose
// type and message contain the given patterns. Empty patterns match anything.
func AssertJSError(t *testing.T, inst *bare.Instance, source string, errType string, message string) *bare.JSError {
	t.Helper()

	result, err := inst.Execute(source, "test.js")
	require.NoError(t, err)
	require.NotNil(t, result.Exception, "expected a JS exception")

	if errType != "" {
		assert.Contains(t, result.Exception.Type, errType)
	}
	if message != "" {
		assert.Contains(t, result.Exception.Message, message)
	}
	return result.Exception
}
