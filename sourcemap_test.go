package bare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rogchap.com/v8go"
)

func TestParseStackTrace(t *testing.T) {
	trace := "Error: boom\n    at run (app.js:3:11)\n    at main (app.js:9:2)"
	entries := parseStackTrace(trace)
	require.Len(t, entries, 2)

	assert.Equal(t, "run", entries[0].Function)
	assert.Equal(t, "app.js", entries[0].File)
	assert.Equal(t, 3, entries[0].Line)
	assert.Equal(t, 11, entries[0].Column)

	assert.Equal(t, "main", entries[1].Function)
	assert.Equal(t, 9, entries[1].Line)
}

func TestParseStackTraceNoMatch(t *testing.T) {
	entries := parseStackTrace("Error: boom")
	assert.Empty(t, entries)
}

func TestStackLogEntryString(t *testing.T) {
	entry := &StackLogEntry{Function: "run", File: "app.ts", Line: 2, Column: 5}
	assert.Equal(t, "    at run (app.ts:2:5)", entry.String())
}

func TestStackTraceRaw(t *testing.T) {
	jserr := &v8go.JSError{
		Message:    "Error: boom",
		StackTrace: "Error: boom\n    at run (app.js:3:11)",
	}

	// no script or no source map, the raw trace passes through
	assert.Equal(t, jserr.StackTrace, StackTrace(jserr, nil))
	assert.Equal(t, jserr.StackTrace, StackTrace(jserr, &Script{File: "app.js"}))
}
