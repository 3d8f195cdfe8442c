package bare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bare "github.com/anaptfox/bare-rs"
	"github.com/anaptfox/bare-rs/baretest"
)

func TestRunScriptValue(t *testing.T) {
	inst := baretest.New(t)

	baretest.AssertValue(t, inst, "1 + 1", int32(2))
	baretest.AssertValue(t, inst, `"hello " + "world"`, "hello world")
	baretest.AssertValue(t, inst, "3 / 2", 1.5)
	baretest.AssertValue(t, inst, "true && false", false)
	baretest.AssertValue(t, inst, "null", nil)
}

func TestRunScriptObject(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `({ name: "bare", tags: ["a", "b"] })`)
	value, ok := result.Value.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bare", value["name"])
	assert.Equal(t, []interface{}{"a", "b"}, value["tags"])
}

func TestThrowError(t *testing.T) {
	inst := baretest.New(t)

	baretest.AssertJSError(t, inst, `throw new Error("boom")`, "Error", "boom")

	// the handle stays usable after a script exception
	baretest.AssertValue(t, inst, "40 + 2", int32(42))
}

func TestThrowTypeError(t *testing.T) {
	inst := baretest.New(t)
	baretest.AssertJSError(t, inst, "null.f()", "TypeError", "")
}

func TestThrowNonError(t *testing.T) {
	inst := baretest.New(t)
	baretest.AssertJSError(t, inst, `throw "plain"`, "Error", "plain")
}

func TestSetTimeout(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		console.log("start");
		setTimeout(function () { console.log("later"); }, 10);
		console.log("end");
	`)
	assert.Equal(t, []string{"start", "end", "later"}, result.Output)
}

func TestTimerOrder(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		setTimeout(function () { console.log("second"); }, 20);
		setTimeout(function () { console.log("first"); }, 5);
		setTimeout(function () { console.log("third"); }, 35);
	`)
	assert.Equal(t, []string{"first", "second", "third"}, result.Output)
}

func TestClearTimeout(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		var id = setTimeout(function () { console.log("never"); }, 10);
		clearTimeout(id);
		setTimeout(function () { console.log("kept"); }, 20);
	`)
	assert.Equal(t, []string{"kept"}, result.Output)
}

func TestSetInterval(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		var n = 0;
		var id = setInterval(function () {
			n++;
			if (n === 3) {
				clearInterval(id);
				console.log("done " + n);
			}
		}, 5);
	`)
	assert.Equal(t, []string{"done 3"}, result.Output)
}

func TestTimerCallbackThrows(t *testing.T) {
	inst := baretest.New(t)

	baretest.AssertJSError(t, inst, `
		setTimeout(function () { throw new Error("late boom"); }, 5);
	`, "Error", "late boom")
}

func TestBareExit(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		setTimeout(function () { console.log("never"); }, 60000);
		setTimeout(function () { Bare.exit(3); }, 5);
	`)
	assert.Equal(t, 3, result.ExitCode)
	assert.Empty(t, result.Output)
}

func TestBareVersion(t *testing.T) {
	inst := baretest.New(t)
	baretest.AssertValue(t, inst, "Bare.version", bare.Version)
}

func TestLifecycleEvents(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		Bare.on("beforeExit", function () { console.log("before"); });
		Bare.on("exit", function (code) { console.log("exit " + code); });
		console.log("main");
	`)
	assert.Equal(t, []string{"main", "before", "exit 0"}, result.Output)
}

func TestBeforeExitSchedulesWork(t *testing.T) {
	inst := baretest.New(t)

	result := baretest.RunOK(t, inst, `
		var revived = false;
		Bare.on("beforeExit", function () {
			if (!revived) {
				revived = true;
				setTimeout(function () { console.log("revived"); }, 1);
			}
		});
	`)
	assert.Equal(t, []string{"revived"}, result.Output)
}

func TestBareOnUnknownEvent(t *testing.T) {
	inst := baretest.New(t)
	baretest.AssertJSError(t, inst, `Bare.on("boot", function () {})`, "Error", "unknown event")
}

func TestHostLifecycleCallbacks(t *testing.T) {
	inst := baretest.New(t)

	var phases []string
	rt := inst.Runtime()
	rt.OnBeforeExit(func() { phases = append(phases, "before") })
	rt.OnExit(func(code int) { phases = append(phases, "exit") })

	baretest.RunOK(t, inst, "1 + 1")
	assert.Equal(t, []string{"before", "exit"}, phases)
}

func TestHostExplicitExitSkipsBeforeExit(t *testing.T) {
	inst := baretest.New(t)

	var before, exitCode int
	rt := inst.Runtime()
	rt.OnBeforeExit(func() { before++ })
	rt.OnExit(func(code int) { exitCode = code })

	baretest.RunOK(t, inst, "Bare.exit(9)")
	assert.Equal(t, 9, exitCode)
	assert.Equal(t, 9, rt.ExitCode())
	assert.Zero(t, before)
}

func TestExitSkippedOnUncaughtException(t *testing.T) {
	inst := baretest.New(t)

	exited := false
	inst.Runtime().OnExit(func(code int) { exited = true })

	_, err := inst.RunScript(`
		Bare.on("exit", function () { console.log("exit"); });
		setTimeout(function () { throw new Error("late boom"); }, 5);
	`, "test.js")
	require.Error(t, err)
	assert.False(t, exited)
}

func TestHostIdle(t *testing.T) {
	inst := baretest.New(t)

	idle := 0
	inst.Runtime().OnIdle(func() { idle++ })

	baretest.RunOK(t, inst, "setTimeout(function () {}, 20)")
	assert.Greater(t, idle, 0)
}

func TestBase64Globals(t *testing.T) {
	inst := baretest.New(t)

	baretest.AssertValue(t, inst, `btoa("hello")`, "aGVsbG8=")
	baretest.AssertValue(t, inst, `atob("aGVsbG8=")`, "hello")
	baretest.AssertJSError(t, inst, `atob("!!!")`, "Error", "")
}

func TestRunTypeScript(t *testing.T) {
	inst := baretest.New(t)

	value, err := inst.RunScript("const n: number = 40;\nn + 2;\n", "main.ts")
	require.NoError(t, err)
	assert.EqualValues(t, 42, value)
}

func TestRunTypeScriptSyntaxError(t *testing.T) {
	inst := baretest.New(t)

	_, err := inst.RunScript("const n: = ;", "broken.ts")
	require.Error(t, err)

	var jserr *bare.JSError
	require.ErrorAs(t, err, &jserr)
	assert.Equal(t, "SyntaxError", jserr.Type)
}

func TestPromiseCompletion(t *testing.T) {
	inst := baretest.New(t)

	baretest.AssertValue(t, inst,
		`Promise.resolve(21).then(function (n) { return n * 2; })`, int32(42))
}

func TestPromiseRejected(t *testing.T) {
	inst := baretest.New(t)

	_, err := inst.RunScript(`Promise.reject("nope")`, "test.js")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "promise rejected")
}

func TestRuntimeID(t *testing.T) {
	inst := baretest.New(t)
	assert.NotEmpty(t, inst.Runtime().ID())
}
