package atob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rogchap.com/v8go"
)

func TestAtob(t *testing.T) {
	iso := v8go.NewIsolate()
	defer iso.Dispose()

	tmpl := v8go.NewObjectTemplate(iso)
	tmpl.Set("atob", ExportFunction(iso))
	ctx := v8go.NewContext(iso, tmpl)
	defer ctx.Close()

	value, err := ctx.RunScript(`atob("aGVsbG8=")`, "test.js")
	require.NoError(t, err)
	assert.Equal(t, "hello", value.String())

	_, err = ctx.RunScript(`atob("!bad!")`, "test.js")
	require.Error(t, err)

	_, err = ctx.RunScript(`atob()`, "test.js")
	require.Error(t, err)

	_, err = ctx.RunScript(`atob(1)`, "test.js")
	require.Error(t, err)
}
