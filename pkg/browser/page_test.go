package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []any
		want string
	}{
		{name: "no args", fn: "() => 1", want: "(() => 1)()"},
		{name: "scalar args", fn: " (a, b) => a + b ", args: []any{400, "x"}, want: `((a, b) => a + b)(400, "x")`},
		{name: "slice arg", fn: "(s) => s", args: []any{[]string{"main", `[role="main"]`}}, want: `((s) => s)(["main","[role=\"main\"]"])`},
		{name: "nil arg", fn: "(s) => s", args: []any{nil}, want: "((s) => s)(null)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Call(tt.fn, tt.args...))
		})
	}
}

func TestDecodeInto(t *testing.T) {
	var out struct {
		Count int      `json:"count"`
		Names []string `json:"names"`
	}
	raw := map[string]any{"count": float64(3), "names": []any{"a", "b"}}

	require.NoError(t, decodeInto(raw, &out))
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, []string{"a", "b"}, out.Names)

	assert.NoError(t, decodeInto(raw, nil))

	var wrong int
	assert.Error(t, decodeInto(raw, &wrong))
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultViewportWidth, opts.Width)
	assert.Equal(t, DefaultViewportHeight, opts.Height)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, 6*time.Second, opts.NavigationTimeout)
	assert.NotNil(t, opts.Logger)

	custom := Options{Width: 800, Height: 600, Timeout: time.Second}.withDefaults()
	assert.Equal(t, 800, custom.Width)
	assert.Equal(t, time.Second, custom.Timeout)
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, 6000.0, milliseconds(6*time.Second))
	assert.Equal(t, 250.0, milliseconds(250*time.Millisecond))
}
