package actions

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/browser/browsertest"
)

func TestScreenshotSelector(t *testing.T) {
	tests := []struct {
		name string
		args ScreenshotArgs
		want string
	}{
		{name: "type only", args: ScreenshotArgs{Type: "table"}, want: "table"},
		{name: "type and id", args: ScreenshotArgs{Type: "figure", ID: "chart"}, want: "figure#chart"},
		{name: "parent and type", args: ScreenshotArgs{ParentType: "main", Type: "code"}, want: "main code"},
		{name: "parent id", args: ScreenshotArgs{ParentType: "section", ParentID: "intro", Type: "video"}, want: "section#intro video"},
		{name: "header expands", args: ScreenshotArgs{ParentType: "article", Type: "header"}, want: "article h1,article h2,article h3"},
		{name: "field expands with suffix", args: ScreenshotArgs{Type: "field", Selector: ".big"}, want: "input.big,select.big,textarea.big"},
		{name: "parent header", args: ScreenshotArgs{ParentType: "header", Type: "form"}, want: "h1 form,h2 form,h3 form"},
		{name: "selector only", args: ScreenshotArgs{Selector: ".card"}, want: ".card"},
		{name: "id only", args: ScreenshotArgs{ID: "logo"}, want: "#logo"},
		{name: "content only", args: ScreenshotArgs{Content: "Pricing"}, want: "*"},
		{name: "parent without type", args: ScreenshotArgs{ParentType: "nav"}, want: "nav *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.args.CSSSelector())
		})
	}
}

func TestScreenshotFullPage(t *testing.T) {
	gate := newTestGate(t)
	page := browsertest.New("https://example.com", "Example")
	page.Screenshots = map[string][]byte{"": []byte("FULLPAGE")}

	result, err := NewScreenshot(page, gate).Execute(context.Background(), json.RawMessage(`{"filepath":"shots/page.png"}`))
	require.NoError(t, err)

	want := filepath.Join(gate.Root(), "shots", "page.png")
	assert.Equal(t, "Screenshot saved to "+want, result.Message)
	assert.True(t, result.SuppressRescrape)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "FULLPAGE", string(data))
	assert.Empty(t, page.CallsTo("Evaluate"), "no element lookup for a full page")
}

func TestScreenshotElement(t *testing.T) {
	gate := newTestGate(t)
	page := browsertest.New("https://example.com", "Example")
	page.On(`"main table"`, true)
	page.Screenshots = map[string][]byte{"[pgpt-shot]": []byte("TABLE")}

	result, err := NewScreenshot(page, gate).Execute(context.Background(),
		json.RawMessage(`{"filepath":"table.png","parentType":"main","type":"table","content":"Prices"}`))
	require.NoError(t, err)
	assert.Equal(t, "Screenshot saved to "+filepath.Join(gate.Root(), "table.png"), result.Message)

	evals := page.CallsTo("Evaluate")
	require.Len(t, evals, 1)
	assert.Contains(t, evals[0].Args[0], `"main table", "Prices", "pgpt-shot"`)

	data, err := os.ReadFile(filepath.Join(gate.Root(), "table.png"))
	require.NoError(t, err)
	assert.Equal(t, "TABLE", string(data))
}

func TestScreenshotElementNotFound(t *testing.T) {
	gate := newTestGate(t)
	page := browsertest.New("https://example.com", "Example")
	page.On(`"canvas#missing"`, false)

	result, err := NewScreenshot(page, gate).Execute(context.Background(), json.RawMessage(`{"type":"canvas","id":"missing"}`))
	require.NoError(t, err)
	assert.Equal(t, ElementNotFoundMessage, result.Message)
	assert.Empty(t, page.CallsTo("Screenshot"))
}

func TestScreenshotWriteDenied(t *testing.T) {
	gate := newTestGate(t)
	page := browsertest.New("https://example.com", "Example")

	tests := []string{"../outside.png", "secret.pem"}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			raw, err := json.Marshal(ScreenshotArgs{Filepath: path})
			require.NoError(t, err)

			result, err := NewScreenshot(page, gate).Execute(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, WriteNotAllowedMessage, result.Message)
		})
	}
}

func TestScreenshotDefaultPath(t *testing.T) {
	gate := newTestGate(t)
	page := browsertest.New("https://example.com", "Example")

	result, err := NewScreenshot(page, gate).Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "Screenshot saved to "+filepath.Join(gate.Root(), DefaultScreenshotPath), result.Message)
}

func TestMakePlan(t *testing.T) {
	result, err := NewMakePlan().Execute(context.Background(), json.RawMessage(`{"plan":" I will search for the docs "}`))
	require.NoError(t, err)
	assert.Equal(t, Result{Message: PlanAcceptedMessage, SuppressRescrape: true}, result)

	_, err = NewMakePlan().Execute(context.Background(), json.RawMessage(`{}`))
	assert.Error(t, err)
}
