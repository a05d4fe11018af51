package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/pilot/pkg/types"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    NavigateArgs
		wantErr string
	}{
		{name: "valid", raw: `{"url":" https://example.com "}`, want: NavigateArgs{URL: "https://example.com"}},
		{name: "missing field", raw: `{}`, wantErr: "ERROR: Missing parameter url"},
		{name: "empty input", raw: ``, wantErr: "ERROR: Missing parameter url"},
		{name: "null input", raw: `null`, wantErr: "ERROR: Missing parameter url"},
		{name: "malformed", raw: `{"url":`, wantErr: "ERROR: Invalid arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[NavigateArgs](json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				var verr *types.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Message, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeWithoutValidator(t *testing.T) {
	got, err := Decode[CodeInfo](json.RawMessage(`{"title":"Install"}`))
	require.NoError(t, err)
	assert.Equal(t, "Install", got.Title)
}

func TestElementIDUnmarshal(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: `7`, want: 7},
		{raw: `7.0`, want: 7},
		{raw: `"12"`, want: 12},
		{raw: `""`, want: 0},
		{raw: `null`, want: 0},
		{raw: `"abc"`, wantErr: true},
		{raw: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var id ElementID
			err := json.Unmarshal([]byte(tt.raw), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, int(id))
		})
	}
}

func TestClickArgsID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   int
		wantOK bool
	}{
		{name: "pgpt_id", raw: `{"pgpt_id": 3}`, want: 3, wantOK: true},
		{name: "legacy pp_id", raw: `{"pp_id": "4"}`, want: 4, wantOK: true},
		{name: "pgpt_id wins", raw: `{"pgpt_id": 5, "pp_id": 6}`, want: 5, wantOK: true},
		{name: "zero is missing", raw: `{"pgpt_id": 0}`},
		{name: "absent", raw: `{"text": "Home"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Decode[ClickArgs](json.RawMessage(tt.raw))
			require.NoError(t, err)
			id, ok := args.ID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestBaseSchema(t *testing.T) {
	props := map[string]interface{}{"url": map[string]interface{}{"type": "string"}}

	schema := BaseSchema(props, []string{"url"})
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, props, schema["properties"])
	assert.Equal(t, []string{"url"}, schema["required"])

	schema = BaseSchema(props, nil)
	_, hasRequired := schema["required"]
	assert.False(t, hasRequired)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "navigate", KindNavigate.String())
	assert.Equal(t, "make_plan", KindMakePlan.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
