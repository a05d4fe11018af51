package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairArguments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid", in: `{"url":"x"}`, want: `{"url":"x"}`},
		{name: "empty", in: "", want: ""},
		{
			name: "missing comma",
			in:   "{\n  \"pgpt_id\": \"12\"\n  \"text\": \"Docs\"\n}",
			want: "{\n  \"pgpt_id\": \"12\",\n  \"text\": \"Docs\"\n}",
		},
		{name: "unrepairable", in: `{"url": `, want: `{"url": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairArguments(tt.in))
		})
	}
}
