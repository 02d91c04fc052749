package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "assistant message with text items",
			line: `{"type":"message","content":[{"type":"text","text":"hello"},{"type":"tool_use","id":"t1"},{"type":"text","text":"world"}]}`,
			want: Record{Kind: KindMessage, Texts: []string{"hello", "world"}},
		},
		{
			name: "message with no text items",
			line: `{"type":"message","content":[{"type":"tool_use","id":"t1"}]}`,
			want: Record{Kind: KindMessage},
		},
		{
			name: "streaming delta fragment",
			line: `{"type":"content_block_delta","delta":{"text":"chunk"}}`,
			want: Record{Kind: KindDelta, Fragment: "chunk"},
		},
		{
			name: "terminal result",
			line: `{"type":"result","result":"done","is_error":false}`,
			want: Record{Kind: KindResult, Text: "done"},
		},
		{
			name: "non-string result is opaque",
			line: `{"result":{"code":0}}`,
			want: Record{Kind: KindOpaque},
		},
		{
			name: "top-level string content",
			line: `{"content":"plain"}`,
			want: Record{Kind: KindText, Text: "plain"},
		},
		{
			name: "top-level text field",
			line: `{"text":"note"}`,
			want: Record{Kind: KindText, Text: "note"},
		},
		{
			name: "unknown shape is opaque",
			line: `{"type":"system","subtype":"init"}`,
			want: Record{Kind: KindOpaque},
		},
		{
			name: "malformed JSON falls back to raw",
			line: `{"type":"message","content":[`,
			want: Record{Kind: KindRaw},
		},
		{
			name: "plain text falls back to raw",
			line: `not json at all`,
			want: Record{Kind: KindRaw},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeLine(tt.line)

			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Texts, got.Texts)
			assert.Equal(t, tt.want.Fragment, got.Fragment)
			assert.Equal(t, tt.want.Text, got.Text)
			assert.Equal(t, tt.line, got.Raw, "raw line must be preserved verbatim")
		})
	}
}

func TestRecordContribution(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "message items are newline terminated",
			rec:  Record{Kind: KindMessage, Texts: []string{"one", "two"}},
			want: "one\ntwo\n",
		},
		{
			name: "empty message contributes nothing",
			rec:  Record{Kind: KindMessage},
			want: "",
		},
		{
			name: "delta fragments are appended verbatim",
			rec:  Record{Kind: KindDelta, Fragment: "par"},
			want: "par",
		},
		{
			name: "result is newline terminated",
			rec:  Record{Kind: KindResult, Text: "done"},
			want: "done\n",
		},
		{
			name: "text is newline terminated",
			rec:  Record{Kind: KindText, Text: "note"},
			want: "note\n",
		},
		{
			name: "opaque contributes nothing",
			rec:  Record{Kind: KindOpaque, Raw: `{"type":"system"}`},
			want: "",
		},
		{
			name: "raw contributes nothing",
			rec:  Record{Kind: KindRaw, Raw: "garbage"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Contribution())
		})
	}
}
