package render

import (
	"bytes"
	"strings"
	"testing"
)

type row struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		format string
		value  any
		want   string
	}{
		{name: "json-keeps-html", format: "json", value: row{ID: "m1", Text: "<b>hi</b>"}, want: "{\n  \"id\": \"m1\",\n  \"text\": \"<b>hi</b>\"\n}\n"},
		{name: "default-is-json", format: "", value: []string{"a"}, want: "[\n  \"a\"\n]\n"},
		{name: "yaml", format: "yaml", value: row{ID: "m1", Text: "x"}, want: "id: m1\ntext: x\n"},
		{name: "text-scalar", format: "text", value: int64(42), want: "42\n"},
		{name: "text-string", format: "text", value: "draft-1", want: "draft-1\n"},
		{name: "text-list", format: "text", value: []string{"INBOX", "Receipts"}, want: "INBOX\nReceipts\n"},
		{name: "text-empty-list", format: "text", value: []string{}, want: ""},
		{name: "text-record-falls-back", format: "text", value: []row{{ID: "a", Text: "b"}}, want: "- id: a\n  text: b\n"},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tc.format, tc.value); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if buf.String() != tc.want {
				t.Fatalf("got %q want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", "x")
	if err == nil || !strings.Contains(err.Error(), "xml") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}
