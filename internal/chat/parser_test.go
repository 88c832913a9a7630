// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		text   string
		refers []string
	}{
		{
			name:   "double encoded",
			body:   `{"text": "{\"text\":\"inner answer\",\"refers\":[\"doc1\"]}", "refers": []}`,
			text:   "inner answer",
			refers: []string{"doc1"},
		},
		{
			name:   "double encoded keeps outer refers when inner is empty",
			body:   `{"text": "{\"text\":\"inner\",\"refers\":[]}", "refers": ["outer.pdf"]}`,
			text:   "inner",
			refers: []string{"outer.pdf"},
		},
		{
			name:   "only one level is unwrapped",
			body:   `{"text": "{\"text\":\"{\\\"text\\\":\\\"deepest\\\"}\"}"}`,
			text:   `{"text":"deepest"}`,
			refers: []string{},
		},
		{
			name:   "brace without inner text keeps the raw text",
			body:   `{"text": "{\"answer\":\"x\"}"}`,
			text:   `{"answer":"x"}`,
			refers: []string{},
		},
		{
			name:   "brace that is not json",
			body:   `{"text": "{ not json at all"}`,
			text:   "{ not json at all",
			refers: []string{},
		},
		{
			name:   "content fallback",
			body:   `{"content": "hello"}`,
			text:   "hello",
			refers: []string{},
		},
		{
			name:   "fallback order prefers answer over content",
			body:   `{"content": "second", "answer": "first"}`,
			text:   "first",
			refers: []string{},
		},
		{
			name:   "result and data fallbacks",
			body:   `{"data": "from data", "result": "from result"}`,
			text:   "from result",
			refers: []string{},
		},
		{
			name:   "data fallback",
			body:   `{"data": "from data"}`,
			text:   "from data",
			refers: []string{},
		},
		{
			name:   "non-string text falls back to the next key",
			body:   `{"text": 42, "answer": "ok"}`,
			text:   "ok",
			refers: []string{},
		},
		{
			name:   "no known key returns the raw body",
			body:   `{"foo": "bar"}`,
			text:   `{"foo": "bar"}`,
			refers: []string{},
		},
		{
			name:   "refers must be strings",
			body:   `{"text": "a", "refers": [1, 2]}`,
			text:   "a",
			refers: []string{},
		},
		{
			name:   "literal newlines are expanded and trimmed",
			body:   `{"text": "  line one\\nline two  "}`,
			text:   "line one\nline two",
			refers: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]byte(tt.body))
			assert.Equal(t, tt.text, got.Text)
			assert.Equal(t, tt.refers, got.Refers)
		})
	}
}

func TestParsePlainText(t *testing.T) {
	body := "  just some text\\nwith an escape  "
	got := Parse([]byte(body))
	assert.Equal(t, body, got.Text, "plain text is returned verbatim")
	assert.Empty(t, got.Refers)

	got = Parse([]byte(`["an", "array"]`))
	assert.Equal(t, `["an", "array"]`, got.Text)

	got = Parse([]byte{0xff, 0xfe, 0xfd})
	assert.Empty(t, got.Text, "invalid UTF-8 yields empty text")

	got = Parse(nil)
	assert.Empty(t, got.Text)
	assert.NotNil(t, got.Refers)
}

func TestParseSessionID(t *testing.T) {
	got := Parse([]byte(`{"text":"hi","sessionId":"abc"}`))
	assert.Equal(t, "abc", got.SessionID)

	got = Parse([]byte(`{"text":"hi","sessionId":7}`))
	assert.Empty(t, got.SessionID)
}

func TestParseRoundTrip(t *testing.T) {
	cases := []Response{
		{Text: "plain answer", Refers: []string{}},
		{Text: "多行\n回答", Refers: []string{"手册.pdf", "FAQ"}},
		{Text: "quotes \"inside\" and } braces", Refers: []string{"a"}},
	}
	for _, want := range cases {
		data, err := json.Marshal(want)
		require.NoError(t, err)
		got := Parse(data)
		assert.Equal(t, want.Text, got.Text)
		assert.Equal(t, want.Refers, got.Refers)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "answer", Format(Response{Text: "answer"}))
	assert.Equal(t, "answer\n\n引用文档：a.pdf、b.pdf",
		Format(Response{Text: "answer", Refers: []string{"a.pdf", "b.pdf"}}))
}

func TestServerMessage(t *testing.T) {
	msg, ok := ServerMessage([]byte(`{"error":"quota exceeded"}`))
	assert.True(t, ok)
	assert.Equal(t, "quota exceeded", msg)

	_, ok = ServerMessage([]byte(`{"error":""}`))
	assert.False(t, ok)
	_, ok = ServerMessage([]byte(`Bad Gateway`))
	assert.False(t, ok)
}
