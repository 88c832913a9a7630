// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// RefersHeading introduces the citation list in formatted answers.
const RefersHeading = "引用文档："

// textKeys are tried in order when looking for the answer text.
var textKeys = []string{"text", "answer", "content", "result", "data"}

// Response is a decoded answer.
type Response struct {
	Text      string   `json:"text"`
	Refers    []string `json:"refers"`
	SessionID string   `json:"sessionId,omitempty"`
}

// Format renders the answer for display: the text, followed by the
// citation list when there is one.
func Format(r Response) string {
	if len(r.Refers) == 0 {
		return r.Text
	}
	return r.Text + "\n\n" + RefersHeading + strings.Join(r.Refers, "、")
}

// =============================================================================
// RESOLUTION
// =============================================================================

// stage tracks how far a candidate answer has been resolved.
type stage int

const (
	// stageRaw is text straight from the outer object.
	stageRaw stage = iota
	// stageMaybeNested is raw text that looks like an encoded object.
	stageMaybeNested
	// stageResolved is final; nothing further is unwrapped.
	stageResolved
)

type resolution struct {
	stage  stage
	text   string
	refers []string
}

// next advances the resolution by exactly one stage.
func (r resolution) next() resolution {
	switch r.stage {
	case stageRaw:
		if strings.HasPrefix(strings.TrimSpace(r.text), "{") {
			r.stage = stageMaybeNested
		} else {
			r.stage = stageResolved
		}
	case stageMaybeNested:
		r.stage = stageResolved
		inner, ok := decodeObject([]byte(strings.TrimSpace(r.text)))
		if !ok {
			break
		}
		text, ok := stringField(inner, "text")
		if !ok {
			break
		}
		r.text = text
		if refers := stringList(inner, "refers"); len(refers) > 0 {
			r.refers = refers
		}
	}
	return r
}

func (r resolution) resolve() resolution {
	for r.stage != stageResolved {
		r = r.next()
	}
	return r
}

// =============================================================================
// PARSE
// =============================================================================

// Parse decodes a response body. It never fails: bodies that are not JSON
// objects come back verbatim as plain text.
func Parse(raw []byte) Response {
	obj, ok := decodeObject(raw)
	if !ok {
		return Response{Text: plainText(raw), Refers: []string{}}
	}

	r := resolution{stage: stageRaw, refers: stringList(obj, "refers")}
	r.text = plainText(raw)
	for _, key := range textKeys {
		if s, ok := stringField(obj, key); ok {
			r.text = s
			break
		}
	}
	r = r.resolve()

	sessionID, _ := stringField(obj, "sessionId")
	return Response{
		Text:      normalize(r.text),
		Refers:    r.refers,
		SessionID: sessionID,
	}
}

// ServerMessage returns the "error" field of a JSON error body.
func ServerMessage(raw []byte) (string, bool) {
	obj, ok := decodeObject(raw)
	if !ok {
		return "", false
	}
	msg, ok := stringField(obj, "error")
	if !ok || msg == "" {
		return "", false
	}
	return msg, true
}

func decodeObject(raw []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stringField returns obj[key] when it is a JSON string.
func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// stringList returns obj[key] when it is an array of strings, else an
// empty list.
func stringList(obj map[string]json.RawMessage, key string) []string {
	v, ok := obj[key]
	if !ok {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(v, &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

func plainText(raw []byte) string {
	if !utf8.Valid(raw) {
		return ""
	}
	return string(raw)
}

// normalize turns literal "\n" escapes into newlines and trims.
func normalize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `\n`, "\n"))
}
