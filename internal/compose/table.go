// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compose provides a small table-driven composition engine: latin
// keystrokes accumulate as pending input and finalize into committed text
// when they spell a known code.
package compose

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jeranaias/keyai/internal/router"
)

// DefaultEntries is a compact pinyin table for the terminal demo.
var DefaultEntries = map[string]string{
	"ni":        "你",
	"hao":       "好",
	"nihao":     "你好",
	"wo":        "我",
	"de":        "的",
	"shi":       "是",
	"ma":        "吗",
	"ge":        "个",
	"wen":       "问",
	"ti":        "题",
	"wenti":     "问题",
	"zen":       "怎",
	"me":        "么",
	"zenme":     "怎么",
	"yang":      "样",
	"zenmeyang": "怎么样",
	"jin":       "今",
	"tian":      "天",
	"jintian":   "今天",
	"qi":        "气",
	"tianqi":    "天气",
	"xie":       "谢",
	"xiexie":    "谢谢",
	"zhong":     "中",
	"guo":       "国",
	"zhongguo":  "中国",
	"jian":      "键",
	"pan":       "盘",
	"jianpan":   "键盘",
	"shu":       "输",
	"ru":        "入",
	"shuru":     "输入",
	"fa":        "法",
	"shurufa":   "输入法",
}

// Table is a composition engine backed by a code table. It satisfies
// router.Engine. Not safe for concurrent use.
type Table struct {
	entries map[string]string
	codes   []string // sorted, for prefix lookups

	pending string
	commit  strings.Builder
	handled bool
}

// NewTable builds an engine over entries (code to text). Codes must be
// lowercase ASCII letters; others are ignored.
func NewTable(entries map[string]string) *Table {
	t := &Table{entries: make(map[string]string, len(entries))}
	for code, text := range entries {
		if code == "" || !isCodeString(code) {
			continue
		}
		t.entries[code] = text
		t.codes = append(t.codes, code)
	}
	sort.Strings(t.codes)
	return t
}

// NewDefault returns an engine over DefaultEntries.
func NewDefault() *Table {
	return NewTable(DefaultEntries)
}

// HasPendingInput reports whether a composition is in progress.
func (t *Table) HasPendingInput() bool {
	return t.pending != ""
}

// Pending returns the uncommitted keystrokes.
func (t *Table) Pending() string {
	return t.pending
}

// Candidate returns the text the pending input would commit as right now.
func (t *Table) Candidate() string {
	if t.pending == "" {
		return ""
	}
	if text, ok := t.entries[t.pending]; ok {
		return text
	}
	return t.pending
}

// TakeCommitText returns finalized text and clears it.
func (t *Table) TakeCommitText() string {
	s := t.commit.String()
	t.commit.Reset()
	return s
}

// Handled reports whether the most recent forwarded gesture was absorbed
// by composition. Unhandled keys fall to the host's default behavior.
func (t *Table) Handled() bool {
	return t.handled
}

// Reset drops pending input and any uncollected commit text.
func (t *Table) Reset() {
	t.pending = ""
	t.commit.Reset()
	t.handled = false
}

// Forward feeds one gesture to the engine.
func (t *Table) Forward(g router.Gesture) {
	t.handled = false

	switch g.Kind {
	case router.KindRelease:
	case router.KindLongPress:
		if g.Action.Type == router.ActionBackspace && t.pending != "" {
			t.pending = ""
			t.handled = true
		}
		return
	default:
		return
	}

	switch g.Action.Type {
	case router.ActionBackspace:
		if t.pending != "" {
			_, size := utf8.DecodeLastRuneInString(t.pending)
			t.pending = t.pending[:len(t.pending)-size]
			t.handled = true
		}

	case router.ActionSpace:
		if t.pending != "" {
			t.commit.WriteString(t.Candidate())
			t.pending = ""
			t.handled = true
		}

	case router.ActionReturn:
		// Return finalizes the raw keystrokes.
		if t.pending != "" {
			t.commit.WriteString(t.pending)
			t.pending = ""
			t.handled = true
		}

	case router.ActionCharacter, router.ActionSymbol:
		t.keystroke(g.Action.Char)
	}
}

func (t *Table) keystroke(c string) {
	if !isCodeString(c) {
		if t.pending != "" {
			// Punctuation finalizes the composition and then goes through.
			t.commit.WriteString(t.Candidate())
			t.commit.WriteString(c)
			t.pending = ""
			t.handled = true
		}
		return
	}

	next := t.pending + c
	if t.hasPrefix(next) {
		t.pending = next
		t.handled = true
		if text, ok := t.entries[next]; ok && !t.hasLonger(next) {
			t.commit.WriteString(text)
			t.pending = ""
		}
		return
	}

	if t.pending == "" {
		return
	}

	// The key cannot extend the current code: finalize what we have and
	// start again with the new key.
	t.commit.WriteString(t.Candidate())
	t.pending = ""
	if t.hasPrefix(c) {
		t.keystroke(c)
	} else {
		t.commit.WriteString(c)
	}
	t.handled = true
}

// hasPrefix reports whether any code starts with p.
func (t *Table) hasPrefix(p string) bool {
	i := sort.SearchStrings(t.codes, p)
	return i < len(t.codes) && strings.HasPrefix(t.codes[i], p)
}

// hasLonger reports whether a code strictly longer than p starts with p.
func (t *Table) hasLonger(p string) bool {
	i := sort.SearchStrings(t.codes, p)
	for ; i < len(t.codes) && strings.HasPrefix(t.codes[i], p); i++ {
		if len(t.codes[i]) > len(p) {
			return true
		}
	}
	return false
}

func isCodeString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}
