// Copyright 2026 Patrick Smith
// Use of this source code is subject to the MIT-style license in the LICENSE file.

package grammarfile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rivo/uniseg"
)

// A SyntaxError reports a problem in a grammar file.
type SyntaxError struct {
	Pos  lexer.Position
	Msg  string
	Line string // text of the line containing Pos, without the newline
}

func newSyntaxError(pos lexer.Position, msg string, text []byte) *SyntaxError {
	offset := pos.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	start := bytes.LastIndexByte(text[:offset], '\n') + 1
	end := len(text)
	if n := bytes.IndexByte(text[offset:], '\n'); n >= 0 {
		end = offset + n
	}
	line := strings.TrimSuffix(string(text[start:end]), "\r")
	return &SyntaxError{Pos: pos, Msg: msg, Line: line}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Context returns the line containing the error with a caret beneath the
// error position. The caret is placed by display width, so it lines up
// under wide and combining characters; tabs are kept as tabs.
func (e *SyntaxError) Context() string {
	col := e.Pos.Column - 1
	if col < 0 {
		col = 0
	}
	runes := []rune(e.Line)
	if col > len(runes) {
		col = len(runes)
	}

	var pad strings.Builder
	g := uniseg.NewGraphemes(string(runes[:col]))
	for g.Next() {
		if s := g.Str(); s == "\t" {
			pad.WriteByte('\t')
		} else {
			pad.WriteString(strings.Repeat(" ", uniseg.StringWidth(s)))
		}
	}
	return e.Line + "\n" + pad.String() + "^"
}
