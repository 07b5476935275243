// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package format provides a function to write inline trees as CommonMark
// that is equivalent to the original Markdown.
package format

import (
	"io"
	"strings"

	"zombiezen.com/go/mdinline"
)

// Inline writes the children of parent as CommonMark inline content to the given writer.
// Reparsing the output produces an equivalent tree
// for trees produced by [mdinline.InlineParser].
// Reference links are written as inline links.
//
// Nodes of custom kinds with children are written as their literal
// around their children, as with delimiter-based extensions.
// Nodes of custom kinds without children are written as their literal.
func Inline(w io.Writer, parent *mdinline.Node) error {
	ww := &errWriter{w: w}
	mdinline.Walk(parent, &mdinline.WalkOptions{
		Pre: func(c *mdinline.Cursor) bool {
			if c.Node() == parent {
				return true
			}
			return preInline(ww, c.Node(), parent)
		},
		Post: func(c *mdinline.Cursor) bool {
			if c.Node() != parent {
				postInline(ww, c.Node())
			}
			return ww.err == nil
		},
	})
	return ww.err
}

func preInline(w *errWriter, n *mdinline.Node, root *mdinline.Node) (descend bool) {
	switch k := n.Kind(); k {
	case mdinline.TextKind:
		text := escapeTextOnLine(n.Literal(), w.atLineStart(), endsLine(n, root))
		if strings.HasSuffix(text, "!") && startsWithBracket(n.Next()) {
			// Otherwise the '!' would turn the following link into an image.
			text = text[:len(text)-len("!")] + `\!`
		}
		w.WriteString(text)
		return false
	case mdinline.SoftLineBreakKind:
		w.WriteString("\n")
		return false
	case mdinline.HardLineBreakKind:
		w.WriteString("\\\n")
		return false
	case mdinline.EmphasisKind, mdinline.StrongKind:
		w.WriteString(emphasisDelimiter(n))
		return true
	case mdinline.CodeSpanKind:
		writeCodeSpan(w, n.Literal())
		return false
	case mdinline.LinkKind:
		w.WriteString("[")
		return true
	case mdinline.ImageKind:
		w.WriteString("![")
		return true
	case mdinline.RawHTMLKind:
		w.WriteString(n.Literal())
		return false
	default:
		w.WriteString(n.Literal())
		return k.IsCustom() && n.FirstChild() != nil
	}
}

func postInline(w *errWriter, n *mdinline.Node) {
	switch k := n.Kind(); k {
	case mdinline.EmphasisKind, mdinline.StrongKind:
		w.WriteString(emphasisDelimiter(n))
	case mdinline.LinkKind, mdinline.ImageKind:
		w.WriteString("](<")
		w.WriteString(destinationEscaper.Replace(n.Destination()))
		w.WriteString(">")
		if title, ok := n.Title(); ok {
			w.WriteString(` "`)
			w.WriteString(titleEscaper.Replace(title))
			w.WriteString(`"`)
		}
		w.WriteString(")")
	default:
		if k.IsCustom() && n.FirstChild() != nil {
			w.WriteString(n.Literal())
		}
	}
}

func emphasisDelimiter(n *mdinline.Node) string {
	switch lit := n.Literal(); lit {
	case "*", "_", "**", "__":
		return lit
	}
	if n.Kind() == mdinline.StrongKind {
		return "**"
	}
	return "*"
}

// writeCodeSpan writes a code span with a fence
// longer than any backtick run in the content.
func writeCodeSpan(w *errWriter, content string) {
	longest, run := 0, 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	// One space is stripped from each side when both are present,
	// and padding is needed to separate content backticks from the fence.
	pad := strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") ||
		(strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.Trim(content, " ") != "")
	w.WriteString(fence)
	if pad {
		w.WriteString(" ")
	}
	w.WriteString(content)
	if pad {
		w.WriteString(" ")
	}
	w.WriteString(fence)
}

// startsWithBracket reports whether n is written with a leading '['.
func startsWithBracket(n *mdinline.Node) bool {
	switch k := n.Kind(); {
	case k == mdinline.LinkKind:
		return true
	case k.IsCustom():
		return strings.HasPrefix(n.Literal(), "[")
	default:
		return false
	}
}

// endsLine reports whether n is written right before a line ending
// or the end of the output.
func endsLine(n, root *mdinline.Node) bool {
	if next := n.Next(); next != nil {
		k := next.Kind()
		return k == mdinline.SoftLineBreakKind || k == mdinline.HardLineBreakKind
	}
	return n.Parent() == root
}

// escapeTextOnLine is like escapeText,
// but also writes spaces and tabs at the start or end of a line
// as character references, since a parser strips them.
func escapeTextOnLine(text string, lineStart, lineEnd bool) string {
	var lead, trail string
	if lineStart {
		rest := strings.TrimLeft(text, " \t")
		lead, text = text[:len(text)-len(rest)], rest
	}
	if lineEnd {
		rest := strings.TrimRight(text, " \t")
		text, trail = rest, text[len(rest):]
	}
	return whitespaceEscaper.Replace(lead) + escapeText(text) + whitespaceEscaper.Replace(trail)
}

// escapeText backslash-escapes the characters in text
// that could start inline syntax.
func escapeText(text string) string {
	return textEscaper.Replace(text)
}

var (
	textEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`*`, `\*`,
		`_`, `\_`,
		`[`, `\[`,
		`]`, `\]`,
		`<`, `\<`,
		`&`, `\&`,
		`~`, `\~`,
		"\n", "&#10;",
	)
	destinationEscaper = strings.NewReplacer(
		`\`, `\\`,
		`<`, `\<`,
		`>`, `\>`,
		`&`, `\&`,
	)
	whitespaceEscaper = strings.NewReplacer(
		" ", "&#32;",
		"\t", "&#9;",
	)
	titleEscaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`&`, `\&`,
	)
)

type errWriter struct {
	w   io.Writer
	err error
	// last is the last byte written, or zero if nothing has been written.
	last byte
}

func (w *errWriter) WriteString(s string) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	n, w.err = io.WriteString(w.w, s)
	if n > 0 {
		w.last = s[n-1]
	}
	return n, w.err
}

// atLineStart reports whether the next byte written starts a line.
func (w *errWriter) atLineStart() bool {
	return w.last == 0 || w.last == '\n'
}
