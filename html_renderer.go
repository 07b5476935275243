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

package mdinline

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/atom"
)

// An HTMLRenderer converts inline trees into HTML.
//
// # Security considerations
//
// CommonMark permits the use of [raw HTML], which can introduce
// [Cross-Site Scripting (XSS)] vulnerabilities and [HTML parse errors]
// when used with untrusted inputs.
// There are a few options to mitigate this risk:
//
//   - The resulting HTML can be sent through an HTML sanitizer.
//     This is highly recommended.
//   - Set IgnoreRaw to prevent inclusion of raw HTML.
//     This eliminates any raw HTML usage,
//     so the output is guaranteed to use a fixed set of elements
//     and avoid parse errors.
//     However, this can lead to content being omitted from the document entirely,
//     which may be surprising to end-users for legitimate use cases.
//   - FilterTag can be used to prevent some tags from being used
//     while still showing the source text.
//     Note that this does not prevent parse errors.
//     For untrusted inputs, this technique should be combined with sanitization.
//
// [Cross-Site Scripting (XSS)]: https://owasp.org/www-community/attacks/xss/
// [HTML parse errors]: https://html.spec.whatwg.org/multipage/parsing.html#parse-errors
// [raw HTML]: https://spec.commonmark.org/0.31.2/#raw-html
type HTMLRenderer struct {
	// SoftBreakBehavior determines how soft line breaks are rendered.
	SoftBreakBehavior SoftBreakBehavior
	// If IgnoreRaw is true, the renderer skips any raw HTML.
	IgnoreRaw bool
	// FilterTag is a predicate function
	// that reports whether an element with the given lowercased tag name
	// should have its leading angle bracket escaped.
	// If FilterTag is nil, then no filtering will occur.
	//
	// FilterTag functions must not modify the byte slice
	// nor retain the slice after the function returns.
	FilterTag func(tag []byte) bool
	// Custom maps node kinds registered by extensions to their render functions.
	// Nodes of a custom kind without an entry render as their children.
	Custom map[NodeKind]RenderFunc
}

// A RenderFunc appends the HTML for n to dst and returns the resulting byte slice.
// It can use [*HTMLRenderer.AppendChildren] to render n's children.
type RenderFunc func(r *HTMLRenderer, dst []byte, n *Node) []byte

// RenderHTML writes the given inline tree to the given writer as HTML
// using the default options for [HTMLRenderer].
func RenderHTML(w io.Writer, n *Node) error {
	return new(HTMLRenderer).Render(w, n)
}

// Render writes the given inline tree to the given writer as HTML.
func (r *HTMLRenderer) Render(w io.Writer, n *Node) error {
	if _, err := w.Write(r.AppendNode(nil, n)); err != nil {
		return fmt.Errorf("render markdown to html: %w", err)
	}
	return nil
}

// AppendNode appends the rendered HTML of n to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendNode(dst []byte, n *Node) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.node(n)
	return state.dst
}

// AppendChildren appends the rendered HTML of n's children to dst
// and returns the resulting byte slice.
func (r *HTMLRenderer) AppendChildren(dst []byte, n *Node) []byte {
	state := &renderState{
		HTMLRenderer: r,
		dst:          dst,
	}
	state.children(n)
	return state.dst
}

type renderState struct {
	*HTMLRenderer
	dst      []byte
	lowerBuf []byte
}

func (r *renderState) openTagAttr(name atom.Atom) {
	start := len(r.dst)
	r.dst = append(r.dst, '<')
	r.dst = append(r.dst, name.String()...)
	if r.FilterTag != nil && r.FilterTag(r.dst[start+1:]) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;"...)
		r.dst = append(r.dst, name.String()...)
	}
}

func (r *renderState) openTag(name atom.Atom) {
	r.openTagAttr(name)
	r.dst = append(r.dst, '>')
}

func (r *renderState) closeTag(name atom.Atom) {
	start := len(r.dst)
	r.dst = append(r.dst, "</"...)
	r.dst = append(r.dst, name.String()...)
	if r.FilterTag != nil && r.FilterTag(r.dst[start+2:]) {
		r.dst = r.dst[:start]
		r.dst = append(r.dst, "&lt;/"...)
		r.dst = append(r.dst, name.String()...)
	}
	r.dst = append(r.dst, '>')
}

// attr appends an attribute with an escaped value.
func (r *renderState) attr(name, value string) {
	r.dst = append(r.dst, ' ')
	r.dst = append(r.dst, name...)
	r.dst = append(r.dst, `="`...)
	r.dst = escapeHTML(r.dst, value)
	r.dst = append(r.dst, '"')
}

func (r *renderState) children(n *Node) {
	for c := n.FirstChild(); c != nil; c = c.Next() {
		r.node(c)
	}
}

func (r *renderState) node(n *Node) {
	switch n.Kind() {
	case ParagraphKind:
		r.openTag(atom.P)
		r.children(n)
		r.closeTag(atom.P)
		r.dst = append(r.dst, '\n')
	case TextKind:
		r.dst = escapeHTML(r.dst, n.Literal())
	case SoftLineBreakKind:
		switch r.SoftBreakBehavior {
		case SoftBreakSpace:
			r.dst = append(r.dst, ' ')
		case SoftBreakHarden:
			r.openTagAttr(atom.Br)
			r.dst = append(r.dst, " />\n"...)
		default:
			r.dst = append(r.dst, '\n')
		}
	case HardLineBreakKind:
		r.openTagAttr(atom.Br)
		r.dst = append(r.dst, " />\n"...)
	case EmphasisKind:
		r.openTag(atom.Em)
		r.children(n)
		r.closeTag(atom.Em)
	case StrongKind:
		r.openTag(atom.Strong)
		r.children(n)
		r.closeTag(atom.Strong)
	case CodeSpanKind:
		r.openTag(atom.Code)
		r.dst = escapeHTML(r.dst, n.Literal())
		r.closeTag(atom.Code)
	case LinkKind:
		r.openTagAttr(atom.A)
		r.attr("href", NormalizeURI(n.Destination()))
		if title, ok := n.Title(); ok {
			r.attr("title", title)
		}
		r.dst = append(r.dst, '>')
		r.children(n)
		r.closeTag(atom.A)
	case ImageKind:
		r.openTagAttr(atom.Img)
		r.attr("src", NormalizeURI(n.Destination()))
		r.dst = append(r.dst, ` alt="`...)
		r.dst = escapeHTML(r.dst, altText(n))
		r.dst = append(r.dst, '"')
		if title, ok := n.Title(); ok {
			r.attr("title", title)
		}
		r.dst = append(r.dst, " />"...)
	case RawHTMLKind:
		if r.IgnoreRaw {
			return
		}
		if r.FilterTag == nil {
			r.dst = append(r.dst, n.Literal()...)
		} else {
			r.filterRaw(n.Literal())
		}
	default:
		if f := r.Custom[n.Kind()]; f != nil {
			r.dst = f(r.HTMLRenderer, r.dst, n)
			return
		}
		r.children(n)
	}
}

// filterRaw performs the tag filtering
// described in https://github.github.com/gfm/#disallowed-raw-html-extension-
// on a single raw HTML inline.
// Comments, processing instructions, declarations, and CDATA are copied as-is.
func (r *renderState) filterRaw(rawHTML string) {
	nameStart := len("<")
	if strings.HasPrefix(rawHTML, "</") {
		nameStart = len("</")
	}
	nameEnd := nameStart
	for nameEnd < len(rawHTML) && (isASCIIAlphanumeric(rawHTML[nameEnd]) || rawHTML[nameEnd] == '-') {
		nameEnd++
	}
	if nameEnd == nameStart || !isASCIILetter(rawHTML[nameStart]) {
		r.dst = append(r.dst, rawHTML...)
		return
	}
	if r.FilterTag(maybeLower(rawHTML[nameStart:nameEnd], &r.lowerBuf)) {
		r.dst = append(r.dst, "&lt;"...)
		r.dst = append(r.dst, rawHTML[len("<"):]...)
		return
	}
	r.dst = append(r.dst, rawHTML...)
}

// altText returns the plain text content of an image description.
func altText(image *Node) string {
	sb := new(strings.Builder)
	Walk(image, &WalkOptions{
		Pre: func(c *Cursor) bool {
			switch n := c.Node(); n.Kind() {
			case TextKind, CodeSpanKind:
				sb.WriteString(n.Literal())
			case SoftLineBreakKind, HardLineBreakKind:
				sb.WriteByte(' ')
			case RawHTMLKind:
				// Ignore.
			}
			return true
		},
	})
	return sb.String()
}

// escapeHTML appends the HTML-escaped version of a string to a byte slice.
func escapeHTML(dst []byte, src string) []byte {
	verbatimStart := 0
	for i := 0; i < len(src); i++ {
		var esc string
		switch src[i] {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '"':
			esc = "&quot;"
		default:
			continue
		}
		dst = append(dst, src[verbatimStart:i]...)
		dst = append(dst, esc...)
		verbatimStart = i + 1
	}
	return append(dst, src[verbatimStart:]...)
}

func maybeLower(x string, buf *[]byte) []byte {
	*buf = append((*buf)[:0], x...)
	for i, b := range *buf {
		if 'A' <= b && b <= 'Z' {
			(*buf)[i] = b - 'A' + 'a'
		}
	}
	return *buf
}

// FilterTagGFM performs the same tag filtering as the
// GitHub Flavored Markdown [tagfilter extension].
// It is suitable for use as the FilterTag field in [HTMLRenderer].
//
// [tagfilter extension]: https://github.github.com/gfm/#disallowed-raw-html-extension-
func FilterTagGFM(tag []byte) bool {
	switch atom.Lookup(tag) {
	case atom.Title, atom.Textarea, atom.Style, atom.Xmp, atom.Iframe,
		atom.Noembed, atom.Noframes, atom.Script, atom.Plaintext:
		return true
	default:
		return false
	}
}

// SoftBreakBehavior is an enumeration of rendering styles for [soft line breaks].
//
// [soft line breaks]: https://spec.commonmark.org/0.31.2/#soft-line-breaks
type SoftBreakBehavior int

const (
	// SoftBreakPreserve indicates that a soft line break should be rendered as-is.
	SoftBreakPreserve SoftBreakBehavior = iota
	// SoftBreakSpace indicates that a soft line break should be rendered as a space.
	SoftBreakSpace
	// SoftBreakHarden indicates that a soft line break should be rendered as a hard line break.
	SoftBreakHarden
)

// NormalizeURI percent-encodes any characters in a string
// that are not reserved or unreserved URI characters.
// This is commonly used for transforming CommonMark link destinations
// into strings suitable for href or src attributes.
func NormalizeURI(s string) string {
	// RFC 3986 reserved and unreserved characters.
	const safeSet = `;/?:@&=+$,-_.!~*'()#`

	sb := new(strings.Builder)
	sb.Grow(len(s))
	skip := 0
	var buf [utf8.UTFMax]byte
	for i, c := range s {
		if skip > 0 {
			skip--
			sb.WriteRune(c)
			continue
		}
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				skip = 2
				sb.WriteByte('%')
			} else {
				sb.WriteString("%25")
			}
		case (c < utf8.RuneSelf && isASCIIAlphanumeric(byte(c))) || strings.ContainsRune(safeSet, c):
			sb.WriteRune(c)
		default:
			n := utf8.EncodeRune(buf[:], c)
			for _, b := range buf[:n] {
				sb.WriteByte('%')
				sb.WriteByte(urlHexDigit(b >> 4))
				sb.WriteByte(urlHexDigit(b & 0x0f))
			}
		}
	}
	return sb.String()
}

func urlHexDigit(x byte) byte {
	switch {
	case x < 0xa:
		return '0' + x
	case x < 0x10:
		return 'A' + x - 0xa
	default:
		panic("out of bounds")
	}
}
