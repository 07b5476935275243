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

// Package normhtml provides a function for normalizing HTML
// which ignores insignificant output differences,
// based on the [CommonMark spec test normalization].
//
// [CommonMark spec test normalization]: https://github.com/commonmark/commonmark-spec/blob/0.31.2/test/normalize.py
package normhtml

import (
	"bytes"
	"regexp"
	"sort"
	"unicode"

	"go4.org/bytereplacer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

var htmlEscaper = bytereplacer.New(
	"&", "&amp;",
	`'`, "&apos;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

// NormalizeHTML strips insignificant output differences from HTML:
// whitespace runs are collapsed,
// whitespace around block-level tags is removed,
// attributes are sorted,
// and entities are written in a canonical form.
func NormalizeHTML(b []byte) []byte {
	n := &normalizer{
		tok:  html.NewTokenizerFragment(bytes.NewReader(b), "div"),
		last: html.StartTagToken,
	}
	for n.next() {
	}
	return n.output
}

// Normalize is [NormalizeHTML] for strings.
func Normalize(s string) string {
	return string(NormalizeHTML([]byte(s)))
}

type normalizer struct {
	tok     *html.Tokenizer
	output  []byte
	last    html.TokenType
	lastTag atom.Atom
	inPre   bool
}

func (n *normalizer) next() bool {
	tt := n.tok.Next()
	switch tt {
	case html.ErrorToken:
		return false
	case html.TextToken:
		n.text(n.tok.Text())
	case html.EndTagToken:
		tag, _ := n.tok.TagName()
		a := atom.Lookup(tag)
		if a == atom.Pre {
			n.inPre = false
		} else if isBlockTag(a) {
			n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
		}
		n.output = append(n.output, "</"...)
		n.output = append(n.output, tag...)
		n.output = append(n.output, ">"...)
		n.lastTag = a
	case html.StartTagToken, html.SelfClosingTagToken:
		tag, hasAttr := n.tok.TagName()
		a := atom.Lookup(tag)
		if a == atom.Pre {
			n.inPre = true
		}
		if isBlockTag(a) {
			n.output = bytes.TrimRightFunc(n.output, unicode.IsSpace)
		}
		n.output = append(n.output, "<"...)
		n.output = append(n.output, tag...)
		if hasAttr {
			n.attrs()
		}
		n.output = append(n.output, ">"...)
		n.lastTag = a
	case html.CommentToken, html.DoctypeToken:
		n.output = append(n.output, n.tok.Raw()...)
	}

	n.last = tt
	if tt == html.SelfClosingTagToken {
		n.last = html.EndTagToken
	}
	return true
}

func (n *normalizer) text(data []byte) {
	afterTag := n.last == html.EndTagToken || n.last == html.StartTagToken
	afterBlockTag := afterTag && isBlockTag(n.lastTag)
	if afterTag && n.lastTag == atom.Br {
		data = bytes.TrimLeft(data, "\n")
	}
	if !n.inPre {
		data = whitespaceRE.ReplaceAll(data, []byte(" "))
	}
	if afterBlockTag && !n.inPre {
		if n.last == html.StartTagToken {
			data = bytes.TrimLeftFunc(data, unicode.IsSpace)
		} else {
			data = bytes.TrimSpace(data)
		}
	}
	n.output = append(n.output, htmlEscaper.Replace(bytes.Clone(data))...)
}

func (n *normalizer) attrs() {
	type htmlAttribute struct {
		key   string
		value string
	}

	var attrs []htmlAttribute
	for {
		k, v, more := n.tok.TagAttr()
		attrs = append(attrs, htmlAttribute{string(k), string(v)})
		if !more {
			break
		}
	}
	sort.SliceStable(attrs, func(i, j int) bool {
		return attrs[i].key < attrs[j].key
	})
	for _, attr := range attrs {
		n.output = append(n.output, " "...)
		n.output = append(n.output, attr.key...)
		if attr.value != "" {
			n.output = append(n.output, `="`...)
			n.output = append(n.output, html.EscapeString(attr.value)...)
			n.output = append(n.output, `"`...)
		}
	}
}

// isBlockTag reports whether whitespace around the tag is insignificant.
func isBlockTag(a atom.Atom) bool {
	switch a {
	case atom.Article, atom.Header, atom.Aside, atom.Hgroup, atom.Blockquote,
		atom.Hr, atom.Iframe, atom.Body, atom.Li, atom.Map, atom.Button,
		atom.Object, atom.Canvas, atom.Ol, atom.Caption, atom.Output,
		atom.Col, atom.P, atom.Colgroup, atom.Pre, atom.Dd, atom.Progress,
		atom.Div, atom.Section, atom.Dl, atom.Table, atom.Td, atom.Dt,
		atom.Tbody, atom.Embed, atom.Textarea, atom.Fieldset, atom.Tfoot,
		atom.Figcaption, atom.Th, atom.Figure, atom.Thead, atom.Footer,
		atom.Tr, atom.Form, atom.Ul, atom.H1, atom.H2, atom.H3, atom.H4,
		atom.H5, atom.H6, atom.Video, atom.Script, atom.Style:
		return true
	default:
		return false
	}
}
