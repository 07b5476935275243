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

// Package strikethrough provides the GitHub Flavored Markdown
// [strikethrough extension] for an [mdinline.InlineParser].
//
// [strikethrough extension]: https://github.github.com/gfm/#strikethrough-extension-
package strikethrough

import (
	"strings"

	"golang.org/x/net/html/atom"
	"zombiezen.com/go/mdinline"
)

// Kind is the node kind for struck-through content.
// The node's literal is the delimiter used ("~" or "~~").
var Kind = mdinline.RegisterKind("Strikethrough")

// DelimiterProcessor resolves pairs of tilde runs into [Kind] nodes.
// Runs must be one or two tildes long,
// and the opener and closer must be the same length.
type DelimiterProcessor struct{}

// OpeningChar returns '~'.
func (DelimiterProcessor) OpeningChar() byte { return '~' }

// ClosingChar returns '~'.
func (DelimiterProcessor) ClosingChar() byte { return '~' }

// MinLength returns 1.
func (DelimiterProcessor) MinLength() int { return 1 }

// Process wraps the content between opener and closer
// if the runs have the same length.
func (DelimiterProcessor) Process(opener, closer *mdinline.Delimiter) int {
	n := opener.Len()
	if n != closer.Len() || n > 2 {
		return 0
	}
	strike := mdinline.NewNode(Kind)
	strike.SetLiteral(strings.Repeat("~", n))
	mdinline.WrapDelimited(strike, opener, closer, n)
	return n
}

// Extend adds the strikethrough delimiter processor to opts.
func Extend(opts *mdinline.Options) {
	opts.DelimiterProcessors = append(opts.DelimiterProcessors, DelimiterProcessor{})
}

// ExtendRenderer registers [RenderHTML] with r.
func ExtendRenderer(r *mdinline.HTMLRenderer) {
	if r.Custom == nil {
		r.Custom = make(map[mdinline.NodeKind]mdinline.RenderFunc)
	}
	r.Custom[Kind] = RenderHTML
}

// RenderHTML renders a [Kind] node as a del element.
func RenderHTML(r *mdinline.HTMLRenderer, dst []byte, n *mdinline.Node) []byte {
	dst = append(dst, '<')
	dst = append(dst, atom.Del.String()...)
	dst = append(dst, '>')
	dst = r.AppendChildren(dst, n)
	dst = append(dst, "</"...)
	dst = append(dst, atom.Del.String()...)
	dst = append(dst, '>')
	return dst
}
