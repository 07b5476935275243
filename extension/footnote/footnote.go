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

// Package footnote provides footnote references for an [mdinline.InlineParser].
//
// A footnote reference is written as "[^label]"
// and resolves when the label has a footnote definition.
// Parsing footnote definitions themselves is up to the block parser;
// they are registered with [Definitions.Define].
package footnote

import (
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"
	"zombiezen.com/go/mdinline"
)

// Kind is the node kind for footnote references.
// The node's label is the label of the footnote definition,
// and its literal is the reference's source text.
var Kind = mdinline.RegisterKind("FootnoteReference")

// Definitions is a set of footnote definitions
// keyed by normalized label.
// The values are the labels as written in the definitions.
type Definitions map[string]string

// Define adds a footnote definition for label to the set.
// The first definition of a label wins.
// Define reports whether the definition was added.
func (defs Definitions) Define(label string) bool {
	key := mdinline.NormalizeLabel(label)
	if _, exists := defs[key]; key == "" || exists {
		return false
	}
	defs[key] = label
	return true
}

// Lookup returns the definition's label for a reference label.
func (defs Definitions) Lookup(label string) (string, bool) {
	def, ok := defs[mdinline.NormalizeLabel(label)]
	return def, ok
}

// BracketProcessor turns "[^label]" into a [Kind] node
// when the label has a footnote definition.
type BracketProcessor struct {
	Definitions Definitions
}

// ProcessBracket implements [mdinline.BracketProcessor].
func (p *BracketProcessor) ProcessBracket(info mdinline.BracketInfo, s *mdinline.Scanner, defs mdinline.DefinitionLookup) (mdinline.BracketResult, bool) {
	label, ok := strings.CutPrefix(info.Text, "^")
	if !ok {
		return mdinline.BracketResult{}, false
	}
	if info.Reference == mdinline.FullReference {
		if _, isLink := mdinline.LookupDefinition(defs, info.Label); isLink {
			// "[^foo][bar]" is a link to bar if bar is defined.
			return mdinline.BracketResult{}, false
		}
	}
	defLabel, ok := p.Definitions.Lookup(label)
	if !ok {
		return mdinline.BracketResult{}, false
	}
	ref := mdinline.NewNode(Kind)
	ref.SetLabel(defLabel)
	ref.SetLiteral("[" + info.Text + "]")
	return mdinline.ReplaceWith(ref, info.AfterTextBracket).StartFromBracket(), true
}

// Extend adds a footnote bracket processor for defs to opts.
func Extend(opts *mdinline.Options, defs Definitions) {
	opts.BracketProcessors = append(opts.BracketProcessors, &BracketProcessor{Definitions: defs})
}

// Numbering assigns numbers to footnotes
// in the order they are first referenced.
// The zero value is an empty numbering.
// A Numbering should be used for a single document.
type Numbering struct {
	numbers map[string]int
	refs    map[string]int
	order   []string
}

// Reference records a reference to the footnote with the given label
// and returns the footnote's number
// and the index of the reference among the references to that footnote,
// starting at 1.
func (num *Numbering) Reference(label string) (number, refIndex int) {
	if num.numbers == nil {
		num.numbers = make(map[string]int)
		num.refs = make(map[string]int)
	}
	number, ok := num.numbers[label]
	if !ok {
		num.order = append(num.order, label)
		number = len(num.order)
		num.numbers[label] = number
	}
	num.refs[label]++
	return number, num.refs[label]
}

// Labels returns the labels of the referenced footnotes in numbering order.
func (num *Numbering) Labels() []string {
	return num.order[:len(num.order):len(num.order)]
}

// References returns the number of times the footnote with the given label
// has been referenced.
func (num *Numbering) References(label string) int {
	return num.refs[label]
}

// DefinitionID returns the HTML id of the footnote definition for label.
func DefinitionID(label string) string {
	return "fn-" + label
}

// ReferenceID returns the HTML id of the refIndex'th reference to the footnote.
func ReferenceID(label string, refIndex int) string {
	id := "fnref-" + label
	if refIndex > 1 {
		id += "-" + strconv.Itoa(refIndex)
	}
	return id
}

// ExtendRenderer registers num's [*Numbering.RenderHTML] with r.
func ExtendRenderer(r *mdinline.HTMLRenderer, num *Numbering) {
	if r.Custom == nil {
		r.Custom = make(map[mdinline.NodeKind]mdinline.RenderFunc)
	}
	r.Custom[Kind] = num.RenderHTML
}

// RenderHTML renders a [Kind] node as a superscript link to the footnote.
// It numbers the footnote in num.
func (num *Numbering) RenderHTML(r *mdinline.HTMLRenderer, dst []byte, n *mdinline.Node) []byte {
	label := n.Label()
	number, refIndex := num.Reference(label)
	dst = append(dst, '<')
	dst = append(dst, atom.Sup.String()...)
	dst = append(dst, ` class="footnote-ref"><a href="#`...)
	dst = appendEscaped(dst, DefinitionID(label))
	dst = append(dst, `" id="`...)
	dst = appendEscaped(dst, ReferenceID(label, refIndex))
	dst = append(dst, `" data-footnote-ref>`...)
	dst = strconv.AppendInt(dst, int64(number), 10)
	dst = append(dst, "</a></"...)
	dst = append(dst, atom.Sup.String()...)
	dst = append(dst, '>')
	return dst
}

var attrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
)

func appendEscaped(dst []byte, s string) []byte {
	return append(dst, attrEscaper.Replace(s)...)
}
