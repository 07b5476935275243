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

// bracket is an entry on the bracket stack:
// an unmatched "[" or "![" that may open a link or image.
type bracket struct {
	// node is the text node for the bracket marker.
	node  *Node
	image bool
	// markerPosition is the position of the '[' or '!'.
	markerPosition Position
	// contentPosition is the position after the '['.
	contentPosition Position

	prev              *bracket
	previousDelimiter *Delimiter

	// allowed is false once the bracket can no longer open a link,
	// because links may not contain other links.
	allowed bool
	// bracketAfter reports whether another bracket was opened after this one.
	bracketAfter bool
}

// OpenerKind is the type of bracket that started a [BracketInfo].
type OpenerKind int8

const (
	// LinkOpener is a "[".
	LinkOpener OpenerKind = 1 + iota
	// ImageOpener is a "![".
	ImageOpener
)

// ReferenceKind is the form of a [reference link].
//
// [reference link]: https://spec.commonmark.org/0.31.2/#reference-link
type ReferenceKind int8

const (
	// FullReference is "[text][label]".
	FullReference ReferenceKind = 1 + iota
	// CollapsedReference is "[text][]".
	CollapsedReference
	// ShortcutReference is "[text]".
	ShortcutReference
)

// BracketInfo describes a closed bracket pair
// that is not followed by an inline destination.
type BracketInfo struct {
	Opener    OpenerKind
	Reference ReferenceKind
	// Text is the raw source between the opening and closing brackets.
	Text string
	// Label is the raw content of the following "[label]".
	// It is empty for collapsed and shortcut references.
	Label string
	// AfterTextBracket is the position right after the closing bracket of Text.
	AfterTextBracket Position
}

type bracketResultKind int8

const (
	wrapResult bracketResultKind = 1 + iota
	replaceResult
)

// BracketResult is the outcome of a [BracketProcessor] that accepted a bracket pair.
type BracketResult struct {
	kind             bracketResultKind
	node             *Node
	position         Position
	startFromBracket bool
}

// WrapTextIn returns a result that moves the bracketed text into node
// and continues parsing at pos.
// Delimiters inside the text are resolved within node.
func WrapTextIn(node *Node, pos Position) BracketResult {
	return BracketResult{kind: wrapResult, node: node, position: pos}
}

// ReplaceWith returns a result that removes everything from the opening bracket
// through the current position, puts node in its place,
// and continues parsing at pos.
func ReplaceWith(node *Node, pos Position) BracketResult {
	return BracketResult{kind: replaceResult, node: node, position: pos}
}

// StartFromBracket returns a copy of a [ReplaceWith] result
// that keeps the '!' of an image opener as literal text
// and only replaces from the '['.
func (r BracketResult) StartFromBracket() BracketResult {
	r.startFromBracket = true
	return r
}

// A BracketProcessor turns a closed bracket pair into a node.
type BracketProcessor interface {
	// ProcessBracket is called with the scanner positioned after the closing bracket
	// (or after the reference label, if one is present).
	// If the processor declines by returning false,
	// the scanner is rewound and the next processor is tried.
	ProcessBracket(info BracketInfo, s *Scanner, defs DefinitionLookup) (BracketResult, bool)
}

// coreBracketProcessor resolves reference links and images
// against the link reference definitions.
type coreBracketProcessor struct{}

func (coreBracketProcessor) ProcessBracket(info BracketInfo, s *Scanner, defs DefinitionLookup) (BracketResult, bool) {
	label := info.Label
	if label == "" {
		label = info.Text
	}
	def, ok := LookupDefinition(defs, label)
	if !ok {
		return BracketResult{}, false
	}
	var n *Node
	if info.Opener == ImageOpener {
		n = NewImage(def.Destination, def.Title, def.TitlePresent)
	} else {
		n = NewLink(def.Destination, def.Title, def.TitlePresent)
	}
	return WrapTextIn(n, s.Position()), true
}

func (state *inlineState) parseOpenBracket() {
	s := state.scanner
	start := s.Position()
	s.Next()
	contentPosition := s.Position()
	node := state.text(s.Source(start, contentPosition))
	state.add(node)
	state.addBracket(&bracket{
		node:            node,
		markerPosition:  start,
		contentPosition: contentPosition,
	})
}

// parseBang handles a '!', which opens an image if followed by '['.
func (state *inlineState) parseBang() {
	s := state.scanner
	start := s.Position()
	s.Next()
	if !s.NextByte('[') {
		state.add(state.text(s.Source(start, s.Position())))
		return
	}
	contentPosition := s.Position()
	node := state.text(s.Source(start, contentPosition))
	state.add(node)
	state.addBracket(&bracket{
		node:            node,
		image:           true,
		markerPosition:  start,
		contentPosition: contentPosition,
	})
}

// parseCloseBracket tries to match a ']' with the last opening bracket
// to form a link or image.
func (state *inlineState) parseCloseBracket() {
	s := state.scanner
	beforeClose := s.Position()
	s.Next()
	afterClose := s.Position()

	opener := state.lastBracket
	if opener == nil {
		state.add(state.text(s.Source(beforeClose, afterClose)))
		return
	}
	if !opener.allowed {
		state.removeLastBracket()
		state.add(state.text(s.Source(beforeClose, afterClose)))
		return
	}
	if n := state.parseLinkOrImage(opener, beforeClose); n != nil {
		state.add(n)
		return
	}
	s.SetPosition(afterClose)
	state.removeLastBracket()
	state.add(state.text(s.Source(beforeClose, afterClose)))
}

func (state *inlineState) parseLinkOrImage(opener *bracket, beforeClose Position) *Node {
	s := state.scanner
	afterClose := s.Position()

	if dest, title, hasTitle, ok := parseInlineDestinationTitle(s); ok {
		var n *Node
		if opener.image {
			n = NewImage(dest, title, hasTitle)
		} else {
			n = NewLink(dest, title, hasTitle)
		}
		return state.processLinkOrImage(opener, n)
	}
	s.SetPosition(afterClose)

	info := BracketInfo{
		Opener:           LinkOpener,
		Text:             s.Source(opener.contentPosition, beforeClose).Content(),
		AfterTextBracket: afterClose,
	}
	if opener.image {
		info.Opener = ImageOpener
	}
	if label, ok := parseLinkLabel(s); !ok {
		s.SetPosition(afterClose)
		info.Reference = ShortcutReference
	} else if label == "" {
		info.Reference = CollapsedReference
	} else {
		info.Reference = FullReference
		info.Label = label
	}
	if info.Reference != FullReference && opener.bracketAfter {
		// A shortcut or collapsed reference
		// cannot contain another bracket pair.
		return nil
	}

	processorStart := s.Position()
	for _, proc := range state.bracketProcessors {
		result, ok := proc.ProcessBracket(info, s, state.references)
		if !ok || result.node == nil {
			s.SetPosition(processorStart)
			continue
		}
		s.SetPosition(result.position)
		switch result.kind {
		case wrapResult:
			return state.processLinkOrImage(opener, result.node)
		case replaceResult:
			return state.replaceBracket(opener, result)
		default:
			panic("invalid BracketResult")
		}
	}
	return nil
}

// processLinkOrImage moves the nodes after the opener into linkOrImage,
// resolves the delimiters inside it, and pops the opener.
func (state *inlineState) processLinkOrImage(opener *bracket, linkOrImage *Node) *Node {
	for n := opener.node.next; n != nil; {
		next := n.next
		linkOrImage.AppendChild(n)
		n = next
	}
	if state.includeSourceSpans {
		linkOrImage.spans = state.scanner.Source(opener.markerPosition, state.scanner.Position()).Spans()
	}

	state.processDelimiters(opener.previousDelimiter)
	// Only the direct children are merged here.
	// The whole tree is merged at the end of Parse.
	if linkOrImage.firstChild != nil {
		mergeTextNodesInclusive(linkOrImage.firstChild, linkOrImage.lastChild, false)
	}
	opener.node.Unlink()
	state.removeLastBracket()

	// Links may not contain other links, so earlier link openers are deactivated.
	// Images may contain links, so image openers stay active.
	if !opener.image {
		for b := state.lastBracket; b != nil; b = b.prev {
			if !b.image {
				b.allowed = false
			}
		}
	}
	return linkOrImage
}

// replaceBracket removes everything from the opener through the current position
// and returns the result's node to take its place.
func (state *inlineState) replaceBracket(opener *bracket, result BracketResult) *Node {
	for state.lastDelimiter != nil && state.lastDelimiter != opener.previousDelimiter {
		state.removeDelimiter(state.lastDelimiter)
	}
	state.removeLastBracket()

	start := opener.node
	if result.startFromBracket && opener.image {
		// Keep the '!' as text.
		start.literal = "!"
		if len(start.spans) > 0 {
			start.spans = []SourceSpan{start.spans[0].SubSpan(0, 1)}
		}
		start = start.next
	}
	for n := start; n != nil; {
		next := n.next
		n.Unlink()
		n = next
	}
	if state.includeSourceSpans && len(result.node.spans) == 0 {
		from := opener.markerPosition
		if result.startFromBracket && opener.image {
			from = opener.contentPosition
			from.index--
		}
		result.node.spans = state.scanner.Source(from, state.scanner.Position()).Spans()
	}
	return result.node
}

func (state *inlineState) addBracket(b *bracket) {
	b.prev = state.lastBracket
	b.previousDelimiter = state.lastDelimiter
	b.allowed = true
	if b.prev != nil {
		b.prev.bracketAfter = true
	}
	state.lastBracket = b
}

func (state *inlineState) removeLastBracket() {
	state.lastBracket = state.lastBracket.prev
}
