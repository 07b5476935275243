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

// Package mdinline provides a [CommonMark] inline parser.
//
// An [InlineParser] converts the lines of a block, like a paragraph,
// into a tree of inline nodes:
// text, emphasis, code spans, links, images, raw HTML, and line breaks.
// The parser can be extended with custom inline content parsers,
// delimiter processors, and bracket processors.
//
// [CommonMark]: https://spec.commonmark.org/0.31.2/
package mdinline

import (
	"fmt"
	"strings"
)

// Options is the set of parameters to [NewInlineParser].
// The zero value parses standard CommonMark with no link reference definitions.
type Options struct {
	// References is used to resolve reference links and images.
	// If nil, no references resolve.
	References DefinitionLookup
	// InlineContentParsers are tried before the built-in parsers
	// that share a trigger character, in order.
	InlineContentParsers []InlineContentParserFactory
	// DelimiterProcessors are registered in addition to
	// the built-in emphasis processors for '*' and '_'.
	DelimiterProcessors []DelimiterProcessor
	// BracketProcessors are tried in order
	// before the built-in reference link processor.
	BracketProcessors []BracketProcessor
}

// An InlineParser parses inline content.
// It is safe to call Parse from multiple goroutines concurrently.
type InlineParser struct {
	references          DefinitionLookup
	contentParsers      []InlineContentParserFactory
	delimiterProcessors map[byte]DelimiterProcessor
	bracketProcessors   []BracketProcessor
	special             [256]bool
}

// NewInlineParser returns a new parser configured with opts.
// A nil opts is treated the same as the zero value.
// NewInlineParser returns an error if the delimiter processors conflict;
// such errors wrap [ErrDelimiterConflict].
func NewInlineParser(opts *Options) (*InlineParser, error) {
	if opts == nil {
		opts = new(Options)
	}
	p := &InlineParser{
		references:          opts.References,
		delimiterProcessors: make(map[byte]DelimiterProcessor),
	}

	p.contentParsers = make([]InlineContentParserFactory, 0, len(opts.InlineContentParsers)+len(builtinContentParsers))
	for _, f := range opts.InlineContentParsers {
		if f == nil {
			return nil, fmt.Errorf("new inline parser: nil inline content parser factory")
		}
		p.contentParsers = append(p.contentParsers, f)
	}
	p.contentParsers = append(p.contentParsers, builtinContentParsers...)

	builtinDelimiters := []DelimiterProcessor{
		emphasisDelimiterProcessor('*'),
		emphasisDelimiterProcessor('_'),
	}
	if err := addDelimiterProcessors(p.delimiterProcessors, builtinDelimiters); err != nil {
		return nil, fmt.Errorf("new inline parser: %w", err)
	}
	if err := addDelimiterProcessors(p.delimiterProcessors, opts.DelimiterProcessors); err != nil {
		return nil, fmt.Errorf("new inline parser: %w", err)
	}

	p.bracketProcessors = make([]BracketProcessor, 0, len(opts.BracketProcessors)+1)
	for _, bp := range opts.BracketProcessors {
		if bp == nil {
			return nil, fmt.Errorf("new inline parser: nil bracket processor")
		}
		p.bracketProcessors = append(p.bracketProcessors, bp)
	}
	p.bracketProcessors = append(p.bracketProcessors, coreBracketProcessor{})

	for c := range p.delimiterProcessors {
		p.special[c] = true
	}
	for _, f := range p.contentParsers {
		for _, c := range f.TriggerCharacters() {
			p.special[c] = true
		}
	}
	for _, c := range []byte("[]!\n") {
		p.special[c] = true
	}
	return p, nil
}

// Parse parses lines as inline content
// and appends the resulting nodes to block.
// Parse calls [NewInlineParser] with nil options if p is nil.
func (p *InlineParser) Parse(lines SourceLines, block *Node) {
	if p == nil {
		var err error
		p, err = NewInlineParser(nil)
		if err != nil {
			panic(err)
		}
	}
	state := p.newState(lines, block)
	for state.parseInline() {
	}
	state.processDelimiters(nil)
	mergeChildTextNodes(block)
}

// inlineState is the state of a single call to [*InlineParser.Parse].
type inlineState struct {
	*InlineParser
	scanner            *Scanner
	block              *Node
	contentParsers     map[byte][]InlineContentParser
	includeSourceSpans bool

	// trailingSpaces is the number of spaces
	// removed from the end of the last text before a line ending.
	trailingSpaces int

	lastDelimiter *Delimiter
	lastBracket   *bracket
}

func (p *InlineParser) newState(lines SourceLines, block *Node) *inlineState {
	state := &inlineState{
		InlineParser:       p,
		scanner:            NewScanner(lines),
		block:              block,
		contentParsers:     make(map[byte][]InlineContentParser),
		includeSourceSpans: lines.hasSpans(),
	}
	for _, f := range p.contentParsers {
		cp := f.NewInlineContentParser()
		for _, c := range f.TriggerCharacters() {
			state.contentParsers[c] = append(state.contentParsers[c], cp)
		}
	}
	return state
}

// parseInline parses the next inline at the scanner's position
// and adds the resulting nodes to the block.
// It returns false at the end of the input.
func (state *inlineState) parseInline() bool {
	s := state.scanner
	if !s.HasNext() {
		return false
	}
	c := s.Peek()
	switch c {
	case '[':
		state.parseOpenBracket()
		return true
	case '!':
		state.parseBang()
		return true
	case ']':
		state.parseCloseBracket()
		return true
	case '\n':
		state.parseLineBreak()
		return true
	}
	if !state.special[c] {
		state.parseText()
		return true
	}

	start := s.Position()
	for _, cp := range state.contentParsers[c] {
		parsed, ok := cp.TryParse(s)
		if !ok || parsed.Node == nil || parsed.Position == start {
			// A result that consumes nothing would never advance.
			s.SetPosition(start)
			continue
		}
		s.SetPosition(parsed.Position)
		if state.includeSourceSpans && len(parsed.Node.spans) == 0 {
			parsed.Node.spans = s.Source(start, s.Position()).Spans()
		}
		state.add(parsed.Node)
		return true
	}
	if proc := state.delimiterProcessors[c]; proc != nil && state.parseDelimiters(proc, c) {
		return true
	}

	// No parser recognized the character, so it is literal text.
	state.parseText()
	return true
}

// parseText parses a run of text up to the next special character.
func (state *inlineState) parseText() {
	s := state.scanner
	start := s.Position()
	s.Next()
	for s.HasNext() && !state.special[s.Peek()] {
		s.Next()
	}
	source := s.Source(start, s.Position())
	content := source.Content()

	switch {
	case s.Peek() == '\n':
		// Trailing spaces before a line ending decide the kind of break
		// and are not part of the text.
		trimmed := strings.TrimRight(content, " ")
		state.trailingSpaces = len(content) - len(trimmed)
		content = trimmed
	case !s.HasNext():
		// Whitespace at the end of the block is not part of the text.
		content = strings.TrimRight(content, " \t")
	}
	if content == "" {
		return
	}
	t := NewText(content)
	if state.includeSourceSpans {
		t.spans = trimSpans(source.Spans(), len(source.Content())-len(content))
	}
	state.add(t)
}

// trimSpans shortens spans by n bytes from the end.
func trimSpans(spans []SourceSpan, n int) []SourceSpan {
	for n > 0 && len(spans) > 0 {
		last := &spans[len(spans)-1]
		if last.Length > n {
			last.Length -= n
			break
		}
		n -= last.Length
		spans = spans[:len(spans)-1]
	}
	return spans
}

func (state *inlineState) parseLineBreak() {
	state.scanner.Next()
	kind := SoftLineBreakKind
	if state.trailingSpaces >= 2 {
		kind = HardLineBreakKind
	}
	state.trailingSpaces = 0
	state.add(NewNode(kind))
}

// add appends n to the block being parsed.
func (state *inlineState) add(n *Node) {
	state.block.AppendChild(n)
}

// text returns a new text node for source.
func (state *inlineState) text(source SourceLines) *Node {
	t := NewText(source.Content())
	if state.includeSourceSpans {
		t.spans = source.Spans()
	}
	return t
}

// mergeChildTextNodes merges adjacent text children of n,
// recursing into non-text children.
func mergeChildTextNodes(n *Node) {
	if n.firstChild == nil {
		return
	}
	mergeTextNodesInclusive(n.firstChild, n.lastChild, true)
}

// mergeTextNodesInclusive merges adjacent text nodes
// in the sibling range from first through last.
// If deep is true, it also merges within the non-text nodes of the range.
func mergeTextNodesInclusive(from, to *Node, deep bool) {
	var first, last *Node
	for n := from; n != nil; n = n.next {
		if n.kind == TextKind {
			if first == nil {
				first = n
			}
			last = n
		} else {
			mergeIfNeeded(first, last)
			first, last = nil, nil
			if deep {
				mergeChildTextNodes(n)
			}
		}
		if n == to {
			break
		}
	}
	mergeIfNeeded(first, last)
}

func mergeIfNeeded(first, last *Node) {
	if first == nil || first == last {
		return
	}
	sb := new(strings.Builder)
	sb.WriteString(first.literal)
	spans := AppendSpans(nil, first.spans...)
	stop := last.next
	for n := first.next; n != stop; {
		next := n.next
		sb.WriteString(n.literal)
		spans = AppendSpans(spans, n.spans...)
		n.Unlink()
		n = next
	}
	first.literal = sb.String()
	first.spans = spans
}
