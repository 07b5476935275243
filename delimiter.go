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

import "fmt"

// A Delimiter is a run of delimiter characters
// on the parser's delimiter stack.
// Each character of the run is a separate [TextKind] node in the tree
// so that processors can consume characters from either end.
type Delimiter struct {
	char        byte
	chars       []*Node
	originalLen int
	canOpen     bool
	canClose    bool

	prev *Delimiter
	next *Delimiter
}

// Char returns the delimiter character.
func (d *Delimiter) Char() byte {
	return d.char
}

// CanOpen reports whether the run [can open] a delimited span.
//
// [can open]: https://spec.commonmark.org/0.31.2/#can-open-emphasis
func (d *Delimiter) CanOpen() bool {
	return d.canOpen
}

// CanClose reports whether the run [can close] a delimited span.
//
// [can close]: https://spec.commonmark.org/0.31.2/#can-close-emphasis
func (d *Delimiter) CanClose() bool {
	return d.canClose
}

// Len returns the number of characters remaining in the run.
func (d *Delimiter) Len() int {
	return len(d.chars)
}

// OriginalLen returns the number of characters the run had
// before any were consumed.
func (d *Delimiter) OriginalLen() int {
	return d.originalLen
}

// Opener returns the innermost character node of an opening run,
// which is the last remaining character.
func (d *Delimiter) Opener() *Node {
	return d.chars[len(d.chars)-1]
}

// Closer returns the innermost character node of a closing run,
// which is the first remaining character.
func (d *Delimiter) Closer() *Node {
	return d.chars[0]
}

// Openers returns the last n remaining character nodes of an opening run.
// Openers panics if n is not in the range [1, d.Len()].
func (d *Delimiter) Openers(n int) []*Node {
	d.checkLen(n)
	return d.chars[len(d.chars)-n:]
}

// Closers returns the first n remaining character nodes of a closing run.
// Closers panics if n is not in the range [1, d.Len()].
func (d *Delimiter) Closers(n int) []*Node {
	d.checkLen(n)
	return d.chars[:n]
}

func (d *Delimiter) checkLen(n int) {
	if n < 1 || n > len(d.chars) {
		panic(fmt.Errorf("delimiter length %d out of range [1, %d]", n, len(d.chars)))
	}
}

// WrapDelimited moves the nodes between an opening and a closing delimiter run
// into wrapper and inserts wrapper after the opener's innermost character.
// If the delimiter characters have source spans,
// wrapper's spans are set to cover n characters of each run
// and everything in between.
// [DelimiterProcessor] implementations call WrapDelimited
// before returning n from Process.
func WrapDelimited(wrapper *Node, opener, closer *Delimiter, n int) {
	var spans []SourceSpan
	for _, c := range opener.Openers(n) {
		spans = AppendSpans(spans, c.spans...)
	}
	openerNode := opener.Opener()
	closerNode := closer.Closer()
	for c := openerNode.next; c != nil && c != closerNode; c = c.next {
		spans = AppendSpans(spans, c.spans...)
	}
	for _, c := range closer.Closers(n) {
		spans = AppendSpans(spans, c.spans...)
	}
	WrapBetween(wrapper, openerNode, closerNode)
	if len(spans) > 0 {
		wrapper.spans = spans
	}
}

// delimiterFlags determines whether a [delimiter run] of c
// between the code points before and after
// [can open emphasis] and/or [can close emphasis].
// [End] is used for the start or end of the input.
//
// [delimiter run]: https://spec.commonmark.org/0.31.2/#delimiter-run
// [can open emphasis]: https://spec.commonmark.org/0.31.2/#can-open-emphasis
// [can close emphasis]: https://spec.commonmark.org/0.31.2/#can-close-emphasis
func delimiterFlags(proc DelimiterProcessor, c byte, before, after rune) (canOpen, canClose bool) {
	beforeIsWhitespace := isUnicodeWhitespace(before)
	beforeIsPunctuation := isUnicodePunctuation(before)
	afterIsWhitespace := isUnicodeWhitespace(after)
	afterIsPunctuation := isUnicodePunctuation(after)

	leftFlanking := !afterIsWhitespace &&
		(!afterIsPunctuation || beforeIsWhitespace || beforeIsPunctuation)
	rightFlanking := !beforeIsWhitespace &&
		(!beforeIsPunctuation || afterIsWhitespace || afterIsPunctuation)
	if requiresWordBoundary(proc) {
		canOpen = leftFlanking && (!rightFlanking || beforeIsPunctuation)
		canClose = rightFlanking && (!leftFlanking || afterIsPunctuation)
	} else {
		canOpen = leftFlanking && c == proc.OpeningChar()
		canClose = rightFlanking && c == proc.ClosingChar()
	}
	return canOpen, canClose
}

// scanDelimiters scans a run of c at the current position.
// If the run is shorter than the processor's minimum length,
// scanDelimiters leaves the scanner where it was and returns nil.
func (state *inlineState) scanDelimiters(proc DelimiterProcessor, c byte) *Delimiter {
	s := state.scanner
	before := s.PeekPreviousRune()
	start := s.Position()
	if s.MatchMultiple(c) < proc.MinLength() {
		s.SetPosition(start)
		return nil
	}

	s.SetPosition(start)
	d := &Delimiter{char: c}
	for prev := start; s.NextByte(c); prev = s.Position() {
		d.chars = append(d.chars, state.text(s.Source(prev, s.Position())))
	}
	d.originalLen = len(d.chars)
	d.canOpen, d.canClose = delimiterFlags(proc, c, before, s.PeekRune())
	return d
}

// parseDelimiters pushes a run of c onto the delimiter stack
// and adds its character nodes to the block.
func (state *inlineState) parseDelimiters(proc DelimiterProcessor, c byte) bool {
	d := state.scanDelimiters(proc, c)
	if d == nil {
		return false
	}
	for _, n := range d.chars {
		state.add(n)
	}
	d.prev = state.lastDelimiter
	if d.prev != nil {
		d.prev.next = d
	}
	state.lastDelimiter = d
	return true
}

// processDelimiters implements the [process emphasis procedure]
// for every registered delimiter character,
// resolving runs above stackBottom into delimited spans.
// A nil stackBottom processes the whole stack.
//
// [process emphasis procedure]: https://spec.commonmark.org/0.31.2/#process-emphasis
func (state *inlineState) processDelimiters(stackBottom *Delimiter) {
	openersBottom := make(map[byte]*Delimiter)

	// Find first closer above stackBottom.
	closer := state.lastDelimiter
	for closer != nil && closer.prev != stackBottom {
		closer = closer.prev
	}

	for closer != nil {
		proc := state.delimiterProcessors[closer.char]
		if !closer.canClose || proc == nil {
			closer = closer.next
			continue
		}

		openingChar := proc.OpeningChar()
		used := 0
		openerFound := false
		potentialOpenerFound := false
		opener := closer.prev
		for opener != nil && opener != stackBottom && opener != openersBottom[closer.char] {
			if opener.canOpen && opener.char == openingChar {
				potentialOpenerFound = true
				used = proc.Process(opener, closer)
				if used > 0 {
					openerFound = true
					break
				}
			}
			opener = opener.prev
		}

		if !openerFound {
			if !potentialOpenerFound {
				// Set lower bound for future searches for openers.
				// Only do this when no opener was found at all,
				// as some processors reject pairs based on run lengths.
				openersBottom[closer.char] = closer.prev
				if !closer.canOpen {
					// The closer can't be an opener either,
					// so it is only text from now on.
					next := closer.next
					state.removeDelimiter(closer)
					closer = next
					continue
				}
			}
			closer = closer.next
			continue
		}

		if used > opener.Len() || used > closer.Len() {
			panic(fmt.Errorf("delimiter processor for %q consumed %d characters from runs of %d and %d",
				closer.char, used, opener.Len(), closer.Len()))
		}
		for i := 0; i < used; i++ {
			n := opener.chars[len(opener.chars)-1]
			opener.chars = opener.chars[:len(opener.chars)-1]
			n.Unlink()
		}
		for i := 0; i < used; i++ {
			closer.chars[i].Unlink()
		}
		closer.chars = closer.chars[used:]

		state.removeDelimitersBetween(opener, closer)
		if opener.Len() == 0 {
			state.removeDelimiter(opener)
		}
		if closer.Len() == 0 {
			next := closer.next
			state.removeDelimiter(closer)
			closer = next
		}
	}

	// Remaining delimiters above the bottom are plain text.
	for state.lastDelimiter != nil && state.lastDelimiter != stackBottom {
		state.removeDelimiter(state.lastDelimiter)
	}
}

// removeDelimitersBetween removes the delimiters strictly between opener and closer
// from the stack. Their character nodes stay in the tree as text.
func (state *inlineState) removeDelimitersBetween(opener, closer *Delimiter) {
	for d := closer.prev; d != nil && d != opener; {
		prev := d.prev
		state.removeDelimiter(d)
		d = prev
	}
}

// removeDelimiter removes d from the stack.
// Any character nodes d still has stay in the tree as text,
// and d's own links are left intact so iteration can continue past it.
func (state *inlineState) removeDelimiter(d *Delimiter) {
	if d.prev != nil {
		d.prev.next = d.next
	}
	if d.next == nil {
		state.lastDelimiter = d.prev
	} else {
		d.next.prev = d.prev
	}
}
