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
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// A DelimiterProcessor resolves matched pairs of delimiter runs,
// like the asterisks and underscores of emphasis.
type DelimiterProcessor interface {
	// OpeningChar returns the character that opens a delimited span.
	OpeningChar() byte
	// ClosingChar returns the character that closes a delimited span.
	// It is the same as the opening character for symmetric delimiters.
	ClosingChar() byte
	// MinLength returns the minimum number of characters
	// a run must have to be considered a delimiter.
	MinLength() int
	// Process is called with an opener and a closer run that may match.
	// If they match, Process wraps the nodes between them
	// (typically with [WrapDelimited])
	// and returns the number of characters to consume from each run.
	// Returning 0 rejects the pair.
	Process(opener, closer *Delimiter) int
}

// A WordBoundaryProcessor is a [DelimiterProcessor]
// whose runs can only open or close at word boundaries,
// like the underscore in CommonMark emphasis.
type WordBoundaryProcessor interface {
	DelimiterProcessor
	RequiresWordBoundary() bool
}

func requiresWordBoundary(proc DelimiterProcessor) bool {
	wb, ok := proc.(WordBoundaryProcessor)
	return ok && wb.RequiresWordBoundary()
}

// ErrDelimiterConflict is wrapped by the errors [NewInlineParser] returns
// when two delimiter processors cannot share a character.
var ErrDelimiterConflict = errors.New("delimiter processor conflict")

// emphasisDelimiterProcessor handles [emphasis and strong emphasis]
// for a single delimiter character.
//
// [emphasis and strong emphasis]: https://spec.commonmark.org/0.31.2/#emphasis-and-strong-emphasis
type emphasisDelimiterProcessor byte

func (p emphasisDelimiterProcessor) OpeningChar() byte { return byte(p) }
func (p emphasisDelimiterProcessor) ClosingChar() byte { return byte(p) }
func (p emphasisDelimiterProcessor) MinLength() int    { return 1 }

func (p emphasisDelimiterProcessor) RequiresWordBoundary() bool {
	return p == '_'
}

func (p emphasisDelimiterProcessor) Process(opener, closer *Delimiter) int {
	// "If one of the delimiters can both open and close emphasis,
	// then the sum of the lengths of the delimiter runs
	// containing the opening and closing delimiters
	// must not be a multiple of 3 unless both lengths are multiples of 3."
	if (opener.CanClose() || closer.CanOpen()) &&
		closer.OriginalLen()%3 != 0 &&
		(opener.OriginalLen()+closer.OriginalLen())%3 == 0 {
		return 0
	}

	used := 1
	kind := EmphasisKind
	if opener.Len() >= 2 && closer.Len() >= 2 {
		used = 2
		kind = StrongKind
	}
	emphasis := NewNode(kind)
	emphasis.literal = strings.Repeat(string(rune(p)), used)
	WrapDelimited(emphasis, opener, closer, used)
	return used
}

// staggeredDelimiterProcessor dispatches runs of a single symmetric character
// to one of several processors based on the opener's length.
type staggeredDelimiterProcessor struct {
	char      byte
	minLength int
	// processors is sorted by descending minimum length.
	processors []DelimiterProcessor
}

func (s *staggeredDelimiterProcessor) OpeningChar() byte { return s.char }
func (s *staggeredDelimiterProcessor) ClosingChar() byte { return s.char }
func (s *staggeredDelimiterProcessor) MinLength() int    { return s.minLength }

func (s *staggeredDelimiterProcessor) RequiresWordBoundary() bool {
	for _, proc := range s.processors {
		if requiresWordBoundary(proc) {
			return true
		}
	}
	return false
}

func (s *staggeredDelimiterProcessor) add(proc DelimiterProcessor) error {
	n := proc.MinLength()
	i := 0
	for ; i < len(s.processors); i++ {
		m := s.processors[i].MinLength()
		if n == m {
			return fmt.Errorf("%w: two processors for %q with minimum length %d",
				ErrDelimiterConflict, s.char, n)
		}
		if n > m {
			break
		}
	}
	s.processors = append(s.processors, nil)
	copy(s.processors[i+1:], s.processors[i:])
	s.processors[i] = proc
	if len(s.processors) == 1 || n < s.minLength {
		s.minLength = n
	}
	return nil
}

func (s *staggeredDelimiterProcessor) find(length int) DelimiterProcessor {
	for _, proc := range s.processors {
		if proc.MinLength() <= length {
			return proc
		}
	}
	return s.processors[0]
}

func (s *staggeredDelimiterProcessor) Process(opener, closer *Delimiter) int {
	return s.find(opener.Len()).Process(opener, closer)
}

// addDelimiterProcessors registers procs in m, keyed by character.
func addDelimiterProcessors(m map[byte]DelimiterProcessor, procs []DelimiterProcessor) error {
	for _, proc := range procs {
		if proc == nil {
			return errors.New("nil delimiter processor")
		}
		opening := proc.OpeningChar()
		closing := proc.ClosingChar()
		if opening >= utf8.RuneSelf || closing >= utf8.RuneSelf {
			return fmt.Errorf("delimiter characters %q and %q must be ASCII", opening, closing)
		}
		if isReservedDelimiterChar(opening) || isReservedDelimiterChar(closing) {
			return fmt.Errorf("delimiter characters %q and %q conflict with built-in syntax", opening, closing)
		}
		if proc.MinLength() < 1 {
			return fmt.Errorf("delimiter processor for %q has minimum length %d", opening, proc.MinLength())
		}

		if opening != closing {
			if err := addDelimiterProcessorForChar(m, opening, proc); err != nil {
				return err
			}
			if err := addDelimiterProcessorForChar(m, closing, proc); err != nil {
				return err
			}
			continue
		}
		old := m[opening]
		if old == nil || old.OpeningChar() != old.ClosingChar() {
			if err := addDelimiterProcessorForChar(m, opening, proc); err != nil {
				return err
			}
			continue
		}
		s, ok := old.(*staggeredDelimiterProcessor)
		if !ok {
			s = &staggeredDelimiterProcessor{char: opening}
			if err := s.add(old); err != nil {
				return err
			}
		}
		if err := s.add(proc); err != nil {
			return err
		}
		m[opening] = s
	}
	return nil
}

func addDelimiterProcessorForChar(m map[byte]DelimiterProcessor, c byte, proc DelimiterProcessor) error {
	if _, exists := m[c]; exists {
		return fmt.Errorf("%w: character %q already has a processor", ErrDelimiterConflict, c)
	}
	m[c] = proc
	return nil
}

// isReservedDelimiterChar reports whether c is handled by the parser itself
// and so cannot be used as a delimiter.
func isReservedDelimiterChar(c byte) bool {
	return c == End || strings.IndexByte("[]!\n", c) >= 0
}
