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
	"strings"
	"unicode/utf8"
)

// End is the byte returned by [*Scanner.Peek] at the end of the input.
const End = 0

// Position is a location of a [Scanner] in its lines.
// Positions are comparable and can be stored to rewind the scanner
// with [*Scanner.SetPosition].
type Position struct {
	line  int
	index int
}

// Line returns the 0-based index of the position's line.
func (pos Position) Line() int {
	return pos.line
}

// Index returns the 0-based byte offset of the position within its line.
func (pos Position) Index() int {
	return pos.index
}

// String formats the position as "line:index".
func (pos Position) String() string {
	return fmt.Sprintf("%d:%d", pos.line, pos.index)
}

// A Scanner is a cursor over a sequence of [SourceLines].
// The boundary between two lines reads as a single '\n' byte.
type Scanner struct {
	lines     SourceLines
	lineIndex int
	index     int
	line      string
}

// NewScanner returns a new scanner positioned at the start of lines.
func NewScanner(lines SourceLines) *Scanner {
	s := &Scanner{lines: lines}
	if len(lines) > 0 {
		s.line = lines[0].Content
	}
	return s
}

// Peek returns the byte at the current position,
// '\n' if the position is at the end of a line that is not the last,
// or [End] if the position is at the end of the input.
func (s *Scanner) Peek() byte {
	if s.index < len(s.line) {
		return s.line[s.index]
	}
	if s.lineIndex < len(s.lines)-1 {
		return '\n'
	}
	return End
}

// PeekRune returns the code point at the current position,
// with the same line ending and end of input rules as [*Scanner.Peek].
func (s *Scanner) PeekRune() rune {
	if s.index < len(s.line) {
		c, _ := utf8.DecodeRuneInString(s.line[s.index:])
		return c
	}
	if s.lineIndex < len(s.lines)-1 {
		return '\n'
	}
	return End
}

// PeekPreviousRune returns the code point immediately before the current position,
// '\n' if the position is at the start of a line that is not the first,
// or [End] if the position is at the start of the input.
func (s *Scanner) PeekPreviousRune() rune {
	if s.index > 0 {
		c, _ := utf8.DecodeLastRuneInString(s.line[:s.index])
		return c
	}
	if s.lineIndex > 0 {
		return '\n'
	}
	return End
}

// HasNext reports whether the scanner is before the end of the input.
func (s *Scanner) HasNext() bool {
	return s.index < len(s.line) || s.lineIndex < len(s.lines)-1
}

// Next advances the scanner by one byte,
// moving to the start of the next line after a line ending.
// Next does nothing at the end of the input.
func (s *Scanner) Next() {
	if !s.HasNext() {
		return
	}
	s.index++
	if s.index > len(s.line) {
		s.lineIndex++
		s.line = s.lines[s.lineIndex].Content
		s.index = 0
	}
}

// NextByte advances the scanner past c
// if c is the byte at the current position.
// It reports whether the scanner advanced.
func (s *Scanner) NextByte(c byte) bool {
	if s.Peek() != c {
		return false
	}
	s.Next()
	return true
}

// NextString advances the scanner past prefix
// if the current line continues with prefix.
// It reports whether the scanner advanced.
// prefix cannot span a line ending.
func (s *Scanner) NextString(prefix string) bool {
	if !strings.HasPrefix(s.line[s.index:], prefix) {
		return false
	}
	s.index += len(prefix)
	return true
}

// MatchMultiple advances the scanner past a run of c
// and returns the length of the run.
func (s *Scanner) MatchMultiple(c byte) int {
	n := 0
	for s.HasNext() && s.Peek() == c {
		n++
		s.Next()
	}
	return n
}

// Match advances the scanner past a run of bytes that satisfy match
// and returns the length of the run.
func (s *Scanner) Match(match func(c byte) bool) int {
	n := 0
	for s.HasNext() && match(s.Peek()) {
		n++
		s.Next()
	}
	return n
}

// Whitespace advances the scanner past a run of
// spaces, tabs, and line endings
// and returns the length of the run.
func (s *Scanner) Whitespace() int {
	return s.Match(isSpaceTabOrLineEnding)
}

// Find advances the scanner to the next occurrence of c
// and returns the number of bytes skipped.
// If c does not occur in the rest of the input,
// Find advances to the end of the input and returns -1.
func (s *Scanner) Find(c byte) int {
	n := 0
	for s.HasNext() {
		if s.Peek() == c {
			return n
		}
		n++
		s.Next()
	}
	return -1
}

// FindFunc advances the scanner to the next byte that satisfies match
// and returns the number of bytes skipped.
// If no such byte occurs in the rest of the input,
// FindFunc advances to the end of the input and returns -1.
func (s *Scanner) FindFunc(match func(c byte) bool) int {
	n := 0
	for s.HasNext() {
		if match(s.Peek()) {
			return n
		}
		n++
		s.Next()
	}
	return -1
}

// Position returns the current position of the scanner.
func (s *Scanner) Position() Position {
	return Position{line: s.lineIndex, index: s.index}
}

// SetPosition moves the scanner to pos.
// SetPosition panics if pos is not a position in the scanner's lines.
func (s *Scanner) SetPosition(pos Position) {
	s.checkPosition(pos)
	s.lineIndex = pos.line
	s.index = pos.index
	s.line = ""
	if pos.line < len(s.lines) {
		s.line = s.lines[pos.line].Content
	}
}

func (s *Scanner) checkPosition(pos Position) {
	if len(s.lines) == 0 && pos == (Position{}) {
		return
	}
	if pos.line < 0 || pos.line >= len(s.lines) {
		panic(fmt.Errorf("position %v: line out of range [0, %d)", pos, len(s.lines)))
	}
	if n := len(s.lines[pos.line].Content); pos.index < 0 || pos.index > n {
		panic(fmt.Errorf("position %v: index out of range [0, %d]", pos, n))
	}
}

// Source returns the lines between the positions begin (inclusive) and end (exclusive).
// A line ending crossed between begin and end starts a new line in the result.
func (s *Scanner) Source(begin, end Position) SourceLines {
	s.checkPosition(begin)
	s.checkPosition(end)
	if len(s.lines) == 0 {
		return nil
	}
	if begin.line == end.line {
		line := s.lines[begin.line]
		return SourceLines{line.Substring(begin.index, end.index)}
	}
	lines := make(SourceLines, 0, end.line-begin.line+1)
	first := s.lines[begin.line]
	lines = append(lines, first.Substring(begin.index, len(first.Content)))
	lines = append(lines, s.lines[begin.line+1:end.line]...)
	last := s.lines[end.line]
	lines = append(lines, last.Substring(0, end.index))
	return lines
}
