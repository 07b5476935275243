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
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxLinkLabelLength is the maximum number of characters
// permitted between the brackets of a [link label].
//
// [link label]: https://spec.commonmark.org/0.31.2/#link-label
const maxLinkLabelLength = 999

// maxLinkDestinationDepth is the maximum number of nested parentheses
// permitted in a link destination. It is the same depth that cmark uses.
const maxLinkDestinationDepth = 32

// scanLinkLabelContent advances s past the content of a [link label]
// and stops before the closing bracket.
// It reports false if the label contains an unescaped '['
// or is not closed before the end of the input.
//
// [link label]: https://spec.commonmark.org/0.31.2/#link-label
func scanLinkLabelContent(s *Scanner) bool {
	for s.HasNext() {
		switch s.Peek() {
		case '\\':
			s.Next()
			if isASCIIPunctuation(s.Peek()) {
				s.Next()
			}
		case '[':
			return false
		case ']':
			return true
		default:
			s.Next()
		}
	}
	return false
}

// scanLinkDestination advances s past a [link destination].
//
// [link destination]: https://spec.commonmark.org/0.31.2/#link-destination
func scanLinkDestination(s *Scanner) bool {
	if !s.HasNext() {
		return false
	}
	if s.NextByte('<') {
		// "A sequence of zero or more characters between an opening < and a closing >
		// that contains no line endings or unescaped < or > characters."
		for s.HasNext() {
			switch s.Peek() {
			case '\\':
				s.Next()
				if isASCIIPunctuation(s.Peek()) {
					s.Next()
				}
			case '\n', '<':
				return false
			case '>':
				s.Next()
				return true
			default:
				s.Next()
			}
		}
		return false
	}
	return scanLinkDestinationWithBalancedParens(s)
}

// scanLinkDestinationWithBalancedParens scans the second form of link destination:
// "a nonempty sequence of characters that does not start with <,
// does not include ASCII control characters or space character,
// and includes parentheses only if (a) they are backslash-escaped
// or (b) they are part of a balanced pair of unescaped parentheses."
func scanLinkDestinationWithBalancedParens(s *Scanner) bool {
	depth := 0
	empty := true
	for s.HasNext() {
		c := s.Peek()
		switch {
		case c == ' ':
			return !empty && depth == 0
		case c == '\\':
			s.Next()
			if isASCIIPunctuation(s.Peek()) {
				s.Next()
			}
		case c == '(':
			depth++
			if depth > maxLinkDestinationDepth {
				return false
			}
			s.Next()
		case c == ')':
			if depth == 0 {
				return true
			}
			depth--
			s.Next()
		case isASCIIControl(c) || c == '\n':
			return !empty && depth == 0
		default:
			s.Next()
		}
		empty = false
	}
	return depth == 0
}

// scanLinkTitle advances s past a [link title],
// including its delimiters.
//
// [link title]: https://spec.commonmark.org/0.31.2/#link-title
func scanLinkTitle(s *Scanner) bool {
	var end byte
	switch s.Peek() {
	case '"':
		end = '"'
	case '\'':
		end = '\''
	case '(':
		end = ')'
	default:
		return false
	}
	s.Next()
	if !scanLinkTitleContent(s, end) {
		return false
	}
	return s.NextByte(end)
}

// scanLinkTitleContent advances s to the closing delimiter of a link title.
func scanLinkTitleContent(s *Scanner, end byte) bool {
	for s.HasNext() {
		c := s.Peek()
		switch {
		case c == '\\':
			s.Next()
			if isASCIIPunctuation(s.Peek()) {
				s.Next()
			}
		case c == end:
			return true
		case end == ')' && c == '(':
			// Unescaped '(' is not allowed in a parenthesized title.
			return false
		default:
			s.Next()
		}
	}
	return false
}

// parseInlineDestinationTitle parses the parenthesized destination and optional title
// that follow the closing bracket of an [inline link].
// On failure, the scanner's position is unspecified.
//
// [inline link]: https://spec.commonmark.org/0.31.2/#inline-link
func parseInlineDestinationTitle(s *Scanner) (dest, title string, hasTitle, ok bool) {
	if !s.NextByte('(') {
		return "", "", false, false
	}
	s.Whitespace()
	dest, ok = parseLinkDestination(s)
	if !ok {
		return "", "", false, false
	}
	// The title must be separated from the destination by whitespace.
	if s.Whitespace() > 0 {
		beforeTitle := s.Position()
		if title, hasTitle = parseLinkTitle(s); hasTitle {
			s.Whitespace()
		} else {
			s.SetPosition(beforeTitle)
		}
	}
	if !s.NextByte(')') {
		return "", "", false, false
	}
	return dest, title, hasTitle, true
}

func parseLinkDestination(s *Scanner) (string, bool) {
	pointy := s.Peek() == '<'
	start := s.Position()
	if !scanLinkDestination(s) {
		return "", false
	}
	raw := s.Source(start, s.Position()).Content()
	if pointy {
		raw = raw[1 : len(raw)-1]
	}
	return UnescapeString(raw), true
}

func parseLinkTitle(s *Scanner) (string, bool) {
	start := s.Position()
	if !scanLinkTitle(s) {
		return "", false
	}
	raw := s.Source(start, s.Position()).Content()
	return UnescapeString(raw[1 : len(raw)-1]), true
}

// parseLinkLabel parses a bracketed [link label] at the current position
// and returns its content.
// Leaves the scanner in an unspecified position if it returns false.
//
// [link label]: https://spec.commonmark.org/0.31.2/#link-label
func parseLinkLabel(s *Scanner) (string, bool) {
	if !s.NextByte('[') {
		return "", false
	}
	start := s.Position()
	if !scanLinkLabelContent(s) {
		return "", false
	}
	end := s.Position()
	if !s.NextByte(']') {
		return "", false
	}
	content := s.Source(start, end).Content()
	if utf8.RuneCountInString(content) > maxLinkLabelLength {
		return "", false
	}
	return content, true
}

// escapeOrEntity matches a backslash escape or an entity or numeric character reference.
var escapeOrEntity = regexp.MustCompile("\\\\[!-/:-@\\[-`{-~]|&(?:#[xX][0-9a-fA-F]{1,6}|#[0-9]{1,7}|[A-Za-z][A-Za-z0-9]{1,31});")

// UnescapeString replaces [backslash escapes] and [entity and numeric character references]
// in s with the characters they represent,
// as is done for link destinations and titles.
//
// [backslash escapes]: https://spec.commonmark.org/0.31.2/#backslash-escapes
// [entity and numeric character references]: https://spec.commonmark.org/0.31.2/#entity-and-numeric-character-references
func UnescapeString(s string) string {
	if !strings.ContainsAny(s, "\\&") {
		return s
	}
	return escapeOrEntity.ReplaceAllStringFunc(s, func(match string) string {
		if match[0] == '\\' {
			return match[1:]
		}
		return decodeEntity(match)
	})
}
