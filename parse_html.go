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

import "strings"

// htmlParser is the built-in [InlineContentParser] for [raw HTML].
//
// [raw HTML]: https://spec.commonmark.org/0.31.2/#raw-html
type htmlParser struct{}

func (htmlParser) TriggerCharacters() []byte { return []byte{'<'} }

func (p htmlParser) NewInlineContentParser() InlineContentParser { return p }

func (htmlParser) TryParse(s *Scanner) (ParsedInline, bool) {
	start := s.Position()
	if !parseHTMLTag(s) {
		return ParsedInline{}, false
	}
	n := NewNode(RawHTMLKind)
	n.literal = s.Source(start, s.Position()).Content()
	return ParsedInline{Node: n, Position: s.Position()}, true
}

// parseHTMLTag advances s past an HTML tag, comment, processing instruction,
// declaration, or CDATA section starting at the current '<'.
func parseHTMLTag(s *Scanner) bool {
	const (
		cdataPrefix = "[CDATA["
		cdataSuffix = "]]>"
	)

	if !s.NextByte('<') {
		return false
	}
	switch c := s.Peek(); {
	case c == '?':
		// Processing instruction.
		s.Next()
		for s.Find('?') >= 0 {
			s.Next()
			if s.NextByte('>') {
				return true
			}
		}
		return false
	case c == '!':
		s.Next()
		switch c := s.Peek(); {
		case isASCIILetter(c):
			// Declaration.
			if s.Find('>') < 0 {
				return false
			}
			s.Next()
			return true
		case c == '-':
			// Comment.
			if !s.NextString("--") {
				return false
			}
			if s.NextByte('>') || s.NextString("->") {
				// "<!-->" and "<!--->" are complete comments.
				return true
			}
			for s.Find('-') >= 0 {
				if s.NextString("-->") {
					return true
				}
				s.Next()
			}
			return false
		case c == '[':
			// CDATA.
			if !s.NextString(cdataPrefix) {
				return false
			}
			for s.Find(']') >= 0 {
				if s.NextString(cdataSuffix) {
					return true
				}
				s.Next()
			}
			return false
		default:
			return false
		}
	case c == '/':
		return parseHTMLClosingTag(s)
	default:
		return parseHTMLOpenTag(s)
	}
}

// parseHTMLOpenTag parses an [open tag] sans the leading '<'.
//
// [open tag]: https://spec.commonmark.org/0.31.2/#open-tag
func parseHTMLOpenTag(s *Scanner) bool {
	if !parseHTMLTagName(s) {
		return false
	}
	for {
		hasSpace := s.Whitespace() > 0
		switch s.Peek() {
		case '/':
			s.Next()
			return s.NextByte('>')
		case '>':
			s.Next()
			return true
		}
		// Attributes must be separated by whitespace.
		if !hasSpace || !parseHTMLAttribute(s) {
			return false
		}
	}
}

// parseHTMLClosingTag parses a [closing tag] sans the leading '<'.
//
// [closing tag]: https://spec.commonmark.org/0.31.2/#closing-tag
func parseHTMLClosingTag(s *Scanner) bool {
	if !s.NextByte('/') || !parseHTMLTagName(s) {
		return false
	}
	s.Whitespace()
	return s.NextByte('>')
}

func parseHTMLTagName(s *Scanner) bool {
	if !isASCIILetter(s.Peek()) {
		return false
	}
	s.Next()
	s.Match(func(c byte) bool {
		return isASCIIAlphanumeric(c) || c == '-'
	})
	return true
}

func parseHTMLAttribute(s *Scanner) bool {
	// Attribute name.
	if c := s.Peek(); !isASCIILetter(c) && c != '_' && c != ':' {
		return false
	}
	s.Next()
	s.Match(func(c byte) bool {
		return isASCIIAlphanumeric(c) || strings.IndexByte("_.:-", c) >= 0
	})

	// Attribute value specification.
	// Don't consume space unless it is followed by an equal sign,
	// since the space separates the next attribute.
	beforeSpace := s.Position()
	s.Whitespace()
	if !s.NextByte('=') {
		s.SetPosition(beforeSpace)
		return true
	}
	s.Whitespace()
	switch c := s.Peek(); c {
	case '\'', '"':
		s.Next()
		if s.Find(c) < 0 {
			return false
		}
		s.Next()
		return true
	default:
		return s.Match(isUnquotedAttributeValueChar) > 0
	}
}

func isUnquotedAttributeValueChar(c byte) bool {
	return !isSpaceTabOrLineEnding(c) && strings.IndexByte("\"'=<>`", c) < 0
}
