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
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// ParsedInline is the result of a successful [InlineContentParser.TryParse].
type ParsedInline struct {
	// Node is the parsed inline node.
	Node *Node
	// Position is where parsing continues.
	Position Position
}

// An InlineContentParser parses inline content that starts with a trigger character.
type InlineContentParser interface {
	// TryParse is called with the scanner positioned at a trigger character.
	// If the content is recognized, TryParse returns the parsed node
	// and the position after it.
	// Otherwise, TryParse returns false,
	// and the parser rewinds the scanner and tries the next parser.
	TryParse(s *Scanner) (ParsedInline, bool)
}

// An InlineContentParserFactory creates [InlineContentParser] values.
// Factories are registered with [Options].
type InlineContentParserFactory interface {
	// TriggerCharacters returns the ASCII characters
	// that can start the parser's content.
	TriggerCharacters() []byte
	// NewInlineContentParser returns a parser for a single call to [*InlineParser.Parse].
	NewInlineContentParser() InlineContentParser
}

// builtinContentParsers is the list of content parsers
// that run after any custom parsers for the same character.
var builtinContentParsers = []InlineContentParserFactory{
	backslashParser{},
	backticksParser{},
	entityParser{},
	autolinkParser{},
	htmlParser{},
}

// backslashParser handles [backslash escapes]
// and backslash [hard line breaks].
//
// [backslash escapes]: https://spec.commonmark.org/0.31.2/#backslash-escapes
// [hard line breaks]: https://spec.commonmark.org/0.31.2/#hard-line-breaks
type backslashParser struct{}

func (backslashParser) TriggerCharacters() []byte { return []byte{'\\'} }

func (p backslashParser) NewInlineContentParser() InlineContentParser { return p }

func (backslashParser) TryParse(s *Scanner) (ParsedInline, bool) {
	s.Next()
	var n *Node
	switch c := s.Peek(); {
	case c == '\n':
		s.Next()
		n = NewNode(HardLineBreakKind)
	case isASCIIPunctuation(c):
		s.Next()
		n = NewText(string(rune(c)))
	default:
		n = NewText(`\`)
	}
	return ParsedInline{Node: n, Position: s.Position()}, true
}

// backticksParser handles [code spans].
//
// [code spans]: https://spec.commonmark.org/0.31.2/#code-spans
type backticksParser struct{}

func (backticksParser) TriggerCharacters() []byte { return []byte{'`'} }

func (p backticksParser) NewInlineContentParser() InlineContentParser { return p }

func (backticksParser) TryParse(s *Scanner) (ParsedInline, bool) {
	start := s.Position()
	openingLen := s.MatchMultiple('`')
	afterOpening := s.Position()

	for s.Find('`') > 0 {
		beforeClosing := s.Position()
		if s.MatchMultiple('`') != openingLen {
			continue
		}
		content := s.Source(afterOpening, beforeClosing).Content()
		content = strings.ReplaceAll(content, "\n", " ")
		if len(content) >= 3 &&
			content[0] == ' ' &&
			content[len(content)-1] == ' ' &&
			strings.Trim(content, " ") != "" {
			content = content[1 : len(content)-1]
		}
		n := NewNode(CodeSpanKind)
		n.literal = content
		return ParsedInline{Node: n, Position: s.Position()}, true
	}

	// No matching closing run: the opening run is literal text.
	ticks := s.Source(start, afterOpening)
	n := NewText(ticks.Content())
	return ParsedInline{Node: n, Position: afterOpening}, true
}

// entityParser handles [entity and numeric character references].
//
// [entity and numeric character references]: https://spec.commonmark.org/0.31.2/#entity-and-numeric-character-references
type entityParser struct{}

func (entityParser) TriggerCharacters() []byte { return []byte{'&'} }

func (p entityParser) NewInlineContentParser() InlineContentParser { return p }

func (entityParser) TryParse(s *Scanner) (ParsedInline, bool) {
	start := s.Position()
	s.Next()
	switch c := s.Peek(); {
	case c == '#':
		s.Next()
		if s.NextByte('x') || s.NextByte('X') {
			if n := s.Match(isHex); 1 <= n && n <= 6 && s.NextByte(';') {
				return entityInline(s, start), true
			}
		} else if n := s.Match(isASCIIDigit); 1 <= n && n <= 7 && s.NextByte(';') {
			return entityInline(s, start), true
		}
	case isASCIILetter(c):
		s.Match(isASCIIAlphanumeric)
		if s.NextByte(';') {
			return entityInline(s, start), true
		}
	}
	return ParsedInline{}, false
}

func entityInline(s *Scanner, start Position) ParsedInline {
	ref := s.Source(start, s.Position()).Content()
	return ParsedInline{
		Node:     NewText(decodeEntity(ref)),
		Position: s.Position(),
	}
}

// decodeEntity returns the text that an entity or numeric character reference
// (including its leading '&' and trailing ';') stands for.
// Unknown entity names are returned unchanged.
func decodeEntity(ref string) string {
	if strings.HasPrefix(ref, "&#") {
		digits := ref[len("&#") : len(ref)-len(";")]
		base := 10
		if digits[0] == 'x' || digits[0] == 'X' {
			digits = digits[1:]
			base = 16
		}
		n, err := strconv.ParseUint(digits, base, 32)
		if err != nil || n == 0 || n > unicode.MaxRune {
			return "\uFFFD"
		}
		// Surrogate halves convert to U+FFFD.
		return string(rune(n))
	}

	decoded := html.UnescapeString(ref)
	if decoded == ref {
		return ref
	}
	// html.UnescapeString also decodes legacy entities named by a prefix
	// of the reference (like "&amp" in "&ampx;"),
	// leaving the rest of the name in the result.
	if n := len(decoded); n >= 2 && decoded[n-1] == ';' && isASCIIAlphanumeric(decoded[n-2]) {
		return ref
	}
	return decoded
}

// autolinkParser handles [autolinks].
//
// [autolinks]: https://spec.commonmark.org/0.31.2/#autolinks
type autolinkParser struct{}

var (
	autolinkURI   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9.+-]{1,31}:[^<>\x00-\x20]*$`)
	autolinkEmail = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
)

func (autolinkParser) TriggerCharacters() []byte { return []byte{'<'} }

func (p autolinkParser) NewInlineContentParser() InlineContentParser { return p }

func (autolinkParser) TryParse(s *Scanner) (ParsedInline, bool) {
	s.Next()
	textStart := s.Position()
	if s.Find('>') <= 0 {
		return ParsedInline{}, false
	}
	textSource := s.Source(textStart, s.Position())
	content := textSource.Content()
	s.Next()

	var dest string
	switch {
	case autolinkURI.MatchString(content):
		dest = content
	case autolinkEmail.MatchString(content):
		dest = "mailto:" + content
	default:
		return ParsedInline{}, false
	}
	link := NewLink(dest, "", false)
	text := NewText(content)
	text.spans = textSource.Spans()
	link.AppendChild(text)
	return ParsedInline{Node: link, Position: s.Position()}, true
}
