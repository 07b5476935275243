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
	"unicode"
	"unicode/utf8"
)

// isUnicodeWhitespace reports whether c is a [Unicode whitespace character].
// End of input counts as whitespace.
//
// [Unicode whitespace character]: https://spec.commonmark.org/0.31.2/#unicode-whitespace-character
func isUnicodeWhitespace(c rune) bool {
	switch c {
	case End, '\t', '\n', '\f', '\r':
		return true
	}
	return unicode.Is(unicode.Zs, c)
}

// isUnicodePunctuation reports whether c is a [Unicode punctuation character].
// End of input counts as punctuation.
//
// [Unicode punctuation character]: https://spec.commonmark.org/0.31.2/#unicode-punctuation-character
func isUnicodePunctuation(c rune) bool {
	if c < utf8.RuneSelf {
		return c == End || isASCIIPunctuation(byte(c))
	}
	return unicode.In(c, unicode.P, unicode.S)
}

// isASCIIPunctuation reports whether c is an [ASCII punctuation character].
//
// [ASCII punctuation character]: https://spec.commonmark.org/0.31.2/#ascii-punctuation-character
func isASCIIPunctuation(c byte) bool {
	return '!' <= c && c <= '/' ||
		':' <= c && c <= '@' ||
		'[' <= c && c <= '`' ||
		'{' <= c && c <= '~'
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isASCIIAlphanumeric(c byte) bool {
	return isASCIILetter(c) || isASCIIDigit(c)
}

func isHex(c byte) bool {
	return 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F' || isASCIIDigit(c)
}

// isSpaceTabOrLineEnding reports whether c is one of the characters
// skipped by [*Scanner.Whitespace].
func isSpaceTabOrLineEnding(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isASCIIControl(c byte) bool {
	return c < ' ' || c == 0x7f
}
