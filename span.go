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

// SourceSpan is a contiguous range of bytes on a single line of the input.
type SourceSpan struct {
	// Line is the 0-based index of the line in the input.
	Line int
	// Column is the 0-based byte offset of the span from the start of its line.
	Column int
	// Offset is the 0-based byte offset of the span from the start of the input.
	Offset int
	// Length is the number of bytes in the span.
	Length int
}

// NullSpan returns an invalid span.
func NullSpan() SourceSpan {
	return SourceSpan{Line: -1, Column: -1, Offset: -1}
}

// IsValid reports whether the span refers to a location in the input.
func (span SourceSpan) IsValid() bool {
	return span.Line >= 0 && span.Column >= 0 && span.Offset >= 0 && span.Length >= 0
}

// End returns the byte offset in the input just past the end of the span.
func (span SourceSpan) End() int {
	return span.Offset + span.Length
}

// SubSpan returns the portion of the span
// between the byte offsets begin and end relative to the span.
// SubSpan panics if the offsets are out of range.
// Calling SubSpan on an invalid span returns the span unchanged.
func (span SourceSpan) SubSpan(begin, end int) SourceSpan {
	if !span.IsValid() {
		return span
	}
	if begin < 0 || begin > end || end > span.Length {
		panic("SubSpan out of range")
	}
	return SourceSpan{
		Line:   span.Line,
		Column: span.Column + begin,
		Offset: span.Offset + begin,
		Length: end - begin,
	}
}

// AppendSpans appends the given spans to dst,
// joining spans that are adjacent on the same line
// and skipping invalid spans.
// The last element of dst may be modified in place.
func AppendSpans(dst []SourceSpan, spans ...SourceSpan) []SourceSpan {
	for _, span := range spans {
		if !span.IsValid() {
			continue
		}
		if n := len(dst); n > 0 && dst[n-1].Line == span.Line && dst[n-1].Column+dst[n-1].Length == span.Column {
			dst[n-1].Length += span.Length
			continue
		}
		dst = append(dst, span)
	}
	return dst
}

// SourceLine is the content of a single line
// without its line ending.
type SourceLine struct {
	Content string
	// Span is the location of Content in the input.
	// Use [NullSpan] if the line's location is not tracked.
	Span SourceSpan
}

// Substring returns the portion of the line
// between the byte offsets begin and end.
// The result's span is invalid if the line's span
// does not cover exactly the line's content.
func (line SourceLine) Substring(begin, end int) SourceLine {
	sub := SourceLine{
		Content: line.Content[begin:end],
		Span:    NullSpan(),
	}
	if line.hasSpan() {
		sub.Span = line.Span.SubSpan(begin, end)
	}
	return sub
}

func (line SourceLine) hasSpan() bool {
	return line.Span.IsValid() && line.Span.Length == len(line.Content)
}

// SourceLines is a sequence of lines of inline content,
// like the lines of a paragraph.
type SourceLines []SourceLine

// Content returns the lines joined by "\n".
func (lines SourceLines) Content() string {
	switch len(lines) {
	case 0:
		return ""
	case 1:
		return lines[0].Content
	}
	sb := new(strings.Builder)
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line.Content)
	}
	return sb.String()
}

// Spans returns the valid spans of the lines,
// joining spans that are adjacent on the same line.
func (lines SourceLines) Spans() []SourceSpan {
	var spans []SourceSpan
	for _, line := range lines {
		spans = AppendSpans(spans, line.Span)
	}
	return spans
}

// hasSpans reports whether every line has a valid span.
func (lines SourceLines) hasSpans() bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !line.hasSpan() {
			return false
		}
	}
	return true
}

// NewSourceLines splits text into lines on "\n", "\r\n", or "\r"
// and records the location of each line.
// A line ending at the very end of text does not start a new line.
// NUL bytes are replaced with U+FFFD before splitting,
// so offsets are relative to the replaced text.
func NewSourceLines(text string) SourceLines {
	text = strings.ReplaceAll(text, "\x00", "\uFFFD")
	var lines SourceLines
	offset := 0
	for lineIndex := 0; ; lineIndex++ {
		i := strings.IndexAny(text[offset:], "\r\n")
		if i < 0 {
			if offset < len(text) || lineIndex == 0 {
				lines = append(lines, SourceLine{
					Content: text[offset:],
					Span: SourceSpan{
						Line:   lineIndex,
						Offset: offset,
						Length: len(text) - offset,
					},
				})
			}
			return lines
		}
		lines = append(lines, SourceLine{
			Content: text[offset : offset+i],
			Span: SourceSpan{
				Line:   lineIndex,
				Offset: offset,
				Length: i,
			},
		})
		end := offset + i
		offset = end + 1
		if text[end] == '\r' && offset < len(text) && text[offset] == '\n' {
			offset++
		}
	}
}

// ParagraphLines splits text into lines like [NewSourceLines]
// and strips leading spaces and tabs from each line,
// which is how a block parser presents the lines of a [paragraph].
//
// [paragraph]: https://spec.commonmark.org/0.31.2/#paragraphs
func ParagraphLines(text string) SourceLines {
	lines := NewSourceLines(text)
	for i, line := range lines {
		n := len(line.Content) - len(strings.TrimLeft(line.Content, " \t"))
		lines[i] = line.Substring(n, len(line.Content))
	}
	return lines
}
