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
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	refs := ReferenceMap{
		"foo": {Destination: "/foo", Title: "Foo", TitlePresent: true},
		"bar": {Destination: "/bar"},
	}
	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "EndToEnd",
			markdown: `Test *emph* and [link](http://example.com "t")`,
			want:     `"Test " Emphasis["emph"] " and " Link("http://example.com" "t")["link"]`,
		},
		{
			name:     "Strong",
			markdown: "**a** __b__",
			want:     `Strong["a"] " " Strong["b"]`,
		},
		{
			name:     "NestedStrongInEmphasis",
			markdown: "*foo**bar***",
			want:     `Emphasis["foo" Strong["bar"]]`,
		},
		{
			name:     "TripleRun",
			markdown: "***foo***",
			want:     `Emphasis[Strong["foo"]]`,
		},
		{
			name:     "InsufficientCloser",
			markdown: "**foo*",
			want:     `"*" Emphasis["foo"]`,
		},
		{
			name:     "IntrawordUnderscore",
			markdown: "_foo_bar_",
			want:     `Emphasis["foo_bar"]`,
		},
		{
			name:     "IntrawordUnderscoreNoOpener",
			markdown: "foo_bar_",
			want:     `"foo_bar_"`,
		},
		{
			name:     "UnmatchedDelimiters",
			markdown: "*foo _bar",
			want:     `"*foo _bar"`,
		},
		{
			name:     "CodeSpan",
			markdown: "a `b` c",
			want:     `"a " CodeSpan("b") " c"`,
		},
		{
			name:     "UnclosedCodeSpan",
			markdown: "``a`",
			want:     "\"``a`\"",
		},
		{
			name:     "SoftBreak",
			markdown: "a\nb",
			want:     `"a" SoftLineBreak "b"`,
		},
		{
			name:     "SoftBreakOneSpace",
			markdown: "a \nb",
			want:     `"a" SoftLineBreak "b"`,
		},
		{
			name:     "HardBreakTwoSpaces",
			markdown: "a  \nb",
			want:     `"a" HardLineBreak "b"`,
		},
		{
			name:     "HardBreakBackslash",
			markdown: "a\\\nb",
			want:     `"a" HardLineBreak "b"`,
		},
		{
			name:     "BreakCountsResetPerLine",
			markdown: "a  \nb\nc",
			want:     `"a" HardLineBreak "b" SoftLineBreak "c"`,
		},
		{
			name:     "TrailingSpacesAtEnd",
			markdown: "a  ",
			want:     `"a"`,
		},
		{
			name:     "LinkInLink",
			markdown: "[a[b](u)](v)",
			want:     `"[a" Link("u")["b"] "](v)"`,
		},
		{
			name:     "LinkInImage",
			markdown: "![a[b](u)](v)",
			want:     `Image("v")["a" Link("u")["b"]]`,
		},
		{
			name:     "FullReference",
			markdown: "[x][bar]",
			want:     `Link("/bar")["x"]`,
		},
		{
			name:     "CollapsedReference",
			markdown: "[foo][]",
			want:     `Link("/foo" "Foo")["foo"]`,
		},
		{
			name:     "ShortcutReference",
			markdown: "[foo]",
			want:     `Link("/foo" "Foo")["foo"]`,
		},
		{
			name:     "ImageReference",
			markdown: "![*Foo*][FOO]",
			want:     `Image("/foo" "Foo")[Emphasis["Foo"]]`,
		},
		{
			name:     "MissingFullReference",
			markdown: "[foo][nope]",
			want:     `"[foo][nope]"`,
		},
		{
			name:     "MissingCollapsedReference",
			markdown: "[nope][]",
			want:     `"[nope][]"`,
		},
		{
			name:     "MissingShortcutReference",
			markdown: "[nope]",
			want:     `"[nope]"`,
		},
		{
			name:     "ShortcutFollowedByLabel",
			markdown: "[foo][nope][bar]",
			want:     `"[foo]" Link("/bar")["nope"]`,
		},
		{
			name:     "InlineBeforeReference",
			markdown: "[foo](/inline)",
			want:     `Link("/inline")["foo"]`,
		},
		{
			name:     "EmphasisDoesNotCrossLink",
			markdown: "*[foo*](/u)",
			want:     `"*" Link("/u")["foo*"]`,
		},
		{
			name:     "EmphasisInsideLink",
			markdown: "[*a* b](/u)",
			want:     `Link("/u")[Emphasis["a"] " b"]`,
		},
		{
			name:     "LongLabel",
			markdown: "[bar][" + strings.Repeat("a", maxLinkLabelLength+1) + "]",
			want:     `Link("/bar")["bar"] ` + strconv.Quote("["+strings.Repeat("a", maxLinkLabelLength+1)+"]"),
		},
		{
			name:     "Autolink",
			markdown: "<https://example.com>",
			want:     `Link("https://example.com")["https://example.com"]`,
		},
		{
			name:     "EmailAutolink",
			markdown: "<me@example.com>",
			want:     `Link("mailto:me@example.com")["me@example.com"]`,
		},
		{
			name:     "RawHTML",
			markdown: "a <b>c</b>",
			want:     `"a " RawHTML("<b>") "c" RawHTML("</b>")`,
		},
		{
			name:     "Entity",
			markdown: "&amp;&#x41;&#66;&bogus;",
			want:     `"&AB&bogus;"`,
		},
		{
			name:     "Escapes",
			markdown: `\*a\* \q`,
			want:     `"*a* \\q"`,
		},
		{
			name:     "Bang",
			markdown: "Hi! ![x](y)",
			want:     `"Hi! " Image("y")["x"]`,
		},
		{
			name:     "Empty",
			markdown: "",
			want:     "",
		},
	}

	p, err := NewInlineParser(&Options{References: refs})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			para := NewNode(ParagraphKind)
			p.Parse(ParagraphLines(test.markdown), para)
			if got := dumpTree(para); got != test.want {
				t.Errorf("Parse(%q):\ngot  %s\nwant %s", test.markdown, got, test.want)
			}
		})
	}
}

func TestNilInlineParser(t *testing.T) {
	para := NewNode(ParagraphKind)
	var p *InlineParser
	p.Parse(ParagraphLines("*a*"), para)
	if got, want := dumpTree(para), `Emphasis["a"]`; got != want {
		t.Errorf("tree = %s; want %s", got, want)
	}
}

func TestMergeIdempotent(t *testing.T) {
	inputs := []string{
		"*foo",
		"a [b c **d",
		"x*y*z & [q]",
		"[a[b](u)](v)",
		"**foo*",
		"_a_b_ c_",
	}
	p, err := NewInlineParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, input := range inputs {
		para := NewNode(ParagraphKind)
		p.Parse(ParagraphLines(input), para)
		once := dumpTree(para)
		mergeChildTextNodes(para)
		if twice := dumpTree(para); twice != once {
			t.Errorf("for %q, merging again changed tree:\nbefore %s\nafter  %s", input, once, twice)
		}
	}
}

func TestDemotionPreservesText(t *testing.T) {
	inputs := []string{
		"*foo",
		"foo*",
		"_foo bar _",
		"a ** b",
		"[foo",
		"foo]",
		"[foo]",
		"[foo][]",
		"[foo][bar]",
		"![foo]",
		"![foo",
		"[foo](bar",
		"[foo](bar \"baz)",
		"[foo](<bar)",
		"`foo",
		"<foo",
		"<a href=\"x>",
		"&nope;",
		"&#;",
		"***",
		"[[]]",
		"! [x]",
	}
	p, err := NewInlineParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, input := range inputs {
		para := NewNode(ParagraphKind)
		p.Parse(ParagraphLines(input), para)
		if got := TextContent(para); got != input {
			t.Errorf("TextContent(Parse(%q)) = %q", input, got)
		}
		for c := para.FirstChild(); c != nil; c = c.Next() {
			if c.Kind() != TextKind {
				t.Errorf("Parse(%q) produced %v node; want only text", input, c.Kind())
			}
		}
	}
}

func TestParseConcurrent(t *testing.T) {
	p, err := NewInlineParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	const input = "*a* [b](c) `d` **e**"
	const want = `Emphasis["a"] " " Link("c")["b"] " " CodeSpan("d") " " Strong["e"]`
	done := make(chan string)
	for i := 0; i < 8; i++ {
		go func() {
			para := NewNode(ParagraphKind)
			p.Parse(ParagraphLines(input), para)
			done <- dumpTree(para)
		}()
	}
	for i := 0; i < 8; i++ {
		if got := <-done; got != want {
			t.Errorf("tree = %s; want %s", got, want)
		}
	}
}

func TestSourceSpans(t *testing.T) {
	p, err := NewInlineParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	para := NewNode(ParagraphKind)
	p.Parse(ParagraphLines("ab *cd* [e](/f)\n  `g`"), para)

	type nodeSpans struct {
		Kind  NodeKind
		Spans []SourceSpan
	}
	var got []nodeSpans
	Walk(para, &WalkOptions{
		Pre: func(c *Cursor) bool {
			if c.Node() != para {
				got = append(got, nodeSpans{c.Node().Kind(), c.Node().SourceSpans()})
			}
			return true
		},
	})
	span := func(line, column, offset, length int) []SourceSpan {
		return []SourceSpan{{Line: line, Column: column, Offset: offset, Length: length}}
	}
	want := []nodeSpans{
		{TextKind, span(0, 0, 0, 3)},
		{EmphasisKind, span(0, 3, 3, 4)},
		{TextKind, span(0, 4, 4, 2)},
		{TextKind, span(0, 7, 7, 1)},
		{LinkKind, span(0, 8, 8, 7)},
		{TextKind, span(0, 9, 9, 1)},
		{SoftLineBreakKind, nil},
		{CodeSpanKind, span(1, 2, 18, 3)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spans (-want +got):\n%s", diff)
	}
}

func TestNoSourceSpans(t *testing.T) {
	p, err := NewInlineParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	para := NewNode(ParagraphKind)
	p.Parse(SourceLines{{Content: "a *b*", Span: NullSpan()}}, para)
	Walk(para, &WalkOptions{
		Pre: func(c *Cursor) bool {
			if spans := c.Node().SourceSpans(); len(spans) > 0 {
				t.Errorf("%v node has spans %v; want none", c.Node().Kind(), spans)
			}
			return true
		},
	})
	if got, want := dumpTree(para), `"a " Emphasis["b"]`; got != want {
		t.Errorf("tree = %s; want %s", got, want)
	}
}

// mentionParser parses "@name" into a mention node.
// It declines "@" at the end of the input or before a non-letter,
// after advancing the scanner.
type mentionParser struct{}

var mentionKind = RegisterKind("Mention")

func (mentionParser) TriggerCharacters() []byte { return []byte{'@'} }

func (p mentionParser) NewInlineContentParser() InlineContentParser { return p }

func (mentionParser) TryParse(s *Scanner) (ParsedInline, bool) {
	s.Next()
	start := s.Position()
	if s.Match(isASCIILetter) == 0 {
		s.Whitespace()
		return ParsedInline{}, false
	}
	n := NewNode(mentionKind)
	n.SetLiteral(s.Source(start, s.Position()).Content())
	return ParsedInline{Node: n, Position: s.Position()}, true
}

// entityShadow claims '&' before the built-in entity parser,
// but always declines after consuming input.
type entityShadow struct{}

func (entityShadow) TriggerCharacters() []byte { return []byte{'&'} }

func (p entityShadow) NewInlineContentParser() InlineContentParser { return p }

func (entityShadow) TryParse(s *Scanner) (ParsedInline, bool) {
	s.Find(';')
	return ParsedInline{}, false
}

func TestInlineContentParser(t *testing.T) {
	p, err := NewInlineParser(&Options{
		InlineContentParsers: []InlineContentParserFactory{
			mentionParser{},
			entityShadow{},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		markdown string
		want     string
	}{
		{"hi @ross!", `"hi " Mention("ross") "!"`},
		{"a @ b", `"a @ b"`},
		{"x@", `"x@"`},
		{"*@a*", `Emphasis[Mention("a")]`},
		{"&amp; @z", `"& " Mention("z")`},
	}
	for _, test := range tests {
		para := NewNode(ParagraphKind)
		p.Parse(ParagraphLines(test.markdown), para)
		if got := dumpTree(para); got != test.want {
			t.Errorf("Parse(%q) = %s; want %s", test.markdown, got, test.want)
		}
	}
}

// stuckParser accepts '%' without consuming anything.
type stuckParser struct{}

func (stuckParser) TriggerCharacters() []byte { return []byte{'%'} }

func (p stuckParser) NewInlineContentParser() InlineContentParser { return p }

func (stuckParser) TryParse(s *Scanner) (ParsedInline, bool) {
	n := NewNode(mentionKind)
	n.SetLiteral("stuck")
	return ParsedInline{Node: n, Position: s.Position()}, true
}

func TestInlineContentParserNoProgress(t *testing.T) {
	p, err := NewInlineParser(&Options{
		InlineContentParsers: []InlineContentParserFactory{stuckParser{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	para := NewNode(ParagraphKind)
	p.Parse(ParagraphLines("a % b%"), para)
	if got, want := dumpTree(para), `"a % b%"`; got != want {
		t.Errorf("Parse(%q) = %s; want %s", "a % b%", got, want)
	}
}

func TestNestedImages(t *testing.T) {
	const depth = 5000
	markdown := strings.Repeat("![", depth) + "a*b*c" + strings.Repeat("](u)", depth)
	p, err := NewInlineParser(nil)
	if err != nil {
		t.Fatal(err)
	}
	para := NewNode(ParagraphKind)
	p.Parse(ParagraphLines(markdown), para)

	n := para
	for i := 0; i < depth; i++ {
		n = n.FirstChild()
		if n.Kind() != ImageKind || n.Next() != nil {
			t.Fatalf("node at depth %d is %v; want a lone Image", i+1, n.Kind())
		}
	}
	if got, want := dumpTree(n), `"a" Emphasis["b"] "c"`; got != want {
		t.Errorf("innermost image content = %s; want %s", got, want)
	}
}

func BenchmarkParseNestedImages(b *testing.B) {
	const depth = 2000
	lines := ParagraphLines(strings.Repeat("![", depth) + "x" + strings.Repeat("](u)", depth))
	p, err := NewInlineParser(nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Parse(lines, NewNode(ParagraphKind))
	}
}

func TestNewInlineParserErrors(t *testing.T) {
	tests := []struct {
		name         string
		opts         *Options
		wantConflict bool
	}{
		{
			name: "ConflictWithEmphasis",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{
					pairProcessor{open: '*', close: '%'},
				},
			},
			wantConflict: true,
		},
		{
			name: "SameMinLength",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{
					symmetricProcessor{char: '~', minLength: 2},
					symmetricProcessor{char: '~', minLength: 2},
				},
			},
			wantConflict: true,
		},
		{
			name: "SharedCloser",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{
					pairProcessor{open: '{', close: '}'},
					pairProcessor{open: '(', close: '}'},
				},
			},
			wantConflict: true,
		},
		{
			name: "ReservedChar",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{
					symmetricProcessor{char: '[', minLength: 1},
				},
			},
		},
		{
			name: "NonASCII",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{
					symmetricProcessor{char: 0xc3, minLength: 1},
				},
			},
		},
		{
			name: "ZeroMinLength",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{
					symmetricProcessor{char: '~', minLength: 0},
				},
			},
		},
		{
			name: "NilDelimiterProcessor",
			opts: &Options{
				DelimiterProcessors: []DelimiterProcessor{nil},
			},
		},
		{
			name: "NilBracketProcessor",
			opts: &Options{
				BracketProcessors: []BracketProcessor{nil},
			},
		},
		{
			name: "NilContentParser",
			opts: &Options{
				InlineContentParsers: []InlineContentParserFactory{nil},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := NewInlineParser(test.opts)
			if err == nil {
				t.Fatal("NewInlineParser did not return an error")
			}
			if p != nil {
				t.Error("NewInlineParser returned a parser with its error")
			}
			if got := errors.Is(err, ErrDelimiterConflict); got != test.wantConflict {
				t.Errorf("errors.Is(%v, ErrDelimiterConflict) = %t; want %t", err, got, test.wantConflict)
			}
		})
	}
}

// symmetricProcessor wraps matched runs of char in a node
// whose literal is the consumed delimiter characters.
type symmetricProcessor struct {
	char      byte
	minLength int
}

var delimitedKind = RegisterKind("Delimited")

func (p symmetricProcessor) OpeningChar() byte { return p.char }
func (p symmetricProcessor) ClosingChar() byte { return p.char }
func (p symmetricProcessor) MinLength() int    { return p.minLength }

func (p symmetricProcessor) Process(opener, closer *Delimiter) int {
	n := p.minLength
	if opener.Len() < n || closer.Len() < n {
		return 0
	}
	wrapper := NewNode(delimitedKind)
	wrapper.SetLiteral(strings.Repeat(string(rune(p.char)), n))
	WrapDelimited(wrapper, opener, closer, n)
	return n
}

// pairProcessor wraps text between distinct opening and closing characters.
type pairProcessor struct {
	open, close byte
}

func (p pairProcessor) OpeningChar() byte { return p.open }
func (p pairProcessor) ClosingChar() byte { return p.close }
func (p pairProcessor) MinLength() int    { return 1 }

func (p pairProcessor) Process(opener, closer *Delimiter) int {
	wrapper := NewNode(delimitedKind)
	wrapper.SetLiteral(string(rune(p.open)) + string(rune(p.close)))
	WrapDelimited(wrapper, opener, closer, 1)
	return 1
}

func TestDelimiterProcessors(t *testing.T) {
	p, err := NewInlineParser(&Options{
		DelimiterProcessors: []DelimiterProcessor{
			symmetricProcessor{char: '=', minLength: 2},
			symmetricProcessor{char: '=', minLength: 1},
			pairProcessor{open: '{', close: '}'},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		markdown string
		want     string
	}{
		{"==a==", `Delimited("==")["a"]`},
		{"=a=", `Delimited("=")["a"]`},
		{"==a=", `"==a="`},
		{"{a}", `Delimited("{}")["a"]`},
		{"{*a*}", `Delimited("{}")[Emphasis["a"]]`},
		{"{a", `"{a"`},
		{"a}", `"a}"`},
	}
	for _, test := range tests {
		para := NewNode(ParagraphKind)
		p.Parse(ParagraphLines(test.markdown), para)
		if got := dumpTree(para); got != test.want {
			t.Errorf("Parse(%q) = %s; want %s", test.markdown, got, test.want)
		}
	}
}

// hashtagProcessor turns "[#tag]" into a hashtag node,
// replacing the brackets entirely.
type hashtagProcessor struct{}

var hashtagKind = RegisterKind("Hashtag")

func (hashtagProcessor) ProcessBracket(info BracketInfo, s *Scanner, defs DefinitionLookup) (BracketResult, bool) {
	if info.Opener != LinkOpener || info.Reference != ShortcutReference || !strings.HasPrefix(info.Text, "#") {
		// Consume input to check that the parser rewinds.
		s.Whitespace()
		return BracketResult{}, false
	}
	n := NewNode(hashtagKind)
	n.SetLiteral(info.Text[1:])
	return ReplaceWith(n, info.AfterTextBracket), true
}

// wikiProcessor turns "[[page]]" style brackets into links by wrapping the text.
type wikiProcessor struct{}

func (wikiProcessor) ProcessBracket(info BracketInfo, s *Scanner, defs DefinitionLookup) (BracketResult, bool) {
	if info.Reference != FullReference || info.Label != "wiki" {
		return BracketResult{}, false
	}
	return WrapTextIn(NewLink("/wiki/"+info.Text, "", false), s.Position()), true
}

// bangProcessor replaces image-style "![!...]" brackets,
// keeping the leading '!' as text.
type bangProcessor struct{}

func (bangProcessor) ProcessBracket(info BracketInfo, s *Scanner, defs DefinitionLookup) (BracketResult, bool) {
	if info.Opener != ImageOpener || !strings.HasPrefix(info.Text, "!") {
		return BracketResult{}, false
	}
	n := NewNode(hashtagKind)
	n.SetLiteral(info.Text)
	return ReplaceWith(n, info.AfterTextBracket).StartFromBracket(), true
}

func TestBracketProcessors(t *testing.T) {
	p, err := NewInlineParser(&Options{
		References: ReferenceMap{"ref": {Destination: "/ref"}},
		BracketProcessors: []BracketProcessor{
			hashtagProcessor{},
			wikiProcessor{},
			bangProcessor{},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		markdown string
		want     string
	}{
		{"see [#go] now", `"see " Hashtag("go") " now"`},
		{"*a [#b* c]", `"*a " Hashtag("b* c")`},
		{"[Main *page*][wiki]", `Link("/wiki/Main *page*")["Main " Emphasis["page"]]`},
		{"[ref] [x][ref]", `Link("/ref")["ref"] " " Link("/ref")["x"]`},
		{"[#x](/inline)", `Link("/inline")["#x"]`},
		{"![!x] y", `"!" Hashtag("!x") " y"`},
		{"[a ![!x]](/u)", `Link("/u")["a !" Hashtag("!x")]`},
	}
	for _, test := range tests {
		para := NewNode(ParagraphKind)
		p.Parse(ParagraphLines(test.markdown), para)
		if got := dumpTree(para); got != test.want {
			t.Errorf("Parse(%q) = %s; want %s", test.markdown, got, test.want)
		}
	}
}

// dumpTree formats the children of n in a compact form for comparison.
func dumpTree(n *Node) string {
	sb := new(strings.Builder)
	for c := n.FirstChild(); c != nil; c = c.Next() {
		if c != n.FirstChild() {
			sb.WriteByte(' ')
		}
		dumpNode(sb, c)
	}
	return sb.String()
}

func dumpNode(sb *strings.Builder, n *Node) {
	switch n.Kind() {
	case TextKind:
		sb.WriteString(strconv.Quote(n.Literal()))
		return
	case SoftLineBreakKind, HardLineBreakKind:
		sb.WriteString(n.Kind().String())
		return
	case CodeSpanKind, RawHTMLKind:
		sb.WriteString(n.Kind().String())
		sb.WriteString("(" + strconv.Quote(n.Literal()) + ")")
		return
	case LinkKind, ImageKind:
		sb.WriteString(n.Kind().String())
		sb.WriteString("(" + strconv.Quote(n.Destination()))
		if title, ok := n.Title(); ok {
			sb.WriteString(" " + strconv.Quote(title))
		}
		sb.WriteString(")")
	case EmphasisKind, StrongKind:
		sb.WriteString(n.Kind().String())
	default:
		sb.WriteString(n.Kind().String())
		if n.Literal() != "" {
			sb.WriteString("(" + strconv.Quote(n.Literal()) + ")")
		}
		if n.FirstChild() == nil {
			return
		}
	}
	sb.WriteString("[")
	sb.WriteString(dumpTree(n))
	sb.WriteString("]")
}
