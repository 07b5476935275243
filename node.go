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
	"sync"
)

// Node is an element of an inline tree,
// like a run of text, a link, or emphasis.
// Nodes form a tree through parent, child, and sibling links.
// The zero value is not a usable node; use [NewNode] or one of its variants.
type Node struct {
	kind NodeKind

	parent     *Node
	firstChild *Node
	lastChild  *Node
	prev       *Node
	next       *Node

	literal     string
	destination string
	title       string
	hasTitle    bool
	label       string
	spans       []SourceSpan

	// Data holds extension-specific information.
	// The parser never reads or writes it.
	Data any
}

// NewNode returns a new detached node of the given kind.
func NewNode(kind NodeKind) *Node {
	return &Node{kind: kind}
}

// NewText returns a new [TextKind] node.
func NewText(s string) *Node {
	return &Node{kind: TextKind, literal: s}
}

// NewLink returns a new [LinkKind] node.
func NewLink(destination, title string, hasTitle bool) *Node {
	return &Node{
		kind:        LinkKind,
		destination: destination,
		title:       title,
		hasTitle:    hasTitle,
	}
}

// NewImage returns a new [ImageKind] node.
func NewImage(destination, title string, hasTitle bool) *Node {
	return &Node{
		kind:        ImageKind,
		destination: destination,
		title:       title,
		hasTitle:    hasTitle,
	}
}

// Kind returns the type of the node
// or zero if the node is nil.
func (n *Node) Kind() NodeKind {
	if n == nil {
		return 0
	}
	return n.kind
}

// Parent returns the node's parent
// or nil if the node is a root or nil.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// FirstChild returns the node's first child
// or nil if the node has no children.
func (n *Node) FirstChild() *Node {
	if n == nil {
		return nil
	}
	return n.firstChild
}

// LastChild returns the node's last child
// or nil if the node has no children.
func (n *Node) LastChild() *Node {
	if n == nil {
		return nil
	}
	return n.lastChild
}

// Next returns the node's next sibling
// or nil if the node is the last child of its parent.
func (n *Node) Next() *Node {
	if n == nil {
		return nil
	}
	return n.next
}

// Prev returns the node's previous sibling
// or nil if the node is the first child of its parent.
func (n *Node) Prev() *Node {
	if n == nil {
		return nil
	}
	return n.prev
}

// ChildCount returns the number of children the node has.
// Calling ChildCount on nil returns 0.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.FirstChild(); c != nil; c = c.next {
		count++
	}
	return count
}

// Literal returns the node's literal string.
// For [TextKind], [CodeSpanKind], and [RawHTMLKind] nodes,
// this is the content of the node.
// For [EmphasisKind] and [StrongKind] nodes,
// this is the delimiter string used (e.g. "*" or "__").
// Calling Literal on nil returns the empty string.
func (n *Node) Literal() string {
	if n == nil {
		return ""
	}
	return n.literal
}

// SetLiteral sets the node's literal string.
func (n *Node) SetLiteral(s string) {
	n.literal = s
}

// Destination returns the destination of a [LinkKind] or [ImageKind] node
// or the empty string if the node is nil or of a different type.
func (n *Node) Destination() string {
	if n == nil {
		return ""
	}
	return n.destination
}

// Title returns the title of a [LinkKind] or [ImageKind] node.
// The boolean reports whether the link had a title,
// which distinguishes an empty title from an absent one.
func (n *Node) Title() (title string, present bool) {
	if n == nil {
		return "", false
	}
	return n.title, n.hasTitle
}

// Label returns the label of the node.
// The core parser does not set labels;
// extension nodes like footnote references use them.
func (n *Node) Label() string {
	if n == nil {
		return ""
	}
	return n.label
}

// SetLabel sets the node's label.
func (n *Node) SetLabel(label string) {
	n.label = label
}

// SourceSpans returns the locations in the input that the node covers.
// The returned slice must not be modified.
// Nodes created while parsing lines without location information
// do not have spans.
func (n *Node) SourceSpans() []SourceSpan {
	if n == nil {
		return nil
	}
	return n.spans
}

// SetSourceSpans sets the locations in the input that the node covers.
func (n *Node) SetSourceSpans(spans []SourceSpan) {
	n.spans = spans
}

// AppendChild adds child to the end of the node's children,
// detaching child from its current position first.
func (n *Node) AppendChild(child *Node) {
	child.Unlink()
	child.parent = n
	if n.lastChild == nil {
		n.firstChild = child
	} else {
		n.lastChild.next = child
		child.prev = n.lastChild
	}
	n.lastChild = child
}

// PrependChild adds child to the beginning of the node's children,
// detaching child from its current position first.
func (n *Node) PrependChild(child *Node) {
	child.Unlink()
	child.parent = n
	if n.firstChild == nil {
		n.lastChild = child
	} else {
		n.firstChild.prev = child
		child.next = n.firstChild
	}
	n.firstChild = child
}

// InsertAfter inserts sibling immediately after the node,
// detaching sibling from its current position first.
func (n *Node) InsertAfter(sibling *Node) {
	sibling.Unlink()
	sibling.next = n.next
	if sibling.next != nil {
		sibling.next.prev = sibling
	}
	sibling.prev = n
	n.next = sibling
	sibling.parent = n.parent
	if sibling.next == nil && sibling.parent != nil {
		sibling.parent.lastChild = sibling
	}
}

// InsertBefore inserts sibling immediately before the node,
// detaching sibling from its current position first.
func (n *Node) InsertBefore(sibling *Node) {
	sibling.Unlink()
	sibling.prev = n.prev
	if sibling.prev != nil {
		sibling.prev.next = sibling
	}
	sibling.next = n
	n.prev = sibling
	sibling.parent = n.parent
	if sibling.prev == nil && sibling.parent != nil {
		sibling.parent.firstChild = sibling
	}
}

// Unlink detaches the node from its parent and siblings.
// The node keeps its children.
func (n *Node) Unlink() {
	if n.prev != nil {
		n.prev.next = n.next
	} else if n.parent != nil {
		n.parent.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if n.parent != nil {
		n.parent.lastChild = n.prev
	}
	n.parent = nil
	n.prev = nil
	n.next = nil
}

// WrapBetween moves the siblings strictly between start and end
// into wrapper and inserts wrapper immediately after start.
// start and end must be siblings with start before end.
func WrapBetween(wrapper, start, end *Node) {
	for n := start.next; n != nil && n != end; {
		next := n.next
		wrapper.AppendChild(n)
		n = next
	}
	start.InsertAfter(wrapper)
}

// TextContent returns the concatenated literal text of the node's subtree.
// Line breaks are represented as "\n".
func TextContent(n *Node) string {
	sb := new(strings.Builder)
	appendTextContent(sb, n)
	return sb.String()
}

func appendTextContent(sb *strings.Builder, n *Node) {
	switch n.Kind() {
	case TextKind, CodeSpanKind, RawHTMLKind:
		sb.WriteString(n.literal)
	case SoftLineBreakKind, HardLineBreakKind:
		sb.WriteByte('\n')
	default:
		for c := n.FirstChild(); c != nil; c = c.next {
			appendTextContent(sb, c)
		}
	}
}

// NodeKind is an enumeration of values returned by [*Node.Kind].
type NodeKind uint16

const (
	// ParagraphKind is the container that the parser fills with inline content.
	// It is never produced by the inline parser itself.
	ParagraphKind NodeKind = 1 + iota
	// TextKind is used for literal text.
	TextKind
	// SoftLineBreakKind is a line ending that renders as whitespace.
	SoftLineBreakKind
	// HardLineBreakKind is a line ending preceded by two or more spaces or a backslash.
	HardLineBreakKind
	// EmphasisKind is emphasized content, usually rendered in italics.
	EmphasisKind
	// StrongKind is strongly emphasized content, usually rendered in bold.
	StrongKind
	// CodeSpanKind is a [code span]. Its content is stored in its literal.
	//
	// [code span]: https://spec.commonmark.org/0.31.2/#code-spans
	CodeSpanKind
	// LinkKind is a hyperlink. Its children are the link text.
	LinkKind
	// ImageKind is an image. Its children are the image description.
	ImageKind
	// RawHTMLKind is [raw HTML] stored verbatim in its literal.
	//
	// [raw HTML]: https://spec.commonmark.org/0.31.2/#raw-html
	RawHTMLKind

	firstCustomKind
)

var builtinKindNames = [...]string{
	ParagraphKind - 1:     "Paragraph",
	TextKind - 1:          "Text",
	SoftLineBreakKind - 1: "SoftLineBreak",
	HardLineBreakKind - 1: "HardLineBreak",
	EmphasisKind - 1:      "Emphasis",
	StrongKind - 1:        "Strong",
	CodeSpanKind - 1:      "CodeSpan",
	LinkKind - 1:          "Link",
	ImageKind - 1:         "Image",
	RawHTMLKind - 1:       "RawHTML",
}

var customKinds struct {
	mu    sync.Mutex
	names []string
}

// RegisterKind allocates a new node kind for an extension.
// The name is only used for [NodeKind.String].
// RegisterKind is typically called during package initialization.
func RegisterKind(name string) NodeKind {
	customKinds.mu.Lock()
	defer customKinds.mu.Unlock()
	kind := firstCustomKind + NodeKind(len(customKinds.names))
	customKinds.names = append(customKinds.names, name)
	return kind
}

// IsCustom reports whether the kind was allocated by [RegisterKind].
func (kind NodeKind) IsCustom() bool {
	return kind >= firstCustomKind
}

// String returns the name of the kind.
func (kind NodeKind) String() string {
	if kind > 0 && kind < firstCustomKind {
		return builtinKindNames[kind-1]
	}
	if kind.IsCustom() {
		customKinds.mu.Lock()
		defer customKinds.mu.Unlock()
		if i := int(kind - firstCustomKind); i < len(customKinds.names) {
			return customKinds.names[i]
		}
	}
	return fmt.Sprintf("NodeKind(%d)", uint16(kind))
}
