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

package mdinline_test

import (
	"fmt"
	"os"

	"zombiezen.com/go/mdinline"
)

func Example() {
	// Parse the content of a paragraph into inline nodes.
	para := mdinline.NewNode(mdinline.ParagraphKind)
	var p *mdinline.InlineParser
	p.Parse(mdinline.ParagraphLines("Hello, **World**!"), para)
	// Render the inline tree to HTML.
	mdinline.RenderHTML(os.Stdout, para)
	// Output:
	// <p>Hello, <strong>World</strong>!</p>
}

func ExampleNewInlineParser() {
	// Link reference definitions come from the block parser.
	refs := make(mdinline.ReferenceMap)
	refs.Define("World", mdinline.LinkDefinition{
		Destination: "https://www.example.com/",
	})

	p, err := mdinline.NewInlineParser(&mdinline.Options{
		References: refs,
	})
	if err != nil {
		panic(err)
	}
	para := mdinline.NewNode(mdinline.ParagraphKind)
	p.Parse(mdinline.ParagraphLines("Hello, [World][]!"), para)
	mdinline.RenderHTML(os.Stdout, para)
	// Output:
	// <p>Hello, <a href="https://www.example.com/">World</a>!</p>
}

func ExampleWalk() {
	para := mdinline.NewNode(mdinline.ParagraphKind)
	var p *mdinline.InlineParser
	p.Parse(mdinline.ParagraphLines("*Go* [home](https://go.dev/) and [docs](https://pkg.go.dev/)"), para)

	// Print every link destination.
	mdinline.Walk(para, &mdinline.WalkOptions{
		Pre: func(c *mdinline.Cursor) bool {
			if n := c.Node(); n.Kind() == mdinline.LinkKind {
				fmt.Printf("%s -> %s\n", mdinline.TextContent(n), n.Destination())
			}
			return true
		},
	})
	// Output:
	// home -> https://go.dev/
	// docs -> https://pkg.go.dev/
}
