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

// Package spec provides access to the inline examples
// from the CommonMark specification.
package spec

import (
	_ "embed"
	"encoding/json"
)

// Example is a single paragraph-level example from the specification.
type Example struct {
	Markdown string
	HTML     string
	Example  int
	Section  string

	// Definitions maps link reference labels to the definitions
	// that the example's document declares outside of the paragraph.
	Definitions map[string]Definition
}

// Definition is a link reference definition used by an [Example].
type Definition struct {
	Destination string
	// Title is nil if the definition has no title.
	Title *string
}

//go:embed inline-examples.json
var inlineData []byte

// Load returns the inline examples from the CommonMark specification.
func Load() ([]Example, error) {
	var testsuite []Example
	if err := json.Unmarshal(inlineData, &testsuite); err != nil {
		return nil, err
	}
	return testsuite, nil
}

// Sections returns the distinct section names of the examples
// in the order they first appear.
func Sections(examples []Example) []string {
	var sections []string
	seen := make(map[string]struct{})
	for _, ex := range examples {
		if _, ok := seen[ex.Section]; !ok {
			seen[ex.Section] = struct{}{}
			sections = append(sections, ex.Section)
		}
	}
	return sections
}
