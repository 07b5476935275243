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
	"strings"

	"golang.org/x/text/cases"
)

// A DefinitionLookup resolves [normalized labels] to link reference definitions.
//
// [normalized labels]: https://spec.commonmark.org/0.31.2/#matches
type DefinitionLookup interface {
	LookupDefinition(normalizedLabel string) (LinkDefinition, bool)
}

// LinkDefinition is the data of a [link reference definition].
//
// [link reference definition]: https://spec.commonmark.org/0.31.2/#link-reference-definition
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMap is a mapping of [normalized labels] to link definitions.
//
// [normalized labels]: https://spec.commonmark.org/0.31.2/#matches
type ReferenceMap map[string]LinkDefinition

// LookupDefinition returns the definition for the normalized label.
func (m ReferenceMap) LookupDefinition(normalizedLabel string) (LinkDefinition, bool) {
	def, ok := m[normalizedLabel]
	return def, ok
}

// Define adds a definition for label to the map.
// In case of conflicts,
// Define will not replace an existing definition
// so that the first definition in source order wins.
// Define reports whether the definition was added.
func (m ReferenceMap) Define(label string, def LinkDefinition) bool {
	key := NormalizeLabel(label)
	if _, exists := m[key]; key == "" || exists {
		return false
	}
	m[key] = def
	return true
}

// LookupDefinition normalizes label and looks it up in defs.
// A nil defs has no definitions.
func LookupDefinition(defs DefinitionLookup, label string) (LinkDefinition, bool) {
	if defs == nil {
		return LinkDefinition{}, false
	}
	key := NormalizeLabel(label)
	if key == "" {
		return LinkDefinition{}, false
	}
	return defs.LookupDefinition(key)
}

// NormalizeLabel returns the canonical form of a link label
// used to [match] references with definitions:
// leading and trailing whitespace is removed,
// internal whitespace runs are collapsed to a single space,
// and the result is case folded.
//
// [match]: https://spec.commonmark.org/0.31.2/#matches
func NormalizeLabel(label string) string {
	sb := new(strings.Builder)
	sb.Grow(len(label))
	needSpace := false
	nonASCII := false
	for i := 0; i < len(label); i++ {
		c := label[i]
		if isSpaceTabOrLineEnding(c) {
			needSpace = sb.Len() > 0
			continue
		}
		if needSpace {
			sb.WriteByte(' ')
			needSpace = false
		}
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 0x80 {
			nonASCII = true
		}
		sb.WriteByte(c)
	}
	s := sb.String()
	if nonASCII {
		// Table at https://www.unicode.org/Public/UCD/latest/ucd/CaseFolding.txt.
		s = cases.Fold().String(s)
	}
	return s
}
