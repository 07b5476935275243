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

import "testing"

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"foo", "foo"},
		{"FOO", "foo"},
		{"  Foo \t\n  Bar  ", "foo bar"},
		{"ẞ", "ss"},
		{"SS", "ss"},
		{"ΑΓΩ", "αγω"},
		{"Straße", "strasse"},
		{" ", ""},
		{"", ""},
	}
	for _, test := range tests {
		if got := NormalizeLabel(test.label); got != test.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", test.label, got, test.want)
		}
	}
}

func TestReferenceMap(t *testing.T) {
	m := make(ReferenceMap)
	if !m.Define("Foo", LinkDefinition{Destination: "/first"}) {
		t.Error(`Define("Foo", ...) = false; want true`)
	}
	if m.Define("  FOO ", LinkDefinition{Destination: "/second"}) {
		t.Error(`Define("  FOO ", ...) = true; want false`)
	}
	if m.Define(" ", LinkDefinition{Destination: "/blank"}) {
		t.Error(`Define(" ", ...) = true; want false`)
	}

	def, ok := LookupDefinition(m, "foo")
	if !ok || def.Destination != "/first" {
		t.Errorf(`LookupDefinition(m, "foo") = %+v, %t; want {Destination:/first}, true`, def, ok)
	}
	if _, ok := LookupDefinition(m, ""); ok {
		t.Error(`LookupDefinition(m, "") found a definition`)
	}
	if _, ok := LookupDefinition(nil, "foo"); ok {
		t.Error(`LookupDefinition(nil, "foo") found a definition`)
	}
}

func TestUnescapeString(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"plain", "plain"},
		{`\*\[\\`, `*[\`},
		{`\a`, `\a`},
		{"f&ouml;&ouml;", "föö"},
		{"&#x2A;&#42;", "**"},
		{"&bogus; &amp", "&bogus; &amp"},
	}
	for _, test := range tests {
		if got := UnescapeString(test.s); got != test.want {
			t.Errorf("UnescapeString(%q) = %q; want %q", test.s, got, test.want)
		}
	}
}
