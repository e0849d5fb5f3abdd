/*
Copyright 2025 Trident Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package iri

import (
	"html"
	"strings"
)

// Linkify returns text as HTML in which every IRI found by FindAll is wrapped
// in an anchor element. The href holds the URI form of the IRI (see ToURI);
// all other text is HTML-escaped.
func Linkify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for m := range FindAll(text) {
		b.WriteString(html.EscapeString(text[last:m.Start]))
		href, err := ToURI(m.Text)
		if err != nil {
			href = m.Text
		}
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(href))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(m.Text))
		b.WriteString(`</a>`)
		last = m.End
	}
	b.WriteString(html.EscapeString(text[last:]))
	return b.String()
}
