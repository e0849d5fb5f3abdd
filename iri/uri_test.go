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

//nolint:testpackage // This is a white-box test file for an internal package. It needs to be in the same package to test unexported functions.
package iri

import (
	"errors"
	"strings"
	"testing"
	"unicode"
)

// TestToURI checks the IRI to URI mapping of RFC 3987, Section 3.1.
func TestToURI(t *testing.T) {
	tests := []struct {
		name string
		iri  string
		want string
	}{
		{
			name: "ASCII IRI is unchanged",
			iri:  "http://example.com/a/b?x=1#frag",
			want: "http://example.com/a/b?x=1#frag",
		},
		{
			name: "IDNA host and encoded path",
			iri:  "http://例え.テスト/パス",
			want: "http://xn--r8jz45g.xn--zckzah/%E3%83%91%E3%82%B9",
		},
		{
			name: "all components",
			iri:  "https://user:pä@[::1]:8080/ü?q=ö#f€",
			want: "https://user:p%C3%A4@[::1]:8080/%C3%BC?q=%C3%B6#f%E2%82%AC",
		},
		{
			name: "punycode host",
			iri:  "http://bücher.example/",
			want: "http://xn--bcher-kva.example/",
		},
		{
			name: "NFC before encoding",
			iri:  "http://example.com/e\u0301",
			want: "http://example.com/%C3%A9",
		},
		{
			name: "empty port is kept",
			iri:  "http://example.com:/",
			want: "http://example.com:/",
		},
		{
			name: "relative reference",
			iri:  "a/ü",
			want: "a/%C3%BC",
		},
		{
			name: "urn",
			iri:  "urn:isbn:0451450523",
			want: "urn:isbn:0451450523",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToURI(tc.iri)
			if err != nil {
				t.Fatalf("ToURI(%q) returned error: %v", tc.iri, err)
			}
			if got != tc.want {
				t.Errorf("ToURI(%q) = %q, want %q", tc.iri, got, tc.want)
			}
			if strings.IndexFunc(got, func(r rune) bool { return r > unicode.MaxASCII }) >= 0 {
				t.Errorf("ToURI(%q) = %q is not pure ASCII", tc.iri, got)
			}
		})
	}
}

func TestToURI_Invalid(t *testing.T) {
	for _, s := range []string{"", "not a url at all", "http://example.com/%zz"} {
		_, err := ToURI(s)
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("ToURI(%q) error = %v, want ErrInvalid", s, err)
		}
		var e *Error
		if !errors.As(err, &e) || e.Input != s {
			t.Errorf("ToURI(%q) error = %#v, want *Error carrying the input", s, err)
		}
	}
}

func TestSplitComponents(t *testing.T) {
	c := splitComponents("http://user@host:80/a/b?q#f")
	if c.scheme != "http" || !c.hasScheme {
		t.Errorf("scheme = (%q, %v)", c.scheme, c.hasScheme)
	}
	if c.authority != "user@host:80" || !c.hasAuthority {
		t.Errorf("authority = (%q, %v)", c.authority, c.hasAuthority)
	}
	if c.path != "/a/b" {
		t.Errorf("path = %q", c.path)
	}
	if c.query != "q" || !c.hasQuery {
		t.Errorf("query = (%q, %v)", c.query, c.hasQuery)
	}
	if c.fragment != "f" || !c.hasFragment {
		t.Errorf("fragment = (%q, %v)", c.fragment, c.hasFragment)
	}

	c = splitComponents("a/b")
	if c.hasScheme || c.hasAuthority || c.hasQuery || c.hasFragment || c.path != "a/b" {
		t.Errorf("splitComponents(\"a/b\") = %+v", c)
	}
	c = splitComponents("x:?#")
	if !c.hasQuery || c.query != "" || !c.hasFragment || c.fragment != "" {
		t.Errorf("empty query and fragment not detected: %+v", c)
	}
}

func TestSplitAuthority(t *testing.T) {
	tests := []struct {
		authority, userinfo, host, port string
	}{
		{"example.com", "", "example.com", ""},
		{"user:pw@example.com:8080", "user:pw", "example.com", "8080"},
		{"[::1]:443", "", "[::1]", "443"},
		{"[::1]", "", "[::1]", ""},
		{"[::1", "", "[::1", ""},
		{"", "", "", ""},
	}
	for _, tc := range tests {
		u, h, p := splitAuthority(tc.authority)
		if u != tc.userinfo || h != tc.host || p != tc.port {
			t.Errorf("splitAuthority(%q) = (%q, %q, %q), want (%q, %q, %q)",
				tc.authority, u, h, p, tc.userinfo, tc.host, tc.port)
		}
	}
}
