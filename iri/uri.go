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
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// componentSplitter is the component-splitting expression of RFC 3986,
// Appendix B. It only yields meaningful parts for strings the grammar accepts.
var componentSplitter = regexp.MustCompile(`^(?:([^:/?#]+):)?(?://([^/?#]*))?([^?#]*)(?:\?([^#]*))?(?:#(.*))?$`)

// components holds the five top-level parts of an IRI reference.
type components struct {
	scheme       string
	hasScheme    bool
	authority    string
	hasAuthority bool
	path         string
	query        string
	hasQuery     bool
	fragment     string
	hasFragment  bool
}

// splitComponents breaks s into scheme, authority, path, query and fragment.
func splitComponents(s string) components {
	loc := componentSplitter.FindStringSubmatchIndex(s)
	if loc == nil {
		return components{path: s}
	}
	group := func(n int) (string, bool) {
		start, end := loc[2*n], loc[2*n+1]
		if start < 0 {
			return "", false
		}
		return s[start:end], true
	}

	var c components
	c.scheme, c.hasScheme = group(1)
	c.authority, c.hasAuthority = group(2)
	c.path, _ = group(3)
	c.query, c.hasQuery = group(4)
	c.fragment, c.hasFragment = group(5)
	return c
}

// splitAuthority parses an authority string into its userinfo, host, and
// port components.
func splitAuthority(authority string) (string, string, string) {
	var userinfo, port string

	hostport := authority
	if at := strings.LastIndex(authority, "@"); at != -1 {
		userinfo = authority[:at]
		hostport = authority[at+1:]
	}

	if strings.HasPrefix(hostport, "[") {
		endBracket := strings.LastIndex(hostport, "]")
		if endBracket == -1 {
			return userinfo, hostport, port
		}
		if len(hostport) > endBracket+1 && hostport[endBracket+1] == ':' {
			port = hostport[endBracket+2:]
		}
		return userinfo, hostport[:endBracket+1], port
	}

	if colon := strings.LastIndex(hostport, ":"); colon != -1 {
		return userinfo, hostport[:colon], hostport[colon+1:]
	}
	return userinfo, hostport, port
}

// percentEncode writes s to b, percent-encoding every non-ASCII character
// as its UTF-8 octets.
func percentEncode(s string, b *strings.Builder) {
	for _, ru := range s {
		if ru <= unicode.MaxASCII {
			b.WriteRune(ru)
			continue
		}
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], ru)
		for i := range n {
			fmt.Fprintf(b, "%%%02X", buf[i])
		}
	}
}

// ToURI converts a valid IRI reference into a URI reference, following
// RFC 3987, Section 3.1. Every component is normalized to NFC, the host is
// mapped with IDNA ToASCII and any remaining non-ASCII character is
// percent-encoded. Strings the grammar rejects yield an error wrapping
// ErrInvalid.
func ToURI(s string) (string, error) {
	if !IsValid(s) {
		return "", newError(s, invalidError(s))
	}
	c := splitComponents(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(s))

	if c.hasScheme {
		b.WriteString(c.scheme)
		b.WriteByte(':')
	}
	if c.hasAuthority {
		b.WriteString("//")
		userinfo, host, port := splitAuthority(c.authority)
		if strings.Contains(c.authority, "@") {
			percentEncode(userinfo, &b)
			b.WriteByte('@')
		}
		if host != "" && !strings.HasPrefix(host, "[") {
			ascii, err := idna.ToASCII(host)
			if err != nil {
				return "", newError(s, &kindError{message: errHostConversion.message, details: host, wrapped: err})
			}
			host = ascii
		}
		// IP literals are ASCII by construction.
		b.WriteString(host)
		if port != "" || strings.HasSuffix(c.authority, ":") {
			b.WriteByte(':')
			b.WriteString(port)
		}
	}
	percentEncode(c.path, &b)
	if c.hasQuery {
		b.WriteByte('?')
		percentEncode(c.query, &b)
	}
	if c.hasFragment {
		b.WriteByte('#')
		percentEncode(c.fragment, &b)
	}
	return b.String(), nil
}
