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
	"errors"
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// isForbiddenBidiFormatting checks for bidirectional formatting characters that are forbidden in IRIs.
func isForbiddenBidiFormatting(c rune) bool {
	// RFC 3987, Section 4.1: "IRIs MUST NOT contain bidirectional formatting characters"
	// These characters are LRM (U+200E), RLM (U+200F), and LRE, RLE, PDF, LRO, RLO (U+202A to U+202E).
	return (c >= '\u202A' && c <= '\u202E') || c == '\u200E' || c == '\u200F'
}

// isRTL reports whether r has a strong right-to-left bidi class.
func isRTL(r rune) bool {
	prop, _ := bidi.LookupRune(r)
	class := prop.Class()
	return class == bidi.R || class == bidi.AL
}

// isLTR reports whether r has a strong left-to-right bidi class.
func isLTR(r rune) bool {
	prop, _ := bidi.LookupRune(r)
	return prop.Class() == bidi.L
}

// validateBidiIRI applies the bidi rules of RFC 3987, Sections 4.1 and 4.2
// to a string already accepted by the grammar.
func validateBidiIRI(s string) error {
	if strings.IndexFunc(s, isForbiddenBidiFormatting) >= 0 {
		return errBidiFormatting
	}

	parts := splitComponents(s)
	if parts.hasAuthority {
		userinfo, host, _ := splitAuthority(parts.authority)
		if err := validateBidiComponent(userinfo); err != nil {
			return err
		}
		if err := validateBidiHost(host); err != nil {
			return err
		}
	}
	for _, segment := range strings.Split(parts.path, "/") {
		if err := validateBidiComponent(segment); err != nil {
			return err
		}
	}
	if err := validateBidiComponent(parts.query); err != nil {
		return err
	}
	return validateBidiComponent(parts.fragment)
}

// validateBidiComponent checks a component string against the structural rules
// for bidirectional IRIs as defined in RFC 3987, Section 4.2:
//
//  1. A component should not use both right-to-left and left-to-right characters.
//  2. A component using right-to-left characters should start and end with
//     right-to-left characters.
//
// Both "should" rules are enforced as hard errors.
func validateBidiComponent(component string) error {
	if component == "" {
		return nil
	}

	hasRTL := strings.IndexFunc(component, isRTL) >= 0
	if !hasRTL {
		return nil
	}
	if strings.IndexFunc(component, isLTR) >= 0 {
		return &kindError{
			message: "Invalid IRI component: mixed left-to-right and right-to-left characters",
			details: component,
		}
	}

	runes := []rune(component)
	if !isRTL(runes[0]) || !isRTL(runes[len(runes)-1]) {
		return &kindError{
			message: "Invalid IRI component: right-to-left parts must start and end with right-to-left characters",
			details: component,
		}
	}
	return nil
}

// validateBidiHost checks a host string against the Bidi rules.
// RFC 3987, Section 4.2 requires that for hostnames, each dot-separated
// label be treated as an individual component for Bidi validation.
func validateBidiHost(host string) error {
	// For IP literals (e.g., [::1]), Bidi rules do not apply.
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return nil
	}
	for _, label := range strings.Split(host, ".") {
		err := validateBidiComponent(label)
		var e *kindError
		if errors.As(err, &e) {
			e.message = "Invalid IRI host label"
			e.details = label + " in host '" + host + "'"
			return e
		}
	}
	return nil
}
