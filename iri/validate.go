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

// Package iri validates strings as Internationalized Resource Identifiers
// (RFC 3987) and coerces arbitrary strings into valid ones.
//
// Validation is a pure, local check against the RFC 3987 grammar compiled into
// a regular expression once at package initialisation. Two productions are
// available:
//   - ModeReference checks the IRI-reference production, so a scheme is
//     optional and "My_Column" is as valid as "http://example.com/a".
//   - ModeAbsolute checks the IRI production, which requires "scheme:".
//
// ModeReference is the default everywhere in this package. The Coercer's last
// rewrite rule reduces any input to unreserved characters, which only ever
// validates as a relative reference, so the coercion ladder is only guaranteed
// to terminate in success under ModeReference.
//
// Coercion narrows an input through eight ordered rewrite rules until it
// validates, see Coercer. The authority deciding validity can be replaced
// with a ValidateFunc, for example one backed by a remote service.
package iri

import (
	"context"
	"iter"
	"strings"
)

// Mode selects the RFC 3987 production a string is validated against.
type Mode int

const (
	// ModeReference validates against IRI-reference (scheme optional).
	ModeReference Mode = iota
	// ModeAbsolute validates against IRI (scheme required).
	ModeAbsolute
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeReference:
		return "reference"
	case ModeAbsolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// ParseMode returns the Mode named by s ("reference" or "absolute").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reference":
		return ModeReference, nil
	case "absolute":
		return ModeAbsolute, nil
	}
	return 0, &kindError{message: "Unknown validation mode", details: s}
}

// ValidateFunc decides whether candidate is a valid IRI. Implementations may
// block (e.g. on a network round trip) and should honour ctx. A non-nil error
// means the answer is unknown; callers in this package treat it as "invalid".
type ValidateFunc func(ctx context.Context, candidate string) (bool, error)

// Validator checks whole strings against the compiled grammar.
// The zero value validates in ModeReference without bidi checks.
type Validator struct {
	// Mode is the production to validate against.
	Mode Mode
	// Strict additionally rejects bidi formatting characters and components
	// that break the bidi structure rules of RFC 3987, Section 4.2.
	Strict bool
}

// IsValid reports whether s, in its entirety, is one valid IRI.
func (v Validator) IsValid(s string) bool {
	// The bare ipath-empty alternative of IRI-reference accepts "", which is
	// never a usable identifier.
	if s == "" {
		return false
	}
	matcher := referenceMatcher
	if v.Mode == ModeAbsolute {
		matcher = absoluteMatcher
	}
	if !matcher.MatchString(s) {
		return false
	}
	if v.Strict {
		return validateBidiIRI(s) == nil
	}
	return true
}

// Func adapts the validator to a ValidateFunc. The returned function never
// blocks and never returns an error.
func (v Validator) Func() ValidateFunc {
	return func(_ context.Context, candidate string) (bool, error) {
		return v.IsValid(candidate), nil
	}
}

// IsValid reports whether s is a valid IRI reference. It is the package-level
// shortcut for Validator{}.IsValid.
func IsValid(s string) bool {
	return Validator{}.IsValid(s)
}

// IsValidAbsolute reports whether s is a valid absolute IRI (scheme required).
func IsValidAbsolute(s string) bool {
	return Validator{Mode: ModeAbsolute}.IsValid(s)
}

// Match is one IRI found inside a larger text. Start and End are byte
// offsets into the searched text, so text[Start:End] == Text.
type Match struct {
	Start int
	End   int
	Text  string
}

// FindAll returns the IRIs contained in text, left to right and without
// overlap. Only the absolute IRI production is searched for; relative
// references would match almost every word. Matches are produced lazily.
func FindAll(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		offset := 0
		for offset < len(text) {
			loc := findMatcher.FindStringIndex(text[offset:])
			if loc == nil {
				return
			}
			start, end := offset+loc[0], offset+loc[1]
			if end == start {
				// The IRI production cannot match empty input, this only
				// guards the loop against making no progress.
				offset = end + 1
				continue
			}
			if !yield(Match{Start: start, End: end, Text: text[start:end]}) {
				return
			}
			offset = end
		}
	}
}
