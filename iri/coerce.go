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
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// MaxRules is the number of rewrite rules a Coercer applies before giving up.
const MaxRules = 8

// rewriteRule turns a candidate into a new, narrower candidate.
type rewriteRule func(string) string

func replaceWithUnderscore(re *regexp.Regexp) rewriteRule {
	return func(s string) string { return re.ReplaceAllLiteralString(s, "_") }
}

var (
	illegalRunes      = regexp.MustCompile("[\\s\\p{Z}\\p{Cc}<>\"{}|^`\\\\]+")
	nonIRIRune        = regexp.MustCompile(`[^\p{L}\p{N}\-_.~:/?#\[\]@%!$&'()*+,;=]`)
	leadingSeparators = regexp.MustCompile(`^(?::?/+)+`)
	subDelimRuns      = regexp.MustCompile(`[!$&'()*+,;=]+`)
	genDelimRuns      = regexp.MustCompile(`[?#\[\]@]+`)
	slashRuns         = regexp.MustCompile(`/+`)
	colonRuns         = regexp.MustCompile(`:+`)
	nonUnreservedRune = regexp.MustCompile(`[^\-\p{L}\p{N}_.~]`)
	underscoreRuns    = regexp.MustCompile(`_{2,}`)
)

// rewriteRules are tried in order, least destructive first. Rule n of the
// ladder is rewriteRules[n-1].
var rewriteRules = [MaxRules]rewriteRule{
	// 1: whitespace, controls and the ASCII characters never allowed in IRIs.
	replaceWithUnderscore(illegalRunes),
	// 2: anything that is neither a letter, a number nor IRI punctuation.
	replaceWithUnderscore(nonIRIRune),
	// 3: leading ":/", "//", ":///" and the like. Removed, not replaced.
	func(s string) string { return leadingSeparators.ReplaceAllLiteralString(s, "") },
	// 4: sub-delims.
	replaceWithUnderscore(subDelimRuns),
	// 5: gen-delims, except ':' and '/'.
	replaceWithUnderscore(genDelimRuns),
	// 6: '/'.
	replaceWithUnderscore(slashRuns),
	// 7: ':'.
	replaceWithUnderscore(colonRuns),
	// 8: everything but unreserved characters.
	replaceWithUnderscore(nonUnreservedRune),
}

// Result describes the outcome of one coercion.
type Result struct {
	// IRI is the coerced IRI. It is empty when OK is false.
	IRI string
	// OK reports whether a valid IRI could be derived.
	OK bool
	// Rules is the number of rewrite rules applied before the candidate
	// validated, or before giving up. Zero means the input was valid as is.
	Rules int
}

// Coercer rewrites arbitrary strings into valid IRIs. A Coercer is immutable
// once constructed and safe for concurrent use, provided its ValidateFunc is.
type Coercer struct {
	validate ValidateFunc
	local    Validator
	nfc      bool
	logger   *slog.Logger
}

// Option configures a Coercer.
type Option func(*Coercer)

// WithValidator replaces the local grammar check with fn, for example a
// remote authority. Errors and panics from fn count as "invalid".
func WithValidator(fn ValidateFunc) Option {
	return func(c *Coercer) { c.validate = fn }
}

// WithMode sets the production the local grammar check validates against.
// It has no effect when WithValidator is used.
func WithMode(mode Mode) Option {
	return func(c *Coercer) { c.local.Mode = mode }
}

// WithStrict enables bidi checks in the local grammar check.
// It has no effect when WithValidator is used.
func WithStrict() Option {
	return func(c *Coercer) { c.local.Strict = true }
}

// WithNFC normalizes the input to Unicode Normalization Form C before the
// first validation attempt.
func WithNFC() Option {
	return func(c *Coercer) { c.nfc = true }
}

// WithLogger sets the logger receiving one debug record per attempt.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coercer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoercer returns a Coercer configured by opts. Without options it
// validates locally in ModeReference.
func NewCoercer(opts ...Option) *Coercer {
	c := &Coercer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(c)
	}
	if c.validate == nil {
		c.validate = c.local.Func()
	}
	return c
}

// Coerce returns s rewritten into a valid IRI. The boolean is false when no
// IRI could be derived, which is an expected outcome rather than an error.
func (c *Coercer) Coerce(ctx context.Context, s string) (string, bool) {
	res := c.Trace(ctx, s)
	return res.IRI, res.OK
}

// Trace runs the rewrite ladder on s and reports how it ended.
//
// The candidate starts as s verbatim. While it fails validation, the next
// rule is applied and runs of underscores are collapsed into one. After the
// eighth rule the candidate is checked one last time.
func (c *Coercer) Trace(ctx context.Context, s string) Result {
	if s == "" {
		return Result{}
	}
	candidate := s
	if c.nfc {
		candidate = norm.NFC.String(candidate)
	}

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			c.logger.Debug("IRI coercion cancelled",
				slog.Int("rule", attempt), slog.String("error", ctx.Err().Error()))
			return Result{Rules: attempt}
		}
		if c.check(ctx, candidate) {
			c.logger.Debug("IRI coercion succeeded",
				slog.String("input", s), slog.String("iri", candidate), slog.Int("rule", attempt))
			return Result{IRI: candidate, OK: true, Rules: attempt}
		}
		if attempt == MaxRules {
			c.logger.Debug("IRI coercion failed", slog.String("input", s))
			return Result{Rules: attempt}
		}
		candidate = rewriteRules[attempt](candidate)
		candidate = underscoreRuns.ReplaceAllLiteralString(candidate, "_")
		c.logger.Debug("IRI coercion rewrite",
			slog.Int("rule", attempt+1), slog.String("candidate", candidate))
	}
}

// check runs the configured validator, mapping errors and panics to false.
func (c *Coercer) check(ctx context.Context, candidate string) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("IRI validator panicked",
				slog.String("candidate", candidate), slog.Any("panic", r))
			valid = false
		}
	}()
	ok, err := c.validate(ctx, candidate)
	if err != nil {
		c.logger.Debug("IRI validator failed",
			slog.String("candidate", candidate), slog.String("error", err.Error()))
		return false
	}
	return ok
}

var defaultCoercer = NewCoercer()

// Coerce rewrites s into a valid IRI reference using the local grammar.
// It returns false for the empty string and for inputs no rule can rescue.
func Coerce(s string) (string, bool) {
	return defaultCoercer.Coerce(context.Background(), s)
}

// CoerceValue stringifies v and coerces the result. A nil value, including a
// nil *string, yields false.
func CoerceValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return Coerce(x)
	case *string:
		if x == nil {
			return "", false
		}
		return Coerce(*x)
	default:
		return Coerce(fmt.Sprint(x))
	}
}
