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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"testing"
)

// TestCoercer_Trace checks the result and the rule that ended the ladder.
func TestCoercer_Trace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIRI   string
		wantOK    bool
		wantRules int
	}{
		{"already valid", "http://example.com/a", "http://example.com/a", true, 0},
		{"sub-delims only", "!!!", "!!!", true, 0},
		{"valid with double underscore is kept verbatim", "a__b", "a__b", true, 0},
		{"spaces", "My Column Name", "My_Column_Name", true, 1},
		{"single space", " ", "_", true, 1},
		{"run of whitespace", "a \t\n b", "a_b", true, 1},
		{"no-break space is a ucschar", "a\u00A0b", "a\u00A0b", true, 0},
		{"angle brackets", "x<y>", "x_y_", true, 1},
		{"space in an absolute IRI", "http://exa mple.com/a b", "http://exa_mple.com/a_b", true, 1},
		{"accented letters survive", "Café au lait", "Café_au_lait", true, 1},
		{"private use character", "col\uE000name", "col_name", true, 2},
		{"leading separators", "://///weird", "weird", true, 3},
		{"brackets", "a[b]", "a_b_", true, 5},
		{"colon in first segment", "(:)", "_", true, 7},
		{"bracketed colon", "[x]:y", "_x_y", true, 7},
		{"stray percent", "100%", "100_", true, 8},
		{"only separators", "://", "", false, MaxRules},
		{"empty", "", "", false, 0},
	}

	c := NewCoercer()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Trace(context.Background(), tc.input)
			if got.IRI != tc.wantIRI || got.OK != tc.wantOK || got.Rules != tc.wantRules {
				t.Errorf("Trace(%q) = %+v, want {IRI:%q OK:%v Rules:%d}",
					tc.input, got, tc.wantIRI, tc.wantOK, tc.wantRules)
			}
		})
	}
}

// TestCoerce_Scenarios covers the package-level shortcut.
func TestCoerce_Scenarios(t *testing.T) {
	if got, ok := Coerce("My Column Name"); !ok || got != "My_Column_Name" {
		t.Errorf(`Coerce("My Column Name") = (%q, %v)`, got, ok)
	}
	if got, ok := Coerce("://///weird"); !ok || got != "weird" {
		t.Errorf(`Coerce("://///weird") = (%q, %v)`, got, ok)
	}
	if got, ok := Coerce(" "); !ok || got != "_" {
		t.Errorf(`Coerce(" ") = (%q, %v)`, got, ok)
	}
	if got, ok := Coerce(""); ok || got != "" {
		t.Errorf(`Coerce("") = (%q, %v), want ("", false)`, got, ok)
	}
}

func TestCoerceValue(t *testing.T) {
	var nilString *string
	s := "x y"
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{"nil", nil, "", false},
		{"nil string pointer", nilString, "", false},
		{"string pointer", &s, "x_y", true},
		{"string", "a b", "a_b", true},
		{"integer", 42, "42", true},
		{"float", 1.5, "1.5", true},
		{"empty string", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CoerceValue(tc.value)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("CoerceValue(%v) = (%q, %v), want (%q, %v)", tc.value, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

// TestCoercer_RuleOrder checks a sub-delims-only candidate never needs the
// last rule, in either mode.
func TestCoercer_RuleOrder(t *testing.T) {
	res := NewCoercer().Trace(context.Background(), "!!!")
	if !res.OK || res.Rules > 4 {
		t.Errorf("reference mode: Trace(\"!!!\") = %+v, want success by rule 4", res)
	}

	// Absolute mode can never accept a scheme-less candidate.
	res = NewCoercer(WithMode(ModeAbsolute)).Trace(context.Background(), "!!!")
	if res.OK || res.Rules != MaxRules {
		t.Errorf("absolute mode: Trace(\"!!!\") = %+v, want failure after all rules", res)
	}
}

// TestCoercer_Properties checks coercion post-conditions over a generated corpus.
func TestCoercer_Properties(t *testing.T) {
	alphabet := []rune("ab9_ -.~:/?#[]@%!$&'()*+,;=<>\"{}|^`\\\t\n\u00fc\u00df\u05d0\u200E\uE000\U00010000")
	rng := rand.New(rand.NewSource(3987))
	c := NewCoercer()

	for range 2000 {
		n := 1 + rng.Intn(12)
		var b strings.Builder
		for range n {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		input := b.String()

		res := c.Trace(context.Background(), input)
		if !res.OK {
			continue
		}
		if !IsValid(res.IRI) {
			t.Fatalf("Coerce(%q) = %q which does not validate", input, res.IRI)
		}
		if res.Rules > 0 && strings.Contains(res.IRI, "__") {
			t.Fatalf("Coerce(%q) = %q contains consecutive underscores", input, res.IRI)
		}
		if res.Rules == 0 && res.IRI != input {
			t.Fatalf("Coerce(%q) = %q changed an already valid input", input, res.IRI)
		}
	}
}

// TestCoercer_Validator checks injected validators, including failing ones.
func TestCoercer_Validator(t *testing.T) {
	t.Run("errors count as invalid", func(t *testing.T) {
		fn := func(_ context.Context, s string) (bool, error) {
			if strings.Contains(s, " ") {
				return false, errors.New("remote unavailable")
			}
			return IsValid(s), nil
		}
		got, ok := NewCoercer(WithValidator(fn)).Coerce(context.Background(), "a b")
		if !ok || got != "a_b" {
			t.Errorf("Coerce() = (%q, %v), want (\"a_b\", true)", got, ok)
		}
	})

	t.Run("panics count as invalid", func(t *testing.T) {
		fn := func(context.Context, string) (bool, error) { panic("boom") }
		res := NewCoercer(WithValidator(fn)).Trace(context.Background(), "anything")
		if res.OK || res.Rules != MaxRules {
			t.Errorf("Trace() = %+v, want failure after all rules", res)
		}
	})

	t.Run("nine checks at most", func(t *testing.T) {
		calls := 0
		fn := func(context.Context, string) (bool, error) {
			calls++
			return false, nil
		}
		NewCoercer(WithValidator(fn)).Trace(context.Background(), "x")
		if calls != MaxRules+1 {
			t.Errorf("validator called %d times, want %d", calls, MaxRules+1)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		calls := 0
		fn := func(context.Context, string) (bool, error) {
			calls++
			return true, nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, ok := NewCoercer(WithValidator(fn)).Coerce(ctx, "x"); ok {
			t.Error("Coerce() succeeded with a cancelled context")
		}
		if calls != 0 {
			t.Errorf("validator called %d times after cancellation", calls)
		}
	})
}

func TestCoercer_Options(t *testing.T) {
	t.Run("NFC", func(t *testing.T) {
		decomposed := "e\u0301"
		if got, _ := NewCoercer().Coerce(context.Background(), decomposed); got != decomposed {
			t.Errorf("without NFC got %q, want input unchanged", got)
		}
		if got, _ := NewCoercer(WithNFC()).Coerce(context.Background(), decomposed); got != "\u00e9" {
			t.Errorf("with NFC got %q, want %q", got, "\u00e9")
		}
	})

	t.Run("strict", func(t *testing.T) {
		got, ok := NewCoercer(WithStrict()).Coerce(context.Background(), "a\u200Eb")
		if !ok || got != "a_b" {
			t.Errorf("strict Coerce() = (%q, %v), want (\"a_b\", true)", got, ok)
		}
	})

	t.Run("logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		NewCoercer(WithLogger(logger)).Coerce(context.Background(), "a b")
		if !strings.Contains(buf.String(), "IRI coercion rewrite") || !strings.Contains(buf.String(), "rule=1") {
			t.Errorf("expected a debug record for rule 1, got %q", buf.String())
		}
		// A nil logger keeps the default.
		NewCoercer(WithLogger(nil)).Coerce(context.Background(), "a b")
	})
}
