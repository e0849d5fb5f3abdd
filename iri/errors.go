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
	"fmt"
)

// ErrInvalid is wrapped by every error this package returns for a string that
// does not satisfy the IRI grammar. Test for it with errors.Is.
var ErrInvalid = errors.New("not a valid IRI")

var (
	// errBidiFormatting is returned by strict validation when the input holds
	// one of the bidi formatting characters forbidden by RFC 3987, Section 4.1
	// (LRM, RLM, LRE, RLE, PDF, LRO, RLO).
	errBidiFormatting = &kindError{message: "IRIs must not contain bidirectional formatting characters"}
	// errHostConversion is returned when IDNA cannot map a host to ASCII.
	errHostConversion = &kindError{message: "Cannot convert host to ASCII"}
)

// Error is the error type returned by the fallible functions of this package.
// It records the offending input and wraps the specific cause.
type Error struct {
	Input   string
	Message string
	Err     error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	return fmt.Sprintf("IRI error: %s", e.Message)
}

// Unwrap provides compatibility with Go's standard errors package.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new Error for input, wrapping err.
// It returns nil if err is nil.
func newError(input string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Input: input, Message: err.Error(), Err: err}
}

// kindError describes one specific failure. When wrapped is set, the error
// also matches it through errors.Is.
type kindError struct {
	message string
	char    rune
	details string
	wrapped error
}

// Error formats the error message with any available character or details.
func (e *kindError) Error() string {
	msg := e.message
	if e.char != 0 {
		msg = fmt.Sprintf("%s '%c'", msg, e.char)
	} else if e.details != "" {
		msg = fmt.Sprintf("%s '%s'", msg, e.details)
	}
	return msg
}

// Unwrap returns the broader error class, if any.
func (e *kindError) Unwrap() error {
	return e.wrapped
}

// invalidError builds the error reported for a string rejected by the grammar.
func invalidError(s string) error {
	return &kindError{message: "Invalid IRI", details: s, wrapped: ErrInvalid}
}
