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

import "regexp"

// The fragments below follow the ABNF of RFC 3987, Section 2.2, bottom-up.
// Names ending in "Chars" are bodies of a character class, meant to be placed
// between brackets; every other fragment is a complete sub-expression.
const (
	alphaChars    = `a-zA-Z`
	digitChars    = `0-9`
	hexDigChars   = `0-9A-Fa-f`
	subDelimChars = `!$&'()*+,;=`

	unreservedChars = alphaChars + digitChars + `\-._~`

	ucsChars = `\x{A0}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}` +
		`\x{10000}-\x{1FFFD}\x{20000}-\x{2FFFD}\x{30000}-\x{3FFFD}` +
		`\x{40000}-\x{4FFFD}\x{50000}-\x{5FFFD}\x{60000}-\x{6FFFD}` +
		`\x{70000}-\x{7FFFD}\x{80000}-\x{8FFFD}\x{90000}-\x{9FFFD}` +
		`\x{A0000}-\x{AFFFD}\x{B0000}-\x{BFFFD}\x{C0000}-\x{CFFFD}` +
		`\x{D0000}-\x{DFFFD}\x{E1000}-\x{EFFFD}`

	privateChars = `\x{E000}-\x{F8FF}\x{F0000}-\x{FFFFD}\x{100000}-\x{10FFFD}`

	iunreservedChars = unreservedChars + ucsChars

	pctEncoded = `%[` + hexDigChars + `]{2}`

	scheme = `[` + alphaChars + `][` + alphaChars + digitChars + `+\-.]*`

	iuserinfo = `(?:[` + iunreservedChars + subDelimChars + `:]|` + pctEncoded + `)*`

	decOctet    = `(?:25[0-5]|2[0-4][0-9]|1[0-9]{2}|[1-9][0-9]|[0-9])`
	ipv4Address = decOctet + `\.` + decOctet + `\.` + decOctet + `\.` + decOctet

	h16  = `[` + hexDigChars + `]{1,4}`
	ls32 = `(?:` + h16 + `:` + h16 + `|` + ipv4Address + `)`

	ipv6Address = `(?:` +
		`(?:` + h16 + `:){6}` + ls32 +
		`|::(?:` + h16 + `:){5}` + ls32 +
		`|(?:` + h16 + `)?::(?:` + h16 + `:){4}` + ls32 +
		`|(?:(?:` + h16 + `:){0,1}` + h16 + `)?::(?:` + h16 + `:){3}` + ls32 +
		`|(?:(?:` + h16 + `:){0,2}` + h16 + `)?::(?:` + h16 + `:){2}` + ls32 +
		`|(?:(?:` + h16 + `:){0,3}` + h16 + `)?::` + h16 + `:` + ls32 +
		`|(?:(?:` + h16 + `:){0,4}` + h16 + `)?::` + ls32 +
		`|(?:(?:` + h16 + `:){0,5}` + h16 + `)?::` + h16 +
		`|(?:(?:` + h16 + `:){0,6}` + h16 + `)?::` +
		`)`

	ipvFuture = `v[` + hexDigChars + `]+\.[` + unreservedChars + subDelimChars + `:]+`

	ipLiteral = `\[(?:` + ipv6Address + `|` + ipvFuture + `)\]`

	iregName = `(?:[` + iunreservedChars + subDelimChars + `]|` + pctEncoded + `)*`

	ihost = `(?:` + ipLiteral + `|` + ipv4Address + `|` + iregName + `)`

	port = `[` + digitChars + `]*`

	iauthority = `(?:` + iuserinfo + `@)?` + ihost + `(?::` + port + `)?`

	ipchar = `(?:[` + iunreservedChars + subDelimChars + `:@]|` + pctEncoded + `)`

	isegment     = ipchar + `*`
	isegmentNz   = ipchar + `+`
	isegmentNzNc = `(?:[` + iunreservedChars + subDelimChars + `@]|` + pctEncoded + `)+`

	ipathAbempty  = `(?:/` + isegment + `)*`
	ipathAbsolute = `/(?:` + isegmentNz + `(?:/` + isegment + `)*)?`
	ipathNoscheme = isegmentNzNc + `(?:/` + isegment + `)*`
	ipathRootless = isegmentNz + `(?:/` + isegment + `)*`
	// ipathEmpty is deliberately nothing at all. It is only ever used as the
	// last alternative of a group whose other branches consume input.
	ipathEmpty = ``

	iquery    = `(?:` + ipchar + `|[` + privateChars + `/?])*`
	ifragment = `(?:` + ipchar + `|[/?])*`

	ihierPart = `(?://` + iauthority + ipathAbempty +
		`|` + ipathAbsolute +
		`|` + ipathRootless +
		`|` + ipathEmpty + `)`

	irelativePart = `(?://` + iauthority + ipathAbempty +
		`|` + ipathAbsolute +
		`|` + ipathNoscheme +
		`|` + ipathEmpty + `)`

	iriProduction = scheme + `:` + ihierPart + `(?:\?` + iquery + `)?(?:#` + ifragment + `)?`

	irelativeRef = irelativePart + `(?:\?` + iquery + `)?(?:#` + ifragment + `)?`

	iriReference = `(?:` + iriProduction + `|` + irelativeRef + `)`
)

var (
	// absoluteMatcher matches a complete string against the IRI production.
	absoluteMatcher = regexp.MustCompile(`(?i)^` + iriProduction + `$`)
	// referenceMatcher matches a complete string against the IRI-reference production.
	referenceMatcher = regexp.MustCompile(`(?i)^` + iriReference + `$`)
	// findMatcher locates IRI production matches anywhere in a text.
	findMatcher = regexp.MustCompile(`(?i)` + iriProduction)
)
