// Zaparoo Tracks
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Tracks.
//
// Zaparoo Tracks is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Tracks is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Tracks.  If not, see <http://www.gnu.org/licenses/>.

// Package normalize reduces free-form music labels to comparable forms.
//
// All functions are pure and total: any input, including invalid UTF-8 and
// the empty string, produces a well-defined output.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize case-folds s, decomposes it to NFD, removes every combining
// mark and recomposes the remainder. A second fold catches capitals that
// only appear once their marks are gone (İ → I).
//
// Examples:
//   - "Beyoncé" → "beyonce"
//   - "MÖTLEY CRÜE" → "motley crue"
//   - "Straße" → "strasse"
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	if isASCII(s) {
		return strings.ToLower(s)
	}

	s = cases.Fold().String(s)

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		s = normalized
	}
	return cases.Fold().String(s)
}

// NormalizeWidth converts fullwidth and halfwidth characters to their
// normal-width forms ("ＡＢＣ" → "ABC", "ｶﾀｶﾅ" → "カタカナ").
func NormalizeWidth(s string) string {
	if isASCII(s) {
		return s
	}
	if normalized, _, err := transform.String(width.Fold, s); err == nil {
		return normalized
	}
	return s
}

// CleanForComparison normalizes s and replaces every run of characters that
// are not letters or digits with a single space. The result is trimmed.
//
// Example: "AC/DC - Back In Black!" → "ac dc back in black"
func CleanForComparison(s string) string {
	s = Normalize(NormalizeWidth(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if !isAlphanumeric(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// CleanStrict normalizes s and drops every character that is not a letter
// or digit, spaces included. It is the key space for edit distance.
//
// Example: "Guns N' Roses" → "gunsnroses"
func CleanStrict(s string) string {
	s = Normalize(NormalizeWidth(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isAlphanumeric(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Key is Normalize with whitespace collapsed and trimmed. Canonical
// entities are looked up by Key.
func Key(s string) string {
	return strings.Join(strings.Fields(Normalize(NormalizeWidth(s))), " ")
}

// Tokens splits the CleanForComparison form of s into words.
// An input with no letters or digits has no tokens.
func Tokens(s string) []string {
	return strings.Fields(CleanForComparison(s))
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
