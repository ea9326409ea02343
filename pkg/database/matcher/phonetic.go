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

package matcher

import (
	"strings"
	"unicode"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/normalize"
)

const soundexLength = 4

// Soundex returns the four character American Soundex code of word: the
// first letter followed by up to three consonant class digits, padded with
// zeros. Vowels separate repeated classes, h and w do not. Runes outside
// a-z carry no class.
//
// Examples: "Robert" → "R163", "Ashcraft" → "A261", "Tymczak" → "T522"
func Soundex(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}

	code := make([]rune, 0, soundexLength)
	code = append(code, unicode.ToUpper(runes[0]))
	last := soundexClass(runes[0])

	for _, r := range runes[1:] {
		if len(code) == soundexLength {
			break
		}
		class := soundexClass(r)
		switch {
		case class == 0 && (r == 'h' || r == 'w'):
			continue
		case class == 0:
			last = 0
			continue
		case class == last:
			continue
		}
		code = append(code, class)
		last = class
	}

	for len(code) < soundexLength {
		code = append(code, '0')
	}
	return string(code)
}

func soundexClass(r rune) rune {
	switch r {
	case 'b', 'f', 'p', 'v':
		return '1'
	case 'c', 'g', 'j', 'k', 'q', 's', 'x', 'z':
		return '2'
	case 'd', 't':
		return '3'
	case 'l':
		return '4'
	case 'm', 'n':
		return '5'
	case 'r':
		return '6'
	default:
		return 0
	}
}

// PhoneticSimilarity is the Jaccard overlap of the Soundex codes of the
// words in a and b.
func PhoneticSimilarity(a, b string) float64 {
	return phoneticTokens(normalize.Tokens(a), normalize.Tokens(b))
}

func phoneticTokens(a, b []string) float64 {
	return jaccard(soundexSet(a), soundexSet(b))
}

func soundexSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[Soundex(tok)] = struct{}{}
	}
	return set
}
