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

package titles

import (
	"strings"
	"unicode/utf8"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/normalize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const wordEdgePunctuation = `()[]{}"'.,!?:;¡¿«»“”‘’`

// contractionSuffixes stay lowercase after an apostrophe ("Don't", "It's").
var contractionSuffixes = map[string]struct{}{
	"s": {}, "t": {}, "d": {}, "m": {}, "ll": {}, "re": {}, "ve": {},
}

// ToTitleCase capitalizes every word of s. Minor words stay lowercase
// unless first or last, acronyms take their catalog casing anywhere, and
// hyphenated or apostrophe words are capitalized per segment.
//
// Examples:
//   - "the sound of silence" → "The Sound of Silence"
//   - "dj snake - taki taki" → "DJ Snake - Taki Taki"
//   - "jay-z o'brien" → "Jay-Z O'Brien"
func (p *Parser) ToTitleCase(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	// A Caser keeps state between calls and must not be shared.
	caser := cases.Title(language.Und)

	for i, word := range words {
		start := strings.IndexFunc(word, func(r rune) bool {
			return !strings.ContainsRune(wordEdgePunctuation, r)
		})
		if start < 0 {
			continue
		}
		end := strings.LastIndexFunc(word, func(r rune) bool {
			return !strings.ContainsRune(wordEdgePunctuation, r)
		})
		_, size := utf8.DecodeRuneInString(word[end:])
		end += size

		prefix, core, suffix := word[:start], word[start:end], word[end:]
		key := normalize.Key(core)

		switch {
		case p.acronyms[strings.ToLower(core)] != "":
			core = p.acronyms[strings.ToLower(core)]
		case p.isMinor(key, i, len(words)):
			core = strings.ToLower(core)
		default:
			core = capitalizeSegments(caser, core)
		}
		words[i] = prefix + core + suffix
	}
	return strings.Join(words, " ")
}

func (p *Parser) isMinor(key string, index, total int) bool {
	if index == 0 || index == total-1 {
		return false
	}
	_, ok := p.minorWords[key]
	return ok
}

func capitalizeSegments(caser cases.Caser, word string) string {
	hyphenated := strings.Split(word, "-")
	for i, part := range hyphenated {
		apostrophes := strings.Split(part, "'")
		for j, seg := range apostrophes {
			if j > 0 {
				if _, ok := contractionSuffixes[strings.ToLower(seg)]; ok {
					apostrophes[j] = strings.ToLower(seg)
					continue
				}
			}
			apostrophes[j] = caser.String(seg)
		}
		hyphenated[i] = strings.Join(apostrophes, "'")
	}
	return strings.Join(hyphenated, "-")
}
