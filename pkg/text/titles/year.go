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
	"regexp"
	"strconv"
)

const (
	MinReleaseYear = 1900
	MaxReleaseYear = 2100
)

var (
	// The bare form only accepts plausible release years so catalogue
	// numbers and durations are not mistaken for dates.
	yearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(\s*(\d{4})\s*\)`),
		regexp.MustCompile(`\[\s*(\d{4})\s*\]`),
		regexp.MustCompile(`\b(19\d{2}|20[0-2]\d)\b`),
	}

	bracketedYearRegex = regexp.MustCompile(`\s*[\(\[]\s*(?:19|20)\d{2}\s*[\)\]]`)
)

// ExtractYear returns the release year found in title. Parenthesized years
// win over bracketed ones, which win over bare tokens.
//
// Example: "My Song (1999) [Remastered]" → 1999, true
func ExtractYear(title string) (int, bool) {
	for _, re := range yearPatterns {
		for _, m := range re.FindAllStringSubmatch(title, -1) {
			year, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if year >= MinReleaseYear && year <= MaxReleaseYear {
				return year, true
			}
		}
	}
	return 0, false
}
