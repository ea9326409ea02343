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

import "unicode/utf8"

// Version identifies the metric implementations and weight tiers. Bump it
// whenever a change alters any cached score.
const Version = "1"

// Weights are the share of each metric in a hybrid score. They always sum
// to 1.
type Weights struct {
	EditDistance float64 `json:"editDistance"`
	TokenSet     float64 `json:"tokenSet"`
	Phonetic     float64 `json:"phonetic"`
}

// Sum returns the total of all three weights.
func (w Weights) Sum() float64 {
	return w.EditDistance + w.TokenSet + w.Phonetic
}

// Weights are kept in hundredths until the end so every tier sums to
// exactly 100.
type weightTier struct {
	maxTokens float64
	edit      int
	tokenSet  int
	phonetic  int
}

var weightTiers = []weightTier{
	{maxTokens: 2, edit: 70, tokenSet: 15, phonetic: 15},
	{maxTokens: 3, edit: 50, tokenSet: 30, phonetic: 20},
	{maxTokens: 5, edit: 35, tokenSet: 45, phonetic: 20},
}

var longTier = weightTier{edit: 25, tokenSet: 55, phonetic: 20}

const (
	shortWordLength = 4
	shortWordShift  = 10
)

// AdaptiveWeights picks hybrid weights from the shape of two token lists.
// Short inputs lean on edit distance, long ones on the token set. When the
// average word is shorter than four runes, 0.10 moves from edit distance to
// phonetic.
func AdaptiveWeights(a, b []string) Weights {
	avgTokens := float64(len(a)+len(b)) / 2

	tier := longTier
	for _, t := range weightTiers {
		if avgTokens <= t.maxTokens {
			tier = t
			break
		}
	}

	if total := len(a) + len(b); total > 0 {
		runes := 0
		for _, tok := range a {
			runes += utf8.RuneCountInString(tok)
		}
		for _, tok := range b {
			runes += utf8.RuneCountInString(tok)
		}
		if float64(runes)/float64(total) < shortWordLength {
			tier.edit -= shortWordShift
			tier.phonetic += shortWordShift
		}
	}

	return Weights{
		EditDistance: float64(tier.edit) / 100,
		TokenSet:     float64(tier.tokenSet) / 100,
		Phonetic:     float64(tier.phonetic) / 100,
	}
}
