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
	"sort"

	"github.com/rs/zerolog/log"
)

// Match is a candidate that cleared a similarity threshold.
type Match struct {
	Candidate string  `json:"candidate"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

// debugScoreFloor is the score above which candidate evaluations are logged.
const debugScoreFloor = 0.7

// FindMostSimilar returns the candidate with the highest hybrid score at or
// above minSimilarity. On equal scores the earlier candidate wins. ok is
// false when nothing qualifies.
func (e *Engine) FindMostSimilar(target string, candidates []string, minSimilarity float64) (Match, bool) {
	best := Match{Index: -1}
	for i, candidate := range candidates {
		score := e.score(target, candidate, minSimilarity)
		if score < minSimilarity {
			continue
		}
		if best.Index < 0 || score > best.Score {
			best = Match{Candidate: candidate, Index: i, Score: score}
		}
	}
	return best, best.Index >= 0
}

// FindAllSimilar returns every candidate scoring at or above minSimilarity,
// best first. Equal scores keep their input order.
func (e *Engine) FindAllSimilar(target string, candidates []string, minSimilarity float64) []Match {
	var matches []Match
	for i, candidate := range candidates {
		score := e.score(target, candidate, minSimilarity)
		if score >= minSimilarity {
			matches = append(matches, Match{Candidate: candidate, Index: i, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

func (e *Engine) score(target, candidate string, minSimilarity float64) float64 {
	score := e.HybridSimilarity(target, candidate)

	// Debug logging for close matches (helps troubleshoot fuzzy matching)
	if score > debugScoreFloor {
		log.Debug().
			Str("target", target).
			Str("candidate", candidate).
			Float64("similarity", score).
			Float64("minSimilarity", minSimilarity).
			Msg("fuzzy match candidate evaluation")
	}
	return score
}
