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

// Package matcher scores how alike two music labels are.
//
// Three metrics are combined: edit distance over the strict form, Jaccard
// overlap of the word sets and Jaccard overlap of per-word Soundex codes.
// The metrics are pure functions; Engine adds adaptive weighting and a
// result cache.
package matcher

import (
	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/normalize"
	"github.com/rs/zerolog/log"
)

// Breakdown holds the individual metric values behind a Score.
type Breakdown struct {
	EditDistance float64 `json:"editDistance"`
	TokenSet     float64 `json:"tokenSet"`
	Phonetic     float64 `json:"phonetic"`
}

// Score is a hybrid similarity along with how it was computed.
type Score struct {
	Breakdown Breakdown `json:"breakdown"`
	Weights   Weights   `json:"weights"`
	Value     float64   `json:"value"`
}

// Engine computes similarities and memoizes them in a Cache. It is safe for
// concurrent use.
type Engine struct {
	cache Cache
}

// NewEngine returns an Engine backed by cache. A nil cache gets a fresh
// LRUCache of DefaultCacheSize.
func NewEngine(cache Cache) *Engine {
	if cache == nil {
		cache = NewLRUCache(DefaultCacheSize)
	}
	return &Engine{cache: cache}
}

// EditDistanceSimilarity is 1 - distance/longest over the strict forms of
// a and b. Inputs that clean to nothing score 0.
func (e *Engine) EditDistanceSimilarity(a, b string) float64 {
	return e.editDistance(normalize.CleanStrict(a), normalize.CleanStrict(b))
}

func (e *Engine) editDistance(sa, sb string) float64 {
	if sa == "" || sb == "" {
		return 0
	}
	if sa == sb {
		return 1
	}

	key := NewPairKey(MetricEditDistance, sa, sb)
	if v, ok := e.cache.Get(key); ok {
		return v
	}
	// Computed without holding the cache lock; a concurrent miss on the
	// same pair stores the same value.
	v := editSimilarity(sa, sb)
	e.cache.Put(key, v)
	return v
}

// Similarity returns the adaptive hybrid score of a and b with its
// breakdown and weights.
func (e *Engine) Similarity(a, b string) Score {
	ta, tb := normalize.Tokens(a), normalize.Tokens(b)

	breakdown := Breakdown{
		EditDistance: e.editDistance(normalize.CleanStrict(a), normalize.CleanStrict(b)),
		TokenSet:     jaccardTokens(ta, tb),
		Phonetic:     phoneticTokens(ta, tb),
	}
	weights := AdaptiveWeights(ta, tb)

	return Score{
		Breakdown: breakdown,
		Weights:   weights,
		Value:     combine(breakdown, weights),
	}
}

// HybridSimilarity is Similarity(a, b).Value, served from the cache when
// possible.
func (e *Engine) HybridSimilarity(a, b string) float64 {
	ca, cb := normalize.CleanForComparison(a), normalize.CleanForComparison(b)
	if ca == "" || cb == "" {
		return 0
	}

	key := NewPairKey(MetricHybrid, ca, cb)
	if v, ok := e.cache.Get(key); ok {
		return v
	}
	v := e.Similarity(ca, cb).Value
	e.cache.Put(key, v)
	return v
}

// ClearCache drops every cached result.
func (e *Engine) ClearCache() {
	stats := e.cache.Stats()
	e.cache.Clear()
	log.Debug().
		Int("entries", stats.Len).
		Uint64("hits", stats.Hits).
		Uint64("misses", stats.Misses).
		Msg("similarity cache cleared")
}

// CacheStats reports the counters of the underlying cache.
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

func combine(b Breakdown, w Weights) float64 {
	// Identical inputs score exactly 1 regardless of float rounding in the
	// weighted sum.
	if b.EditDistance == 1 && b.TokenSet == 1 && b.Phonetic == 1 {
		return 1
	}
	v := b.EditDistance*w.EditDistance + b.TokenSet*w.TokenSet + b.Phonetic*w.Phonetic
	return min(max(v, 0), 1)
}
