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


package config

const (
	DefaultMatchThreshold = 0.80
	DefaultCacheSize      = 500
	DefaultMaxGenreDepth  = 10
)

type Matching struct {
	// Threshold is the minimum hybrid similarity for a fuzzy entity match.
	Threshold float64 `toml:"threshold" validate:"gt=0,lte=1"`
	// CacheSize is the number of similarity scores kept in memory.
	CacheSize int `toml:"cache_size" validate:"gt=0"`
	// PersistCache keeps similarity scores between runs next to the
	// entity database.
	PersistCache bool `toml:"persist_cache"`
}

type Genres struct {
	MaxDepth int `toml:"max_depth" validate:"gt=0"`
}

func (c *Instance) MatchThreshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.vals.Matching.Threshold
	if t <= 0 || t > 1 {
		return DefaultMatchThreshold
	}
	return t
}

func (c *Instance) SetMatchThreshold(threshold float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Matching.Threshold = threshold
}

func (c *Instance) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Matching.CacheSize <= 0 {
		return DefaultCacheSize
	}
	return c.vals.Matching.CacheSize
}

func (c *Instance) PersistCache() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Matching.PersistCache
}

// MaxGenreDepth returns the maximum number of ancestors a genre may have.
func (c *Instance) MaxGenreDepth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Genres.MaxDepth <= 0 {
		return DefaultMaxGenreDepth
	}
	return c.vals.Genres.MaxDepth
}
