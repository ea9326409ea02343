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

import (
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/titles"
)

const (
	DefaultDatabaseFile  = "entities.db"
	DefaultMinConfidence = titles.NeutralMusicConfidence
	DefaultIngestWorkers = 4
)

type Database struct {
	// Path is relative to the data directory unless absolute.
	Path string `toml:"path"`
}

type Ingest struct {
	MinConfidence float64 `toml:"min_confidence" validate:"gte=0,lte=1"`
	Workers       int     `toml:"workers" validate:"gt=0"`
}

// Titles lists entries appended to the built-in title catalog.
type Titles struct {
	ExtraNoise      []string `toml:"extra_noise,omitempty,multiline"`
	ExtraQuality    []string `toml:"extra_quality,omitempty,multiline"`
	ExtraMinorWords []string `toml:"extra_minor_words,omitempty,multiline"`
	ExtraAcronyms   []string `toml:"extra_acronyms,omitempty,multiline"`
	ExtraStopwords  []string `toml:"extra_stopwords,omitempty,multiline"`
}

// DatabasePath returns the entity database path, resolving a relative
// path against dataDir.
func (c *Instance) DatabasePath(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	path := c.vals.Database.Path
	if path == "" {
		path = DefaultDatabaseFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

func (c *Instance) SetDatabasePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Database.Path = path
}

func (c *Instance) MinConfidence() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v := c.vals.Ingest.MinConfidence
	if v < 0 || v > 1 {
		return DefaultMinConfidence
	}
	return v
}

func (c *Instance) IngestWorkers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Ingest.Workers <= 0 {
		return DefaultIngestWorkers
	}
	return c.vals.Ingest.Workers
}

// TitleExtension returns the configured title catalog additions.
func (c *Instance) TitleExtension() titles.Extension {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return titles.Extension{
		AnnotationPatterns: slices.Clone(c.vals.Titles.ExtraNoise),
		QualityPatterns:    slices.Clone(c.vals.Titles.ExtraQuality),
		MinorWords:         slices.Clone(c.vals.Titles.ExtraMinorWords),
		Acronyms:           slices.Clone(c.vals.Titles.ExtraAcronyms),
		Stopwords:          slices.Clone(c.vals.Titles.ExtraStopwords),
	}
}
