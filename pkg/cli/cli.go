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


package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/config"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/helpers"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
)

const AppName = "zaparoo-tracks"

// AppVersion is set at build time.
var AppVersion = "DEVELOPMENT"

// Settings are the directories the CLI reads and writes.
type Settings struct {
	ConfigDir string
	DataDir   string
	LogDir    string
}

// DefaultSettings places everything under the XDG base directories.
func DefaultSettings() Settings {
	return Settings{
		ConfigDir: filepath.Join(xdg.ConfigHome, AppName),
		DataDir:   filepath.Join(xdg.DataHome, AppName),
		LogDir:    filepath.Join(xdg.StateHome, AppName),
	}
}

type Flags struct {
	ConfigDir    *string
	Database     *string
	Input        *string
	Output       *string
	Format       *string
	GenreParents *string
	Threshold    *float64
	Recompute    *bool
	Debug        *bool
	Version      *bool
}

// SetupFlags registers the CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		ConfigDir: fs.String(
			"config",
			"",
			"config directory (default XDG config home)",
		),
		Database: fs.String(
			"db",
			"",
			"entity database path (overrides config)",
		),
		Input: fs.String(
			"input",
			"",
			"label file to ingest, - for stdin",
		),
		Output: fs.String(
			"output",
			"-",
			"where to write ingest outcomes as JSON lines, - for stdout",
		),
		Format: fs.String(
			"format",
			FormatTSV,
			"input format: tsv (with header row), jsonl or yaml",
		),
		GenreParents: fs.String(
			"genre-parent",
			"",
			"genre links to apply, as child=parent pairs separated by ;",
		),
		Threshold: fs.Float64(
			"threshold",
			0,
			"fuzzy match threshold (overrides config when set)",
		),
		Recompute: fs.Bool(
			"recompute",
			false,
			"recompute statistics for every entity after ingesting",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// GenreLink is one child=parent pair from the genre-parent flag.
type GenreLink struct {
	Child  string
	Parent string
}

// ParseGenreLinks parses "child=parent;child=parent". An empty parent
// clears the child's parent.
func ParseGenreLinks(s string) ([]GenreLink, error) {
	var links []GenreLink
	for _, part := range strings.Split(s, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		child, parent, ok := strings.Cut(part, "=")
		child = strings.TrimSpace(child)
		if !ok || child == "" {
			return nil, fmt.Errorf("invalid genre link %q: want child=parent", part)
		}
		links = append(links, GenreLink{Child: child, Parent: strings.TrimSpace(parent)})
	}
	return links, nil
}

// Setup creates the directories in settings, starts logging to the log
// directory and writers, and loads the config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(settings Settings, defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	if err := helpers.EnsureDirectories(settings.ConfigDir, settings.DataDir, settings.LogDir); err != nil {
		return nil, err
	}
	if err := helpers.InitLogging(settings.LogDir, writers); err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}

	cfg, err := config.NewConfig(settings.ConfigDir, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	helpers.SetDebugLogging(cfg.DebugLogging())

	log.Info().
		Str("version", AppVersion).
		Str("config", cfg.Path()).
		Str("data", settings.DataDir).
		Msg("zaparoo tracks starting")
	return cfg, nil
}
