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
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/config"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/entitydb"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/matcher"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/scorecache"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/ingest"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/resolver"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/titles"
	"github.com/gocarina/gocsv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	FormatTSV   = "tsv"
	FormatJSONL = "jsonl"
	FormatYAML  = "yaml"
	stdioPath   = "-"
)

var ErrUnknownFormat = errors.New("unknown input format")

// Env is what Run reads from and writes to outside the database.
type Env struct {
	Fs      afero.Fs
	Stdin   io.Reader
	Stdout  io.Writer
	Clock   clockwork.Clock
	DataDir string
}

// Report summarizes a Run.
type Report struct {
	Recomputed []resolver.BatchResult `json:"recomputed,omitempty"`
	Ingest     ingest.Summary         `json:"ingest"`
	Links      int                    `json:"links"`
}

// ReadLabels decodes labels in format from r. TSV input needs a header row
// naming the columns; unknown columns are ignored. YAML input is a single
// sequence of label mappings.
func ReadLabels(r io.Reader, format string) ([]ingest.Label, error) {
	var labels []ingest.Label
	switch format {
	case FormatTSV:
		cr := csv.NewReader(r)
		cr.Comma = '\t'
		cr.LazyQuotes = true
		err := gocsv.UnmarshalCSV(cr, &labels)
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode tsv labels: %w", err)
		}
	case FormatJSONL:
		dec := json.NewDecoder(r)
		for {
			var l ingest.Label
			err := dec.Decode(&l)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to decode label %d: %w", len(labels)+1, err)
			}
			labels = append(labels, l)
		}
	case FormatYAML:
		err := yaml.NewDecoder(r).Decode(&labels)
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode yaml labels: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return labels, nil
}

// WriteOutcomes writes one JSON object per outcome.
func WriteOutcomes(w io.Writer, outcomes []ingest.Outcome) error {
	enc := json.NewEncoder(w)
	for i := range outcomes {
		if err := enc.Encode(&outcomes[i]); err != nil {
			return fmt.Errorf("failed to write outcome %d: %w", i, err)
		}
	}
	return nil
}

// Run opens the entity database and performs the work named by flags:
// ingest labels, then apply genre links, then recompute statistics.
func Run(ctx context.Context, cfg *config.Instance, flags *Flags, env Env) (Report, error) {
	var report Report

	links, err := ParseGenreLinks(*flags.GenreParents)
	if err != nil {
		return report, err
	}

	dbPath := *flags.Database
	if dbPath == "" {
		dbPath = cfg.DatabasePath(env.DataDir)
	}
	db, err := entitydb.Open(ctx, dbPath, env.Clock)
	if err != nil {
		return report, fmt.Errorf("failed to open entity database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing entity database")
		}
	}()

	threshold := cfg.MatchThreshold()
	if *flags.Threshold > 0 {
		threshold = *flags.Threshold
	}
	parser, err := titles.NewParser(titles.DefaultCatalog().Extend(cfg.TitleExtension()))
	if err != nil {
		return report, fmt.Errorf("failed to build title parser: %w", err)
	}

	cache := matcher.NewLRUCache(cfg.CacheSize())
	if cfg.PersistCache() {
		version := scorecache.SnapshotVersion(parser.CatalogVersion())
		saveCache, err := restoreScores(filepath.Dir(dbPath), version, cache)
		if err != nil {
			return report, err
		}
		defer saveCache()
	}
	engine := matcher.NewEngine(cache)
	r := resolver.New(db, engine, resolver.Options{
		Threshold:     threshold,
		MaxGenreDepth: cfg.MaxGenreDepth(),
	})

	if *flags.Input != "" {
		ing := ingest.New(r, parser, db, ingest.Options{
			MinConfidence: cfg.MinConfidence(),
			Workers:       cfg.IngestWorkers(),
		})
		report.Ingest, err = runIngest(ctx, ing, flags, env)
		if err != nil {
			return report, err
		}
	}

	for _, link := range links {
		if err := applyGenreLink(ctx, r, link); err != nil {
			return report, err
		}
		report.Links++
	}

	if *flags.Recompute {
		for _, kind := range database.AllKinds {
			res, err := r.RecomputeAllStatistics(ctx, kind)
			if err != nil {
				return report, fmt.Errorf("failed to recompute %s statistics: %w", kind, err)
			}
			report.Recomputed = append(report.Recomputed, res)
		}
	}

	stats := engine.CacheStats()
	log.Debug().
		Uint64("hits", stats.Hits).
		Uint64("misses", stats.Misses).
		Msg("similarity cache")
	return report, nil
}

// restoreScores loads the stored similarity snapshot into cache. The
// returned func writes the snapshot back and closes the store.
func restoreScores(dir, version string, cache *matcher.LRUCache) (func(), error) {
	store, err := scorecache.Open(filepath.Join(dir, scorecache.DefaultFile))
	if err != nil {
		return nil, err
	}
	n, err := store.Load(version, cache)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable score cache")
	}
	log.Info().Int("entries", n).Msg("restored similarity scores")
	return func() {
		if err := store.Save(version, cache.Entries()); err != nil {
			log.Warn().Err(err).Msg("error saving score cache")
		}
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing score cache")
		}
	}, nil
}

func runIngest(ctx context.Context, ing *ingest.Ingester, flags *Flags, env Env) (ingest.Summary, error) {
	in, closeIn, err := openInput(env, *flags.Input)
	if err != nil {
		return ingest.Summary{}, err
	}
	labels, err := ReadLabels(in, *flags.Format)
	closeIn()
	if err != nil {
		return ingest.Summary{}, err
	}

	outcomes, summary, err := ing.IngestAll(ctx, labels)
	if err != nil {
		return summary, fmt.Errorf("failed to ingest labels: %w", err)
	}

	out, closeOut, err := openOutput(env, *flags.Output)
	if err != nil {
		return summary, err
	}
	defer closeOut()
	if err := WriteOutcomes(out, outcomes); err != nil {
		return summary, err
	}
	return summary, nil
}

func applyGenreLink(ctx context.Context, r *resolver.Resolver, link GenreLink) error {
	child, err := r.Resolve(ctx, database.KindGenre, link.Child)
	if err != nil {
		return fmt.Errorf("failed to resolve genre %q: %w", link.Child, err)
	}
	parentID := ""
	if link.Parent != "" {
		parent, err := r.Resolve(ctx, database.KindGenre, link.Parent)
		if err != nil {
			return fmt.Errorf("failed to resolve genre %q: %w", link.Parent, err)
		}
		parentID = parent.ID
	}
	if err := r.SetGenreParent(ctx, child.ID, parentID); err != nil {
		return fmt.Errorf("failed to link %q to %q: %w", link.Child, link.Parent, err)
	}
	return nil
}

func openInput(env Env, path string) (io.Reader, func(), error) {
	if path == stdioPath {
		return env.Stdin, func() {}, nil
	}
	f, err := env.Fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(env Env, path string) (io.Writer, func(), error) {
	if path == stdioPath || path == "" {
		return env.Stdout, func() {}, nil
	}
	f, err := env.Fs.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("error closing output")
		}
	}, nil
}
