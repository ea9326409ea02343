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


// Package ingest feeds raw track labels through title parsing and entity
// resolution, records the resulting tracks and refreshes the statistics of
// every entity a batch touched.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/resolver"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/titles"
	"github.com/rs/zerolog/log"
)

const DefaultWorkers = 4

var ErrEmptyTitle = errors.New("label has no title")

// TrackRecorder stores a track and its entity links. entitydb.EntityDB
// implements it.
type TrackRecorder interface {
	RecordTrack(ctx context.Context, track *database.Track) (database.Track, error)
}

// Label is one raw track description. Artist may be empty when Title has
// the "Artist - Title" form.
type Label struct {
	Title  string `json:"title" csv:"title" yaml:"title"`
	Artist string `json:"artist,omitempty" csv:"artist" yaml:"artist,omitempty"`
	Album  string `json:"album,omitempty" csv:"album" yaml:"album,omitempty"`
	Genre  string `json:"genre,omitempty" csv:"genre" yaml:"genre,omitempty"`
	Plays  int64  `json:"plays,omitempty" csv:"plays" yaml:"plays,omitempty"`
}

// RawLabel is the identity a track is recorded under.
func (l *Label) RawLabel() string {
	title := strings.Join(strings.Fields(l.Title), " ")
	artist := strings.Join(strings.Fields(l.Artist), " ")
	if artist == "" {
		return title
	}
	return artist + " - " + title
}

// Outcome is the result of ingesting one label. Skipped labels carry the
// confidence that excluded them and nothing else.
type Outcome struct {
	Parsed     titles.ParsedTitle    `json:"parsed"`
	Track      database.Track        `json:"track"`
	Genre      *resolver.Resolution  `json:"genre,omitempty"`
	Album      *resolver.Resolution  `json:"album,omitempty"`
	Artist     *resolver.Resolution  `json:"artist,omitempty"`
	Label      Label                 `json:"label"`
	Featured   []resolver.Resolution `json:"featured,omitempty"`
	Confidence float64               `json:"confidence"`
	Skipped    bool                  `json:"skipped"`
}

func (o *Outcome) entityIDs() []string {
	var ids []string
	for _, r := range []*resolver.Resolution{o.Artist, o.Album, o.Genre} {
		if r != nil {
			ids = append(ids, r.Entity.ID)
		}
	}
	for i := range o.Featured {
		ids = append(ids, o.Featured[i].Entity.ID)
	}
	return ids
}

type Options struct {
	// MinConfidence is the music confidence below which a label is skipped.
	MinConfidence float64
	// Workers bounds concurrent label ingestion in IngestAll.
	Workers int
}

type Ingester struct {
	resolver *resolver.Resolver
	parser   *titles.Parser
	recorder TrackRecorder
	opts     Options
}

// New returns an Ingester. A nil parser uses the default catalog.
func New(r *resolver.Resolver, p *titles.Parser, recorder TrackRecorder, opts Options) *Ingester {
	if p == nil {
		p = titles.Default()
	}
	if opts.MinConfidence < 0 || opts.MinConfidence > 1 {
		opts.MinConfidence = titles.NeutralMusicConfidence
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Ingester{resolver: r, parser: p, recorder: recorder, opts: opts}
}

// Ingest resolves and records a single label. Statistics are not
// recomputed; IngestAll does that once per batch.
func (in *Ingester) Ingest(ctx context.Context, label Label) (Outcome, error) {
	out := Outcome{Label: label}

	title, credit := label.Title, label.Artist
	if strings.TrimSpace(credit) == "" {
		if artist, rest, ok := titles.SplitArtistTitle(title); ok {
			credit, title = artist, rest
		}
	}

	out.Confidence = in.parser.CalculateMusicConfidence(title, credit)
	if out.Confidence < in.opts.MinConfidence {
		out.Skipped = true
		log.Debug().Str("title", label.Title).Float64("confidence", out.Confidence).Msg("skipped non-music label")
		return out, nil
	}

	out.Parsed = in.parser.ParseTitle(title)
	if out.Parsed.MainTitle == "" {
		return out, fmt.Errorf("%w: %q", ErrEmptyTitle, label.Title)
	}

	primary, creditFeatured := in.parser.ParseArtist(credit)
	links := newLinkSet()

	if primary != "" {
		res, err := in.resolver.ResolveRequest(ctx, resolver.Request{Kind: database.KindArtist, DisplayName: primary})
		if err != nil {
			return out, err //nolint:wrapcheck // resolver errors are already descriptive
		}
		out.Artist = &res
		links.add(res.Entity.ID, database.RolePrimaryArtist)
	}

	for _, name := range append(creditFeatured, out.Parsed.FeaturedArtists...) {
		res, err := in.resolver.ResolveRequest(ctx, resolver.Request{Kind: database.KindArtist, DisplayName: name})
		if err != nil {
			return out, err //nolint:wrapcheck // resolver errors are already descriptive
		}
		if links.add(res.Entity.ID, database.RoleFeaturedArtist) {
			out.Featured = append(out.Featured, res)
		}
	}

	if strings.TrimSpace(label.Album) != "" {
		res, err := in.resolver.ResolveRequest(ctx, resolver.Request{Kind: database.KindAlbum, DisplayName: label.Album})
		if err != nil {
			return out, err //nolint:wrapcheck // resolver errors are already descriptive
		}
		out.Album = &res
		links.add(res.Entity.ID, database.RoleAlbum)
	}

	if strings.TrimSpace(label.Genre) != "" {
		res, err := in.resolver.ResolveRequest(ctx, resolver.Request{Kind: database.KindGenre, DisplayName: label.Genre})
		if err != nil {
			return out, err //nolint:wrapcheck // resolver errors are already descriptive
		}
		out.Genre = &res
		links.add(res.Entity.ID, database.RoleGenre)
	}

	track, err := in.recorder.RecordTrack(ctx, &database.Track{
		RawLabel:    label.RawLabel(),
		Title:       out.Parsed.MainTitle,
		ReleaseYear: out.Parsed.ReleaseYear,
		PlayCount:   max(label.Plays, 0),
		Links:       links.list,
	})
	if err != nil {
		return out, fmt.Errorf("failed to record track %q: %w", label.RawLabel(), err)
	}
	out.Track = track
	return out, nil
}

// linkSet keeps one link per (entity, role), in insertion order. A primary
// artist also credited as featured keeps only the primary link.
type linkSet struct {
	seen map[string]struct{}
	list []database.TrackLink
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

func (s *linkSet) add(id string, role database.TrackRole) bool {
	key := id
	if role != database.RolePrimaryArtist && role != database.RoleFeaturedArtist {
		key = id + "\x00" + string(role)
	}
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.list = append(s.list, database.TrackLink{EntityID: id, Role: role})
	return true
}
