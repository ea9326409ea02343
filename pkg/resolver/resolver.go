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


// Package resolver turns raw artist, album and genre names into canonical
// entities. A name is matched exactly on its normalized key, then fuzzily
// against every entity of the same kind, and only created when neither
// matches. Creation is at most once per (kind, normalized name).
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/matcher"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/normalize"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Defaults applied by New to zero or out of range Options fields.
const (
	DefaultThreshold     = 0.80
	DefaultMaxGenreDepth = 10
	DefaultStatsWorkers  = 4
)

// Options tunes matching and the statistics workers.
type Options struct {
	// Threshold is the minimum hybrid similarity for a fuzzy match.
	Threshold float64
	// MaxGenreDepth bounds every walk up the genre hierarchy.
	MaxGenreDepth int
	// StatsWorkers bounds concurrent recomputes in RecomputeAllStatistics.
	StatsWorkers int
}

// DefaultOptions returns the options New falls back to.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		MaxGenreDepth: DefaultMaxGenreDepth,
		StatsWorkers:  DefaultStatsWorkers,
	}
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxGenreDepth <= 0 {
		o.MaxGenreDepth = DefaultMaxGenreDepth
	}
	if o.StatsWorkers <= 0 {
		o.StatsWorkers = DefaultStatsWorkers
	}
	return o
}

// MatchMethod is how a resolve call found its entity.
type MatchMethod string

const (
	MatchExact   MatchMethod = "exact"
	MatchFuzzy   MatchMethod = "fuzzy"
	MatchCreated MatchMethod = "created"
	// MatchExisting means the insert found a row created concurrently
	// after the exact and fuzzy lookups missed.
	MatchExisting MatchMethod = "existing"
)

// Request is the input to ResolveRequest. ParentHint is the id of an
// existing genre and is only accepted for KindGenre.
type Request struct {
	Kind        database.EntityKind
	DisplayName string
	ParentHint  string
}

// Resolution is a resolved entity and how it was found.
type Resolution struct {
	Entity database.CanonicalEntity `json:"entity"`
	Method MatchMethod              `json:"method"`
	// Score is the hybrid similarity of a fuzzy match, 1 otherwise.
	Score float64 `json:"score"`
}

// Resolver maps display names to canonical entities. It is safe for
// concurrent use.
type Resolver struct {
	store       database.EntityStore
	engine      *matcher.Engine
	creates     singleflight.Group
	hierarchyMu syncutil.Mutex
	opts        Options
}

// New returns a Resolver over store. A nil engine gets a fresh engine with
// its own cache. Zero or out of range options take their defaults.
func New(store database.EntityStore, engine *matcher.Engine, opts Options) *Resolver {
	if engine == nil {
		engine = matcher.NewEngine(nil)
	}
	return &Resolver{
		store:  store,
		engine: engine,
		opts:   opts.withDefaults(),
	}
}

// Options returns the effective options after defaults.
func (r *Resolver) Options() Options {
	return r.opts
}

// Resolve returns the canonical entity of kind for displayName, creating it
// when no existing entity matches.
func (r *Resolver) Resolve(
	ctx context.Context,
	kind database.EntityKind,
	displayName string,
) (database.CanonicalEntity, error) {
	res, err := r.ResolveRequest(ctx, Request{Kind: kind, DisplayName: displayName})
	if err != nil {
		return database.CanonicalEntity{}, err
	}
	return res.Entity, nil
}

// ResolveWithParent is Resolve for genres. parentHint is used only when
// the genre is created; a matched genre keeps its current parent.
func (r *Resolver) ResolveWithParent(
	ctx context.Context,
	kind database.EntityKind,
	displayName string,
	parentHint string,
) (database.CanonicalEntity, error) {
	res, err := r.ResolveRequest(ctx, Request{Kind: kind, DisplayName: displayName, ParentHint: parentHint})
	if err != nil {
		return database.CanonicalEntity{}, err
	}
	return res.Entity, nil
}

// ResolveRequest returns the exact match for the normalized key, else the
// best fuzzy match at or above the threshold. When both miss the entity is
// created. Resolution.Method records which step answered.
func (r *Resolver) ResolveRequest(ctx context.Context, req Request) (Resolution, error) {
	key, err := validate(req)
	if err != nil {
		return Resolution{}, err
	}

	e, ok, err := r.store.FindExact(ctx, req.Kind, key)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to find %s %q: %w", req.Kind, key, err)
	}
	if ok {
		log.Debug().Str("kind", string(req.Kind)).Str("key", key).Str("id", e.ID).Msg("exact match")
		return Resolution{Entity: e, Method: MatchExact, Score: 1}, nil
	}

	if res, ok, err := r.fuzzyMatch(ctx, req.Kind, key); err != nil || ok {
		return res, err
	}

	return r.create(ctx, req, key)
}

func validate(req Request) (string, error) {
	if !req.Kind.Valid() {
		return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalidInput, req.Kind)
	}
	key := normalize.Key(req.DisplayName)
	if key == "" {
		return "", fmt.Errorf("%w: blank %s name %q", ErrInvalidInput, req.Kind, req.DisplayName)
	}
	if req.ParentHint != "" && req.Kind != database.KindGenre {
		return "", fmt.Errorf("%w: parent hint on %s", ErrInvalidInput, req.Kind)
	}
	return key, nil
}

func (r *Resolver) fuzzyMatch(
	ctx context.Context,
	kind database.EntityKind,
	key string,
) (Resolution, bool, error) {
	existing, err := r.store.FindAllOfKind(ctx, kind)
	if err != nil {
		return Resolution{}, false, fmt.Errorf("failed to list %s candidates: %w", kind, err)
	}
	if len(existing) == 0 {
		return Resolution{}, false, nil
	}

	names := make([]string, len(existing))
	for i := range existing {
		names[i] = existing[i].NormalizedName
	}
	m, ok := r.engine.FindMostSimilar(key, names, r.opts.Threshold)
	if !ok {
		return Resolution{}, false, nil
	}

	e := existing[m.Index]
	log.Debug().
		Str("kind", string(kind)).
		Str("key", key).
		Str("match", e.NormalizedName).
		Float64("score", m.Score).
		Msg("fuzzy match")
	return Resolution{Entity: e, Method: MatchFuzzy, Score: m.Score}, true, nil
}

type createResult struct {
	entity  database.CanonicalEntity
	created bool
}

// create collapses concurrent in-process creates of the same key into one
// store call. The store's own atomic insert covers other processes. A
// cancelled caller returns early; the insert itself runs to completion for
// the callers still waiting on it.
func (r *Resolver) create(ctx context.Context, req Request, key string) (Resolution, error) {
	if req.ParentHint != "" {
		if err := r.checkParentHint(ctx, req.ParentHint); err != nil {
			return Resolution{}, err
		}
	}

	// Callers joining the flight keep their own cancellation, so the shared
	// insert must not die with the leader's ctx.
	insertCtx := context.WithoutCancel(ctx)
	flightKey := string(req.Kind) + "\x00" + key
	ch := r.creates.DoChan(flightKey, func() (any, error) {
		display := strings.Join(strings.Fields(req.DisplayName), " ")
		e, created, err := r.store.InsertIfAbsent(insertCtx, database.NewEntity{
			Kind:           req.Kind,
			NormalizedName: key,
			DisplayName:    display,
			ParentID:       req.ParentHint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s %q: %w", req.Kind, key, err)
		}
		return createResult{entity: e, created: created}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Resolution{}, fmt.Errorf("failed to create %s %q: %w", req.Kind, key, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return Resolution{}, res.Err
	}

	cr, _ := res.Val.(createResult)
	method := MatchExisting
	if cr.created {
		method = MatchCreated
	}
	log.Debug().
		Str("kind", string(req.Kind)).
		Str("key", key).
		Str("id", cr.entity.ID).
		Str("method", string(method)).
		Bool("shared", res.Shared).
		Msg("resolved by insert")
	return Resolution{Entity: cr.entity, Method: method, Score: 1}, nil
}

// checkParentHint requires the hint to name an existing genre whose own
// ancestry is within bounds. A new genre has no descendants, so it cannot
// close a cycle.
func (r *Resolver) checkParentHint(ctx context.Context, parentID string) error {
	parent, err := r.genre(ctx, parentID)
	if err != nil {
		return err
	}
	if _, err := r.ancestors(ctx, parent, "", r.opts.MaxGenreDepth-1); err != nil {
		return err
	}
	return nil
}
