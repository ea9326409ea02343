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


package resolver

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// BatchResult summarizes a RecomputeAllStatistics run.
type BatchResult struct {
	Kind      database.EntityKind `json:"kind"`
	Total     int                 `json:"total"`
	Updated   int                 `json:"updated"`
	Unchanged int                 `json:"unchanged"`
}

// RecomputeStatistics recounts the child records of an entity and stores
// the result. Stored counters already matching the counts are not
// rewritten.
func (r *Resolver) RecomputeStatistics(ctx context.Context, id string) (database.Statistics, error) {
	e, ok, err := r.store.FindByID(ctx, id)
	if err != nil {
		return database.Statistics{}, fmt.Errorf("failed to find entity %s: %w", id, err)
	}
	if !ok {
		return database.Statistics{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	stats, _, err := r.recompute(ctx, &e)
	return stats, err
}

func (r *Resolver) recompute(ctx context.Context, e *database.CanonicalEntity) (database.Statistics, bool, error) {
	counts, err := r.store.CountChildrenFor(ctx, e.ID)
	if err != nil {
		return database.Statistics{}, false, fmt.Errorf("failed to count children of %s: %w", e.ID, err)
	}
	stats := counts.Statistics()
	if stats.SongCount == e.SongCount && stats.AggregatePlayCount == e.AggregatePlayCount {
		return stats, false, nil
	}
	if err := r.store.UpdateStatistics(ctx, e.ID, stats); err != nil {
		return database.Statistics{}, false, fmt.Errorf("failed to update statistics of %s: %w", e.ID, err)
	}
	return stats, true, nil
}

// RecomputeAllStatistics recomputes every entity of kind. It is safe to
// re-run at any time; the first store error cancels the remaining work.
func (r *Resolver) RecomputeAllStatistics(ctx context.Context, kind database.EntityKind) (BatchResult, error) {
	if !kind.Valid() {
		return BatchResult{}, fmt.Errorf("%w: unknown entity kind %q", ErrInvalidInput, kind)
	}
	entities, err := r.store.FindAllOfKind(ctx, kind)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list %s entities: %w", kind, err)
	}

	var updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.StatsWorkers)
	for i := range entities {
		e := &entities[i]
		g.Go(func() error {
			_, changed, err := r.recompute(gctx, e)
			if err != nil {
				return err
			}
			if changed {
				updated.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err //nolint:wrapcheck // wrapped by recompute
	}

	res := BatchResult{
		Kind:      kind,
		Total:     len(entities),
		Updated:   int(updated.Load()),
		Unchanged: len(entities) - int(updated.Load()),
	}
	log.Info().
		Str("kind", string(kind)).
		Int("total", res.Total).
		Int("updated", res.Updated).
		Msg("recomputed statistics")
	return res, nil
}
