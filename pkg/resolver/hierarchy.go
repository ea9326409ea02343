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

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/rs/zerolog/log"
)

// SetGenreParent points genreID at parentID, or clears its parent when
// parentID is empty. An assignment that would make genreID its own
// ancestor returns a *CycleError and leaves the hierarchy untouched.
func (r *Resolver) SetGenreParent(ctx context.Context, genreID, parentID string) error {
	r.hierarchyMu.Lock()
	defer r.hierarchyMu.Unlock()

	g, err := r.genre(ctx, genreID)
	if err != nil {
		return err
	}
	if g.ParentID == parentID {
		return nil
	}

	if parentID != "" {
		parent, err := r.genre(ctx, parentID)
		if err != nil {
			return err
		}
		if _, err := r.ancestors(ctx, parent, g.ID, r.opts.MaxGenreDepth-1); err != nil {
			return err
		}
	}

	if err := r.store.UpdateParent(ctx, g.ID, parentID); err != nil {
		return fmt.Errorf("failed to set parent of genre %s: %w", g.ID, err)
	}
	log.Debug().
		Str("genre", g.ID).
		Str("from", g.ParentID).
		Str("to", parentID).
		Msg("genre parent changed")
	return nil
}

// GenreParent returns the parent of a genre. Unknown ids and root genres
// report false.
func (r *Resolver) GenreParent(ctx context.Context, genreID string) (database.CanonicalEntity, bool, error) {
	g, ok, err := r.store.FindByID(ctx, genreID)
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to find genre %s: %w", genreID, err)
	}
	if !ok || !g.HasParent() {
		return database.CanonicalEntity{}, false, nil
	}
	if g.Kind != database.KindGenre {
		return database.CanonicalEntity{}, false, fmt.Errorf("%w: %s is a %s", ErrInvalidInput, genreID, g.Kind)
	}
	p, ok, err := r.store.FindByID(ctx, g.ParentID)
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to find genre %s: %w", g.ParentID, err)
	}
	return p, ok, nil
}

// GenreAncestors returns the ancestors of a genre, nearest first.
func (r *Resolver) GenreAncestors(ctx context.Context, genreID string) ([]database.CanonicalEntity, error) {
	g, err := r.genre(ctx, genreID)
	if err != nil {
		return nil, err
	}
	chain, err := r.ancestors(ctx, g, "", r.opts.MaxGenreDepth)
	if err != nil {
		return nil, err
	}
	return chain[1:], nil
}

func (r *Resolver) genre(ctx context.Context, id string) (database.CanonicalEntity, error) {
	g, ok, err := r.store.FindByID(ctx, id)
	if err != nil {
		return database.CanonicalEntity{}, fmt.Errorf("failed to find genre %s: %w", id, err)
	}
	if !ok {
		return database.CanonicalEntity{}, fmt.Errorf("%w: genre %s", ErrNotFound, id)
	}
	if g.Kind != database.KindGenre {
		return database.CanonicalEntity{}, fmt.Errorf("%w: %s is a %s, not a genre", ErrInvalidInput, id, g.Kind)
	}
	return g, nil
}

// ancestors follows at most limit parent pointers from start and returns
// start followed by its ancestors. Reaching target, or any id twice, is a
// cycle. A genre's parent may have at most MaxGenreDepth-1 ancestors, so no
// genre ever has more than MaxGenreDepth.
func (r *Resolver) ancestors(
	ctx context.Context,
	start database.CanonicalEntity,
	target string,
	limit int,
) ([]database.CanonicalEntity, error) {
	chain := []database.CanonicalEntity{start}
	seen := map[string]struct{}{start.ID: {}}
	cur := start
	for {
		if cur.ID == target {
			return nil, cycleError(target, start.ID, chain)
		}
		if !cur.HasParent() {
			return chain, nil
		}
		if len(chain)-1 >= limit {
			return nil, fmt.Errorf("%w: %s has more than %d ancestors",
				ErrHierarchyTooDeep, start.ID, limit)
		}
		if _, dup := seen[cur.ParentID]; dup {
			return nil, cycleError(cur.ParentID, start.ID, chain)
		}

		next, ok, err := r.store.FindByID(ctx, cur.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to find genre %s: %w", cur.ParentID, err)
		}
		if !ok {
			log.Warn().Str("genre", cur.ID).Str("parent", cur.ParentID).Msg("dangling genre parent")
			return chain, nil
		}
		seen[next.ID] = struct{}{}
		chain = append(chain, next)
		cur = next
	}
}

func cycleError(genreID, parentID string, walked []database.CanonicalEntity) *CycleError {
	ids := make([]string, 0, len(walked)+2)
	ids = append(ids, genreID)
	for i := range walked {
		ids = append(ids, walked[i].ID)
	}
	if ids[len(ids)-1] != genreID {
		ids = append(ids, genreID)
	}
	return &CycleError{GenreID: genreID, ParentID: parentID, Chain: ids}
}
