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

package database

import (
	"context"
	"fmt"
	"time"
)

/*
 * The store contract lives at the generic package level so the resolver
 * does not import a concrete implementation. See entitydb for SQLite.
 */

// EntityKind is the type of a canonical entity.
type EntityKind string

const (
	KindArtist EntityKind = "artist"
	KindAlbum  EntityKind = "album"
	KindGenre  EntityKind = "genre"
)

// AllKinds lists every EntityKind in a stable order.
var AllKinds = []EntityKind{KindArtist, KindAlbum, KindGenre}

// Valid reports whether k is a known kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindArtist, KindAlbum, KindGenre:
		return true
	default:
		return false
	}
}

// ParseEntityKind converts a kind name to an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	k := EntityKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown entity kind: %q", s)
	}
	return k, nil
}

/*
 * Structs for SQL records
 */

// CanonicalEntity is the single deduplicated record that every raw mention
// of an artist, album or genre resolves to.
type CanonicalEntity struct {
	CreatedAt          time.Time  `json:"createdAt"`
	LastUpdatedAt      time.Time  `json:"lastUpdatedAt"`
	ID                 string     `json:"id"`
	Kind               EntityKind `json:"kind"`
	DisplayName        string     `json:"displayName"`
	NormalizedName     string     `json:"normalizedName"`
	ParentID           string     `json:"parentId,omitempty"` // genres only; empty for none
	SongCount          int64      `json:"songCount"`
	AggregatePlayCount int64      `json:"aggregatePlayCount"`
}

// HasParent reports whether the entity points at a parent genre.
func (e *CanonicalEntity) HasParent() bool {
	return e.ParentID != ""
}

// NewEntity is the input to EntityStore.InsertIfAbsent.
type NewEntity struct {
	Kind           EntityKind
	NormalizedName string
	DisplayName    string
	ParentID       string
}

// Statistics are the aggregate counters stored on an entity.
type Statistics struct {
	SongCount          int64 `json:"songCount"`
	AggregatePlayCount int64 `json:"aggregatePlayCount"`
}

// ChildCounts are the current counts of child records referencing an
// entity, as reported by the store.
type ChildCounts struct {
	SongCount                  int64 `json:"songCount"`
	DistinctRelatedEntityCount int64 `json:"distinctRelatedEntityCount"`
	PlayCount                  int64 `json:"playCount"`
}

// Statistics converts the counts into the stored counters.
func (c ChildCounts) Statistics() Statistics {
	return Statistics{SongCount: c.SongCount, AggregatePlayCount: c.PlayCount}
}

// EntityStore is the persistence contract consumed by the resolver. Lookups
// report absence with a false boolean, never an error. InsertIfAbsent must
// be atomic per (kind, normalized name): when a row already exists it is
// returned with created set to false.
type EntityStore interface {
	FindExact(ctx context.Context, kind EntityKind, normalizedName string) (CanonicalEntity, bool, error)
	FindByID(ctx context.Context, id string) (CanonicalEntity, bool, error)
	FindAllOfKind(ctx context.Context, kind EntityKind) ([]CanonicalEntity, error)
	InsertIfAbsent(ctx context.Context, entity NewEntity) (e CanonicalEntity, created bool, err error)
	UpdateStatistics(ctx context.Context, id string, stats Statistics) error
	UpdateParent(ctx context.Context, id, parentID string) error
	CountChildrenFor(ctx context.Context, id string) (ChildCounts, error)
}

// TrackRole is how an entity relates to a track.
type TrackRole string

const (
	RolePrimaryArtist  TrackRole = "artist"
	RoleFeaturedArtist TrackRole = "featured"
	RoleAlbum          TrackRole = "album"
	RoleGenre          TrackRole = "genre"
)

// TrackLink ties a track to one canonical entity.
type TrackLink struct {
	EntityID string    `json:"entityId"`
	Role     TrackRole `json:"role"`
}

// Track is a child record counted by CountChildrenFor.
type Track struct {
	AddedAt     time.Time   `json:"addedAt"`
	Title       string      `json:"title"`
	RawLabel    string      `json:"rawLabel"`
	Links       []TrackLink `json:"links"`
	DBID        int64       `json:"id"`
	ReleaseYear int         `json:"releaseYear,omitempty"`
	PlayCount   int64       `json:"playCount"`
}
