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

package entitydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/rs/zerolog/log"
)

func sqlRecordTrack(ctx context.Context, db *sql.DB, track *database.Track, now time.Time) (database.Track, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return database.Track{}, fmt.Errorf("failed to begin track transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to rollback track transaction")
		}
	}()

	_, err = tx.ExecContext(ctx, `
		insert into Tracks (RawLabel, Title, ReleaseYear, PlayCount, AddedAt)
		values (?, ?, ?, ?, ?)
		on conflict (RawLabel) do update set
			PlayCount = PlayCount + excluded.PlayCount;
	`, track.RawLabel, track.Title, track.ReleaseYear, track.PlayCount, now.UnixMilli())
	if err != nil {
		return database.Track{}, fmt.Errorf("failed to upsert track %q: %w", track.RawLabel, err)
	}

	var (
		out     database.Track
		addedAt int64
	)
	err = tx.QueryRowContext(ctx, `
		select DBID, RawLabel, Title, ReleaseYear, PlayCount, AddedAt
		from Tracks where RawLabel = ?;
	`, track.RawLabel).Scan(&out.DBID, &out.RawLabel, &out.Title, &out.ReleaseYear, &out.PlayCount, &addedAt)
	if err != nil {
		return database.Track{}, fmt.Errorf("failed to read back track %q: %w", track.RawLabel, err)
	}
	out.AddedAt = time.UnixMilli(addedAt).UTC()

	stmt, err := tx.PrepareContext(ctx, `
		insert into TrackEntities (TrackDBID, EntityID, Role)
		values (?, ?, ?)
		on conflict do nothing;
	`)
	if err != nil {
		return database.Track{}, fmt.Errorf("failed to prepare track link statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	for _, link := range track.Links {
		if _, err := stmt.ExecContext(ctx, out.DBID, link.EntityID, string(link.Role)); err != nil {
			return database.Track{}, fmt.Errorf("failed to link track %d to %s: %w", out.DBID, link.EntityID, err)
		}
	}
	out.Links = append(out.Links, track.Links...)

	if err := tx.Commit(); err != nil {
		return database.Track{}, fmt.Errorf("failed to commit track transaction: %w", err)
	}
	committed = true
	return out, nil
}

func sqlAddPlays(ctx context.Context, db *sql.DB, trackDBID, plays int64) error {
	err := execOne(ctx, db, "play count update", `
		update Tracks set PlayCount = PlayCount + ? where DBID = ?;
	`, plays, trackDBID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrTrackNotFound, trackDBID)
	}
	return err
}

// sqlCountChildrenFor counts the distinct tracks linked to an entity, their
// total plays and the other entities appearing on those tracks. An unknown
// id has no children.
func sqlCountChildrenFor(ctx context.Context, db *sql.DB, id string) (database.ChildCounts, error) {
	var counts database.ChildCounts
	err := db.QueryRowContext(ctx, `
		select
			count(*),
			coalesce(sum(t.PlayCount), 0),
			(
				select count(distinct other.EntityID)
				from TrackEntities mine
				join TrackEntities other
					on other.TrackDBID = mine.TrackDBID and other.EntityID <> mine.EntityID
				where mine.EntityID = ?1
			)
		from Tracks t
		where t.DBID in (select TrackDBID from TrackEntities where EntityID = ?1);
	`, id).Scan(&counts.SongCount, &counts.PlayCount, &counts.DistinctRelatedEntityCount)
	if err != nil {
		return database.ChildCounts{}, fmt.Errorf("failed to count children of %s: %w", id, err)
	}
	return counts, nil
}
