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
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func sqlMigrateUp(ctx context.Context, db *sql.DB) error {
	version, err := database.MigrateUp(ctx, db, migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to run entity database migrations: %w", err)
	}
	log.Debug().Int64("version", version).Msg("entity database schema ready")
	return nil
}

//goland:noinspection SqlWithoutWhere
func sqlTruncate(ctx context.Context, db *sql.DB) error {
	sqlStmt := `
	delete from TrackEntities;
	delete from Tracks;
	delete from Entities;
	vacuum;
	`
	_, err := db.ExecContext(ctx, sqlStmt)
	if err != nil {
		return fmt.Errorf("failed to truncate database: %w", err)
	}
	return nil
}

const entityColumns = `
	ID, Kind, DisplayName, NormalizedName, ParentID,
	SongCount, AggregatePlayCount, CreatedAt, LastUpdatedAt`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (database.CanonicalEntity, error) {
	var (
		e                    database.CanonicalEntity
		kind                 string
		parentID             sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&e.ID,
		&kind,
		&e.DisplayName,
		&e.NormalizedName,
		&parentID,
		&e.SongCount,
		&e.AggregatePlayCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return database.CanonicalEntity{}, err //nolint:wrapcheck // callers wrap or test for sql.ErrNoRows
	}
	e.Kind = database.EntityKind(kind)
	e.ParentID = parentID.String
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	e.LastUpdatedAt = time.UnixMilli(updatedAt).UTC()
	return e, nil
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func sqlFindExact(
	ctx context.Context,
	db *sql.DB,
	kind database.EntityKind,
	normalizedName string,
) (database.CanonicalEntity, bool, error) {
	row := db.QueryRowContext(ctx,
		`select`+entityColumns+` from Entities where Kind = ? and NormalizedName = ?;`,
		string(kind), normalizedName,
	)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return database.CanonicalEntity{}, false, nil
	}
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to find %s %q: %w", kind, normalizedName, err)
	}
	return e, true, nil
}

func sqlFindByID(ctx context.Context, db *sql.DB, id string) (database.CanonicalEntity, bool, error) {
	row := db.QueryRowContext(ctx, `select`+entityColumns+` from Entities where ID = ?;`, id)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return database.CanonicalEntity{}, false, nil
	}
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to find entity %s: %w", id, err)
	}
	return e, true, nil
}

func sqlFindAllOfKind(ctx context.Context, db *sql.DB, kind database.EntityKind) ([]database.CanonicalEntity, error) {
	stmt, err := db.PrepareContext(ctx,
		`select`+entityColumns+` from Entities where Kind = ? order by DBID;`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare entity list statement: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	rows, err := stmt.QueryContext(ctx, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entities: %w", kind, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	list := make([]database.CanonicalEntity, 0)
	for rows.Next() {
		e, scanErr := scanEntity(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan entity row: %w", scanErr)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entity rows: %w", err)
	}
	return list, nil
}

// sqlInsertIfAbsent relies on the (Kind, NormalizedName) constraint: a
// conflicting insert is a no-op and the surviving row is read back in the
// same transaction.
func sqlInsertIfAbsent(
	ctx context.Context,
	db *sql.DB,
	entity database.NewEntity,
	now time.Time,
) (database.CanonicalEntity, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to begin insert transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("failed to rollback insert transaction")
		}
	}()

	ts := now.UnixMilli()
	res, err := tx.ExecContext(ctx, `
		insert into Entities (
			ID, Kind, DisplayName, NormalizedName, ParentID,
			SongCount, AggregatePlayCount, CreatedAt, LastUpdatedAt
		) values (?, ?, ?, ?, ?, 0, 0, ?, ?)
		on conflict (Kind, NormalizedName) do nothing;
	`,
		uuid.NewString(),
		string(entity.Kind),
		entity.DisplayName,
		entity.NormalizedName,
		nullableID(entity.ParentID),
		ts,
		ts,
	)
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to insert %s %q: %w",
			entity.Kind, entity.NormalizedName, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	row := tx.QueryRowContext(ctx,
		`select`+entityColumns+` from Entities where Kind = ? and NormalizedName = ?;`,
		string(entity.Kind), entity.NormalizedName,
	)
	e, err := scanEntity(row)
	if err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to read back %s %q: %w",
			entity.Kind, entity.NormalizedName, err)
	}

	if err := tx.Commit(); err != nil {
		return database.CanonicalEntity{}, false, fmt.Errorf("failed to commit insert transaction: %w", err)
	}
	committed = true

	return e, affected > 0, nil
}

func execOne(ctx context.Context, db *sql.DB, what, query string, args ...any) error {
	stmt, err := db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", what, err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql statement")
		}
	}()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", what, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to execute %s: %w", what, sql.ErrNoRows)
	}
	return nil
}

func sqlUpdateStatistics(
	ctx context.Context,
	db *sql.DB,
	id string,
	stats database.Statistics,
	now time.Time,
) error {
	return execOne(ctx, db, "statistics update", `
		update Entities
		set SongCount = ?, AggregatePlayCount = ?, LastUpdatedAt = ?
		where ID = ?;
	`, stats.SongCount, stats.AggregatePlayCount, now.UnixMilli(), id)
}

func sqlUpdateParent(ctx context.Context, db *sql.DB, id, parentID string, now time.Time) error {
	return execOne(ctx, db, "parent update", `
		update Entities
		set ParentID = ?, LastUpdatedAt = ?
		where ID = ?;
	`, nullableID(parentID), now.UnixMilli(), id)
}
