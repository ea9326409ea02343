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

// Package entitydb is the SQLite implementation of database.EntityStore.
//
// Uniqueness of (kind, normalized name) is enforced by a table constraint,
// so find-or-create stays atomic across connections and processes.
package entitydb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNullSQL       = errors.New("EntityDB is not connected")
	ErrTrackNotFound = errors.New("track not found")
)

const sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000&_foreign_keys=on"

var _ database.EntityStore = (*EntityDB)(nil)

type EntityDB struct {
	sql   *sql.DB
	clock clockwork.Clock
	path  string
}

// New returns an unconnected EntityDB. Call Open or SetSQLForTesting before
// use. A nil clock uses the real clock.
func New(clock clockwork.Clock) *EntityDB {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &EntityDB{clock: clock}
}

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(ctx context.Context, path string, clock clockwork.Clock) (*EntityDB, error) {
	db := New(clock)
	db.path = path
	if err := db.Open(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *EntityDB) Open(ctx context.Context) error {
	if db.path == "" {
		return errors.New("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(db.path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlInstance, err := sql.Open("sqlite3", db.path+sqliteConnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.sql = sqlInstance
	return db.Allocate(ctx)
}

func (db *EntityDB) GetDBPath() string {
	return db.path
}

func (db *EntityDB) UnsafeGetSQLDb() *sql.DB {
	return db.sql
}

func (db *EntityDB) Allocate(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlMigrateUp(ctx, db.sql)
}

func (db *EntityDB) Truncate(ctx context.Context) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlTruncate(ctx, db.sql)
}

func (db *EntityDB) Close() error {
	if db.sql == nil {
		return nil
	}
	err := db.sql.Close()
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// SetSQLForTesting allows injection of a sql.DB instance for testing purposes.
// The schema is not migrated, so it also works with sqlmock connections.
func (db *EntityDB) SetSQLForTesting(sqlDB *sql.DB) {
	db.sql = sqlDB
}

func (db *EntityDB) FindExact(
	ctx context.Context,
	kind database.EntityKind,
	normalizedName string,
) (database.CanonicalEntity, bool, error) {
	if db.sql == nil {
		return database.CanonicalEntity{}, false, ErrNullSQL
	}
	return sqlFindExact(ctx, db.sql, kind, normalizedName)
}

func (db *EntityDB) FindByID(ctx context.Context, id string) (database.CanonicalEntity, bool, error) {
	if db.sql == nil {
		return database.CanonicalEntity{}, false, ErrNullSQL
	}
	return sqlFindByID(ctx, db.sql, id)
}

func (db *EntityDB) FindAllOfKind(ctx context.Context, kind database.EntityKind) ([]database.CanonicalEntity, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	return sqlFindAllOfKind(ctx, db.sql, kind)
}

func (db *EntityDB) InsertIfAbsent(
	ctx context.Context,
	entity database.NewEntity,
) (database.CanonicalEntity, bool, error) {
	if db.sql == nil {
		return database.CanonicalEntity{}, false, ErrNullSQL
	}
	return sqlInsertIfAbsent(ctx, db.sql, entity, db.clock.Now())
}

func (db *EntityDB) UpdateStatistics(ctx context.Context, id string, stats database.Statistics) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpdateStatistics(ctx, db.sql, id, stats, db.clock.Now())
}

func (db *EntityDB) UpdateParent(ctx context.Context, id, parentID string) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlUpdateParent(ctx, db.sql, id, parentID, db.clock.Now())
}

func (db *EntityDB) CountChildrenFor(ctx context.Context, id string) (database.ChildCounts, error) {
	if db.sql == nil {
		return database.ChildCounts{}, ErrNullSQL
	}
	return sqlCountChildrenFor(ctx, db.sql, id)
}

// RecordTrack inserts track, or adds its play count to the existing track
// with the same raw label, and links it to every entity in track.Links.
func (db *EntityDB) RecordTrack(ctx context.Context, track *database.Track) (database.Track, error) {
	if db.sql == nil {
		return database.Track{}, ErrNullSQL
	}
	return sqlRecordTrack(ctx, db.sql, track, db.clock.Now())
}

// AddPlays increments the play count of a track.
func (db *EntityDB) AddPlays(ctx context.Context, trackDBID, plays int64) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlAddPlays(ctx, db.sql, trackDBID, plays)
}
