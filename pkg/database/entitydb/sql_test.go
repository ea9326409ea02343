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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	testsqlmock "github.com/ZaparooProject/zaparoo-tracks/pkg/testing/sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entityRowColumns = []string{
	"ID", "Kind", "DisplayName", "NormalizedName", "ParentID",
	"SongCount", "AggregatePlayCount", "CreatedAt", "LastUpdatedAt",
}

func TestSqlFindExact_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ts := testEpoch.UnixMilli()
	mock.ExpectQuery(`select .* from Entities where Kind = \? and NormalizedName = \?`).
		WithArgs("genre", "punk").
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("id-punk", "genre", "Punk", "punk", "id-rock", int64(4), int64(20), ts, ts))

	e, ok, err := sqlFindExact(context.Background(), db, database.KindGenre, "punk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, database.CanonicalEntity{
		ID:                 "id-punk",
		Kind:               database.KindGenre,
		DisplayName:        "Punk",
		NormalizedName:     "punk",
		ParentID:           "id-rock",
		SongCount:          4,
		AggregatePlayCount: 20,
		CreatedAt:          testEpoch,
		LastUpdatedAt:      testEpoch,
	}, e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlFindExact_NoRows(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`select .* from Entities where Kind = \? and NormalizedName = \?`).
		WithArgs("artist", "nobody").
		WillReturnRows(sqlmock.NewRows(entityRowColumns))

	_, ok, err := sqlFindExact(context.Background(), db, database.KindArtist, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlFindExact_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`select .* from Entities where Kind = \? and NormalizedName = \?`).
		WillReturnError(sqlmock.ErrCancelled)

	_, ok, err := sqlFindExact(context.Background(), db, database.KindArtist, "queen")
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), `failed to find artist "queen"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlFindAllOfKind_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`select .* from Entities where Kind = \? order by DBID`).
		ExpectQuery().
		WithArgs("album").
		WillReturnError(sqlmock.ErrCancelled)

	_, err = sqlFindAllOfKind(context.Background(), db, database.KindAlbum)
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.Contains(t, err.Error(), "failed to list album entities")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlInsertIfAbsent_Created(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ts := testEpoch.UnixMilli()
	mock.ExpectBegin()
	mock.ExpectExec(`insert into Entities .* on conflict \(Kind, NormalizedName\) do nothing`).
		WithArgs(sqlmock.AnyArg(), "artist", "Queen", "queen", sqlmock.AnyArg(), ts, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`select .* from Entities where Kind = \? and NormalizedName = \?`).
		WithArgs("artist", "queen").
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("id-queen", "artist", "Queen", "queen", nil, int64(0), int64(0), ts, ts))
	mock.ExpectCommit()

	e, created, err := sqlInsertIfAbsent(context.Background(), db, database.NewEntity{
		Kind:           database.KindArtist,
		NormalizedName: "queen",
		DisplayName:    "Queen",
	}, testEpoch)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "id-queen", e.ID)
	assert.False(t, e.HasParent())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlInsertIfAbsent_Conflict(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ts := testEpoch.Add(-time.Hour).UnixMilli()
	mock.ExpectBegin()
	mock.ExpectExec(`insert into Entities`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`select .* from Entities where Kind = \? and NormalizedName = \?`).
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("id-existing", "artist", "Queen", "queen", nil, int64(7), int64(70), ts, ts))
	mock.ExpectCommit()

	e, created, err := sqlInsertIfAbsent(context.Background(), db, database.NewEntity{
		Kind:           database.KindArtist,
		NormalizedName: "queen",
		DisplayName:    "QUEEN",
	}, testEpoch)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "id-existing", e.ID)
	assert.Equal(t, "Queen", e.DisplayName)
	assert.Equal(t, int64(7), e.SongCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlInsertIfAbsent_ExecErrorRollsBack(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(`insert into Entities`).
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	_, created, err := sqlInsertIfAbsent(context.Background(), db, database.NewEntity{
		Kind:           database.KindGenre,
		NormalizedName: "rock",
		DisplayName:    "Rock",
	}, testEpoch)
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.False(t, created)
	assert.Contains(t, err.Error(), `failed to insert genre "rock"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlInsertIfAbsent_CommitError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ts := testEpoch.UnixMilli()
	mock.ExpectBegin()
	mock.ExpectExec(`insert into Entities`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`select .* from Entities`).
		WillReturnRows(sqlmock.NewRows(entityRowColumns).
			AddRow("id-rock", "genre", "Rock", "rock", nil, int64(0), int64(0), ts, ts))
	mock.ExpectCommit().WillReturnError(sqlmock.ErrCancelled)

	_, _, err = sqlInsertIfAbsent(context.Background(), db, database.NewEntity{
		Kind:           database.KindGenre,
		NormalizedName: "rock",
		DisplayName:    "Rock",
	}, testEpoch)
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.Contains(t, err.Error(), "failed to commit insert transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlUpdateStatistics_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`update Entities\s+set SongCount = \?, AggregatePlayCount = \?, LastUpdatedAt = \?`).
		ExpectExec().
		WithArgs(int64(3), int64(9), testEpoch.UnixMilli(), "id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = sqlUpdateStatistics(context.Background(), db, "id-1",
		database.Statistics{SongCount: 3, AggregatePlayCount: 9}, testEpoch)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlUpdateStatistics_NoRows(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`update Entities`).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = sqlUpdateStatistics(context.Background(), db, "missing", database.Statistics{}, testEpoch)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.Contains(t, err.Error(), "failed to execute statistics update")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlUpdateParent_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`update Entities\s+set ParentID = \?`).
		ExpectExec().
		WillReturnError(sqlmock.ErrCancelled)

	err = sqlUpdateParent(context.Background(), db, "id-punk", "id-rock", testEpoch)
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.Contains(t, err.Error(), "failed to execute parent update")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlCountChildrenFor_Success(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`select\s+count\(\*\)`).
		WithArgs("id-queen").
		WillReturnRows(sqlmock.NewRows([]string{"songs", "plays", "related"}).
			AddRow(int64(2), int64(16), int64(3)))

	counts, err := sqlCountChildrenFor(context.Background(), db, "id-queen")
	require.NoError(t, err)
	assert.Equal(t, database.ChildCounts{
		SongCount:                  2,
		PlayCount:                  16,
		DistinctRelatedEntityCount: 3,
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlCountChildrenFor_DatabaseError(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`select\s+count\(\*\)`).
		WillReturnError(sqlmock.ErrCancelled)

	_, err = sqlCountChildrenFor(context.Background(), db, "id-queen")
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.Contains(t, err.Error(), "failed to count children of id-queen")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlAddPlays_NotFound(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectPrepare(`update Tracks set PlayCount = PlayCount \+ \? where DBID = \?`).
		ExpectExec().
		WithArgs(int64(2), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = sqlAddPlays(context.Background(), db, 42, 2)
	require.ErrorIs(t, err, ErrTrackNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSqlRecordTrack_LinkErrorRollsBack(t *testing.T) {
	t.Parallel()
	db, mock, err := testsqlmock.NewSQLMock()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(`insert into Tracks .* on conflict \(RawLabel\) do update`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`select DBID, RawLabel, Title, ReleaseYear, PlayCount, AddedAt\s+from Tracks`).
		WithArgs("Queen - Innuendo").
		WillReturnRows(sqlmock.NewRows([]string{"DBID", "RawLabel", "Title", "ReleaseYear", "PlayCount", "AddedAt"}).
			AddRow(int64(1), "Queen - Innuendo", "Innuendo", 0, int64(1), testEpoch.UnixMilli()))
	mock.ExpectPrepare(`insert into TrackEntities`).
		ExpectExec().
		WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectRollback()

	_, err = sqlRecordTrack(context.Background(), db, &database.Track{
		RawLabel:  "Queen - Innuendo",
		Title:     "Innuendo",
		PlayCount: 1,
		Links: []database.TrackLink{
			{EntityID: "id-queen", Role: database.RolePrimaryArtist},
		},
	}, testEpoch)
	require.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.Contains(t, err.Error(), "failed to link track 1 to id-queen")
	assert.NoError(t, mock.ExpectationsWereMet())
}
