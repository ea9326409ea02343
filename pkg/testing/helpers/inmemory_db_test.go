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


package helpers

import (
	"context"
	"testing"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTempEntityDB(t *testing.T) {
	t.Parallel()
	db := NewTempEntityDB(t, nil)
	ctx := context.Background()

	e, created, err := db.InsertIfAbsent(ctx, database.NewEntity{
		Kind:           database.KindArtist,
		NormalizedName: "queen",
		DisplayName:    "Queen",
	})
	require.NoError(t, err)
	assert.True(t, created)

	got, ok, err := db.FindExact(ctx, database.KindArtist, "queen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e.ID, got.ID)
}

func TestNewTempEntityDB_Isolated(t *testing.T) {
	t.Parallel()
	a := NewTempEntityDB(t, nil)
	b := NewTempEntityDB(t, nil)
	ctx := context.Background()

	_, _, err := a.InsertIfAbsent(ctx, database.NewEntity{
		Kind:           database.KindGenre,
		NormalizedName: "rock",
		DisplayName:    "Rock",
	})
	require.NoError(t, err)

	list, err := b.FindAllOfKind(ctx, database.KindGenre)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotEqual(t, a.GetDBPath(), b.GetDBPath())
}
