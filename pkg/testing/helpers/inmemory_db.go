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
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/entitydb"
	"github.com/jonboulle/clockwork"
)

// NewTempEntityDB opens a migrated entity database in a temp directory. The
// database is closed when the test finishes. A nil clock uses the real clock.
func NewTempEntityDB(t *testing.T, clock clockwork.Clock) *entitydb.EntityDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "entities_test.db")
	db, err := entitydb.Open(context.Background(), dbPath, clock)
	if err != nil {
		t.Fatalf("Failed to open test entity database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close entity database: %v", err)
		}
	})
	return db
}
