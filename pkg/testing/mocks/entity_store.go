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


package mocks

import (
	"context"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/stretchr/testify/mock"
)

var _ database.EntityStore = (*MockEntityStore)(nil)

// MockEntityStore is a testify mock of database.EntityStore. Errors set on
// expectations are returned as is so callers can assert they pass through
// unchanged.
type MockEntityStore struct {
	mock.Mock
}

func NewMockEntityStore() *MockEntityStore {
	return &MockEntityStore{}
}

func (m *MockEntityStore) FindExact(
	ctx context.Context,
	kind database.EntityKind,
	normalizedName string,
) (database.CanonicalEntity, bool, error) {
	args := m.Called(ctx, kind, normalizedName)
	e, _ := args.Get(0).(database.CanonicalEntity)
	return e, args.Bool(1), args.Error(2) //nolint:wrapcheck // mock passthrough
}

func (m *MockEntityStore) FindByID(ctx context.Context, id string) (database.CanonicalEntity, bool, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(database.CanonicalEntity)
	return e, args.Bool(1), args.Error(2) //nolint:wrapcheck // mock passthrough
}

func (m *MockEntityStore) FindAllOfKind(
	ctx context.Context,
	kind database.EntityKind,
) ([]database.CanonicalEntity, error) {
	args := m.Called(ctx, kind)
	list, _ := args.Get(0).([]database.CanonicalEntity)
	return list, args.Error(1) //nolint:wrapcheck // mock passthrough
}

func (m *MockEntityStore) InsertIfAbsent(
	ctx context.Context,
	entity database.NewEntity,
) (database.CanonicalEntity, bool, error) {
	args := m.Called(ctx, entity)
	e, _ := args.Get(0).(database.CanonicalEntity)
	return e, args.Bool(1), args.Error(2) //nolint:wrapcheck // mock passthrough
}

func (m *MockEntityStore) UpdateStatistics(ctx context.Context, id string, stats database.Statistics) error {
	args := m.Called(ctx, id, stats)
	return args.Error(0) //nolint:wrapcheck // mock passthrough
}

func (m *MockEntityStore) UpdateParent(ctx context.Context, id, parentID string) error {
	args := m.Called(ctx, id, parentID)
	return args.Error(0) //nolint:wrapcheck // mock passthrough
}

func (m *MockEntityStore) CountChildrenFor(ctx context.Context, id string) (database.ChildCounts, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(database.ChildCounts)
	return c, args.Error(1) //nolint:wrapcheck // mock passthrough
}
