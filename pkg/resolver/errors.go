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
	"errors"
	"strings"
)

var (
	// ErrInvalidInput is returned before any store interaction when the
	// request itself is unusable, e.g. a blank display name.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCycle matches every *CycleError.
	ErrCycle = errors.New("genre hierarchy cycle")
	// ErrHierarchyTooDeep is returned when an ancestor walk reaches the
	// configured maximum depth without finding a root genre.
	ErrHierarchyTooDeep = errors.New("genre hierarchy too deep")
	// ErrNotFound is returned by operations addressing an entity id that
	// does not exist.
	ErrNotFound = errors.New("entity not found")
)

// CycleError reports a rejected parent assignment. Chain lists the ids
// walked from the genre through the prospective parent back to the genre.
type CycleError struct {
	GenreID  string
	ParentID string
	Chain    []string
}

func (e *CycleError) Error() string {
	return "genre " + e.GenreID + " cannot have parent " + e.ParentID +
		": cycle " + strings.Join(e.Chain, " -> ")
}

func (*CycleError) Is(target error) bool {
	return target == ErrCycle
}
