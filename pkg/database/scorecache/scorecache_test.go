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


package scorecache

import (
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestSaveLoadRestoresRecency(t *testing.T) {
	t.Parallel()

	s, path := openTemp(t)
	src := matcher.NewLRUCache(10)
	k1 := matcher.NewPairKey(matcher.MetricHybrid, "fleetwood mac", "fleetwod mac")
	k2 := matcher.NewPairKey(matcher.MetricEditDistance, "queen", "queens")
	k3 := matcher.NewPairKey(matcher.MetricHybrid, "beyonce", "beyonce knowles")
	src.Put(k1, 0.84)
	src.Put(k2, 0.8333333333333334)
	src.Put(k3, 0.61)

	require.NoError(t, s.Save("v1", src.Entries()))
	require.NoError(t, s.Close())

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	dst := matcher.NewLRUCache(10)
	n, err := s.Load("v1", dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, src.Entries(), dst.Entries())
}

func TestLoadMissingVersion(t *testing.T) {
	t.Parallel()

	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Save("v1", []matcher.CacheEntry{
		{Key: matcher.NewPairKey(matcher.MetricHybrid, "a", "b"), Value: 0.5},
	}))

	dst := matcher.NewLRUCache(4)
	n, err := s.Load("v2", dst)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, dst.Entries())
}

func TestSnapshotVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, matcher.Version+"/abc123", SnapshotVersion("abc123"))
	assert.NotEqual(t, SnapshotVersion("abc123"), SnapshotVersion("abc124"))
}

func TestLoadIgnoresOtherMatcherVersion(t *testing.T) {
	t.Parallel()

	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	const catalog = "abc123"
	stale := "0/" + catalog
	require.NotEqual(t, stale, SnapshotVersion(catalog))
	require.NoError(t, s.Save(stale, []matcher.CacheEntry{
		{Key: matcher.NewPairKey(matcher.MetricHybrid, "queen", "queens"), Value: 0.5},
	}))

	dst := matcher.NewLRUCache(10)
	n, err := s.Load(SnapshotVersion(catalog), dst)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, dst.Entries())
}

func TestSaveReplacesSnapshot(t *testing.T) {
	t.Parallel()

	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	old := matcher.CacheEntry{Key: matcher.NewPairKey(matcher.MetricHybrid, "old", "older"), Value: 0.7}
	fresh := matcher.CacheEntry{Key: matcher.NewPairKey(matcher.MetricHybrid, "new", "newer"), Value: 0.75}
	require.NoError(t, s.Save("v1", []matcher.CacheEntry{old}))
	require.NoError(t, s.Save("v1", []matcher.CacheEntry{fresh}))
	require.NoError(t, s.Save("v2", nil))

	dst := matcher.NewLRUCache(4)
	_, err := s.Load("v1", dst)
	require.NoError(t, err)
	assert.Equal(t, []matcher.CacheEntry{fresh}, dst.Entries())

	versions, err := s.Versions()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"v1", "v2"}, versions)
}

func TestLoadSmallerCacheKeepsMostRecent(t *testing.T) {
	t.Parallel()

	s, _ := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	src := matcher.NewLRUCache(5)
	for _, name := range []string{"a", "b", "c", "d"} {
		src.Put(matcher.NewPairKey(matcher.MetricHybrid, name, name+"x"), 0.5)
	}
	require.NoError(t, s.Save("v1", src.Entries()))

	dst := matcher.NewLRUCache(2)
	_, err := s.Load("v1", dst)
	require.NoError(t, err)
	assert.Equal(t, src.Entries()[:2], dst.Entries())
}

func TestDecodeEntryRejectsCorruptData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		k    []byte
		v    []byte
	}{
		{name: "short key", k: []byte{0, 0}, v: make([]byte, 8)},
		{name: "short value", k: encodeKey(0, matcher.PairKey{A: "a", B: "b"}), v: []byte{1}},
		{name: "no separator", k: []byte{0, 0, 0, 0, 1, 'a', 'b'}, v: make([]byte, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := decodeEntry(tt.k, tt.v)
			require.ErrorIs(t, err, ErrInvalidEntry)
		})
	}
}

func TestOpenLockedFileTimesOut(t *testing.T) {
	t.Parallel()

	s, path := openTemp(t)
	t.Cleanup(func() { _ = s.Close() })

	_, err := Open(path)
	require.Error(t, err)
}
