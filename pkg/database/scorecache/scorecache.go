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


// Package scorecache persists similarity cache snapshots between runs in a
// bbolt file. Snapshots are stored per SnapshotVersion, so a changed title
// catalog or scoring change starts from an empty cache.
package scorecache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/matcher"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

const (
	DefaultFile  = "similarity.db"
	bucketPrefix = "scores:"
	openTimeout  = time.Second
)

var ErrInvalidEntry = errors.New("invalid cache entry")

// SnapshotVersion is the snapshot key for scores computed by this build's
// matcher against the given title catalog version.
func SnapshotVersion(catalogVersion string) string {
	return matcher.Version + "/" + catalogVersion
}

type Store struct {
	bdb *bolt.DB
}

func Open(path string) (*Store, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open score cache: %w", err)
	}
	return &Store{bdb: bdb}, nil
}

func (s *Store) Close() error {
	if err := s.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close score cache: %w", err)
	}
	return nil
}

func bucketName(version string) []byte {
	return []byte(bucketPrefix + version)
}

// Save replaces the snapshot for version with entries. Entries are stored
// with their position so Load can restore recency.
func (s *Store) Save(version string, entries []matcher.CacheEntry) error {
	err := s.bdb.Update(func(tx *bolt.Tx) error {
		name := bucketName(version)
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to drop old snapshot: %w", err)
			}
		}
		b, err := tx.CreateBucket(name)
		if err != nil {
			return fmt.Errorf("failed to create snapshot bucket: %w", err)
		}
		for i := range entries {
			if err := b.Put(encodeKey(i, entries[i].Key), encodeValue(entries[i].Value)); err != nil {
				return fmt.Errorf("failed to write entry %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save score cache: %w", err)
	}
	log.Debug().Str("version", version).Int("entries", len(entries)).Msg("saved score cache")
	return nil
}

// Load puts the snapshot for version into cache, least recent first, and
// returns how many entries were restored. A missing snapshot restores none.
func (s *Store) Load(version string, cache matcher.Cache) (int, error) {
	var entries []matcher.CacheEntry
	err := s.bdb.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName(version))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			e, err := decodeEntry(k, v)
			if err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load score cache: %w", err)
	}

	for i := len(entries) - 1; i >= 0; i-- {
		cache.Put(entries[i].Key, entries[i].Value)
	}
	log.Debug().Str("version", version).Int("entries", len(entries)).Msg("loaded score cache")
	return len(entries), nil
}

// Versions lists the snapshot versions with a stored snapshot.
func (s *Store) Versions() ([]string, error) {
	var versions []string
	err := s.bdb.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if v, ok := bytes.CutPrefix(name, []byte(bucketPrefix)); ok {
				versions = append(versions, string(v))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list score cache versions: %w", err)
	}
	return versions, nil
}

// key layout: 4 byte big endian position, metric byte, A, 0x00, B
func encodeKey(pos int, k matcher.PairKey) []byte {
	buf := make([]byte, 0, 6+len(k.A)+len(k.B))
	buf = binary.BigEndian.AppendUint32(buf, uint32(pos)) //nolint:gosec // cache capacity fits
	buf = append(buf, byte(k.Metric))
	buf = append(buf, k.A...)
	buf = append(buf, 0)
	buf = append(buf, k.B...)
	return buf
}

func encodeValue(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}

func decodeEntry(k, v []byte) (matcher.CacheEntry, error) {
	if len(k) < 6 || len(v) != 8 {
		return matcher.CacheEntry{}, fmt.Errorf("%w: key %x", ErrInvalidEntry, k)
	}
	a, b, ok := bytes.Cut(k[5:], []byte{0})
	if !ok {
		return matcher.CacheEntry{}, fmt.Errorf("%w: key %x", ErrInvalidEntry, k)
	}
	return matcher.CacheEntry{
		Key: matcher.PairKey{
			Metric: matcher.Metric(k[4]),
			A:      string(a),
			B:      string(b),
		},
		Value: math.Float64frombits(binary.BigEndian.Uint64(v)),
	}, nil
}
