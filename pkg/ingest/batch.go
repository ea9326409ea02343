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


package ingest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Summary counts the results of an IngestAll run.
type Summary struct {
	Labels     int `json:"labels"`
	Recorded   int `json:"recorded"`
	Skipped    int `json:"skipped"`
	Recomputed int `json:"recomputed"`
}

// IngestAll ingests labels with up to Workers labels in flight, then
// recomputes statistics for every entity linked by the batch. Outcomes are
// returned in label order. The first error stops the batch.
func (in *Ingester) IngestAll(ctx context.Context, labels []Label) ([]Outcome, Summary, error) {
	outcomes := make([]Outcome, len(labels))

	var (
		mu      sync.Mutex
		touched = make(map[string]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.opts.Workers)
	for i := range labels {
		g.Go(func() error {
			out, err := in.Ingest(gctx, labels[i])
			if err != nil {
				return fmt.Errorf("label %d: %w", i+1, err)
			}
			outcomes[i] = out

			mu.Lock()
			for _, id := range out.entityIDs() {
				touched[id] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err //nolint:wrapcheck // wrapped per label
	}

	sum := Summary{Labels: len(labels)}
	for i := range outcomes {
		if outcomes[i].Skipped {
			sum.Skipped++
		} else {
			sum.Recorded++
		}
	}

	ids := make([]string, 0, len(touched))
	for id := range touched {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if _, err := in.resolver.RecomputeStatistics(ctx, id); err != nil {
			return outcomes, sum, fmt.Errorf("failed to recompute statistics: %w", err)
		}
		sum.Recomputed++
	}

	log.Info().
		Int("labels", sum.Labels).
		Int("recorded", sum.Recorded).
		Int("skipped", sum.Skipped).
		Int("recomputed", sum.Recomputed).
		Msg("ingested labels")
	return outcomes, sum, nil
}
