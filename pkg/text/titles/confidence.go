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

package titles

import "strings"

// DefaultMusicThreshold is the confidence at which a label counts as music.
const DefaultMusicThreshold = 0.6

// NeutralMusicConfidence is the score of a label that matches no indicator.
// It is the default ingest cutoff so plain "Artist - Title" labels pass.
const NeutralMusicConfidence = 0.5

// CalculateMusicConfidence scores how likely title (and the optional artist)
// names a piece of music rather than a podcast, video or other spoken
// content. The score starts at 0.5 and is clamped to [0, 1].
func (p *Parser) CalculateMusicConfidence(title, artist string) float64 {
	text := normalizedText(strings.TrimSpace(title + " " + artist))
	score := NeutralMusicConfidence

	for _, ind := range p.nonMusic {
		if ind.re.MatchString(text) {
			score -= ind.weight * 0.5
		}
	}
	for _, ind := range p.music {
		if ind.re.MatchString(text) {
			score += ind.weight
		}
	}
	if p.duration.MatchString(text) {
		score -= p.durationPenalty
	}
	if p.episode.MatchString(text) {
		score -= p.episodePenalty
	}
	if artist != "" && p.channelSuffix.MatchString(artist) {
		score += p.artistChannelBonus
	}

	return min(max(score, 0), 1)
}

// IsMusicalContent reports whether the confidence for title reaches
// threshold. DefaultMusicThreshold is the usual threshold.
func (p *Parser) IsMusicalContent(title, artist string, threshold float64) bool {
	return p.CalculateMusicConfidence(title, artist) >= threshold
}
