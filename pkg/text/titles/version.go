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

// VersionTag classifies a title as a particular rendition of a song.
type VersionTag int

const (
	VersionNone VersionTag = iota
	VersionAcoustic
	VersionLive
	VersionRemix
	VersionCover
	VersionInstrumental
	VersionKaraoke
	VersionDemo
	VersionRadioEdit
	VersionExtended
	VersionSlowedReverb
	VersionSpedUp
)

var versionNames = map[VersionTag]string{
	VersionNone:         "",
	VersionAcoustic:     "acoustic",
	VersionLive:         "live",
	VersionRemix:        "remix",
	VersionCover:        "cover",
	VersionInstrumental: "instrumental",
	VersionKaraoke:      "karaoke",
	VersionDemo:         "demo",
	VersionRadioEdit:    "radio_edit",
	VersionExtended:     "extended",
	VersionSlowedReverb: "slowed_reverb",
	VersionSpedUp:       "sped_up",
}

func (v VersionTag) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the tag by name so JSON output stays readable.
func (v VersionTag) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// DetectVersionTag returns the first version rule matching title, or
// VersionNone.
func (p *Parser) DetectVersionTag(title string) VersionTag {
	text := normalizedText(title)
	for _, rule := range p.versionRules {
		if !rule.terms.MatchString(text) {
			continue
		}
		if rule.unless != nil && rule.unless.MatchString(text) {
			continue
		}
		return rule.tag
	}
	return VersionNone
}
