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

import "slices"

// CatalogVersion identifies the built-in pattern tables. Bump it whenever an
// entry is added or removed so stored parse results can be re-derived.
const CatalogVersion = "2"

// Indicator is a weighted whole-word (or phrase) term for the music
// confidence score.
type Indicator struct {
	Term   string
	Weight float64
}

// VersionRule maps a set of whole-word terms to a VersionTag. The rule does
// not apply when any of the Unless terms are also present.
type VersionRule struct {
	Terms  []string
	Unless []string
	Tag    VersionTag
}

// Catalog holds every pattern table used by Parser. Entries ending in
// "Patterns" are regular expression fragments matched case-insensitively;
// all other entries are literal words. Catalogs are plain data so they can be
// extended from configuration without touching parsing code.
type Catalog struct {
	Version string

	// ChannelSuffixPatterns are stripped when they end the string
	// ("Rick Astley - Topic", "RickAstleyVEVO").
	ChannelSuffixPatterns []string
	// AnnotationPatterns are stripped when they fill a (...) or [...] group
	// ("(Official Video)", "[Lyrics]").
	AnnotationPatterns []string
	// StreamingPatterns are platform session and edition markers, stripped
	// when bracketed ("(Spotify Singles)").
	StreamingPatterns []string
	// QualityPatterns are stripped when bracketed or trailing, never mid-title
	// ("[4K]", "(Remastered 2011)", "Song 320kbps").
	QualityPatterns []string

	// FeaturedMarkers introduce featured artists both in brackets and as a
	// bare trailing clause.
	FeaturedMarkers []string
	// BracketFeaturedMarkers only count inside brackets ("(with Khalid)").
	BracketFeaturedMarkers []string
	// SeparatorSymbols and SeparatorWords split a featured-artist clause into
	// individual names. Words need whitespace on both sides.
	SeparatorSymbols []string
	SeparatorWords   []string
	// Stopwords are never accepted as featured artist names.
	Stopwords []string

	// MinorWords stay lowercase in title case unless first or last.
	MinorWords []string
	// Acronyms are forced to the casing given here.
	Acronyms []string

	// VersionRules are evaluated in order; the first match wins.
	VersionRules []VersionRule

	NonMusicIndicators []Indicator
	MusicIndicators    []Indicator
	// ArtistChannelBonus is added when the artist looks like an official
	// music channel (matched by ChannelSuffixPatterns).
	ArtistChannelBonus float64
	DurationPattern    string
	DurationPenalty    float64
	EpisodePattern     string
	EpisodePenalty     float64
}

// DefaultCatalog returns a fresh copy of the built-in tables. Callers may
// modify the result freely.
func DefaultCatalog() Catalog {
	return Catalog{
		Version: CatalogVersion,
		ChannelSuffixPatterns: []string{
			`-\s*topic`,
			`vevo`,
			`official\s+(?:artist\s+)?channel`,
		},
		AnnotationPatterns: []string{
			`official(?:\s+hd)?(?:\s+(?:music|lyrics?|4k))?\s+(?:video|audio|visuali[sz]er)`,
			`(?:music|lyrics?|lyric)\s+video`,
			`official`,
			`lyrics?`,
			`audio(?:\s+only)?`,
			`visuali[sz]er`,
			`(?:video|audio)\s+oficial`,
			`(?:con\s+)?letra`,
			`video\s+clip`,
			`clip\s+officiel`,
		},
		StreamingPatterns: []string{
			`spotify\s+(?:singles?|sessions?)`,
			`live\s+(?:at|on|from)\s+spotify[^)\]]*`,
			`apple\s+music\s+(?:sessions?|edition|live)`,
			`amazon\s+(?:music\s+)?originals?`,
			`deezer\s+sessions?`,
			`tidal\s+(?:sessions?|exclusive)`,
			`youtube\s+music\s+sessions?`,
			`vevo\s+(?:lift|dscvr|presents|ctrl)[^)\]]*`,
		},
		QualityPatterns: []string{
			`[48]k(?:\s+(?:uhd|hdr|60\s*fps))*`,
			`uhd`,
			`hdr`,
			`full\s+hd`,
			`hd`,
			`hq`,
			`high\s+quality`,
			`\d{3,4}p(?:\s*60)?`,
			`60\s*fps`,
			`\d{2,3}\s*kbps`,
			`flac`,
			`mp3`,
			`aac`,
			`wav`,
			`hi-?res(?:\s+audio)?`,
			`lossless`,
			`remaster(?:ed)?(?:\s+(?:version|\d{4}))?`,
			`\d{4}\s+remaster(?:ed)?(?:\s+version)?`,
		},
		FeaturedMarkers:        []string{`feat.`, `feat`, `ft.`, `ft`, `featuring`},
		BracketFeaturedMarkers: []string{`with`, `con`, `part.`},
		SeparatorSymbols:       []string{"&", ",", "/", "+"},
		SeparatorWords:         []string{"and", "y", "e", "x", "vs", "vs."},
		Stopwords: []string{
			"feat", "ft", "featuring", "with", "and", "the",
			"various", "various artists", "va", "unknown", "unknown artist",
			"official", "video", "audio", "lyrics", "remix", "prod",
		},
		MinorWords: []string{
			// English
			"a", "an", "the", "and", "but", "or", "nor", "for", "so", "yet",
			"as", "at", "by", "in", "of", "on", "to", "up", "via", "vs", "vs.",
			"feat", "feat.", "ft", "ft.",
			// Spanish, Portuguese, Italian
			"de", "del", "la", "las", "el", "los", "y", "e", "o", "en", "con",
			"por", "da", "do", "das", "dos", "em", "di", "il",
			// French, German
			"le", "les", "des", "du", "et", "und", "der", "von", "mit", "im",
		},
		Acronyms: []string{
			"DJ", "MC", "EP", "LP", "TV", "UK", "USA", "NYC", "OK",
			"II", "III", "IV", "VI", "BTS", "ABBA", "AC/DC", "R&B", "RnB", "EDM",
		},
		VersionRules: []VersionRule{
			{Tag: VersionAcoustic, Terms: []string{"acoustic", "acustico", "unplugged"}},
			{Tag: VersionLive, Terms: []string{"live", "concert", "en vivo", "ao vivo", "en directo"}},
			{Tag: VersionRemix, Terms: []string{"remix", "rmx", "remixed"}},
			{Tag: VersionCover, Terms: []string{"cover"}, Unless: []string{"original"}},
			{Tag: VersionInstrumental, Terms: []string{"instrumental"}},
			{Tag: VersionKaraoke, Terms: []string{"karaoke"}},
			{Tag: VersionDemo, Terms: []string{"demo"}},
			{Tag: VersionRadioEdit, Terms: []string{"radio edit"}},
			{Tag: VersionExtended, Terms: []string{"extended", "extended mix"}},
			{Tag: VersionSlowedReverb, Terms: []string{"slowed", "reverb", "slowed reverb"}},
			{Tag: VersionSpedUp, Terms: []string{"sped up", "sped-up", "nightcore"}},
		},
		NonMusicIndicators: []Indicator{
			{Term: "podcast", Weight: 1.0},
			{Term: "interview", Weight: 0.9},
			{Term: "entrevista", Weight: 0.9},
			{Term: "lecture", Weight: 0.9},
			{Term: "documentary", Weight: 0.9},
			{Term: "documental", Weight: 0.9},
			{Term: "audiobook", Weight: 0.9},
			{Term: "gameplay", Weight: 0.9},
			{Term: "walkthrough", Weight: 0.9},
			{Term: "unboxing", Weight: 0.9},
			{Term: "vlog", Weight: 0.9},
			{Term: "full movie", Weight: 0.9},
			{Term: "trailer", Weight: 0.8},
			{Term: "tutorial", Weight: 0.8},
			{Term: "reaction", Weight: 0.8},
			{Term: "sermon", Weight: 0.8},
			{Term: "how to", Weight: 0.7},
			{Term: "review", Weight: 0.7},
			{Term: "asmr", Weight: 0.7},
			{Term: "news", Weight: 0.6},
			{Term: "highlights", Weight: 0.6},
			{Term: "stream", Weight: 0.4},
		},
		MusicIndicators: []Indicator{
			{Term: "official", Weight: 0.1},
			{Term: "audio", Weight: 0.1},
			{Term: "music video", Weight: 0.15},
			{Term: "lyrics", Weight: 0.1},
			{Term: "lyric video", Weight: 0.1},
			{Term: "remix", Weight: 0.15},
			{Term: "feat", Weight: 0.15},
			{Term: "ft", Weight: 0.1},
			{Term: "prod", Weight: 0.1},
			{Term: "acoustic", Weight: 0.1},
			{Term: "instrumental", Weight: 0.1},
			{Term: "session", Weight: 0.05},
			{Term: "live", Weight: 0.05},
			{Term: "cover", Weight: 0.05},
			{Term: "album", Weight: 0.05},
			{Term: "single", Weight: 0.05},
			{Term: "song", Weight: 0.05},
		},
		ArtistChannelBonus: 0.1,
		DurationPattern:    `\b\d+\s*(?:hours?|hrs?|horas?)\b`,
		DurationPenalty:    0.2,
		EpisodePattern:     `\b(?:episode|ep|chapter|capitulo|episodio)\.?\s*#?\d+`,
		EpisodePenalty:     0.4,
	}
}

// Extension lists entries appended to a Catalog, usually from configuration.
type Extension struct {
	AnnotationPatterns []string
	QualityPatterns    []string
	MinorWords         []string
	Acronyms           []string
	Stopwords          []string
}

// Extend returns a copy of c with the extension entries appended. The
// version is suffixed so extended catalogs are never confused with the
// built-in one.
func (c Catalog) Extend(ext Extension) Catalog {
	if len(ext.AnnotationPatterns)+len(ext.QualityPatterns)+len(ext.MinorWords)+
		len(ext.Acronyms)+len(ext.Stopwords) == 0 {
		return c
	}
	out := c
	out.Version = c.Version + "+custom"
	out.AnnotationPatterns = append(slices.Clone(c.AnnotationPatterns), ext.AnnotationPatterns...)
	out.QualityPatterns = append(slices.Clone(c.QualityPatterns), ext.QualityPatterns...)
	out.MinorWords = append(slices.Clone(c.MinorWords), ext.MinorWords...)
	out.Acronyms = append(slices.Clone(c.Acronyms), ext.Acronyms...)
	out.Stopwords = append(slices.Clone(c.Stopwords), ext.Stopwords...)
	return out
}
