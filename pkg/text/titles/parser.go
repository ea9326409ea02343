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

// Package titles cleans raw music titles and extracts structured facets
// from them: featured artists, version tag and release year.
//
// Every pattern comes from a Catalog, so new noise markers can be added
// without touching the parsing code. A Parser is immutable once built and
// safe for concurrent use.
package titles

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/normalize"
)

// ParsedTitle is the structured result of ParseTitle.
type ParsedTitle struct {
	MainTitle       string     `json:"mainTitle"`
	OriginalTitle   string     `json:"originalTitle"`
	FeaturedArtists []string   `json:"featuredArtists"`
	VersionTag      VersionTag `json:"versionTag,omitempty"`
	// ReleaseYear is 0 when no year was found.
	ReleaseYear int `json:"releaseYear,omitempty"`
}

type versionMatcher struct {
	terms  *regexp.Regexp
	unless *regexp.Regexp
	tag    VersionTag
}

type weightedMatcher struct {
	re     *regexp.Regexp
	weight float64
}

// Parser applies a compiled Catalog.
type Parser struct {
	channelSuffix      *regexp.Regexp
	annotations        *regexp.Regexp
	streaming          *regexp.Regexp
	qualityBracketed   *regexp.Regexp
	qualityTrailing    *regexp.Regexp
	versionBracketed   *regexp.Regexp
	featuredBracketed  *regexp.Regexp
	featuredBare       *regexp.Regexp
	artistSeparators   *regexp.Regexp
	duration           *regexp.Regexp
	episode            *regexp.Regexp
	stopwords          map[string]struct{}
	minorWords         map[string]struct{}
	acronyms           map[string]string
	version            string
	versionRules       []versionMatcher
	nonMusic           []weightedMatcher
	music              []weightedMatcher
	artistChannelBonus float64
	durationPenalty    float64
	episodePenalty     float64
}

var (
	separatorRunRegex   = regexp.MustCompile(`\s*([-–—|])(?:\s*[-–—|])+\s*`)
	emptyBracketsRegex  = regexp.MustCompile(`\s*(?:\(\s*\)|\[\s*\]|\{\s*\})`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
	artistTitleRegex    = regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)
)

const edgeTrimSet = " -–—|"

var defaultParser = sync.OnceValue(func() *Parser {
	p, err := NewParser(DefaultCatalog())
	if err != nil {
		panic(fmt.Sprintf("built-in title catalog does not compile: %v", err))
	}
	return p
})

// Default returns a shared Parser built from DefaultCatalog.
func Default() *Parser {
	return defaultParser()
}

// NewParser compiles c. Patterns are compiled through the shared regex
// cache, so parsers built from the same catalog share compiled programs.
func NewParser(c Catalog) (*Parser, error) {
	p := &Parser{
		version:            c.Version,
		stopwords:          wordSet(c.Stopwords),
		minorWords:         wordSet(c.MinorWords),
		acronyms:           make(map[string]string, len(c.Acronyms)),
		artistChannelBonus: c.ArtistChannelBonus,
		durationPenalty:    c.DurationPenalty,
		episodePenalty:     c.EpisodePenalty,
	}
	for _, a := range c.Acronyms {
		p.acronyms[strings.ToLower(a)] = a
	}

	var err error
	compile := func(pattern string) *regexp.Regexp {
		if err != nil {
			return nil
		}
		var re *regexp.Regexp
		re, err = helpers.GlobalRegexCache.Compile(pattern)
		return re
	}

	p.channelSuffix = compile(`(?i)\s*(?:` + alternation(c.ChannelSuffixPatterns) + `)\s*$`)
	p.annotations = compile(bracketed(c.AnnotationPatterns))
	p.streaming = compile(bracketed(c.StreamingPatterns))
	p.qualityBracketed = compile(
		`(?i)\s*[\(\[]\s*(?:` + alternation(c.QualityPatterns) + `)` +
			`(?:\s*[,/|]?\s*(?:` + alternation(c.QualityPatterns) + `))*\s*[\)\]]`,
	)
	p.qualityTrailing = compile(`(?i)\s+(?:` + alternation(c.QualityPatterns) + `)\s*$`)

	featured := quotedAlternation(c.FeaturedMarkers)
	bracketOnly := quotedAlternation(append(slices.Clone(c.FeaturedMarkers), c.BracketFeaturedMarkers...))
	p.featuredBracketed = compile(`(?i)\s*[\(\[]\s*(?:` + bracketOnly + `)\s+([^\)\]]+?)\s*[\)\]]`)
	p.featuredBare = compile(`(?i)\s+(?:` + featured + `)\s+([^\(\)\[\]]+)`)
	p.artistSeparators = compile(
		`(?i)\s*(?:` + quotedAlternation(c.SeparatorSymbols) +
			`|\s(?:` + quotedAlternation(c.SeparatorWords) + `)\s)\s*`,
	)

	var versionTerms []string
	for _, rule := range c.VersionRules {
		m := versionMatcher{tag: rule.Tag, terms: compile(wordForms(rule.Terms))}
		if len(rule.Unless) > 0 {
			m.unless = compile(wordForms(rule.Unless))
		}
		p.versionRules = append(p.versionRules, m)
		versionTerms = append(versionTerms, rule.Terms...)
	}
	p.versionBracketed = compile(
		`(?i)\s*[\(\[][^\)\]]*\b(?:` + quotedAlternation(versionTerms) + `)` + pluralSuffix + `\b[^\)\]]*[\)\]]`,
	)

	for _, ind := range c.NonMusicIndicators {
		p.nonMusic = append(p.nonMusic, weightedMatcher{
			re:     compile(wholeWords([]string{ind.Term})),
			weight: ind.Weight,
		})
	}
	for _, ind := range c.MusicIndicators {
		p.music = append(p.music, weightedMatcher{
			re:     compile(wholeWords([]string{ind.Term})),
			weight: ind.Weight,
		})
	}
	p.duration = compile(`(?i)` + c.DurationPattern)
	p.episode = compile(`(?i)` + c.EpisodePattern)

	if err != nil {
		return nil, fmt.Errorf("failed to compile title catalog %s: %w", c.Version, err)
	}
	return p, nil
}

// CatalogVersion reports the version of the catalog the parser was built from.
func (p *Parser) CatalogVersion() string {
	return p.version
}

// CleanTitle removes platform noise from title: channel suffixes, official
// video/audio annotations, streaming session markers and quality tokens.
// Repeated separators are collapsed and dashes trimmed from both ends. When
// applyCasing is set the result is also passed through ToTitleCase.
//
// Example: "Rick Astley - Never Gonna Give You Up (Official Video) [4K]" →
// "Rick Astley - Never Gonna Give You Up"
func (p *Parser) CleanTitle(title string, applyCasing bool) string {
	s := normalize.NormalizeWidth(title)

	s = p.streaming.ReplaceAllString(s, "")
	s = p.annotations.ReplaceAllString(s, "")
	s = p.qualityBracketed.ReplaceAllString(s, "")
	s = p.channelSuffix.ReplaceAllString(s, "")

	// Trailing quality tokens can stack ("Song 1080p HD").
	for {
		next := p.qualityTrailing.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}

	s = tidy(s)
	if applyCasing {
		s = p.ToTitleCase(s)
	}
	return s
}

// ParseTitle extracts featured artists, version tag and release year from
// title. MainTitle has the featured clauses, version annotations and
// bracketed years removed and is cleaned with CleanTitle.
//
// Example: "Bad Guy (feat. Billie Eilish) [Remix]" → MainTitle "Bad Guy",
// FeaturedArtists ["Billie Eilish"], VersionTag VersionRemix
func (p *Parser) ParseTitle(title string) ParsedTitle {
	featured, rest := p.extractFeatured(normalize.NormalizeWidth(title))

	rest = p.versionBracketed.ReplaceAllString(rest, "")
	rest = bracketedYearRegex.ReplaceAllString(rest, "")

	result := ParsedTitle{
		OriginalTitle:   title,
		MainTitle:       p.CleanTitle(rest, false),
		FeaturedArtists: featured,
		VersionTag:      p.DetectVersionTag(title),
	}
	if year, ok := ExtractYear(title); ok {
		result.ReleaseYear = year
	}
	return result
}

// ExtractFeaturedArtists returns the featured artist names mentioned in title.
func (p *Parser) ExtractFeaturedArtists(title string) []string {
	featured, _ := p.extractFeatured(normalize.NormalizeWidth(title))
	return featured
}

// ParseArtist splits an artist credit such as "Calvin Harris ft. Rihanna"
// into the primary credit and the featured names.
func (p *Parser) ParseArtist(credit string) (primary string, featured []string) {
	featured, rest := p.extractFeatured(normalize.NormalizeWidth(credit))
	return tidy(rest), featured
}

// extractFeatured returns the featured artists and title with every
// featured clause removed. Bracketed clauses are handled first so a bare
// marker inside brackets is never read as a trailing clause.
func (p *Parser) extractFeatured(title string) (names []string, rest string) {
	seen := make(map[string]struct{})
	var out []string

	addClause := func(clause string) {
		for _, name := range p.artistSeparators.Split(clause, -1) {
			name = strings.Trim(name, " .,;:")
			if len([]rune(name)) < 2 {
				continue
			}
			key := normalize.Key(name)
			if _, stop := p.stopwords[key]; stop {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, name)
		}
	}

	rest = p.featuredBracketed.ReplaceAllStringFunc(title, func(match string) string {
		sub := p.featuredBracketed.FindStringSubmatch(match)
		if len(sub) > 1 {
			addClause(sub[1])
		}
		return ""
	})

	// A bare clause runs to the next bracket, but stops at a spaced dash so
	// "Artist ft. Guest - Song" keeps its title.
	var b strings.Builder
	last := 0
	for _, loc := range p.featuredBare.FindAllStringSubmatchIndex(rest, -1) {
		clauseStart, clauseEnd := loc[2], loc[3]
		clause := rest[clauseStart:clauseEnd]
		if m := artistTitleRegex.FindStringSubmatchIndex(clause); m != nil {
			clauseEnd = clauseStart + m[3]
			clause = clause[:m[3]]
		}
		addClause(clause)
		b.WriteString(rest[last:loc[0]])
		last = clauseEnd
	}
	b.WriteString(rest[last:])

	return out, b.String()
}

// SplitArtistTitle splits "Artist - Title" on the first spaced dash.
// ok is false when there is no separator.
func SplitArtistTitle(s string) (artist, title string, ok bool) {
	m := artistTitleRegex.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", strings.TrimSpace(s), false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

func tidy(s string) string {
	s = emptyBracketsRegex.ReplaceAllString(s, "")
	s = separatorRunRegex.ReplaceAllString(s, " $1 ")
	s = multipleSpacesRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeTrimSet)
}

func normalizedText(s string) string {
	return normalize.Normalize(normalize.NormalizeWidth(s))
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[normalize.Key(w)] = struct{}{}
	}
	return set
}

func alternation(patterns []string) string {
	if len(patterns) == 0 {
		// Matches nothing.
		return `[^\x00-\x{10FFFF}]`
	}
	return strings.Join(patterns, "|")
}

// quotedAlternation escapes literal words, longest first so "featuring"
// wins over "feat".
func quotedAlternation(words []string) string {
	sorted := slices.Clone(words)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return len(b) - len(a)
	})
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return alternation(quoted)
}

func bracketed(patterns []string) string {
	return `(?i)\s*[\(\[]\s*(?:` + alternation(patterns) + `)\s*[\)\]]`
}

func wholeWords(words []string) string {
	return `(?i)\b(?:` + quotedAlternation(words) + `)\b`
}

// pluralSuffix lets a version term match its plural ("Remixes", "Demos").
const pluralSuffix = `(?:e?s)?`

func wordForms(words []string) string {
	return `(?i)\b(?:` + quotedAlternation(words) + `)` + pluralSuffix + `\b`
}
