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


package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/config"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/entitydb"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/matcher"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/database/scorecache"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/ingest"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/testing/helpers"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/text/titles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labelHeader = []string{"artist", "title", "album", "genre", "plays"}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return flags
}

func newTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	defaults := config.BaseDefaults
	defaults.Ingest.MinConfidence = 0.3
	cfg, err := config.NewConfigWithFs(helpers.NewMemoryFS().Fs, "/config/tracks.toml", defaults)
	require.NoError(t, err)
	return cfg
}

func readOutcomes(t *testing.T, data string) []ingest.Outcome {
	t.Helper()
	var outcomes []ingest.Outcome
	sc := bufio.NewScanner(strings.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		var o ingest.Outcome
		require.NoError(t, json.Unmarshal(sc.Bytes(), &o))
		outcomes = append(outcomes, o)
	}
	require.NoError(t, sc.Err())
	return outcomes
}

func TestParseGenreLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    []GenreLink
		wantErr bool
	}{
		{name: "empty", in: ""},
		{name: "single", in: "Punk=Rock", want: []GenreLink{{Child: "Punk", Parent: "Rock"}}},
		{
			name: "several with spaces",
			in:   " Hardcore = Punk ; Punk=Rock;",
			want: []GenreLink{{Child: "Hardcore", Parent: "Punk"}, {Child: "Punk", Parent: "Rock"}},
		},
		{name: "clear parent", in: "Punk=", want: []GenreLink{{Child: "Punk"}}},
		{name: "missing separator", in: "Punk", wantErr: true},
		{name: "missing child", in: "=Rock", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseGenreLinks(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		format  string
		in      string
		want    []ingest.Label
		wantErr error
		anyErr  bool
	}{
		{
			name:   "tsv with header",
			format: FormatTSV,
			in:     "artist\ttitle\tplays\nQueen\tInnuendo\t3\n\tRick Astley - Never Gonna Give You Up\t\n",
			want: []ingest.Label{
				{Artist: "Queen", Title: "Innuendo", Plays: 3},
				{Title: "Rick Astley - Never Gonna Give You Up"},
			},
		},
		{
			name:   "tsv keeps quotes in titles",
			format: FormatTSV,
			in:     "title\nThe \"Heroes\" Session\n",
			want:   []ingest.Label{{Title: `The "Heroes" Session`}},
		},
		{name: "tsv empty", format: FormatTSV, in: ""},
		{name: "tsv header only", format: FormatTSV, in: "artist\ttitle\n", want: nil},
		{
			name:   "jsonl",
			format: FormatJSONL,
			in:     `{"title":"Heroes","artist":"David Bowie"}` + "\n" + `{"title":"Innuendo","plays":2}` + "\n",
			want: []ingest.Label{
				{Title: "Heroes", Artist: "David Bowie"},
				{Title: "Innuendo", Plays: 2},
			},
		},
		{
			name:   "yaml sequence",
			format: FormatYAML,
			in:     "- title: Heroes\n  artist: David Bowie\n  plays: 4\n- title: Innuendo\n",
			want: []ingest.Label{
				{Title: "Heroes", Artist: "David Bowie", Plays: 4},
				{Title: "Innuendo"},
			},
		},
		{name: "yaml empty", format: FormatYAML, in: ""},
		{name: "yaml not a sequence", format: FormatYAML, in: "title: Heroes\n", anyErr: true},
		{name: "jsonl malformed", format: FormatJSONL, in: `{"title":`, anyErr: true},
		{name: "unknown format", format: "xml", in: "", wantErr: ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadLabels(strings.NewReader(tt.in), tt.format)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				if len(tt.want) == 0 {
					assert.Empty(t, got)
					return
				}
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRun_IngestLinkAndRecompute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fsh := helpers.NewMemoryFS()
	require.NoError(t, fsh.WriteTSV("/in/labels.tsv", labelHeader,
		[]string{"Queen", "Bohemian Rhapsody", "A Night at the Opera", "Rock", "10"},
		[]string{"Queen", "Love of My Life", "A Night at the Opera", "", "5"},
		[]string{"Queen ft. David Bowie", "Under Pressure", "", "", "7"},
		[]string{"", "Interview with the band podcast episode 3", "", "", ""},
		[]string{"David Bowie", "Heroes", "", "Rock", "1"},
	))

	dbPath := filepath.Join(t.TempDir(), "entities.db")
	flags := parseFlags(t,
		"-db", dbPath,
		"-input", "/in/labels.tsv",
		"-output", "/out/outcomes.jsonl",
		"-genre-parent", "Punk=Rock",
		"-recompute",
	)

	report, err := Run(ctx, newTestConfig(t), flags, Env{Fs: fsh.Fs})
	require.NoError(t, err)

	assert.Equal(t, ingest.Summary{Labels: 5, Recorded: 4, Skipped: 1, Recomputed: 4}, report.Ingest)
	assert.Equal(t, 1, report.Links)
	require.Len(t, report.Recomputed, len(database.AllKinds))
	totals := map[database.EntityKind]int{}
	for _, res := range report.Recomputed {
		totals[res.Kind] = res.Total
		assert.Equal(t, 0, res.Updated, "ingest already recomputed %s", res.Kind)
	}
	assert.Equal(t, map[database.EntityKind]int{
		database.KindArtist: 2,
		database.KindAlbum:  1,
		database.KindGenre:  2,
	}, totals)

	data, err := fsh.ReadFile("/out/outcomes.jsonl")
	require.NoError(t, err)
	outcomes := readOutcomes(t, data)
	require.Len(t, outcomes, 5)
	assert.True(t, outcomes[3].Skipped)
	require.NotNil(t, outcomes[0].Genre)
	rockID := outcomes[0].Genre.Entity.ID

	db, err := entitydb.Open(ctx, dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	punk, ok, err := db.FindExact(ctx, database.KindGenre, "punk")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rockID, punk.ParentID)

	queen, ok, err := db.FindExact(ctx, database.KindArtist, "queen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(22), queen.AggregatePlayCount)
}

func TestRun_DefaultConfigKeepsPlainLabels(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewConfigWithFs(helpers.NewMemoryFS().Fs, "/config/tracks.toml", config.BaseDefaults)
	require.NoError(t, err)

	var out bytes.Buffer
	flags := parseFlags(t,
		"-db", filepath.Join(t.TempDir(), "entities.db"),
		"-input", "-",
		"-format", FormatJSONL,
	)
	in := strings.NewReader(strings.Join([]string{
		`{"title":"Bohemian Rhapsody","artist":"Queen","album":"A Night at the Opera","genre":"Rock"}`,
		`{"title":"Queen - Innuendo"}`,
		`{"title":"Tech Review Podcast Episode 12"}`,
	}, "\n") + "\n")

	report, err := Run(context.Background(), cfg, flags, Env{
		Fs:     helpers.NewMemoryFS().Fs,
		Stdin:  in,
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Ingest.Recorded)
	assert.Equal(t, 1, report.Ingest.Skipped)

	outcomes := readOutcomes(t, out.String())
	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].Skipped)
	assert.False(t, outcomes[1].Skipped)
	assert.True(t, outcomes[2].Skipped)
}

func TestRun_StdinAndStdout(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	flags := parseFlags(t,
		"-db", filepath.Join(t.TempDir(), "entities.db"),
		"-input", "-",
		"-format", FormatJSONL,
		"-threshold", "0.9",
	)
	in := strings.NewReader(`{"title":"Innuendo","artist":"Queen","plays":2}` + "\n")

	report, err := Run(context.Background(), newTestConfig(t), flags, Env{
		Fs:     helpers.NewMemoryFS().Fs,
		Stdin:  in,
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingest.Recorded)

	outcomes := readOutcomes(t, out.String())
	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Artist)
	assert.Equal(t, "Queen", outcomes[0].Artist.Entity.DisplayName)
}

func TestRun_PersistsScoreCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	defaults := config.BaseDefaults
	defaults.Ingest.MinConfidence = 0
	defaults.Matching.PersistCache = true
	cfg, err := config.NewConfigWithFs(helpers.NewMemoryFS().Fs, "/config/tracks.toml", defaults)
	require.NoError(t, err)

	dir := t.TempDir()
	run := func(input string) {
		flags := parseFlags(t,
			"-db", filepath.Join(dir, "entities.db"),
			"-input", "-",
			"-format", FormatJSONL,
		)
		_, err := Run(ctx, cfg, flags, Env{
			Fs:     helpers.NewMemoryFS().Fs,
			Stdin:  strings.NewReader(input),
			Stdout: &bytes.Buffer{},
		})
		require.NoError(t, err)
	}
	run(`{"title":"Heroes","artist":"David Bowie"}` + "\n" + `{"title":"Innuendo","artist":"Queen"}` + "\n")
	run(`{"title":"Bohemian Rhapsody","artist":"Queens"}` + "\n")

	store, err := scorecache.Open(filepath.Join(dir, scorecache.DefaultFile))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	versions, err := store.Versions()
	require.NoError(t, err)
	assert.Equal(t, []string{scorecache.SnapshotVersion(titles.Default().CatalogVersion())}, versions)

	cache := matcher.NewLRUCache(100)
	n, err := store.Load(versions[0], cache)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "bad genre link",
			args: []string{"-genre-parent", "Punk"},
			want: "invalid genre link",
		},
		{
			name: "missing input file",
			args: []string{"-input", "/in/nope.tsv"},
			want: "failed to open input",
		},
		{
			name: "unknown format",
			args: []string{"-input", "-", "-format", "xml"},
			want: "unknown input format",
		},
		{
			name: "cycle",
			args: []string{"-genre-parent", "Punk=Rock;Rock=Punk"},
			want: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"-db", filepath.Join(t.TempDir(), "entities.db")}, tt.args...)
			_, err := Run(context.Background(), newTestConfig(t), parseFlags(t, args...), Env{
				Fs:    helpers.NewMemoryFS().Fs,
				Stdin: strings.NewReader(""),
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
