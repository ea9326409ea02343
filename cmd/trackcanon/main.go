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


package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-tracks/pkg/cli"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/config"
	"github.com/ZaparooProject/zaparoo-tracks/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags(flag.CommandLine)
	flag.Parse()

	if *flags.Version {
		_, _ = fmt.Printf("Zaparoo Tracks v%s\n", cli.AppVersion)
		return nil
	}

	settings := cli.DefaultSettings()
	if *flags.ConfigDir != "" {
		settings.ConfigDir = *flags.ConfigDir
	}

	cfg, err := cli.Setup(
		settings, config.BaseDefaults,
		[]io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}},
	)
	if err != nil {
		return fmt.Errorf("error during setup: %w", err)
	}
	if *flags.Debug {
		helpers.SetDebugLogging(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := cli.Run(ctx, cfg, flags, cli.Env{
		Fs:      afero.NewOsFs(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		DataDir: settings.DataDir,
	})
	if err != nil {
		log.Error().Err(err).Msg("run failed")
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("error encoding report: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stderr, string(data))
	return nil
}
