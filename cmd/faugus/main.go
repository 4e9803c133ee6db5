// Faugus Launcher
// Copyright (c) 2025 The Faugus Launcher Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Faugus Launcher.
//
// Faugus Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Faugus Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Faugus Launcher.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Faugus/faugus-launcher/pkg/cli"
	"github.com/Faugus/faugus-launcher/pkg/helpers"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	set := flag.CommandLine
	flags := cli.SetupFlags(set)

	exit, err := flags.Pre(os.Args[1:], os.Stdout)
	if err != nil || exit {
		return err
	}

	if os.Geteuid() == 0 {
		return errors.New("faugus cannot be run as root")
	}

	var logWriters []io.Writer
	if *flags.Debug {
		logWriters = []io.Writer{os.Stderr}
	}

	app, err := cli.Setup(helpers.DefaultDirs(), logWriters, *flags.Debug)
	if err != nil {
		return err //nolint:wrapcheck // setup errors are already descriptive
	}
	defer app.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = flags.Post(ctx, app)
	if errors.Is(err, cli.ErrNoAction) {
		set.Usage()
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("command failed")
	}
	return err //nolint:wrapcheck // printed by main
}
