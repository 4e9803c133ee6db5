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
	"github.com/Faugus/faugus-launcher/pkg/config"
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
	gameID := flag.String("game", "", "launch the library game with this gameid")
	debug := flag.Bool("debug", false, "log debug output to stderr")
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		_, _ = fmt.Fprintf(out, "usage: %s [-debug] <message> [command]\n", os.Args[0])
		_, _ = fmt.Fprintf(out, "       %s [-debug] -game <gameid> [command]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		_, _ = fmt.Printf("faugus-run v%s\n", config.AppVersion)
		return nil
	}

	var message, mode string
	args := flag.Args()
	if *gameID != "" {
		if len(args) > 0 {
			mode = args[0]
		}
	} else {
		if len(args) == 0 {
			flag.Usage()
			return errors.New("missing message")
		}
		message = args[0]
		if len(args) > 1 {
			mode = args[1]
		}
	}

	var logWriters []io.Writer
	if *debug {
		logWriters = []io.Writer{os.Stderr}
	}
	app, err := cli.Setup(helpers.DefaultDirs(), logWriters, *debug)
	if err != nil {
		return err //nolint:wrapcheck // setup errors are already descriptive
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *gameID != "" {
		err = app.RunGame(ctx, *gameID, mode)
	} else {
		err = app.RunMessage(ctx, message, mode)
	}
	if err != nil {
		log.Error().Err(err).Msg("launch failed")
	}
	return err //nolint:wrapcheck // printed by main
}
