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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/Faugus/faugus-launcher/pkg/launch"
	"github.com/Faugus/faugus-launcher/pkg/library"
	"github.com/Faugus/faugus-launcher/pkg/runners"
	"github.com/Faugus/faugus-launcher/pkg/steam"
	"github.com/Faugus/faugus-launcher/pkg/ui/console"
	"github.com/google/shlex"
	"github.com/rs/zerolog/log"
)

// logDirVar carries the gameid in composed commands.
const logDirVar = "LOG_DIR"

// lockedWriter serialises runner output and presenter lines.
type lockedWriter struct {
	w  io.Writer
	mu syncutil.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p) //nolint:wrapcheck // passthrough
}

func secondsDuration(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

// Play launches a library game by title.
func (a *App) Play(ctx context.Context, title string) error {
	g, err := a.lookup(title)
	if err != nil {
		return err
	}
	return a.LaunchGame(ctx, g, "")
}

// RunGame launches a library game by gameid.
func (a *App) RunGame(ctx context.Context, gameID, mode string) error {
	g, err := a.Store.GetByID(gameID)
	if err != nil {
		return err //nolint:wrapcheck // store errors name the id
	}
	return a.LaunchGame(ctx, g, mode)
}

// LaunchGame builds g's command and supervises it.
//
//nolint:gocritic // record passed by value
func (a *App) LaunchGame(ctx context.Context, g library.Game, mode string) error {
	paths, err := a.paths(&g)
	if err != nil {
		return err
	}
	cmd := launch.Build(g, a.Config.Values(), paths)
	return a.Launch(ctx, cmd, a.session(g.Title, g.GameID, g.Path, mode))
}

// RunMessage supervises a pre-built command line. LOG_DIR, when present,
// ties the session to a library game for logging and playtime.
func (a *App) RunMessage(ctx context.Context, message, mode string) error {
	cmd, err := launch.ParseCommand(message)
	if err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	var title string
	gameID, _ := cmd.Lookup(logDirVar)
	if gameID != "" {
		if g, err := a.Store.GetByID(gameID); err == nil {
			title = g.Title
		} else {
			log.Debug().Err(err).Str("gameid", gameID).Msg("command not tied to a library game")
		}
	}
	return a.Launch(ctx, cmd, a.session(title, gameID, target(cmd), mode))
}

// target is the last word of the command, which is the launched file for
// commands Build produces.
func target(cmd launch.Command) string {
	if len(cmd.Args) == 0 {
		return ""
	}
	words, err := shlex.Split(cmd.Args[len(cmd.Args)-1])
	if err != nil || len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

func (a *App) session(title, gameID, tgt, mode string) launch.Session {
	sess := launch.Session{
		Title:         title,
		Target:        tgt,
		Mode:          mode,
		TrackPlaytime: a.Config.TrackPlaytime() && title != "",
	}
	if a.Config.EnableLogging() && gameID != "" {
		sess.LogPath = a.Dirs.GameLogPath(gameID)
	}
	return sess
}

func (a *App) paths(g *library.Game) (launch.Paths, error) {
	paths := launch.Paths{UmuRun: a.UmuRun}
	switch g.Runner {
	case library.RunnerCachyOS:
		paths.CachyOSPath = runners.NewCatalogue(a.FS, a.Dirs.CompatTools, nil).CachyOSPath()
	case library.RunnerSteam:
		inv, err := steam.Invocation(a.FS, a.Home, a.Getenv, g.Title)
		if err != nil {
			return paths, fmt.Errorf("steam launch for %s: %w", g.Title, err)
		}
		paths.Steam = inv
	}
	return paths, nil
}

// Launch supervises cmd and renders its events until it exits.
//
//nolint:gocritic // session is a small value snapshot
func (a *App) Launch(ctx context.Context, cmd launch.Command, sess launch.Session) error {
	reg := launch.NewRegistry(a.FS, a.Dirs.RunningDir(), a.Watcher, a.Clock)
	defer reg.Close()
	out := &lockedWriter{w: a.Out}
	var tree launch.ProcessTree
	if a.NewTree != nil {
		tree = a.NewTree()
	}

	sup := launch.NewSupervisor(launch.Config{
		Executor:  a.Executor,
		Resolver:  runners.NewResolver(a.FS, a.Dirs.CompatTools, nil),
		Playtime:  a.Store,
		Registry:  reg,
		FS:        a.FS,
		Clock:     a.Clock,
		Console:   out,
		KillGroup: a.KillGroup,
		Tree:      tree,
	})

	presenter := console.NewPresenter(console.Options{
		Out:      out,
		Notifier: a.Notifier,
		Title:    sess.Title,
		NoSplash: a.Config.SplashDisable(),
	})

	runErr := make(chan error, 1)
	go func() { runErr <- sup.Run(ctx, cmd, sess) }()
	res := presenter.Drain(ctx, sup.Events())
	err := <-runErr

	if sess.Mode == launch.ModeWinetricks {
		presenter.PrintScrollback(sup.Scrollback().Lines())
	}
	if err != nil {
		return err //nolint:wrapcheck // shown to the user as is
	}
	if res.Err != nil && !errors.Is(res.Err, context.Canceled) {
		return res.Err
	}
	return nil
}
