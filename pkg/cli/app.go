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
	"os"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/config"
	"github.com/Faugus/faugus-launcher/pkg/helpers"
	"github.com/Faugus/faugus-launcher/pkg/helpers/command"
	"github.com/Faugus/faugus-launcher/pkg/launch"
	"github.com/Faugus/faugus-launcher/pkg/library"
	"github.com/Faugus/faugus-launcher/pkg/logs"
	"github.com/Faugus/faugus-launcher/pkg/notify"
	"github.com/Faugus/faugus-launcher/pkg/procs"
	"github.com/Faugus/faugus-launcher/pkg/runners"
	"github.com/Faugus/faugus-launcher/pkg/steam"
	"github.com/Faugus/faugus-launcher/pkg/ui/console"
	"github.com/adrg/xdg"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// App bundles what the binaries need. Fields are exported so tests can
// swap the host-facing parts.
type App struct {
	FS          afero.Fs
	Config      *config.Instance
	Store       *library.Store
	Executor    command.Executor
	Notifier    notify.Notifier
	Watcher     launch.ExitWatcher
	Clock       clockwork.Clock
	Out         io.Writer
	KillGroup   func(pid int) error
	NewTree     func() launch.ProcessTree
	KillRunners func(ctx context.Context) (int, error)
	Getenv      func(string) string
	closers     []func()
	Dirs        helpers.Dirs
	Home        string
	UmuRun      string
}

// New loads settings and the library from dirs. Notifications and exit
// watching stay off until Setup enables them.
func New(fs afero.Fs, dirs helpers.Dirs) (*App, error) {
	cfg, err := config.NewConfig(fs, dirs.SettingsPath(), config.Defaults(dirs.Prefixes))
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return &App{
		FS:          fs,
		Dirs:        dirs,
		Config:      cfg,
		Store:       library.NewStore(fs, dirs.GamesPath()),
		Executor:    &command.RealExecutor{},
		Clock:       clockwork.NewRealClock(),
		Out:         os.Stdout,
		KillGroup:   procs.KillGroup,
		NewTree:     func() launch.ProcessTree { return procs.NewTree() },
		KillRunners: procs.KillRunners,
		Getenv:      os.Getenv,
		Home:        xdg.Home,
		UmuRun:      helpers.FindUmuRun(),
	}, nil
}

// Setup initializes directories, logging and the host integrations.
func Setup(dirs helpers.Dirs, writers []io.Writer, debug bool) (*App, error) {
	fs := afero.NewOsFs()
	if err := helpers.EnsureDirectories(fs, dirs); err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}
	if err := helpers.InitLogging(dirs, writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	app, err := New(fs, dirs)
	if err != nil {
		return nil, err
	}
	helpers.SetDebug(debug || app.Config.EnableLogging())

	tracker := procs.NewTracker()
	app.Watcher = tracker
	app.closers = append(app.closers, tracker.Stop)

	n := notify.Auto()
	app.Notifier = n
	if d, ok := n.(*notify.Desktop); ok {
		app.closers = append(app.closers, func() { _ = d.Close() })
	}
	return app, nil
}

// Close releases whatever Setup started.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

// lookup finds a game by title and suggests a close match when there is
// none.
func (a *App) lookup(title string) (library.Game, error) {
	g, err := a.Store.Get(title)
	if !errors.Is(err, library.ErrGameNotFound) {
		return g, err //nolint:wrapcheck // store errors already name the file
	}
	games, lerr := a.Store.List()
	if lerr != nil {
		return g, err //nolint:wrapcheck // original lookup error is more useful
	}
	if near, ok := library.FindClosest(games, title); ok {
		return g, fmt.Errorf("%w (did you mean %q?)", err, near)
	}
	return g, err //nolint:wrapcheck // already names the title
}

func runnerLabel(r string) string {
	if r == library.RunnerDefault {
		return "UMU-Proton Latest"
	}
	return r
}

func (a *App) List() error {
	games, err := a.Store.List()
	if err != nil {
		return err //nolint:wrapcheck // store errors already name the file
	}
	if len(games) == 0 {
		a.printf("No games added yet. Use -add -title <title> -path <exe>.\n")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Title", "Runner", "Playtime", "Prefix")
	for i := range games {
		g := &games[i]
		playtime := "-"
		if g.Playtime > 0 {
			playtime = console.FormatDuration(secondsDuration(g.Playtime))
		}
		t.Row(g.Title, runnerLabel(g.Runner), playtime, g.Prefix)
	}
	a.printf("%s\n", t.Render())
	return nil
}

//nolint:gocritic // record passed by value
func (a *App) Add(g library.Game) error {
	added, err := library.AddGame(a.FS, a.Store, g, a.Config.Values())
	if err != nil {
		return err //nolint:wrapcheck // flow errors already name the game
	}
	log.Info().Str("title", added.Title).Str("gameid", added.GameID).Msg("game added")
	a.printf("Added %s (%s)\n", added.Title, added.GameID)
	return nil
}

func (a *App) Edit(title string, fn func(*library.Game)) error {
	if _, err := a.lookup(title); err != nil {
		return err
	}
	g, err := library.EditGame(a.FS, a.Store, title, fn)
	if err != nil {
		return err //nolint:wrapcheck // flow errors already name the game
	}
	a.printf("Updated %s\n", g.Title)
	return nil
}

func (a *App) Remove(title string, removePrefix bool) error {
	if _, err := a.lookup(title); err != nil {
		return err
	}
	g, err := library.DeleteGame(a.FS, a.Store, title, removePrefix, a.Config.Values())
	if err != nil && g.Title == "" {
		return err //nolint:wrapcheck // flow errors already name the game
	}
	a.printf("Removed %s\n", g.Title)
	if err != nil {
		return fmt.Errorf("prefix kept: %w", err)
	}
	if removePrefix && g.Prefix != "" {
		a.printf("Removed prefix %s\n", g.Prefix)
	}
	return nil
}

func (a *App) Runners() error {
	var inst *steam.Installation
	if found, err := steam.Detect(a.FS, a.Home); err == nil {
		inst = &found
	}
	cat := runners.NewCatalogue(a.FS, a.Dirs.CompatTools, inst)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Runner", "Kind", "Value")
	for _, r := range cat.List() {
		t.Row(r.Label, r.Kind.String(), r.Value)
	}
	a.printf("%s\n", t.Render())
	return nil
}

func (a *App) KillAll(ctx context.Context) error {
	n, err := a.KillRunners(ctx)
	if err != nil {
		return fmt.Errorf("kill runners: %w", err)
	}
	a.printf("Killed %d processes\n", n)
	return nil
}

func (a *App) Logs(ctx context.Context, title string, follow bool) error {
	g, err := a.lookup(title)
	if err != nil {
		return err
	}
	path := a.Dirs.GameLogPath(g.GameID)
	if follow {
		//nolint:wrapcheck // logs errors name the file
		return logs.Follow(ctx, path, a.Out)
	}
	err = logs.Print(a.FS, path, a.Out)
	if errors.Is(err, logs.ErrNoLog) && !a.Config.EnableLogging() {
		return fmt.Errorf("%w; enable-logging is off", err)
	}
	return err //nolint:wrapcheck // logs errors name the file
}

func (a *App) ExportCSV(path string) error {
	games, err := a.Store.List()
	if err != nil {
		return err //nolint:wrapcheck // store errors already name the file
	}
	f, err := a.FS.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := library.ExportCSV(f, games); err != nil {
		_ = f.Close()
		return err //nolint:wrapcheck // already wrapped
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.printf("Exported %d games to %s\n", len(games), path)
	return nil
}

// Set applies a key=value pair to the settings file.
func (a *App) Set(pair string) error {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q (keys: %s)", pair, strings.Join(config.Keys(), ", "))
	}
	if err := a.Config.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
		return err //nolint:wrapcheck // config errors name the key
	}
	if err := a.Config.Save(); err != nil {
		return err //nolint:wrapcheck // config errors name the file
	}
	log.Info().Str("key", key).Str("value", value).Msg("setting changed")
	return nil
}
