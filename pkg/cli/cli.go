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

// Package cli implements the command-line surface of the launcher binaries.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/config"
	"github.com/Faugus/faugus-launcher/pkg/library"
)

// ErrNoAction is returned by Post when no action flag was given.
var ErrNoAction = errors.New("no action given")

type Flags struct {
	set *flag.FlagSet

	List         *bool
	Play         *string
	Add          *bool
	Edit         *string
	Remove       *string
	RemovePrefix *bool
	Runners      *bool
	KillAll      *bool
	Logs         *string
	Follow       *bool
	ExportCSV    *string
	Set          *string
	Version      *bool
	Debug        *bool

	Title         *string
	Path          *string
	Prefix        *string
	Runner        *string
	Protonfix     *string
	LaunchArgs    *string
	GameArgs      *string
	AddApp        *string
	Mangohud      *bool
	Gamemode      *bool
	DisableHidraw *bool
	PreventSleep  *bool
	Lossless      *bool
}

// SetupFlags defines the library flags on set.
func SetupFlags(set *flag.FlagSet) *Flags {
	return &Flags{
		set: set,

		List:         set.Bool("list", false, "list games in the library"),
		Play:         set.String("play", "", "launch a game by title"),
		Add:          set.Bool("add", false, "add a game using the game flags below"),
		Edit:         set.String("edit", "", "edit a game by title using the game flags below"),
		Remove:       set.String("remove", "", "remove a game by title"),
		RemovePrefix: set.Bool("remove-prefix", false, "with -remove, also delete the game's prefix"),
		Runners:      set.Bool("runners", false, "list available runners"),
		KillAll:      set.Bool("kill-all", false, "kill every running umu, wine and proton process"),
		Logs:         set.String("logs", "", "print the runner log of a game by title"),
		Follow:       set.Bool("follow", false, "with -logs, keep printing new output"),
		ExportCSV:    set.String("export-csv", "", "write the library to a CSV file"),
		Set:          set.String("set", "", "change a setting, as key=value"),
		Version:      set.Bool("version", false, "print version and exit"),
		Debug:        set.Bool("debug", false, "log debug output to stderr"),

		Title:         set.String("title", "", "game title"),
		Path:          set.String("path", "", "game executable"),
		Prefix:        set.String("prefix", "", "wine prefix, defaults to <default-prefix>/<gameid>"),
		Runner:        set.String("runner", "", "runner, see -runners"),
		Protonfix:     set.String("protonfix", "", "umu protonfix id"),
		LaunchArgs:    set.String("launch-args", "", "words placed before the runner, e.g. env vars or wrappers"),
		GameArgs:      set.String("game-args", "", "arguments passed to the game"),
		AddApp:        set.String("addapp", "", "additional executable started before the game"),
		Mangohud:      set.Bool("mangohud", false, "enable MangoHud"),
		Gamemode:      set.Bool("gamemode", false, "enable GameMode"),
		DisableHidraw: set.Bool("disable-hidraw", false, "disable Proton hidraw"),
		PreventSleep:  set.Bool("prevent-sleep", false, "inhibit screen sleep while playing"),
		Lossless:      set.Bool("lossless", false, "enable Lossless Scaling frame generation"),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses args and handles flags that need no setup. It reports whether
// the program should exit.
func (f *Flags) Pre(args []string, out io.Writer) (bool, error) {
	if err := f.set.Parse(args); err != nil {
		return true, fmt.Errorf("failed to parse flags: %w", err)
	}
	if *f.Version {
		_, _ = fmt.Fprintf(out, "Faugus Launcher v%s\n", config.AppVersion)
		return true, nil
	}
	return false, nil
}

// ApplyGame copies the passed game flags onto g. Flags left unset keep
// g's values.
func (f *Flags) ApplyGame(g *library.Game) {
	strs := map[string]struct {
		dst *string
		val *string
	}{
		"title":       {&g.Title, f.Title},
		"path":        {&g.Path, f.Path},
		"prefix":      {&g.Prefix, f.Prefix},
		"runner":      {&g.Runner, f.Runner},
		"protonfix":   {&g.Protonfix, f.Protonfix},
		"launch-args": {&g.LaunchArguments, f.LaunchArgs},
		"game-args":   {&g.GameArguments, f.GameArgs},
		"addapp":      {&g.AddApp, f.AddApp},
	}
	for name, fl := range strs {
		if f.isFlagPassed(name) {
			*fl.dst = strings.TrimSpace(*fl.val)
		}
	}
	if f.isFlagPassed("addapp") {
		g.AddAppCheckbox = library.Flag(g.AddApp != "")
	}

	flags := map[string]struct {
		dst *library.Flag
		val *bool
	}{
		"mangohud":       {&g.Mangohud, f.Mangohud},
		"gamemode":       {&g.Gamemode, f.Gamemode},
		"disable-hidraw": {&g.DisableHidraw, f.DisableHidraw},
		"prevent-sleep":  {&g.PreventSleep, f.PreventSleep},
		"lossless":       {&g.Lossless.Enabled, f.Lossless},
	}
	for name, fl := range flags {
		if f.isFlagPassed(name) {
			*fl.dst = library.Flag(*fl.val)
		}
	}
}

// Post runs the first action flag that was given.
func (f *Flags) Post(ctx context.Context, app *App) error {
	switch {
	case *f.List:
		return app.List()
	case f.isFlagPassed("play"):
		if *f.Play == "" {
			return errors.New("play flag requires a title")
		}
		return app.Play(ctx, *f.Play)
	case *f.Add:
		g := library.FeatureDefaults(app.Config.Values())
		f.ApplyGame(&g)
		return app.Add(g)
	case f.isFlagPassed("edit"):
		return app.Edit(*f.Edit, f.ApplyGame)
	case f.isFlagPassed("remove"):
		return app.Remove(*f.Remove, *f.RemovePrefix)
	case *f.Runners:
		return app.Runners()
	case *f.KillAll:
		return app.KillAll(ctx)
	case f.isFlagPassed("logs"):
		return app.Logs(ctx, *f.Logs, *f.Follow)
	case f.isFlagPassed("export-csv"):
		return app.ExportCSV(*f.ExportCSV)
	case f.isFlagPassed("set"):
		return app.Set(*f.Set)
	default:
		return ErrNoAction
	}
}
