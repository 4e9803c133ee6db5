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

// Package steam locates the Steam client and looks games up in its
// libraries so the Steam runner can hand them to steam -applaunch.
package steam

import (
	"errors"
	"path/filepath"

	"github.com/Faugus/faugus-launcher/pkg/launch"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// FlatpakSteamID is the Flatpak app ID for Steam.
const FlatpakSteamID = "com.valvesoftware.Steam"

// flatpakInfo exists at the root of every Flatpak sandbox.
const flatpakInfo = "/.flatpak-info"

var (
	ErrNotInstalled = errors.New("steam installation not found")
	ErrGameNotFound = errors.New("game not found in steam")
)

// Installation is a detected Steam root.
type Installation struct {
	Root    string
	Flatpak bool
}

type candidate struct {
	path    string
	flatpak bool
}

func candidates(home string) []candidate {
	fp := filepath.Join(home, ".var", "app", FlatpakSteamID)
	return []candidate{
		{path: filepath.Join(home, ".steam", "steam")},
		{path: filepath.Join(home, ".local", "share", "Steam")},
		{path: filepath.Join(fp, ".steam", "steam"), flatpak: true},
		{path: filepath.Join(fp, ".local", "share", "Steam"), flatpak: true},
		{path: filepath.Join(home, "snap", "steam", "common", ".steam", "steam")},
	}
}

// Detect returns the first Steam root found under home. Native installs
// win over Flatpak when both exist.
func Detect(fs afero.Fs, home string) (Installation, error) {
	for _, c := range candidates(home) {
		ok, err := afero.DirExists(fs, c.path)
		if err != nil || !ok {
			continue
		}
		log.Debug().Str("path", c.path).Bool("flatpak", c.flatpak).Msg("found steam installation")
		return Installation{Root: c.path, Flatpak: c.flatpak}, nil
	}
	return Installation{}, ErrNotInstalled
}

// Sandboxed reports whether this process runs inside a Flatpak sandbox and
// must reach host binaries through flatpak-spawn.
func Sandboxed(fs afero.Fs, getenv func(string) string) bool {
	if getenv("FLATPAK_ID") != "" {
		return true
	}
	ok, _ := afero.Exists(fs, flatpakInfo)
	return ok
}

// Invocation resolves title to an appid and describes how to call Steam
// for it.
func Invocation(fs afero.Fs, home string, getenv func(string) string, title string) (launch.SteamInvocation, error) {
	inst, err := Detect(fs, home)
	if err != nil {
		return launch.SteamInvocation{}, err
	}
	appID, err := inst.FindAppID(fs, title)
	if err != nil {
		return launch.SteamInvocation{}, err
	}
	return launch.SteamInvocation{
		AppID:     appID,
		Flatpak:   inst.Flatpak,
		Sandboxed: Sandboxed(fs, getenv),
	}, nil
}
