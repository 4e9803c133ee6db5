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

// Package runners lists the compatibility tools a game can run under and
// checks a chosen runner before launch.
package runners

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/library"
	"github.com/Faugus/faugus-launcher/pkg/steam"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// SystemCompatTools is where distribution packages install Proton builds.
const SystemCompatTools = "/usr/share/steam/compatibilitytools.d"

const cachyOSGlob = "proton-cachyos*"

type Kind int

const (
	// KindAlias is a name umu or the launcher resolves itself.
	KindAlias Kind = iota
	// KindCompatTool is a directory under a compatibilitytools.d.
	KindCompatTool
	// KindSteamProton is an official Proton build from a Steam library.
	KindSteamProton
)

func (k Kind) String() string {
	switch k {
	case KindAlias:
		return "alias"
	case KindCompatTool:
		return "compat-tool"
	case KindSteamProton:
		return "steam"
	default:
		return "unknown"
	}
}

// Runner is one selectable entry. Value is what goes into the game
// record's runner field.
type Runner struct {
	Label string
	Value string
	Path  string
	Kind  Kind
}

// Catalogue discovers runners on the host.
type Catalogue struct {
	fs          afero.Fs
	steam       *steam.Installation
	compatTools string
	systemTools string
}

// NewCatalogue scans compatTools and the system directory. inst may be nil
// when Steam is not installed.
func NewCatalogue(fs afero.Fs, compatTools string, inst *steam.Installation) *Catalogue {
	return &Catalogue{
		fs:          fs,
		compatTools: compatTools,
		systemTools: SystemCompatTools,
		steam:       inst,
	}
}

// CachyOSPath returns the newest proton-cachyos build installed by the
// system package, or "" when there is none.
func (c *Catalogue) CachyOSPath() string {
	matches, err := afero.Glob(c.fs, filepath.Join(c.systemTools, cachyOSGlob))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Slice(matches, func(i, j int) bool {
		return naturalLess(filepath.Base(matches[i]), filepath.Base(matches[j]))
	})
	return matches[len(matches)-1]
}

// List returns aliases first, then user compat tools newest-looking
// first, then official Proton builds.
func (c *Catalogue) List() []Runner {
	out := []Runner{
		{Label: "UMU-Proton Latest", Value: library.RunnerDefault, Kind: KindAlias},
		{Label: library.RunnerGELatest, Value: library.RunnerGELatest, Kind: KindAlias},
		{Label: library.RunnerEMLatest, Value: library.RunnerEMLatest, Kind: KindAlias},
	}
	if p := c.CachyOSPath(); p != "" {
		out = append(out, Runner{Label: library.RunnerCachyOS, Value: library.RunnerCachyOS, Path: p, Kind: KindAlias})
	}

	for _, dir := range c.toolDirs(c.compatTools) {
		name := filepath.Base(dir)
		out = append(out, Runner{Label: name, Value: name, Path: dir, Kind: KindCompatTool})
	}
	for _, dir := range c.steamProtons() {
		name := filepath.Base(dir)
		out = append(out, Runner{Label: name, Value: dir, Path: dir, Kind: KindSteamProton})
	}

	out = append(out,
		Runner{Label: library.RunnerNative, Value: library.RunnerNative, Kind: KindAlias},
		Runner{Label: library.RunnerSteam, Value: library.RunnerSteam, Kind: KindAlias},
	)
	return out
}

// toolDirs lists the Proton directories in root, skipping umu's own
// download cache entries.
func (c *Catalogue) toolDirs(root string) []string {
	entries, err := afero.ReadDir(c.fs, root)
	if err != nil {
		log.Debug().Err(err).Str("path", root).Msg("compat tools directory not readable")
		return nil
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "UMU-Latest") {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name()), "proton") {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		return naturalLess(filepath.Base(dirs[j]), filepath.Base(dirs[i]))
	})
	return dirs
}

func (c *Catalogue) steamProtons() []string {
	if c.steam == nil {
		return nil
	}
	var out []string
	for _, lib := range c.steam.LibraryFolders(c.fs) {
		matches, err := afero.Glob(c.fs, filepath.Join(lib, "steamapps", "common", "Proton*"))
		if err != nil {
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			if ok, _ := afero.Exists(c.fs, filepath.Join(m, "proton")); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// naturalLess orders "GE-Proton9-2" before "GE-Proton9-10".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, restA := leadingDigits(a)
		db, restB := leadingDigits(b)
		if da != "" && db != "" {
			if len(da) != len(db) {
				return len(da) < len(db)
			}
			if da != db {
				return da < db
			}
			a, b = restA, restB
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digits = strings.TrimLeft(s[:i], "0")
	if i > 0 && digits == "" {
		digits = "0"
	}
	return digits, s[i:]
}
