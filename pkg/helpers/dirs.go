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

package helpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const (
	AppName         = "faugus-launcher"
	ConfigDirEnv    = "FAUGUS_CONFIG_DIR"
	SettingsFile    = "config.ini"
	GamesFile       = "games.json"
	LogFile         = "faugus.log"
	GameLogFile     = "umu.log"
	RunnerBinary    = "umu-run"
	DefaultUmuRun   = "/usr/bin/umu-run"
	DefaultPrefixes = "Faugus"
)

// Dirs holds every filesystem location the launcher reads or writes.
type Dirs struct {
	Config      string
	Logs        string
	State       string
	CompatTools string
	Prefixes    string
}

// DefaultDirs resolves locations from the XDG base directories. The config
// directory can be overridden with FAUGUS_CONFIG_DIR.
func DefaultDirs() Dirs {
	cfgDir := os.Getenv(ConfigDirEnv)
	if cfgDir == "" {
		cfgDir = filepath.Join(xdg.ConfigHome, AppName)
	}

	return Dirs{
		Config:      cfgDir,
		Logs:        filepath.Join(cfgDir, "logs"),
		State:       filepath.Join(xdg.StateHome, AppName),
		CompatTools: filepath.Join(xdg.DataHome, "Steam", "compatibilitytools.d"),
		Prefixes:    filepath.Join(xdg.Home, DefaultPrefixes),
	}
}

func (d Dirs) SettingsPath() string {
	return filepath.Join(d.Config, SettingsFile)
}

func (d Dirs) GamesPath() string {
	return filepath.Join(d.Config, GamesFile)
}

func (d Dirs) AppLogPath() string {
	return filepath.Join(d.State, LogFile)
}

// GameLogPath returns logs/<gameid>/umu.log.
func (d Dirs) GameLogPath(gameID string) string {
	return filepath.Join(d.Logs, gameID, GameLogFile)
}

// RunningDir holds one pid file per live launch.
func (d Dirs) RunningDir() string {
	return filepath.Join(d.State, "running")
}

// EnsureDirectories creates the config, log and state directories.
func EnsureDirectories(fs afero.Fs, d Dirs) error {
	for _, dir := range []string{d.Config, d.Logs, d.State, d.RunningDir()} {
		if err := fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FindUmuRun locates the compatibility runner binary on PATH, falling back
// to the distro package location.
func FindUmuRun() string {
	if p, err := exec.LookPath(RunnerBinary); err == nil {
		return p
	}
	return DefaultUmuRun
}
