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
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupDirs bool
	}{
		{name: "creates all directories", setupDirs: false},
		{name: "works when directories already exist", setupDirs: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			dirs := Dirs{
				Config: "/home/u/.config/faugus-launcher",
				Logs:   "/home/u/.config/faugus-launcher/logs",
				State:  "/home/u/.local/state/faugus-launcher",
			}
			if tt.setupDirs {
				require.NoError(t, fs.MkdirAll(dirs.Config, 0o750))
			}

			require.NoError(t, EnsureDirectories(fs, dirs))

			for _, dir := range []string{dirs.Config, dirs.Logs, dirs.State, dirs.RunningDir()} {
				ok, err := afero.DirExists(fs, dir)
				require.NoError(t, err)
				assert.True(t, ok, dir)
			}
		})
	}
}

func TestDefaultDirs_ConfigOverride(t *testing.T) {
	t.Setenv(ConfigDirEnv, "/tmp/faugus-cfg")

	dirs := DefaultDirs()

	assert.Equal(t, "/tmp/faugus-cfg", dirs.Config)
	assert.Equal(t, filepath.Join("/tmp/faugus-cfg", "logs"), dirs.Logs)
	assert.Equal(t, "/tmp/faugus-cfg/config.ini", dirs.SettingsPath())
	assert.Equal(t, "/tmp/faugus-cfg/games.json", dirs.GamesPath())
	assert.Equal(t, "/tmp/faugus-cfg/logs/half-life-2/umu.log", dirs.GameLogPath("half-life-2"))
}

func TestInitLogging(t *testing.T) {
	t.Parallel()

	dirs := Dirs{State: filepath.Join(t.TempDir(), "state")}
	require.NoError(t, InitLogging(dirs, nil))

	ok, err := afero.DirExists(afero.NewOsFs(), dirs.State)
	require.NoError(t, err)
	assert.True(t, ok)
}
