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

package config

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCfgPath = "/home/u/.config/faugus-launcher/config.ini"

func testDefaults() Values {
	return Defaults("/home/u/Faugus")
}

func readFile(t *testing.T, fs afero.Fs) string {
	t.Helper()
	data, err := afero.ReadFile(fs, testCfgPath)
	require.NoError(t, err)
	return string(data)
}

func TestNewConfig_CreatesDefaultFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)

	assert.Equal(t, "/home/u/Faugus", cfg.DefaultPrefix())
	assert.True(t, cfg.TrackPlaytime())

	content := readFile(t, fs)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, len(Keys()))
	assert.Equal(t, "close-onlaunch=False", lines[0])
	assert.Equal(t, `default-prefix="/home/u/Faugus"`, lines[1])
	assert.Contains(t, content, `default-runner=""`+"\n")
	assert.Contains(t, content, "interface-mode=List\n")
	assert.Contains(t, content, "playtime=True\n")
}

func TestLoad_MigratesAndRewrites(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testCfgPath, []byte(
		"mangohud=True\n"+
			"gamemode=false\n"+
			`default-prefix="/mnt/games/Faugus"`+"\n"+
			"default-runner='GE-Proton9-20'\n"+
			"lossless-location=/opt/ls=1/Lossless.dll\n"+
			"custom-theme=dark\n",
	), 0o600))

	cfg, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)

	vals := cfg.Values()
	assert.True(t, vals.Mangohud)
	assert.False(t, vals.Gamemode)
	assert.Equal(t, "/mnt/games/Faugus", vals.DefaultPrefix)
	assert.Equal(t, "GE-Proton9-20", vals.DefaultRunner)
	assert.Equal(t, "/opt/ls=1/Lossless.dll", vals.LosslessLocation, "first = is the delimiter")
	assert.True(t, vals.ShowDonate, "missing key takes default")

	content := readFile(t, fs)
	assert.Contains(t, content, "enable-hdr=False\n", "defaults written back")
	assert.Contains(t, content, `default-runner="GE-Proton9-20"`+"\n")
	assert.True(t, strings.HasSuffix(content, "custom-theme=dark\n"), "unknown keys preserved after known keys")
}

func TestLoad_CompleteFileIsNotRewritten(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)

	// hand-edit a value using a different spelling of true
	content := strings.Replace(readFile(t, fs), "mangohud=False", "mangohud=true", 1)
	require.NoError(t, afero.WriteFile(fs, testCfgPath, []byte(content), 0o600))

	cfg, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)
	assert.True(t, cfg.Values().Mangohud)
	assert.Equal(t, content, readFile(t, fs))
}

func TestLoad_RepairsMalformedValues(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testCfgPath, []byte(
		"splash-disable=maybe\ninterface-mode=Grid\n",
	), 0o600))

	cfg, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)

	assert.False(t, cfg.SplashDisable())
	assert.Equal(t, InterfaceList, cfg.Values().InterfaceMode)
	content := readFile(t, fs)
	assert.Contains(t, content, "splash-disable=False\n")
	assert.Contains(t, content, "interface-mode=List\n")
}

func TestLoad_IgnoresCommentsAndBlankLines(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testCfgPath, []byte(
		"# written by hand\n\nlossless-location=/games/#1/Lossless.dll\nenable-logging=True\n",
	), 0o600))

	cfg, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)
	assert.True(t, cfg.EnableLogging())
	assert.Equal(t, "/games/#1/Lossless.dll", cfg.Values().LosslessLocation)
}

func TestSetAndGet(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)

	require.NoError(t, cfg.Set("default-runner", "Proton-GE Latest"))
	require.NoError(t, cfg.Set("wayland-driver", "True"))
	require.NoError(t, cfg.Save())

	got, err := cfg.Get("default-runner")
	require.NoError(t, err)
	assert.Equal(t, "Proton-GE Latest", got)

	got, err = cfg.Get("wayland-driver")
	require.NoError(t, err)
	assert.Equal(t, "True", got)

	reloaded, err := NewConfig(fs, testCfgPath, testDefaults())
	require.NoError(t, err)
	assert.Equal(t, "Proton-GE Latest", reloaded.DefaultRunner())
	assert.True(t, reloaded.Values().WaylandDriver)

	err = cfg.Set("no-such-key", "1")
	require.ErrorIs(t, err, ErrUnknownKey)

	err = cfg.Set("enable-hdr", "perhaps")
	require.Error(t, err)
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(afero.NewMemMapFs(), testCfgPath, testDefaults())
	require.NoError(t, err)

	cfg.Update(func(v *Values) {
		v.Gamemode = true
		v.Language = "pt_BR"
	})

	vals := cfg.Values()
	assert.True(t, vals.Gamemode)
	assert.Equal(t, "pt_BR", vals.Language)
}
