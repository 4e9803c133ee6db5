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
package library

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Faugus/faugus-launcher/pkg/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() config.Values {
	vals := config.Defaults("/home/user/Faugus")
	vals.DefaultRunner = "GE-Proton"
	return vals
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	g := Game{Title: "Half-Life 2", Path: "/games/hl2.exe", Runner: "GE-Proton"}
	ApplyDefaults(&g, testSettings())

	assert.Equal(t, "half-life-2", g.GameID)
	assert.Equal(t, "/home/user/Faugus/half-life-2", g.Prefix)
	assert.Equal(t, DefaultLossless.Multiplier, g.Multiplier)
	assert.Equal(t, DefaultLossless.Flow, g.Flow)
	assert.Equal(t, PresentFIFO, g.Present)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	g := Game{Title: "Portal", Prefix: "/custom", Runner: "GE-Proton"}
	g.Multiplier = 3
	g.Flow = 50
	g.Present = PresentMailbox
	ApplyDefaults(&g, testSettings())

	assert.Equal(t, "/custom", g.Prefix)
	assert.Equal(t, 3, g.Multiplier)
	assert.Equal(t, 50, g.Flow)
	assert.Equal(t, PresentMailbox, g.Present)
}

func TestApplyDefaults_NativeHasNoPrefix(t *testing.T) {
	t.Parallel()

	g := Game{Title: "Native", Path: "/games/run.sh", Runner: RunnerNative}
	ApplyDefaults(&g, testSettings())
	assert.Empty(t, g.Prefix)
}

func TestFeatureDefaults(t *testing.T) {
	t.Parallel()

	vals := testSettings()
	vals.Mangohud = true
	vals.PreventSleep = true

	g := FeatureDefaults(vals)
	assert.Equal(t, "GE-Proton", g.Runner)
	assert.True(t, bool(g.Mangohud))
	assert.False(t, bool(g.Gamemode))
	assert.True(t, bool(g.PreventSleep))
}

func TestWindowsPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `Z:\home\user\Games\tool.exe`, WindowsPath("/home/user/Games/tool.exe"))
}

func TestWriteAddAppBat(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	g := Game{
		Title:          "Modded",
		GameID:         "modded",
		Path:           "/games/modded/game.exe",
		Prefix:         "/pfx/modded",
		AddApp:         "/tools/trainer.exe",
		AddAppCheckbox: true,
	}
	require.NoError(t, WriteAddAppBat(fs, &g))
	assert.Equal(t, "/pfx/modded/drive_c/faugus-modded.bat", g.AddAppBat)

	data, err := afero.ReadFile(fs, g.AddAppBat)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `start "" "Z:\tools\trainer.exe"`, lines[1])
	assert.Equal(t, `start "" "Z:\games\modded\game.exe"`, lines[2])
}

func TestWriteAddAppBat_CheckboxOff(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()

	g := Game{GameID: "x", Prefix: "/pfx/x", AddApp: "/a.exe", AddAppBat: "/old.bat"}
	require.NoError(t, WriteAddAppBat(fs, &g))
	assert.Empty(t, g.AddAppBat)
}

func TestAddGame(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	g := Game{
		Title:          "Modded",
		Path:           "/games/modded/game.exe",
		Runner:         "GE-Proton",
		AddApp:         "/tools/trainer.exe",
		AddAppCheckbox: true,
	}
	added, err := AddGame(fs, s, g, testSettings())
	require.NoError(t, err)
	assert.Equal(t, "/home/user/Faugus/modded", added.Prefix)
	assert.Equal(t, "/home/user/Faugus/modded/drive_c/faugus-modded.bat", added.AddAppBat)

	exists, err := afero.Exists(fs, added.AddAppBat)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAddGame_DuplicateKeepsWrapper(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	g := Game{
		Title:          "Modded",
		Path:           "/games/modded/game.exe",
		Runner:         "GE-Proton",
		AddApp:         "/tools/trainer.exe",
		AddAppCheckbox: true,
	}
	added, err := AddGame(fs, s, g, testSettings())
	require.NoError(t, err)

	dup := g
	dup.AddApp = "/tools/other.exe"
	_, err = AddGame(fs, s, dup, testSettings())
	require.ErrorIs(t, err, ErrDuplicateTitle)

	data, err := afero.ReadFile(fs, added.AddAppBat)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Z:\tools\trainer.exe`)
	assert.NotContains(t, string(data), "other.exe")
}

func TestAddGame_InvalidWritesNothing(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	g := Game{
		Title:          "Modded",
		Path:           "/games/modded/game.exe",
		Runner:         "GE=Proton",
		AddApp:         "/tools/trainer.exe",
		AddAppCheckbox: true,
	}
	_, err := AddGame(fs, s, g, testSettings())
	require.ErrorIs(t, err, ErrInvalidGame)

	exists, err := afero.Exists(fs, "/home/user/Faugus/modded/drive_c/faugus-modded.bat")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEditGame_RegeneratesBat(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	g := Game{
		Title:          "Modded",
		Path:           "/games/modded/game.exe",
		Runner:         "GE-Proton",
		AddApp:         "/tools/trainer.exe",
		AddAppCheckbox: true,
	}
	_, err := AddGame(fs, s, g, testSettings())
	require.NoError(t, err)

	edited, err := EditGame(fs, s, "Modded", func(g *Game) {
		g.Title = "Modded Again"
	})
	require.NoError(t, err)
	assert.Equal(t, "modded-again", edited.GameID)
	assert.Equal(t, "/home/user/Faugus/modded/drive_c/faugus-modded-again.bat", edited.AddAppBat)

	exists, err := afero.Exists(fs, edited.AddAppBat)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = afero.Exists(fs, "/home/user/Faugus/modded/drive_c/faugus-modded.bat")
	require.NoError(t, err)
	assert.False(t, exists, "old wrapper removed")
}

func TestDeleteGame_KeepsPrefixByDefault(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	added, err := AddGame(fs, s, testGame("Portal"), testSettings())
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(added.Prefix+"/drive_c", 0o755))

	_, err = DeleteGame(fs, s, "Portal", false, testSettings())
	require.NoError(t, err)

	exists, err := afero.DirExists(fs, added.Prefix)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteGame_RemovesPrefix(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	added, err := AddGame(fs, s, testGame("Portal"), testSettings())
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(added.Prefix+"/drive_c", 0o755))

	_, err = DeleteGame(fs, s, "Portal", true, testSettings())
	require.NoError(t, err)

	exists, err := afero.DirExists(fs, added.Prefix)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteGame_SharedPrefixRefused(t *testing.T) {
	t.Parallel()
	fs, s := newTestStore(t)

	one := testGame("One")
	one.Prefix = "/pfx/shared"
	two := testGame("Two")
	two.Prefix = "/pfx/shared"
	_, err := AddGame(fs, s, one, testSettings())
	require.NoError(t, err)
	_, err = AddGame(fs, s, two, testSettings())
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/pfx/shared", 0o755))

	removed, err := DeleteGame(fs, s, "One", true, testSettings())
	require.ErrorIs(t, err, ErrUnsafePrefix)
	assert.Equal(t, "One", removed.Title)

	exists, err := afero.DirExists(fs, "/pfx/shared")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Get("One")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestCheckPrefixRemovable(t *testing.T) {
	t.Parallel()

	others := []Game{{Title: "Other", Prefix: "/pfx/other"}}
	tests := []struct {
		name    string
		prefix  string
		wantErr bool
	}{
		{"own prefix", "/pfx/mine", false},
		{"root", "/", true},
		{"relative", "pfx", true},
		{"default root", "/home/user/Faugus", true},
		{"shared", "/pfx/other", true},
		{"parent of other", "/pfx", true},
		{"sibling with common stem", "/pfx/other2", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkPrefixRemovable(tt.prefix, others, "/home/user/Faugus")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsafePrefix)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFindClosest(t *testing.T) {
	t.Parallel()

	games := []Game{{Title: "Half-Life 2"}, {Title: "Portal 2"}, {Title: "Celeste"}}

	got, ok := FindClosest(games, "half life 2")
	require.True(t, ok)
	assert.Equal(t, "Half-Life 2", got)

	got, ok = FindClosest(games, "portal2")
	require.True(t, ok)
	assert.Equal(t, "Portal 2", got)

	got, ok = FindClosest(append(games, Game{Title: "Pokémon Légendes"}), "pokemon legendes")
	require.True(t, ok)
	assert.Equal(t, "Pokémon Légendes", got)

	_, ok = FindClosest(games, "zzzzzzzz")
	assert.False(t, ok)

	_, ok = FindClosest(games, "  ")
	assert.False(t, ok)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	games := []Game{
		{Title: "Half-Life 2", GameID: "half-life-2", Runner: "GE-Proton", Playtime: 165},
		{Title: "Celeste", GameID: "celeste", Runner: RunnerNative},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, games))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,gameid,runner,prefix,path,playtime_seconds", lines[0])
	assert.Equal(t, "Half-Life 2,half-life-2,GE-Proton,,,165", lines[1])
}
