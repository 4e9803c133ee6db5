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

package steam

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const home = "/home/u"

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func shortcutsVDF(name string, appID uint32) []byte {
	var b bytes.Buffer
	cstr := func(s string) { b.WriteString(s); b.WriteByte(0) }
	b.WriteByte(0x00)
	cstr("shortcuts")
	b.WriteByte(0x00)
	cstr("0")
	b.WriteByte(0x02)
	cstr("appid")
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], appID)
	b.Write(n[:])
	b.WriteByte(0x01)
	cstr("AppName")
	cstr(name)
	b.WriteByte(0x08)
	b.WriteByte(0x08)
	b.WriteByte(0x08)
	return b.Bytes()
}

func TestDetect(t *testing.T) {
	t.Parallel()

	t.Run("none", func(t *testing.T) {
		t.Parallel()
		_, err := Detect(afero.NewMemMapFs(), home)
		require.ErrorIs(t, err, ErrNotInstalled)
	})

	t.Run("flatpak", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll(home+"/.var/app/com.valvesoftware.Steam/.local/share/Steam", 0o755))

		inst, err := Detect(fs, home)
		require.NoError(t, err)
		assert.True(t, inst.Flatpak)
	})

	t.Run("native wins", func(t *testing.T) {
		t.Parallel()
		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll(home+"/.var/app/com.valvesoftware.Steam/.steam/steam", 0o755))
		require.NoError(t, fs.MkdirAll(home+"/.local/share/Steam", 0o755))

		inst, err := Detect(fs, home)
		require.NoError(t, err)
		assert.False(t, inst.Flatpak)
		assert.Equal(t, home+"/.local/share/Steam", inst.Root)
	})
}

func TestSandboxed(t *testing.T) {
	t.Parallel()

	none := func(string) string { return "" }
	assert.False(t, Sandboxed(afero.NewMemMapFs(), none))

	withID := func(k string) string {
		if k == "FLATPAK_ID" {
			return "io.github.Faugus.faugus-launcher"
		}
		return ""
	}
	assert.True(t, Sandboxed(afero.NewMemMapFs(), withID))

	fs := afero.NewMemMapFs()
	write(t, fs, "/.flatpak-info", "[Application]\n")
	assert.True(t, Sandboxed(fs, none))
}

func TestLibraryFolders(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	root := home + "/.local/share/Steam"

	write(t, fs, root+"/steamapps/libraryfolders.vdf", `"libraryfolders"
{
	"0"
	{
		"path"		"`+root+`"
	}
	"1"
	{
		"Path"		"/mnt/games/SteamLibrary"
	}
}
`)

	folders := Installation{Root: root}.LibraryFolders(fs)
	assert.Equal(t, []string{root, "/mnt/games/SteamLibrary"}, folders)
}

func TestFindAppID_Manifest(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	root := home + "/.steam/steam"

	write(t, fs, root+"/steamapps/libraryfolders.vdf", `"libraryfolders" { "1" { "path" "/mnt/lib" } }`)
	write(t, fs, "/mnt/lib/steamapps/appmanifest_220.acf", `"AppState"
{
	"appid"		"220"
	"name"		"Half-Life 2"
}
`)

	id, err := Installation{Root: root}.FindAppID(fs, "half-life 2")
	require.NoError(t, err)
	assert.Equal(t, uint32(220), id)
}

func TestFindAppID_Shortcut(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	root := home + "/.steam/steam"

	require.NoError(t, afero.WriteFile(fs, root+"/userdata/1234/config/shortcuts.vdf",
		shortcutsVDF("Modded Game", 3414143657), 0o644))

	id, err := Installation{Root: root}.FindAppID(fs, "Modded Game")
	require.NoError(t, err)
	assert.Equal(t, uint32(3414143657), id)

	_, err = Installation{Root: root}.FindAppID(fs, "Missing")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestInvocation(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	root := home + "/.var/app/com.valvesoftware.Steam/.steam/steam"
	write(t, fs, root+"/steamapps/appmanifest_400.acf", `"AppState" { "appid" "400" "name" "Portal" }`)

	inv, err := Invocation(fs, home, func(string) string { return "" }, "Portal")
	require.NoError(t, err)
	assert.Equal(t, uint32(400), inv.AppID)
	assert.True(t, inv.Flatpak)
	assert.False(t, inv.Sandboxed)
}
