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
	"testing"

	"github.com/spf13/afero"
	"pgregory.net/rapid"
)

// TestPropertySaveLoadPreservesValues verifies any typed settings survive a
// save and reload unchanged.
func TestPropertySaveLoadPreservesValues(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		vals := Values{
			DefaultPrefix:    rapid.StringMatching(`/[a-zA-Z0-9 _./-]{0,30}`).Draw(t, "prefix"),
			DefaultRunner:    rapid.StringMatching(`[a-zA-Z0-9 ._-]{0,20}`).Draw(t, "runner"),
			LosslessLocation: rapid.StringMatching(`(/[a-zA-Z0-9=#_.-]{1,10}){0,3}`).Draw(t, "lossless"),
			InterfaceMode:    rapid.SampledFrom([]string{InterfaceList, InterfaceBlocks, InterfaceBanners}).Draw(t, "mode"),
			Mangohud:         rapid.Bool().Draw(t, "mangohud"),
			Gamemode:         rapid.Bool().Draw(t, "gamemode"),
			EnableHDR:        rapid.Bool().Draw(t, "hdr"),
			Playtime:         rapid.Bool().Draw(t, "playtime"),
		}

		fs := afero.NewMemMapFs()
		cfg, err := NewConfig(fs, testCfgPath, vals)
		if err != nil {
			t.Fatalf("new config: %v", err)
		}
		if err := cfg.Load(); err != nil {
			t.Fatalf("reload: %v", err)
		}

		got := cfg.Values()
		if got != vals {
			t.Fatalf("values changed across save/load:\nwant %+v\ngot  %+v", vals, got)
		}
	})
}

// TestPropertyMigrateNeverDropsUnknownKeys verifies foreign keys survive.
func TestPropertyMigrateNeverDropsUnknownKeys(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		key := rapid.StringMatching(`x-[a-z]{1,12}`).Draw(t, "key")
		value := rapid.StringMatching(`[a-zA-Z0-9]{0,12}`).Draw(t, "value")

		m := migrate([]entry{{Key: key, Value: value}}, testDefaults())
		if len(m.extras) != 1 || m.extras[0].Key != key || m.extras[0].Value != value {
			t.Fatalf("unknown key lost: %+v", m.extras)
		}
		if !m.changed() {
			t.Fatalf("missing known keys must trigger a rewrite")
		}
	})
}
