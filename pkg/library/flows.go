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
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/config"
	"github.com/Faugus/faugus-launcher/pkg/helpers"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrUnsafePrefix is returned when a prefix removal is refused.
var ErrUnsafePrefix = errors.New("refusing to remove prefix")

// ApplyDefaults fills the fields a new game inherits from settings: the id,
// a prefix under default-prefix and the Lossless defaults. Explicit values
// are kept.
//
//nolint:gocritic // settings snapshot passed by value
func ApplyDefaults(g *Game, vals config.Values) {
	g.Rederive()

	if g.Prefix == "" && g.UsesProton() && vals.DefaultPrefix != "" && g.GameID != "" {
		g.Prefix = filepath.Join(vals.DefaultPrefix, g.GameID)
	}
	if g.Multiplier == 0 {
		g.Multiplier = DefaultLossless.Multiplier
	}
	if g.Flow == 0 {
		g.Flow = DefaultLossless.Flow
	}
	if g.Present == "" {
		g.Present = DefaultLossless.Present
	}
}

// FeatureDefaults returns a game template carrying the per-game toggles that
// settings preselect for new games.
//
//nolint:gocritic // settings snapshot passed by value
func FeatureDefaults(vals config.Values) Game {
	return Game{
		Runner:        vals.DefaultRunner,
		Mangohud:      Flag(vals.Mangohud),
		Gamemode:      Flag(vals.Gamemode),
		DisableHidraw: Flag(vals.DisableHidraw),
		PreventSleep:  Flag(vals.PreventSleep),
	}
}

// AddGame runs the add flow: defaults, validation and the append. The
// addapp wrapper is written only once the record is stored.
//
//nolint:gocritic // settings snapshot passed by value
func AddGame(fs afero.Fs, s *Store, g Game, vals config.Values) (Game, error) {
	ApplyDefaults(&g, vals)
	PrepareAddAppBat(&g)
	added, err := s.Add(g)
	if err != nil {
		return Game{}, err
	}
	if err := writeAddAppBat(fs, &added); err != nil {
		return added, err
	}
	return added, nil
}

// EditGame runs the edit flow. The id is re-derived when the title changes
// and the addapp wrapper is regenerated after the update is saved.
func EditGame(fs afero.Fs, s *Store, title string, fn func(*Game)) (Game, error) {
	var oldBat string
	g, err := s.Update(title, func(g *Game) {
		oldBat = g.AddAppBat
		fn(g)
		g.Rederive()
		PrepareAddAppBat(g)
	})
	if err != nil {
		return Game{}, err
	}
	if oldBat != "" && oldBat != g.AddAppBat {
		if err := fs.Remove(oldBat); err != nil {
			log.Debug().Err(err).Str("path", oldBat).Msg("old addapp wrapper not removed")
		}
	}
	if err := writeAddAppBat(fs, &g); err != nil {
		return g, err
	}
	return g, nil
}

// DeleteGame runs the delete flow. When removePrefix is set the prefix
// directory is deleted too, unless another game still uses it or it is the
// default prefix root itself.
//
//nolint:gocritic // settings snapshot passed by value
func DeleteGame(fs afero.Fs, s *Store, title string, removePrefix bool, vals config.Values) (Game, error) {
	removed, err := s.Remove(title)
	if err != nil {
		return Game{}, err
	}
	if removed.AddAppBat != "" {
		if err := fs.Remove(removed.AddAppBat); err != nil {
			log.Debug().Err(err).Str("path", removed.AddAppBat).Msg("addapp wrapper not removed")
		}
	}
	if !removePrefix || removed.Prefix == "" {
		return removed, nil
	}

	others, err := s.List()
	if err != nil {
		return removed, err
	}
	if err := checkPrefixRemovable(removed.Prefix, others, vals.DefaultPrefix); err != nil {
		return removed, err
	}

	if err := fs.RemoveAll(removed.Prefix); err != nil {
		return removed, fmt.Errorf("failed to remove prefix: %w", err)
	}
	log.Info().Str("prefix", removed.Prefix).Msg("prefix removed")
	return removed, nil
}

func checkPrefixRemovable(prefix string, others []Game, defaultRoot string) error {
	clean := filepath.Clean(prefix)
	if clean == "/" || clean == "." || !filepath.IsAbs(clean) {
		return fmt.Errorf("%w: %s", ErrUnsafePrefix, prefix)
	}
	if defaultRoot != "" && clean == filepath.Clean(defaultRoot) {
		return fmt.Errorf("%w: %s is the default prefix root", ErrUnsafePrefix, prefix)
	}
	for i := range others {
		if others[i].Prefix == "" {
			continue
		}
		if helpers.PathHasPrefix(others[i].Prefix, clean) || helpers.PathHasPrefix(clean, others[i].Prefix) {
			return fmt.Errorf("%w: still used by %s", ErrUnsafePrefix, others[i].Title)
		}
	}
	return nil
}

// WindowsPath maps a host path onto Wine's Z: drive.
func WindowsPath(p string) string {
	return `Z:` + strings.ReplaceAll(p, "/", `\`)
}

// PrepareAddAppBat sets AddAppBat to the wrapper path g needs, or clears it
// when the checkbox is off or the wrapper cannot be built yet. Nothing is
// written.
func PrepareAddAppBat(g *Game) {
	if !bool(g.AddAppCheckbox) || g.Prefix == "" || g.GameID == "" || g.AddApp == "" {
		g.AddAppBat = ""
		return
	}
	g.AddAppBat = filepath.Join(g.Prefix, "drive_c", "faugus-"+g.GameID+".bat")
}

// WriteAddAppBat creates the batch wrapper that starts the additional
// application before the game, and records its path in AddAppBat. It is a
// no-op when the checkbox is off.
func WriteAddAppBat(fs afero.Fs, g *Game) error {
	PrepareAddAppBat(g)
	return writeAddAppBat(fs, g)
}

func writeAddAppBat(fs afero.Fs, g *Game) error {
	if g.AddAppBat == "" {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("@echo off\r\n")
	sb.WriteString(`start "" "` + WindowsPath(g.AddApp) + "\"\r\n")
	if g.Path != "" {
		sb.WriteString(`start "" "` + WindowsPath(g.Path) + "\"\r\n")
	}

	if err := fs.MkdirAll(filepath.Dir(g.AddAppBat), 0o755); err != nil {
		return fmt.Errorf("failed to create addapp directory: %w", err)
	}
	if err := afero.WriteFile(fs, g.AddAppBat, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write addapp wrapper: %w", err)
	}
	return nil
}
