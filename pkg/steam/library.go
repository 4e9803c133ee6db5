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
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Faugus/faugus-launcher/internal/vdfbinary"
	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// normalizeKeys lowercases every key; Valve treats VDF keys
// case-insensitively.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

func parseTextVDF(fs afero.Fs, path string) (map[string]any, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("error closing vdf file")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return normalizeKeys(m), nil
}

// LibraryFolders lists every Steam library root, the installation root
// first.
func (i Installation) LibraryFolders(fs afero.Fs) []string {
	folders := []string{i.Root}

	m, err := parseTextVDF(fs, filepath.Join(i.Root, "steamapps", "libraryfolders.vdf"))
	if err != nil {
		log.Debug().Err(err).Msg("no library folders file")
		return folders
	}
	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		return folders
	}

	ids := make([]string, 0, len(lfs))
	for id := range lfs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seen := map[string]bool{filepath.Clean(i.Root): true}
	for _, id := range ids {
		entry, ok := lfs[id].(map[string]any)
		if !ok {
			continue
		}
		p, ok := entry["path"].(string)
		if !ok || p == "" || seen[filepath.Clean(p)] {
			continue
		}
		seen[filepath.Clean(p)] = true
		folders = append(folders, p)
	}
	return folders
}

// FindAppID looks title up in installed app manifests, then in non-Steam
// shortcuts. Titles are compared case-insensitively.
func (i Installation) FindAppID(fs afero.Fs, title string) (uint32, error) {
	for _, lib := range i.LibraryFolders(fs) {
		if id, ok := findManifest(fs, lib, title); ok {
			return id, nil
		}
	}
	if id, ok := i.findShortcut(fs, title); ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrGameNotFound, title)
}

func findManifest(fs afero.Fs, library, title string) (uint32, bool) {
	manifests, err := afero.Glob(fs, filepath.Join(library, "steamapps", "appmanifest_*.acf"))
	if err != nil {
		return 0, false
	}
	sort.Strings(manifests)

	for _, mf := range manifests {
		m, err := parseTextVDF(fs, mf)
		if err != nil {
			log.Debug().Err(err).Msg("skipping unreadable manifest")
			continue
		}
		state, ok := m["appstate"].(map[string]any)
		if !ok {
			continue
		}
		name, _ := state["name"].(string)
		if !strings.EqualFold(name, title) {
			continue
		}
		raw, _ := state["appid"].(string)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			log.Debug().Err(err).Str("manifest", mf).Msg("invalid appid")
			continue
		}
		return uint32(id), true
	}
	return 0, false
}

// Shortcuts returns the non-Steam shortcuts of every local Steam user.
func (i Installation) Shortcuts(fs afero.Fs) []vdfbinary.Shortcut {
	paths, err := afero.Glob(fs, filepath.Join(i.Root, "userdata", "*", "config", "shortcuts.vdf"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)

	var out []vdfbinary.Shortcut
	for _, p := range paths {
		f, err := fs.Open(p)
		if err != nil {
			continue
		}
		list, err := vdfbinary.ReadShortcuts(f)
		_ = f.Close()
		if err != nil {
			log.Debug().Err(err).Str("path", p).Msg("skipping unreadable shortcuts file")
			continue
		}
		out = append(out, list...)
	}
	return out
}

func (i Installation) findShortcut(fs afero.Fs, title string) (uint32, bool) {
	for _, s := range i.Shortcuts(fs) {
		if strings.EqualFold(s.AppName, title) {
			return s.AppID, true
		}
	}
	return 0, false
}
