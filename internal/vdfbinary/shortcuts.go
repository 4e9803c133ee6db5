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

package vdfbinary

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// ErrNoShortcuts is returned when the file has no shortcuts object.
var ErrNoShortcuts = errors.New("vdf has no shortcuts object")

// Shortcut is one non-Steam game entry.
type Shortcut struct {
	AppName       string
	Exe           string
	StartDir      string
	LaunchOptions string
	Tags          []string
	AppID         uint32
	Hidden        bool
}

// RungameID is the 64-bit id Steam uses for steam://rungameid/ links to
// non-Steam shortcuts.
func (s Shortcut) RungameID() uint64 {
	return uint64(s.AppID)<<32 | 0x02000000
}

// ReadShortcuts decodes shortcuts.vdf. Entries are returned in index order;
// entries without an appid or name are skipped, since third-party tools
// write partial records.
func ReadShortcuts(r io.Reader) ([]Shortcut, error) {
	root, err := Decode(r)
	if err != nil {
		return nil, err
	}
	entries, ok := root.Map("shortcuts")
	if !ok {
		return nil, ErrNoShortcuts
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	out := make([]Shortcut, 0, len(keys))
	for _, k := range keys {
		e, ok := entries.Map(k)
		if !ok {
			return nil, fmt.Errorf("shortcut %s is not an object", k)
		}

		appID, hasID := e.Uint32("appid")
		name, hasName := e.String("AppName")
		if !hasID || !hasName {
			continue
		}
		s := Shortcut{AppID: appID, AppName: name, Hidden: e.Bool("IsHidden")}
		s.Exe, _ = e.String("Exe")
		s.StartDir, _ = e.String("StartDir")
		s.LaunchOptions, _ = e.String("LaunchOptions")

		if tags, ok := e.Map("tags"); ok {
			for i := 0; i < len(tags); i++ {
				if t, ok := tags.String(strconv.Itoa(i)); ok {
					s.Tags = append(s.Tags, t)
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}
