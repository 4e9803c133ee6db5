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
	"slices"

	"github.com/Faugus/faugus-launcher/pkg/helpers"
)

// entry is one KEY=VALUE pair as read from disk.
type entry struct {
	Key   string
	Value string
}

// migration is the outcome of turning raw file entries into Values.
type migration struct {
	extras    []entry
	defaulted []string
	repaired  []string
	vals      Values
}

// changed reports whether the file on disk no longer matches vals and must
// be rewritten.
func (m migration) changed() bool {
	return len(m.defaulted) > 0 || len(m.repaired) > 0
}

// migrate converts string entries into typed values. Missing keys take their
// default, malformed values are replaced by the default, and keys the
// launcher does not know are carried through untouched.
//
//nolint:gocritic // defaults copied so each load starts from a clean set
func migrate(raw []entry, defaults Values) migration {
	m := migration{vals: defaults}
	seen := make(map[string]bool, len(raw))

	for _, e := range raw {
		def, ok := lookupKey(e.Key)
		if !ok {
			m.extras = append(m.extras, e)
			continue
		}
		seen[e.Key] = true

		if !applyValue(&m.vals, def, e.Value) {
			m.repaired = append(m.repaired, e.Key)
		}
	}

	for _, def := range keyTable {
		if !seen[def.key] {
			m.defaulted = append(m.defaulted, def.key)
		}
	}

	return m
}

// applyValue parses value into the field described by def. It returns false
// and leaves the field untouched when the value cannot be parsed.
func applyValue(v *Values, def keyDef, value string) bool {
	switch def.kind {
	case kindBool:
		switch {
		case helpers.IsTruthy(value):
			*def.flag(v) = true
		case helpers.IsFalsey(value):
			*def.flag(v) = false
		default:
			return false
		}
	case kindString:
		if def.key == "interface-mode" && !validInterfaceMode(value) {
			return false
		}
		*def.str(v) = value
	}
	return true
}

func validInterfaceMode(s string) bool {
	return slices.Contains([]string{InterfaceList, InterfaceBlocks, InterfaceBanners}, s)
}

func formatValue(v *Values, def keyDef) string {
	switch def.kind {
	case kindBool:
		if *def.flag(v) {
			return "True"
		}
		return "False"
	default:
		s := *def.str(v)
		if def.quoted {
			return `"` + s + `"`
		}
		return s
	}
}
