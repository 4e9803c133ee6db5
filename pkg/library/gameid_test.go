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
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalizeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"My Game!", "my-game"},
		{"  Foo   Bar  ", "foo-bar"},
		{"Half-Life 2", "half-life-2"},
		{"Pokémon Café", "pok-mon-caf"},
		{"Pokémon Légendes", "pok-mon-l-gendes"},
		{"ﬁre", "re"},
		{"DOOM (1993)", "doom-1993"},
		{"Ｆｕｌｌ Ｗｉｄｔｈ", ""},
		{"--already-normal--", "already-normal"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeID(tt.title))
		})
	}
}

// TestPropertyNormalizeIDIdempotent verifies normalize(normalize(x)) == normalize(x).
func TestPropertyNormalizeIDIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		title := rapid.String().Draw(t, "title")
		once := NormalizeID(title)
		if twice := NormalizeID(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q -> %q", title, once, twice)
		}
	})
}

// TestPropertyNormalizeIDAlphabet verifies ids only contain [a-z0-9-] with no
// leading, trailing or doubled dashes.
func TestPropertyNormalizeIDAlphabet(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		id := NormalizeID(rapid.String().Draw(t, "title"))
		prev := '-'
		for i, r := range id {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			if !ok {
				t.Fatalf("unexpected rune %q in %q", r, id)
			}
			if r == '-' && prev == '-' {
				t.Fatalf("leading or doubled dash at %d in %q", i, id)
			}
			prev = r
		}
		if prev == '-' && id != "" {
			t.Fatalf("trailing dash in %q", id)
		}
	})
}
