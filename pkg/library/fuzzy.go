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
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minSimilarity is the lowest Jaro-Winkler score offered as a suggestion.
const minSimilarity = 0.7

// FindClosest suggests the existing title nearest to query, for "did you
// mean" hints when a lookup by title fails.
func FindClosest(games []Game, query string) (string, bool) {
	q := matchKey(query)
	if q == "" {
		return "", false
	}

	best := ""
	bestScore := float32(0)
	for i := range games {
		score := edlib.JaroWinklerSimilarity(q, matchKey(games[i].Title))
		if score > bestScore {
			best = games[i].Title
			bestScore = score
		}
	}

	if bestScore < minSimilarity {
		return "", false
	}
	log.Debug().Str("query", query).Str("match", best).Float32("score", bestScore).Msg("closest title")
	return best, true
}

// matchKey folds diacritics and compatibility forms and lowercases s, so
// "pokemon" still finds "Pokémon".
func matchKey(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
