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
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

type exportRow struct {
	Title    string `csv:"title"`
	GameID   string `csv:"gameid"`
	Runner   string `csv:"runner"`
	Prefix   string `csv:"prefix"`
	Path     string `csv:"path"`
	Playtime int64  `csv:"playtime_seconds"`
}

// ExportCSV writes a summary of the library.
func ExportCSV(w io.Writer, games []Game) error {
	rows := make([]*exportRow, 0, len(games))
	for i := range games {
		g := &games[i]
		rows = append(rows, &exportRow{
			Title:    g.Title,
			GameID:   g.GameID,
			Runner:   g.Runner,
			Prefix:   g.Prefix,
			Path:     g.Path,
			Playtime: g.Playtime,
		})
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to export library: %w", err)
	}
	return nil
}
