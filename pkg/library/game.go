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

// Package library holds the game records and persists them to games.json.
package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Faugus/faugus-launcher/pkg/helpers"
)

// Special runner values. Anything else names a compatibility tool folder.
const (
	RunnerDefault    = ""
	RunnerNative     = "Linux-Native"
	RunnerSteam      = "Steam"
	RunnerCachyOS    = "Proton-CachyOS"
	RunnerGELatest   = "Proton-GE Latest"
	RunnerEMLatest   = "Proton-EM Latest"
	PresentFIFO      = "fifo"
	PresentMailbox   = "mailbox"
	PresentImmediate = "immediate"
)

// Flag is a boolean that also accepts the "True"/"False" strings and 0/1
// numbers found in libraries written by older launcher versions.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = false
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		*f = Flag(helpers.IsTruthy(s))
		return nil
	default:
		s := string(data)
		if b, err := strconv.ParseBool(s); err == nil {
			*f = Flag(b)
			return nil
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			*f = n != 0
			return nil
		}
		return fmt.Errorf("flag: unsupported value %s", s)
	}
}

// Lossless configures Lossless Scaling frame generation for one game.
type Lossless struct {
	Present     string `json:"lossless_present" validate:"omitempty,oneof=fifo mailbox immediate"`
	Multiplier  int    `json:"lossless_multiplier" validate:"omitempty,min=1,max=20"`
	Flow        int    `json:"lossless_flow" validate:"omitempty,min=25,max=100"`
	Enabled     Flag   `json:"lossless_enabled"`
	Performance Flag   `json:"lossless_performance"`
	HDR         Flag   `json:"lossless_hdr"`
}

// DefaultLossless is applied to new games.
var DefaultLossless = Lossless{
	Multiplier: 1,
	Flow:       100,
	Present:    PresentFIFO,
}

// Game is one entry of games.json.
type Game struct {
	Title           string `json:"title" validate:"required"`
	GameID          string `json:"gameid"`
	Path            string `json:"path"`
	Prefix          string `json:"prefix"`
	LaunchArguments string `json:"launch_arguments"`
	GameArguments   string `json:"game_arguments"`
	Protonfix       string `json:"protonfix"`
	Runner          string `json:"runner"`
	AddApp          string `json:"addapp"`
	AddAppBat       string `json:"addapp_bat"`
	Lossless
	Playtime       int64 `json:"playtime" validate:"min=0"`
	Mangohud       Flag  `json:"mangohud"`
	Gamemode       Flag  `json:"gamemode"`
	DisableHidraw  Flag  `json:"disable_hidraw"`
	PreventSleep   Flag  `json:"prevent_sleep"`
	AddAppCheckbox Flag  `json:"addapp_checkbox"`
}

// Rederive recomputes the fields that depend on Title.
func (g *Game) Rederive() {
	g.GameID = NormalizeID(g.Title)
}

// UsesProton reports whether the runner goes through a Wine prefix.
func (g *Game) UsesProton() bool {
	return g.Runner != RunnerNative && g.Runner != RunnerSteam
}
