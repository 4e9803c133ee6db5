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

package launch

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Phase is a lifecycle step reported by the runner's progress output.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseUpdatingUMU
	PhaseUMUCurrent
	PhaseUpdatingBattlEye
	PhaseUpdatingEAC
	PhaseComponentsCurrent
	PhaseDownloadingUMUProton
	PhaseDownloadingGEProton
	PhaseDownloadingEMProton
	PhaseExtractingUMUProton
	PhaseExtractingGEProton
	PhaseExtractingEMProton
	PhaseUMUProtonCurrent
	PhaseGEProtonCurrent
	PhaseEMProtonCurrent
	PhaseDownloadingRuntime
	PhaseExtractingRuntime
	PhaseRuntimeCurrent
	// PhaseNetworkError is fatal to the launch.
	PhaseNetworkError
	// PhaseInitComplete closes the splash window. Emitted at most once.
	PhaseInitComplete
)

var phaseLabels = map[Phase]string{
	PhaseNone:                 "none",
	PhaseUpdatingUMU:          "updating-umu",
	PhaseUMUCurrent:           "umu-current",
	PhaseUpdatingBattlEye:     "updating-be",
	PhaseUpdatingEAC:          "updating-eac",
	PhaseComponentsCurrent:    "components-current",
	PhaseDownloadingUMUProton: "downloading-umu-proton",
	PhaseDownloadingGEProton:  "downloading-ge-proton",
	PhaseDownloadingEMProton:  "downloading-em-proton",
	PhaseExtractingUMUProton:  "extracting-umu-proton",
	PhaseExtractingGEProton:   "extracting-ge-proton",
	PhaseExtractingEMProton:   "extracting-em-proton",
	PhaseUMUProtonCurrent:     "umu-proton-current",
	PhaseGEProtonCurrent:      "ge-proton-current",
	PhaseEMProtonCurrent:      "em-proton-current",
	PhaseDownloadingRuntime:   "downloading-runtime",
	PhaseExtractingRuntime:    "extracting-runtime",
	PhaseRuntimeCurrent:       "runtime-current",
	PhaseNetworkError:         "network-error",
	PhaseInitComplete:         "init-complete",
}

func (p Phase) String() string {
	if s, ok := phaseLabels[p]; ok {
		return s
	}
	return "unknown"
}

// Fatal reports whether the phase aborts the launch.
func (p Phase) Fatal() bool {
	return p == PhaseNetworkError
}

type rule struct {
	match func(line string) bool
	phase Phase
}

func contains(fragment string) func(string) bool {
	return func(line string) bool {
		return strings.Contains(line, fragment)
	}
}

// runnerCurrent matches "<name> is up to date" and the "<name> -> <dir>"
// form umu prints when the cached build is reused.
func runnerCurrent(name string) func(string) bool {
	return func(line string) bool {
		if !strings.Contains(line, name) {
			return false
		}
		if strings.Contains(line, "is up to date") {
			return true
		}
		return strings.Contains(line, "->") &&
			!strings.Contains(line, "Downloading") &&
			!strings.Contains(line, "Extracting")
	}
}

// initMarkers are lines that only appear once the runner has finished its
// own setup and handed over to the game.
var initMarkers = []string{
	"fsync",
	"NTSync",
	"Using winetricks",
	"Selected GPU",
	"Skipping fix execution",
	"Executable a unix path",
	"status: 0",
	"PosixPath",
	"SingleInstance",
	"mtree is OK",
}

func anyOf(fragments []string) func(string) bool {
	return func(line string) bool {
		for _, f := range fragments {
			if strings.Contains(line, f) {
				return true
			}
		}
		return false
	}
}

// rules are independent tests; every matching entry fires.
var rules = []rule{
	{contains("Updating UMU-Launcher..."), PhaseUpdatingUMU},
	{contains("UMU-Launcher is up to date."), PhaseUMUCurrent},
	{contains("Updating BattlEye..."), PhaseUpdatingBattlEye},
	{contains("Updating Easy Anti-Cheat..."), PhaseUpdatingEAC},
	{contains("Components are up to date."), PhaseComponentsCurrent},
	{contains("Downloading UMU-Proton"), PhaseDownloadingUMUProton},
	{contains("Downloading GE-Proton"), PhaseDownloadingGEProton},
	{contains("Downloading Proton-EM"), PhaseDownloadingEMProton},
	{contains("Extracting UMU-Proton"), PhaseExtractingUMUProton},
	{contains("Extracting GE-Proton"), PhaseExtractingGEProton},
	{contains("Extracting Proton-EM"), PhaseExtractingEMProton},
	{runnerCurrent("UMU-Proton"), PhaseUMUProtonCurrent},
	{runnerCurrent("GE-Proton"), PhaseGEProtonCurrent},
	{runnerCurrent("Proton-EM"), PhaseEMProtonCurrent},
	{contains("Downloading steamrt3 (latest)"), PhaseDownloadingRuntime},
	{contains("SteamLinuxRuntime_sniper.tar.xz"), PhaseExtractingRuntime},
	{contains("mtree is OK"), PhaseRuntimeCurrent},
	{contains("network error"), PhaseNetworkError},
	{anyOf(initMarkers), PhaseInitComplete},
}

// Classifier maps runner output lines to phases. The only state it keeps is
// whether the splash has already been closed. Not safe for concurrent use.
type Classifier struct {
	splashClosed bool
}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// SplashClosed reports whether PhaseInitComplete has been emitted.
func (c *Classifier) SplashClosed() bool {
	return c.splashClosed
}

// Classify returns the phases line triggers, in table order.
func (c *Classifier) Classify(line string) []Phase {
	var out []Phase
	for _, r := range rules {
		if !r.match(line) {
			continue
		}
		if r.phase == PhaseInitComplete {
			if c.splashClosed {
				continue
			}
			c.splashClosed = true
		}
		out = append(out, r.phase)
	}
	return out
}

// CleanLine strips terminal escapes and trailing line endings.
func CleanLine(raw string) string {
	return strings.TrimRight(ansi.Strip(raw), "\r\n")
}
