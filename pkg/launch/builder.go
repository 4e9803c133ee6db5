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
	"strconv"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/config"
	"github.com/Faugus/faugus-launcher/pkg/library"
	"github.com/google/shlex"
)

// Environment keys read back by the supervisor.
const (
	EnvGameID     = "GAMEID"
	EnvProtonPath = "PROTONPATH"
	EnvWinePrefix = "WINEPREFIX"
)

const (
	steamBinary   = "steam"
	flatpakSteam  = "flatpak run com.valvesoftware.Steam"
	flatpakSpawn  = "flatpak-spawn --host"
	gamemodeRun   = "gamemoderun"
	mangohudShim  = "mangohud"
	shellSpecials = " \t\n\"'`$\\;&|<>()*?[]#~!{}"
)

// Var is one KEY=VALUE assignment emitted before the runner binary.
type Var struct {
	Key   string
	Value string
}

// Token renders the assignment as a single shell word.
func (v Var) Token() string {
	if strings.ContainsAny(v.Value, shellSpecials) {
		return v.Key + "=" + quote(v.Value)
	}
	return v.Key + "=" + v.Value
}

// Command is the composed launch line: ordered assignments followed by the
// remaining words. Args entries are already shell-ready.
type Command struct {
	Env  []Var
	Args []string
}

// Tokens returns every shell word in emission order.
func (c Command) Tokens() []string {
	out := make([]string, 0, len(c.Env)+len(c.Args))
	for _, v := range c.Env {
		out = append(out, v.Token())
	}
	return append(out, c.Args...)
}

// String joins the tokens into the line passed to bash -c.
func (c Command) String() string {
	return strings.Join(c.Tokens(), " ")
}

// Lookup returns the value of the first assignment named key.
func (c Command) Lookup(key string) (string, bool) {
	for _, v := range c.Env {
		if v.Key == key {
			return v.Value, true
		}
	}
	return "", false
}

// WithVar returns a copy with key set to value, keeping its position when
// already present.
func (c Command) WithVar(key, value string) Command {
	env := make([]Var, len(c.Env))
	copy(env, c.Env)
	out := Command{Env: env, Args: append([]string(nil), c.Args...)}
	for i := range out.Env {
		if out.Env[i].Key == key {
			out.Env[i].Value = value
			return out
		}
	}
	out.Env = append(out.Env, Var{Key: key, Value: value})
	return out
}

// ParseCommand splits a pre-built command line back into assignments and
// words. Only leading KEY=VALUE words count as assignments.
func ParseCommand(line string) (Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Command{}, err //nolint:wrapcheck // shlex errors are descriptive
	}

	var cmd Command
	i := 0
	for ; i < len(words); i++ {
		key, value, ok := strings.Cut(words[i], "=")
		if !ok || !isEnvName(key) {
			break
		}
		cmd.Env = append(cmd.Env, Var{Key: key, Value: value})
	}
	for _, w := range words[i:] {
		cmd.Args = append(cmd.Args, shellWord(w))
	}
	return cmd, nil
}

func isEnvName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func shellWord(s string) string {
	if s == "" || strings.ContainsAny(s, shellSpecials) {
		return quote(s)
	}
	return s
}

// quote wraps s in double quotes, escaping what bash still expands inside
// them.
func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\', '"', '$', '`':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// SteamInvocation describes how to reach the Steam client.
type SteamInvocation struct {
	AppID uint32
	// Flatpak is set when Steam itself is the Flatpak build.
	Flatpak bool
	// Sandboxed is set when this process runs inside a Flatpak sandbox.
	Sandboxed bool
}

// Paths carries the host lookups the builder needs so that it stays a
// pure function.
type Paths struct {
	UmuRun      string
	CachyOSPath string
	Steam       SteamInvocation
}

// FormatFlow renders a lossless flow percentage as the scale factor the
// Vulkan layer expects, always with a decimal point.
func FormatFlow(flow int) string {
	s := strconv.FormatFloat(float64(flow)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Build composes the launch command for g. It performs no validation and no
// I/O; the same inputs always give the same output.
//
//nolint:gocritic // records and settings are small value snapshots
func Build(g library.Game, settings config.Values, paths Paths) Command {
	var cmd Command
	emit := func(key, value string) {
		cmd.Env = append(cmd.Env, Var{Key: key, Value: value})
	}

	if g.GameID != "" {
		emit("LOG_DIR", g.GameID)
	}
	if g.DisableHidraw {
		emit("PROTON_DISABLE_HIDRAW", "1")
	}
	if g.PreventSleep {
		emit("PREVENT_SLEEP", "1")
	}
	if g.Protonfix != "" {
		emit(EnvGameID, g.Protonfix)
	} else {
		emit(EnvGameID, g.GameID)
	}

	switch g.Runner {
	case library.RunnerNative:
		emit("UMU_NO_PROTON", "1")
	case library.RunnerSteam:
	case library.RunnerCachyOS:
		emit(EnvWinePrefix, g.Prefix)
		emit(EnvProtonPath, paths.CachyOSPath)
	case library.RunnerDefault:
		emit(EnvWinePrefix, g.Prefix)
	default:
		emit(EnvWinePrefix, g.Prefix)
		emit(EnvProtonPath, g.Runner)
	}

	if g.Lossless.Enabled {
		emitLossless(emit, g.Lossless, settings.LosslessLocation)
	}

	if settings.DiscreteGPU {
		emit("DRI_PRIME", "1")
	}
	if settings.WaylandDriver && g.UsesProton() {
		emit("PROTON_ENABLE_WAYLAND", "1")
	}
	if settings.EnableHDR {
		emit("PROTON_ENABLE_HDR", "1")
	}
	if settings.EnableWow64 {
		emit("PROTON_USE_WOW64", "1")
	}

	if args := strings.TrimSpace(g.LaunchArguments); args != "" {
		cmd.Args = append(cmd.Args, args)
	}
	if g.Gamemode {
		cmd.Args = append(cmd.Args, gamemodeRun)
	}
	if g.Mangohud {
		cmd.Args = append(cmd.Args, mangohudShim)
	}

	switch {
	case g.Runner == library.RunnerSteam:
		cmd.Args = append(cmd.Args, steamArgs(paths.Steam)...)
	case bool(g.AddAppCheckbox):
		cmd.Args = append(cmd.Args, quote(paths.UmuRun), quote(g.AddAppBat))
	default:
		cmd.Args = append(cmd.Args, quote(paths.UmuRun), quote(g.Path))
	}

	if args := strings.TrimSpace(g.GameArguments); args != "" {
		cmd.Args = append(cmd.Args, args)
	}

	return cmd
}

func emitLossless(emit func(key, value string), l library.Lossless, dll string) {
	multiplier := strconv.Itoa(l.Multiplier)
	flow := FormatFlow(l.Flow)
	performance := boolDigit(bool(l.Performance))
	hdr := boolDigit(bool(l.HDR))

	emit("LSFG_LEGACY", "1")
	if dll != "" {
		emit("LSFG_DLL_PATH", dll)
	}
	emit("LSFG_MULTIPLIER", multiplier)
	emit("LSFG_FLOW_SCALE", flow)
	emit("LSFG_PERFORMANCE_MODE", performance)
	emit("LSFG_HDR_MODE", hdr)
	emit("LSFG_EXPERIMENTAL_PRESENT_MODE", l.Present)

	emit("LSFGVK_ENV", "1")
	if dll != "" {
		emit("LSFGVK_DLL_PATH", dll)
	}
	emit("LSFGVK_MULTIPLIER", multiplier)
	emit("LSFGVK_FLOW_SCALE", flow)
	emit("LSFGVK_PERFORMANCE_MODE", performance)
	emit("LSFGVK_HDR_MODE", hdr)
	emit("LSFGVK_EXPERIMENTAL_PRESENT_MODE", l.Present)
}

func steamArgs(s SteamInvocation) []string {
	var out []string
	if s.Sandboxed {
		out = append(out, flatpakSpawn)
	}
	if s.Flatpak {
		out = append(out, flatpakSteam)
	} else {
		out = append(out, steamBinary)
	}
	return append(out, "-applaunch", strconv.FormatUint(uint64(s.AppID), 10))
}
