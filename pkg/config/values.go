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

// AppVersion is replaced at build time with -ldflags.
var AppVersion = "DEVELOPMENT"

// Interface modes accepted for the interface-mode key.
const (
	InterfaceList    = "List"
	InterfaceBlocks  = "Blocks"
	InterfaceBanners = "Banners"
)

// Values is the typed form of config.ini. Every field maps to exactly one
// key in keyTable.
type Values struct {
	DefaultPrefix    string
	DefaultRunner    string
	LosslessLocation string
	InterfaceMode    string
	Language         string
	CloseOnLaunch    bool
	Mangohud         bool
	Gamemode         bool
	DisableHidraw    bool
	PreventSleep     bool
	DiscreteGPU      bool
	SplashDisable    bool
	SystemTray       bool
	StartBoot        bool
	StartMaximized   bool
	StartFullscreen  bool
	EnableLogging    bool
	WaylandDriver    bool
	EnableHDR        bool
	EnableWow64      bool
	ShowDonate       bool
	Playtime         bool
}

// BaseDefaults holds the default for every key except default-prefix, which
// depends on the user's home directory. Use Defaults to get a complete set.
var BaseDefaults = Values{
	InterfaceMode: InterfaceList,
	ShowDonate:    true,
	Playtime:      true,
}

// Defaults returns BaseDefaults with default-prefix rooted at prefixRoot.
func Defaults(prefixRoot string) Values {
	v := BaseDefaults
	v.DefaultPrefix = prefixRoot
	return v
}

type keyKind int

const (
	kindBool keyKind = iota
	kindString
)

// keyDef describes one settings key. quoted keys are wrapped in double
// quotes on save.
type keyDef struct {
	str    func(*Values) *string
	flag   func(*Values) *bool
	key    string
	kind   keyKind
	quoted bool
}

func boolKey(key string, f func(*Values) *bool) keyDef {
	return keyDef{key: key, kind: kindBool, flag: f}
}

func stringKey(key string, quoted bool, f func(*Values) *string) keyDef {
	return keyDef{key: key, kind: kindString, quoted: quoted, str: f}
}

// keyTable is the order keys are written in.
var keyTable = []keyDef{
	boolKey("close-onlaunch", func(v *Values) *bool { return &v.CloseOnLaunch }),
	stringKey("default-prefix", true, func(v *Values) *string { return &v.DefaultPrefix }),
	boolKey("mangohud", func(v *Values) *bool { return &v.Mangohud }),
	boolKey("gamemode", func(v *Values) *bool { return &v.Gamemode }),
	boolKey("disable-hidraw", func(v *Values) *bool { return &v.DisableHidraw }),
	boolKey("prevent-sleep", func(v *Values) *bool { return &v.PreventSleep }),
	stringKey("default-runner", true, func(v *Values) *string { return &v.DefaultRunner }),
	stringKey("lossless-location", false, func(v *Values) *string { return &v.LosslessLocation }),
	boolKey("discrete-gpu", func(v *Values) *bool { return &v.DiscreteGPU }),
	boolKey("splash-disable", func(v *Values) *bool { return &v.SplashDisable }),
	boolKey("system-tray", func(v *Values) *bool { return &v.SystemTray }),
	boolKey("start-boot", func(v *Values) *bool { return &v.StartBoot }),
	stringKey("interface-mode", false, func(v *Values) *string { return &v.InterfaceMode }),
	boolKey("start-maximized", func(v *Values) *bool { return &v.StartMaximized }),
	boolKey("start-fullscreen", func(v *Values) *bool { return &v.StartFullscreen }),
	boolKey("enable-logging", func(v *Values) *bool { return &v.EnableLogging }),
	boolKey("wayland-driver", func(v *Values) *bool { return &v.WaylandDriver }),
	boolKey("enable-hdr", func(v *Values) *bool { return &v.EnableHDR }),
	boolKey("enable-wow64", func(v *Values) *bool { return &v.EnableWow64 }),
	stringKey("language", false, func(v *Values) *string { return &v.Language }),
	boolKey("show-donate", func(v *Values) *bool { return &v.ShowDonate }),
	boolKey("playtime", func(v *Values) *bool { return &v.Playtime }),
}

// Keys returns every known key in file order.
func Keys() []string {
	keys := make([]string, len(keyTable))
	for i, k := range keyTable {
		keys[i] = k.key
	}
	return keys
}

func lookupKey(key string) (keyDef, bool) {
	for _, k := range keyTable {
		if k.key == key {
			return k, true
		}
	}
	return keyDef{}, false
}
