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

// Package config loads and saves the launcher's config.ini settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// ErrUnknownKey is returned by Set for keys that are not in the settings file.
var ErrUnknownKey = errors.New("unknown settings key")

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	extras   []entry
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

var loadOptions = ini.LoadOptions{
	KeyValueDelimiters:      "=",
	IgnoreInlineComment:     true,
	SkipUnrecognizableLines: true,
}

// NewConfig loads the settings file at cfgPath, creating it with defaults
// when missing. Defaults injected for absent keys are written back straight
// away.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, cfgPath string, defaults Values) (*Instance, error) {
	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := fs.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Str("path", cfgPath).Msg("saving new default config to disk")

		if err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cfg.Load(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load rereads the settings file. A missing or unreadable key never fails
// the load; it falls back to the default and the file is rewritten.
func (c *Instance) Load() error {
	c.mu.Lock()

	if c.cfgPath == "" {
		c.mu.Unlock()
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to read config file: %w", err)
	}

	raw, err := parseEntries(data)
	if err != nil {
		log.Warn().Err(err).Msg("settings file unreadable, using defaults")
		raw = nil
	}

	m := migrate(raw, c.defaults)
	c.vals = m.vals
	c.extras = m.extras
	c.mu.Unlock()

	if m.changed() {
		log.Info().
			Strs("defaulted", m.defaulted).
			Strs("repaired", m.repaired).
			Msg("settings migrated, rewriting file")
		return c.Save()
	}

	return nil
}

func parseEntries(data []byte) ([]entry, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	keys := f.Section(ini.DefaultSection).Keys()
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, entry{Key: k.Name(), Value: k.Value()})
	}
	return entries, nil
}

// Save writes every known key in a fixed order, followed by any unknown keys
// preserved from the last load. Last writer wins.
func (c *Instance) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	var sb strings.Builder
	for _, def := range keyTable {
		sb.WriteString(def.key)
		sb.WriteByte('=')
		sb.WriteString(formatValue(&c.vals, def))
		sb.WriteByte('\n')
	}
	for _, e := range c.extras {
		sb.WriteString(e.Key)
		sb.WriteByte('=')
		sb.WriteString(e.Value)
		sb.WriteByte('\n')
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Values returns a snapshot of the current settings.
func (c *Instance) Values() Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals
}

// Update mutates the settings in memory. Call Save to persist.
func (c *Instance) Update(fn func(*Values)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.vals)
}

// Set parses value for a named key, as typed on the command line.
func (c *Instance) Set(key, value string) error {
	def, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !applyValue(&c.vals, def, value) {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return nil
}

// Get returns the on-disk form of a key's value, without quotes.
func (c *Instance) Get(key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := lookupKey(key)
	if !ok {
		for _, e := range c.extras {
			if e.Key == key {
				return e.Value, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	return strings.Trim(formatValue(&c.vals, def), `"`), nil
}

func (c *Instance) DefaultPrefix() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DefaultPrefix
}

func (c *Instance) DefaultRunner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DefaultRunner
}

func (c *Instance) EnableLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.EnableLogging
}

// TrackPlaytime reports whether runtime is added to a game's playtime.
func (c *Instance) TrackPlaytime() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Playtime
}

func (c *Instance) SplashDisable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.SplashDisable
}
