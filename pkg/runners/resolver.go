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

package runners

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faugus/faugus-launcher/pkg/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrToolNotFound is returned when a runner names no installed tool.
var ErrToolNotFound = errors.New("compatibility tool not found")

// umuKeywords are PROTONPATH values umu-run downloads on its own.
var umuKeywords = map[string]bool{
	"GE-Proton":  true,
	"GE-Latest":  true,
	"UMU-Proton": true,
	"UMU-Latest": true,
	"EM-Proton":  true,
}

// Downloader fetches the build behind a "... Latest" alias and returns the
// PROTONPATH value to use.
type Downloader interface {
	Fetch(ctx context.Context, alias string) (string, error)
}

// UmuDownloader delegates downloading to umu-run by translating the alias
// into umu's own keyword.
type UmuDownloader struct{}

func (UmuDownloader) Fetch(_ context.Context, alias string) (string, error) {
	switch alias {
	case library.RunnerGELatest:
		return "GE-Proton", nil
	case library.RunnerEMLatest:
		return "EM-Proton", nil
	default:
		return "", fmt.Errorf("%w: no download source for %q", ErrToolNotFound, alias)
	}
}

// Resolver validates PROTONPATH values against the filesystem.
type Resolver struct {
	fs         afero.Fs
	downloader Downloader
	searchDirs []string
}

// NewResolver checks names against compatTools and the system directory.
func NewResolver(fs afero.Fs, compatTools string, d Downloader) *Resolver {
	if d == nil {
		d = UmuDownloader{}
	}
	return &Resolver{
		fs:         fs,
		downloader: d,
		searchDirs: []string{compatTools, SystemCompatTools},
	}
}

// ResolveRunner returns the PROTONPATH value to launch with, or
// ErrToolNotFound.
func (r *Resolver) ResolveRunner(ctx context.Context, value string) (string, error) {
	switch {
	case value == library.RunnerNative, value == library.RunnerSteam:
		return value, nil
	case value == library.RunnerGELatest, value == library.RunnerEMLatest:
		resolved, err := r.downloader.Fetch(ctx, value)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", value, err)
		}
		log.Info().Str("alias", value).Str("resolved", resolved).Msg("runner alias resolved")
		return resolved, nil
	case umuKeywords[value]:
		return value, nil
	case value == "":
		return "", fmt.Errorf("%w: empty runner", ErrToolNotFound)
	case filepath.IsAbs(value):
		if ok, _ := afero.DirExists(r.fs, value); ok {
			return value, nil
		}
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, value)
	case strings.ContainsRune(value, filepath.Separator):
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, value)
	}

	for i, dir := range r.searchDirs {
		if dir == "" {
			continue
		}
		full := filepath.Join(dir, value)
		if ok, _ := afero.DirExists(r.fs, full); !ok {
			continue
		}
		// umu only looks names up in the user directory
		if i == 0 {
			return value, nil
		}
		return full, nil
	}
	return "", fmt.Errorf("%w: %s", ErrToolNotFound, value)
}
