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

// Package logs prints and follows per-game runner logs.
package logs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrNoLog is returned when a game has never been launched with logging.
var ErrNoLog = errors.New("no log for game")

// Print copies the whole log at path to w.
func Print(fs afero.Fs, path string, w io.Writer) error {
	f, err := fs.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoLog, path)
	} else if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	return nil
}

// Follow prints the log at path and keeps printing what is appended until
// ctx ends. A new session truncates the log; Follow then starts over from
// the beginning. The file does not need to exist yet.
func Follow(ctx context.Context, path string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	t := &tail{path: path, w: w}
	defer t.close()
	if err := t.read(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				t.close()
				continue
			}
			if err := t.read(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Str("path", path).Msg("log watcher error")
		}
	}
}

type tail struct {
	f      *os.File
	w      io.Writer
	path   string
	offset int64
}

func (t *tail) close() {
	if t.f != nil {
		_ = t.f.Close()
		t.f = nil
	}
	t.offset = 0
}

// read copies everything past the last offset, rewinding when the file
// shrank.
func (t *tail) read() error {
	if t.f == nil {
		f, err := os.Open(t.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		t.f = f
		t.offset = 0
	}

	info, err := t.f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log: %w", err)
	}
	if info.Size() < t.offset {
		log.Debug().Str("path", t.path).Msg("log truncated, following new session")
		t.offset = 0
	}
	if _, err := t.f.Seek(t.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek log: %w", err)
	}
	n, err := io.Copy(t.w, t.f)
	t.offset += n
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}
	return nil
}
