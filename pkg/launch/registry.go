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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/Faugus/faugus-launcher/pkg/library"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrAlreadyRunning is returned when a title already has a live launch.
var ErrAlreadyRunning = errors.New("game is already running")

// ExitWatcher reports when a pid exits.
type ExitWatcher interface {
	Watch(pid int) (<-chan struct{}, error)
}

// Entry is one running launch.
type Entry struct {
	Started time.Time
	Title   string
	PID     int
}

// Registry maps titles to running launches. It mirrors entries to pid files
// so other invocations can see them; this only disables double launches
// through the launcher and is not a lock.
type Registry struct {
	fs      afero.Fs
	watcher ExitWatcher
	clock   clockwork.Clock
	alive   func(pid int) bool
	entries map[string]Entry
	done    chan struct{}
	dir     string
	self    int
	mu      syncutil.Mutex
}

// NewRegistry keeps pid files in dir. watcher may be nil, in which case
// entries are only removed by Release.
func NewRegistry(fs afero.Fs, dir string, watcher ExitWatcher, clock clockwork.Clock) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		fs:      fs,
		dir:     dir,
		watcher: watcher,
		clock:   clock,
		alive:   pidAlive,
		entries: make(map[string]Entry),
		done:    make(chan struct{}),
		self:    os.Getpid(),
	}
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

func (r *Registry) pidFile(title string) string {
	return filepath.Join(r.dir, library.NormalizeID(title)+".pid")
}

// Acquire claims title for a new launch, recording this process until
// SetPID names the child.
func (r *Registry) Acquire(title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[title]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, title)
	}
	if e, ok := r.readPidFile(r.pidFile(title)); ok {
		if r.alive(e.PID) {
			return fmt.Errorf("%w: %s (pid %d)", ErrAlreadyRunning, title, e.PID)
		}
		log.Debug().Str("title", title).Int("pid", e.PID).Msg("removing stale pid file")
	}

	e := Entry{Title: title, PID: r.self, Started: r.clock.Now()}
	r.entries[title] = e
	r.writePidFile(e)
	return nil
}

// SetPID records the spawned child for title and starts watching it.
func (r *Registry) SetPID(title string, pid int) error {
	r.mu.Lock()
	e, ok := r.entries[title]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("no launch acquired for %s", title)
	}
	e.PID = pid
	r.entries[title] = e
	r.writePidFile(e)
	r.mu.Unlock()

	if r.watcher == nil {
		return nil
	}
	exited, err := r.watcher.Watch(pid)
	if err != nil {
		return fmt.Errorf("watch pid %d: %w", pid, err)
	}
	go func() {
		select {
		case <-exited:
			r.releaseIf(title, pid)
		case <-r.done:
		}
	}()
	return nil
}

func (r *Registry) releaseIf(title string, pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[title]; ok && e.PID == pid {
		r.remove(title)
	}
}

// Release drops title. Releasing an unknown title is a no-op.
func (r *Registry) Release(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(title)
}

func (r *Registry) remove(title string) {
	if _, ok := r.entries[title]; !ok {
		return
	}
	delete(r.entries, title)
	if err := r.fs.Remove(r.pidFile(title)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug().Err(err).Str("title", title).Msg("failed to remove pid file")
	}
}

// IsRunning checks this process's launches and live pid files.
func (r *Registry) IsRunning(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[title]; ok {
		return true
	}
	e, ok := r.readPidFile(r.pidFile(title))
	return ok && r.alive(e.PID)
}

// Running lists live launches sorted by title, including those started by
// other invocations.
func (r *Registry) Running() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]Entry, len(r.entries))
	for t, e := range r.entries {
		seen[t] = e
	}

	files, err := afero.Glob(r.fs, filepath.Join(r.dir, "*.pid"))
	if err == nil {
		for _, f := range files {
			e, ok := r.readPidFile(f)
			if !ok || !r.alive(e.PID) {
				continue
			}
			if _, dup := seen[e.Title]; !dup {
				seen[e.Title] = e
			}
		}
	}

	out := make([]Entry, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Close stops exit watches. Entries and pid files are left as they are.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.done:
	default:
		close(r.done)
	}
}

// pid files hold three lines: pid, unix start time, title.
func (r *Registry) writePidFile(e Entry) {
	if err := r.fs.MkdirAll(r.dir, 0o750); err != nil {
		log.Debug().Err(err).Msg("failed to create running directory")
		return
	}
	body := fmt.Sprintf("%d\n%d\n%s\n", e.PID, e.Started.Unix(), e.Title)
	if err := afero.WriteFile(r.fs, r.pidFile(e.Title), []byte(body), 0o600); err != nil {
		log.Debug().Err(err).Str("title", e.Title).Msg("failed to write pid file")
	}
}

func (r *Registry) readPidFile(path string) (Entry, bool) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return Entry{}, false
	}
	parts := strings.SplitN(strings.TrimRight(string(data), "\n"), "\n", 3)
	if len(parts) != 3 {
		return Entry{}, false
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return Entry{}, false
	}
	started, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Entry{}, false
	}
	return Entry{PID: pid, Started: time.Unix(started, 0), Title: parts[2]}, true
}
