//go:build linux

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

package procs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// ErrProcessNotFound is returned when a pid is not alive.
var ErrProcessNotFound = errors.New("process not found")

// pollInterval is used when pidfd_open is unavailable (kernels before 5.3).
const pollInterval = time.Second

// Tracker reports when watched pids exit. It prefers pidfd + poll and falls
// back to kill(pid, 0) probing.
type Tracker struct {
	watches  map[int]*watch
	done     chan struct{}
	wg       sync.WaitGroup
	mu       syncutil.Mutex
	usePidfd bool
}

type watch struct {
	exited chan struct{}
	cancel context.CancelFunc
	pid    int
	pidfd  int
}

func NewTracker() *Tracker {
	t := &Tracker{
		watches:  make(map[int]*watch),
		usePidfd: pidfdSupported(),
		done:     make(chan struct{}),
	}
	log.Debug().Bool("pidfd", t.usePidfd).Msg("process tracker started")
	return t
}

// Watch returns a channel closed when pid exits. Watching a pid twice
// returns the same channel.
func (t *Tracker) Watch(pid int) (<-chan struct{}, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if w, ok := t.watches[pid]; ok {
		return w.exited, nil
	}

	if err := syscall.Kill(pid, 0); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil, ErrProcessNotFound
		}
		return nil, fmt.Errorf("check process %d: %w", pid, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watch{
		pid:    pid,
		pidfd:  -1,
		exited: make(chan struct{}),
		cancel: cancel,
	}

	if t.usePidfd {
		fd, err := unix.PidfdOpen(pid, 0)
		switch {
		case errors.Is(err, unix.ESRCH):
			cancel()
			return nil, ErrProcessNotFound
		case err != nil:
			log.Debug().Err(err).Int("pid", pid).Msg("pidfd_open failed, polling instead")
		default:
			w.pidfd = fd
		}
	}

	t.watches[pid] = w
	t.wg.Add(1)
	go t.run(ctx, w)

	return w.exited, nil
}

// Forget stops watching pid without reporting an exit.
func (t *Tracker) Forget(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if w, ok := t.watches[pid]; ok {
		release(w)
		delete(t.watches, pid)
	}
}

// Stop ends every watch and waits for the watchers to return.
func (t *Tracker) Stop() {
	close(t.done)

	t.mu.Lock()
	for _, w := range t.watches {
		release(w)
	}
	t.watches = make(map[int]*watch)
	t.mu.Unlock()

	t.wg.Wait()
}

func release(w *watch) {
	w.cancel()
	if w.pidfd >= 0 {
		_ = unix.Close(w.pidfd)
		w.pidfd = -1
	}
}

func (t *Tracker) run(ctx context.Context, w *watch) {
	defer t.wg.Done()

	var exited bool
	if w.pidfd >= 0 {
		exited = t.waitPidfd(ctx, w)
	} else {
		exited = t.waitProbe(ctx, w)
	}
	if !exited {
		return
	}

	t.mu.Lock()
	if cur, ok := t.watches[w.pid]; ok && cur == w {
		release(w)
		delete(t.watches, w.pid)
	}
	t.mu.Unlock()

	log.Debug().Int("pid", w.pid).Msg("process exited")
	close(w.exited)
}

func (t *Tracker) waitPidfd(ctx context.Context, w *watch) bool {
	fds := []unix.PollFd{
		{Fd: int32(w.pidfd), Events: unix.POLLIN}, //nolint:gosec // fds are small
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.done:
			return false
		default:
		}

		// bounded so cancellation is noticed
		n, err := unix.Poll(fds, 100)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			log.Warn().Err(err).Int("pid", w.pid).Msg("poll on pidfd failed")
			return false
		}
		if n > 0 && fds[0].Revents&unix.POLLIN != 0 {
			return true
		}
	}
}

func (t *Tracker) waitProbe(ctx context.Context, w *watch) bool {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.done:
			return false
		case <-ticker.C:
			err := syscall.Kill(w.pid, 0)
			if errors.Is(err, syscall.ESRCH) {
				return true
			}
			if err != nil {
				log.Warn().Err(err).Int("pid", w.pid).Msg("liveness probe failed")
			}
		}
	}
}

func pidfdSupported() bool {
	fd, err := unix.PidfdOpen(syscall.Getpid(), 0)
	if err != nil {
		return false
	}
	_ = unix.Close(fd)
	return true
}
