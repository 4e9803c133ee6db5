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

// Package procs finds, watches and kills the processes a launch leaves
// behind.
package procs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// runnerNames are process names that belong to a Wine/Proton session.
var runnerNames = map[string]bool{
	"umu-run":              true,
	"wineserver":           true,
	"winedevice.exe":       true,
	"pressure-vessel":      true,
	"pressure-vessel-wrap": true,
	"pv-adverb":            true,
	"reaper":               true,
	"proton":               true,
}

// Info is the part of a process the runner matcher looks at.
type Info struct {
	Name    string
	Cmdline []string
	PID     int32
}

// IsRunner reports whether p looks like part of a runner session. Scripts
// such as proton and umu-run show up under their interpreter's name, so the
// first two argv entries are checked too.
func IsRunner(p Info) bool {
	if matchName(p.Name) {
		return true
	}
	for i, arg := range p.Cmdline {
		if i > 1 {
			break
		}
		if matchName(filepath.Base(arg)) {
			return true
		}
	}
	return false
}

func matchName(name string) bool {
	name = strings.ToLower(name)
	if runnerNames[name] {
		return true
	}
	// wine, wine64, wine64-preloader, wine-preloader
	return name == "wine" || strings.HasPrefix(name, "wine64") || strings.HasPrefix(name, "wine-")
}

// SelectRunners returns the pids in list that IsRunner accepts, skipping
// self.
func SelectRunners(list []Info, self int32) []int32 {
	var out []int32
	for _, p := range list {
		if p.PID == self || p.PID <= 1 {
			continue
		}
		if IsRunner(p) {
			out = append(out, p.PID)
		}
	}
	return out
}

func snapshot(ctx context.Context) ([]Info, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	infos := make([]Info, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cmdline, _ := p.CmdlineSliceWithContext(ctx)
		infos = append(infos, Info{PID: p.Pid, Name: name, Cmdline: cmdline})
	}
	return infos, nil
}

// KillRunners SIGKILLs every runner process visible to this user and returns
// how many were signalled.
func KillRunners(ctx context.Context) (int, error) {
	infos, err := snapshot(ctx)
	if err != nil {
		return 0, err
	}

	self := int32(os.Getpid()) //nolint:gosec // pids fit in int32
	killed := 0
	for _, pid := range SelectRunners(infos, self) {
		p, err := process.NewProcessWithContext(ctx, pid)
		if err != nil {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			log.Debug().Err(err).Int32("pid", pid).Msg("failed to kill runner process")
			continue
		}
		log.Debug().Int32("pid", pid).Msg("killed runner process")
		killed++
	}

	log.Info().Int("count", killed).Msg("runner processes killed")
	return killed, nil
}

// KillGroup SIGKILLs the process group led by pid. A group that is already
// gone is not an error.
func KillGroup(pid int) error {
	if pid <= 1 {
		return fmt.Errorf("refusing to kill process group %d", pid)
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("kill process group %d: %w", pid, err)
	}
	return nil
}

// Tree remembers every descendant seen under a root pid, so processes
// that called setsid and got reparented can still be killed after the root
// has exited.
type Tree struct {
	seen map[int32]*process.Process
	mu   syncutil.Mutex
}

func NewTree() *Tree {
	return &Tree{seen: make(map[int32]*process.Process)}
}

// Snapshot adds the current descendants of pid. Earlier entries are kept.
func (t *Tree) Snapshot(ctx context.Context, pid int) {
	root, err := process.NewProcessWithContext(ctx, int32(pid)) //nolint:gosec // pids fit in int32
	if err != nil {
		return
	}
	found := descendants(ctx, root)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range found {
		if _, ok := t.seen[p.Pid]; !ok {
			t.seen[p.Pid] = p
		}
	}
}

// Len is the number of processes recorded so far.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Kill SIGKILLs every recorded process that is still the same process
// (pid and start time match) and returns how many were killed.
func (t *Tree) Kill(ctx context.Context) int {
	t.mu.Lock()
	list := make([]*process.Process, 0, len(t.seen))
	for _, p := range t.seen {
		list = append(list, p)
	}
	t.seen = make(map[int32]*process.Process)
	t.mu.Unlock()

	killed := 0
	for _, p := range list {
		if running, err := p.IsRunningWithContext(ctx); err != nil || !running {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			log.Debug().Err(err).Int32("pid", p.Pid).Msg("failed to kill process")
			continue
		}
		killed++
	}
	if killed > 0 {
		log.Info().Int("count", killed).Msg("killed processes left behind by runner")
	}
	return killed
}

func descendants(ctx context.Context, p *process.Process) []*process.Process {
	children, err := p.ChildrenWithContext(ctx)
	if err != nil || len(children) == 0 {
		return nil
	}
	out := make([]*process.Process, 0, len(children))
	for _, child := range children {
		out = append(out, descendants(ctx, child)...)
		out = append(out, child)
	}
	return out
}
