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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// StartOptions configures how Spawn starts a child process.
type StartOptions struct {
	// Dir is the working directory. Empty inherits the launcher's.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
	// NewProcessGroup puts the child in its own process group, so the
	// group id equals the child pid and the whole tree can be signalled.
	NewProcessGroup bool
}

// Process is a spawned child with its output streams attached.
type Process interface {
	// Pid returns the OS process id of the child.
	Pid() int
	// Stdout returns the read end of the child's standard output.
	Stdout() io.Reader
	// Stderr returns the read end of the child's standard error.
	Stderr() io.Reader
	// Wait blocks until the child exits. The streams stay readable until
	// every process holding their write ends has exited.
	Wait() error
	// Close releases the read ends of both streams.
	Close() error
}

// Executor provides an abstraction over exec.Command for testability.
// This allows commands to be mocked in tests without executing real system commands.
type Executor interface {
	// Run executes a command and waits for it to complete.
	Run(ctx context.Context, name string, args ...string) error

	// Output runs a command and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)

	// Start starts a command without waiting for it to complete (fire-and-forget).
	Start(ctx context.Context, name string, args ...string) error

	// Spawn starts a command with piped stdout/stderr and returns a handle
	// the caller must Wait on.
	Spawn(ctx context.Context, opts StartOptions, name string, args ...string) (Process, error)
}

// RealExecutor uses actual exec.Command to execute system commands.
type RealExecutor struct{}

// Compile-time interface implementation check.
var _ Executor = (*RealExecutor)(nil)

// Run executes a system command using exec.CommandContext.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Output runs a command and returns its standard output.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Start starts a command without waiting for it to complete.
//
//nolint:wrapcheck // Wrapping exec errors loses important context
func (*RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Start()
}

// execProcess adapts a started exec.Cmd to Process.
type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File
}

func (p *execProcess) Pid() int          { return p.cmd.Process.Pid }
func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }

//nolint:wrapcheck // exit errors are passed through untouched
func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Close() error {
	return errors.Join(p.stdout.Close(), p.stderr.Close())
}
