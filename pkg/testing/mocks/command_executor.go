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
package mocks

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/Faugus/faugus-launcher/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
// It allows testing code that executes system commands without actually running them.
type MockCommandExecutor struct {
	mock.Mock
}

var _ command.Executor = (*MockCommandExecutor)(nil)

// Run mocks the execution of a system command.
//
// Example:
//
//	mockCmd := &MockCommandExecutor{}
//	mockCmd.On("Run", mock.Anything, "wineserver", mock.Anything).Return(nil)
func (m *MockCommandExecutor) Run(ctx context.Context, name string, args ...string) error {
	called := m.Called(ctx, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

func (m *MockCommandExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	called := m.Called(ctx, name, args)
	out, _ := called.Get(0).([]byte)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return out, called.Error(1)
}

func (m *MockCommandExecutor) Start(ctx context.Context, name string, args ...string) error {
	called := m.Called(ctx, name, args)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return called.Error(0)
}

// Spawn mocks starting a supervised child. Return a *FakeProcess (or nil and
// an error) from the expectation.
//
// Example:
//
//	proc := mocks.NewFakeProcess(4242, "line one\n", "")
//	mockCmd.On("Spawn", mock.Anything, mock.Anything, "bash", mock.Anything).Return(proc, nil)
func (m *MockCommandExecutor) Spawn(
	ctx context.Context,
	opts command.StartOptions,
	name string,
	args ...string,
) (command.Process, error) {
	called := m.Called(ctx, opts, name, args)
	proc, _ := called.Get(0).(command.Process)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return proc, called.Error(1)
}

// FakeProcess is a command.Process with canned output. Wait returns once
// Exit has been called, then runs OnWait.
type FakeProcess struct {
	stdout  io.Reader
	stderr  io.Reader
	exit    chan struct{}
	OnWait  func()
	WaitErr error
	pid     int
	once    sync.Once
	closed  bool
	mu      sync.Mutex
}

var _ command.Process = (*FakeProcess)(nil)

// NewFakeProcess returns a process that has already exited and left stdout
// and stderr behind.
func NewFakeProcess(pid int, stdout, stderr string) *FakeProcess {
	p := NewRunningProcess(pid, strings.NewReader(stdout), strings.NewReader(stderr))
	p.Exit()
	return p
}

// NewRunningProcess returns a process that runs until Exit is called.
func NewRunningProcess(pid int, stdout, stderr io.Reader) *FakeProcess {
	return &FakeProcess{
		pid:    pid,
		stdout: stdout,
		stderr: stderr,
		exit:   make(chan struct{}),
	}
}

func (p *FakeProcess) Pid() int          { return p.pid }
func (p *FakeProcess) Stdout() io.Reader { return p.stdout }
func (p *FakeProcess) Stderr() io.Reader { return p.stderr }

// Exit lets Wait return. Safe to call more than once.
func (p *FakeProcess) Exit() {
	p.once.Do(func() { close(p.exit) })
}

func (p *FakeProcess) Wait() error {
	<-p.exit
	if p.OnWait != nil {
		p.OnWait()
	}
	return p.WaitErr
}

// Close marks the process closed and closes any stream that is an
// io.Closer, like the real read ends.
func (p *FakeProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	var errs []error
	for _, r := range []io.Reader{p.stdout, p.stderr} {
		if c, ok := r.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Closed reports whether Close was called.
func (p *FakeProcess) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
