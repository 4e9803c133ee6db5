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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Faugus/faugus-launcher/pkg/helpers/command"
	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ModeWinetricks routes output to the scrollback instead of the console.
const ModeWinetricks = "winetricks"

const (
	defaultShell   = "bash"
	eventBuffer    = 256
	maxLineBytes   = 1024 * 1024
	scrollbackSize = 5000
	treeInterval   = time.Second
)

// DefaultOutputGrace is how long output is still read after the runner
// exits before the streams are closed.
const DefaultOutputGrace = 2 * time.Second

var ErrSupervisorUsed = errors.New("supervisor already ran")

type State int

const (
	StateIdle State = iota
	StatePreflight
	StateRunning
	StateExited
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreflight:
		return "preflight"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type EventKind int

const (
	EventStarted EventKind = iota
	EventPhase
	EventFailed
	EventRegistryUpdated
	EventExited
)

// Event is a typed notification for whatever drives the UI. Only the
// fields relevant to Kind are set.
type Event struct {
	Err      error
	Session  string
	Kind     EventKind
	Phase    Phase
	PID      int
	Runtime  time.Duration
	Playtime int64
}

// RunnerResolver checks a PROTONPATH value before anything is spawned.
type RunnerResolver interface {
	ResolveRunner(ctx context.Context, value string) (string, error)
}

// ProcessTree tracks descendants of the runner while it runs and kills
// whatever survives it.
type ProcessTree interface {
	Snapshot(ctx context.Context, pid int)
	Kill(ctx context.Context) int
}

// PlaytimeStore persists accumulated playtime.
type PlaytimeStore interface {
	AddPlaytime(title string, seconds int64) (int64, error)
}

// Config holds the collaborators of a Supervisor. Zero values fall back to
// real implementations where one exists.
type Config struct {
	Executor  command.Executor
	Resolver  RunnerResolver
	Playtime  PlaytimeStore
	Registry  *Registry
	FS        afero.Fs
	Clock     clockwork.Clock
	Console   io.Writer
	KillGroup func(pid int) error
	// Tree is optional.
	Tree        ProcessTree
	Shell       string
	OutputGrace time.Duration
}

// Session describes one launch.
type Session struct {
	Title string
	// Target is the launched file; a .reg target reports a registry update.
	Target        string
	Mode          string
	LogPath       string
	TrackPlaytime bool
}

// Supervisor owns one spawned runner process from preflight to exit.
type Supervisor struct {
	cfg        Config
	events     chan Event
	scrollback *Scrollback
	classifier *Classifier
	logFile    afero.File
	logger     zerolog.Logger
	session    string
	killOnce   sync.Once
	state      State
	mu         syncutil.Mutex
}

func NewSupervisor(cfg Config) *Supervisor {
	if cfg.Executor == nil {
		cfg.Executor = &command.RealExecutor{}
	}
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Console == nil {
		cfg.Console = os.Stdout
	}
	if cfg.KillGroup == nil {
		cfg.KillGroup = func(int) error { return nil }
	}
	if cfg.Shell == "" {
		cfg.Shell = defaultShell
	}
	if cfg.OutputGrace <= 0 {
		cfg.OutputGrace = DefaultOutputGrace
	}

	id := uuid.NewString()
	return &Supervisor{
		cfg:        cfg,
		events:     make(chan Event, eventBuffer),
		scrollback: NewScrollback(scrollbackSize),
		classifier: NewClassifier(),
		session:    id,
		logger:     log.With().Str("session", id).Logger(),
	}
}

// Events is closed when Run returns.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

func (s *Supervisor) SessionID() string {
	return s.session
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) Scrollback() *Scrollback {
	return s.scrollback
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	s.logger.Debug().Stringer("from", prev).Stringer("to", st).Msg("supervisor state")
}

func (s *Supervisor) emit(ctx context.Context, ev Event) {
	ev.Session = s.session
	select {
	case s.events <- ev:
	case <-ctx.Done():
		s.logger.Debug().Int("kind", int(ev.Kind)).Msg("event dropped, context done")
	}
}

func (s *Supervisor) fail(ctx context.Context, err error) error {
	s.setState(StateFailed)
	s.logger.Error().Err(err).Msg("launch failed")
	s.emit(ctx, Event{Kind: EventFailed, Err: err})
	return err
}

// Run checks, spawns and supervises cmd until the process exits. It blocks
// for the whole session; exit codes are logged but not acted on.
//
//nolint:gocritic // Session is a small value snapshot
func (s *Supervisor) Run(ctx context.Context, cmd Command, sess Session) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrSupervisorUsed
	}
	s.mu.Unlock()
	defer close(s.events)

	s.setState(StatePreflight)
	cmd, err := s.preflight(ctx, cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	if s.cfg.Registry != nil && sess.Title != "" {
		if err := s.cfg.Registry.Acquire(sess.Title); err != nil {
			return s.fail(ctx, err)
		}
		defer s.cfg.Registry.Release(sess.Title)
	}

	s.openLog(sess.LogPath)
	defer s.closeLog()

	line := cmd.String()
	s.logger.Info().Str("title", sess.Title).Str("command", line).Msg("spawning runner")
	proc, err := s.cfg.Executor.Spawn(ctx, command.StartOptions{NewProcessGroup: true}, s.cfg.Shell, "-c", line)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("spawn runner: %w", err))
	}
	var closeOnce sync.Once
	closeStreams := func() {
		closeOnce.Do(func() {
			if err := proc.Close(); err != nil {
				s.logger.Debug().Err(err).Msg("closing output streams")
			}
		})
	}
	defer closeStreams()

	pid := proc.Pid()
	start := s.cfg.Clock.Now()
	s.setState(StateRunning)
	if s.cfg.Registry != nil && sess.Title != "" {
		if err := s.cfg.Registry.SetPID(sess.Title, pid); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record running pid")
		}
	}
	s.emit(ctx, Event{Kind: EventStarted, PID: pid})

	exited := make(chan error, 1)
	go func() { exited <- proc.Wait() }()

	stopTree := make(chan struct{})
	treeDone := s.watchTree(ctx, pid, stopTree)

	var readers errgroup.Group
	readers.Go(func() error { return s.pump(ctx, proc.Stdout(), pid, sess.Mode) })
	readers.Go(func() error { return s.pump(ctx, proc.Stderr(), pid, sess.Mode) })

	waitErr := <-exited
	elapsed := s.cfg.Clock.Since(start)
	s.logger.Debug().AnErr("wait", waitErr).Dur("runtime", elapsed).Msg("runner exited")

	close(stopTree)
	<-treeDone
	s.killGroup(pid)
	s.killTree(ctx)
	total := s.savePlaytime(sess, elapsed)

	s.drainOutput(ctx, &readers, closeStreams)
	s.finish(ctx, sess, elapsed, total)
	return nil
}

// watchTree snapshots the runner's descendants until stop is closed.
func (s *Supervisor) watchTree(ctx context.Context, pid int, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	if s.cfg.Tree == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := s.cfg.Clock.NewTicker(treeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				s.cfg.Tree.Snapshot(ctx, pid)
			}
		}
	}()
	return done
}

func (s *Supervisor) killTree(ctx context.Context) {
	if s.cfg.Tree == nil {
		return
	}
	if n := s.cfg.Tree.Kill(context.WithoutCancel(ctx)); n > 0 {
		s.logger.Debug().Int("count", n).Msg("killed leftover descendants")
	}
}

// drainOutput waits for both readers, closing the streams when something
// outside the group still holds them open after the grace period.
func (s *Supervisor) drainOutput(ctx context.Context, readers *errgroup.Group, closeStreams func()) {
	done := make(chan error, 1)
	go func() { done <- readers.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		closeStreams()
		err = <-done
	case <-s.cfg.Clock.After(s.cfg.OutputGrace):
		s.logger.Warn().Dur("grace", s.cfg.OutputGrace).Msg("output still open after exit, closing streams")
		closeStreams()
		err = <-done
	}
	if err != nil {
		s.logger.Debug().Err(err).Msg("output reader stopped")
	}
}

func (s *Supervisor) preflight(ctx context.Context, cmd Command) (Command, error) {
	if s.cfg.Resolver == nil {
		return cmd, nil
	}
	value, ok := cmd.Lookup(EnvProtonPath)
	if !ok {
		return cmd, nil
	}
	resolved, err := s.cfg.Resolver.ResolveRunner(ctx, value)
	if err != nil {
		return cmd, err //nolint:wrapcheck // resolver errors carry the runner name
	}
	if resolved != value {
		s.logger.Debug().Str("from", value).Str("to", resolved).Msg("runner resolved")
		cmd = cmd.WithVar(EnvProtonPath, resolved)
	}
	return cmd, nil
}

func (s *Supervisor) killGroup(pid int) {
	s.killOnce.Do(func() {
		if err := s.cfg.KillGroup(pid); err != nil {
			s.logger.Warn().Err(err).Int("pid", pid).Msg("failed to kill process group")
		}
	})
}

func (s *Supervisor) pump(ctx context.Context, r io.Reader, pid int, mode string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		s.handleLine(ctx, CleanLine(sc.Text()), pid, mode)
	}
	err := sc.Err()
	if err == nil || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return fmt.Errorf("read output: %w", err)
}

func (s *Supervisor) handleLine(ctx context.Context, line string, pid int, mode string) {
	s.mu.Lock()
	if s.logFile != nil {
		if _, err := s.logFile.WriteString(line + "\n"); err != nil {
			s.logger.Debug().Err(err).Msg("game log write failed")
		}
	}
	if mode == ModeWinetricks {
		s.scrollback.Append(line)
	} else {
		_, _ = fmt.Fprintln(s.cfg.Console, line)
	}
	phases := s.classifier.Classify(line)
	s.mu.Unlock()

	for _, p := range phases {
		s.emit(ctx, Event{Kind: EventPhase, Phase: p})
		if p.Fatal() {
			s.logger.Error().Str("line", line).Msg("runner reported a fatal error")
			s.killGroup(pid)
		}
	}
}

//nolint:gocritic // Session is a small value snapshot
func (s *Supervisor) savePlaytime(sess Session, elapsed time.Duration) int64 {
	if !sess.TrackPlaytime || s.cfg.Playtime == nil || sess.Title == "" {
		return 0
	}
	secs := int64(elapsed / time.Second)
	total, err := s.cfg.Playtime.AddPlaytime(sess.Title, secs)
	if err != nil {
		s.logger.Error().Err(err).Str("title", sess.Title).Msg("failed to save playtime")
		return 0
	}
	s.logger.Info().Str("title", sess.Title).Int64("added", secs).Int64("total", total).Msg("playtime saved")
	return total
}

//nolint:gocritic // Session is a small value snapshot
func (s *Supervisor) finish(ctx context.Context, sess Session, elapsed time.Duration, total int64) {
	if strings.EqualFold(filepath.Ext(sess.Target), ".reg") {
		s.emit(ctx, Event{Kind: EventRegistryUpdated})
	}

	s.setState(StateExited)
	s.emit(ctx, Event{Kind: EventExited, Runtime: elapsed, Playtime: total})
}

func (s *Supervisor) openLog(path string) {
	if path == "" {
		return
	}
	if err := s.cfg.FS.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		s.logger.Warn().Err(err).Msg("failed to create game log directory")
		return
	}
	f, err := s.cfg.FS.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to open game log")
		return
	}
	s.mu.Lock()
	s.logFile = f
	s.mu.Unlock()
}

func (s *Supervisor) closeLog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logFile == nil {
		return
	}
	if err := s.logFile.Close(); err != nil {
		s.logger.Debug().Err(err).Msg("closing game log")
	}
	s.logFile = nil
}
