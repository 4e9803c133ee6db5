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

package console

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Faugus/faugus-launcher/pkg/launch"
	"github.com/Faugus/faugus-launcher/pkg/notify"
	"github.com/Faugus/faugus-launcher/pkg/runners"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, summary, body string, urgency notify.Urgency) error {
	args := m.Called(ctx, summary, body, urgency)
	//nolint:wrapcheck // mock
	return args.Error(0)
}

func closedStream(evs ...launch.Event) <-chan launch.Event {
	ch := make(chan launch.Event, len(evs))
	for _, ev := range evs {
		ch <- ev
	}
	close(ch)
	return ch
}

func newTestPresenter(n notify.Notifier, noSplash bool) (*Presenter, *bytes.Buffer) {
	var out bytes.Buffer
	p := NewPresenter(Options{
		Out:      &out,
		Notifier: n,
		Clock:    clockwork.NewFakeClock(),
		Title:    "Half-Life 2",
		NoSplash: noSplash,
	})
	return p, &out
}

func TestPresenter_SplashLifecycle(t *testing.T) {
	t.Parallel()
	p, out := newTestPresenter(nil, false)

	res := p.Drain(context.Background(), closedStream(
		launch.Event{Kind: launch.EventStarted, PID: 10},
		launch.Event{Kind: launch.EventPhase, Phase: launch.PhaseUpdatingUMU},
		launch.Event{Kind: launch.EventPhase, Phase: launch.PhaseInitComplete},
		launch.Event{Kind: launch.EventPhase, Phase: launch.PhaseGEProtonCurrent},
		launch.Event{Kind: launch.EventExited, Runtime: 45 * time.Second, Playtime: 165},
	))

	assert.True(t, res.Exited)
	assert.Equal(t, int64(165), res.Playtime)
	require.NoError(t, res.Err)

	text := ansi.Strip(out.String())
	assert.Contains(t, text, "Launching Half-Life 2")
	assert.Contains(t, text, "Updating UMU-Launcher...")
	assert.NotContains(t, text, "GE-Proton is up to date", "phases after the splash closed are hidden")
	assert.Contains(t, text, "Exited after 45s, total playtime 2m")
}

func TestPresenter_NoSplash(t *testing.T) {
	t.Parallel()
	p, out := newTestPresenter(nil, true)
	p.Drain(context.Background(), closedStream(
		launch.Event{Kind: launch.EventStarted},
		launch.Event{Kind: launch.EventPhase, Phase: launch.PhaseUpdatingUMU},
		launch.Event{Kind: launch.EventExited},
	))
	text := ansi.Strip(out.String())
	assert.NotContains(t, text, "Launching")
	assert.NotContains(t, text, "Updating")
}

func TestPresenter_Dialogs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ev      launch.Event
		summary string
		urgency notify.Urgency
	}{
		{
			name:    "tool_not_found",
			ev:      launch.Event{Kind: launch.EventFailed, Err: fmt.Errorf("%w: GE-Proton-9-99", runners.ErrToolNotFound)},
			summary: "Proton version not found",
			urgency: notify.Critical,
		},
		{
			name:    "already_running",
			ev:      launch.Event{Kind: launch.EventFailed, Err: launch.ErrAlreadyRunning},
			summary: "Already running",
			urgency: notify.Critical,
		},
		{
			name:    "network_error",
			ev:      launch.Event{Kind: launch.EventPhase, Phase: launch.PhaseNetworkError},
			summary: "Network error",
			urgency: notify.Critical,
		},
		{
			name:    "registry_updated",
			ev:      launch.Event{Kind: launch.EventRegistryUpdated},
			summary: "Registry updated",
			urgency: notify.Normal,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := &mockNotifier{}
			n.On("Notify", mock.Anything, tt.summary, mock.AnythingOfType("string"), tt.urgency).Return(nil).Once()
			p, out := newTestPresenter(n, false)

			p.Drain(context.Background(), closedStream(tt.ev))

			assert.Contains(t, ansi.Strip(out.String()), tt.summary)
			n.AssertExpectations(t)
		})
	}
}

func TestPresenter_FailureResult(t *testing.T) {
	t.Parallel()
	n := &mockNotifier{}
	n.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	p, _ := newTestPresenter(n, false)

	res := p.Drain(context.Background(), closedStream(
		launch.Event{Kind: launch.EventFailed, Err: runners.ErrToolNotFound},
	))
	require.ErrorIs(t, res.Err, runners.ErrToolNotFound)
	assert.False(t, res.Exited)
}

func TestPresenter_DrainsPerTick(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	var out bytes.Buffer
	p := NewPresenter(Options{Out: &out, Clock: clock, Title: "Portal"})

	events := make(chan launch.Event, 4)
	done := make(chan Result, 1)
	go func() { done <- p.Drain(context.Background(), events) }()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	events <- launch.Event{Kind: launch.EventStarted}
	events <- launch.Event{Kind: launch.EventExited, Runtime: time.Minute}
	close(events)
	clock.Advance(TickInterval)

	select {
	case res := <-done:
		assert.True(t, res.Exited)
		assert.Equal(t, time.Minute, res.Runtime)
	case <-time.After(2 * time.Second):
		t.Fatal("presenter did not finish")
	}
}

func TestPresenter_ContextCancel(t *testing.T) {
	t.Parallel()
	p, _ := newTestPresenter(nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Drain(ctx, make(chan launch.Event))
	assert.False(t, res.Exited)
}

func TestPresenter_PrintScrollback(t *testing.T) {
	t.Parallel()
	p, out := newTestPresenter(nil, false)
	p.PrintScrollback(nil)
	assert.Empty(t, out.String())

	p.PrintScrollback([]string{"Executing w_do_call vcrun2019", "done"})
	text := ansi.Strip(out.String())
	assert.Contains(t, text, "Winetricks output")
	assert.Contains(t, text, "Executing w_do_call vcrun2019\ndone\n")
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0s", FormatDuration(400*time.Millisecond))
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "2m", FormatDuration(165*time.Second))
	assert.Equal(t, "3h 7m", FormatDuration(3*time.Hour+7*time.Minute+12*time.Second))
}
