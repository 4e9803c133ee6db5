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

// Package console renders launch events in a terminal, standing in for the
// splash window and modal dialogs of the desktop launcher.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Faugus/faugus-launcher/pkg/launch"
	"github.com/Faugus/faugus-launcher/pkg/notify"
	"github.com/Faugus/faugus-launcher/pkg/runners"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickInterval is how often pending events are drained.
const TickInterval = 100 * time.Millisecond

var phaseText = map[launch.Phase]string{
	launch.PhaseUpdatingUMU:          "Updating UMU-Launcher...",
	launch.PhaseUMUCurrent:           "UMU-Launcher is up to date",
	launch.PhaseUpdatingBattlEye:     "Updating BattlEye...",
	launch.PhaseUpdatingEAC:          "Updating Easy Anti-Cheat...",
	launch.PhaseComponentsCurrent:    "Components are up to date",
	launch.PhaseDownloadingUMUProton: "Downloading UMU-Proton...",
	launch.PhaseDownloadingGEProton:  "Downloading GE-Proton...",
	launch.PhaseDownloadingEMProton:  "Downloading Proton-EM...",
	launch.PhaseExtractingUMUProton:  "Extracting UMU-Proton...",
	launch.PhaseExtractingGEProton:   "Extracting GE-Proton...",
	launch.PhaseExtractingEMProton:   "Extracting Proton-EM...",
	launch.PhaseUMUProtonCurrent:     "UMU-Proton is up to date",
	launch.PhaseGEProtonCurrent:      "GE-Proton is up to date",
	launch.PhaseEMProtonCurrent:      "Proton-EM is up to date",
	launch.PhaseDownloadingRuntime:   "Downloading Steam Runtime...",
	launch.PhaseExtractingRuntime:    "Extracting Steam Runtime...",
	launch.PhaseRuntimeCurrent:       "Steam Runtime is up to date",
}

// Options configure a Presenter.
type Options struct {
	Out      io.Writer
	Notifier notify.Notifier
	Clock    clockwork.Clock
	Title    string
	// NoSplash hides the progress lines (splash-disable).
	NoSplash bool
}

// Result summarises a drained session.
type Result struct {
	Err      error
	Runtime  time.Duration
	Playtime int64
	Exited   bool
}

// Presenter turns supervisor events into styled lines and dialogs.
type Presenter struct {
	opts    Options
	splash  bool
	header  lipgloss.Style
	phase   lipgloss.Style
	dialog  lipgloss.Style
	alert   lipgloss.Style
	summary lipgloss.Style
	result  Result
}

func NewPresenter(opts Options) *Presenter {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	r := lipgloss.NewRenderer(opts.Out)
	return &Presenter{
		opts:    opts,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		phase:   r.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(2),
		dialog:  r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1),
		alert:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 1),
		summary: r.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	}
}

// Drain consumes events until the channel closes or ctx ends. Pending
// events are handled in batches once per tick.
func (p *Presenter) Drain(ctx context.Context, events <-chan launch.Event) Result {
	ticker := p.opts.Clock.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		if p.drainPending(ctx, events) {
			return p.result
		}
		select {
		case <-ctx.Done():
			return p.result
		case <-ticker.Chan():
		}
	}
}

func (p *Presenter) drainPending(ctx context.Context, events <-chan launch.Event) bool {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return true
			}
			p.Handle(ctx, ev)
		default:
			return false
		}
	}
}

// Handle renders one event.
//
//nolint:gocritic // events are small value snapshots
func (p *Presenter) Handle(ctx context.Context, ev launch.Event) {
	switch ev.Kind {
	case launch.EventStarted:
		if !p.opts.NoSplash {
			p.splash = true
			p.line(p.header.Render("Launching " + p.opts.Title))
		}
	case launch.EventPhase:
		p.handlePhase(ctx, ev.Phase)
	case launch.EventFailed:
		p.result.Err = ev.Err
		p.closeSplash()
		summary, body := failureText(ev.Err)
		p.showDialog(ctx, true, summary, body)
	case launch.EventRegistryUpdated:
		p.showDialog(ctx, false, "Registry updated", "The registry file was imported into the prefix.")
	case launch.EventExited:
		p.closeSplash()
		p.result.Exited = true
		p.result.Runtime = ev.Runtime
		p.result.Playtime = ev.Playtime
		msg := "Exited after " + FormatDuration(ev.Runtime)
		if ev.Playtime > 0 {
			msg += ", total playtime " + FormatDuration(time.Duration(ev.Playtime)*time.Second)
		}
		p.line(p.summary.Render(msg))
	}
}

func (p *Presenter) handlePhase(ctx context.Context, ph launch.Phase) {
	switch {
	case ph == launch.PhaseInitComplete:
		p.closeSplash()
	case ph.Fatal():
		p.closeSplash()
		p.showDialog(ctx, true, "Network error",
			"The runner could not reach the network. Check your connection and try again.")
	default:
		text, ok := phaseText[ph]
		if !ok || !p.splash {
			return
		}
		p.line(p.phase.Render(text))
	}
}

func (p *Presenter) closeSplash() {
	p.splash = false
}

func (p *Presenter) showDialog(ctx context.Context, critical bool, summary, body string) {
	style := p.dialog
	urgency := notify.Normal
	if critical {
		style = p.alert
		urgency = notify.Critical
	}
	p.line(style.Render(summary + "\n" + body))
	if err := p.opts.Notifier.Notify(ctx, summary, body, urgency); err != nil {
		log.Debug().Err(err).Str("summary", summary).Msg("notification not shown")
	}
}

func (p *Presenter) line(s string) {
	_, _ = fmt.Fprintln(p.opts.Out, s)
}

// PrintScrollback writes buffered winetricks output once the session ends.
func (p *Presenter) PrintScrollback(lines []string) {
	if len(lines) == 0 {
		return
	}
	p.line(p.header.Render("Winetricks output"))
	_, _ = io.WriteString(p.opts.Out, strings.Join(lines, "\n")+"\n")
}

func failureText(err error) (summary, body string) {
	switch {
	case errors.Is(err, runners.ErrToolNotFound):
		return "Proton version not found", err.Error()
	case errors.Is(err, launch.ErrAlreadyRunning):
		return "Already running", err.Error()
	case err != nil:
		return "Launch failed", err.Error()
	default:
		return "Launch failed", "unknown error"
	}
}

// FormatDuration renders whole hours and minutes, or seconds below a minute.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		h := int(d.Hours())
		m := int(d.Minutes()) - h*60
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
