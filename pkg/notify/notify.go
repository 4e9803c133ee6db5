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

// Package notify sends desktop notifications over the session bus.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog/log"
)

const (
	service  = "org.freedesktop.Notifications"
	path     = "/org/freedesktop/Notifications"
	method   = service + ".Notify"
	appName  = "Faugus Launcher"
	appIcon  = "faugus-launcher"
	timeout  = 3 * time.Second
	expireMs = int32(-1)
)

// Urgency mirrors the freedesktop urgency hint.
type Urgency byte

const (
	Normal   Urgency = 1
	Critical Urgency = 2
)

// Notifier shows a message outside the terminal.
type Notifier interface {
	Notify(ctx context.Context, summary, body string, urgency Urgency) error
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, string, string, Urgency) error { return nil }

// Desktop talks to the freedesktop notification daemon.
type Desktop struct {
	obj  dbus.BusObject
	conn *dbus.Conn
}

// NewDesktop connects to the session bus. Callers usually fall back to
// Discard when this fails, since headless sessions have no daemon.
func NewDesktop() (*Desktop, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session bus auth: %w", err)
	}
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session bus hello: %w", err)
	}
	return &Desktop{conn: conn, obj: conn.Object(service, path)}, nil
}

// Auto returns a Desktop notifier when a session bus is reachable and
// Discard otherwise.
func Auto() Notifier {
	d, err := NewDesktop()
	if err != nil {
		log.Debug().Err(err).Msg("desktop notifications unavailable")
		return Discard{}
	}
	return d
}

func (d *Desktop) Notify(ctx context.Context, summary, body string, urgency Urgency) error {
	if d == nil || d.obj == nil {
		return errors.New("notifier not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(urgency)),
	}
	call := d.obj.CallWithContext(ctx, method, 0,
		appName, uint32(0), appIcon, summary, body, []string{}, hints, expireMs)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify reply: %w", err)
	}
	log.Debug().Uint32("id", id).Str("summary", summary).Msg("notification sent")
	return nil
}

func (d *Desktop) Close() error {
	if d == nil || d.conn == nil {
		return nil
	}
	//nolint:wrapcheck // closing a private bus connection
	return d.conn.Close()
}
