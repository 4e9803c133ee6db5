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

package logs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	//nolint:wrapcheck // bytes.Buffer never fails
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPrint(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/logs/portal/umu.log", []byte("one\ntwo\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, Print(fs, "/logs/portal/umu.log", &out))
	assert.Equal(t, "one\ntwo\n", out.String())

	err := Print(fs, "/logs/missing/umu.log", &out)
	require.ErrorIs(t, err, ErrNoLog)
}

func appendLine(path, s string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err //nolint:wrapcheck // test helper
	}
	_, err = f.WriteString(s)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err //nolint:wrapcheck // test helper
}

func appendTo(t *testing.T, path, s string) {
	t.Helper()
	require.NoError(t, appendLine(path, s))
}

func TestFollow(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "portal", "umu.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	appendTo(t, path, "first\n")

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, out) }()

	assert.Eventually(t, func() bool { return out.String() == "first\n" }, 2*time.Second, 10*time.Millisecond)

	appendTo(t, path, "second\n")
	assert.Eventually(t, func() bool { return out.String() == "first\nsecond\n" }, 2*time.Second, 10*time.Millisecond)

	// a new session truncates the log
	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0o600))
	assert.Eventually(t, func() bool { return out.String() == "first\nsecond\nnew\n" }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("follow did not stop")
	}
}

func TestFollow_FileCreatedLater(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "celeste", "umu.log")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, out) }()

	// the watch may not be in place yet, so keep writing until seen
	assert.Eventually(t, func() bool {
		if _, err := os.Stat(filepath.Dir(path)); err != nil {
			return false
		}
		if out.String() == "" {
			_ = appendLine(path, "hello\n")
		}
		return strings.HasPrefix(out.String(), "hello\n")
	}, 2*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
