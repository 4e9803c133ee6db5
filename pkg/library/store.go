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

package library

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faugus/faugus-launcher/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrDuplicateTitle = errors.New("a game with this title already exists")
)

// Store reads and writes games.json. Every mutation rewrites the whole
// array. The mutex only serialises writers inside this process; two
// launcher processes writing at once still race and the last one wins.
type Store struct {
	fs   afero.Fs
	path string
	mu   syncutil.Mutex
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the location of games.json.
func (s *Store) Path() string {
	return s.path
}

// List returns every game in file order.
func (s *Store) List() ([]Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]Game, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Game{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read games file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Game{}, nil
	}

	var games []Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("failed to parse games file: %w", err)
	}
	if games == nil {
		games = []Game{}
	}

	for i := range games {
		if want := NormalizeID(games[i].Title); games[i].GameID != want {
			log.Debug().
				Str("title", games[i].Title).
				Str("stored", games[i].GameID).
				Str("derived", want).
				Msg("re-deriving stale game id")
			games[i].GameID = want
		}
	}

	return games, nil
}

func (s *Store) save(games []Game) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(games); err != nil {
		return fmt.Errorf("failed to marshal games: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create games directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write games file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace games file: %w", err)
	}
	return nil
}

// modify runs a read-modify-write cycle over the whole array.
func (s *Store) modify(fn func([]Game) ([]Game, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	games, err := s.load()
	if err != nil {
		return err
	}
	games, err = fn(games)
	if err != nil {
		return err
	}
	return s.save(games)
}

func indexOf(games []Game, title string) int {
	for i := range games {
		if games[i].Title == title {
			return i
		}
	}
	return -1
}

// conflict finds another record with the same title or the same game id.
func conflict(games []Game, g *Game, skip int) bool {
	for i := range games {
		if i == skip {
			continue
		}
		if games[i].Title == g.Title || games[i].GameID == g.GameID {
			return true
		}
	}
	return false
}

// Get returns the game with the given title.
func (s *Store) Get(title string) (Game, error) {
	games, err := s.List()
	if err != nil {
		return Game{}, err
	}
	if i := indexOf(games, title); i >= 0 {
		return games[i], nil
	}
	return Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, title)
}

// GetByID returns the game whose derived id matches gameID.
func (s *Store) GetByID(gameID string) (Game, error) {
	games, err := s.List()
	if err != nil {
		return Game{}, err
	}
	for i := range games {
		if games[i].GameID == gameID {
			return games[i], nil
		}
	}
	return Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
}

// Add validates g and appends it.
//
//nolint:gocritic // records are small and passed by value everywhere
func (s *Store) Add(g Game) (Game, error) {
	g.Rederive()
	if err := Validate(g); err != nil {
		return Game{}, err
	}

	err := s.modify(func(games []Game) ([]Game, error) {
		if conflict(games, &g, -1) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTitle, g.Title)
		}
		return append(games, g), nil
	})
	if err != nil {
		return Game{}, err
	}

	log.Info().Str("title", g.Title).Str("gameid", g.GameID).Msg("game added")
	return g, nil
}

// Update applies fn to the game named title, re-derives the game id and
// re-validates before saving.
func (s *Store) Update(title string, fn func(*Game)) (Game, error) {
	var updated Game
	err := s.modify(func(games []Game) ([]Game, error) {
		i := indexOf(games, title)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, title)
		}

		g := games[i]
		fn(&g)
		g.Rederive()
		if err := Validate(g); err != nil {
			return nil, err
		}
		if conflict(games, &g, i) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTitle, g.Title)
		}

		games[i] = g
		updated = g
		return games, nil
	})
	if err != nil {
		return Game{}, err
	}
	return updated, nil
}

// Remove deletes the game named title and returns the removed record.
func (s *Store) Remove(title string) (Game, error) {
	var removed Game
	err := s.modify(func(games []Game) ([]Game, error) {
		i := indexOf(games, title)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, title)
		}
		removed = games[i]
		return append(games[:i], games[i+1:]...), nil
	})
	if err != nil {
		return Game{}, err
	}

	log.Info().Str("title", title).Msg("game removed")
	return removed, nil
}

// AddPlaytime adds seconds to a game's cumulative playtime and returns the
// new total. Non-positive durations leave the record untouched.
func (s *Store) AddPlaytime(title string, seconds int64) (int64, error) {
	var total int64
	err := s.modify(func(games []Game) ([]Game, error) {
		i := indexOf(games, title)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrGameNotFound, title)
		}
		if seconds > 0 {
			games[i].Playtime += seconds
		}
		total = games[i].Playtime
		return games, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
