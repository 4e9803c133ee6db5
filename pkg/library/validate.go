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
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidGame wraps every validation failure.
var ErrInvalidGame = errors.New("invalid game")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateGame, Game{})
	return v
}

// validateGame checks the rules that span several fields.
func validateGame(sl validator.StructLevel) {
	g, ok := sl.Current().Interface().(Game)
	if !ok {
		return
	}

	if g.Title != "" && NormalizeID(g.Title) == "" {
		sl.ReportError(g.Title, "Title", "title", "hasalnum", "")
	}
	if g.UsesProton() && strings.TrimSpace(g.Prefix) == "" {
		sl.ReportError(g.Prefix, "Prefix", "prefix", "required_for_runner", g.Runner)
	}
	if g.Runner != RunnerSteam && strings.TrimSpace(g.Path) == "" && strings.TrimSpace(g.AddApp) == "" {
		sl.ReportError(g.Path, "Path", "path", "required_without_addapp", "")
	}
	if bool(g.AddAppCheckbox) && strings.TrimSpace(g.AddApp) == "" {
		sl.ReportError(g.AddApp, "AddApp", "addapp", "required_with_checkbox", "")
	}
	if bool(g.Lossless.Enabled) {
		if g.Multiplier < 1 || g.Multiplier > 20 {
			sl.ReportError(g.Multiplier, "Multiplier", "lossless_multiplier", "range", "1-20")
		}
		if g.Flow < 25 || g.Flow > 100 {
			sl.ReportError(g.Flow, "Flow", "lossless_flow", "range", "25-100")
		}
	}
	if strings.Contains(g.Runner, "=") {
		sl.ReportError(g.Runner, "Runner", "runner", "noequals", "")
	}
}

// Validate checks a record before it is added or saved by an edit.
//
//nolint:gocritic // records are small and passed by value everywhere
func Validate(g Game) error {
	err := validate.Struct(g)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidGame, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += " (" + fe.Param() + ")"
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidGame, strings.Join(msgs, "; "))
}
