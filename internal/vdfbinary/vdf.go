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

// Package vdfbinary decodes Valve's binary KeyValues format, the encoding
// Steam uses for shortcuts.vdf.
//
// Derived from github.com/TimDeve/valve-vdf-binary (MIT).
package vdfbinary

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	markerMap    byte = 0x00
	markerString byte = 0x01
	markerInt32  byte = 0x02
	markerEnd    byte = 0x08
)

var (
	ErrEmpty     = errors.New("vdf is empty")
	ErrNotBinary = errors.New("vdf is not in binary format")
	ErrTruncated = errors.New("vdf ended early, file may be corrupted")
)

// Map is a decoded object. Keys are lowercased since Valve treats them
// case-insensitively.
type Map map[string]Value

// Value holds exactly one of a nested Map, a string or a uint32.
type Value struct {
	m     Map
	s     string
	n     uint32
	isMap bool
	isStr bool
}

func (v Value) Map() (Map, bool)       { return v.m, v.isMap }
func (v Value) String() (string, bool) { return v.s, v.isStr }

func (v Value) Uint32() (uint32, bool) {
	return v.n, !v.isMap && !v.isStr
}

func (m Map) Map(key string) (Map, bool) {
	v, ok := m[strings.ToLower(key)]
	if !ok {
		return nil, false
	}
	return v.Map()
}

func (m Map) String(key string) (string, bool) {
	v, ok := m[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return v.String()
}

func (m Map) Uint32(key string) (uint32, bool) {
	v, ok := m[strings.ToLower(key)]
	if !ok {
		return 0, false
	}
	return v.Uint32()
}

// Bool reads an int32 flag; any non-zero value is true.
func (m Map) Bool(key string) bool {
	n, ok := m.Uint32(key)
	return ok && n != 0
}

// Decode reads one top-level object.
func Decode(r io.Reader) (Map, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(1)
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("peek: %w", err)
	}
	switch head[0] {
	case markerMap, markerString, markerInt32, markerEnd:
	default:
		return nil, ErrNotBinary
	}

	m, err := decodeMap(br)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, ErrTruncated
	}
	return m, err
}

func decodeMap(br *bufio.Reader) (Map, error) {
	m := make(Map)
	for {
		marker, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("read marker: %w", err)
		}
		if marker == markerEnd {
			return m, nil
		}

		key, err := readCString(br)
		if err != nil {
			return nil, err
		}

		var v Value
		switch marker {
		case markerMap:
			v.m, err = decodeMap(br)
			v.isMap = true
		case markerString:
			v.s, err = readCString(br)
			v.isStr = true
		case markerInt32:
			v.n, err = readUint32(br)
		default:
			return nil, fmt.Errorf("unexpected marker 0x%02x for key %q", marker, key)
		}
		if err != nil {
			return nil, err
		}

		m[strings.ToLower(key)] = v
	}
}

func readCString(br *bufio.Reader) (string, error) {
	s, err := br.ReadString(0x00)
	if err != nil {
		return "", fmt.Errorf("read string: %w", err)
	}
	return s[:len(s)-1], nil
}

func readUint32(br *bufio.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(br, b[:]); err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}
