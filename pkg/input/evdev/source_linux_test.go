// DS Controller
// Copyright (c) 2026 The DS Controller Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of DS Controller.
//
// DS Controller is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DS Controller is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DS Controller.  If not, see <http://www.gnu.org/licenses/>.

//go:build linux

package evdev

import (
	"testing"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyEvent(code uint16, value int32) *evdev.InputEvent {
	return &evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}
}

func TestKeyTable(t *testing.T) {
	t.Parallel()

	names := make(map[string]bool)
	codes := make(map[uint16]bool)
	for _, k := range keyTable {
		assert.False(t, names[k.name], "duplicate name %s", k.name)
		assert.False(t, codes[k.code], "duplicate code %d for %s", k.code, k.name)
		names[k.name] = true
		codes[k.code] = true
	}

	for _, want := range []string{"A", "Z", "Num0", "Up", "Down", "Left", "Right", "Return", "Space"} {
		assert.True(t, names[want], "missing %s", want)
	}
	assert.Len(t, keyNames, len(keyTable))
	assert.Len(t, codeKeys, len(keyTable))
}

func TestSource_Keys(t *testing.T) {
	t.Parallel()

	s := newSource()
	keys := s.Keys()
	require.Equal(t, keyNames, keys)

	keys[0] = "changed"
	assert.Equal(t, "A", s.Keys()[0], "callers get a copy")
}

func TestSource_HandleEvent(t *testing.T) {
	t.Parallel()

	s := newSource()

	s.handleEvent(keyEvent(evdev.KEY_UP, int32(evdev.KeyDown)))
	assert.True(t, s.IsPressed("Up"))

	s.handleEvent(keyEvent(evdev.KEY_UP, int32(evdev.KeyHold)))
	assert.True(t, s.IsPressed("Up"), "autorepeat keeps the key held")

	s.handleEvent(keyEvent(evdev.KEY_ENTER, int32(evdev.KeyDown)))
	assert.True(t, s.IsPressed("Return"))

	s.handleEvent(keyEvent(evdev.KEY_UP, int32(evdev.KeyUp)))
	assert.False(t, s.IsPressed("Up"))
	assert.True(t, s.IsPressed("Return"))

	s.handleEvent(keyEvent(evdev.KEY_UP, int32(evdev.KeyHold)))
	assert.False(t, s.IsPressed("Up"), "autorepeat never presses")
}

func TestSource_HandleEvent_Ignored(t *testing.T) {
	t.Parallel()

	s := newSource()

	s.handleEvent(&evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.KEY_A, Value: 1})
	assert.False(t, s.IsPressed("A"), "non key events")

	s.handleEvent(keyEvent(evdev.KEY_VOLUMEUP, int32(evdev.KeyDown)))
	for _, k := range s.Keys() {
		assert.False(t, s.IsPressed(k), "unsupported key must not mark %s", k)
	}
}

func TestSource_CloseWithoutDevices(t *testing.T) {
	t.Parallel()

	s := newSource()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestOpen_MissingDevice(t *testing.T) {
	t.Parallel()

	_, err := Open("/nonexistent/input/event99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input device")
}
