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

package calibration

import (
	"testing"

	"github.com/dscontroller/dscontroller/pkg/nds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullResult(start int) ProbeResult {
	r := make(ProbeResult)
	for i, b := range nds.All() {
		r[b] = start + i
	}
	return r
}

func TestPinFromProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		b     byte
		pin   int
		valid bool
	}{
		{b: '0', pin: 0, valid: true},
		{b: '9', pin: 9, valid: true},
		{b: 'o', pin: 63, valid: true},
		{b: 'p', pin: 64, valid: false},
		{b: '/', pin: -1, valid: false},
		{b: 0, pin: -48, valid: false},
	}

	for _, tt := range tests {
		pin, valid := PinFromProbe(tt.b)
		assert.Equal(t, tt.pin, pin, "byte %q", tt.b)
		assert.Equal(t, tt.valid, valid, "byte %q", tt.b)
	}
}

func TestAssign(t *testing.T) {
	t.Parallel()

	r := make(ProbeResult)
	assert.True(t, r.Assign(nds.ButtonA, 3))
	assert.False(t, r.Assign(nds.ButtonB, 3), "pin already used")
	assert.False(t, r.Assign(nds.ButtonB, 64))
	assert.False(t, r.Assign(nds.ButtonB, -1))
	assert.True(t, r.Assign(nds.ButtonB, 4))
	assert.Equal(t, ProbeResult{nds.ButtonA: 3, nds.ButtonB: 4}, r)
}

func TestDerive(t *testing.T) {
	t.Parallel()

	code, err := Derive(fullResult(0))
	require.NoError(t, err)
	assert.Equal(t, ControllerCode("?@ABCDEFGHIJK"), code)

	code, err = Derive(fullResult(51))
	require.NoError(t, err)
	assert.Equal(t, byte('~'), code[nds.NumButtons-1])
}

func TestDerive_Errors(t *testing.T) {
	t.Parallel()

	r := fullResult(0)
	delete(r, nds.ButtonSelect)
	_, err := Derive(r)
	require.ErrorIs(t, err, ErrIncomplete)
	assert.Contains(t, err.Error(), "Select")

	r = fullResult(0)
	r[nds.ButtonL] = 70
	_, err = Derive(r)
	require.ErrorIs(t, err, ErrInvalidPin)
}

func TestControllerCodePins(t *testing.T) {
	t.Parallel()

	pins, err := ControllerCode("?@ABCDEFGHIJK").Pins()
	require.NoError(t, err)
	assert.Equal(t, fullResult(0), pins)

	tests := []struct {
		name string
		code ControllerCode
	}{
		{name: "empty", code: ""},
		{name: "too short", code: "?@AB"},
		{name: "too long", code: "?@ABCDEFGHIJKL"},
		{name: "repeated pin", code: "??ABCDEFGHIJK"},
		{name: "below range", code: "0@ABCDEFGHIJK"},
		{name: "above range", code: "\x7f@ABCDEFGHIJK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.code.Validate(), ErrInvalidCode)
		})
	}
}
