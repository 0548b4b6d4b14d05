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

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPorts_FiltersByOS(t *testing.T) {
	t.Parallel()

	raw := []string{
		"/dev/ttyS0",
		"/dev/ttyUSB1",
		"/dev/ttyACM0",
		"/dev/tty.usbmodem1421",
		"/dev/tty.Bluetooth-Incoming-Port",
		"COM3",
		"COM1",
	}

	tests := []struct {
		goos string
		want []string
	}{
		{goos: "linux", want: []string{"/dev/ttyACM0", "/dev/ttyUSB1"}},
		{goos: "darwin", want: []string{"/dev/tty.usbmodem1421"}},
		{goos: "windows", want: []string{"COM1", "COM3"}},
		{goos: "freebsd", want: []string{
			"/dev/tty.Bluetooth-Incoming-Port",
			"/dev/tty.usbmodem1421",
			"/dev/ttyACM0",
			"/dev/ttyS0",
			"/dev/ttyUSB1",
			"COM1",
			"COM3",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			t.Parallel()

			input := append([]string(nil), raw...)
			got, err := listPorts(tt.goos, func() ([]string, error) { return input, nil })
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListPorts_Error(t *testing.T) {
	t.Parallel()

	_, err := listPorts("linux", func() ([]string, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to get serial ports list on linux")
}
