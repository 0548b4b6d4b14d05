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

package protocol

import (
	"errors"
	"fmt"

	"github.com/dscontroller/dscontroller/pkg/transport"
)

var (
	// ErrHandshakeTimeout means the board did not answer VER in time.
	ErrHandshakeTimeout = errors.New("handshake timeout")
	// ErrVersionMismatch matches any *VersionMismatchError.
	ErrVersionMismatch = errors.New("protocol version mismatch")
	ErrNotConnected    = errors.New("not connected")
	ErrAlreadyOpen     = errors.New("connection already open")
	ErrUnknownMode     = errors.New("unknown mode")
)

// VersionMismatchError is returned when the board speaks another protocol
// version. It is never retried: the firmware has to be updated.
type VersionMismatchError struct {
	Got      string
	Expected string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%s (%s != %s)", ErrVersionMismatch, e.Got, e.Expected)
}

func (*VersionMismatchError) Is(target error) bool {
	return target == ErrVersionMismatch
}

// Describe turns a driver error into the message shown to the user.
func Describe(err error) string {
	var vm *VersionMismatchError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vm):
		return fmt.Sprintf(
			"Protocol version mismatch (%s != %s). Please update the hardware.",
			vm.Got, vm.Expected,
		)
	case errors.Is(err, transport.ErrAccess):
		return "Unable to open serial port."
	case errors.Is(err, ErrHandshakeTimeout):
		return "Handshake timeout"
	case errors.Is(err, ErrNotConnected):
		return "Not connected to the controller."
	default:
		return err.Error()
	}
}
