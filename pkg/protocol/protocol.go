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

// Package protocol speaks the controller board's line protocol. Commands are
// single lines of space separated tokens; only VER gets a reply.
package protocol

import (
	"fmt"
	"strconv"
)

// Version is the protocol version the board must report in reply to VER.
const Version = "1.0"

// Command words.
const (
	CmdVersion        = "VER"
	CmdMode           = "MOD"
	CmdControllerCode = "CCD"
	CmdKey            = "KEY"
)

// Mode is the board's operating mode as sent with MOD.
type Mode int

const (
	// ModeNormal: board pins are outputs driven by KEY commands.
	ModeNormal Mode = 1
	// ModeProbe: board pins are inputs and every toggle is reported as one
	// byte, pin index + '0'.
	ModeProbe Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeProbe:
		return "probe"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// State is the connection state of a Driver.
type State int

const (
	StateClosed State = iota
	StateHandshaking
	StateNormal
	StateProbe
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHandshaking:
		return "handshaking"
	case StateNormal:
		return "normal"
	case StateProbe:
		return "probe"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

var keyCodes = map[string]string{
	"Up":     "U",
	"Down":   "D",
	"Left":   "E",
	"Right":  "I",
	"Start":  "T",
	"Select": "C",
}

// KeyCode returns the wire code for a button name. Directional and menu
// buttons get single letter codes; every other name is sent as is.
func KeyCode(name string) string {
	if code, ok := keyCodes[name]; ok {
		return code
	}
	return name
}

// ModeCommand builds "MOD <n>".
func ModeCommand(m Mode) string {
	return fmt.Sprintf("%s %d", CmdMode, int(m))
}

// ControllerCodeCommand builds "CCD <code>".
func ControllerCodeCommand(code string) string {
	return CmdControllerCode + " " + code
}

// KeyCommand builds "KEY <code> <1|0>".
func KeyCommand(name string, pressed bool) string {
	state := 0
	if pressed {
		state = 1
	}
	return fmt.Sprintf("%s %s %d", CmdKey, KeyCode(name), state)
}
