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

// Package nds defines the closed set of Nintendo DS buttons the controller
// board can drive, and the mapping from those buttons to host key names.
package nds

import (
	"fmt"
	"slices"
)

// Button is a physical button on the handheld. The declaration order is the
// wire order: calibration probes buttons in this order and controller codes
// carry one character per button in this order.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonL
	ButtonR
	ButtonStart
	ButtonSelect
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonPower

	// NumButtons is the size of the enumeration.
	NumButtons = int(ButtonPower) + 1
)

var buttonNames = [NumButtons]string{
	ButtonA:      "A",
	ButtonB:      "B",
	ButtonX:      "X",
	ButtonY:      "Y",
	ButtonL:      "L",
	ButtonR:      "R",
	ButtonStart:  "Start",
	ButtonSelect: "Select",
	ButtonUp:     "Up",
	ButtonDown:   "Down",
	ButtonLeft:   "Left",
	ButtonRight:  "Right",
	ButtonPower:  "Power",
}

func (b Button) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Button(%d)", int(b))
	}
	return buttonNames[b]
}

// Valid reports whether b is one of the declared buttons.
func (b Button) Valid() bool {
	return b >= ButtonA && b <= ButtonPower
}

// All returns every button in wire order.
func All() []Button {
	buttons := make([]Button, NumButtons)
	for i := range buttons {
		buttons[i] = Button(i)
	}
	return buttons
}

// Names returns the button names in wire order.
func Names() []string {
	return slices.Clone(buttonNames[:])
}

// ParseButton looks up a button by its exact name.
func ParseButton(name string) (Button, error) {
	for i, n := range buttonNames {
		if n == name {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("unknown button: %q", name)
}

// IsButtonName reports whether name is an exact button name.
func IsButtonName(name string) bool {
	return slices.Contains(buttonNames[:], name)
}

// ButtonMapping maps each device button to the host key that drives it.
type ButtonMapping map[Button]string

// ButtonsForKey returns the buttons bound to key, in wire order. More than
// one button may share a key.
func (m ButtonMapping) ButtonsForKey(key string) []Button {
	var buttons []Button
	for _, b := range All() {
		if k, ok := m[b]; ok && k == key {
			buttons = append(buttons, b)
		}
	}
	return buttons
}

// ParseMapping converts a name-keyed mapping into a ButtonMapping. Buttons
// with an empty key are left out.
func ParseMapping(raw map[string]string) (ButtonMapping, error) {
	m := make(ButtonMapping, len(raw))
	for name, key := range raw {
		b, err := ParseButton(name)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		m[b] = key
	}
	return m, nil
}
