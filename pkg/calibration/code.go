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
	"errors"
	"fmt"
	"strings"

	"github.com/dscontroller/dscontroller/pkg/nds"
)

const (
	// MaxPin is the highest pin index that still encodes to a printable
	// controller code character.
	MaxPin = 63

	// probeOffset is subtracted from a probe byte to get the pin index.
	probeOffset = '0'
	// codeOffset is added to a pin index to get its controller code character.
	codeOffset = 63
)

var (
	ErrIncomplete  = errors.New("probe result incomplete")
	ErrInvalidPin  = errors.New("invalid pin")
	ErrInvalidCode = errors.New("invalid controller code")
)

// ControllerCode tells the firmware which pin drives each button: one
// character per button in nds.All order, pin index + 63.
type ControllerCode string

// ProbeResult maps each button to the pin it was found on. Pins are unique.
type ProbeResult map[nds.Button]int

// ValidPin reports whether pin can be encoded in a controller code.
func ValidPin(pin int) bool {
	return pin >= 0 && pin <= MaxPin
}

// PinFromProbe decodes a byte reported by the board in probe mode.
func PinFromProbe(b byte) (int, bool) {
	pin := int(b) - probeOffset
	return pin, ValidPin(pin)
}

// HasPin reports whether pin is already assigned to a button.
func (r ProbeResult) HasPin(pin int) bool {
	for _, p := range r {
		if p == pin {
			return true
		}
	}
	return false
}

// Assign records pin for b. It returns false, leaving r untouched, when the
// pin is invalid or already taken.
func (r ProbeResult) Assign(b nds.Button, pin int) bool {
	if !ValidPin(pin) || r.HasPin(pin) {
		return false
	}
	r[b] = pin
	return true
}

// Derive builds the controller code for a complete probe result.
func Derive(r ProbeResult) (ControllerCode, error) {
	var sb strings.Builder
	sb.Grow(nds.NumButtons)
	for _, b := range nds.All() {
		pin, ok := r[b]
		if !ok {
			return "", fmt.Errorf("%w: no pin for %s", ErrIncomplete, b)
		}
		if !ValidPin(pin) {
			return "", fmt.Errorf("%w: %d for %s", ErrInvalidPin, pin, b)
		}
		sb.WriteByte(byte(pin + codeOffset))
	}
	return ControllerCode(sb.String()), nil
}

// Pins decodes a controller code back into its probe result.
func (c ControllerCode) Pins() (ProbeResult, error) {
	if len(c) != nds.NumButtons {
		return nil, fmt.Errorf("%w: expected %d characters, got %d",
			ErrInvalidCode, nds.NumButtons, len(c))
	}

	r := make(ProbeResult, nds.NumButtons)
	for i, b := range nds.All() {
		pin := int(c[i]) - codeOffset
		if !r.Assign(b, pin) {
			return nil, fmt.Errorf("%w: bad or repeated character %q for %s",
				ErrInvalidCode, c[i], b)
		}
	}
	return r, nil
}

// Validate checks that c is a well formed controller code.
func (c ControllerCode) Validate() error {
	_, err := c.Pins()
	return err
}

func (c ControllerCode) String() string {
	return string(c)
}
