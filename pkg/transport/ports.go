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
	"fmt"
	"runtime"
	"slices"
	"strings"

	"go.bug.st/serial"
)

// PortLister returns the raw list of serial ports known to the OS.
type PortLister func() ([]string, error)

var portPrefixes = map[string][]string{
	"linux":   {"/dev/ttyUSB", "/dev/ttyACM"},
	"darwin":  {"/dev/tty.usbserial", "/dev/tty.usbmodem", "/dev/cu.usbserial", "/dev/cu.usbmodem"},
	"windows": {"COM"},
}

// ListPorts returns the serial devices a controller board could be attached
// to, sorted by name.
func ListPorts() ([]string, error) {
	return listPorts(runtime.GOOS, serial.GetPortsList)
}

func listPorts(goos string, lister PortLister) ([]string, error) {
	ports, err := lister()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports list on %s: %w", goos, err)
	}

	prefixes, ok := portPrefixes[goos]
	if !ok {
		slices.Sort(ports)
		return ports, nil
	}

	devices := make([]string, 0, len(ports))
	for _, p := range ports {
		for _, prefix := range prefixes {
			if strings.HasPrefix(p, prefix) {
				devices = append(devices, p)
				break
			}
		}
	}

	slices.Sort(devices)
	return devices, nil
}
