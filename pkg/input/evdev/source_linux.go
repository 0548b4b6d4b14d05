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
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dscontroller/dscontroller/pkg/helpers/syncutil"
	evdev "github.com/gvalkov/golang-evdev"
	"github.com/rs/zerolog/log"
)

// DeviceGlob matches the input devices scanned when no path is given.
const DeviceGlob = "/dev/input/event*"

// Source tracks which keys are held on one or more keyboards.
type Source struct {
	held    map[string]bool
	devices []*evdev.InputDevice
	wg      sync.WaitGroup
	closed  atomic.Bool
	mu      syncutil.RWMutex
}

func newSource() *Source {
	return &Source{held: make(map[string]bool)}
}

// Open starts reading key events from the devices at paths, or from every
// keyboard found under DeviceGlob when paths is empty.
func Open(paths ...string) (*Source, error) {
	var devices []*evdev.InputDevice
	var err error
	if len(paths) == 0 {
		devices, err = findKeyboards()
	} else {
		devices, err = openPaths(paths)
	}
	if err != nil {
		return nil, err
	}

	s := newSource()
	s.devices = devices
	for _, dev := range devices {
		log.Info().Str("device", dev.Fn).Str("name", dev.Name).Msg("reading keyboard")
		s.wg.Add(1)
		go s.read(dev)
	}
	return s, nil
}

func openPaths(paths []string) ([]*evdev.InputDevice, error) {
	devices := make([]*evdev.InputDevice, 0, len(paths))
	for _, p := range paths {
		dev, err := evdev.Open(p)
		if err != nil {
			closeDevices(devices)
			return nil, fmt.Errorf("failed to open input device %s: %w", p, err)
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

func findKeyboards() ([]*evdev.InputDevice, error) {
	all, err := evdev.ListInputDevices(DeviceGlob)
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	var keyboards []*evdev.InputDevice
	for _, dev := range all {
		if isKeyboard(dev) {
			keyboards = append(keyboards, dev)
			continue
		}
		_ = dev.File.Close()
	}
	if len(keyboards) == 0 {
		return nil, ErrNoKeyboard
	}
	return keyboards, nil
}

// isKeyboard reports whether dev can send letter keys.
func isKeyboard(dev *evdev.InputDevice) bool {
	for ct, codes := range dev.Capabilities {
		if ct.Type != evdev.EV_KEY {
			continue
		}
		return slices.ContainsFunc(codes, func(c evdev.CapabilityCode) bool {
			return c.Code == evdev.KEY_A
		})
	}
	return false
}

func closeDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		if err := dev.File.Close(); err != nil {
			log.Debug().Err(err).Str("device", dev.Fn).Msg("failed to close input device")
		}
	}
}

func (s *Source) read(dev *evdev.InputDevice) {
	defer s.wg.Done()
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if !s.closed.Load() {
				log.Error().Err(err).Str("device", dev.Fn).Msg("keyboard read failed")
			}
			return
		}
		s.handleEvent(ev)
	}
}

func (s *Source) handleEvent(ev *evdev.InputEvent) {
	if ev.Type != evdev.EV_KEY {
		return
	}
	kev := evdev.NewKeyEvent(ev)
	name, ok := codeKeys[kev.Scancode]
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch kev.State {
	case evdev.KeyDown:
		s.held[name] = true
	case evdev.KeyUp:
		delete(s.held, name)
	case evdev.KeyHold:
		// autorepeat of a key already held
	}
}

// Keys returns every supported key name in a fixed order.
func (*Source) Keys() []string {
	return slices.Clone(keyNames)
}

func (s *Source) IsPressed(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.held[key]
}

// Close stops reading and closes the devices.
func (s *Source) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	var errs []error
	for _, dev := range s.devices {
		if err := dev.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", dev.Fn, err))
		}
	}
	s.wg.Wait()
	return errors.Join(errs...)
}
