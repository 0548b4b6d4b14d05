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

//go:build !linux

package evdev

// Source is unavailable on this platform.
type Source struct{}

// Open always fails with ErrUnsupported.
func Open(...string) (*Source, error) {
	return nil, ErrUnsupported
}

func (*Source) Keys() []string { return nil }

func (*Source) IsPressed(string) bool { return false }

func (*Source) Close() error { return nil }
