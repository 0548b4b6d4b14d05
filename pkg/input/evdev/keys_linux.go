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
	evdev "github.com/gvalkov/golang-evdev"
)

type keyDef struct {
	name string
	code uint16
}

// keyTable lists the supported keys in the order Keys reports them. Names
// follow the SFML keyboard enumeration so existing mappings keep working.
var keyTable = []keyDef{
	{"A", evdev.KEY_A}, {"B", evdev.KEY_B}, {"C", evdev.KEY_C},
	{"D", evdev.KEY_D}, {"E", evdev.KEY_E}, {"F", evdev.KEY_F},
	{"G", evdev.KEY_G}, {"H", evdev.KEY_H}, {"I", evdev.KEY_I},
	{"J", evdev.KEY_J}, {"K", evdev.KEY_K}, {"L", evdev.KEY_L},
	{"M", evdev.KEY_M}, {"N", evdev.KEY_N}, {"O", evdev.KEY_O},
	{"P", evdev.KEY_P}, {"Q", evdev.KEY_Q}, {"R", evdev.KEY_R},
	{"S", evdev.KEY_S}, {"T", evdev.KEY_T}, {"U", evdev.KEY_U},
	{"V", evdev.KEY_V}, {"W", evdev.KEY_W}, {"X", evdev.KEY_X},
	{"Y", evdev.KEY_Y}, {"Z", evdev.KEY_Z},

	{"Num0", evdev.KEY_0}, {"Num1", evdev.KEY_1}, {"Num2", evdev.KEY_2},
	{"Num3", evdev.KEY_3}, {"Num4", evdev.KEY_4}, {"Num5", evdev.KEY_5},
	{"Num6", evdev.KEY_6}, {"Num7", evdev.KEY_7}, {"Num8", evdev.KEY_8},
	{"Num9", evdev.KEY_9},

	{"Escape", evdev.KEY_ESC},
	{"LControl", evdev.KEY_LEFTCTRL},
	{"LShift", evdev.KEY_LEFTSHIFT},
	{"LAlt", evdev.KEY_LEFTALT},
	{"LSystem", evdev.KEY_LEFTMETA},
	{"RControl", evdev.KEY_RIGHTCTRL},
	{"RShift", evdev.KEY_RIGHTSHIFT},
	{"RAlt", evdev.KEY_RIGHTALT},
	{"RSystem", evdev.KEY_RIGHTMETA},
	{"Menu", evdev.KEY_COMPOSE},
	{"LBracket", evdev.KEY_LEFTBRACE},
	{"RBracket", evdev.KEY_RIGHTBRACE},
	{"SemiColon", evdev.KEY_SEMICOLON},
	{"Comma", evdev.KEY_COMMA},
	{"Period", evdev.KEY_DOT},
	{"Quote", evdev.KEY_APOSTROPHE},
	{"Slash", evdev.KEY_SLASH},
	{"BackSlash", evdev.KEY_BACKSLASH},
	{"Tilde", evdev.KEY_GRAVE},
	{"Equal", evdev.KEY_EQUAL},
	{"Dash", evdev.KEY_MINUS},
	{"Space", evdev.KEY_SPACE},
	{"Return", evdev.KEY_ENTER},
	{"BackSpace", evdev.KEY_BACKSPACE},
	{"Tab", evdev.KEY_TAB},
	{"PageUp", evdev.KEY_PAGEUP},
	{"PageDown", evdev.KEY_PAGEDOWN},
	{"End", evdev.KEY_END},
	{"Home", evdev.KEY_HOME},
	{"Insert", evdev.KEY_INSERT},
	{"Delete", evdev.KEY_DELETE},
	{"Add", evdev.KEY_KPPLUS},
	{"Subtract", evdev.KEY_KPMINUS},
	{"Multiply", evdev.KEY_KPASTERISK},
	{"Divide", evdev.KEY_KPSLASH},
	{"Left", evdev.KEY_LEFT},
	{"Right", evdev.KEY_RIGHT},
	{"Up", evdev.KEY_UP},
	{"Down", evdev.KEY_DOWN},

	{"Numpad0", evdev.KEY_KP0}, {"Numpad1", evdev.KEY_KP1},
	{"Numpad2", evdev.KEY_KP2}, {"Numpad3", evdev.KEY_KP3},
	{"Numpad4", evdev.KEY_KP4}, {"Numpad5", evdev.KEY_KP5},
	{"Numpad6", evdev.KEY_KP6}, {"Numpad7", evdev.KEY_KP7},
	{"Numpad8", evdev.KEY_KP8}, {"Numpad9", evdev.KEY_KP9},

	{"F1", evdev.KEY_F1}, {"F2", evdev.KEY_F2}, {"F3", evdev.KEY_F3},
	{"F4", evdev.KEY_F4}, {"F5", evdev.KEY_F5}, {"F6", evdev.KEY_F6},
	{"F7", evdev.KEY_F7}, {"F8", evdev.KEY_F8}, {"F9", evdev.KEY_F9},
	{"F10", evdev.KEY_F10}, {"F11", evdev.KEY_F11}, {"F12", evdev.KEY_F12},
	{"F13", evdev.KEY_F13}, {"F14", evdev.KEY_F14}, {"F15", evdev.KEY_F15},

	{"Pause", evdev.KEY_PAUSE},
}

var keyNames, codeKeys = indexKeys(keyTable)

func indexKeys(table []keyDef) ([]string, map[uint16]string) {
	names := make([]string, 0, len(table))
	codes := make(map[uint16]string, len(table))
	for _, k := range table {
		names = append(names, k.name)
		codes[k.code] = k.name
	}
	return names, codes
}
