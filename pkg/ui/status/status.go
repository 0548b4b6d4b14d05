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

// Package status shows the controller state to the user, either in a small
// terminal window or as plain lines on a writer.
package status

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dscontroller/dscontroller/pkg/helpers/syncutil"
	"github.com/gdamore/tcell/v2"
)

type Level int

const (
	LevelInfo Level = iota
	LevelOK
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelOK:
		return "ok"
	case LevelError:
		return "error"
	default:
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
}

// Background is the window color used for a level.
func (l Level) Background() tcell.Color {
	switch l {
	case LevelOK:
		return tcell.NewHexColor(0x00AA00)
	case LevelError:
		return tcell.NewHexColor(0xAA0000)
	default:
		return tcell.ColorBlack
	}
}

// Display receives status messages.
type Display interface {
	ShowStatus(text string, level Level)
}

// Console writes each status as one line.
type Console struct {
	out io.Writer
	mu  syncutil.Mutex
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) ShowStatus(text string, level Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level == LevelError {
		_, _ = fmt.Fprintln(c.out, "Error: "+text)
		return
	}
	_, _ = fmt.Fprintln(c.out, text)
}
