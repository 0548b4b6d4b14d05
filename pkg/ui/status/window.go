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

package status

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dscontroller/dscontroller/pkg/helpers/syncutil"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ErrQuit is returned by Window.Run when the user closed the window.
var ErrQuit = errors.New("window closed by user")

const Title = "DS Controller"

// Window is a single line status window. Keys pressed while it has focus
// are ignored apart from Esc and q, which close it. Run may be called once.
type Window struct {
	app       *tview.Application
	view      *tview.TextView
	ready     chan struct{}
	text      string
	level     Level
	readyOnce sync.Once
	mu        syncutil.Mutex
	drawMu    syncutil.RWMutex
	drawing   bool
}

func NewWindow() *Window {
	view := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorWhite)
	view.SetBorder(true).SetTitle(" " + Title + " ")

	w := &Window{
		app:   tview.NewApplication(),
		view:  view,
		ready: make(chan struct{}),
		level: LevelInfo,
	}
	w.refresh()

	// hooks are set before any goroutine can draw
	w.app.SetBeforeDrawFunc(func(tcell.Screen) bool {
		w.readyOnce.Do(w.startDrawing)
		w.refresh()
		return false
	})
	w.app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if isQuitKey(ev) {
			w.stop()
		}
		return nil
	})
	w.app.SetRoot(w.view, true)
	return w
}

// SetScreen replaces the terminal screen, for tests.
func (w *Window) SetScreen(s tcell.Screen) {
	w.app.SetScreen(s)
}

// ShowStatus may be called from any goroutine, before, during or after Run.
// The view itself is only touched from the before-draw hook, under the
// application lock.
func (w *Window) ShowStatus(text string, level Level) {
	w.mu.Lock()
	w.text = text
	w.level = level
	w.mu.Unlock()

	// QueueUpdateDraw would block forever once the event loop has ended, so
	// redraw directly, and only between the first draw and stop.
	w.drawMu.RLock()
	defer w.drawMu.RUnlock()
	if w.drawing {
		w.app.ForceDraw()
	}
}

// startDrawing runs once, from the first draw of the event loop.
func (w *Window) startDrawing() {
	w.drawMu.Lock()
	w.drawing = true
	w.drawMu.Unlock()
	close(w.ready)
}

func (w *Window) stop() {
	w.drawMu.Lock()
	w.drawing = false
	w.drawMu.Unlock()
	w.app.Stop()
}

// Status returns the message currently shown.
func (w *Window) Status() (string, Level) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.text, w.level
}

func (w *Window) refresh() {
	text, level := w.Status()
	w.view.SetText(text)
	w.view.SetBackgroundColor(level.Background())
}

// Run shows the window until ctx is done or the user closes it, in which
// case it returns ErrQuit.
func (w *Window) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	finished := make(chan struct{})

	// wait for the first draw so Stop cannot race the screen setup
	stop := context.AfterFunc(ctx, func() {
		select {
		case <-w.ready:
			w.stop()
		case <-finished:
		}
	})
	defer stop()

	err := w.app.Run()
	close(finished)
	if err != nil {
		return fmt.Errorf("status window failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrQuit
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	default:
		return false
	}
}
