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
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ShowStatus("Connecting to controller...", LevelInfo)
	c.ShowStatus("Connected.", LevelOK)
	c.ShowStatus("Handshake timeout", LevelError)

	assert.Equal(t,
		"Connecting to controller...\nConnected.\nError: Handshake timeout\n",
		buf.String())
}

func TestLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "ok", LevelOK.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "Level(5)", Level(5).String())

	assert.Equal(t, tcell.ColorBlack, LevelInfo.Background())
	assert.Equal(t, tcell.NewHexColor(0x00AA00), LevelOK.Background())
	assert.Equal(t, tcell.NewHexColor(0xAA0000), LevelError.Background())
}

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(60, 5)
	return sim
}

func screenText(sim tcell.SimulationScreen) string {
	cells, width, height := sim.GetContents()
	var sb strings.Builder
	for y := range height {
		for x := range width {
			cell := cells[y*width+x]
			if len(cell.Runes) > 0 {
				sb.WriteRune(cell.Runes[0])
			} else {
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

type windowRun struct {
	done chan error
	sim  tcell.SimulationScreen
	w    *Window
}

func startWindow(ctx context.Context, t *testing.T) *windowRun {
	t.Helper()

	r := &windowRun{
		done: make(chan error, 1),
		sim:  newSimScreen(t),
		w:    NewWindow(),
	}
	r.w.SetScreen(r.sim)
	go func() {
		r.done <- r.w.Run(ctx)
	}()
	return r
}

func (r *windowRun) waitForText(t *testing.T, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(screenText(r.sim), text)
	}, 2*time.Second, 10*time.Millisecond, "text %q never shown", text)
}

func (r *windowRun) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("window did not stop")
		return nil
	}
}

func TestWindow_ShowsStatus(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := startWindow(ctx, t)
	r.w.ShowStatus("Configuration loaded, connecting...", LevelInfo)
	r.waitForText(t, "Configuration loaded, connecting...")
	r.waitForText(t, Title)

	r.w.ShowStatus("Connected.", LevelOK)
	r.waitForText(t, "Connected.")

	text, level := r.w.Status()
	assert.Equal(t, "Connected.", text)
	assert.Equal(t, LevelOK, level)

	cancel()
	require.ErrorIs(t, r.wait(t), context.Canceled)
}

func TestWindow_QuitKeys(t *testing.T) {
	t.Parallel()

	keys := map[string]func(tcell.SimulationScreen){
		"escape": func(s tcell.SimulationScreen) { s.InjectKey(tcell.KeyEscape, 0, tcell.ModNone) },
		"q":      func(s tcell.SimulationScreen) { s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone) },
		"ctrl-c": func(s tcell.SimulationScreen) { s.InjectKey(tcell.KeyCtrlC, 0, tcell.ModCtrl) },
	}

	for name, press := range keys {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := startWindow(context.Background(), t)
			r.w.ShowStatus("Connected.", LevelOK)
			r.waitForText(t, "Connected.")

			press(r.sim)
			require.ErrorIs(t, r.wait(t), ErrQuit)
		})
	}
}

func TestWindow_OtherKeysIgnored(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := startWindow(ctx, t)
	r.w.ShowStatus("Connected.", LevelOK)
	r.waitForText(t, "Connected.")

	r.sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	r.sim.InjectKey(tcell.KeyEnter, 0, tcell.ModNone)

	select {
	case err := <-r.done:
		t.Fatalf("window stopped early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	require.ErrorIs(t, r.wait(t), context.Canceled)
}

// Run with `go test -race` to check the hooks and the draw path.
func TestWindow_ShowStatusWhileStarting(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim := newSimScreen(t)
	w := NewWindow()
	w.SetScreen(sim)

	quit := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-quit:
					return
				default:
					w.ShowStatus("Connecting to controller...", LevelInfo)
				}
			}
		}()
	}

	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()

	r := &windowRun{done: done, sim: sim, w: w}
	r.waitForText(t, "Connecting to controller...")

	cancel()
	require.ErrorIs(t, r.wait(t), context.Canceled)

	close(quit)
	wg.Wait()
}

func TestWindow_ShowStatusAfterRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	r := startWindow(ctx, t)
	r.w.ShowStatus("Connected.", LevelOK)
	r.waitForText(t, "Connected.")

	cancel()
	require.ErrorIs(t, r.wait(t), context.Canceled)

	shown := make(chan struct{})
	go func() {
		r.w.ShowStatus("Connection lost", LevelError)
		close(shown)
	}()
	select {
	case <-shown:
	case <-time.After(2 * time.Second):
		t.Fatal("ShowStatus blocked after the window stopped")
	}

	text, level := r.w.Status()
	assert.Equal(t, "Connection lost", text)
	assert.Equal(t, LevelError, level)
}

func TestWindow_CancelledBeforeRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewWindow()
	require.ErrorIs(t, w.Run(ctx), context.Canceled)

	w.ShowStatus("offline", LevelError)
	text, level := w.Status()
	assert.Equal(t, "offline", text)
	assert.Equal(t, LevelError, level)
}
