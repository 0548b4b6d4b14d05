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

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dscontroller/dscontroller/pkg/calibration"
	"github.com/dscontroller/dscontroller/pkg/config"
	"github.com/dscontroller/dscontroller/pkg/input"
	"github.com/dscontroller/dscontroller/pkg/nds"
	"github.com/dscontroller/dscontroller/pkg/protocol"
	"github.com/dscontroller/dscontroller/pkg/ui/status"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// List prints one candidate serial port per line.
func List(env *Env) error {
	ports, err := env.ListPorts()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	if len(ports) == 0 {
		_, _ = fmt.Fprintln(env.Out, "No ports available.")
		return nil
	}
	for _, p := range ports {
		_, _ = fmt.Fprintln(env.Out, p)
	}
	return nil
}

// PrintSkeleton prints an empty config in the given format.
func PrintSkeleton(env *Env, format string) error {
	data, err := config.Skeleton(format)
	if err != nil {
		return fmt.Errorf("failed to generate config skeleton: %w", err)
	}
	_, err = env.Out.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write config skeleton: %w", err)
	}
	return nil
}

// Probe runs calibration on the console and prints the controller code.
// With save set the code is also written to the config file.
func Probe(ctx context.Context, env *Env, cfg *config.Instance, save bool) error {
	con := status.NewConsole(env.Out)
	con.ShowStatus("Calibration mode:", status.LevelInfo)
	con.ShowStatus("Connecting to controller on "+cfg.Device()+"...", status.LevelInfo)

	drv := env.NewDriver()
	cal := calibration.NewCalibrator(drv, env.Clock)
	code, err := cal.Run(ctx, cfg.Device(), func(b nds.Button) {
		con.ShowStatus(fmt.Sprintf("Press button %s...", b), status.LevelInfo)
	})
	if err != nil {
		if ctx.Err() == nil {
			con.ShowStatus(probeFailure(drv, err), status.LevelError)
		}
		return fmt.Errorf("calibration failed: %w", err)
	}

	con.ShowStatus("Your controller code is: "+code.String(), status.LevelOK)
	if !save {
		return nil
	}

	if err := cfg.SetControllerCode(code.String()); err != nil {
		return fmt.Errorf("failed to set controller code: %w", err)
	}
	if err := cfg.Save(env.Fs); err != nil {
		return fmt.Errorf("failed to save controller code: %w", err)
	}
	con.ShowStatus("Saved to "+cfg.Path(), status.LevelOK)
	return nil
}

func probeFailure(drv *protocol.Driver, err error) string {
	if msg := drv.LastError(); msg != "" {
		return "Cannot connect to the controller. " + msg
	}
	return protocol.Describe(err)
}

// Start connects to the controller and forwards key presses to it while the
// status window is open. Connection errors stay on screen until the user
// closes the window, and are then returned.
func Start(ctx context.Context, env *Env, cfg *config.Instance) error {
	win := env.NewWindow()
	drv := env.NewDriver()
	defer func() {
		if err := drv.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing controller")
		}
	}()

	var failed error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return win.Run(gctx)
	})
	g.Go(func() error {
		err := serve(gctx, env, cfg, drv, win)
		if err != nil && gctx.Err() == nil {
			failed = err
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(err, status.ErrQuit) || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
		err = nil
	}
	return errors.Join(err, failed)
}

func serve(
	ctx context.Context,
	env *Env,
	cfg *config.Instance,
	drv *protocol.Driver,
	win status.Display,
) error {
	win.ShowStatus("Configuration loaded, connecting...", status.LevelInfo)

	err := drv.Open(ctx, cfg.Device(), cfg.ControllerCode())
	if err != nil {
		win.ShowStatus("Could not open serial connection:\n"+drv.LastError(), status.LevelError)
		return fmt.Errorf("failed to connect to controller: %w", err)
	}

	src, err := env.OpenKeys(cfg.InputDevices()...)
	if err != nil {
		win.ShowStatus("Could not read the keyboard:\n"+err.Error(), status.LevelError)
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing keyboard")
		}
	}()

	win.ShowStatus("Connected.", status.LevelOK)

	sender := &displaySender{drv: drv, display: win}
	err = input.NewDetector(env.Clock).Run(ctx, src, cfg.Mapping(), sender)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// displaySender shows the driver's error once the connection is lost.
type displaySender struct {
	drv     *protocol.Driver
	display status.Display
	lost    atomic.Bool
}

func (s *displaySender) SendKey(button string, pressed bool) error {
	err := s.drv.SendKey(button, pressed)
	if err == nil || s.drv.State() != protocol.StateClosed {
		return err
	}
	if s.lost.CompareAndSwap(false, true) {
		s.display.ShowStatus("Connection lost:\n"+s.drv.LastError(), status.LevelError)
	}
	return err
}
