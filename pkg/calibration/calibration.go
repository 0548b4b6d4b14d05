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

// Package calibration discovers which board pin each console button is wired
// to and turns the result into a controller code.
package calibration

import (
	"context"
	"fmt"
	"time"

	"github.com/dscontroller/dscontroller/pkg/nds"
	"github.com/dscontroller/dscontroller/pkg/protocol"
	"github.com/dscontroller/dscontroller/pkg/transport"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	openDelay   = 1 * time.Millisecond
	settleDelay = 10 * time.Millisecond
)

// Connection is the part of protocol.Driver calibration needs.
type Connection interface {
	Open(ctx context.Context, device, controllerCode string) error
	ChangeMode(mode protocol.Mode) error
	Transport() *transport.Transport
	Close() error
}

// Prompt asks the user to press a button on the device.
type Prompt func(b nds.Button)

type Calibrator struct {
	conn  Connection
	clock clockwork.Clock
}

func NewCalibrator(conn Connection, clock clockwork.Clock) *Calibrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Calibrator{conn: conn, clock: clock}
}

// Run opens device without a controller code, switches the board to probe
// mode and asks for every button in turn. Each wait blocks until the button
// is pressed; cancelling ctx closes the port and Run returns ctx.Err().
// The connection is closed when Run returns.
func (c *Calibrator) Run(ctx context.Context, device string, prompt Prompt) (ControllerCode, error) {
	if err := c.conn.Open(ctx, device, ""); err != nil {
		return "", fmt.Errorf("failed to open controller: %w", err)
	}
	defer func() {
		if err := c.conn.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close controller after calibration")
		}
	}()

	if err := c.sleep(ctx, openDelay); err != nil {
		return "", err
	}
	if err := c.conn.ChangeMode(protocol.ModeProbe); err != nil {
		return "", fmt.Errorf("failed to enter probe mode: %w", err)
	}
	if err := c.sleep(ctx, settleDelay); err != nil {
		return "", err
	}

	t := c.conn.Transport()
	if t == nil {
		return "", protocol.ErrNotConnected
	}
	stop := context.AfterFunc(ctx, func() {
		_ = t.Close()
	})
	defer stop()

	if err := t.Drain(); err != nil {
		return "", ctxOr(ctx, err)
	}

	result := make(ProbeResult, nds.NumButtons)
	for _, b := range nds.All() {
		if prompt != nil {
			prompt(b)
		}
		pin, err := readPin(ctx, t, result)
		if err != nil {
			return "", err
		}
		result.Assign(b, pin)
		log.Debug().Stringer("button", b).Int("pin", pin).Msg("button probed")
	}

	code, err := Derive(result)
	if err != nil {
		return "", err
	}
	log.Info().Str("code", code.String()).Msg("calibration complete")
	return code, nil
}

// readPin reads probe bytes until one decodes to a pin not yet in result.
func readPin(ctx context.Context, t *transport.Transport, result ProbeResult) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		b, ok, err := t.NextByte()
		if err != nil {
			return 0, ctxOr(ctx, err)
		}
		if !ok {
			continue
		}

		pin, valid := PinFromProbe(b)
		switch {
		case !valid:
			log.Debug().Uint8("byte", b).Msg("ignoring out of range probe byte")
		case result.HasPin(pin):
			log.Debug().Int("pin", pin).Msg("ignoring pin already assigned")
		default:
			return pin, nil
		}
	}
}

func (c *Calibrator) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}

// ctxOr returns the context error if ctx is done, since a cancelled run
// surfaces as a closed port.
func ctxOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
