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

package protocol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dscontroller/dscontroller/pkg/helpers/syncutil"
	"github.com/dscontroller/dscontroller/pkg/transport"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Driver owns the connection to one controller board.
type Driver struct {
	transport    *transport.Transport
	factory      transport.PortFactory
	clock        clockwork.Clock
	device       string
	lastErr      string
	readTimeout  time.Duration
	writeTimeout time.Duration
	state        State
	mu           syncutil.RWMutex
}

type Option func(*Driver)

// WithPortFactory replaces how serial ports are opened.
func WithPortFactory(f transport.PortFactory) Option {
	return func(d *Driver) {
		d.factory = f
	}
}

func WithClock(c clockwork.Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithReadTimeout sets the normal mode read timeout (handshake included).
func WithReadTimeout(t time.Duration) Option {
	return func(d *Driver) {
		d.readTimeout = t
	}
}

func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		factory:      transport.DefaultPortFactory,
		clock:        clockwork.NewRealClock(),
		readTimeout:  transport.DefaultReadTimeout,
		writeTimeout: transport.DefaultWriteTimeout,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open connects to device and performs the VER handshake. On success the
// board is put in normal mode and, if controllerCode is not empty, given its
// pin mapping with CCD. Any failure leaves the driver closed.
//
// Cancelling ctx aborts a handshake that is waiting for its reply.
func (d *Driver) Open(ctx context.Context, device, controllerCode string) error {
	d.mu.Lock()
	if d.state != StateClosed {
		d.mu.Unlock()
		return ErrAlreadyOpen
	}
	d.state = StateHandshaking
	d.device = device
	d.mu.Unlock()

	cfg := transport.DefaultConfig(device)
	cfg.Factory = d.factory
	cfg.Clock = d.clock
	cfg.ReadTimeout = d.readTimeout
	cfg.WriteTimeout = d.writeTimeout

	t, err := transport.Open(cfg)
	if err != nil {
		return d.fail(nil, err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = t.Close()
	})
	err = d.handshake(t)
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return d.fail(t, err)
	}

	if err := t.WriteLine(ModeCommand(ModeNormal)); err != nil {
		return d.fail(t, err)
	}

	if controllerCode != "" {
		if err := t.WriteLine(ControllerCodeCommand(controllerCode)); err != nil {
			return d.fail(t, err)
		}
		log.Debug().Str("code", controllerCode).Msg("controller code sent")
	}

	d.mu.Lock()
	d.transport = t
	d.state = StateNormal
	d.lastErr = ""
	d.mu.Unlock()

	log.Info().Str("device", device).Msg("controller connected")
	return nil
}

func (*Driver) handshake(t *transport.Transport) error {
	if err := t.Drain(); err != nil {
		return err
	}
	if err := t.WriteLine(CmdVersion); err != nil {
		return err
	}

	reply, ok, err := t.ReadLine()
	if err != nil {
		return err
	}
	if !ok {
		return ErrHandshakeTimeout
	}
	if reply != Version {
		return &VersionMismatchError{Got: reply, Expected: Version}
	}

	log.Debug().Str("version", reply).Msg("handshake complete")
	return nil
}

// fail records err, closes t if given and moves the driver to closed.
func (d *Driver) fail(t *transport.Transport, err error) error {
	if t != nil {
		if closeErr := t.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close serial port after error")
		}
	}

	d.mu.Lock()
	if d.transport == t {
		d.transport = nil
	}
	d.state = StateClosed
	d.lastErr = Describe(err)
	d.mu.Unlock()

	log.Error().Err(err).Str("device", d.Device()).Msg("controller connection failed")
	return err
}

// active returns the open transport or ErrNotConnected.
func (d *Driver) active() (*transport.Transport, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.transport == nil || (d.state != StateNormal && d.state != StateProbe) {
		return nil, ErrNotConnected
	}
	return d.transport, nil
}

// opFailed handles an error from a command on an open connection. Transport
// errors are unrecoverable and close the connection.
func (d *Driver) opFailed(t *transport.Transport, err error) error {
	if errors.Is(err, transport.ErrTransport) {
		return d.fail(t, err)
	}
	d.mu.Lock()
	d.lastErr = Describe(err)
	d.mu.Unlock()
	return err
}

// ChangeMode switches the board between normal and probe mode. Probe mode
// makes reads block without limit since it waits for a person to press a
// button.
func (d *Driver) ChangeMode(mode Mode) error {
	var timeout time.Duration
	var next State
	switch mode {
	case ModeNormal:
		timeout = d.readTimeout
		next = StateNormal
	case ModeProbe:
		timeout = transport.Infinite
		next = StateProbe
	default:
		return fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	t, err := d.active()
	if err != nil {
		return err
	}

	if err := t.SetReadTimeout(timeout); err != nil {
		return d.opFailed(t, err)
	}
	if err := t.WriteLine(ModeCommand(mode)); err != nil {
		return d.opFailed(t, err)
	}

	d.mu.Lock()
	d.state = next
	d.mu.Unlock()

	log.Debug().Stringer("mode", mode).Dur("read_timeout", t.ReadTimeout()).
		Msg("controller mode changed")
	return nil
}

// SendKey sends a button transition. Nothing is read back: an error only
// means the line could not be written locally, and a nil error does not
// mean the board applied it.
func (d *Driver) SendKey(button string, pressed bool) error {
	t, err := d.active()
	if err != nil {
		return err
	}

	if err := t.WriteLine(KeyCommand(button, pressed)); err != nil {
		return d.opFailed(t, err)
	}
	return nil
}

// Transport returns the open transport, for the probe exchange which reads
// raw bytes. It returns nil when not connected.
func (d *Driver) Transport() *transport.Transport {
	t, err := d.active()
	if err != nil {
		return nil
	}
	return t
}

// Close closes the connection. Closing a closed driver is a no-op.
func (d *Driver) Close() error {
	d.mu.Lock()
	t := d.transport
	d.transport = nil
	d.state = StateClosed
	d.mu.Unlock()

	if t == nil {
		return nil
	}
	if err := t.Close(); err != nil {
		return fmt.Errorf("failed to close controller connection: %w", err)
	}
	log.Info().Str("device", d.Device()).Msg("controller disconnected")
	return nil
}

func (d *Driver) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

func (d *Driver) Device() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.device
}

// LastError returns a display message for the most recent failure, or an
// empty string after a successful Open.
func (d *Driver) LastError() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}
