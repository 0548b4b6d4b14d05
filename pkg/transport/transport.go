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

// Package transport owns the serial link to the controller board: opening the
// port, newline-terminated writes and line or byte reads with a bounded wait.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

const (
	BaudRate            = 9600
	DefaultReadTimeout  = 5000 * time.Millisecond
	DefaultWriteTimeout = 2000 * time.Millisecond
	LineTerminator      = "\n"

	// Infinite makes reads block until data arrives. Same value as
	// serial.NoTimeout.
	Infinite time.Duration = -1

	readChunkSize = 64
)

var (
	// ErrAccess means the OS refused to open the device: it is busy or the
	// user lacks permission. It is the only open failure told apart.
	ErrAccess = errors.New("unable to open serial port")
	// ErrTransport covers every other I/O failure on the link.
	ErrTransport = errors.New("serial transport error")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = fmt.Errorf("%w: port closed", ErrTransport)
)

// Config holds the serial settings for one connection.
type Config struct {
	Clock        clockwork.Clock
	Factory      PortFactory
	Device       string
	BaudRate     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the settings the controller firmware expects.
func DefaultConfig(device string) Config {
	return Config{
		Device:       device,
		BaudRate:     BaudRate,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Transport is an open serial link. Reads and writes are expected to come
// from a single control flow; Close may be called from anywhere and unblocks
// a pending read.
type Transport struct {
	port         Port
	clock        clockwork.Clock
	device       string
	pending      []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
	closed       atomic.Bool
}

// Open configures and opens the device in cfg.
func Open(cfg Config) (*Transport, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: no device given", ErrTransport)
	}
	if cfg.Factory == nil {
		cfg.Factory = DefaultPortFactory
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = BaudRate
	}

	port, err := cfg.Factory(cfg.Device, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
		InitialStatusBits: &serial.ModemOutputBits{
			RTS: true,
		},
	})
	if err != nil {
		if isAccessError(err) {
			return nil, fmt.Errorf("%w %s: %w", ErrAccess, cfg.Device, err)
		}
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrTransport, cfg.Device, err)
	}

	t := &Transport{
		port:         port,
		clock:        cfg.Clock,
		device:       cfg.Device,
		writeTimeout: cfg.WriteTimeout,
	}

	if err := t.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, err
	}

	log.Debug().Str("device", cfg.Device).Int("baud", cfg.BaudRate).Msg("serial port opened")
	return t, nil
}

func isAccessError(err error) bool {
	if errors.Is(err, os.ErrPermission) {
		return true
	}

	var code serial.PortErrorCode
	var portErr *serial.PortError
	var portErrVal serial.PortError
	switch {
	case errors.As(err, &portErr):
		code = portErr.Code()
	case errors.As(err, &portErrVal):
		code = portErrVal.Code()
	default:
		return false
	}

	return code == serial.PermissionDenied || code == serial.PortBusy
}

// Device returns the device path this transport was opened on.
func (t *Transport) Device() string {
	return t.device
}

// ReadTimeout returns the current read timeout, Infinite when reads block.
func (t *Transport) ReadTimeout() time.Duration {
	return t.readTimeout
}

// SetReadTimeout changes how long ReadLine and NextByte wait. Pass Infinite
// to wait forever.
func (t *Transport) SetReadTimeout(d time.Duration) error {
	if t.closed.Load() {
		return ErrClosed
	}
	if d < 0 {
		d = Infinite
	}
	if err := t.port.SetReadTimeout(d); err != nil {
		return fmt.Errorf("%w: failed to set read timeout: %w", ErrTransport, err)
	}
	t.readTimeout = d
	return nil
}

// WriteLine writes text followed by a newline. The write fails with
// ErrTransport if it does not complete within the write timeout.
func (t *Transport) WriteLine(text string) error {
	if t.closed.Load() {
		return ErrClosed
	}

	data := []byte(text + LineTerminator)
	done := make(chan error, 1)
	go func() {
		_, err := t.port.Write(data)
		done <- err
	}()

	var timeout <-chan time.Time
	if t.writeTimeout > 0 {
		timer := t.clock.NewTimer(t.writeTimeout)
		defer timer.Stop()
		timeout = timer.Chan()
	}

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: failed to write to port: %w", ErrTransport, err)
		}
	case <-timeout:
		return fmt.Errorf("%w: write timed out after %s", ErrTransport, t.writeTimeout)
	}

	log.Trace().Str("line", text).Msg("serial write")
	return nil
}

// ReadLine waits for the next newline-terminated line. ok is false when the
// read timeout elapsed first; a timeout is not an error.
func (t *Transport) ReadLine() (line string, ok bool, err error) {
	start := t.clock.Now()
	shortened := false
	defer func() {
		if !shortened {
			return
		}
		if restoreErr := t.port.SetReadTimeout(t.readTimeout); restoreErr != nil && err == nil {
			err = fmt.Errorf("%w: failed to restore read timeout: %w", ErrTransport, restoreErr)
		}
	}()

	for first := true; ; first = false {
		if i := bytes.IndexByte(t.pending, '\n'); i >= 0 {
			line = string(t.pending[:i])
			t.pending = t.pending[i+1:]
			return strings.TrimSuffix(line, "\r"), true, nil
		}

		// a partial line must not restart the wait for the rest of it
		if t.readTimeout >= 0 && !first {
			remaining := t.readTimeout - t.clock.Since(start)
			if remaining <= 0 {
				return "", false, nil
			}
			if err := t.port.SetReadTimeout(remaining); err != nil {
				return "", false, fmt.Errorf("%w: failed to set read timeout: %w", ErrTransport, err)
			}
			shortened = true
		}

		got, err := t.fill()
		if err != nil {
			return "", false, err
		}
		if !got {
			return "", false, nil
		}
	}
}

// NextByte waits for a single byte. ok is false when the read timeout elapsed
// first.
func (t *Transport) NextByte() (b byte, ok bool, err error) {
	if len(t.pending) == 0 {
		got, err := t.fill()
		if err != nil || !got {
			return 0, false, err
		}
	}
	b = t.pending[0]
	t.pending = t.pending[1:]
	return b, true, nil
}

// fill performs one port read into the pending buffer. It returns false when
// the port timed out without delivering anything.
func (t *Transport) fill() (bool, error) {
	buf := make([]byte, readChunkSize)
	for {
		if t.closed.Load() {
			return false, ErrClosed
		}

		n, err := t.port.Read(buf)
		if err != nil {
			if t.closed.Load() {
				return false, ErrClosed
			}
			return false, fmt.Errorf("%w: failed to read from port: %w", ErrTransport, err)
		}
		if n > 0 {
			t.pending = append(t.pending, buf[:n]...)
			return true, nil
		}
		if t.readTimeout >= 0 {
			return false, nil
		}
		// a blocking read can still return empty on some platforms
	}
}

// Drain discards everything received but not yet read.
func (t *Transport) Drain() error {
	if t.closed.Load() {
		return ErrClosed
	}
	if n := len(t.pending); n > 0 {
		log.Debug().Int("bytes", n).Msg("discarding buffered serial input")
	}
	t.pending = nil
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: failed to reset input buffer: %w", ErrTransport, err)
	}
	return nil
}

// Close closes the port. It is safe to call more than once and from another
// goroutine than the one reading.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		if err := t.port.Close(); err != nil {
			t.closeErr = fmt.Errorf("%w: failed to close serial port: %w", ErrTransport, err)
			return
		}
		log.Debug().Str("device", t.device).Msg("serial port closed")
	})
	return t.closeErr
}
