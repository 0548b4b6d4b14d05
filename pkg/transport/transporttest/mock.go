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

// Package transporttest provides a scripted serial port for tests of the
// transport and everything built on it.
package transporttest

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dscontroller/dscontroller/pkg/helpers/syncutil"
	"github.com/dscontroller/dscontroller/pkg/transport"
	"go.bug.st/serial"
)

// Responder returns what the fake device sends back after receiving line.
// Returning nil sends nothing.
type Responder func(line string) []byte

// MockPort is an in-memory serial port. With a finite read timeout an empty
// receive buffer behaves like an elapsed timeout; with an infinite one Read
// blocks until data is pushed or the port is closed.
type MockPort struct {
	ReadError  error
	WriteError error
	CloseError error
	TimeoutErr error
	ResetError error
	ReadFunc   func(p []byte) (n int, err error)
	WriteFunc  func(p []byte) (n int, err error)
	Responder  Responder
	OpenedMode *serial.Mode

	notify      chan struct{}
	done        chan struct{}
	rx          []byte
	tx          []byte
	lines       []string
	timeouts    []time.Duration
	resets      int
	readTimeout time.Duration
	closed      bool
	mu          syncutil.Mutex
}

func NewMockPort() *MockPort {
	return &MockPort{
		notify:      make(chan struct{}, 1),
		done:        make(chan struct{}),
		readTimeout: serial.NoTimeout,
	}
}

// NewDevice returns a port that answers VER with version, like the
// controller firmware does.
func NewDevice(version string) *MockPort {
	m := NewMockPort()
	m.Responder = func(line string) []byte {
		if line == "VER" {
			return []byte(version + "\n")
		}
		return nil
	}
	return m
}

// Factory returns a transport.PortFactory that hands out m and records the
// requested serial mode.
func (m *MockPort) Factory() transport.PortFactory {
	return func(_ string, mode *serial.Mode) (transport.Port, error) {
		m.mu.Lock()
		m.OpenedMode = mode
		m.mu.Unlock()
		return m, nil
	}
}

// FailingFactory returns a transport.PortFactory that always fails with err.
func FailingFactory(err error) transport.PortFactory {
	return func(string, *serial.Mode) (transport.Port, error) {
		return nil, err
	}
}

// Push queues bytes as if the device had sent them.
func (m *MockPort) Push(data []byte) {
	m.mu.Lock()
	m.rx = append(m.rx, data...)
	m.mu.Unlock()
	m.signal()
}

func (m *MockPort) signal() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *MockPort) Read(p []byte) (int, error) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return 0, errors.New("port closed")
		}
		if m.ReadFunc != nil {
			f := m.ReadFunc
			m.mu.Unlock()
			return f(p)
		}
		if m.ReadError != nil {
			err := m.ReadError
			m.mu.Unlock()
			return 0, err
		}
		if len(m.rx) > 0 {
			n := copy(p, m.rx)
			m.rx = m.rx[n:]
			m.mu.Unlock()
			return n, nil
		}
		timeout := m.readTimeout
		m.mu.Unlock()

		if timeout >= 0 {
			return 0, nil
		}

		select {
		case <-m.notify:
		case <-m.done:
		}
	}
}

func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0, errors.New("port closed")
	}
	if m.WriteFunc != nil {
		f := m.WriteFunc
		m.mu.Unlock()
		return f(p)
	}
	if m.WriteError != nil {
		err := m.WriteError
		m.mu.Unlock()
		return 0, err
	}

	m.tx = append(m.tx, p...)
	var replies []byte
	for {
		i := slices.Index(m.tx, '\n')
		if i < 0 {
			break
		}
		line := string(m.tx[:i])
		m.tx = m.tx[i+1:]
		m.lines = append(m.lines, line)
		if m.Responder != nil {
			replies = append(replies, m.Responder(line)...)
		}
	}
	m.rx = append(m.rx, replies...)
	m.mu.Unlock()

	if len(replies) > 0 {
		m.signal()
	}
	return len(p), nil
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return m.CloseError
}

func (m *MockPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TimeoutErr != nil {
		return m.TimeoutErr
	}
	m.readTimeout = t
	m.timeouts = append(m.timeouts, t)
	return nil
}

func (m *MockPort) ResetInputBuffer() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResetError != nil {
		return m.ResetError
	}
	m.rx = nil
	m.resets++
	return nil
}

// Lines returns every complete line written so far, without terminators.
func (m *MockPort) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.lines)
}

// LinesWithPrefix returns the written lines starting with prefix.
func (m *MockPort) LinesWithPrefix(prefix string) []string {
	var out []string
	for _, l := range m.Lines() {
		if strings.HasPrefix(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

// Timeouts returns every read timeout set on the port, in order.
func (m *MockPort) Timeouts() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.timeouts)
}

// Resets returns how many times the input buffer was reset.
func (m *MockPort) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

func (m *MockPort) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
