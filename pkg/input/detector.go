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

// Package input turns the held state of host keys into button transitions
// for the controller board.
package input

import (
	"context"
	"time"

	"github.com/dscontroller/dscontroller/pkg/nds"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// PollInterval is how often the key source is sampled.
const PollInterval = 10 * time.Millisecond

// KeySource reports whether host keys are currently held.
type KeySource interface {
	// Keys returns every key name the source knows, in a fixed order.
	Keys() []string
	IsPressed(key string) bool
}

// Sender receives button transitions, usually a protocol.Driver.
type Sender interface {
	SendKey(button string, pressed bool) error
}

// Edge is a change in the held state of one key.
type Edge struct {
	Key     string
	Pressed bool
}

// Detector keeps the last seen state of every key and reports changes. It is
// not safe for concurrent use.
type Detector struct {
	clock      clockwork.Clock
	warn       *rate.Limiter
	held       map[string]bool
	suppressed int
}

func NewDetector(clock clockwork.Clock) *Detector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Detector{
		clock: clock,
		warn:  rate.NewLimiter(rate.Every(time.Second), 1),
		held:  make(map[string]bool),
	}
}

// Sweep samples every key once and returns the press and release edges since
// the previous sweep, in key order. A key that is not held and was never seen
// held produces nothing.
func (d *Detector) Sweep(src KeySource) []Edge {
	var edges []Edge
	for _, key := range src.Keys() {
		pressed := src.IsPressed(key)
		if pressed == d.isHeld(key) {
			continue
		}
		if pressed {
			d.held[key] = true
		} else {
			delete(d.held, key)
		}
		edges = append(edges, Edge{Key: key, Pressed: pressed})
	}
	return edges
}

// isHeld reports whether key was held at the last sweep.
func (d *Detector) isHeld(key string) bool {
	return d.held[key]
}

// Forward sends every edge to each button bound to its key. Send errors do
// not stop the remaining edges; the first one is returned.
func Forward(edges []Edge, mapping nds.ButtonMapping, sender Sender) error {
	var firstErr error
	for _, e := range edges {
		for _, b := range mapping.ButtonsForKey(e.Key) {
			if err := sender.SendKey(b.String(), e.Pressed); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Run sweeps src every PollInterval and forwards the edges until ctx is done.
// Failed sends are logged and the loop carries on.
func (d *Detector) Run(ctx context.Context, src KeySource, mapping nds.ButtonMapping, sender Sender) error {
	ticker := d.clock.NewTicker(PollInterval)
	defer ticker.Stop()

	log.Info().Int("buttons", len(mapping)).Msg("forwarding key input")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("key forwarding stopped")
			return ctx.Err()
		case <-ticker.Chan():
			edges := d.Sweep(src)
			if len(edges) == 0 {
				continue
			}
			if err := Forward(edges, mapping, sender); err != nil {
				d.logSendError(err)
			}
		}
	}
}

func (d *Detector) logSendError(err error) {
	if !d.warn.Allow() {
		d.suppressed++
		return
	}
	log.Warn().Err(err).Int("suppressed", d.suppressed).Msg("failed to send key")
	d.suppressed = 0
}
