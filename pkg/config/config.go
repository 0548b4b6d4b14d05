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

// Package config loads the controller settings: which serial device to use,
// the board's controller code and the host key driving each button.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dscontroller/dscontroller/pkg/helpers/syncutil"
	"github.com/dscontroller/dscontroller/pkg/nds"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNotFound      = errors.New("configuration file not found")
	ErrInvalid       = errors.New("configuration invalid")
	ErrUnknownFormat = errors.New("unknown configuration format")
)

type Values struct {
	ButtonMapping  map[string]string `toml:"button_mapping" json:"buttonMapping" validate:"mapsbutton,dive,keys,ndsbutton,endkeys,omitempty"`
	Device         string            `toml:"device" json:"device" validate:"required"`
	ControllerCode string            `toml:"controller_code" json:"controllerCode" validate:"omitempty,controllercode"`
	InputDevices   []string          `toml:"input_devices,omitempty" json:"inputDevices,omitempty" validate:"dive,required"`
	DebugLogging   bool              `toml:"debug_logging" json:"debugLogging,omitempty"`
}

type Instance struct {
	path   string
	format string
	vals   Values
	mu     syncutil.RWMutex
}

// DefaultPath returns $DSCONTROLLER_CFG if set, otherwise the config file in
// the user's XDG config directory.
func DefaultPath() string {
	if p := os.Getenv(CfgEnv); p != "" {
		log.Debug().Msgf("env config path: %s", p)
		return p
	}
	return filepath.Join(xdg.ConfigHome, AppName, CfgFile)
}

// FormatFor picks the file format from the path extension. Anything other
// than .json is read as TOML.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatTOML
}

// Load reads and validates the config file at path, or DefaultPath when path
// is empty.
func Load(fsys afero.Fs, path string) (*Instance, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w in path: %s", ErrNotFound, path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	format := FormatFor(path)
	vals, err := decode(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(&vals); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Int("buttons", len(vals.ButtonMapping)).Msg("loaded config")
	return &Instance{path: path, format: format, vals: vals}, nil
}

func decode(data []byte, format string) (Values, error) {
	var vals Values
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &vals)
	case FormatTOML:
		err = toml.Unmarshal(data, &vals)
	default:
		return vals, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return vals, fmt.Errorf("%w: not a valid %s file: %w", ErrInvalid, format, err)
	}
	return vals, nil
}

func encode(vals *Values, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(vals, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		data, err := toml.Marshal(vals)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Skeleton returns an empty config listing every button, for the user to
// fill in.
func Skeleton(format string) ([]byte, error) {
	vals := Values{ButtonMapping: make(map[string]string, nds.NumButtons)}
	for _, name := range nds.Names() {
		vals.ButtonMapping[name] = ""
	}
	return encode(&vals, format)
}

// Save writes the current values back to the file they were loaded from.
func (c *Instance) Save(fsys afero.Fs) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := encode(&c.vals, c.format)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(fsys, c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.path
}

func (c *Instance) Device() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Device
}

func (c *Instance) ControllerCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ControllerCode
}

// SetControllerCode replaces the controller code, for saving the result of a
// calibration.
func (c *Instance) SetControllerCode(code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vals
	next.ControllerCode = code
	if err := Validate(&next); err != nil {
		return err
	}
	c.vals = next
	return nil
}

func (c *Instance) InputDevices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.InputDevices)
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

// Mapping returns the button mapping keyed by button.
func (c *Instance) Mapping() nds.ButtonMapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, err := nds.ParseMapping(c.vals.ButtonMapping)
	if err != nil {
		// unreachable for a validated config
		log.Error().Err(err).Msg("invalid button mapping")
		return nds.ButtonMapping{}
	}
	return m
}
