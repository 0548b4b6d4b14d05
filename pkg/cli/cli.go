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
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dscontroller/dscontroller/pkg/config"
	"github.com/dscontroller/dscontroller/pkg/helpers"
	"github.com/dscontroller/dscontroller/pkg/input"
	"github.com/dscontroller/dscontroller/pkg/input/evdev"
	"github.com/dscontroller/dscontroller/pkg/protocol"
	"github.com/dscontroller/dscontroller/pkg/transport"
	"github.com/dscontroller/dscontroller/pkg/ui/status"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	Config   *string
	List     *bool
	Skeleton *skeletonFlag
	Probe    *bool
	Save     *bool
	Debug    *bool
	Version  *bool
}

// skeletonFlag is a string flag that may be given without a value, in which
// case it means TOML.
type skeletonFlag struct {
	format string
}

func (f *skeletonFlag) String() string {
	if f == nil {
		return ""
	}
	return f.format
}

func (f *skeletonFlag) Set(s string) error {
	switch s {
	case "true":
		f.format = config.FormatTOML
	case "false":
		f.format = ""
	case config.FormatTOML, config.FormatJSON:
		f.format = s
	default:
		return fmt.Errorf("%w: %s", config.ErrUnknownFormat, s)
	}
	return nil
}

func (*skeletonFlag) IsBoolFlag() bool {
	return true
}

// SetupFlags defines all CLI flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{
		Config: fs.String(
			"config",
			"",
			"configuration file to use (default $"+config.CfgEnv+" or the user config dir)",
		),
		List: fs.Bool(
			"list",
			false,
			"list the available serial ports and exit",
		),
		Skeleton: &skeletonFlag{},
		Probe: fs.Bool(
			"probe",
			false,
			"probe the controller's buttons to get the controller code",
		),
		Save: fs.Bool(
			"save",
			false,
			"with -probe, write the controller code to the config file",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
	fs.Var(
		f.Skeleton,
		"skeleton",
		"print an empty config to stdout and exit (-skeleton=json for JSON)",
	)
	return f
}

// KeyboardSource is a key-state source that holds devices open.
type KeyboardSource interface {
	input.KeySource
	io.Closer
}

// StatusWindow is the display the start action runs until the user closes
// it.
type StatusWindow interface {
	status.Display
	Run(ctx context.Context) error
}

// Env is everything the actions touch outside the process. Tests replace
// the parts they need.
type Env struct {
	Fs        afero.Fs
	Out       io.Writer
	Clock     clockwork.Clock
	ListPorts func() ([]string, error)
	NewDriver func() *protocol.Driver
	OpenKeys  func(paths ...string) (KeyboardSource, error)
	NewWindow func() StatusWindow
}

func DefaultEnv() *Env {
	return &Env{
		Fs:        afero.NewOsFs(),
		Out:       os.Stdout,
		Clock:     clockwork.NewRealClock(),
		ListPorts: transport.ListPorts,
		NewDriver: func() *protocol.Driver {
			return protocol.NewDriver()
		},
		OpenKeys: func(paths ...string) (KeyboardSource, error) {
			src, err := evdev.Open(paths...)
			if err != nil {
				return nil, fmt.Errorf("failed to open keyboard: %w", err)
			}
			return src, nil
		},
		NewWindow: func() StatusWindow {
			return status.NewWindow()
		},
	}
}

// Pre actions the flags that don't need a config file or logging. It
// reports whether one was handled, in which case the program should exit.
func (f *Flags) Pre(env *Env) (bool, error) {
	switch {
	case *f.Version:
		_, _ = fmt.Fprintf(env.Out, "%s v%s\n", status.Title, config.AppVersion)
		return true, nil
	case f.Skeleton.format != "":
		return true, PrintSkeleton(env, f.Skeleton.format)
	case *f.List:
		return true, List(env)
	}
	return false, nil
}

// Post actions the flags that need the config and runs until done.
func (f *Flags) Post(ctx context.Context, env *Env, cfg *config.Instance) error {
	if *f.Probe {
		return Probe(ctx, env, cfg, *f.Save)
	}
	return Start(ctx, env, cfg)
}

// Setup initializes logging and loads the user config.
func Setup(env *Env, path string, debug bool, writers []io.Writer) (*config.Instance, error) {
	err := helpers.InitLogging(helpers.LogDir(), writers)
	if err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}
	log.Info().Str("path", helpers.LogPath()).Msg("logging to file")
	return LoadConfig(env, path, debug)
}

// LoadConfig loads the config at path and applies its log level. The debug
// flag overrides the file.
func LoadConfig(env *Env, path string, debug bool) (*config.Instance, error) {
	cfg, err := config.Load(env.Fs, path)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	helpers.SetDebug(debug || cfg.DebugLogging())
	return cfg, nil
}
