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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/dscontroller/dscontroller/pkg/config"
	"github.com/dscontroller/dscontroller/pkg/helpers"
	"github.com/dscontroller/dscontroller/pkg/transport/transporttest"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: replaces the global logger and the XDG data dir.
func TestSetup(t *testing.T) {
	oldLogger := log.Logger
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.SetGlobalLevel(oldLevel)
		xdg.Reload()
	})
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()

	te := newTestEnv(t, transporttest.NewMockPort())
	var buf bytes.Buffer

	cfg, err := Setup(te.Env, cfgPath, true, []io.Writer{&buf})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Device())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	out := buf.String()
	assert.Contains(t, out, "logging to file")
	assert.Contains(t, out, helpers.LogPath())

	data, err := os.ReadFile(helpers.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "loaded config")
	assert.Equal(t, config.LogFile, filepath.Base(helpers.LogPath()))
}

func TestSetup_ConfigMissing(t *testing.T) {
	oldLogger := log.Logger
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.SetGlobalLevel(oldLevel)
		xdg.Reload()
	})
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()

	te := newTestEnv(t, transporttest.NewMockPort())
	_, err := Setup(te.Env, "/missing.toml", false, []io.Writer{io.Discard})
	require.ErrorIs(t, err, config.ErrNotFound)
	assert.Contains(t, err.Error(), "error loading config")
}
