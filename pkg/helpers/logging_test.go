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

package helpers

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/dscontroller/dscontroller/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: these tests replace the global logger.

func TestInitLogging(t *testing.T) {
	oldLogger := log.Logger
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.SetGlobalLevel(oldLevel)
	})

	logDir := filepath.Join(t.TempDir(), "logs", "nested")
	var buf bytes.Buffer

	require.NoError(t, InitLogging(logDir, []io.Writer{&buf}))
	SetDebug(false)

	log.Info().Str("device", "/dev/ttyACM0").Msg("controller connected")
	log.Debug().Msg("hidden at info level")

	out := buf.String()
	assert.Contains(t, out, "controller connected")
	assert.Contains(t, out, "/dev/ttyACM0")
	assert.NotContains(t, out, "hidden at info level")

	data, err := os.ReadFile(filepath.Join(logDir, config.LogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "controller connected")

	SetDebug(true)
	log.Debug().Msg("visible at debug level")
	assert.Contains(t, buf.String(), "visible at debug level")
}

func TestInitLogging_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	err := InitLogging(filepath.Join(file, "logs"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create log directory")
}

func TestLogDir(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(LogDir(), xdg.DataHome))
	assert.Equal(t, config.LogsDir, filepath.Base(LogDir()))
	assert.Equal(t, filepath.Join(LogDir(), config.LogFile), LogPath())
}
