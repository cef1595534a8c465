// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useRoot(t *testing.T, level slog.Level) *bytes.Buffer {
	prev := ethlog.Root()
	t.Cleanup(func() { ethlog.SetDefault(prev) })

	var buf bytes.Buffer
	ethlog.SetDefault(ethlog.NewLogger(ethlog.JSONHandlerWithLevel(&buf, level)))
	return &buf
}

func TestWithContextFollowsRoot(t *testing.T) {
	// created before the root handler is installed, like a package variable
	logger := WithContext("pkg", "test")

	buf := useRoot(t, slog.LevelInfo)
	logger.Info("hello", "n", 1)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, float64(1), rec["n"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestWithContextChained(t *testing.T) {
	logger := WithContext("pkg", "test").With("sub", "child")

	buf := useRoot(t, slog.LevelDebug)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
	logger.Debug("deep")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, "child", rec["sub"])
}
