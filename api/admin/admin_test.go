// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h http.Handler, method, path, body string) (int, []byte) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func TestLogLevel(t *testing.T) {
	lvl := new(slog.LevelVar)
	lvl.Set(log.LevelInfo)
	h := New(lvl, new(atomic.Bool), nil)

	tests := []struct {
		name     string
		method   string
		body     string
		status   int
		expected string
	}{
		{"get default", http.MethodGet, "", http.StatusOK, "info"},
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "debug"},
		{"get after set", http.MethodGet, "", http.StatusOK, "debug"},
		{"invalid level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, ""},
		{"unknown field", http.MethodPost, `{"lvl":"info"}`, http.StatusBadRequest, ""},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "crit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call(t, h, tt.method, "/admin/loglevel", tt.body)
			assert.Equal(t, tt.status, code)
			if tt.expected == "" {
				return
			}
			var resp LogLevelResponse
			require.NoError(t, json.Unmarshal(body, &resp))
			assert.Equal(t, tt.expected, resp.CurrentLevel)
		})
	}
	assert.Equal(t, log.LevelCrit, lvl.Level())
}

func TestAPILogs(t *testing.T) {
	enabled := new(atomic.Bool)
	h := New(new(slog.LevelVar), enabled, nil)

	code, body := call(t, h, http.MethodPost, "/admin/apilogs", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"enabled":true}`, string(body))
	assert.True(t, enabled.Load())

	code, body = call(t, h, http.MethodGet, "/admin/apilogs", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"enabled":true}`, string(body))

	code, _ = call(t, h, http.MethodPost, "/admin/apilogs", `not json`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.True(t, enabled.Load())
}

func TestHealth(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	health := NewHealth(time.Minute)
	health.now = func() time.Time { return now }
	h := New(new(slog.LevelVar), new(atomic.Bool), health)

	status := func() (int, HealthStatus) {
		code, body := call(t, h, http.MethodGet, "/admin/health", "")
		var st HealthStatus
		require.NoError(t, json.Unmarshal(body, &st))
		return code, st
	}

	code, st := status()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, st.Healthy)
	assert.Nil(t, st.LastSnapshot)

	health.Record(12, nil)
	code, st = status()
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, st.Healthy)
	assert.Equal(t, uint64(12), st.Revision)

	now = now.Add(2 * time.Minute)
	code, st = status()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, st.Healthy)

	health.Record(20, errors.New("disk full"))
	code, st = status()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "disk full", st.Error)
	assert.Equal(t, uint64(12), st.Revision)
	require.NotNil(t, st.LastSnapshot)
}
