// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/metrics"
)

func get(t *testing.T, url string) (int, string) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestStartAPIServer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "pong")
	})
	url, closeFunc, err := StartAPIServer("127.0.0.1:0", handler)
	require.NoError(t, err)

	code, body := get(t, url+"ping")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body)

	closeFunc()
	_, err = http.Get(url + "ping")
	assert.Error(t, err)
}

func TestListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, _, err = StartAPIServer(l.Addr().String(), http.NotFoundHandler())
	assert.ErrorContains(t, err, "listen API addr")
}

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.Counter("httpserver_test_count").Add(3)

	url, closeFunc, err := StartMetricsServer("127.0.0.1:0")
	require.NoError(t, err)
	defer closeFunc()
	assert.True(t, strings.HasSuffix(url, "/metrics"))

	code, body := get(t, url)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "stakepool_httpserver_test_count 3")
}

func TestStartAdminServer(t *testing.T) {
	health := admin.NewHealth(time.Minute)
	health.Record(5, nil)

	url, closeFunc, err := StartAdminServer("127.0.0.1:0", new(slog.LevelVar), new(atomic.Bool), health)
	require.NoError(t, err)
	defer closeFunc()

	code, body := get(t, url+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"revision":5`)

	code, _ = get(t, url+"/loglevel")
	assert.Equal(t, http.StatusOK, code)
}
