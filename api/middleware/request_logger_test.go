// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func TestRequestLogger(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) }
	status := func(code int) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
	}
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(15 * time.Millisecond)
		w.Write([]byte("OK"))
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		log5xx    bool
		code      int
		shouldLog bool
	}{
		{"enabled", ok, true, 0, false, http.StatusOK, true},
		{"disabled", ok, false, 0, false, http.StatusOK, false},
		{"slow request", slow, false, 5 * time.Millisecond, false, http.StatusOK, true},
		{"fast request", ok, false, time.Second, false, http.StatusOK, false},
		{"5xx logged", status(http.StatusInternalServerError), false, 0, true, http.StatusInternalServerError, true},
		{"5xx not logged", status(http.StatusServiceUnavailable), false, 0, false, http.StatusServiceUnavailable, false},
		{"4xx not logged", status(http.StatusBadRequest), false, 0, true, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.NewLogger(log.JSONHandler(&buf))
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			var seen string
			inner := func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				seen = string(b)
				tt.handler(w, r)
			}
			h := RequestLogger(logger, &enabled, tt.threshold, tt.log5xx)(http.HandlerFunc(inner))

			req := httptest.NewRequest(http.MethodPost, "http://example.com/ops/stake", strings.NewReader(`{"pool":1}`))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.code, rr.Code)
			assert.Equal(t, `{"pool":1}`, seen, "body must still reach the handler")
			if tt.shouldLog {
				out := buf.String()
				assert.Contains(t, out, "api request")
				assert.Contains(t, out, "http://example.com/ops/stake")
				assert.Contains(t, out, `"method":"POST"`)
				assert.Contains(t, out, `{\"pool\":1}`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
