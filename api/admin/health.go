// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
)

type HealthStatus struct {
	Healthy      bool       `json:"healthy"`
	LastSnapshot *time.Time `json:"lastSnapshot"`
	Revision     uint64     `json:"revision"`
	Error        string     `json:"error,omitempty"`
}

// Health tracks the outcome of the latest snapshot. The node is healthy
// while the last snapshot succeeded and is no older than maxAge.
type Health struct {
	lock     sync.RWMutex
	maxAge   time.Duration
	last     time.Time
	revision uint64
	err      error
	now      func() time.Time
}

func NewHealth(maxAge time.Duration) *Health {
	return &Health{maxAge: maxAge, now: time.Now}
}

// Record stores the outcome of a snapshot attempt.
func (h *Health) Record(revision uint64, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.err = err
	if err == nil {
		h.last = h.now()
		h.revision = revision
	}
}

func (h *Health) Status() *HealthStatus {
	h.lock.RLock()
	defer h.lock.RUnlock()

	st := &HealthStatus{Revision: h.revision}
	if !h.last.IsZero() {
		last := h.last
		st.LastSnapshot = &last
	}
	if h.err != nil {
		st.Error = h.err.Error()
		return st
	}
	st.Healthy = !h.last.IsZero() && h.now().Sub(h.last) <= h.maxAge
	return st
}

func (h *Health) handleGet(w http.ResponseWriter, _ *http.Request) error {
	st := h.Status()
	if !st.Healthy {
		w.Header().Set("Content-Type", utils.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, st)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("admin_health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGet))
}
